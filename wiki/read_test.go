package wiki

import (
	"context"
	"net/http"
	"testing"
)

func TestGetPageWikitext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]interface{}{
			"query": map[string]interface{}{
				"pages": map[string]interface{}{
					"42": map[string]interface{}{
						"pageid": 42,
						"title":  "Page",
						"revisions": []interface{}{
							map[string]interface{}{"*": "== Folio 1 ==\nTranscribed text."},
						},
					},
				},
			},
		})
	})

	text, err := client.GetPageWikitext(context.Background(), "Page")
	if err != nil {
		t.Fatalf("GetPageWikitext: %v", err)
	}
	if text != "== Folio 1 ==\nTranscribed text." {
		t.Errorf("text = %q", text)
	}
}

func TestGetPageWikitextSlotted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]interface{}{
			"query": map[string]interface{}{
				"pages": map[string]interface{}{
					"42": map[string]interface{}{
						"pageid": 42,
						"title":  "Page",
						"revisions": []interface{}{
							map[string]interface{}{
								"slots": map[string]interface{}{
									"main": map[string]interface{}{"*": "slotted content"},
								},
							},
						},
					},
				},
			},
		})
	})

	text, err := client.GetPageWikitext(context.Background(), "Page")
	if err != nil {
		t.Fatalf("GetPageWikitext: %v", err)
	}
	if text != "slotted content" {
		t.Errorf("text = %q", text)
	}
}

func TestGetPageWikitextMissingPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]interface{}{
			"query": map[string]interface{}{
				"pages": map[string]interface{}{
					"-1": map[string]interface{}{"title": "Page", "missing": ""},
				},
			},
		})
	})

	text, err := client.GetPageWikitext(context.Background(), "Page")
	if err != nil {
		t.Fatalf("GetPageWikitext: %v", err)
	}
	if text != "" {
		t.Errorf("text = %q, want empty for a missing page", text)
	}
}

func TestGetPageHTML(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.FormValue("text"); got != "__NOEDITSECTION__{{:Page}}" {
			t.Errorf("parse text = %q", got)
		}
		writeJSON(t, w, map[string]interface{}{
			"parse": map[string]interface{}{
				"text": map[string]interface{}{"*": "<p>Rendered transcription.</p>"},
				"templates": []interface{}{
					map[string]interface{}{"*": "Page", "exists": ""},
				},
			},
		})
	})

	html, err := client.GetPageHTML(context.Background(), "Page")
	if err != nil {
		t.Fatalf("GetPageHTML: %v", err)
	}
	if html != "<p>Rendered transcription.</p>" {
		t.Errorf("html = %q", html)
	}
}

// Parsing a transclusion of a missing page yields a red link, not
// content. The exists flag on the template entry is the tell.
func TestGetPageHTMLMissingPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]interface{}{
			"parse": map[string]interface{}{
				"text": map[string]interface{}{"*": "<a class=\"new\" href=\"...\">Page</a>"},
				"templates": []interface{}{
					map[string]interface{}{"*": "Page"},
				},
			},
		})
	})

	html, err := client.GetPageHTML(context.Background(), "Page")
	if err != nil {
		t.Fatalf("GetPageHTML: %v", err)
	}
	if html != "" {
		t.Errorf("html = %q, want empty for a missing page", html)
	}
}

func TestPreview(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.FormValue("text"); got != "__NOEDITSECTION__'''bold'''" {
			t.Errorf("parse text = %q", got)
		}
		writeJSON(t, w, map[string]interface{}{
			"parse": map[string]interface{}{
				"text": map[string]interface{}{"*": "<p><b>bold</b></p>"},
			},
		})
	})

	html, err := client.Preview(context.Background(), "'''bold'''")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if html != "<p><b>bold</b></p>" {
		t.Errorf("html = %q", html)
	}
}

func TestGetSiteInfo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("meta") != "siteinfo" {
			t.Errorf("meta = %q", r.FormValue("meta"))
		}
		writeJSON(t, w, map[string]interface{}{
			"query": map[string]interface{}{
				"general": map[string]interface{}{
					"sitename":  "Transcription Wiki",
					"mainpage":  "Main Page",
					"generator": "MediaWiki 1.20.0",
					"lang":      "en",
				},
			},
		})
	})

	info, err := client.GetSiteInfo(context.Background())
	if err != nil {
		t.Fatalf("GetSiteInfo: %v", err)
	}
	if info.SiteName != "Transcription Wiki" || info.Generator != "MediaWiki 1.20.0" {
		t.Errorf("info = %+v", info)
	}
}

func TestStripTags(t *testing.T) {
	cases := []struct{ in, want string }{
		{"<p>plain</p>", "plain"},
		{"<p>one</p>\n<p>two</p>", "one\ntwo"},
		{"no markup", "no markup"},
		{"<a href=\"x\" title=\"y>z\">link</a>", "z\">link"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := StripTags(tc.in); got != tc.want {
			t.Errorf("StripTags(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
