package connector

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/askeland/scriptorium/adapter"
	"github.com/askeland/scriptorium/wiki"
)

// listingFixture is one served page of a bulk listing: its rows plus the
// cursor the fake hands out for the next page. An empty next ends the
// stream.
type listingFixture struct {
	rows []map[string]interface{}
	next string
}

// fakeWiki is a scriptable MediaWiki endpoint. Page content is keyed by
// title; a title present in content exists, everything else is missing.
// Listings are keyed by listing name and then by the cursor the request
// carries.
type fakeWiki struct {
	t *testing.T

	mu          sync.Mutex
	user        map[string]interface{}
	content     map[string]string
	protections map[string][]map[string]interface{}
	listings    map[string]map[string]listingFixture

	listRequests int
	editForms    []url.Values
	protectForms []url.Values
	watchForms   []url.Values
	nextRevision int
}

func newFakeWiki(t *testing.T) *fakeWiki {
	return &fakeWiki{
		t: t,
		user: map[string]interface{}{
			"id":     7,
			"name":   "TestUser",
			"rights": []interface{}{"read", "edit", "protect"},
			"groups": []interface{}{"user", "sysop"},
		},
		content:      make(map[string]string),
		protections:  make(map[string][]map[string]interface{}),
		listings:     make(map[string]map[string]listingFixture),
		nextRevision: 1000,
	}
}

func (f *fakeWiki) setListing(name, cursor string, fixture listingFixture) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listings[name] == nil {
		f.listings[name] = make(map[string]listingFixture)
	}
	f.listings[name][cursor] = fixture
}

var listingCursorParams = map[string]string{
	"usercontribs":  "ucstart",
	"recentchanges": "rcstart",
	"watchlist":     "wlstart",
	"allpages":      "apfrom",
}

func (f *fakeWiki) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.FormValue("action") {
	case "query":
		f.handleQuery(w, r)
	case "parse":
		f.handleParse(w, r)
	case "edit":
		f.editForms = append(f.editForms, r.Form)
		title := r.FormValue("title")
		f.content[title] = r.FormValue("text")
		f.nextRevision++
		f.respond(w, map[string]interface{}{
			"edit": map[string]interface{}{
				"result":   "Success",
				"title":    title,
				"newrevid": f.nextRevision,
			},
		})
	case "protect":
		f.protectForms = append(f.protectForms, r.Form)
		f.respond(w, map[string]interface{}{
			"protect": map[string]interface{}{"title": r.FormValue("title")},
		})
	case "watch":
		f.watchForms = append(f.watchForms, r.Form)
		f.respond(w, map[string]interface{}{
			"watch": map[string]interface{}{"title": r.FormValue("title")},
		})
	default:
		f.t.Errorf("unhandled action %q", r.FormValue("action"))
	}
}

func (f *fakeWiki) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("meta") == "userinfo" {
		f.respond(w, map[string]interface{}{
			"query": map[string]interface{}{"userinfo": f.user},
		})
		return
	}

	if list := r.FormValue("list"); list != "" {
		f.listRequests++
		cursor := r.FormValue(listingCursorParams[list])
		fixture, ok := f.listings[list][cursor]
		if !ok {
			f.t.Errorf("no %s fixture for cursor %q", list, cursor)
			f.respond(w, map[string]interface{}{})
			return
		}
		rows := make([]interface{}, 0, len(fixture.rows))
		for _, row := range fixture.rows {
			rows = append(rows, row)
		}
		resp := map[string]interface{}{
			"query": map[string]interface{}{list: rows},
		}
		if fixture.next != "" {
			resp["continue"] = map[string]interface{}{
				listingCursorParams[list]: fixture.next,
				"continue":                "-||",
			}
		}
		f.respond(w, resp)
		return
	}

	title := r.FormValue("titles")
	exists := false
	if _, ok := f.content[title]; ok {
		exists = true
	}

	// Content fetch against the revisions of one title.
	if strings.Contains(r.FormValue("rvprop"), "content") {
		page := map[string]interface{}{"title": title}
		key := "-1"
		if exists {
			key = "42"
			page["pageid"] = 42
			page["revisions"] = []interface{}{
				map[string]interface{}{"*": f.content[title]},
			}
		} else {
			page["missing"] = ""
		}
		f.respond(w, map[string]interface{}{
			"query": map[string]interface{}{
				"pages": map[string]interface{}{key: page},
			},
		})
		return
	}

	// Info snapshot of one title.
	page := map[string]interface{}{
		"title":        title,
		"edittoken":    "edit-token+\\",
		"protecttoken": "protect-token+\\",
		"watchtoken":   "watch-token+\\",
	}
	key := "-1"
	if exists {
		key = "42"
		page["pageid"] = 42
		page["lastrevid"] = f.nextRevision
		page["revisions"] = []interface{}{
			map[string]interface{}{"revid": f.nextRevision, "timestamp": "2026-08-21T00:00:00Z"},
		}
	} else {
		page["missing"] = ""
	}
	if prots := f.protections[title]; len(prots) > 0 {
		entries := make([]interface{}, 0, len(prots))
		for _, p := range prots {
			entries = append(entries, p)
		}
		page["protection"] = entries
	}
	f.respond(w, map[string]interface{}{
		"query": map[string]interface{}{
			"pages": map[string]interface{}{key: page},
		},
	})
}

func (f *fakeWiki) handleParse(w http.ResponseWriter, r *http.Request) {
	text := strings.TrimPrefix(r.FormValue("text"), "__NOEDITSECTION__")
	if strings.HasPrefix(text, "{{:") && strings.HasSuffix(text, "}}") {
		title := strings.TrimSuffix(strings.TrimPrefix(text, "{{:"), "}}")
		content, exists := f.content[title]
		tmpl := map[string]interface{}{"*": title}
		rendered := "<a class=\"new\">" + title + "</a>"
		if exists {
			tmpl["exists"] = ""
			rendered = "<p>" + content + "</p>"
		}
		f.respond(w, map[string]interface{}{
			"parse": map[string]interface{}{
				"text":      map[string]interface{}{"*": rendered},
				"templates": []interface{}{tmpl},
			},
		})
		return
	}
	f.respond(w, map[string]interface{}{
		"parse": map[string]interface{}{
			"text": map[string]interface{}{"*": "<p>" + text + "</p>"},
		},
	})
}

func (f *fakeWiki) respond(w http.ResponseWriter, v map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		f.t.Errorf("encode response: %v", err)
	}
}

// newTestConnector wires a connector to a fake wiki and an in-memory
// adapter.
func newTestConnector(t *testing.T, fake *fakeWiki, mem adapter.Adapter) *Connector {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	config := &wiki.Config{
		BaseURL:       server.URL,
		Timeout:       5 * time.Second,
		UserAgent:     "TestClient/1.0",
		MaxConcurrent: 3,
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(mem, wiki.NewClient(config, logger), logger)
}

func contribRow(pageID int, title string) map[string]interface{} {
	return map[string]interface{}{
		"pageid":    pageID,
		"revid":     pageID * 10,
		"title":     title,
		"user":      "TestUser",
		"timestamp": "2026-08-21T12:00:00Z",
		"comment":   "transcribed",
		"size":      100,
	}
}

func mustBind(t *testing.T, conn *Connector, documentID, pageID string) *Document {
	t.Helper()
	doc, err := conn.Document(context.Background(), documentID)
	if err != nil {
		t.Fatalf("Document(%q): %v", documentID, err)
	}
	if err := doc.SetPage(context.Background(), pageID); err != nil {
		t.Fatalf("SetPage(%q): %v", pageID, err)
	}
	return doc
}
