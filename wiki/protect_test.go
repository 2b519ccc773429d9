package wiki

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
)

// protectServer answers the creation-state query and records the protect
// form. exists controls whether the title counts as created.
func protectServer(t *testing.T, exists bool, protectForm *url.Values) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.FormValue("action") {
		case "query":
			page := map[string]interface{}{"pageid": 42, "title": "Page", "protecttoken": "protect-token+\\"}
			key := "42"
			if !exists {
				page = map[string]interface{}{"title": "Page", "missing": "", "protecttoken": "protect-token+\\"}
				key = "-1"
			}
			writeJSON(t, w, map[string]interface{}{
				"query": map[string]interface{}{
					"pages": map[string]interface{}{key: page},
				},
			})
		case "protect":
			*protectForm = r.Form
			writeJSON(t, w, map[string]interface{}{
				"protect": map[string]interface{}{"title": "Page"},
			})
		}
	}
}

func TestProtectExistingPageTargetsEdit(t *testing.T) {
	var form url.Values
	client := newTestClient(t, protectServer(t, true, &form))

	if err := client.ProtectPage(context.Background(), "Page", "supplied-token"); err != nil {
		t.Fatalf("ProtectPage: %v", err)
	}
	if form.Get("protections") != "edit=sysop" {
		t.Errorf("protections = %q, want edit=sysop", form.Get("protections"))
	}
	if form.Get("token") != "supplied-token" {
		t.Errorf("token = %q", form.Get("token"))
	}
}

// A page that has never been created cannot be edit-protected; the
// protection must target creation instead.
func TestProtectMissingPageTargetsCreate(t *testing.T) {
	var form url.Values
	client := newTestClient(t, protectServer(t, false, &form))

	if err := client.ProtectPage(context.Background(), "Page", "supplied-token"); err != nil {
		t.Fatalf("ProtectPage: %v", err)
	}
	if form.Get("protections") != "create=sysop" {
		t.Errorf("protections = %q, want create=sysop", form.Get("protections"))
	}
}

func TestUnprotectPageTargetsAll(t *testing.T) {
	var form url.Values
	client := newTestClient(t, protectServer(t, true, &form))

	if err := client.UnprotectPage(context.Background(), "Page", "supplied-token"); err != nil {
		t.Fatalf("UnprotectPage: %v", err)
	}
	if form.Get("protections") != "edit=all" {
		t.Errorf("protections = %q, want edit=all", form.Get("protections"))
	}
}

func TestProtectFetchesTokenWhenEmpty(t *testing.T) {
	var form url.Values
	client := newTestClient(t, protectServer(t, true, &form))

	if err := client.ProtectPage(context.Background(), "Page", ""); err != nil {
		t.Fatalf("ProtectPage: %v", err)
	}
	if form.Get("token") != "protect-token+\\" {
		t.Errorf("token = %q, want the fetched protect token", form.Get("token"))
	}
}

func TestProtectWithoutRight(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("action") == "protect" {
			t.Error("no protect must be attempted without a token")
		}
		writeJSON(t, w, map[string]interface{}{
			"query": map[string]interface{}{
				"pages": map[string]interface{}{
					"42": map[string]interface{}{"pageid": 42, "title": "Page"},
				},
			},
		})
	})

	err := client.ProtectPage(context.Background(), "Page", "")
	var pderr *PermissionDeniedError
	if !errors.As(err, &pderr) {
		t.Fatalf("expected PermissionDeniedError, got %v", err)
	}
}

func TestCanEdit(t *testing.T) {
	reader := UserInfo{ID: 1, Rights: []string{"read"}}
	editor := UserInfo{ID: 2, Rights: []string{"read", "edit"}}
	sysop := UserInfo{ID: 3, Rights: []string{"read", "edit", "protect"}}

	editProtected := []Protection{{Type: "edit", Level: "sysop"}}
	moveProtected := []Protection{{Type: "move", Level: "sysop"}}
	mixed := []Protection{{Type: "move", Level: "sysop"}, {Type: "edit", Level: "sysop"}}

	cases := []struct {
		name        string
		user        UserInfo
		protections []Protection
		want        bool
	}{
		{"reader unprotected", reader, nil, false},
		{"reader edit-protected", reader, editProtected, false},
		{"editor unprotected", editor, nil, true},
		{"editor edit-protected", editor, editProtected, false},
		{"editor move-protected only", editor, moveProtected, true},
		{"editor mixed protections", editor, mixed, false},
		{"sysop edit-protected", sysop, editProtected, true},
		{"sysop mixed protections", sysop, mixed, true},
		{"sysop unprotected", sysop, nil, true},
	}
	for _, tc := range cases {
		if got := CanEdit(tc.user, tc.protections); got != tc.want {
			t.Errorf("%s: CanEdit = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestWatchPage(t *testing.T) {
	var form url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.FormValue("action") {
		case "query":
			writeJSON(t, w, map[string]interface{}{
				"query": map[string]interface{}{
					"pages": map[string]interface{}{
						"42": map[string]interface{}{"pageid": 42, "title": "Page", "watchtoken": "watch-token+\\"},
					},
				},
			})
		case "watch":
			form = r.Form
			writeJSON(t, w, map[string]interface{}{
				"watch": map[string]interface{}{"title": "Page", "watched": ""},
			})
		}
	})

	if err := client.WatchPage(context.Background(), "Page", ""); err != nil {
		t.Fatalf("WatchPage: %v", err)
	}
	if form.Get("token") != "watch-token+\\" {
		t.Errorf("token = %q", form.Get("token"))
	}
	if form.Get("unwatch") != "" {
		t.Error("watch request must not carry unwatch")
	}

	if err := client.UnwatchPage(context.Background(), "Page", "watch-token+\\"); err != nil {
		t.Fatalf("UnwatchPage: %v", err)
	}
	if form.Get("unwatch") != "1" {
		t.Errorf("unwatch = %q, want 1", form.Get("unwatch"))
	}
}
