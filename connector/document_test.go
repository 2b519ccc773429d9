package connector

import (
	"context"
	"errors"
	"testing"

	"github.com/askeland/scriptorium/title"
)

func TestSetPageBindsFirstPageByDefault(t *testing.T) {
	fake := newFakeWiki(t)
	conn := newTestConnector(t, fake, seededAdapter())

	doc := mustBind(t, conn, "16344", "")
	if doc.PageID() != "67799" || doc.PageName() != "Folio 1r" {
		t.Errorf("bound page = %q %q", doc.PageID(), doc.PageName())
	}

	want, _ := title.Encode("16344", "67799")
	base, err := doc.BaseTitle()
	if err != nil || base != want {
		t.Errorf("BaseTitle = %q, %v; want %q", base, err, want)
	}
	talk, err := doc.TalkTitle()
	if err != nil || talk != "Talk:"+want {
		t.Errorf("TalkTitle = %q, %v", talk, err)
	}
}

func TestSetPageUnknownPage(t *testing.T) {
	fake := newFakeWiki(t)
	conn := newTestConnector(t, fake, seededAdapter())

	doc, err := conn.Document(context.Background(), "16344")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	err = doc.SetPage(context.Background(), "nosuchpage")
	var nferr *NotFoundError
	if !errors.As(err, &nferr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nferr.PageID != "nosuchpage" {
		t.Errorf("error = %+v", nferr)
	}
}

func TestUnboundOperationsFail(t *testing.T) {
	fake := newFakeWiki(t)
	conn := newTestConnector(t, fake, seededAdapter())

	doc, err := conn.Document(context.Background(), "16344")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}

	_, err = doc.TranscriptionPageWikitext(context.Background())
	var pnerr *PageNotSetError
	if !errors.As(err, &pnerr) {
		t.Fatalf("expected PageNotSetError, got %v", err)
	}
	if pnerr.Operation != "TranscriptionPageWikitext" {
		t.Errorf("operation = %q", pnerr.Operation)
	}

	if _, err := doc.EditTranscriptionPage(context.Background(), "text", ""); !errors.As(err, &pnerr) {
		t.Errorf("EditTranscriptionPage unbound: %v", err)
	}
	if err := doc.ProtectTranscriptionPage(context.Background()); !errors.As(err, &pnerr) {
		t.Errorf("ProtectTranscriptionPage unbound: %v", err)
	}
	if err := doc.WatchPage(context.Background()); !errors.As(err, &pnerr) {
		t.Errorf("WatchPage unbound: %v", err)
	}
	if err := doc.ImportPageTranscription(context.Background(), ImportPlaintext); !errors.As(err, &pnerr) {
		t.Errorf("ImportPageTranscription unbound: %v", err)
	}
}

func TestEditTranscriptionPageUsesBoundToken(t *testing.T) {
	fake := newFakeWiki(t)
	conn := newTestConnector(t, fake, seededAdapter())

	doc := mustBind(t, conn, "16344", "67799")
	result, err := doc.EditTranscriptionPage(context.Background(), "== Folio 1r ==\nText.", "first pass")
	if err != nil {
		t.Fatalf("EditTranscriptionPage: %v", err)
	}
	if result.NewRevisionID == 0 {
		t.Errorf("result = %+v", result)
	}

	if len(fake.editForms) != 1 {
		t.Fatalf("edit requests = %d, want 1", len(fake.editForms))
	}
	form := fake.editForms[0]
	base, _ := doc.BaseTitle()
	if form.Get("title") != base {
		t.Errorf("edit title = %q, want %q", form.Get("title"), base)
	}
	if form.Get("token") != "edit-token+\\" {
		t.Errorf("edit token = %q", form.Get("token"))
	}
	if form.Get("summary") != "first pass" {
		t.Errorf("summary = %q", form.Get("summary"))
	}

	// The edit created the page; the refreshed snapshot must say so.
	created, err := doc.TranscriptionPageCreated()
	if err != nil || !created {
		t.Errorf("TranscriptionPageCreated = %v, %v; want true", created, err)
	}

	text, err := doc.TranscriptionPageWikitext(context.Background())
	if err != nil {
		t.Fatalf("TranscriptionPageWikitext: %v", err)
	}
	if text != "== Folio 1r ==\nText." {
		t.Errorf("text = %q", text)
	}
}

func TestEditTalkPageTargetsTalkTitle(t *testing.T) {
	fake := newFakeWiki(t)
	conn := newTestConnector(t, fake, seededAdapter())

	doc := mustBind(t, conn, "16344", "67799")
	if _, err := doc.EditTalkPage(context.Background(), "A question about line 3.", ""); err != nil {
		t.Fatalf("EditTalkPage: %v", err)
	}
	talk, _ := doc.TalkTitle()
	if got := fake.editForms[0].Get("title"); got != talk {
		t.Errorf("edit title = %q, want %q", got, talk)
	}

	text, err := doc.TalkPageWikitext(context.Background())
	if err != nil || text != "A question about line 3." {
		t.Errorf("talk text = %q, %v", text, err)
	}
}

func TestTranscriptionPageRenderings(t *testing.T) {
	fake := newFakeWiki(t)
	conn := newTestConnector(t, fake, seededAdapter())

	doc := mustBind(t, conn, "16344", "67799")

	// Nothing transcribed yet: every rendering is empty, without error.
	html, err := doc.TranscriptionPageHTML(context.Background())
	if err != nil || html != "" {
		t.Errorf("HTML of missing page = %q, %v", html, err)
	}

	if _, err := doc.EditTranscriptionPage(context.Background(), "Transcribed text.", ""); err != nil {
		t.Fatalf("EditTranscriptionPage: %v", err)
	}

	html, err = doc.TranscriptionPageHTML(context.Background())
	if err != nil || html != "<p>Transcribed text.</p>" {
		t.Errorf("HTML = %q, %v", html, err)
	}
	plain, err := doc.TranscriptionPagePlainText(context.Background())
	if err != nil || plain != "Transcribed text." {
		t.Errorf("plain text = %q, %v", plain, err)
	}
}

func TestProtectTranscriptionPage(t *testing.T) {
	fake := newFakeWiki(t)
	conn := newTestConnector(t, fake, seededAdapter())

	doc := mustBind(t, conn, "16344", "67799")
	if err := doc.ProtectTranscriptionPage(context.Background()); err != nil {
		t.Fatalf("ProtectTranscriptionPage: %v", err)
	}
	if len(fake.protectForms) != 1 {
		t.Fatalf("protect requests = %d", len(fake.protectForms))
	}
	// The page was never created, so the protection targets creation.
	if got := fake.protectForms[0].Get("protections"); got != "create=sysop" {
		t.Errorf("protections = %q, want create=sysop", got)
	}

	if _, err := doc.EditTranscriptionPage(context.Background(), "text", ""); err != nil {
		t.Fatalf("EditTranscriptionPage: %v", err)
	}
	if err := doc.ProtectTranscriptionPage(context.Background()); err != nil {
		t.Fatalf("ProtectTranscriptionPage: %v", err)
	}
	if got := fake.protectForms[1].Get("protections"); got != "edit=sysop" {
		t.Errorf("protections = %q, want edit=sysop", got)
	}

	if err := doc.UnprotectTranscriptionPage(context.Background()); err != nil {
		t.Fatalf("UnprotectTranscriptionPage: %v", err)
	}
	if got := fake.protectForms[2].Get("protections"); got != "edit=all" {
		t.Errorf("protections = %q, want edit=all", got)
	}
}

func TestWatchAndUnwatch(t *testing.T) {
	fake := newFakeWiki(t)
	conn := newTestConnector(t, fake, seededAdapter())

	doc := mustBind(t, conn, "16344", "67799")
	if err := doc.WatchPage(context.Background()); err != nil {
		t.Fatalf("WatchPage: %v", err)
	}
	if err := doc.UnwatchPage(context.Background()); err != nil {
		t.Fatalf("UnwatchPage: %v", err)
	}
	if len(fake.watchForms) != 2 {
		t.Fatalf("watch requests = %d", len(fake.watchForms))
	}
	base, _ := doc.BaseTitle()
	if fake.watchForms[0].Get("title") != base || fake.watchForms[0].Get("unwatch") != "" {
		t.Errorf("watch form = %v", fake.watchForms[0])
	}
	if fake.watchForms[1].Get("unwatch") != "1" {
		t.Errorf("unwatch form = %v", fake.watchForms[1])
	}
}

func TestCanEditTranscriptionPage(t *testing.T) {
	fake := newFakeWiki(t)
	conn := newTestConnector(t, fake, seededAdapter())
	doc := mustBind(t, conn, "16344", "67799")

	// Fake user holds edit and protect, so protection does not stop it.
	ok, err := doc.CanEditTranscriptionPage(context.Background())
	if err != nil || !ok {
		t.Fatalf("CanEditTranscriptionPage = %v, %v; want true", ok, err)
	}

	// An editor without protect is stopped by an edit protection.
	limited := newFakeWiki(t)
	limited.user = map[string]interface{}{
		"id":     8,
		"name":   "Transcriber",
		"rights": []interface{}{"read", "edit"},
	}
	base, _ := title.Encode("16344", "67799")
	limited.protections[base] = []map[string]interface{}{
		{"type": "edit", "level": "sysop", "expiry": "infinity"},
	}
	conn = newTestConnector(t, limited, seededAdapter())
	doc = mustBind(t, conn, "16344", "67799")

	ok, err = doc.CanEditTranscriptionPage(context.Background())
	if err != nil || ok {
		t.Fatalf("CanEditTranscriptionPage = %v, %v; want false", ok, err)
	}
	ok, err = doc.CanEditTalkPage(context.Background())
	if err != nil || !ok {
		t.Fatalf("CanEditTalkPage = %v, %v; want true", ok, err)
	}
}

func TestImportPageTranscription(t *testing.T) {
	fake := newFakeWiki(t)
	mem := seededAdapter()
	conn := newTestConnector(t, fake, mem)

	doc := mustBind(t, conn, "16344", "67799")
	if _, err := doc.EditTranscriptionPage(context.Background(), "'''Folio''' text.", ""); err != nil {
		t.Fatalf("EditTranscriptionPage: %v", err)
	}

	if err := doc.ImportPageTranscription(context.Background(), ImportWikitext); err != nil {
		t.Fatalf("ImportPageTranscription: %v", err)
	}
	stored, ok := mem.ImportedPageTranscription("16344", "67799")
	if !ok || stored != "'''Folio''' text." {
		t.Errorf("stored = %q, %v", stored, ok)
	}

	if err := doc.ImportPageTranscription(context.Background(), ImportPlaintext); err != nil {
		t.Fatalf("ImportPageTranscription: %v", err)
	}
	stored, _ = mem.ImportedPageTranscription("16344", "67799")
	if stored != "'''Folio''' text." {
		t.Errorf("plaintext import = %q", stored)
	}

	imported, err := doc.PageTranscriptionImported(context.Background())
	if err != nil || !imported {
		t.Errorf("PageTranscriptionImported = %v, %v", imported, err)
	}

	if err := doc.ImportPageTranscription(context.Background(), "pdf"); err == nil {
		t.Error("unknown content kind must be rejected")
	}
}

func TestImportDocumentTranscription(t *testing.T) {
	fake := newFakeWiki(t)
	mem := seededAdapter()
	conn := newTestConnector(t, fake, mem)

	doc := mustBind(t, conn, "16344", "67799")
	if _, err := doc.EditTranscriptionPage(context.Background(), "Page one.", ""); err != nil {
		t.Fatalf("edit first page: %v", err)
	}
	if err := doc.SetPage(context.Background(), "67801"); err != nil {
		t.Fatalf("rebind: %v", err)
	}
	if _, err := doc.EditTranscriptionPage(context.Background(), "Page three.", ""); err != nil {
		t.Fatalf("edit third page: %v", err)
	}

	if err := doc.ImportDocumentTranscription(context.Background(), ImportWikitext, "\n\n"); err != nil {
		t.Fatalf("ImportDocumentTranscription: %v", err)
	}
	stored, ok := mem.ImportedDocumentTranscription("16344")
	if !ok {
		t.Fatal("document transcription not stored")
	}
	// The untranscribed middle page contributes an empty segment.
	if stored != "Page one.\n\n\n\nPage three." {
		t.Errorf("stored = %q", stored)
	}

	imported, err := doc.DocumentTranscriptionImported(context.Background())
	if err != nil || !imported {
		t.Errorf("DocumentTranscriptionImported = %v, %v", imported, err)
	}
}

func TestPreviewAndPageImageURL(t *testing.T) {
	fake := newFakeWiki(t)
	conn := newTestConnector(t, fake, seededAdapter())
	doc := mustBind(t, conn, "16344", "67799")

	html, err := doc.Preview(context.Background(), "draft text")
	if err != nil || html != "<p>draft text</p>" {
		t.Errorf("Preview = %q, %v", html, err)
	}

	url, err := doc.PageImageURL(context.Background())
	if err != nil || url == "" {
		t.Errorf("PageImageURL = %q, %v", url, err)
	}
}
