package connector

import (
	"context"
	"fmt"
	"strings"

	"github.com/askeland/scriptorium/adapter"
	"github.com/askeland/scriptorium/title"
	"github.com/askeland/scriptorium/wiki"
)

// Transcription content kinds accepted by the import operations.
const (
	ImportPlaintext = "plaintext"
	ImportHTML      = "html"
	ImportWikitext  = "wikitext"
)

// Document is the facade for one external document. It starts unbound;
// SetPage binds it to a single page of the document, at which point the
// page-scoped operations become available. Binding snapshots the wiki
// state (tokens, base timestamps, protections) of both the transcription
// page and its talk page.
type Document struct {
	connector *Connector
	id        string
	title     string

	pageID    string
	pageName  string
	baseTitle string
	talkTitle string
	baseInfo  wiki.PageInfo
	talkInfo  wiki.PageInfo
}

// ID returns the external document identifier.
func (d *Document) ID() string { return d.id }

// Title returns the external document's title.
func (d *Document) Title() string { return d.title }

// Pages enumerates the document's pages in the external system's order.
func (d *Document) Pages(ctx context.Context) ([]adapter.Page, error) {
	return d.connector.adapter.DocumentPages(ctx, d.id)
}

// FirstPageID returns the ID of the document's first page.
func (d *Document) FirstPageID(ctx context.Context) (string, error) {
	return d.connector.adapter.DocumentFirstPageID(ctx, d.id)
}

// SetPage binds the document to one of its pages. An empty pageID binds
// the document's first page. The page must exist in the external
// system, and the derived wiki title must fit the title length limit;
// both checks happen before any wiki traffic. On success the wiki state
// of the transcription page and its talk page is fetched fresh, so a
// re-bind of the same page picks up remote changes.
func (d *Document) SetPage(ctx context.Context, pageID string) error {
	if pageID == "" {
		first, err := d.connector.adapter.DocumentFirstPageID(ctx, d.id)
		if err != nil {
			return fmt.Errorf("adapter first page lookup for document %q failed: %w", d.id, err)
		}
		pageID = first
	}
	exists, err := d.connector.adapter.DocumentPageExists(ctx, d.id, pageID)
	if err != nil {
		return fmt.Errorf("adapter page lookup for %q/%q failed: %w", d.id, pageID, err)
	}
	if !exists {
		return &NotFoundError{DocumentID: d.id, PageID: pageID}
	}
	pageName, err := d.connector.adapter.DocumentPageName(ctx, d.id, pageID)
	if err != nil {
		return fmt.Errorf("adapter page name lookup for %q/%q failed: %w", d.id, pageID, err)
	}
	baseTitle, err := title.Encode(d.id, pageID)
	if err != nil {
		return err
	}

	d.pageID = pageID
	d.pageName = pageName
	d.baseTitle = baseTitle
	d.talkTitle = title.Talk(baseTitle)
	return d.RefreshPageInfo(ctx)
}

// RefreshPageInfo re-fetches the wiki state of both bound pages. Edit
// and protect operations call this themselves after writing.
func (d *Document) RefreshPageInfo(ctx context.Context) error {
	if err := d.requirePage("RefreshPageInfo"); err != nil {
		return err
	}
	baseInfo, err := d.connector.wiki.GetPageInfo(ctx, d.baseTitle)
	if err != nil {
		return err
	}
	talkInfo, err := d.connector.wiki.GetPageInfo(ctx, d.talkTitle)
	if err != nil {
		return err
	}
	d.baseInfo = baseInfo
	d.talkInfo = talkInfo
	return nil
}

// PageID returns the bound page's external identifier.
func (d *Document) PageID() string { return d.pageID }

// PageName returns the bound page's display name.
func (d *Document) PageName() string { return d.pageName }

// BaseTitle returns the wiki title of the bound transcription page.
func (d *Document) BaseTitle() (string, error) {
	if err := d.requirePage("BaseTitle"); err != nil {
		return "", err
	}
	return d.baseTitle, nil
}

// TalkTitle returns the wiki title of the bound page's talk page.
func (d *Document) TalkTitle() (string, error) {
	if err := d.requirePage("TalkTitle"); err != nil {
		return "", err
	}
	return d.talkTitle, nil
}

// PageImageURL returns the facsimile image URL of the bound page.
func (d *Document) PageImageURL(ctx context.Context) (string, error) {
	if err := d.requirePage("PageImageURL"); err != nil {
		return "", err
	}
	return d.connector.adapter.DocumentPageImageURL(ctx, d.id, d.pageID)
}

// TranscriptionPageCreated reports whether the bound transcription page
// exists on the wiki as of the last refresh.
func (d *Document) TranscriptionPageCreated() (bool, error) {
	if err := d.requirePage("TranscriptionPageCreated"); err != nil {
		return false, err
	}
	return d.baseInfo.Exists, nil
}

// TalkPageCreated reports whether the bound talk page exists on the wiki
// as of the last refresh.
func (d *Document) TalkPageCreated() (bool, error) {
	if err := d.requirePage("TalkPageCreated"); err != nil {
		return false, err
	}
	return d.talkInfo.Exists, nil
}

// Watched reports whether the session user watches the bound
// transcription page, as of the last refresh.
func (d *Document) Watched() (bool, error) {
	if err := d.requirePage("Watched"); err != nil {
		return false, err
	}
	return d.baseInfo.Watched, nil
}

// TranscriptionPageWikitext returns the raw wikitext of the bound
// transcription page. Missing pages read as empty.
func (d *Document) TranscriptionPageWikitext(ctx context.Context) (string, error) {
	if err := d.requirePage("TranscriptionPageWikitext"); err != nil {
		return "", err
	}
	return d.connector.wiki.GetPageWikitext(ctx, d.baseTitle)
}

// TranscriptionPageHTML returns the bound transcription page rendered to
// HTML. Missing pages render as empty.
func (d *Document) TranscriptionPageHTML(ctx context.Context) (string, error) {
	if err := d.requirePage("TranscriptionPageHTML"); err != nil {
		return "", err
	}
	return d.connector.wiki.GetPageHTML(ctx, d.baseTitle)
}

// TranscriptionPagePlainText returns the rendered transcription with all
// markup stripped.
func (d *Document) TranscriptionPagePlainText(ctx context.Context) (string, error) {
	html, err := d.TranscriptionPageHTML(ctx)
	if err != nil {
		return "", err
	}
	return wiki.StripTags(html), nil
}

// TalkPageWikitext returns the raw wikitext of the bound talk page.
func (d *Document) TalkPageWikitext(ctx context.Context) (string, error) {
	if err := d.requirePage("TalkPageWikitext"); err != nil {
		return "", err
	}
	return d.connector.wiki.GetPageWikitext(ctx, d.talkTitle)
}

// TalkPageHTML returns the bound talk page rendered to HTML.
func (d *Document) TalkPageHTML(ctx context.Context) (string, error) {
	if err := d.requirePage("TalkPageHTML"); err != nil {
		return "", err
	}
	return d.connector.wiki.GetPageHTML(ctx, d.talkTitle)
}

// TalkPagePlainText returns the rendered talk page with all markup
// stripped.
func (d *Document) TalkPagePlainText(ctx context.Context) (string, error) {
	html, err := d.TalkPageHTML(ctx)
	if err != nil {
		return "", err
	}
	return wiki.StripTags(html), nil
}

// Preview renders arbitrary wikitext to HTML without saving anything.
func (d *Document) Preview(ctx context.Context, wikitext string) (string, error) {
	return d.connector.wiki.Preview(ctx, wikitext)
}

// EditTranscriptionPage saves new wikitext to the bound transcription
// page using the edit token and base timestamp captured at the last
// refresh, so a save over a remote edit made since then fails with
// EditConflictError rather than clobbering it.
func (d *Document) EditTranscriptionPage(ctx context.Context, text, summary string) (wiki.EditResult, error) {
	if err := d.requirePage("EditTranscriptionPage"); err != nil {
		return wiki.EditResult{}, err
	}
	result, err := d.connector.wiki.EditPage(ctx, d.baseTitle, text, summary, d.baseInfo.EditToken)
	if err != nil {
		return wiki.EditResult{}, err
	}
	return result, d.RefreshPageInfo(ctx)
}

// EditTalkPage saves new wikitext to the bound talk page.
func (d *Document) EditTalkPage(ctx context.Context, text, summary string) (wiki.EditResult, error) {
	if err := d.requirePage("EditTalkPage"); err != nil {
		return wiki.EditResult{}, err
	}
	result, err := d.connector.wiki.EditPage(ctx, d.talkTitle, text, summary, d.talkInfo.EditToken)
	if err != nil {
		return wiki.EditResult{}, err
	}
	return result, d.RefreshPageInfo(ctx)
}

// ProtectTranscriptionPage restricts the bound transcription page to
// sysop edits (or sysop creation, if the page does not exist yet).
func (d *Document) ProtectTranscriptionPage(ctx context.Context) error {
	if err := d.requirePage("ProtectTranscriptionPage"); err != nil {
		return err
	}
	if err := d.connector.wiki.ProtectPage(ctx, d.baseTitle, d.baseInfo.ProtectToken); err != nil {
		return err
	}
	return d.RefreshPageInfo(ctx)
}

// UnprotectTranscriptionPage lifts the protection again.
func (d *Document) UnprotectTranscriptionPage(ctx context.Context) error {
	if err := d.requirePage("UnprotectTranscriptionPage"); err != nil {
		return err
	}
	if err := d.connector.wiki.UnprotectPage(ctx, d.baseTitle, d.baseInfo.ProtectToken); err != nil {
		return err
	}
	return d.RefreshPageInfo(ctx)
}

// ProtectTalkPage restricts the bound talk page to sysop edits.
func (d *Document) ProtectTalkPage(ctx context.Context) error {
	if err := d.requirePage("ProtectTalkPage"); err != nil {
		return err
	}
	if err := d.connector.wiki.ProtectPage(ctx, d.talkTitle, d.talkInfo.ProtectToken); err != nil {
		return err
	}
	return d.RefreshPageInfo(ctx)
}

// UnprotectTalkPage lifts the talk page protection again.
func (d *Document) UnprotectTalkPage(ctx context.Context) error {
	if err := d.requirePage("UnprotectTalkPage"); err != nil {
		return err
	}
	if err := d.connector.wiki.UnprotectPage(ctx, d.talkTitle, d.talkInfo.ProtectToken); err != nil {
		return err
	}
	return d.RefreshPageInfo(ctx)
}

// WatchPage puts the bound transcription page on the session user's
// watchlist.
func (d *Document) WatchPage(ctx context.Context) error {
	if err := d.requirePage("WatchPage"); err != nil {
		return err
	}
	if err := d.connector.wiki.WatchPage(ctx, d.baseTitle, d.baseInfo.WatchToken); err != nil {
		return err
	}
	return d.RefreshPageInfo(ctx)
}

// UnwatchPage removes the bound transcription page from the session
// user's watchlist.
func (d *Document) UnwatchPage(ctx context.Context) error {
	if err := d.requirePage("UnwatchPage"); err != nil {
		return err
	}
	if err := d.connector.wiki.UnwatchPage(ctx, d.baseTitle, d.baseInfo.WatchToken); err != nil {
		return err
	}
	return d.RefreshPageInfo(ctx)
}

// CanEditTranscriptionPage decides, from the session user's rights and
// the transcription page's live protections, whether an edit would be
// allowed.
func (d *Document) CanEditTranscriptionPage(ctx context.Context) (bool, error) {
	if err := d.requirePage("CanEditTranscriptionPage"); err != nil {
		return false, err
	}
	return d.canEdit(ctx, d.baseTitle)
}

// CanEditTalkPage decides whether the session user may edit the bound
// talk page.
func (d *Document) CanEditTalkPage(ctx context.Context) (bool, error) {
	if err := d.requirePage("CanEditTalkPage"); err != nil {
		return false, err
	}
	return d.canEdit(ctx, d.talkTitle)
}

func (d *Document) canEdit(ctx context.Context, pageTitle string) (bool, error) {
	user, err := d.connector.wiki.CurrentUser(ctx)
	if err != nil {
		return false, err
	}
	protections, err := d.connector.wiki.GetPageProtections(ctx, pageTitle)
	if err != nil {
		return false, err
	}
	return wiki.CanEdit(user, protections), nil
}

// ImportPageTranscription pushes the bound page's transcription to the
// external system in the requested content kind.
func (d *Document) ImportPageTranscription(ctx context.Context, kind string) error {
	if err := d.requirePage("ImportPageTranscription"); err != nil {
		return err
	}
	text, err := d.transcriptionContent(ctx, d.baseTitle, kind)
	if err != nil {
		return err
	}
	return d.connector.adapter.ImportDocumentPageTranscription(ctx, d.id, d.pageID, text)
}

// ImportDocumentTranscription concatenates every page's transcription in
// page order, joined by delimiter, and pushes the whole to the external
// system. Pages without a transcription contribute an empty segment.
func (d *Document) ImportDocumentTranscription(ctx context.Context, kind, delimiter string) error {
	pages, err := d.Pages(ctx)
	if err != nil {
		return err
	}
	segments := make([]string, 0, len(pages))
	for _, page := range pages {
		pageTitle, err := title.Encode(d.id, page.ID)
		if err != nil {
			return err
		}
		text, err := d.transcriptionContent(ctx, pageTitle, kind)
		if err != nil {
			return err
		}
		segments = append(segments, text)
	}
	return d.connector.adapter.ImportDocumentTranscription(ctx, d.id, strings.Join(segments, delimiter))
}

// PageTranscriptionImported reports whether the bound page's
// transcription was already exported to the external system.
func (d *Document) PageTranscriptionImported(ctx context.Context) (bool, error) {
	if err := d.requirePage("PageTranscriptionImported"); err != nil {
		return false, err
	}
	return d.connector.adapter.DocumentPageTranscriptionImported(ctx, d.id, d.pageID)
}

// DocumentTranscriptionImported reports whether the whole document's
// transcription was already exported.
func (d *Document) DocumentTranscriptionImported(ctx context.Context) (bool, error) {
	return d.connector.adapter.DocumentTranscriptionImported(ctx, d.id)
}

func (d *Document) transcriptionContent(ctx context.Context, pageTitle, kind string) (string, error) {
	switch kind {
	case ImportWikitext:
		return d.connector.wiki.GetPageWikitext(ctx, pageTitle)
	case ImportHTML:
		return d.connector.wiki.GetPageHTML(ctx, pageTitle)
	case ImportPlaintext:
		html, err := d.connector.wiki.GetPageHTML(ctx, pageTitle)
		if err != nil {
			return "", err
		}
		return wiki.StripTags(html), nil
	default:
		return "", fmt.Errorf("unknown transcription content kind %q", kind)
	}
}

func (d *Document) requirePage(operation string) error {
	if d.pageID == "" {
		return &PageNotSetError{Operation: operation}
	}
	return nil
}
