package connector

import (
	"context"

	"github.com/askeland/scriptorium/wiki"
)

// Tool-facing argument and result types. These are the MCP wire shapes;
// the facade methods stay the programmatic API.

type LoginArgs struct {
	Username string `json:"username" jsonschema:"required,description=Wiki account name"`
	Password string `json:"password" jsonschema:"required,description=Wiki account password"`
}

type SessionStatus struct {
	LoggedIn   bool   `json:"logged_in"`
	UserName   string `json:"user_name,omitempty"`
	CanExport  bool   `json:"can_export"`
	CanProtect bool   `json:"can_protect"`
}

type DocumentArgs struct {
	DocumentID string `json:"document_id" jsonschema:"required,description=External system document ID"`
}

type DocumentInfo struct {
	ID    string     `json:"id"`
	Title string     `json:"title"`
	Pages []PageInfo `json:"pages"`
}

type PageInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PageRefArgs struct {
	DocumentID string `json:"document_id" jsonschema:"required,description=External system document ID"`
	PageID     string `json:"page_id,omitempty" jsonschema:"description=Page ID within the document (defaults to the first page)"`
	Talk       bool   `json:"talk,omitempty" jsonschema:"description=Address the discussion page instead of the transcription page"`
}

type GetPageArgs struct {
	DocumentID string `json:"document_id" jsonschema:"required,description=External system document ID"`
	PageID     string `json:"page_id,omitempty" jsonschema:"description=Page ID within the document (defaults to the first page)"`
	Talk       bool   `json:"talk,omitempty" jsonschema:"description=Read the discussion page instead of the transcription page"`
	Format     string `json:"format,omitempty" jsonschema:"description=Content format: wikitext (default), html, or plaintext"`
}

type PageContent struct {
	DocumentID string `json:"document_id"`
	PageID     string `json:"page_id"`
	PageName   string `json:"page_name"`
	WikiTitle  string `json:"wiki_title"`
	Format     string `json:"format"`
	Content    string `json:"content"`
	Created    bool   `json:"created"`
	Watched    bool   `json:"watched"`
	ImageURL   string `json:"image_url,omitempty"`
}

type PreviewArgs struct {
	Wikitext string `json:"wikitext" jsonschema:"required,description=Wikitext to render without saving"`
}

type PreviewResult struct {
	HTML string `json:"html"`
}

type EditArgs struct {
	DocumentID string `json:"document_id" jsonschema:"required,description=External system document ID"`
	PageID     string `json:"page_id,omitempty" jsonschema:"description=Page ID within the document (defaults to the first page)"`
	Talk       bool   `json:"talk,omitempty" jsonschema:"description=Edit the discussion page instead of the transcription page"`
	Text       string `json:"text" jsonschema:"required,description=New wikitext for the page"`
	Summary    string `json:"summary,omitempty" jsonschema:"description=Edit summary"`
}

type EditOutcome struct {
	WikiTitle     string `json:"wiki_title"`
	NewRevisionID int    `json:"new_revision_id"`
	NewPage       bool   `json:"new_page"`
}

type ProtectArgs struct {
	DocumentID string `json:"document_id" jsonschema:"required,description=External system document ID"`
	PageID     string `json:"page_id,omitempty" jsonschema:"description=Page ID within the document (defaults to the first page)"`
	Talk       bool   `json:"talk,omitempty" jsonschema:"description=Target the discussion page instead of the transcription page"`
	Unprotect  bool   `json:"unprotect,omitempty" jsonschema:"description=Lift the protection instead of applying it"`
}

type WatchArgs struct {
	DocumentID string `json:"document_id" jsonschema:"required,description=External system document ID"`
	PageID     string `json:"page_id,omitempty" jsonschema:"description=Page ID within the document (defaults to the first page)"`
	Unwatch    bool   `json:"unwatch,omitempty" jsonschema:"description=Remove the page from the watchlist instead of adding it"`
}

type PageStatus struct {
	WikiTitle string `json:"wiki_title"`
	Done      bool   `json:"done"`
}

type CanEditResult struct {
	WikiTitle string `json:"wiki_title"`
	CanEdit   bool   `json:"can_edit"`
}

type ImportPageArgs struct {
	DocumentID string `json:"document_id" jsonschema:"required,description=External system document ID"`
	PageID     string `json:"page_id,omitempty" jsonschema:"description=Page ID within the document (defaults to the first page)"`
	Kind       string `json:"kind,omitempty" jsonschema:"description=Content kind to export: plaintext (default), html, or wikitext"`
}

type ImportDocumentArgs struct {
	DocumentID string `json:"document_id" jsonschema:"required,description=External system document ID"`
	Kind       string `json:"kind,omitempty" jsonschema:"description=Content kind to export: plaintext (default), html, or wikitext"`
	Delimiter  string `json:"delimiter,omitempty" jsonschema:"description=Separator placed between page transcriptions (default blank line)"`
}

type ImportStatus struct {
	DocumentID string `json:"document_id"`
	PageID     string `json:"page_id,omitempty"`
	Imported   bool   `json:"imported"`
}

type ListArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"description=Maximum records to return (default 50)"`
}

type ListingRecord struct {
	DocumentID    string `json:"document_id"`
	DocumentTitle string `json:"document_title"`
	PageID        string `json:"page_id"`
	PageName      string `json:"page_name"`
	WikiTitle     string `json:"wiki_title"`
	User          string `json:"user,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
	Comment       string `json:"comment,omitempty"`
	ChangeType    string `json:"change_type,omitempty"`
	RevisionID    int    `json:"revision_id,omitempty"`
}

type ListingResult struct {
	Records []ListingRecord `json:"records"`
	Count   int             `json:"count"`
}

type WikiInfo struct {
	SiteName  string `json:"site_name"`
	MainPage  string `json:"main_page"`
	Generator string `json:"generator"`
	Language  string `json:"language"`
}

const defaultListLimit = 50

// SessionStatus reports the session user and its capabilities in one
// call.
func (c *Connector) SessionStatus(ctx context.Context) (SessionStatus, error) {
	loggedIn, err := c.IsLoggedIn(ctx)
	if err != nil {
		return SessionStatus{}, err
	}
	name, err := c.UserName(ctx)
	if err != nil {
		return SessionStatus{}, err
	}
	canExport, err := c.CanExport(ctx, nil)
	if err != nil {
		return SessionStatus{}, err
	}
	canProtect, err := c.CanProtect(ctx)
	if err != nil {
		return SessionStatus{}, err
	}
	return SessionStatus{
		LoggedIn:   loggedIn,
		UserName:   name,
		CanExport:  canExport,
		CanProtect: canProtect,
	}, nil
}

// GetDocument resolves a document and enumerates its pages.
func (c *Connector) GetDocument(ctx context.Context, args DocumentArgs) (DocumentInfo, error) {
	doc, err := c.Document(ctx, args.DocumentID)
	if err != nil {
		return DocumentInfo{}, err
	}
	pages, err := doc.Pages(ctx)
	if err != nil {
		return DocumentInfo{}, err
	}
	info := DocumentInfo{ID: doc.ID(), Title: doc.Title(), Pages: make([]PageInfo, 0, len(pages))}
	for _, p := range pages {
		info.Pages = append(info.Pages, PageInfo{ID: p.ID, Name: p.Name})
	}
	return info, nil
}

func (c *Connector) bindPage(ctx context.Context, documentID, pageID string) (*Document, error) {
	doc, err := c.Document(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if err := doc.SetPage(ctx, pageID); err != nil {
		return nil, err
	}
	return doc, nil
}

// GetPageContent reads one page of a document in the requested format.
func (c *Connector) GetPageContent(ctx context.Context, args GetPageArgs) (PageContent, error) {
	doc, err := c.bindPage(ctx, args.DocumentID, args.PageID)
	if err != nil {
		return PageContent{}, err
	}

	format := args.Format
	if format == "" {
		format = ImportWikitext
	}
	var content string
	switch {
	case args.Talk && format == ImportWikitext:
		content, err = doc.TalkPageWikitext(ctx)
	case args.Talk && format == ImportHTML:
		content, err = doc.TalkPageHTML(ctx)
	case args.Talk && format == ImportPlaintext:
		content, err = doc.TalkPagePlainText(ctx)
	case format == ImportWikitext:
		content, err = doc.TranscriptionPageWikitext(ctx)
	case format == ImportHTML:
		content, err = doc.TranscriptionPageHTML(ctx)
	case format == ImportPlaintext:
		content, err = doc.TranscriptionPagePlainText(ctx)
	default:
		return PageContent{}, &wiki.ParameterError{Action: "get_page", Param: "format"}
	}
	if err != nil {
		return PageContent{}, err
	}

	wikiTitle, err := doc.BaseTitle()
	if err != nil {
		return PageContent{}, err
	}
	created, err := doc.TranscriptionPageCreated()
	if err != nil {
		return PageContent{}, err
	}
	if args.Talk {
		wikiTitle, err = doc.TalkTitle()
		if err != nil {
			return PageContent{}, err
		}
		created, err = doc.TalkPageCreated()
		if err != nil {
			return PageContent{}, err
		}
	}
	watched, err := doc.Watched()
	if err != nil {
		return PageContent{}, err
	}
	imageURL, err := doc.PageImageURL(ctx)
	if err != nil {
		return PageContent{}, err
	}

	return PageContent{
		DocumentID: doc.ID(),
		PageID:     doc.PageID(),
		PageName:   doc.PageName(),
		WikiTitle:  wikiTitle,
		Format:     format,
		Content:    content,
		Created:    created,
		Watched:    watched,
		ImageURL:   imageURL,
	}, nil
}

// PreviewWikitext renders wikitext without saving anything.
func (c *Connector) PreviewWikitext(ctx context.Context, args PreviewArgs) (PreviewResult, error) {
	html, err := c.wiki.Preview(ctx, args.Wikitext)
	if err != nil {
		return PreviewResult{}, err
	}
	return PreviewResult{HTML: html}, nil
}

// EditPageContent saves new wikitext to a document page or its
// discussion page.
func (c *Connector) EditPageContent(ctx context.Context, args EditArgs) (EditOutcome, error) {
	doc, err := c.bindPage(ctx, args.DocumentID, args.PageID)
	if err != nil {
		return EditOutcome{}, err
	}

	var result wiki.EditResult
	var wikiTitle string
	if args.Talk {
		wikiTitle, _ = doc.TalkTitle()
		result, err = doc.EditTalkPage(ctx, args.Text, args.Summary)
	} else {
		wikiTitle, _ = doc.BaseTitle()
		result, err = doc.EditTranscriptionPage(ctx, args.Text, args.Summary)
	}
	if err != nil {
		return EditOutcome{}, err
	}
	return EditOutcome{
		WikiTitle:     wikiTitle,
		NewRevisionID: result.NewRevisionID,
		NewPage:       result.NewPage,
	}, nil
}

// SetProtection applies or lifts sysop protection on a document page or
// its discussion page.
func (c *Connector) SetProtection(ctx context.Context, args ProtectArgs) (PageStatus, error) {
	doc, err := c.bindPage(ctx, args.DocumentID, args.PageID)
	if err != nil {
		return PageStatus{}, err
	}

	switch {
	case args.Talk && args.Unprotect:
		err = doc.UnprotectTalkPage(ctx)
	case args.Talk:
		err = doc.ProtectTalkPage(ctx)
	case args.Unprotect:
		err = doc.UnprotectTranscriptionPage(ctx)
	default:
		err = doc.ProtectTranscriptionPage(ctx)
	}
	if err != nil {
		return PageStatus{}, err
	}

	wikiTitle, _ := doc.BaseTitle()
	if args.Talk {
		wikiTitle, _ = doc.TalkTitle()
	}
	return PageStatus{WikiTitle: wikiTitle, Done: true}, nil
}

// SetWatch adds or removes a document page on the session user's
// watchlist.
func (c *Connector) SetWatch(ctx context.Context, args WatchArgs) (PageStatus, error) {
	doc, err := c.bindPage(ctx, args.DocumentID, args.PageID)
	if err != nil {
		return PageStatus{}, err
	}
	if args.Unwatch {
		err = doc.UnwatchPage(ctx)
	} else {
		err = doc.WatchPage(ctx)
	}
	if err != nil {
		return PageStatus{}, err
	}
	wikiTitle, _ := doc.BaseTitle()
	return PageStatus{WikiTitle: wikiTitle, Done: true}, nil
}

// CheckEdit decides whether the session user may edit a page, from its
// live protections.
func (c *Connector) CheckEdit(ctx context.Context, args PageRefArgs) (CanEditResult, error) {
	doc, err := c.bindPage(ctx, args.DocumentID, args.PageID)
	if err != nil {
		return CanEditResult{}, err
	}
	var ok bool
	var wikiTitle string
	if args.Talk {
		wikiTitle, _ = doc.TalkTitle()
		ok, err = doc.CanEditTalkPage(ctx)
	} else {
		wikiTitle, _ = doc.BaseTitle()
		ok, err = doc.CanEditTranscriptionPage(ctx)
	}
	if err != nil {
		return CanEditResult{}, err
	}
	return CanEditResult{WikiTitle: wikiTitle, CanEdit: ok}, nil
}

// ImportPage exports one page's transcription to the external system.
func (c *Connector) ImportPage(ctx context.Context, args ImportPageArgs) (ImportStatus, error) {
	doc, err := c.bindPage(ctx, args.DocumentID, args.PageID)
	if err != nil {
		return ImportStatus{}, err
	}
	kind := args.Kind
	if kind == "" {
		kind = ImportPlaintext
	}
	if err := doc.ImportPageTranscription(ctx, kind); err != nil {
		return ImportStatus{}, err
	}
	return ImportStatus{DocumentID: doc.ID(), PageID: doc.PageID(), Imported: true}, nil
}

// ImportDocument exports a whole document's concatenated transcription
// to the external system.
func (c *Connector) ImportDocument(ctx context.Context, args ImportDocumentArgs) (ImportStatus, error) {
	doc, err := c.Document(ctx, args.DocumentID)
	if err != nil {
		return ImportStatus{}, err
	}
	kind := args.Kind
	if kind == "" {
		kind = ImportPlaintext
	}
	delimiter := args.Delimiter
	if delimiter == "" {
		delimiter = "\n\n"
	}
	if err := doc.ImportDocumentTranscription(ctx, kind, delimiter); err != nil {
		return ImportStatus{}, err
	}
	return ImportStatus{DocumentID: doc.ID(), Imported: true}, nil
}

// SiteInfo fetches general information about the wiki.
func (c *Connector) SiteInfo(ctx context.Context) (WikiInfo, error) {
	info, err := c.wiki.GetSiteInfo(ctx)
	if err != nil {
		return WikiInfo{}, err
	}
	return WikiInfo{
		SiteName:  info.SiteName,
		MainPage:  info.MainPage,
		Generator: info.Generator,
		Language:  info.Language,
	}, nil
}

func listingResult(records []DocumentPageRecord) ListingResult {
	out := ListingResult{Records: make([]ListingRecord, 0, len(records))}
	for _, r := range records {
		out.Records = append(out.Records, ListingRecord{
			DocumentID:    r.DocumentID,
			DocumentTitle: r.DocumentTitle,
			PageID:        r.PageID,
			PageName:      r.PageName,
			WikiTitle:     r.WikiTitle,
			User:          r.User,
			Timestamp:     r.Timestamp,
			Comment:       r.Comment,
			ChangeType:    r.ChangeType,
			RevisionID:    r.RevisionID,
		})
	}
	out.Count = len(out.Records)
	return out
}

// ListUserPages lists the session user's recently contributed document
// pages.
func (c *Connector) ListUserPages(ctx context.Context, args ListArgs) (ListingResult, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	records, err := c.UserDocumentPages(ctx, limit)
	if err != nil {
		return ListingResult{}, err
	}
	return listingResult(records), nil
}

// ListRecentChanges lists recently changed document pages.
func (c *Connector) ListRecentChanges(ctx context.Context, args ListArgs) (ListingResult, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	records, err := c.RecentChanges(ctx, limit)
	if err != nil {
		return ListingResult{}, err
	}
	return listingResult(records), nil
}

// ListWatchlist lists the document pages on the session user's
// watchlist.
func (c *Connector) ListWatchlist(ctx context.Context, args ListArgs) (ListingResult, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	records, err := c.Watchlist(ctx, limit)
	if err != nil {
		return ListingResult{}, err
	}
	return listingResult(records), nil
}

// ListAllPages enumerates every document page with content on the wiki.
func (c *Connector) ListAllPages(ctx context.Context, args ListArgs) (ListingResult, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	records, err := c.AllDocumentPages(ctx, limit)
	if err != nil {
		return ListingResult{}, err
	}
	return listingResult(records), nil
}
