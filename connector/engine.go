package connector

import (
	"context"
	"fmt"

	"github.com/askeland/scriptorium/metrics"
	"github.com/askeland/scriptorium/title"
	"github.com/askeland/scriptorium/wiki"
)

// listingPageSize is the fixed page size requested from the remote for
// every bulk listing.
const listingPageSize = 100

// DocumentPageRecord is one bulk-listing row that survived
// classification, joined with the external system's metadata.
type DocumentPageRecord struct {
	RemotePageID  int
	RevisionID    int
	OldRevisionID int
	WikiTitle     string
	ChangeType    string
	User          string
	Timestamp     string
	Comment       string
	Size          int

	DocumentID    string
	PageID        string
	DocumentTitle string
	PageName      string
}

// UserDocumentPages returns the session user's most recently contributed
// document pages, newest first, up to limit surviving records.
func (c *Connector) UserDocumentPages(ctx context.Context, limit int) ([]DocumentPageRecord, error) {
	user, err := c.wiki.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return c.traverse(ctx, "usercontribs", limit, func(cursor string) (wiki.ListingPage, error) {
		return c.wiki.UserContributions(ctx, user.Name, cursor, listingPageSize)
	})
}

// RecentChanges returns recent edits and creations of document pages, up
// to limit surviving records.
func (c *Connector) RecentChanges(ctx context.Context, limit int) ([]DocumentPageRecord, error) {
	return c.traverse(ctx, "recentchanges", limit, func(cursor string) (wiki.ListingPage, error) {
		return c.wiki.RecentChanges(ctx, cursor, listingPageSize)
	})
}

// Watchlist returns the document pages on the session user's watchlist,
// up to limit surviving records.
func (c *Connector) Watchlist(ctx context.Context, limit int) ([]DocumentPageRecord, error) {
	return c.traverse(ctx, "watchlist", limit, func(cursor string) (wiki.ListingPage, error) {
		return c.wiki.Watchlist(ctx, cursor, listingPageSize)
	})
}

// AllDocumentPages enumerates every document page with content on the
// wiki, up to limit surviving records.
func (c *Connector) AllDocumentPages(ctx context.Context, limit int) ([]DocumentPageRecord, error) {
	return c.traverse(ctx, "allpages", limit, func(cursor string) (wiki.ListingPage, error) {
		return c.wiki.AllPages(ctx, title.Prefix, cursor, listingPageSize)
	})
}

// traverse walks a continuation-token listing to completion or until
// limit surviving records have been collected, whichever comes first.
// The per-traversal metadata caches live and die inside this call:
// document titles can change between traversals, so nothing here may be
// shared across calls.
//
// A row is dropped, silently, when its title is not a document title,
// when it repeats a remote page ID already seen, or when the external
// system no longer has its page. The existence check deliberately comes
// before any name lookup: the adapter may fail fast on an ID it has
// never seen, and metadata must not be dereferenced for a row about to
// be discarded. Errors resolving a surviving row's required fields abort
// the whole traversal; reaching the limit does not, so a nil error
// distinguishes the two.
func (c *Connector) traverse(ctx context.Context, listing string, limit int, fetch func(cursor string) (wiki.ListingPage, error)) ([]DocumentPageRecord, error) {
	records := make([]DocumentPageRecord, 0, limit)
	seen := make(map[int]bool)
	documentTitles := make(map[string]string)
	pageNames := make(map[string]string)

	cursor := ""
	for {
		page, err := fetch(cursor)
		if err != nil {
			return nil, fmt.Errorf("%s listing fetch failed: %w", listing, err)
		}
		metrics.TraversalPagesFetched.WithLabelValues(listing).Inc()

		for _, row := range page.Rows {
			if row.PageID != 0 && seen[row.PageID] {
				metrics.TraversalRowsDropped.WithLabelValues(listing, "duplicate").Inc()
				continue
			}

			baseTitle := title.TrimNamespace(row.Title)
			if !title.HasPrefix(baseTitle) {
				metrics.TraversalRowsDropped.WithLabelValues(listing, "foreign").Inc()
				continue
			}
			documentID, pageID, err := title.Decode(baseTitle)
			if err != nil {
				metrics.TraversalRowsDropped.WithLabelValues(listing, "undecodable").Inc()
				continue
			}
			if row.PageID != 0 {
				seen[row.PageID] = true
			}

			// The external system may have deleted the page since it
			// was transcribed; such rows vanish from the listing rather
			// than erroring. An adapter failure here counts as the page
			// being gone.
			pageExists, err := c.adapter.DocumentPageExists(ctx, documentID, pageID)
			if err != nil || !pageExists {
				metrics.TraversalRowsDropped.WithLabelValues(listing, "deleted").Inc()
				continue
			}

			documentTitle, ok := documentTitles[documentID]
			metrics.RecordCacheAccess(ok)
			if !ok {
				documentTitle, err = c.adapter.DocumentTitle(ctx, documentID)
				if err != nil {
					return nil, fmt.Errorf("%s listing aborted resolving document %q title: %w", listing, documentID, err)
				}
				documentTitles[documentID] = documentTitle
			}

			nameKey := documentID + "/" + pageID
			pageName, ok := pageNames[nameKey]
			metrics.RecordCacheAccess(ok)
			if !ok {
				pageName, err = c.adapter.DocumentPageName(ctx, documentID, pageID)
				if err != nil {
					return nil, fmt.Errorf("%s listing aborted resolving page %q name: %w", listing, nameKey, err)
				}
				pageNames[nameKey] = pageName
			}

			records = append(records, DocumentPageRecord{
				RemotePageID:  row.PageID,
				RevisionID:    row.RevisionID,
				OldRevisionID: row.OldRevisionID,
				WikiTitle:     row.Title,
				ChangeType:    row.Type,
				User:          row.User,
				Timestamp:     row.Timestamp,
				Comment:       row.Comment,
				Size:          row.Size,
				DocumentID:    documentID,
				PageID:        pageID,
				DocumentTitle: documentTitle,
				PageName:      pageName,
			})
			if limit > 0 && len(records) >= limit {
				return records, nil
			}
		}

		if page.Cursor == "" {
			return records, nil
		}
		cursor = page.Cursor
	}
}
