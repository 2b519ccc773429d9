// Package adapter defines the capability a document-owning external
// system must implement for the connector to consume. The external
// system remains the sole source of truth for document and page identity
// and metadata; the connector only reads it and pushes completed
// transcriptions back.
package adapter

import (
	"context"
	"fmt"
)

// Page is one document page as declared by the external system. IDs are
// opaque and unique within their document; names need not be unique.
type Page struct {
	ID   string
	Name string
}

// Adapter is implemented by the external system and bound at
// construction time. All calls are synchronous; errors are adapter-
// defined and treated by the connector as fatal for the single record
// being resolved, not for a whole traversal.
type Adapter interface {
	// DocumentExists reports whether the document exists.
	DocumentExists(ctx context.Context, documentID string) (bool, error)

	// DocumentPageExists reports whether the page exists within the
	// document.
	DocumentPageExists(ctx context.Context, documentID, pageID string) (bool, error)

	// DocumentTitle returns the document's title.
	DocumentTitle(ctx context.Context, documentID string) (string, error)

	// DocumentPages enumerates the document's pages in stable,
	// sequential page order.
	DocumentPages(ctx context.Context, documentID string) ([]Page, error)

	// DocumentFirstPageID returns the ID of the document's first page.
	DocumentFirstPageID(ctx context.Context, documentID string) (string, error)

	// DocumentPageName returns the display name of a page.
	DocumentPageName(ctx context.Context, documentID, pageID string) (string, error)

	// DocumentPageImageURL returns the URL of the page's facsimile
	// image.
	DocumentPageImageURL(ctx context.Context, documentID, pageID string) (string, error)

	// ImportDocumentPageTranscription stores a completed page
	// transcription in the external system.
	ImportDocumentPageTranscription(ctx context.Context, documentID, pageID, text string) error

	// ImportDocumentTranscription stores a completed whole-document
	// transcription in the external system.
	ImportDocumentTranscription(ctx context.Context, documentID, text string) error

	// DocumentPageTranscriptionImported reports whether the page's
	// transcription was already exported.
	DocumentPageTranscriptionImported(ctx context.Context, documentID, pageID string) (bool, error)

	// DocumentTranscriptionImported reports whether the whole document's
	// transcription was already exported.
	DocumentTranscriptionImported(ctx context.Context, documentID string) (bool, error)
}

// NotFoundError is returned by the in-memory adapter for unknown IDs.
// External implementations are free to use their own error types.
type NotFoundError struct {
	DocumentID string
	PageID     string
}

func (e *NotFoundError) Error() string {
	if e.PageID != "" {
		return fmt.Sprintf("adapter: document %q has no page %q", e.DocumentID, e.PageID)
	}
	return fmt.Sprintf("adapter: no document %q", e.DocumentID)
}
