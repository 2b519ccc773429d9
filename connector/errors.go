package connector

import "fmt"

// PageNotSetError is returned by every Document accessor that needs a
// bound page when called before SetPage. It signals caller misuse, not a
// remote condition, and is never retried.
type PageNotSetError struct {
	Operation string
}

func (e *PageNotSetError) Error() string {
	return fmt.Sprintf("the document page must be set before %s", e.Operation)
}

// NotFoundError reports a document or page the adapter does not know.
type NotFoundError struct {
	DocumentID string
	PageID     string
}

func (e *NotFoundError) Error() string {
	if e.PageID != "" {
		return fmt.Sprintf("document %q has no page %q", e.DocumentID, e.PageID)
	}
	return fmt.Sprintf("document %q does not exist", e.DocumentID)
}
