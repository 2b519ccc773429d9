// Package connector binds an external document-management system to a
// MediaWiki instance used for collaborative transcription. The external
// system stays the sole source of truth for document and page identity;
// the wiki holds the free-text transcription and discussion pages, whose
// titles reversibly encode the external identifiers.
package connector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/askeland/scriptorium/adapter"
	"github.com/askeland/scriptorium/wiki"
)

// DefaultExportGroups are the wiki groups allowed to export
// transcriptions back to the external system unless the caller says
// otherwise.
var DefaultExportGroups = []string{"sysop", "bureaucrat"}

// Connector is the top-level object tying the adapter capability to the
// authenticated wiki session.
type Connector struct {
	adapter adapter.Adapter
	wiki    *wiki.Client
	logger  *slog.Logger
}

// New constructs a Connector. The adapter is bound here, by injection,
// and never swapped afterwards.
func New(a adapter.Adapter, w *wiki.Client, logger *slog.Logger) *Connector {
	return &Connector{adapter: a, wiki: w, logger: logger}
}

// Login authenticates the wiki session and refreshes the session user.
func (c *Connector) Login(ctx context.Context, username, password string) error {
	return c.wiki.Login(ctx, username, password)
}

// Logout invalidates the wiki session.
func (c *Connector) Logout(ctx context.Context) error {
	return c.wiki.Logout(ctx)
}

// IsLoggedIn reports whether the session user is authenticated. An
// anonymous user has ID 0.
func (c *Connector) IsLoggedIn(ctx context.Context) (bool, error) {
	user, err := c.wiki.CurrentUser(ctx)
	if err != nil {
		return false, err
	}
	return !user.Anonymous(), nil
}

// UserName returns the session user's name.
func (c *Connector) UserName(ctx context.Context) (string, error) {
	user, err := c.wiki.CurrentUser(ctx)
	if err != nil {
		return "", err
	}
	return user.Name, nil
}

// CanExport reports whether the session user may export transcriptions
// to the external system. Membership in any one of the groups suffices;
// nil groups means DefaultExportGroups.
func (c *Connector) CanExport(ctx context.Context, groups []string) (bool, error) {
	if groups == nil {
		groups = DefaultExportGroups
	}
	user, err := c.wiki.CurrentUser(ctx)
	if err != nil {
		return false, err
	}
	for _, g := range groups {
		if user.InGroup(g) {
			return true, nil
		}
	}
	return false, nil
}

// CanProtect reports whether the session user may protect wiki pages.
func (c *Connector) CanProtect(ctx context.Context) (bool, error) {
	user, err := c.wiki.CurrentUser(ctx)
	if err != nil {
		return false, err
	}
	return user.HasRight("protect"), nil
}

// DocumentExists asks the adapter whether the document exists.
func (c *Connector) DocumentExists(ctx context.Context, documentID string) (bool, error) {
	return c.adapter.DocumentExists(ctx, documentID)
}

// Document returns the facade for one external document. The document
// must exist in the adapter; no page is bound yet.
func (c *Connector) Document(ctx context.Context, documentID string) (*Document, error) {
	if documentID == "" {
		return nil, fmt.Errorf("document ID must not be empty")
	}
	exists, err := c.adapter.DocumentExists(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("adapter lookup for document %q failed: %w", documentID, err)
	}
	if !exists {
		return nil, &NotFoundError{DocumentID: documentID}
	}
	docTitle, err := c.adapter.DocumentTitle(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("adapter title lookup for document %q failed: %w", documentID, err)
	}
	return &Document{
		connector: c,
		id:        documentID,
		title:     docTitle,
	}, nil
}
