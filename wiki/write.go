package wiki

import (
	"context"
	"errors"
	"net/url"

	"github.com/askeland/scriptorium/metrics"
)

// EditPage writes new wikitext to a title. If token is empty, fresh edit
// credentials are fetched first. The latest revision timestamp is always
// submitted as basetimestamp: the remote rejects the write when a newer
// revision exists server-side, which is the sole edit-conflict detection
// mechanism. A detected conflict surfaces as *EditConflictError and a
// token or rights rejection as *PermissionDeniedError; the caller's text
// is never silently dropped.
func (c *Client) EditPage(ctx context.Context, title, text, summary, token string) (EditResult, error) {
	baseTimestamp := ""
	if token == "" {
		info, err := c.GetPageInfo(ctx, title)
		if err != nil {
			return EditResult{}, err
		}
		if info.EditToken == "" {
			return EditResult{}, &PermissionDeniedError{Title: title, Code: "notoken"}
		}
		token = info.EditToken
		baseTimestamp = info.BaseTimestamp
	} else {
		// A caller-supplied token still needs the conflict guard.
		info, err := c.GetPageInfo(ctx, title)
		if err != nil {
			return EditResult{}, err
		}
		baseTimestamp = info.BaseTimestamp
	}

	params := url.Values{}
	params.Set("title", title)
	params.Set("text", text)
	params.Set("token", token)
	if summary != "" {
		params.Set("summary", summary)
	}
	if baseTimestamp != "" {
		params.Set("basetimestamp", baseTimestamp)
	}

	resp, err := c.apiRequest(ctx, "edit", params)
	if err != nil {
		return EditResult{}, translateEditError(title, err)
	}

	edit, ok := resp["edit"].(map[string]interface{})
	if !ok {
		return EditResult{}, &ProtocolError{Action: "edit", Detail: "missing edit object"}
	}
	if result := getString(edit["result"]); result != "Success" {
		return EditResult{}, &ProtocolError{Action: "edit", Detail: "result " + result}
	}

	c.logger.Info("Page edited", "title", title, "revision", getInt(edit["newrevid"]))

	_, newPage := edit["new"]
	return EditResult{
		Title:         getString(edit["title"]),
		PageID:        getInt(edit["pageid"]),
		NewRevisionID: getInt(edit["newrevid"]),
		NewPage:       newPage,
	}, nil
}

// translateEditError maps the remote error codes an edit can return onto
// the domain error types. Everything else propagates unchanged.
func translateEditError(title string, err error) error {
	var rserr *RemoteServiceError
	if !errors.As(err, &rserr) {
		return err
	}
	switch rserr.Code {
	case "editconflict":
		metrics.EditConflicts.Inc()
		return &EditConflictError{Title: title}
	case "permissiondenied", "protectedpage", "protectedtitle", "badtoken", "noedit", "noedit-anon":
		return &PermissionDeniedError{Title: title, Code: rserr.Code}
	}
	return err
}
