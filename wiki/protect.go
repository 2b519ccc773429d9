package wiki

import (
	"context"
	"errors"
	"net/url"
)

// ProtectPage applies sysop-only protection to a title. The target level
// depends on whether the page has been created: an existing page is
// protected against editing, a not-yet-created one against creation.
// This asymmetry is deliberate and must hold exactly; protecting a
// missing page must never issue an edit-level protection.
func (c *Client) ProtectPage(ctx context.Context, baseTitle, token string) error {
	return c.setProtections(ctx, baseTitle, token, "sysop")
}

// UnprotectPage lifts protection from a title, targeting the same level
// ProtectPage would have set for its current creation state.
func (c *Client) UnprotectPage(ctx context.Context, baseTitle, token string) error {
	return c.setProtections(ctx, baseTitle, token, "all")
}

func (c *Client) setProtections(ctx context.Context, title, token, level string) error {
	if token == "" {
		fetched, err := c.GetToken(ctx, TokenProtect, title)
		if err != nil {
			return err
		}
		if fetched == "" {
			return &PermissionDeniedError{Title: title, Code: "notoken"}
		}
		token = fetched
	}

	created, err := c.PageCreated(ctx, title)
	if err != nil {
		return err
	}
	protections := "create=" + level
	if created {
		protections = "edit=" + level
	}

	params := url.Values{}
	params.Set("title", title)
	params.Set("token", token)
	params.Set("protections", protections)

	if _, err := c.apiRequest(ctx, "protect", params); err != nil {
		var rserr *RemoteServiceError
		if errors.As(err, &rserr) && (rserr.Code == "permissiondenied" || rserr.Code == "badtoken" || rserr.Code == "cantedit") {
			return &PermissionDeniedError{Title: title, Code: rserr.Code}
		}
		return err
	}

	c.logger.Info("Protection changed", "title", title, "protections", protections)
	return nil
}

// CanEdit decides whether an actor holding the given rights may edit a
// page carrying the given protections. The decision is total over every
// combination: without the edit right the answer is no; an unprotected
// page needs only the edit right; any edit-type protection entry,
// regardless of how many entries of other types accompany it, raises the
// bar to the protect right. When entries disagree the most restrictive
// applicable one wins.
func CanEdit(user UserInfo, protections []Protection) bool {
	if !user.HasRight("edit") {
		return false
	}
	for _, p := range protections {
		if p.Type == "edit" {
			return user.HasRight("protect")
		}
	}
	return true
}
