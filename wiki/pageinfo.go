package wiki

import (
	"context"
	"fmt"
	"net/url"
)

// GetToken fetches a single-use token scoped to a title. Kind is one of
// TokenEdit, TokenProtect, TokenWatch. An empty return with nil error
// means the session user lacks the right the token would exercise;
// consumers must handle the absence rather than assume presence. Tokens
// are short-lived and must not be cached beyond one page-bind cycle.
func (c *Client) GetToken(ctx context.Context, kind, title string) (string, error) {
	switch kind {
	case TokenEdit, TokenProtect, TokenWatch:
	default:
		return "", fmt.Errorf("unknown token kind %q", kind)
	}

	params := url.Values{}
	params.Set("prop", "info")
	params.Set("intoken", kind)
	params.Set("titles", title)

	resp, err := c.apiRequest(ctx, "query", params)
	if err != nil {
		return "", err
	}
	query, err := queryBlock(resp, "query")
	if err != nil {
		return "", err
	}
	page, err := firstPage(query, "query")
	if err != nil {
		return "", err
	}
	return getString(page[kind+"token"]), nil
}

// GetPageInfo fetches a fresh per-title snapshot: remote page ID, latest
// revision, length, all three tokens, protections, and watch state. One
// round trip covers everything a page bind needs. The result must be
// discarded after any mutating call against the title, since the tokens
// and revision data are then stale.
func (c *Client) GetPageInfo(ctx context.Context, title string) (PageInfo, error) {
	params := url.Values{}
	params.Set("prop", "info|revisions")
	params.Set("intoken", "edit|protect|watch")
	params.Set("inprop", "protection|watched")
	params.Set("rvprop", "ids|timestamp")
	params.Set("rvlimit", "1")
	params.Set("titles", title)

	resp, err := c.apiRequest(ctx, "query", params)
	if err != nil {
		return PageInfo{}, err
	}
	query, err := queryBlock(resp, "query")
	if err != nil {
		return PageInfo{}, err
	}
	page, err := firstPage(query, "query")
	if err != nil {
		return PageInfo{}, err
	}

	_, missing := page["missing"]

	info := PageInfo{
		Title:        title,
		Exists:       !missing,
		Length:       getInt(page["length"]),
		Touched:      getString(page["touched"]),
		EditToken:    getString(page["edittoken"]),
		ProtectToken: getString(page["protecttoken"]),
		WatchToken:   getString(page["watchtoken"]),
		Protections:  parseProtections(page["protection"]),
	}
	if !missing {
		info.PageID = getInt(page["pageid"])
		info.LastRevisionID = getInt(page["lastrevid"])
	}
	if _, ok := page["watched"]; ok {
		info.Watched = true
	}
	if revs, ok := page["revisions"].([]interface{}); ok && len(revs) > 0 {
		if rev, ok := revs[0].(map[string]interface{}); ok {
			info.BaseTimestamp = getString(rev["timestamp"])
		}
	}
	return info, nil
}

// PageCreated reports whether the title has been created on the wiki.
func (c *Client) PageCreated(ctx context.Context, title string) (bool, error) {
	params := url.Values{}
	params.Set("titles", title)

	resp, err := c.apiRequest(ctx, "query", params)
	if err != nil {
		return false, err
	}
	query, err := queryBlock(resp, "query")
	if err != nil {
		return false, err
	}
	page, err := firstPage(query, "query")
	if err != nil {
		return false, err
	}
	_, missing := page["missing"]
	return !missing, nil
}

// GetPageProtections returns the protection entries of a title.
func (c *Client) GetPageProtections(ctx context.Context, title string) ([]Protection, error) {
	params := url.Values{}
	params.Set("prop", "info")
	params.Set("inprop", "protection")
	params.Set("titles", title)

	resp, err := c.apiRequest(ctx, "query", params)
	if err != nil {
		return nil, err
	}
	query, err := queryBlock(resp, "query")
	if err != nil {
		return nil, err
	}
	page, err := firstPage(query, "query")
	if err != nil {
		return nil, err
	}
	return parseProtections(page["protection"]), nil
}

func parseProtections(v interface{}) []Protection {
	entries, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]Protection, 0, len(entries))
	for _, e := range entries {
		entry, ok := e.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, Protection{
			Type:   getString(entry["type"]),
			Level:  getString(entry["level"]),
			Expiry: getString(entry["expiry"]),
		})
	}
	return out
}
