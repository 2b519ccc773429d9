package wiki

import (
	"context"
	"net/url"
	"strconv"
)

// The bulk listings are exposed by the remote only as successive pages
// gated by a continuation cursor. Each method here fetches exactly one
// page and hands back the rows plus the cursor for the next request; the
// cursor is opaque and must be resubmitted verbatim. Walking the whole
// stream is the query engine's job, not the client's.

// UserContributions fetches one page of a user's contributions. The
// listing can repeat a row across page boundaries, so consumers must
// deduplicate by remote page ID.
func (c *Client) UserContributions(ctx context.Context, username, cursor string, limit int) (ListingPage, error) {
	params := url.Values{}
	params.Set("list", "usercontribs")
	params.Set("ucuser", username)
	params.Set("ucprop", "ids|title|timestamp|comment|size")
	params.Set("uclimit", strconv.Itoa(limit))
	if cursor != "" {
		params.Set("ucstart", cursor)
	}
	return c.listingPage(ctx, params, "usercontribs", "ucstart")
}

// RecentChanges fetches one page of edits and page creations in the main
// namespace.
func (c *Client) RecentChanges(ctx context.Context, cursor string, limit int) (ListingPage, error) {
	params := url.Values{}
	params.Set("list", "recentchanges")
	params.Set("rctype", "edit|new")
	params.Set("rcprop", "user|timestamp|title|ids")
	params.Set("rcnamespace", "0")
	params.Set("rclimit", strconv.Itoa(limit))
	if cursor != "" {
		params.Set("rcstart", cursor)
	}
	return c.listingPage(ctx, params, "recentchanges", "rcstart")
}

// Watchlist fetches one page of the session user's watchlist.
func (c *Client) Watchlist(ctx context.Context, cursor string, limit int) (ListingPage, error) {
	params := url.Values{}
	params.Set("list", "watchlist")
	params.Set("wlprop", "ids|title|user|timestamp|comment")
	params.Set("wlnamespace", "0")
	params.Set("wllimit", strconv.Itoa(limit))
	if cursor != "" {
		params.Set("wlstart", cursor)
	}
	return c.listingPage(ctx, params, "watchlist", "wlstart")
}

// AllPages fetches one page of the wiki's main-namespace pages whose
// titles carry the given prefix. The prefix narrows the listing
// server-side; consumers still classify every row themselves.
func (c *Client) AllPages(ctx context.Context, prefix, cursor string, limit int) (ListingPage, error) {
	params := url.Values{}
	params.Set("list", "allpages")
	params.Set("apprefix", prefix)
	params.Set("apnamespace", "0")
	params.Set("aplimit", strconv.Itoa(limit))
	if cursor != "" {
		params.Set("apfrom", cursor)
	}
	return c.listingPage(ctx, params, "allpages", "apfrom")
}

func (c *Client) listingPage(ctx context.Context, params url.Values, listName, cursorParam string) (ListingPage, error) {
	resp, err := c.apiRequest(ctx, "query", params)
	if err != nil {
		return ListingPage{}, err
	}

	page := ListingPage{Cursor: continuationCursor(resp, listName, cursorParam)}

	query, ok := resp["query"].(map[string]interface{})
	if !ok {
		// An empty first page can omit the query block entirely.
		return page, nil
	}
	rows, ok := query[listName].([]interface{})
	if !ok {
		return page, nil
	}

	page.Rows = make([]ListingRow, 0, len(rows))
	for _, r := range rows {
		row, ok := r.(map[string]interface{})
		if !ok {
			continue
		}
		page.Rows = append(page.Rows, ListingRow{
			PageID:        getInt(row["pageid"]),
			RevisionID:    getInt(row["revid"]),
			OldRevisionID: getInt(row["old_revid"]),
			Title:         getString(row["title"]),
			Type:          getString(row["type"]),
			User:          getString(row["user"]),
			Timestamp:     getString(row["timestamp"]),
			Comment:       getString(row["comment"]),
			Size:          getInt(row["size"]),
		})
	}
	return page, nil
}

// continuationCursor extracts the next-page cursor from a listing
// response. Absence means end of stream. Both envelope styles are
// understood: the flat continue block and the older query-continue block
// keyed by listing name.
func continuationCursor(resp map[string]interface{}, listName, cursorParam string) string {
	if cont, ok := resp["continue"].(map[string]interface{}); ok {
		if v := getString(cont[cursorParam]); v != "" {
			return v
		}
	}
	if qc, ok := resp["query-continue"].(map[string]interface{}); ok {
		if listCont, ok := qc[listName].(map[string]interface{}); ok {
			if v := getString(listCont[cursorParam]); v != "" {
				return v
			}
		}
	}
	return ""
}
