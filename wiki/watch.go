package wiki

import (
	"context"
	"net/url"
)

// WatchPage adds a title to the session user's watchlist.
func (c *Client) WatchPage(ctx context.Context, title, token string) error {
	return c.setWatch(ctx, title, token, false)
}

// UnwatchPage removes a title from the session user's watchlist.
func (c *Client) UnwatchPage(ctx context.Context, title, token string) error {
	return c.setWatch(ctx, title, token, true)
}

func (c *Client) setWatch(ctx context.Context, title, token string, unwatch bool) error {
	if token == "" {
		fetched, err := c.GetToken(ctx, TokenWatch, title)
		if err != nil {
			return err
		}
		if fetched == "" {
			return &PermissionDeniedError{Title: title, Code: "notoken"}
		}
		token = fetched
	}

	params := url.Values{}
	params.Set("title", title)
	params.Set("token", token)
	if unwatch {
		params.Set("unwatch", "1")
	}

	if _, err := c.apiRequest(ctx, "watch", params); err != nil {
		return err
	}
	c.logger.Debug("Watch state changed", "title", title, "unwatch", unwatch)
	return nil
}
