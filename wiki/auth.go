package wiki

import (
	"context"
	"fmt"
	"net/url"

	"github.com/askeland/scriptorium/metrics"
)

// Login authenticates the session. The remote uses a two-step handshake:
// the first attempt may answer NeedToken with a confirmation token, in
// which case exactly one retry is made with the token attached. A second
// NeedToken is treated as a protocol failure rather than retried, so a
// misbehaving endpoint cannot loop us. On success the session cookies
// are kept in the jar for cross-request reuse and the cached user info
// is refreshed.
func (c *Client) Login(ctx context.Context, username, password string) error {
	params := url.Values{}
	params.Set("lgname", username)
	params.Set("lgpassword", password)

	result, err := c.loginAttempt(ctx, params)
	if err != nil {
		return err
	}

	if code := getString(result["result"]); code == LoginErrorNeedToken {
		params.Set("lgtoken", getString(result["token"]))
		result, err = c.loginAttempt(ctx, params)
		if err != nil {
			return err
		}
	}

	code := getString(result["result"])
	if code != LoginSuccess {
		c.logger.Warn("Login failed", "user", username, "code", code)
		metrics.AuthFailures.WithLabelValues(code).Inc()
		return loginFailure(code)
	}

	c.logger.Info("Logged in", "user", username)

	if err := c.RefreshUserInfo(ctx); err != nil {
		return fmt.Errorf("login succeeded but user info refresh failed: %w", err)
	}
	return nil
}

func (c *Client) loginAttempt(ctx context.Context, params url.Values) (map[string]interface{}, error) {
	resp, err := c.apiRequest(ctx, "login", params)
	if err != nil {
		return nil, err
	}
	login, ok := resp["login"].(map[string]interface{})
	if !ok {
		return nil, &ProtocolError{Action: "login", Detail: "missing login object"}
	}
	return login, nil
}

// Logout invalidates the remote session, clears the local cookie state,
// and resets the cached user info to anonymous.
func (c *Client) Logout(ctx context.Context) error {
	if _, err := c.apiRequest(ctx, "logout", nil); err != nil {
		return err
	}

	c.mu.Lock()
	c.resetCookies()
	c.userInfo = nil
	c.mu.Unlock()

	c.logger.Info("Logged out")

	return c.RefreshUserInfo(ctx)
}

// GetUserInfo fetches information about the session user from the
// remote service. Anonymous sessions report ID 0.
func (c *Client) GetUserInfo(ctx context.Context) (UserInfo, error) {
	params := url.Values{}
	params.Set("meta", "userinfo")
	params.Set("uiprop", "rights|groups|editcount")

	resp, err := c.apiRequest(ctx, "query", params)
	if err != nil {
		return UserInfo{}, err
	}
	query, err := queryBlock(resp, "query")
	if err != nil {
		return UserInfo{}, err
	}
	ui, ok := query["userinfo"].(map[string]interface{})
	if !ok {
		return UserInfo{}, &ProtocolError{Action: "query", Detail: "missing userinfo object"}
	}

	return UserInfo{
		ID:        getInt(ui["id"]),
		Name:      getString(ui["name"]),
		Rights:    getStringSlice(ui["rights"]),
		Groups:    getStringSlice(ui["groups"]),
		EditCount: getInt(ui["editcount"]),
	}, nil
}

// RefreshUserInfo re-fetches and caches the session user info. Called
// after login and logout; callers that hijack cookies (ImportCookies)
// should call it themselves.
func (c *Client) RefreshUserInfo(ctx context.Context) error {
	info, err := c.GetUserInfo(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.userInfo = &info
	c.mu.Unlock()
	return nil
}

// CurrentUser returns the cached session user info, fetching it on first
// use.
func (c *Client) CurrentUser(ctx context.Context) (UserInfo, error) {
	c.mu.RLock()
	cached := c.userInfo
	c.mu.RUnlock()
	if cached != nil {
		return *cached, nil
	}
	if err := c.RefreshUserInfo(ctx); err != nil {
		return UserInfo{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return *c.userInfo, nil
}
