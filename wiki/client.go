// Package wiki implements the authenticated MediaWiki API session used
// by the transcription connector: login/logout with cookie state,
// per-action security tokens, edit-conflict-guarded writes, page
// protection, watch state, and the raw continuation-token listings the
// query engine walks.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/askeland/scriptorium/metrics"
)

// Client handles communication with the MediaWiki API. A Client holds
// one logical session: the cookie jar is mutated in place by Login and
// Logout, so concurrent mutating calls require external serialization
// per title (the tokens and basetimestamp are consumed within one call).
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *slog.Logger

	// Authentication state
	mu       sync.RWMutex
	userInfo *UserInfo

	// Semaphore to cap concurrent requests
	semaphore chan struct{}
}

// NewClient creates a new MediaWiki API client
func NewClient(config *Config, logger *slog.Logger) *Client {
	jar, _ := cookiejar.New(nil)

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	maxConcurrent := config.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Jar:       jar,
			Transport: transport,
		},
		logger:    logger,
		semaphore: make(chan struct{}, maxConcurrent),
	}
}

// apiRequest makes a single request to the MediaWiki API. It validates
// the parameters against the action whitelist, posts the form, decodes
// the JSON body, and turns an error envelope into a RemoteServiceError.
// Transport failures are not retried.
func (c *Client) apiRequest(ctx context.Context, action string, params url.Values) (map[string]interface{}, error) {
	if params == nil {
		params = url.Values{}
	}
	if err := validateParams(action, params); err != nil {
		return nil, err
	}

	select {
	case c.semaphore <- struct{}{}:
		defer func() { <-c.semaphore }()
	case <-ctx.Done():
		return nil, fmt.Errorf("context cancelled while waiting for request slot: %w", ctx.Err())
	}

	params.Set("action", action)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.config.UserAgent)

	c.logger.Debug("API request", "action", action)

	start := time.Now()
	succeeded := false
	defer func() {
		metrics.RecordAPICall(action, time.Since(start).Seconds(), succeeded)
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: action, Err: err}
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, &TransportError{Op: action, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Op: action, Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(body))}
	}

	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &TransportError{Op: action, Err: fmt.Errorf("malformed response body: %w", err)}
	}

	if errObj, ok := result["error"].(map[string]interface{}); ok {
		rserr := &RemoteServiceError{
			Code: getString(errObj["code"]),
			Info: getString(errObj["info"]),
		}
		c.logger.Debug("API error envelope", "action", action, "code", rserr.Code)
		return nil, rserr
	}

	succeeded = true
	return result, nil
}

// resetCookies replaces the cookie jar, discarding all session state.
func (c *Client) resetCookies() {
	jar, _ := cookiejar.New(nil)
	c.httpClient.Jar = jar
}

// ExportCookies returns the session cookies for the API endpoint so a
// caller owning a request lifecycle can persist authentication state
// explicitly.
func (c *Client) ExportCookies() []*http.Cookie {
	u, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return nil
	}
	return c.httpClient.Jar.Cookies(u)
}

// ImportCookies installs previously exported session cookies, replacing
// any current session state.
func (c *Client) ImportCookies(cookies []*http.Cookie) error {
	u, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid API URL: %w", err)
	}
	c.resetCookies()
	c.httpClient.Jar.SetCookies(u, cookies)
	return nil
}

// queryBlock extracts the "query" object of a query response.
func queryBlock(resp map[string]interface{}, action string) (map[string]interface{}, error) {
	query, ok := resp["query"].(map[string]interface{})
	if !ok {
		return nil, &ProtocolError{Action: action, Detail: "missing query object"}
	}
	return query, nil
}

// firstPage returns the single page object of a titles= query response.
// MediaWiki keys the pages map by page ID ("-1" for missing pages).
func firstPage(query map[string]interface{}, action string) (map[string]interface{}, error) {
	pages, ok := query["pages"].(map[string]interface{})
	if !ok {
		return nil, &ProtocolError{Action: action, Detail: "missing pages object"}
	}
	for _, pageData := range pages {
		if page, ok := pageData.(map[string]interface{}); ok {
			return page, nil
		}
	}
	return nil, &ProtocolError{Action: action, Detail: "empty pages object"}
}

func getString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func getInt(v interface{}) int {
	f, _ := v.(float64)
	return int(f)
}

func getStringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
