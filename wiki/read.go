package wiki

import (
	"context"
	"net/url"
	"regexp"
)

// GetPageWikitext retrieves the current wikitext of a title. Returns an
// empty string for a page that has not been created.
func (c *Client) GetPageWikitext(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("prop", "revisions")
	params.Set("rvprop", "content")
	params.Set("rvlimit", "1")
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
	if _, missing := page["missing"]; missing {
		return "", nil
	}
	revs, ok := page["revisions"].([]interface{})
	if !ok || len(revs) == 0 {
		return "", nil
	}
	rev, ok := revs[0].(map[string]interface{})
	if !ok {
		return "", nil
	}
	// Older servers key the content as "*"; newer ones nest it in slots.
	if content := getString(rev["*"]); content != "" {
		return content, nil
	}
	if slots, ok := rev["slots"].(map[string]interface{}); ok {
		if main, ok := slots["main"].(map[string]interface{}); ok {
			return getString(main["*"]), nil
		}
	}
	return "", nil
}

// GetPageHTML retrieves the rendered HTML of a title by parsing a
// transclusion of it. Returns an empty string when the page has not been
// created: the only reliable indicator is the exists flag on the
// transcluded template entry, since parsing a missing page yields a red
// edit link instead of content.
func (c *Client) GetPageHTML(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	// __NOEDITSECTION__ keeps [edit] section links out of the rendering.
	params.Set("text", "__NOEDITSECTION__{{:"+title+"}}")

	resp, err := c.apiRequest(ctx, "parse", params)
	if err != nil {
		return "", err
	}
	parse, ok := resp["parse"].(map[string]interface{})
	if !ok {
		return "", &ProtocolError{Action: "parse", Detail: "missing parse object"}
	}

	exists := false
	if templates, ok := parse["templates"].([]interface{}); ok {
		for _, t := range templates {
			if tmpl, ok := t.(map[string]interface{}); ok {
				if _, present := tmpl["exists"]; present {
					exists = true
					break
				}
			}
		}
	}
	if !exists {
		return "", nil
	}
	return parseText(parse), nil
}

// Preview renders the provided wikitext as HTML without saving anything.
func (c *Client) Preview(ctx context.Context, wikitext string) (string, error) {
	params := url.Values{}
	params.Set("text", "__NOEDITSECTION__"+wikitext)

	resp, err := c.apiRequest(ctx, "parse", params)
	if err != nil {
		return "", err
	}
	parse, ok := resp["parse"].(map[string]interface{})
	if !ok {
		return "", &ProtocolError{Action: "parse", Detail: "missing parse object"}
	}
	return parseText(parse), nil
}

// parseText extracts the rendered HTML from a parse response, which
// carries it as {"text": {"*": "..."}}.
func parseText(parse map[string]interface{}) string {
	text, ok := parse["text"].(map[string]interface{})
	if !ok {
		return ""
	}
	return getString(text["*"])
}

// GetSiteInfo fetches the general site information block.
func (c *Client) GetSiteInfo(ctx context.Context) (SiteInfo, error) {
	params := url.Values{}
	params.Set("meta", "siteinfo")
	params.Set("siprop", "general")

	resp, err := c.apiRequest(ctx, "query", params)
	if err != nil {
		return SiteInfo{}, err
	}
	query, err := queryBlock(resp, "query")
	if err != nil {
		return SiteInfo{}, err
	}
	general, ok := query["general"].(map[string]interface{})
	if !ok {
		return SiteInfo{}, &ProtocolError{Action: "query", Detail: "missing general object"}
	}
	return SiteInfo{
		SiteName:  getString(general["sitename"]),
		MainPage:  getString(general["mainpage"]),
		Base:      getString(general["base"]),
		Generator: getString(general["generator"]),
		Language:  getString(general["lang"]),
		Server:    getString(general["server"]),
	}, nil
}

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// StripTags removes markup tags from rendered HTML, yielding plain text.
// The facade derives plain-text page content from HTML with this rather
// than a separate remote call.
func StripTags(html string) string {
	return htmlTagRegex.ReplaceAllString(html, "")
}
