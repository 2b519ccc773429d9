package wiki

import "net/url"

// actionParams enumerates the permitted parameter names per protocol
// action. The request path rejects anything outside this whitelist before
// touching the network, so a typo in a parameter name fails loudly
// instead of being silently ignored by the remote service.
var actionParams = map[string]map[string]bool{
	"login": set(
		"lgname", "lgpassword", "lgtoken",
	),
	"logout": set(),
	"parse": set(
		"text", "title", "page", "prop", "pst", "uselang",
	),
	"edit": set(
		"title", "section", "text", "token", "summary",
		"minor", "notminor", "bot",
		"basetimestamp", "starttimestamp",
		"recreate", "createonly", "nocreate",
		"watchlist", "md5", "undo", "undoafter",
	),
	"protect": set(
		"title", "token", "protections", "expiry", "reason", "cascade", "watchlist",
	),
	"watch": set(
		"title", "unwatch", "token",
	),
	"query": set(
		"titles", "pageids", "revids", "export", "exportnowrap", "indexpageids",
		// meta selectors
		"meta", "uiprop", "siprop",
		// page info
		"prop", "inprop", "intoken",
		// revisions
		"rvprop", "rvlimit", "rvstartid", "rvdiffto",
		// user contributions
		"list", "ucuser", "ucstart", "uclimit", "ucdir", "ucprop",
		// recent changes
		"rcprop", "rclimit", "rcstart", "rctype", "rcnamespace",
		// watchlist
		"wlprop", "wllimit", "wlstart", "wlnamespace", "wlallrev",
		// all pages
		"apfrom", "apprefix", "aplimit", "apnamespace", "apfilterredir",
	),
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// validateParams checks an action and its parameters against the
// whitelist. The format parameter is owned by the request path itself.
func validateParams(action string, params url.Values) error {
	allowed, ok := actionParams[action]
	if !ok {
		return &ParameterError{Action: action, Param: "action"}
	}
	for name := range params {
		if name == "format" || name == "action" {
			continue
		}
		if !allowed[name] {
			return &ParameterError{Action: action, Param: name}
		}
	}
	return nil
}
