package wiki

// Token kinds accepted by GetToken.
const (
	TokenEdit    = "edit"
	TokenProtect = "protect"
	TokenWatch   = "watch"
)

// UserInfo describes the user the session is authenticated as. Anonymous
// sessions have ID == 0 and a restricted rights set.
type UserInfo struct {
	ID        int
	Name      string
	Rights    []string
	Groups    []string
	EditCount int
}

// Anonymous reports whether the session user is not logged in.
func (u UserInfo) Anonymous() bool { return u.ID == 0 }

// HasRight reports whether the user holds the named right.
func (u UserInfo) HasRight(right string) bool {
	for _, r := range u.Rights {
		if r == right {
			return true
		}
	}
	return false
}

// InGroup reports whether the user belongs to the named group.
func (u UserInfo) InGroup(group string) bool {
	for _, g := range u.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// Protection is one protection entry on a page.
type Protection struct {
	Type   string // "edit", "create", "move", ...
	Level  string // "sysop", "autoconfirmed", ...
	Expiry string
}

// PageInfo is a per-title snapshot, fetched fresh on every page bind.
// The tokens are single-use and short-lived; a PageInfo must never be
// reused after a mutating call against its title. Token fields are empty
// when the session user lacks the corresponding right.
type PageInfo struct {
	Title          string
	PageID         int
	LastRevisionID int
	Length         int
	Touched        string
	BaseTimestamp  string // timestamp of the latest revision, "" if uncreated
	EditToken      string
	ProtectToken   string
	WatchToken     string
	Protections    []Protection
	Watched        bool
	Exists         bool
}

// SiteInfo is the general block of meta=siteinfo.
type SiteInfo struct {
	SiteName  string
	MainPage  string
	Base      string
	Generator string
	Language  string
	Server    string
}

// ListingRow is one raw row of a bulk listing (contributions, recent
// changes, watchlist, all pages). Fields are populated as far as the
// particular listing provides them.
type ListingRow struct {
	PageID        int
	RevisionID    int
	OldRevisionID int
	Title         string
	Type          string
	User          string
	Timestamp     string
	Comment       string
	Size          int
}

// ListingPage is one page of a bulk listing together with the opaque
// continuation cursor for requesting the next page. An empty cursor
// means end of stream.
type ListingPage struct {
	Rows   []ListingRow
	Cursor string
}

// EditResult reports a successful edit.
type EditResult struct {
	Title         string
	PageID        int
	NewRevisionID int
	NewPage       bool
}
