package elodash

import "time"

// Kind is the record variant of a board.
type Kind string

// Board kinds.
const (
	KindLeetCode Kind = "leetcode"
	KindGitHub   Kind = "github"
	KindProblem  Kind = "problem"
)

// Source locates a board payload.
type Source struct {
	typ string
	url string
	key string
}

// URLSource reads a static JSON array over HTTP.
func URLSource(url string) Source { return Source{typ: "url", url: url} }

// KVSource reads a JSON string stored under key in the KV backend.
func KVSource(key string) Source { return Source{typ: "kv", key: key} }

// BoardInfo describes a configured board.
type BoardInfo struct {
	Name          string
	Kind          Kind
	SortKeys      []string
	TextFields    []string
	RangeField    string
	DefaultSort   string
	HasCategories bool
}

// Query selects one page of a board. Zero values select defaults.
type Query struct {
	Board      string
	Text       string
	Min        *float64 // inclusive, nil = open
	Max        *float64 // inclusive, nil = open
	RangeField string
	Category   string
	Sort       string
	Page       int
	PageSize   int
}

// Bound returns a pointer to v for Query.Min and Query.Max.
func Bound(v float64) *float64 { return &v }

// Change is the movement of an entry since the previous snapshot.
type Change struct {
	Value float64
	Trend string // "increase", "decrease", "unchanged"
}

// Entry is one ranked record. Missing numbers are absent from Numbers.
type Entry struct {
	Rank       int
	Key        string
	Kind       Kind
	Numbers    map[string]float64
	Texts      map[string]string
	Categories []string
	Change     *Change
}

// Page describes the returned window.
type Page struct {
	Index      int
	Size       int
	TotalItems int
	TotalPages int
}

// EntryList is one page of a board.
type EntryList struct {
	Board string
	Sort  string
	Items []Entry
	Page  Page
}

// Category is one category with its record count.
type Category struct {
	Name  string
	Count int
}

// Registration is a user sign-up.
type Registration struct {
	LeetCodeUsername string
	GitHubUsername   string
	DisplayName      string
}

// User is a stored registration.
type User struct {
	ID               string
	LeetCodeUsername string
	GitHubUsername   string
	DisplayName      string
	CreatedAt        time.Time
}
