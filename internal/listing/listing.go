// Package listing filters, sorts and paginates materialised record sets.
package listing

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultColumn is the sort column value that always selects the fallback ordering.
const DefaultColumn = "default"

// Record is implemented by every row type that can be listed.
type Record interface {
	// SearchFields returns the textual values a search term is matched against.
	SearchFields() []string
	// SortKey returns the comparable value of column, or false when the
	// column is unknown for this record type.
	SortKey(column string) (Key, bool)
}

// Key is a comparable sort value. Text keys compare case-insensitively,
// numeric keys compare numerically.
type Key struct {
	text    string
	number  float64
	numeric bool
}

// Text builds a case-insensitive text key.
func Text(s string) Key {
	return Key{text: strings.ToLower(s)}
}

// Int builds a numeric key.
func Int(n int64) Key {
	return Key{number: float64(n), numeric: true, text: strconv.FormatInt(n, 10)}
}

// Date builds a numeric key from the calendar date of t.
func Date(t time.Time) Key {
	return Key{number: float64(t.Unix()), numeric: true, text: t.Format("2006-01-02")}
}

// Less reports whether k sorts before other.
func (k Key) Less(other Key) bool {
	if k.numeric && other.numeric {
		return k.number < other.number
	}
	return k.text < other.text
}

// Query carries the user supplied list parameters.
type Query struct {
	Search   string
	SortBy   string
	Order    string
	Page     int
	PageSize int
}

// Descending reports whether the query asks for descending order.
func (q Query) Descending() bool {
	return strings.EqualFold(strings.TrimSpace(q.Order), "desc")
}

// Apply filters items by the search term, sorts them and returns the
// requested page. fallback is the column used when q.SortBy is empty,
// "default" or not known to the record type; the fallback ordering is
// always ascending.
func Apply[T Record](items []T, q Query, fallback string) Page[T] {
	filtered := Filter(items, q.Search)
	Sort(filtered, q.SortBy, q.Descending(), fallback)
	return Paginate(filtered, q.Page, q.PageSize)
}

// Filter keeps records where any search field contains term, ignoring case.
// A blank term keeps every record.
func Filter[T Record](items []T, term string) []T {
	needle := strings.ToLower(strings.TrimSpace(term))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if needle == "" || matches(item, needle) {
			out = append(out, item)
		}
	}
	return out
}

func matches(item Record, needle string) bool {
	for _, field := range item.SearchFields() {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Sort orders items in place by column. Ties keep their input order.
func Sort[T Record](items []T, column string, desc bool, fallback string) {
	if len(items) == 0 {
		return
	}

	column = strings.TrimSpace(column)
	if column == "" || column == DefaultColumn || !known(items[0], column) {
		column = fallback
		desc = false
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, _ := items[i].SortKey(column)
		b, _ := items[j].SortKey(column)
		if desc {
			return b.Less(a)
		}
		return a.Less(b)
	})
}

func known(item Record, column string) bool {
	_, ok := item.SortKey(column)
	return ok
}
