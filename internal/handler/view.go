package handler

import (
	"net/url"
	"strconv"

	"github.com/noah-isme/campus-registry/internal/listing"
)

// listView builds the links of a list page while keeping the current
// search, sort and order.
type listView struct {
	Path   string
	Search string
	SortBy string
	Order  string
}

func newListView(path string, q listing.Query) listView {
	order := "asc"
	if q.Descending() {
		order = "desc"
	}
	return listView{Path: path, Search: q.Search, SortBy: q.SortBy, Order: order}
}

// SortURL links to the list sorted by column. Clicking the active column
// flips the order.
func (v listView) SortURL(column string) string {
	order := "asc"
	if v.SortBy == column && v.Order == "asc" {
		order = "desc"
	}
	return v.url(column, order, 1)
}

// PageURL links to page number n of the current listing.
func (v listView) PageURL(n int) string {
	return v.url(v.SortBy, v.Order, n)
}

// Arrow marks the active sort column.
func (v listView) Arrow(column string) string {
	if v.SortBy != column {
		return ""
	}
	if v.Order == "desc" {
		return " ▼"
	}
	return " ▲"
}

func (v listView) url(sortBy, order string, page int) string {
	values := url.Values{}
	if v.Search != "" {
		values.Set("search_query", v.Search)
	}
	if sortBy != "" {
		values.Set("sort_by", sortBy)
		values.Set("order", order)
	}
	if page > 1 {
		values.Set("page", strconv.Itoa(page))
	}
	if len(values) == 0 {
		return v.Path
	}
	return v.Path + "?" + values.Encode()
}
