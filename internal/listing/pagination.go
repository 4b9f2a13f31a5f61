package listing

// Page is one slice of an already filtered and sorted sequence.
type Page[T any] struct {
	Items   []T
	Number  int
	PerPage int
	Total   int
	Pages   int
}

// Paginate slices items into the page-th window of size perPage. A
// non-positive perPage returns every item on a single page.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if page < 1 {
		page = 1
	}
	total := len(items)

	if perPage <= 0 {
		p := Page[T]{Items: items, Number: 1, PerPage: total, Total: total}
		if total > 0 {
			p.Pages = 1
		}
		return p
	}

	pages := 0
	if total > 0 {
		pages = (total + perPage - 1) / perPage
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page[T]{
		Items:   items[start:end],
		Number:  page,
		PerPage: perPage,
		Total:   total,
		Pages:   pages,
	}
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool {
	return p.Number > 1
}

// HasNext reports whether a following page exists.
func (p Page[T]) HasNext() bool {
	return p.Number < p.Pages
}

// PrevNum is the previous page number, or 0.
func (p Page[T]) PrevNum() int {
	if !p.HasPrev() {
		return 0
	}
	return p.Number - 1
}

// NextNum is the next page number, or 0.
func (p Page[T]) NextNum() int {
	if !p.HasNext() {
		return 0
	}
	return p.Number + 1
}

// IterPages returns the page numbers to render in a pager. Runs of skipped
// pages are collapsed into a single 0, which marks an ellipsis.
func (p Page[T]) IterPages(leftEdge, leftCurrent, rightCurrent, rightEdge int) []int {
	var out []int
	last := 0
	for num := 1; num <= p.Pages; num++ {
		nearCurrent := num > p.Number-leftCurrent-1 && num < p.Number+rightCurrent
		if num <= leftEdge || nearCurrent || num > p.Pages-rightEdge {
			if last+1 != num {
				out = append(out, 0)
			}
			out = append(out, num)
			last = num
		}
	}
	return out
}

// Window is IterPages with one edge page on each side, one page before the
// current one and one after it.
func (p Page[T]) Window() []int {
	return p.IterPages(1, 1, 2, 1)
}
