// Package listing holds the pure search and pagination used by every
// dashboard list view.
package listing

import (
	"slices"
	"strconv"
	"strings"
)

// PageSizes are the page sizes a list view offers.
var PageSizes = []int{5, 10, 25, 50}

const DefaultPageSize = 10

// Filter returns the items whose fields contain query, ignoring case. Order
// is preserved. Only an empty query returns items unchanged; whitespace is
// matched like any other character.
func Filter[T any](items []T, query string, fields func(T) []string) []T {
	if query == "" {
		return items
	}
	q := strings.ToLower(query)
	out := make([]T, 0, len(items))
	for _, it := range items {
		for _, f := range fields(it) {
			if strings.Contains(strings.ToLower(f), q) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// Paginate returns items[page*size : page*size+size] clamped to bounds.
func Paginate[T any](items []T, page, size int) []T {
	if size <= 0 || page < 0 {
		return items[:0]
	}
	start := page * size
	if start >= len(items) {
		return items[len(items):]
	}
	end := min(start+size, len(items))
	return items[start:end]
}

// PageCount returns the number of pages needed for n items.
func PageCount(n, size int) int {
	if size <= 0 || n == 0 {
		return 0
	}
	return (n + size - 1) / size
}

// State is the per-view list state.
type State struct {
	Query    string `json:"q"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// NewState returns the state of a list view that has not been touched yet.
func NewState() State {
	return State{PageSize: DefaultPageSize}
}

// SetQuery changes the search text. The page is left alone, so a page past
// the end of the filtered items is simply empty.
func (s *State) SetQuery(q string) {
	s.Query = q
}

func (s *State) SetPage(p int) {
	s.Page = max(p, 0)
}

// SetPageSize switches to one of PageSizes and resets to the first page.
// Unknown sizes are ignored.
func (s *State) SetPageSize(n int) bool {
	if !slices.Contains(PageSizes, n) {
		return false
	}
	if n != s.PageSize {
		s.PageSize = n
		s.Page = 0
	}
	return true
}

// Apply updates the state from raw query parameters the way a list view
// does: the page size first, so a size change wins over a requested page.
func (s *State) Apply(q, page, pageSize *string) {
	if q != nil {
		s.SetQuery(*q)
	}
	sizeChanged := false
	if pageSize != nil {
		if n, err := strconv.Atoi(*pageSize); err == nil {
			before := s.PageSize
			if s.SetPageSize(n) && n != before {
				sizeChanged = true
			}
		}
	}
	if page != nil && !sizeChanged {
		if n, err := strconv.Atoi(*page); err == nil {
			s.SetPage(n)
		}
	}
}

// Page is one rendered page of a list view.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Filtered int `json:"filtered"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Pages    int `json:"pages"`
}

// Build filters items by the state's query and cuts the current page. A
// page past the end yields no items; the state's page is kept as is.
func Build[T any](items []T, s *State, fields func(T) []string) Page[T] {
	if s.PageSize == 0 {
		s.PageSize = DefaultPageSize
	}
	filtered := Filter(items, s.Query, fields)
	return Page[T]{
		Items:    Paginate(filtered, s.Page, s.PageSize),
		Total:    len(items),
		Filtered: len(filtered),
		Page:     s.Page,
		PageSize: s.PageSize,
		Pages:    PageCount(len(filtered), s.PageSize),
	}
}
