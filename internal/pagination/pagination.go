// Package pagination slices ordered result sets into fixed-size, 1-based pages.
package pagination

import (
	"errors"
	"strconv"
	"strings"
)

// Window is the position of one page inside a result set
type Window struct {
	Number   int
	NumPages int
	Count    int64
	PerPage  int
}

// NewWindow resolves the raw page parameter against a result set of count
// items. A missing or non-numeric value selects page 1; a value past the end
// or below 1 selects the last page. An empty set still has one page.
func NewWindow(count int64, perPage int, raw string) Window {
	if perPage < 1 {
		perPage = 1
	}
	if count < 0 {
		count = 0
	}

	numPages := 1
	if count > 0 {
		numPages = int((count + int64(perPage) - 1) / int64(perPage))
	}

	number, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case errors.Is(err, strconv.ErrRange):
		number = numPages
	case err != nil:
		number = 1
	case number < 1 || number > numPages:
		number = numPages
	}

	return Window{
		Number:   number,
		NumPages: numPages,
		Count:    count,
		PerPage:  perPage,
	}
}

// Offset is the index of the first item on the page
func (w Window) Offset() int {
	return (w.Number - 1) * w.PerPage
}

// Limit is the maximum number of items on the page
func (w Window) Limit() int {
	return w.PerPage
}

// Len is the number of items actually on the page
func (w Window) Len() int {
	remaining := w.Count - int64(w.Offset())
	if remaining <= 0 {
		return 0
	}
	if remaining > int64(w.PerPage) {
		return w.PerPage
	}
	return int(remaining)
}

// Page is one page of items plus its position in the full set
type Page[T any] struct {
	Items    []T   `json:"object_list"`
	Number   int   `json:"number"`
	NumPages int   `json:"num_pages"`
	Count    int64 `json:"count"`
	PerPage  int   `json:"per_page"`
}

// NewPage pairs the items fetched for w with w's metadata
func NewPage[T any](items []T, w Window) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:    items,
		Number:   w.Number,
		NumPages: w.NumPages,
		Count:    w.Count,
		PerPage:  w.PerPage,
	}
}

// Map converts the items of a page, keeping its metadata
func Map[T, U any](p Page[T], f func(T) U) Page[U] {
	items := make([]U, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, f(it))
	}
	return Page[U]{
		Items:    items,
		Number:   p.Number,
		NumPages: p.NumPages,
		Count:    p.Count,
		PerPage:  p.PerPage,
	}
}

// HasNext reports whether a later page exists
func (p Page[T]) HasNext() bool {
	return p.Number < p.NumPages
}

// HasPrevious reports whether an earlier page exists
func (p Page[T]) HasPrevious() bool {
	return p.Number > 1
}

// NextNumber is the next page number, or the current one on the last page
func (p Page[T]) NextNumber() int {
	if p.HasNext() {
		return p.Number + 1
	}
	return p.Number
}

// PreviousNumber is the previous page number, or 1 on the first page
func (p Page[T]) PreviousNumber() int {
	if p.HasPrevious() {
		return p.Number - 1
	}
	return 1
}
