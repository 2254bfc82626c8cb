// Package pagination provides the request-side page parameter handling shared
// by every list endpoint: size clamping, sort-field allow-listing, and the
// offset-versus-cursor mode selection.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultSize is the page size used when the client sends size <= 0.
	DefaultSize = 10
	// MaxSize caps the page size on every list endpoint.
	MaxSize = 100
)

// Direction is a sort direction
type Direction string

const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

// Params holds the resolved paging parameters for a list query.
// When Cursor is non-empty it takes precedence over Page.
type Params struct {
	Page      int
	Size      int
	SortBy    string
	Direction Direction
	Cursor    string
}

// Offset returns the row offset for offset-mode paging.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Size
}

// CursorMode reports whether cursor continuation is in effect.
func (p Params) CursorMode() bool {
	return p.Cursor != ""
}

// ClampSize normalizes a requested page size: <=0 falls back to DefaultSize,
// anything above MaxSize is capped.
func ClampSize(size int) int {
	if size <= 0 {
		return DefaultSize
	}
	if size > MaxSize {
		return MaxSize
	}
	return size
}

// ResolveSort checks sortBy against an allow-list and silently falls back to
// the default field when it is unknown. Unknown input never reaches the query.
func ResolveSort(sortBy string, allowed map[string]bool, defaultField string) string {
	if allowed[sortBy] {
		return sortBy
	}
	return defaultField
}

// FromRequest parses paging parameters from query string values.
// Recognized params: page, size, sort_by, direction, last_id.
func FromRequest(r *http.Request, allowed map[string]bool, defaultSort string, defaultDir Direction) Params {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(q.Get("size"))

	dir := defaultDir
	switch q.Get("direction") {
	case "asc", "ASC":
		dir = Ascending
	case "desc", "DESC":
		dir = Descending
	}

	return Params{
		Page:      page,
		Size:      ClampSize(size),
		SortBy:    ResolveSort(q.Get("sort_by"), allowed, defaultSort),
		Direction: dir,
		Cursor:    q.Get("last_id"),
	}
}

// Page describes one page of results for the response envelope.
type Page struct {
	Number        int
	Size          int
	TotalElements int
	TotalPages    int
	LastID        string

	cursor   bool
	returned int
}

// NewPage derives the envelope fields from a total count, the number of rows
// actually returned, and the params used.
func NewPage(p Params, total, returned int, lastID string) Page {
	totalPages := 0
	if p.Size > 0 {
		totalPages = (total + p.Size - 1) / p.Size
	}
	return Page{
		Number:        p.Page,
		Size:          p.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		LastID:        lastID,
		cursor:        p.CursorMode(),
		returned:      returned,
	}
}

// First reports whether this is the first page. A cursor continuation is
// never the first page.
func (pg Page) First() bool {
	if pg.cursor {
		return false
	}
	return pg.Number <= 1
}

// Last reports whether this is the final page. In cursor mode the page number
// carries no position, so a chunk shorter than the requested size marks the
// end.
func (pg Page) Last() bool {
	if pg.cursor {
		return pg.returned < pg.Size
	}
	return pg.Number >= pg.TotalPages
}

// HasNext reports whether more pages follow.
func (pg Page) HasNext() bool {
	return !pg.Last()
}

// HasPrevious reports whether pages precede this one.
func (pg Page) HasPrevious() bool {
	if pg.cursor {
		return true
	}
	return pg.Number > 1
}
