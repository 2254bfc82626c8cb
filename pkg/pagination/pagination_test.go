package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampSize(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"zero falls back to default", 0, DefaultSize},
		{"negative falls back to default", -5, DefaultSize},
		{"in range passes through", 25, 25},
		{"max passes through", MaxSize, MaxSize},
		{"above max is capped", MaxSize + 1, MaxSize},
		{"far above max is capped", 5000, MaxSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampSize(tt.in))
		})
	}
}

func TestResolveSort(t *testing.T) {
	allowed := map[string]bool{"date": true, "amount": true}

	assert.Equal(t, "amount", ResolveSort("amount", allowed, "date"))
	assert.Equal(t, "date", ResolveSort("", allowed, "date"))
	assert.Equal(t, "date", ResolveSort("id; DROP TABLE expenses", allowed, "date"))
	assert.Equal(t, "date", ResolveSort("unknown_field", allowed, "date"))
}

func TestFromRequest(t *testing.T) {
	allowed := map[string]bool{"date": true}

	r := httptest.NewRequest("GET", "/api/expenses?page=3&size=50&sort_by=date&direction=asc", nil)
	p := FromRequest(r, allowed, "date", Descending)

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 50, p.Size)
	assert.Equal(t, "date", p.SortBy)
	assert.Equal(t, Ascending, p.Direction)
	assert.False(t, p.CursorMode())
	assert.Equal(t, 100, p.Offset())
}

func TestFromRequestCursorPrecedence(t *testing.T) {
	allowed := map[string]bool{"date": true}

	r := httptest.NewRequest("GET", "/api/expenses?page=4&last_id=abc-123", nil)
	p := FromRequest(r, allowed, "date", Descending)

	assert.True(t, p.CursorMode())
	assert.Equal(t, "abc-123", p.Cursor)
}

func TestPageFlags(t *testing.T) {
	p := Params{Page: 1, Size: 10}
	pg := NewPage(p, 35, 10, "")
	assert.Equal(t, 4, pg.TotalPages)
	assert.True(t, pg.First())
	assert.False(t, pg.Last())
	assert.True(t, pg.HasNext())
	assert.False(t, pg.HasPrevious())

	p.Page = 4
	pg = NewPage(p, 35, 5, "last-id")
	assert.False(t, pg.First())
	assert.True(t, pg.Last())
	assert.False(t, pg.HasNext())
	assert.True(t, pg.HasPrevious())
	assert.Equal(t, "last-id", pg.LastID)
}

func TestPageFlagsCursorMode(t *testing.T) {
	p := Params{Page: 1, Size: 2, Cursor: "id-2"}

	// full chunk, more rows may follow
	pg := NewPage(p, 3, 2, "id-4")
	assert.False(t, pg.First())
	assert.False(t, pg.Last())
	assert.True(t, pg.HasNext())
	assert.True(t, pg.HasPrevious())

	// short chunk terminates the continuation
	pg = NewPage(p, 3, 1, "id-5")
	assert.True(t, pg.Last())
	assert.False(t, pg.HasNext())
}
