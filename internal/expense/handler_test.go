package expense

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jdoshi/famledger/pkg/pagination"
)

func TestMetaCursorTermination(t *testing.T) {
	p := pagination.Params{Page: 1, Size: 2, Cursor: "id-2"}

	full := &ListResult{Items: []*Expense{{ID: "id-3"}, {ID: "id-4"}}, Total: 3}
	m := meta(p, full)
	assert.True(t, m.HasNext)
	assert.False(t, m.Last)
	assert.Equal(t, "id-4", m.LastID)

	final := &ListResult{Items: []*Expense{{ID: "id-5"}}, Total: 3}
	m = meta(p, final)
	assert.False(t, m.HasNext)
	assert.True(t, m.Last)
	assert.Equal(t, "id-5", m.LastID)
}

func TestMetaOffsetMode(t *testing.T) {
	p := pagination.Params{Page: 2, Size: 2}

	m := meta(p, &ListResult{Items: []*Expense{{ID: "id-3"}, {ID: "id-4"}}, Total: 5})
	assert.Equal(t, 2, m.Page)
	assert.Equal(t, 3, m.TotalPages)
	assert.True(t, m.HasNext)
	assert.True(t, m.HasPrevious)
	assert.False(t, m.First)
	assert.False(t, m.Last)
}
