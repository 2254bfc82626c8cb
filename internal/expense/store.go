package expense

import (
	"context"
	"time"

	"github.com/jdoshi/famledger/pkg/pagination"
)

// ListResult carries one page of expenses plus the total matching count for
// the response envelope
type ListResult struct {
	Items []*Expense
	Total int
}

// Filter narrows a paginated list query. UserID and FamilyID are mutually
// exclusive scopes; the remaining fields are optional refinements.
type Filter struct {
	UserID   string
	FamilyID string

	Category Category
	// Start/End bound the event date when non-zero
	Start time.Time
	End   time.Time
	// Since bounds last_modified_on for delta sync when non-zero
	Since time.Time
	// SinceDate bounds the event date for date-based sync when non-zero
	SinceDate time.Time
}

// Store abstracts expense persistence. Soft-deleted rows are invisible to
// every method except PurgeDeletedBefore.
type Store interface {
	Create(ctx context.Context, e *Expense) (*Expense, error)
	GetByID(ctx context.Context, id string) (*Expense, error)
	Update(ctx context.Context, e *Expense) (*Expense, error)
	SoftDelete(ctx context.Context, id, deletedBy string) error

	List(ctx context.Context, f Filter, p pagination.Params) (*ListResult, error)

	// MonthlySum aggregates personal expenses only (null family reference)
	MonthlySum(ctx context.Context, userID string, month, year int) (*MonthlySum, error)
	// FamilyMonthlySum aggregates a family's shared expenses across owners
	FamilyMonthlySum(ctx context.Context, familyID string, month, year int) (*MonthlySum, error)

	// ListWindow returns all matching expenses in [start, end) without paging,
	// for statistics aggregation
	ListWindow(ctx context.Context, f Filter, start, end time.Time) ([]*Expense, error)

	// PurgeDeletedBefore physically removes soft-deleted rows older than the
	// cutoff and reports how many were removed
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
