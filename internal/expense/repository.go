package expense

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jdoshi/famledger/pkg/pagination"
)

// Repository handles expense data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const expenseColumns = `id, user_id, family_id, amount, category, description, currency_prefix,
		date, created_on, last_modified_on, created_by, modified_by`

func scanExpense(row interface{ Scan(...interface{}) error }) (*Expense, error) {
	e := &Expense{}
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.FamilyID,
		&e.Amount,
		&e.Category,
		&e.Description,
		&e.CurrencyPrefix,
		&e.Date,
		&e.CreatedOn,
		&e.LastModifiedOn,
		&e.CreatedBy,
		&e.ModifiedBy,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Create inserts a new expense
func (r *Repository) Create(ctx context.Context, e *Expense) (*Expense, error) {
	query := `
		INSERT INTO expenses (id, user_id, family_id, amount, category, description, currency_prefix, date, created_by, modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + expenseColumns

	row := r.db.QueryRowContext(ctx, query,
		uuid.New().String(),
		e.UserID,
		e.FamilyID,
		e.Amount,
		e.Category,
		e.Description,
		e.CurrencyPrefix,
		e.Date,
		e.CreatedBy,
		e.ModifiedBy,
	)

	created, err := scanExpense(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	return created, nil
}

// GetByID retrieves an expense by id, excluding soft-deleted rows
func (r *Repository) GetByID(ctx context.Context, id string) (*Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1 AND deleted = false`

	e, err := scanExpense(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return e, nil
}

// Update rewrites the mutable fields of an expense
func (r *Repository) Update(ctx context.Context, e *Expense) (*Expense, error) {
	query := `
		UPDATE expenses
		SET family_id = $2, amount = $3, category = $4, description = $5,
		    currency_prefix = $6, date = $7, modified_by = $8, last_modified_on = now()
		WHERE id = $1 AND deleted = false
		RETURNING ` + expenseColumns

	row := r.db.QueryRowContext(ctx, query,
		e.ID,
		e.FamilyID,
		e.Amount,
		e.Category,
		e.Description,
		e.CurrencyPrefix,
		e.Date,
		e.ModifiedBy,
	)

	updated, err := scanExpense(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	return updated, nil
}

// SoftDelete marks an expense deleted, keeping the row for the retention
// window
func (r *Repository) SoftDelete(ctx context.Context, id, deletedBy string) error {
	query := `
		UPDATE expenses
		SET deleted = true, deleted_on = now(), deleted_by = $2, last_modified_on = now()
		WHERE id = $1 AND deleted = false
	`

	res, err := r.db.ExecContext(ctx, query, id, deletedBy)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

// sortColumns maps allow-listed sort fields to their columns. The allow-list
// in pkg/pagination keeps anything else out of the query.
var sortColumns = map[string]string{
	"date":             "date",
	"amount":           "amount",
	"category":         "category",
	"created_on":       "created_on",
	"last_modified_on": "last_modified_on",
}

// composeFilter builds the WHERE clause shared by every list query
func composeFilter(f Filter, args []interface{}) (string, []interface{}) {
	conds := []string{"deleted = false"}

	add := func(cond string, val interface{}) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.FamilyID != "" {
		add("family_id = $%d", f.FamilyID)
	} else {
		add("user_id = $%d", f.UserID)
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if !f.Start.IsZero() {
		add("date >= $%d", f.Start)
	}
	if !f.End.IsZero() {
		add("date <= $%d", f.End)
	}
	if !f.Since.IsZero() {
		add("last_modified_on >= $%d", f.Since)
	}
	if !f.SinceDate.IsZero() {
		add("date >= $%d", f.SinceDate)
	}

	return strings.Join(conds, " AND "), args
}

// List runs one paginated query over the filter. Offset mode pages by
// page/size; cursor mode continues after the row identified by the cursor id
// using a row-comparison on the sort key.
func (r *Repository) List(ctx context.Context, f Filter, p pagination.Params) (*ListResult, error) {
	sortCol, ok := sortColumns[p.SortBy]
	if !ok {
		sortCol = "date"
	}
	dir := "DESC"
	cmp := "<"
	if p.Direction == pagination.Ascending {
		dir = "ASC"
		cmp = ">"
	}

	where, args := composeFilter(f, nil)

	countQuery := `SELECT COUNT(*) FROM expenses WHERE ` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE ` + where
	if p.CursorMode() {
		// continue strictly after the cursor row in sort order, with the id
		// as tie-break for rows sharing a sort value
		args = append(args, p.Cursor)
		query += fmt.Sprintf(
			" AND (%s, id) %s (SELECT %s, id FROM expenses WHERE id = $%d)",
			sortCol, cmp, sortCol, len(args),
		)
	}

	query += fmt.Sprintf(" ORDER BY %s %s, id %s", sortCol, dir, dir)
	args = append(args, p.Size)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	if !p.CursorMode() {
		args = append(args, p.Offset())
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var items []*Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	return &ListResult{Items: items, Total: total}, nil
}

func monthBounds(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// MonthlySum aggregates a user's personal expenses for one month. Family
// expenses are excluded.
func (r *Repository) MonthlySum(ctx context.Context, userID string, month, year int) (*MonthlySum, error) {
	start, end := monthBounds(month, year)
	query := `
		SELECT COALESCE(SUM(amount), 0), COUNT(*)
		FROM expenses
		WHERE user_id = $1 AND family_id IS NULL AND deleted = false
		  AND date >= $2 AND date < $3
	`

	sum := &MonthlySum{Month: month, Year: year}
	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, userID, start, end).Scan(&total, &sum.Count); err != nil {
		return nil, fmt.Errorf("failed to sum expenses: %w", err)
	}
	sum.Total = total
	return sum, nil
}

// FamilyMonthlySum aggregates a family's shared expenses for one month,
// independent of owner
func (r *Repository) FamilyMonthlySum(ctx context.Context, familyID string, month, year int) (*MonthlySum, error) {
	start, end := monthBounds(month, year)
	query := `
		SELECT COALESCE(SUM(amount), 0), COUNT(*)
		FROM expenses
		WHERE family_id = $1 AND deleted = false
		  AND date >= $2 AND date < $3
	`

	sum := &MonthlySum{Month: month, Year: year}
	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, familyID, start, end).Scan(&total, &sum.Count); err != nil {
		return nil, fmt.Errorf("failed to sum family expenses: %w", err)
	}
	sum.Total = total
	return sum, nil
}

// ListWindow returns every matching expense with date in [start, end),
// ascending, for statistics aggregation
func (r *Repository) ListWindow(ctx context.Context, f Filter, start, end time.Time) ([]*Expense, error) {
	where, args := composeFilter(f, nil)
	args = append(args, start, end)
	query := fmt.Sprintf(
		`SELECT `+expenseColumns+` FROM expenses WHERE `+where+
			` AND date >= $%d AND date < $%d ORDER BY date ASC, id ASC`,
		len(args)-1, len(args),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var items []*Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return items, nil
}

// PurgeDeletedBefore physically removes soft-deleted rows past the retention
// cutoff
func (r *Repository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE deleted = true AND deleted_on < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expenses: %w", err)
	}
	return res.RowsAffected()
}
