package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateExpenseRequest represents the request body for creating an expense.
// Date is the event timestamp in epoch milliseconds. A non-blank family id
// shares the expense with that family.
type CreateExpenseRequest struct {
	Amount         decimal.Decimal `json:"amount" validate:"required"`
	Category       string          `json:"category" validate:"required"`
	Description    string          `json:"description,omitempty" validate:"max=500"`
	CurrencyPrefix string          `json:"currency_prefix,omitempty"`
	Date           int64           `json:"date" validate:"required"`
	FamilyID       *string         `json:"family_id,omitempty"`
}

// UpdateExpenseRequest represents the request body for updating an expense
type UpdateExpenseRequest struct {
	Amount         decimal.Decimal `json:"amount" validate:"required"`
	Category       string          `json:"category" validate:"required"`
	Description    string          `json:"description,omitempty" validate:"max=500"`
	CurrencyPrefix string          `json:"currency_prefix,omitempty"`
	Date           int64           `json:"date" validate:"required"`
	FamilyID       *string         `json:"family_id,omitempty"`
}

// ExpenseResponse represents an expense in responses
type ExpenseResponse struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	FamilyID       *string         `json:"family_id,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Category       string          `json:"category"`
	Description    string          `json:"description"`
	CurrencyPrefix string          `json:"currency_prefix"`
	Date           int64           `json:"date"`
	CreatedOn      string          `json:"created_on"`
	LastModifiedOn string          `json:"last_modified_on"`
	CreatedBy      string          `json:"created_by"`
	ModifiedBy     string          `json:"modified_by"`
}

// MonthlySumResponse represents a month-scoped aggregate in responses
type MonthlySumResponse struct {
	Month int             `json:"month"`
	Year  int             `json:"year"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	return &ExpenseResponse{
		ID:             e.ID,
		UserID:         e.UserID,
		FamilyID:       e.FamilyID,
		Amount:         e.Amount,
		Category:       string(e.Category),
		Description:    e.Description,
		CurrencyPrefix: e.CurrencyPrefix,
		Date:           e.Date.UnixMilli(),
		CreatedOn:      e.CreatedOn.UTC().Format(time.RFC3339),
		LastModifiedOn: e.LastModifiedOn.UTC().Format(time.RFC3339),
		CreatedBy:      e.CreatedBy,
		ModifiedBy:     e.ModifiedBy,
	}
}

// ToResponse converts a MonthlySum model to its response DTO
func (m *MonthlySum) ToResponse() *MonthlySumResponse {
	return &MonthlySumResponse{
		Month: m.Month,
		Year:  m.Year,
		Total: m.Total,
		Count: m.Count,
	}
}
