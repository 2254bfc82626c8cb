package expense

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category is the fixed expense classification
type Category string

const (
	CategoryFood          Category = "FOOD"
	CategoryEntertainment Category = "ENTERTAINMENT"
	CategoryFun           Category = "FUN"
	CategoryBills         Category = "BILLS"
	CategoryTravel        Category = "TRAVEL"
	CategoryUtilities     Category = "UTILITIES"
	CategoryHealth        Category = "HEALTH"
	CategoryShopping      Category = "SHOPPING"
	CategoryEducation     Category = "EDUCATION"
	CategoryOthers        Category = "OTHERS"
)

var categories = map[Category]bool{
	CategoryFood:          true,
	CategoryEntertainment: true,
	CategoryFun:           true,
	CategoryBills:         true,
	CategoryTravel:        true,
	CategoryUtilities:     true,
	CategoryHealth:        true,
	CategoryShopping:      true,
	CategoryEducation:     true,
	CategoryOthers:        true,
}

// ParseCategory normalizes a category string to its canonical uppercase form
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !categories[c] {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// ScopeKind distinguishes personal from family-shared expenses
type ScopeKind int

const (
	ScopePersonal ScopeKind = iota
	ScopeFamily
)

// Scope is the explicit personal-or-family variant resolved at the boundary
// from the nullable family reference
type Scope struct {
	Kind     ScopeKind
	FamilyID string
}

// PersonalScope returns the personal variant
func PersonalScope() Scope {
	return Scope{Kind: ScopePersonal}
}

// FamilyScope returns the family variant for the given family
func FamilyScope(familyID string) Scope {
	return Scope{Kind: ScopeFamily, FamilyID: familyID}
}

// ScopeFrom resolves a nullable family reference into an explicit Scope
func ScopeFrom(familyID *string) Scope {
	if familyID == nil || *familyID == "" {
		return PersonalScope()
	}
	return FamilyScope(*familyID)
}

// Expense represents a single spending record. A nil FamilyID means the
// expense is personal.
type Expense struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	FamilyID       *string         `json:"family_id,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Category       Category        `json:"category"`
	Description    string          `json:"description"`
	CurrencyPrefix string          `json:"currency_prefix"`
	Date           time.Time       `json:"date"`
	CreatedOn      time.Time       `json:"created_on"`
	LastModifiedOn time.Time       `json:"last_modified_on"`
	CreatedBy      string          `json:"created_by"`
	ModifiedBy     string          `json:"modified_by"`
	Deleted        bool            `json:"-"`
	DeletedOn      *time.Time      `json:"-"`
	DeletedBy      *string         `json:"-"`
}

// Scope returns the expense's explicit sharing scope
func (e *Expense) Scope() Scope {
	return ScopeFrom(e.FamilyID)
}

// MonthlySum is a month-scoped aggregate of amount and record count
type MonthlySum struct {
	Month int             `json:"month"`
	Year  int             `json:"year"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}
