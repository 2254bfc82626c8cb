package stats

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jdoshi/famledger/internal/expense"
	"github.com/jdoshi/famledger/internal/user"
)

var (
	ErrForbidden     = errors.New("requested statistics scope is not accessible")
	ErrInvalidWindow = errors.New("end date must not be before start date")
)

// ExpenseSource supplies the raw expense rows for aggregation
type ExpenseSource interface {
	ListWindow(ctx context.Context, f expense.Filter, start, end time.Time) ([]*expense.Expense, error)
}

// UserLookup resolves users for scope checks and member names
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// FamilyResolver resolves family membership for the per-member breakdown
type FamilyResolver interface {
	MemberIDs(ctx context.Context, familyID string) ([]string, error)
}

// Service derives read-only statistics over the expense set. No state of its
// own.
type Service struct {
	expenses ExpenseSource
	users    UserLookup
	families FamilyResolver
}

// NewService creates a new statistics service
func NewService(expenses ExpenseSource, users UserLookup, families FamilyResolver) *Service {
	return &Service{expenses: expenses, users: users, families: families}
}

// CurrencyTotal aggregates amount, count and average for one currency prefix
type CurrencyTotal struct {
	Currency string          `json:"currency"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
	Average  decimal.Decimal `json:"average"`
}

// CategoryStat is the per-category slice of a summary
type CategoryStat struct {
	Category   string          `json:"category"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
	Percentage decimal.Decimal `json:"percentage"`
}

// TrendPoint is one month of a trend series
type TrendPoint struct {
	Month int             `json:"month"`
	Year  int             `json:"year"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// MemberStat is one member's share of a family summary
type MemberStat struct {
	UserID     string          `json:"user_id"`
	Name       string          `json:"name"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Summary is the aggregate over a resolved window
type Summary struct {
	Start      time.Time       `json:"start"`
	End        time.Time       `json:"end"`
	Totals     []CurrencyTotal `json:"totals"`
	Categories []CategoryStat  `json:"categories"`
}

// FamilySummary extends Summary with the per-member breakdown
type FamilySummary struct {
	Summary
	Members []MemberStat `json:"members"`
}

// ResolveWindow picks the aggregation window: the explicit range when both
// bounds are supplied and consistent, otherwise the current calendar month.
// The returned end is exclusive.
func ResolveWindow(startMillis, endMillis int64, now time.Time) (time.Time, time.Time, error) {
	if startMillis > 0 && endMillis > 0 {
		if endMillis < startMillis {
			return time.Time{}, time.Time{}, ErrInvalidWindow
		}
		start := time.UnixMilli(startMillis).UTC()
		end := time.UnixMilli(endMillis).UTC().Add(time.Millisecond)
		return start, end, nil
	}

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}

func summarize(items []*expense.Expense, start, end time.Time) Summary {
	byCurrency := make(map[string]*CurrencyTotal)
	byCategory := make(map[string]*CategoryStat)
	grand := decimal.Zero

	for _, e := range items {
		cur, ok := byCurrency[e.CurrencyPrefix]
		if !ok {
			cur = &CurrencyTotal{Currency: e.CurrencyPrefix, Total: decimal.Zero}
			byCurrency[e.CurrencyPrefix] = cur
		}
		cur.Total = cur.Total.Add(e.Amount)
		cur.Count++

		cat, ok := byCategory[string(e.Category)]
		if !ok {
			cat = &CategoryStat{Category: string(e.Category), Total: decimal.Zero}
			byCategory[string(e.Category)] = cat
		}
		cat.Total = cat.Total.Add(e.Amount)
		cat.Count++

		grand = grand.Add(e.Amount)
	}

	s := Summary{Start: start, End: end}
	for _, cur := range byCurrency {
		cur.Average = cur.Total.Div(decimal.NewFromInt(int64(cur.Count))).Round(2)
		s.Totals = append(s.Totals, *cur)
	}
	for _, cat := range byCategory {
		cat.Percentage = percentage(cat.Total, grand)
		s.Categories = append(s.Categories, *cat)
	}
	sortTotals(s.Totals)
	sortCategories(s.Categories)
	return s
}

func percentage(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Mul(decimal.NewFromInt(100)).Div(whole).Round(2)
}

func trend(items []*expense.Expense) []TrendPoint {
	type key struct {
		year  int
		month int
	}
	byMonth := make(map[key]*TrendPoint)

	for _, e := range items {
		d := e.Date.UTC()
		k := key{year: d.Year(), month: int(d.Month())}
		pt, ok := byMonth[k]
		if !ok {
			pt = &TrendPoint{Month: k.month, Year: k.year, Total: decimal.Zero}
			byMonth[k] = pt
		}
		pt.Total = pt.Total.Add(e.Amount)
		pt.Count++
	}

	out := make([]TrendPoint, 0, len(byMonth))
	for _, pt := range byMonth {
		out = append(out, *pt)
	}
	sortTrend(out)
	return out
}

// Personal aggregates one user's expenses. Self only.
func (s *Service) Personal(ctx context.Context, actorID, userID string, startMillis, endMillis int64) (*Summary, error) {
	if actorID != userID {
		return nil, ErrForbidden
	}

	start, end, err := ResolveWindow(startMillis, endMillis, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	items, err := s.expenses.ListWindow(ctx, expense.Filter{UserID: userID}, start, end)
	if err != nil {
		return nil, err
	}

	summary := summarize(items, start, end)
	return &summary, nil
}

// checkFamilyScope verifies the acting user currently belongs to the family
func (s *Service) checkFamilyScope(ctx context.Context, actorID, familyID string) error {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if actor == nil {
		return user.ErrUserNotFound
	}
	if !actor.HasFamily() || *actor.FamilyID != familyID {
		return ErrForbidden
	}
	return nil
}

// Family aggregates a family's shared expenses with a per-member breakdown.
// Current members only.
func (s *Service) Family(ctx context.Context, actorID, familyID string, startMillis, endMillis int64) (*FamilySummary, error) {
	if err := s.checkFamilyScope(ctx, actorID, familyID); err != nil {
		return nil, err
	}

	start, end, err := ResolveWindow(startMillis, endMillis, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	items, err := s.expenses.ListWindow(ctx, expense.Filter{FamilyID: familyID}, start, end)
	if err != nil {
		return nil, err
	}

	out := &FamilySummary{Summary: summarize(items, start, end)}

	grand := decimal.Zero
	byMember := make(map[string]*MemberStat)
	for _, e := range items {
		ms, ok := byMember[e.UserID]
		if !ok {
			ms = &MemberStat{UserID: e.UserID, Total: decimal.Zero}
			byMember[e.UserID] = ms
		}
		ms.Total = ms.Total.Add(e.Amount)
		ms.Count++
		grand = grand.Add(e.Amount)
	}

	memberIDs, err := s.families.MemberIDs(ctx, familyID)
	if err != nil {
		return nil, err
	}
	for _, id := range memberIDs {
		if _, ok := byMember[id]; !ok {
			byMember[id] = &MemberStat{UserID: id, Total: decimal.Zero}
		}
	}

	for id, ms := range byMember {
		ms.Percentage = percentage(ms.Total, grand)
		if u, err := s.users.GetByID(ctx, id); err == nil && u != nil {
			if u.Name != nil && *u.Name != "" {
				ms.Name = *u.Name
			} else {
				ms.Name = u.AliasName
			}
		}
		out.Members = append(out.Members, *ms)
	}
	sortMembers(out.Members)
	return out, nil
}

// PersonalMonthlyTrend derives the month-by-month series of a user's
// expenses. Self only.
func (s *Service) PersonalMonthlyTrend(ctx context.Context, actorID, userID string, startMillis, endMillis int64) ([]TrendPoint, error) {
	if actorID != userID {
		return nil, ErrForbidden
	}

	start, end, err := ResolveWindow(startMillis, endMillis, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if startMillis <= 0 || endMillis <= 0 {
		// a single-month default makes a flat series; widen to the last six
		// months for a useful trend
		start = start.AddDate(0, -5, 0)
	}

	items, err := s.expenses.ListWindow(ctx, expense.Filter{UserID: userID}, start, end)
	if err != nil {
		return nil, err
	}
	return trend(items), nil
}

// FamilyMonthlyTrend derives the month-by-month series of a family's shared
// expenses. Current members only.
func (s *Service) FamilyMonthlyTrend(ctx context.Context, actorID, familyID string, startMillis, endMillis int64) ([]TrendPoint, error) {
	if err := s.checkFamilyScope(ctx, actorID, familyID); err != nil {
		return nil, err
	}

	start, end, err := ResolveWindow(startMillis, endMillis, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if startMillis <= 0 || endMillis <= 0 {
		start = start.AddDate(0, -5, 0)
	}

	items, err := s.expenses.ListWindow(ctx, expense.Filter{FamilyID: familyID}, start, end)
	if err != nil {
		return nil, err
	}
	return trend(items), nil
}
