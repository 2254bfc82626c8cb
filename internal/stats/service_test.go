package stats

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdoshi/famledger/internal/expense"
	"github.com/jdoshi/famledger/internal/user"
)

type fakeFamilies struct {
	members map[string][]string
}

func (f *fakeFamilies) MemberIDs(ctx context.Context, familyID string) ([]string, error) {
	return f.members[familyID], nil
}

type fixture struct {
	users    *user.MemoryStore
	store    *expense.MemoryStore
	families *fakeFamilies
	service  *Service
}

func newFixture(t *testing.T, userIDs ...string) *fixture {
	t.Helper()

	users := user.NewMemoryStore()
	for _, id := range userIDs {
		_, err := users.Create(context.Background(), &user.User{
			ID:        id,
			Email:     id + "@example.com",
			AliasName: id + "1234",
		})
		require.NoError(t, err)
	}

	store := expense.NewMemoryStore()
	families := &fakeFamilies{members: make(map[string][]string)}
	return &fixture{
		users:    users,
		store:    store,
		families: families,
		service:  NewService(store, users, families),
	}
}

func (fx *fixture) addExpense(t *testing.T, userID string, familyID *string, amount float64, category string, date time.Time, currency string) {
	t.Helper()
	cat, err := expense.ParseCategory(category)
	require.NoError(t, err)
	_, err = fx.store.Create(context.Background(), &expense.Expense{
		UserID:         userID,
		FamilyID:       familyID,
		Amount:         decimal.NewFromFloat(amount),
		Category:       cat,
		CurrencyPrefix: currency,
		Date:           date,
		CreatedBy:      userID,
		ModifiedBy:     userID,
	})
	require.NoError(t, err)
}

func TestResolveWindow(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	start, end, err := ResolveWindow(0, 0, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), end)

	s := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	start, end, err = ResolveWindow(s.UnixMilli(), e.UnixMilli(), now)
	require.NoError(t, err)
	assert.Equal(t, s, start)
	assert.True(t, end.After(e))

	_, _, err = ResolveWindow(e.UnixMilli(), s.UnixMilli(), now)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestPersonalSelfOnly(t *testing.T) {
	fx := newFixture(t, "alice", "bob")

	_, err := fx.service.Personal(context.Background(), "alice", "bob", 0, 0)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPersonalSummary(t *testing.T) {
	fx := newFixture(t, "alice")
	ctx := context.Background()
	now := time.Now().UTC()

	fx.addExpense(t, "alice", nil, 30, "food", now, "$")
	fx.addExpense(t, "alice", nil, 70, "food", now, "$")
	fx.addExpense(t, "alice", nil, 100, "travel", now, "$")
	fx.addExpense(t, "alice", nil, 5, "bills", now, "€")
	// outside the current-month default window
	fx.addExpense(t, "alice", nil, 999, "food", now.AddDate(0, -2, 0), "$")

	s, err := fx.service.Personal(ctx, "alice", "alice", 0, 0)
	require.NoError(t, err)

	require.Len(t, s.Totals, 2)
	assert.Equal(t, "$", s.Totals[0].Currency)
	assert.True(t, decimal.NewFromInt(200).Equal(s.Totals[0].Total), s.Totals[0].Total.String())
	assert.Equal(t, 3, s.Totals[0].Count)
	assert.True(t, decimal.RequireFromString("66.67").Equal(s.Totals[0].Average), s.Totals[0].Average.String())

	require.Len(t, s.Categories, 3)
	assert.Equal(t, "FOOD", s.Categories[0].Category)
	assert.True(t, decimal.RequireFromString("48.78").Equal(s.Categories[0].Percentage), s.Categories[0].Percentage.String())
}

func TestFamilySummaryMemberBreakdown(t *testing.T) {
	fx := newFixture(t, "alice", "bob", "carol")
	ctx := context.Background()
	now := time.Now().UTC()

	fid := "fam-1"
	fx.families.members[fid] = []string{"alice", "bob", "carol"}
	for _, id := range []string{"alice", "bob", "carol"} {
		f := fid
		fx.users.SetFamily(id, &f)
	}

	fx.addExpense(t, "alice", &fid, 75, "food", now, "$")
	fx.addExpense(t, "bob", &fid, 25, "travel", now, "$")
	// personal expense must not count toward the family
	fx.addExpense(t, "alice", nil, 500, "food", now, "$")

	s, err := fx.service.Family(ctx, "alice", fid, 0, 0)
	require.NoError(t, err)

	require.Len(t, s.Totals, 1)
	assert.True(t, decimal.NewFromInt(100).Equal(s.Totals[0].Total))

	require.Len(t, s.Members, 3)
	assert.Equal(t, "alice", s.Members[0].UserID)
	assert.True(t, decimal.NewFromInt(75).Equal(s.Members[0].Total))
	assert.True(t, decimal.NewFromInt(75).Equal(s.Members[0].Percentage))
	assert.Equal(t, "carol", s.Members[2].UserID)
	assert.True(t, s.Members[2].Total.IsZero())
}

func TestFamilyScopeMembersOnly(t *testing.T) {
	fx := newFixture(t, "alice", "mallory")
	fid := "fam-1"
	fx.families.members[fid] = []string{"alice"}
	f := fid
	fx.users.SetFamily("alice", &f)

	_, err := fx.service.Family(context.Background(), "mallory", fid, 0, 0)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPersonalMonthlyTrend(t *testing.T) {
	fx := newFixture(t, "alice")
	ctx := context.Background()

	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	fx.addExpense(t, "alice", nil, 10, "food", jan, "$")
	fx.addExpense(t, "alice", nil, 20, "food", jan, "$")
	fx.addExpense(t, "alice", nil, 40, "bills", feb, "$")

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	points, err := fx.service.PersonalMonthlyTrend(ctx, "alice", "alice", start.UnixMilli(), end.UnixMilli())
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.Equal(t, 1, points[0].Month)
	assert.True(t, decimal.NewFromInt(30).Equal(points[0].Total))
	assert.Equal(t, 2, points[0].Count)
	assert.Equal(t, 2, points[1].Month)
	assert.True(t, decimal.NewFromInt(40).Equal(points[1].Total))
}
