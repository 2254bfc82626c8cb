package expense

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdoshi/famledger/internal/notification"
	"github.com/jdoshi/famledger/internal/user"
	"github.com/jdoshi/famledger/pkg/pagination"
)

type fakeFamilies struct {
	members map[string][]string
}

func (f *fakeFamilies) MemberIDs(ctx context.Context, familyID string) ([]string, error) {
	return f.members[familyID], nil
}

type recordingDispatcher struct {
	events []notification.Event
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, evt notification.Event) {
	d.events = append(d.events, evt)
}

type fixture struct {
	users      *user.MemoryStore
	store      *MemoryStore
	families   *fakeFamilies
	dispatcher *recordingDispatcher
	service    *Service
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

	store := NewMemoryStore()
	families := &fakeFamilies{members: make(map[string][]string)}
	dispatcher := &recordingDispatcher{}
	return &fixture{
		users:      users,
		store:      store,
		families:   families,
		dispatcher: dispatcher,
		service:    NewService(store, users, families, dispatcher),
	}
}

// joinFamily puts users into a family in both the user store and the member
// resolver fake
func (fx *fixture) joinFamily(familyID string, userIDs ...string) {
	for _, id := range userIDs {
		fid := familyID
		fx.users.SetFamily(id, &fid)
	}
	fx.families.members[familyID] = append(fx.families.members[familyID], userIDs...)
}

func validCreate() *CreateExpenseRequest {
	return &CreateExpenseRequest{
		Amount:      decimal.NewFromFloat(42.50),
		Category:    "food",
		Description: "weekly groceries",
		Date:        time.Now().UnixMilli(),
	}
}

func TestCreateRoundTrip(t *testing.T) {
	fx := newFixture(t, "alice")
	ctx := context.Background()

	req := validCreate()
	created, err := fx.service.Create(ctx, "alice", req)
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "alice", created.UserID)
	assert.Equal(t, "alice", created.CreatedBy)
	assert.Equal(t, "alice", created.ModifiedBy)
	assert.Equal(t, CategoryFood, created.Category)
	assert.False(t, created.CreatedOn.IsZero())
	assert.False(t, created.LastModifiedOn.IsZero())

	got, err := fx.service.Get(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.True(t, req.Amount.Equal(got.Amount))
	assert.Equal(t, req.Description, got.Description)
	assert.Equal(t, req.Date, got.Date.UnixMilli())
	assert.Nil(t, got.FamilyID)
}

func TestCreateValidationFailures(t *testing.T) {
	fx := newFixture(t, "alice")
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*CreateExpenseRequest)
	}{
		{"zero amount", func(r *CreateExpenseRequest) { r.Amount = decimal.Zero }},
		{"amount too large", func(r *CreateExpenseRequest) { r.Amount = decimal.NewFromInt(1_000_001) }},
		{"unknown category", func(r *CreateExpenseRequest) { r.Category = "GROCERIES" }},
		{"script marker", func(r *CreateExpenseRequest) { r.Description = "<script>alert(1)" }},
		{"zero date", func(r *CreateExpenseRequest) { r.Date = 0 }},
		{"far future date", func(r *CreateExpenseRequest) { r.Date = time.Now().AddDate(0, 0, 3).UnixMilli() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreate()
			tt.mutate(req)

			_, err := fx.service.Create(ctx, "alice", req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Violations)
		})
	}
}

func TestCreateFamilyScopeRequiresMembership(t *testing.T) {
	fx := newFixture(t, "alice", "bob")
	ctx := context.Background()
	fx.joinFamily("fam-1", "bob")

	fid := "fam-1"
	req := validCreate()
	req.FamilyID = &fid

	_, err := fx.service.Create(ctx, "alice", req)
	assert.ErrorIs(t, err, ErrNoFamily)

	fx.joinFamily("fam-2", "alice")
	_, err = fx.service.Create(ctx, "alice", req)
	assert.ErrorIs(t, err, ErrNotFamilyMember)

	req2 := validCreate()
	fid2 := "fam-2"
	req2.FamilyID = &fid2
	created, err := fx.service.Create(ctx, "alice", req2)
	require.NoError(t, err)
	require.NotNil(t, created.FamilyID)
	assert.Equal(t, "fam-2", *created.FamilyID)
}

func TestReadCrossFamilyAuthorization(t *testing.T) {
	fx := newFixture(t, "alice", "bob")
	ctx := context.Background()

	created, err := fx.service.Create(ctx, "alice", validCreate())
	require.NoError(t, err)

	_, err = fx.service.Get(ctx, "bob", created.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	fx.joinFamily("fam-1", "alice", "bob")

	got, err := fx.service.Get(ctx, "bob", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestUpdateOwnerOnly(t *testing.T) {
	fx := newFixture(t, "alice", "bob")
	ctx := context.Background()
	fx.joinFamily("fam-1", "alice", "bob")

	created, err := fx.service.Create(ctx, "alice", validCreate())
	require.NoError(t, err)

	req := &UpdateExpenseRequest{
		Amount:   decimal.NewFromInt(99),
		Category: "bills",
		Date:     time.Now().UnixMilli(),
	}
	_, err = fx.service.Update(ctx, "bob", created.ID, req)
	assert.ErrorIs(t, err, ErrNotOwner)

	updated, err := fx.service.Update(ctx, "alice", created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, CategoryBills, updated.Category)
	assert.True(t, decimal.NewFromInt(99).Equal(updated.Amount))
}

func TestDeleteOwnerOrSameFamily(t *testing.T) {
	fx := newFixture(t, "alice", "bob", "mallory")
	ctx := context.Background()
	fx.joinFamily("fam-1", "alice", "bob")

	created, err := fx.service.Create(ctx, "alice", validCreate())
	require.NoError(t, err)

	err = fx.service.Delete(ctx, "mallory", created.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	require.NoError(t, fx.service.Delete(ctx, "bob", created.ID))

	_, err = fx.service.Get(ctx, "alice", created.ID)
	assert.ErrorIs(t, err, ErrExpenseNotFound)
}

func TestMonthlySumPersonalExcludesFamily(t *testing.T) {
	fx := newFixture(t, "alice")
	ctx := context.Background()
	fx.joinFamily("fam-1", "alice")

	date := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	personal := validCreate()
	personal.Amount = decimal.NewFromInt(10)
	personal.Date = date.UnixMilli()
	_, err := fx.service.Create(ctx, "alice", personal)
	require.NoError(t, err)

	fid := "fam-1"
	shared := validCreate()
	shared.Amount = decimal.NewFromInt(25)
	shared.Date = date.UnixMilli()
	shared.FamilyID = &fid
	_, err = fx.service.Create(ctx, "alice", shared)
	require.NoError(t, err)

	sum, err := fx.service.MonthlySum(ctx, "alice", 3, 2026)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(sum.Total), sum.Total.String())
	assert.Equal(t, 1, sum.Count)

	famSum, err := fx.service.FamilyMonthlySum(ctx, "alice", 3, 2026)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(25).Equal(famSum.Total), famSum.Total.String())
	assert.Equal(t, 1, famSum.Count)
}

func TestMonthlySumValidation(t *testing.T) {
	fx := newFixture(t, "alice")
	ctx := context.Background()

	_, err := fx.service.MonthlySum(ctx, "alice", 13, 2026)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = fx.service.MonthlySum(ctx, "alice", 5, 1990)
	assert.ErrorAs(t, err, &verr)
}

func TestMineCursorContinuation(t *testing.T) {
	fx := newFixture(t, "alice")
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		req := validCreate()
		req.Date = base.AddDate(0, 0, i).UnixMilli()
		_, err := fx.service.Create(ctx, "alice", req)
		require.NoError(t, err)
	}

	p := pagination.Params{Page: 1, Size: 2, SortBy: "date", Direction: pagination.Ascending}
	first, err := fx.service.Mine(ctx, "alice", p)
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, 5, first.Total)

	p.Cursor = first.Items[1].ID
	second, err := fx.service.Mine(ctx, "alice", p)
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	assert.True(t, second.Items[0].Date.After(first.Items[1].Date))
}

func TestSinceOrdering(t *testing.T) {
	fx := newFixture(t, "alice")
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		created, err := fx.service.Create(ctx, "alice", validCreate())
		require.NoError(t, err)
		ids = append(ids, created.ID)
		time.Sleep(2 * time.Millisecond)
	}

	p := pagination.Params{Page: 1, Size: 10, SortBy: "last_modified_on", Direction: pagination.Ascending}
	res, err := fx.service.Since(ctx, "alice", 1, p)
	require.NoError(t, err)
	require.Len(t, res.Items, 3)

	for i := 1; i < len(res.Items); i++ {
		assert.False(t, res.Items[i].LastModifiedOn.Before(res.Items[i-1].LastModifiedOn))
	}
}

func TestNotifyFansOutToOtherMembers(t *testing.T) {
	fx := newFixture(t, "alice", "bob", "carol")
	ctx := context.Background()
	fx.joinFamily("fam-1", "alice", "bob", "carol")

	fid := "fam-1"
	req := validCreate()
	req.FamilyID = &fid
	created, err := fx.service.Create(ctx, "alice", req)
	require.NoError(t, err)

	require.NoError(t, fx.service.Notify(ctx, "alice", created.ID))

	require.Len(t, fx.dispatcher.events, 1)
	evt := fx.dispatcher.events[0]
	assert.Equal(t, notification.TypeExpenseAdded, evt.Type)
	assert.ElementsMatch(t, []string{"bob", "carol"}, evt.Receivers)
}

func TestNotifyPersonalExpenseFails(t *testing.T) {
	fx := newFixture(t, "alice")
	ctx := context.Background()

	created, err := fx.service.Create(ctx, "alice", validCreate())
	require.NoError(t, err)

	err = fx.service.Notify(ctx, "alice", created.ID)
	assert.ErrorIs(t, err, ErrNoFamily)
}

func TestPurgeDeletedBefore(t *testing.T) {
	fx := newFixture(t, "alice")
	ctx := context.Background()

	created, err := fx.service.Create(ctx, "alice", validCreate())
	require.NoError(t, err)
	require.NoError(t, fx.service.Delete(ctx, "alice", created.ID))

	kept, err := fx.service.Create(ctx, "alice", validCreate())
	require.NoError(t, err)

	purged, err := fx.store.PurgeDeletedBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = fx.service.Get(ctx, "alice", kept.ID)
	assert.NoError(t, err)
}
