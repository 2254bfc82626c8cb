package family

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdoshi/famledger/internal/notification"
	"github.com/jdoshi/famledger/internal/user"
)

type recordingDispatcher struct {
	events []notification.Event
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, evt notification.Event) {
	d.events = append(d.events, evt)
}

func (d *recordingDispatcher) last() notification.Event {
	return d.events[len(d.events)-1]
}

type fixture struct {
	users      *user.MemoryStore
	store      *MemoryStore
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

	store := NewMemoryStore(users)
	dispatcher := &recordingDispatcher{}
	return &fixture{
		users:      users,
		store:      store,
		dispatcher: dispatcher,
		service:    NewService(store, users, dispatcher),
	}
}

func TestCreateFamily(t *testing.T) {
	fx := newFixture(t, "alice")
	ctx := context.Background()

	f, err := fx.service.Create(ctx, "alice", "The Smiths")
	require.NoError(t, err)

	assert.Equal(t, "The Smiths", f.Name)
	assert.Equal(t, "alice", f.HeadID)
	assert.Equal(t, DefaultMaxSize, f.MaxSize)
	assert.Regexp(t, `^[A-Z0-9]{6}$`, f.AliasName)

	members, err := fx.store.Members(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "alice", members[0].UserID)

	u, err := fx.users.GetByID(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, u.FamilyID)
	assert.Equal(t, f.ID, *u.FamilyID)
}

func TestCreateFamilyValidation(t *testing.T) {
	fx := newFixture(t, "alice")
	ctx := context.Background()

	_, err := fx.service.Create(ctx, "alice", "x")
	assert.Error(t, err)

	_, err = fx.service.Create(ctx, "alice", " padded ")
	assert.Error(t, err)

	_, err = fx.service.Create(ctx, "alice", "bad<name>")
	assert.Error(t, err)
}

func TestCreateFamilyNameTaken(t *testing.T) {
	fx := newFixture(t, "alice", "bob")
	ctx := context.Background()

	_, err := fx.service.Create(ctx, "alice", "The Smiths")
	require.NoError(t, err)

	_, err = fx.service.Create(ctx, "bob", "the smiths")
	assert.ErrorIs(t, err, ErrNameTaken)
}

func TestCreateFamilyAlreadyInFamily(t *testing.T) {
	fx := newFixture(t, "alice")
	ctx := context.Background()

	_, err := fx.service.Create(ctx, "alice", "First")
	require.NoError(t, err)

	_, err = fx.service.Create(ctx, "alice", "Second")
	assert.ErrorIs(t, err, ErrAlreadyInFamily)
}

func TestJoinFamily(t *testing.T) {
	fx := newFixture(t, "alice", "bob")
	ctx := context.Background()

	f, err := fx.service.Create(ctx, "alice", "The Smiths")
	require.NoError(t, err)

	joined, err := fx.service.Join(ctx, "bob", f.AliasName)
	require.NoError(t, err)
	assert.Equal(t, f.ID, joined.ID)

	members, err := fx.store.Members(ctx, f.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	evt := fx.dispatcher.last()
	assert.Equal(t, notification.TypeMemberJoined, evt.Type)
	assert.Equal(t, []string{"alice"}, evt.Receivers)
}

func TestJoinUnknownAlias(t *testing.T) {
	fx := newFixture(t, "bob")

	_, err := fx.service.Join(context.Background(), "bob", "ZZZZZZ")
	assert.ErrorIs(t, err, ErrFamilyNotFound)
}

func TestJoinAtCapacity(t *testing.T) {
	ids := []string{"head"}
	for i := 0; i < DefaultMaxSize; i++ {
		ids = append(ids, fmt.Sprintf("member%d", i))
	}
	fx := newFixture(t, ids...)
	ctx := context.Background()

	f, err := fx.service.Create(ctx, "head", "Full House")
	require.NoError(t, err)

	for i := 0; i < DefaultMaxSize-1; i++ {
		_, err := fx.service.Join(ctx, fmt.Sprintf("member%d", i), f.AliasName)
		require.NoError(t, err)
	}

	_, err = fx.service.Join(ctx, fmt.Sprintf("member%d", DefaultMaxSize-1), f.AliasName)
	assert.ErrorIs(t, err, ErrFamilyFull)
}

func TestLeaveSoleMemberDeletesFamily(t *testing.T) {
	fx := newFixture(t, "alice")
	ctx := context.Background()

	f, err := fx.service.Create(ctx, "alice", "Short Lived")
	require.NoError(t, err)

	require.NoError(t, fx.service.Leave(ctx, "alice"))

	got, err := fx.store.GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	u, err := fx.users.GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, u.FamilyID)
}

func TestLeaveHeadReassignsToEarliestMember(t *testing.T) {
	fx := newFixture(t, "alice", "bob", "carol")
	ctx := context.Background()

	f, err := fx.service.Create(ctx, "alice", "The Smiths")
	require.NoError(t, err)

	_, err = fx.service.Join(ctx, "bob", f.AliasName)
	require.NoError(t, err)
	_, err = fx.service.Join(ctx, "carol", f.AliasName)
	require.NoError(t, err)

	require.NoError(t, fx.service.Leave(ctx, "alice"))

	got, err := fx.store.GetByID(ctx, f.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "bob", got.HeadID)

	evt := fx.dispatcher.last()
	assert.Equal(t, notification.TypeHeadChanged, evt.Type)
	assert.Equal(t, []string{"bob"}, evt.Receivers)
}

func TestLeaveWithoutFamily(t *testing.T) {
	fx := newFixture(t, "alice")

	err := fx.service.Leave(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrNoFamily)
}

func TestInviteFlow(t *testing.T) {
	fx := newFixture(t, "alice", "bob")
	ctx := context.Background()

	f, err := fx.service.Create(ctx, "alice", "The Smiths")
	require.NoError(t, err)

	require.NoError(t, fx.service.Invite(ctx, "alice", "bob@example.com"))

	evt := fx.dispatcher.last()
	assert.Equal(t, notification.TypeFamilyInvite, evt.Type)
	assert.True(t, evt.Actionable)

	joined, err := fx.service.AcceptInvitation(ctx, "bob", f.AliasName)
	require.NoError(t, err)
	assert.Equal(t, f.ID, joined.ID)

	members, err := fx.store.Members(ctx, f.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	inv, err := fx.store.GetInvitation(ctx, f.ID, "bob@example.com")
	require.NoError(t, err)
	assert.Nil(t, inv)
}

func TestInviteNotHead(t *testing.T) {
	fx := newFixture(t, "alice", "bob", "carol")
	ctx := context.Background()

	f, err := fx.service.Create(ctx, "alice", "The Smiths")
	require.NoError(t, err)
	_, err = fx.service.Join(ctx, "bob", f.AliasName)
	require.NoError(t, err)

	err = fx.service.Invite(ctx, "bob", "carol@example.com")
	assert.ErrorIs(t, err, ErrNotHead)
}

func TestInviteDuplicate(t *testing.T) {
	fx := newFixture(t, "alice", "bob")
	ctx := context.Background()

	_, err := fx.service.Create(ctx, "alice", "The Smiths")
	require.NoError(t, err)

	require.NoError(t, fx.service.Invite(ctx, "alice", "bob@example.com"))
	err = fx.service.Invite(ctx, "alice", "bob@example.com")
	assert.ErrorIs(t, err, ErrAlreadyInvited)
}

func TestInviteUnknownUser(t *testing.T) {
	fx := newFixture(t, "alice")
	ctx := context.Background()

	_, err := fx.service.Create(ctx, "alice", "The Smiths")
	require.NoError(t, err)

	err = fx.service.Invite(ctx, "alice", "stranger@example.com")
	assert.ErrorIs(t, err, ErrInviteeNotFound)
}

// The user service reports a missing user as ErrUserNotFound rather than a
// nil user; the family workflow must treat both the same.
func TestUnknownEmailThroughUserService(t *testing.T) {
	users := user.NewMemoryStore()
	_, err := users.Create(context.Background(), &user.User{
		ID:        "alice",
		Email:     "alice@example.com",
		AliasName: "alice1234",
	})
	require.NoError(t, err)

	store := NewMemoryStore(users)
	svc := NewService(store, user.NewService(users), &recordingDispatcher{})
	ctx := context.Background()

	_, err = svc.Create(ctx, "alice", "The Smiths")
	require.NoError(t, err)

	err = svc.Invite(ctx, "alice", "ghost@example.com")
	assert.ErrorIs(t, err, ErrInviteeNotFound)

	err = svc.ResendInvitation(ctx, "alice", "ghost@example.com")
	assert.ErrorIs(t, err, ErrInviteNotFound)

	err = svc.RemoveMember(ctx, "alice", "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestAcceptInvitationWithoutInvite(t *testing.T) {
	fx := newFixture(t, "alice", "bob")
	ctx := context.Background()

	f, err := fx.service.Create(ctx, "alice", "The Smiths")
	require.NoError(t, err)

	_, err = fx.service.AcceptInvitation(ctx, "bob", f.AliasName)
	assert.ErrorIs(t, err, ErrInviteNotFound)
}

func TestRejectInvitationNotifiesHead(t *testing.T) {
	fx := newFixture(t, "alice", "bob")
	ctx := context.Background()

	f, err := fx.service.Create(ctx, "alice", "The Smiths")
	require.NoError(t, err)
	require.NoError(t, fx.service.Invite(ctx, "alice", "bob@example.com"))

	require.NoError(t, fx.service.RejectInvitation(ctx, "bob", f.AliasName))

	evt := fx.dispatcher.last()
	assert.Equal(t, notification.TypeInviteRejected, evt.Type)
	assert.Equal(t, []string{"alice"}, evt.Receivers)

	inv, err := fx.store.GetInvitation(ctx, f.ID, "bob@example.com")
	require.NoError(t, err)
	assert.Nil(t, inv)
}

func TestJoinRequestFlow(t *testing.T) {
	fx := newFixture(t, "alice", "bob")
	ctx := context.Background()

	f, err := fx.service.Create(ctx, "alice", "The Smiths")
	require.NoError(t, err)

	jr, err := fx.service.RequestToJoin(ctx, "bob", f.AliasName)
	require.NoError(t, err)
	assert.Equal(t, JoinRequestPending, jr.Status)

	_, err = fx.service.RequestToJoin(ctx, "bob", f.AliasName)
	assert.ErrorIs(t, err, ErrRequestPending)

	require.NoError(t, fx.service.AcceptJoinRequest(ctx, "alice", "bob"))

	members, err := fx.store.Members(ctx, f.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	got, err := fx.store.GetJoinRequest(ctx, jr.ID)
	require.NoError(t, err)
	assert.Equal(t, JoinRequestAccepted, got.Status)

	evt := fx.dispatcher.last()
	assert.Equal(t, notification.TypeJoinRequestAccepted, evt.Type)
	assert.Equal(t, []string{"bob"}, evt.Receivers)
}

func TestRejectJoinRequestKeepsHistory(t *testing.T) {
	fx := newFixture(t, "alice", "bob")
	ctx := context.Background()

	f, err := fx.service.Create(ctx, "alice", "The Smiths")
	require.NoError(t, err)

	jr, err := fx.service.RequestToJoin(ctx, "bob", f.AliasName)
	require.NoError(t, err)

	require.NoError(t, fx.service.RejectJoinRequest(ctx, "alice", "bob"))

	got, err := fx.store.GetJoinRequest(ctx, jr.ID)
	require.NoError(t, err)
	assert.Equal(t, JoinRequestRejected, got.Status)

	u, err := fx.users.GetByID(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, u.FamilyID)

	again, err := fx.service.RequestToJoin(ctx, "bob", f.AliasName)
	require.NoError(t, err)
	assert.Equal(t, JoinRequestPending, again.Status)
}

func TestCancelJoinRequestOwnerOnly(t *testing.T) {
	fx := newFixture(t, "alice", "bob", "mallory")
	ctx := context.Background()

	f, err := fx.service.Create(ctx, "alice", "The Smiths")
	require.NoError(t, err)

	jr, err := fx.service.RequestToJoin(ctx, "bob", f.AliasName)
	require.NoError(t, err)

	err = fx.service.CancelJoinRequest(ctx, "mallory", jr.ID)
	assert.ErrorIs(t, err, ErrRequestNotFound)

	require.NoError(t, fx.service.CancelJoinRequest(ctx, "bob", jr.ID))

	got, err := fx.store.GetJoinRequest(ctx, jr.ID)
	require.NoError(t, err)
	assert.Equal(t, JoinRequestCancelled, got.Status)
}

func TestRemoveMember(t *testing.T) {
	fx := newFixture(t, "alice", "bob")
	ctx := context.Background()

	f, err := fx.service.Create(ctx, "alice", "The Smiths")
	require.NoError(t, err)
	_, err = fx.service.Join(ctx, "bob", f.AliasName)
	require.NoError(t, err)

	require.NoError(t, fx.service.RemoveMember(ctx, "alice", "bob@example.com"))

	members, err := fx.store.Members(ctx, f.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	u, err := fx.users.GetByID(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, u.FamilyID)

	evt := fx.dispatcher.last()
	assert.Equal(t, notification.TypeMemberRemoved, evt.Type)
	assert.Equal(t, []string{"bob"}, evt.Receivers)
}

func TestRemoveMemberSelf(t *testing.T) {
	fx := newFixture(t, "alice")
	ctx := context.Background()

	_, err := fx.service.Create(ctx, "alice", "The Smiths")
	require.NoError(t, err)

	err = fx.service.RemoveMember(ctx, "alice", "alice@example.com")
	assert.ErrorIs(t, err, ErrCannotRemoveSelf)
}

func TestUpdateName(t *testing.T) {
	fx := newFixture(t, "alice", "bob")
	ctx := context.Background()

	_, err := fx.service.Create(ctx, "alice", "The Smiths")
	require.NoError(t, err)
	_, err = fx.service.Create(ctx, "bob", "The Jones")
	require.NoError(t, err)

	f, err := fx.service.UpdateName(ctx, "alice", "Smith Clan")
	require.NoError(t, err)
	assert.Equal(t, "Smith Clan", f.Name)

	_, err = fx.service.UpdateName(ctx, "alice", "the jones")
	assert.ErrorIs(t, err, ErrNameTaken)
}

func TestDetailsHeadSeesPendingLists(t *testing.T) {
	fx := newFixture(t, "alice", "bob", "carol")
	ctx := context.Background()

	f, err := fx.service.Create(ctx, "alice", "The Smiths")
	require.NoError(t, err)
	require.NoError(t, fx.service.Invite(ctx, "alice", "bob@example.com"))
	_, err = fx.service.RequestToJoin(ctx, "carol", f.AliasName)
	require.NoError(t, err)

	d, err := fx.service.Details(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, d.Members, 1)
	assert.Len(t, d.Invitations, 1)
	assert.Len(t, d.JoinRequests, 1)
}

func TestDetailsMemberHidesPendingLists(t *testing.T) {
	fx := newFixture(t, "alice", "bob", "carol")
	ctx := context.Background()

	f, err := fx.service.Create(ctx, "alice", "The Smiths")
	require.NoError(t, err)
	_, err = fx.service.Join(ctx, "bob", f.AliasName)
	require.NoError(t, err)
	require.NoError(t, fx.service.Invite(ctx, "alice", "carol@example.com"))

	d, err := fx.service.Details(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, d.Members, 2)
	assert.Empty(t, d.Invitations)
	assert.Empty(t, d.JoinRequests)
}
