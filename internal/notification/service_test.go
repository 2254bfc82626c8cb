package notification

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdoshi/famledger/internal/push"
)

func newTestService(t *testing.T) (*Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return NewService(store), store
}

func TestMarkAsReadIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	n, err := store.Create(ctx, &Notification{
		Type:       TypeFamilyInvite,
		Title:      "Invitation",
		Message:    "You have been invited",
		ReceiverID: "user-1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.MarkAsRead(ctx, n.ID, "user-1"))
	got, err := svc.GetByID(ctx, n.ID, "user-1")
	require.NoError(t, err)
	assert.True(t, got.IsRead)

	// Second mark succeeds and leaves it read
	require.NoError(t, svc.MarkAsRead(ctx, n.ID, "user-1"))
	got, err = svc.GetByID(ctx, n.ID, "user-1")
	require.NoError(t, err)
	assert.True(t, got.IsRead)
}

func TestMarkAsReadWrongReceiver(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	n, err := store.Create(ctx, &Notification{
		Type:       TypeExpenseAdded,
		Title:      "Expense",
		Message:    "New expense",
		ReceiverID: "user-1",
	})
	require.NoError(t, err)

	err = svc.MarkAsRead(ctx, n.ID, "user-2")
	assert.ErrorIs(t, err, ErrNotReceiver)
}

func TestUnreadCount(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	for i := 0; i < 3; i++ {
		_, err := store.Create(ctx, &Notification{
			Type:       TypeExpenseAdded,
			Title:      "Expense",
			Message:    "New expense",
			ReceiverID: "user-1",
		})
		require.NoError(t, err)
	}

	count, err := svc.UnreadCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, svc.MarkAllAsRead(ctx, "user-1"))
	count, err = svc.UnreadCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

type fakeDevices struct {
	tokens      map[string][]string
	deactivated []string
}

func (f *fakeDevices) Tokens(ctx context.Context, userIDs []string) ([]string, error) {
	var out []string
	for _, id := range userIDs {
		out = append(out, f.tokens[id]...)
	}
	return out, nil
}

func (f *fakeDevices) DeactivateToken(ctx context.Context, token string) error {
	f.deactivated = append(f.deactivated, token)
	return nil
}

type fakeSender struct {
	sent    [][]string
	invalid []string
}

func (f *fakeSender) Send(ctx context.Context, tokens []string, msg push.Message) ([]string, error) {
	f.sent = append(f.sent, tokens)
	return f.invalid, nil
}

func TestFanoutPersistsPerReceiverAndPrunesTokens(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	devices := &fakeDevices{tokens: map[string][]string{
		"user-1": {"tok-1"},
		"user-2": {"tok-2", "tok-stale"},
	}}
	sender := &fakeSender{invalid: []string{"tok-stale"}}
	fanout := NewFanout(store, devices, sender, zerolog.Nop())

	fanout.Dispatch(ctx, Event{
		Type:      TypeHeadChanged,
		Title:     "Family head changed",
		Message:   "You are now the family head",
		FamilyID:  "fam-1",
		Receivers: []string{"user-1", "user-2"},
	})

	// one inbox row per receiver
	for _, id := range []string{"user-1", "user-2"} {
		items, total, err := store.ListByReceiver(ctx, id, 10, 0, false)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, TypeHeadChanged, items[0].Type)
	}

	// one batched push covering all tokens
	require.Len(t, sender.sent, 1)
	assert.ElementsMatch(t, []string{"tok-1", "tok-2", "tok-stale"}, sender.sent[0])

	// stale token pruned
	assert.Equal(t, []string{"tok-stale"}, devices.deactivated)
}
