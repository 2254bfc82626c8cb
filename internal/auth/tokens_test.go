package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*TokenManager, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return NewTokenManager("test-secret", time.Hour, 24*time.Hour, store), store
}

func TestIssueAndParseAccess(t *testing.T) {
	m, _ := newManager(t)

	token, err := m.IssueAccess("alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := m.ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", userID)
}

func TestParseAccessRejectsTampering(t *testing.T) {
	m, _ := newManager(t)
	other := NewTokenManager("other-secret", time.Hour, 24*time.Hour, NewMemoryStore())

	token, err := other.IssueAccess("alice")
	require.NoError(t, err)

	_, err = m.ParseAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ParseAccess("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessRejectsExpired(t *testing.T) {
	m, _ := newManager(t)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.IssueAccess("alice")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ParseAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRotateInvalidatesOldToken(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	pair, err := m.IssuePair(ctx, "alice")
	require.NoError(t, err)

	userID, next, err := m.Rotate(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", userID)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, _, err = m.Rotate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRotateRejectsExpiredRefresh(t *testing.T) {
	m, store := newManager(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &RefreshToken{
		Token:     "stale",
		UserID:    "alice",
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	_, _, err := m.Rotate(ctx, "stale")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevoke(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	pair, err := m.IssuePair(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, pair.RefreshToken))

	_, _, err = m.Rotate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokeAll(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	a, err := m.IssuePair(ctx, "alice")
	require.NoError(t, err)
	b, err := m.IssuePair(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, m.RevokeAll(ctx, "alice"))

	_, _, err = m.Rotate(ctx, a.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, _, err = m.Rotate(ctx, b.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
