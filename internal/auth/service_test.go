package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdoshi/famledger/internal/user"
)

type fakeVerifier struct {
	identity *Identity
	err      error
}

func (v *fakeVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.identity, nil
}

func newAuthService(t *testing.T, verifier TokenVerifier) *Service {
	t.Helper()
	users := user.NewService(user.NewMemoryStore())
	tokens := NewTokenManager("test-secret", time.Hour, 24*time.Hour, NewMemoryStore())
	return NewService(verifier, tokens, users)
}

func TestLoginCreatesUserOnFirstAuth(t *testing.T) {
	s := newAuthService(t, &fakeVerifier{identity: &Identity{
		UID:   "uid-1",
		Email: "Alice@Example.com",
		Name:  "Alice",
	}})
	ctx := context.Background()

	result, err := s.Login(ctx, "firebase-token")
	require.NoError(t, err)

	assert.NotEmpty(t, result.Pair.AccessToken)
	assert.NotEmpty(t, result.Pair.RefreshToken)
	assert.Equal(t, "uid-1", result.User.ID)
	assert.Equal(t, "alice@example.com", result.User.Email)
	require.NotNil(t, result.User.Name)
	assert.Equal(t, "Alice", *result.User.Name)
	assert.NotEmpty(t, result.User.AliasName)

	// second login resolves the same record
	again, err := s.Login(ctx, "firebase-token")
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, again.User.ID)
	assert.Equal(t, result.User.AliasName, again.User.AliasName)
}

func TestLoginPropagatesVerifierErrors(t *testing.T) {
	s := newAuthService(t, &fakeVerifier{err: ErrReauthRequired})

	_, err := s.Login(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrReauthRequired)
}

func TestValidateRoundTrip(t *testing.T) {
	s := newAuthService(t, &fakeVerifier{identity: &Identity{UID: "uid-1", Email: "a@b.com"}})
	ctx := context.Background()

	result, err := s.Login(ctx, "token")
	require.NoError(t, err)

	userID, err := s.Validate(result.Pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", userID)
}

func TestRefreshAndLogout(t *testing.T) {
	s := newAuthService(t, &fakeVerifier{identity: &Identity{UID: "uid-1", Email: "a@b.com"}})
	ctx := context.Background()

	result, err := s.Login(ctx, "token")
	require.NoError(t, err)

	pair, err := s.Refresh(ctx, result.Pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, result.Pair.RefreshToken, pair.RefreshToken)

	require.NoError(t, s.Logout(ctx, pair.RefreshToken))

	_, err = s.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
