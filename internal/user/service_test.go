package user

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureUserCreatesOnFirstLogin(t *testing.T) {
	s := NewService(NewMemoryStore())

	u, err := s.EnsureUser(context.Background(), "uid-1", "Jane.Doe@Example.com", "Jane Doe")
	require.NoError(t, err)

	assert.Equal(t, "uid-1", u.ID)
	assert.Equal(t, "jane.doe@example.com", u.Email)
	require.NotNil(t, u.Name)
	assert.Equal(t, "Jane Doe", *u.Name)
	assert.Equal(t, "$", u.CurrencyPreference)
	assert.Regexp(t, regexp.MustCompile(`^janedoe\d{4}$`), u.AliasName)
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	s := NewService(NewMemoryStore())

	first, err := s.EnsureUser(context.Background(), "uid-1", "jane@example.com", "Jane")
	require.NoError(t, err)

	second, err := s.EnsureUser(context.Background(), "uid-1", "jane@example.com", "Jane")
	require.NoError(t, err)

	assert.Equal(t, first.AliasName, second.AliasName)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
}

func TestEnsureUserEmptyName(t *testing.T) {
	s := NewService(NewMemoryStore())

	u, err := s.EnsureUser(context.Background(), "uid-2", "anon@example.com", "")
	require.NoError(t, err)
	assert.Nil(t, u.Name)
}

func TestGenerateAliasFallsBackForUnusableLocalPart(t *testing.T) {
	s := NewService(NewMemoryStore())

	u, err := s.EnsureUser(context.Background(), "uid-3", "+_-@example.com", "")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^user\d{4}$`), u.AliasName)
}

func TestGetByIDNotFound(t *testing.T) {
	s := NewService(NewMemoryStore())

	_, err := s.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfile(t *testing.T) {
	s := NewService(NewMemoryStore())

	_, err := s.EnsureUser(context.Background(), "uid-1", "jane@example.com", "Jane")
	require.NoError(t, err)

	name := "Jane D."
	currency := "EUR"
	u, err := s.UpdateProfile(context.Background(), "uid-1", &UpdateProfileRequest{
		Name:               &name,
		CurrencyPreference: &currency,
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane D.", *u.Name)
	assert.Equal(t, "EUR", u.CurrencyPreference)
}

func TestDeviceLifecycle(t *testing.T) {
	s := NewService(NewMemoryStore())
	ctx := context.Background()

	_, err := s.RegisterDevice(ctx, "uid-1", &RegisterDeviceRequest{
		FCMToken:   "tok-a",
		DeviceName: "Pixel",
		DeviceType: "android",
	})
	require.NoError(t, err)
	_, err = s.RegisterDevice(ctx, "uid-1", &RegisterDeviceRequest{
		FCMToken:   "tok-b",
		DeviceName: "iPhone",
		DeviceType: "ios",
	})
	require.NoError(t, err)

	devices, err := s.ListDevices(ctx, "uid-1")
	require.NoError(t, err)
	assert.Len(t, devices, 2)

	tokens, err := s.Tokens(ctx, []string{"uid-1"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"tok-a", "tok-b"}, tokens)

	require.NoError(t, s.DeactivateToken(ctx, "tok-a"))
	tokens, err = s.Tokens(ctx, []string{"uid-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-b"}, tokens)

	require.NoError(t, s.RemoveDevice(ctx, "uid-1", "tok-b"))
	devices, err = s.ListDevices(ctx, "uid-1")
	require.NoError(t, err)
	assert.Empty(t, devices)
}

func TestRegisterDeviceUpsertsByToken(t *testing.T) {
	s := NewService(NewMemoryStore())
	ctx := context.Background()

	first, err := s.RegisterDevice(ctx, "uid-1", &RegisterDeviceRequest{FCMToken: "tok-a", DeviceName: "Old"})
	require.NoError(t, err)

	second, err := s.RegisterDevice(ctx, "uid-2", &RegisterDeviceRequest{FCMToken: "tok-a", DeviceName: "New"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "uid-2", second.UserID)
	assert.Equal(t, "New", second.DeviceName)
}
