package user

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

// Common errors
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrAliasExhausted = errors.New("could not generate a unique alias")
)

const aliasAttempts = 10

// Service handles user business logic
type Service struct {
	store Store
}

// NewService creates a new user service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// EnsureUser returns the user for the given identity, creating the record on
// first successful authentication.
func (s *Service) EnsureUser(ctx context.Context, id, email, name string) (*User, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	alias, err := s.generateAlias(ctx, email)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:                 id,
		Email:              strings.ToLower(email),
		AliasName:          alias,
		CurrencyPreference: "$",
	}
	if name != "" {
		u.Name = &name
	}

	return s.store.Create(ctx, u)
}

// GetByID retrieves a user by their ID
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// GetByEmail retrieves a user by their email
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// UpdateProfile modifies the acting user's profile
func (s *Service) UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest) (*User, error) {
	u, err := s.store.UpdateProfile(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// RegisterDevice records a push token for the user
func (s *Service) RegisterDevice(ctx context.Context, userID string, req *RegisterDeviceRequest) (*Device, error) {
	return s.store.RegisterDevice(ctx, &Device{
		UserID:     userID,
		FCMToken:   req.FCMToken,
		DeviceName: req.DeviceName,
		DeviceType: req.DeviceType,
	})
}

// ListDevices retrieves the user's active devices
func (s *Service) ListDevices(ctx context.Context, userID string) ([]*Device, error) {
	return s.store.ListDevices(ctx, userID)
}

// RemoveDevice removes a device registration
func (s *Service) RemoveDevice(ctx context.Context, userID, fcmToken string) error {
	return s.store.RemoveDevice(ctx, userID, fcmToken)
}

// generateAlias derives a unique handle from the email local part plus a
// random numeric suffix, retrying a bounded number of times on collision.
func (s *Service) generateAlias(ctx context.Context, email string) (string, error) {
	base := strings.ToLower(strings.SplitN(email, "@", 2)[0])
	var b strings.Builder
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	base = b.String()
	if len(base) > 12 {
		base = base[:12]
	}
	if base == "" {
		base = "user"
	}

	for i := 0; i < aliasAttempts; i++ {
		candidate := fmt.Sprintf("%s%04d", base, rand.Intn(10000))
		taken, err := s.store.AliasExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrAliasExhausted
}

// Tokens returns the active push tokens registered by the given users
func (s *Service) Tokens(ctx context.Context, userIDs []string) ([]string, error) {
	devices, err := s.store.TokensForUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	tokens := make([]string, 0, len(devices))
	for _, d := range devices {
		tokens = append(tokens, d.FCMToken)
	}
	return tokens, nil
}

// DeactivateToken marks a push token as stale
func (s *Service) DeactivateToken(ctx context.Context, token string) error {
	return s.store.DeactivateToken(ctx, token)
}
