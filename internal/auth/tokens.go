package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
)

// RefreshToken is a persisted long-lived token subject to rotation and
// revocation
type RefreshToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// RefreshStore persists refresh tokens
type RefreshStore interface {
	Save(ctx context.Context, t *RefreshToken) error
	Get(ctx context.Context, token string) (*RefreshToken, error)
	Delete(ctx context.Context, token string) error
	DeleteForUser(ctx context.Context, userID string) error
}

// TokenPair is the issued access/refresh token pair
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// TokenManager issues and verifies app tokens: short-lived HS256 access
// tokens and opaque persisted refresh tokens.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      RefreshStore
	now        func() time.Time
}

// NewTokenManager creates a new token manager
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration, store RefreshStore) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      store,
		now:        time.Now,
	}
}

// IssueAccess signs an access token for the user
func (m *TokenManager) IssueAccess(userID string) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// ParseAccess verifies an access token and returns the user id
func (m *TokenManager) ParseAccess(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// IssuePair issues a fresh access/refresh pair for the user
func (m *TokenManager) IssuePair(ctx context.Context, userID string) (*TokenPair, error) {
	access, err := m.IssueAccess(userID)
	if err != nil {
		return nil, err
	}

	refresh := &RefreshToken{
		Token:     uuid.New().String(),
		UserID:    userID,
		ExpiresAt: m.now().Add(m.refreshTTL),
	}
	if err := m.store.Save(ctx, refresh); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh.Token,
		ExpiresIn:    int64(m.accessTTL.Seconds()),
	}, nil
}

// Rotate exchanges a valid refresh token for a new pair, invalidating the old
// token
func (m *TokenManager) Rotate(ctx context.Context, refreshToken string) (string, *TokenPair, error) {
	stored, err := m.store.Get(ctx, refreshToken)
	if err != nil {
		return "", nil, err
	}
	if stored == nil || stored.ExpiresAt.Before(m.now()) {
		return "", nil, ErrInvalidToken
	}

	if err := m.store.Delete(ctx, refreshToken); err != nil {
		return "", nil, err
	}

	pair, err := m.IssuePair(ctx, stored.UserID)
	if err != nil {
		return "", nil, err
	}
	return stored.UserID, pair, nil
}

// Revoke invalidates one refresh token
func (m *TokenManager) Revoke(ctx context.Context, refreshToken string) error {
	return m.store.Delete(ctx, refreshToken)
}

// RevokeAll invalidates every refresh token of a user
func (m *TokenManager) RevokeAll(ctx context.Context, userID string) error {
	return m.store.DeleteForUser(ctx, userID)
}
