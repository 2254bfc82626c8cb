package auth

import (
	"context"

	"github.com/jdoshi/famledger/internal/user"
)

// Users is the slice of the user service the auth flow needs
type Users interface {
	EnsureUser(ctx context.Context, id, email, name string) (*user.User, error)
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// Service handles the authentication flow: provider credential exchange, app
// token issuance and rotation
type Service struct {
	verifier TokenVerifier
	tokens   *TokenManager
	users    Users
}

// NewService creates a new auth service
func NewService(verifier TokenVerifier, tokens *TokenManager, users Users) *Service {
	return &Service{verifier: verifier, tokens: tokens, users: users}
}

// LoginResult carries the issued pair plus the resolved user
type LoginResult struct {
	Pair *TokenPair
	User *user.User
}

// Login exchanges a provider ID token for an app token pair, creating the
// user record on first login
func (s *Service) Login(ctx context.Context, idToken string) (*LoginResult, error) {
	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	u, err := s.users.EnsureUser(ctx, identity.UID, identity.Email, identity.Name)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.IssuePair(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Pair: pair, User: u}, nil
}

// Refresh rotates a refresh token into a new pair
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	_, pair, err := s.tokens.Rotate(ctx, refreshToken)
	return pair, err
}

// Validate checks an access token and returns the user id it names
func (s *Service) Validate(accessToken string) (string, error) {
	return s.tokens.ParseAccess(accessToken)
}

// Logout revokes a refresh token
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.Revoke(ctx, refreshToken)
}

// Me returns the authenticated user's record
func (s *Service) Me(ctx context.Context, userID string) (*user.User, error) {
	return s.users.GetByID(ctx, userID)
}
