package auth

import (
	"context"
	"sync"
	"time"
)

// MemoryStore provides an in-memory RefreshStore for testing
type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]*RefreshToken
}

// NewMemoryStore creates a new in-memory refresh token store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]*RefreshToken)}
}

func (s *MemoryStore) Save(ctx context.Context, t *RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *t
	cp.CreatedAt = time.Now().UTC()
	s.tokens[cp.Token] = &cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, token string) (*RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[token]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, token)
	return nil
}

func (s *MemoryStore) DeleteForUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, t := range s.tokens {
		if t.UserID == userID {
			delete(s.tokens, token)
		}
	}
	return nil
}
