package user

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore provides an in-memory implementation of Store for testing.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]*User
	devices map[string]*Device // keyed by fcm token
	nextID  int64
}

// NewMemoryStore creates a new in-memory user store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]*User),
		devices: make(map[string]*Device),
	}
}

func (s *MemoryStore) Create(ctx context.Context, u *User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *u
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	if cp.CurrencyPreference == "" {
		cp.CurrencyPreference = "$"
	}
	s.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) AliasExists(ctx context.Context, alias string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.AliasName == alias {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	if req.Name != nil {
		name := *req.Name
		u.Name = &name
	}
	if req.CurrencyPreference != nil {
		u.CurrencyPreference = *req.CurrencyPreference
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

// SetFamily assigns or clears a user's family reference. Test helper for the
// family workflow, mirroring what the postgres repository does in-transaction.
func (s *MemoryStore) SetFamily(userID string, familyID *string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[userID]; ok {
		u.FamilyID = familyID
	}
}

func (s *MemoryStore) RegisterDevice(ctx context.Context, d *Device) (*Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.devices[d.FCMToken]
	if ok {
		existing.UserID = d.UserID
		existing.DeviceName = d.DeviceName
		existing.DeviceType = d.DeviceType
		existing.IsActive = true
		cp := *existing
		return &cp, nil
	}

	s.nextID++
	cp := *d
	cp.ID = s.nextID
	cp.IsActive = true
	cp.CreatedAt = time.Now().UTC()
	s.devices[cp.FCMToken] = &cp
	out := cp
	return &out, nil
}

func (s *MemoryStore) ListDevices(ctx context.Context, userID string) ([]*Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Device
	for _, d := range s.devices {
		if d.UserID == userID && d.IsActive {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) RemoveDevice(ctx context.Context, userID, fcmToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.devices[fcmToken]
	if !ok || d.UserID != userID {
		return ErrUserNotFound
	}
	delete(s.devices, fcmToken)
	return nil
}

func (s *MemoryStore) TokensForUsers(ctx context.Context, userIDs []string) ([]*Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		ids[id] = true
	}

	var out []*Device
	for _, d := range s.devices {
		if ids[d.UserID] && d.IsActive {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) DeactivateToken(ctx context.Context, fcmToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.devices[fcmToken]; ok {
		d.IsActive = false
	}
	return nil
}
