package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore provides an in-memory implementation of Store for testing.
type MemoryStore struct {
	mu            sync.RWMutex
	notifications map[string]*Notification
}

// NewMemoryStore creates a new in-memory notification store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{notifications: make(map[string]*Notification)}
}

func (s *MemoryStore) Create(ctx context.Context, n *Notification) (*Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *n
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	cp.CreatedAt = time.Now().UTC()
	s.notifications[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notifications[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (s *MemoryStore) ListByReceiver(ctx context.Context, receiverID string, limit, offset int, unreadOnly bool) ([]*Notification, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []*Notification
	for _, n := range s.notifications {
		if n.ReceiverID != receiverID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		cp := *n
		all = append(all, &cp)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (s *MemoryStore) MarkAsRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.notifications[id]; ok {
		n.IsRead = true
	}
	return nil
}

func (s *MemoryStore) MarkAllAsRead(ctx context.Context, receiverID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notifications {
		if n.ReceiverID == receiverID {
			n.IsRead = true
		}
	}
	return nil
}

func (s *MemoryStore) SetActionable(ctx context.Context, id string, actionable bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.notifications[id]; ok {
		n.Actionable = actionable
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.notifications, id)
	return nil
}

func (s *MemoryStore) UnreadCount(ctx context.Context, receiverID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications {
		if n.ReceiverID == receiverID && !n.IsRead {
			count++
		}
	}
	return count, nil
}
