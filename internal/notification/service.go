package notification

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotReceiver          = errors.New("not the receiver of this notification")
)

// Service handles the notification inbox
type Service struct {
	store Store
}

// NewService creates a new notification service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// GetByID retrieves a notification, enforcing receiver ownership
func (s *Service) GetByID(ctx context.Context, id, userID string) (*Notification, error) {
	n, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNotificationNotFound
	}
	if n.ReceiverID != userID {
		return nil, ErrNotReceiver
	}
	return n, nil
}

// ListByReceiver retrieves notifications for a user
func (s *Service) ListByReceiver(ctx context.Context, receiverID string, page, size int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	offset := (page - 1) * size
	return s.store.ListByReceiver(ctx, receiverID, size, offset, unreadOnly)
}

// MarkAsRead marks a notification as read. Idempotent: marking an already
// read notification succeeds and leaves is_read true.
func (s *Service) MarkAsRead(ctx context.Context, id, userID string) error {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return err
	}
	return s.store.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all of a user's notifications as read
func (s *Service) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.store.MarkAllAsRead(ctx, userID)
}

// SetActionable toggles whether a notification still offers an action
func (s *Service) SetActionable(ctx context.Context, id, userID string, actionable bool) error {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return err
	}
	return s.store.SetActionable(ctx, id, actionable)
}

// Delete removes a notification from the inbox
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// UnreadCount returns the number of unread notifications
func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.store.UnreadCount(ctx, userID)
}
