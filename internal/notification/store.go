package notification

import "context"

// Store defines the persistence interface for notifications
type Store interface {
	Create(ctx context.Context, n *Notification) (*Notification, error)
	GetByID(ctx context.Context, id string) (*Notification, error)
	ListByReceiver(ctx context.Context, receiverID string, limit, offset int, unreadOnly bool) ([]*Notification, int, error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context, receiverID string) error
	SetActionable(ctx context.Context, id string, actionable bool) error
	Delete(ctx context.Context, id string) error
	UnreadCount(ctx context.Context, receiverID string) (int, error)
}
