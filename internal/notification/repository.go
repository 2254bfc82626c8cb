package notification

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Repository handles notification data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new notification repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const notificationColumns = `id, type, title, message, family_id, family_alias, sender_id, sender_name, receiver_id, is_read, actionable, created_at`

func scanNotification(row interface{ Scan(...interface{}) error }) (*Notification, error) {
	n := &Notification{}
	err := row.Scan(
		&n.ID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.FamilyID,
		&n.FamilyAlias,
		&n.SenderID,
		&n.SenderName,
		&n.ReceiverID,
		&n.IsRead,
		&n.Actionable,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Create inserts a new notification into the database
func (r *Repository) Create(ctx context.Context, n *Notification) (*Notification, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}

	query := `
		INSERT INTO notifications (id, type, title, message, family_id, family_alias, sender_id, sender_name, receiver_id, actionable)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + notificationColumns

	created, err := scanNotification(r.db.QueryRowContext(ctx, query,
		n.ID, n.Type, n.Title, n.Message, n.FamilyID, n.FamilyAlias, n.SenderID, n.SenderName, n.ReceiverID, n.Actionable,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return created, nil
}

// GetByID retrieves a notification by its ID
func (r *Repository) GetByID(ctx context.Context, id string) (*Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	n, err := scanNotification(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

// ListByReceiver retrieves notifications for a user, newest first
func (r *Repository) ListByReceiver(ctx context.Context, receiverID string, limit, offset int, unreadOnly bool) ([]*Notification, int, error) {
	countQuery := `SELECT COUNT(*) FROM notifications WHERE receiver_id = $1`
	if unreadOnly {
		countQuery += ` AND is_read = false`
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, receiverID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE receiver_id = $1`
	if unreadOnly {
		query += ` AND is_read = false`
	}
	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, receiverID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	return notifications, total, nil
}

// MarkAsRead marks a notification as read
func (r *Repository) MarkAsRead(ctx context.Context, id string) error {
	query := `UPDATE notifications SET is_read = true WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return nil
}

// MarkAllAsRead marks all notifications as read for a user
func (r *Repository) MarkAllAsRead(ctx context.Context, receiverID string) error {
	query := `UPDATE notifications SET is_read = true WHERE receiver_id = $1 AND is_read = false`
	if _, err := r.db.ExecContext(ctx, query, receiverID); err != nil {
		return fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	return nil
}

// SetActionable toggles the actionable flag
func (r *Repository) SetActionable(ctx context.Context, id string, actionable bool) error {
	query := `UPDATE notifications SET actionable = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, actionable); err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	return nil
}

// Delete removes a notification
func (r *Repository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM notifications WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

// UnreadCount returns the count of unread notifications for a user
func (r *Repository) UnreadCount(ctx context.Context, receiverID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE receiver_id = $1 AND is_read = false`
	if err := r.db.QueryRowContext(ctx, query, receiverID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
