package user

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Repository handles user data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new user repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, name, email, alias_name, family_id, currency_preference, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*User, error) {
	u := &User{}
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.AliasName,
		&u.FamilyID,
		&u.CurrencyPreference,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a new user into the database
func (r *Repository) Create(ctx context.Context, u *User) (*User, error) {
	query := `
		INSERT INTO users (id, name, email, alias_name, currency_preference)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	created, err := scanUser(r.db.QueryRowContext(ctx, query, u.ID, u.Name, u.Email, u.AliasName, u.CurrencyPreference))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

// GetByID retrieves a user by their ID
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by their email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// AliasExists reports whether a user alias is already taken
func (r *Repository) AliasExists(ctx context.Context, alias string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE alias_name = $1)`
	if err := r.db.QueryRowContext(ctx, query, alias).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check alias: %w", err)
	}
	return exists, nil
}

// UpdateProfile modifies a user's profile fields
func (r *Repository) UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest) (*User, error) {
	query := `
		UPDATE users
		SET name = COALESCE($2, name),
		    currency_preference = COALESCE($3, currency_preference),
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id, req.Name, req.CurrencyPreference))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

// RegisterDevice upserts a device token registration
func (r *Repository) RegisterDevice(ctx context.Context, d *Device) (*Device, error) {
	query := `
		INSERT INTO user_devices (user_id, fcm_token, device_name, device_type, is_active)
		VALUES ($1, $2, $3, $4, true)
		ON CONFLICT (fcm_token)
		DO UPDATE SET user_id = EXCLUDED.user_id,
		              device_name = EXCLUDED.device_name,
		              device_type = EXCLUDED.device_type,
		              is_active = true
		RETURNING id, user_id, fcm_token, device_name, device_type, is_active, created_at
	`

	device := &Device{}
	err := r.db.QueryRowContext(ctx, query, d.UserID, d.FCMToken, d.DeviceName, d.DeviceType).Scan(
		&device.ID,
		&device.UserID,
		&device.FCMToken,
		&device.DeviceName,
		&device.DeviceType,
		&device.IsActive,
		&device.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register device: %w", err)
	}
	return device, nil
}

// ListDevices retrieves all active devices for a user
func (r *Repository) ListDevices(ctx context.Context, userID string) ([]*Device, error) {
	query := `
		SELECT id, user_id, fcm_token, device_name, device_type, is_active, created_at
		FROM user_devices
		WHERE user_id = $1 AND is_active = true
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	return scanDevices(rows)
}

// RemoveDevice deletes a device registration
func (r *Repository) RemoveDevice(ctx context.Context, userID, fcmToken string) error {
	query := `DELETE FROM user_devices WHERE user_id = $1 AND fcm_token = $2`

	result, err := r.db.ExecContext(ctx, query, userID, fcmToken)
	if err != nil {
		return fmt.Errorf("failed to remove device: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("device not found")
	}
	return nil
}

// TokensForUsers retrieves the active devices of the given users
func (r *Repository) TokensForUsers(ctx context.Context, userIDs []string) ([]*Device, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, user_id, fcm_token, device_name, device_type, is_active, created_at
		FROM user_devices
		WHERE user_id = ANY($1) AND is_active = true
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(userIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get device tokens: %w", err)
	}
	defer rows.Close()

	return scanDevices(rows)
}

// DeactivateToken marks a device token as no longer deliverable
func (r *Repository) DeactivateToken(ctx context.Context, fcmToken string) error {
	query := `UPDATE user_devices SET is_active = false WHERE fcm_token = $1`
	if _, err := r.db.ExecContext(ctx, query, fcmToken); err != nil {
		return fmt.Errorf("failed to deactivate token: %w", err)
	}
	return nil
}

func scanDevices(rows *sql.Rows) ([]*Device, error) {
	var devices []*Device
	for rows.Next() {
		d := &Device{}
		if err := rows.Scan(
			&d.ID,
			&d.UserID,
			&d.FCMToken,
			&d.DeviceName,
			&d.DeviceType,
			&d.IsActive,
			&d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, d)
	}
	return devices, nil
}
