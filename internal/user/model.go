package user

import "time"

// User represents a person using the system. The ID is the stable identity
// assigned by the auth collaborator on first login; users are never
// hard-deleted.
type User struct {
	ID                 string    `json:"id"`
	Name               *string   `json:"name,omitempty"`
	Email              string    `json:"email"`
	AliasName          string    `json:"alias_name"`
	FamilyID           *string   `json:"family_id,omitempty"`
	CurrencyPreference string    `json:"currency_preference"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// HasFamily reports whether the user currently belongs to a family
func (u *User) HasFamily() bool {
	return u.FamilyID != nil && *u.FamilyID != ""
}

// Device represents a registered push target for a user
type Device struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	FCMToken   string    `json:"fcm_token"`
	DeviceName string    `json:"device_name"`
	DeviceType string    `json:"device_type"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}
