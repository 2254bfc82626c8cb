package user

import "context"

// Store defines the persistence interface for users and their devices
type Store interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	AliasExists(ctx context.Context, alias string) (bool, error)
	UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest) (*User, error)

	RegisterDevice(ctx context.Context, d *Device) (*Device, error)
	ListDevices(ctx context.Context, userID string) ([]*Device, error)
	RemoveDevice(ctx context.Context, userID, fcmToken string) error
	TokensForUsers(ctx context.Context, userIDs []string) ([]*Device, error)
	DeactivateToken(ctx context.Context, fcmToken string) error
}
