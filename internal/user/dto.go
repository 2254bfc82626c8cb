package user

import "time"

// UpdateProfileRequest represents the request body for updating a profile
type UpdateProfileRequest struct {
	Name               *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	CurrencyPreference *string `json:"currency_preference,omitempty" validate:"omitempty,min=1,max=5"`
}

// RegisterDeviceRequest represents the request body for device registration
type RegisterDeviceRequest struct {
	FCMToken   string `json:"fcm_token" validate:"required"`
	DeviceName string `json:"device_name,omitempty"`
	DeviceType string `json:"device_type,omitempty"`
}

// UserResponse represents the response for a single user
type UserResponse struct {
	ID                 string  `json:"id"`
	Name               *string `json:"name,omitempty"`
	Email              string  `json:"email"`
	AliasName          string  `json:"alias_name"`
	FamilyID           *string `json:"family_id,omitempty"`
	CurrencyPreference string  `json:"currency_preference"`
	CreatedAt          string  `json:"created_at"`
}

// DeviceResponse represents a registered device in responses
type DeviceResponse struct {
	ID         int64  `json:"id"`
	DeviceName string `json:"device_name"`
	DeviceType string `json:"device_type"`
	IsActive   bool   `json:"is_active"`
	CreatedAt  string `json:"created_at"`
}

// ToResponse converts a User model to a UserResponse DTO
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		AliasName:          u.AliasName,
		FamilyID:           u.FamilyID,
		CurrencyPreference: u.CurrencyPreference,
		CreatedAt:          u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToResponse converts a Device model to a DeviceResponse DTO
func (d *Device) ToResponse() *DeviceResponse {
	return &DeviceResponse{
		ID:         d.ID,
		DeviceName: d.DeviceName,
		DeviceType: d.DeviceType,
		IsActive:   d.IsActive,
		CreatedAt:  d.CreatedAt.UTC().Format(time.RFC3339),
	}
}
