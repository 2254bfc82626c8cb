package notification

import "time"

// Type classifies a notification event
type Type string

const (
	TypeFamilyInvite        Type = "FAMILY_INVITE"
	TypeInviteAccepted      Type = "FAMILY_INVITE_ACCEPTED"
	TypeInviteRejected      Type = "FAMILY_INVITE_REJECTED"
	TypeInviteCancelled     Type = "FAMILY_INVITE_CANCELLED"
	TypeJoinRequest         Type = "FAMILY_JOIN_REQUEST"
	TypeJoinRequestAccepted Type = "JOIN_REQUEST_ACCEPTED"
	TypeJoinRequestRejected Type = "JOIN_REQUEST_REJECTED"
	TypeMemberJoined        Type = "MEMBER_JOINED"
	TypeMemberRemoved       Type = "MEMBER_REMOVED"
	TypeMemberLeft          Type = "MEMBER_LEFT"
	TypeHeadChanged         Type = "HEAD_CHANGED"
	TypeExpenseAdded        Type = "EXPENSE_ADDED"
	TypeExpenseUpdated      Type = "EXPENSE_UPDATED"
	TypeExpenseDeleted      Type = "EXPENSE_DELETED"
)

// Notification is a persisted record of a user-facing event
type Notification struct {
	ID          string    `json:"id"`
	Type        Type      `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	FamilyID    *string   `json:"family_id,omitempty"`
	FamilyAlias *string   `json:"family_alias,omitempty"`
	SenderID    *string   `json:"sender_id,omitempty"`
	SenderName  *string   `json:"sender_name,omitempty"`
	ReceiverID  string    `json:"receiver_id"`
	IsRead      bool      `json:"is_read"`
	Actionable  bool      `json:"actionable"`
	CreatedAt   time.Time `json:"created_at"`
}

// Event describes a notification to persist and push to one or more
// recipients. Each receiver gets exactly one inbox row and one best-effort
// push attempt.
type Event struct {
	Type        Type
	Title       string
	Message     string
	FamilyID    string
	FamilyAlias string
	SenderID    string
	SenderName  string
	Receivers   []string
	Actionable  bool
}
