package family

import "time"

// Family represents a capacity-bounded group of users sharing expenses.
// The alias name is the human-shareable join code.
type Family struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AliasName string    `json:"alias_name"`
	HeadID    string    `json:"head_id"`
	MaxSize   int       `json:"max_size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultMaxSize is the member capacity applied to new families
const DefaultMaxSize = 10

// Member represents a user's membership in a family. Insertion order (the
// joined_at timestamp) decides head reassignment when the head leaves.
type Member struct {
	UserID   string    `json:"user_id"`
	Name     *string   `json:"name,omitempty"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joined_at"`
}

// Invitation is an outstanding head-issued invitation, keyed by email
type Invitation struct {
	ID        int64     `json:"id"`
	FamilyID  string    `json:"family_id"`
	Email     string    `json:"email"`
	InvitedBy string    `json:"invited_by"`
	CreatedAt time.Time `json:"created_at"`
}

// JoinRequestStatus is the lifecycle state of a join request
type JoinRequestStatus string

const (
	JoinRequestPending   JoinRequestStatus = "PENDING"
	JoinRequestAccepted  JoinRequestStatus = "ACCEPTED"
	JoinRequestRejected  JoinRequestStatus = "REJECTED"
	JoinRequestCancelled JoinRequestStatus = "CANCELLED"
)

// JoinRequest is a first-class record of a self-service request to join a
// family. Processed requests keep their terminal status for history.
type JoinRequest struct {
	ID          string            `json:"id"`
	FamilyID    string            `json:"family_id"`
	RequesterID string            `json:"requester_id"`
	Status      JoinRequestStatus `json:"status"`
	ProcessedBy *string           `json:"processed_by,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// DepartureResult reports what a member removal did to the family
type DepartureResult struct {
	FamilyDeleted bool
	NewHeadID     string
}
