package family

import "context"

// Store defines the persistence interface for families, memberships,
// invitations and join requests. Every mutating method runs as one
// transaction; methods that grow membership lock the family row and re-check
// capacity so that concurrent joins cannot exceed max_size.
type Store interface {
	Create(ctx context.Context, f *Family) (*Family, error)
	GetByID(ctx context.Context, id string) (*Family, error)
	GetByAlias(ctx context.Context, alias string) (*Family, error)
	NameTaken(ctx context.Context, name, excludeID string) (bool, error)
	UpdateName(ctx context.Context, id, name string) error
	Members(ctx context.Context, familyID string) ([]*Member, error)

	AddMember(ctx context.Context, familyID, userID string) error
	RemoveMember(ctx context.Context, familyID, userID string) (*DepartureResult, error)

	CreateInvitation(ctx context.Context, familyID, email, invitedBy string) error
	GetInvitation(ctx context.Context, familyID, email string) (*Invitation, error)
	DeleteInvitation(ctx context.Context, familyID, email string) error
	ListInvitations(ctx context.Context, familyID string) ([]*Invitation, error)
	PromoteInvitation(ctx context.Context, familyID, email, userID string) error

	CreateJoinRequest(ctx context.Context, jr *JoinRequest) (*JoinRequest, error)
	GetJoinRequest(ctx context.Context, id string) (*JoinRequest, error)
	PendingJoinRequest(ctx context.Context, familyID, requesterID string) (*JoinRequest, error)
	ListJoinRequests(ctx context.Context, familyID string, status JoinRequestStatus) ([]*JoinRequest, error)
	ListJoinRequestsByRequester(ctx context.Context, requesterID string) ([]*JoinRequest, error)
	SetJoinRequestStatus(ctx context.Context, id string, status JoinRequestStatus, processedBy string) error
	PromoteJoinRequest(ctx context.Context, id, processedBy string) error
}
