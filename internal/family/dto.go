package family

import "time"

// CreateFamilyRequest represents the request body for creating a family
type CreateFamilyRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// JoinFamilyRequest carries the join code of the family to join
type JoinFamilyRequest struct {
	AliasName string `json:"alias_name" validate:"required,len=6"`
}

// InviteRequest represents the request body for inviting a user by email
type InviteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// MemberEmailRequest identifies a member by email for head-only actions
type MemberEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RequesterRequest identifies a join requester for head-only decisions
type RequesterRequest struct {
	RequesterID string `json:"requester_id" validate:"required"`
}

// UpdateNameRequest represents the request body for renaming a family
type UpdateNameRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// FamilyResponse represents a family in responses
type FamilyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AliasName string `json:"alias_name"`
	HeadID    string `json:"head_id"`
	MaxSize   int    `json:"max_size"`
	CreatedAt string `json:"created_at"`
}

// MemberResponse represents a family member in responses
type MemberResponse struct {
	UserID   string  `json:"user_id"`
	Name     *string `json:"name,omitempty"`
	Email    string  `json:"email"`
	JoinedAt string  `json:"joined_at"`
}

// InvitationResponse represents an outstanding invitation in responses
type InvitationResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	InvitedBy string `json:"invited_by"`
	CreatedAt string `json:"created_at"`
}

// JoinRequestResponse represents a join request in responses
type JoinRequestResponse struct {
	ID          string  `json:"id"`
	FamilyID    string  `json:"family_id"`
	RequesterID string  `json:"requester_id"`
	Status      string  `json:"status"`
	ProcessedBy *string `json:"processed_by,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// DetailsResponse represents a family with its members and, for the head,
// its pending invitations and join requests
type DetailsResponse struct {
	Family       *FamilyResponse        `json:"family"`
	Members      []*MemberResponse      `json:"members"`
	Invitations  []*InvitationResponse  `json:"invitations,omitempty"`
	JoinRequests []*JoinRequestResponse `json:"join_requests,omitempty"`
}

// ToResponse converts a Family model to a FamilyResponse DTO
func (f *Family) ToResponse() *FamilyResponse {
	return &FamilyResponse{
		ID:        f.ID,
		Name:      f.Name,
		AliasName: f.AliasName,
		HeadID:    f.HeadID,
		MaxSize:   f.MaxSize,
		CreatedAt: f.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToResponse converts a Member model to a MemberResponse DTO
func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		UserID:   m.UserID,
		Name:     m.Name,
		Email:    m.Email,
		JoinedAt: m.JoinedAt.UTC().Format(time.RFC3339),
	}
}

// ToResponse converts an Invitation model to an InvitationResponse DTO
func (i *Invitation) ToResponse() *InvitationResponse {
	return &InvitationResponse{
		ID:        i.ID,
		Email:     i.Email,
		InvitedBy: i.InvitedBy,
		CreatedAt: i.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToResponse converts a JoinRequest model to a JoinRequestResponse DTO
func (jr *JoinRequest) ToResponse() *JoinRequestResponse {
	return &JoinRequestResponse{
		ID:          jr.ID,
		FamilyID:    jr.FamilyID,
		RequesterID: jr.RequesterID,
		Status:      string(jr.Status),
		ProcessedBy: jr.ProcessedBy,
		CreatedAt:   jr.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToResponse converts service Details to a DetailsResponse DTO
func (d *Details) ToResponse() *DetailsResponse {
	resp := &DetailsResponse{Family: d.Family.ToResponse()}

	resp.Members = make([]*MemberResponse, len(d.Members))
	for i, m := range d.Members {
		resp.Members[i] = m.ToResponse()
	}

	for _, inv := range d.Invitations {
		resp.Invitations = append(resp.Invitations, inv.ToResponse())
	}
	for _, jr := range d.JoinRequests {
		resp.JoinRequests = append(resp.JoinRequests, jr.ToResponse())
	}
	return resp
}
