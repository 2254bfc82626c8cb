package family

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jdoshi/famledger/internal/user"
)

// MemoryStore provides an in-memory implementation of Store for testing.
// It keeps the users' family references in sync through the user memory
// store, mirroring what the postgres repository does in-transaction.
type MemoryStore struct {
	mu          sync.Mutex
	users       *user.MemoryStore
	families    map[string]*Family
	members     map[string][]*Member
	invitations map[string]map[string]*Invitation
	requests    map[string]*JoinRequest
	nextInvID   int64
}

// NewMemoryStore creates a new in-memory family store backed by the given
// user store
func NewMemoryStore(users *user.MemoryStore) *MemoryStore {
	return &MemoryStore{
		users:       users,
		families:    make(map[string]*Family),
		members:     make(map[string][]*Member),
		invitations: make(map[string]map[string]*Invitation),
		requests:    make(map[string]*JoinRequest),
	}
}

func (s *MemoryStore) userHasFamily(ctx context.Context, userID string) (bool, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return u != nil && u.HasFamily(), nil
}

func (s *MemoryStore) addMemberLocked(ctx context.Context, f *Family, userID string) error {
	has, err := s.userHasFamily(ctx, userID)
	if err != nil {
		return err
	}
	if has {
		return ErrAlreadyInFamily
	}
	if len(s.members[f.ID]) >= f.MaxSize {
		return ErrFamilyFull
	}

	u, _ := s.users.GetByID(ctx, userID)
	email := ""
	var name *string
	if u != nil {
		email = u.Email
		name = u.Name
	}
	s.members[f.ID] = append(s.members[f.ID], &Member{
		UserID:   userID,
		Name:     name,
		Email:    email,
		JoinedAt: time.Now().UTC(),
	})
	fid := f.ID
	s.users.SetFamily(userID, &fid)
	return nil
}

func (s *MemoryStore) Create(ctx context.Context, f *Family) (*Family, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.families {
		if existing.AliasName == f.AliasName {
			return nil, ErrAliasTaken
		}
	}

	cp := *f
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	if cp.MaxSize <= 0 {
		cp.MaxSize = DefaultMaxSize
	}
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.families[cp.ID] = &cp

	if err := s.addMemberLocked(ctx, &cp, cp.HeadID); err != nil {
		delete(s.families, cp.ID)
		return nil, err
	}

	out := cp
	return &out, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*Family, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.families[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (s *MemoryStore) GetByAlias(ctx context.Context, alias string) (*Family, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.families {
		if f.AliasName == alias {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) NameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.families {
		if f.ID != excludeID && strings.EqualFold(f.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) UpdateName(ctx context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.families[id]
	if !ok {
		return ErrFamilyNotFound
	}
	f.Name = name
	f.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) Members(ctx context.Context, familyID string) ([]*Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Member, len(s.members[familyID]))
	for i, m := range s.members[familyID] {
		cp := *m
		out[i] = &cp
	}
	return out, nil
}

func (s *MemoryStore) AddMember(ctx context.Context, familyID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.families[familyID]
	if !ok {
		return ErrFamilyNotFound
	}
	return s.addMemberLocked(ctx, f, userID)
}

func (s *MemoryStore) RemoveMember(ctx context.Context, familyID, userID string) (*DepartureResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.families[familyID]
	if !ok {
		return nil, ErrFamilyNotFound
	}

	members := s.members[familyID]
	idx := -1
	for i, m := range members {
		if m.UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNotMember
	}

	s.members[familyID] = append(members[:idx], members[idx+1:]...)
	s.users.SetFamily(userID, nil)

	res := &DepartureResult{}
	remaining := s.members[familyID]
	switch {
	case len(remaining) == 0:
		delete(s.families, familyID)
		delete(s.members, familyID)
		delete(s.invitations, familyID)
		res.FamilyDeleted = true
	case f.HeadID == userID:
		f.HeadID = remaining[0].UserID
		res.NewHeadID = remaining[0].UserID
	}
	return res, nil
}

func (s *MemoryStore) CreateInvitation(ctx context.Context, familyID, email, invitedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(email)
	if s.invitations[familyID] == nil {
		s.invitations[familyID] = make(map[string]*Invitation)
	}
	if _, exists := s.invitations[familyID][email]; exists {
		return ErrAlreadyInvited
	}

	s.nextInvID++
	s.invitations[familyID][email] = &Invitation{
		ID:        s.nextInvID,
		FamilyID:  familyID,
		Email:     email,
		InvitedBy: invitedBy,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (s *MemoryStore) GetInvitation(ctx context.Context, familyID, email string) (*Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invitations[familyID][strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (s *MemoryStore) DeleteInvitation(ctx context.Context, familyID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(email)
	if _, ok := s.invitations[familyID][email]; !ok {
		return ErrInviteNotFound
	}
	delete(s.invitations[familyID], email)
	return nil
}

func (s *MemoryStore) ListInvitations(ctx context.Context, familyID string) ([]*Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Invitation
	for _, inv := range s.invitations[familyID] {
		cp := *inv
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) PromoteInvitation(ctx context.Context, familyID, email, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.families[familyID]
	if !ok {
		return ErrFamilyNotFound
	}

	email = strings.ToLower(email)
	if _, ok := s.invitations[familyID][email]; !ok {
		return ErrInviteNotFound
	}

	if err := s.addMemberLocked(ctx, f, userID); err != nil {
		return err
	}
	delete(s.invitations[familyID], email)
	return nil
}

func (s *MemoryStore) CreateJoinRequest(ctx context.Context, jr *JoinRequest) (*JoinRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.requests {
		if existing.FamilyID == jr.FamilyID && existing.RequesterID == jr.RequesterID && existing.Status == JoinRequestPending {
			return nil, ErrRequestPending
		}
	}

	cp := *jr
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	cp.Status = JoinRequestPending
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.requests[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *MemoryStore) GetJoinRequest(ctx context.Context, id string) (*JoinRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jr, ok := s.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *jr
	return &cp, nil
}

func (s *MemoryStore) PendingJoinRequest(ctx context.Context, familyID, requesterID string) (*JoinRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, jr := range s.requests {
		if jr.FamilyID == familyID && jr.RequesterID == requesterID && jr.Status == JoinRequestPending {
			cp := *jr
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) ListJoinRequests(ctx context.Context, familyID string, status JoinRequestStatus) ([]*JoinRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*JoinRequest
	for _, jr := range s.requests {
		if jr.FamilyID != familyID {
			continue
		}
		if status != "" && jr.Status != status {
			continue
		}
		cp := *jr
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) ListJoinRequestsByRequester(ctx context.Context, requesterID string) ([]*JoinRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*JoinRequest
	for _, jr := range s.requests {
		if jr.RequesterID == requesterID {
			cp := *jr
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) SetJoinRequestStatus(ctx context.Context, id string, status JoinRequestStatus, processedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jr, ok := s.requests[id]
	if !ok || jr.Status != JoinRequestPending {
		return ErrRequestNotFound
	}
	jr.Status = status
	jr.ProcessedBy = &processedBy
	jr.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) PromoteJoinRequest(ctx context.Context, id, processedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jr, ok := s.requests[id]
	if !ok || jr.Status != JoinRequestPending {
		return ErrRequestNotFound
	}

	f, ok := s.families[jr.FamilyID]
	if !ok {
		return ErrFamilyNotFound
	}

	if err := s.addMemberLocked(ctx, f, jr.RequesterID); err != nil {
		return err
	}

	jr.Status = JoinRequestAccepted
	jr.ProcessedBy = &processedBy
	jr.UpdatedAt = time.Now().UTC()
	return nil
}
