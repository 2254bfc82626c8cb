package family

import (
	"context"
	"errors"
	"fmt"

	"github.com/jdoshi/famledger/internal/notification"
	"github.com/jdoshi/famledger/internal/user"
)

// UserLookup resolves users for the membership workflow
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

// Service handles the family membership workflow. Every mutating operation
// performs its authorization check, exactly one consistent persistence write,
// and a best-effort notification dispatch.
type Service struct {
	store    Store
	users    UserLookup
	notifier notification.Dispatcher
}

// NewService creates a new family service
func NewService(store Store, users UserLookup, notifier notification.Dispatcher) *Service {
	return &Service{store: store, users: users, notifier: notifier}
}

func (s *Service) actor(ctx context.Context, id string) (*user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

// byEmail looks up a user and reports a missing one as (nil, nil), whether
// the lookup signals absence with a nil user or with ErrUserNotFound.
func (s *Service) byEmail(ctx context.Context, email string) (*user.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, nil
	}
	return u, err
}

// headFamily loads the acting user's family and verifies head rights
func (s *Service) headFamily(ctx context.Context, actorID string) (*user.User, *Family, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.HasFamily() {
		return nil, nil, ErrNoFamily
	}
	f, err := s.store.GetByID(ctx, *actor.FamilyID)
	if err != nil {
		return nil, nil, err
	}
	if f == nil {
		return nil, nil, ErrFamilyNotFound
	}
	if f.HeadID != actor.ID {
		return nil, nil, ErrNotHead
	}
	return actor, f, nil
}

func displayName(u *user.User) string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.AliasName
}

// Create makes a new family with the acting user as sole member and head.
// The join code is regenerated a bounded number of times on collision.
func (s *Service) Create(ctx context.Context, actorID, name string) (*Family, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.HasFamily() {
		return nil, ErrAlreadyInFamily
	}

	taken, err := s.store.NameTaken(ctx, name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrNameTaken
	}

	for i := 0; i < aliasAttempts; i++ {
		f, err := s.store.Create(ctx, &Family{
			Name:      name,
			AliasName: newAlias(),
			HeadID:    actor.ID,
			MaxSize:   DefaultMaxSize,
		})
		if errors.Is(err, ErrAliasTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	return nil, ErrAliasSpaceExhausted
}

// Join adds the acting user to the family identified by its join code
func (s *Service) Join(ctx context.Context, actorID, alias string) (*Family, error) {
	if err := ValidateAlias(alias); err != nil {
		return nil, err
	}

	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.HasFamily() {
		return nil, ErrAlreadyInFamily
	}

	f, err := s.store.GetByAlias(ctx, alias)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrFamilyNotFound
	}

	if err := s.store.AddMember(ctx, f.ID, actor.ID); err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, notification.Event{
		Type:        notification.TypeMemberJoined,
		Title:       "New family member",
		Message:     fmt.Sprintf("%s joined %s", displayName(actor), f.Name),
		FamilyID:    f.ID,
		FamilyAlias: f.AliasName,
		SenderID:    actor.ID,
		SenderName:  displayName(actor),
		Receivers:   []string{f.HeadID},
	})
	return f, nil
}

// Leave removes the acting user from their family. The last member's
// departure deletes the family; a departing head is replaced by the earliest
// remaining member, who is notified.
func (s *Service) Leave(ctx context.Context, actorID string) error {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.HasFamily() {
		return ErrNoFamily
	}

	f, err := s.store.GetByID(ctx, *actor.FamilyID)
	if err != nil {
		return err
	}
	if f == nil {
		return ErrNoFamily
	}

	res, err := s.store.RemoveMember(ctx, f.ID, actor.ID)
	if err != nil {
		return err
	}

	if res.FamilyDeleted {
		return nil
	}

	if res.NewHeadID != "" {
		s.notifier.Dispatch(ctx, notification.Event{
			Type:        notification.TypeHeadChanged,
			Title:       "You are now the family head",
			Message:     fmt.Sprintf("%s left %s and you became its head", displayName(actor), f.Name),
			FamilyID:    f.ID,
			FamilyAlias: f.AliasName,
			SenderID:    actor.ID,
			SenderName:  displayName(actor),
			Receivers:   []string{res.NewHeadID},
		})
		return nil
	}

	s.notifier.Dispatch(ctx, notification.Event{
		Type:        notification.TypeMemberLeft,
		Title:       "Member left",
		Message:     fmt.Sprintf("%s left %s", displayName(actor), f.Name),
		FamilyID:    f.ID,
		FamilyAlias: f.AliasName,
		SenderID:    actor.ID,
		SenderName:  displayName(actor),
		Receivers:   []string{f.HeadID},
	})
	return nil
}

// Invite creates an invitation for the given email. Head only.
func (s *Service) Invite(ctx context.Context, actorID, email string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}

	actor, f, err := s.headFamily(ctx, actorID)
	if err != nil {
		return err
	}

	invitee, err := s.byEmail(ctx, email)
	if err != nil {
		return err
	}
	if invitee == nil {
		return ErrInviteeNotFound
	}
	if invitee.HasFamily() {
		return ErrAlreadyInFamily
	}

	pending, err := s.store.PendingJoinRequest(ctx, f.ID, invitee.ID)
	if err != nil {
		return err
	}
	if pending != nil {
		return ErrRequestPending
	}

	if err := s.store.CreateInvitation(ctx, f.ID, email, actor.ID); err != nil {
		return err
	}

	s.notifier.Dispatch(ctx, notification.Event{
		Type:        notification.TypeFamilyInvite,
		Title:       "Family invitation",
		Message:     fmt.Sprintf("%s invited you to join %s", displayName(actor), f.Name),
		FamilyID:    f.ID,
		FamilyAlias: f.AliasName,
		SenderID:    actor.ID,
		SenderName:  displayName(actor),
		Receivers:   []string{invitee.ID},
		Actionable:  true,
	})
	return nil
}

// AcceptInvitation moves the acting user from pending invitee to member
func (s *Service) AcceptInvitation(ctx context.Context, actorID, alias string) (*Family, error) {
	if err := ValidateAlias(alias); err != nil {
		return nil, err
	}

	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.HasFamily() {
		return nil, ErrAlreadyInFamily
	}

	f, err := s.store.GetByAlias(ctx, alias)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrFamilyNotFound
	}

	if err := s.store.PromoteInvitation(ctx, f.ID, actor.Email, actor.ID); err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, notification.Event{
		Type:        notification.TypeInviteAccepted,
		Title:       "Invitation accepted",
		Message:     fmt.Sprintf("%s accepted your invitation to %s", displayName(actor), f.Name),
		FamilyID:    f.ID,
		FamilyAlias: f.AliasName,
		SenderID:    actor.ID,
		SenderName:  displayName(actor),
		Receivers:   []string{f.HeadID},
	})
	return f, nil
}

// RejectInvitation declines a pending invitation
func (s *Service) RejectInvitation(ctx context.Context, actorID, alias string) error {
	if err := ValidateAlias(alias); err != nil {
		return err
	}

	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}

	f, err := s.store.GetByAlias(ctx, alias)
	if err != nil {
		return err
	}
	if f == nil {
		return ErrFamilyNotFound
	}

	if err := s.store.DeleteInvitation(ctx, f.ID, actor.Email); err != nil {
		return err
	}

	s.notifier.Dispatch(ctx, notification.Event{
		Type:        notification.TypeInviteRejected,
		Title:       "Invitation declined",
		Message:     fmt.Sprintf("%s declined your invitation to %s", displayName(actor), f.Name),
		FamilyID:    f.ID,
		FamilyAlias: f.AliasName,
		SenderID:    actor.ID,
		SenderName:  displayName(actor),
		Receivers:   []string{f.HeadID},
	})
	return nil
}

// CancelInvitation withdraws a pending invitation. Head only.
func (s *Service) CancelInvitation(ctx context.Context, actorID, email string) error {
	actor, f, err := s.headFamily(ctx, actorID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteInvitation(ctx, f.ID, email); err != nil {
		return err
	}

	if invitee, err := s.byEmail(ctx, email); err == nil && invitee != nil {
		s.notifier.Dispatch(ctx, notification.Event{
			Type:        notification.TypeInviteCancelled,
			Title:       "Invitation cancelled",
			Message:     fmt.Sprintf("Your invitation to %s was cancelled", f.Name),
			FamilyID:    f.ID,
			FamilyAlias: f.AliasName,
			SenderID:    actor.ID,
			SenderName:  displayName(actor),
			Receivers:   []string{invitee.ID},
		})
	}
	return nil
}

// ResendInvitation re-notifies a pending invitee. Head only.
func (s *Service) ResendInvitation(ctx context.Context, actorID, email string) error {
	actor, f, err := s.headFamily(ctx, actorID)
	if err != nil {
		return err
	}

	inv, err := s.store.GetInvitation(ctx, f.ID, email)
	if err != nil {
		return err
	}
	if inv == nil {
		return ErrInviteNotFound
	}

	invitee, err := s.byEmail(ctx, email)
	if err != nil {
		return err
	}
	if invitee == nil {
		return ErrInviteeNotFound
	}

	s.notifier.Dispatch(ctx, notification.Event{
		Type:        notification.TypeFamilyInvite,
		Title:       "Family invitation",
		Message:     fmt.Sprintf("%s invited you to join %s", displayName(actor), f.Name),
		FamilyID:    f.ID,
		FamilyAlias: f.AliasName,
		SenderID:    actor.ID,
		SenderName:  displayName(actor),
		Receivers:   []string{invitee.ID},
		Actionable:  true,
	})
	return nil
}

// RequestToJoin records a self-service request to join the family with the
// given join code
func (s *Service) RequestToJoin(ctx context.Context, actorID, alias string) (*JoinRequest, error) {
	if err := ValidateAlias(alias); err != nil {
		return nil, err
	}

	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.HasFamily() {
		return nil, ErrAlreadyInFamily
	}

	f, err := s.store.GetByAlias(ctx, alias)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrFamilyNotFound
	}

	inv, err := s.store.GetInvitation(ctx, f.ID, actor.Email)
	if err != nil {
		return nil, err
	}
	if inv != nil {
		return nil, ErrAlreadyInvited
	}

	members, err := s.store.Members(ctx, f.ID)
	if err != nil {
		return nil, err
	}
	if len(members) >= f.MaxSize {
		return nil, ErrFamilyFull
	}

	jr, err := s.store.CreateJoinRequest(ctx, &JoinRequest{
		FamilyID:    f.ID,
		RequesterID: actor.ID,
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, notification.Event{
		Type:        notification.TypeJoinRequest,
		Title:       "Join request",
		Message:     fmt.Sprintf("%s requested to join %s", displayName(actor), f.Name),
		FamilyID:    f.ID,
		FamilyAlias: f.AliasName,
		SenderID:    actor.ID,
		SenderName:  displayName(actor),
		Receivers:   []string{f.HeadID},
		Actionable:  true,
	})
	return jr, nil
}

// AcceptJoinRequest admits a pending requester as a member. Head only.
func (s *Service) AcceptJoinRequest(ctx context.Context, actorID, requesterID string) error {
	actor, f, err := s.headFamily(ctx, actorID)
	if err != nil {
		return err
	}

	jr, err := s.store.PendingJoinRequest(ctx, f.ID, requesterID)
	if err != nil {
		return err
	}
	if jr == nil {
		return ErrRequestNotFound
	}

	if err := s.store.PromoteJoinRequest(ctx, jr.ID, actor.ID); err != nil {
		return err
	}

	s.notifier.Dispatch(ctx, notification.Event{
		Type:        notification.TypeJoinRequestAccepted,
		Title:       "Join request accepted",
		Message:     fmt.Sprintf("Your request to join %s was accepted", f.Name),
		FamilyID:    f.ID,
		FamilyAlias: f.AliasName,
		SenderID:    actor.ID,
		SenderName:  displayName(actor),
		Receivers:   []string{requesterID},
	})
	return nil
}

// RejectJoinRequest declines a pending join request. Head only.
func (s *Service) RejectJoinRequest(ctx context.Context, actorID, requesterID string) error {
	actor, f, err := s.headFamily(ctx, actorID)
	if err != nil {
		return err
	}

	jr, err := s.store.PendingJoinRequest(ctx, f.ID, requesterID)
	if err != nil {
		return err
	}
	if jr == nil {
		return ErrRequestNotFound
	}

	if err := s.store.SetJoinRequestStatus(ctx, jr.ID, JoinRequestRejected, actor.ID); err != nil {
		return err
	}

	s.notifier.Dispatch(ctx, notification.Event{
		Type:        notification.TypeJoinRequestRejected,
		Title:       "Join request declined",
		Message:     fmt.Sprintf("Your request to join %s was declined", f.Name),
		FamilyID:    f.ID,
		FamilyAlias: f.AliasName,
		SenderID:    actor.ID,
		SenderName:  displayName(actor),
		Receivers:   []string{requesterID},
	})
	return nil
}

// CancelJoinRequest lets a requester withdraw their own pending request
func (s *Service) CancelJoinRequest(ctx context.Context, actorID, requestID string) error {
	jr, err := s.store.GetJoinRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if jr == nil || jr.RequesterID != actorID {
		return ErrRequestNotFound
	}
	return s.store.SetJoinRequestStatus(ctx, requestID, JoinRequestCancelled, actorID)
}

// ListJoinRequests retrieves the family's join requests. Head only.
func (s *Service) ListJoinRequests(ctx context.Context, actorID string, status JoinRequestStatus) ([]*JoinRequest, error) {
	_, f, err := s.headFamily(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.store.ListJoinRequests(ctx, f.ID, status)
}

// MyJoinRequests retrieves the acting user's own join requests
func (s *Service) MyJoinRequests(ctx context.Context, actorID string) ([]*JoinRequest, error) {
	return s.store.ListJoinRequestsByRequester(ctx, actorID)
}

// RemoveMember expels a member from the family. Head only; the head must use
// Leave for itself.
func (s *Service) RemoveMember(ctx context.Context, actorID, memberEmail string) error {
	actor, f, err := s.headFamily(ctx, actorID)
	if err != nil {
		return err
	}

	target, err := s.byEmail(ctx, memberEmail)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrNotMember
	}
	if target.ID == actor.ID {
		return ErrCannotRemoveSelf
	}
	if !target.HasFamily() || *target.FamilyID != f.ID {
		return ErrNotMember
	}

	if _, err := s.store.RemoveMember(ctx, f.ID, target.ID); err != nil {
		return err
	}

	s.notifier.Dispatch(ctx, notification.Event{
		Type:        notification.TypeMemberRemoved,
		Title:       "Removed from family",
		Message:     fmt.Sprintf("You were removed from %s", f.Name),
		FamilyID:    f.ID,
		FamilyAlias: f.AliasName,
		SenderID:    actor.ID,
		SenderName:  displayName(actor),
		Receivers:   []string{target.ID},
	})
	return nil
}

// UpdateName renames the family. Head only; names are unique
// case-insensitively across families.
func (s *Service) UpdateName(ctx context.Context, actorID, name string) (*Family, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	_, f, err := s.headFamily(ctx, actorID)
	if err != nil {
		return nil, err
	}

	taken, err := s.store.NameTaken(ctx, name, f.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrNameTaken
	}

	if err := s.store.UpdateName(ctx, f.ID, name); err != nil {
		return nil, err
	}
	f.Name = name
	return f, nil
}

// MemberIDs returns the user ids of a family's current members in join order
func (s *Service) MemberIDs(ctx context.Context, familyID string) ([]string, error) {
	members, err := s.store.Members(ctx, familyID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	return ids, nil
}

// Details returns the acting user's family with its members; the head also
// sees outstanding invitations and pending join requests.
func (s *Service) Details(ctx context.Context, actorID string) (*Details, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.HasFamily() {
		return nil, ErrNoFamily
	}

	f, err := s.store.GetByID(ctx, *actor.FamilyID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrFamilyNotFound
	}

	members, err := s.store.Members(ctx, f.ID)
	if err != nil {
		return nil, err
	}

	d := &Details{Family: f, Members: members}

	if f.HeadID == actor.ID {
		if d.Invitations, err = s.store.ListInvitations(ctx, f.ID); err != nil {
			return nil, err
		}
		if d.JoinRequests, err = s.store.ListJoinRequests(ctx, f.ID, JoinRequestPending); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Details combines a family with its membership and, for the head, its
// pending lists
type Details struct {
	Family       *Family
	Members      []*Member
	Invitations  []*Invitation
	JoinRequests []*JoinRequest
}
