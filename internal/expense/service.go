package expense

import (
	"context"
	"fmt"
	"time"

	"github.com/jdoshi/famledger/internal/notification"
	"github.com/jdoshi/famledger/internal/user"
	"github.com/jdoshi/famledger/pkg/pagination"
)

// UserLookup resolves users for authorization checks
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// FamilyResolver resolves family membership for the notify fan-out and the
// family-scope precondition
type FamilyResolver interface {
	MemberIDs(ctx context.Context, familyID string) ([]string, error)
}

// Service authorizes and serves expense CRUD and the paginated retrieval
// modes
type Service struct {
	store    Store
	users    UserLookup
	families FamilyResolver
	notifier notification.Dispatcher
}

// NewService creates a new expense service
func NewService(store Store, users UserLookup, families FamilyResolver, notifier notification.Dispatcher) *Service {
	return &Service{store: store, users: users, families: families, notifier: notifier}
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

// sameFamily reports whether two users currently share a non-blank family
func sameFamily(a, b *user.User) bool {
	return a.HasFamily() && b.HasFamily() && *a.FamilyID == *b.FamilyID
}

// canRead checks single-expense read access: the owner, or anyone currently
// sharing the owner's family
func (s *Service) canRead(ctx context.Context, actor *user.User, e *Expense) (bool, error) {
	if e.UserID == actor.ID {
		return true, nil
	}
	owner, err := s.users.GetByID(ctx, e.UserID)
	if err != nil {
		return false, err
	}
	if owner == nil {
		return false, nil
	}
	return sameFamily(actor, owner), nil
}

// resolveScope validates a requested family reference against the acting
// user's current membership. Family scope requires the actor to be a current
// member.
func (s *Service) resolveScope(actor *user.User, familyID *string) (Scope, error) {
	scope := ScopeFrom(familyID)
	if scope.Kind == ScopePersonal {
		return scope, nil
	}
	if err := ValidateID(scope.FamilyID); err != nil {
		return Scope{}, err
	}
	if !actor.HasFamily() {
		return Scope{}, ErrNoFamily
	}
	if *actor.FamilyID != scope.FamilyID {
		return Scope{}, ErrNotFamilyMember
	}
	return scope, nil
}

// validate checks a create/update payload and collects per-field violations
func (s *Service) validate(req *CreateExpenseRequest) (Category, []string) {
	var violations []string

	if err := ValidateAmount(req.Amount); err != nil {
		violations = append(violations, err.Error())
	}
	cat, err := ParseCategory(req.Category)
	if err != nil {
		violations = append(violations, err.Error())
	}
	if err := ValidateDescription(req.Description); err != nil {
		violations = append(violations, err.Error())
	}
	if err := ValidateDate(req.Date); err != nil {
		violations = append(violations, err.Error())
	}
	return cat, violations
}

// ValidationError carries the per-field violations of a rejected payload
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("expense validation failed: %d violation(s)", len(e.Violations))
}

// Create validates and stores a new expense owned by the acting user.
// Server-assigned fields (id, owner, audit fields) ignore any client value.
func (s *Service) Create(ctx context.Context, actorID string, req *CreateExpenseRequest) (*Expense, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	cat, violations := s.validate(req)
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	scope, err := s.resolveScope(actor, req.FamilyID)
	if err != nil {
		return nil, err
	}

	e := &Expense{
		UserID:         actor.ID,
		Amount:         req.Amount,
		Category:       cat,
		Description:    req.Description,
		CurrencyPrefix: req.CurrencyPrefix,
		Date:           time.UnixMilli(req.Date).UTC(),
		CreatedBy:      actor.ID,
		ModifiedBy:     actor.ID,
	}
	if scope.Kind == ScopeFamily {
		fid := scope.FamilyID
		e.FamilyID = &fid
	}
	if e.CurrencyPrefix == "" {
		e.CurrencyPrefix = actor.CurrencyPreference
	}

	return s.store.Create(ctx, e)
}

// Get retrieves one expense, enforcing the read rule
func (s *Service) Get(ctx context.Context, actorID, id string) (*Expense, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}

	ok, err := s.canRead(ctx, actor, e)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAccessDenied
	}
	return e, nil
}

// Update rewrites an expense. Owner only.
func (s *Service) Update(ctx context.Context, actorID, id string, req *UpdateExpenseRequest) (*Expense, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}
	if e.UserID != actor.ID {
		return nil, ErrNotOwner
	}

	create := CreateExpenseRequest(*req)
	cat, violations := s.validate(&create)
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	scope, err := s.resolveScope(actor, req.FamilyID)
	if err != nil {
		return nil, err
	}

	e.Amount = req.Amount
	e.Category = cat
	e.Description = req.Description
	e.Date = time.UnixMilli(req.Date).UTC()
	e.ModifiedBy = actor.ID
	if req.CurrencyPrefix != "" {
		e.CurrencyPrefix = req.CurrencyPrefix
	}
	e.FamilyID = nil
	if scope.Kind == ScopeFamily {
		fid := scope.FamilyID
		e.FamilyID = &fid
	}

	return s.store.Update(ctx, e)
}

// Delete soft-deletes an expense. Allowed for the owner or a user currently
// sharing the owner's family.
func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}

	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e == nil {
		return ErrExpenseNotFound
	}

	ok, err := s.canRead(ctx, actor, e)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAccessDenied
	}

	return s.store.SoftDelete(ctx, id, actor.ID)
}

// Mine lists the acting user's own expenses
func (s *Service) Mine(ctx context.Context, actorID string, p pagination.Params) (*ListResult, error) {
	return s.store.List(ctx, Filter{UserID: actorID}, p)
}

// Family lists the current family's shared expenses
func (s *Service) Family(ctx context.Context, actorID string, p pagination.Params) (*ListResult, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.HasFamily() {
		return nil, ErrNoFamily
	}
	return s.store.List(ctx, Filter{FamilyID: *actor.FamilyID}, p)
}

// ByCategory lists the acting user's expenses in one category
func (s *Service) ByCategory(ctx context.Context, actorID, category string, p pagination.Params) (*ListResult, error) {
	cat, err := ParseCategory(category)
	if err != nil {
		return nil, &ValidationError{Violations: []string{err.Error()}}
	}
	return s.store.List(ctx, Filter{UserID: actorID, Category: cat}, p)
}

// BetweenDates lists the acting user's expenses with event dates inside the
// inclusive range
func (s *Service) BetweenDates(ctx context.Context, actorID string, start, end int64, p pagination.Params) (*ListResult, error) {
	if start <= 0 || end <= 0 || end < start {
		return nil, &ValidationError{Violations: []string{"start and end must be positive with end >= start"}}
	}
	return s.store.List(ctx, Filter{
		UserID: actorID,
		Start:  time.UnixMilli(start).UTC(),
		End:    time.UnixMilli(end).UTC(),
	}, p)
}

// Since lists expenses modified at or after the given timestamp, ascending by
// modification time, so a client can replay deltas in order
func (s *Service) Since(ctx context.Context, actorID string, since int64, p pagination.Params) (*ListResult, error) {
	if since <= 0 {
		return nil, &ValidationError{Violations: []string{"since must be a positive timestamp"}}
	}
	return s.store.List(ctx, Filter{
		UserID: actorID,
		Since:  time.UnixMilli(since).UTC(),
	}, p)
}

// SinceDate lists expenses with event dates at or after the given cut-off
func (s *Service) SinceDate(ctx context.Context, actorID string, since int64, p pagination.Params) (*ListResult, error) {
	if since <= 0 {
		return nil, &ValidationError{Violations: []string{"date must be a positive timestamp"}}
	}
	return s.store.List(ctx, Filter{
		UserID:    actorID,
		SinceDate: time.UnixMilli(since).UTC(),
	}, p)
}

// MonthlySum aggregates the acting user's personal expenses for one month
func (s *Service) MonthlySum(ctx context.Context, actorID string, month, year int) (*MonthlySum, error) {
	if err := ValidateMonth(month); err != nil {
		return nil, &ValidationError{Violations: []string{err.Error()}}
	}
	if err := ValidateYear(year); err != nil {
		return nil, &ValidationError{Violations: []string{err.Error()}}
	}
	return s.store.MonthlySum(ctx, actorID, month, year)
}

// FamilyMonthlySum aggregates the current family's shared expenses for one
// month
func (s *Service) FamilyMonthlySum(ctx context.Context, actorID string, month, year int) (*MonthlySum, error) {
	if err := ValidateMonth(month); err != nil {
		return nil, &ValidationError{Violations: []string{err.Error()}}
	}
	if err := ValidateYear(year); err != nil {
		return nil, &ValidationError{Violations: []string{err.Error()}}
	}

	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.HasFamily() {
		return nil, ErrNoFamily
	}
	return s.store.FamilyMonthlySum(ctx, *actor.FamilyID, month, year)
}

// Notify pushes an expense event to the other members of the expense's
// family. Best-effort, like every other notification dispatch.
func (s *Service) Notify(ctx context.Context, actorID, id string) error {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}

	e, err := s.Get(ctx, actorID, id)
	if err != nil {
		return err
	}
	if e.FamilyID == nil {
		return ErrNoFamily
	}

	members, err := s.families.MemberIDs(ctx, *e.FamilyID)
	if err != nil {
		return err
	}
	receivers := make([]string, 0, len(members))
	for _, m := range members {
		if m != actor.ID {
			receivers = append(receivers, m)
		}
	}
	if len(receivers) == 0 {
		return nil
	}

	name := actor.AliasName
	if actor.Name != nil && *actor.Name != "" {
		name = *actor.Name
	}

	s.notifier.Dispatch(ctx, notification.Event{
		Type:       notification.TypeExpenseAdded,
		Title:      "Family expense",
		Message:    fmt.Sprintf("%s added %s%s for %s", name, e.CurrencyPrefix, e.Amount.StringFixed(2), e.Category),
		FamilyID:   *e.FamilyID,
		SenderID:   actor.ID,
		SenderName: name,
		Receivers:  receivers,
	})
	return nil
}
