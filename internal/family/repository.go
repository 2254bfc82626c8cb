package family

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Repository handles family data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new family repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const familyColumns = `id, name, alias_name, head_id, max_size, created_at, updated_at`

func scanFamily(row interface{ Scan(...interface{}) error }) (*Family, error) {
	f := &Family{}
	err := row.Scan(&f.ID, &f.Name, &f.AliasName, &f.HeadID, &f.MaxSize, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// Create inserts a family with its head as sole member, in one transaction
func (r *Repository) Create(ctx context.Context, f *Family) (*Family, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.MaxSize <= 0 {
		f.MaxSize = DefaultMaxSize
	}

	query := `
		INSERT INTO families (id, name, alias_name, head_id, max_size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + familyColumns

	created, err := scanFamily(tx.QueryRowContext(ctx, query, f.ID, f.Name, f.AliasName, f.HeadID, f.MaxSize))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAliasTaken
		}
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO family_members (family_id, user_id) VALUES ($1, $2)`,
		created.ID, f.HeadID,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyInFamily
		}
		return nil, fmt.Errorf("failed to add head member: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET family_id = $1, updated_at = now() WHERE id = $2`,
		created.ID, f.HeadID,
	); err != nil {
		return nil, fmt.Errorf("failed to link head to family: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit family creation: %w", err)
	}
	return created, nil
}

// GetByID retrieves a family by its ID
func (r *Repository) GetByID(ctx context.Context, id string) (*Family, error) {
	f, err := scanFamily(r.db.QueryRowContext(ctx,
		`SELECT `+familyColumns+` FROM families WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return f, nil
}

// GetByAlias retrieves a family by its join code
func (r *Repository) GetByAlias(ctx context.Context, alias string) (*Family, error) {
	f, err := scanFamily(r.db.QueryRowContext(ctx,
		`SELECT `+familyColumns+` FROM families WHERE alias_name = $1`, alias))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get family by alias: %w", err)
	}
	return f, nil
}

// NameTaken reports whether another family already uses the name
// (case-insensitive)
func (r *Repository) NameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM families WHERE lower(name) = lower($1) AND id <> $2)`
	if err := r.db.QueryRowContext(ctx, query, name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check family name: %w", err)
	}
	return exists, nil
}

// UpdateName renames a family
func (r *Repository) UpdateName(ctx context.Context, id, name string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE families SET name = $2, updated_at = now() WHERE id = $1`, id, name)
	if err != nil {
		return fmt.Errorf("failed to update family name: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrFamilyNotFound
	}
	return nil
}

// Members retrieves the members of a family in join order
func (r *Repository) Members(ctx context.Context, familyID string) ([]*Member, error) {
	query := `
		SELECT fm.user_id, u.name, u.email, fm.joined_at
		FROM family_members fm
		JOIN users u ON fm.user_id = u.id
		WHERE fm.family_id = $1
		ORDER BY fm.joined_at, fm.id
	`

	rows, err := r.db.QueryContext(ctx, query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		m := &Member{}
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, nil
}

// lockFamily selects the family row FOR UPDATE, serializing concurrent
// membership mutations on the same family.
func lockFamily(ctx context.Context, tx *sql.Tx, familyID string) (headID string, maxSize int, err error) {
	err = tx.QueryRowContext(ctx,
		`SELECT head_id, max_size FROM families WHERE id = $1 FOR UPDATE`, familyID,
	).Scan(&headID, &maxSize)
	if err == sql.ErrNoRows {
		return "", 0, ErrFamilyNotFound
	}
	if err != nil {
		return "", 0, fmt.Errorf("failed to lock family: %w", err)
	}
	return headID, maxSize, nil
}

func memberCount(ctx context.Context, tx *sql.Tx, familyID string) (int, error) {
	var count int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM family_members WHERE family_id = $1`, familyID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

// addMemberTx appends a user to a locked family after re-checking capacity
// and the single-family invariant.
func addMemberTx(ctx context.Context, tx *sql.Tx, familyID, userID string, maxSize int) error {
	var currentFamily sql.NullString
	err := tx.QueryRowContext(ctx,
		`SELECT family_id FROM users WHERE id = $1 FOR UPDATE`, userID,
	).Scan(&currentFamily)
	if err == sql.ErrNoRows {
		return ErrNotMember
	}
	if err != nil {
		return fmt.Errorf("failed to lock user: %w", err)
	}
	if currentFamily.Valid && currentFamily.String != "" {
		return ErrAlreadyInFamily
	}

	count, err := memberCount(ctx, tx, familyID)
	if err != nil {
		return err
	}
	if count >= maxSize {
		return ErrFamilyFull
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO family_members (family_id, user_id) VALUES ($1, $2)`, familyID, userID,
	); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyInFamily
		}
		return fmt.Errorf("failed to insert member: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET family_id = $1, updated_at = now() WHERE id = $2`, familyID, userID,
	); err != nil {
		return fmt.Errorf("failed to link user to family: %w", err)
	}
	return nil
}

// AddMember appends a user to a family, enforcing capacity under lock
func (r *Repository) AddMember(ctx context.Context, familyID, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, maxSize, err := lockFamily(ctx, tx, familyID)
	if err != nil {
		return err
	}
	if err := addMemberTx(ctx, tx, familyID, userID, maxSize); err != nil {
		return err
	}
	return tx.Commit()
}

// RemoveMember takes a user out of a family. An empty family is deleted;
// a departing head is replaced by the earliest remaining member.
func (r *Repository) RemoveMember(ctx context.Context, familyID, userID string) (*DepartureResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	headID, _, err := lockFamily(ctx, tx, familyID)
	if err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM family_members WHERE family_id = $1 AND user_id = $2`, familyID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove member: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, ErrNotMember
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET family_id = NULL, updated_at = now() WHERE id = $1`, userID,
	); err != nil {
		return nil, fmt.Errorf("failed to unlink user: %w", err)
	}

	res := &DepartureResult{}

	remaining, err := memberCount(ctx, tx, familyID)
	if err != nil {
		return nil, err
	}

	switch {
	case remaining == 0:
		if _, err := tx.ExecContext(ctx, `DELETE FROM families WHERE id = $1`, familyID); err != nil {
			return nil, fmt.Errorf("failed to delete empty family: %w", err)
		}
		res.FamilyDeleted = true
	case headID == userID:
		var newHead string
		err := tx.QueryRowContext(ctx,
			`SELECT user_id FROM family_members WHERE family_id = $1 ORDER BY joined_at, id LIMIT 1`,
			familyID,
		).Scan(&newHead)
		if err != nil {
			return nil, fmt.Errorf("failed to pick new head: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE families SET head_id = $2, updated_at = now() WHERE id = $1`, familyID, newHead,
		); err != nil {
			return nil, fmt.Errorf("failed to reassign head: %w", err)
		}
		res.NewHeadID = newHead
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit removal: %w", err)
	}
	return res, nil
}

// CreateInvitation records an outstanding invitation
func (r *Repository) CreateInvitation(ctx context.Context, familyID, email, invitedBy string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO family_invitations (family_id, email, invited_by) VALUES ($1, lower($2), $3)`,
		familyID, email, invitedBy)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyInvited
		}
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

// GetInvitation retrieves a pending invitation by family and email
func (r *Repository) GetInvitation(ctx context.Context, familyID, email string) (*Invitation, error) {
	inv := &Invitation{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, family_id, email, invited_by, created_at
		 FROM family_invitations WHERE family_id = $1 AND email = lower($2)`,
		familyID, email,
	).Scan(&inv.ID, &inv.FamilyID, &inv.Email, &inv.InvitedBy, &inv.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

// DeleteInvitation removes a pending invitation
func (r *Repository) DeleteInvitation(ctx context.Context, familyID, email string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM family_invitations WHERE family_id = $1 AND email = lower($2)`,
		familyID, email)
	if err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrInviteNotFound
	}
	return nil
}

// ListInvitations retrieves a family's outstanding invitations
func (r *Repository) ListInvitations(ctx context.Context, familyID string) ([]*Invitation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, family_id, email, invited_by, created_at
		 FROM family_invitations WHERE family_id = $1 ORDER BY created_at`, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []*Invitation
	for rows.Next() {
		inv := &Invitation{}
		if err := rows.Scan(&inv.ID, &inv.FamilyID, &inv.Email, &inv.InvitedBy, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}
	return invitations, nil
}

// PromoteInvitation converts a pending invitation into membership, enforcing
// capacity under lock
func (r *Repository) PromoteInvitation(ctx context.Context, familyID, email, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, maxSize, err := lockFamily(ctx, tx, familyID)
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM family_invitations WHERE family_id = $1 AND email = lower($2)`,
		familyID, email)
	if err != nil {
		return fmt.Errorf("failed to consume invitation: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrInviteNotFound
	}

	if err := addMemberTx(ctx, tx, familyID, userID, maxSize); err != nil {
		return err
	}
	return tx.Commit()
}

// CreateJoinRequest records a pending join request
func (r *Repository) CreateJoinRequest(ctx context.Context, jr *JoinRequest) (*JoinRequest, error) {
	if jr.ID == "" {
		jr.ID = uuid.New().String()
	}

	query := `
		INSERT INTO join_requests (id, family_id, requester_id, status)
		VALUES ($1, $2, $3, 'PENDING')
		RETURNING id, family_id, requester_id, status, processed_by, created_at, updated_at
	`

	created := &JoinRequest{}
	err := r.db.QueryRowContext(ctx, query, jr.ID, jr.FamilyID, jr.RequesterID).Scan(
		&created.ID, &created.FamilyID, &created.RequesterID, &created.Status,
		&created.ProcessedBy, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrRequestPending
		}
		return nil, fmt.Errorf("failed to create join request: %w", err)
	}
	return created, nil
}

func (r *Repository) getJoinRequest(ctx context.Context, where string, args ...interface{}) (*JoinRequest, error) {
	jr := &JoinRequest{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, family_id, requester_id, status, processed_by, created_at, updated_at
		 FROM join_requests WHERE `+where, args...,
	).Scan(&jr.ID, &jr.FamilyID, &jr.RequesterID, &jr.Status, &jr.ProcessedBy, &jr.CreatedAt, &jr.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get join request: %w", err)
	}
	return jr, nil
}

// GetJoinRequest retrieves a join request by id
func (r *Repository) GetJoinRequest(ctx context.Context, id string) (*JoinRequest, error) {
	return r.getJoinRequest(ctx, `id = $1`, id)
}

// PendingJoinRequest retrieves the pending request of a user for a family
func (r *Repository) PendingJoinRequest(ctx context.Context, familyID, requesterID string) (*JoinRequest, error) {
	return r.getJoinRequest(ctx, `family_id = $1 AND requester_id = $2 AND status = 'PENDING'`, familyID, requesterID)
}

// ListJoinRequests retrieves a family's join requests, optionally by status
func (r *Repository) ListJoinRequests(ctx context.Context, familyID string, status JoinRequestStatus) ([]*JoinRequest, error) {
	query := `SELECT id, family_id, requester_id, status, processed_by, created_at, updated_at
	          FROM join_requests WHERE family_id = $1`
	args := []interface{}{familyID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at`

	return r.queryJoinRequests(ctx, query, args...)
}

// ListJoinRequestsByRequester retrieves all requests made by a user
func (r *Repository) ListJoinRequestsByRequester(ctx context.Context, requesterID string) ([]*JoinRequest, error) {
	query := `SELECT id, family_id, requester_id, status, processed_by, created_at, updated_at
	          FROM join_requests WHERE requester_id = $1 ORDER BY created_at DESC`
	return r.queryJoinRequests(ctx, query, requesterID)
}

func (r *Repository) queryJoinRequests(ctx context.Context, query string, args ...interface{}) ([]*JoinRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list join requests: %w", err)
	}
	defer rows.Close()

	var requests []*JoinRequest
	for rows.Next() {
		jr := &JoinRequest{}
		if err := rows.Scan(&jr.ID, &jr.FamilyID, &jr.RequesterID, &jr.Status, &jr.ProcessedBy, &jr.CreatedAt, &jr.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan join request: %w", err)
		}
		requests = append(requests, jr)
	}
	return requests, nil
}

// SetJoinRequestStatus moves a pending request to a terminal status
func (r *Repository) SetJoinRequestStatus(ctx context.Context, id string, status JoinRequestStatus, processedBy string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE join_requests SET status = $2, processed_by = $3, updated_at = now()
		 WHERE id = $1 AND status = 'PENDING'`,
		id, status, processedBy)
	if err != nil {
		return fmt.Errorf("failed to update join request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// PromoteJoinRequest accepts a pending request as membership, enforcing
// capacity under lock
func (r *Repository) PromoteJoinRequest(ctx context.Context, id, processedBy string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	jr := &JoinRequest{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, family_id, requester_id FROM join_requests
		 WHERE id = $1 AND status = 'PENDING' FOR UPDATE`, id,
	).Scan(&jr.ID, &jr.FamilyID, &jr.RequesterID)
	if err == sql.ErrNoRows {
		return ErrRequestNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock join request: %w", err)
	}

	_, maxSize, err := lockFamily(ctx, tx, jr.FamilyID)
	if err != nil {
		return err
	}

	if err := addMemberTx(ctx, tx, jr.FamilyID, jr.RequesterID, maxSize); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE join_requests SET status = 'ACCEPTED', processed_by = $2, updated_at = now() WHERE id = $1`,
		id, processedBy,
	); err != nil {
		return fmt.Errorf("failed to mark join request accepted: %w", err)
	}
	return tx.Commit()
}
