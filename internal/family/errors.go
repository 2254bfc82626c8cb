package family

import "errors"

// Common errors
var (
	ErrFamilyNotFound      = errors.New("family not found")
	ErrNoFamily            = errors.New("user does not belong to a family")
	ErrAlreadyInFamily     = errors.New("user already belongs to a family")
	ErrFamilyFull          = errors.New("family is at capacity")
	ErrNotMember           = errors.New("user is not a member of this family")
	ErrNotHead             = errors.New("only the family head may perform this action")
	ErrCannotRemoveSelf    = errors.New("the head cannot remove itself; leave the family instead")
	ErrNameTaken           = errors.New("a family with this name already exists")
	ErrAliasTaken          = errors.New("family alias already exists")
	ErrAliasSpaceExhausted = errors.New("could not generate a unique family alias, try again")
	ErrInviteNotFound      = errors.New("invitation not found")
	ErrAlreadyInvited      = errors.New("an invitation is already pending for this email")
	ErrInviteeNotFound     = errors.New("no user with this email")
	ErrRequestPending      = errors.New("a join request is already pending")
	ErrRequestNotFound     = errors.New("join request not found")
)
