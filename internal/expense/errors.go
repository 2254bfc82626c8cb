package expense

import "errors"

var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrAccessDenied    = errors.New("access to this expense is denied")
	ErrNotOwner        = errors.New("only the expense owner may do this")
	ErrNoFamily        = errors.New("user does not belong to a family")
	ErrNotFamilyMember = errors.New("user is not a member of this family")
)
