package family

import (
	"errors"
	"regexp"
	"strings"
)

var (
	namePattern  = regexp.MustCompile(`^[A-Za-z0-9 _-]+$`)
	aliasPattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
)

// ValidateName checks a family name: 2-100 characters, alphanumeric with
// spaces, hyphens or underscores, no surrounding whitespace.
func ValidateName(name string) error {
	if len(name) < 2 || len(name) > 100 {
		return errors.New("family name must be between 2 and 100 characters")
	}
	if strings.TrimSpace(name) != name {
		return errors.New("family name must not have leading or trailing whitespace")
	}
	if !namePattern.MatchString(name) {
		return errors.New("family name may only contain letters, digits, spaces, hyphens and underscores")
	}
	return nil
}

// ValidateAlias checks a join code: exactly 6 uppercase alphanumerics
func ValidateAlias(alias string) error {
	if !aliasPattern.MatchString(alias) {
		return errors.New("alias must be exactly 6 uppercase alphanumeric characters")
	}
	return nil
}

// ValidateEmail checks an email address
func ValidateEmail(email string) error {
	if len(email) == 0 || len(email) > 254 {
		return errors.New("email must be between 1 and 254 characters")
	}
	if !emailPattern.MatchString(email) {
		return errors.New("email format is invalid")
	}
	return nil
}
