package utils

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/spieltreff/backend/internal/apperror"
)

// emailRe matches the usual local@domain.tld shape. Deliberately
// loose: real validation happens when the confirmation mail bounces.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// NormalizeEmail lowercases and trims an email address. Uniqueness
// in the accounts table is enforced on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail reports whether the normalized address looks like a
// deliverable email. Returns nil on success.
func ValidateEmail(email string) *apperror.Error {
	if !emailRe.MatchString(email) {
		return apperror.ErrInvalidEmail
	}
	return nil
}

// ValidatePassword enforces the registration password policy: at
// least 8 characters, at least one letter and at least one digit.
// The checks run in that order and the first violation wins, so
// clients always see a single actionable message.
func ValidatePassword(plain string) *apperror.Error {
	if len(plain) < 8 {
		return apperror.ErrPasswordTooShort
	}
	hasLetter := false
	hasDigit := false
	for _, r := range plain {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
	}
	if !hasLetter {
		return apperror.ErrPasswordMissingLetter
	}
	if !hasDigit {
		return apperror.ErrPasswordMissingNumber
	}
	return nil
}
