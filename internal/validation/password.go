package validation

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Admin password length bounds. The upper bound keeps bcrypt under its
// 72-byte input limit for ASCII passwords.
const (
	MinAdminPasswordLength = 10
	MaxAdminPasswordLength = 72
)

// AdminPassword enforces the policy for passwords set through the admin
// tooling: length bounds plus at least one letter and one digit.
func AdminPassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinAdminPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinAdminPasswordLength)
	}
	if len(password) > MaxAdminPasswordLength {
		return fmt.Errorf("password must be at most %d bytes", MaxAdminPasswordLength)
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsSpace(r):
			return fmt.Errorf("password cannot contain whitespace")
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain a letter and a digit")
	}
	return nil
}
