package auth

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minFullNameLength = 3
	minPasswordLength = 6
	maxPasswordLength = 20
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// ValidateRegistration checks the sign-up fields in order and returns the
// first rule that fails.
func ValidateRegistration(fullName, email, password string) error {
	if fullName == "" || email == "" || password == "" {
		return ErrMissingFields
	}
	if utf8.RuneCountInString(fullName) < minFullNameLength {
		return ErrNameTooShort
	}
	return validateEmailAndPassword(email, password)
}

// ValidateCredentials checks the sign-in fields.
func ValidateCredentials(email, password string) error {
	if email == "" || password == "" {
		return ErrMissingFields
	}
	return validateEmailAndPassword(email, password)
}

func validateEmailAndPassword(email, password string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	if !isStrongPassword(password) {
		return ErrWeakPassword
	}
	return nil
}

// isStrongPassword requires 6 to 20 characters on a single line with at least
// one digit, one lowercase and one uppercase ASCII letter.
func isStrongPassword(password string) bool {
	if strings.ContainsAny(password, "\n\r\u2028\u2029") {
		return false
	}

	length := utf8.RuneCountInString(password)
	if length < minPasswordLength || length > maxPasswordLength {
		return false
	}

	var hasDigit, hasLower, hasUpper bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		}
	}

	return hasDigit && hasLower && hasUpper
}
