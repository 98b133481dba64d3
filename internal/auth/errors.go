package auth

import "errors"

// Client errors: the caller supplied invalid or conflicting data.
var (
	ErrMissingFields     = errors.New("auth: required fields missing")
	ErrNameTooShort      = errors.New("auth: full name too short")
	ErrInvalidEmail      = errors.New("auth: invalid email")
	ErrWeakPassword      = errors.New("auth: password too weak")
	ErrEmailExists       = errors.New("auth: email already registered")
	ErrUserNotFound      = errors.New("auth: user not found")
	ErrIncorrectPassword = errors.New("auth: incorrect password")
	ErrTooManyAttempts   = errors.New("auth: too many failed sign-in attempts")
)

// Server faults: the service or one of its dependencies failed.
var (
	ErrHashingFailure    = errors.New("auth: password hashing failed")
	ErrMissingSigningKey = errors.New("auth: token signing key is not configured")
	ErrInvalidToken      = errors.New("auth: invalid token")
)

// Errors returned by UserStore implementations.
var (
	ErrNotFound      = errors.New("store: user not found")
	ErrEmailTaken    = errors.New("store: email already taken")
	ErrUsernameTaken = errors.New("store: username already taken")
)

var clientErrors = []error{
	ErrMissingFields,
	ErrNameTooShort,
	ErrInvalidEmail,
	ErrWeakPassword,
	ErrEmailExists,
	ErrUserNotFound,
	ErrIncorrectPassword,
	ErrTooManyAttempts,
}

// IsClientError reports whether err was caused by caller-supplied data.
// Anything else returned by the Service is a server fault.
func IsClientError(err error) bool {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
