package auth

import (
	"context"
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	usernameSuffixLength   = 3
	usernameSuffixAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// UsernameAllocator derives a handle from an email address.
//
// The base handle is the local part of the email. When it is taken a short
// random suffix is appended. With maxAttempts == 1 the suffixed candidate is
// used without a second lookup. Larger values check up to maxAttempts
// suffixed candidates and fall back to the last one when all are taken, so
// the store's unique index remains the final guard.
type UsernameAllocator struct {
	store       UserStore
	maxAttempts int
	suffix      func() (string, error)
}

func NewUsernameAllocator(store UserStore, maxAttempts int) *UsernameAllocator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &UsernameAllocator{
		store:       store,
		maxAttempts: maxAttempts,
		suffix:      randomSuffix,
	}
}

// Allocate returns a username for email. It does not persist anything.
func (a *UsernameAllocator) Allocate(ctx context.Context, email string) (string, error) {
	base, _, _ := strings.Cut(email, "@")

	taken, err := a.store.UsernameExists(ctx, base)
	if err != nil {
		return "", fmt.Errorf("check username %q: %w", base, err)
	}
	if !taken {
		return base, nil
	}

	var candidate string
	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		suffix, err := a.suffix()
		if err != nil {
			return "", fmt.Errorf("generate username suffix: %w", err)
		}
		candidate = base + suffix

		if a.maxAttempts == 1 {
			break
		}

		taken, err := a.store.UsernameExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check username %q: %w", candidate, err)
		}
		if !taken {
			break
		}
	}

	return candidate, nil
}

func randomSuffix() (string, error) {
	return gonanoid.Generate(usernameSuffixAlphabet, usernameSuffixLength)
}
