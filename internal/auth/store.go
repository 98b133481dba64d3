package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wuwenbin0122/wwb.blog/internal/models"
)

// UserStore persists accounts. Implementations must enforce email and
// username uniqueness atomically: Create returns ErrEmailTaken or
// ErrUsernameTaken instead of writing a duplicate.
type UserStore interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// MemoryStore is an in-process UserStore used by tests and local runs
// without a database.
type MemoryStore struct {
	mu              sync.RWMutex
	usersByEmail    map[string]*models.User
	usersByUsername map[string]*models.User
	caseInsensitive bool
}

// NewMemoryStore returns an empty store. When caseInsensitive is set, emails
// differing only in case collide.
func NewMemoryStore(caseInsensitive bool) *MemoryStore {
	return &MemoryStore{
		usersByEmail:    make(map[string]*models.User),
		usersByUsername: make(map[string]*models.User),
		caseInsensitive: caseInsensitive,
	}
}

func (s *MemoryStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	emailKey := s.emailKey(user.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[emailKey]; exists {
		return nil, ErrEmailTaken
	}
	if _, exists := s.usersByUsername[user.Username]; exists {
		return nil, ErrUsernameTaken
	}

	now := time.Now().UTC()
	stored := *user
	stored.ID = uuid.NewString()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.usersByEmail[emailKey] = &stored
	s.usersByUsername[stored.Username] = &stored

	created := stored
	return &created, nil
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.usersByEmail[s.emailKey(email)]
	if !ok {
		return nil, ErrNotFound
	}

	found := *user
	return &found, nil
}

func (s *MemoryStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.usersByUsername[username]
	return ok, nil
}

func (s *MemoryStore) emailKey(email string) string {
	if s.caseInsensitive {
		return strings.ToLower(email)
	}
	return email
}
