package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wuwenbin0122/wwb.blog/internal/models"
)

type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

// AttemptLimiter throttles repeated failed sign-ins for one email.
type AttemptLimiter interface {
	Allow(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

type Options struct {
	Hasher              PasswordHasher
	Issuer              *TokenIssuer
	UsernameMaxAttempts int
	Limiter             AttemptLimiter
	Logger              *zap.Logger
}

// Service implements account registration and sign-in on top of a UserStore.
// It keeps no per-request state and is safe for concurrent use.
type Service struct {
	store     UserStore
	hasher    PasswordHasher
	issuer    *TokenIssuer
	usernames *UsernameAllocator
	limiter   AttemptLimiter
	logger    *zap.Logger
}

func NewService(store UserStore, opts Options) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: user store is required")
	}
	if opts.Issuer == nil {
		return nil, errors.New("auth: token issuer is required")
	}
	if opts.Hasher == nil {
		opts.Hasher = NewBcryptHasher(DefaultBcryptCost)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Service{
		store:     store,
		hasher:    opts.Hasher,
		issuer:    opts.Issuer,
		usernames: NewUsernameAllocator(store, opts.UsernameMaxAttempts),
		limiter:   opts.Limiter,
		logger:    opts.Logger,
	}, nil
}

// Register validates input, hashes the password, allocates a username and
// persists the account. Email uniqueness is left to the store.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := ValidateRegistration(input.FullName, input.Email, input.Password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	username, err := s.usernames.Allocate(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("allocate username: %w", err)
	}

	user, err := s.store.Create(ctx, &models.User{
		FullName:     input.FullName,
		Username:     username,
		Email:        input.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("username", user.Username))

	return s.result(user)
}

// Login checks credentials against the stored account. Unknown emails and
// wrong passwords are reported as distinct errors.
func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if err := ValidateCredentials(input.Email, input.Password); err != nil {
		return nil, err
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, input.Email)
		if err != nil {
			s.logger.Warn("sign-in limiter unavailable", zap.Error(err))
		} else if !allowed {
			return nil, ErrTooManyAttempts
		}
	}

	user, err := s.store.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.recordFailure(ctx, input.Email)
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := s.hasher.Verify(input.Password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.recordFailure(ctx, input.Email)
		return nil, ErrIncorrectPassword
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, input.Email); err != nil {
			s.logger.Warn("sign-in limiter reset failed", zap.Error(err))
		}
	}

	return s.result(user)
}

// VerifyToken returns the claims of a token minted by this service.
func (s *Service) VerifyToken(token string) (*Claims, error) {
	return s.issuer.Verify(token)
}

func (s *Service) result(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.Sanitize(),
	}, nil
}

func (s *Service) recordFailure(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.RecordFailure(ctx, email); err != nil {
		s.logger.Warn("sign-in limiter record failed", zap.Error(err))
	}
}
