package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wuwenbin0122/wwb.blog/internal/auth"
	"github.com/wuwenbin0122/wwb.blog/internal/models"
)

const (
	pgEmailConstraint    = "users_email_key"
	pgUsernameConstraint = "users_username_key"
)

// pgxQuerier is the subset of *pgxpool.Pool used by PostgresUserStore.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresUserStore implements auth.UserStore on the users table created by
// Postgres.EnsureSchema. Email matching is case-sensitive.
type PostgresUserStore struct {
	pool pgxQuerier
}

func NewPostgresUserStore(pool pgxQuerier) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

func (s *PostgresUserStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now().UTC()
	created := *user
	created.ID = uuid.NewString()
	created.CreatedAt = now
	created.UpdatedAt = now

	const query = `INSERT INTO users (id, fullname, username, email, password, profile_img, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.pool.Exec(ctx, query,
		created.ID,
		created.FullName,
		created.Username,
		created.Email,
		created.PasswordHash,
		created.ProfileImage,
		created.CreatedAt,
		created.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			switch pgErr.ConstraintName {
			case pgEmailConstraint:
				return nil, auth.ErrEmailTaken
			case pgUsernameConstraint:
				return nil, auth.ErrUsernameTaken
			}
		}
		return nil, fmt.Errorf("postgres: insert user: %w", err)
	}

	return &created, nil
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT id, fullname, username, email, password, profile_img, created_at, updated_at
FROM users WHERE email = $1`

	var user models.User
	err := s.pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.FullName,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.ProfileImage,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: find user by email: %w", err)
	}

	return &user, nil
}

func (s *PostgresUserStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres: check username: %w", err)
	}
	return exists, nil
}
