package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wuwenbin0122/wwb.blog/internal/auth"
	"github.com/wuwenbin0122/wwb.blog/internal/models"
)

func TestPostgresUserStoreCreate(t *testing.T) {
	anyArgs := []any{
		pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
	}

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
		wantFault bool
	}{
		{
			name: "inserted",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(anyArgs...).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "duplicate email",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(anyArgs...).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: pgEmailConstraint})
			},
			wantErr: auth.ErrEmailTaken,
		},
		{
			name: "duplicate username",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(anyArgs...).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: pgUsernameConstraint})
			},
			wantErr: auth.ErrUsernameTaken,
		},
		{
			name: "connection failure",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(anyArgs...).
					WillReturnError(errors.New("connection refused"))
			},
			wantFault: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			store := NewPostgresUserStore(mock)
			created, err := store.Create(context.Background(), &models.User{
				FullName:     "Alice",
				Username:     "alice",
				Email:        "alice@example.com",
				PasswordHash: "hash",
			})

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantFault:
				require.Error(t, err)
				assert.Contains(t, err.Error(), "connection refused")
			default:
				require.NoError(t, err)
				assert.NotEmpty(t, created.ID)
				assert.Equal(t, "alice", created.Username)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestPostgresUserStoreFindByEmail(t *testing.T) {
	columns := []string{"id", "fullname", "username", "email", "password", "profile_img", "created_at", "updated_at"}
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT id, fullname, username, email, password, profile_img, created_at, updated_at`).
			WithArgs("alice@example.com").
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow("user-1", "Alice", "alice", "alice@example.com", "hash", "", now, now))

		user, err := NewPostgresUserStore(mock).FindByEmail(context.Background(), "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
		assert.Equal(t, "hash", user.PasswordHash)
		assert.Equal(t, now, user.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT id, fullname`).
			WithArgs("nobody@example.com").
			WillReturnError(pgx.ErrNoRows)

		_, err = NewPostgresUserStore(mock).FindByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(t, err, auth.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresUserStoreUsernameExists(t *testing.T) {
	for _, exists := range []bool{true, false} {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)

		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("alice").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(exists))

		got, err := NewPostgresUserStore(mock).UsernameExists(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, exists, got)
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	}
}
