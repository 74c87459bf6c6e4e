package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talk-to-your-terms/tosapi/internal/domain"
)

func TestUserRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("a@example.com", "hash").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	repo := NewUserRepository(mock)
	id, err := repo.Create(context.Background(), &domain.User{Email: "a@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("a@example.com", "hash").
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	repo := NewUserRepository(mock)
	_, err = repo.Create(context.Background(), &domain.User{Email: "a@example.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyRegistered)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, email, password_hash").
		WithArgs("a@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "password_hash", "created_at", "last_login", "is_active"}).
			AddRow(int64(7), "a@example.com", "hash", now, (*time.Time)(nil), true))

	repo := NewUserRepository(mock)
	u, err := repo.GetByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)

	assert.Equal(t, int64(7), u.ID)
	assert.True(t, u.IsActive)
	assert.Nil(t, u.LastLogin)
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, email, password_hash").
		WithArgs("missing@example.com").
		WillReturnError(pgx.ErrNoRows)

	repo := NewUserRepository(mock)
	_, err = repo.GetByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_UpdateLastLogin(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	at := time.Now().UTC()
	mock.ExpectExec("UPDATE users SET last_login").
		WithArgs(at, int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewUserRepository(mock)
	require.NoError(t, repo.UpdateLastLogin(context.Background(), 7, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}
