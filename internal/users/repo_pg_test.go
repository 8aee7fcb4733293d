package users

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PGRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &PGRepo{Pool: mock}, mock
}

func TestPGRepoCreateAndUniqueViolation(t *testing.T) {
	r, mock := newMockRepo(t)
	defer mock.Close()
	ctx := context.Background()
	u := User{ID: "u-1", Email: "a@example.com", Name: "A", IsAdmin: true, PasswordHash: []byte("h"), PasswordSalt: []byte("s")}

	mock.ExpectExec(`INSERT INTO users \(id, email, name, is_admin, password_hash, password_salt, created_at, updated_at\)`).
		WithArgs(u.ID, u.Email, u.Name, u.IsAdmin, u.PasswordHash, u.PasswordSalt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(ctx, u))

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(u.ID, u.Email, u.Name, u.IsAdmin, u.PasswordHash, u.PasswordSalt).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, r.Create(ctx, u), ErrAlreadyExists)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoGetByEmail(t *testing.T) {
	r, mock := newMockRepo(t)
	defer mock.Close()
	ctx := context.Background()
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	cols := []string{"id", "email", "name", "is_admin", "password_hash", "password_salt", "created_at", "updated_at"}

	mock.ExpectQuery(`SELECT id, email, name, is_admin, password_hash, password_salt, created_at, updated_at FROM users WHERE email = \$1`).
		WithArgs("a@example.com").
		WillReturnRows(pgxmock.NewRows(cols).AddRow("u-1", "a@example.com", "A", true, []byte("h"), []byte("s"), now, now))
	u, err := r.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.Equal(t, "u-1", u.ID)
	require.True(t, u.IsAdmin)
	require.Equal(t, now, u.CreatedAt)

	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("missing@example.com").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoCount(t *testing.T) {
	r, mock := newMockRepo(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM users`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	n, err := r.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, n)
}
