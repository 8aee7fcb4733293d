package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"portfolio-backend/internal/remote"
)

// SQLiteRepo stores users in the SQLite record store.
type SQLiteRepo struct {
	DB *sql.DB
}

func (r *SQLiteRepo) Create(ctx context.Context, user User) error {
	const q = `
INSERT INTO users (id, email, name, is_admin, password_hash, password_salt, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`
	_, err := r.DB.ExecContext(ctx, q, user.ID, user.Email, user.Name, user.IsAdmin, user.PasswordHash, user.PasswordSalt)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrAlreadyExists
	}
	return err
}

func (r *SQLiteRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const q = `
SELECT id, email, name, is_admin, password_hash, password_salt, created_at, updated_at
FROM users WHERE id = ?`
	return scanSQLUser(r.DB.QueryRowContext(ctx, q, userID))
}

func (r *SQLiteRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	const q = `
SELECT id, email, name, is_admin, password_hash, password_salt, created_at, updated_at
FROM users WHERE email = ?`
	return scanSQLUser(r.DB.QueryRowContext(ctx, q, email))
}

func (r *SQLiteRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanSQLUser(row *sql.Row) (User, error) {
	var (
		u                User
		created, updated remote.Timestamp
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.IsAdmin, &u.PasswordHash, &u.PasswordSalt, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	u.CreatedAt, u.UpdatedAt = created.Time, updated.Time
	return u, nil
}
