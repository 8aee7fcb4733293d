package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxPool is the subset of *pgxpool.Pool the repository uses. pgxmock pools
// satisfy it too.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// NewPool opens a pgx connection pool for dsn.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// PGRepo stores users in Postgres through a pgx pool.
type PGRepo struct {
	Pool PgxPool
}

func (r *PGRepo) Create(ctx context.Context, user User) error {
	const q = `
INSERT INTO users (id, email, name, is_admin, password_hash, password_salt, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())`
	_, err := r.Pool.Exec(ctx, q, user.ID, user.Email, user.Name, user.IsAdmin, user.PasswordHash, user.PasswordSalt)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const q = `
SELECT id, email, name, is_admin, password_hash, password_salt, created_at, updated_at
FROM users WHERE id = $1`
	return scanUser(r.Pool.QueryRow(ctx, q, userID))
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	const q = `
SELECT id, email, name, is_admin, password_hash, password_salt, created_at, updated_at
FROM users WHERE email = $1`
	return scanUser(r.Pool.QueryRow(ctx, q, email))
}

func (r *PGRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.IsAdmin, &u.PasswordHash, &u.PasswordSalt, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pg *pgconn.PgError
	return errors.As(err, &pg) && pg.Code == "23505"
}
