// Package sqlstore implements remote.Table on database/sql. Postgres is
// reached through the pgx stdlib driver and SQLite through modernc.org/sqlite.
package sqlstore

import (
	"fmt"
	"strings"
)

// Dialect captures the SQL differences between supported engines.
type Dialect interface {
	// Name is the goose dialect name.
	Name() string
	// Placeholder returns the n-th (1-based) bind parameter.
	Placeholder(n int) string
}

// Postgres uses $n placeholders.
type Postgres struct{}

func (Postgres) Name() string { return "postgres" }

func (Postgres) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

// SQLite uses ? placeholders.
type SQLite struct{}

func (SQLite) Name() string { return "sqlite3" }

func (SQLite) Placeholder(int) string { return "?" }

// DialectFor maps a record store type to its dialect.
func DialectFor(storeType string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(storeType)) {
	case "postgres":
		return Postgres{}, nil
	case "sqlite":
		return SQLite{}, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported record store %q", storeType)
	}
}
