package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFiles embed.FS

// goose keeps its dialect and filesystem in package state.
var gooseMu sync.Mutex

// RunMigrations applies the embedded SQL migrations for driver via goose.
// If database is nil, it's a no-op.
func RunMigrations(ctx context.Context, database *sql.DB, driver string) error {
	if database == nil {
		return nil
	}
	return withGoose(driver, func(dir string) error {
		return goose.UpContext(ctx, database, dir)
	})
}

// MigrationStatus prints the applied state of every embedded migration
// through goose's logger.
func MigrationStatus(ctx context.Context, database *sql.DB, driver string) error {
	return withGoose(driver, func(dir string) error {
		return goose.StatusContext(ctx, database, dir)
	})
}

// MigrationVersion returns the current schema version.
func MigrationVersion(ctx context.Context, database *sql.DB, driver string) (int64, error) {
	var version int64
	err := withGoose(driver, func(string) error {
		var err error
		version, err = goose.GetDBVersionContext(ctx, database)
		return err
	})
	return version, err
}

func withGoose(driver string, fn func(dir string) error) error {
	dialect, dir, err := gooseDialect(driver)
	if err != nil {
		return err
	}
	gooseMu.Lock()
	defer gooseMu.Unlock()
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return fn(dir)
}

func gooseDialect(driver string) (string, string, error) {
	switch driver {
	case DriverPostgres:
		return "postgres", "migrations/postgres", nil
	case DriverSQLite:
		return "sqlite3", "migrations/sqlite", nil
	default:
		return "", "", fmt.Errorf("no migrations for driver %q", driver)
	}
}
