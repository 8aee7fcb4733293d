package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"portfolio-backend/internal/shared/config"
	"portfolio-backend/internal/shared/storage/db"
)

var migrateStatus bool

func init() {
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "Print migration status instead of applying")
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded schema migrations",
	Long: `Apply the embedded goose migrations to the configured record store.

Examples:
  # Migrate Postgres
  DATABASE_URL=postgres://... portfolioctl migrate

  # Show which migrations are applied on SQLite
  RECORD_STORE=sqlite portfolioctl migrate --status`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		driver, dsn, opts := db.DriverPostgres, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions())
		switch cfg.RecordStoreType {
		case "sqlite":
			driver, dsn, opts = db.DriverSQLite, cfg.SQLitePath, db.SQLiteOptions()
		case "memory":
			return fmt.Errorf("RECORD_STORE=memory has no schema to migrate")
		}

		ctx := cmd.Context()
		sqlDB, err := db.Connect(ctx, driver, dsn, opts)
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		if migrateStatus {
			return db.MigrationStatus(ctx, sqlDB, driver)
		}
		if err := db.RunMigrations(ctx, sqlDB, driver); err != nil {
			return err
		}
		version, err := db.MigrationVersion(ctx, sqlDB, driver)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
		return nil
	},
}
