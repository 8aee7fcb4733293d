package main

// Run database migrations:
//   go run ./cmd/migrate

import (
	"context"
	"os"

	"go.uber.org/zap"

	"portfolio-backend/internal/shared/config"
	"portfolio-backend/internal/shared/storage/db"
	"portfolio-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	logger, err := telemetry.Init(cfg.Env)
	if err != nil {
		panic(err)
	}
	ctx := context.Background()

	driver, dsn, opts := db.DriverPostgres, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions())
	if cfg.RecordStoreType == "sqlite" {
		driver, dsn, opts = db.DriverSQLite, cfg.SQLitePath, db.SQLiteOptions()
	}

	sqlDB, err := db.Connect(ctx, driver, dsn, opts)
	if err != nil {
		logger.Error("failed to connect database", zap.Error(err))
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB, driver); err != nil {
		logger.Error("failed to run migrations", zap.Error(err))
		os.Exit(1)
	}
}
