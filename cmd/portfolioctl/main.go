// Package main implements portfolioctl, the admin CLI for the portfolio backend.
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"portfolio-backend/internal/bootstrap"
	"portfolio-backend/internal/shared/config"
	"portfolio-backend/internal/shared/telemetry"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "portfolioctl",
	Short: "Admin tooling for the portfolio backend",
	Long: `portfolioctl runs maintenance tasks against the same stores the API uses.
Configuration is read from the environment and .env files.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		_, err := telemetry.Init(cfg.Env)
		return err
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, adminCmd, resyncCmd, statsCmd)
}

// withApp builds the application for one command and closes it afterwards.
func withApp(ctx context.Context, fn func(*bootstrap.App) error) error {
	app, err := bootstrap.Build(ctx, config.Load())
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}
