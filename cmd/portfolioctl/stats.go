package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"portfolio-backend/internal/bootstrap"
	"portfolio-backend/internal/dashboard"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the dashboard summary as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(app *bootstrap.App) error {
			if err := app.Load(cmd.Context()); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(dashboard.NewService(app.Content, app.Files).Summary())
		})
	},
}
