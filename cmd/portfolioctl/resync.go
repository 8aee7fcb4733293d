package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"portfolio-backend/internal/bootstrap"
	"portfolio-backend/internal/cachesync"
)

var resyncCmd = &cobra.Command{
	Use:   "resync [collection...]",
	Short: "Ask running API instances to re-fetch their caches",
	Long: `Verify each collection can be read from the remote store, then announce a
change on NATS so every running instance re-fetches it. With no arguments
all collections are resynced. Requires NATS_URL.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(app *bootstrap.App) error {
			if app.Bus == nil {
				return errors.New("NATS_URL is not configured")
			}
			names := args
			if len(names) == 0 {
				names = app.Collections()
			}
			var errs []error
			for _, name := range names {
				if err := app.Refetch(cmd.Context(), name); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", name, err))
					continue
				}
				app.Bus.Publish(cmd.Context(), cachesync.Event{Collection: name, Op: "resync"})
				fmt.Fprintf(cmd.OutOrStdout(), "resynced %s\n", name)
			}
			if err := app.NATS.Flush(); err != nil {
				errs = append(errs, err)
			}
			return errors.Join(errs...)
		})
	},
}
