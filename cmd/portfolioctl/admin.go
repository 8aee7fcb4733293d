package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"portfolio-backend/internal/bootstrap"
)

var (
	adminEmail    string
	adminName     string
	adminPassword string
)

func init() {
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "Admin e-mail address (required)")
	adminCreateCmd.Flags().StringVar(&adminName, "name", "", "Display name")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "Password; read from stdin when omitted")
	_ = adminCreateCmd.MarkFlagRequired("email")
	adminCmd.AddCommand(adminCreateCmd)
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	Long: `Create an admin account that can sign in to the dashboard.

Examples:
  # Prompt for the password on stdin
  portfolioctl admin create --email me@example.com --name "Jane Doe"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := adminPassword
		if password == "" {
			fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.New("a password is required")
			}
			password = strings.TrimRight(line, "\r\n")
		}

		return withApp(cmd.Context(), func(app *bootstrap.App) error {
			u, err := app.Users.CreateAdmin(cmd.Context(), adminEmail, adminName, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", u.Email, u.ID)
			return nil
		})
	},
}
