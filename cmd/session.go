package cmd

import (
	"fmt"
	"strings"

	"github.com/bnema/wallet-accounts-cli/internal/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newSessionCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the signed-in user the profile belongs to",
	}

	cmd.AddCommand(newSessionLoginCmd(app), newSessionLogoutCmd(app), newSessionShowCmd(app))

	return cmd
}

func newSessionLoginCmd(app *app) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as a user (a new id is generated when --user is empty)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID := strings.TrimSpace(user)
			if userID == "" {
				userID = uuid.NewString()
			}

			if err := app.sessions.SetCurrentUser(cmd.Context(), domain.UserID(userID)); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", userID)
			return err
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "User ID")

	return cmd
}

func newSessionLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out the current user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.sessions.SetCurrentUser(cmd.Context(), "")
		},
	}
}

func newSessionShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := app.sessions.CurrentUser(cmd.Context())
			if err != nil {
				return sessionError(err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), userID)
			return err
		},
	}
}
