package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/partsdesk/storefront/internal/app"
	"github.com/partsdesk/storefront/internal/core/domain"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			sess, err := a.Sessions.Authenticate(ctx, loginUsername, loginPassword)
			if err != nil {
				return errors.New(domain.UserMessage(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", sess.Username, sess.Role)
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the persisted session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			a.Sessions.Logout(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the persisted session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			sess, err := a.Sessions.Current(ctx)
			if errors.Is(err, domain.ErrAuthRequired) || errors.Is(err, domain.ErrStaleSession) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) role=%s home=%s\n", sess.Username, sess.ClientName(), sess.Role, sess.Home())
			return nil
		})
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "account username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}
