// Copyright (c) 2025 Passgate
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// logoutCmd represents the logout command for clearing authentication state.
// It removes the token bundle from local storage and cancels any scheduled
// refresh. The token is NOT revoked server-side; use 'passgate revoke' for
// that before logging out when server-side invalidation is wanted.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved session and tokens",
	Long: `The logout command clears all local authentication state: the access and
refresh tokens are removed from the OS keychain (or state file) and the
scheduled token refresh is cancelled.

Logout is purely local. To invalidate the token on the authorization server
as well, run 'passgate revoke' first.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession()
		if err != nil {
			return err
		}

		sess.SignOut()
		pterm.Println("✅ Signed out; local tokens removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
