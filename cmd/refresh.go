// Copyright (c) 2025 Passgate
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"passgate/cli/internal/httperrors"
)

// refreshCmd forces an immediate token refresh. Normally the session refreshes
// on its own before expiry; this command is for scripting and debugging.
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the refresh token for a new access token now",

	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession()
		if err != nil {
			return err
		}

		if err := sess.RefreshToken(cmd.Context()); err != nil {
			if isNotLoggedIn(err) {
				printNotLoggedIn()
				return nil
			}
			pterm.Println("❌ Token refresh failed; the session has been cleared")
			pterm.Println("   Run 'passgate login' to sign in again.")
			return httperrors.FormatNetworkError(err, "refreshing the token")
		}

		bundle := sess.Bundle()
		pterm.Printf("✅ Token refreshed; expires at %s\n", bundle.ExpiresAt.Format("15:04:05"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
