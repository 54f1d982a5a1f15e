// Copyright (c) 2025 Passgate
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"passgate/cli/internal/httperrors"
)

// revokeCmd invalidates the current token on the authorization server.
// Local session state is left untouched; pair with 'passgate logout' to also
// clear the stored tokens.
var revokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Invalidate the current token server-side",
	Long: `The revoke command calls the configured revoke endpoint to invalidate the
current access token on the authorization server. The local token bundle is
intentionally left in place; run 'passgate logout' afterwards to clear it.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession()
		if err != nil {
			return err
		}

		if err := sess.Revoke(cmd.Context()); err != nil {
			if isNotLoggedIn(err) {
				printNotLoggedIn()
				return nil
			}
			return httperrors.FormatNetworkError(err, "revoking the token")
		}

		pterm.Println("✅ Token revoked server-side")
		pterm.Println("   Run 'passgate logout' to clear local tokens as well.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(revokeCmd)
}
