// Copyright (c) 2025 Passgate
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"passgate/cli/internal/httperrors"
	"passgate/cli/internal/terminal"
)

var (
	loginUsername string
)

// loginCmd represents the login command. It prompts for credentials, exchanges
// them for a token bundle via the password grant, and stores the bundle
// securely. Once signed in, the session keeps the access token fresh
// automatically on subsequent commands.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with username and password",
	Long: `The login command signs in to the configured authorization server using the
OAuth2 password grant. Credentials are exchanged for an access/refresh token
pair; the tokens are stored in the OS keychain (or a private state file where
no keychain exists) and renewed automatically before they expire.

The password is read interactively and never stored.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		sess, err := newSession()
		if err != nil {
			return err
		}

		username := strings.TrimSpace(loginUsername)
		if username == "" {
			promptText := "Username or email: "
			fmt.Print(promptText)
			reader := bufio.NewReader(os.Stdin)
			input, _ := reader.ReadString('\n')
			username = strings.TrimSpace(input)
			terminal.ClearPreviousLines(len(promptText) + len(input))
		}
		if username == "" {
			return fmt.Errorf("username is required")
		}

		password, err := pterm.DefaultInteractiveTextInput.
			WithMask("*").
			Show("Password")
		if err != nil {
			return err
		}
		if password == "" {
			return fmt.Errorf("password is required")
		}

		stop := startSpinner("signing in")
		err = sess.SignIn(ctx, username, password)
		stop()
		if err != nil {
			pterm.Println("❌ Sign-in failed")
			return httperrors.FormatNetworkError(err, "signing in")
		}

		// Best effort: resolve the account for a friendly greeting
		identifier := username
		if account, err := sess.GetUser(ctx); err == nil {
			identifier = account.Identifier()
		}

		pterm.Printf("✅ Signed in as %s\n", identifier)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username or email to sign in with")
	rootCmd.AddCommand(loginCmd)
}
