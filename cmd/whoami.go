package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"passgate/cli/internal/httperrors"
)

// whoamiCmd represents the whoami command for displaying current authentication state.
// It fetches the user-info resource with the current access token; an expired
// token is refreshed transparently by the session before the request succeeds.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show current authenticated account",
	Long: `The whoami command displays information about the currently authenticated
account. It fetches the user-info resource from the authorization server using
the stored session; if the access token has expired it is refreshed
transparently.

If no valid session exists, it will indicate that the user is not logged in.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession()
		if err != nil {
			return err
		}

		if !sess.IsAuthenticated() {
			printNotLoggedIn()
			return nil
		}

		account, err := sess.GetUser(cmd.Context())
		if err != nil {
			if isNotLoggedIn(err) {
				printNotLoggedIn()
				return nil
			}
			return httperrors.FormatNetworkError(err, "fetching account information")
		}

		fmt.Printf("👤 Current user: %s\n", account.Identifier())
		return nil
	},
}

func printNotLoggedIn() {
	fmt.Println("🔒 You're not logged in yet!")
	fmt.Println("   Run 'passgate login' to get started.")
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
