// Copyright (c) 2025 Passgate
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the Passgate CLI.
// It implements subcommands for signing in to an OAuth2 authorization server,
// inspecting the current session, refreshing and revoking tokens, and signing
// out, using the Cobra CLI framework with a terminal UI built on pterm.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"passgate/cli/internal/logging"
)

var (
	showVersion bool
)

// rootCmd represents the base command when called without any subcommands.
// It serves as the entry point for the Passgate CLI application.
var rootCmd = &cobra.Command{
	Use:           "passgate",
	Short:         "Passgate CLI for OAuth2 password-grant sessions",
	Long:          `Passgate is a command-line tool that manages an OAuth2 password-grant session: signing in, keeping the access token fresh, and signing out.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("passgate %s\n", Version)
			return nil
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// Execute runs the CLI application.
// It executes the root command and handles any errors that occur during
// execution. Error text is masked before printing; grant errors can echo
// form fields containing credentials.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, logging.PresentError("Error", err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
}
