// Copyright (c) 2025 Passgate
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"passgate/cli/internal/config"
	"passgate/cli/internal/httperrors"
)

var (
	configureBaseURL      string
	configureClientID     string
	configureUserInfoPath string
	configureRevokePath   string
)

// configureCmd stores the authorization-server settings in the XDG config dir.
// The client secret is never written to the config file; provide it via the
// PASSGATE_CLIENT_SECRET environment variable.
var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Configure the authorization server connection",
	Long: `The configure command stores the authorization server base URL, OAuth2
client ID, and endpoint paths in the passgate config file. Values can be
passed as flags or entered interactively.

The client secret is NOT stored in the config file; set the
PASSGATE_CLIENT_SECRET environment variable instead.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		baseURL := strings.TrimSpace(configureBaseURL)
		if baseURL == "" {
			baseURL, err = pterm.DefaultInteractiveTextInput.
				WithDefaultValue(cfg.BaseURL).
				Show("Authorization server base URL")
			if err != nil {
				return err
			}
			baseURL = strings.TrimSpace(baseURL)
		}
		if baseURL == "" {
			return fmt.Errorf("base URL is required")
		}

		clientID := strings.TrimSpace(configureClientID)
		if clientID == "" {
			clientID, err = pterm.DefaultInteractiveTextInput.
				WithDefaultValue(cfg.ClientID).
				Show("OAuth2 client ID")
			if err != nil {
				return err
			}
			clientID = strings.TrimSpace(clientID)
		}
		if clientID == "" {
			return fmt.Errorf("client ID is required")
		}

		cfg.BaseURL = strings.TrimRight(baseURL, "/")
		cfg.ClientID = clientID
		if configureUserInfoPath != "" {
			cfg.UserInfoPath = configureUserInfoPath
		}
		if configureRevokePath != "" {
			cfg.RevokePath = configureRevokePath
		}

		if err := config.Save(cfg); err != nil {
			return err
		}

		pterm.Printf("✅ Configuration saved for %s\n", httperrors.ExtractHostFromURL(cfg.BaseURL))
		pterm.Println("   Run 'passgate login' to sign in.")
		return nil
	},
}

func init() {
	configureCmd.Flags().StringVar(&configureBaseURL, "base-url", "", "Authorization server base URL")
	configureCmd.Flags().StringVar(&configureClientID, "client-id", "", "OAuth2 client ID")
	configureCmd.Flags().StringVar(&configureUserInfoPath, "user-info-path", "", "Path of the user-info resource")
	configureCmd.Flags().StringVar(&configureRevokePath, "revoke-path", "", "Path of the token revoke endpoint")
	rootCmd.AddCommand(configureCmd)
}
