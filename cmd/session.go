// Copyright (c) 2025 Passgate
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"time"

	"passgate/cli/internal/config"
	"passgate/cli/internal/logging"
	"passgate/cli/internal/session"
)

// Account is the user-info shape the CLI works with. Servers differ in which
// identifier fields they populate, so several are accepted.
type Account struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// Identifier returns the best available display identifier for the account.
func (a Account) Identifier() string {
	switch {
	case a.Email != "":
		return a.Email
	case a.UserID != "":
		return a.UserID
	case a.ID != "":
		return a.ID
	case a.Name != "":
		return a.Name
	}
	return "user"
}

// newSession builds a session from the stored CLI configuration.
// Token-bundle persistence uses the OS keychain when available, falling back
// to a private file in the XDG state dir.
func newSession() (*session.Session[Account], error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" || cfg.ClientID == "" {
		return nil, fmt.Errorf("no authorization server configured; run 'passgate configure' or set PASSGATE_BASE_URL and PASSGATE_CLIENT_ID")
	}

	logger := logging.Default(cfg.LogLevel)
	return session.New[Account](session.Config{
		ClientID:       cfg.ClientID,
		ClientSecret:   cfg.ClientSecret,
		BaseURL:        cfg.BaseURL,
		UserInfoPath:   cfg.UserInfoPath,
		RevokePath:     cfg.RevokePath,
		AutoRefresh:    cfg.AutoRefresh,
		PreFetchWindow: time.Duration(cfg.PreFetchWindowSeconds) * time.Second,
		Logger:         &logger,
	})
}

// isNotLoggedIn reports whether err means there is no active session.
func isNotLoggedIn(err error) bool {
	return errors.Is(err, session.ErrNotLoggedIn)
}
