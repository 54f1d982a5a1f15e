// Copyright (c) 2025 Passgate
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"time"

	"github.com/rs/zerolog"

	"passgate/cli/internal/backend"
	apperrors "passgate/cli/internal/errors"
	"passgate/cli/internal/store"
)

// DefaultPreFetchWindow is how long before expiry a proactive refresh fires
// when no override is configured.
const DefaultPreFetchWindow = 60 * time.Second

// DefaultUserInfoPath is the user-info resource path when none is configured.
const DefaultUserInfoPath = "/oauth/userinfo"

// Config is the construction surface of a Session. ClientID and BaseURL are
// required; everything else has a usable default.
type Config struct {
	ClientID     string
	ClientSecret string

	// BaseURL of the authorization server; the token endpoint lives at
	// backend.TokenPath relative to it.
	BaseURL string

	// UserInfoPath is the GET endpoint whose body becomes the current user.
	UserInfoPath string

	// RevokePath is the endpoint called by Revoke. RevokeURL, when set, takes
	// precedence and receives the current access token.
	RevokePath string
	RevokeURL  func(accessToken string) string

	// ExtraParams are merged into every token request.
	ExtraParams map[string]string

	// AutoRefresh enables the proactive refresh timer.
	AutoRefresh bool
	// PreFetchWindow overrides DefaultPreFetchWindow when positive.
	PreFetchWindow time.Duration

	// OnRefreshFailure is invoked once per terminal refresh failure, after the
	// session has been cleared.
	OnRefreshFailure func(error)

	// Timeout bounds every HTTP request.
	Timeout time.Duration

	// Logger receives session and transport debug logs.
	Logger *zerolog.Logger
}

func (c *Config) validate() error {
	if c.ClientID == "" {
		return apperrors.New(apperrors.InvalidConfig, "client id is required")
	}
	if c.BaseURL == "" {
		return apperrors.New(apperrors.InvalidConfig, "base url is required")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.PreFetchWindow <= 0 {
		c.PreFetchWindow = DefaultPreFetchWindow
	}
	if c.UserInfoPath == "" {
		c.UserInfoPath = DefaultUserInfoPath
	}
}

// settings collects optional construction overrides, kept separate from Config
// so tests can inject fakes without touching the public surface.
type settings struct {
	api   backend.API
	store store.Store
}

// Option customizes Session construction.
type Option func(*settings)

// WithAPI replaces the backend client. Header sync is the caller's concern in
// this mode; the default bearer-header hook is only installed for the built-in
// client.
func WithAPI(api backend.API) Option {
	return func(s *settings) { s.api = api }
}

// WithStore replaces the token-bundle store.
func WithStore(st store.Store) Option {
	return func(s *settings) { s.store = st }
}
