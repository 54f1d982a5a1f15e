// Copyright (c) 2025 Passgate
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// TokenPath is the fixed token endpoint path relative to the base URL.
const TokenPath = "/oauth/token"

const defaultTimeout = 10 * time.Second

// Config holds the construction parameters for the HTTP backend client.
type Config struct {
	// BaseURL is the authorization server base URL (e.g. "https://auth.example.com").
	BaseURL string
	// ClientID and ClientSecret are sent with every token request.
	ClientID     string
	ClientSecret string
	// ExtraParams are merged into every token request. Grant-specific fields
	// take precedence on key collision.
	ExtraParams map[string]string
	// Timeout bounds every request; defaults to 10s when zero.
	Timeout time.Duration
	// Logger receives per-request debug logs. Defaults to a no-op logger.
	Logger *zerolog.Logger
}

// HTTP implements API over REST endpoints using a shared resty client.
// The client's transport replays requests that fail with 401 after a
// single-flight token refresh; see ReauthTransport.
type HTTP struct {
	rest         *resty.Client
	reauth       *ReauthTransport
	clientID     string
	clientSecret string
	extraParams  map[string]string
	logger       zerolog.Logger
}

// New creates the backend client. Call BindSession before issuing protected
// requests so the transport can coordinate refreshes with the session.
func New(cfg Config) *HTTP {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	reauth := NewReauthTransport(http.DefaultTransport, resolveTokenPath(baseURL))
	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetTransport(reauth)

	h := &HTTP{
		rest:         rest,
		reauth:       reauth,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		extraParams:  cfg.ExtraParams,
		logger:       logger,
	}

	rest.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		h.logger.Debug().
			Str("method", resp.Request.Method).
			Str("url", resp.Request.URL).
			Int("status", resp.StatusCode()).
			Dur("duration", resp.Time()).
			Msg("http call completed")
		return nil
	})

	return h
}

// resolveTokenPath returns the full URL path of the token endpoint. Base URLs
// may carry a path prefix ("https://host/auth"), in which case the transport
// must exclude "/auth/oauth/token", not the bare TokenPath.
func resolveTokenPath(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Path == "" {
		return TokenPath
	}
	return strings.TrimRight(u.Path, "/") + TokenPath
}

// BindSession wires the token source the transport uses to detect an active
// session and to trigger refreshes.
func (h *HTTP) BindSession(source TokenRefresher) {
	h.reauth.Bind(source)
}

// SetAuthToken updates the bearer token attached to every outgoing request.
// An empty token removes the header.
func (h *HTTP) SetAuthToken(token string) {
	h.rest.SetAuthToken(token)
}
