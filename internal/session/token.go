// Copyright (c) 2025 Passgate
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"passgate/cli/internal/backend"
)

// TokenBundle is the access/refresh token pair plus metadata issued by the
// authorization server. ExpiresAt is always computed at the moment the bundle
// is received; a persisted ExpiresAt is validated against the current clock on
// load, never trusted blindly.
type TokenBundle struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// newBundle builds a bundle from a token response, deriving ExpiresAt from the
// receipt time. When the server omits expires_in and the access token is a
// JWT, the unverified exp claim fills in.
func newBundle(resp *backend.TokenResponse, now time.Time) *TokenBundle {
	b := &TokenBundle{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		ExpiresIn:    resp.ExpiresIn,
	}
	if b.TokenType == "" {
		b.TokenType = "Bearer"
	}

	if resp.ExpiresIn > 0 {
		b.ExpiresAt = now.Add(time.Duration(resp.ExpiresIn) * time.Second)
	} else if exp, ok := jwtExpiry(resp.AccessToken); ok {
		b.ExpiresAt = exp
		b.ExpiresIn = int64(exp.Sub(now) / time.Second)
	}

	return b
}

// jwtExpiry extracts the exp claim without verifying the signature. The token
// is only inspected for scheduling, never trusted for authorization.
func jwtExpiry(raw string) (time.Time, bool) {
	token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the bundle's lifetime has passed. Bundles without a
// known expiry never expire locally.
func (b *TokenBundle) Expired(now time.Time) bool {
	return !b.ExpiresAt.IsZero() && !now.Before(b.ExpiresAt)
}

// RemainingLifetime returns the time left until expiry, negative when already
// expired and zero when the expiry is unknown.
func (b *TokenBundle) RemainingLifetime(now time.Time) time.Duration {
	if b.ExpiresAt.IsZero() {
		return 0
	}
	return b.ExpiresAt.Sub(now)
}
