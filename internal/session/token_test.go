// Copyright (c) 2025 Passgate
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"passgate/cli/internal/backend"
)

func TestNewBundle_ExpiryFromExpiresIn(t *testing.T) {
	now := time.Now()
	b := newBundle(&backend.TokenResponse{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		ExpiresIn:    3600,
	}, now)

	want := now.Add(3600 * time.Second)
	if !b.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", b.ExpiresAt, want)
	}
	if b.Expired(now) {
		t.Error("fresh bundle reported expired")
	}
	if !b.Expired(want.Add(time.Second)) {
		t.Error("bundle not expired past ExpiresAt")
	}
}

func TestNewBundle_DefaultTokenType(t *testing.T) {
	b := newBundle(&backend.TokenResponse{AccessToken: "access", ExpiresIn: 60}, time.Now())
	if b.TokenType != "Bearer" {
		t.Errorf("TokenType = %q, want Bearer", b.TokenType)
	}
}

func TestNewBundle_ExpiryFromJWTClaim(t *testing.T) {
	now := time.Now()
	exp := now.Add(30 * time.Minute).Unix()
	b := newBundle(&backend.TokenResponse{
		AccessToken: unsignedJWT(t, exp),
		TokenType:   "Bearer",
	}, now)

	if b.ExpiresAt.Unix() != exp {
		t.Errorf("ExpiresAt = %v, want unix %d", b.ExpiresAt, exp)
	}
	if b.ExpiresIn <= 0 {
		t.Errorf("ExpiresIn = %d, want positive", b.ExpiresIn)
	}
}

func TestNewBundle_OpaqueTokenWithoutExpiresIn(t *testing.T) {
	b := newBundle(&backend.TokenResponse{AccessToken: "opaque"}, time.Now())
	if !b.ExpiresAt.IsZero() {
		t.Errorf("ExpiresAt = %v, want zero", b.ExpiresAt)
	}
	if b.Expired(time.Now().Add(24 * time.Hour)) {
		t.Error("bundle with unknown expiry must never expire locally")
	}
}

func TestRemainingLifetime(t *testing.T) {
	now := time.Now()
	b := newBundle(&backend.TokenResponse{AccessToken: "access", ExpiresIn: 120}, now)

	if got := b.RemainingLifetime(now); got != 120*time.Second {
		t.Errorf("RemainingLifetime = %v, want 2m", got)
	}
	if got := b.RemainingLifetime(now.Add(3 * time.Minute)); got >= 0 {
		t.Errorf("RemainingLifetime past expiry = %v, want negative", got)
	}
}

// unsignedJWT builds a JWT with alg none and the given exp claim.
func unsignedJWT(t *testing.T, exp int64) string {
	t.Helper()
	enc := func(v map[string]any) string {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatal(err)
		}
		return base64.RawURLEncoding.EncodeToString(data)
	}
	header := enc(map[string]any{"alg": "none", "typ": "JWT"})
	claims := enc(map[string]any{"exp": exp, "sub": "user-1"})
	return fmt.Sprintf("%s.%s.", header, claims)
}
