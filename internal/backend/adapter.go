// Copyright (c) 2025 Passgate
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides the OAuth2 endpoint client the session manager
// depends on. It implements the password and refresh token grants against a
// configurable authorization server, server-side token revocation, and the
// user-info resource, all over a shared resty client whose transport replays
// unauthorized requests after a token refresh.
package backend

import "context"

// API defines the authorization-server operations the session depends on.
// Implementations may call real HTTP endpoints or provide fakes for tests.
type API interface {
	// PasswordGrant exchanges user credentials for a token bundle.
	PasswordGrant(ctx context.Context, username, password string) (*TokenResponse, error)
	// RefreshGrant exchanges a refresh token for a new token bundle.
	RefreshGrant(ctx context.Context, refreshToken string) (*TokenResponse, error)
	// Revoke invalidates the current token server-side. The URL may be a path
	// relative to the base URL or an absolute URL.
	Revoke(ctx context.Context, revokeURL string) error
	// UserInfo fetches the user-info resource at path and decodes the JSON
	// response body into out.
	UserInfo(ctx context.Context, path string, out any) error
}
