// Copyright (c) 2025 Passgate
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

// TokenResponse is the token endpoint response shape shared by the password
// and refresh grants.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// ErrorResponse is the standard OAuth2 error body returned by the token
// endpoint on failure.
type ErrorResponse struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e ErrorResponse) String() string {
	if e.Description != "" {
		return e.Code + ": " + e.Description
	}
	return e.Code
}
