// Copyright (c) 2025 Passgate
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"fmt"
	"strings"

	apperrors "passgate/cli/internal/errors"
)

const (
	grantTypePassword     = "password"
	grantTypeRefreshToken = "refresh_token"
)

// PasswordGrant submits a password-grant token request with client credentials
// and the given username/password.
func (h *HTTP) PasswordGrant(ctx context.Context, username, password string) (*TokenResponse, error) {
	return h.tokenRequest(ctx, map[string]string{
		"grant_type": grantTypePassword,
		"username":   username,
		"password":   password,
	})
}

// RefreshGrant submits a refresh-grant token request using the given refresh token.
func (h *HTTP) RefreshGrant(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	return h.tokenRequest(ctx, map[string]string{
		"grant_type":    grantTypeRefreshToken,
		"refresh_token": refreshToken,
	})
}

// tokenRequest POSTs a form-encoded grant request to the token endpoint.
// Configured extra parameters are merged in; grant fields win on collision.
func (h *HTTP) tokenRequest(ctx context.Context, grant map[string]string) (*TokenResponse, error) {
	form := make(map[string]string, len(h.extraParams)+len(grant)+2)
	for k, v := range h.extraParams {
		form[k] = v
	}
	form["client_id"] = h.clientID
	form["client_secret"] = h.clientSecret
	for k, v := range grant {
		form[k] = v
	}

	var (
		token    TokenResponse
		oauthErr ErrorResponse
	)
	resp, err := h.rest.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&token).
		SetError(&oauthErr).
		Post(TokenPath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.TransportError, "token request", err)
	}
	if resp.IsError() {
		msg := fmt.Sprintf("token request failed: %d", resp.StatusCode())
		if oauthErr.Code != "" {
			msg = fmt.Sprintf("%s %s", msg, oauthErr)
		} else if body := strings.TrimSpace(resp.String()); body != "" {
			msg = fmt.Sprintf("%s %s", msg, body)
		}
		return nil, apperrors.New(apperrors.TransportError, msg)
	}
	if token.AccessToken == "" {
		return nil, apperrors.New(apperrors.TransportError, "no access_token in response")
	}

	return &token, nil
}
