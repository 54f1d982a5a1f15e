// Copyright (c) 2025 Passgate
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	apperrors "passgate/cli/internal/errors"
)

// UserInfo fetches the user-info resource and decodes the JSON body into out.
// The request carries the bearer token and goes through the reauth transport,
// so an expired access token is renewed transparently.
func (h *HTTP) UserInfo(ctx context.Context, path string, out any) error {
	resp, err := h.rest.R().
		SetContext(ctx).
		SetResult(out).
		Get(path)
	if err != nil {
		return apperrors.Wrap(apperrors.TransportError, "user-info request", err)
	}
	if resp.IsError() {
		if resp.StatusCode() == http.StatusUnauthorized {
			return apperrors.New(apperrors.TransportError, "user-info request unauthorized")
		}
		return apperrors.New(apperrors.TransportError,
			fmt.Sprintf("user-info request failed: %d %s", resp.StatusCode(), strings.TrimSpace(resp.String())))
	}
	return nil
}
