// Copyright (c) 2025 Passgate
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"fmt"
	"strings"

	apperrors "passgate/cli/internal/errors"
)

// Revoke invalidates the current token server-side. No response shape is
// required; any 2xx counts as success. Local session state is not touched.
func (h *HTTP) Revoke(ctx context.Context, revokeURL string) error {
	resp, err := h.rest.R().
		SetContext(ctx).
		Post(revokeURL)
	if err != nil {
		return apperrors.Wrap(apperrors.TransportError, "revoke request", err)
	}
	if resp.IsError() {
		return apperrors.New(apperrors.TransportError,
			fmt.Sprintf("revoke request failed: %d %s", resp.StatusCode(), strings.TrimSpace(resp.String())))
	}
	return nil
}
