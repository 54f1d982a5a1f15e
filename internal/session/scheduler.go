// Copyright (c) 2025 Passgate
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	"time"
)

// scheduleRefreshLocked arms the proactive refresh timer for the given bundle.
// The delay is the remaining lifetime minus the pre-fetch window; a token
// already inside the window (or past expiry) is refreshed immediately. Any
// previously scheduled timer is cancelled first, so at most one is
// outstanding. Bundles with an unknown expiry are never proactively refreshed.
// Caller must hold s.mu.
func (s *Session[T]) scheduleRefreshLocked(b *TokenBundle) {
	s.stopTimerLocked()
	if b.ExpiresAt.IsZero() {
		return
	}

	delay := b.RemainingLifetime(time.Now()) - s.cfg.PreFetchWindow
	if delay < 0 {
		delay = 0
	}
	s.log.Debug().
		Dur("delay", delay).
		Time("expires_at", b.ExpiresAt).
		Msg("token refresh scheduled")

	s.timer = time.AfterFunc(delay, s.scheduledRefresh)
}

// stopTimerLocked cancels the outstanding refresh timer, if any.
// Caller must hold s.mu.
func (s *Session[T]) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// scheduledRefresh is the timer callback. It checks the shared in-flight
// indicator before refreshing, so a proactive refresh never races a
// 401-triggered one already underway.
func (s *Session[T]) scheduledRefresh() {
	s.mu.Lock()
	if s.bundle == nil || s.refreshing {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if err := s.RefreshToken(context.Background()); err != nil {
		s.log.Debug().Err(err).Msg("scheduled token refresh failed")
	}
}
