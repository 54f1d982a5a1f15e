// Copyright (c) 2025 Passgate
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session manages an OAuth2 password-grant session: signing in,
// holding the current user and token bundle, proactively refreshing the access
// token before expiry, replaying requests that fail with 401, and signing out.
//
// A Session is an explicit object owned by the composing application; there is
// no package-level singleton. The token bundle is persisted to a durable store
// on every change and read once at construction to seed the session.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"passgate/cli/internal/backend"
	apperrors "passgate/cli/internal/errors"
	"passgate/cli/internal/store"
)

// ErrNotLoggedIn is returned by operations that require an active session.
var ErrNotLoggedIn = apperrors.ErrNotLoggedIn

// Session holds the authentication state for one authorization server.
// T is the caller-defined shape of the user-info resource.
//
// State machine: Unauthenticated -> (SignIn) -> Authenticated ->
// (refresh success) -> Authenticated / (refresh failure, SignOut) ->
// Unauthenticated. A 401 on a protected request enters a refreshing window;
// concurrent 401s during that window are queued by the transport and replayed
// when the single in-flight refresh resolves.
type Session[T any] struct {
	cfg   Config
	api   backend.API
	store store.Store
	log   zerolog.Logger

	mu          sync.Mutex
	bundle      *TokenBundle
	user        *T
	timer       *time.Timer
	hooks       []func(*TokenBundle)
	refreshing  bool
	refreshDone chan struct{}
	refreshErr  error
}

// New builds a session, seeds it from the store, and wires the HTTP transport
// so protected requests carry the bearer token and recover from 401s.
func New[T any](cfg Config, opts ...Option) (*Session[T], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	var st settings
	for _, opt := range opts {
		opt(&st)
	}

	s := &Session[T]{
		cfg:   cfg,
		api:   st.api,
		store: st.store,
		log:   logger,
	}

	if s.api == nil {
		h := backend.New(backend.Config{
			BaseURL:      cfg.BaseURL,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			ExtraParams:  cfg.ExtraParams,
			Timeout:      cfg.Timeout,
			Logger:       cfg.Logger,
		})
		h.BindSession(s)
		s.api = h
		// default token-changed hook keeps the client's bearer header in sync
		s.hooks = append(s.hooks, func(b *TokenBundle) {
			if b != nil {
				h.SetAuthToken(b.AccessToken)
			} else {
				h.SetAuthToken("")
			}
		})
	}

	if s.store == nil {
		durable, err := store.Open()
		if err != nil {
			return nil, err
		}
		s.store = durable
	}

	s.restore()
	return s, nil
}

// restore seeds the session from the persisted bundle, if any. The stored
// expiry is checked against the current clock: an expired bundle without a
// refresh token is discarded; one with a refresh token is kept so the first
// refresh can renew it.
func (s *Session[T]) restore() {
	data, err := s.store.Load()
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn().Err(err).Msg("failed to read stored token bundle")
		}
		return
	}

	var b TokenBundle
	if err := json.Unmarshal(data, &b); err != nil || b.AccessToken == "" {
		s.log.Warn().Msg("discarding malformed stored token bundle")
		if err := s.store.Clear(); err != nil {
			s.log.Warn().Err(err).Msg("failed to clear token bundle store")
		}
		return
	}

	if b.Expired(time.Now()) && b.RefreshToken == "" {
		s.log.Debug().Msg("stored token bundle expired with no refresh token")
		if err := s.store.Clear(); err != nil {
			s.log.Warn().Err(err).Msg("failed to clear token bundle store")
		}
		return
	}

	s.mu.Lock()
	s.setBundleLocked(&b, false)
	if s.cfg.AutoRefresh {
		s.scheduleRefreshLocked(&b)
	}
	s.mu.Unlock()
	s.log.Debug().Time("expires_at", b.ExpiresAt).Msg("session restored from store")
}

// SignIn exchanges the identifier/secret for a token bundle via the password
// grant. On success the bundle is stored (triggering persistence and header
// sync) and, when auto-refresh is enabled, the refresh timer is scheduled.
// On failure the session is left unauthenticated and the error propagates.
func (s *Session[T]) SignIn(ctx context.Context, identifier, secret string) error {
	resp, err := s.api.PasswordGrant(ctx, identifier, secret)
	if err != nil {
		return err
	}

	b := newBundle(resp, time.Now())
	s.mu.Lock()
	s.setBundleLocked(b, true)
	if s.cfg.AutoRefresh {
		s.scheduleRefreshLocked(b)
	}
	s.mu.Unlock()

	s.log.Debug().Time("expires_at", b.ExpiresAt).Msg("signed in")
	return nil
}

// RefreshToken exchanges the stored refresh token for a new bundle. Calls are
// single-flight: a caller arriving while a refresh is in flight waits for that
// refresh's outcome instead of issuing another request. Failure is terminal
// for the session: state is cleared, the timer cancelled, and the configured
// failure callback invoked once.
func (s *Session[T]) RefreshToken(ctx context.Context) error {
	s.mu.Lock()
	if s.bundle == nil {
		s.mu.Unlock()
		return notLoggedIn("refresh token")
	}
	if s.refreshing {
		done := s.refreshDone
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		s.mu.Lock()
		err := s.refreshErr
		s.mu.Unlock()
		return err
	}
	s.refreshing = true
	s.refreshDone = make(chan struct{})
	refreshToken := s.bundle.RefreshToken
	s.mu.Unlock()

	resp, grantErr := s.api.RefreshGrant(ctx, refreshToken)

	var failureCb func(error)
	s.mu.Lock()
	var err error
	if grantErr != nil {
		err = apperrors.Wrap(apperrors.RefreshFailed, "refresh grant rejected", grantErr)
		s.stopTimerLocked()
		s.setBundleLocked(nil, true)
		s.user = nil
		failureCb = s.cfg.OnRefreshFailure
	} else {
		b := newBundle(resp, time.Now())
		s.setBundleLocked(b, true)
		if s.cfg.AutoRefresh {
			s.scheduleRefreshLocked(b)
		}
	}
	s.refreshErr = err
	close(s.refreshDone)
	s.refreshing = false
	s.mu.Unlock()

	if err != nil {
		s.log.Debug().Err(err).Msg("token refresh failed, session cleared")
		if failureCb != nil {
			failureCb(err)
		}
	} else {
		s.log.Debug().Msg("token refreshed")
	}
	return err
}

// Revoke invalidates the token server-side using the configured revoke
// endpoint. It requires an authenticated session but intentionally does not
// clear local state; SignOut does that.
func (s *Session[T]) Revoke(ctx context.Context) error {
	s.mu.Lock()
	if s.bundle == nil {
		s.mu.Unlock()
		return notLoggedIn("revoke")
	}
	accessToken := s.bundle.AccessToken
	s.mu.Unlock()

	revokeURL := s.cfg.RevokePath
	if s.cfg.RevokeURL != nil {
		revokeURL = s.cfg.RevokeURL(accessToken)
	}
	if revokeURL == "" {
		return apperrors.New(apperrors.InvalidConfig, "no revoke endpoint configured")
	}

	return s.api.Revoke(ctx, revokeURL)
}

// SignOut clears the token bundle and user, cancels any scheduled refresh
// timer, and clears the store. It always succeeds and is idempotent; in-flight
// requests are not aborted.
func (s *Session[T]) SignOut() {
	s.mu.Lock()
	s.stopTimerLocked()
	s.setBundleLocked(nil, true)
	s.user = nil
	s.mu.Unlock()
	s.log.Debug().Msg("signed out")
}

// GetUser fetches the user-info resource, stores it as the current user, and
// returns it. Requires an authenticated session; no request is issued
// otherwise.
func (s *Session[T]) GetUser(ctx context.Context) (*T, error) {
	s.mu.Lock()
	authenticated := s.bundle != nil
	s.mu.Unlock()
	if !authenticated {
		return nil, notLoggedIn("get user")
	}

	var user T
	if err := s.api.UserInfo(ctx, s.cfg.UserInfoPath, &user); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return &user, nil
}

// IsAuthenticated reports whether a token bundle is present.
func (s *Session[T]) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bundle != nil
}

// User returns the most recently fetched user, or nil.
func (s *Session[T]) User() *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Bundle returns a copy of the current token bundle, or nil when
// unauthenticated.
func (s *Session[T]) Bundle() *TokenBundle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bundle == nil {
		return nil
	}
	copied := *s.bundle
	return &copied
}

// OnTokenChange registers a hook invoked synchronously whenever the bundle is
// replaced or cleared. Hooks must not call back into the session.
func (s *Session[T]) OnTokenChange(fn func(*TokenBundle)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// AccessToken implements backend.TokenRefresher for the reauth transport.
func (s *Session[T]) AccessToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bundle == nil {
		return "", false
	}
	return s.bundle.AccessToken, true
}

// Refresh implements backend.TokenRefresher.
func (s *Session[T]) Refresh(ctx context.Context) error {
	return s.RefreshToken(ctx)
}

// setBundleLocked replaces the bundle, persists the change when persist is
// set, and invokes the token-changed hooks. Caller must hold s.mu.
func (s *Session[T]) setBundleLocked(b *TokenBundle, persist bool) {
	s.bundle = b
	if persist {
		if b == nil {
			if err := s.store.Clear(); err != nil {
				s.log.Warn().Err(err).Msg("failed to clear token bundle store")
			}
		} else if data, err := json.Marshal(b); err == nil {
			if err := s.store.Save(data); err != nil {
				s.log.Warn().Err(err).Msg("failed to persist token bundle")
			}
		}
	}
	for _, hook := range s.hooks {
		hook(b)
	}
}

func notLoggedIn(op string) error {
	return apperrors.Wrap(apperrors.NotAuthenticated, op, apperrors.ErrNotLoggedIn)
}
