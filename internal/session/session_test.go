// Copyright (c) 2025 Passgate
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passgate/cli/internal/backend"
	apperrors "passgate/cli/internal/errors"
	"passgate/cli/internal/session"
	"passgate/cli/internal/store"
)

type testUser struct {
	Email string `json:"email"`
}

// fakeAPI is an in-memory backend.API recording every call.
type fakeAPI struct {
	mu            sync.Mutex
	passwordCalls int
	refreshCalls  int
	revokeCalls   int
	userCalls     int

	passwordErr error
	refreshErr  error
	revokeErr   error
	userErr     error

	accessToken string // token returned by the next grant
	expiresIn   int64

	revokedURL string
	userEmail  string

	refreshGate chan struct{} // when set, RefreshGrant blocks until closed
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{accessToken: "access-1", expiresIn: 3600, userEmail: "alice@example.com"}
}

func (f *fakeAPI) tokenResponse() *backend.TokenResponse {
	return &backend.TokenResponse{
		AccessToken:  f.accessToken,
		RefreshToken: "refresh-" + f.accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    f.expiresIn,
	}
}

func (f *fakeAPI) PasswordGrant(_ context.Context, _, _ string) (*backend.TokenResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwordCalls++
	if f.passwordErr != nil {
		return nil, f.passwordErr
	}
	return f.tokenResponse(), nil
}

func (f *fakeAPI) RefreshGrant(_ context.Context, _ string) (*backend.TokenResponse, error) {
	f.mu.Lock()
	f.refreshCalls++
	gate := f.refreshGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.tokenResponse(), nil
}

func (f *fakeAPI) Revoke(_ context.Context, revokeURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revokeCalls++
	f.revokedURL = revokeURL
	return f.revokeErr
}

func (f *fakeAPI) UserInfo(_ context.Context, _ string, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	if f.userErr != nil {
		return f.userErr
	}
	data, _ := json.Marshal(testUser{Email: f.userEmail})
	return json.Unmarshal(data, out)
}

func (f *fakeAPI) calls() (password, refresh, revoke, user int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.passwordCalls, f.refreshCalls, f.revokeCalls, f.userCalls
}

// fakeStore is an in-memory store.Store.
type fakeStore struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

func (f *fakeStore) Load() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data == nil {
		return nil, store.ErrNotFound
	}
	return f.data, nil
}

func (f *fakeStore) Save(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = append([]byte(nil), data...)
	f.saves++
	return nil
}

func (f *fakeStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = nil
	return nil
}

func (f *fakeStore) bundle(t *testing.T) *session.TokenBundle {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data == nil {
		return nil
	}
	var b session.TokenBundle
	require.NoError(t, json.Unmarshal(f.data, &b))
	return &b
}

func newTestSession(t *testing.T, api backend.API, st store.Store, mutate func(*session.Config)) *session.Session[testUser] {
	t.Helper()
	cfg := session.Config{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		BaseURL:      "https://auth.test",
		RevokePath:   "/oauth/revoke",
	}
	if mutate != nil {
		mutate(&cfg)
	}
	sess, err := session.New[testUser](cfg, session.WithAPI(api), session.WithStore(st))
	require.NoError(t, err)
	return sess
}

func TestSignIn_Success(t *testing.T) {
	api := newFakeAPI()
	st := &fakeStore{}
	sess := newTestSession(t, api, st, nil)

	before := time.Now()
	require.NoError(t, sess.SignIn(context.Background(), "alice", "hunter2"))
	after := time.Now()

	assert.True(t, sess.IsAuthenticated())

	user, err := sess.GetUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	// persisted expiry equals call-time-of-receipt plus expires_in
	stored := st.bundle(t)
	require.NotNil(t, stored)
	assert.Equal(t, "access-1", stored.AccessToken)
	assert.False(t, stored.ExpiresAt.Before(before.Add(3600*time.Second)))
	assert.False(t, stored.ExpiresAt.After(after.Add(3600*time.Second)))
}

func TestSignIn_FailureLeavesUnauthenticated(t *testing.T) {
	api := newFakeAPI()
	api.passwordErr = errors.New("invalid_grant: wrong password")
	sess := newTestSession(t, api, &fakeStore{}, nil)

	err := sess.SignIn(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.False(t, sess.IsAuthenticated())
}

func TestSignOut_Idempotent(t *testing.T) {
	api := newFakeAPI()
	st := &fakeStore{}
	sess := newTestSession(t, api, st, nil)
	require.NoError(t, sess.SignIn(context.Background(), "alice", "hunter2"))

	sess.SignOut()
	assert.False(t, sess.IsAuthenticated())
	assert.Nil(t, st.bundle(t))

	sess.SignOut()
	assert.False(t, sess.IsAuthenticated())
}

func TestRefreshToken_NotLoggedIn(t *testing.T) {
	api := newFakeAPI()
	sess := newTestSession(t, api, &fakeStore{}, nil)

	err := sess.RefreshToken(context.Background())
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)

	_, refresh, _, _ := api.calls()
	assert.Zero(t, refresh)
}

func TestRefreshToken_ReplacesBundle(t *testing.T) {
	api := newFakeAPI()
	st := &fakeStore{}
	sess := newTestSession(t, api, st, nil)
	require.NoError(t, sess.SignIn(context.Background(), "alice", "hunter2"))

	api.mu.Lock()
	api.accessToken = "access-2"
	api.mu.Unlock()

	require.NoError(t, sess.RefreshToken(context.Background()))
	assert.True(t, sess.IsAuthenticated())
	assert.Equal(t, "access-2", sess.Bundle().AccessToken)
	assert.Equal(t, "access-2", st.bundle(t).AccessToken)
}

func TestRefreshToken_FailureClearsSessionAndNotifiesOnce(t *testing.T) {
	api := newFakeAPI()
	st := &fakeStore{}
	var failures []error
	sess := newTestSession(t, api, st, func(cfg *session.Config) {
		cfg.OnRefreshFailure = func(err error) { failures = append(failures, err) }
	})
	require.NoError(t, sess.SignIn(context.Background(), "alice", "hunter2"))

	api.mu.Lock()
	api.refreshErr = errors.New("invalid_grant: refresh token revoked")
	api.mu.Unlock()

	err := sess.RefreshToken(context.Background())
	require.Error(t, err)
	assert.False(t, sess.IsAuthenticated())
	assert.Nil(t, st.bundle(t))
	assert.Len(t, failures, 1)
}

func TestRefreshToken_SingleFlight(t *testing.T) {
	api := newFakeAPI()
	sess := newTestSession(t, api, &fakeStore{}, nil)
	require.NoError(t, sess.SignIn(context.Background(), "alice", "hunter2"))

	gate := make(chan struct{})
	api.mu.Lock()
	api.refreshGate = gate
	api.mu.Unlock()

	const callers = 4
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		go func() {
			errs <- sess.RefreshToken(context.Background())
		}()
	}

	// let the callers pile up on the in-flight refresh, then release it
	time.Sleep(50 * time.Millisecond)
	close(gate)

	for i := 0; i < callers; i++ {
		assert.NoError(t, <-errs)
	}
	_, refresh, _, _ := api.calls()
	assert.Equal(t, 1, refresh, "concurrent refresh calls must coalesce onto one grant request")
}

func TestGetUser_NotLoggedIn(t *testing.T) {
	api := newFakeAPI()
	sess := newTestSession(t, api, &fakeStore{}, nil)

	_, err := sess.GetUser(context.Background())
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)

	_, _, _, user := api.calls()
	assert.Zero(t, user)
}

func TestRevoke_NotLoggedIn(t *testing.T) {
	api := newFakeAPI()
	sess := newTestSession(t, api, &fakeStore{}, nil)

	err := sess.Revoke(context.Background())
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)

	_, _, revoke, _ := api.calls()
	assert.Zero(t, revoke)
}

func TestNew_MissingClientID(t *testing.T) {
	_, err := session.New[testUser](session.Config{BaseURL: "https://auth.test"})
	require.Error(t, err)
	assert.Equal(t, apperrors.InvalidConfig, apperrors.KindOf(err))
}

func TestRevoke_NoEndpointConfigured(t *testing.T) {
	api := newFakeAPI()
	sess := newTestSession(t, api, &fakeStore{}, func(cfg *session.Config) {
		cfg.RevokePath = ""
	})
	require.NoError(t, sess.SignIn(context.Background(), "alice", "hunter2"))

	err := sess.Revoke(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.InvalidConfig, apperrors.KindOf(err))

	_, _, revoke, _ := api.calls()
	assert.Zero(t, revoke)
}

func TestRevoke_KeepsLocalState(t *testing.T) {
	api := newFakeAPI()
	st := &fakeStore{}
	sess := newTestSession(t, api, st, func(cfg *session.Config) {
		cfg.RevokeURL = func(accessToken string) string {
			return "/oauth/revoke?token=" + accessToken
		}
	})
	require.NoError(t, sess.SignIn(context.Background(), "alice", "hunter2"))

	require.NoError(t, sess.Revoke(context.Background()))

	api.mu.Lock()
	revokedURL := api.revokedURL
	api.mu.Unlock()
	assert.Equal(t, "/oauth/revoke?token=access-1", revokedURL)

	// revoke leaves the local session alone; only SignOut clears it
	assert.True(t, sess.IsAuthenticated())
	assert.NotNil(t, st.bundle(t))
}

func TestRestore_SeedsFromStore(t *testing.T) {
	api := newFakeAPI()
	st := &fakeStore{}
	data, err := json.Marshal(session.TokenBundle{
		AccessToken:  "stored-access",
		RefreshToken: "stored-refresh",
		TokenType:    "Bearer",
		ExpiresIn:    3600,
		ExpiresAt:    time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, st.Save(data))

	sess := newTestSession(t, api, st, nil)
	assert.True(t, sess.IsAuthenticated())
	assert.Equal(t, "stored-access", sess.Bundle().AccessToken)
}

func TestRestore_DiscardsExpiredBundleWithoutRefreshToken(t *testing.T) {
	api := newFakeAPI()
	st := &fakeStore{}
	data, err := json.Marshal(session.TokenBundle{
		AccessToken: "stale-access",
		TokenType:   "Bearer",
		ExpiresIn:   3600,
		ExpiresAt:   time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, st.Save(data))

	sess := newTestSession(t, api, st, nil)
	assert.False(t, sess.IsAuthenticated())
	assert.Nil(t, st.bundle(t))
}

func TestRestore_KeepsExpiredBundleWithRefreshToken(t *testing.T) {
	api := newFakeAPI()
	st := &fakeStore{}
	data, err := json.Marshal(session.TokenBundle{
		AccessToken:  "stale-access",
		RefreshToken: "still-good",
		TokenType:    "Bearer",
		ExpiresIn:    3600,
		ExpiresAt:    time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)
	require.NoError(t, st.Save(data))

	sess := newTestSession(t, api, st, nil)
	// the bundle survives so the next refresh can renew it
	assert.True(t, sess.IsAuthenticated())
}

func TestOnTokenChange_HookObservesReplacementAndClear(t *testing.T) {
	api := newFakeAPI()
	sess := newTestSession(t, api, &fakeStore{}, nil)

	var observed []string
	sess.OnTokenChange(func(b *session.TokenBundle) {
		if b == nil {
			observed = append(observed, "<cleared>")
			return
		}
		observed = append(observed, b.AccessToken)
	})

	require.NoError(t, sess.SignIn(context.Background(), "alice", "hunter2"))
	sess.SignOut()

	assert.Equal(t, []string{"access-1", "<cleared>"}, observed)
}
