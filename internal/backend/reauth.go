// Copyright (c) 2025 Passgate
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// TokenRefresher is the session-side contract the transport needs to recover
// from an expired access token.
type TokenRefresher interface {
	// AccessToken returns the current bearer token. ok is false when no
	// session is active.
	AccessToken() (token string, ok bool)
	// Refresh renews the token bundle. Concurrent calls must coalesce onto a
	// single refresh request.
	Refresh(ctx context.Context) error
}

// ReauthTransport makes access-token expiry transparent to callers issuing
// protected requests. Any response with status 401 (except on the token
// endpoint itself, or when no session is active) parks the request on a
// pending queue; the first arrival triggers the session's refresh, and once it
// resolves the queued requests are replayed in arrival order with the new
// bearer token. Each caller receives its own replay's outcome. At most one
// refresh is in flight at a time; 401s arriving during that window are queued,
// never independently retried.
type ReauthTransport struct {
	base      http.RoundTripper
	tokenPath string

	mu         sync.Mutex
	source     TokenRefresher
	refreshing bool
	pending    []*replayCall
}

type replayCall struct {
	req  *http.Request
	done chan replayResult
}

type replayResult struct {
	resp *http.Response
	err  error
}

// NewReauthTransport wraps base. Requests whose URL path equals tokenPath are
// never intercepted, which keeps a rejected refresh from looping on itself.
func NewReauthTransport(base http.RoundTripper, tokenPath string) *ReauthTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &ReauthTransport{base: base, tokenPath: tokenPath}
}

// Bind sets the token source. Until bound, all responses pass through unchanged.
func (t *ReauthTransport) Bind(source TokenRefresher) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.source = source
}

func (t *ReauthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	t.mu.Lock()
	source := t.source
	t.mu.Unlock()
	if source == nil {
		return resp, nil
	}
	if _, ok := source.AccessToken(); !ok {
		return resp, nil
	}
	if req.URL.Path == t.tokenPath {
		return resp, nil
	}

	replay, rerr := cloneForReplay(req)
	if rerr != nil {
		// body cannot be replayed, surface the original 401
		return resp, nil
	}
	discardBody(resp)

	call := &replayCall{req: replay, done: make(chan replayResult, 1)}
	t.mu.Lock()
	t.pending = append(t.pending, call)
	first := !t.refreshing
	if first {
		t.refreshing = true
	}
	t.mu.Unlock()

	if first {
		go t.refreshAndReplay(source)
	}

	select {
	case result := <-call.done:
		return result.resp, result.err
	case <-req.Context().Done():
		go func() {
			if result := <-call.done; result.resp != nil {
				discardBody(result.resp)
			}
		}()
		return nil, req.Context().Err()
	}
}

// refreshAndReplay performs the single refresh for the current window, then
// replays every queued request sequentially in arrival order. The queue and
// the in-flight flag are cleared regardless of outcome.
func (t *ReauthTransport) refreshAndReplay(source TokenRefresher) {
	refreshErr := source.Refresh(context.Background())

	t.mu.Lock()
	queue := t.pending
	t.pending = nil
	t.refreshing = false
	t.mu.Unlock()

	if refreshErr != nil {
		for _, call := range queue {
			call.done <- replayResult{err: fmt.Errorf("retry after token refresh: %w", refreshErr)}
		}
		return
	}

	token, ok := source.AccessToken()
	if !ok {
		for _, call := range queue {
			call.done <- replayResult{err: errors.New("retry after token refresh: session gone")}
		}
		return
	}

	for _, call := range queue {
		call.req.Header.Set("Authorization", "Bearer "+token)
		resp, err := t.base.RoundTrip(call.req)
		call.done <- replayResult{resp: resp, err: err}
	}
}

// cloneForReplay copies req so it can be resent after the refresh. Requests
// with a consumed body need GetBody to rewind.
func cloneForReplay(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		clone.Body = nil
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("request body cannot be replayed")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	clone.Body = body
	return clone, nil
}

func discardBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
