// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages. This enables better error categorization, logging,
// and user experience by providing context-aware error information.
//
// The package supports wrapping underlying errors while maintaining error kind information,
// making it easier to handle different types of failures appropriately.
package errors

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// NotAuthenticated indicates an operation that requires a session was
	// called without one. Raised locally; no network request is made.
	NotAuthenticated Kind = "not_authenticated"
	// TransportError indicates a network or HTTP failure from any endpoint.
	TransportError Kind = "transport_error"
	// RefreshFailed indicates the refresh grant was rejected. This is terminal
	// for the current session; the user must sign in again.
	RefreshFailed Kind = "refresh_failed"
	// InvalidConfig indicates missing or inconsistent configuration. Raised
	// locally; no network request is made.
	InvalidConfig Kind = "invalid_config"
)

// ErrNotLoggedIn is the sentinel for operations requiring an active session.
var ErrNotLoggedIn = errors.New("not logged in")

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of err when it carries one, or "" otherwise.
func KindOf(err error) Kind {
	var e *E
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
