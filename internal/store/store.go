// Copyright (c) 2025 Passgate
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package store implements durable persistence for the serialized token bundle.
// A single fixed key holds the bundle; it is overwritten on every change and
// read once at process start to seed the session.
//
// The primary backend is the OS keychain/credential store via 99designs/keyring.
// Where no native keychain is available, a private file under the XDG state
// directory is used instead.
package store

import (
	"errors"
)

// ErrNotFound is returned by Load when no bundle has been persisted.
var ErrNotFound = errors.New("no stored token bundle")

// Store persists the serialized token bundle under a single fixed key.
type Store interface {
	// Load returns the stored bundle bytes, or ErrNotFound when absent.
	Load() ([]byte, error)
	// Save overwrites the stored bundle.
	Save(data []byte) error
	// Clear removes the stored bundle. Clearing an empty store is not an error.
	Clear() error
}

// Open returns the best available store for this platform: the OS keychain
// when one can be opened, otherwise a private file in the XDG state dir.
func Open() (Store, error) {
	if s, err := OpenKeyring(); err == nil {
		return s, nil
	}
	return OpenFile()
}
