// Copyright (c) 2025 Passgate
// Licensed under the MIT License. See LICENSE file in the project root for details.

package store

import (
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "passgate"

// KeyTokenBundle is the single key under which the serialized bundle lives.
const KeyTokenBundle = "oauth_token_bundle"

// KeyringStore persists the token bundle in the OS keychain.
// Operations are thread-safe.
type KeyringStore struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// OpenKeyring opens the OS keyring using native platform backends.
// macOS Keychain, Windows Credential Manager, the freedesktop Secret Service
// and pass are allowed; the plain-file keyring backend is not, since it would
// prompt for an extra password on every run.
func OpenKeyring() (*KeyringStore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: ServiceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.WinCredBackend,
			keyring.SecretServiceBackend,
			keyring.PassBackend,
		},
		PassPrefix:    ServiceName,
		WinCredPrefix: ServiceName,
	})
	if err != nil {
		return nil, err
	}
	return &KeyringStore{ring: ring}, nil
}

// Load retrieves the serialized token bundle from the keychain.
func (s *KeyringStore) Load() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, err := s.ring.Get(KeyTokenBundle)
	if err != nil {
		if err == keyring.ErrKeyNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(it.Data) == 0 {
		return nil, ErrNotFound
	}
	return it.Data, nil
}

// Save stores the serialized token bundle in the keychain.
func (s *KeyringStore) Save(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ring.Set(keyring.Item{Key: KeyTokenBundle, Data: data})
}

// Clear removes the stored bundle from the keychain.
func (s *KeyringStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ring.Remove(KeyTokenBundle); err != nil && err != keyring.ErrKeyNotFound {
		return err
	}
	return nil
}
