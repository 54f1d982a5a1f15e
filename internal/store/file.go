// Copyright (c) 2025 Passgate
// Licensed under the MIT License. See LICENSE file in the project root for details.

package store

import (
	"errors"
	"os"
	"path/filepath"

	"passgate/cli/internal/xdg"
)

// FileStore persists the token bundle in a private file under the XDG state
// directory. It is the fallback for platforms without a usable keychain.
type FileStore struct {
	path string
}

// OpenFile returns a file-backed store rooted in the XDG state dir.
func OpenFile() (*FileStore, error) {
	dir, err := xdg.StateDir()
	if err != nil {
		return nil, err
	}
	return &FileStore{path: filepath.Join(dir, "token_bundle.json")}, nil
}

// NewFileStore returns a store writing to the given path. Used by tests.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the stored bundle; a missing file yields ErrNotFound.
func (s *FileStore) Load() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}
	return data, nil
}

// Save writes the bundle with 0600 permissions.
func (s *FileStore) Save(data []byte) error {
	return os.WriteFile(s.path, data, 0o600)
}

// Clear removes the bundle file.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
