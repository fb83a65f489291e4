// SPDX-License-Identifier: MIT

// Package session holds the authenticated identity and its persisted
// token+identity pair, the gateway's analogue of browser local storage.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/krittawat/subflow/internal/engine"
)

// State is the persisted token+identity pair.
type State struct {
	AccessToken string      `json:"access_token"`
	User        engine.User `json:"user"`
}

// Store persists the session state file with atomic durable writes.
type Store struct {
	path string
}

// NewStore creates a store under dataDir.
func NewStore(dataDir string) *Store {
	return &Store{path: filepath.Join(dataDir, "session.json")}
}

// Load reads the persisted state; (nil, nil) when none exists.
func (s *Store) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session state: %w", err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse session state: %w", err)
	}
	if st.AccessToken == "" || st.User.Username == "" {
		return nil, nil
	}
	return &st, nil
}

// Save writes the state atomically. renameio handles temp file creation,
// fsync and atomic rename.
func (s *Store) Save(st State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}

	pending, err := renameio.NewPendingFile(s.path, renameio.WithPermissions(0o600))
	if err != nil {
		return fmt.Errorf("create pending session file: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write session state: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace session file: %w", err)
	}
	return nil
}

// Clear removes the persisted state.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session state: %w", err)
	}
	return nil
}
