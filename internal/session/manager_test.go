// SPDX-License-Identifier: MIT

package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krittawat/subflow/internal/engine"
)

func loginResult(username, role string) engine.LoginResult {
	return engine.LoginResult{
		AccessToken: "tok-" + username,
		User:        engine.User{Username: username, Role: role},
	}
}

func TestEstablishPersistsAndRestores(t *testing.T) {
	dir := t.TempDir()

	m := NewManager(NewStore(dir))
	_, ok := m.Current()
	assert.False(t, ok)
	assert.Empty(t, m.Token())

	require.NoError(t, m.Establish(loginResult("alice", "user")))
	assert.Equal(t, "tok-alice", m.Token())

	// A fresh manager over the same store restores the pair synchronously,
	// without talking to the engine.
	restored := NewManager(NewStore(dir))
	u, ok := restored.Current()
	require.True(t, ok)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "tok-alice", restored.Token())
	assert.False(t, restored.IsAdmin())
}

func TestLogoutClearsStateAndFiresResetHooks(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(NewStore(dir))

	resets := 0
	m.OnReset(func() { resets++ })

	require.NoError(t, m.Establish(loginResult("admin", "admin")))
	assert.True(t, m.IsAdmin())

	require.NoError(t, m.Logout())
	assert.Equal(t, 1, resets)
	_, ok := m.Current()
	assert.False(t, ok)
	assert.Empty(t, m.Token())

	// The persisted pair is gone too.
	restored := NewManager(NewStore(dir))
	_, ok = restored.Current()
	assert.False(t, ok)
}

func TestCorruptStateFileStartsUnauthenticated(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"), []byte("{not json"), 0o600))

	m := NewManager(NewStore(dir))
	_, ok := m.Current()
	assert.False(t, ok)
}

func TestStoreLoadAbsent(t *testing.T) {
	st, err := NewStore(t.TempDir()).Load()
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestStoreIgnoresIncompletePair(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"), []byte(`{"access_token":"","user":{"username":"x"}}`), 0o600))

	st, err := NewStore(dir).Load()
	require.NoError(t, err)
	assert.Nil(t, st)
}
