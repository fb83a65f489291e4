// SPDX-License-Identifier: MIT

package session

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/krittawat/subflow/internal/engine"
	sflog "github.com/krittawat/subflow/internal/log"
)

// RoleAdmin marks accounts allowed into the admin dashboard.
const RoleAdmin = "admin"

// Manager is the authentication gate: unauthenticated or authenticated(user).
// The persisted pair is restored synchronously at construction without
// revalidation; a stale token surfaces as an auth error on the first
// authenticated request.
type Manager struct {
	mu      sync.RWMutex
	state   *State
	store   *Store
	onReset []func()
	logger  zerolog.Logger
}

// NewManager creates the gate and restores any persisted session.
func NewManager(store *Store) *Manager {
	m := &Manager{
		store:  store,
		logger: sflog.WithComponent("session"),
	}
	st, err := store.Load()
	if err != nil {
		m.logger.Warn().Err(err).Str("event", "session.restore_failed").Msg("starting unauthenticated")
		return m
	}
	if st != nil {
		m.state = st
		m.logger.Info().
			Str("event", "session.restored").
			Str("username", st.User.Username).
			Str("role", st.User.Role).
			Msg("restored persisted session")
	}
	return m
}

// OnReset registers a hook invoked on logout, e.g. the workflow reset.
func (m *Manager) OnReset(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReset = append(m.onReset, fn)
}

// Token returns the current bearer token, "" when unauthenticated. Shaped to
// plug into engine.TokenFunc.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == nil {
		return ""
	}
	return m.state.AccessToken
}

// Current returns the authenticated user.
func (m *Manager) Current() (engine.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == nil {
		return engine.User{}, false
	}
	return m.state.User, true
}

// IsAdmin reports whether the authenticated user holds the admin role.
func (m *Manager) IsAdmin() bool {
	u, ok := m.Current()
	return ok && u.Role == RoleAdmin
}

// Establish records a successful login and persists the pair.
func (m *Manager) Establish(res engine.LoginResult) error {
	st := State{AccessToken: res.AccessToken, User: res.User}

	m.mu.Lock()
	m.state = &st
	m.mu.Unlock()

	if err := m.store.Save(st); err != nil {
		// The in-memory session stays valid; only the restore-on-restart
		// convenience is lost.
		m.logger.Warn().Err(err).Str("event", "session.persist_failed").Msg("session will not survive restart")
		return err
	}
	m.logger.Info().
		Str("event", "session.established").
		Str("username", res.User.Username).
		Str("role", res.User.Role).
		Msg("user logged in")
	return nil
}

// Logout clears the session, the persisted pair, and fires the reset hooks.
func (m *Manager) Logout() error {
	m.mu.Lock()
	st := m.state
	m.state = nil
	hooks := append([]func(){}, m.onReset...)
	m.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	err := m.store.Clear()
	if st != nil {
		m.logger.Info().
			Str("event", "session.closed").
			Str("username", st.User.Username).
			Msg("user logged out")
	}
	return err
}
