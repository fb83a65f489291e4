// SPDX-License-Identifier: MIT

package admin

import (
	"context"
	"errors"
	"sync"

	"github.com/krittawat/subflow/internal/engine"
)

// SessionsView manages engine-side sessions and their quota usage.
type SessionsView struct {
	mu       sync.Mutex
	engine   *engine.Client
	sessions []engine.SessionInfo
}

// Refresh refetches the session listing.
func (v *SessionsView) Refresh(ctx context.Context) ([]engine.SessionInfo, error) {
	sessions, err := v.engine.Sessions(ctx)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	v.sessions = sessions
	v.mu.Unlock()
	return sessions, nil
}

// Current returns the last fetched listing.
func (v *SessionsView) Current() []engine.SessionInfo {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]engine.SessionInfo(nil), v.sessions...)
}

// Delete removes one session, freeing its quota, and refreshes the listing.
func (v *SessionsView) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return errors.New("admin: session id is required")
	}
	if err := v.engine.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	_, err := v.Refresh(ctx)
	return err
}

// ResetAll removes every session and refreshes the listing.
func (v *SessionsView) ResetAll(ctx context.Context) error {
	if err := v.engine.ResetSessions(ctx); err != nil {
		return err
	}
	_, err := v.Refresh(ctx)
	return err
}
