// SPDX-License-Identifier: MIT

package admin

import (
	"context"
	"errors"
	"sync"

	"github.com/krittawat/subflow/internal/engine"
	"github.com/krittawat/subflow/internal/session"
)

// UsersView manages accounts. The cached listing is what the table renders;
// every mutation refetches it so the table never shows stale rows.
type UsersView struct {
	mu     sync.Mutex
	engine *engine.Client
	users  []engine.UserInfo
}

// Refresh refetches the account listing.
func (v *UsersView) Refresh(ctx context.Context) ([]engine.UserInfo, error) {
	users, err := v.engine.Users(ctx)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	v.users = users
	v.mu.Unlock()
	return users, nil
}

// Current returns the last fetched listing.
func (v *UsersView) Current() []engine.UserInfo {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]engine.UserInfo(nil), v.users...)
}

// Create registers an account and refreshes the listing.
func (v *UsersView) Create(ctx context.Context, u engine.NewUser) error {
	if u.Username == "" || u.Password == "" {
		return errors.New("admin: username and password are required")
	}
	if u.Role == "" {
		u.Role = "user"
	}
	if u.Role != "user" && u.Role != session.RoleAdmin {
		return errors.New("admin: role must be user or admin")
	}
	if err := v.engine.RegisterUser(ctx, u); err != nil {
		return err
	}
	_, err := v.Refresh(ctx)
	return err
}

// Remove deletes an account and refreshes the listing.
func (v *UsersView) Remove(ctx context.Context, username string) error {
	if username == "" {
		return errors.New("admin: username is required")
	}
	if err := v.engine.DeleteUser(ctx, username); err != nil {
		return err
	}
	_, err := v.Refresh(ctx)
	return err
}
