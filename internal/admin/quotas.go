// SPDX-License-Identifier: MIT

package admin

import (
	"context"
	"errors"

	"github.com/krittawat/subflow/internal/engine"
)

// QuotaView manages the default quotas, per-user overrides and the engine's
// quota configuration reload.
type QuotaView struct {
	engine *engine.Client
}

func validLimits(l engine.Limits) error {
	if l.MaxVideos <= 0 || l.MaxFileSizeMB <= 0 || l.MaxDurationMinutes <= 0 {
		return errors.New("admin: all limit fields must be positive")
	}
	return nil
}

// Defaults fetches the configured default quotas.
func (v *QuotaView) Defaults(ctx context.Context) (*engine.Limits, error) {
	return v.engine.DefaultLimits(ctx)
}

// SetDefaults replaces the default quotas.
func (v *QuotaView) SetDefaults(ctx context.Context, l engine.Limits) error {
	if err := validLimits(l); err != nil {
		return err
	}
	return v.engine.SetDefaultLimits(ctx, l)
}

// ForUser fetches one user's custom quotas, nil when inheriting the defaults.
func (v *QuotaView) ForUser(ctx context.Context, username string) (*engine.Limits, error) {
	if username == "" {
		return nil, errors.New("admin: username is required")
	}
	return v.engine.UserLimits(ctx, username)
}

// SetForUser assigns custom quotas to one user.
func (v *QuotaView) SetForUser(ctx context.Context, username string, l engine.Limits) error {
	if username == "" {
		return errors.New("admin: username is required")
	}
	if err := validLimits(l); err != nil {
		return err
	}
	return v.engine.SetUserLimits(ctx, username, l)
}

// ClearForUser reverts one user to the default quotas.
func (v *QuotaView) ClearForUser(ctx context.Context, username string) error {
	if username == "" {
		return errors.New("admin: username is required")
	}
	return v.engine.DeleteUserLimits(ctx, username)
}

// Reload asks the engine to re-read its quota configuration from disk.
func (v *QuotaView) Reload(ctx context.Context) error {
	return v.engine.ReloadLimits(ctx)
}
