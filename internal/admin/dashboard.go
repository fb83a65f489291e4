// SPDX-License-Identifier: MIT

// Package admin drives the dashboard: account management, engine sessions,
// usage statistics, the activity log and quota configuration. Each view
// fetches on first render and refreshes itself after every mutation it
// performs.
package admin

import (
	"time"

	"github.com/krittawat/subflow/internal/engine"
)

// Dashboard bundles the five admin views over one engine client.
type Dashboard struct {
	Users    *UsersView
	Sessions *SessionsView
	Stats    *StatsView
	Activity *ActivityView
	Quotas   *QuotaView
}

// Options tune dashboard behavior. Zero values take production defaults.
type Options struct {
	// UsernameDebounce delays the activity refetch while the admin is still
	// typing a username filter.
	UsernameDebounce time.Duration
}

// New creates a dashboard with production settings.
func New(client *engine.Client) *Dashboard {
	return NewWithOptions(client, Options{})
}

// NewWithOptions creates a dashboard with explicit settings, used by tests to
// shrink the debounce interval.
func NewWithOptions(client *engine.Client, opts Options) *Dashboard {
	if opts.UsernameDebounce <= 0 {
		opts.UsernameDebounce = defaultUsernameDebounce
	}
	return &Dashboard{
		Users:    &UsersView{engine: client},
		Sessions: &SessionsView{engine: client},
		Stats:    &StatsView{engine: client},
		Activity: newActivityView(client, opts.UsernameDebounce),
		Quotas:   &QuotaView{engine: client},
	}
}
