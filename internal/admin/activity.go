// SPDX-License-Identifier: MIT

package admin

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/rs/zerolog"

	"github.com/krittawat/subflow/internal/engine"
	sflog "github.com/krittawat/subflow/internal/log"
)

// PageSize is the fixed activity log page length.
const PageSize = 30

const defaultUsernameDebounce = 500 * time.Millisecond

// Filters narrow the activity listing. Empty fields mean no constraint.
type Filters struct {
	ActivityType string `json:"activity_type,omitempty"`
	SessionID    string `json:"session_id,omitempty"`
	Status       string `json:"status,omitempty"`
	DateFrom     string `json:"date_from,omitempty"`
	DateTo       string `json:"date_to,omitempty"`
}

// ActivityView renders the paginated, filterable activity log. Any filter
// change snaps the view back to the first page; the username filter
// additionally debounces its refetch because it is fed by keystrokes.
type ActivityView struct {
	mu       sync.Mutex
	engine   *engine.Client
	page     int
	username string
	filters  Filters
	current  *engine.ActivityPage
	lastErr  error

	debounced func(func())
	logger    zerolog.Logger
}

func newActivityView(client *engine.Client, usernameDebounce time.Duration) *ActivityView {
	return &ActivityView{
		engine:    client,
		page:      1,
		debounced: debounce.New(usernameDebounce),
		logger:    sflog.WithComponent("admin.activity"),
	}
}

// Refresh fetches the current page under the current filters.
func (v *ActivityView) Refresh(ctx context.Context) (*engine.ActivityPage, error) {
	v.mu.Lock()
	filter := engine.ActivityFilter{
		Limit:        PageSize,
		Offset:       (v.page - 1) * PageSize,
		ActivityType: v.filters.ActivityType,
		SessionID:    v.filters.SessionID,
		Username:     v.username,
		Status:       v.filters.Status,
		DateFrom:     v.filters.DateFrom,
		DateTo:       v.filters.DateTo,
	}
	v.mu.Unlock()

	page, err := v.engine.Activities(ctx, filter)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastErr = err
	if err != nil {
		return nil, err
	}
	v.current = page
	return page, nil
}

// SetFilters replaces the structured filters, snaps to page 1 and refetches.
func (v *ActivityView) SetFilters(ctx context.Context, f Filters) (*engine.ActivityPage, error) {
	v.mu.Lock()
	v.filters = f
	v.page = 1
	v.mu.Unlock()
	return v.Refresh(ctx)
}

// SetUsername updates the username filter and snaps to page 1 immediately,
// but delays the refetch until the input has settled. Only the last value
// within the debounce window reaches the engine.
func (v *ActivityView) SetUsername(ctx context.Context, input string) {
	v.mu.Lock()
	v.username = strings.TrimSpace(input)
	v.page = 1
	v.mu.Unlock()

	v.debounced(func() {
		if _, err := v.Refresh(ctx); err != nil {
			v.logger.Warn().Err(err).
				Str("event", "admin.activity_refresh_failed").
				Msg("debounced activity refresh failed")
		}
	})
}

// SetPage moves to the given 1-based page and refetches. Out-of-range values
// clamp to the first page; clamping against the total is left to the caller,
// which knows the rendered page count.
func (v *ActivityView) SetPage(ctx context.Context, page int) (*engine.ActivityPage, error) {
	if page < 1 {
		page = 1
	}
	v.mu.Lock()
	v.page = page
	v.mu.Unlock()
	return v.Refresh(ctx)
}

// Page returns the current 1-based page.
func (v *ActivityView) Page() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page
}

// Filters returns the current structured filters and username filter.
func (v *ActivityView) Filters() (Filters, string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filters, v.username
}

// Current returns the last fetched page, nil before the first refresh.
func (v *ActivityView) Current() *engine.ActivityPage {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Err returns the error of the most recent fetch, including debounced ones.
func (v *ActivityView) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastErr
}

// TotalPages derives the page count from the last fetched total.
func (v *ActivityView) TotalPages() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current == nil || v.current.Total == 0 {
		return 1
	}
	return (v.current.Total + PageSize - 1) / PageSize
}
