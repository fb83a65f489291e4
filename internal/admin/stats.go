// SPDX-License-Identifier: MIT

package admin

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/krittawat/subflow/internal/engine"
)

// Overview combines the system totals with the activity aggregates feeding
// the charts.
type Overview struct {
	System   engine.Stats         `json:"system"`
	Activity engine.ActivityStats `json:"activity"`
}

// StatsView renders the statistics page.
type StatsView struct {
	mu       sync.Mutex
	engine   *engine.Client
	overview *Overview
}

// Refresh fetches both stat sources concurrently; either failure fails the
// whole refresh so the page never mixes fresh and stale halves.
func (v *StatsView) Refresh(ctx context.Context) (*Overview, error) {
	var ov Overview
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := v.engine.Stats(ctx)
		if err != nil {
			return err
		}
		ov.System = *stats
		return nil
	})
	g.Go(func() error {
		stats, err := v.engine.ActivityStats(ctx)
		if err != nil {
			return err
		}
		ov.Activity = *stats
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.overview = &ov
	v.mu.Unlock()
	return &ov, nil
}

// Current returns the last fetched overview, nil before the first refresh.
func (v *StatsView) Current() *Overview {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.overview
}
