// SPDX-License-Identifier: MIT

package tasks

import (
	"math/rand/v2"
	"sync"
	"time"
)

const (
	progressCeiling = 90.0
	progressStepMax = 15.0

	defaultTick       = time.Second
	defaultResetDelay = 2 * time.Second
)

// Estimator produces the cosmetic embed progress estimate: while a job runs
// it climbs on a fixed timer toward an asymptotic ceiling below 100%, snaps
// to 100 when the real result arrives, and resets to 0 shortly after. It is
// display-only and never consulted by control flow.
type Estimator[K comparable] struct {
	mu       sync.Mutex
	progress map[K]float64
	stop     map[K]chan struct{}

	tick       time.Duration
	resetDelay time.Duration
}

// NewEstimator creates an estimator with production timings.
func NewEstimator[K comparable]() *Estimator[K] {
	return newEstimator[K](defaultTick, defaultResetDelay)
}

func newEstimator[K comparable](tick, resetDelay time.Duration) *Estimator[K] {
	return &Estimator[K]{
		progress:   make(map[K]float64),
		stop:       make(map[K]chan struct{}),
		tick:       tick,
		resetDelay: resetDelay,
	}
}

// Start begins advancing key's estimate from 0. Starting an already-running
// key is a no-op.
func (e *Estimator[K]) Start(key K) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, active := e.stop[key]; active {
		return
	}
	done := make(chan struct{})
	e.stop[key] = done
	e.progress[key] = 0

	go func() {
		ticker := time.NewTicker(e.tick)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				e.mu.Lock()
				p := e.progress[key] + rand.Float64()*progressStepMax
				if p > progressCeiling {
					p = progressCeiling
				}
				e.progress[key] = p
				e.mu.Unlock()
			}
		}
	}()
}

// Finish stops key's timer. On success the estimate snaps to 100; either way
// it resets to 0 after the fixed delay.
func (e *Estimator[K]) Finish(key K, success bool) {
	e.mu.Lock()
	if done, active := e.stop[key]; active {
		close(done)
		delete(e.stop, key)
	}
	if success {
		e.progress[key] = 100
	}
	e.mu.Unlock()

	time.AfterFunc(e.resetDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		// A restarted key owns its estimate again; leave it alone.
		if _, active := e.stop[key]; !active {
			e.progress[key] = 0
		}
	})
}

// Progress returns key's current estimate in percent.
func (e *Estimator[K]) Progress(key K) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progress[key]
}

// Reset stops every timer and clears all estimates.
func (e *Estimator[K]) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for key, done := range e.stop {
		close(done)
		delete(e.stop, key)
	}
	e.progress = make(map[K]float64)
}
