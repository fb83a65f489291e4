// SPDX-License-Identifier: MIT

// Package tasks tracks independent, user-triggered asynchronous operations
// keyed by a composite identifier. Every triggered key fires immediately on
// its own goroutine; there is no queueing, no concurrency cap, no ordering
// between keys and no cancellation once in flight.
package tasks

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrAlreadyRunning rejects a trigger while the key's operation is in
	// flight.
	ErrAlreadyRunning = errors.New("tasks: operation already running for key")
	// ErrAlreadyDone rejects a trigger for a key that completed; a completed
	// job is terminal unless explicitly cleared via Redo.
	ErrAlreadyDone = errors.New("tasks: operation already completed for key")
)

// Tracker maps a composite key to one independent asynchronous operation.
// The error slot is shared across keys, last-write-wins, matching the single
// inline error panel it feeds.
type Tracker[K comparable, R any] struct {
	mu      sync.Mutex
	running map[K]bool
	results map[K]R
	errMsg  string

	messageFn func(error) string
	wg        sync.WaitGroup
}

// NewTracker creates an empty tracker. messageFn converts an operation's
// error into the user-facing message; nil uses err.Error().
func NewTracker[K comparable, R any](messageFn func(error) string) *Tracker[K, R] {
	if messageFn == nil {
		messageFn = func(err error) string { return err.Error() }
	}
	return &Tracker[K, R]{
		running:   make(map[K]bool),
		results:   make(map[K]R),
		messageFn: messageFn,
	}
}

// Trigger starts fn for key on its own goroutine. It returns immediately;
// completion is observable through Running/Result. A key that is running or
// already has a result is rejected without side effects.
func (t *Tracker[K, R]) Trigger(ctx context.Context, key K, fn func(context.Context) (R, error)) error {
	t.mu.Lock()
	if t.running[key] {
		t.mu.Unlock()
		return ErrAlreadyRunning
	}
	if _, done := t.results[key]; done {
		t.mu.Unlock()
		return ErrAlreadyDone
	}
	t.running[key] = true
	t.errMsg = ""
	t.mu.Unlock()

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		res, err := fn(ctx)

		t.mu.Lock()
		defer t.mu.Unlock()
		if err != nil {
			t.errMsg = t.messageFn(err)
		} else {
			t.results[key] = res
		}
		t.running[key] = false
	}()
	return nil
}

// Running reports whether key's operation is in flight.
func (t *Tracker[K, R]) Running(key K) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running[key]
}

// Result returns key's result when the operation completed successfully.
func (t *Tracker[K, R]) Result(key K) (R, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	res, ok := t.results[key]
	return res, ok
}

// Results returns a copy of all completed results.
func (t *Tracker[K, R]) Results() map[K]R {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[K]R, len(t.results))
	for k, v := range t.results {
		out[k] = v
	}
	return out
}

// ErrorMessage returns the shared error slot, "" when the last trigger
// completed cleanly.
func (t *Tracker[K, R]) ErrorMessage() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errMsg
}

// Redo clears key's result so the trigger control becomes available again.
// It refuses while the key is in flight.
func (t *Tracker[K, R]) Redo(key K) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running[key] {
		return ErrAlreadyRunning
	}
	delete(t.results, key)
	return nil
}

// Reset drops all state. Used when the wizard restarts.
func (t *Tracker[K, R]) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = make(map[K]bool)
	t.results = make(map[K]R)
	t.errMsg = ""
}

// Wait blocks until every triggered operation has finished. Test helper.
func (t *Tracker[K, R]) Wait() {
	t.wg.Wait()
}
