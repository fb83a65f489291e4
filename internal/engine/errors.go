// SPDX-License-Identifier: MIT

package engine

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrUnauthorized      = errors.New("engine: authentication rejected")
	ErrForbidden         = errors.New("engine: access forbidden")
	ErrNotFound          = errors.New("engine: resource not found")
	ErrQuotaExceeded     = errors.New("engine: quota exceeded")
	ErrTimeout           = errors.New("engine: request timed out")
	ErrEngineUnavailable = errors.New("engine: host unreachable or transport failure")
	ErrEngineError       = errors.New("engine: internal error (5xx)")
	ErrBadResponse       = errors.New("engine: invalid response format or malformed data")
)

// APIError wraps the sentinel errors with operation context. Detail carries
// the server's error payload verbatim when one was received.
type APIError struct {
	Sentinel  error
	Operation string
	Status    int
	Detail    string
	Err       error // nested lower-level error (e.g. net.Error)
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("engine: %s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Sentinel
}

// UserMessage returns the text shown to the user for this failure: the
// server's detail when present, otherwise a generic fallback per taxonomy.
func (e *APIError) UserMessage(fallback string) string {
	if e.Detail != "" {
		return e.Detail
	}
	switch {
	case errors.Is(e.Sentinel, ErrTimeout):
		return "the operation exceeded its time limit"
	case errors.Is(e.Sentinel, ErrEngineUnavailable):
		return "the processing engine is unreachable"
	}
	return fallback
}
