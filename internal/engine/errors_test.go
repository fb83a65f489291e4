// SPDX-License-Identifier: MIT

package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIErrorUnwrap(t *testing.T) {
	err := &APIError{Sentinel: ErrNotFound, Operation: "transcribe", Status: 404}
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrEngineError))
}

func TestAPIErrorMessageComposition(t *testing.T) {
	err := &APIError{Sentinel: ErrEngineError, Operation: "translate", Status: 500, Detail: "model overloaded"}
	msg := err.Error()
	assert.Contains(t, msg, "translate")
	assert.Contains(t, msg, "HTTP 500")
	assert.Contains(t, msg, "model overloaded")
}

func TestUserMessagePrefersServerDetail(t *testing.T) {
	withDetail := &APIError{Sentinel: ErrEngineError, Detail: "no subtitle for language"}
	assert.Equal(t, "no subtitle for language", withDetail.UserMessage("generic"))

	timeout := &APIError{Sentinel: ErrTimeout}
	assert.Equal(t, "the operation exceeded its time limit", timeout.UserMessage("generic"))

	unreachable := &APIError{Sentinel: ErrEngineUnavailable}
	assert.Equal(t, "the processing engine is unreachable", unreachable.UserMessage("generic"))

	plain := &APIError{Sentinel: ErrEngineError}
	assert.Equal(t, "generic", plain.UserMessage("generic"))
}
