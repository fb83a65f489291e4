// SPDX-License-Identifier: MIT

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureAttachesServiceFields(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "subflow-test", Version: "v1.2.3"})

	logger := WithComponent("wizard")
	logger.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "subflow-test", entry["service"])
	assert.Equal(t, "v1.2.3", entry["version"])
	assert.Equal(t, "wizard", entry["component"])
	assert.Equal(t, "hello", entry["message"])
}

func TestFromContextCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "subflow-test"})

	ctx := ContextWithRequestID(context.Background(), "req-42")
	logger := FromContext(ctx)
	logger.Info().Msg("tracked")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-42", entry["request_id"])
}

func TestRequestIDFromContextMissing(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))
	assert.Empty(t, RequestIDFromContext(nil)) //nolint:staticcheck
}
