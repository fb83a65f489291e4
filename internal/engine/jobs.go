// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"net/http"
)

// Translate requests one (video, target language) translation. The call
// blocks until the engine finishes; per-language concurrency is the caller's
// concern.
func (c *Client) Translate(ctx context.Context, req TranslateRequest) (*TranslateResult, error) {
	var out TranslateResult
	if err := c.postJSON(ctx, "translate", "/api/translate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EmbedSubtitles requests one (video, language, mode) embed run. Uses the
// long embed deadline; the server-side ffmpeg job outlives an aborted wait.
func (c *Client) EmbedSubtitles(ctx context.Context, req EmbedRequest) (*EmbedResult, error) {
	var out EmbedResult
	if err := c.jsonBody(ctx, c.embedHTTP, "embed", http.MethodPost, "/api/embed-subtitles", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
