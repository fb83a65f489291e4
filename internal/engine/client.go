// SPDX-License-Identifier: MIT

// Package engine is the typed client for the remote subtitle processing
// engine. The engine performs all transcoding, transcription, translation and
// muxing; this package only speaks its REST contract.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/krittawat/subflow/internal/metrics"
)

// TokenFunc supplies the current bearer token, or "" before login. The token
// lives with the session manager; the client never stores it.
type TokenFunc func() string

// Client issues authenticated requests against the engine API.
type Client struct {
	base      string
	http      *http.Client
	embedHTTP *http.Client
	token     TokenFunc
}

// Options configure a Client. BaseURL is required; zero timeouts fall back to
// the defaults below.
type Options struct {
	BaseURL        string
	Token          TokenFunc
	RequestTimeout time.Duration
	EmbedTimeout   time.Duration
}

const (
	defaultRequestTimeout = 5 * time.Minute
	// Embedding runs ffmpeg server-side for minutes; the wait gets its own
	// generous bound. Hitting it aborts the wait, not the server-side job.
	defaultEmbedTimeout = 10 * time.Minute
)

// New creates a client for the engine at opts.BaseURL.
func New(opts Options) *Client {
	reqTimeout := opts.RequestTimeout
	if reqTimeout <= 0 {
		reqTimeout = defaultRequestTimeout
	}
	embedTimeout := opts.EmbedTimeout
	if embedTimeout <= 0 {
		embedTimeout = defaultEmbedTimeout
	}
	token := opts.Token
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		base:      strings.TrimRight(opts.BaseURL, "/"),
		http:      &http.Client{Timeout: reqTimeout},
		embedHTTP: &http.Client{Timeout: embedTimeout},
		token:     token,
	}
}

// BaseURL returns the engine base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.base
}

// do runs one request and decodes the JSON response into out (when non-nil).
// HTTP and transport failures come back as *APIError wrapping a sentinel.
func (c *Client) do(ctx context.Context, hc *http.Client, op, method, path string, body io.Reader, contentType string, out any) error {
	start := time.Now()
	err := c.doOnce(ctx, hc, op, method, path, body, contentType, out)
	metrics.ObserveEngineRequest(op, err, time.Since(start))
	return err
}

func (c *Client) doOnce(ctx context.Context, hc *http.Client, op, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return &APIError{Sentinel: ErrBadResponse, Operation: op, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if t := c.token(); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}

	res, err := hc.Do(req)
	if err != nil {
		return &APIError{Sentinel: classifyTransport(ctx, err), Operation: op, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return &APIError{
			Sentinel:  classifyStatus(res.StatusCode),
			Operation: op,
			Status:    res.StatusCode,
			Detail:    readDetail(res.Body),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return &APIError{Sentinel: ErrBadResponse, Operation: op, Status: res.StatusCode, Err: err}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	return c.do(ctx, c.http, op, http.MethodGet, path, nil, "", out)
}

func (c *Client) postJSON(ctx context.Context, op, path string, in, out any) error {
	return c.jsonBody(ctx, c.http, op, http.MethodPost, path, in, out)
}

func (c *Client) putJSON(ctx context.Context, op, path string, in, out any) error {
	return c.jsonBody(ctx, c.http, op, http.MethodPut, path, in, out)
}

func (c *Client) jsonBody(ctx context.Context, hc *http.Client, op, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return &APIError{Sentinel: ErrBadResponse, Operation: op, Err: err}
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}
	return c.do(ctx, hc, op, method, path, body, contentType, out)
}

func (c *Client) delete(ctx context.Context, op, path string, out any) error {
	return c.do(ctx, c.http, op, http.MethodDelete, path, nil, "", out)
}

func classifyTransport(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return ErrEngineUnavailable
}

func classifyStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusRequestEntityTooLarge, status == http.StatusTooManyRequests:
		return ErrQuotaExceeded
	case status >= 500:
		return ErrEngineError
	default:
		return ErrEngineError
	}
}

// readDetail extracts the error payload the engine attaches to failures.
// FastAPI-style bodies carry {"detail": "..."}; a few handlers use {"error"}.
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 8<<10))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return fmt.Sprintf("%.200s", strings.TrimSpace(string(data)))
}
