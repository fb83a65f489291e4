// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/krittawat/subflow/internal/subtitle"
)

// UploadVideo streams one source video to the engine. The engine extracts the
// audio track before responding, so the call returns only when the media is
// ready for transcription. sessionID may be empty on the first upload.
func (c *Client) UploadVideo(ctx context.Context, filename string, r io.Reader, sessionID string) (*UploadResult, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		var err error
		defer func() { _ = pw.CloseWithError(err) }()

		if sessionID != "" {
			if err = mw.WriteField("session_id", sessionID); err != nil {
				return
			}
		}
		var part io.Writer
		if part, err = mw.CreateFormFile("file", filename); err != nil {
			return
		}
		if _, err = io.Copy(part, r); err != nil {
			return
		}
		err = mw.Close()
	}()

	var out UploadResult
	if err := c.do(ctx, c.http, "upload", http.MethodPost, "/api/upload-video", pr, mw.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Limits fetches the configured default upload quotas.
func (c *Client) Limits(ctx context.Context) (*Limits, error) {
	var out Limits
	if err := c.getJSON(ctx, "limits", "/api/limits", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SessionUsage fetches a session's consumed quota and effective limits.
func (c *Client) SessionUsage(ctx context.Context, sessionID string) (*SessionUsage, error) {
	var out SessionUsage
	path := "/api/session/" + url.PathEscape(sessionID) + "/usage"
	if err := c.getJSON(ctx, "session_usage", path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Transcribe runs speech-to-text for an uploaded video. provider selects the
// engine-side transcription backend ("botnoi" unless overridden).
func (c *Client) Transcribe(ctx context.Context, fileID, provider string) (*TranscribeResult, error) {
	form := url.Values{}
	if provider != "" {
		form.Set("provider", provider)
	}
	var out TranscribeResult
	path := "/api/transcribe/" + url.PathEscape(fileID)
	err := c.do(ctx, c.http, "transcribe", http.MethodPost, path,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSegments replaces the stored subtitle segments for a video after
// editing.
func (c *Client) UpdateSegments(ctx context.Context, fileID string, segments []subtitle.Segment) error {
	req := struct {
		Segments []subtitle.Segment `json:"segments"`
	}{Segments: segments}
	path := "/api/update-srt/" + url.PathEscape(fileID)
	return c.postJSON(ctx, "update_srt", path, req, nil)
}

// DownloadMP3URL returns the engine URL for the extracted audio track.
func (c *Client) DownloadMP3URL(fileID string) string {
	return fmt.Sprintf("%s/api/download-mp3/%s", c.base, url.PathEscape(fileID))
}

// DownloadSRTURL returns the engine URL for a subtitle file. language is a
// target language code or "original".
func (c *Client) DownloadSRTURL(fileID, language string) string {
	return fmt.Sprintf("%s/api/download-srt/%s/%s", c.base, url.PathEscape(fileID), url.PathEscape(language))
}

// DownloadVideoURL returns the engine URL for an embedded video artifact.
func (c *Client) DownloadVideoURL(fileID, language, mode string) string {
	return fmt.Sprintf("%s/api/download-video/%s/%s/%s",
		c.base, url.PathEscape(fileID), url.PathEscape(language), url.PathEscape(mode))
}

// StreamVideoURL returns the engine URL streaming the source video.
func (c *Client) StreamVideoURL(fileID string) string {
	return fmt.Sprintf("%s/api/stream-video/%s", c.base, url.PathEscape(fileID))
}
