// SPDX-License-Identifier: MIT

package engine

import "github.com/krittawat/subflow/internal/subtitle"

// User identifies the authenticated actor.
type User struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// UploadResult describes one uploaded source video.
type UploadResult struct {
	FileID           string `json:"file_id"`
	OriginalFilename string `json:"original_filename"`
	SessionID        string `json:"session_id,omitempty"`
	Usage            *Usage `json:"usage,omitempty"`
}

// Limits are the per-identity upload quotas.
type Limits struct {
	MaxVideos          int     `json:"maxVideos"`
	MaxFileSizeMB      float64 `json:"maxFileSizeMB"`
	MaxDurationMinutes float64 `json:"maxDurationMinutes"`
}

// Usage is the consumed portion of a session's quota.
type Usage struct {
	VideosCount       int     `json:"videos_count"`
	TotalDuration     float64 `json:"total_duration"`
	RemainingVideos   int     `json:"remaining_videos"`
	RemainingDuration float64 `json:"remaining_duration"`
}

// SessionUsage combines a session's usage with its effective limits.
type SessionUsage struct {
	Usage  Usage  `json:"usage"`
	Limits Limits `json:"limits"`
}

// Transcription is the speech-to-text output for one video.
type Transcription struct {
	Text     string             `json:"text"`
	Segments []subtitle.Segment `json:"segments"`
}

// TranscribeResult wraps the transcription the engine returns.
type TranscribeResult struct {
	Transcription Transcription `json:"transcription"`
}

// TranslateRequest asks for one (video, target language) translation.
type TranslateRequest struct {
	FileID         string `json:"file_id"`
	TargetLanguage string `json:"target_language"`
	StylePrompt    string `json:"style_prompt,omitempty"`
}

// TranslateResult is the engine's translation response. The gateway only
// needs the language and segment count; the SRT itself stays engine-side.
type TranslateResult struct {
	FileID         string `json:"file_id,omitempty"`
	TargetLanguage string `json:"target_language,omitempty"`
	SegmentCount   int    `json:"segment_count,omitempty"`
	Message        string `json:"message,omitempty"`
}

// EmbedRequest asks for one (video, language, subtitle mode) embed run.
// The style fields tune the hard-subtitle burn-in.
type EmbedRequest struct {
	FileID       string  `json:"file_id"`
	Language     string  `json:"language"`
	Type         string  `json:"type"`
	SpeedPreset  string  `json:"speed_preset,omitempty"`
	FontName     string  `json:"font_name,omitempty"`
	FontSize     int     `json:"font_size,omitempty"`
	Bold         bool    `json:"bold,omitempty"`
	Outline      float64 `json:"outline,omitempty"`
	Shadow       float64 `json:"shadow,omitempty"`
	FontColor    string  `json:"font_color,omitempty"`
	OutlineColor string  `json:"outline_color,omitempty"`
}

// EmbedResult is the engine's embed response.
type EmbedResult struct {
	FileID     string `json:"file_id,omitempty"`
	Language   string `json:"language,omitempty"`
	Type       string `json:"type,omitempty"`
	OutputPath string `json:"output_path,omitempty"`
	Message    string `json:"message,omitempty"`
}

// SessionInfo is one engine-side session as listed for admins.
type SessionInfo struct {
	SessionID     string  `json:"session_id"`
	VideosCount   int     `json:"videos_count"`
	TotalDuration float64 `json:"total_duration"`
	CreatedAt     string  `json:"created_at"`
}

// Stats are the engine-wide usage totals.
type Stats struct {
	TotalSessions        int     `json:"total_sessions"`
	TotalVideos          int     `json:"total_videos"`
	TotalDurationSeconds float64 `json:"total_duration_seconds"`
	TotalDurationMinutes float64 `json:"total_duration_minutes"`
	TotalSizeMB          float64 `json:"total_size_mb"`
	TotalSizeGB          float64 `json:"total_size_gb"`
}

// ActivityStats aggregate the activity log for the admin charts.
type ActivityStats struct {
	ByType        map[string]int `json:"by_type"`
	ByStatus      map[string]int `json:"by_status"`
	ProviderUsage map[string]int `json:"provider_usage"`
	LanguageUsage map[string]int `json:"language_usage"`
	RecentByDate  []DateCount    `json:"recent_by_date"`
}

// DateCount is one day's activity volume.
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Activity is one logged user action.
type Activity struct {
	ID           int64  `json:"id"`
	Timestamp    string `json:"timestamp"`
	ActivityType string `json:"activity_type"`
	Username     string `json:"username"`
	SessionID    string `json:"session_id"`
	Status       string `json:"status"`
	Provider     string `json:"provider,omitempty"`
	Language     string `json:"language,omitempty"`
	FileName     string `json:"file_name,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// ActivityFilter narrows an activity log listing. Zero values mean "no
// constraint"; populated fields combine with AND semantics.
type ActivityFilter struct {
	Limit        int
	Offset       int
	ActivityType string
	SessionID    string
	Username     string
	Status       string
	DateFrom     string
	DateTo       string
}

// ActivityPage is one page of the activity log listing.
type ActivityPage struct {
	Activities []Activity `json:"activities"`
	Total      int        `json:"total"`
}

// NewUser is the admin user-creation request.
type NewUser struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserInfo is one account as listed for admins.
type UserInfo struct {
	Username     string  `json:"username"`
	Role         string  `json:"role"`
	CreatedAt    string  `json:"created_at"`
	CustomLimits *Limits `json:"custom_limits,omitempty"`
}
