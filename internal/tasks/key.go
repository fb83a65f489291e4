// SPDX-License-Identifier: MIT

package tasks

// Mode selects how subtitles are delivered in an embedded video.
type Mode string

const (
	// ModeHard burns subtitle text into the video pixels.
	ModeHard Mode = "hard"
	// ModeSoft muxes subtitles as a separate toggleable track.
	ModeSoft Mode = "soft"
)

// EmbedKey identifies one (language, mode) embed job. A struct key with
// structural equality, not a concatenated string.
type EmbedKey struct {
	Language string `json:"language"`
	Mode     Mode   `json:"mode"`
}
