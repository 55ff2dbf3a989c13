// Package story turns the confirmed appearance timeline of one person into a
// fixed-length, four act highlight playlist.
package story

import (
	"fmt"
	"strings"

	"facereel/internal/store"
)

// Focus is the stylistic bias of a generation request. It steers both the
// candidate pre-filter and the per-act scoring bonus.
type Focus string

const (
	FocusBalance   Focus = "Balance"
	FocusSmile     Focus = "Smile"
	FocusActive    Focus = "Active"
	FocusEmotional Focus = "Emotional"
)

// ParseFocus resolves user input to a Focus, case-insensitively.
func ParseFocus(s string) (Focus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "balance":
		return FocusBalance, nil
	case "smile":
		return FocusSmile, nil
	case "active":
		return FocusActive, nil
	case "emotional":
		return FocusEmotional, nil
	}
	return "", fmt.Errorf("unknown focus %q (expected Balance, Smile, Active or Emotional)", s)
}

// Phase is the narrative act a clip was selected for. Acts steer selection
// only; the final playlist is chronological.
type Phase string

const (
	PhaseIntro       Phase = "intro"
	PhaseDevelopment Phase = "development"
	PhaseClimax      Phase = "climax"
	PhaseResolution  Phase = "resolution"
)

// Clip is one selected event in the playlist, annotated for the renderer.
type Clip struct {
	VideoPath string      `json:"video_path"`
	Event     store.Event `json:"event"`
	Phase     Phase       `json:"phase"`
	Overlay   string      `json:"overlay_text,omitempty"`
}

// Playlist is the generation result handed to the external renderer. It lives
// for a single generation run and is never merged across runs.
type Playlist struct {
	Person       string `json:"person_name"`
	Period       string `json:"period"`
	Focus        Focus  `json:"focus"`
	Clips        []Clip `json:"clips"`
	DominantVibe string `json:"dominant_vibe"`
	SuggestedBGM string `json:"suggested_bgm"`
}
