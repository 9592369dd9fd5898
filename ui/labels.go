// Package ui binds the player to the page: buttons, sliders, the status
// line, now-playing labels and the Media Session.
package ui

import (
	"github.com/simukka/lofi-fm/radio"
)

// DefaultTitle is shown by the OS media controls when no title is known.
const DefaultTitle = "Lofi FM"

// PlayLabel is the play button text for a status.
func PlayLabel(s radio.Status) string {
	if s == radio.StatusPlaying || s == radio.StatusBuffering {
		return "Pause"
	}
	return "Play"
}

// MuteLabel is the mute button text; it names the action, not the state.
func MuteLabel(muted bool) string {
	if muted {
		return "Unmute"
	}
	return "Mute"
}

// AmbientLabel renders e.g. "Rain: On".
func AmbientLabel(c radio.Channel, s radio.AmbientState) string {
	return c.Label() + ": " + s.String()
}

// ArtistLabel and TitleLabel fill the metadata fields.
func ArtistLabel(np radio.NowPlaying) string {
	if np.Artist == "" {
		return "Unknown"
	}
	return np.Artist
}

func TitleLabel(np radio.NowPlaying) string {
	if np.Title == "" {
		return "—"
	}
	return np.Title
}

// SessionTitle is the Media Session title.
func SessionTitle(np radio.NowPlaying) string {
	if np.Title == "" {
		return DefaultTitle
	}
	return np.Title
}
