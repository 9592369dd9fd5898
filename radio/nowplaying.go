package radio

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NowPlaying is the track currently announced by the metadata feed.
type NowPlaying struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// Empty reports whether nothing is known about the track.
func (np NowPlaying) Empty() bool {
	return np.Artist == "" && np.Title == ""
}

// Line renders "Artist — Title", or just the title when the artist is unknown.
func (np NowPlaying) Line() string {
	if np.Artist != "" && np.Title != "" {
		return np.Artist + " — " + np.Title
	}
	if np.Title != "" {
		return np.Title
	}
	return "—"
}

type trackFields struct {
	Artist      string `json:"artist"`
	Title       string `json:"title"`
	StreamTitle string `json:"stream_title"`
	CamelTitle  string `json:"streamTitle"`
}

type metadataEvent struct {
	trackFields
	NowPlaying *trackFields `json:"now_playing"`
	Mount      *struct {
		NowPlaying *trackFields `json:"now_playing"`
	} `json:"mount"`
}

// ParseNowPlaying decodes one metadata push. It accepts a combined
// "Artist - Title" string (streamTitle or stream_title), a now_playing
// object (top level or under mount), or flat artist/title fields.
func ParseNowPlaying(data []byte) (NowPlaying, error) {
	var ev metadataEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return NowPlaying{}, fmt.Errorf("parse metadata: %w", err)
	}

	f := ev.trackFields
	switch {
	case ev.NowPlaying != nil:
		f = *ev.NowPlaying
	case ev.Mount != nil && ev.Mount.NowPlaying != nil:
		f = *ev.Mount.NowPlaying
	}
	return f.nowPlaying(), nil
}

func (f trackFields) nowPlaying() NowPlaying {
	combined := f.StreamTitle
	if combined == "" {
		combined = f.CamelTitle
	}
	artist, title := SplitStreamTitle(combined)

	np := NowPlaying{
		Artist: strings.TrimSpace(f.Artist),
		Title:  strings.TrimSpace(f.Title),
	}
	if np.Artist == "" {
		np.Artist = artist
	}
	if np.Title == "" {
		np.Title = title
	}
	return np
}

// SplitStreamTitle splits "Artist - Title" at the first " - ". Without a
// delimiter the whole string is the title.
func SplitStreamTitle(s string) (artist, title string) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, " - "); i >= 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+3:])
	}
	return "", s
}
