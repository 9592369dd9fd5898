package radio

// Status is the playback status shown to the listener.
type Status int

const (
	StatusIdle Status = iota
	StatusPlaying
	StatusPaused
	StatusBuffering
	StatusError
	StatusBlocked
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Ready"
	case StatusPlaying:
		return "Playing"
	case StatusPaused:
		return "Paused"
	case StatusBuffering:
		return "Buffering…"
	case StatusError:
		return "Stream error"
	case StatusBlocked:
		return "Tap to start (autoplay blocked)"
	default:
		return "Unknown"
	}
}

// Color is the status dot color used by the UI.
func (s Status) Color() string {
	switch s {
	case StatusPlaying:
		return "#22c55e"
	case StatusError:
		return "#ef4444"
	case StatusIdle:
		return "#64748b"
	default:
		return "#f59e0b"
	}
}

// statusForEvent maps a live element event to the status it implies.
func statusForEvent(ev MediaEvent) (Status, bool) {
	switch ev {
	case MediaPlay:
		return StatusPlaying, true
	case MediaPause:
		return StatusPaused, true
	case MediaStalled, MediaWaiting:
		return StatusBuffering, true
	case MediaError:
		return StatusError, true
	}
	return StatusIdle, false
}
