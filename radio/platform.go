package radio

import (
	"context"
	"errors"
)

var (
	// ErrNoAudio is returned by a Platform that cannot create an audio context.
	ErrNoAudio = errors.New("radio: audio output not supported")
	// ErrAutoplayBlocked is returned when the platform refuses to start audio
	// outside a user gesture.
	ErrAutoplayBlocked = errors.New("radio: playback blocked by autoplay policy")
	// ErrUnknownChannel is returned for a channel the mix graph does not own.
	ErrUnknownChannel = errors.New("radio: unknown channel")
	// ErrNotAmbient is returned when an ambient operation names a non-ambient channel.
	ErrNotAmbient = errors.New("radio: not an ambient channel")
	// ErrHandleSpent is returned when a loop handle is started a second time.
	ErrHandleSpent = errors.New("radio: loop handle already used")
)

// ContextState mirrors the audio context lifecycle.
type ContextState string

const (
	ContextSuspended ContextState = "suspended"
	ContextRunning   ContextState = "running"
	ContextClosed    ContextState = "closed"
)

// Platform creates the audio context. It is called at most once per Player.
type Platform interface {
	NewContext() (AudioContext, error)
}

// AudioContext is the platform's audio processing graph.
type AudioContext interface {
	State() ContextState
	// Resume leaves the suspended state. It blocks until the platform
	// reports the outcome.
	Resume(ctx context.Context) error
	Destination() Node
	CreateGain() GainNode
	CreateBufferSource(buf DecodedBuffer) BufferSource
	CreateMediaElementSource(el MediaElement) (Node, error)
	Decode(ctx context.Context, data []byte) (DecodedBuffer, error)
}

// Node is anything that can be routed into another node.
type Node interface {
	Connect(dst Node) error
}

// GainNode is a volume multiplier in the graph.
type GainNode interface {
	Node
	Gain() float64
	SetGain(v float64)
}

// BufferSource is a single-use player for a decoded buffer.
type BufferSource interface {
	Node
	SetLoop(loop bool)
	Start(offset float64) error
	Stop() error
}

// DecodedBuffer is an immutable decoded PCM buffer. Backends attach their
// own representation; the core only passes it around.
type DecodedBuffer interface {
	Duration() float64
}

// MediaElement is the live stream element ("<audio>" in the browser).
type MediaElement interface {
	Src() string
	SetSrc(url string)
	Paused() bool
	// Play requests playback and blocks until the platform accepts or
	// rejects it.
	Play(ctx context.Context) error
	Pause()
}

// GestureStarter is implemented by platform objects whose start can be
// issued without waiting for it. Browsers only honour resume and play
// requests made inside the gesture's call stack, so Session.Begin issues
// them there and the next Resume or Play collects the outcome.
type GestureStarter interface {
	StartInGesture()
}

func startInGesture(v interface{}) {
	if g, ok := v.(GestureStarter); ok {
		g.StartInGesture()
	}
}

// Fetcher loads raw asset bytes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// MediaEvent is a lifecycle event emitted by the live element.
type MediaEvent int

const (
	MediaPlay MediaEvent = iota
	MediaPause
	MediaStalled
	MediaWaiting
	MediaError
)

func (e MediaEvent) String() string {
	switch e {
	case MediaPlay:
		return "play"
	case MediaPause:
		return "pause"
	case MediaStalled:
		return "stalled"
	case MediaWaiting:
		return "waiting"
	case MediaError:
		return "error"
	default:
		return "unknown"
	}
}
