package radio

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// SessionState is the lifecycle of the playback session.
type SessionState int

const (
	Uninitialized SessionState = iota
	Initializing
	Ready
)

func (s SessionState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Session drives the live stream: it creates and resumes the audio context,
// binds the media element through the mix graph and toggles playback.
type Session struct {
	mu        sync.Mutex
	graph     *MixGraph
	media     MediaElement
	streamURL string              // Assigned to the element on the next Play
	state     SessionState        // Lifecycle, guarded by mu
	status    *Observable[Status] // User-facing playback status
	log       zerolog.Logger
}

// NewSession creates an uninitialized session for streamURL.
func NewSession(graph *MixGraph, media MediaElement, streamURL string, logger zerolog.Logger) *Session {
	return &Session{
		graph:     graph,
		media:     media,
		streamURL: streamURL,
		status:    NewObservable(StatusIdle),
		log:       logger.With().Str("component", "session").Logger(),
	}
}

// Prepare runs the synchronous head of Play: it builds the graph and the
// media bridge. Call it directly from the gesture handler, before anything
// that may yield, so the audio context is created inside the gesture.
func (s *Session) Prepare() error {
	s.mu.Lock()
	if s.state == Uninitialized {
		s.state = Initializing
	}
	s.mu.Unlock()

	if err := s.graph.EnsureInitialized(); err != nil {
		s.mu.Lock()
		s.state = Uninitialized
		s.mu.Unlock()
		s.log.Error().Err(err).Msg("audio init failed")
		s.status.Set(StatusError)
		return err
	}
	return nil
}

// Play starts the stream, or pauses it if it is already playing. Failures
// end up in Status; the returned error is only non-nil when the graph could
// not be built at all.
func (s *Session) Play(ctx context.Context) error {
	finish, err := s.Begin()
	if err != nil {
		return err
	}
	return finish(ctx)
}

// Begin runs the part of Play that must happen inside the gesture's call
// stack. It builds the graph, decides between pausing and starting, and on
// platforms that implement GestureStarter issues the resume and play
// requests without waiting. The returned finish waits for the outcome; it
// may block and must be called exactly once.
func (s *Session) Begin() (finish func(context.Context) error, err error) {
	if err := s.Prepare(); err != nil {
		return nil, err
	}
	if err := s.graph.ApplyLevel(Main); err != nil {
		return nil, err
	}

	// An errored element may still report itself unpaused. Reassigning the
	// source reloads it, so the tap retries instead of pausing.
	url := s.StreamURL()
	retry := s.status.Get() == StatusError
	if retry || s.media.Src() != url {
		s.media.SetSrc(url)
	}

	if !retry && !s.media.Paused() {
		s.media.Pause()
		s.markReady()
		s.status.Set(StatusPaused)
		return func(context.Context) error { return nil }, nil
	}

	ac := s.graph.Context()
	suspended := ac.State() == ContextSuspended
	if suspended {
		startInGesture(ac)
	}
	startInGesture(s.media)

	return func(ctx context.Context) error {
		s.start(ctx, ac, suspended, url)
		return nil
	}, nil
}

func (s *Session) start(ctx context.Context, ac AudioContext, suspended bool, url string) {
	defer s.markReady()

	if suspended {
		if err := ac.Resume(ctx); err != nil {
			s.log.Warn().Err(err).Msg("audio context resume refused")
			if !s.media.Paused() {
				s.media.Pause()
			}
			s.status.Set(StatusBlocked)
			return
		}
	}
	s.markReady()

	if err := s.media.Play(ctx); err != nil {
		if errors.Is(err, ErrAutoplayBlocked) {
			s.log.Warn().Err(err).Msg("stream start blocked")
			s.status.Set(StatusBlocked)
		} else {
			s.log.Error().Err(err).Str("url", url).Msg("stream start failed")
			s.status.Set(StatusError)
		}
		return
	}
	s.status.Set(StatusPlaying)
}

// HandleMediaEvent updates the status from a live element event.
func (s *Session) HandleMediaEvent(ev MediaEvent) {
	st, ok := statusForEvent(ev)
	if !ok {
		return
	}
	s.log.Debug().Str("event", ev.String()).Str("status", st.String()).Msg("media event")
	s.status.Set(st)
}

// ToggleMute flips the master mute and returns the new muted state. It
// builds the graph first so the button works before the first Play.
func (s *Session) ToggleMute() (bool, error) {
	if err := s.Prepare(); err != nil {
		return s.graph.Muted(), err
	}
	s.markReady()
	muted := !s.graph.Muted()
	s.graph.SetMuted(muted)
	return muted, nil
}

// State returns the lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns the playback status observable.
func (s *Session) Status() *Observable[Status] {
	return s.status
}

// StreamURL returns the configured stream URL.
func (s *Session) StreamURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streamURL
}

// SetStreamURL changes the stream URL used by the next Play.
func (s *Session) SetStreamURL(url string) {
	s.mu.Lock()
	s.streamURL = url
	s.mu.Unlock()
}

func (s *Session) markReady() {
	s.mu.Lock()
	if s.state == Initializing {
		s.state = Ready
	}
	s.mu.Unlock()
}
