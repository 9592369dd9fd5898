package radio

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
)

const testStreamURL = "https://stream.example.com/lofi"

func newTestSession(p *fakePlatform, m *fakeMedia) *Session {
	return NewSession(newTestGraph(p, m), m, testStreamURL, zerolog.Nop())
}

// TestSession_PlayFromSuspended tests that a first play resumes the context and starts the stream
func TestSession_PlayFromSuspended(t *testing.T) {
	p := newFakePlatform()
	m := newFakeMedia()
	s := newTestSession(p, m)

	if s.State() != Uninitialized {
		t.Fatalf("Expected Uninitialized, got %v", s.State())
	}
	if err := s.Play(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx := p.ctx()
	if ctx.resumes != 1 {
		t.Errorf("Expected 1 resume, got %d", ctx.resumes)
	}
	if ctx.State() != ContextRunning {
		t.Errorf("Expected running context, got %v", ctx.State())
	}
	if m.Paused() {
		t.Error("Expected media to be playing")
	}
	if m.Src() != testStreamURL {
		t.Errorf("Expected src %q, got %q", testStreamURL, m.Src())
	}
	if got := s.Status().Get(); got != StatusPlaying {
		t.Errorf("Expected Playing, got %v", got)
	}
	if s.State() != Ready {
		t.Errorf("Expected Ready, got %v", s.State())
	}
}

// TestSession_PlayActsAsToggle tests that play pauses a playing stream
func TestSession_PlayActsAsToggle(t *testing.T) {
	p := newFakePlatform()
	m := newFakeMedia()
	s := newTestSession(p, m)

	// Start, then tap again
	s.Play(context.Background())
	s.Play(context.Background())

	if !m.Paused() {
		t.Error("Expected second Play to pause")
	}
	if got := s.Status().Get(); got != StatusPaused {
		t.Errorf("Expected Paused, got %v", got)
	}
	if m.plays != 1 {
		t.Errorf("Expected one play request, got %d", m.plays)
	}
	if p.ctx().resumes != 1 {
		t.Errorf("Expected running context not to be resumed again, got %d resumes", p.ctx().resumes)
	}
}

// TestSession_AutoplayBlocked tests that an autoplay refusal shows Blocked and the next tap retries
func TestSession_AutoplayBlocked(t *testing.T) {
	p := newFakePlatform()
	m := newFakeMedia()
	m.playErr = fmt.Errorf("NotAllowedError: %w", ErrAutoplayBlocked)
	s := newTestSession(p, m)

	if err := s.Play(context.Background()); err != nil {
		t.Fatalf("Expected blocked play to be reported via status, got %v", err)
	}
	if got := s.Status().Get(); got != StatusBlocked {
		t.Errorf("Expected Blocked, got %v", got)
	}
	if s.State() != Ready {
		t.Errorf("Expected Ready, got %v", s.State())
	}

	// The user taps again once the policy allows it
	m.playErr = nil
	s.Play(context.Background())
	if got := s.Status().Get(); got != StatusPlaying {
		t.Errorf("Expected retry to play, got %v", got)
	}
}

// TestSession_StreamError tests that a failed stream start shows Error and keeps the session Ready
func TestSession_StreamError(t *testing.T) {
	m := newFakeMedia()
	m.playErr = errors.New("NotSupportedError")
	s := newTestSession(newFakePlatform(), m)

	s.Play(context.Background())
	if got := s.Status().Get(); got != StatusError {
		t.Errorf("Expected Error, got %v", got)
	}
	if s.State() != Ready {
		t.Errorf("Expected Ready, got %v", s.State())
	}
}

// TestSession_RetryAfterStreamError tests that the tap after a transport
// error reloads the source and plays instead of pausing
func TestSession_RetryAfterStreamError(t *testing.T) {
	m := newFakeMedia()
	s := newTestSession(newFakePlatform(), m)

	s.Play(context.Background())
	// The element errors out but still reports itself unpaused
	s.HandleMediaEvent(MediaError)
	if m.Paused() {
		t.Fatal("Expected the errored element to report unpaused")
	}
	loads := m.loads

	s.Play(context.Background())
	if m.loads != loads+1 {
		t.Errorf("Expected the source to be reassigned once, got %d loads", m.loads-loads)
	}
	if m.Src() != testStreamURL {
		t.Errorf("Expected src %q, got %q", testStreamURL, m.Src())
	}
	if m.plays != 2 {
		t.Errorf("Expected a second play request, got %d", m.plays)
	}
	if got := s.Status().Get(); got != StatusPlaying {
		t.Errorf("Expected Playing, got %v", got)
	}
	if s.State() != Ready {
		t.Errorf("Expected Ready, got %v", s.State())
	}

	// Back to a plain toggle once recovered
	s.Play(context.Background())
	if got := s.Status().Get(); got != StatusPaused {
		t.Errorf("Expected Paused, got %v", got)
	}
}

// TestSession_BeginStartsInsideGesture tests that resume and play are issued
// before Begin returns and only collected by finish
func TestSession_BeginStartsInsideGesture(t *testing.T) {
	p := newFakePlatform()
	m := newFakeMedia()
	s := newTestSession(p, m)

	finish, err := s.Begin()
	if err != nil {
		t.Fatal(err)
	}
	ctx := p.ctx()
	if ctx.kicks != 1 || m.kicks != 1 {
		t.Errorf("Expected resume and play issued in the gesture, got %d and %d", ctx.kicks, m.kicks)
	}
	if ctx.resumes != 0 || m.plays != 0 {
		t.Error("Expected nothing awaited before finish")
	}
	if s.State() != Initializing {
		t.Errorf("Expected Initializing until finish, got %v", s.State())
	}

	if err := finish(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := s.Status().Get(); got != StatusPlaying {
		t.Errorf("Expected Playing, got %v", got)
	}

	// Pausing is immediate and starts nothing
	finish, _ = s.Begin()
	if got := s.Status().Get(); got != StatusPaused {
		t.Errorf("Expected Paused before finish, got %v", got)
	}
	_ = finish(context.Background())
	if m.kicks != 1 {
		t.Errorf("Expected no play issued when pausing, got %d", m.kicks)
	}
}

// TestSession_ResumeRefused tests that a refused resume shows Blocked without starting the stream
func TestSession_ResumeRefused(t *testing.T) {
	p := newFakePlatform()
	p.resumeErr = errors.New("resume refused")
	m := newFakeMedia()
	s := newTestSession(p, m)

	s.Play(context.Background())
	if got := s.Status().Get(); got != StatusBlocked {
		t.Errorf("Expected Blocked, got %v", got)
	}
	if m.plays != 0 {
		t.Error("Expected no play request while the context is suspended")
	}
	if s.State() != Ready {
		t.Errorf("Expected Ready, got %v", s.State())
	}
}

// TestSession_NoAudio tests that a platform without audio leaves the session uninitialized
func TestSession_NoAudio(t *testing.T) {
	p := newFakePlatform()
	p.newErr = ErrNoAudio
	s := newTestSession(p, newFakeMedia())

	if err := s.Play(context.Background()); !errors.Is(err, ErrNoAudio) {
		t.Errorf("Expected ErrNoAudio, got %v", err)
	}
	if s.State() != Uninitialized {
		t.Errorf("Expected Uninitialized, got %v", s.State())
	}
	if got := s.Status().Get(); got != StatusError {
		t.Errorf("Expected Error, got %v", got)
	}
}

// TestSession_PrepareIsSynchronousAndIdempotent tests that Prepare builds the graph once without reaching Ready
func TestSession_PrepareIsSynchronousAndIdempotent(t *testing.T) {
	p := newFakePlatform()
	s := newTestSession(p, newFakeMedia())

	for i := 0; i < 3; i++ {
		if err := s.Prepare(); err != nil {
			t.Fatal(err)
		}
	}
	if len(p.contexts) != 1 {
		t.Errorf("Expected one context, got %d", len(p.contexts))
	}
	if p.ctx().bridges != 1 {
		t.Errorf("Expected one bridge, got %d", p.ctx().bridges)
	}
	if s.State() != Initializing {
		t.Errorf("Expected Initializing before Play, got %v", s.State())
	}
}

// TestSession_AppliesMainLevel tests that play pushes the main level onto its node
func TestSession_AppliesMainLevel(t *testing.T) {
	p := newFakePlatform()
	m := newFakeMedia()
	s := newTestSession(p, m)

	_ = s.Prepare()
	s.graph.Node(Main).SetGain(0.1)
	s.graph.levels[Main] = 0.55

	s.Play(context.Background())
	if got := s.graph.Node(Main).Gain(); got != 0.55 {
		t.Errorf("Expected main gain 0.55 from level, got %v", got)
	}
}

// TestSession_ReassignsChangedSource tests that a changed stream URL is assigned on the next play
func TestSession_ReassignsChangedSource(t *testing.T) {
	m := newFakeMedia()
	m.src = "https://old.example.com/stream"
	s := newTestSession(newFakePlatform(), m)

	s.Play(context.Background())
	if m.Src() != testStreamURL {
		t.Errorf("Expected src reassigned to %q, got %q", testStreamURL, m.Src())
	}

	s.SetStreamURL("https://new.example.com/stream")
	s.Play(context.Background())
	s.Play(context.Background())
	if m.Src() != "https://new.example.com/stream" {
		t.Errorf("Expected new src, got %q", m.Src())
	}
}

// TestSession_HandleMediaEvent tests that element events map to statuses
func TestSession_HandleMediaEvent(t *testing.T) {
	tests := []struct {
		event MediaEvent
		want  Status
	}{
		{MediaPlay, StatusPlaying},
		{MediaPause, StatusPaused},
		{MediaStalled, StatusBuffering},
		{MediaWaiting, StatusBuffering},
		{MediaError, StatusError},
	}

	s := newTestSession(newFakePlatform(), newFakeMedia())
	for _, tt := range tests {
		t.Run(tt.event.String(), func(t *testing.T) {
			s.HandleMediaEvent(tt.event)
			if got := s.Status().Get(); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

// TestSession_ToggleMute tests that mute toggles master between zero and its level
func TestSession_ToggleMute(t *testing.T) {
	s := newTestSession(newFakePlatform(), newFakeMedia())

	muted, err := s.ToggleMute()
	if err != nil || !muted {
		t.Fatalf("Expected muted, got %v (%v)", muted, err)
	}
	if got := s.graph.Node(Master).Gain(); got != 0 {
		t.Errorf("Expected master 0, got %v", got)
	}

	muted, _ = s.ToggleMute()
	if muted {
		t.Error("Expected unmuted")
	}
	if got := s.graph.Node(Master).Gain(); got != 0.8 {
		t.Errorf("Expected master restored to 0.8, got %v", got)
	}
}

// TestStatus_Labels tests that blocked and error statuses are distinguishable
func TestStatus_Labels(t *testing.T) {
	if StatusBlocked.String() == StatusError.String() {
		t.Error("Expected blocked and error statuses to be distinguishable")
	}
	if StatusPlaying.Color() != "#22c55e" {
		t.Errorf("Expected green for playing, got %s", StatusPlaying.Color())
	}
}
