package radio

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// AmbientState is the on/off state of an ambient channel.
type AmbientState int

const (
	Stopped AmbientState = iota
	Playing
)

func (s AmbientState) String() string {
	if s == Playing {
		return "On"
	}
	return "Off"
}

type ambientAction int

const (
	actionNone ambientAction = iota
	actionStart
	actionStop
)

// ambientTransition is the per-channel transition table for a toggle.
// ready reports whether a buffer and a gain node are available.
func ambientTransition(state AmbientState, ready bool) (AmbientState, ambientAction) {
	switch {
	case state == Playing:
		return Stopped, actionStop
	case ready:
		return Playing, actionStart
	default:
		return Stopped, actionNone
	}
}

// LoopHandle is one start-to-stop playback of a decoded buffer. It cannot
// be restarted.
type LoopHandle struct {
	mu      sync.Mutex
	source  BufferSource
	started bool
	stopped bool
}

func newLoopHandle(ctx AudioContext, buf DecodedBuffer, gain GainNode) (*LoopHandle, error) {
	src := ctx.CreateBufferSource(buf)
	src.SetLoop(true)
	if err := src.Connect(gain); err != nil {
		return nil, fmt.Errorf("route loop: %w", err)
	}
	return &LoopHandle{source: src}, nil
}

// Start begins looped playback at offset 0.
func (h *LoopHandle) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started || h.stopped {
		return ErrHandleSpent
	}
	if err := h.source.Start(0); err != nil {
		return err
	}
	h.started = true
	return nil
}

// Stop ends playback. Stopping twice, or stopping a handle that never
// started, does nothing.
func (h *LoopHandle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	if h.started {
		_ = h.source.Stop()
	}
}

// Active reports whether the handle is playing.
func (h *LoopHandle) Active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.started && !h.stopped
}

// AmbientController toggles the rain and vinyl loops. Each channel holds at
// most one live LoopHandle.
type AmbientController struct {
	mu      sync.Mutex
	pub     sync.Mutex // held across a transition and its publish
	graph   *MixGraph
	cache   *LoopBufferCache
	handles map[Channel]*LoopHandle
	states  map[Channel]*Observable[AmbientState]
	log     zerolog.Logger
}

// NewAmbientController creates a controller with every channel stopped.
func NewAmbientController(graph *MixGraph, cache *LoopBufferCache, logger zerolog.Logger) *AmbientController {
	a := &AmbientController{
		graph:   graph,
		cache:   cache,
		handles: make(map[Channel]*LoopHandle, len(AmbientChannels)),
		states:  make(map[Channel]*Observable[AmbientState], len(AmbientChannels)),
		log:     logger.With().Str("component", "ambient").Logger(),
	}
	for _, c := range AmbientChannels {
		a.states[c] = NewObservable(Stopped)
	}
	return a
}

// Toggle flips c between Stopped and Playing. Starting a channel whose
// buffer has not loaded yet leaves it Stopped without error.
func (a *AmbientController) Toggle(c Channel) (AmbientState, error) {
	if !c.Ambient() {
		return Stopped, fmt.Errorf("%w: %s", ErrNotAmbient, c)
	}

	a.pub.Lock()
	defer a.pub.Unlock()
	a.mu.Lock()
	state := a.stateLocked(c)
	buf, ready := a.cache.Get(c.String())
	ctx := a.graph.Context()
	gain := a.graph.Node(c)
	ready = ready && ctx != nil && gain != nil

	next, action := ambientTransition(state, ready)
	switch action {
	case actionStop:
		a.handles[c].Stop()
		delete(a.handles, c)
	case actionStart:
		h, err := newLoopHandle(ctx, buf, gain)
		if err == nil {
			err = h.Start()
		}
		if err != nil {
			a.mu.Unlock()
			a.log.Warn().Err(err).Str("channel", c.String()).Msg("loop start failed")
			return Stopped, nil
		}
		a.handles[c] = h
	case actionNone:
		a.log.Debug().Str("channel", c.String()).Msg("loop not loaded yet")
	}
	a.mu.Unlock()

	if action != actionNone {
		a.states[c].Set(next)
	}
	return next, nil
}

// Stop stops c if it is playing.
func (a *AmbientController) Stop(c Channel) {
	if !c.Ambient() {
		return
	}
	a.pub.Lock()
	defer a.pub.Unlock()
	a.mu.Lock()
	h, ok := a.handles[c]
	if ok {
		h.Stop()
		delete(a.handles, c)
	}
	a.mu.Unlock()

	if ok {
		a.states[c].Set(Stopped)
	}
}

// StopAll stops every ambient channel.
func (a *AmbientController) StopAll() {
	for _, c := range AmbientChannels {
		a.Stop(c)
	}
}

// State returns the current state of c.
func (a *AmbientController) State(c Channel) AmbientState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stateLocked(c)
}

// States returns the observable for c, or nil for a non-ambient channel.
// Subscribers must not toggle or stop channels from the callback.
func (a *AmbientController) States(c Channel) *Observable[AmbientState] {
	return a.states[c]
}

func (a *AmbientController) stateLocked(c Channel) AmbientState {
	if h := a.handles[c]; h != nil && h.Active() {
		return Playing
	}
	return Stopped
}
