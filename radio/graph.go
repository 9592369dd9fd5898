package radio

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Gains is a snapshot of node values keyed by channel.
type Gains map[Channel]float64

// MixGraph owns the audio context, one gain node per channel and the bridge
// from the live element. Routing is a master bus:
//
//	media -> main -+
//	rain loop -> rain -+-> master -> destination
//	vinyl loop -> vinyl -+
type MixGraph struct {
	mu       sync.Mutex
	pub      sync.Mutex // held across snapshot and publish so gains arrive in order
	platform Platform
	media    MediaElement
	log      zerolog.Logger

	// Built up by EnsureInitialized. Each piece is kept as soon as it
	// exists so a failed attempt resumes where it stopped.
	ctx          AudioContext
	nodes        map[Channel]GainNode
	routed       map[Channel]bool // node connected downstream
	bridge       Node
	bridgeRouted bool
	ready        bool

	levels map[Channel]float64 // slider positions
	muted  bool

	gains  *Observable[Gains]
	onInit []func()
}

// NewMixGraph creates an uninitialized graph. levels seeds the gain of each
// node when it is created; missing channels default to 1.
func NewMixGraph(platform Platform, media MediaElement, levels map[Channel]float64, logger zerolog.Logger) *MixGraph {
	g := &MixGraph{
		platform: platform,
		media:    media,
		log:      logger.With().Str("component", "mixgraph").Logger(),
		nodes:    make(map[Channel]GainNode, len(Channels)),
		routed:   make(map[Channel]bool, len(Channels)),
		levels:   make(map[Channel]float64, len(Channels)),
	}
	for _, c := range Channels {
		g.levels[c] = 1
		if v, ok := levels[c]; ok {
			g.levels[c] = v
		}
	}
	g.gains = NewObservable(g.snapshotLocked())
	return g
}

// OnInitialized registers fn to run once, right after the first successful
// EnsureInitialized. Registering after init runs fn immediately.
func (g *MixGraph) OnInitialized(fn func()) {
	g.mu.Lock()
	if !g.ready {
		g.onInit = append(g.onInit, fn)
		g.mu.Unlock()
		return
	}
	g.mu.Unlock()
	fn()
}

// EnsureInitialized creates the context, the gain nodes and the media bridge
// on first call. Later calls do nothing. A failed call keeps whatever it
// already built, so the next gesture resumes from the failed step and never
// creates a second context or binds the element twice.
func (g *MixGraph) EnsureInitialized() error {
	g.pub.Lock()
	g.mu.Lock()
	if g.ready {
		g.mu.Unlock()
		g.pub.Unlock()
		return nil
	}
	if err := g.buildLocked(); err != nil {
		g.mu.Unlock()
		g.pub.Unlock()
		return err
	}

	g.ready = true
	hooks := g.onInit
	g.onInit = nil
	snap := g.snapshotLocked()
	state := g.ctx.State()
	g.mu.Unlock()

	g.log.Debug().Str("state", string(state)).Msg("audio graph initialized")
	g.gains.Set(snap)
	g.pub.Unlock()

	for _, fn := range hooks {
		fn()
	}
	return nil
}

func (g *MixGraph) buildLocked() error {
	if g.ctx == nil {
		ctx, err := g.platform.NewContext()
		if err != nil {
			return fmt.Errorf("create audio context: %w", err)
		}
		g.ctx = ctx
	}

	for _, c := range Channels {
		if g.nodes[c] != nil {
			continue
		}
		n := g.ctx.CreateGain()
		n.SetGain(g.levels[c])
		if c == Master && g.muted {
			n.SetGain(0)
		}
		g.nodes[c] = n
	}

	if !g.routed[Master] {
		if err := g.nodes[Master].Connect(g.ctx.Destination()); err != nil {
			return fmt.Errorf("route master: %w", err)
		}
		g.routed[Master] = true
	}
	for _, c := range []Channel{Main, Rain, Vinyl} {
		if g.routed[c] {
			continue
		}
		if err := g.nodes[c].Connect(g.nodes[Master]); err != nil {
			return fmt.Errorf("route %s: %w", c, err)
		}
		g.routed[c] = true
	}

	if g.media == nil {
		return nil
	}
	if g.bridge == nil {
		bridge, err := g.ctx.CreateMediaElementSource(g.media)
		if err != nil {
			return fmt.Errorf("bind media element: %w", err)
		}
		g.bridge = bridge
	}
	if !g.bridgeRouted {
		if err := g.bridge.Connect(g.nodes[Main]); err != nil {
			return fmt.Errorf("route media element: %w", err)
		}
		g.bridgeRouted = true
	}
	return nil
}

// Initialized reports whether EnsureInitialized has succeeded.
func (g *MixGraph) Initialized() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ready
}

// Context returns the audio context, or nil before initialization.
func (g *MixGraph) Context() AudioContext {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.ready {
		return nil
	}
	return g.ctx
}

// Node returns the gain node for c, or nil before initialization.
func (g *MixGraph) Node(c Channel) GainNode {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.ready {
		return nil
	}
	return g.nodes[c]
}

// SetChannelGain records value as the level of c and applies it to the node.
// The value is not clamped; sliders constrain the range. While muted, the
// master level is recorded but the node stays silent.
func (g *MixGraph) SetChannelGain(c Channel, value float64) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownChannel, int(c))
	}
	g.pub.Lock()
	defer g.pub.Unlock()
	g.mu.Lock()
	g.levels[c] = value
	if n := g.nodes[c]; n != nil && !(c == Master && g.muted) {
		n.SetGain(value)
	}
	snap := g.snapshotLocked()
	g.mu.Unlock()

	g.gains.Set(snap)
	return nil
}

// ApplyLevel pushes the recorded level of c onto its node.
func (g *MixGraph) ApplyLevel(c Channel) error {
	return g.SetChannelGain(c, g.Level(c))
}

// Level returns the slider-derived level of c.
func (g *MixGraph) Level(c Channel) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.levels[c]
}

// Gain returns the live node value of c, or its level before initialization.
func (g *MixGraph) Gain(c Channel) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n := g.nodes[c]; n != nil {
		return n.Gain()
	}
	return g.levels[c]
}

// SetMuted silences the master bus without touching any level. Unmuting
// restores the master level.
func (g *MixGraph) SetMuted(muted bool) {
	g.pub.Lock()
	defer g.pub.Unlock()
	g.mu.Lock()
	g.muted = muted
	if n := g.nodes[Master]; n != nil {
		if muted {
			n.SetGain(0)
		} else {
			n.SetGain(g.levels[Master])
		}
	}
	snap := g.snapshotLocked()
	g.mu.Unlock()

	g.gains.Set(snap)
}

// Muted reports whether the master bus is muted.
func (g *MixGraph) Muted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.muted
}

// Gains returns the observable of live gain values. Subscribers run while
// the graph is publishing and must not change gains or mute themselves.
func (g *MixGraph) Gains() *Observable[Gains] {
	return g.gains
}

func (g *MixGraph) snapshotLocked() Gains {
	snap := make(Gains, len(Channels))
	for _, c := range Channels {
		if n := g.nodes[c]; n != nil {
			snap[c] = n.Gain()
			continue
		}
		snap[c] = g.levels[c]
		if c == Master && g.muted {
			snap[c] = 0
		}
	}
	return snap
}
