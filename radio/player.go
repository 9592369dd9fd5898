package radio

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// Options configures a Player.
type Options struct {
	StreamURL       string              // Live stream for the main channel
	Ambient         map[string]string   // Ambient loop assets, channel name -> URL
	Levels          map[Channel]float64 // Initial slider positions
	LoadConcurrency int                 // Parallel asset loads, 0 for the default
}

// Player owns every piece of audio state for one process: the mix graph,
// the loop cache, the ambient loops, the stream session and the now-playing
// display state.
type Player struct {
	Graph   *MixGraph
	Cache   *LoopBufferCache
	Ambient *AmbientController
	Session *Session

	nowPlaying *Observable[NowPlaying]
	assets     map[string]string
	log        zerolog.Logger

	// Initial ambient load
	loadOnce sync.Once
	loaded   chan struct{} // Closed once settled
	loadErr  error
}

// NewPlayer wires the core components. Nothing touches the platform until
// the first Prepare or Play.
func NewPlayer(platform Platform, media MediaElement, fetcher Fetcher, opts Options, logger zerolog.Logger) *Player {
	graph := NewMixGraph(platform, media, opts.Levels, logger)
	cache := NewLoopBufferCache(fetcher, graphDecoder{graph}, opts.LoadConcurrency, logger)

	assets := make(map[string]string, len(opts.Ambient))
	for name, url := range opts.Ambient {
		assets[name] = url
	}

	p := &Player{
		Graph:      graph,
		Cache:      cache,
		Ambient:    NewAmbientController(graph, cache, logger),
		Session:    NewSession(graph, media, opts.StreamURL, logger),
		nowPlaying: NewObservable(NowPlaying{}),
		assets:     assets,
		log:        logger.With().Str("component", "player").Logger(),
		loaded:     make(chan struct{}),
	}
	graph.OnInitialized(func() {
		go p.loadAmbient()
	})
	return p
}

// loadAmbient fills the loop cache once the context exists to decode with.
func (p *Player) loadAmbient() {
	p.loadOnce.Do(func() {
		defer close(p.loaded)
		if len(p.assets) == 0 {
			return
		}
		p.loadErr = p.Cache.LoadAll(context.Background(), p.assets)
		p.log.Info().
			Strs("loaded", p.Cache.Names()).
			AnErr("error", p.loadErr).
			Msg("ambient loops settled")
	})
}

// AmbientLoaded is closed once the initial ambient load has settled.
func (p *Player) AmbientLoaded() <-chan struct{} {
	return p.loaded
}

// AmbientLoadErr returns the error of the initial ambient load. Only
// meaningful after AmbientLoaded is closed.
func (p *Player) AmbientLoadErr() error {
	select {
	case <-p.loaded:
		return p.loadErr
	default:
		return nil
	}
}

// Prepare builds the audio graph. See Session.Prepare.
func (p *Player) Prepare() error {
	return p.Session.Prepare()
}

// Begin runs the gesture-bound head of Play. See Session.Begin.
func (p *Player) Begin() (func(context.Context) error, error) {
	return p.Session.Begin()
}

// Play toggles the live stream. See Session.Play.
func (p *Player) Play(ctx context.Context) error {
	return p.Session.Play(ctx)
}

// ToggleAmbient builds the graph if needed and toggles the loop on c. Like
// a mute toggle, the gesture leaves the session Ready.
func (p *Player) ToggleAmbient(c Channel) (AmbientState, error) {
	if err := p.Prepare(); err != nil {
		return Stopped, err
	}
	p.Session.markReady()
	return p.Ambient.Toggle(c)
}

// NowPlaying returns the now-playing observable.
func (p *Player) NowPlaying() *Observable[NowPlaying] {
	return p.nowPlaying
}

// UpdateNowPlaying replaces the now-playing state.
func (p *Player) UpdateNowPlaying(np NowPlaying) {
	p.log.Debug().Str("artist", np.Artist).Str("title", np.Title).Msg("now playing")
	p.nowPlaying.Set(np)
}

var errNotInitialized = errors.New("radio: audio graph not initialized")

// graphDecoder decodes with the graph's context, which only exists after
// the first gesture.
type graphDecoder struct {
	graph *MixGraph
}

func (d graphDecoder) Decode(ctx context.Context, data []byte) (DecodedBuffer, error) {
	ac := d.graph.Context()
	if ac == nil {
		return nil, errNotInitialized
	}
	return ac.Decode(ctx, data)
}
