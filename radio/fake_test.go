package radio

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// fakePlatform is an in-memory audio platform that records every node it
// creates and every connection made.
type fakePlatform struct {
	mu        sync.Mutex
	contexts  []*fakeContext
	newErr    error            // NewContext failure
	resumeErr error            // Resume failure on every context
	decodeErr map[string]error // Decode failure keyed by payload

	// One-shot failures, cleared once returned.
	bindErr          error // CreateMediaElementSource
	bridgeConnectErr error // Connect on the bridge it returns
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{decodeErr: make(map[string]error)}
}

func (p *fakePlatform) NewContext() (AudioContext, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.newErr != nil {
		return nil, p.newErr
	}
	c := &fakeContext{platform: p, state: ContextSuspended, dest: &fakeNode{name: "destination"}}
	p.contexts = append(p.contexts, c)
	return c, nil
}

func (p *fakePlatform) ctx() *fakeContext {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.contexts) == 0 {
		return nil
	}
	return p.contexts[0]
}

type fakeContext struct {
	mu       sync.Mutex
	platform *fakePlatform
	state    ContextState
	dest     *fakeNode
	gains    []*fakeGain
	sources  []*fakeSource
	bridges  int
	resumes  int
	kicks    int // StartInGesture calls
}

func (c *fakeContext) StartInGesture() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kicks++
}

func (c *fakeContext) State() ContextState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *fakeContext) Resume(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resumes++
	if c.platform.resumeErr != nil {
		return c.platform.resumeErr
	}
	c.state = ContextRunning
	return nil
}

func (c *fakeContext) Destination() Node { return c.dest }

func (c *fakeContext) CreateGain() GainNode {
	c.mu.Lock()
	defer c.mu.Unlock()
	g := &fakeGain{fakeNode: fakeNode{name: fmt.Sprintf("gain%d", len(c.gains))}, value: 1}
	c.gains = append(c.gains, g)
	return g
}

func (c *fakeContext) CreateBufferSource(buf DecodedBuffer) BufferSource {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := &fakeSource{fakeNode: fakeNode{name: "source"}, buf: buf}
	c.sources = append(c.sources, s)
	return s
}

func (c *fakeContext) CreateMediaElementSource(el MediaElement) (Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.platform.bindErr; err != nil {
		c.platform.bindErr = nil
		return nil, err
	}
	c.bridges++
	if c.bridges > 1 {
		return nil, errors.New("media element already bound")
	}
	bridge := &fakeNode{name: "bridge", connectErr: c.platform.bridgeConnectErr}
	c.platform.bridgeConnectErr = nil
	return bridge, nil
}

func (c *fakeContext) Decode(ctx context.Context, data []byte) (DecodedBuffer, error) {
	if err := c.platform.decodeErr[string(data)]; err != nil {
		return nil, err
	}
	return fakeBuffer{name: string(data)}, nil
}

type fakeNode struct {
	mu         sync.Mutex
	name       string
	out        []Node
	connectErr error // returned by the next Connect only
}

func (n *fakeNode) Connect(dst Node) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.connectErr; err != nil {
		n.connectErr = nil
		return err
	}
	n.out = append(n.out, dst)
	return nil
}

func (n *fakeNode) outputs() []Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Node(nil), n.out...)
}

type fakeGain struct {
	fakeNode
	value float64
}

func (g *fakeGain) Gain() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value
}

func (g *fakeGain) SetGain(v float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.value = v
}

type fakeSource struct {
	fakeNode
	buf      DecodedBuffer
	loop     bool
	starts   int
	stops    int
	startErr error
}

func (s *fakeSource) SetLoop(loop bool) { s.loop = loop }

func (s *fakeSource) Start(offset float64) error {
	if s.startErr != nil {
		return s.startErr
	}
	s.starts++
	return nil
}

func (s *fakeSource) Stop() error {
	s.stops++
	if s.stops > 1 {
		return errors.New("InvalidStateError")
	}
	return nil
}

type fakeBuffer struct {
	name string
}

func (b fakeBuffer) Duration() float64 { return 4 }

// fakeMedia models the live element. Like a browser element, assigning
// the source reloads it and leaves it paused.
type fakeMedia struct {
	mu      sync.Mutex
	src     string
	paused  bool
	playErr error
	plays   int // Play calls
	loads   int // SetSrc calls
	kicks   int // StartInGesture calls
}

func (m *fakeMedia) StartInGesture() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kicks++
}

func newFakeMedia() *fakeMedia { return &fakeMedia{paused: true} }

func (m *fakeMedia) Src() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.src
}

func (m *fakeMedia) SetSrc(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.src = url
	m.paused = true
	m.loads++
}

func (m *fakeMedia) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *fakeMedia) Play(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plays++
	if m.playErr != nil {
		return m.playErr
	}
	m.paused = false
	return nil
}

func (m *fakeMedia) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
}

// fakeFetcher serves asset bytes from memory. The URL doubles as the
// payload so decode failures can be keyed on it.
type fakeFetcher struct {
	mu    sync.Mutex
	errs  map[string]error
	calls map[string]int
	gate  chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{errs: make(map[string]error), calls: make(map[string]int)}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if err := f.errs[url]; err != nil {
		return nil, err
	}
	return []byte(url), nil
}

// staticDecoder decodes without a context, for cache tests.
type staticDecoder struct {
	errs map[string]error
}

func (d staticDecoder) Decode(ctx context.Context, data []byte) (DecodedBuffer, error) {
	if err := d.errs[string(data)]; err != nil {
		return nil, err
	}
	return fakeBuffer{name: string(data)}, nil
}
