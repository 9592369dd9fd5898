package radio

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultLoadConcurrency bounds the number of assets fetched at once.
const DefaultLoadConcurrency = 4

// Decoder turns raw asset bytes into a decoded buffer.
type Decoder interface {
	Decode(ctx context.Context, data []byte) (DecodedBuffer, error)
}

// LoadError reports the failure of a single asset.
type LoadError struct {
	Name string
	URL  string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s (%s): %v", e.Name, e.URL, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoopBufferCache fetches and decodes ambient assets once and hands out the
// decoded buffers by name. Every asset loads independently: a failure only
// marks its own entry.
type LoopBufferCache struct {
	fetcher     Fetcher
	decoder     Decoder
	concurrency int
	log         zerolog.Logger

	mu      sync.RWMutex
	buffers map[string]DecodedBuffer
	errs    map[string]error
	loading map[string]bool
}

// NewLoopBufferCache creates an empty cache. concurrency <= 0 uses
// DefaultLoadConcurrency.
func NewLoopBufferCache(fetcher Fetcher, decoder Decoder, concurrency int, logger zerolog.Logger) *LoopBufferCache {
	if concurrency <= 0 {
		concurrency = DefaultLoadConcurrency
	}
	return &LoopBufferCache{
		fetcher:     fetcher,
		decoder:     decoder,
		concurrency: concurrency,
		log:         logger.With().Str("component", "buffers").Logger(),
		buffers:     make(map[string]DecodedBuffer),
		errs:        make(map[string]error),
		loading:     make(map[string]bool),
	}
}

// LoadAll loads every asset concurrently and returns once all of them have
// settled. Buffers become available one by one as they finish. Names that
// are already cached or still loading are skipped. The returned error joins
// one *LoadError per failed asset.
func (c *LoopBufferCache) LoadAll(ctx context.Context, assets map[string]string) error {
	names := make([]string, 0, len(assets))
	for name := range assets {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		g      errgroup.Group
		errMu  sync.Mutex
		failed []error
	)
	g.SetLimit(c.concurrency)

	for _, name := range names {
		name, url := name, assets[name]
		if !c.claim(name) {
			continue
		}
		g.Go(func() error {
			if err := c.load(ctx, name, url); err != nil {
				errMu.Lock()
				failed = append(failed, err)
				errMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(failed, func(i, j int) bool {
		return failed[i].(*LoadError).Name < failed[j].(*LoadError).Name
	})
	return errors.Join(failed...)
}

// Load loads a single asset. It is a no-op if name is cached or loading.
func (c *LoopBufferCache) Load(ctx context.Context, name, url string) error {
	if !c.claim(name) {
		return nil
	}
	return c.load(ctx, name, url)
}

// claim marks name as loading unless it is already cached or in flight.
func (c *LoopBufferCache) claim(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buffers[name] != nil || c.loading[name] {
		return false
	}
	c.loading[name] = true
	return true
}

func (c *LoopBufferCache) load(ctx context.Context, name, url string) error {
	buf, err := c.fetchAndDecode(ctx, url)

	c.mu.Lock()
	delete(c.loading, name)
	if err != nil {
		c.errs[name] = err
	} else {
		c.buffers[name] = buf
		delete(c.errs, name)
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Warn().Err(err).Str("asset", name).Str("url", url).Msg("ambient asset unavailable")
		return &LoadError{Name: name, URL: url, Err: err}
	}
	c.log.Debug().Str("asset", name).Float64("seconds", buf.Duration()).Msg("ambient asset decoded")
	return nil
}

func (c *LoopBufferCache) fetchAndDecode(ctx context.Context, url string) (DecodedBuffer, error) {
	data, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	buf, err := c.decoder.Decode(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if buf == nil {
		return nil, errors.New("decode: empty buffer")
	}
	return buf, nil
}

// Get returns the decoded buffer for name.
func (c *LoopBufferCache) Get(name string) (DecodedBuffer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	buf, ok := c.buffers[name]
	return buf, ok
}

// Ready reports whether name has a decoded buffer.
func (c *LoopBufferCache) Ready(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Err returns the last load error for name, if any.
func (c *LoopBufferCache) Err(name string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errs[name]
}

// Names returns the cached asset names in sorted order.
func (c *LoopBufferCache) Names() []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.buffers))
	for name := range c.buffers {
		names = append(names, name)
	}
	c.mu.RUnlock()
	sort.Strings(names)
	return names
}
