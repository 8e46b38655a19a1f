package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache maps asset ids to decoded buffers for the lifetime of an editing
// session. Entries are never evicted or replaced. Cache is safe for
// concurrent use.
type Cache struct {
	fetcher Fetcher
	logger  *slog.Logger

	mu      sync.Mutex
	buffers map[string]*Buffer
	group   singleflight.Group
}

// NewCache returns an empty cache that loads missing assets with f. A nil
// logger means slog.Default().
func NewCache(f Fetcher, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{fetcher: f, logger: logger, buffers: map[string]*Buffer{}}
}

func (c *Cache) Get(assetID string) (*Buffer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.buffers[assetID]
	return b, ok
}

// Put stores b unless the asset is already cached, and returns the cached
// buffer.
func (c *Cache) Put(assetID string, b *Buffer) *Buffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.buffers[assetID]; ok {
		return old
	}
	c.buffers[assetID] = b
	return b
}

// Load returns the buffer of an asset, fetching and decoding it if it is not
// cached. Concurrent loads of the same asset share one fetch and decode.
// Failures are not cached, so a later Load tries again.
func (c *Cache) Load(ctx context.Context, assetID string) (*Buffer, error) {
	if b, ok := c.Get(assetID); ok {
		return b, nil
	}
	v, err, _ := c.group.Do(assetID, func() (any, error) {
		if b, ok := c.Get(assetID); ok {
			return b, nil
		}
		if c.fetcher == nil {
			return nil, fmt.Errorf("asset %v is not cached and there is no fetcher", assetID)
		}
		data, err := c.fetcher.Fetch(ctx, assetID)
		if err != nil {
			return nil, err
		}
		b, err := Decode(data)
		if err != nil {
			return nil, fmt.Errorf("could not decode asset %v: %w", assetID, err)
		}
		c.logger.Debug("decoded audio asset", "asset", assetID, "sampleRate", b.SampleRate, "channels", b.Channels, "seconds", b.Duration())
		return c.Put(assetID, b), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Buffer), nil
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buffers)
}
