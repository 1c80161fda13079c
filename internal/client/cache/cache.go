package cache

import (
	"context"
	"time"

	"restaurant_pos/internal/client/storage"
)

// Source reports where a read result came from.
type Source string

const (
	SourceCache   Source = "cache"
	SourceNetwork Source = "network"
	SourceNone    Source = "none"
)

// Entry is one stored snapshot.
type Entry struct {
	Data      []byte
	UpdatedAt time.Time
}

// Result is what a cache-first read hands to the UI. Staleness is advisory:
// stale data is still rendered, just marked.
type Result struct {
	Data      []byte
	Source    Source
	IsStale   bool
	UpdatedAt time.Time
}

// Cache is the durable snapshot store for reference and list data, keyed by
// logical resource name. Writes are whole-document replacements.
type Cache struct {
	store storage.Store
	now   func() time.Time
}

func New(store storage.Store) *Cache {
	return &Cache{store: store, now: time.Now}
}

func (c *Cache) Save(key string, data []byte) error {
	return c.store.SaveSnapshot(key, data, c.now())
}

// Load returns the snapshot for key, or nil when none exists. Callers render
// it immediately (source=cache) before any network round trip.
func (c *Cache) Load(key string) (*Entry, error) {
	snapshot, err := c.store.LoadSnapshot(key)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, nil
	}
	return &Entry{Data: snapshot.Data, UpdatedAt: snapshot.UpdatedAt}, nil
}

// FetchFunc performs the network read for one resource.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Fetcher applies the cache-first read policy on top of the snapshot store.
type Fetcher struct {
	cache     *Cache
	staleness time.Duration
}

func NewFetcher(cache *Cache, staleness time.Duration) *Fetcher {
	return &Fetcher{cache: cache, staleness: staleness}
}

// Fetch resolves one resource: on network success the snapshot is
// overwritten and the fresh data returned (source=network); on network
// failure the cached value is returned with its staleness computed
// (source=cache); with neither, source=none and the UI must surface an
// explicit no-data state rather than rendering nothing.
func (f *Fetcher) Fetch(ctx context.Context, key string, fetch FetchFunc) (*Result, error) {
	cached, err := f.cache.Load(key)
	if err != nil {
		return nil, err
	}

	data, netErr := fetch(ctx)
	if netErr == nil {
		if err := f.cache.Save(key, data); err != nil {
			return nil, err
		}
		return &Result{Data: data, Source: SourceNetwork, UpdatedAt: f.cache.now()}, nil
	}

	if cached != nil {
		age := f.cache.now().Sub(cached.UpdatedAt)
		return &Result{
			Data:      cached.Data,
			Source:    SourceCache,
			IsStale:   age > f.staleness,
			UpdatedAt: cached.UpdatedAt,
		}, nil
	}

	return &Result{Source: SourceNone}, netErr
}
