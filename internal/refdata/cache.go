// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refdata loads and caches the reference collection used to place
// similarity results on the projection.
//
// The collection is fetched once per process through a single-flight guard:
// concurrent callers share one download instead of racing. A SQLite
// snapshot avoids refetching across process runs while fresh.
package refdata

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/seqatlas/internal/accession"
	"github.com/pdiddy/seqatlas/pkg/types"
)

// LoadState tracks where the cache is in its lifecycle.
type LoadState int

const (
	StateEmpty LoadState = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s LoadState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Fetcher downloads the reference collection. *api.Client satisfies it.
type Fetcher interface {
	Reference(ctx context.Context) ([]types.ReferenceEntry, error)
}

// Cache holds the loaded reference collection and its prebuilt accession
// index. Safe for concurrent use. A nil store disables snapshots.
type Cache struct {
	fetcher Fetcher
	store   *Store

	group singleflight.Group

	mu       sync.RWMutex
	state    LoadState
	entries  []types.ReferenceEntry
	index    *accession.Index
	loadedAt time.Time
	lastErr  error
}

// NewCache builds a cache over fetcher. store may be nil.
func NewCache(fetcher Fetcher, store *Store) *Cache {
	return &Cache{fetcher: fetcher, store: store}
}

// EnsureLoaded returns the accession index, loading the collection first if
// needed. Concurrent callers while a load is in flight share that single
// load and all receive its outcome. A failed load leaves the cache in
// StateFailed and every waiter gets the same CacheLoadError; the next
// EnsureLoaded call starts a fresh attempt.
func (c *Cache) EnsureLoaded(ctx context.Context) (*accession.Index, error) {
	c.mu.RLock()
	if c.state == StateLoaded {
		idx := c.index
		c.mu.RUnlock()
		return idx, nil
	}
	c.mu.RUnlock()

	// The flight is detached from the initiating caller's cancellation;
	// each waiter honors its own context below.
	ch := c.group.DoChan("load", func() (any, error) {
		return c.load(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*accession.Index), nil
	}
}

func (c *Cache) load(ctx context.Context) (*accession.Index, error) {
	c.mu.Lock()
	c.state = StateLoading
	c.mu.Unlock()

	if c.store != nil {
		entries, fresh, err := c.store.Load(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: reference snapshot unreadable: %v\n", err)
		} else if fresh {
			return c.swap(entries), nil
		}
	}

	entries, err := c.fetcher.Reference(ctx)
	if err != nil {
		c.mu.Lock()
		c.state = StateFailed
		c.lastErr = err
		c.mu.Unlock()
		return nil, &types.CacheLoadError{Err: err}
	}

	if c.store != nil {
		if err := c.store.Save(ctx, entries); err != nil {
			fmt.Fprintf(os.Stderr, "warning: reference snapshot not saved: %v\n", err)
		}
	}
	return c.swap(entries), nil
}

// swap installs a freshly loaded collection. Readers see either the old
// index or the new one, never a partial build.
func (c *Cache) swap(entries []types.ReferenceEntry) *accession.Index {
	idx := accession.NewIndex(entries)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = idx.Entries()
	c.index = idx
	c.state = StateLoaded
	c.loadedAt = time.Now()
	c.lastErr = nil
	return idx
}

// Refresh forces a network refetch regardless of cache or snapshot state.
func (c *Cache) Refresh(ctx context.Context) error {
	entries, err := c.fetcher.Reference(ctx)
	if err != nil {
		return &types.CacheLoadError{Err: err}
	}
	if c.store != nil {
		if err := c.store.Save(ctx, entries); err != nil {
			fmt.Fprintf(os.Stderr, "warning: reference snapshot not saved: %v\n", err)
		}
	}
	c.swap(entries)
	return nil
}

// Lookup returns the entry for an exact canonical accession, or nil when
// absent or not yet loaded.
func (c *Cache) Lookup(acc string) *types.ReferenceEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.index == nil {
		return nil
	}
	return c.index.Get(acc)
}

// Index returns the current accession index, nil before the first
// successful load.
func (c *Cache) Index() *accession.Index {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index
}

// Entries returns the loaded collection in load order.
func (c *Cache) Entries() []types.ReferenceEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries
}

// State reports the cache lifecycle state.
func (c *Cache) State() LoadState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// LoadedAt returns when the current collection was installed.
func (c *Cache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}
