package reconcile

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache holds both indices of a reconciliation.
type Cache struct {
	// SourceIndex maps relative keys to source objects.
	SourceIndex map[string]Entry

	// ContainerIndex maps relative keys to blobs.
	ContainerIndex map[string]Entry

	// Built is when the indices were loaded.
	Built time.Time

	// TTL is how long the cache stays fresh.
	TTL time.Duration
}

// IsExpired reports whether the cache must be rebuilt.
func (c *Cache) IsExpired() bool {
	if c.TTL == 0 {
		return true
	}
	return time.Since(c.Built) > c.TTL
}

type cacheStore struct {
	mu     sync.RWMutex
	caches map[string]*Cache
	sf     singleflight.Group
}

var globalCacheStore = &cacheStore{
	caches: make(map[string]*Cache),
}

// BuildCache loads both indices concurrently. The result is not stored; use
// GetOrBuildCache for that.
func BuildCache(ctx context.Context, spec *Spec) (*Cache, error) {
	var (
		sourceIndex    map[string]Entry
		containerIndex map[string]Entry
		sourceErr      error
		containerErr   error
		wg             sync.WaitGroup
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		sourceIndex, sourceErr = spec.Adapter.LoadSourceIndex(ctx, spec.Bucket, spec.SourcePrefix)
	}()

	go func() {
		defer wg.Done()
		containerIndex, containerErr = spec.Adapter.LoadContainerIndex(ctx, spec.ContainerPrefix)
	}()

	wg.Wait()

	if sourceErr != nil {
		return nil, sourceErr
	}
	if containerErr != nil {
		return nil, containerErr
	}

	return &Cache{
		SourceIndex:    sourceIndex,
		ContainerIndex: containerIndex,
		Built:          time.Now(),
		TTL:            spec.CacheTTL,
	}, nil
}

// GetOrBuildCache returns the stored cache for spec, rebuilding it when missing or
// expired. Concurrent callers for the same spec share one build.
func GetOrBuildCache(ctx context.Context, spec *Spec) (*Cache, error) {
	key := spec.CacheKey()

	globalCacheStore.mu.RLock()
	cache, ok := globalCacheStore.caches[key]
	globalCacheStore.mu.RUnlock()
	if ok && !cache.IsExpired() {
		return cache, nil
	}

	result, err, _ := globalCacheStore.sf.Do(key, func() (any, error) {
		globalCacheStore.mu.RLock()
		cache, ok := globalCacheStore.caches[key]
		globalCacheStore.mu.RUnlock()
		if ok && !cache.IsExpired() {
			return cache, nil
		}

		fresh, err := BuildCache(ctx, spec)
		if err != nil {
			return nil, err
		}

		globalCacheStore.mu.Lock()
		globalCacheStore.caches[key] = fresh
		globalCacheStore.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Cache), nil
}

// InvalidateCache drops the stored cache for spec.
func InvalidateCache(spec *Spec) {
	key := spec.CacheKey()
	globalCacheStore.mu.Lock()
	delete(globalCacheStore.caches, key)
	globalCacheStore.mu.Unlock()
}
