package lrucached

import (
	"sync"

	"github.com/rcrowley/go-metrics"

	"github.com/skipor/lrucached/cache"
)

// Metric names registered by LockingCache.
const (
	HitsMetric      = "cache.hits"
	MissesMetric    = "cache.misses"
	EvictionsMetric = "cache.evictions"
	SetsMetric      = "cache.sets"
	DeletesMetric   = "cache.deletes"
)

// LockingCache makes cache.Cache safe for concurrent use and counts operations.
// All methods acquire exclusive lock: even hit changes recency order.
type LockingCache struct {
	lock  sync.Mutex
	cache cache.Cache[string, Item]

	hits      metrics.Counter
	misses    metrics.Counter
	evictions metrics.Counter
	sets      metrics.Counter
	deletes   metrics.Counter
}

var _ Cache = (*LockingCache)(nil)

// NewLockingCache wraps c. Counters are registered in r, or in new registry if r is nil.
func NewLockingCache(c cache.Cache[string, Item], r metrics.Registry) *LockingCache {
	if r == nil {
		r = metrics.NewRegistry()
	}
	return &LockingCache{
		cache:     c,
		hits:      metrics.NewRegisteredCounter(HitsMetric, r),
		misses:    metrics.NewRegisteredCounter(MissesMetric, r),
		evictions: metrics.NewRegisteredCounter(EvictionsMetric, r),
		sets:      metrics.NewRegisteredCounter(SetsMetric, r),
		deletes:   metrics.NewRegisteredCounter(DeletesMetric, r),
	}
}

func (c *LockingCache) Set(key string, i Item) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if !c.cache.Contains(key) && c.cache.Len() == c.cache.Capacity() {
		c.evictions.Inc(1)
	}
	c.cache.Put(key, i)
	c.sets.Inc(1)
}

func (c *LockingCache) Get(keys ...[]byte) (views []ItemView) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for _, key := range keys {
		i, ok := c.cache.Get(string(key))
		if !ok {
			c.misses.Inc(1)
			continue
		}
		c.hits.Inc(1)
		views = append(views, ItemView{string(key), i})
	}
	return
}

func (c *LockingCache) Delete(key []byte) (deleted bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	_, deleted = c.cache.Remove(string(key))
	if deleted {
		c.deletes.Inc(1)
	}
	return
}

func (c *LockingCache) Stats() Stats {
	c.lock.Lock()
	defer c.lock.Unlock()
	return Stats{
		Capacity:  c.cache.Capacity(),
		Items:     c.cache.Len(),
		Hits:      c.hits.Count(),
		Misses:    c.misses.Count(),
		Evictions: c.evictions.Count(),
		Sets:      c.sets.Count(),
		Deletes:   c.deletes.Count(),
	}
}
