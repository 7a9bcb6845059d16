package lrucached

import (
	"github.com/skipor/lrucached/cache"
	"github.com/skipor/lrucached/log"
)

// LoggingCache logs entry state transitions of wrapped cache.
// It adds no synchronization: it is as safe for concurrent use, as wrapped cache.
//
// Transitions:
// absent -> present on put of new key. If cache is full, oldest key evicted before.
// present -> present on put of existing key or get hit. Key becomes most recently used.
// present -> absent on eviction or remove.
type LoggingCache[K comparable, V any] struct {
	cache cache.Cache[K, V]
	log   log.Logger
}

var _ cache.Cache[string, Item] = (*LoggingCache[string, Item])(nil)

func NewLoggingCache[K comparable, V any](l log.Logger, c cache.Cache[K, V]) *LoggingCache[K, V] {
	return &LoggingCache[K, V]{cache: c, log: l}
}

func (c *LoggingCache[K, V]) Put(key K, value V) {
	switch {
	case c.cache.Contains(key):
		c.log.Debugf("Put %v: overwrite. Most recently used now.", key)
	case c.cache.Len() == c.cache.Capacity():
		oldest, _ := c.cache.Oldest()
		c.log.Debugf("Put %v: cache is full, evict least recently used %v.", key, oldest)
	default:
		c.log.Debugf("Put %v: insert. Most recently used now.", key)
	}
	c.cache.Put(key, value)
}

func (c *LoggingCache[K, V]) Get(key K) (value V, ok bool) {
	value, ok = c.cache.Get(key)
	if ok {
		c.log.Debugf("Get %v: hit. Most recently used now.", key)
	} else {
		c.log.Debugf("Get %v: miss.", key)
	}
	return
}

func (c *LoggingCache[K, V]) Remove(key K) (value V, ok bool) {
	value, ok = c.cache.Remove(key)
	if ok {
		c.log.Debugf("Remove %v: removed.", key)
	} else {
		c.log.Debugf("Remove %v: not found.", key)
	}
	return
}

func (c *LoggingCache[K, V]) Contains(key K) bool     { return c.cache.Contains(key) }
func (c *LoggingCache[K, V]) Oldest() (key K, ok bool) { return c.cache.Oldest() }
func (c *LoggingCache[K, V]) Keys() []K                { return c.cache.Keys() }
func (c *LoggingCache[K, V]) Len() int                 { return c.cache.Len() }
func (c *LoggingCache[K, V]) Capacity() int            { return c.cache.Capacity() }
