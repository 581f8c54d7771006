package caches

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes computations for the lifetime of one session.
// At most one computation runs per key; concurrent requesters share its result.
type Cache[K comparable, V any] struct {
	mu     sync.RWMutex
	values map[K]V
	group  singleflight.Group

	computations atomic.Int64
	hits         atomic.Int64
	shared       atomic.Int64
}

func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		values: make(map[K]V),
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

func (c *Cache[K, V]) GetOrCompute(key K, compute func() V) V {
	if v, ok := c.Get(key); ok {
		c.hits.Add(1)
		return v
	}

	ret, _, shared := c.group.Do(fmt.Sprint(key), func() (any, error) {
		// a computation may have finished between Get and Do
		if v, ok := c.Get(key); ok {
			c.hits.Add(1)
			return v, nil
		}
		c.computations.Add(1)
		v := compute()
		c.mu.Lock()
		c.values[key] = v
		c.mu.Unlock()
		return v, nil
	})
	if shared {
		c.shared.Add(1)
	}
	return ret.(V)
}

func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}

type Stats struct {
	Computations int64
	Hits         int64
	Shared       int64
	Entries      int
}

func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Computations: c.computations.Load(),
		Hits:         c.hits.Load(),
		Shared:       c.shared.Load(),
		Entries:      c.Len(),
	}
}
