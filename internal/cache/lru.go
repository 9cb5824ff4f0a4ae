// Package cache provides a small bounded LRU used to memoize pure lookups.
package cache

import (
	"container/list"
	"sync"
)

// LRU is a size-bounded least-recently-used cache.
// The zero value is not usable; create one with NewLRU.
type LRU[K comparable, V any] struct {
	mu      sync.Mutex
	maxSize int
	items   map[K]*list.Element
	order   *list.List

	hits, misses int
}

type entry[K comparable, V any] struct {
	key  K
	data V
}

// NewLRU creates a cache holding at most maxSize entries (minimum 1).
func NewLRU[K comparable, V any](maxSize int) *LRU[K, V] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &LRU[K, V]{
		maxSize: maxSize,
		items:   make(map[K]*list.Element),
		order:   list.New(),
	}
}

// Get retrieves a value and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.order.MoveToFront(elem)
	return elem.Value.(*entry[K, V]).data, true
}

// Set stores a value, evicting the least recently used entry when full.
func (c *LRU[K, V]) Set(key K, data V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value.(*entry[K, V]).data = data
		c.order.MoveToFront(elem)
		return
	}

	c.items[key] = c.order.PushFront(&entry[K, V]{key: key, data: data})

	if c.order.Len() > c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry[K, V]).key)
		}
	}
}

// GetOrCompute returns the cached value for key, computing and storing it on a miss.
func (c *LRU[K, V]) GetOrCompute(key K, compute func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := compute()
	c.Set(key, v)
	return v
}

// Size returns the current number of entries.
func (c *LRU[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns hit and miss counters since creation.
func (c *LRU[K, V]) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
