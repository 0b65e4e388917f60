// Package cache provides the bounded in-memory caches that front expensive
// metadata extraction during a library sync.
package cache

import (
	"container/list"
	"sync"
)

type entry[K comparable, V any] struct {
	key   K
	value V
}

// LRU is a fixed-capacity cache evicting the least-recently-accessed entry.
// Both Get and Put refresh recency. All operations are safe for concurrent
// use; the internal lock is held only for the map and list mutation, never
// across any caller I/O.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]*list.Element
	order    *list.List // front = most recently used
}

// NewLRU creates an LRU cache holding at most capacity entries.
// Capacity must be positive.
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
	}
}

// Get returns the cached value for key and refreshes its recency.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*entry[K, V]).value, true
}

// Put stores value under key, evicting the least-recently-used entry when the
// cache is full.
func (c *LRU[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value.(*entry[K, V]).value = value
		c.order.MoveToFront(elem)
		return
	}

	c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value})

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry[K, V]).key)
		}
	}
}

// Remove drops key from the cache if present.
func (c *LRU[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.Remove(elem)
		delete(c.items, key)
	}
}

// Len returns the current number of cached entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// NegativeSet records keys known to yield no value, so repeated extraction
// attempts can be skipped until the mark is cleared.
type NegativeSet[K comparable] struct {
	mu   sync.Mutex
	keys map[K]struct{}
}

// NewNegativeSet creates an empty negative set.
func NewNegativeSet[K comparable]() *NegativeSet[K] {
	return &NegativeSet[K]{keys: make(map[K]struct{})}
}

// Mark records key as known-absent.
func (s *NegativeSet[K]) Mark(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = struct{}{}
}

// Has reports whether key is marked as known-absent.
func (s *NegativeSet[K]) Has(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key]
	return ok
}

// Clear removes the known-absent mark for key.
func (s *NegativeSet[K]) Clear(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
}
