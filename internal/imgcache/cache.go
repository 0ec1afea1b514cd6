// Package imgcache provides the bounded FIFO queues of decoded images: one
// for recently displayed entries (history) and one for entries expected next
// (preload). Eviction is strict insertion order with no promotion on access;
// the queues are a recency window, not an LRU.
//
// Cache mutation always happens while the image-list lock is held, so the
// cache itself carries no lock of its own.
package imgcache

import "glance/internal/imglist"

// Cache is a bounded, insertion-ordered queue of entry references.
type Cache struct {
	entries  []*imglist.Entry
	capacity int
}

// New creates a cache with the given capacity. Capacity 0 is allowed and
// stores nothing. Negative capacity is treated as 0.
func New(capacity int) *Cache {
	if capacity < 0 {
		capacity = 0
	}
	return &Cache{
		entries:  make([]*imglist.Entry, 0, capacity),
		capacity: capacity,
	}
}

// Put attaches ownership of e's payload to the cache, evicting the oldest
// cached payload when at capacity. The evicted entry's node is untouched;
// only its frame memory is released. An entry already cached is moved to the
// newest position rather than referenced twice. Put reports false when e has
// no payload or the cache stores nothing.
func (c *Cache) Put(e *imglist.Entry) bool {
	if c == nil || c.capacity == 0 || e == nil || e.Payload == nil {
		return false
	}
	c.Out(e)
	if len(c.entries) >= c.capacity {
		c.evictOldest()
	}
	c.entries = append(c.entries, e)
	return true
}

// Out removes e from the cache by identity, returning payload ownership to
// the caller. This is the cache-hit path: the payload stays attached to the
// entry. Out reports false when e is not cached; a second Out for the same
// entry has no side effect.
func (c *Cache) Out(e *imglist.Entry) bool {
	if c == nil || e == nil {
		return false
	}
	for i, cached := range c.entries {
		if cached == e {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Trim evicts oldest entries until at most keep remain.
func (c *Cache) Trim(keep int) {
	if c == nil {
		return
	}
	if keep < 0 {
		keep = 0
	}
	for len(c.entries) > keep {
		c.evictOldest()
	}
}

// Cap returns the configured capacity.
func (c *Cache) Cap() int {
	if c == nil {
		return 0
	}
	return c.capacity
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Contains reports whether e is currently cached, without touching it.
func (c *Cache) Contains(e *imglist.Entry) bool {
	if c == nil {
		return false
	}
	for _, cached := range c.entries {
		if cached == e {
			return true
		}
	}
	return false
}

func (c *Cache) evictOldest() {
	oldest := c.entries[0]
	c.entries = c.entries[1:]
	oldest.Payload = nil
}
