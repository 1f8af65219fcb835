// ABOUTME: Generic thread-safe TTL set with bounded size.
// ABOUTME: Used by the transport to remember refresh tokens the server already rejected.

package dedupe

import (
	"container/list"
	"sync"
	"time"
)

type entry[K comparable] struct {
	key   K
	added time.Time
}

// Cache is a bounded set whose members expire after a TTL. When full, the oldest
// member is evicted.
type Cache[K comparable] struct {
	mu      sync.Mutex
	members map[K]*list.Element
	order   *list.List // oldest at front
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	done    chan struct{}
	closed  bool
}

// New creates a cache and starts a janitor goroutine that sweeps expired members
// every sweep interval. Call Close to stop it.
func New[K comparable](ttl time.Duration, maxSize int, sweep time.Duration) *Cache[K] {
	c := &Cache[K]{
		members: make(map[K]*list.Element),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	if sweep > 0 {
		go c.janitor(sweep)
	}
	return c
}

// Contains reports whether key was added and has not expired.
func (c *Cache[K]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.members[key]
	if !ok {
		return false
	}
	return c.now().Sub(el.Value.(*entry[K]).added) < c.ttl
}

// Add inserts key, refreshing its TTL if already present.
// Returns true if the key was not already a live member.
func (c *Cache[K]) Add(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if el, ok := c.members[key]; ok {
		e := el.Value.(*entry[K])
		live := now.Sub(e.added) < c.ttl
		e.added = now
		c.order.MoveToBack(el)
		return !live
	}

	if c.maxSize > 0 && len(c.members) >= c.maxSize {
		c.evictOldestLocked()
	}
	c.members[key] = c.order.PushBack(&entry[K]{key: key, added: now})
	return true
}

// Remove deletes key if present.
func (c *Cache[K]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.members[key]; ok {
		c.order.Remove(el)
		delete(c.members, key)
	}
}

// Len returns the number of stored members, including expired ones not yet swept.
func (c *Cache[K]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.members)
}

// Sweep removes every expired member.
func (c *Cache[K]) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		e := el.Value.(*entry[K])
		if now.Sub(e.added) >= c.ttl {
			c.order.Remove(el)
			delete(c.members, e.key)
		}
		el = next
	}
}

// evictOldestLocked drops the front of the order list. Must be called with mu held.
func (c *Cache[K]) evictOldestLocked() {
	front := c.order.Front()
	if front == nil {
		return
	}
	c.order.Remove(front)
	delete(c.members, front.Value.(*entry[K]).key)
}

func (c *Cache[K]) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-c.done:
			return
		}
	}
}

// Close stops the janitor. It is safe to call multiple times.
func (c *Cache[K]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		close(c.done)
		c.closed = true
	}
}
