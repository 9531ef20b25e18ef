// ABOUTME: Thread-safe TTL cache over Telegram update ids
// ABOUTME: Lets the webhook dispatcher acknowledge redelivered updates without reprocessing

package dedupe

import (
	"container/list"
	"sync"
	"time"
)

// cacheEntry stores the timestamp and list element for a cached update id.
type cacheEntry struct {
	timestamp time.Time
	element   *list.Element
}

// Cache tracks recently seen update ids so redelivered webhook calls can be
// acknowledged without running the state machine twice. TTL-based and
// size-limited; insertion order is kept in a linked list for O(1) eviction.
type Cache struct {
	mu      sync.Mutex
	seen    map[int64]*cacheEntry
	order   *list.List // update ids in insertion order, oldest at front
	ttl     time.Duration
	maxSize int
	done    chan struct{}
	closed  bool
}

// New creates a dedupe cache with the given TTL and maximum size.
// A background goroutine periodically removes expired entries.
func New(ttl time.Duration, maxSize int) *Cache {
	c := &Cache{
		seen:    make(map[int64]*cacheEntry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		done:    make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// CheckAndMark atomically checks whether an update id has been seen and marks
// it if not. Returns true for a duplicate, false for a new id that is now
// marked.
func (c *Cache) CheckAndMark(updateID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.seen[updateID]
	if ok && time.Since(entry.timestamp) < c.ttl {
		return true
	}

	now := time.Now()

	if entry != nil {
		// Expired entry for the same id: refresh in place
		entry.timestamp = now
		c.order.MoveToBack(entry.element)
		return false
	}

	if len(c.seen) >= c.maxSize {
		c.evictOldest()
	}

	elem := c.order.PushBack(updateID)
	c.seen[updateID] = &cacheEntry{timestamp: now, element: elem}
	return false
}

// Forget removes an update id from the cache. Used when processing an update
// failed after it was marked, so the redelivered attempt is not acknowledged
// as a duplicate.
func (c *Cache) Forget(updateID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.seen[updateID]
	if !ok {
		return
	}
	c.order.Remove(entry.element)
	delete(c.seen, updateID)
}

// evictOldest removes the oldest entry. Must be called with mu held.
func (c *Cache) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}

	id, _ := front.Value.(int64)
	c.order.Remove(front)
	delete(c.seen, id)
}

// cleanup runs in a background goroutine, dropping expired entries.
func (c *Cache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.runCleanup()
		case <-c.done:
			return
		}
	}
}

// runCleanup removes all expired entries from the cache.
func (c *Cache) runCleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for id, entry := range c.seen {
		if now.Sub(entry.timestamp) > c.ttl {
			c.order.Remove(entry.element)
			delete(c.seen, id)
		}
	}
}

// Close stops the background cleanup goroutine. Safe to call multiple times.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.done)
		c.closed = true
	}
}
