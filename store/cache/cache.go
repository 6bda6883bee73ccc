// Package cache provides a small in-process TTL cache used for read-heavy
// collaborator data (weather and market snapshots).
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Config controls cache behavior.
type Config struct {
	// DefaultTTL is applied by Set. Zero means entries never expire.
	DefaultTTL time.Duration
	// CleanupInterval is how often the janitor sweeps expired entries.
	// Zero disables the janitor; expired entries are then dropped lazily on Get.
	CleanupInterval time.Duration
	// MaxItems caps the number of live entries; the least recently used entry
	// is evicted when the cap is exceeded. Zero means unbounded.
	MaxItems int
	// OnEviction, if set, is called for every evicted or expired entry.
	OnEviction func(key string, value any)
}

type entry struct {
	key       string
	value     any
	expiresAt time.Time // zero means no expiry
	elem      *list.Element
}

// Cache is a thread-safe TTL + LRU cache.
type Cache struct {
	mu      sync.Mutex
	items   map[string]*entry
	order   *list.List // front = most recently used
	config  Config
	done    chan struct{}
	closeMu sync.Once
}

// New creates a cache and starts its janitor when CleanupInterval is set.
func New(config Config) *Cache {
	c := &Cache{
		items:  make(map[string]*entry),
		order:  list.New(),
		config: config,
		done:   make(chan struct{}),
	}
	if config.CleanupInterval > 0 {
		go c.janitor()
	}
	return c
}

// Get returns the value for key and whether it was present and fresh.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		c.removeLocked(e)
		return nil, false
	}
	c.order.MoveToFront(e.elem)
	return e.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.config.DefaultTTL)
}

// SetWithTTL stores value under key with an explicit TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.order.MoveToFront(e.elem)
		return
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	e.elem = c.order.PushFront(e)
	c.items[key] = e

	if c.config.MaxItems > 0 && len(c.items) > c.config.MaxItems {
		if back := c.order.Back(); back != nil {
			c.removeLocked(back.Value.(*entry))
		}
	}
}

// Delete removes key if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[key]; ok {
		c.removeLocked(e)
	}
}

// Len returns the number of live entries, including not-yet-swept expired ones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Close stops the janitor goroutine.
func (c *Cache) Close() {
	c.closeMu.Do(func() { close(c.done) })
}

func (c *Cache) removeLocked(e *entry) {
	c.order.Remove(e.elem)
	delete(c.items, e.key)
	if c.config.OnEviction != nil {
		c.config.OnEviction(e.key, e.value)
	}
}

func (c *Cache) janitor() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for _, e := range c.items {
				if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
					c.removeLocked(e)
				}
			}
			c.mu.Unlock()
		}
	}
}
