// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package searchutil

import (
	"sync"
	"time"
)

// TTLCache is a small in-process cache for provider search results, keyed by
// query fingerprint. Callers must Close() it to stop the cleanup goroutine.
type TTLCache struct {
	items     map[string]*cacheItem
	ttl       time.Duration
	mu        sync.RWMutex
	cleanup   chan struct{}
	closeOnce sync.Once
}

type cacheItem struct {
	value     interface{}
	expiresAt time.Time
}

// NewTTLCache creates a cache whose entries expire after ttl.
func NewTTLCache(ttl time.Duration) *TTLCache {
	cache := &TTLCache{
		items:   make(map[string]*cacheItem),
		ttl:     ttl,
		cleanup: make(chan struct{}),
	}

	go cache.startCleanup()

	return cache
}

// Get retrieves a value by key. Returns nil if the key is absent or expired.
func (c *TTLCache) Get(key string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists {
		return nil
	}

	if time.Now().After(item.expiresAt) {
		// Left for the cleanup goroutine; avoids a write lock on the read path.
		return nil
	}

	return item.value
}

// Set stores a value with the configured TTL.
func (c *TTLCache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &cacheItem{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Delete removes a specific key.
func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Size returns the current number of items, expired entries included.
func (c *TTLCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Close stops the background cleanup goroutine. Safe to call more than once.
func (c *TTLCache) Close() {
	c.closeOnce.Do(func() {
		close(c.cleanup)
	})
}

func (c *TTLCache) startCleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpiredItems()
		case <-c.cleanup:
			return
		}
	}
}

func (c *TTLCache) removeExpiredItems() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
		}
	}
}
