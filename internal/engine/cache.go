package engine

import "sync"

// PrevCache holds the last fog value computed in this process for each user.
// It stands in when the persisted value cannot be read.
type PrevCache struct {
	mu     sync.Mutex
	values map[string]float64
}

// NewPrevCache returns an empty cache.
func NewPrevCache() *PrevCache {
	return &PrevCache{values: make(map[string]float64)}
}

// Get returns the cached value for userID.
func (c *PrevCache) Get(userID string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[userID]
	return v, ok
}

// Put replaces the cached value for userID.
func (c *PrevCache) Put(userID string, v float64) {
	c.mu.Lock()
	c.values[userID] = v
	c.mu.Unlock()
}

// Len returns the number of cached users.
func (c *PrevCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.values)
}
