package scheduler

import "sync"

// ActiveCache remembers, per group, the campaign id the monitor last saw as
// active. A group that is absent has not been observed yet.
type ActiveCache struct {
	mu     sync.Mutex
	active map[uint]*uint
}

func NewActiveCache() *ActiveCache {
	return &ActiveCache{active: make(map[uint]*uint)}
}

// Get returns the cached active campaign id (nil for none) and whether the
// group has been observed.
func (c *ActiveCache) Get(groupID uint) (*uint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.active[groupID]
	return copyID(id), ok
}

func (c *ActiveCache) Set(groupID uint, campaignID *uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active[groupID] = copyID(campaignID)
}

// Reset forgets the group so the next tick re-observes it.
func (c *ActiveCache) Reset(groupID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.active, groupID)
}

// Snapshot copies the cache for logging and tests.
func (c *ActiveCache) Snapshot() map[uint]*uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[uint]*uint, len(c.active))
	for g, id := range c.active {
		out[g] = copyID(id)
	}
	return out
}

func copyID(id *uint) *uint {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func sameID(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
