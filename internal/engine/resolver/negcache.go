package resolver

import (
	"sync"

	"go.trai.ch/asmres/internal/core/domain"
)

// NegativeCache remembers identity strings that could not be resolved.
// Successful resolutions are never stored, so hits always reflect the files on disk.
// Every Clear starts a new generation; a miss observed in an older generation can be
// refused with MarkMissingSince.
type NegativeCache struct {
	mu         sync.Mutex
	missing    map[domain.InternedString]struct{}
	generation uint64
}

// NewNegativeCache creates an empty cache.
func NewNegativeCache() *NegativeCache {
	return &NegativeCache{
		missing: make(map[domain.InternedString]struct{}),
	}
}

// MarkMissing records identity as unresolvable.
func (c *NegativeCache) MarkMissing(identity string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.missing[domain.NewInternedString(identity)] = struct{}{}
}

// Generation returns the number of times the cache has been cleared.
func (c *NegativeCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// MarkMissingSince records identity only if the cache has not been cleared since generation.
// It reports whether the miss was recorded.
func (c *NegativeCache) MarkMissingSince(identity string, generation uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != generation {
		return false
	}
	c.missing[domain.NewInternedString(identity)] = struct{}{}
	return true
}

// IsKnownMissing reports whether identity was recorded as unresolvable.
func (c *NegativeCache) IsKnownMissing(identity string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.missing[domain.NewInternedString(identity)]
	return ok
}

// Clear drops every entry and returns how many there were.
func (c *NegativeCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.missing)
	clear(c.missing)
	c.generation++
	return n
}

// Len returns the number of recorded misses.
func (c *NegativeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.missing)
}
