// Package listcache caches scoped, paginated resource listings. Entries are
// tagged with generation counters per resource type and per actor, so
// invalidation is a counter bump that makes every affected key unreachable
// instead of an enumeration over page numbers and sizes. A TTL backstop
// bounds staleness for anything a racing reader manages to slip in.
package listcache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinrec/clinrec/internal/access"
)

// DefaultTTL matches the five-minute lifetime the listing pages had before
// generation tagging existed.
const DefaultTTL = 5 * time.Minute

// Key identifies one cached listing page: who is asking, as what role, for
// which resource, and which page.
type Key struct {
	ActorID  uuid.UUID
	Role     access.Role
	Resource access.Resource
	Page     int
	PageSize int
}

// entryKey extends Key with the generations observed when the entry was
// computed. Bumping either generation orphans the entry.
type entryKey struct {
	Key
	resourceGen uint64
	actorGen    uint64
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Cache is a concurrent scoped-listing cache. Lookups and invalidations for
// unrelated actors and resource types never block each other beyond the
// shared map lock.
type Cache struct {
	mu          sync.RWMutex
	entries     map[entryKey]entry
	resourceGen map[access.Resource]uint64
	actorGen    map[uuid.UUID]uint64
	ttl         time.Duration
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries:     make(map[entryKey]entry),
		resourceGen: make(map[access.Resource]uint64),
		actorGen:    make(map[uuid.UUID]uint64),
		ttl:         ttl,
	}
}

// GetOrCompute returns the cached page for key, computing and storing it on
// a miss. The computed value is stored only on success and only when the
// caller's context is still live, so an abandoned request never leaves a
// half-populated entry. Concurrent computes for the same key are allowed;
// last write wins, which is safe because both saw the same generations.
func (c *Cache) GetOrCompute(ctx context.Context, key Key, compute func(context.Context) (interface{}, error)) (interface{}, error) {
	ek := c.currentKey(key)

	c.mu.RLock()
	e, ok := c.entries[ek]
	c.mu.RUnlock()
	if ok {
		if time.Now().Before(e.expiresAt) {
			return e.value, nil
		}
		c.mu.Lock()
		delete(c.entries, ek)
		c.mu.Unlock()
	}

	value, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return value, nil
	}

	c.mu.Lock()
	c.entries[ek] = entry{value: value, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
	return value, nil
}

// currentKey stamps key with the generations in force right now.
func (c *Cache) currentKey(key Key) entryKey {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return entryKey{
		Key:         key,
		resourceGen: c.resourceGen[key.Resource],
		actorGen:    c.actorGen[key.ActorID],
	}
}

// InvalidateResource drops every cached page of the given resource type,
// for every actor, page and page size.
func (c *Cache) InvalidateResource(res access.Resource) {
	c.mu.Lock()
	c.resourceGen[res]++
	c.mu.Unlock()
}

// InvalidateActor drops every cached page belonging to one actor.
func (c *Cache) InvalidateActor(actorID uuid.UUID) {
	c.mu.Lock()
	c.actorGen[actorID]++
	c.mu.Unlock()
}

// Len reports the number of stored entries, including orphaned ones not yet
// swept.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// StartCleanup runs a background goroutine that sweeps expired and orphaned
// entries until the context is cancelled.
func (c *Cache) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

func (c *Cache) sweep() {
	now := time.Now()
	c.mu.Lock()
	for k, e := range c.entries {
		if now.After(e.expiresAt) ||
			k.resourceGen != c.resourceGen[k.Resource] ||
			k.actorGen != c.actorGen[k.ActorID] {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}
