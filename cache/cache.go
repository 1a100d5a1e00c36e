package cache

import (
	"sync"

	"github.com/siddheshzz/galileo/render"
	"github.com/siddheshzz/galileo/tile"
)

// DefaultBudget is the default primitive weight budget in bytes.
const DefaultBudget = 256 << 20

// entryOverhead approximates the fixed bookkeeping cost per entry (map
// slot, list node, slice header), counted toward the budget so empty
// tiles are not free.
const entryOverhead = 96

// entry is one resident tile: the complete primitive set produced for a
// request, its byte weight and its pin count.
type entry struct {
	prims  []*render.Primitive
	weight int
	pins   int
	node   *lruNode
}

// TileCache stores tessellated tile primitives under a byte budget.
//
// Entries are whole per-tile primitive sets keyed by tile.Request; an
// entry is inserted complete and evicted complete, so readers never
// observe a partial layer set. Eviction is least recently used,
// weighted by primitive byte size rather than entry count, and runs on
// insert whenever the resident weight exceeds the budget. Entries
// pinned by an in-flight frame are skipped; the scan resumes at the
// next candidate.
//
// The cache owns one reference per resident primitive and drops it on
// eviction. Frames that retained a primitive keep its buffers alive
// past eviction; the GPU release fires once, when the last reference
// goes.
//
// TileCache is safe for concurrent use and must not be copied.
type TileCache struct {
	mu      sync.Mutex
	budget  int
	weight  int
	entries map[tile.Request]*entry
	lru     lruList

	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates a cache bounded to budget bytes of primitive weight.
// A budget of 0 or less means unbounded; EvictToBudget still works.
func New(budget int) *TileCache {
	return &TileCache{
		budget:  budget,
		entries: make(map[tile.Request]*entry),
	}
}

// Get returns the primitive set cached for req and marks the entry
// recently used. The slice is owned by the cache: callers that hold on
// to primitives past the next cache call must pin the entry first, or
// retain the primitives, before letting go of the lock implied here.
func (c *TileCache) Get(req tile.Request) ([]*render.Primitive, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[req]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.lru.MoveToFront(e.node)
	return e.prims, true
}

// Has reports whether req is resident. Unlike Get it does not touch
// recency or hit accounting; coordinators use it to skip duplicate
// work without distorting eviction order.
func (c *TileCache) Has(req tile.Request) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[req]
	return ok
}

// Insert stores the complete primitive set for req, taking ownership of
// one reference per primitive. A set may be empty: that records the
// tile as resolved with nothing to draw. An existing entry for the same
// request is replaced and its primitives released; pins carry over to
// the replacement. Inserting evicts down to the budget afterwards.
func (c *TileCache) Insert(req tile.Request, prims []*render.Primitive) {
	w := entryOverhead
	for _, p := range prims {
		w += p.Weight()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	pins := 0
	if old, ok := c.entries[req]; ok {
		pins = old.pins
		c.removeLocked(req, old)
	}
	c.entries[req] = &entry{
		prims:  prims,
		weight: w,
		pins:   pins,
		node:   c.lru.PushFront(req),
	}
	c.weight += w

	if c.budget > 0 {
		c.evictLocked(c.budget)
	}
}

// Pin marks req's entry as referenced by an in-flight frame. Pinned
// entries are never evicted or purged until the matching Unpin. Returns
// false when req is not resident. Pins nest.
func (c *TileCache) Pin(req tile.Request) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[req]
	if !ok {
		return false
	}
	e.pins++
	return true
}

// Unpin reverses one Pin. Unpinning an absent or unpinned entry is a
// no-op; the count never goes below zero.
func (c *TileCache) Unpin(req tile.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[req]; ok && e.pins > 0 {
		e.pins--
	}
}

// EvictToBudget evicts least recently used unpinned entries until the
// resident weight is at most maxBytes.
func (c *TileCache) EvictToBudget(maxBytes int) {
	c.mu.Lock()
	c.evictLocked(maxBytes)
	c.mu.Unlock()
}

// PurgeVersion removes every unpinned entry tagged with the given style
// version and returns the number removed. Other versions are untouched;
// superseded versions not purged simply age out under budget pressure.
func (c *TileCache) PurgeVersion(version string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for n := c.lru.Back(); n != nil; {
		prev := n.prev
		if n.key.StyleVersion == version {
			if e := c.entries[n.key]; e.pins == 0 {
				c.removeLocked(n.key, e)
				removed++
			}
		}
		n = prev
	}
	return removed
}

// Clear removes every entry, pinned or not, releasing the cache's
// primitive references. Frames still holding retained primitives keep
// them alive. Intended for engine teardown.
func (c *TileCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for n := c.lru.Back(); n != nil; {
		prev := n.prev
		c.removeLocked(n.key, c.entries[n.key])
		n = prev
	}
}

// Weight returns the current resident weight in bytes.
func (c *TileCache) Weight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.weight
}

// Len returns the number of resident entries.
func (c *TileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Budget returns the configured weight budget in bytes.
func (c *TileCache) Budget() int {
	return c.budget
}

// Stats returns a snapshot of cache counters.
func (c *TileCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Len:       c.lru.Len(),
		Weight:    c.weight,
		Budget:    c.budget,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}

// evictLocked walks the recency list from the tail, removing unpinned
// entries until the weight target is met or only pinned entries remain.
// Caller holds c.mu.
func (c *TileCache) evictLocked(maxBytes int) {
	if maxBytes < 0 {
		maxBytes = 0
	}
	for n := c.lru.Back(); n != nil && c.weight > maxBytes; {
		prev := n.prev
		if e := c.entries[n.key]; e.pins == 0 {
			c.removeLocked(n.key, e)
			c.evictions++
		}
		n = prev
	}
}

// removeLocked drops an entry and releases its primitive references.
// Caller holds c.mu.
func (c *TileCache) removeLocked(req tile.Request, e *entry) {
	delete(c.entries, req)
	c.lru.Remove(e.node)
	c.weight -= e.weight
	for _, p := range e.prims {
		p.Release()
	}
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	// Len is the number of resident entries.
	Len int
	// Weight is the resident primitive weight in bytes.
	Weight int
	// Budget is the configured weight budget, 0 when unbounded.
	Budget int
	// Hits and Misses count Get outcomes.
	Hits   uint64
	Misses uint64
	// Evictions counts entries removed by budget pressure.
	Evictions uint64
	// HitRate is Hits over total lookups, 0.0 to 1.0.
	HitRate float64
}
