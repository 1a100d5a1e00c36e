// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

package text

import (
	"sync"
	"sync/atomic"

	"golang.org/x/image/math/fixed"
)

// RunCacheConfig holds configuration for RunCache.
type RunCacheConfig struct {
	// MaxEntries is the maximum number of cached shaped runs.
	// Default: 2048
	MaxEntries int

	// FrameLifetime is the number of frames an entry can go unused before
	// becoming eligible for eviction during Maintain().
	// Default: 64
	FrameLifetime int
}

// DefaultRunCacheConfig returns the default cache configuration.
func DefaultRunCacheConfig() RunCacheConfig {
	return RunCacheConfig{
		MaxEntries:    2048,
		FrameLifetime: 64,
	}
}

type runKey struct {
	source *FontSource
	size   fixed.Int26_6
	text   string
}

type runEntry struct {
	key    runKey
	glyphs []ShapedGlyph

	// prev and next for the per-shard LRU list
	prev *runEntry
	next *runEntry

	// lastAccessFrame drives frame-based eviction in Maintain()
	lastAccessFrame uint64
}

// numRunShards is the number of cache shards for reduced lock contention.
const numRunShards = 16

// RunCache memoizes shaped label runs. Shaping the same label text at the
// same size for every tile would dominate tessellation cost; labels repeat
// heavily across tiles and zoom levels.
//
// The cache is sharded, bounded by entry count with LRU eviction, and also
// evicts entries unused for FrameLifetime frames during Maintain().
// RunCache is safe for concurrent use.
type RunCache struct {
	shards [numRunShards]*runShard
	config RunCacheConfig

	// currentFrame is advanced by Maintain once per composed frame.
	currentFrame atomic.Uint64

	stats RunCacheStats
}

type runShard struct {
	mu sync.Mutex

	entries map[runKey]*runEntry

	// head is most recently used, tail least
	head *runEntry
	tail *runEntry

	maxEntries int
	count      int
}

// RunCacheStats holds cache counters.
type RunCacheStats struct {
	Hits       atomic.Uint64
	Misses     atomic.Uint64
	Evictions  atomic.Uint64
	Insertions atomic.Uint64
}

// NewRunCache creates a run cache with default configuration.
func NewRunCache() *RunCache {
	return NewRunCacheWithConfig(DefaultRunCacheConfig())
}

// NewRunCacheWithConfig creates a run cache with the given configuration.
func NewRunCacheWithConfig(config RunCacheConfig) *RunCache {
	if config.MaxEntries <= 0 {
		config.MaxEntries = 2048
	}
	if config.FrameLifetime <= 0 {
		config.FrameLifetime = 64
	}

	c := &RunCache{config: config}
	perShard := (config.MaxEntries + numRunShards - 1) / numRunShards
	for i := range numRunShards {
		c.shards[i] = &runShard{
			entries:    make(map[runKey]*runEntry, perShard),
			maxEntries: perShard,
		}
	}
	return c
}

// Get retrieves a cached shaped run.
func (c *RunCache) Get(face Face, text string) ([]ShapedGlyph, bool) {
	return c.get(runKey{source: face.Source, size: floatToFixed(face.Size), text: text})
}

func (c *RunCache) get(key runKey) ([]ShapedGlyph, bool) {
	shard := c.shard(key)
	frame := c.currentFrame.Load()

	shard.mu.Lock()
	entry, ok := shard.entries[key]
	if !ok {
		shard.mu.Unlock()
		c.stats.Misses.Add(1)
		return nil, false
	}
	entry.lastAccessFrame = frame
	shard.moveToFront(entry)
	glyphs := entry.glyphs
	shard.mu.Unlock()

	c.stats.Hits.Add(1)
	return glyphs, true
}

// Set stores a shaped run. Nil runs are not cached.
func (c *RunCache) Set(face Face, text string, glyphs []ShapedGlyph) {
	c.set(runKey{source: face.Source, size: floatToFixed(face.Size), text: text}, glyphs)
}

func (c *RunCache) set(key runKey, glyphs []ShapedGlyph) {
	if glyphs == nil {
		return
	}

	shard := c.shard(key)
	frame := c.currentFrame.Load()

	shard.mu.Lock()
	defer shard.mu.Unlock()

	if existing, ok := shard.entries[key]; ok {
		existing.glyphs = glyphs
		existing.lastAccessFrame = frame
		shard.moveToFront(existing)
		return
	}

	for shard.count >= shard.maxEntries && shard.tail != nil {
		shard.removeTail()
		c.stats.Evictions.Add(1)
	}

	entry := &runEntry{key: key, glyphs: glyphs, lastAccessFrame: frame}
	shard.entries[key] = entry
	shard.addToFront(entry)
	shard.count++
	c.stats.Insertions.Add(1)
}

// GetOrShape returns the cached run for the label, shaping and caching it
// on a miss.
func (c *RunCache) GetOrShape(shaper Shaper, face Face, text string) []ShapedGlyph {
	key := runKey{source: face.Source, size: floatToFixed(face.Size), text: text}
	if glyphs, ok := c.get(key); ok {
		return glyphs
	}

	glyphs := shaper.Shape(text, face)
	c.set(key, glyphs)
	return glyphs
}

// Maintain advances the frame counter and evicts entries unused for
// FrameLifetime frames. Call once per composed frame.
func (c *RunCache) Maintain() {
	frame := c.currentFrame.Add(1)
	lifetime := uint64(c.config.FrameLifetime)
	if frame < lifetime {
		return
	}
	threshold := frame - lifetime

	for i := range numRunShards {
		shard := c.shards[i]
		shard.mu.Lock()
		entry := shard.tail
		for entry != nil && entry.lastAccessFrame < threshold {
			prev := entry.prev
			delete(shard.entries, entry.key)
			shard.remove(entry)
			shard.count--
			c.stats.Evictions.Add(1)
			entry = prev
		}
		shard.mu.Unlock()
	}
}

// Clear removes all entries.
func (c *RunCache) Clear() {
	for i := range numRunShards {
		shard := c.shards[i]
		shard.mu.Lock()
		shard.entries = make(map[runKey]*runEntry, shard.maxEntries)
		shard.head = nil
		shard.tail = nil
		shard.count = 0
		shard.mu.Unlock()
	}
}

// Len returns the total number of cached runs.
func (c *RunCache) Len() int {
	total := 0
	for i := range numRunShards {
		shard := c.shards[i]
		shard.mu.Lock()
		total += shard.count
		shard.mu.Unlock()
	}
	return total
}

// Stats returns cache counters.
func (c *RunCache) Stats() (hits, misses, evictions, insertions uint64) {
	return c.stats.Hits.Load(),
		c.stats.Misses.Load(),
		c.stats.Evictions.Load(),
		c.stats.Insertions.Load()
}

// HitRate returns the hit rate as a percentage, 0 with no accesses.
func (c *RunCache) HitRate() float64 {
	hits := c.stats.Hits.Load()
	misses := c.stats.Misses.Load()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// shard hashes the key across shards. FNV-1a over the text with the size
// mixed in; the source pointer is deliberately left out so distribution
// does not depend on allocator addresses.
func (c *RunCache) shard(key runKey) *runShard {
	h := uint64(14695981039346656037)
	for i := 0; i < len(key.text); i++ {
		h ^= uint64(key.text[i])
		h *= 1099511628211
	}
	h ^= uint64(uint32(key.size))
	h *= 1099511628211
	return c.shards[h%numRunShards]
}

func (s *runShard) addToFront(entry *runEntry) {
	entry.prev = nil
	entry.next = s.head
	if s.head != nil {
		s.head.prev = entry
	}
	s.head = entry
	if s.tail == nil {
		s.tail = entry
	}
}

func (s *runShard) moveToFront(entry *runEntry) {
	if entry == s.head {
		return
	}
	s.remove(entry)
	s.addToFront(entry)
}

// remove unlinks an entry from the LRU list without touching the map.
func (s *runShard) remove(entry *runEntry) {
	if entry.prev != nil {
		entry.prev.next = entry.next
	} else {
		s.head = entry.next
	}
	if entry.next != nil {
		entry.next.prev = entry.prev
	} else {
		s.tail = entry.prev
	}
	entry.prev = nil
	entry.next = nil
}

func (s *runShard) removeTail() {
	if s.tail == nil {
		return
	}
	entry := s.tail
	delete(s.entries, entry.key)
	s.remove(entry)
	s.count--
}
