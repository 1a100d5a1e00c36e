// Package cache bounds the memory held by tessellated tile primitives.
//
// TileCache maps tile requests (coordinate plus style version) to the
// complete primitive set tessellated for that tile. Entries are whole:
// inserted complete, evicted complete, never partially visible.
//
//	c := cache.New(cache.DefaultBudget)
//	c.Insert(req, prims)
//	if prims, ok := c.Get(req); ok { ... }
//
// # Eviction
//
// The budget is in bytes of primitive weight, not entry count, so a few
// oversized tiles are evicted before many small ones. Eviction runs on
// insert, scanning from the least recently used end and skipping pinned
// entries. The resident weight can overshoot the budget only transiently,
// between an insert and its eviction pass, or if everything left is
// pinned.
//
// # Pinning
//
// A composer pins the entries a frame references before reading them and
// unpins after the frame is built. Pinning keeps the entry resident;
// primitive reference counts independently keep GPU buffers alive for
// frames that outlive an eviction.
//
// # Style versions
//
// A style bump changes the request key, so stale entries are invalidated
// lazily: they stay resident, are never returned for new-version
// requests, and age out under pressure or via PurgeVersion.
//
// TileCache is safe for concurrent use and must not be copied.
package cache
