// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

// Package render defines the GPU-facing data model of the engine:
// primitives, frames, transforms, and the surface contract that draws
// them.
//
// # Primitives
//
// A Primitive is an immutable vertex/index buffer pair with a material,
// produced by tessellation. Primitives are reference counted: the tile
// cache owns one reference, every in-flight frame that draws the
// primitive holds another, and GPU resources attached through AttachGPU
// are released when the count reaches zero. This lets cache eviction and
// frame submission proceed concurrently without freeing buffers out from
// under the surface.
//
// # Frames
//
// A Frame is an ordered draw-command list built fresh per composition.
// Draw order is slice order; the composer encodes style layer z-order by
// appending in layer-major sequence.
//
// # Surfaces
//
// Surface abstracts the drawing destination. The engine never creates a
// GPU device: hosts hand one in as a DeviceHandle (an alias for
// gpucontext.DeviceProvider) to GPU-backed implementations.
// SoftwareSurface rasterizes frames on the CPU for tests and headless
// snapshots.
package render
