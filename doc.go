// Package galileo renders slippy-map vector tiles into GPU-ready
// frames.
//
// # Overview
//
// galileo is a pure Go map engine. It fetches Mapbox Vector Tiles from
// HTTP endpoints, MBTiles archives or in-memory stores, decodes and
// tessellates them into triangle meshes on a worker pool, and composes
// each frame from a byte-budgeted primitive cache. The host owns the
// window, the GPU device and the event loop; galileo owns everything
// between a tile URL and a list of draw commands.
//
// # Quick Start
//
//	import "github.com/siddheshzz/galileo"
//
//	src, _ := source.Open("https://tiles.example.com/{z}/{x}/{y}.pbf")
//	st, _ := style.Load("style.toml")
//
//	m := galileo.NewMap(galileo.WithMessenger(win))
//	m.AddVectorLayer("base", src, st)
//	m.SetView(galileo.View{
//		Center: orb.Point{13.40, 52.52},
//		Zoom:   12,
//		Width:  1280,
//		Height: 720,
//	})
//
//	// In the host's render loop, whenever the messenger fired:
//	frame := m.Compose()
//	surface.Submit(frame)
//	frame.Release()
//
// # Architecture
//
// The engine is organized into:
//   - source: tile byte providers (HTTP, MBTiles, in-memory)
//   - mvt: Mapbox Vector Tile wire decoding
//   - style: style documents, evaluation and live reload
//   - tess: feature tessellation into vertex and index buffers
//   - text: font loading, shaping and glyph atlases for labels
//   - cache, fetch: the primitive cache and the async tile pipeline
//   - render: primitives, frames, transforms and surfaces
//
// # Threading
//
// A Map belongs to one goroutine, normally the host's render loop.
// Tile work runs on an internal pool; completed tiles appear in the
// cache and the host is nudged through its Messenger. Frames pin the
// cache entries they draw from, so a composed frame stays valid until
// the next Compose call regardless of what the pool delivers meanwhile.
package galileo

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = "alpha.1"
)
