package galileo

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/siddheshzz/galileo/cache"
	"github.com/siddheshzz/galileo/fetch"
	"github.com/siddheshzz/galileo/geom"
	"github.com/siddheshzz/galileo/internal/work"
	"github.com/siddheshzz/galileo/render"
	"github.com/siddheshzz/galileo/source"
	"github.com/siddheshzz/galileo/style"
	"github.com/siddheshzz/galileo/tess"
	"github.com/siddheshzz/galileo/text"
	"github.com/siddheshzz/galileo/tile"
)

// Map ties the engine together: it owns the tile cache, the worker
// pool, the tessellator and the per-layer fetch coordinators, and turns
// a View plus whatever is cached into frames.
//
// A map belongs to one goroutine, conventionally the host's render
// loop: SetView, Refresh, Compose and Close must not be called
// concurrently. Everything behind them is safe to share; tile delivery
// happens on pool workers and lands in the cache, and the host is told
// to redraw through the Messenger.
type Map struct {
	logger   *slog.Logger
	msg      Messenger
	composer Composer
	fetchOps []fetch.Option

	cache *cache.TileCache
	pool  *work.Pool
	tess  *tess.Tessellator

	mu     sync.Mutex
	view   View
	layers []*VectorLayer
	pinned []tile.Request
	closed bool
}

// NewMap creates an empty map. Add layers, set a view, then drive it
// with Refresh and Compose.
func NewMap(opts ...MapOption) *Map {
	o := defaultMapOptions()
	for _, opt := range opts {
		opt(&o)
	}

	m := &Map{
		logger:   o.logger,
		msg:      o.messenger,
		composer: Composer{FallbackDepth: o.fallbackDepth},
		fetchOps: o.fetchOpts,
		cache:    cache.New(o.budget),
		pool:     work.New(o.workers),
		tess:     tess.New(),
	}
	if m.logger == nil {
		m.logger = Logger()
	}
	m.logger.Info("map created", "budget", o.budget, "workers", o.workers)
	return m
}

// AddVectorLayer registers a vector tile layer drawing src styled by
// st. Layers draw in the order they were added. A nil st leaves the
// layer idle until SetStyle is called.
//
// Each layer needs its own style snapshot: cache entries are keyed by
// coordinate and style version, so two layers sharing one snapshot
// would also share entries regardless of their sources. Loading the
// same style file twice yields distinct snapshots and is fine.
func (m *Map) AddVectorLayer(name string, src source.Source, st *style.Style) *VectorLayer {
	l := &VectorLayer{name: name, src: src, m: m, current: st}

	opts := append([]fetch.Option{
		fetch.WithLogger(m.logger),
		fetch.WithNotify(m.onTile),
	}, m.fetchOps...)
	l.co = fetch.New(src, m.tess, m.cache, m.pool, opts...)

	m.mu.Lock()
	m.layers = append(m.layers, l)
	m.mu.Unlock()

	m.logger.Info("layer added", "layer", name, "source", src.Name())
	m.refreshLayer(l)
	return l
}

// AddVectorLayerFile is AddVectorLayer with the style loaded from path
// and watched for edits. Each successful reload behaves exactly like a
// SetStyle call.
func (m *Map) AddVectorLayerFile(name string, src source.Source, path string) (*VectorLayer, error) {
	w, st, err := style.Watch(path)
	if err != nil {
		return nil, err
	}
	l := m.AddVectorLayer(name, src, st)
	l.watch(w)
	return l, nil
}

// Layers returns the map's layers in draw order.
func (m *Map) Layers() []Layer {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Layer, len(m.layers))
	for i, l := range m.layers {
		out[i] = l
	}
	return out
}

// RegisterFont makes a font available to symbol layers under its
// family name. Fonts must be registered before tiles that need them
// are fetched; tiles already tessellated do not pick up new fonts.
func (m *Map) RegisterFont(src *text.FontSource) {
	m.tess.RegisterFont(src)
}

// Cache exposes the tile cache for inspection. Mutating it directly is
// safe but normally unnecessary.
func (m *Map) Cache() *cache.TileCache { return m.cache }

// View returns the current view.
func (m *Map) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view
}

// SetView moves the camera and requeues tile work for every layer. The
// cache keeps serving stale coverage until new tiles land, so the next
// Compose is immediately useful.
func (m *Map) SetView(v View) {
	m.mu.Lock()
	m.view = v
	layers := slices.Clone(m.layers)
	m.mu.Unlock()
	for _, l := range layers {
		m.refreshLayer(l)
	}
}

// Refresh recomputes the needed tile set for every layer against the
// current view. SetView and SetStyle do this on their own; Refresh is
// for hosts that changed something external, like source contents.
func (m *Map) Refresh() {
	m.mu.Lock()
	layers := slices.Clone(m.layers)
	m.mu.Unlock()
	for _, l := range layers {
		m.refreshLayer(l)
	}
}

// refreshLayer hands the layer's coordinator the tiles the current
// view needs, prioritized around the view center.
func (m *Map) refreshLayer(l *VectorLayer) {
	m.mu.Lock()
	v := m.view
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return
	}
	cur, _ := l.versions()
	if cur == nil {
		return
	}

	coords := v.Coverage()
	reqs := make([]tile.Request, len(coords))
	for i, c := range coords {
		reqs[i] = tile.Request{Coord: c, StyleVersion: cur.Version}
	}
	ctr := geom.TilePoint(v.Center, v.Zoom)
	l.co.SetNeeded(cur, reqs, fetch.Focus{X: ctr[0], Y: ctr[1], Zoom: v.Zoom})
}

// onTile runs on pool workers whenever a tile reaches a terminal state.
func (m *Map) onTile(ev fetch.Event) {
	if ev.State == fetch.StateCached {
		m.msg.RequestRedraw()
	}
}

// purgeStyleVersion drops cached entries of a style version no layer
// references anymore. Entries pinned by the current frame stay until
// unpinned and then age out normally.
func (m *Map) purgeStyleVersion(version string) {
	m.mu.Lock()
	layers := slices.Clone(m.layers)
	m.mu.Unlock()
	for _, l := range layers {
		cur, prev := l.versions()
		if cur != nil && cur.Version == version {
			return
		}
		if prev != nil && prev.Version == version {
			return
		}
	}
	if n := m.cache.PurgeVersion(version); n > 0 {
		m.logger.Debug("purged stale style", "version", version, "entries", n)
	}
}

// Compose assembles a frame from the resident tiles of every layer.
// The frame's primitives are pinned in the cache until the next
// Compose or Close, so the caller may upload and draw them at leisure,
// then must Release the frame.
func (m *Map) Compose() *render.Frame {
	m.mu.Lock()
	v := m.view
	layers := slices.Clone(m.layers)
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return render.NewFrame(v.Width, v.Height)
	}

	states := make([]LayerState, len(layers))
	for i, l := range layers {
		cur, prev := l.versions()
		if cur != nil {
			states[i].Current = cur.Version
		}
		if prev != nil {
			states[i].Previous = prev.Version
		}
	}

	frame, pinned := m.composer.Compose(v, m.cache, states)
	m.tess.MaintainText()

	m.mu.Lock()
	old := m.pinned
	m.pinned = pinned
	m.mu.Unlock()
	for _, req := range old {
		m.cache.Unpin(req)
	}
	return frame
}

// Close stops every layer's coordinator, shuts the worker pool down and
// drops the cache. Frames composed earlier must be released before
// Close; after it the map only returns empty frames.
func (m *Map) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	layers := m.layers
	m.layers = nil
	pinned := m.pinned
	m.pinned = nil
	m.mu.Unlock()

	for _, l := range layers {
		l.close()
	}
	m.pool.Close()
	for _, req := range pinned {
		m.cache.Unpin(req)
	}
	m.cache.Clear()
	m.logger.Info("map closed")
}
