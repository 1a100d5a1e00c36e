package galileo

import (
	"sync"

	"github.com/siddheshzz/galileo/fetch"
	"github.com/siddheshzz/galileo/source"
	"github.com/siddheshzz/galileo/style"
)

// VectorLayer renders vector tiles from one source styled by one style
// document. Layers are created through Map.AddVectorLayer and share the
// map's cache, worker pool, and tessellator.
//
// A layer holds on to its previously active style so that frames
// composed right after a style change can keep drawing tiles built
// against the old version while the new ones stream in.
type VectorLayer struct {
	name string
	src  source.Source
	m    *Map
	co   *fetch.Coordinator

	mu      sync.Mutex
	current *style.Style
	prev    *style.Style

	watcher *style.Watcher
	done    chan struct{}
}

// Name returns the name the layer was registered under.
func (l *VectorLayer) Name() string { return l.name }

// Attribution returns the source's attribution text, if it has any.
func (l *VectorLayer) Attribution() string {
	if a, ok := l.src.(source.Attributer); ok {
		return a.Attribution()
	}
	return ""
}

// Style returns the active style snapshot. It may be nil if the layer
// was added without a style and none has been set since.
func (l *VectorLayer) Style() *style.Style {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// SetStyle installs st as the layer's active style and requeues the
// visible tiles against its version. The outgoing style is retained as
// a fallback: tiles built against it keep drawing until replacements
// arrive. Setting a style whose Version matches the active one is a
// no-op; a nil style is ignored.
func (l *VectorLayer) SetStyle(st *style.Style) {
	if st == nil {
		return
	}
	l.mu.Lock()
	if l.current != nil && l.current.Version == st.Version {
		l.mu.Unlock()
		return
	}
	dropped := l.prev
	l.prev = l.current
	l.current = st
	l.mu.Unlock()

	l.m.logger.Info("style updated", "layer", l.name, "style", st.Name, "version", st.Version)
	if dropped != nil {
		l.m.purgeStyleVersion(dropped.Version)
	}
	l.m.refreshLayer(l)
	l.m.msg.RequestRedraw()
}

// Pending returns how many tile requests the layer still has in
// flight. Zero means the cache holds everything the last refresh asked
// for, so composing now draws the complete view.
func (l *VectorLayer) Pending() int { return l.co.Len() }

// versions returns the active and previous style snapshots.
func (l *VectorLayer) versions() (cur, prev *style.Style) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current, l.prev
}

// watch wires a style watcher's deliveries into SetStyle. Reload
// failures are logged and leave the active style in place.
func (l *VectorLayer) watch(w *style.Watcher) {
	l.watcher = w
	l.done = make(chan struct{})
	go func() {
		for {
			select {
			case st := <-w.Styles():
				l.SetStyle(st)
			case err := <-w.Errors():
				l.m.logger.Warn("style reload failed", "layer", l.name, "error", err)
			case <-l.done:
				return
			}
		}
	}()
}

// close stops the layer's coordinator and style watcher. Called by
// Map.Close with the map already marked closed.
func (l *VectorLayer) close() {
	if l.watcher != nil {
		l.watcher.Close()
		close(l.done)
	}
	l.co.Close()
}
