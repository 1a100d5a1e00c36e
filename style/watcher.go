package style

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces the burst of filesystem events an editor save
// produces into a single reload.
const debounceDelay = 50 * time.Millisecond

// Watcher watches a style document on disk and delivers a freshly parsed
// snapshot whenever the file changes. Each delivered snapshot carries a
// new Version, so consumers treat a reload exactly like any other style
// change.
//
// The parent directory is watched rather than the file itself, because
// editors typically replace files via rename, which would silently drop
// a watch on the old inode.
type Watcher struct {
	path string
	base string

	fw     *fsnotify.Watcher
	styles chan *Style
	errs   chan error
	done   chan struct{}
}

// Watch parses the style at path and starts watching it for changes.
// The initial snapshot is available immediately from Style(); subsequent
// snapshots arrive on Styles().
func Watch(path string) (*Watcher, *Style, error) {
	initial, err := Load(path)
	if err != nil {
		return nil, nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("style: watch: %w", err)
	}

	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, nil, fmt.Errorf("style: watch %s: %w", dir, err)
	}

	w := &Watcher{
		path:   path,
		base:   filepath.Base(path),
		fw:     fw,
		styles: make(chan *Style, 1),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}
	go w.run()

	return w, initial, nil
}

// Styles delivers reloaded snapshots. Only the latest pending snapshot
// is retained; a slow consumer sees the newest state, not every
// intermediate one.
func (w *Watcher) Styles() <-chan *Style {
	return w.styles
}

// Errors delivers reload failures (unreadable or unparseable documents).
// A failed reload keeps the previous snapshot in effect.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Close stops the watcher. Pending channel values remain readable.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	return w.fw.Close()
}

func (w *Watcher) run() {
	debounce := time.NewTimer(debounceDelay)
	if !debounce.Stop() {
		<-debounce.C
	}
	pending := false

	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != w.base {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if !pending {
				pending = true
			} else if !debounce.Stop() {
				select {
				case <-debounce.C:
				default:
				}
			}
			debounce.Reset(debounceDelay)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.sendErr(err)

		case <-debounce.C:
			if !pending {
				continue
			}
			pending = false
			st, err := Load(w.path)
			if err != nil {
				w.sendErr(err)
				continue
			}
			w.sendStyle(st)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) sendStyle(st *Style) {
	select {
	case <-w.styles:
	default:
	}
	select {
	case w.styles <- st:
	default:
	}
}

func (w *Watcher) sendErr(err error) {
	select {
	case w.errs <- err:
	default:
	}
}
