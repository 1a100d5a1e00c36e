// Package fetch drives tiles through the loading pipeline: raw bytes are
// fetched from a source, decoded, tessellated against a style snapshot,
// and the finished primitives inserted into the tile cache.
//
// A Coordinator owns one request table. SetNeeded diffs the wanted set
// against it: new requests are queued on the shared worker pool in
// priority order, requests already underway are reprioritized, and
// requests that left the set are cancelled cooperatively. Duplicate
// requests for the same coordinate and style version coalesce into one
// job, so a tile is never fetched or tessellated twice concurrently.
//
// Fetch failures retry with bounded exponential backoff; decode and
// tessellation failures are terminal. A request that fails terminally
// enters a cooldown window before it may be queued again. A cancelled
// request never inserts into the cache, even when its fetch completes
// after the cancellation.
package fetch

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/teris-io/shortid"

	"github.com/siddheshzz/galileo/cache"
	"github.com/siddheshzz/galileo/internal/work"
	"github.com/siddheshzz/galileo/mvt"
	"github.com/siddheshzz/galileo/source"
	"github.com/siddheshzz/galileo/style"
	"github.com/siddheshzz/galileo/tess"
	"github.com/siddheshzz/galileo/tile"
)

// State is a request's position in the pipeline.
type State uint8

const (
	StateQueued State = iota
	StateFetching
	StateDecoding
	StateTessellating
	StateCached
	StateCancelled
	StateFailed
)

var stateNames = [...]string{
	"queued", "fetching", "decoding", "tessellating",
	"cached", "cancelled", "failed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports whether the state ends a request's lifecycle.
func (s State) Terminal() bool {
	return s == StateCached || s == StateCancelled || s == StateFailed
}

// Event describes a terminal transition. Err is non-nil only for
// StateFailed.
type Event struct {
	Request tile.Request
	State   State
	Err     error
}

// Focus is the view position queued work is prioritized against: the
// viewport center in fractional tile units at the focus zoom.
type Focus struct {
	X, Y float64
	Zoom float64
}

// A PriorityFunc ranks a queued request against the current focus.
// Lower values run first.
type PriorityFunc func(req tile.Request, f Focus) float64

// DefaultPriority orders requests by the distance from their tile center
// to the focus, measured in focus-zoom tile units, plus one unit per
// zoom level between the request and the focus.
func DefaultPriority(req tile.Request, f Focus) float64 {
	scale := math.Exp2(f.Zoom - float64(req.Coord.Z))
	cx := (float64(req.Coord.X) + 0.5) * scale
	cy := (float64(req.Coord.Y) + 0.5) * scale
	return math.Hypot(cx-f.X, cy-f.Y) + math.Abs(float64(req.Coord.Z)-f.Zoom)
}

// buildAhead biases decode and tessellation continuations ahead of
// equal-priority fetch starts so fetched bytes drain promptly.
const buildAhead = 0.5

// job tracks one request through the pipeline. All fields except ctx
// reads inside stage functions are guarded by the coordinator mutex.
type job struct {
	req      tile.Request
	st       *style.Style
	id       string
	state    State
	priority float64
	attempt  int

	ctx    context.Context
	cancel context.CancelFunc

	task  *work.Task  // non-nil while queued on the pool
	timer *time.Timer // non-nil while waiting out a backoff

	data    []byte    // fetched bytes held between fetch and build stages
	fetched time.Time // when the bytes arrived, for provenance logs

	done  bool
	final State
	ferr  error
}

// Coordinator schedules tile loading onto a shared worker pool and
// resolves finished tiles into the cache.
type Coordinator struct {
	src   source.Source
	tess  *tess.Tessellator
	cache *cache.TileCache
	pool  *work.Pool
	opts  options

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	cond   *sync.Cond
	jobs   map[tile.Request]*job
	fails  map[tile.Request]time.Time // cooldown expiry per failed request
	closed bool
}

// New creates a coordinator loading tiles from src into c. The pool is
// shared with the caller and other coordinators; Close does not close it.
func New(src source.Source, ts *tess.Tessellator, c *cache.TileCache, pool *work.Pool, opts ...Option) *Coordinator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	ctx, cancel := context.WithCancel(context.Background())
	co := &Coordinator{
		src:    src,
		tess:   ts,
		cache:  c,
		pool:   pool,
		opts:   o,
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[tile.Request]*job),
		fails:  make(map[tile.Request]time.Time),
	}
	co.cond = sync.NewCond(&co.mu)
	return co
}

// SetNeeded reconciles the request table with the wanted set. Requests
// not yet underway are queued against st, requests already underway are
// reprioritized for the new focus, and jobs whose request left the set
// are cancelled. Requests already cached, in a failure cooldown, or
// carrying a style version other than st's are skipped.
func (co *Coordinator) SetNeeded(st *style.Style, reqs []tile.Request, f Focus) {
	now := time.Now()

	co.mu.Lock()
	if co.closed {
		co.mu.Unlock()
		return
	}

	needed := make(map[tile.Request]struct{}, len(reqs))
	for _, req := range reqs {
		needed[req] = struct{}{}
	}

	var finished []*job
	for req, j := range co.jobs {
		if _, ok := needed[req]; ok {
			continue
		}
		if co.cancelLocked(j) {
			finished = append(finished, j)
		}
	}

	for req, until := range co.fails {
		if now.After(until) {
			delete(co.fails, req)
		}
	}

	for _, req := range reqs {
		if j, ok := co.jobs[req]; ok {
			j.priority = co.opts.priority(req, f)
			if j.task != nil {
				co.pool.Reprioritize(j.task, j.priority)
			}
			continue
		}
		if st == nil || req.StyleVersion != st.Version {
			continue
		}
		if until, ok := co.fails[req]; ok && now.Before(until) {
			continue
		}
		if co.cache.Has(req) {
			continue
		}
		co.startLocked(st, req, f)
	}
	co.mu.Unlock()

	for _, j := range finished {
		co.emit(j)
	}
}

// Len returns the number of live requests.
func (co *Coordinator) Len() int {
	co.mu.Lock()
	defer co.mu.Unlock()
	return len(co.jobs)
}

// State returns the pipeline state of a live request. The second result
// is false once the request has reached a terminal state or was never
// queued.
func (co *Coordinator) State(req tile.Request) (State, bool) {
	co.mu.Lock()
	defer co.mu.Unlock()
	j, ok := co.jobs[req]
	if !ok {
		return 0, false
	}
	return j.state, true
}

// Close cancels every live request and waits for running stages to
// finish. Close the coordinator before closing the shared pool, or
// queued stages can no longer run to completion. Close is idempotent.
func (co *Coordinator) Close() {
	co.mu.Lock()
	if co.closed {
		co.mu.Unlock()
		return
	}
	co.closed = true
	co.cancel()

	var finished []*job
	for _, j := range co.jobs {
		if co.cancelLocked(j) {
			finished = append(finished, j)
		}
	}
	for len(co.jobs) > 0 {
		co.cond.Wait()
	}
	co.mu.Unlock()

	for _, j := range finished {
		co.emit(j)
	}
}

func (co *Coordinator) startLocked(st *style.Style, req tile.Request, f Focus) {
	ctx, cancel := context.WithCancel(co.ctx)
	id, _ := shortid.Generate()
	j := &job{
		req:      req,
		st:       st,
		id:       id,
		state:    StateQueued,
		priority: co.opts.priority(req, f),
		ctx:      ctx,
		cancel:   cancel,
	}
	j.task = co.pool.Submit(j.priority, func() { co.runFetch(j) })
	if j.task == nil {
		cancel()
		return
	}
	co.jobs[req] = j
	co.opts.logger.Debug("tile queued",
		"job", j.id, "tile", req, "priority", j.priority)
}

// cancelLocked cancels a job's context and retracts whatever is pending
// for it. It reports whether the job was finalized here; a job caught
// mid-stage finalizes itself when it observes the cancelled context.
func (co *Coordinator) cancelLocked(j *job) bool {
	j.cancel()
	if j.task != nil && co.pool.Cancel(j.task) {
		j.task = nil
		co.finishLocked(j, StateCancelled, nil)
		return true
	}
	if j.timer != nil && j.timer.Stop() {
		j.timer = nil
		co.finishLocked(j, StateCancelled, nil)
		return true
	}
	return false
}

// finishLocked records a terminal state and removes the job from the
// table. The caller emits the job's event after releasing the mutex.
func (co *Coordinator) finishLocked(j *job, s State, err error) {
	if j.done {
		return
	}
	j.done = true
	j.final = s
	j.ferr = err
	j.cancel()
	delete(co.jobs, j.req)
	if s == StateFailed {
		co.fails[j.req] = time.Now().Add(co.opts.cooldown)
	}
	co.cond.Broadcast()
}

func (co *Coordinator) finish(j *job, s State, err error) {
	co.mu.Lock()
	if j.done {
		co.mu.Unlock()
		return
	}
	co.finishLocked(j, s, err)
	co.mu.Unlock()
	co.emit(j)
}

func (co *Coordinator) emit(j *job) {
	switch j.final {
	case StateCached:
		co.opts.logger.Debug("tile cached",
			"job", j.id, "tile", j.req, "source", co.src.Name(), "fetched", j.fetched)
	case StateFailed:
		co.opts.logger.Warn("tile failed",
			"job", j.id, "tile", j.req, "source", co.src.Name(), "err", j.ferr)
	}
	if co.opts.notify != nil {
		co.opts.notify(Event{Request: j.req, State: j.final, Err: j.ferr})
	}
}

// runFetch performs one fetch attempt on a pool worker.
func (co *Coordinator) runFetch(j *job) {
	co.mu.Lock()
	j.task = nil
	if j.ctx.Err() != nil || co.closed {
		co.finishLocked(j, StateCancelled, nil)
		co.mu.Unlock()
		co.emit(j)
		return
	}
	j.state = StateFetching
	j.attempt++
	attempt := j.attempt
	co.mu.Unlock()

	ctx := j.ctx
	if co.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(j.ctx, co.opts.timeout)
		defer cancel()
	}
	data, err := co.src.Fetch(ctx, j.req.Coord)

	switch {
	case j.ctx.Err() != nil:
		co.finish(j, StateCancelled, nil)

	case err == nil:
		co.mu.Lock()
		j.data = data
		j.fetched = time.Now()
		j.task = co.pool.Submit(j.priority-buildAhead, func() { co.runBuild(j) })
		if j.task == nil {
			co.finishLocked(j, StateCancelled, nil)
			co.mu.Unlock()
			co.emit(j)
			return
		}
		co.mu.Unlock()

	case errors.Is(err, source.ErrNotFound):
		// Nothing exists at this address. Cache the empty answer so
		// composition treats the tile as resolved instead of pending,
		// and the coordinate is not fetched again until eviction.
		co.mu.Lock()
		j.fetched = time.Now()
		co.cache.Insert(j.req, nil)
		co.finishLocked(j, StateCached, nil)
		co.mu.Unlock()
		co.emit(j)

	case attempt < co.opts.attempts:
		delay := co.opts.backoff << (attempt - 1)
		co.opts.logger.Debug("fetch retrying",
			"job", j.id, "tile", j.req, "attempt", attempt, "err", err)
		co.mu.Lock()
		if j.ctx.Err() != nil || co.closed {
			co.finishLocked(j, StateCancelled, nil)
			co.mu.Unlock()
			co.emit(j)
			return
		}
		j.state = StateQueued
		j.timer = time.AfterFunc(delay, func() { co.resubmit(j) })
		co.mu.Unlock()

	default:
		co.finish(j, StateFailed, err)
	}
}

// resubmit requeues a job after its backoff delay.
func (co *Coordinator) resubmit(j *job) {
	co.mu.Lock()
	j.timer = nil
	if j.done {
		co.mu.Unlock()
		return
	}
	if j.ctx.Err() != nil || co.closed {
		co.finishLocked(j, StateCancelled, nil)
		co.mu.Unlock()
		co.emit(j)
		return
	}
	j.task = co.pool.Submit(j.priority, func() { co.runFetch(j) })
	if j.task == nil {
		co.finishLocked(j, StateCancelled, nil)
		co.mu.Unlock()
		co.emit(j)
		return
	}
	co.mu.Unlock()
}

// runBuild decodes and tessellates fetched bytes on a pool worker, then
// inserts the result. The cancellation check and the insert hold the
// same mutex acquisition, so a request cancelled first can never insert.
func (co *Coordinator) runBuild(j *job) {
	co.mu.Lock()
	j.task = nil
	if j.ctx.Err() != nil || co.closed {
		co.finishLocked(j, StateCancelled, nil)
		co.mu.Unlock()
		co.emit(j)
		return
	}
	j.state = StateDecoding
	data := j.data
	j.data = nil
	co.mu.Unlock()

	t, err := mvt.DecodeContext(j.ctx, data)
	if err != nil {
		if j.ctx.Err() != nil {
			co.finish(j, StateCancelled, nil)
			return
		}
		co.finish(j, StateFailed, err)
		return
	}

	co.mu.Lock()
	if j.ctx.Err() != nil || co.closed {
		co.finishLocked(j, StateCancelled, nil)
		co.mu.Unlock()
		co.emit(j)
		return
	}
	j.state = StateTessellating
	co.mu.Unlock()

	prims, terr := co.tess.Tessellate(j.ctx, t.Layers, j.st, float64(j.req.Coord.Z))
	if j.ctx.Err() != nil {
		for _, p := range prims {
			p.Release()
		}
		co.finish(j, StateCancelled, nil)
		return
	}
	if terr != nil {
		if prims == nil {
			co.finish(j, StateFailed, terr)
			return
		}
		co.opts.logger.Warn("tile built partially",
			"job", j.id, "tile", j.req, "err", terr)
	}
	for _, p := range prims {
		p.Tile = j.req.Coord
	}

	co.mu.Lock()
	if j.ctx.Err() != nil || co.closed {
		co.finishLocked(j, StateCancelled, nil)
		co.mu.Unlock()
		for _, p := range prims {
			p.Release()
		}
		co.emit(j)
		return
	}
	co.cache.Insert(j.req, prims)
	co.finishLocked(j, StateCached, nil)
	co.mu.Unlock()
	co.emit(j)
}
