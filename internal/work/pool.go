// Package work provides a bounded worker pool draining a priority queue.
//
// Unlike a plain FIFO pool, tasks carry a priority and the queue is a
// min-heap: the lowest priority value runs first, ties in submission
// order. Queued tasks can be reprioritized or cancelled until a worker
// picks them up, which is what a tile pipeline needs when the viewport
// moves and yesterday's urgent tile is suddenly off screen.
package work

import (
	"container/heap"
	"runtime"
	"sync"
)

// Task is a handle to one queued function. It stays valid after the
// task runs; Reprioritize and Cancel simply report false then.
type Task struct {
	fn       func()
	priority float64
	seq      uint64
	index    int // heap position, -1 once dequeued or cancelled
}

// Pool runs submitted tasks on a fixed number of worker goroutines,
// always picking the lowest-priority-value task next.
//
// The queue is unbounded: submissions beyond worker capacity wait in
// priority order rather than blocking the submitter.
//
// Pool is safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   taskHeap
	workers int
	closed  bool
	seq     uint64
	wg      sync.WaitGroup
}

// New creates a pool with the given number of workers and starts them.
// If workers is 0 or negative, GOMAXPROCS is used.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{workers: workers}
	p.cond = sync.NewCond(&p.mu)

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

// Submit queues fn with the given priority (lower runs sooner) and
// returns its handle. Submitting to a closed pool returns nil and the
// function never runs.
func (p *Pool) Submit(priority float64, fn func()) *Task {
	if fn == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	t := &Task{fn: fn, priority: priority, seq: p.seq}
	p.seq++
	heap.Push(&p.queue, t)
	p.cond.Signal()
	return t
}

// Reprioritize moves a queued task to a new priority. Returns false if
// the task already started, was cancelled, or is nil.
func (p *Pool) Reprioritize(t *Task, priority float64) bool {
	if t == nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if t.index < 0 {
		return false
	}
	t.priority = priority
	heap.Fix(&p.queue, t.index)
	return true
}

// Cancel removes a queued task so it never runs. Returns false if the
// task already started, was cancelled, or is nil.
func (p *Pool) Cancel(t *Task) bool {
	if t == nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if t.index < 0 {
		return false
	}
	heap.Remove(&p.queue, t.index)
	return true
}

// Len returns the number of queued tasks not yet picked up by a worker.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Len()
}

// Workers returns the worker count.
func (p *Pool) Workers() int {
	return p.workers
}

// Close stops the pool: queued tasks are dropped, running tasks finish,
// and Close returns once every worker has exited. Safe to call more
// than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for _, t := range p.queue {
		t.index = -1
	}
	p.queue = nil
	p.cond.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	p.mu.Lock()
	for {
		for p.queue.Len() == 0 && !p.closed {
			p.cond.Wait()
		}
		if p.closed {
			p.mu.Unlock()
			return
		}

		t := heap.Pop(&p.queue).(*Task)
		p.mu.Unlock()

		t.fn()

		p.mu.Lock()
	}
}

// taskHeap orders tasks by priority value, then submission order.
type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*Task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
