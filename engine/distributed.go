package engine

import (
	"context"
	"sync"
)

// Subproblem is a unit of work dispatched to a worker in master/worker
// mode: a subproblem root plus the restriction describing its ancestor
// context and bound (spec §5, §6).
type Subproblem struct {
	ID          int
	Restriction *SubproblemRestriction
}

// SubproblemResult is what a worker reports back once it has solved (or
// been interrupted on) a Subproblem.
type SubproblemResult struct {
	ID         int
	Value      LogVal
	Assignment []Val
	Err        error
}

// WorkerFunc solves one subproblem, honoring ctx cancellation, and is
// supplied by the caller (e.g. a thin wrapper around Session.Solve
// restricted to the subproblem's root) — the coordinator itself has no
// opinion on how a subproblem is actually searched.
type WorkerFunc func(ctx context.Context, sub Subproblem) SubproblemResult

// Coordinator implements the optional master/worker mode described
// abstractly in spec §5: a leaf queue and solved queue connecting a search
// goroutine to a propagator goroutine, an admission semaphore bounding
// concurrent workers, and an active-worker set the propagator joins
// workers out of as their results arrive. Go's channels and buffered
// semaphore-by-channel idiom stand in for the mutex+condvar pairs the
// original uses for the same purpose: a channel send blocks exactly when
// the original's condition variable would.
type Coordinator struct {
	session *Session
	work    WorkerFunc

	allowed chan struct{} // admission semaphore: buffered to allowedThreads

	leafQueue   chan Subproblem
	solvedQueue chan SubproblemResult

	mu         sync.Mutex
	active     map[int]context.CancelFunc
	searchDone bool

	wg sync.WaitGroup
}

// NewCoordinator returns a coordinator that allows up to allowedThreads
// concurrent workers, using work to actually solve each dispatched
// subproblem.
func NewCoordinator(session *Session, work WorkerFunc, allowedThreads int) *Coordinator {
	return &Coordinator{
		session:     session,
		work:        work,
		allowed:     make(chan struct{}, allowedThreads),
		leafQueue:   make(chan Subproblem, allowedThreads*4),
		solvedQueue: make(chan SubproblemResult, allowedThreads*4),
		active:      make(map[int]context.CancelFunc),
	}
}

// Dispatch enqueues sub for a worker, blocking until the admission
// semaphore admits it (spec §5, "Admission semaphore... awaited by the
// search thread before dispatching a new subproblem").
func (c *Coordinator) Dispatch(ctx context.Context, sub Subproblem) {
	select {
	case c.allowed <- struct{}{}:
	case <-ctx.Done():
		return
	}
	c.wg.Add(1) // matched by the worker goroutine RunWorkers starts for sub
	c.leafQueue <- sub
}

// RunWorkers starts the worker pool: each iteration blocks on leafQueue
// (the channel receive is the condition-variable wait), runs work, and
// forwards the result to solvedQueue.
func (c *Coordinator) RunWorkers(ctx context.Context) {
	for sub := range c.leafQueue {
		sub := sub
		subCtx, cancel := context.WithCancel(ctx)
		c.mu.Lock()
		c.active[sub.ID] = cancel
		c.mu.Unlock()

		go func() {
			defer c.wg.Done()
			res := c.work(subCtx, sub)
			cancel()
			c.solvedQueue <- res
		}()
	}
}

// RunPropagator drains solvedQueue, joining each worker out of the active
// set, releasing the admission semaphore, and reporting the result as a
// candidate incumbent, until SignalSearchDone has been called and no
// worker remains active (spec §5, "Shutdown").
func (c *Coordinator) RunPropagator() {
	for res := range c.solvedQueue {
		c.mu.Lock()
		delete(c.active, res.ID)
		done := c.searchDone && len(c.active) == 0
		c.mu.Unlock()

		<-c.allowed // release a slot for the next dispatch

		if res.Err == nil && res.Assignment != nil {
			c.session.ReportIncumbent(res.Value, res.Assignment)
		}
		if done {
			return
		}
	}
}

// SignalSearchDone marks that no further subproblems will be dispatched.
// RunPropagator returns after the next result that leaves no worker
// active, or, if every result has already been consumed, once CloseQueues
// closes the solved queue.
func (c *Coordinator) SignalSearchDone() {
	c.mu.Lock()
	c.searchDone = true
	c.mu.Unlock()
}

// CloseQueues closes the leaf and solved queues, letting RunWorkers and
// RunPropagator's range loops terminate; callers must ensure no further
// Dispatch calls happen first.
func (c *Coordinator) CloseQueues() {
	close(c.leafQueue)
	c.wg.Wait()
	close(c.solvedQueue)
}

// Interrupt cancels every currently active worker's context (spec §5,
// "Cancellation").
func (c *Coordinator) Interrupt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cancel := range c.active {
		cancel()
	}
}
