package wsl

// This file contains the session handle and the background worker: the one
// goroutine, locked to its OS thread, that is allowed to touch the COM
// session object. Handles forward their operations to it over a channel.

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/0xrawsec/golang-utils/log"
	"github.com/mmastrac/wsl-go/internal/backend"
)

// Session is a handle to the WSL user session service. It is safe to use
// from any number of goroutines: every operation is executed by a single
// background worker, serially, in send order.
//
// Handles are reference counted. Clone returns a new handle to the same
// worker, and the worker shuts down when the last handle is closed.
type Session struct {
	w      *worker
	closed atomic.Bool
}

// New connects to the WSL service. It spawns the background worker, which
// initializes its COM apartment and creates the session object, and waits
// for it to report back.
//
// The wait is bounded by ctx: if ctx expires first, New returns an
// *InitError wrapping ctx's error and the worker winds itself down. On any
// initialization failure no worker is left running.
func New(ctx context.Context) (*Session, error) {
	w := &worker{
		cmds: make(chan command),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	w.refs.Store(1)

	started := make(chan error, 1)
	go w.run(selectBackend(ctx), started)

	select {
	case err := <-started:
		if err != nil {
			return nil, &InitError{Err: err}
		}
	case <-ctx.Done():
		// If initialization eventually succeeds the worker will notice the
		// stop signal and drain immediately.
		w.signalStop()
		return nil, &InitError{Err: ctx.Err()}
	}

	return &Session{w: w}, nil
}

// Clone returns a new handle sharing this handle's worker. All clones
// serialize through the same worker, so no two operations ever execute
// concurrently against the service.
//
// A clone of a closed handle is closed as well.
func (s *Session) Clone() *Session {
	c := &Session{w: s.w}
	if s.closed.Load() {
		c.closed.Store(true)
		return c
	}
	s.w.refs.Add(1)
	return c
}

// Close releases this handle. Closing the last handle stops the worker:
// the session object is released and the COM apartment uninitialized before
// Close returns. That shutdown path is finite, so Close blocks only for as
// long as the command in flight (if any) takes to complete.
//
// Close is idempotent. It must not be called from a back-end implementation:
// the worker cannot join itself.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.w.refs.Add(-1) > 0 {
		return nil
	}

	s.w.signalStop()
	<-s.w.done
	return nil
}

// workerState tracks the worker's lifecycle. Transitions only ever move
// forward: initializing, ready, draining, terminated.
type workerState int32

const (
	stateInitializing workerState = iota
	stateReady
	stateDraining
	stateTerminated
)

// worker owns the COM apartment and the session object. It is shared by a
// handle and all its clones.
type worker struct {
	cmds chan command
	stop chan struct{} // closed when the last handle is closed
	done chan struct{} // closed when the worker goroutine has fully exited

	refs     atomic.Int32
	state    atomic.Int32
	stopOnce sync.Once
}

// command is one requested operation. apply executes it against the session
// object and delivers the outcome to the caller's reply channel; it must
// never block.
type command struct {
	op    string
	apply func(backend.Session)
}

func (w *worker) signalStop() {
	w.stopOnce.Do(func() { close(w.stop) })
}

func (w *worker) setState(s workerState) {
	w.state.Store(int32(s))
}

// run is the worker's thread function. The session service is
// apartment-affine: every call must come from the thread that initialized
// the apartment, so the goroutine locks itself to its OS thread and never
// unlocks; the thread is torn down with the goroutine when it exits.
func (w *worker) run(b backend.Backend, started chan<- error) {
	runtime.LockOSThread()

	defer close(w.done)
	defer w.setState(stateTerminated)

	if err := b.InitializeApartment(); err != nil {
		started <- err
		return
	}
	defer b.UninitializeApartment()

	session, err := b.NewSession()
	if err != nil {
		started <- err
		return
	}
	defer session.Release()

	w.setState(stateReady)
	started <- nil

	for {
		select {
		case cmd := <-w.cmds:
			log.Debugf("wsl session worker: %s", cmd.op)
			cmd.apply(session)
		case <-w.stop:
			w.setState(stateDraining)
			return
		}
	}
}

// post hands a command to the worker. It fails with ErrWorkerUnavailable if
// this handle is closed or the worker has terminated; it never panics and
// never blocks past the worker's own lifetime.
func (s *Session) post(c command) error {
	if s.closed.Load() {
		return ErrWorkerUnavailable
	}

	select {
	case s.w.cmds <- c:
		return nil
	case <-s.w.done:
		return ErrWorkerUnavailable
	}
}

type result[T any] struct {
	value T
	err   error
}

// request sends an operation to the worker and waits for its reply. The
// reply channel has capacity one so the worker can deliver without blocking:
// if ctx expires while waiting, the command still runs to completion on the
// worker and only the reply is discarded.
func request[T any](ctx context.Context, s *Session, op string, f func(backend.Session) (T, error)) (T, error) {
	out := make(chan result[T], 1)

	err := s.post(command{op: op, apply: func(session backend.Session) {
		value, err := f(session)
		out <- result[T]{value: value, err: err}
	}})
	if err != nil {
		var zero T
		return zero, err
	}

	select {
	case r := <-out:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
