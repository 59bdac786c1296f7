package kernel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"midp/internal/logging"
)

// State is the dispatcher run state.
type State uint32

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// ErrRunning is returned by Run when the dispatcher is already draining.
var ErrRunning = errors.New("kernel: dispatcher already running")

// Handler executes one dequeued event.
type Handler interface {
	HandleEvent(ev Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ev Event) error

func (f HandlerFunc) HandleEvent(ev Event) error { return f(ev) }

// Dispatcher drains a Queue on a single goroutine, running each event under
// the shared dispatch lock.
//
// A handler that panics or returns an error is reported and the loop moves on
// to the next event.
type Dispatcher struct {
	q    *Queue
	lock sync.Locker
	h    Handler

	state     atomic.Uint32
	seq       atomic.Uint64
	onFault   atomic.Pointer[func(Fault)]
	processed atomic.Uint64
}

// NewDispatcher wires a queue, the dispatch lock and a handler. A nil lock
// gets a fresh DisplayLock.
func NewDispatcher(q *Queue, lock sync.Locker, h Handler) *Dispatcher {
	if q == nil {
		q = NewQueue()
	}
	if lock == nil {
		lock = &DisplayLock{}
	}
	return &Dispatcher{q: q, lock: lock, h: h}
}

// Queue returns the queue the dispatcher drains.
func (d *Dispatcher) Queue() *Queue { return d.q }

// Lock returns the dispatch lock.
func (d *Dispatcher) Lock() sync.Locker { return d.lock }

// Submit enqueues ev. It never blocks and is safe from any goroutine,
// including from inside a handler.
func (d *Dispatcher) Submit(ev Event) { d.q.Submit(ev) }

// Drop clears pending events.
func (d *Dispatcher) Drop() int {
	n := d.q.Drop()
	if n > 0 {
		logging.Logger().Debug("dropped queued events", "count", n)
	}
	return n
}

// State reports whether Run is active.
func (d *Dispatcher) State() State { return State(d.state.Load()) }

// Processed returns the number of events handled so far.
func (d *Dispatcher) Processed() uint64 { return d.processed.Load() }

// OnFault installs a hook called (with the dispatch lock held) for every
// recovered handler fault. It must not panic.
func (d *Dispatcher) OnFault(fn func(Fault)) {
	if fn == nil {
		d.onFault.Store(nil)
		return
	}
	d.onFault.Store(&fn)
}

// Run drains the queue until ctx is done. It returns nil on cancellation.
func (d *Dispatcher) Run(ctx context.Context) error {
	if !d.state.CompareAndSwap(uint32(Stopped), uint32(Running)) {
		return ErrRunning
	}
	defer d.state.Store(uint32(Stopped))

	log := logging.Logger()
	log.Debug("event dispatcher started")
	for {
		ev, err := d.q.Take(ctx)
		if err != nil {
			log.Debug("event dispatcher stopped", "pending", d.q.Len())
			return nil
		}
		d.dispatch(ev)
	}
}

// Start runs the dispatcher on its own goroutine. The returned channel is
// closed once Run has returned.
func (d *Dispatcher) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := d.Run(ctx); err != nil {
			logging.Logger().Warn("event dispatcher", "error", err)
		}
	}()
	return done
}

func (d *Dispatcher) dispatch(ev Event) {
	seq := d.seq.Add(1)

	d.lock.Lock()
	defer d.lock.Unlock()
	defer d.processed.Add(1)
	defer func() {
		if v := recover(); v != nil {
			d.fault(Fault{Seq: seq, Event: ev, Value: v, Stack: captureStack()})
		}
	}()

	if d.h == nil {
		return
	}
	if err := d.h.HandleEvent(ev); err != nil {
		d.fault(Fault{Seq: seq, Event: ev, Err: err})
	}
}
