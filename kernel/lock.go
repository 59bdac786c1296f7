package kernel

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// DisplayLock is a mutex that the holding goroutine may re-acquire.
//
// Event handlers run with the lock held and MIDlet code routinely calls back
// into repaint paths that take it again from the same goroutine.
//
// Ownership is keyed by goroutine id, read from the runtime.Stack header, so
// Lock, TryLock and HeldByCaller each cost a small stack capture (see
// BenchmarkDisplayLock). Unlock does not.
type DisplayLock struct {
	mu    sync.Mutex
	cond  *sync.Cond
	owner int64
	depth int
}

func (l *DisplayLock) Lock() {
	id := goid()
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cond == nil {
		l.cond = sync.NewCond(&l.mu)
	}
	for l.depth > 0 && l.owner != id {
		l.cond.Wait()
	}
	l.owner = id
	l.depth++
}

func (l *DisplayLock) Unlock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.depth == 0 {
		panic("kernel: unlock of unlocked DisplayLock")
	}
	l.depth--
	if l.depth == 0 {
		l.owner = 0
		if l.cond != nil {
			l.cond.Signal()
		}
	}
}

// TryLock acquires the lock if it is free or already held by the caller.
func (l *DisplayLock) TryLock() bool {
	id := goid()
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.depth > 0 && l.owner != id {
		return false
	}
	l.owner = id
	l.depth++
	return true
}

// HeldByCaller reports whether the calling goroutine holds the lock.
func (l *DisplayLock) HeldByCaller() bool {
	id := goid()
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.depth > 0 && l.owner == id
}

// goid parses the current goroutine id from the runtime.Stack header
// ("goroutine 42 [running]:").
func goid() int64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseInt(string(b), 10, 64)
	return id
}
