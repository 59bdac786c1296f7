// Package media tracks player stop listeners and plays MIDP tones.
package media

import (
	"sync"

	"midp/internal/logging"
)

// Handle identifies a player for its lifetime.
type Handle uint64

// Registration is one stop listener. Close unregisters it.
type Registration struct {
	h    Handle
	fn   func()
	mu   sync.Mutex
	dead bool
}

// Close stops further notifications. The entry is dropped on the next
// dispatch for its handle.
func (r *Registration) Close() {
	r.mu.Lock()
	r.dead = true
	r.mu.Unlock()
}

func (r *Registration) alive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.dead
}

// Registry maps players to their stop listeners. It is owned by whatever
// creates and closes players; closing a player calls Unregister.
type Registry struct {
	mu        sync.Mutex
	listeners map[Handle][]*Registration
}

func NewRegistry() *Registry {
	return &Registry{listeners: make(map[Handle][]*Registration)}
}

// Register adds fn as a stop listener of h.
func (r *Registry) Register(h Handle, fn func()) *Registration {
	reg := &Registration{h: h, fn: fn}
	r.mu.Lock()
	r.listeners[h] = append(r.listeners[h], reg)
	r.mu.Unlock()
	return reg
}

// Unregister drops every listener of h.
func (r *Registry) Unregister(h Handle) {
	r.mu.Lock()
	delete(r.listeners, h)
	r.mu.Unlock()
}

// Len is the number of entries kept for h, closed ones included until the
// next dispatch prunes them.
func (r *Registry) Len(h Handle) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners[h])
}

// NotifyStop calls the live listeners of h in registration order and prunes
// closed ones. Listeners run without the registry lock held and may
// register or close listeners themselves.
func (r *Registry) NotifyStop(h Handle) int {
	r.mu.Lock()
	list := r.listeners[h]
	live := list[:0]
	for _, reg := range list {
		if reg.alive() {
			live = append(live, reg)
		}
	}
	clear(list[len(live):])
	if len(live) == 0 {
		delete(r.listeners, h)
	} else {
		r.listeners[h] = live
	}
	calls := append([]*Registration(nil), live...)
	r.mu.Unlock()

	n := 0
	for _, reg := range calls {
		if reg.alive() {
			reg.fn()
			n++
		}
	}
	logging.Logger().Debug("media: player stopped", "handle", uint64(h), "listeners", n)
	return n
}
