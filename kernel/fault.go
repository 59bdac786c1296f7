package kernel

import (
	"fmt"

	"midp/internal/logging"
)

// Fault describes a handler that panicked or returned an error.
type Fault struct {
	Seq   uint64
	Event Event
	Value any
	Err   error
	Stack []byte
}

func (f Fault) String() string {
	if f.Err != nil {
		return fmt.Sprintf("event #%d %s: %v", f.Seq, f.Event.Kind, f.Err)
	}
	return fmt.Sprintf("event #%d %s: panic: %v", f.Seq, f.Event.Kind, f.Value)
}

func (d *Dispatcher) fault(f Fault) {
	log := logging.Logger()
	if f.Err != nil {
		log.Warn("event handler failed", "seq", f.Seq, "kind", f.Event.Kind.String(), "error", f.Err)
	} else {
		log.Warn("event handler panicked", "seq", f.Seq, "kind", f.Event.Kind.String(), "panic", fmt.Sprint(f.Value), "stack", string(f.Stack))
	}

	p := d.onFault.Load()
	if p == nil {
		return
	}
	defer func() {
		if v := recover(); v != nil {
			log.Error("fault hook panicked", "panic", fmt.Sprint(v))
		}
	}()
	(*p)(f)
}
