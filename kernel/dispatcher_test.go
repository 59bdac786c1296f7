package kernel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu  sync.Mutex
	log []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.log = append(r.log, s)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.log...)
}

type paintTarget struct{ r *recorder }

func (p paintTarget) PaintRegion(x, y, w, h int) {
	p.r.add(fmt.Sprintf("repaint(%d,%d,%d,%d)", x, y, w, h))
}

func routeTo(r *recorder) HandlerFunc {
	return func(ev Event) error {
		switch ev.Kind {
		case PointerPressed:
			r.add(fmt.Sprintf("pointer(%d,%d)", ev.X, ev.Y))
		case KeyPressed:
			r.add(fmt.Sprintf("key(%d)", ev.Key.Code))
		case RepaintCanvas:
			ev.Target.PaintRegion(ev.Region.X, ev.Region.Y, ev.Region.W, ev.Region.H)
		case Run:
			ev.Fn()
		}
		return nil
	}
}

func waitProcessed(t *testing.T, d *Dispatcher, n uint64) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for d.Processed() < n {
		if time.Now().After(deadline) {
			t.Fatalf("Processed() = %d, want %d", d.Processed(), n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestDispatcherScenarioOrder(t *testing.T) {
	r := &recorder{}
	d := NewDispatcher(nil, nil, routeTo(r))

	d.Submit(Pointer(PointerPressed, 10, 20))
	d.Submit(Repaint(paintTarget{r}, 0, 0, 50, 50))
	d.Submit(Key(KeyPressed, KeyEvent{Code: 'A'}))

	ctx, cancel := context.WithCancel(context.Background())
	done := d.Start(ctx)
	waitProcessed(t, d, 3)
	cancel()
	<-done

	got := r.snapshot()
	want := []string{"pointer(10,20)", "repaint(0,0,50,50)", "key(65)"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("handled = %v, want %v", got, want)
	}
}

func TestDispatcherRunsUnderLock(t *testing.T) {
	var mu sync.Mutex
	held := make(chan bool, 1)
	d := NewDispatcher(nil, &mu, HandlerFunc(func(ev Event) error {
		held <- !mu.TryLock()
		return nil
	}))
	ctx, cancel := context.WithCancel(context.Background())
	done := d.Start(ctx)
	d.Submit(Call(func() {}))
	if !<-held {
		t.Fatalf("dispatch lock not held during handler")
	}
	cancel()
	<-done
}

func TestDispatcherRecoversFaults(t *testing.T) {
	r := &recorder{}
	d := NewDispatcher(nil, nil, routeTo(r))

	var faults []Fault
	d.OnFault(func(f Fault) { faults = append(faults, f) })

	d.Submit(Call(func() { panic("boom") }))
	d.Submit(Call(func() { r.add("after-panic") }))
	d.Submit(Event{Kind: Run, Fn: func() { r.add("last") }})

	ctx, cancel := context.WithCancel(context.Background())
	done := d.Start(ctx)
	waitProcessed(t, d, 3)
	cancel()
	<-done

	got := r.snapshot()
	if fmt.Sprint(got) != fmt.Sprint([]string{"after-panic", "last"}) {
		t.Fatalf("handled = %v, want [after-panic last]", got)
	}
	if len(faults) != 1 {
		t.Fatalf("faults = %d, want 1", len(faults))
	}
	if faults[0].Value != "boom" || len(faults[0].Stack) == 0 {
		t.Fatalf("fault = %+v, want panic boom with stack", faults[0])
	}
}

func TestDispatcherHandlerError(t *testing.T) {
	errBad := errors.New("bad event")
	calls := 0
	d := NewDispatcher(nil, nil, HandlerFunc(func(ev Event) error {
		calls++
		if calls == 1 {
			return errBad
		}
		return nil
	}))
	var got error
	d.OnFault(func(f Fault) { got = f.Err })

	d.Submit(Call(nil))
	d.Submit(Call(nil))
	ctx, cancel := context.WithCancel(context.Background())
	done := d.Start(ctx)
	waitProcessed(t, d, 2)
	cancel()
	<-done

	if !errors.Is(got, errBad) {
		t.Fatalf("fault err = %v, want %v", got, errBad)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestDispatcherNestedSubmitRunsAfter(t *testing.T) {
	r := &recorder{}
	var d *Dispatcher
	d = NewDispatcher(nil, nil, routeTo(r))

	d.Submit(Call(func() {
		d.Submit(Call(func() { r.add("nested") }))
		r.add("outer-end")
	}))
	d.Submit(Call(func() { r.add("second") }))

	ctx, cancel := context.WithCancel(context.Background())
	done := d.Start(ctx)
	waitProcessed(t, d, 3)
	cancel()
	<-done

	got := r.snapshot()
	want := []string{"outer-end", "second", "nested"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("handled = %v, want %v", got, want)
	}
}

func TestDispatcherDropSkipsPending(t *testing.T) {
	r := &recorder{}
	d := NewDispatcher(nil, nil, routeTo(r))

	for i := 0; i < 5; i++ {
		i := i
		d.Submit(Call(func() { r.add(fmt.Sprintf("old%d", i)) }))
	}
	if n := d.Drop(); n != 5 {
		t.Fatalf("Drop() = %d, want 5", n)
	}
	d.Submit(Call(func() { r.add("new") }))

	ctx, cancel := context.WithCancel(context.Background())
	done := d.Start(ctx)
	waitProcessed(t, d, 1)
	cancel()
	<-done

	got := r.snapshot()
	if fmt.Sprint(got) != fmt.Sprint([]string{"new"}) {
		t.Fatalf("handled = %v, want [new]", got)
	}
}

func TestDispatcherStateMachine(t *testing.T) {
	d := NewDispatcher(nil, nil, nil)
	if got := d.State(); got != Stopped {
		t.Fatalf("State() = %v, want stopped", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := d.Start(ctx)
	deadline := time.Now().Add(5 * time.Second)
	for d.State() != Running {
		if time.Now().After(deadline) {
			t.Fatalf("State() never reached running")
		}
		time.Sleep(time.Millisecond)
	}
	if err := d.Run(ctx); !errors.Is(err, ErrRunning) {
		t.Fatalf("Run() while running err = %v, want ErrRunning", err)
	}

	cancel()
	<-done
	if got := d.State(); got != Stopped {
		t.Fatalf("State() after cancel = %v, want stopped", got)
	}
}
