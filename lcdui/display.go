package lcdui

import (
	"midp/kernel"
)

// Host is the platform side of the display.
type Host interface {
	Dispatcher() *kernel.Dispatcher
	// Present copies the (x, y, w, h) region of img onto the LCD and shows
	// the frame.
	Present(img *Image, x, y, w, h int)
	QueuedPaint() bool
	KeyStates() int
	ScreenSize() (w, h int)
}

// Displayable is a screen that can be made current and receives routed input.
type Displayable interface {
	KeyPressed(ke kernel.KeyEvent)
	KeyReleased(ke kernel.KeyEvent)
	KeyRepeated(ke kernel.KeyEvent)
	PointerPressed(x, y int)
	PointerDragged(x, y int)
	PointerReleased(x, y int)
	ShowNotify()
	HideNotify()
}

type repainter interface{ Repaint() }

// Display tracks the current Displayable. It does not own displayables.
type Display struct {
	host    Host
	current Displayable
}

func NewDisplay(host Host) *Display {
	return &Display{host: host}
}

func (d *Display) Host() Host { return d.host }

func (d *Display) locked(fn func()) {
	l := d.host.Dispatcher().Lock()
	l.Lock()
	defer l.Unlock()
	fn()
}

// Current returns the active displayable, or nil.
func (d *Display) Current() Displayable {
	var cur Displayable
	d.locked(func() { cur = d.current })
	return cur
}

// SetCurrent swaps the active displayable and requests a full repaint of
// the new one.
func (d *Display) SetCurrent(next Displayable) {
	changed := false
	d.locked(func() {
		prev := d.current
		if prev == next {
			return
		}
		d.current = next
		changed = true
		if prev != nil {
			prev.HideNotify()
		}
		if next != nil {
			next.ShowNotify()
		}
	})
	if r, ok := next.(repainter); ok && changed {
		r.Repaint()
	}
}

// CallSerially runs fn on the event goroutine after pending events.
func (d *Display) CallSerially(fn func()) {
	d.host.Dispatcher().Submit(kernel.Call(fn))
}

// Route delivers a key or pointer event to the current displayable. It must
// be called with the dispatch lock held. Events with no current displayable
// are dropped.
func (d *Display) Route(ev kernel.Event) bool {
	cur := d.current
	if cur == nil {
		return false
	}
	switch ev.Kind {
	case kernel.KeyPressed:
		cur.KeyPressed(ev.Key)
	case kernel.KeyReleased:
		cur.KeyReleased(ev.Key)
	case kernel.KeyRepeated:
		cur.KeyRepeated(ev.Key)
	case kernel.PointerPressed:
		cur.PointerPressed(ev.X, ev.Y)
	case kernel.PointerDragged:
		cur.PointerDragged(ev.X, ev.Y)
	case kernel.PointerReleased:
		cur.PointerReleased(ev.X, ev.Y)
	default:
		return false
	}
	return true
}

// Resized tells the current displayable the screen size changed.
func (d *Display) Resized() {
	var cur Displayable
	d.locked(func() { cur = d.current })
	if c, ok := cur.(interface{ fitScreen() bool }); ok && c.fitScreen() {
		if r, ok := cur.(repainter); ok {
			r.Repaint()
		}
	}
}
