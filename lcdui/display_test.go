package lcdui

import (
	"testing"

	"midp/kernel"
)

type present struct {
	img        *Image
	x, y, w, h int
}

type fakeHost struct {
	d        *kernel.Dispatcher
	queued   bool
	keys     int
	w, h     int
	presents []present
}

func newFakeHost(queued bool) *fakeHost {
	return &fakeHost{d: kernel.NewDispatcher(nil, nil, nil), queued: queued, w: 16, h: 12}
}

func (h *fakeHost) Dispatcher() *kernel.Dispatcher { return h.d }
func (h *fakeHost) QueuedPaint() bool              { return h.queued }
func (h *fakeHost) KeyStates() int                 { return h.keys }
func (h *fakeHost) ScreenSize() (int, int)         { return h.w, h.h }

func (h *fakeHost) Present(img *Image, x, y, w, hh int) {
	h.presents = append(h.presents, present{img, x, y, w, hh})
}

// drain runs queued repaint events the way the platform handler does.
func (h *fakeHost) drain() {
	for {
		ev, ok := h.d.Queue().TryTake()
		if !ok {
			return
		}
		if ev.Kind == kernel.RepaintCanvas {
			ev.Target.PaintRegion(ev.Region.X, ev.Region.Y, ev.Region.W, ev.Region.H)
		}
		if ev.Kind == kernel.Run {
			ev.Fn()
		}
	}
}

type app struct {
	paints  int
	keys    []int
	shown   int
	hidden  int
	pointer [2]int
}

// Paint fills red on the first paint and green afterwards.
func (a *app) Paint(g *Graphics) {
	a.paints++
	g.SetColor(0xFF0000)
	if a.paints > 1 {
		g.SetColor(0x00FF00)
	}
	g.FillRect(0, 0, 16, 12)
}

func (a *app) KeyPressed(code int)      { a.keys = append(a.keys, code) }
func (a *app) KeyReleased(code int)     { a.keys = append(a.keys, -code) }
func (a *app) PointerPressed(x, y int)  { a.pointer = [2]int{x, y} }
func (a *app) PointerDragged(x, y int)  {}
func (a *app) PointerReleased(x, y int) {}
func (a *app) ShowNotify()              { a.shown++ }
func (a *app) HideNotify()              { a.hidden++ }

func TestImmediateRepaintPresentsSynchronously(t *testing.T) {
	h := newFakeHost(false)
	d := NewDisplay(h)
	a := &app{}
	c := NewCanvas(d, a)

	c.Repaint()
	if len(h.presents) != 0 {
		t.Fatalf("presents before SetCurrent = %d, want 0", len(h.presents))
	}

	d.SetCurrent(c)
	if len(h.presents) != 1 || a.paints != 1 || a.shown != 1 {
		t.Fatalf("after SetCurrent presents=%d paints=%d shown=%d, want 1 1 1", len(h.presents), a.paints, a.shown)
	}

	c.RepaintRegion(1, 2, 3, 4)
	p := h.presents[len(h.presents)-1]
	if p.x != 1 || p.y != 2 || p.w != 3 || p.h != 4 {
		t.Fatalf("present region = %+v, want 1,2,3,4", p)
	}
	if got := p.img.Pix()[0]; got != 0xFFFF0000 {
		t.Fatalf("pixel (0,0) outside clip = %#x, want red from first paint", got)
	}
	if got := p.img.Pix()[2*16+1]; got != 0xFF00FF00 {
		t.Fatalf("pixel (1,2) = %#x, want green", got)
	}
}

func TestQueuedRepaintDeferred(t *testing.T) {
	h := newFakeHost(true)
	d := NewDisplay(h)
	a := &app{}
	c := NewCanvas(d, a)
	d.SetCurrent(c)
	if len(h.presents) != 0 {
		t.Fatalf("presents = %d before drain, want 0", len(h.presents))
	}
	if got := h.d.Queue().Len(); got != 1 {
		t.Fatalf("queued events = %d, want 1", got)
	}
	h.drain()
	if len(h.presents) != 1 || a.paints != 1 {
		t.Fatalf("after drain presents=%d paints=%d, want 1 1", len(h.presents), a.paints)
	}
}

func TestServiceRepaintsPaintsQueuedRequests(t *testing.T) {
	h := newFakeHost(true)
	d := NewDisplay(h)
	a := &app{}
	c := NewCanvas(d, a)
	d.SetCurrent(c)
	c.RepaintRegion(1, 2, 3, 4)

	c.ServiceRepaints()
	if len(h.presents) != 1 || a.paints != 1 {
		t.Fatalf("after ServiceRepaints presents=%d paints=%d, want 1 1", len(h.presents), a.paints)
	}
	if p := h.presents[0]; p.x != 0 || p.y != 0 || p.w != 16 || p.h != 12 {
		t.Fatalf("present region = %+v, want the union 0,0,16,12", p)
	}

	// The events already queued are spent.
	h.drain()
	if len(h.presents) != 1 || a.paints != 1 {
		t.Fatalf("after drain presents=%d paints=%d, want 1 1", len(h.presents), a.paints)
	}
	c.ServiceRepaints()
	if len(h.presents) != 1 {
		t.Fatalf("ServiceRepaints() with nothing queued presented")
	}

	c.RepaintRegion(0, 0, 2, 2)
	h.drain()
	if len(h.presents) != 2 || a.paints != 2 {
		t.Fatalf("later repaint presents=%d paints=%d, want 2 2", len(h.presents), a.paints)
	}
}

func TestRouteToCurrent(t *testing.T) {
	h := newFakeHost(true)
	d := NewDisplay(h)
	if d.Route(kernel.Key(kernel.KeyPressed, kernel.KeyEvent{Code: 101, PlatformCode: 53, NormalizedCode: 53})) {
		t.Fatalf("Route() with no current = true, want dropped")
	}

	a := &app{}
	c := NewCanvas(d, a)
	d.SetCurrent(c)
	d.Route(kernel.Key(kernel.KeyPressed, kernel.KeyEvent{Code: 101, PlatformCode: 53, NormalizedCode: 53}))
	d.Route(kernel.Key(kernel.KeyReleased, kernel.KeyEvent{Code: 101, PlatformCode: 53, NormalizedCode: 53}))
	d.Route(kernel.Pointer(kernel.PointerPressed, 7, 9))
	if len(a.keys) != 2 || a.keys[0] != 53 || a.keys[1] != -53 {
		t.Fatalf("keys = %v, want [53 -53]", a.keys)
	}
	if a.pointer != [2]int{7, 9} {
		t.Fatalf("pointer = %v, want [7 9]", a.pointer)
	}

	other := NewCanvas(d, &app{})
	d.SetCurrent(other)
	if a.hidden != 1 {
		t.Fatalf("HideNotify calls = %d, want 1", a.hidden)
	}
}

func TestGameCanvasFlush(t *testing.T) {
	for _, queued := range []bool{false, true} {
		h := newFakeHost(queued)
		h.keys = UpPressed | FirePressed
		d := NewDisplay(h)
		gc := NewGameCanvas(d, false)
		d.SetCurrent(gc)
		h.drain()
		h.presents = nil

		g := gc.Graphics()
		g.SetColor(0x0000FF)
		g.FillRect(0, 0, 16, 12)
		gc.FlushGraphics()

		if len(h.presents) != 1 {
			t.Fatalf("queued=%v: presents = %d, want 1 without draining", queued, len(h.presents))
		}
		if got := h.presents[0].img.Pix()[5]; got != 0xFF0000FF {
			t.Fatalf("queued=%v: presented pixel = %#x, want blue", queued, got)
		}
		if got := gc.KeyStates(); got != UpPressed|FirePressed {
			t.Fatalf("KeyStates() = %#x, want %#x", got, UpPressed|FirePressed)
		}
	}
}

func TestGameCanvasSuppressesGameKeys(t *testing.T) {
	h := newFakeHost(false)
	d := NewDisplay(h)
	gc := NewGameCanvas(d, true)
	a := &app{}
	gc.SetListener(a)
	d.SetCurrent(gc)
	d.Route(kernel.Key(kernel.KeyPressed, kernel.KeyEvent{PlatformCode: KeyNum5, NormalizedCode: KeyFire}))
	d.Route(kernel.Key(kernel.KeyPressed, kernel.KeyEvent{PlatformCode: KeyStar, NormalizedCode: KeyStar}))
	if len(a.keys) != 1 || a.keys[0] != KeyStar {
		t.Fatalf("keys = %v, want [%d]", a.keys, KeyStar)
	}
}
