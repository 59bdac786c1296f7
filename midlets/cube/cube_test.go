package cube

import (
	"testing"

	"midp/kernel"
	"midp/lcdui"
	"midp/midlet"
	"midp/quarkgl"
)

type host struct{ d *kernel.Dispatcher }

func (h *host) Dispatcher() *kernel.Dispatcher           { return h.d }
func (h *host) QueuedPaint() bool                        { return true }
func (h *host) KeyStates() int                           { return 0 }
func (h *host) ScreenSize() (int, int)                   { return 96, 96 }
func (h *host) Present(*lcdui.Image, int, int, int, int) {}

func TestModelShape(t *testing.T) {
	m, err := Model(10)
	if err != nil {
		t.Fatalf("Model() error = %v", err)
	}
	if got := m.NumVertices(); got != 8 {
		t.Fatalf("NumVertices() = %d, want 8", got)
	}
	if got := m.VertexArrayCapacity(); got != 6*6*3 {
		t.Fatalf("VertexArrayCapacity() = %d, want %d", got, 6*6*3)
	}
}

func TestNeedsGL(t *testing.T) {
	d := lcdui.NewDisplay(&host{d: kernel.NewDispatcher(nil, nil, nil)})
	if _, err := New(midlet.Env{Display: d}); err == nil {
		t.Fatalf("New() without GL succeeded")
	}
}

func TestFrameDrawsCube(t *testing.T) {
	d := lcdui.NewDisplay(&host{d: kernel.NewDispatcher(nil, nil, nil)})
	m, err := New(midlet.Env{Display: d, GL: quarkgl.NewDevice(96, 96)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	demo := m.(*Demo)
	demo.canvas = lcdui.NewGameCanvas(d, false)

	if err := demo.Frame(); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	pix := demo.canvas.Buffer().Pix()
	if c := pix[48*96+48]; c == 0xFF101828 {
		t.Fatalf("center pixel = %#x, cube not drawn", c)
	}
	if c := pix[95*96+95]; c != 0xFF101828 {
		t.Fatalf("corner pixel = %#x, want background", c)
	}
	if demo.render.Queued() != 0 {
		t.Fatalf("Queued() = %d after Release", demo.render.Queued())
	}
}
