package kernel

import "fmt"

// Kind tags an Event.
type Kind uint8

const (
	KeyPressed Kind = iota + 1
	KeyRepeated
	KeyReleased
	PointerPressed
	PointerDragged
	PointerReleased
	RepaintCanvas
	Run
)

func (k Kind) String() string {
	switch k {
	case KeyPressed:
		return "KeyPressed"
	case KeyRepeated:
		return "KeyRepeated"
	case KeyReleased:
		return "KeyReleased"
	case PointerPressed:
		return "PointerPressed"
	case PointerDragged:
		return "PointerDragged"
	case PointerReleased:
		return "PointerReleased"
	case RepaintCanvas:
		return "RepaintCanvas"
	case Run:
		return "Run"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// KeyEvent carries a host key code together with the mobile key code it
// maps to and that code's normalized form. Applications see PlatformCode;
// key state and game actions use NormalizedCode.
type KeyEvent struct {
	Code           int
	PlatformCode   int
	NormalizedCode int
}

// Rect is a repaint region.
type Rect struct {
	X, Y, W, H int
}

// Repainter is the target of a RepaintCanvas event.
type Repainter interface {
	PaintRegion(x, y, w, h int)
}

// Event is one unit of work for the dispatcher. Only the fields that belong
// to Kind are meaningful.
type Event struct {
	Kind   Kind
	Key    KeyEvent
	X, Y   int
	Region Rect
	Target Repainter
	Fn     func()
}

// Key builds a key event. kind must be KeyPressed, KeyRepeated or KeyReleased.
func Key(kind Kind, ke KeyEvent) Event {
	return Event{Kind: kind, Key: ke}
}

// Pointer builds a pointer event.
func Pointer(kind Kind, x, y int) Event {
	return Event{Kind: kind, X: x, Y: y}
}

// Repaint builds a RepaintCanvas event for target.
func Repaint(target Repainter, x, y, w, h int) Event {
	return Event{Kind: RepaintCanvas, Target: target, Region: Rect{X: x, Y: y, W: w, H: h}}
}

// Call builds a deferred callback event.
func Call(fn func()) Event {
	return Event{Kind: Run, Fn: fn}
}
