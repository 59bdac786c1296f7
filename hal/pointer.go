package hal

// pointerState turns polled button state into press, drag and release calls.
type pointerState struct {
	down bool
	x, y int
}

func (p *pointerState) update(sink InputSink, down bool, x, y int) {
	switch {
	case down && !p.down:
		sink.PointerPressed(x, y)
	case down && (x != p.x || y != p.y):
		sink.PointerDragged(x, y)
	case !down && p.down:
		sink.PointerReleased(x, y)
	}
	p.down, p.x, p.y = down, x, y
}
