package lcdui

// Anchor points for images and text.
const (
	HCenter  = 1
	VCenter  = 2
	Left     = 4
	Right    = 8
	Top      = 16
	Bottom   = 32
	Baseline = 64
)

// Region transforms.
const (
	TransNone         = 0
	TransMirrorRot180 = 1
	TransMirror       = 2
	TransRot180       = 3
	TransMirrorRot270 = 4
	TransRot90        = 5
	TransRot270       = 6
	TransMirrorRot90  = 7
)

func transformedSize(w, h, transform int) (int, int) {
	switch transform {
	case TransRot90, TransRot270, TransMirrorRot90, TransMirrorRot270:
		return h, w
	}
	return w, h
}

// transformSource maps destination pixel (dx, dy) of a transformed w*h
// region back to its source pixel. Rotations are clockwise.
func transformSource(dx, dy, w, h, transform int) (sx, sy int) {
	switch transform {
	case TransRot90:
		return dy, h - 1 - dx
	case TransRot180:
		return w - 1 - dx, h - 1 - dy
	case TransRot270:
		return w - 1 - dy, dx
	case TransMirror:
		return w - 1 - dx, dy
	case TransMirrorRot90:
		return w - 1 - dy, h - 1 - dx
	case TransMirrorRot180:
		return dx, h - 1 - dy
	case TransMirrorRot270:
		return dy, dx
	}
	return dx, dy
}

func anchorX(x, w, anchor int) int {
	switch {
	case anchor&HCenter != 0:
		return x - w/2
	case anchor&Right != 0:
		return x - w
	}
	return x
}

func anchorY(y, h, anchor int) int {
	switch {
	case anchor&VCenter != 0:
		return y - h/2
	case anchor&Bottom != 0:
		return y - h
	}
	return y
}
