package lcdui

import "testing"

func newTestGraphics(t *testing.T, w, h int) *Graphics {
	t.Helper()
	img, err := NewImage(w, h)
	if err != nil {
		t.Fatalf("NewImage() error = %v", err)
	}
	return img.Graphics()
}

func TestFillRectHonoursClipAndTranslate(t *testing.T) {
	g := newTestGraphics(t, 8, 8)
	g.Translate(2, 2)
	g.ClipRect(0, 0, 3, 3)
	g.SetColor(0x00FF00)
	g.FillRect(-5, -5, 20, 20)

	pix := g.Image().Pix()
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			inside := x >= 2 && x < 5 && y >= 2 && y < 5
			want := uint32(0xFFFFFFFF)
			if inside {
				want = 0xFF00FF00
			}
			if got := pix[y*8+x]; got != want {
				t.Fatalf("pix(%d,%d) = %#x, want %#x", x, y, got, want)
			}
		}
	}
	if x, y, w, h := g.Clip(); x != 0 || y != 0 || w != 3 || h != 3 {
		t.Fatalf("Clip() = %d,%d,%d,%d, want 0,0,3,3", x, y, w, h)
	}
}

func TestDrawImageBlendsAlpha(t *testing.T) {
	g := newTestGraphics(t, 2, 2)
	g.SetColor(0)
	g.FillRect(0, 0, 2, 2)
	src, _ := NewRGBImage([]uint32{0x80FFFFFF, 0x00FF0000, 0xFF0000FF, 0xFF0000FF}, 2, 2, true)
	g.DrawImage(src, 1, 1, HCenter|VCenter)

	pix := g.Image().Pix()
	if got := pix[0] & 0xFF; got < 0x7F || got > 0x81 {
		t.Fatalf("half-alpha blend = %#x, want ~0x80", pix[0])
	}
	if pix[1] != 0xFF000000 {
		t.Fatalf("transparent pixel = %#x, want untouched black", pix[1])
	}
	if pix[2] != 0xFF0000FF {
		t.Fatalf("opaque pixel = %#x, want blue", pix[2])
	}
}

func TestDrawRegionRot270(t *testing.T) {
	g := newTestGraphics(t, 3, 2)
	src, _ := NewRGBImage([]uint32{1, 2, 3, 4, 5, 6}, 2, 3, false)
	g.DrawRegion(src, 0, 0, 2, 3, TransRot270, 0, 0, Top|Left)
	want := []uint32{2, 4, 6, 1, 3, 5}
	for i, p := range g.Image().Pix() {
		if p != want[i]|0xFF000000 {
			t.Fatalf("pix = %#x, want %v", g.Image().Pix(), want)
		}
	}
}

func TestDrawImagePartIgnoresTranslate(t *testing.T) {
	g := newTestGraphics(t, 4, 4)
	g.Translate(1, 1)
	src, _ := NewARGBImage(4, 4, 0xFF123456)
	g.DrawImagePart(src, 1, 1, 2, 2)
	pix := g.Image().Pix()
	if pix[1*4+1] != 0xFF123456 || pix[2*4+2] != 0xFF123456 {
		t.Fatalf("region not copied: %#x", pix)
	}
	if pix[0] != 0xFFFFFFFF || pix[3*4+3] != 0xFFFFFFFF {
		t.Fatalf("outside region changed: %#x", pix)
	}
}

func TestDrawStringCentered(t *testing.T) {
	g := newTestGraphics(t, 120, 40)
	g.SetColor(0)
	msg := "Game crashed :("
	g.DrawString(msg, 60, 20, HCenter|VCenter)

	w := g.Font().StringWidth(msg)
	h := g.Font().Height()
	minX, minY, maxX, maxY := 120, 40, -1, -1
	for i, p := range g.Image().Pix() {
		if p != 0xFF000000 {
			continue
		}
		x, y := i%120, i/120
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}
	if maxX < 0 {
		t.Fatalf("DrawString() drew nothing")
	}
	if minX < 60-w/2 || maxX >= 60-w/2+w {
		t.Fatalf("text x span [%d,%d] outside [%d,%d)", minX, maxX, 60-w/2, 60-w/2+w)
	}
	if minY < 20-h/2 || maxY >= 20-h/2+h {
		t.Fatalf("text y span [%d,%d] outside [%d,%d)", minY, maxY, 20-h/2, 20-h/2+h)
	}
}

func TestFillTriangleEitherWinding(t *testing.T) {
	for _, pts := range [][6]int{{0, 0, 4, 0, 0, 4}, {0, 0, 0, 4, 4, 0}} {
		g := newTestGraphics(t, 5, 5)
		g.SetColor(0)
		g.FillTriangle(pts[0], pts[1], pts[2], pts[3], pts[4], pts[5])
		if g.Image().Pix()[1*5+1] != 0xFF000000 {
			t.Fatalf("FillTriangle(%v) missed interior pixel", pts)
		}
		if g.Image().Pix()[4*5+4] != 0xFFFFFFFF {
			t.Fatalf("FillTriangle(%v) filled outside pixel", pts)
		}
	}
}

func TestGameActionRoundTrip(t *testing.T) {
	for _, a := range []int{ActionUp, ActionDown, ActionLeft, ActionRight, ActionFire, GameA, GameB, GameC, GameD} {
		if got := GameAction(KeyCode(a)); got != a {
			t.Fatalf("GameAction(KeyCode(%d)) = %d", a, got)
		}
	}
	if got := GameAction(KeyLeft); got != ActionLeft {
		t.Fatalf("GameAction(KeyLeft) = %d, want %d", got, ActionLeft)
	}
}
