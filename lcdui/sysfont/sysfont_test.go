package sysfont

import (
	"image/color"
	"testing"

	"tinygo.org/x/tinyfont"
)

type pixels map[[2]int16]bool

func (p pixels) Size() (x, y int16)                { return 100, 100 }
func (p pixels) SetPixel(x, y int16, c color.RGBA) { p[[2]int16{x, y}] = true }
func (p pixels) Display() error                    { return nil }

func TestGlyphStaysInsideCell(t *testing.T) {
	for _, scale := range []int{1, 2} {
		f := New(scale)
		p := pixels{}
		f.GetGlyph('W').Draw(p, 10, 40, color.RGBA{A: 255})
		if len(p) == 0 {
			t.Fatalf("scale %d: Draw('W') set no pixels", scale)
		}
		for xy := range p {
			if xy[0] < 10 || xy[0] >= int16(10+Advance*scale) {
				t.Fatalf("scale %d: x = %d outside cell", scale, xy[0])
			}
			if xy[1] < int16(40-Ascent*scale) || xy[1] >= int16(40+Descent*scale) {
				t.Fatalf("scale %d: y = %d outside cell", scale, xy[1])
			}
		}
	}
}

func TestLineWidth(t *testing.T) {
	_, w := tinyfont.LineWidth(New(2), "abc")
	if w != 3*Advance*2 {
		t.Fatalf("LineWidth() = %d, want %d", w, 3*Advance*2)
	}
}

func TestSpaceIsBlank(t *testing.T) {
	p := pixels{}
	New(1).GetGlyph(' ').Draw(p, 0, 20, color.RGBA{A: 255})
	if len(p) != 0 {
		t.Fatalf("Draw(' ') set %d pixels, want 0", len(p))
	}
}
