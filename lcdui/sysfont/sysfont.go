// Package sysfont is the runtime's system bitmap font.
//
// Glyphs come from the 7x13 face in golang.org/x/image/font/basicfont and are
// exposed as a tinyfont.Fonter, optionally scaled by an integer factor.
package sysfont

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// Unscaled metrics of the face.
const (
	Advance = 7
	Height  = 13
	Ascent  = 11
	Descent = 2
)

// Font is a scaled view of the system face. It implements tinyfont.Fonter.
type Font struct {
	face  font.Face
	scale int
}

// New returns the system font at the given integer scale (minimum 1).
func New(scale int) *Font {
	if scale < 1 {
		scale = 1
	}
	return &Font{face: basicfont.Face7x13, scale: scale}
}

// Scale reports the integer scale factor.
func (f *Font) Scale() int { return f.scale }

func (f *Font) GetYAdvance() uint8 { return uint8(Height * f.scale) }

func (f *Font) GetGlyph(r rune) tinyfont.Glypher {
	return &glyph{f: f, r: r}
}

type glyph struct {
	f *Font
	r rune
}

func (g *glyph) Info() tinyfont.GlyphInfo {
	s := g.f.scale
	return tinyfont.GlyphInfo{
		Rune:     g.r,
		Width:    uint8(Advance * s),
		Height:   uint8(Height * s),
		XAdvance: uint8(Advance * s),
		XOffset:  0,
		YOffset:  int8(-Ascent * s),
	}
}

// Draw plots the glyph with its baseline origin at (x, y).
func (g *glyph) Draw(display drivers.Displayer, x, y int16, c color.RGBA) {
	dr, mask, mp, _, ok := g.f.face.Glyph(fixed.P(0, 0), g.r)
	if !ok {
		dr, mask, mp, _, ok = g.f.face.Glyph(fixed.P(0, 0), '?')
		if !ok {
			return
		}
	}
	s := g.f.scale
	for py := dr.Min.Y; py < dr.Max.Y; py++ {
		for px := dr.Min.X; px < dr.Max.X; px++ {
			if !covered(mask, mp.X+px-dr.Min.X, mp.Y+py-dr.Min.Y) {
				continue
			}
			for sy := 0; sy < s; sy++ {
				for sx := 0; sx < s; sx++ {
					display.SetPixel(x+int16(px*s+sx), y+int16(py*s+sy), c)
				}
			}
		}
	}
}

func covered(mask image.Image, x, y int) bool {
	_, _, _, a := mask.At(x, y).RGBA()
	return a >= 0x8000
}
