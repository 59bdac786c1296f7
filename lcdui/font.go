package lcdui

import (
	"sync"

	"midp/lcdui/sysfont"

	"tinygo.org/x/tinyfont"
)

// Font faces, styles and sizes.
const (
	FaceSystem       = 0
	FaceMonospace    = 32
	FaceProportional = 64

	StylePlain      = 0
	StyleBold       = 1
	StyleItalic     = 2
	StyleUnderlined = 4

	SizeSmall  = 8
	SizeMedium = 0
	SizeLarge  = 16
)

// Font is a face/style/size triple backed by the system bitmap font.
type Font struct {
	face, style, size int
	glyphs            *sysfont.Font
}

var (
	fontMu    sync.Mutex
	fontScale = 1
	fontCache = map[[3]int]*Font{}
)

// SetFontScale sets the base glyph scale used by fonts created afterwards.
// Large fonts use twice the base scale.
func SetFontScale(scale int) {
	if scale < 1 {
		scale = 1
	}
	fontMu.Lock()
	defer fontMu.Unlock()
	if scale != fontScale {
		fontScale = scale
		fontCache = map[[3]int]*Font{}
	}
}

// NewFont returns the font for face, style and size.
func NewFont(face, style, size int) *Font {
	fontMu.Lock()
	defer fontMu.Unlock()
	key := [3]int{face, style, size}
	if f, ok := fontCache[key]; ok {
		return f
	}
	scale := fontScale
	if size == SizeLarge {
		scale *= 2
	}
	f := &Font{face: face, style: style, size: size, glyphs: sysfont.New(scale)}
	fontCache[key] = f
	return f
}

// DefaultFont is the plain medium system font.
func DefaultFont() *Font { return NewFont(FaceSystem, StylePlain, SizeMedium) }

func (f *Font) Face() int  { return f.face }
func (f *Font) Style() int { return f.style }
func (f *Font) Size() int  { return f.size }

func (f *Font) Height() int   { return sysfont.Height * f.glyphs.Scale() }
func (f *Font) Baseline() int { return sysfont.Ascent * f.glyphs.Scale() }

func (f *Font) StringWidth(s string) int {
	_, w := tinyfont.LineWidth(f.glyphs, s)
	if f.style&StyleBold != 0 && w > 0 {
		w++
	}
	return int(w)
}

func (f *Font) CharWidth(r rune) int { return f.StringWidth(string(r)) }
