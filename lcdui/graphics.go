package lcdui

import (
	"image"
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// Graphics draws into a mutable Image. Coordinates are relative to the
// current translation; all output is clipped.
//
// Graphics is also a drivers.Displayer so tinyfont can render into it.
type Graphics struct {
	img    *Image
	color  uint32
	tx, ty int
	clip   image.Rectangle
	font   *Font
}

func newGraphics(img *Image) *Graphics {
	return &Graphics{
		img:   img,
		color: 0xFF000000,
		clip:  img.Bounds(),
		font:  DefaultFont(),
	}
}

// Image returns the drawing target.
func (g *Graphics) Image() *Image { return g.img }

// SetColor sets the current colour from 0xRRGGBB.
func (g *Graphics) SetColor(rgb int) { g.color = 0xFF000000 | uint32(rgb)&0xFFFFFF }

func (g *Graphics) SetRGB(r, gr, b int) { g.SetColor(r<<16 | gr<<8 | b) }

func (g *Graphics) Color() int { return int(g.color & 0xFFFFFF) }

func (g *Graphics) SetFont(f *Font) {
	if f == nil {
		f = DefaultFont()
	}
	g.font = f
}

func (g *Graphics) Font() *Font { return g.font }

func (g *Graphics) Translate(x, y int) {
	g.tx += x
	g.ty += y
}

func (g *Graphics) TranslateX() int { return g.tx }
func (g *Graphics) TranslateY() int { return g.ty }

// SetClip replaces the clip rectangle.
func (g *Graphics) SetClip(x, y, w, h int) {
	r := image.Rect(x+g.tx, y+g.ty, x+g.tx+w, y+g.ty+h)
	g.clip = r.Intersect(g.img.Bounds())
}

// ClipRect intersects the clip rectangle with the given one.
func (g *Graphics) ClipRect(x, y, w, h int) {
	r := image.Rect(x+g.tx, y+g.ty, x+g.tx+w, y+g.ty+h)
	g.clip = g.clip.Intersect(r)
}

// Clip returns the clip rectangle in translated coordinates.
func (g *Graphics) Clip() (x, y, w, h int) {
	return g.clip.Min.X - g.tx, g.clip.Min.Y - g.ty, g.clip.Dx(), g.clip.Dy()
}

// plot writes an absolute pixel, blending by its alpha.
func (g *Graphics) plot(x, y int, argb uint32) {
	if !(image.Point{X: x, Y: y}).In(g.clip) {
		return
	}
	i := y*g.img.w + x
	switch a := argb >> 24; a {
	case 0:
	case 0xFF:
		g.img.pix[i] = argb
	default:
		g.img.pix[i] = blend(g.img.pix[i], argb, a)
	}
}

func blend(dst, src, a uint32) uint32 {
	na := 255 - a
	ch := func(shift uint) uint32 {
		s := src >> shift & 0xFF
		d := dst >> shift & 0xFF
		return (s*a + d*na) / 255 << shift
	}
	da := dst >> 24
	outA := a + da*na/255
	return outA<<24 | ch(16) | ch(8) | ch(0)
}

func (g *Graphics) FillRect(x, y, w, h int) {
	r := image.Rect(x+g.tx, y+g.ty, x+g.tx+w, y+g.ty+h).Intersect(g.clip)
	for py := r.Min.Y; py < r.Max.Y; py++ {
		row := g.img.pix[py*g.img.w:]
		for px := r.Min.X; px < r.Max.X; px++ {
			row[px] = g.color
		}
	}
}

func (g *Graphics) DrawRect(x, y, w, h int) {
	if w < 0 || h < 0 {
		return
	}
	g.DrawLine(x, y, x+w, y)
	g.DrawLine(x, y+h, x+w, y+h)
	g.DrawLine(x, y, x, y+h)
	g.DrawLine(x+w, y, x+w, y+h)
}

func (g *Graphics) DrawLine(x0, y0, x1, y1 int) {
	x0, y0 = x0+g.tx, y0+g.ty
	x1, y1 = x1+g.tx, y1+g.ty
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		g.plot(x0, y0, g.color)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (g *Graphics) DrawTriangle(x0, y0, x1, y1, x2, y2 int) {
	g.DrawLine(x0, y0, x1, y1)
	g.DrawLine(x1, y1, x2, y2)
	g.DrawLine(x2, y2, x0, y0)
}

// FillTriangle fills pixels whose centres fall inside the triangle.
func (g *Graphics) FillTriangle(x0, y0, x1, y1, x2, y2 int) {
	x0, y0 = x0+g.tx, y0+g.ty
	x1, y1 = x1+g.tx, y1+g.ty
	x2, y2 = x2+g.tx, y2+g.ty
	r := image.Rect(min(x0, x1, x2), min(y0, y1, y2), max(x0, x1, x2)+1, max(y0, y1, y2)+1).Intersect(g.clip)
	area := edge(x0, y0, x1, y1, x2, y2)
	if area == 0 {
		return
	}
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			w0 := edge(x1, y1, x2, y2, px, py)
			w1 := edge(x2, y2, x0, y0, px, py)
			w2 := edge(x0, y0, x1, y1, px, py)
			if area > 0 && (w0 < 0 || w1 < 0 || w2 < 0) || area < 0 && (w0 > 0 || w1 > 0 || w2 > 0) {
				continue
			}
			g.img.pix[py*g.img.w+px] = g.color
		}
	}
}

func edge(x0, y0, x1, y1, x, y int) int {
	return (x-x0)*(y1-y0) - (y-y0)*(x1-x0)
}

// DrawImage draws src with the given anchor, blending by source alpha.
func (g *Graphics) DrawImage(src *Image, x, y, anchor int) {
	if src == nil {
		return
	}
	g.DrawRegion(src, 0, 0, src.w, src.h, TransNone, x, y, anchor)
}

// DrawRegion draws a transformed sub-region of src.
func (g *Graphics) DrawRegion(src *Image, xs, ys, w, h, transform, xd, yd, anchor int) {
	if src == nil || w <= 0 || h <= 0 {
		return
	}
	dw, dh := transformedSize(w, h, transform)
	ox := anchorX(xd, dw, anchor) + g.tx
	oy := anchorY(yd, dh, anchor) + g.ty
	r := image.Rect(ox, oy, ox+dw, oy+dh).Intersect(g.clip)
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			sx, sy := transformSource(px-ox, py-oy, w, h, transform)
			sx += xs
			sy += ys
			if sx < 0 || sy < 0 || sx >= src.w || sy >= src.h {
				continue
			}
			g.plot(px, py, src.pix[sy*src.w+sx])
		}
	}
}

// DrawImagePart copies the (x, y, w, h) region of src onto the same region
// of the target, ignoring translation. This is the repaint blit.
func (g *Graphics) DrawImagePart(src *Image, x, y, w, h int) {
	if src == nil {
		return
	}
	r := image.Rect(x, y, x+w, y+h).Intersect(src.Bounds()).Intersect(g.img.Bounds())
	for py := r.Min.Y; py < r.Max.Y; py++ {
		copy(g.img.pix[py*g.img.w+r.Min.X:py*g.img.w+r.Max.X], src.pix[py*src.w+r.Min.X:])
	}
}

// DrawRGB draws w*h ARGB pixels from data.
func (g *Graphics) DrawRGB(data []uint32, offset, scan, x, y, w, h int, processAlpha bool) {
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			i := offset + row*scan + col
			if i < 0 || i >= len(data) {
				continue
			}
			p := data[i]
			if !processAlpha {
				p |= 0xFF000000
			}
			g.plot(x+col+g.tx, y+row+g.ty, p)
		}
	}
}

// DrawString renders s with the current font. Vertical anchors are
// TOP (default), BASELINE, BOTTOM or VCENTER.
func (g *Graphics) DrawString(s string, x, y, anchor int) {
	f := g.font
	w := f.StringWidth(s)
	x = anchorX(x, w, anchor)
	switch {
	case anchor&Baseline != 0:
	case anchor&Bottom != 0:
		y = y - f.Height() + f.Baseline()
	case anchor&VCenter != 0:
		y = y - f.Height()/2 + f.Baseline()
	default:
		y += f.Baseline()
	}
	c := g.rgba()
	tinyfont.WriteLine(g, f.glyphs, int16(x), int16(y), s, c)
	if f.style&StyleBold != 0 {
		tinyfont.WriteLine(g, f.glyphs, int16(x+1), int16(y), s, c)
	}
	if f.style&StyleUnderlined != 0 {
		g.DrawLine(x, y+1, x+w-1, y+1)
	}
}

func (g *Graphics) rgba() color.RGBA {
	return color.RGBA{R: uint8(g.color >> 16), G: uint8(g.color >> 8), B: uint8(g.color), A: 0xFF}
}

// Size implements drivers.Displayer.
func (g *Graphics) Size() (x, y int16) { return int16(g.img.w), int16(g.img.h) }

// SetPixel implements drivers.Displayer in translated coordinates.
func (g *Graphics) SetPixel(x, y int16, c color.RGBA) {
	g.plot(int(x)+g.tx, int(y)+g.ty, uint32(c.A)<<24|uint32(c.R)<<16|uint32(c.G)<<8|uint32(c.B))
}

// Display implements drivers.Displayer; drawing is immediate.
func (g *Graphics) Display() error { return nil }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

var _ drivers.Displayer = (*Graphics)(nil)
