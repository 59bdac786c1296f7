// Package lcdui is the MIDP user-interface layer: images, 2D graphics,
// fonts, the display and its canvases.
package lcdui

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/png"

	_ "golang.org/x/image/bmp"
)

var ErrImageSize = errors.New("lcdui: image dimensions must be positive")

// Image is an ARGB pixel buffer. Mutable images can be drawn into.
type Image struct {
	w, h    int
	pix     []uint32
	mutable bool
}

func newImage(w, h int, fill uint32) *Image {
	img := &Image{w: w, h: h, pix: make([]uint32, w*h)}
	if fill != 0 {
		for i := range img.pix {
			img.pix[i] = fill
		}
	}
	return img
}

// NewImage returns a mutable opaque white image.
func NewImage(w, h int) (*Image, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrImageSize
	}
	img := newImage(w, h, 0xFFFFFFFF)
	img.mutable = true
	return img, nil
}

// NewARGBImage returns an immutable image filled with argb.
func NewARGBImage(w, h int, argb uint32) (*Image, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrImageSize
	}
	return newImage(w, h, argb), nil
}

// NewRGBImage copies w*h pixels from rgb. Without processAlpha every pixel
// is forced opaque.
func NewRGBImage(rgb []uint32, w, h int, processAlpha bool) (*Image, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrImageSize
	}
	if len(rgb) < w*h {
		return nil, fmt.Errorf("lcdui: rgb data has %d pixels, need %d", len(rgb), w*h)
	}
	img := newImage(w, h, 0)
	copy(img.pix, rgb)
	if !processAlpha {
		for i := range img.pix {
			img.pix[i] |= 0xFF000000
		}
	}
	return img, nil
}

// DecodeImage decodes PNG or BMP data into an immutable image.
func DecodeImage(data []byte) (*Image, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("lcdui: decode image: %w", err)
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("lcdui: decode %s: %w", format, ErrImageSize)
	}
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), src, b.Min, draw.Src)

	img := newImage(b.Dx(), b.Dy(), 0)
	for i := range img.pix {
		p := nrgba.Pix[i*4 : i*4+4]
		img.pix[i] = uint32(p[3])<<24 | uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
	}
	return img, nil
}

// Copy returns an immutable copy of img.
func (img *Image) Copy() *Image {
	c := newImage(img.w, img.h, 0)
	copy(c.pix, img.pix)
	return c
}

// Region returns an immutable copy of a transformed sub-region.
func (img *Image) Region(x, y, w, h, transform int) (*Image, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrImageSize
	}
	if x < 0 || y < 0 || x+w > img.w || y+h > img.h {
		return nil, fmt.Errorf("lcdui: region %dx%d+%d+%d outside %dx%d image", w, h, x, y, img.w, img.h)
	}
	dw, dh := transformedSize(w, h, transform)
	out := newImage(dw, dh, 0)
	for dy := 0; dy < dh; dy++ {
		for dx := 0; dx < dw; dx++ {
			sx, sy := transformSource(dx, dy, w, h, transform)
			out.pix[dy*dw+dx] = img.pix[(y+sy)*img.w+x+sx]
		}
	}
	return out, nil
}

func (img *Image) Width() int    { return img.w }
func (img *Image) Height() int   { return img.h }
func (img *Image) Mutable() bool { return img.mutable }

// Pix exposes the ARGB pixels, row-major.
func (img *Image) Pix() []uint32 { return img.pix }

// Graphics returns a fresh Graphics for a mutable image. It panics on an
// immutable image.
func (img *Image) Graphics() *Graphics {
	if !img.mutable {
		panic("lcdui: Graphics on immutable image")
	}
	return newGraphics(img)
}

// RGB copies a region into dst as ARGB, scan values per row starting at
// offset.
func (img *Image) RGB(dst []uint32, offset, scan, x, y, w, h int) error {
	if x < 0 || y < 0 || w < 0 || h < 0 || x+w > img.w || y+h > img.h {
		return fmt.Errorf("lcdui: RGB region %dx%d+%d+%d outside %dx%d image", w, h, x, y, img.w, img.h)
	}
	for row := 0; row < h; row++ {
		o := offset + row*scan
		if o < 0 || o+w > len(dst) {
			return fmt.Errorf("lcdui: RGB destination too small")
		}
		copy(dst[o:o+w], img.pix[(y+row)*img.w+x:])
	}
	return nil
}

func (img *Image) ColorModel() color.Model { return color.NRGBAModel }

func (img *Image) Bounds() image.Rectangle { return image.Rect(0, 0, img.w, img.h) }

func (img *Image) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= img.w || y >= img.h {
		return color.NRGBA{}
	}
	p := img.pix[y*img.w+x]
	return color.NRGBA{R: uint8(p >> 16), G: uint8(p >> 8), B: uint8(p), A: uint8(p >> 24)}
}

var _ image.Image = (*Image)(nil)
