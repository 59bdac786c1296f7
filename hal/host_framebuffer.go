package hal

import (
	"image"
	"sync"

	"golang.org/x/image/draw"
)

// framebuffer holds the latest presented frame at canvas size.
type framebuffer struct {
	mu     sync.Mutex
	img    *image.RGBA
	depth  int
	frames uint64
}

// canvasSize substitutes the MIDP default screen for unset dimensions.
func canvasSize(w, h int) (int, int) {
	if w <= 0 {
		w = 240
	}
	if h <= 0 {
		h = 320
	}
	return w, h
}

func newFramebuffer(width, height, depth int) *framebuffer {
	return &framebuffer{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		depth: depth,
	}
}

func (f *framebuffer) SetCanvasSize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if b := f.img.Bounds(); b.Dx() == w && b.Dy() == h {
		return
	}
	f.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

func (f *framebuffer) Present(src image.Image) {
	f.mu.Lock()
	defer f.mu.Unlock()

	dr := f.img.Bounds()
	sr := src.Bounds()
	if sr.Dx() == dr.Dx() && sr.Dy() == dr.Dy() {
		draw.Draw(f.img, dr, src, sr.Min, draw.Src)
	} else {
		draw.NearestNeighbor.Scale(f.img, dr, src, sr, draw.Src, nil)
	}
	if f.depth == 16 {
		quantize565(f.img)
	}
	f.frames++
}

func (f *framebuffer) size() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.img.Bounds()
	return b.Dx(), b.Dy()
}

// snapshot copies the frame into dst, reallocating it when the size changed.
func (f *framebuffer) snapshot(dst *image.RGBA) *image.RGBA {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.img.Bounds()
	if dst == nil || dst.Bounds() != b {
		dst = image.NewRGBA(b)
	}
	copy(dst.Pix, f.img.Pix)
	return dst
}

// Frames reports how many frames have been presented.
func (f *framebuffer) Frames() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}
