package micro3d

import (
	"bytes"
	"fmt"
	"image"

	"midp/hal/gles"
	"midp/lcdui"

	"golang.org/x/image/bmp"
)

// Texture is an RGBA image uploaded to GL on first use.
type Texture struct {
	w, h int
	rgba []byte
	// ForModel textures treat palette entry 0 as transparent; sphere maps
	// are created with it false.
	ForModel bool

	gl  gles.GL
	tex gles.Texture
}

// NewTexture decodes BMP texture data. For model textures the first
// palette color of an indexed bitmap is the color key.
func NewTexture(data []byte, forModel bool) (*Texture, error) {
	src, err := bmp.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("micro3d: decode texture: %w", err)
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("micro3d: empty texture")
	}
	t := &Texture{w: b.Dx(), h: b.Dy(), rgba: make([]byte, b.Dx()*b.Dy()*4), ForModel: forModel}
	pal, indexed := src.(*image.Paletted)
	for y := 0; y < t.h; y++ {
		for x := 0; x < t.w; x++ {
			o := (y*t.w + x) * 4
			r, g, bl, _ := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			t.rgba[o], t.rgba[o+1], t.rgba[o+2], t.rgba[o+3] = byte(r>>8), byte(g>>8), byte(bl>>8), 0xFF
			if indexed && forModel && pal.ColorIndexAt(b.Min.X+x, b.Min.Y+y) == 0 {
				t.rgba[o+3] = 0
			}
		}
	}
	return t, nil
}

// NewTextureFromImage copies an lcdui image, keeping its alpha.
func NewTextureFromImage(img *lcdui.Image, forModel bool) *Texture {
	t := &Texture{w: img.Width(), h: img.Height(), rgba: make([]byte, img.Width()*img.Height()*4), ForModel: forModel}
	for i, p := range img.Pix() {
		t.rgba[i*4] = byte(p >> 16)
		t.rgba[i*4+1] = byte(p >> 8)
		t.rgba[i*4+2] = byte(p)
		t.rgba[i*4+3] = byte(p >> 24)
	}
	return t
}

func (t *Texture) Width() int  { return t.w }
func (t *Texture) Height() int { return t.h }

// handle returns the GL texture, uploading the pixels the first time.
func (t *Texture) handle(gl gles.GL) gles.Texture {
	if t.tex != 0 && t.gl == gl {
		return t.tex
	}
	t.gl = gl
	t.tex = gl.CreateTexture()
	if t.tex == 0 {
		panic("micro3d: cannot create texture")
	}
	gl.BindTexture(gles.Texture2D, t.tex)
	gl.TexImage2D(gles.Texture2D, t.w, t.h, t.rgba)
	gl.TexParameteri(gles.Texture2D, gles.TextureMinFilter, int32(gles.Nearest))
	gl.TexParameteri(gles.Texture2D, gles.TextureMagFilter, int32(gles.Nearest))
	return t.tex
}

// Release deletes the GL texture.
func (t *Texture) Release() {
	if t.tex == 0 {
		return
	}
	t.gl.DeleteTexture(t.tex)
	t.tex, t.gl = 0, nil
}
