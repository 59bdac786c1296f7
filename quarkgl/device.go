package quarkgl

import (
	"encoding/binary"
	"math"

	"midp/hal/gles"
)

type attribPointer struct {
	enabled    bool
	buf        gles.Buffer
	size       int
	typ        gles.Enum
	normalized bool
	stride     int
	offset     int
}

type vertexArray struct {
	attribs [maxAttribs]attribPointer
}

type texture struct {
	w, h   int
	rgba   []byte
	linear bool
}

// Device is a software gles.GL. The zero value is not usable; call NewDevice.
//
// The surface grows to cover the largest viewport it is given.
type Device struct {
	w, h  int
	color []byte
	depth []float32

	next     uint32
	buffers  map[gles.Buffer][]byte
	arrays   map[gles.VertexArray]*vertexArray
	programs map[gles.Program]*program
	textures map[gles.Texture]*texture

	arrayBuf gles.Buffer
	array    *vertexArray
	defArray vertexArray
	current  *program
	generic  [maxAttribs][4]float32

	unit  int
	units [4]gles.Texture

	caps       map[gles.Enum]bool
	blendSrc   gles.Enum
	blendDst   gles.Enum
	blendEq    gles.Enum
	blendColor [4]float32
	depthMask  bool
	depthFunc  gles.Enum
	viewport   [4]int
	clear      [4]float32

	// Triangles counts rasterized triangles; tests use it to tell culled
	// draws from empty ones.
	Triangles int
}

// NewDevice returns a device with a w*h surface.
func NewDevice(w, h int) *Device {
	d := &Device{
		buffers:   make(map[gles.Buffer][]byte),
		arrays:    make(map[gles.VertexArray]*vertexArray),
		programs:  make(map[gles.Program]*program),
		textures:  make(map[gles.Texture]*texture),
		caps:      make(map[gles.Enum]bool),
		blendSrc:  gles.One,
		blendDst:  gles.Zero,
		blendEq:   gles.FuncAdd,
		depthMask: true,
		depthFunc: gles.Less,
		viewport:  [4]int{0, 0, w, h},
	}
	d.array = &d.defArray
	for i := range d.generic {
		d.generic[i] = [4]float32{0, 0, 0, 1}
	}
	d.resize(w, h)
	return d
}

// Size reports the surface size.
func (d *Device) Size() (w, h int) { return d.w, d.h }

func (d *Device) resize(w, h int) {
	if w <= d.w && h <= d.h {
		return
	}
	if w < d.w {
		w = d.w
	}
	if h < d.h {
		h = d.h
	}
	color := make([]byte, w*h*4)
	depth := make([]float32, w*h)
	for i := range depth {
		depth[i] = 1
	}
	for y := 0; y < d.h; y++ {
		copy(color[y*w*4:], d.color[y*d.w*4:(y+1)*d.w*4])
		copy(depth[y*w:], d.depth[y*d.w:(y+1)*d.w])
	}
	d.w, d.h = w, h
	d.color, d.depth = color, depth
}

func (d *Device) handle() uint32 {
	d.next++
	return d.next
}

func (d *Device) CreateBuffer() gles.Buffer {
	b := gles.Buffer(d.handle())
	d.buffers[b] = nil
	return b
}

func (d *Device) DeleteBuffer(b gles.Buffer) {
	delete(d.buffers, b)
	if d.arrayBuf == b {
		d.arrayBuf = 0
	}
}

func (d *Device) BindBuffer(target gles.Enum, b gles.Buffer) {
	if target == gles.ArrayBuffer {
		d.arrayBuf = b
	}
}

func (d *Device) BufferData(target gles.Enum, size int, usage gles.Enum) {
	if target != gles.ArrayBuffer || d.arrayBuf == 0 || size < 0 {
		return
	}
	d.buffers[d.arrayBuf] = make([]byte, size)
}

func (d *Device) BufferSubDataBytes(target gles.Enum, offset int, data []byte) {
	dst := d.bound(target, offset, len(data))
	copy(dst, data)
}

func (d *Device) BufferSubDataFloats(target gles.Enum, offset int, data []float32) {
	dst := d.bound(target, offset, len(data)*4)
	for i, v := range data {
		if i*4+4 > len(dst) {
			break
		}
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}

// bound returns the writable window of the bound array buffer, clipped to
// its allocated size.
func (d *Device) bound(target gles.Enum, offset, n int) []byte {
	if target != gles.ArrayBuffer || offset < 0 {
		return nil
	}
	buf := d.buffers[d.arrayBuf]
	if offset >= len(buf) {
		return nil
	}
	end := offset + n
	if end > len(buf) {
		end = len(buf)
	}
	return buf[offset:end]
}

func (d *Device) CreateVertexArray() gles.VertexArray {
	va := gles.VertexArray(d.handle())
	d.arrays[va] = &vertexArray{}
	return va
}

func (d *Device) DeleteVertexArray(va gles.VertexArray) {
	if a, ok := d.arrays[va]; ok && a == d.array {
		d.array = &d.defArray
	}
	delete(d.arrays, va)
}

func (d *Device) BindVertexArray(va gles.VertexArray) {
	if a, ok := d.arrays[va]; ok {
		d.array = a
		return
	}
	d.array = &d.defArray
}

func (d *Device) EnableVertexAttribArray(loc gles.Location) {
	if loc >= 0 && int(loc) < maxAttribs {
		d.array.attribs[loc].enabled = true
	}
}

func (d *Device) DisableVertexAttribArray(loc gles.Location) {
	if loc >= 0 && int(loc) < maxAttribs {
		d.array.attribs[loc].enabled = false
	}
}

func (d *Device) VertexAttribPointer(loc gles.Location, size int, typ gles.Enum, normalized bool, stride, offset int) {
	if loc < 0 || int(loc) >= maxAttribs {
		return
	}
	a := &d.array.attribs[loc]
	a.buf = d.arrayBuf
	a.size = size
	a.typ = typ
	a.normalized = normalized
	a.stride = stride
	a.offset = offset
}

func (d *Device) VertexAttrib3f(loc gles.Location, x, y, z float32) {
	if loc >= 0 && int(loc) < maxAttribs {
		d.generic[loc] = [4]float32{x, y, z, 1}
	}
}

// fetch reads attribute slot loc for vertex i.
func (d *Device) fetch(loc, i int) [4]float32 {
	a := d.array.attribs[loc]
	if !a.enabled {
		return d.generic[loc]
	}
	out := [4]float32{0, 0, 0, 1}
	buf := d.buffers[a.buf]
	elem := 1
	if a.typ == gles.Float {
		elem = 4
	}
	stride := a.stride
	if stride == 0 {
		stride = a.size * elem
	}
	base := a.offset + i*stride
	for k := 0; k < a.size && k < 4; k++ {
		off := base + k*elem
		if off < 0 || off+elem > len(buf) {
			break
		}
		if a.typ == gles.Float {
			out[k] = math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
			continue
		}
		v := float32(buf[off])
		if a.normalized {
			v /= 255
		}
		out[k] = v
	}
	return out
}

func (d *Device) CreateProgram(vertexSrc, fragmentSrc string) (gles.Program, error) {
	p, err := parseProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return 0, err
	}
	h := gles.Program(d.handle())
	d.programs[h] = p
	return h, nil
}

func (d *Device) DeleteProgram(p gles.Program) {
	if pr, ok := d.programs[p]; ok && pr == d.current {
		d.current = nil
	}
	delete(d.programs, p)
}

func (d *Device) UseProgram(p gles.Program) { d.current = d.programs[p] }

func (d *Device) GetAttribLocation(p gles.Program, name string) gles.Location {
	pr, ok := d.programs[p]
	if !ok {
		return gles.NoLocation
	}
	return pr.attrib(name)
}

func (d *Device) GetUniformLocation(p gles.Program, name string) gles.Location {
	pr, ok := d.programs[p]
	if !ok {
		return gles.NoLocation
	}
	return pr.uniform(name)
}

func (d *Device) Uniform1i(loc gles.Location, v int32)      { d.current.set(loc, float32(v)) }
func (d *Device) Uniform1f(loc gles.Location, v float32)    { d.current.set(loc, v) }
func (d *Device) Uniform2f(loc gles.Location, x, y float32) { d.current.set(loc, x, y) }

func (d *Device) Uniform3f(loc gles.Location, x, y, z float32) {
	d.current.set(loc, x, y, z)
}

func (d *Device) UniformMatrix4fv(loc gles.Location, transpose bool, m []float32) {
	if d.current == nil {
		return
	}
	id, ok := d.current.slot(loc)
	if !ok || (id != uProjMatrix && id != uMvMatrix) {
		return
	}
	mat := Mat4FromSlice(m)
	if transpose {
		var t Mat4
		for c := 0; c < 4; c++ {
			for r := 0; r < 4; r++ {
				t[c*4+r] = mat[r*4+c]
			}
		}
		mat = t
	}
	d.current.matrices[id-uProjMatrix] = mat
}

func (d *Device) CreateTexture() gles.Texture {
	t := gles.Texture(d.handle())
	d.textures[t] = &texture{}
	return t
}

func (d *Device) DeleteTexture(t gles.Texture) {
	delete(d.textures, t)
	for i := range d.units {
		if d.units[i] == t {
			d.units[i] = 0
		}
	}
}

func (d *Device) ActiveTexture(unit gles.Enum) {
	u := int(unit - gles.Texture0)
	if u >= 0 && u < len(d.units) {
		d.unit = u
	}
}

func (d *Device) BindTexture(target gles.Enum, t gles.Texture) {
	if target == gles.Texture2D {
		d.units[d.unit] = t
	}
}

func (d *Device) TexImage2D(target gles.Enum, width, height int, rgba []byte) {
	t := d.textures[d.units[d.unit]]
	if target != gles.Texture2D || t == nil || width <= 0 || height <= 0 {
		return
	}
	t.w, t.h = width, height
	t.rgba = make([]byte, width*height*4)
	copy(t.rgba, rgba)
}

func (d *Device) TexParameteri(target, pname gles.Enum, v int32) {
	t := d.textures[d.units[d.unit]]
	if target != gles.Texture2D || t == nil {
		return
	}
	if pname == gles.TextureMinFilter || pname == gles.TextureMagFilter {
		t.linear = gles.Enum(v) == gles.Linear
	}
}

func (d *Device) Enable(c gles.Enum)  { d.caps[c] = true }
func (d *Device) Disable(c gles.Enum) { d.caps[c] = false }

func (d *Device) BlendFunc(src, dst gles.Enum) { d.blendSrc, d.blendDst = src, dst }
func (d *Device) BlendEquation(mode gles.Enum) { d.blendEq = mode }

func (d *Device) BlendColor(r, g, b, a float32) { d.blendColor = [4]float32{r, g, b, a} }

func (d *Device) DepthMask(on bool)      { d.depthMask = on }
func (d *Device) DepthFunc(fn gles.Enum) { d.depthFunc = fn }

func (d *Device) Viewport(x, y, width, height int) {
	d.viewport = [4]int{x, y, width, height}
	d.resize(x+width, y+height)
}

func (d *Device) ClearColor(r, g, b, a float32) { d.clear = [4]float32{r, g, b, a} }

func (d *Device) Clear(mask gles.Enum) {
	if mask&gles.ColorBufferBit != 0 {
		var px [4]byte
		for i, c := range d.clear {
			px[i] = byte(Clamp01(c)*255 + 0.5)
		}
		for i := 0; i+4 <= len(d.color); i += 4 {
			copy(d.color[i:i+4], px[:])
		}
	}
	if mask&gles.DepthBufferBit != 0 {
		for i := range d.depth {
			d.depth[i] = 1
		}
	}
}

func (d *Device) ReadPixels(x, y, width, height int, dst []byte) {
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			o := (row*width + col) * 4
			if o+4 > len(dst) {
				return
			}
			sx, sy := x+col, y+row
			if sx < 0 || sy < 0 || sx >= d.w || sy >= d.h {
				copy(dst[o:o+4], []byte{0, 0, 0, 0})
				continue
			}
			copy(dst[o:o+4], d.color[(sy*d.w+sx)*4:])
		}
	}
}

var _ gles.GL = (*Device)(nil)
