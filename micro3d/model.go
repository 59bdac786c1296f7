// Package micro3d renders MascotCapsule style figures and primitives through
// a gles.GL. Draw calls are queued as render nodes and replayed in two
// passes, opaque first, when the frame is flushed.
package micro3d

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"midp/hal/gles"
	"midp/quarkgl"
)

// Polygon material flags.
const (
	Transparent = 1
	BlendHalf   = 2
	BlendAdd    = 4
	BlendSub    = 6
	DoubleFace  = 16
	Lighting    = 32
	Specular    = 64

	blendMask = BlendSub
)

// Bytes per vertex in the static buffer: u, v or r, g, b followed by the
// material bytes.
const texStride = 5

var ErrModelShape = errors.New("micro3d: model does not match its declared shape")

// Polygon is one triangle (three indices) or quad (four) of a model.
// Quads are split into (a, b, c) and (c, b, d).
type Polygon struct {
	Material int
	// Face is the texture index of a textured polygon.
	Face int
	// Pattern selects the polygon for figure patterns; 0 is always drawn.
	Pattern int
	// TexCoords holds u, v per index for textured polygons.
	TexCoords []byte
	// Color is the flat color of a colored polygon.
	Color   [3]byte
	Indices []int
}

func (p *Polygon) blend() int      { return (p.Material & blendMask) >> 1 }
func (p *Polygon) doubleFace() int { return (p.Material & DoubleFace) >> 4 }

// slots is the number of expanded vertices the polygon occupies.
func (p *Polygon) slots() int {
	if len(p.Indices) == 4 {
		return 6
	}
	return 3
}

var quadOrder = [6]int{0, 1, 2, 2, 1, 3}

func (p *Polygon) index(k int) int {
	if len(p.Indices) == 4 {
		return quadOrder[k]
	}
	return k
}

// Bone moves a consecutive run of vertices. Bones are applied in order, each
// relative to its parent (-1 for the root).
type Bone struct {
	Vertices int
	Parent   int
	Matrix   quarkgl.Mat4
}

// ModelSpec declares the shape of a model before its data is added.
type ModelSpec struct {
	Vertices int
	Bones    int
	Patterns int
	Textures int
	PolyT3   int
	PolyT4   int
	PolyC3   int
	PolyC4   int
}

// Model is an immutable mesh with mutable vertex, normal and bone data.
// Textured polygons occupy the first NumVerticesPolyT expanded vertices and
// colored ones the rest.
type Model struct {
	numPatterns int
	numTextures int
	hasPolyT    bool
	hasPolyC    bool

	polygonsT []Polygon
	polygonsC []Polygon

	indices       []int
	texCoordArray []byte

	original        []float32
	vertices        []float32
	originalNormals []float32
	normals         []float32
	bones           []Bone
	world           []quarkgl.Mat4

	vertexArrayCapacity int
	numVerticesPolyT    int

	// Expanded vertex counts per blend mode, texture and face sidedness.
	subMeshesT [4][][2]int
	subMeshesC [4][2]int
	hasBlendT  [4]bool
	hasBlendC  [4]bool

	modifiedSinceFlush bool
	posed              bool
	gen                uint64

	vnBuffer  gles.Buffer
	texBuffer gles.Buffer
	texVAO    gles.VertexArray
	colorVAO  gles.VertexArray
	// What the vertex buffer holds: the generation and pattern it was
	// filled from.
	uploaded        bool
	uploadedGen     uint64
	uploadedPattern int
}

// VertexArrayCapacity is the number of floats one of position or normal
// data takes for all expanded vertices.
func (m *Model) VertexArrayCapacity() int { return m.vertexArrayCapacity }

// NumVerticesPolyT is the number of expanded textured vertices.
func (m *Model) NumVerticesPolyT() int { return m.numVerticesPolyT }

// NumVertices is the number of source vertices.
func (m *Model) NumVertices() int { return len(m.original) / 3 }

func (m *Model) NumPatterns() int { return m.numPatterns }
func (m *Model) NumTextures() int { return m.numTextures }

// ModifiedSinceFlush reports whether vertex data changed since the last
// flush that drew this model.
func (m *Model) ModifiedSinceFlush() bool { return m.modifiedSinceFlush }

// Generation counts mutations.
func (m *Model) Generation() uint64 { return m.gen }

func (m *Model) touch() {
	m.gen++
	m.modifiedSinceFlush = true
	m.posed = false
}

// SetVertex moves source vertex i.
func (m *Model) SetVertex(i int, x, y, z float32) {
	m.original[i*3] = x
	m.original[i*3+1] = y
	m.original[i*3+2] = z
	m.touch()
}

// SetNormal replaces the normal of source vertex i. Models built without
// normals ignore it.
func (m *Model) SetNormal(i int, x, y, z float32) {
	if m.originalNormals == nil {
		return
	}
	m.originalNormals[i*3] = x
	m.originalNormals[i*3+1] = y
	m.originalNormals[i*3+2] = z
	m.touch()
}

// SetBone replaces the matrix of bone i.
func (m *Model) SetBone(i int, mat quarkgl.Mat4) {
	m.bones[i].Matrix = mat
	m.touch()
}

func (m *Model) pose() {
	if m.posed {
		return
	}
	m.posed = true
	if len(m.bones) == 0 {
		copy(m.vertices, m.original)
		copy(m.normals, m.originalNormals)
		return
	}
	v := 0
	for i, b := range m.bones {
		w := b.Matrix
		if b.Parent >= 0 && b.Parent < i {
			w = quarkgl.Mat4Mul(m.world[b.Parent], b.Matrix)
		}
		m.world[i] = w
		for end := min(v+b.Vertices, m.NumVertices()); v < end; v++ {
			p := w.MulPoint(quarkgl.V3(m.original[v*3], m.original[v*3+1], m.original[v*3+2]))
			m.vertices[v*3], m.vertices[v*3+1], m.vertices[v*3+2] = p.X, p.Y, p.Z
			if m.normals != nil {
				n := quarkgl.Normalize(w.MulDir(quarkgl.V3(m.originalNormals[v*3], m.originalNormals[v*3+1], m.originalNormals[v*3+2])))
				m.normals[v*3], m.normals[v*3+1], m.normals[v*3+2] = n.X, n.Y, n.Z
			}
		}
	}
	copy(m.vertices[v*3:], m.original[v*3:])
	if m.normals != nil {
		copy(m.normals[v*3:], m.originalNormals[v*3:])
	}
}

// fill writes interleaved position and normal data for every expanded
// vertex into dst. Polygons outside pattern collapse to a point.
func (m *Model) fill(dst []float32, pattern int) {
	if len(dst) != m.vertexArrayCapacity*2 {
		panic(fmt.Sprintf("micro3d: vertex buffer has %d floats, model needs %d", len(dst), m.vertexArrayCapacity*2))
	}
	m.pose()
	slot := 0
	emit := func(polys []Polygon) {
		for i := range polys {
			p := &polys[i]
			n := p.slots()
			if p.Pattern != 0 && p.Pattern&pattern == 0 {
				clear(dst[slot*6 : (slot+n)*6])
				slot += n
				continue
			}
			for k := 0; k < n; k++ {
				idx := m.indices[slot] * 3
				o := dst[slot*6 : slot*6+6]
				copy(o[:3], m.vertices[idx:idx+3])
				if m.normals != nil {
					copy(o[3:], m.normals[idx:idx+3])
				} else {
					o[3], o[4], o[5] = 0, 0, 1
				}
				slot++
			}
		}
	}
	emit(m.polygonsT)
	emit(m.polygonsC)
}

// UploadToGL writes vn into the model's vertex buffer, creating the GPU
// objects on first use. The static texture coordinate and material buffer
// and both vertex arrays are set up once.
func (m *Model) UploadToGL(gl gles.GL, progs *Programs, vn []float32) {
	if len(vn) != m.vertexArrayCapacity*2 {
		panic(fmt.Sprintf("micro3d: upload of %d floats, model needs %d", len(vn), m.vertexArrayCapacity*2))
	}
	if m.vnBuffer == 0 {
		m.vnBuffer = gl.CreateBuffer()
		m.texBuffer = gl.CreateBuffer()
		if m.vnBuffer == 0 || m.texBuffer == 0 {
			panic("micro3d: cannot create model buffers")
		}

		gl.BindBuffer(gles.ArrayBuffer, m.texBuffer)
		gl.BufferData(gles.ArrayBuffer, len(m.texCoordArray), gles.StaticDraw)
		gl.BufferSubDataBytes(gles.ArrayBuffer, 0, m.texCoordArray)

		gl.BindBuffer(gles.ArrayBuffer, m.vnBuffer)
		gl.BufferData(gles.ArrayBuffer, m.vertexArrayCapacity*2*4, gles.StaticDraw)

		if m.hasPolyT {
			m.texVAO = m.vertexArray(gl)
			t := progs.Tex
			gl.BindBuffer(gles.ArrayBuffer, m.vnBuffer)
			gl.EnableVertexAttribArray(t.aPosition)
			gl.VertexAttribPointer(t.aPosition, 3, gles.Float, false, 6*4, 0)
			gl.EnableVertexAttribArray(t.aNormal)
			gl.VertexAttribPointer(t.aNormal, 3, gles.Float, false, 6*4, 3*4)

			gl.BindBuffer(gles.ArrayBuffer, m.texBuffer)
			gl.EnableVertexAttribArray(t.aColorData)
			gl.VertexAttribPointer(t.aColorData, 2, gles.UnsignedByte, false, texStride, 0)
			gl.EnableVertexAttribArray(t.aMaterial)
			gl.VertexAttribPointer(t.aMaterial, 3, gles.UnsignedByte, false, texStride, 2)
		}

		if m.hasPolyC {
			m.colorVAO = m.vertexArray(gl)
			c := progs.Color
			off := m.numVerticesPolyT
			gl.BindBuffer(gles.ArrayBuffer, m.vnBuffer)
			gl.EnableVertexAttribArray(c.aPosition)
			gl.VertexAttribPointer(c.aPosition, 3, gles.Float, false, 6*4, off*6*4)
			gl.EnableVertexAttribArray(c.aNormal)
			gl.VertexAttribPointer(c.aNormal, 3, gles.Float, false, 6*4, off*6*4+3*4)

			gl.BindBuffer(gles.ArrayBuffer, m.texBuffer)
			gl.EnableVertexAttribArray(c.aColorData)
			gl.VertexAttribPointer(c.aColorData, 3, gles.UnsignedByte, true, texStride, texStride*off)
			gl.EnableVertexAttribArray(c.aMaterial)
			gl.VertexAttribPointer(c.aMaterial, 2, gles.UnsignedByte, false, texStride, texStride*off+3)
		}
		gl.BindVertexArray(0)
	}

	gl.BindBuffer(gles.ArrayBuffer, m.vnBuffer)
	gl.BufferSubDataFloats(gles.ArrayBuffer, 0, vn)
}

func (m *Model) vertexArray(gl gles.GL) gles.VertexArray {
	va := gl.CreateVertexArray()
	if va == 0 {
		panic("micro3d: cannot create vertex array")
	}
	gl.BindVertexArray(va)
	return va
}

// Release deletes the model's GPU objects. The next upload recreates them.
func (m *Model) Release(gl gles.GL) {
	if m.vnBuffer == 0 {
		return
	}
	gl.DeleteBuffer(m.vnBuffer)
	gl.DeleteBuffer(m.texBuffer)
	if m.texVAO != 0 {
		gl.DeleteVertexArray(m.texVAO)
	}
	if m.colorVAO != 0 {
		gl.DeleteVertexArray(m.colorVAO)
	}
	m.vnBuffer, m.texBuffer, m.texVAO, m.colorVAO = 0, 0, 0, 0
	m.uploaded = false
	m.modifiedSinceFlush = true
}

// ModelBuilder collects the data of a model declared by a ModelSpec.
type ModelBuilder struct {
	spec     ModelSpec
	vertices []float32
	normals  []float32
	bones    []Bone
	polysT   []Polygon
	polysC   []Polygon
}

func NewModelBuilder(spec ModelSpec) *ModelBuilder {
	return &ModelBuilder{spec: spec}
}

func (b *ModelBuilder) Vertex(x, y, z float32) *ModelBuilder {
	b.vertices = append(b.vertices, x, y, z)
	return b
}

func (b *ModelBuilder) Normal(x, y, z float32) *ModelBuilder {
	b.normals = append(b.normals, x, y, z)
	return b
}

func (b *ModelBuilder) Bone(bone Bone) *ModelBuilder {
	b.bones = append(b.bones, bone)
	return b
}

// Textured adds a textured polygon.
func (b *ModelBuilder) Textured(p Polygon) *ModelBuilder {
	b.polysT = append(b.polysT, p)
	return b
}

// Colored adds a flat colored polygon.
func (b *ModelBuilder) Colored(p Polygon) *ModelBuilder {
	b.polysC = append(b.polysC, p)
	return b
}

func countPolys(polys []Polygon) (tris, quads int) {
	for _, p := range polys {
		if len(p.Indices) == 4 {
			quads++
		} else {
			tris++
		}
	}
	return tris, quads
}

func (b *ModelBuilder) check() error {
	s := b.spec
	if s.Vertices < 0 || s.Bones < 0 || s.Textures < 0 || s.Patterns < 0 {
		return fmt.Errorf("%w: negative count", ErrModelShape)
	}
	if len(b.vertices) != s.Vertices*3 {
		return fmt.Errorf("%w: %d vertices, declared %d", ErrModelShape, len(b.vertices)/3, s.Vertices)
	}
	if len(b.normals) != 0 && len(b.normals) != len(b.vertices) {
		return fmt.Errorf("%w: %d normals for %d vertices", ErrModelShape, len(b.normals)/3, s.Vertices)
	}
	if len(b.bones) != s.Bones {
		return fmt.Errorf("%w: %d bones, declared %d", ErrModelShape, len(b.bones), s.Bones)
	}
	if t3, t4 := countPolys(b.polysT); t3 != s.PolyT3 || t4 != s.PolyT4 {
		return fmt.Errorf("%w: textured polygons %d+%d, declared %d+%d", ErrModelShape, t3, t4, s.PolyT3, s.PolyT4)
	}
	if c3, c4 := countPolys(b.polysC); c3 != s.PolyC3 || c4 != s.PolyC4 {
		return fmt.Errorf("%w: colored polygons %d+%d, declared %d+%d", ErrModelShape, c3, c4, s.PolyC3, s.PolyC4)
	}
	faces := max(s.Textures, 1)
	for i, p := range b.polysT {
		if len(p.TexCoords) != len(p.Indices)*2 {
			return fmt.Errorf("%w: textured polygon %d has %d texture coordinates", ErrModelShape, i, len(p.TexCoords))
		}
		if p.Face < 0 || p.Face >= faces {
			return fmt.Errorf("%w: textured polygon %d uses texture %d of %d", ErrModelShape, i, p.Face, faces)
		}
	}
	for _, polys := range [][]Polygon{b.polysT, b.polysC} {
		for _, p := range polys {
			if n := len(p.Indices); n != 3 && n != 4 {
				return fmt.Errorf("%w: polygon with %d indices", ErrModelShape, n)
			}
			for _, idx := range p.Indices {
				if idx < 0 || idx >= s.Vertices {
					return fmt.Errorf("%w: vertex index %d out of range", ErrModelShape, idx)
				}
			}
		}
	}
	return nil
}

func materialBytes(p *Polygon) (light, spec byte) {
	if p.Material&Lighting != 0 {
		light = 1
	}
	if p.Material&Specular != 0 {
		spec = 1
	}
	return light, spec
}

// Build checks the data against its ModelSpec and lays out the model. Textured
// polygons are sorted by blend mode, texture and sidedness; colored ones by
// blend mode and sidedness.
func (b *ModelBuilder) Build() (*Model, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	s := b.spec
	numVertices := (s.PolyT3+s.PolyC3)*3 + (s.PolyT4+s.PolyC4)*6
	m := &Model{
		numPatterns:         s.Patterns,
		numTextures:         s.Textures,
		hasPolyT:            s.PolyT3+s.PolyT4 > 0,
		hasPolyC:            s.PolyC3+s.PolyC4 > 0,
		polygonsT:           slices.Clone(b.polysT),
		polygonsC:           slices.Clone(b.polysC),
		indices:             make([]int, numVertices),
		texCoordArray:       make([]byte, numVertices*texStride),
		original:            slices.Clone(b.vertices),
		vertices:            make([]float32, len(b.vertices)),
		bones:               slices.Clone(b.bones),
		world:               make([]quarkgl.Mat4, len(b.bones)),
		vertexArrayCapacity: numVertices * 3,
		numVerticesPolyT:    s.PolyT3*3 + s.PolyT4*6,
		modifiedSinceFlush:  true,
	}
	if len(b.normals) > 0 {
		m.originalNormals = slices.Clone(b.normals)
		m.normals = make([]float32, len(b.normals))
	}
	faces := max(s.Textures, 1)
	for i := range m.subMeshesT {
		m.subMeshesT[i] = make([][2]int, faces)
	}

	slices.SortStableFunc(m.polygonsT, func(a, c Polygon) int {
		return cmp.Or(cmp.Compare(a.blend(), c.blend()), cmp.Compare(a.Face, c.Face), cmp.Compare(a.doubleFace(), c.doubleFace()))
	})
	slices.SortStableFunc(m.polygonsC, func(a, c Polygon) int {
		return cmp.Or(cmp.Compare(a.blend(), c.blend()), cmp.Compare(a.doubleFace(), c.doubleFace()))
	})

	slot := 0
	for i := range m.polygonsT {
		p := &m.polygonsT[i]
		light, spec := materialBytes(p)
		transparent := byte(p.Material & Transparent)
		n := p.slots()
		for k := 0; k < n; k++ {
			src := p.index(k)
			m.indices[slot] = p.Indices[src]
			copy(m.texCoordArray[slot*texStride:], []byte{p.TexCoords[src*2], p.TexCoords[src*2+1], light, spec, transparent})
			slot++
		}
		m.subMeshesT[p.blend()][p.Face][p.doubleFace()] += n
		m.hasBlendT[p.blend()] = true
	}
	for i := range m.polygonsC {
		p := &m.polygonsC[i]
		light, spec := materialBytes(p)
		n := p.slots()
		for k := 0; k < n; k++ {
			m.indices[slot] = p.Indices[p.index(k)]
			copy(m.texCoordArray[slot*texStride:], []byte{p.Color[0], p.Color[1], p.Color[2], light, spec})
			slot++
		}
		m.subMeshesC[p.blend()][p.doubleFace()] += n
		m.hasBlendC[p.blend()] = true
	}
	m.pose()
	return m, nil
}
