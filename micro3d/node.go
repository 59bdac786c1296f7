package micro3d

import "midp/quarkgl"

type pass uint8

const (
	passOpaque pass = iota + 1
	passTransparent
)

// RenderNode is one queued draw: a FigureNode or a PrimitiveNode.
type RenderNode interface {
	render(r *Render, p pass)
	recycle()
}

// nodeState is the environment captured when a node is queued.
type nodeState struct {
	view          quarkgl.Mat4
	proj          quarkgl.Mat4
	attrs         int
	light         Light
	specular      *Texture
	toonThreshold int
	toonHigh      int
	toonLow       int
}

func (s *nodeState) capture(r *Render) {
	env := &r.env
	s.view = env.view
	s.proj = r.projection()
	s.attrs = env.attrs
	s.light = env.light
	s.specular = env.specular
	s.toonThreshold = env.toonThreshold
	s.toonHigh = env.toonHigh
	s.toonLow = env.toonLow
}

// lightFor returns the light to bind, nil when lighting is off.
func (s *nodeState) lightFor() *Light {
	if s.attrs&EnvLighting == 0 {
		return nil
	}
	return &s.light
}

func (s *nodeState) sphere() *Texture {
	if s.attrs&EnvSphereMap == 0 {
		return nil
	}
	return s.specular
}

// drawsIn reports whether content with the given blend mode belongs to pass
// p. Blended content is transparent only when semi-transparency is on.
func (s *nodeState) drawsIn(blend int, p pass) bool {
	transparent := blend != 0 && s.attrs&EnvSemiTransparent != 0
	return transparent == (p == passTransparent)
}

// FigureNode draws a figure. Nodes are pooled on their figure and reused
// across frames.
type FigureNode struct {
	nodeState
	figure   *Figure
	textures []*Texture
	vn       []float32
	pattern  int
	gen      uint64
	next     *FigureNode
}

func newFigureNode(f *Figure) *FigureNode {
	return &FigureNode{
		figure: f,
		vn:     make([]float32, f.model.vertexArrayCapacity*2),
	}
}

func (n *FigureNode) setData(r *Render) {
	n.capture(r)
	n.textures = append(n.textures[:0], r.env.textures...)
	n.figure.fillBuffers(n.vn)
	n.pattern = n.figure.pattern
	n.gen = n.figure.model.gen
}

func (n *FigureNode) texture(face int) *Texture {
	if face < len(n.textures) {
		return n.textures[face]
	}
	return nil
}

func (n *FigureNode) render(r *Render, p pass) { r.renderFigure(n, p) }

func (n *FigureNode) recycle() {
	n.textures = n.textures[:0]
	n.specular = nil
	n.figure.push(n)
}

// flushDone marks the model clean if the last upload, whichever node made
// it, carried the model's current data.
func (n *FigureNode) flushDone() {
	m := n.figure.model
	if m.uploaded && m.uploadedGen == m.gen {
		m.modifiedSinceFlush = false
	}
}

// PrimitiveNode draws caller supplied primitives. It is never pooled.
type PrimitiveNode struct {
	nodeState
	command   int
	count     int
	vertices  []float32
	normals   []float32
	texCoords []byte
	colors    []byte
	texture   *Texture
}

func (n *PrimitiveNode) render(r *Render, p pass) { r.renderPrimitive(n, p) }

func (n *PrimitiveNode) recycle() {}
