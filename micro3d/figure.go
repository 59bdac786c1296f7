package micro3d

// Figure is a drawable instance of a model with a pattern selection.
//
// The free list of render nodes is not safe for concurrent use; a figure
// belongs to the goroutine that renders it.
type Figure struct {
	model   *Model
	pattern int
	free    *FigureNode
	pooled  int
}

func NewFigure(m *Model) *Figure {
	return &Figure{model: m}
}

func (f *Figure) Model() *Model { return f.model }

// SetPattern selects which patterned polygons are drawn.
func (f *Figure) SetPattern(p int) { f.pattern = p }

func (f *Figure) Pattern() int { return f.pattern }

// Pooled is the number of idle render nodes.
func (f *Figure) Pooled() int { return f.pooled }

func (f *Figure) fillBuffers(dst []float32) { f.model.fill(dst, f.pattern) }

func (f *Figure) pop() *FigureNode {
	n := f.free
	if n == nil {
		return newFigureNode(f)
	}
	f.free = n.next
	n.next = nil
	f.pooled--
	return n
}

func (f *Figure) push(n *FigureNode) {
	n.next = f.free
	f.free = n
	f.pooled++
}
