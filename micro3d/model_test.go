package micro3d

import (
	"errors"
	"testing"

	"midp/hal/gles"
	"midp/quarkgl"
)

// square returns a builder with the four corners of a size*2 square at z=0.
func square(spec ModelSpec, size float32) *ModelBuilder {
	spec.Vertices = 4
	return NewModelBuilder(spec).
		Vertex(-size, -size, 0).
		Vertex(size, -size, 0).
		Vertex(-size, size, 0).
		Vertex(size, size, 0)
}

func mustBuild(t *testing.T, b *ModelBuilder) *Model {
	t.Helper()
	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return m
}

func TestBuildRejectsBadShapes(t *testing.T) {
	tri := []int{0, 1, 2}
	tests := []struct {
		name string
		b    *ModelBuilder
	}{
		{"vertex count", NewModelBuilder(ModelSpec{Vertices: 2}).Vertex(0, 0, 0)},
		{"polygon count", square(ModelSpec{PolyC3: 2}, 1).Colored(Polygon{Indices: tri})},
		{"texcoords", square(ModelSpec{PolyT3: 1, Textures: 1}, 1).Textured(Polygon{Indices: tri, TexCoords: []byte{0, 0}})},
		{"face", square(ModelSpec{PolyT3: 1, Textures: 1}, 1).Textured(Polygon{Indices: tri, Face: 1, TexCoords: make([]byte, 6)})},
		{"index", square(ModelSpec{PolyC3: 1}, 1).Colored(Polygon{Indices: []int{0, 1, 9}})},
		{"normals", square(ModelSpec{PolyC3: 1}, 1).Normal(0, 0, 1).Colored(Polygon{Indices: tri})},
		{"bones", square(ModelSpec{PolyC3: 1, Bones: 1}, 1).Colored(Polygon{Indices: tri})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.b.Build(); !errors.Is(err, ErrModelShape) {
				t.Fatalf("Build() error = %v, want ErrModelShape", err)
			}
		})
	}
}

func TestBuildSortsSubMeshes(t *testing.T) {
	uv := make([]byte, 6)
	m := mustBuild(t, square(ModelSpec{PolyT3: 3, PolyC3: 1, PolyC4: 1, Textures: 2}, 1).
		Textured(Polygon{Material: BlendAdd, Indices: []int{0, 1, 2}, TexCoords: uv}).
		Textured(Polygon{Face: 1, Indices: []int{1, 2, 3}, TexCoords: uv}).
		Textured(Polygon{Material: DoubleFace, Indices: []int{0, 2, 3}, TexCoords: uv}).
		Colored(Polygon{Material: BlendHalf, Indices: []int{0, 1, 2}}).
		Colored(Polygon{Indices: []int{0, 1, 2, 3}, Color: [3]byte{1, 2, 3}}))

	if got := m.NumVerticesPolyT(); got != 9 {
		t.Fatalf("NumVerticesPolyT() = %d, want 9", got)
	}
	if got := m.VertexArrayCapacity(); got != (9+9)*3 {
		t.Fatalf("VertexArrayCapacity() = %d, want %d", got, 18*3)
	}
	if got := m.subMeshesT[0]; got[0] != [2]int{0, 3} || got[1] != [2]int{3, 0} {
		t.Fatalf("opaque textured sub-meshes = %v", got)
	}
	if got := m.subMeshesT[2][0]; got != [2]int{3, 0} {
		t.Fatalf("additive textured sub-mesh = %v", got)
	}
	if m.subMeshesC[0] != [2]int{6, 0} || m.subMeshesC[1] != [2]int{3, 0} {
		t.Fatalf("colored sub-meshes = %v", m.subMeshesC)
	}
	if !m.hasBlendT[0] || m.hasBlendT[1] || !m.hasBlendT[2] || !m.hasBlendC[1] {
		t.Fatalf("blend presence T=%v C=%v", m.hasBlendT, m.hasBlendC)
	}

	// Quad expands to (a, b, c) and (c, b, d).
	want := []int{0, 1, 2, 2, 1, 3}
	for k, idx := range want {
		if got := m.indices[9+k]; got != idx {
			t.Fatalf("indices[%d] = %d, want %d", 9+k, got, idx)
		}
	}
	if st := m.texCoordArray[9*texStride : 9*texStride+3]; st[0] != 1 || st[1] != 2 || st[2] != 3 {
		t.Fatalf("quad color = %v, want [1 2 3]", st)
	}
	if !m.ModifiedSinceFlush() {
		t.Fatalf("ModifiedSinceFlush() = false on a new model")
	}
}

func TestFillPatternsAndDefaultNormal(t *testing.T) {
	m := mustBuild(t, square(ModelSpec{PolyC3: 2, Patterns: 1}, 2).
		Colored(Polygon{Indices: []int{0, 1, 2}}).
		Colored(Polygon{Pattern: 1, Indices: []int{1, 3, 2}}))

	vn := make([]float32, m.VertexArrayCapacity()*2)
	m.fill(vn, 0)
	if vn[0] != -2 || vn[1] != -2 || vn[5] != 1 {
		t.Fatalf("first vertex = %v, want position (-2, -2, 0) normal (0, 0, 1)", vn[:6])
	}
	for i := 3 * 6; i < 6*6; i++ {
		if vn[i] != 0 {
			t.Fatalf("hidden polygon data[%d] = %v, want 0", i, vn[i])
		}
	}

	m.fill(vn, 1)
	if vn[3*6] != 2 || vn[3*6+1] != -2 {
		t.Fatalf("patterned vertex = %v, want (2, -2)", vn[3*6:3*6+3])
	}
}

func TestFillPanicsOnSizeMismatch(t *testing.T) {
	m := mustBuild(t, square(ModelSpec{PolyC3: 1}, 1).Colored(Polygon{Indices: []int{0, 1, 2}}))
	defer func() {
		if recover() == nil {
			t.Fatalf("fill() did not panic")
		}
	}()
	m.fill(make([]float32, 3), 0)
}

func TestBonesAndMutation(t *testing.T) {
	m := mustBuild(t, square(ModelSpec{PolyC3: 1, Bones: 2}, 1).
		Bone(Bone{Vertices: 2, Parent: -1, Matrix: quarkgl.Mat4Translate(quarkgl.V3(10, 0, 0))}).
		Bone(Bone{Vertices: 1, Parent: 0, Matrix: quarkgl.Mat4Translate(quarkgl.V3(0, 5, 0))}).
		Colored(Polygon{Indices: []int{0, 2, 3}}))

	vn := make([]float32, m.VertexArrayCapacity()*2)
	m.fill(vn, 0)
	// Vertex 2 is moved by both bones; vertex 3 is outside every bone.
	if vn[6] != 9 || vn[7] != 6 {
		t.Fatalf("vertex 2 = (%v, %v), want (9, 6)", vn[6], vn[7])
	}
	if vn[12] != 1 || vn[13] != 1 {
		t.Fatalf("vertex 3 = (%v, %v), want (1, 1)", vn[12], vn[13])
	}

	gen := m.Generation()
	m.SetBone(0, quarkgl.Mat4Identity())
	if m.Generation() != gen+1 || !m.ModifiedSinceFlush() {
		t.Fatalf("SetBone() did not mark the model modified")
	}
	m.fill(vn, 0)
	if vn[6] != -1 || vn[7] != 6 {
		t.Fatalf("vertex 2 after SetBone = (%v, %v), want (-1, 6)", vn[6], vn[7])
	}

	m.SetNormal(0, 1, 0, 0)
	if m.Generation() != gen+1 {
		t.Fatalf("SetNormal() on a model without normals changed the generation")
	}
}

func TestUploadLayout(t *testing.T) {
	rec := gles.NewRecorder()
	ps := createPrograms(t, rec, false)
	m := mustBuild(t, square(ModelSpec{PolyT3: 1, PolyC3: 1, Textures: 1}, 1).
		Textured(Polygon{Indices: []int{0, 1, 2}, TexCoords: make([]byte, 6)}).
		Colored(Polygon{Indices: []int{1, 3, 2}}))
	vn := make([]float32, m.VertexArrayCapacity()*2)

	rec.Reset()
	m.UploadToGL(rec, ps, vn)

	ptrs := rec.Find("VertexAttribPointer", "")
	if len(ptrs) != 8 {
		t.Fatalf("VertexAttribPointer calls = %d, want 8", len(ptrs))
	}
	want := [][]int{
		{3, int(gles.Float), 0, 24, 0},
		{3, int(gles.Float), 0, 24, 12},
		{2, int(gles.UnsignedByte), 0, 5, 0},
		{3, int(gles.UnsignedByte), 0, 5, 2},
		{3, int(gles.Float), 0, 24, 3 * 24},
		{3, int(gles.Float), 0, 24, 3*24 + 12},
		{3, int(gles.UnsignedByte), 1, 5, 3 * 5},
		{2, int(gles.UnsignedByte), 0, 5, 3*5 + 3},
	}
	for i, w := range want {
		for j := range w {
			if ptrs[i].Ints[j] != w[j] {
				t.Fatalf("pointer %d (%s) = %v, want %v", i, ptrs[i].Name, ptrs[i].Ints, w)
			}
		}
	}
	last, _ := rec.Last("BufferSubDataFloats", "")
	if last.Ints[2] != len(vn) {
		t.Fatalf("vertex upload = %d floats, want %d", last.Ints[2], len(vn))
	}

	rec.Reset()
	m.UploadToGL(rec, ps, vn)
	if n := len(rec.Find("VertexAttribPointer", "")); n != 0 {
		t.Fatalf("second upload set %d pointers, want 0", n)
	}
	if n := len(rec.Find("BufferSubDataFloats", "")); n != 1 {
		t.Fatalf("second upload wrote %d times, want 1", n)
	}

	m.Release(rec)
	if n := len(rec.Find("DeleteVertexArray", "")); n != 2 {
		t.Fatalf("Release() deleted %d vertex arrays, want 2", n)
	}
	if !m.ModifiedSinceFlush() {
		t.Fatalf("ModifiedSinceFlush() after Release = false")
	}
}
