package quarkgl

import (
	"testing"

	"midp/hal/gles"
)

const colorVS = "// program: color\nvoid main() {}\n"

// fullScreen is a counter-clockwise triangle covering the whole viewport.
var fullScreen = []float32{-1, -1, 0, 3, -1, 0, -1, 3, 0}

func colorDevice(t *testing.T, w, h int) (*Device, gles.Program) {
	t.Helper()
	d := NewDevice(w, h)
	p, err := d.CreateProgram(colorVS, "void main() {}")
	if err != nil {
		t.Fatalf("CreateProgram() error = %v", err)
	}
	d.UseProgram(p)
	return d, p
}

func drawFlat(d *Device, p gles.Program, pos []float32, r, g, b float32) {
	buf := d.CreateBuffer()
	d.BindBuffer(gles.ArrayBuffer, buf)
	d.BufferData(gles.ArrayBuffer, len(pos)*4, gles.StaticDraw)
	d.BufferSubDataFloats(gles.ArrayBuffer, 0, pos)
	loc := d.GetAttribLocation(p, "aPosition")
	d.EnableVertexAttribArray(loc)
	d.VertexAttribPointer(loc, 3, gles.Float, false, 0, 0)
	d.VertexAttrib3f(d.GetAttribLocation(p, "aColorData"), r, g, b)
	d.DrawArrays(gles.Triangles, 0, len(pos)/3)
}

func pixel(d *Device, x, y int) [4]byte {
	var px [4]byte
	d.ReadPixels(x, y, 1, 1, px[:])
	return px
}

func TestDrawFillsViewport(t *testing.T) {
	d, p := colorDevice(t, 4, 4)
	d.ClearColor(0, 0, 0, 1)
	d.Clear(gles.ColorBufferBit)
	drawFlat(d, p, fullScreen, 1, 0, 0)

	for _, xy := range [][2]int{{0, 0}, {3, 0}, {0, 3}, {3, 3}} {
		if got := pixel(d, xy[0], xy[1]); got != [4]byte{255, 0, 0, 255} {
			t.Fatalf("pixel%v = %v, want red", xy, got)
		}
	}
}

func TestCullFaceDropsClockwise(t *testing.T) {
	d, p := colorDevice(t, 4, 4)
	d.Enable(gles.CullFace)
	drawFlat(d, p, []float32{-1, -1, 0, -1, 3, 0, 3, -1, 0}, 1, 1, 1)
	if d.Triangles != 0 {
		t.Fatalf("Triangles = %d, want 0", d.Triangles)
	}
	drawFlat(d, p, fullScreen, 1, 1, 1)
	if d.Triangles != 1 {
		t.Fatalf("Triangles = %d, want 1", d.Triangles)
	}
}

func TestDepthTestKeepsNearest(t *testing.T) {
	d, p := colorDevice(t, 2, 2)
	d.Enable(gles.DepthTest)
	d.Clear(gles.DepthBufferBit | gles.ColorBufferBit)
	drawFlat(d, p, []float32{-1, -1, 0, 3, -1, 0, -1, 3, 0}, 1, 0, 0)
	drawFlat(d, p, []float32{-1, -1, 0.5, 3, -1, 0.5, -1, 3, 0.5}, 0, 1, 0)
	if got := pixel(d, 1, 1); got != [4]byte{255, 0, 0, 255} {
		t.Fatalf("pixel = %v, want red in front", got)
	}

	d.DepthMask(false)
	d.Clear(gles.DepthBufferBit)
	drawFlat(d, p, []float32{-1, -1, 0.5, 3, -1, 0.5, -1, 3, 0.5}, 0, 0, 1)
	drawFlat(d, p, []float32{-1, -1, 0.8, 3, -1, 0.8, -1, 3, 0.8}, 0, 1, 0)
	if got := pixel(d, 1, 1); got != [4]byte{0, 255, 0, 255} {
		t.Fatalf("pixel = %v, want green with depth writes off", got)
	}
}

func TestBlendModes(t *testing.T) {
	tests := []struct {
		name     string
		clear    float32
		src, dst gles.Enum
		eq       gles.Enum
		in       float32
		want     byte
	}{
		{"half", 0, gles.ConstantAlpha, gles.OneMinusConstantAlpha, gles.FuncAdd, 1, 128},
		{"add", 0.5, gles.One, gles.One, gles.FuncAdd, 0.25, 191},
		{"sub", 1, gles.One, gles.One, gles.FuncReverseSubtract, 0.25, 191},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, p := colorDevice(t, 2, 2)
			d.ClearColor(tc.clear, tc.clear, tc.clear, 1)
			d.Clear(gles.ColorBufferBit)
			d.Enable(gles.Blend)
			d.BlendColor(0, 0, 0, 0.5)
			d.BlendFunc(tc.src, tc.dst)
			d.BlendEquation(tc.eq)
			drawFlat(d, p, fullScreen, tc.in, tc.in, tc.in)
			got := pixel(d, 0, 0)[0]
			if got+1 < tc.want || got > tc.want+1 {
				t.Fatalf("red = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestSimpleProgramSamplesTopDown(t *testing.T) {
	d := NewDevice(2, 2)
	p, err := d.CreateProgram("// program: simple\n", "void main() {}")
	if err != nil {
		t.Fatalf("CreateProgram() error = %v", err)
	}
	d.UseProgram(p)
	d.Uniform1i(d.GetUniformLocation(p, "sampler0"), 1)

	tex := d.CreateTexture()
	d.ActiveTexture(gles.Texture1)
	d.BindTexture(gles.Texture2D, tex)
	d.TexImage2D(gles.Texture2D, 2, 2, []byte{
		255, 0, 0, 255, 0, 255, 0, 255,
		0, 0, 255, 255, 255, 255, 255, 255,
	})

	data := []float32{
		-1, -1, 0, 1,
		3, -1, 2, 1,
		-1, 3, 0, -1,
	}
	buf := d.CreateBuffer()
	d.BindBuffer(gles.ArrayBuffer, buf)
	d.BufferData(gles.ArrayBuffer, len(data)*4, gles.StaticDraw)
	d.BufferSubDataFloats(gles.ArrayBuffer, 0, data)
	pos := d.GetAttribLocation(p, "a_position")
	uv := d.GetAttribLocation(p, "a_texcoord0")
	d.EnableVertexAttribArray(pos)
	d.EnableVertexAttribArray(uv)
	d.VertexAttribPointer(pos, 2, gles.Float, false, 16, 0)
	d.VertexAttribPointer(uv, 2, gles.Float, false, 16, 8)
	d.DrawArrays(gles.Triangles, 0, 3)

	want := map[[2]int][4]byte{
		{0, 0}: {255, 0, 0, 255},
		{1, 0}: {0, 255, 0, 255},
		{0, 1}: {0, 0, 255, 255},
		{1, 1}: {255, 255, 255, 255},
	}
	for xy, w := range want {
		if got := pixel(d, xy[0], xy[1]); got != w {
			t.Fatalf("pixel%v = %v, want %v", xy, got, w)
		}
	}
}

func TestProgramLocations(t *testing.T) {
	d, p := colorDevice(t, 1, 1)
	if got := d.GetUniformLocation(p, "uTexSize"); got != gles.NoLocation {
		t.Fatalf("color uTexSize = %v, want NoLocation", got)
	}
	if got := d.GetUniformLocation(p, "uToonThreshold"); got == gles.NoLocation {
		t.Fatalf("color uToonThreshold missing")
	}
	if got := d.GetAttribLocation(p, "a_position"); got != gles.NoLocation {
		t.Fatalf("color a_position = %v, want NoLocation", got)
	}
	if _, err := d.CreateProgram("void main() {}", "void main() {}"); err == nil {
		t.Fatalf("CreateProgram(unmarked) error = nil, want error")
	}
}

func TestLightToonBands(t *testing.T) {
	p, err := parseProgram("// program: tex\n", "x")
	if err != nil {
		t.Fatalf("parseProgram() error = %v", err)
	}
	loc := func(name string) gles.Location { return p.uniform(name) }
	p.set(loc("uAmbIntensity"), 0.25)
	p.set(loc("uDirIntensity"), 0.5)
	p.set(loc("uLightDir"), 0, 0, 1)
	p.set(loc("uToonThreshold"), -1)
	if got := p.light(V3(0, 0, 1)); !near(got, 0.75) {
		t.Fatalf("light() = %v, want 0.75", got)
	}
	p.set(loc("uToonThreshold"), 0.5)
	p.set(loc("uToonHigh"), 1)
	p.set(loc("uToonLow"), 0.2)
	if got := p.light(V3(0, 0, 1)); got != 1 {
		t.Fatalf("toon light() = %v, want 1", got)
	}
	if got := p.light(V3(0, 0, -1)); !near(got, 0.2) {
		t.Fatalf("toon light(back) = %v, want 0.2", got)
	}
	p.set(loc("uAmbIntensity"), -1)
	if got := p.light(V3(0, 0, 1)); got != 1 {
		t.Fatalf("unlit light() = %v, want 1", got)
	}
}
