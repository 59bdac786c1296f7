package micro3d

import (
	"math"
	"strings"
	"testing"

	"midp/hal/gles"
)

func createPrograms(t *testing.T, gl gles.GL, filter bool) *Programs {
	t.Helper()
	var ps Programs
	if err := ps.Create(gl, filter); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return &ps
}

func near(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-5 }

func TestCreateIsIdempotent(t *testing.T) {
	rec := gles.NewRecorder()
	ps := createPrograms(t, rec, false)
	if err := ps.Create(rec, false); err != nil {
		t.Fatalf("second Create() error = %v", err)
	}
	if got := len(rec.Find("CreateProgram", "")); got != 4 {
		t.Fatalf("CreateProgram calls = %d, want 4", got)
	}
	if !ps.Created() {
		t.Fatalf("Created() = false, want true")
	}

	ps.Release()
	if got := len(rec.Find("DeleteProgram", "")); got != 4 {
		t.Fatalf("DeleteProgram calls = %d, want 4", got)
	}
	if ps.Created() {
		t.Fatalf("Created() after Release = true, want false")
	}
}

func TestFilterDefine(t *testing.T) {
	rec := gles.NewRecorder()
	ps := createPrograms(t, rec, true)

	for name, h := range map[string]gles.Program{"tex": ps.Tex.handle, "sprite": ps.Sprite.handle} {
		vs, fs := rec.Source(h)
		if !strings.HasPrefix(vs, "#define FILTER\n") || !strings.HasPrefix(fs, "#define FILTER\n") {
			t.Fatalf("%s sources lack the FILTER define", name)
		}
	}
	for name, h := range map[string]gles.Program{"color": ps.Color.handle, "simple": ps.Simple.handle} {
		vs, _ := rec.Source(h)
		if strings.Contains(vs, "FILTER") {
			t.Fatalf("%s source has the FILTER define", name)
		}
	}
}

func TestSamplerUnits(t *testing.T) {
	rec := gles.NewRecorder()
	createPrograms(t, rec, false)

	want := map[string][]int{
		"uTextureUnit": {0, 0},
		"uSphereUnit":  {2, 2},
		"sampler0":     {1},
	}
	for name, units := range want {
		calls := rec.Find("Uniform1i", name)
		if len(calls) != len(units) {
			t.Fatalf("Uniform1i(%s) calls = %d, want %d", name, len(calls), len(units))
		}
		for i, c := range calls {
			if c.Ints[0] != units[i] {
				t.Fatalf("Uniform1i(%s) = %d, want %d", name, c.Ints[0], units[i])
			}
		}
	}
}

func TestCreateFailureReturnsError(t *testing.T) {
	rec := gles.NewRecorder()
	rec.FailPrograms = true
	var ps Programs
	if err := ps.Create(rec, false); err == nil {
		t.Fatalf("Create() error = nil, want failure")
	}
	if ps.Created() {
		t.Fatalf("Created() = true after failure")
	}
}

func TestMissingLocationIsNoLocation(t *testing.T) {
	rec := gles.NewRecorder()
	rec.Missing = map[string]bool{"uSphereSize": true}
	ps := createPrograms(t, rec, false)
	if ps.Tex.uSphereSize != gles.NoLocation {
		t.Fatalf("uSphereSize = %d, want NoLocation", ps.Tex.uSphereSize)
	}
	if ps.Tex.uTexSize == gles.NoLocation {
		t.Fatalf("uTexSize unresolved")
	}
}

func TestSetLight(t *testing.T) {
	rec := gles.NewRecorder()
	ps := createPrograms(t, rec, false)

	rec.Reset()
	ps.Tex.SetLight(&Light{Ambient: 8192, Directional: 20000, X: 3, Y: 4})
	amb, _ := rec.Last("Uniform1f", "uAmbIntensity")
	dir, _ := rec.Last("Uniform1f", "uDirIntensity")
	if amb.Floats[0] != 1 || dir.Floats[0] != 1 {
		t.Fatalf("intensities = %v, %v, want 1, 1", amb.Floats[0], dir.Floats[0])
	}
	ld, ok := rec.Last("Uniform3f", "uLightDir")
	if !ok {
		t.Fatalf("uLightDir not set")
	}
	if !near(ld.Floats[0], -0.6) || !near(ld.Floats[1], -0.8) || ld.Floats[2] != 0 {
		t.Fatalf("uLightDir = %v, want (-0.6, -0.8, 0)", ld.Floats)
	}

	rec.Reset()
	ps.Tex.SetLight(&Light{Ambient: -5, Directional: 4096, Z: -1})
	amb, _ = rec.Last("Uniform1f", "uAmbIntensity")
	dir, _ = rec.Last("Uniform1f", "uDirIntensity")
	if amb.Floats[0] != 0 || dir.Floats[0] != 0.25 {
		t.Fatalf("intensities = %v, %v, want 0, 0.25", amb.Floats[0], dir.Floats[0])
	}

	rec.Reset()
	ps.Tex.SetLight(nil)
	amb, _ = rec.Last("Uniform1f", "uAmbIntensity")
	if amb.Floats[0] != -1 {
		t.Fatalf("uAmbIntensity = %v, want -1", amb.Floats[0])
	}
	if _, ok := rec.Last("Uniform3f", "uLightDir"); ok {
		t.Fatalf("uLightDir set for a disabled light")
	}
}

func TestToonSentinel(t *testing.T) {
	rec := gles.NewRecorder()
	ps := createPrograms(t, rec, false)

	rec.Reset()
	ps.Color.SetToonShading(EnvLighting, 128, 255, 0)
	th, _ := rec.Last("Uniform1f", "uToonThreshold")
	if th.Floats[0] != -1 {
		t.Fatalf("uToonThreshold = %v, want -1", th.Floats[0])
	}
	if _, ok := rec.Last("Uniform1f", "uToonHigh"); ok {
		t.Fatalf("uToonHigh set with toon shading off")
	}

	rec.Reset()
	ps.Color.SetToonShading(EnvToonShading, 51, 255, 0)
	th, _ = rec.Last("Uniform1f", "uToonThreshold")
	hi, _ := rec.Last("Uniform1f", "uToonHigh")
	if th.Floats[0] != 0.2 || hi.Floats[0] != 1 {
		t.Fatalf("toon = %v, %v, want 0.2, 1", th.Floats[0], hi.Floats[0])
	}
}

func TestSetTexAndSphere(t *testing.T) {
	rec := gles.NewRecorder()
	ps := createPrograms(t, rec, false)
	tex := &Texture{w: 16, h: 8, rgba: make([]byte, 16*8*4)}

	rec.Reset()
	ps.Tex.SetTex(nil)
	size, _ := rec.Last("Uniform2f", "uTexSize")
	bind, _ := rec.Last("BindTexture", "")
	if size.Floats[0] != 256 || size.Floats[1] != 256 || bind.Ints[1] != 0 {
		t.Fatalf("SetTex(nil) = size %v bind %v, want 256x256 and unbind", size.Floats, bind.Ints)
	}

	rec.Reset()
	ps.Tex.SetTex(tex)
	size, _ = rec.Last("Uniform2f", "uTexSize")
	if size.Floats[0] != 16 || size.Floats[1] != 8 {
		t.Fatalf("uTexSize = %v, want 16x8", size.Floats)
	}
	if got := len(rec.Find("TexImage2D", "")); got != 1 {
		t.Fatalf("TexImage2D calls = %d, want 1", got)
	}
	ps.Tex.SetTex(tex)
	if got := len(rec.Find("TexImage2D", "")); got != 1 {
		t.Fatalf("TexImage2D calls after reuse = %d, want 1", got)
	}

	rec.Reset()
	ps.Tex.SetSphere(nil)
	ss, _ := rec.Last("Uniform2f", "uSphereSize")
	if ss.Floats[0] != -1 || ss.Floats[1] != -1 {
		t.Fatalf("uSphereSize = %v, want (-1, -1)", ss.Floats)
	}
	ps.Tex.SetSphere(tex)
	unit, _ := rec.Last("ActiveTexture", "")
	if gles.Enum(unit.Ints[0]) != gles.Texture2 {
		t.Fatalf("sphere unit = %#x, want Texture2", unit.Ints[0])
	}
}

func TestSetColor(t *testing.T) {
	rec := gles.NewRecorder()
	ps := createPrograms(t, rec, false)
	ps.Color.SetColor([3]byte{255, 0, 51})
	c, ok := rec.Last("VertexAttrib3f", "aColorData")
	if !ok || c.Floats[0] != 1 || c.Floats[1] != 0 || c.Floats[2] != 0.2 {
		t.Fatalf("VertexAttrib3f(aColorData) = %v, want (1, 0, 0.2)", c.Floats)
	}
}
