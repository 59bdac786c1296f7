package micro3d

import (
	"embed"
	"fmt"
	"math"

	"midp/hal/gles"
	"midp/quarkgl"
)

//go:embed shaders
var shaders embed.FS

const filterDefine = "#define FILTER\n"

// program holds the locations every shading mode shares.
type program struct {
	gl     gles.GL
	handle gles.Program

	uAmbIntensity gles.Location
	uDirIntensity gles.Location
	uLightDir     gles.Location
	uProjMatrix   gles.Location
	uMvMatrix     gles.Location

	aPosition  gles.Location
	aNormal    gles.Location
	aColorData gles.Location
	aMaterial  gles.Location
}

func newProgram(gl gles.GL, name string, filter bool) (program, error) {
	vs, err := shaders.ReadFile("shaders/" + name + ".vsh")
	if err != nil {
		return program{}, fmt.Errorf("micro3d: %s shader: %w", name, err)
	}
	fs, err := shaders.ReadFile("shaders/" + name + ".fsh")
	if err != nil {
		return program{}, fmt.Errorf("micro3d: %s shader: %w", name, err)
	}
	vsrc, fsrc := string(vs), string(fs)
	if filter {
		vsrc, fsrc = filterDefine+vsrc, filterDefine+fsrc
	}
	h, err := gl.CreateProgram(vsrc, fsrc)
	if err != nil {
		return program{}, fmt.Errorf("micro3d: create %s program: %w", name, err)
	}
	return program{
		gl:            gl,
		handle:        h,
		uAmbIntensity: gles.NoLocation,
		uDirIntensity: gles.NoLocation,
		uLightDir:     gles.NoLocation,
		uProjMatrix:   gles.NoLocation,
		uMvMatrix:     gles.NoLocation,
		aPosition:     gles.NoLocation,
		aNormal:       gles.NoLocation,
		aColorData:    gles.NoLocation,
		aMaterial:     gles.NoLocation,
	}, nil
}

func (p *program) attrib(name string) gles.Location  { return p.gl.GetAttribLocation(p.handle, name) }
func (p *program) uniform(name string) gles.Location { return p.gl.GetUniformLocation(p.handle, name) }

// lightingLocations resolves the locations of the lit programs.
func (p *program) lightingLocations() {
	p.aPosition = p.attrib("aPosition")
	p.aNormal = p.attrib("aNormal")
	p.aColorData = p.attrib("aColorData")
	p.aMaterial = p.attrib("aMaterial")

	p.uProjMatrix = p.uniform("uProjMatrix")
	p.uMvMatrix = p.uniform("uMvMatrix")
	p.uAmbIntensity = p.uniform("uAmbIntensity")
	p.uDirIntensity = p.uniform("uDirIntensity")
	p.uLightDir = p.uniform("uLightDir")
}

func (p *program) Use() { p.gl.UseProgram(p.handle) }

func (p *program) delete() { p.gl.DeleteProgram(p.handle) }

func clamp(v, lo, hi int) int { return max(lo, min(v, hi)) }

// SetLight binds l, or disables lighting when l is nil. Intensities are
// clamped to their fixed point ranges and the direction is sent reversed
// and normalized.
func (p *program) SetLight(l *Light) {
	if l == nil {
		p.gl.Uniform1f(p.uAmbIntensity, -1)
		return
	}
	p.gl.Uniform1f(p.uAmbIntensity, float32(clamp(l.Ambient, 0, 4096))/4096)
	p.gl.Uniform1f(p.uDirIntensity, float32(clamp(l.Directional, 0, 16384))/16384)
	x, y, z := float32(l.X), float32(l.Y), float32(l.Z)
	n := float32(math.Sqrt(float64(x*x + y*y + z*z)))
	if n == 0 {
		p.gl.Uniform3f(p.uLightDir, 0, 0, 0)
		return
	}
	rlf := -1 / n
	p.gl.Uniform3f(p.uLightDir, x*rlf, y*rlf, z*rlf)
}

// shaded adds the toon, sphere map and matrix uniforms of Tex and Color.
type shaded struct {
	program
	uSphereSize    gles.Location
	uToonThreshold gles.Location
	uToonHigh      gles.Location
	uToonLow       gles.Location
}

func (p *shaded) locations() {
	p.lightingLocations()
	p.uSphereSize = p.uniform("uSphereSize")
	p.uToonThreshold = p.uniform("uToonThreshold")
	p.uToonHigh = p.uniform("uToonHigh")
	p.uToonLow = p.uniform("uToonLow")
}

// SetToonShading sets the toon bands. Without EnvToonShading in attrs the
// threshold is -1, which the shaders read as disabled.
func (p *shaded) SetToonShading(attrs, threshold, high, low int) {
	if attrs&EnvToonShading == 0 {
		p.gl.Uniform1f(p.uToonThreshold, -1)
		return
	}
	p.gl.Uniform1f(p.uToonThreshold, float32(threshold)/255)
	p.gl.Uniform1f(p.uToonHigh, float32(high)/255)
	p.gl.Uniform1f(p.uToonLow, float32(low)/255)
}

func (p *shaded) BindMatrices(proj, mv quarkgl.Mat4) {
	p.gl.UniformMatrix4fv(p.uProjMatrix, false, proj[:])
	p.gl.UniformMatrix4fv(p.uMvMatrix, false, mv[:])
}

// SetSphere binds the sphere map on unit 2, or disables it.
func (p *shaded) SetSphere(sphere *Texture) {
	if sphere == nil {
		p.gl.Uniform2f(p.uSphereSize, -1, -1)
		return
	}
	p.gl.ActiveTexture(gles.Texture2)
	p.gl.BindTexture(gles.Texture2D, sphere.handle(p.gl))
	p.gl.Uniform2f(p.uSphereSize, float32(sphere.Width()), float32(sphere.Height()))
}

// TexProgram shades textured polygons.
type TexProgram struct {
	shaded
	uTexSize gles.Location
}

func newTexProgram(gl gles.GL, filter bool) (*TexProgram, error) {
	base, err := newProgram(gl, "tex", filter)
	if err != nil {
		return nil, err
	}
	p := &TexProgram{shaded: shaded{program: base}}
	p.locations()
	p.uTexSize = p.uniform("uTexSize")
	p.Use()
	gl.Uniform1i(p.uniform("uTextureUnit"), 0)
	gl.Uniform1i(p.uniform("uSphereUnit"), 2)
	return p, nil
}

// SetTex binds tex on unit 0. Without a texture the size falls back to
// 256x256 and unit 0 is unbound.
func (p *TexProgram) SetTex(tex *Texture) {
	p.gl.ActiveTexture(gles.Texture0)
	if tex == nil {
		p.gl.Uniform2f(p.uTexSize, 256, 256)
		p.gl.BindTexture(gles.Texture2D, 0)
		return
	}
	p.gl.BindTexture(gles.Texture2D, tex.handle(p.gl))
	p.gl.Uniform2f(p.uTexSize, float32(tex.Width()), float32(tex.Height()))
}

// ColorProgram shades per-vertex colored polygons.
type ColorProgram struct {
	shaded
}

func newColorProgram(gl gles.GL) (*ColorProgram, error) {
	base, err := newProgram(gl, "color", false)
	if err != nil {
		return nil, err
	}
	p := &ColorProgram{shaded: shaded{program: base}}
	p.locations()
	p.Use()
	gl.Uniform1i(p.uniform("uSphereUnit"), 2)
	return p, nil
}

// SetColor sets a constant color for draws without a color array.
func (p *ColorProgram) SetColor(rgb [3]byte) {
	p.gl.VertexAttrib3f(p.aColorData, float32(rgb[0])/255, float32(rgb[1])/255, float32(rgb[2])/255)
}

// SimpleProgram draws the 2D background as a textured quad.
type SimpleProgram struct {
	program
	aTexture gles.Location
}

func newSimpleProgram(gl gles.GL) (*SimpleProgram, error) {
	base, err := newProgram(gl, "simple", false)
	if err != nil {
		return nil, err
	}
	p := &SimpleProgram{program: base}
	p.aPosition = p.attrib("a_position")
	p.aTexture = p.attrib("a_texcoord0")
	p.Use()
	gl.Uniform1i(p.uniform("sampler0"), 1)
	return p, nil
}

// SpriteProgram draws point sprites.
type SpriteProgram struct {
	program
	uTexSize        gles.Location
	uIsTransparency gles.Location
}

func newSpriteProgram(gl gles.GL, filter bool) (*SpriteProgram, error) {
	base, err := newProgram(gl, "sprite", filter)
	if err != nil {
		return nil, err
	}
	p := &SpriteProgram{program: base}
	p.aPosition = p.attrib("aPosition")
	p.aColorData = p.attrib("aColorData")
	p.uTexSize = p.uniform("uTexSize")
	p.uIsTransparency = p.uniform("uIsTransparency")
	p.Use()
	gl.Uniform1i(p.uniform("uTextureUnit"), 0)
	return p, nil
}

func (p *SpriteProgram) SetTexture(tex *Texture) {
	p.gl.ActiveTexture(gles.Texture0)
	p.gl.BindTexture(gles.Texture2D, tex.handle(p.gl))
	p.gl.Uniform2f(p.uTexSize, float32(tex.Width()), float32(tex.Height()))
}

// Programs is the set of the four shading programs of one GL context.
type Programs struct {
	Tex    *TexProgram
	Color  *ColorProgram
	Simple *SimpleProgram
	Sprite *SpriteProgram

	created bool
}

// Create compiles the programs once; later calls do nothing. filter turns
// on bilinear texture sampling in Tex and Sprite.
func (ps *Programs) Create(gl gles.GL, filter bool) error {
	if ps.created {
		return nil
	}
	tex, err := newTexProgram(gl, filter)
	if err != nil {
		return err
	}
	color, err := newColorProgram(gl)
	if err != nil {
		tex.delete()
		return err
	}
	simple, err := newSimpleProgram(gl)
	if err != nil {
		tex.delete()
		color.delete()
		return err
	}
	sprite, err := newSpriteProgram(gl, filter)
	if err != nil {
		tex.delete()
		color.delete()
		simple.delete()
		return err
	}
	ps.Tex, ps.Color, ps.Simple, ps.Sprite = tex, color, simple, sprite
	ps.created = true
	return nil
}

// Created reports whether Create succeeded and Release has not run since.
func (ps *Programs) Created() bool { return ps.created }

// Release deletes all four programs.
func (ps *Programs) Release() {
	if !ps.created {
		return
	}
	ps.Tex.delete()
	ps.Color.delete()
	ps.Simple.delete()
	ps.Sprite.delete()
	*ps = Programs{}
}
