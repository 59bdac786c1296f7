// Package gles is the GL capability the 3D pipeline renders through.
//
// Handles are opaque; the zero value of each handle type means "none".
// Every call is an ordered command with no result, except for object
// creation and location queries. A query that cannot resolve a name returns
// NoLocation rather than failing.
//
// Window coordinates (Viewport, ReadPixels) have their origin at the
// top-left corner of the surface.
package gles

// Buffer is a vertex buffer object handle.
type Buffer uint32

// Program is a linked shader program handle.
type Program uint32

// Texture is a texture object handle.
type Texture uint32

// VertexArray is a vertex array object handle.
type VertexArray uint32

// Location is an attribute or uniform location.
type Location int32

// NoLocation is returned by location queries for unknown or inactive names.
// Calls given NoLocation are ignored.
const NoLocation Location = -1

// Enum mirrors the GLES2 numeric constants.
type Enum uint32

const (
	Zero Enum = 0
	One  Enum = 1

	Points    Enum = 0x0000
	Lines     Enum = 0x0001
	Triangles Enum = 0x0004

	DepthBufferBit Enum = 0x0100
	ColorBufferBit Enum = 0x4000

	Less   Enum = 0x0201
	Lequal Enum = 0x0203

	SrcAlpha         Enum = 0x0302
	OneMinusSrcAlpha Enum = 0x0303

	CullFace  Enum = 0x0B44
	DepthTest Enum = 0x0B71
	Blend     Enum = 0x0BE2

	Texture2D Enum = 0x0DE1

	UnsignedByte Enum = 0x1401
	Float        Enum = 0x1406

	RGBA Enum = 0x1908

	Nearest          Enum = 0x2600
	Linear           Enum = 0x2601
	TextureMagFilter Enum = 0x2800
	TextureMinFilter Enum = 0x2801

	ConstantAlpha         Enum = 0x8003
	OneMinusConstantAlpha Enum = 0x8004

	FuncAdd             Enum = 0x8006
	FuncReverseSubtract Enum = 0x800B

	Texture0 Enum = 0x84C0
	Texture1 Enum = 0x84C1
	Texture2 Enum = 0x84C2

	ArrayBuffer Enum = 0x8892
	StaticDraw  Enum = 0x88E4
	DynamicDraw Enum = 0x88E8
)

// GL is the subset of GLES2 (+ vertex array objects) used by the renderer.
//
// Implementations are not required to be safe for concurrent use: all calls
// for one context come from the goroutine that owns it.
type GL interface {
	CreateBuffer() Buffer
	DeleteBuffer(b Buffer)
	BindBuffer(target Enum, b Buffer)
	BufferData(target Enum, size int, usage Enum)
	BufferSubDataBytes(target Enum, offset int, data []byte)
	BufferSubDataFloats(target Enum, offset int, data []float32)

	CreateVertexArray() VertexArray
	DeleteVertexArray(va VertexArray)
	BindVertexArray(va VertexArray)
	EnableVertexAttribArray(loc Location)
	DisableVertexAttribArray(loc Location)
	VertexAttribPointer(loc Location, size int, typ Enum, normalized bool, stride, offset int)
	VertexAttrib3f(loc Location, x, y, z float32)

	CreateProgram(vertexSrc, fragmentSrc string) (Program, error)
	DeleteProgram(p Program)
	UseProgram(p Program)
	GetAttribLocation(p Program, name string) Location
	GetUniformLocation(p Program, name string) Location
	Uniform1i(loc Location, v int32)
	Uniform1f(loc Location, v float32)
	Uniform2f(loc Location, x, y float32)
	Uniform3f(loc Location, x, y, z float32)
	UniformMatrix4fv(loc Location, transpose bool, m []float32)

	CreateTexture() Texture
	DeleteTexture(t Texture)
	ActiveTexture(unit Enum)
	BindTexture(target Enum, t Texture)
	TexImage2D(target Enum, width, height int, rgba []byte)
	TexParameteri(target, pname Enum, v int32)

	Enable(cap Enum)
	Disable(cap Enum)
	BlendFunc(src, dst Enum)
	BlendEquation(mode Enum)
	BlendColor(r, g, b, a float32)
	DepthMask(on bool)
	DepthFunc(fn Enum)
	Viewport(x, y, width, height int)
	ClearColor(r, g, b, a float32)
	Clear(mask Enum)
	DrawArrays(mode Enum, first, count int)

	// ReadPixels copies RGBA pixels of the given window rectangle into dst,
	// row by row from the top.
	ReadPixels(x, y, width, height int, dst []byte)
}
