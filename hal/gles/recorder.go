package gles

import (
	"fmt"
	"strings"
	"sync"
)

// Call is one recorded command.
type Call struct {
	Op     string
	Name   string // resolved attribute or uniform name, when the call has a location
	Ints   []int
	Floats []float32
}

func (c Call) String() string {
	var b strings.Builder
	b.WriteString(c.Op)
	b.WriteByte('(')
	sep := ""
	if c.Name != "" {
		b.WriteString(c.Name)
		sep = ", "
	}
	for _, v := range c.Ints {
		fmt.Fprintf(&b, "%s%d", sep, v)
		sep = ", "
	}
	for _, v := range c.Floats {
		fmt.Fprintf(&b, "%s%g", sep, v)
		sep = ", "
	}
	b.WriteByte(')')
	return b.String()
}

// Recorder is a GL that performs nothing and records every call in order.
//
// Locations are unique across programs so a recorded call can be mapped back
// to its name. Names listed in Missing resolve to NoLocation.
type Recorder struct {
	mu sync.Mutex

	calls   []Call
	next    uint32
	nextLoc Location
	names   map[Location]string
	locs    map[string]Location
	sources map[Program][2]string

	// Missing lists names that location queries do not resolve.
	Missing map[string]bool
	// FailPrograms makes CreateProgram fail.
	FailPrograms bool
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		names:   make(map[Location]string),
		locs:    make(map[string]Location),
		sources: make(map[Program][2]string),
	}
}

// Calls returns a copy of the recorded commands.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Reset forgets recorded commands but keeps objects and locations.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = r.calls[:0]
	r.mu.Unlock()
}

// Find returns every call with op (and name, if non-empty).
func (r *Recorder) Find(op, name string) []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, c := range r.calls {
		if c.Op == op && (name == "" || c.Name == name) {
			out = append(out, c)
		}
	}
	return out
}

// Last returns the most recent call with op and name.
func (r *Recorder) Last(op, name string) (Call, bool) {
	found := r.Find(op, name)
	if len(found) == 0 {
		return Call{}, false
	}
	return found[len(found)-1], true
}

// Source returns the shader sources a program was created from.
func (r *Recorder) Source(p Program) (vertex, fragment string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.sources[p]
	return s[0], s[1]
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
}

func (r *Recorder) handle(op string) uint32 {
	r.mu.Lock()
	r.next++
	h := r.next
	r.calls = append(r.calls, Call{Op: op, Ints: []int{int(h)}})
	r.mu.Unlock()
	return h
}

func (r *Recorder) name(loc Location) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.names[loc]
}

func (r *Recorder) locate(op string, p Program, name string) Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: op, Name: name, Ints: []int{int(p)}})
	if r.Missing[name] {
		return NoLocation
	}
	key := fmt.Sprintf("%d/%s", p, name)
	if loc, ok := r.locs[key]; ok {
		return loc
	}
	loc := r.nextLoc
	r.nextLoc++
	r.locs[key] = loc
	r.names[loc] = name
	return loc
}

func (r *Recorder) CreateBuffer() Buffer           { return Buffer(r.handle("CreateBuffer")) }
func (r *Recorder) DeleteBuffer(b Buffer)          { r.record(Call{Op: "DeleteBuffer", Ints: []int{int(b)}}) }
func (r *Recorder) CreateVertexArray() VertexArray { return VertexArray(r.handle("CreateVertexArray")) }
func (r *Recorder) CreateTexture() Texture         { return Texture(r.handle("CreateTexture")) }

func (r *Recorder) BindBuffer(target Enum, b Buffer) {
	r.record(Call{Op: "BindBuffer", Ints: []int{int(target), int(b)}})
}

func (r *Recorder) BufferData(target Enum, size int, usage Enum) {
	r.record(Call{Op: "BufferData", Ints: []int{int(target), size, int(usage)}})
}

func (r *Recorder) BufferSubDataBytes(target Enum, offset int, data []byte) {
	r.record(Call{Op: "BufferSubDataBytes", Ints: []int{int(target), offset, len(data)}})
}

func (r *Recorder) BufferSubDataFloats(target Enum, offset int, data []float32) {
	r.record(Call{Op: "BufferSubDataFloats", Ints: []int{int(target), offset, len(data)}})
}

func (r *Recorder) DeleteVertexArray(va VertexArray) {
	r.record(Call{Op: "DeleteVertexArray", Ints: []int{int(va)}})
}

func (r *Recorder) BindVertexArray(va VertexArray) {
	r.record(Call{Op: "BindVertexArray", Ints: []int{int(va)}})
}

func (r *Recorder) EnableVertexAttribArray(loc Location) {
	r.record(Call{Op: "EnableVertexAttribArray", Name: r.name(loc), Ints: []int{int(loc)}})
}

func (r *Recorder) DisableVertexAttribArray(loc Location) {
	r.record(Call{Op: "DisableVertexAttribArray", Name: r.name(loc), Ints: []int{int(loc)}})
}

func (r *Recorder) VertexAttribPointer(loc Location, size int, typ Enum, normalized bool, stride, offset int) {
	n := 0
	if normalized {
		n = 1
	}
	r.record(Call{Op: "VertexAttribPointer", Name: r.name(loc), Ints: []int{size, int(typ), n, stride, offset}})
}

func (r *Recorder) VertexAttrib3f(loc Location, x, y, z float32) {
	r.record(Call{Op: "VertexAttrib3f", Name: r.name(loc), Floats: []float32{x, y, z}})
}

func (r *Recorder) CreateProgram(vertexSrc, fragmentSrc string) (Program, error) {
	if r.FailPrograms {
		r.record(Call{Op: "CreateProgram"})
		return 0, fmt.Errorf("gles: link failed")
	}
	p := Program(r.handle("CreateProgram"))
	r.mu.Lock()
	r.sources[p] = [2]string{vertexSrc, fragmentSrc}
	r.mu.Unlock()
	return p, nil
}

func (r *Recorder) DeleteProgram(p Program) { r.record(Call{Op: "DeleteProgram", Ints: []int{int(p)}}) }
func (r *Recorder) UseProgram(p Program)    { r.record(Call{Op: "UseProgram", Ints: []int{int(p)}}) }

func (r *Recorder) GetAttribLocation(p Program, name string) Location {
	return r.locate("GetAttribLocation", p, name)
}

func (r *Recorder) GetUniformLocation(p Program, name string) Location {
	return r.locate("GetUniformLocation", p, name)
}

func (r *Recorder) Uniform1i(loc Location, v int32) {
	r.record(Call{Op: "Uniform1i", Name: r.name(loc), Ints: []int{int(v)}})
}

func (r *Recorder) Uniform1f(loc Location, v float32) {
	r.record(Call{Op: "Uniform1f", Name: r.name(loc), Floats: []float32{v}})
}

func (r *Recorder) Uniform2f(loc Location, x, y float32) {
	r.record(Call{Op: "Uniform2f", Name: r.name(loc), Floats: []float32{x, y}})
}

func (r *Recorder) Uniform3f(loc Location, x, y, z float32) {
	r.record(Call{Op: "Uniform3f", Name: r.name(loc), Floats: []float32{x, y, z}})
}

func (r *Recorder) UniformMatrix4fv(loc Location, transpose bool, m []float32) {
	r.record(Call{Op: "UniformMatrix4fv", Name: r.name(loc), Floats: append([]float32(nil), m...)})
}

func (r *Recorder) DeleteTexture(t Texture) { r.record(Call{Op: "DeleteTexture", Ints: []int{int(t)}}) }
func (r *Recorder) ActiveTexture(unit Enum) {
	r.record(Call{Op: "ActiveTexture", Ints: []int{int(unit)}})
}

func (r *Recorder) BindTexture(target Enum, t Texture) {
	r.record(Call{Op: "BindTexture", Ints: []int{int(target), int(t)}})
}

func (r *Recorder) TexImage2D(target Enum, width, height int, rgba []byte) {
	r.record(Call{Op: "TexImage2D", Ints: []int{int(target), width, height, len(rgba)}})
}

func (r *Recorder) TexParameteri(target, pname Enum, v int32) {
	r.record(Call{Op: "TexParameteri", Ints: []int{int(target), int(pname), int(v)}})
}

func (r *Recorder) Enable(c Enum)  { r.record(Call{Op: "Enable", Ints: []int{int(c)}}) }
func (r *Recorder) Disable(c Enum) { r.record(Call{Op: "Disable", Ints: []int{int(c)}}) }

func (r *Recorder) BlendFunc(src, dst Enum) {
	r.record(Call{Op: "BlendFunc", Ints: []int{int(src), int(dst)}})
}

func (r *Recorder) BlendEquation(mode Enum) {
	r.record(Call{Op: "BlendEquation", Ints: []int{int(mode)}})
}

func (r *Recorder) BlendColor(cr, cg, cb, ca float32) {
	r.record(Call{Op: "BlendColor", Floats: []float32{cr, cg, cb, ca}})
}

func (r *Recorder) DepthMask(on bool) {
	v := 0
	if on {
		v = 1
	}
	r.record(Call{Op: "DepthMask", Ints: []int{v}})
}

func (r *Recorder) DepthFunc(fn Enum) { r.record(Call{Op: "DepthFunc", Ints: []int{int(fn)}}) }

func (r *Recorder) Viewport(x, y, width, height int) {
	r.record(Call{Op: "Viewport", Ints: []int{x, y, width, height}})
}

func (r *Recorder) ClearColor(cr, cg, cb, ca float32) {
	r.record(Call{Op: "ClearColor", Floats: []float32{cr, cg, cb, ca}})
}

func (r *Recorder) Clear(mask Enum) { r.record(Call{Op: "Clear", Ints: []int{int(mask)}}) }

func (r *Recorder) DrawArrays(mode Enum, first, count int) {
	r.record(Call{Op: "DrawArrays", Ints: []int{int(mode), first, count}})
}

func (r *Recorder) ReadPixels(x, y, width, height int, dst []byte) {
	clear(dst)
	r.record(Call{Op: "ReadPixels", Ints: []int{x, y, width, height}})
}

var _ GL = (*Recorder)(nil)
