package micro3d

import (
	"errors"
	"fmt"
	"image"
	"math"

	"midp/hal/gles"
	"midp/internal/logging"
	"midp/lcdui"
	"midp/quarkgl"
)

var (
	ErrBound          = errors.New("micro3d: render target already bound")
	ErrPrimitiveShape = errors.New("micro3d: primitive data does not match command")
)

// State is the phase of the render queue.
type State uint8

const (
	StateQueuing State = iota
	StateFlushing
	StateRecycling
)

func (s State) String() string {
	switch s {
	case StateQueuing:
		return "queuing"
	case StateFlushing:
		return "flushing"
	case StateRecycling:
		return "recycling"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

type projection uint8

const (
	projScreen projection = iota
	projPerspective
	projParallel
)

type environment struct {
	view quarkgl.Mat4

	proj          projection
	near, far     float32
	fovDeg        float32
	parallelW     float32
	parallelH     float32
	centerX       float32
	centerY       float32
	centerSet     bool
	centerPending bool

	attrs         int
	light         Light
	specular      *Texture
	toonThreshold int
	toonHigh      int
	toonLow       int
	textures      []*Texture
	texture       *Texture
}

// Render queues figure and primitive draws against a bound lcdui.Graphics
// and replays them on Flush. A Render is used from one goroutine, normally
// the event dispatcher.
type Render struct {
	gl     gles.GL
	progs  Programs
	filter bool
	err    error

	env   environment
	queue []RenderNode
	state State

	target *lcdui.Graphics
	rect   image.Rectangle
	pixels []byte

	bgTex   gles.Texture
	bgBuf   gles.Buffer
	primVN  gles.Buffer
	primTex gles.Buffer
	scratch primScratch
}

// NewRender returns a renderer drawing through gl. filter selects bilinear
// texture sampling.
func NewRender(gl gles.GL, filter bool) *Render {
	r := &Render{gl: gl, filter: filter}
	r.ResetEnvironment()
	return r
}

// ResetEnvironment restores the default camera, light and attributes.
func (r *Render) ResetEnvironment() {
	r.env = environment{
		view:   quarkgl.Mat4Identity(),
		near:   1,
		far:    32767,
		fovDeg: 60,
		light:  DefaultLight(),
	}
}

func (r *Render) State() State { return r.state }

// Queued is the number of nodes waiting for the next flush.
func (r *Render) Queued() int { return len(r.queue) }

// Err returns the fatal error that disabled the renderer, if any.
func (r *Render) Err() error { return r.err }

func (r *Render) Programs() *Programs { return &r.progs }

// Bind makes g the render target. The clip region of g becomes the 3D
// viewport and its current pixels the background. A failure to build the
// shader programs is permanent and every later Bind returns it.
func (r *Render) Bind(g *lcdui.Graphics) error {
	if r.err != nil {
		return r.err
	}
	if r.target != nil {
		return ErrBound
	}
	if err := r.progs.Create(r.gl, r.filter); err != nil {
		r.err = err
		logging.Logger().Error("micro3d: renderer disabled", "err", err)
		return err
	}
	x, y, w, h := g.Clip()
	x += g.TranslateX()
	y += g.TranslateY()
	r.target = g
	r.rect = image.Rect(x, y, x+w, y+h).Intersect(g.Image().Bounds())
	if r.env.centerPending {
		r.env.centerX -= float32(r.rect.Min.X)
		r.env.centerY -= float32(r.rect.Min.Y)
		r.env.centerPending = false
	}
	if r.rect.Empty() {
		return nil
	}
	r.gl.Viewport(0, 0, r.rect.Dx(), r.rect.Dy())
	r.drawBackground()
	r.gl.Clear(gles.DepthBufferBit)
	return nil
}

// Target is the bound graphics, nil when unbound.
func (r *Render) Target() *lcdui.Graphics { return r.target }

var bgQuad = []float32{
	-1, -1, 0, 1,
	1, -1, 1, 1,
	-1, 1, 0, 0,
	-1, 1, 0, 0,
	1, -1, 1, 1,
	1, 1, 1, 0,
}

func (r *Render) drawBackground() {
	gl := r.gl
	w, h := r.rect.Dx(), r.rect.Dy()
	img := r.target.Image()
	pix, stride := img.Pix(), img.Width()
	r.pixels = grow(r.pixels, w*h*4)
	for y := 0; y < h; y++ {
		row := pix[(r.rect.Min.Y+y)*stride+r.rect.Min.X:]
		for x := 0; x < w; x++ {
			p := row[x]
			o := (y*w + x) * 4
			r.pixels[o], r.pixels[o+1], r.pixels[o+2], r.pixels[o+3] = byte(p>>16), byte(p>>8), byte(p), 0xFF
		}
	}

	if r.bgTex == 0 {
		r.bgTex = gl.CreateTexture()
		r.bgBuf = gl.CreateBuffer()
		gl.BindBuffer(gles.ArrayBuffer, r.bgBuf)
		gl.BufferData(gles.ArrayBuffer, len(bgQuad)*4, gles.StaticDraw)
		gl.BufferSubDataFloats(gles.ArrayBuffer, 0, bgQuad)
	}
	gl.ActiveTexture(gles.Texture1)
	gl.BindTexture(gles.Texture2D, r.bgTex)
	gl.TexImage2D(gles.Texture2D, w, h, r.pixels)
	gl.TexParameteri(gles.Texture2D, gles.TextureMinFilter, int32(gles.Nearest))
	gl.TexParameteri(gles.Texture2D, gles.TextureMagFilter, int32(gles.Nearest))
	gl.ActiveTexture(gles.Texture0)

	s := r.progs.Simple
	s.Use()
	gl.Disable(gles.DepthTest)
	gl.Disable(gles.Blend)
	gl.Disable(gles.CullFace)
	gl.BindVertexArray(0)
	gl.BindBuffer(gles.ArrayBuffer, r.bgBuf)
	gl.EnableVertexAttribArray(s.aPosition)
	gl.VertexAttribPointer(s.aPosition, 2, gles.Float, false, 4*4, 0)
	gl.EnableVertexAttribArray(s.aTexture)
	gl.VertexAttribPointer(s.aTexture, 2, gles.Float, false, 4*4, 2*4)
	gl.DrawArrays(gles.Triangles, 0, 6)
	gl.DisableVertexAttribArray(s.aPosition)
	gl.DisableVertexAttribArray(s.aTexture)
}

// Release flushes the queue and copies the rendered viewport back into the
// bound graphics. Releasing a graphics that is not bound does nothing.
func (r *Render) Release(g *lcdui.Graphics) {
	if r.target == nil || g != r.target {
		return
	}
	r.Flush()
	w, h := r.rect.Dx(), r.rect.Dy()
	if w > 0 && h > 0 {
		r.pixels = grow(r.pixels, w*h*4)
		r.gl.ReadPixels(0, 0, w, h, r.pixels)
		img := r.target.Image()
		pix, stride := img.Pix(), img.Width()
		for y := 0; y < h; y++ {
			row := pix[(r.rect.Min.Y+y)*stride+r.rect.Min.X:]
			for x := 0; x < w; x++ {
				o := (y*w + x) * 4
				row[x] = 0xFF000000 | uint32(r.pixels[o])<<16 | uint32(r.pixels[o+1])<<8 | uint32(r.pixels[o+2])
			}
		}
	}
	r.target = nil
}

// Close releases the renderer's GL objects. Models and textures are released
// by their owners.
func (r *Render) Close() {
	r.queue = r.queue[:0]
	r.progs.Release()
	for _, b := range []gles.Buffer{r.bgBuf, r.primVN, r.primTex} {
		if b != 0 {
			r.gl.DeleteBuffer(b)
		}
	}
	if r.bgTex != 0 {
		r.gl.DeleteTexture(r.bgTex)
	}
	r.bgBuf, r.primVN, r.primTex, r.bgTex = 0, 0, 0, 0
}

// SetViewMatrix sets the model-view transform of later draws.
func (r *Render) SetViewMatrix(m quarkgl.Mat4) { r.env.view = m }

// SetCamera looks from pos along dir.
func (r *Render) SetCamera(pos, dir, up quarkgl.Vec3) {
	r.env.view = quarkgl.Mat4LookAt(pos, pos.Add(dir), up)
}

// SetPerspective selects a perspective projection with a vertical field of
// view in degrees.
func (r *Render) SetPerspective(near, far, fovDeg float32) {
	r.env.proj = projPerspective
	r.env.near, r.env.far, r.env.fovDeg = near, far, fovDeg
}

// SetParallel selects a parallel projection showing width by height world
// units. A zero height follows the viewport aspect ratio.
func (r *Render) SetParallel(width, height float32) {
	r.env.proj = projParallel
	r.env.parallelW, r.env.parallelH = width, height
}

// SetScreenProjection maps one world unit to one pixel.
func (r *Render) SetScreenProjection() { r.env.proj = projScreen }

// SetCenter places the projection center at (x, y) in the coordinates of
// the bound graphics. Before a Bind the point is taken relative to the
// graphics bound next.
func (r *Render) SetCenter(x, y int) {
	r.env.centerSet = true
	if r.target == nil {
		r.env.centerX, r.env.centerY = float32(x), float32(y)
		r.env.centerPending = true
		return
	}
	r.env.centerX = float32(x + r.target.TranslateX() - r.rect.Min.X)
	r.env.centerY = float32(y + r.target.TranslateY() - r.rect.Min.Y)
	r.env.centerPending = false
}

// SetLight copies l into the environment.
func (r *Render) SetLight(l Light) { r.env.light = l }

func (r *Render) SetToon(threshold, high, low int) {
	r.env.toonThreshold, r.env.toonHigh, r.env.toonLow = threshold, high, low
}

// SetSpecular sets the sphere map used when EnvSphereMap is on.
func (r *Render) SetSpecular(t *Texture) { r.env.specular = t }

// SetTextures sets the textures figures index by polygon face.
func (r *Render) SetTextures(ts ...*Texture) {
	r.env.textures = append(r.env.textures[:0], ts...)
}

// SetTexture selects the texture of later primitives.
func (r *Render) SetTexture(t *Texture) { r.env.texture = t }

func (r *Render) SetAttrs(attrs int) { r.env.attrs = attrs }
func (r *Render) Attrs() int         { return r.env.attrs }

func (r *Render) viewportSize() (w, h float32) {
	w, h = float32(r.rect.Dx()), float32(r.rect.Dy())
	if w <= 0 || h <= 0 {
		return 1, 1
	}
	return w, h
}

// projection builds the projection matrix of the environment, including the
// shift that moves the origin to the projection center.
func (r *Render) projection() quarkgl.Mat4 {
	env := &r.env
	w, h := r.viewportSize()
	var p quarkgl.Mat4
	switch env.proj {
	case projPerspective:
		fov := float32(float64(env.fovDeg) * math.Pi / 180)
		p = quarkgl.Mat4Perspective(fov, w/h, env.near, env.far)
	case projParallel:
		pw, ph := env.parallelW, env.parallelH
		if pw <= 0 {
			pw = w
		}
		if ph <= 0 {
			ph = pw * h / w
		}
		p = quarkgl.Mat4Ortho(-pw/2, pw/2, -ph/2, ph/2, -env.far, env.far)
	default:
		p = quarkgl.Mat4Ortho(-w/2, w/2, -h/2, h/2, -env.far, env.far)
	}
	cx, cy := env.centerX, env.centerY
	if !env.centerSet || env.centerPending {
		cx, cy = w/2, h/2
	}
	shift := quarkgl.Mat4Translate(quarkgl.V3((cx-w/2)*2/w, -(cy-h/2)*2/h, 0))
	return quarkgl.Mat4Mul(shift, p)
}

// QueueFigure snapshots the environment and the figure's current vertex
// data and queues it for the next flush.
func (r *Render) QueueFigure(f *Figure) {
	n := f.pop()
	n.setData(r)
	r.queue = append(r.queue, n)
}

func primVertices(cmd int) int {
	switch cmd & primTypeMask {
	case PrimLines:
		return 2
	case PrimTriangles:
		return 3
	case PrimQuads:
		return 4
	}
	return 1
}

// QueuePrimitives queues count primitives described by command. vertices
// holds xyz per vertex. normals, texCoords and colors are read according to
// the PData bits of command. For point sprites texCoords holds width,
// height, u0, v0, u1, v1 either once or per sprite.
func (r *Render) QueuePrimitives(command, count int, vertices, normals []float32, texCoords, colors []byte) error {
	typ := command & primTypeMask
	if typ < PrimPoints || typ > PrimPointSprites {
		return fmt.Errorf("%w: unknown type %#x", ErrPrimitiveShape, typ)
	}
	if count <= 0 {
		return nil
	}
	vpp := primVertices(command)
	nv := count * vpp
	if len(vertices) < nv*3 {
		return fmt.Errorf("%w: %d vertex floats, need %d", ErrPrimitiveShape, len(vertices), nv*3)
	}
	switch command & pdataNormalMask {
	case PDataNormalPerFace:
		if len(normals) < count*3 {
			return fmt.Errorf("%w: %d normal floats, need %d", ErrPrimitiveShape, len(normals), count*3)
		}
	case PDataNormalPerVertex:
		if len(normals) < nv*3 {
			return fmt.Errorf("%w: %d normal floats, need %d", ErrPrimitiveShape, len(normals), nv*3)
		}
	}
	switch command & pdataColorMask {
	case PDataColorPerCommand:
		if len(colors) < 3 {
			return fmt.Errorf("%w: missing command color", ErrPrimitiveShape)
		}
	case PDataColorPerFace:
		if len(colors) < count*3 {
			return fmt.Errorf("%w: %d color bytes, need %d", ErrPrimitiveShape, len(colors), count*3)
		}
	}
	if typ == PrimPointSprites {
		if len(texCoords) < 6 {
			return fmt.Errorf("%w: missing sprite parameters", ErrPrimitiveShape)
		}
	} else if command&PDataTexCoord != 0 && len(texCoords) < nv*2 {
		return fmt.Errorf("%w: %d texture bytes, need %d", ErrPrimitiveShape, len(texCoords), nv*2)
	}

	n := &PrimitiveNode{
		command:   command,
		count:     count,
		vertices:  append([]float32(nil), vertices[:nv*3]...),
		normals:   append([]float32(nil), normals...),
		texCoords: append([]byte(nil), texCoords...),
		colors:    append([]byte(nil), colors...),
		texture:   r.env.texture,
	}
	n.capture(r)
	r.queue = append(r.queue, n)
	return nil
}

// Flush draws the queue in two passes, opaque content first and blended
// content second with depth writes off, then recycles the nodes. A model
// is marked clean only when its buffer ends the flush holding its latest
// data.
func (r *Render) Flush() {
	if len(r.queue) == 0 {
		return
	}
	gl := r.gl
	drawn := r.err == nil && r.progs.Created() && (r.target == nil || !r.rect.Empty())
	if drawn {
		r.state = StateFlushing
		gl.Enable(gles.DepthTest)
		gl.DepthFunc(gles.Less)
		gl.DepthMask(true)
		gl.Disable(gles.Blend)
		for _, n := range r.queue {
			n.render(r, passOpaque)
		}
		gl.DepthMask(false)
		gl.Enable(gles.Blend)
		for _, n := range r.queue {
			n.render(r, passTransparent)
		}
		gl.Disable(gles.Blend)
		gl.BlendEquation(gles.FuncAdd)
		gl.DepthMask(true)
		gl.Disable(gles.CullFace)
		gl.BindVertexArray(0)
		logging.Logger().Debug("micro3d: flushed", "nodes", len(r.queue))
	}

	r.state = StateRecycling
	last := make(map[*Model]int)
	for i, n := range r.queue {
		if fn, ok := n.(*FigureNode); ok {
			last[fn.figure.model] = i
		}
	}
	for i, n := range r.queue {
		if fn, ok := n.(*FigureNode); ok {
			m := fn.figure.model
			if last[m] == i && drawn {
				fn.flushDone()
			}
		}
		n.recycle()
		r.queue[i] = nil
	}
	r.queue = r.queue[:0]
	r.state = StateQueuing
}

func (r *Render) setBlend(blend int) {
	gl := r.gl
	switch blend {
	case 1:
		gl.BlendEquation(gles.FuncAdd)
		gl.BlendColor(0, 0, 0, 0.5)
		gl.BlendFunc(gles.ConstantAlpha, gles.OneMinusConstantAlpha)
	case 2:
		gl.BlendEquation(gles.FuncAdd)
		gl.BlendFunc(gles.One, gles.One)
	case 3:
		gl.BlendEquation(gles.FuncReverseSubtract)
		gl.BlendFunc(gles.One, gles.One)
	default:
		gl.BlendEquation(gles.FuncAdd)
		gl.BlendFunc(gles.One, gles.Zero)
	}
}

func (r *Render) setCull(doubleFace bool) {
	if doubleFace {
		r.gl.Disable(gles.CullFace)
	} else {
		r.gl.Enable(gles.CullFace)
	}
}

func (r *Render) bindShaded(p *shaded, s *nodeState) {
	p.Use()
	p.SetLight(s.lightFor())
	p.SetSphere(s.sphere())
	p.SetToonShading(s.attrs, s.toonThreshold, s.toonHigh, s.toonLow)
	p.BindMatrices(s.proj, s.view)
}

// upload sends the node's vertex data unless the model buffer already
// holds data of the same generation and pattern.
func (r *Render) upload(n *FigureNode) {
	m := n.figure.model
	if m.uploaded && m.uploadedGen == n.gen && m.uploadedPattern == n.pattern {
		return
	}
	m.UploadToGL(r.gl, &r.progs, n.vn)
	m.uploaded = true
	m.uploadedGen = n.gen
	m.uploadedPattern = n.pattern
}

func (r *Render) renderFigure(n *FigureNode, p pass) {
	m := n.figure.model
	if m.vertexArrayCapacity == 0 {
		return
	}
	gl := r.gl

	if m.hasPolyT {
		t := r.progs.Tex
		bound := false
		first := 0
		for blend := range m.subMeshesT {
			draw := m.hasBlendT[blend] && n.drawsIn(blend, p)
			for face, sides := range m.subMeshesT[blend] {
				for df, count := range sides {
					if draw && count > 0 {
						if !bound {
							r.upload(n)
							r.bindShaded(&t.shaded, &n.nodeState)
							gl.BindVertexArray(m.texVAO)
							bound = true
						}
						if p == passTransparent {
							r.setBlend(blend)
						}
						t.SetTex(n.texture(face))
						r.setCull(df == 1)
						gl.DrawArrays(gles.Triangles, first, count)
					}
					first += count
				}
			}
		}
	}

	if m.hasPolyC {
		c := r.progs.Color
		bound := false
		first := 0
		for blend, sides := range m.subMeshesC {
			draw := m.hasBlendC[blend] && n.drawsIn(blend, p)
			for df, count := range sides {
				if draw && count > 0 {
					if !bound {
						r.upload(n)
						r.bindShaded(&c.shaded, &n.nodeState)
						gl.BindVertexArray(m.colorVAO)
						bound = true
					}
					if p == passTransparent {
						r.setBlend(blend)
					}
					r.setCull(df == 1)
					gl.DrawArrays(gles.Triangles, first, count)
				}
				first += count
			}
		}
	}
	gl.BindVertexArray(0)
}

// primScratch holds the expanded vertex data of one primitive draw.
type primScratch struct {
	vn     []float32
	static []byte
}

func grow[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	return s[:n]
}

func (r *Render) primBuffers() {
	if r.primVN == 0 {
		r.primVN = r.gl.CreateBuffer()
		r.primTex = r.gl.CreateBuffer()
	}
}

func (r *Render) renderPrimitive(n *PrimitiveNode, p pass) {
	if !n.drawsIn(primBlend(n.command), p) {
		return
	}
	gl := r.gl
	gl.Disable(gles.CullFace)
	if p == passTransparent {
		r.setBlend(primBlend(n.command))
	}
	if n.command&primTypeMask == PrimPointSprites {
		r.renderSprites(n)
		return
	}

	typ := n.command & primTypeMask
	vpp := primVertices(n.command)
	order := []int{0, 1, 2, 3}[:vpp]
	if typ == PrimQuads {
		order = quadOrder[:]
	}
	textured := n.command&PDataTexCoord != 0 && n.texture != nil
	total := n.count * len(order)
	sc := &r.scratch
	sc.vn = grow(sc.vn, total*6)
	sc.static = grow(sc.static, total*texStride)

	var light, spec, key byte
	if n.command&PAttrLighting != 0 {
		light = 1
	}
	if n.command&PAttrSphereMap != 0 {
		spec = 1
	}
	if n.command&PAttrColorKey != 0 {
		key = 1
	}

	slot := 0
	for i := 0; i < n.count; i++ {
		for _, k := range order {
			vi := i*vpp + k
			dst := sc.vn[slot*6:]
			copy(dst[:3], n.vertices[vi*3:vi*3+3])
			switch n.command & pdataNormalMask {
			case PDataNormalPerVertex:
				copy(dst[3:6], n.normals[vi*3:vi*3+3])
			case PDataNormalPerFace:
				copy(dst[3:6], n.normals[i*3:i*3+3])
			default:
				dst[3], dst[4], dst[5] = 0, 0, 1
			}
			st := sc.static[slot*texStride : (slot+1)*texStride]
			if textured {
				st[0], st[1], st[2], st[3], st[4] = n.texCoords[vi*2], n.texCoords[vi*2+1], light, spec, key
			} else {
				rgb := [3]byte{0xFF, 0xFF, 0xFF}
				switch n.command & pdataColorMask {
				case PDataColorPerCommand:
					copy(rgb[:], n.colors[:3])
				case PDataColorPerFace:
					copy(rgb[:], n.colors[i*3:i*3+3])
				}
				st[0], st[1], st[2], st[3], st[4] = rgb[0], rgb[1], rgb[2], light, spec
			}
			slot++
		}
	}

	r.primBuffers()
	gl.BindVertexArray(0)
	gl.BindBuffer(gles.ArrayBuffer, r.primTex)
	gl.BufferData(gles.ArrayBuffer, len(sc.static), gles.DynamicDraw)
	gl.BufferSubDataBytes(gles.ArrayBuffer, 0, sc.static)
	gl.BindBuffer(gles.ArrayBuffer, r.primVN)
	gl.BufferData(gles.ArrayBuffer, len(sc.vn)*4, gles.DynamicDraw)
	gl.BufferSubDataFloats(gles.ArrayBuffer, 0, sc.vn)

	var prog *program
	if textured {
		t := r.progs.Tex
		r.bindShaded(&t.shaded, &n.nodeState)
		t.SetTex(n.texture)
		prog = &t.program
	} else {
		c := r.progs.Color
		r.bindShaded(&c.shaded, &n.nodeState)
		prog = &c.program
	}
	gl.EnableVertexAttribArray(prog.aPosition)
	gl.VertexAttribPointer(prog.aPosition, 3, gles.Float, false, 6*4, 0)
	gl.EnableVertexAttribArray(prog.aNormal)
	gl.VertexAttribPointer(prog.aNormal, 3, gles.Float, false, 6*4, 3*4)
	gl.BindBuffer(gles.ArrayBuffer, r.primTex)
	gl.EnableVertexAttribArray(prog.aColorData)
	gl.EnableVertexAttribArray(prog.aMaterial)
	if textured {
		gl.VertexAttribPointer(prog.aColorData, 2, gles.UnsignedByte, false, texStride, 0)
		gl.VertexAttribPointer(prog.aMaterial, 3, gles.UnsignedByte, false, texStride, 2)
	} else {
		gl.VertexAttribPointer(prog.aColorData, 3, gles.UnsignedByte, true, texStride, 0)
		gl.VertexAttribPointer(prog.aMaterial, 2, gles.UnsignedByte, false, texStride, 3)
	}

	mode := gles.Triangles
	switch typ {
	case PrimPoints:
		mode = gles.Points
	case PrimLines:
		mode = gles.Lines
	}
	gl.DrawArrays(mode, 0, total)
	for _, loc := range []gles.Location{prog.aPosition, prog.aNormal, prog.aColorData, prog.aMaterial} {
		gl.DisableVertexAttribArray(loc)
	}
}

// renderSprites draws screen aligned quads. Corners are computed here in
// clip space so the sprite keeps its pixel size at any depth.
func (r *Render) renderSprites(n *PrimitiveNode) {
	if n.texture == nil {
		return
	}
	gl := r.gl
	w, h := r.viewportSize()
	mvp := quarkgl.Mat4Mul(n.proj, n.view)
	perSprite := len(n.texCoords) >= n.count*6

	sc := &r.scratch
	sc.vn = grow(sc.vn, n.count*6*6)
	for i := 0; i < n.count; i++ {
		param := n.texCoords[:6]
		if perSprite {
			param = n.texCoords[i*6 : i*6+6]
		}
		c := quarkgl.Mat4MulV4(mvp, quarkgl.Vec4{X: n.vertices[i*3], Y: n.vertices[i*3+1], Z: n.vertices[i*3+2], W: 1})
		hw := float32(param[0]) / w * c.W
		hh := float32(param[1]) / h * c.W
		u0, v0, u1, v1 := float32(param[2]), float32(param[3]), float32(param[4]), float32(param[5])
		corners := [6][4]float32{
			{-hw, hh, u0, v0},
			{-hw, -hh, u0, v1},
			{hw, hh, u1, v0},
			{hw, hh, u1, v0},
			{-hw, -hh, u0, v1},
			{hw, -hh, u1, v1},
		}
		for k, cr := range corners {
			o := (i*6 + k) * 6
			sc.vn[o], sc.vn[o+1], sc.vn[o+2], sc.vn[o+3] = c.X+cr[0], c.Y+cr[1], c.Z, c.W
			sc.vn[o+4], sc.vn[o+5] = cr[2], cr[3]
		}
	}

	r.primBuffers()
	s := r.progs.Sprite
	s.Use()
	s.SetTexture(n.texture)
	key := int32(0)
	if n.command&PAttrColorKey != 0 {
		key = 1
	}
	gl.Uniform1i(s.uIsTransparency, key)

	gl.BindVertexArray(0)
	gl.BindBuffer(gles.ArrayBuffer, r.primVN)
	gl.BufferData(gles.ArrayBuffer, len(sc.vn)*4, gles.DynamicDraw)
	gl.BufferSubDataFloats(gles.ArrayBuffer, 0, sc.vn)
	gl.EnableVertexAttribArray(s.aPosition)
	gl.VertexAttribPointer(s.aPosition, 4, gles.Float, false, 6*4, 0)
	gl.EnableVertexAttribArray(s.aColorData)
	gl.VertexAttribPointer(s.aColorData, 2, gles.Float, false, 6*4, 4*4)
	gl.DrawArrays(gles.Triangles, 0, n.count*6)
	gl.DisableVertexAttribArray(s.aPosition)
	gl.DisableVertexAttribArray(s.aColorData)
}
