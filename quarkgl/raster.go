package quarkgl

import (
	"math"

	"midp/hal/gles"
)

type screenVertex struct {
	x, y, z float32
	v       [numVaryings]float32
}

func (d *Device) DrawArrays(mode gles.Enum, first, count int) {
	p := d.current
	if p == nil || count <= 0 || first < 0 {
		return
	}
	verts := make([]vertexOut, count)
	for i := range verts {
		verts[i] = d.shadeVertex(p, first+i)
	}
	switch mode {
	case gles.Triangles:
		for i := 0; i+2 < count; i += 3 {
			d.triangle(p, verts[i], verts[i+1], verts[i+2])
		}
	case gles.Lines:
		for i := 0; i+1 < count; i += 2 {
			d.line(p, verts[i], verts[i+1])
		}
	case gles.Points:
		for _, v := range verts {
			if s, ok := d.toScreen(v); ok {
				d.fragment(p, int(s.x), int(s.y), s.z, &s.v)
			}
		}
	}
}

// toScreen performs the perspective divide and viewport transform. Vertices
// behind the eye (w <= 0) are rejected.
func (d *Device) toScreen(v vertexOut) (screenVertex, bool) {
	if v.clip.W <= 0 {
		return screenVertex{}, false
	}
	inv := 1 / v.clip.W
	nx, ny, nz := v.clip.X*inv, v.clip.Y*inv, v.clip.Z*inv
	vp := d.viewport
	return screenVertex{
		x: float32(vp[0]) + (nx*0.5+0.5)*float32(vp[2]),
		y: float32(vp[1]) + (0.5-ny*0.5)*float32(vp[3]),
		z: nz*0.5 + 0.5,
		v: v.v,
	}, true
}

func (d *Device) triangle(p *program, a, b, c vertexOut) {
	s0, ok0 := d.toScreen(a)
	s1, ok1 := d.toScreen(b)
	s2, ok2 := d.toScreen(c)
	if !ok0 || !ok1 || !ok2 {
		return
	}
	// Screen y points down, so counter-clockwise front faces have
	// positive area here.
	area := edgeFn(s0.x, s0.y, s1.x, s1.y, s2.x, s2.y)
	if area == 0 {
		return
	}
	if d.caps[gles.CullFace] && area < 0 {
		return
	}
	d.Triangles++

	minX := int(math.Floor(float64(min(s0.x, s1.x, s2.x))))
	maxX := int(math.Ceil(float64(max(s0.x, s1.x, s2.x))))
	minY := int(math.Floor(float64(min(s0.y, s1.y, s2.y))))
	maxY := int(math.Ceil(float64(max(s0.y, s1.y, s2.y))))
	vp := d.viewport
	minX = max(minX, vp[0], 0)
	minY = max(minY, vp[1], 0)
	maxX = min(maxX, vp[0]+vp[2]-1, d.w-1)
	maxY = min(maxY, vp[1]+vp[3]-1, d.h-1)

	inv := 1 / area
	var vary [numVaryings]float32
	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			w0 := edgeFn(s1.x, s1.y, s2.x, s2.y, px, py) * inv
			w1 := edgeFn(s2.x, s2.y, s0.x, s0.y, px, py) * inv
			w2 := edgeFn(s0.x, s0.y, s1.x, s1.y, px, py) * inv
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*s0.z + w1*s1.z + w2*s2.z
			for k := range vary {
				vary[k] = w0*s0.v[k] + w1*s1.v[k] + w2*s2.v[k]
			}
			d.fragment(p, x, y, z, &vary)
		}
	}
}

func (d *Device) line(p *program, a, b vertexOut) {
	s0, ok0 := d.toScreen(a)
	s1, ok1 := d.toScreen(b)
	if !ok0 || !ok1 {
		return
	}
	x0, y0 := int(s0.x), int(s0.y)
	x1, y1 := int(s1.x), int(s1.y)
	steps := max(absInt(x1-x0), absInt(y1-y0))
	var vary [numVaryings]float32
	for i := 0; i <= steps; i++ {
		t := float32(0)
		if steps > 0 {
			t = float32(i) / float32(steps)
		}
		x := x0 + int(math.Round(float64(float32(x1-x0)*t)))
		y := y0 + int(math.Round(float64(float32(y1-y0)*t)))
		for k := range vary {
			vary[k] = s0.v[k] + (s1.v[k]-s0.v[k])*t
		}
		d.fragment(p, x, y, s0.z+(s1.z-s0.z)*t, &vary)
	}
}

func (d *Device) fragment(p *program, x, y int, z float32, v *[numVaryings]float32) {
	vp := d.viewport
	if x < 0 || y < 0 || x >= d.w || y >= d.h ||
		x < vp[0] || y < vp[1] || x >= vp[0]+vp[2] || y >= vp[1]+vp[3] {
		return
	}
	idx := y*d.w + x
	if d.caps[gles.DepthTest] {
		if z < 0 || z > 1 {
			return
		}
		cur := d.depth[idx]
		if d.depthFunc == gles.Lequal && z > cur || d.depthFunc != gles.Lequal && z >= cur {
			return
		}
	}
	c, ok := d.shadeFragment(p, v)
	if !ok {
		return
	}
	if d.caps[gles.DepthTest] && d.depthMask {
		d.depth[idx] = z
	}
	px := d.color[idx*4 : idx*4+4]
	if d.caps[gles.Blend] {
		c = d.blend(c, px)
	}
	for k := range 4 {
		px[k] = byte(Clamp01(c[k])*255 + 0.5)
	}
}

func (d *Device) blend(src [4]float32, px []byte) [4]float32 {
	dst := [4]float32{
		float32(px[0]) / 255, float32(px[1]) / 255,
		float32(px[2]) / 255, float32(px[3]) / 255,
	}
	sf := d.factor(d.blendSrc, src)
	df := d.factor(d.blendDst, src)
	var out [4]float32
	for k := range out {
		if d.blendEq == gles.FuncReverseSubtract {
			out[k] = dst[k]*df - src[k]*sf
		} else {
			out[k] = src[k]*sf + dst[k]*df
		}
	}
	return out
}

func (d *Device) factor(f gles.Enum, src [4]float32) float32 {
	switch f {
	case gles.Zero:
		return 0
	case gles.SrcAlpha:
		return src[3]
	case gles.OneMinusSrcAlpha:
		return 1 - src[3]
	case gles.ConstantAlpha:
		return d.blendColor[3]
	case gles.OneMinusConstantAlpha:
		return 1 - d.blendColor[3]
	default:
		return 1
	}
}

func edgeFn(x0, y0, x1, y1, x, y float32) float32 {
	return (x-x0)*(y1-y0) - (y-y0)*(x1-x0)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
