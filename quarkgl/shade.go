package quarkgl

import "math"

// numVaryings is the width of the per-vertex payload handed to the
// rasterizer. Layout depends on the program kind:
//
//	tex:    u, v, light, sphereU, sphereV, transparent
//	color:  r, g, b, light, sphereU, sphereV
//	simple: u, v
//	sprite: u, v
const numVaryings = 6

type vertexOut struct {
	clip Vec4
	v    [numVaryings]float32
}

func (d *Device) shadeVertex(p *program, i int) vertexOut {
	pos := d.fetch(attrPosition, i)
	var out vertexOut
	switch p.kind {
	case kindSimple:
		uv := d.fetch(attrNormal, i)
		out.clip = Vec4{X: pos[0], Y: pos[1], Z: 0, W: 1}
		out.v[0], out.v[1] = uv[0], uv[1]
	case kindSprite:
		uv := d.fetch(attrColor, i)
		out.clip = Vec4{X: pos[0], Y: pos[1], Z: pos[2], W: pos[3]}
		sw, sh := p.uniforms[uTexSize][0], p.uniforms[uTexSize][1]
		if sw > 0 && sh > 0 {
			out.v[0], out.v[1] = uv[0]/sw, uv[1]/sh
		}
	default:
		mv := p.matrices[1]
		eye := Mat4MulV4(mv, Vec4{X: pos[0], Y: pos[1], Z: pos[2], W: 1})
		out.clip = Mat4MulV4(p.matrices[0], eye)

		nrm := d.fetch(attrNormal, i)
		n := Normalize(mv.MulDir(V3(nrm[0], nrm[1], nrm[2])))
		mat := d.fetch(attrMaterial, i)
		data := d.fetch(attrColor, i)

		light := float32(1)
		if mat[0] > 0.5 {
			light = p.light(n)
		}
		out.v[4], out.v[5] = -1, -1
		if mat[1] > 0.5 && p.uniforms[uSphereSize][0] > 0 {
			out.v[4] = n.X*0.5 + 0.5
			out.v[5] = -n.Y*0.5 + 0.5
		}
		out.v[3] = light
		if p.kind == kindTex {
			sw, sh := p.uniforms[uTexSize][0], p.uniforms[uTexSize][1]
			if sw > 0 && sh > 0 {
				out.v[0], out.v[1] = data[0]/sw, data[1]/sh
			}
			out.v[2] = mat[2]
		} else {
			out.v[0], out.v[1], out.v[2] = data[0], data[1], data[2]
		}
	}
	return out
}

// light evaluates the ambient plus directional term for eye-space normal n.
// A negative ambient intensity disables lighting; a negative toon threshold
// disables banding.
func (p *program) light(n Vec3) float32 {
	amb := p.f(uAmbIntensity)
	if amb < 0 {
		return 1
	}
	ld := p.uniforms[uLightDir]
	diff := Dot(n, V3(ld[0], ld[1], ld[2]))
	if diff < 0 {
		diff = 0
	}
	lum := amb + p.f(uDirIntensity)*diff
	if th := p.f(uToonThreshold); th >= 0 {
		if lum >= th {
			return p.f(uToonHigh)
		}
		return p.f(uToonLow)
	}
	return lum
}

// shadeFragment returns the fragment colour, or ok=false to discard.
func (d *Device) shadeFragment(p *program, v *[numVaryings]float32) (c [4]float32, ok bool) {
	switch p.kind {
	case kindSimple:
		return d.sample(p.unit(uSampler0), v[0], v[1], p.filter), true
	case kindSprite:
		c = d.sample(p.unit(uTextureUnit), v[0], v[1], p.filter)
		if p.f(uIsTransparency) > 0.5 && c[3] == 0 {
			return c, false
		}
		c[3] = 1
		return c, true
	case kindTex:
		c = d.sample(p.unit(uTextureUnit), v[0], v[1], p.filter)
		if v[2] > 0.5 && c[3] == 0 {
			return c, false
		}
	default:
		c = [4]float32{v[0], v[1], v[2], 1}
	}
	light := v[3]
	c[0] *= light
	c[1] *= light
	c[2] *= light
	if v[4] >= 0 {
		s := d.sample(p.unit(uSphereUnit), v[4], v[5], false)
		c[0] += s[0]
		c[1] += s[1]
		c[2] += s[2]
	}
	c[3] = 1
	return c, true
}

// sample reads texture unit u at normalized (s, t) with repeat wrapping.
func (d *Device) sample(u int, s, t float32, filter bool) [4]float32 {
	if u < 0 || u >= len(d.units) {
		return [4]float32{}
	}
	tex := d.textures[d.units[u]]
	if tex == nil || tex.w == 0 || tex.h == 0 {
		return [4]float32{}
	}
	x := s*float32(tex.w) - 0.5
	y := t*float32(tex.h) - 0.5
	if !filter && !tex.linear {
		return tex.texel(int(math.Floor(float64(x+0.5))), int(math.Floor(float64(y+0.5))))
	}
	x0 := int(math.Floor(float64(x)))
	y0 := int(math.Floor(float64(y)))
	fx := x - float32(x0)
	fy := y - float32(y0)
	a := tex.texel(x0, y0)
	b := tex.texel(x0+1, y0)
	c := tex.texel(x0, y0+1)
	e := tex.texel(x0+1, y0+1)
	var out [4]float32
	for k := range out {
		top := a[k] + (b[k]-a[k])*fx
		bot := c[k] + (e[k]-c[k])*fx
		out[k] = top + (bot-top)*fy
	}
	return out
}

func (t *texture) texel(x, y int) [4]float32 {
	x %= t.w
	if x < 0 {
		x += t.w
	}
	y %= t.h
	if y < 0 {
		y += t.h
	}
	o := (y*t.w + x) * 4
	px := t.rgba[o : o+4]
	return [4]float32{
		float32(px[0]) / 255,
		float32(px[1]) / 255,
		float32(px[2]) / 255,
		float32(px[3]) / 255,
	}
}
