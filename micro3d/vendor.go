package micro3d

import "midp/quarkgl"

// One is 1.0 in the 4096-based fixed point of the vendor APIs.
const One = 4096

// AffineTrans is a 3x4 fixed point transform: the rotation part is scaled by
// One, the translation column is in world units.
type AffineTrans [12]int

// Mat4 converts a to a float matrix.
func (a AffineTrans) Mat4() quarkgl.Mat4 {
	m := quarkgl.Mat4Identity()
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			m[col*4+row] = float32(a[row*4+col]) / One
		}
		m[12+row] = float32(a[row*4+3])
	}
	return m
}

// IdentityTrans is the AffineTrans that changes nothing.
func IdentityTrans() AffineTrans {
	return AffineTrans{One, 0, 0, 0, 0, One, 0, 0, 0, 0, One, 0}
}

// angleDegrees converts a fixed point angle, One per full turn.
func angleDegrees(a int) float32 { return float32(a) * 360 / One }

// VodafoneLayout mirrors the FigureLayout of the Vodafone MascotCapsule API.
// A zero PerspectiveAngle selects a parallel projection scaled by ScaleX and
// ScaleY, One meaning one world unit per pixel.
type VodafoneLayout struct {
	Affine           AffineTrans
	ScaleX, ScaleY   int
	CenterX, CenterY int

	PerspectiveNear  int
	PerspectiveFar   int
	PerspectiveAngle int
}

// VodafoneEffect mirrors Effect3D.
type VodafoneEffect struct {
	Light        *Light
	Toon         bool
	ToonThresh   int
	ToonHigh     int
	ToonLow      int
	SphereMap    *Texture
	Transparency bool
}

// DrawFigureVodafone draws fig at (x, y) offset by the layout center.
func DrawFigureVodafone(g Graphics3D, fig *Figure, x, y int, l VodafoneLayout, e VodafoneEffect, viewW, viewH int) {
	layout := Layout{View: l.Affine.Mat4()}
	if l.PerspectiveAngle != 0 {
		layout.Projection = ProjectPerspective
		layout.Near, layout.Far = float32(l.PerspectiveNear), float32(l.PerspectiveFar)
		layout.FOV = angleDegrees(l.PerspectiveAngle)
	} else {
		layout.Projection = ProjectParallel
		sx, sy := l.ScaleX, l.ScaleY
		if sx == 0 {
			sx = One
		}
		if sy == 0 {
			sy = sx
		}
		layout.Width = float32(viewW) * One / float32(sx)
		layout.Height = float32(viewH) * One / float32(sy)
	}
	g.DrawFigure(fig, x+l.CenterX, y+l.CenterY, layout, Effect{
		Light:           e.Light,
		Specular:        e.SphereMap,
		Toon:            e.Toon,
		ToonThreshold:   e.ToonThresh,
		ToonHigh:        e.ToonHigh,
		ToonLow:         e.ToonLow,
		SemiTransparent: e.Transparency,
	})
}

// DrawFigureMotorola draws with a float view matrix and a perspective given
// in degrees. A zero fov draws in screen projection.
func DrawFigureMotorola(g Graphics3D, fig *Figure, x, y int, view quarkgl.Mat4, near, far, fovDeg float32, light *Light, semi bool) {
	layout := Layout{View: view}
	if fovDeg > 0 {
		layout.Projection = ProjectPerspective
		layout.Near, layout.Far, layout.FOV = near, far, fovDeg
	}
	g.DrawFigure(fig, x, y, layout, Effect{Light: light, SemiTransparent: semi})
}

// JBlendAttrs are the packed attribute flags of the JBlend 3D API: the
// Env* bits in the low nibble.
type JBlendAttrs int

// DrawFigureJBlend draws with an int array transform and packed attributes.
// texture is used as the sphere map when attrs has EnvSphereMap.
func DrawFigureJBlend(g Graphics3D, fig *Figure, x, y int, trans AffineTrans, scale int, attrs JBlendAttrs, light Light, sphere *Texture, toon [3]int) {
	if scale == 0 {
		scale = One
	}
	view := quarkgl.Mat4Mul(trans.Mat4(), quarkgl.Mat4Scale(quarkgl.V3(float32(scale)/One, float32(scale)/One, float32(scale)/One)))
	e := Effect{
		Toon:            attrs&EnvToonShading != 0,
		ToonThreshold:   toon[0],
		ToonHigh:        toon[1],
		ToonLow:         toon[2],
		SemiTransparent: attrs&EnvSemiTransparent != 0,
	}
	if attrs&EnvLighting != 0 {
		e.Light = &light
	}
	if attrs&EnvSphereMap != 0 {
		e.Specular = sphere
	}
	g.DrawFigure(fig, x, y, Layout{View: view}, e)
}
