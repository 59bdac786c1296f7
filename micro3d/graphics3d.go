package micro3d

import "midp/quarkgl"

// Graphics3D is the single entry point the vendor 3D APIs draw through.
type Graphics3D interface {
	DrawFigure(fig *Figure, x, y int, layout Layout, effect Effect)
}

// Projection kinds of a Layout.
const (
	ProjectScreen = iota
	ProjectParallel
	ProjectPerspective
)

// Layout places a figure: the view transform, the projection and the
// projection center given by DrawFigure.
type Layout struct {
	View       quarkgl.Mat4
	Projection int

	// Perspective.
	Near, Far float32
	FOV       float32 // degrees

	// Parallel, in world units.
	Width, Height float32
}

// Effect selects the lighting and blending of a figure.
type Effect struct {
	Light           *Light
	Specular        *Texture
	Toon            bool
	ToonThreshold   int
	ToonHigh        int
	ToonLow         int
	SemiTransparent bool
}

func (e Effect) attrs() int {
	var a int
	if e.Light != nil {
		a |= EnvLighting
	}
	if e.Specular != nil {
		a |= EnvSphereMap
	}
	if e.Toon {
		a |= EnvToonShading
	}
	if e.SemiTransparent {
		a |= EnvSemiTransparent
	}
	return a
}

// DrawFigure applies layout and effect to the environment and queues fig
// centered at (x, y).
func (r *Render) DrawFigure(fig *Figure, x, y int, layout Layout, effect Effect) {
	view := layout.View
	if view == (quarkgl.Mat4{}) {
		view = quarkgl.Mat4Identity()
	}
	r.SetViewMatrix(view)
	switch layout.Projection {
	case ProjectPerspective:
		r.SetPerspective(layout.Near, layout.Far, layout.FOV)
	case ProjectParallel:
		r.SetParallel(layout.Width, layout.Height)
	default:
		r.SetScreenProjection()
	}
	r.SetCenter(x, y)
	r.SetAttrs(effect.attrs())
	if effect.Light != nil {
		r.SetLight(*effect.Light)
	}
	r.SetSpecular(effect.Specular)
	r.SetToon(effect.ToonThreshold, effect.ToonHigh, effect.ToonLow)
	r.QueueFigure(fig)
}

var _ Graphics3D = (*Render)(nil)
