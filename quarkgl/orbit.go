package quarkgl

// Orbit keeps a camera on a sphere around a target point.
type Orbit struct {
	Target Vec3
	Yaw    float32
	Pitch  float32
	Radius float32

	MinRadius float32
	MaxRadius float32
}

// Eye returns the camera position for the current yaw, pitch and radius.
func (o *Orbit) Eye() Vec3 {
	r := o.Radius
	if r == 0 {
		r = 3
	}
	if o.MinRadius != 0 && r < o.MinRadius {
		r = o.MinRadius
	}
	if o.MaxRadius != 0 && r > o.MaxRadius {
		r = o.MaxRadius
	}
	m := Mat4Mul(Mat4RotateY(o.Yaw), Mat4RotateX(o.Pitch))
	p := Mat4MulV4(m, Vec4{X: 0, Y: 0, Z: r, W: 1})
	return o.Target.Add(V3(p.X, p.Y, p.Z))
}

// View returns the look-at matrix from Eye to Target.
func (o *Orbit) View() Mat4 {
	return Mat4LookAt(o.Eye(), o.Target, V3(0, 1, 0))
}

func (o *Orbit) Rotate(deltaYaw, deltaPitch float32) {
	o.Yaw += deltaYaw
	o.Pitch += deltaPitch
	const limit = 1.5
	if o.Pitch > limit {
		o.Pitch = limit
	}
	if o.Pitch < -limit {
		o.Pitch = -limit
	}
}

func (o *Orbit) Zoom(delta float32) {
	o.Radius += delta
	if o.MinRadius != 0 && o.Radius < o.MinRadius {
		o.Radius = o.MinRadius
	}
	if o.MaxRadius != 0 && o.Radius > o.MaxRadius {
		o.Radius = o.MaxRadius
	}
}
