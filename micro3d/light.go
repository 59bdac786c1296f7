package micro3d

// Light is an ambient plus directional light in fixed point: ambient in
// [0, 4096], directional in [0, 16384]. The direction points from the light.
type Light struct {
	Ambient     int
	Directional int
	X, Y, Z     int
}

// DefaultLight is a soft white light straight down the view axis.
func DefaultLight() Light {
	return Light{Ambient: 2048, Directional: 8192, Z: -4096}
}

func (l *Light) Set(ambient, directional, x, y, z int) {
	l.Ambient, l.Directional = ambient, directional
	l.X, l.Y, l.Z = x, y, z
}
