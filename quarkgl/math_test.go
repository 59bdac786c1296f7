package quarkgl

import (
	"math"
	"testing"
)

func near(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-4 }

func TestMat4MulIdentity(t *testing.T) {
	a := Mat4Identity()
	b := Mat4Translate(V3(1, 2, 3))
	if got := Mat4Mul(a, b); got != b {
		t.Fatalf("identity*b = %v, want %v", got, b)
	}
	if got := Mat4Mul(b, a); got != b {
		t.Fatalf("b*identity = %v, want %v", got, b)
	}
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	eye := V3(0, 0, 3)
	m := Mat4LookAt(eye, V3(0, 0, 0), V3(0, 1, 0))
	got := m.MulPoint(eye)
	if !near(got.X, 0) || !near(got.Y, 0) || !near(got.Z, 0) {
		t.Fatalf("view(eye) = %v, want origin", got)
	}
	target := m.MulPoint(V3(0, 0, 0))
	if !near(target.Z, -3) {
		t.Fatalf("view(target).Z = %v, want -3", target.Z)
	}
}

func TestPerspectiveMapsNearAndFar(t *testing.T) {
	p := Mat4Perspective(math.Pi/2, 1, 1, 10)
	for _, tc := range []struct {
		z, want float32
	}{
		{-1, -1},
		{-10, 1},
	} {
		c := Mat4MulV4(p, Vec4{Z: tc.z, W: 1})
		if got := c.Z / c.W; !near(got, tc.want) {
			t.Fatalf("ndc z(%v) = %v, want %v", tc.z, got, tc.want)
		}
	}
}

func TestOrthoCorners(t *testing.T) {
	m := Mat4Ortho(0, 240, 320, 0, -1, 1)
	c := Mat4MulV4(m, Vec4{X: 240, Y: 320, W: 1})
	if !near(c.X, 1) || !near(c.Y, -1) {
		t.Fatalf("ortho(240,320) = (%v,%v), want (1,-1)", c.X, c.Y)
	}
}

func TestOrbitEyeStaysOnRadius(t *testing.T) {
	o := Orbit{Radius: 5, MinRadius: 2, MaxRadius: 8}
	o.Rotate(0.7, 3)
	if o.Pitch != 1.5 {
		t.Fatalf("Pitch = %v, want clamped 1.5", o.Pitch)
	}
	if got := Len(o.Eye()); !near(got, 5) {
		t.Fatalf("|Eye()| = %v, want 5", got)
	}
	o.Zoom(10)
	if o.Radius != 8 {
		t.Fatalf("Radius = %v, want 8", o.Radius)
	}
}
