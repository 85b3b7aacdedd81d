package geom

import (
	"math"
	"testing"
)

func TestCylinderAreaApproachesAnalytic(t *testing.T) {
	m := Cylinder(1.8, 1.8, 0.8, 64)
	want := 2*math.Pi*1.8*0.8 + 2*math.Pi*1.8*1.8
	got := m.Area()
	if math.Abs(got-want)/want > 0.01 {
		t.Fatalf("expected area near %.3f, got %.3f", want, got)
	}
	if len(m.Triangles) != 64*4 {
		t.Fatalf("expected %d triangles, got %d", 64*4, len(m.Triangles))
	}
}

func TestSphereAreaApproachesAnalytic(t *testing.T) {
	m := Sphere(1, 48, 32)
	want := 4 * math.Pi
	got := m.Area()
	if math.Abs(got-want)/want > 0.02 {
		t.Fatalf("expected area near %.3f, got %.3f", want, got)
	}
}

func TestCenterMovesBoundsToOrigin(t *testing.T) {
	m := Cylinder(1, 1, 2, 8)
	m.Translate(Vec3{3, 4, -5})
	m.Center()
	lo, hi := m.Bounds()
	mid := lo.Add(hi).Scale(0.5)
	if mid.Len() > 1e-9 {
		t.Fatalf("expected centered bounds, got midpoint %+v", mid)
	}
}

func TestNormalizeZeroVector(t *testing.T) {
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Fatalf("expected zero vector, got %+v", got)
	}
	if got := (Vec3{3, 0, 4}).Normalize().Len(); math.Abs(got-1) > 1e-12 {
		t.Fatalf("expected unit length, got %f", got)
	}
}

func TestRotateYQuarterTurn(t *testing.T) {
	got := Vec3{1, 2, 0}.RotateY(math.Pi / 2)
	want := Vec3{0, 2, -1}
	if got.Sub(want).Len() > 1e-9 {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}
