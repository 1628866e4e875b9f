package geom

import (
	"math"
	"testing"
)

func TestVectorArithmetic(t *testing.T) {
	a := NewVector3(1, 2, 3)
	b := NewVector3(4, -5, 6)

	if got := a.Add(b); got != (Vector3{5, -3, 9}) {
		t.Fatalf("Add: got %+v", got)
	}
	if got := a.Sub(b); got != (Vector3{-3, 7, -3}) {
		t.Fatalf("Sub: got %+v", got)
	}
	if got := a.Scale(2); got != (Vector3{2, 4, 6}) {
		t.Fatalf("Scale: got %+v", got)
	}
	if got := a.Dot(b); got != 12 {
		t.Fatalf("Dot: got %f", got)
	}
}

func TestVectorCrossIsOrthogonal(t *testing.T) {
	a := NewVector3(1, 0.5, -2)
	b := NewVector3(-3, 2, 0.25)
	c := a.Cross(b)

	if d := math.Abs(float64(c.Dot(a))); d > 1e-4 {
		t.Fatalf("cross product not orthogonal to a: dot=%g", d)
	}
	if d := math.Abs(float64(c.Dot(b))); d > 1e-4 {
		t.Fatalf("cross product not orthogonal to b: dot=%g", d)
	}
}

func TestVectorCrossUnitAxes(t *testing.T) {
	x := NewVector3(1, 0, 0)
	y := NewVector3(0, 1, 0)
	if got := x.Cross(y); got != (Vector3{0, 0, 1}) {
		t.Fatalf("x cross y: got %+v", got)
	}
}

func TestVectorNormalize(t *testing.T) {
	v := NewVector3(3, 4, 0)
	n := v.Normalize()
	if math.Abs(float64(n.Length()-1)) > 1e-6 {
		t.Fatalf("normalized length: got %f", n.Length())
	}
	if math.Abs(float64(n.X-0.6)) > 1e-6 || math.Abs(float64(n.Y-0.8)) > 1e-6 {
		t.Fatalf("normalized direction: got %+v", n)
	}
}

func TestVectorNormalizeNearZeroReturnsZero(t *testing.T) {
	tiny := NewVector3(1e-5, 0, 0)
	if got := tiny.Normalize(); got != (Vector3{}) {
		t.Fatalf("expected zero vector for sub-epsilon input, got %+v", got)
	}
	if got := (Vector3{}).Normalize(); got != (Vector3{}) {
		t.Fatalf("expected zero vector for zero input, got %+v", got)
	}
}
