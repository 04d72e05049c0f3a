package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	length := float32(math.Sqrt(float64(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)))
	if math.Abs(float64(length-1.0)) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
}

func TestQuatToMat4(t *testing.T) {
	// 90 degrees around X maps +Y onto +Z.
	q := QuatFromAxisAngle(Vec3{X: 1}, float32(math.Pi/2))
	got := q.ToMat4().TransformPoint(Vec3{Y: 1})
	if abs(got.X) > 1e-5 || abs(got.Y) > 1e-5 || abs(got.Z-1) > 1e-5 {
		t.Errorf("rotated +Y = %v, want (0,0,1)", got)
	}
}

func TestQuatArrayOrder(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	if got := q.Array(); got != [4]float32{1, 2, 3, 4} {
		t.Errorf("Array() = %v, want x,y,z,w order", got)
	}
}
