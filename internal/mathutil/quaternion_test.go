package mathutil

import (
	"math"
	"math/rand"
	"testing"

	"github.com/westphae/quaternion"
)

func toRef(q Quat) quaternion.Quaternion {
	return quaternion.Quaternion{W: q[3], X: q[0], Y: q[1], Z: q[2]}
}

func quatClose(t *testing.T, got Quat, want quaternion.Quaternion) {
	t.Helper()
	diff := math.Abs(got[0]-want.X) + math.Abs(got[1]-want.Y) +
		math.Abs(got[2]-want.Z) + math.Abs(got[3]-want.W)
	if diff > 1e-9 {
		t.Fatalf("quaternion mismatch: got %v want %+v", got, want)
	}
}

func TestQuatMulMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		a := Quat{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}.Normalize()
		b := Quat{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}.Normalize()
		quatClose(t, QuatMul(a, b), quaternion.Prod(toRef(a), toRef(b)))
	}
}

func TestQuatConjMatchesReference(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{1, 2, 3}, 0.7)
	quatClose(t, q.Conj(), toRef(q).Conj())
}

func TestQuatToMat3AgainstAxisRotations(t *testing.T) {
	angles := []float64{0, 0.3, math.Pi / 2, math.Pi, -1.1}
	axes := []struct {
		axis Vec3
		mat  func(float64) Mat3
	}{
		{Vec3{1, 0, 0}, RotX},
		{Vec3{0, 1, 0}, RotY},
		{Vec3{0, 0, 1}, RotZ},
	}
	for _, ax := range axes {
		for _, a := range angles {
			got := QuatToMat3(QuatFromAxisAngle(ax.axis, a))
			want := ax.mat(a)
			for i := range got {
				if math.Abs(got[i]-want[i]) > 1e-12 {
					t.Fatalf("axis %v angle %v: matrix[%d] = %v, want %v", ax.axis, a, i, got[i], want[i])
				}
			}
		}
	}
}

func TestQuatRotate(t *testing.T) {
	// 90° about Z sends +X to +Y.
	q := QuatFromAxisAngle(Vec3{0, 0, 1}, math.Pi/2)
	v := q.Rotate(Vec3{1, 0, 0})
	if math.Abs(v[0]) > 1e-12 || math.Abs(v[1]-1) > 1e-12 || math.Abs(v[2]) > 1e-12 {
		t.Fatalf("rotated vector = %v, want (0,1,0)", v)
	}
}

func TestNormalizeDegenerate(t *testing.T) {
	if got := (Quat{}).Normalize(); got != QuatIdentity() {
		t.Fatalf("zero quaternion normalized to %v, want identity", got)
	}
	n := (Quat{3, 0, 4, 0}).Normalize().Norm()
	if math.Abs(n-1) > 1e-12 {
		t.Fatalf("norm after Normalize = %v", n)
	}
}

func TestIsFinite(t *testing.T) {
	if !QuatIdentity().IsFinite() {
		t.Fatal("identity should be finite")
	}
	bad := Quat{0, math.NaN(), 0, 1}
	if bad.IsFinite() {
		t.Fatal("NaN component should not be finite")
	}
	bad = Quat{math.Inf(1), 0, 0, 1}
	if bad.IsFinite() {
		t.Fatal("Inf component should not be finite")
	}
}
