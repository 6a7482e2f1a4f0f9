package mathutil

import "math"

// Quat represents a rotation quaternion (x, y, z, w), scalar last,
// the layout the rendering side expects.
type Quat [4]float64

// QuatIdentity returns the identity rotation.
func QuatIdentity() Quat {
	return Quat{0, 0, 0, 1}
}

// QuatFromAxisAngle builds a quaternion rotating by angle (radians)
// around axis. The axis is normalized here.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	a := axis.Normalize()
	s, c := math.Sin(angle*0.5), math.Cos(angle*0.5)
	return Quat{a[0] * s, a[1] * s, a[2] * s, c}
}

// QuatMul returns the Hamilton product a ⋅ b: the rotation that applies
// b first, then a.
func QuatMul(a, b Quat) Quat {
	ax, ay, az, aw := a[0], a[1], a[2], a[3]
	bx, by, bz, bw := b[0], b[1], b[2], b[3]
	return Quat{
		aw*bx + ax*bw + ay*bz - az*by,
		aw*by - ax*bz + ay*bw + az*bx,
		aw*bz + ax*by - ay*bx + az*bw,
		aw*bw - ax*bx - ay*by - az*bz,
	}
}

// Conj returns the conjugate. For unit quaternions this is the inverse.
func (q Quat) Conj() Quat {
	return Quat{-q[0], -q[1], -q[2], q[3]}
}

// Norm returns the Euclidean norm of the quaternion.
func (q Quat) Norm() float64 {
	return math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
}

// Normalize scales q to unit norm. A degenerate quaternion collapses to
// the identity rather than propagating NaNs.
func (q Quat) Normalize() Quat {
	n := q.Norm()
	if n < 1e-12 {
		return QuatIdentity()
	}
	return Quat{q[0] / n, q[1] / n, q[2] / n, q[3] / n}
}

// IsFinite reports whether every component is a finite number.
func (q Quat) IsFinite() bool {
	for _, c := range q {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Rotate applies the rotation q to a vector.
func (q Quat) Rotate(v Vec3) Vec3 {
	return QuatToMat3(q).MulVec3(v)
}

// QuatToMat3 converts a quaternion to a 3×3 rotation matrix.
func QuatToMat3(q Quat) Mat3 {
	x, y, z, w := q[0], q[1], q[2], q[3]
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return Mat3{
		1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy),
		2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx),
		2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy),
	}
}
