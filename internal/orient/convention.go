// Package orient maps raw device orientation samples onto mesh rotations.
//
// The upstream filter emits 4-component quaternion samples whose component
// order and reference frame are device-defined. A Convention names the
// reordering into the renderer's (x, y, z, w) layout plus an optional fixed
// correction rotation composed onto every sample. Keeping both as explicit
// configuration (rather than inlined arithmetic) is what makes a wrong
// convention show up in tests instead of as a plausible-looking but wrong
// orientation on screen.
package orient

import (
	"fmt"
	"math"

	"unicorn-orientviz/internal/mathutil"
)

// Component order names. The order maps raw sample indices to the
// (x, y, z, w) slots the renderer expects.
const (
	// OrderXYZW passes components through unchanged: the sample is
	// already scalar-last.
	OrderXYZW = "xyzw"
	// OrderWXYZ cyclically reorders a scalar-first sample so the scalar
	// lands in the last slot: (x,y,z,w) = (r1,r2,r3,r0).
	OrderWXYZ = "wxyz"
)

// Convention names.
const (
	// AxisAngleCorrected: components used as-is, then a fixed 180° yaw
	// correction is post-multiplied to align the device's forward axis
	// with the camera's.
	AxisAngleCorrected = "axis-angle-corrected"
	// ReorderedImplicit: scalar-first components reordered, no
	// correction applied.
	ReorderedImplicit = "reordered-implicit"
)

// yawFlip is the 180° rotation about the vertical (+Y) axis.
var yawFlip = mathutil.QuatFromAxisAngle(mathutil.Vec3{0, 1, 0}, math.Pi)

// Convention describes how raw samples become renderer rotations. The
// zero value is not valid; use ConventionByName.
type Convention struct {
	Name string

	// order[i] is the raw index feeding renderer slot i (x, y, z, w).
	order [4]int

	// correction, when non-nil, is composed sample ∘ correction.
	correction *mathutil.Quat

	// CameraOffset is where this convention places the camera, looking
	// at the origin.
	CameraOffset mathutil.Vec3
}

// ConventionByName resolves a named convention. Unknown names fail here,
// at construction, never at first render.
func ConventionByName(name string) (Convention, error) {
	switch name {
	case AxisAngleCorrected:
		corr := yawFlip
		return Convention{
			Name:         name,
			order:        [4]int{0, 1, 2, 3},
			correction:   &corr,
			CameraOffset: mathutil.Vec3{-0.3, 0, 0},
		}, nil
	case ReorderedImplicit:
		return Convention{
			Name:         name,
			order:        [4]int{1, 2, 3, 0},
			CameraOffset: mathutil.Vec3{0, -0.3, 0},
		}, nil
	}
	return Convention{}, fmt.Errorf("orient: unknown convention %q", name)
}

// Correction returns the fixed correction quaternion and whether one is
// configured.
func (c Convention) Correction() (mathutil.Quat, bool) {
	if c.correction == nil {
		return mathutil.QuatIdentity(), false
	}
	return *c.correction, true
}

// MapToRotation converts one raw sample into the absolute mesh rotation.
// The sample must have exactly 4 finite components; anything else is
// rejected so a bad sample can never turn into a NaN rotation. Pure:
// same sample in, same rotation out.
func (c Convention) MapToRotation(sample []float64) (mathutil.Quat, error) {
	if len(sample) != 4 {
		return mathutil.Quat{}, fmt.Errorf("orient: sample has %d components, want 4", len(sample))
	}

	var q mathutil.Quat
	for slot, idx := range c.order {
		v := sample[idx]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return mathutil.Quat{}, fmt.Errorf("orient: sample component %d is not finite", idx)
		}
		q[slot] = v
	}

	if c.correction != nil {
		q = mathutil.QuatMul(q, *c.correction)
	}
	return q, nil
}
