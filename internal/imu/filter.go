// Package imu estimates device orientation from accelerometer and
// gyroscope blocks: gyro strapdown integration with a complementary
// accelerometer inclination correction. Output quaternions are
// scalar-first [w, x, y, z], the format the orientation widget's
// conventions expect from the upstream filter.
package imu

import (
	"math"

	"unicorn-orientviz/internal/mathutil"
	"unicorn-orientviz/internal/protocol"
)

// Settings configure the filter. The zero value is not usable; use
// DefaultSettings.
type Settings struct {
	// SampleRate of the motion stream in Hz.
	SampleRate float64
	// AccGain is the fraction of the accelerometer inclination error
	// corrected per sample. Small values trust the gyro.
	AccGain float64
	// AccMin/AccMax gate the correction: samples whose magnitude (in g)
	// falls outside the band are treated as motion, not gravity.
	AccMin, AccMax float64
}

// DefaultSettings matches the device sample rate with a gentle
// accelerometer pull.
func DefaultSettings() Settings {
	return Settings{
		SampleRate: protocol.FS,
		AccGain:    0.02,
		AccMin:     0.5,
		AccMax:     1.5,
	}
}

// Filter holds the running orientation estimate (sensor → world).
type Filter struct {
	settings Settings
	q        mathutil.Quat
}

// New returns a filter at the identity orientation.
func New(s Settings) *Filter {
	return &Filter{settings: s, q: mathutil.QuatIdentity()}
}

// Update advances the estimate by one sample. Accelerometer in g,
// gyroscope in deg/sec (the device's calibrated units).
func (f *Filter) Update(acc, gyr [3]float64) {
	dt := 1.0 / f.settings.SampleRate

	// Gyro strapdown: body-frame rate integrated as a right-multiplied
	// increment.
	w := mathutil.Vec3{
		mathutil.Deg2Rad(gyr[0]),
		mathutil.Deg2Rad(gyr[1]),
		mathutil.Deg2Rad(gyr[2]),
	}
	if rate := w.Len(); rate > 1e-12 {
		dq := mathutil.QuatFromAxisAngle(w, rate*dt)
		f.q = mathutil.QuatMul(f.q, dq)
	}

	// Accelerometer inclination correction, gated to near-static
	// samples so linear acceleration does not masquerade as gravity.
	a := mathutil.Vec3{acc[0], acc[1], acc[2]}
	mag := a.Len()
	if mag >= f.settings.AccMin && mag <= f.settings.AccMax {
		measured := a.Scale(1 / mag)
		predicted := f.q.Conj().Rotate(mathutil.Vec3{0, 0, 1})

		axis := measured.Cross(predicted)
		sin := axis.Len()
		cos := measured.Dot(predicted)
		angle := math.Atan2(sin, cos)
		if sin > 1e-12 && angle > 1e-12 {
			f.q = mathutil.QuatMul(f.q, mathutil.QuatFromAxisAngle(axis, f.settings.AccGain*angle))
		}
	}

	f.q = f.q.Normalize()
}

// Orientation returns the current estimate as a scalar-first sample.
func (f *Filter) Orientation() [4]float64 {
	return [4]float64{f.q[3], f.q[0], f.q[1], f.q[2]}
}

// ProcessBlock runs every frame of a decoded block through the filter
// and returns one scalar-first quaternion per frame, mirroring the
// block-in, block-out shape of the upstream pipeline.
func (f *Filter) ProcessBlock(frames []protocol.Frame) [][4]float64 {
	out := make([][4]float64, len(frames))
	for i, fr := range frames {
		f.Update(fr.Acc, fr.Gyr)
		out[i] = f.Orientation()
	}
	return out
}
