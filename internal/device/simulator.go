package device

import (
	"context"
	"math"
	"time"

	"unicorn-orientviz/internal/mathutil"
	"unicorn-orientviz/internal/protocol"
)

// Simulator produces synthetic sample blocks at the device rate. The
// motion channels describe a slow physically consistent tumble, so an
// orientation filter fed from it produces a smooth rotation.
type Simulator struct {
	nsamp  int
	blocks chan []protocol.Frame

	counter uint32
	q       mathutil.Quat
	phase   float64
}

// NewSimulator returns a simulator emitting nsamp frames per block.
func NewSimulator(nsamp int) *Simulator {
	if nsamp <= 0 {
		nsamp = 50
	}
	return &Simulator{
		nsamp:  nsamp,
		blocks: make(chan []protocol.Frame, 1),
		q:      mathutil.QuatIdentity(),
	}
}

// Blocks implements Source.
func (s *Simulator) Blocks() <-chan []protocol.Frame {
	return s.blocks
}

// Run emits blocks at the stream rate until the context is canceled.
func (s *Simulator) Run(ctx context.Context) error {
	defer close(s.blocks)

	interval := time.Duration(float64(s.nsamp) / protocol.FS * float64(time.Second))
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
		block := s.makeBlock()
		select {
		case s.blocks <- block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// makeBlock advances the simulated state by nsamp frames.
func (s *Simulator) makeBlock() []protocol.Frame {
	const dt = 1.0 / protocol.FS
	frames := make([]protocol.Frame, s.nsamp)
	for i := range frames {
		// Body rates for a lazy tumble: steady yaw with a pitch wobble.
		gyr := [3]float64{
			10 * math.Sin(s.phase*0.5),
			25 * math.Cos(s.phase*0.3),
			20,
		}
		w := mathutil.Vec3{
			mathutil.Deg2Rad(gyr[0]),
			mathutil.Deg2Rad(gyr[1]),
			mathutil.Deg2Rad(gyr[2]),
		}
		s.q = mathutil.QuatMul(s.q, mathutil.QuatFromAxisAngle(w, w.Len()*dt)).Normalize()

		// Gravity as the body accelerometer would see it.
		g := s.q.Conj().Rotate(mathutil.Vec3{0, 0, 1})

		fr := &frames[i]
		fr.Gyr = gyr
		fr.Acc = [3]float64{g[0], g[1], g[2]}
		for ch := range fr.EEG {
			// Alpha-band sine per channel over a plausible DC offset.
			fr.EEG[ch] = 3650 + 12*math.Sin(2*math.Pi*10*s.phase+float64(ch))
		}
		fr.Battery = 0.8
		fr.Counter = s.counter

		s.counter++
		s.phase += dt
	}
	return frames
}
