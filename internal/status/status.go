// Package status tracks the health of a device stream: battery level,
// dropped frames detected from gaps in the packet counter, and whether
// the stream has gone stale.
package status

import (
	"sync"
	"time"

	"unicorn-orientviz/internal/protocol"
)

// DefaultStaleAfter is the silence window after which a stream counts
// as disconnected. Blocks normally arrive several times a second.
const DefaultStaleAfter = 2 * time.Second

// Snapshot is a point-in-time view of the stream health.
type Snapshot struct {
	// Streaming is true while blocks arrive within the staleness window.
	Streaming bool
	// Battery is the last reported charge as a 0 to 1 fraction, or -1
	// before the first frame.
	Battery float64
	// Received counts decoded frames since the tracker was created.
	Received uint64
	// Dropped counts frames lost to counter gaps.
	Dropped uint64
	// CurTime is the device timestamp of the newest frame in seconds.
	CurTime float64
}

// Tracker accumulates stream health across blocks. Safe for use from
// the reader goroutine with snapshots taken elsewhere.
type Tracker struct {
	staleAfter time.Duration
	now        func() time.Time

	mu          sync.Mutex
	lastBlock   time.Time
	battery     float64
	received    uint64
	dropped     uint64
	curTime     float64
	lastCounter uint32
	haveCounter bool
}

// NewTracker returns a tracker with the given staleness window; zero or
// negative means DefaultStaleAfter.
func NewTracker(staleAfter time.Duration) *Tracker {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &Tracker{
		staleAfter: staleAfter,
		now:        time.Now,
		battery:    -1,
	}
}

// Observe folds one decoded block into the health state.
func (t *Tracker) Observe(frames []protocol.Frame) {
	if len(frames) == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastBlock = t.now()
	for _, f := range frames {
		if t.haveCounter {
			// Unsigned subtraction also covers the 32-bit wrap. A huge
			// apparent gap means the device restarted its counter, not
			// billions of lost frames.
			gap := f.Counter - (t.lastCounter + 1)
			if gap > 0 && gap < uint32(protocol.FS)*3600 {
				t.dropped += uint64(gap)
			}
		}
		t.lastCounter = f.Counter
		t.haveCounter = true
		t.received++
	}

	last := frames[len(frames)-1]
	t.battery = last.Battery
	t.curTime = last.Time()
}

// Snapshot reports the current health.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	streaming := !t.lastBlock.IsZero() && t.now().Sub(t.lastBlock) < t.staleAfter
	return Snapshot{
		Streaming: streaming,
		Battery:   t.battery,
		Received:  t.received,
		Dropped:   t.dropped,
		CurTime:   t.curTime,
	}
}
