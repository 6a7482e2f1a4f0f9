// Package model is the data-model side of the widget boundary: host
// element dimensions, the current orientation sample, an informational
// timestamp, and a subscribe-by-name notification channel.
package model

import "fmt"

// EventOrientation fires whenever a new orientation sample is available.
// Handlers carry no payload; they re-read Orientation directly.
const EventOrientation = "orientation"

// Model holds the latest device state. All mutation and notification
// happen on the producing goroutine; handlers run synchronously on that
// same goroutine, which is the concurrency control; there are no locks
// because there is no concurrent mutation.
type Model struct {
	width, height int
	orientation   [4]float64
	curTime       float64

	orientationSubs []func()
}

// New creates a model for a host element of the given pixel dimensions.
// Dimensions are fixed at mount time; resizing is out of scope.
func New(width, height int) *Model {
	return &Model{width: width, height: height}
}

func (m *Model) Width() int  { return m.width }
func (m *Model) Height() int { return m.height }

// Orientation returns the current 4-component sample. The backing array
// is refreshed in place before each notification fires.
func (m *Model) Orientation() []float64 {
	return m.orientation[:]
}

// CurTime returns the device timestamp of the current sample in seconds.
func (m *Model) CurTime() float64 {
	return m.curTime
}

// On registers a handler for a named event. Unknown event names are
// rejected so a typo fails at wiring time, not silently at runtime.
func (m *Model) On(event string, fn func()) error {
	if event != EventOrientation {
		return fmt.Errorf("model: unknown event %q", event)
	}
	m.orientationSubs = append(m.orientationSubs, fn)
	return nil
}

// OnOrientation registers an orientation-change handler.
func (m *Model) OnOrientation(fn func()) {
	m.orientationSubs = append(m.orientationSubs, fn)
}

// Publish stores a new sample and fires every orientation handler, in
// registration order, on the caller's goroutine.
func (m *Model) Publish(sample [4]float64, curTime float64) {
	m.orientation = sample
	m.curTime = curTime
	for _, fn := range m.orientationSubs {
		fn()
	}
}
