// Package widget ties the pieces together: it subscribes to the data
// model's orientation notifications, maps each sample onto the mesh
// rotation, and issues exactly one repaint per notification.
package widget

import (
	"fmt"
	"image"
	"log/slog"

	"unicorn-orientviz/internal/mathutil"
	"unicorn-orientviz/internal/orient"
	"unicorn-orientviz/internal/scene"
)

// Source is what the widget needs from the external data model.
type Source interface {
	Width() int
	Height() int
	// Orientation returns the current 4-component sample; it is
	// re-read on every notification.
	Orientation() []float64
	// CurTime is an informational timestamp, logged only.
	CurTime() float64
	// OnOrientation registers a handler fired whenever a new sample
	// is available.
	OnOrientation(fn func())
}

// FrameSink receives every rendered frame. It is the attachment point to
// the host surface (a window, an encoder, a websocket hub).
type FrameSink func(*image.NRGBA)

// Config fixes the widget's convention and rendering capability at
// construction. Convention is never mutated afterwards.
type Config struct {
	Convention orient.Convention
	Renderer   scene.Renderer
	Sink       FrameSink
	// Texture, when non-nil, skins the cuboid instead of the default
	// normal-visualizing material.
	Texture *image.NRGBA
	Logger  *slog.Logger
}

// Widget owns one SceneHandle for the lifetime of the hosting view.
type Widget struct {
	handle     *scene.Handle
	convention orient.Convention
	src        Source
	sink       FrameSink
	log        *slog.Logger
}

// Mount builds the scene from the model's dimensions, renders the initial
// frame (identity rotation, before any sample), and subscribes to
// orientation notifications. Construction-time failures such as
// degenerate geometry or a missing renderer surface here; the widget
// does not mount.
func Mount(src Source, cfg Config) (*Widget, error) {
	if src == nil {
		return nil, fmt.Errorf("widget: nil source")
	}
	if cfg.Convention.Name == "" {
		return nil, fmt.Errorf("widget: convention not configured")
	}

	h, err := scene.New(scene.ViewConfig{
		Width:        src.Width(),
		Height:       src.Height(),
		CameraOffset: cfg.Convention.CameraOffset,
	}, cfg.Renderer)
	if err != nil {
		return nil, err
	}
	h.Material = scene.Material{Texture: cfg.Texture}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	w := &Widget{
		handle:     h,
		convention: cfg.Convention,
		src:        src,
		sink:       cfg.Sink,
		log:        log,
	}

	// The constructor already rendered once; hand that first frame to
	// the sink so the widget is never blank.
	w.emit(h.Frame())

	src.OnOrientation(w.onOrientation)
	return w, nil
}

// onOrientation runs synchronously inside the notification: map the
// current sample, set the rotation, repaint once. A malformed sample is
// contained here: log it, keep the last good rotation and frame, and
// leave the subscription alive.
func (w *Widget) onOrientation() {
	sample := w.src.Orientation()
	q, err := w.convention.MapToRotation(sample)
	if err != nil {
		w.log.Warn("dropping malformed orientation sample",
			"err", err, "cur_time", w.src.CurTime())
		return
	}

	w.handle.Mesh.Rotation = q
	w.emit(w.handle.Render())
}

func (w *Widget) emit(frame *image.NRGBA) {
	if w.sink != nil {
		w.sink(frame)
	}
}

// Frame returns the most recently rendered frame.
func (w *Widget) Frame() *image.NRGBA {
	return w.handle.Frame()
}

// Rotation returns the mesh's current rotation.
func (w *Widget) Rotation() mathutil.Quat {
	return w.handle.Mesh.Rotation
}
