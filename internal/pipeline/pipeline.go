// Package pipeline connects a device source to the orientation model:
// each decoded block is folded into the stream health, run through the
// orientation filter, and published as one model update.
package pipeline

import (
	"context"
	"log/slog"

	"unicorn-orientviz/internal/device"
	"unicorn-orientviz/internal/imu"
	"unicorn-orientviz/internal/model"
	"unicorn-orientviz/internal/status"
)

// Pipeline drives a model from a block source. Tracker is optional.
type Pipeline struct {
	Source  device.Source
	Filter  *imu.Filter
	Model   *model.Model
	Tracker *status.Tracker
	Log     *slog.Logger
}

// Run consumes blocks until the source closes or the context is
// canceled. Model notifications fire on this goroutine, one per block,
// carrying the newest filtered orientation.
func (p *Pipeline) Run(ctx context.Context) error {
	log := p.Log
	if log == nil {
		log = slog.Default()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case block, ok := <-p.Source.Blocks():
			if !ok {
				log.Info("block source closed")
				return nil
			}
			if len(block) == 0 {
				continue
			}
			if p.Tracker != nil {
				p.Tracker.Observe(block)
			}
			quats := p.Filter.ProcessBlock(block)
			p.Model.Publish(quats[len(quats)-1], block[len(block)-1].Time())
		}
	}
}
