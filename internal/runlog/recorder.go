// Package runlog consumes search.completed events and records each run.
package runlog

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/neighborhoods-api/internal/events"
	"github.com/yourorg/neighborhoods-api/internal/store"
)

type RunStore interface {
	RecordRun(ctx context.Context, r store.Run) error
}

// Recorder writes every published run to the store until its context ends.
type Recorder struct {
	Pub   events.Publisher
	Store RunStore
	// Timeout bounds each write. Zero means 5s.
	Timeout time.Duration
}

func (r *Recorder) Run(ctx context.Context) {
	sub := r.Pub.SubscribeSearchCompleted()
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-sub:
			r.record(ctx, evt)
		}
	}
}

func (r *Recorder) record(ctx context.Context, evt events.SearchCompleted) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := r.Store.RecordRun(ctx, store.Run{
		RunID:         evt.RunID,
		Address:       evt.Address,
		Lat:           evt.Latitude,
		Lon:           evt.Longitude,
		Neighborhoods: evt.Neighborhoods,
		Reason:        evt.Reason,
		FailedFields:  evt.Failures,
		Duration:      evt.Duration,
	})
	if err != nil {
		zap.L().Warn("runlog: record failed", zap.String("run_id", evt.RunID), zap.Error(err))
		return
	}
	zap.L().Debug("runlog: recorded", zap.String("run_id", evt.RunID), zap.String("reason", evt.Reason))
}
