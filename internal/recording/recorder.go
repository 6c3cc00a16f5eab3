package recording

import (
	"context"
	"sync/atomic"

	"github.com/banshee-data/bodytrack/internal/body"
	"github.com/banshee-data/bodytrack/internal/monitoring"
	"github.com/banshee-data/bodytrack/internal/sensor"
)

// Recorder wraps a feed and appends every frame it yields, including nil
// frames, to a recording. Storage errors are logged and counted but never
// interrupt the frame loop.
type Recorder struct {
	ctx   context.Context
	store *Store
	id    string
	feed  sensor.Feed

	written atomic.Int64
	failed  atomic.Int64
}

var _ sensor.Feed = (*Recorder)(nil)

// NewRecorder records feed into recording id.
func NewRecorder(ctx context.Context, store *Store, id string, feed sensor.Feed) *Recorder {
	return &Recorder{ctx: ctx, store: store, id: id, feed: feed}
}

// Next forwards the inner feed's frame after storing it.
func (r *Recorder) Next() *body.Frame {
	f := r.feed.Next()
	if err := r.store.AppendFrame(r.ctx, r.id, f); err != nil {
		if r.failed.Add(1) == 1 {
			monitoring.Logf("[Recording] append to %s failed: %v", r.id, err)
		}
		return f
	}
	r.written.Add(1)
	return f
}

// RecordingID returns the recording being written.
func (r *Recorder) RecordingID() string { return r.id }

// Written reports frames stored so far.
func (r *Recorder) Written() int64 { return r.written.Load() }

// Failed reports frames that could not be stored.
func (r *Recorder) Failed() int64 { return r.failed.Load() }
