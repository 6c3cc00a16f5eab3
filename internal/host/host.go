// Package host drives the per-frame loop: pull the sensor feed, reconcile it
// into the tracker, then hand the read-only view to each consumer.
package host

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/banshee-data/bodytrack/internal/body"
	"github.com/banshee-data/bodytrack/internal/monitoring"
	"github.com/banshee-data/bodytrack/internal/sensor"
	"github.com/banshee-data/bodytrack/internal/timeutil"
)

// FrameContext is what a consumer sees each frame. View is only valid for the
// duration of the call.
type FrameContext struct {
	Step  uint64        // host step count, starting at 1
	Now   time.Time     // time of this step
	Dt    time.Duration // time since the previous step; zero on the first
	Frame *body.Frame   // the snapshot reconciled this step, nil if none
	View  body.View
}

// Consumer reacts to the enabled bodies once per frame.
type Consumer interface {
	ConsumeFrame(fc FrameContext)
}

// ConsumerFunc adapts a function to Consumer.
type ConsumerFunc func(fc FrameContext)

// ConsumeFrame calls f.
func (f ConsumerFunc) ConsumeFrame(fc FrameContext) { f(fc) }

// Config controls the loop driven by Run.
type Config struct {
	// Interval between steps. Defaults to 1/30 s.
	Interval time.Duration
	// MaxFrames stops Run after this many steps. Zero runs until cancelled.
	MaxFrames int
}

// DefaultConfig returns a 30 fps loop with no frame limit.
func DefaultConfig() Config {
	return Config{Interval: time.Second / 30}
}

// Host owns the tracker and its consumers. Step and Run must be called from a
// single goroutine; Stop may be called from any goroutine. The tracker is only
// ever reset on the frame goroutine or when no frame is in flight.
type Host struct {
	Config Config

	feed      sensor.Feed
	tracker   *body.Tracker
	clock     timeutil.Clock
	consumers []Consumer

	steps  atomic.Uint64
	panics atomic.Int64
	last   time.Time

	mu           sync.Mutex
	stopped      bool
	running      bool
	stepping     bool
	pendingClear bool
	stopCh       chan struct{}
}

// New wires feed into tracker and the given consumers. A nil clock uses the
// real clock.
func New(feed sensor.Feed, tracker *body.Tracker, clock timeutil.Clock, consumers ...Consumer) *Host {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Host{
		Config:    DefaultConfig(),
		feed:      feed,
		tracker:   tracker,
		clock:     clock,
		consumers: consumers,
		stopCh:    make(chan struct{}),
	}
}

// AddConsumer appends c to the consumer list.
func (h *Host) AddConsumer(c Consumer) { h.consumers = append(h.consumers, c) }

// Tracker returns the owned tracker.
func (h *Host) Tracker() *body.Tracker { return h.tracker }

// Steps reports how many steps have run.
func (h *Host) Steps() uint64 { return h.steps.Load() }

// ConsumerPanics reports consumer calls that panicked.
func (h *Host) ConsumerPanics() int64 { return h.panics.Load() }

// Stopped reports whether Stop has been called.
func (h *Host) Stopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}

// Step runs one frame at time now. It returns false once the host is stopped.
func (h *Host) Step(now time.Time) bool {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return false
	}
	h.stepping = true
	h.mu.Unlock()
	defer h.endStep()

	frame := h.feed.Next()
	h.tracker.Update(frame)

	step := h.steps.Add(1)
	var dt time.Duration
	if !h.last.IsZero() {
		dt = now.Sub(h.last)
	}
	h.last = now

	fc := FrameContext{Step: step, Now: now, Dt: dt, Frame: frame, View: h.tracker}
	for i, c := range h.consumers {
		h.consume(i, c, fc)
	}
	return true
}

// endStep applies a clear requested while the frame was in flight, unless Run
// owns the loop and will apply it on exit.
func (h *Host) endStep() {
	h.mu.Lock()
	h.stepping = false
	reset := h.pendingClear && !h.running
	if reset {
		h.pendingClear = false
	}
	h.mu.Unlock()
	if reset {
		h.tracker.Reset()
	}
}

func (h *Host) consume(i int, c Consumer, fc FrameContext) {
	defer func() {
		if r := recover(); r != nil {
			h.panics.Add(1)
			monitoring.Logf("[Host] consumer %d panicked at step %d: %v", i, fc.Step, r)
		}
	}()
	c.ConsumeFrame(fc)
}

// Run steps on every tick of the configured interval until ctx is cancelled,
// Stop is called, or MaxFrames steps have run. It returns nil on a clean stop.
func (h *Host) Run(ctx context.Context) error {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return fmt.Errorf("host already running")
	}
	if h.stopped {
		h.mu.Unlock()
		return nil
	}
	h.running = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		h.running = false
		reset := h.pendingClear
		h.pendingClear = false
		h.mu.Unlock()
		if reset {
			h.tracker.Reset()
		}
	}()

	interval := h.Config.Interval
	if interval <= 0 {
		interval = DefaultConfig().Interval
	}
	ticker := h.clock.NewTicker(interval)
	defer ticker.Stop()

	monitoring.Logf("[Host] frame loop started: interval=%v max_frames=%d", interval, h.Config.MaxFrames)
	for {
		select {
		case <-ctx.Done():
			monitoring.Logf("[Host] frame loop stopping: %v after %d steps", ctx.Err(), h.Steps())
			return nil
		case <-h.stopCh:
			monitoring.Logf("[Host] frame loop stopped after %d steps", h.Steps())
			return nil
		case now := <-ticker.C():
			if !h.Step(now) {
				return nil
			}
			if h.Config.MaxFrames > 0 && h.Steps() >= uint64(h.Config.MaxFrames) {
				monitoring.Logf("[Host] frame limit reached: %d steps", h.Steps())
				return nil
			}
		}
	}
}

// Stop ends the loop; later Step calls do nothing. When clear is true the
// identity map is emptied: immediately when idle, otherwise by the frame
// goroutine once the in-flight Step or Run finishes. Stop is safe to call more
// than once.
func (h *Host) Stop(clear bool) {
	h.mu.Lock()
	if !h.stopped {
		h.stopped = true
		close(h.stopCh)
	}
	reset := false
	if clear {
		if h.running || h.stepping {
			h.pendingClear = true
		} else {
			reset = true
		}
	}
	h.mu.Unlock()
	if reset {
		h.tracker.Reset()
	}
}
