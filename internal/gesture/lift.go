package gesture

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/bodytrack/internal/body"
	"github.com/banshee-data/bodytrack/internal/host"
)

// LiftResult summarises one frame of the lift interaction.
type LiftResult struct {
	Step     uint64
	Above    int     // bodies with both hands above the head
	Total    int     // enabled bodies
	Fraction float64 // Above / Total, 0 with no bodies
	Lifting  bool
	Force    r2.Vec // upward force applied this frame; zero when not lifting
}

// String renders the result the way the on-screen debug line shows it.
func (r LiftResult) String() string {
	s := fmt.Sprintf("Users above: %d", r.Above)
	if r.Lifting {
		s += fmt.Sprintf(" Force: %.4g", r.Force.Y)
	}
	return s
}

// ForceSink receives the force produced each lifting frame.
type ForceSink interface {
	ApplyForce(f r2.Vec)
}

// ForceSinkFunc adapts a function to ForceSink.
type ForceSinkFunc func(f r2.Vec)

// ApplyForce calls fn.
func (fn ForceSinkFunc) ApplyForce(f r2.Vec) { fn(f) }

// Lift pushes an object upward while more than Threshold of the enabled bodies
// hold both hands above their heads. The force is ForceScale per second,
// scaled by the frame's elapsed time.
type Lift struct {
	Threshold  float64
	ForceScale float64
	Sink       ForceSink

	last   LiftResult
	frames int
	lifted int
	buf    []*body.Record
}

var _ host.Consumer = (*Lift)(nil)

// NewLift creates a lift consumer. sink may be nil.
func NewLift(threshold, forceScale float64, sink ForceSink) *Lift {
	return &Lift{Threshold: threshold, ForceScale: forceScale, Sink: sink}
}

// ConsumeFrame evaluates the enabled bodies for one frame.
func (l *Lift) ConsumeFrame(fc host.FrameContext) {
	l.buf = fc.View.AppendEnabledBodies(l.buf[:0])
	res := LiftResult{Step: fc.Step, Total: len(l.buf)}
	res.Above = Count(l.buf, HandsAboveHead)
	res.Fraction = Fraction(l.buf, HandsAboveHead)
	if res.Total > 0 && res.Fraction > l.Threshold {
		res.Lifting = true
		res.Force = r2.Vec{Y: l.ForceScale * fc.Dt.Seconds()}
		l.lifted++
		if l.Sink != nil {
			l.Sink.ApplyForce(res.Force)
		}
	}
	l.frames++
	l.last = res
}

// Last returns the most recent frame's result.
func (l *Lift) Last() LiftResult { return l.last }

// Frames reports frames evaluated.
func (l *Lift) Frames() int { return l.frames }

// LiftedFrames reports frames in which force was applied.
func (l *Lift) LiftedFrames() int { return l.lifted }
