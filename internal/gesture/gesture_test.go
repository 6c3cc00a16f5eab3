package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/bodytrack/internal/body"
	"github.com/banshee-data/bodytrack/internal/host"
	"github.com/banshee-data/bodytrack/internal/sensor"
)

// pose places the head at 1.6 m and each hand at the given height.
func pose(id uint64, left, right float64) *body.RawPose {
	return &body.RawPose{
		ID:      id,
		Tracked: true,
		Joints: map[body.JointKind]body.Joint{
			body.Head:      {Position: body.Vec3{Y: 1.6}},
			body.HandLeft:  {Position: body.Vec3{X: -0.3, Y: left}},
			body.HandRight: {Position: body.Vec3{X: 0.3, Y: right}},
		},
	}
}

func track(poses ...*body.RawPose) *body.Tracker {
	tr := body.NewTracker(body.DefaultTrackerConfig())
	tr.Update(&body.Frame{Seq: 1, Bodies: poses})
	return tr
}

func TestHandsAboveHead(t *testing.T) {
	tests := []struct {
		name         string
		left, right  float64
		both, either bool
	}{
		{"both up", 1.9, 1.8, true, true},
		{"left only", 1.9, 1.0, false, true},
		{"right only", 1.0, 1.7, false, true},
		{"both down", 1.0, 1.1, false, false},
		{"level with head", 1.6, 1.6, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := track(pose(1, tt.left, tt.right))
			r, ok := tr.Body(1)
			require.True(t, ok)
			assert.Equal(t, tt.both, HandsAboveHead(r))
			assert.Equal(t, tt.either, AnyHandAboveHead(r))
		})
	}
}

func TestCountAndFraction(t *testing.T) {
	tr := track(pose(1, 2, 2), pose(2, 1, 1), pose(3, 2, 2), pose(4, 2, 1))
	bodies := tr.EnabledBodies()
	assert.Equal(t, 2, Count(bodies, HandsAboveHead))
	assert.InDelta(t, 0.5, Fraction(bodies, HandsAboveHead), 1e-12)
	assert.InDelta(t, 0.75, Fraction(bodies, AnyHandAboveHead), 1e-12)

	assert.Zero(t, Count(nil, HandsAboveHead))
	assert.Zero(t, Fraction(nil, HandsAboveHead))
}

func frameCtx(step uint64, dt time.Duration, v body.View) host.FrameContext {
	return host.FrameContext{Step: step, Dt: dt, View: v}
}

func TestLift(t *testing.T) {
	var applied []r2.Vec
	sink := ForceSinkFunc(func(f r2.Vec) { applied = append(applied, f) })
	l := NewLift(0.5, 10, sink)

	// Two of three above: 0.67 > 0.5 lifts.
	l.ConsumeFrame(frameCtx(1, 100*time.Millisecond, track(pose(1, 2, 2), pose(2, 2, 2), pose(3, 1, 1))))
	res := l.Last()
	assert.Equal(t, 2, res.Above)
	assert.Equal(t, 3, res.Total)
	assert.True(t, res.Lifting)
	assert.InDelta(t, 1.0, res.Force.Y, 1e-9)
	assert.Zero(t, res.Force.X)
	assert.Equal(t, "Users above: 2 Force: 1", res.String())

	// Exactly half does not lift.
	l.ConsumeFrame(frameCtx(2, 100*time.Millisecond, track(pose(1, 2, 2), pose(2, 1, 1))))
	assert.False(t, l.Last().Lifting)
	assert.Equal(t, r2.Vec{}, l.Last().Force)
	assert.Equal(t, "Users above: 1", l.Last().String())

	// Nobody present.
	l.ConsumeFrame(frameCtx(3, 100*time.Millisecond, track()))
	assert.False(t, l.Last().Lifting)
	assert.Zero(t, l.Last().Fraction)

	require.Len(t, applied, 1)
	assert.Equal(t, 3, l.Frames())
	assert.Equal(t, 1, l.LiftedFrames())
}

// Four bodies all lifting: the old count/total > total/2 rule would compare
// 1.0 > 2 and never lift.
func TestLift_FractionNotScaledByBodyCount(t *testing.T) {
	l := NewLift(0.5, 10, nil)
	l.ConsumeFrame(frameCtx(1, time.Second, track(pose(1, 2, 2), pose(2, 2, 2), pose(3, 2, 2), pose(4, 2, 2))))
	assert.True(t, l.Last().Lifting)
	assert.InDelta(t, 10, l.Last().Force.Y, 1e-9)
}

func TestLift_ThroughHost(t *testing.T) {
	l := NewLift(0.5, 10, nil)
	frames := []*body.Frame{
		{Seq: 1, Bodies: []*body.RawPose{pose(1, 1, 1)}},
		{Seq: 2, Bodies: []*body.RawPose{pose(1, 2, 2)}},
	}
	h := host.New(sensor.NewScripted(frames...), body.NewTracker(body.DefaultTrackerConfig()), nil, l)
	start := time.Unix(0, 0)
	h.Step(start)
	h.Step(start.Add(50 * time.Millisecond))

	assert.Equal(t, 2, l.Frames())
	assert.True(t, l.Last().Lifting)
	assert.InDelta(t, 0.5, l.Last().Force.Y, 1e-9)
}
