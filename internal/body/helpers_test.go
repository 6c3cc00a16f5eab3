package body

import (
	"strconv"
	"time"
)

// pose builds a tracked pose with the head and both hands centred on x,
// hands below the head.
func pose(id uint64, x float64) *RawPose {
	return &RawPose{
		ID:      id,
		Tracked: true,
		Joints: map[JointKind]Joint{
			Head:      {Position: Vec3{X: x, Y: 1.6, Z: 2}},
			HandLeft:  {Position: Vec3{X: x - 0.3, Y: 1.0, Z: 2}},
			HandRight: {Position: Vec3{X: x + 0.3, Y: 1.0, Z: 2}},
		},
	}
}

func frame(seq uint64, bodies ...*RawPose) *Frame {
	return &Frame{
		Seq:       seq,
		Timestamp: time.Unix(0, int64(seq)*int64(33*time.Millisecond)),
		Bodies:    bodies,
	}
}

func liveFrame(seq uint64, ids ...uint64) *Frame {
	bodies := make([]*RawPose, 0, len(ids))
	for _, id := range ids {
		bodies = append(bodies, pose(id, float64(id)))
	}
	return frame(seq, bodies...)
}

// eventLog records lifecycle notifications as strings for comparison.
type eventLog struct {
	events []string
}

func (l *eventLog) attach(t *Tracker) {
	t.OnEntered(func(r *Record) { l.events = append(l.events, "entered:"+itoa(r.ID())) })
	t.OnLeft(func(id uint64) { l.events = append(l.events, "left:"+itoa(id)) })
	t.OnEvicted(func(id uint64) { l.events = append(l.events, "evicted:"+itoa(id)) })
}

func (l *eventLog) take() []string {
	out := l.events
	l.events = nil
	return out
}

func itoa(id uint64) string { return strconv.FormatUint(id, 10) }

func ids(records []*Record) []uint64 {
	out := make([]uint64, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID())
	}
	return out
}
