package body

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// View is the read-only query surface handed to consumers. Results are valid
// for the current frame only.
type View interface {
	Body(id uint64) (*Record, bool)
	EnabledBodies() []*Record
	AppendEnabledBodies(dst []*Record) []*Record
	AverageVelocity(joints ...JointKind) Vec3
}

var _ View = (*Tracker)(nil)

// Body looks up a record by identity, enabled or not.
func (t *Tracker) Body(id uint64) (*Record, bool) {
	r, ok := t.records[id]
	return r, ok
}

// EnabledBodies returns the currently tracked records in first-seen order.
// The slice is freshly built on every call.
func (t *Tracker) EnabledBodies() []*Record {
	return t.AppendEnabledBodies(make([]*Record, 0, len(t.order)))
}

// AppendEnabledBodies appends the enabled records to dst and returns it, so a
// per-frame consumer can reuse its buffer.
func (t *Tracker) AppendEnabledBodies(dst []*Record) []*Record {
	for _, id := range t.order {
		if r := t.records[id]; r.enabled {
			dst = append(dst, r)
		}
	}
	return dst
}

// AverageVelocity sums the velocity of every requested joint over every
// enabled body and divides by bodies × joints. Repeating a joint weights it
// more heavily. With no enabled bodies or no joints the result is zero.
func (t *Tracker) AverageVelocity(joints ...JointKind) Vec3 {
	var sum Vec3
	bodies := 0
	for _, id := range t.order {
		r := t.records[id]
		if !r.enabled {
			continue
		}
		bodies++
		for _, j := range joints {
			sum = r3.Add(sum, r.Velocity(j))
		}
	}
	n := bodies * len(joints)
	if n == 0 {
		return Vec3{}
	}
	return r3.Scale(1/float64(n), sum)
}
