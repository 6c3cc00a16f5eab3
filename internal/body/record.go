package body

import (
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// Record is the tracked state for one sensor identity.
//
// Joint samples are copied into fixed arrays on every refresh so that a
// record's positions stay stable for the whole frame even when the sensor
// reuses its pose buffers.
type Record struct {
	id        uint64
	sessionID string
	enabled   bool

	raw *RawPose

	cur     [JointCount]Vec3
	curHas  [JointCount]bool
	prev    [JointCount]Vec3
	prevHas [JointCount]bool

	firstSeq uint64
	lastSeq  uint64
	missed   int // consecutive absent frames while disabled
	evicted  bool
}

func newRecord(p *RawPose, seq uint64) *Record {
	r := &Record{
		id:        p.ID,
		sessionID: uuid.NewString(),
		enabled:   true,
		firstSeq:  seq,
	}
	r.attach(p, seq)
	r.prev, r.prevHas = r.cur, r.curHas
	return r
}

// ID returns the sensor identity.
func (r *Record) ID() uint64 { return r.id }

// SessionID distinguishes tracking sessions of a reused identity.
func (r *Record) SessionID() string { return r.sessionID }

// Enabled reports whether the identity is currently tracked.
func (r *Record) Enabled() bool { return r.enabled }

// Raw returns the pose the record was last refreshed from.
func (r *Record) Raw() *RawPose { return r.raw }

// FirstSeq is the frame sequence in which this session started.
func (r *Record) FirstSeq() uint64 { return r.firstSeq }

// LastSeq is the most recent frame sequence in which the identity was tracked.
func (r *Record) LastSeq() uint64 { return r.lastSeq }

// MissedFrames is the number of consecutive frames the identity has been absent.
func (r *Record) MissedFrames() int { return r.missed }

// Position returns the latest position of j, or the zero vector if the joint
// was not reported.
func (r *Record) Position(j JointKind) Vec3 {
	if !j.Valid() || !r.curHas[j] {
		return Vec3{}
	}
	return r.cur[j]
}

// Velocity returns the position delta of j between the two most recent
// samples. It is zero on the first frame of a session and whenever either
// sample lacks the joint.
func (r *Record) Velocity(j JointKind) Vec3 {
	if !j.Valid() || !r.curHas[j] || !r.prevHas[j] {
		return Vec3{}
	}
	return r3.Sub(r.cur[j], r.prev[j])
}

// refresh shifts the current sample to previous and attaches p.
func (r *Record) refresh(p *RawPose, seq uint64) {
	r.prev, r.prevHas = r.cur, r.curHas
	r.attach(p, seq)
}

// resume re-enables the record with a fresh sample and no velocity history,
// so the gap does not show up as a jump.
func (r *Record) resume(p *RawPose, seq uint64) {
	r.enabled = true
	r.missed = 0
	r.attach(p, seq)
	r.prev, r.prevHas = r.cur, r.curHas
}

func (r *Record) attach(p *RawPose, seq uint64) {
	r.raw = p
	r.lastSeq = seq
	r.curHas = [JointCount]bool{}
	for k, jt := range p.Joints {
		r.cur[k] = jt.Position
		r.curHas[k] = true
	}
}
