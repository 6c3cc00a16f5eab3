package body

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a sensor-space position or velocity in metres.
type Vec3 = r3.Vec

// Joint is one sampled skeletal landmark.
type Joint struct {
	Position Vec3
}

// RawPose is a single body entry of a sensor snapshot.
type RawPose struct {
	ID      uint64
	Tracked bool
	Joints  map[JointKind]Joint
}

// Frame is one sensor snapshot. A nil *Frame means the sensor has no data yet;
// a non-nil frame with no bodies means nobody is tracked.
type Frame struct {
	Seq       uint64
	Timestamp time.Time
	Bodies    []*RawPose
}

// Kinematics is the per-body capability consumers build pose logic on.
type Kinematics interface {
	Position(j JointKind) Vec3
	Velocity(j JointKind) Vec3
}

// valid reports whether p can take part in reconciliation. ID 0 is the
// sensor's "no identity" value.
func (p *RawPose) valid() bool {
	if p == nil || p.ID == 0 {
		return false
	}
	for k, jt := range p.Joints {
		if !k.Valid() || !finite(jt.Position) {
			return false
		}
	}
	return true
}

func finite(v Vec3) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}
