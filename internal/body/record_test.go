package body

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord_PositionOfMissingJoint(t *testing.T) {
	t.Parallel()
	r := newRecord(pose(1, 0), 1)
	assert.Equal(t, Vec3{}, r.Position(FootLeft))
	assert.Equal(t, Vec3{}, r.Position(JointCount))
	assert.Equal(t, Vec3{}, r.Velocity(JointCount))
}

func TestRecord_VelocityNeedsBothSamples(t *testing.T) {
	t.Parallel()
	r := newRecord(pose(1, 0), 1)

	next := pose(1, 1)
	delete(next.Joints, HandRight)
	next.Joints[FootLeft] = Joint{Position: Vec3{Y: 0.1}}
	r.refresh(next, 2)

	assert.InDelta(t, 1.0, r.Velocity(Head).X, 1e-9)
	assert.Equal(t, Vec3{}, r.Velocity(HandRight), "joint dropped from current sample")
	assert.Equal(t, Vec3{}, r.Velocity(FootLeft), "joint absent from previous sample")
	assert.Equal(t, Vec3{}, r.Position(HandRight))
}

func TestRecord_StableAgainstBufferReuse(t *testing.T) {
	t.Parallel()
	p := pose(1, 0)
	r := newRecord(p, 1)

	// Sensors often reuse their pose buffers between frames.
	p.Joints[Head] = Joint{Position: Vec3{X: 99}}
	assert.Equal(t, 0.0, r.Position(Head).X)
}

func TestRecord_SessionIDs(t *testing.T) {
	t.Parallel()
	a := newRecord(pose(1, 0), 1)
	b := newRecord(pose(1, 0), 1)
	assert.NotEmpty(t, a.SessionID())
	assert.NotEqual(t, a.SessionID(), b.SessionID())
	assert.Equal(t, uint64(1), a.ID())
}

func TestRecord_SatisfiesKinematics(t *testing.T) {
	t.Parallel()
	var k Kinematics = newRecord(pose(3, 2), 1)
	assert.Equal(t, 2.0, k.Position(Head).X)
}
