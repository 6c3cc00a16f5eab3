package body

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Projection maps sensor-space joint positions into presentation space with a
// per-axis scale and offset. Depth is replaced by the caller's z.
type Projection struct {
	Scale  r2.Vec
	Offset r2.Vec
}

// IdentityProjection passes X and Y through unchanged.
func IdentityProjection() Projection {
	return Projection{Scale: r2.Vec{X: 1, Y: 1}}
}

// Project returns (X*Scale.X+Offset.X, Y*Scale.Y+Offset.Y, z).
func (p Projection) Project(pos Vec3, z float64) Vec3 {
	return Vec3{
		X: pos.X*p.Scale.X + p.Offset.X,
		Y: pos.Y*p.Scale.Y + p.Offset.Y,
		Z: z,
	}
}

// ProjectJoint applies a uniform scale to X and Y and overrides Z.
func ProjectJoint(pos Vec3, scale, z float64) Vec3 {
	return Projection{Scale: r2.Vec{X: scale, Y: scale}}.Project(pos, z)
}
