package components

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Transform is an entity's world translation and orientation.
type Transform struct {
	Translation r3.Vec
	Rotation    r3.Rotation
}

// Identity is the rotation that leaves vectors unchanged.
var Identity = r3.Rotation{Real: 1}

// FromTranslation returns a transform at t with identity rotation.
func FromTranslation(t r3.Vec) Transform {
	return Transform{Translation: t, Rotation: Identity}
}

// Yaw returns a rotation of angle radians about +Y.
// Positive angles turn +X toward -Z.
func Yaw(angle float64) r3.Rotation {
	return r3.NewRotation(angle, r3.Vec{Y: 1})
}

// Orientation returns the transform's rotation.
// The zero value is treated as identity.
func (t Transform) Orientation() r3.Rotation {
	if t.Rotation == (r3.Rotation{}) {
		return Identity
	}
	return t.Rotation
}
