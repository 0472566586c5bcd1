// Package components defines ECS components for the movement pipeline.
package components

import "gonum.org/v1/gonum/spatial/r3"

// Coordinate conventions:
//   - +X: right
//   - +Y: up
//   - -Z: forward

// Player tags a user-controlled entity.
type Player struct{}

// MoveSpeed is movement speed in world units per second.
type MoveSpeed struct {
	Value float64
}

// MoveInput is the local-space movement intent produced by input.
// It is either the zero vector or unit length. It is never applied to
// position directly; the fixed phase turns it into a Velocity.
type MoveInput struct {
	Dir r3.Vec
}

// Velocity is world-space velocity in units per second for the current
// fixed step. It is recomputed every step, not accumulated.
type Velocity struct {
	Vec r3.Vec
}

// PlayerBundle holds every component a controllable entity needs.
// Intent and velocity are present from spawn so that a later physics
// integrator can replace the translation writer without touching spawn code.
type PlayerBundle struct {
	Player    Player
	Speed     MoveSpeed
	Input     MoveInput
	Velocity  Velocity
	Transform Transform
}

// NewPlayerBundle returns a bundle at spawn with zero intent, zero velocity
// and identity rotation.
func NewPlayerBundle(spawn r3.Vec, speed float64) PlayerBundle {
	return PlayerBundle{
		Speed:     MoveSpeed{Value: speed},
		Transform: FromTranslation(spawn),
	}
}
