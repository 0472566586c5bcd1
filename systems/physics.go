package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/freeroam/components"
	"github.com/pthm-cable/freeroam/schedule"
)

// VelocitySystem converts local intent into world-space velocity.
//
// Reads MoveInput, MoveSpeed and Transform.Rotation of players; writes Velocity.
// Must run before IntegrateSystem in the same fixed step.
type VelocitySystem struct {
	filter *ecs.Filter5[components.Player, components.MoveInput, components.MoveSpeed, components.Transform, components.Velocity]
}

// NewVelocitySystem creates a new velocity system.
func NewVelocitySystem(w *ecs.World) *VelocitySystem {
	return &VelocitySystem{
		filter: ecs.NewFilter5[components.Player, components.MoveInput, components.MoveSpeed, components.Transform, components.Velocity](w),
	}
}

// Update runs the velocity system.
func (s *VelocitySystem) Update(w *ecs.World) {
	query := s.filter.Query()
	for query.Next() {
		_, in, speed, tr, vel := query.Get()
		vel.Vec = ResolveVelocity(in.Dir, speed.Value, tr.Orientation())
	}
}

// ResolveVelocity rotates local intent into world space and scales it by speed.
func ResolveVelocity(dir r3.Vec, speed float64, rot r3.Rotation) r3.Vec {
	return r3.Scale(speed, rot.Rotate(dir))
}

// IntegrateSystem advances translation by velocity over the fixed step.
// It is the only writer of Transform.Translation for players; other
// bodies are left to whatever system owns them.
type IntegrateSystem struct {
	filter *ecs.Filter3[components.Player, components.Velocity, components.Transform]
	clock  ecs.Resource[schedule.FixedClock]
}

// NewIntegrateSystem creates a new integration system.
func NewIntegrateSystem(w *ecs.World) *IntegrateSystem {
	return &IntegrateSystem{
		filter: ecs.NewFilter3[components.Player, components.Velocity, components.Transform](w),
		clock:  ecs.NewResource[schedule.FixedClock](w),
	}
}

// Update runs the integration system. A zero Δt leaves positions unchanged.
func (s *IntegrateSystem) Update(w *ecs.World) {
	if !s.clock.Has() {
		return
	}
	dt := s.clock.Get().DeltaSecs()
	if dt == 0 {
		return
	}

	query := s.filter.Query()
	for query.Next() {
		_, vel, tr := query.Get()
		tr.Translation = r3.Add(tr.Translation, r3.Scale(dt, vel.Vec))
	}
}
