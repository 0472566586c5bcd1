package systems

import (
	"errors"
	"fmt"
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/freeroam/components"
)

// ErrInvalidSpeed is returned when a player is spawned with a negative or NaN speed.
var ErrInvalidSpeed = errors.New("move speed must be a non-negative number")

// PlayerSpawner creates controllable entities.
type PlayerSpawner struct {
	mapper *ecs.Map5[
		components.Player,
		components.MoveSpeed,
		components.MoveInput,
		components.Velocity,
		components.Transform,
	]
}

// NewPlayerSpawner creates a spawner for w.
func NewPlayerSpawner(w *ecs.World) *PlayerSpawner {
	return &PlayerSpawner{
		mapper: ecs.NewMap5[
			components.Player,
			components.MoveSpeed,
			components.MoveInput,
			components.Velocity,
			components.Transform,
		](w),
	}
}

// Spawn creates a player at translation moving at speed units per second.
// The entity starts with zero intent, zero velocity and identity rotation.
func (s *PlayerSpawner) Spawn(translation r3.Vec, speed float64) (ecs.Entity, error) {
	return s.SpawnAt(components.FromTranslation(translation), speed)
}

// SpawnAt is Spawn with an explicit starting transform.
func (s *PlayerSpawner) SpawnAt(tr components.Transform, speed float64) (ecs.Entity, error) {
	if speed < 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return ecs.Entity{}, fmt.Errorf("spawning player with speed %v: %w", speed, ErrInvalidSpeed)
	}
	b := components.NewPlayerBundle(tr.Translation, speed)
	b.Transform = tr
	return s.SpawnBundle(&b), nil
}

// SpawnBundle creates an entity from b as given.
func (s *PlayerSpawner) SpawnBundle(b *components.PlayerBundle) ecs.Entity {
	return s.mapper.NewEntity(&b.Player, &b.Speed, &b.Input, &b.Velocity, &b.Transform)
}

// SpawnSystem is a startup system that spawns one player from fixed settings.
type SpawnSystem struct {
	spawner *PlayerSpawner
	At      r3.Vec
	Yaw     float64 // radians about +Y
	Speed   float64

	spawned []ecs.Entity
	err     error
}

// NewSpawnSystem creates a startup system spawning a player at at.
func NewSpawnSystem(w *ecs.World, at r3.Vec, speed float64) *SpawnSystem {
	return &SpawnSystem{spawner: NewPlayerSpawner(w), At: at, Speed: speed}
}

// Update spawns the player. Errors are kept for Err since systems cannot fail.
func (s *SpawnSystem) Update(w *ecs.World) {
	tr := components.FromTranslation(s.At)
	if s.Yaw != 0 {
		tr.Rotation = components.Yaw(s.Yaw)
	}
	e, err := s.spawner.SpawnAt(tr, s.Speed)
	if err != nil {
		s.err = err
		return
	}
	s.spawned = append(s.spawned, e)
}

// Spawned returns the entities created so far.
func (s *SpawnSystem) Spawned() []ecs.Entity { return s.spawned }

// Err returns the last spawn error.
func (s *SpawnSystem) Err() error { return s.err }
