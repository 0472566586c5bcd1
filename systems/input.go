// Package systems contains ECS systems for the movement pipeline.
package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/freeroam/components"
	"github.com/pthm-cable/freeroam/input"
)

// InputSystem turns held keys into local-space MoveInput intent.
// It runs in the variable phase and never touches Transform.
type InputSystem struct {
	filter   *ecs.Filter2[components.Player, components.MoveInput]
	bindings ecs.Resource[input.Keybindings]
	keys     ecs.Resource[input.ButtonInput]
}

// NewInputSystem creates a new input system.
func NewInputSystem(w *ecs.World) *InputSystem {
	return &InputSystem{
		filter:   ecs.NewFilter2[components.Player, components.MoveInput](w),
		bindings: ecs.NewResource[input.Keybindings](w),
		keys:     ecs.NewResource[input.ButtonInput](w),
	}
}

// Update writes the same normalized intent to every player.
// Without Keybindings or key state it does nothing.
func (s *InputSystem) Update(w *ecs.World) {
	if !s.bindings.Has() || !s.keys.Has() {
		return
	}

	dir := s.bindings.Get().Direction(s.keys.Get().Pressed())

	query := s.filter.Query()
	for query.Next() {
		_, in := query.Get()
		in.Dir = dir
	}
}
