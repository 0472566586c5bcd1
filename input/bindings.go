package input

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Action is a logical movement action.
type Action uint8

const (
	ActionRight Action = iota
	ActionLeft
	ActionUp
	ActionDown
	ActionForward
	ActionBack

	actionCount
)

// actionDirs is the local-space contribution of each action.
// Forward is -Z.
var actionDirs = [actionCount]r3.Vec{
	ActionRight:   {X: 1},
	ActionLeft:    {X: -1},
	ActionUp:      {Y: 1},
	ActionDown:    {Y: -1},
	ActionForward: {Z: -1},
	ActionBack:    {Z: 1},
}

// String returns the action's config name.
func (a Action) String() string {
	switch a {
	case ActionRight:
		return "right"
	case ActionLeft:
		return "left"
	case ActionUp:
		return "up"
	case ActionDown:
		return "down"
	case ActionForward:
		return "forward"
	case ActionBack:
		return "back"
	default:
		return "unknown"
	}
}

// Keybindings maps movement actions to physical keys.
type Keybindings struct {
	Forward Key
	Back    Key
	Left    Key
	Right   Key
	Up      Key
	Down    Key
}

// DefaultKeybindings returns W/S/A/D for the horizontal plane and
// Space/LeftShift for vertical movement.
func DefaultKeybindings() Keybindings {
	return Keybindings{
		Forward: KeyW,
		Back:    KeyS,
		Left:    KeyA,
		Right:   KeyD,
		Up:      KeySpace,
		Down:    KeyLeftShift,
	}
}

// ParseKeybindings builds bindings from action→key-name pairs, starting from
// the defaults. Unknown actions or key names are errors.
func ParseKeybindings(names map[string]string) (Keybindings, error) {
	kb := DefaultKeybindings()
	for action, name := range names {
		k, err := ParseKey(name)
		if err != nil {
			return kb, fmt.Errorf("keybinding %s: %w", action, err)
		}
		switch action {
		case "forward":
			kb.Forward = k
		case "back":
			kb.Back = k
		case "left":
			kb.Left = k
		case "right":
			kb.Right = k
		case "up":
			kb.Up = k
		case "down":
			kb.Down = k
		default:
			return kb, fmt.Errorf("unknown keybinding action %q", action)
		}
	}
	return kb, nil
}

// Action returns the first action bound to k, checked in the order
// right, left, up, down, forward, back.
func (kb *Keybindings) Action(k Key) (Action, bool) {
	switch k {
	case kb.Right:
		return ActionRight, true
	case kb.Left:
		return ActionLeft, true
	case kb.Up:
		return ActionUp, true
	case kb.Down:
		return ActionDown, true
	case kb.Forward:
		return ActionForward, true
	case kb.Back:
		return ActionBack, true
	}
	return 0, false
}

// Keys returns every bound key, in action order.
func (kb *Keybindings) Keys() []Key {
	return []Key{kb.Right, kb.Left, kb.Up, kb.Down, kb.Forward, kb.Back}
}

// Direction sums the contribution of each held key and normalizes the
// result. Opposite actions cancel; the zero vector stays zero.
func (kb *Keybindings) Direction(held []Key) r3.Vec {
	var dir r3.Vec
	for _, k := range held {
		if a, ok := kb.Action(k); ok {
			dir = r3.Add(dir, actionDirs[a])
		}
	}
	return NormalizeOrZero(dir)
}

// NormalizeOrZero returns the unit vector along v, or zero when v has no length.
func NormalizeOrZero(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 || math.IsNaN(n) {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}
