// Package platform polls raylib for keyboard state.
package platform

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/freeroam/input"
)

// Keyboard samples a fixed set of keys from the raylib window.
type Keyboard struct {
	keys []input.Key
}

// NewKeyboard watches every key in kb.
func NewKeyboard(kb input.Keybindings) *Keyboard {
	return &Keyboard{keys: kb.Keys()}
}

// Poll refreshes state with the current down state of each watched key.
// Must be called from the goroutine that owns the window.
func (k *Keyboard) Poll(state *input.ButtonInput) {
	for _, key := range k.keys {
		state.Set(key, rl.IsKeyDown(int32(key)))
	}
}

// Pressed reports whether key went down this frame.
func Pressed(key input.Key) bool {
	return rl.IsKeyPressed(int32(key))
}
