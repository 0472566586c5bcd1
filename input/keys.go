// Package input holds the platform-independent keyboard model: key codes,
// movement keybindings and the held-key state sampled each frame.
package input

import (
	"fmt"
	"sort"
	"strings"
)

// Key is a keyboard key code. Values match raylib (GLFW) key codes so the
// platform layer can pass them through unchanged.
type Key int32

// Keys used by bindings and config files.
const (
	KeyNull       Key = 0
	KeySpace      Key = 32
	KeyA          Key = 65
	KeyD          Key = 68
	KeyE          Key = 69
	KeyP          Key = 80
	KeyQ          Key = 81
	KeyS          Key = 83
	KeyW          Key = 87
	KeyRight      Key = 262
	KeyLeft       Key = 263
	KeyDown       Key = 264
	KeyUp         Key = 265
	KeyLeftShift  Key = 340
	KeyLeftCtrl   Key = 341
	KeyRightShift Key = 344
	KeyRightCtrl  Key = 345
)

var keyNames = map[string]Key{
	"space":       KeySpace,
	"a":           KeyA,
	"d":           KeyD,
	"e":           KeyE,
	"p":           KeyP,
	"q":           KeyQ,
	"s":           KeyS,
	"w":           KeyW,
	"right":       KeyRight,
	"left":        KeyLeft,
	"down":        KeyDown,
	"up":          KeyUp,
	"shift":       KeyLeftShift,
	"leftshift":   KeyLeftShift,
	"leftctrl":    KeyLeftCtrl,
	"rightshift":  KeyRightShift,
	"rightctrl":   KeyRightCtrl,
	"arrowright":  KeyRight,
	"arrowleft":   KeyLeft,
	"arrowdown":   KeyDown,
	"arrowup":     KeyUp,
	"ctrl":        KeyLeftCtrl,
	"leftcontrol": KeyLeftCtrl,
}

// ParseKey resolves a case-insensitive key name such as "W", "Space" or
// "LeftShift". Single letters A-Z map to their ASCII code.
func ParseKey(name string) (Key, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if k, ok := keyNames[n]; ok {
		return k, nil
	}
	if len(n) == 1 && n[0] >= 'a' && n[0] <= 'z' {
		return Key(n[0] - 'a' + 'A'), nil
	}
	return KeyNull, fmt.Errorf("unknown key %q", name)
}

// ParseKeys resolves a comma-separated list of key names.
func ParseKeys(list string) ([]Key, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	parts := strings.Split(list, ",")
	keys := make([]Key, 0, len(parts))
	for _, p := range parts {
		k, err := ParseKey(p)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// String returns the canonical name of k.
func (k Key) String() string {
	if k >= 'A' && k <= 'Z' {
		return string(rune(k))
	}
	switch k {
	case KeySpace:
		return "Space"
	case KeyRight:
		return "Right"
	case KeyLeft:
		return "Left"
	case KeyDown:
		return "Down"
	case KeyUp:
		return "Up"
	case KeyLeftShift:
		return "LeftShift"
	case KeyLeftCtrl:
		return "LeftCtrl"
	case KeyRightShift:
		return "RightShift"
	case KeyRightCtrl:
		return "RightCtrl"
	}
	return fmt.Sprintf("Key(%d)", int32(k))
}

// ButtonInput is the set of keys held during the current frame.
type ButtonInput struct {
	held map[Key]struct{}
}

// NewButtonInput returns an empty key state.
func NewButtonInput() *ButtonInput {
	return &ButtonInput{held: make(map[Key]struct{})}
}

// Press marks k as held.
func (b *ButtonInput) Press(k Key) {
	if b.held == nil {
		b.held = make(map[Key]struct{})
	}
	b.held[k] = struct{}{}
}

// Release marks k as not held.
func (b *ButtonInput) Release(k Key) {
	delete(b.held, k)
}

// ReleaseAll clears every held key.
func (b *ButtonInput) ReleaseAll() {
	clear(b.held)
}

// Set presses or releases k.
func (b *ButtonInput) Set(k Key, down bool) {
	if down {
		b.Press(k)
	} else {
		b.Release(k)
	}
}

// IsDown reports whether k is held.
func (b *ButtonInput) IsDown(k Key) bool {
	_, ok := b.held[k]
	return ok
}

// Pressed returns the held keys in ascending key-code order.
func (b *ButtonInput) Pressed() []Key {
	keys := make([]Key, 0, len(b.held))
	for k := range b.held {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
