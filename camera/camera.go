// Package camera provides a 3D chase camera that follows the player.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultOffset places the eye behind and above the target.
var DefaultOffset = r3.Vec{X: 0, Y: 6, Z: 10}

// Camera tracks a target point in world space.
type Camera struct {
	// Target is the smoothed look-at point
	Target r3.Vec

	// Offset from target to eye at zoom 1
	Offset r3.Vec

	// Zoom scales Offset (1.0 = default distance, larger = closer)
	Zoom float64

	// Smoothing is the follow rate in 1/s (0 = snap to target)
	Smoothing float64

	// Zoom constraints
	MinZoom, MaxZoom float64
}

// New creates a camera looking at target from offset.
func New(target, offset r3.Vec) *Camera {
	return &Camera{
		Target:    target,
		Offset:    offset,
		Zoom:      1.0,
		Smoothing: 8.0,
		MinZoom:   0.25,
		MaxZoom:   4.0,
	}
}

// Eye returns the camera position in world coordinates.
func (c *Camera) Eye() r3.Vec {
	return r3.Add(c.Target, r3.Scale(1/c.Zoom, c.Offset))
}

// Follow moves the look-at point toward target over dt seconds.
// Smoothing is frame-rate independent.
func (c *Camera) Follow(target r3.Vec, dt float64) {
	if c.Smoothing <= 0 || dt <= 0 {
		if c.Smoothing <= 0 {
			c.Target = target
		}
		return
	}
	alpha := 1 - math.Exp(-c.Smoothing*dt)
	c.Target = r3.Add(c.Target, r3.Scale(alpha, r3.Sub(target, c.Target)))
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// Reset snaps to target with default zoom.
func (c *Camera) Reset(target r3.Vec) {
	c.Target = target
	c.Zoom = 1.0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
