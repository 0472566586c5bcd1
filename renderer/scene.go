// Package renderer draws the 3D debug view of the simulation.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/freeroam/camera"
)

// Scene renders a ground grid and one cube per player.
type Scene struct {
	Camera *camera.Camera

	GridSlices  int32
	GridSpacing float32
	CubeSize    float32
	// VelocityScale sets the length of the velocity line in seconds of travel.
	VelocityScale float32
}

// NewScene creates a scene following cam.
func NewScene(cam *camera.Camera) *Scene {
	return &Scene{
		Camera:        cam,
		GridSlices:    40,
		GridSpacing:   1,
		CubeSize:      1,
		VelocityScale: 0.5,
	}
}

// Begin starts 3D mode with the scene camera. Must be paired with End.
func (s *Scene) Begin() {
	rl.BeginMode3D(rl.Camera3D{
		Position:   toRL(s.Camera.Eye()),
		Target:     toRL(s.Camera.Target),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       45,
		Projection: rl.CameraPerspective,
	})
	rl.DrawGrid(s.GridSlices, s.GridSpacing)
}

// DrawPlayer draws a cube at pos with a line along vel.
func (s *Scene) DrawPlayer(pos, vel r3.Vec) {
	p := toRL(pos)
	rl.DrawCube(p, s.CubeSize, s.CubeSize, s.CubeSize, rl.SkyBlue)
	rl.DrawCubeWires(p, s.CubeSize, s.CubeSize, s.CubeSize, rl.DarkBlue)
	if vel != (r3.Vec{}) {
		end := r3.Add(pos, r3.Scale(float64(s.VelocityScale), vel))
		rl.DrawLine3D(p, toRL(end), rl.Orange)
	}
}

// End leaves 3D mode.
func (s *Scene) End() {
	rl.EndMode3D()
}

func toRL(v r3.Vec) rl.Vector3 {
	return rl.NewVector3(float32(v.X), float32(v.Y), float32(v.Z))
}
