package ui

import (
	"fmt"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/freeroam/systems"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title      string
	Frames     uint64
	FixedSteps uint64
	Dropped    uint64
	Elapsed    time.Duration
	Overstep   float64 // fraction of a fixed step carried to the next frame
	FPS        int32
	Paused     bool
	Position   r3.Vec
	Velocity   r3.Vec
	Input      string // held movement keys
}

// HUD renders the main heads-up display.
type HUD struct {
	theme Theme
}

// NewHUD creates a HUD with the default theme.
func NewHUD() *HUD {
	return &HUD{theme: DefaultTheme()}
}

// Draw renders the HUD and reports whether the pause button was clicked.
func (h *HUD) Draw(data HUDData) (togglePause bool) {
	x, y := int32(10), int32(10)

	rl.DrawText(data.Title, x, y, 20, rl.White)
	y += 28

	drawBox(h.theme, x, y, 300, 150)
	col := column{theme: h.theme, x: x + h.theme.Padding, y: y + h.theme.Padding}

	col.field("Frame", fmt.Sprintf("%d (%d fps)", data.Frames, data.FPS))
	col.field("Fixed steps", fmt.Sprintf("%d  t=%s", data.FixedSteps, data.Elapsed.Round(time.Millisecond)))
	dropped := h.theme.ValueColor
	if data.Dropped > 0 {
		dropped = h.theme.WarnColor
	}
	col.fieldColor("Dropped", fmt.Sprintf("%d", data.Dropped), dropped)
	col.field("Overstep", fmt.Sprintf("%.2f", data.Overstep))
	col.field("Position", formatVec(data.Position))
	col.field("Velocity", formatVec(data.Velocity))
	col.field("Keys", data.Input)
	y = col.y

	label := "Pause"
	if data.Paused {
		label = "Resume"
	}
	y += 8
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: 120, Height: 30}, label) {
		togglePause = true
	}
	if data.Paused {
		rl.DrawText("PAUSED", x+130, y+8, 16, rl.Yellow)
	}
	return togglePause
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// SchedulePanel lists systems per phase in execution order.
type SchedulePanel struct {
	theme Theme
	x, y  int32
}

// NewSchedulePanel creates a new schedule panel.
func NewSchedulePanel(x, y int32) *SchedulePanel {
	return &SchedulePanel{theme: DefaultTheme(), x: x, y: y}
}

// SetPosition updates the panel position.
func (p *SchedulePanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// SchedulePanelData holds phase orders and the last frame's timings.
type SchedulePanelData struct {
	Phases   []string            // phase names in run order
	Order    map[string][]string // system ids per phase
	Timings  map[string]time.Duration
	Registry *systems.SystemRegistry
}

// Draw renders the schedule panel.
func (p *SchedulePanel) Draw(data SchedulePanelData) {
	col := column{theme: p.theme, x: p.x, y: p.y}

	col.header("Schedule")
	for _, phase := range data.Phases {
		header := phase
		if d, ok := data.Timings[phase]; ok {
			header = fmt.Sprintf("%s  %s", phase, d.Round(time.Microsecond))
		}
		col.text(header, p.theme.SectionHeader)

		for i, id := range data.Order[phase] {
			name := id
			if data.Registry != nil {
				name = data.Registry.GetName(id)
			}
			col.text(fmt.Sprintf("  %d. %s", i+1, name), p.theme.LabelColor)
		}
	}
}

func formatVec(v r3.Vec) string {
	return fmt.Sprintf("%6.2f %6.2f %6.2f", v.X, v.Y, v.Z)
}
