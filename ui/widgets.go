package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// column is a cursor that stacks text rows downward from (x, y).
type column struct {
	theme Theme
	x, y  int32
}

func (c *column) header(title string) {
	rl.DrawText(title, c.x, c.y, c.theme.HeaderFontSize, c.theme.SectionHeader)
	c.y += c.theme.LineHeight
}

func (c *column) text(s string, color rl.Color) {
	rl.DrawText(s, c.x, c.y, c.theme.FontSize, color)
	c.y += c.theme.LineHeight
}

func (c *column) field(label, value string) {
	c.fieldColor(label, value, c.theme.ValueColor)
}

// fieldColor draws "label:" with value aligned at LabelWidth.
func (c *column) fieldColor(label, value string, color rl.Color) {
	rl.DrawText(label+":", c.x, c.y, c.theme.FontSize, c.theme.LabelColor)
	rl.DrawText(value, c.x+c.theme.LabelWidth, c.y, c.theme.FontSize, color)
	c.y += c.theme.LineHeight
}

func drawBox(t Theme, x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, t.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, t.PanelBorder)
}
