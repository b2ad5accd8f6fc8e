package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsState is the live simulation state shown by the panel.
type ControlsState struct {
	RampRate  float32 // current G drift per second
	RampLimit float32 // slider runs from -RampLimit to +RampLimit
	Steps     int     // ticks per frame
	Paused    bool
}

// ControlsResult reports what the user changed this frame.
type ControlsResult struct {
	RampRate    float32
	Steps       int
	TogglePause bool
	Reset       bool
	ResetCamera bool
}

// ControlsPanel renders the right-side panel with simulation sliders and
// overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point lies on the panel, so clicks on
// it are not treated as star selection.
func (c *ControlsPanel) Contains(px, py float32, overlays *OverlayRegistry) bool {
	if !c.visible {
		return false
	}
	h := c.height(overlays)
	return px >= float32(c.x) && px <= float32(c.x+c.width) &&
		py >= float32(c.y) && py <= float32(c.y+h)
}

func (c *ControlsPanel) height(overlays *OverlayRegistry) int32 {
	r := c.renderer
	rows := int32(0)
	for _, cat := range overlays.Categories() {
		rows += int32(len(overlays.ByCategory(cat))) + 1
	}
	return 190 + rows*r.Theme.LineHeight + r.Theme.Padding*2
}

// Draw renders the panel and returns the user's edits. When hidden the
// state passes through unchanged.
func (c *ControlsPanel) Draw(state ControlsState, overlays *OverlayRegistry) ControlsResult {
	res := ControlsResult{RampRate: state.RampRate, Steps: state.Steps}
	if !c.visible {
		return res
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	inner := float32(c.width - padding*2)

	r.DrawPanel(c.x, c.y, c.width, c.height(overlays))

	x := c.x + padding
	y := c.y + padding
	rl.DrawText("Simulation", x, y, 16, rl.White)
	y += lineHeight + 6

	// G ramp rate
	rl.DrawText(fmt.Sprintf("G ramp: %+.3f /s", state.RampRate), x, y, r.Theme.FontSize, r.Theme.LabelColor)
	y += lineHeight
	res.RampRate = gui.SliderBar(
		rl.Rectangle{X: float32(x + 24), Y: float32(y), Width: inner - 48, Height: 16},
		"-", "+",
		state.RampRate, -state.RampLimit, state.RampLimit,
	)
	y += 22
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: inner, Height: 20}, "Hold G steady") {
		res.RampRate = 0
	}
	y += 28

	// Steps per frame
	rl.DrawText(fmt.Sprintf("Steps/frame: %d", state.Steps), x, y, r.Theme.FontSize, r.Theme.LabelColor)
	y += lineHeight
	steps := gui.SliderBar(
		rl.Rectangle{X: float32(x + 24), Y: float32(y), Width: inner - 48, Height: 16},
		"1", "10",
		float32(state.Steps), 1, 10,
	)
	res.Steps = int(steps + 0.5)
	y += 26

	// Buttons
	half := (inner - 6) / 2
	pauseLabel := "Pause"
	if state.Paused {
		pauseLabel = "Resume"
	}
	res.TogglePause = gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: half, Height: 22}, pauseLabel)
	res.Reset = gui.Button(rl.Rectangle{X: float32(x) + half + 6, Y: float32(y), Width: half, Height: 22}, "Reset field")
	y += 28
	res.ResetCamera = gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: inner, Height: 22}, "Reset camera")
	y += 34

	// Overlay toggles by category
	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight

		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(x, y, desc, overlays.IsEnabled(desc.ID), c.width-padding*2)
			y += lineHeight
		}
	}

	return res
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	// Status indicator
	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	// Key binding (right aligned)
	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "visual":
		return "Visual"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}
