package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/starfield/components"
	"github.com/pthm-cable/starfield/telemetry"
)

// StarPanelData holds everything shown for the selected star.
type StarPanelData struct {
	Star     components.Star
	Velocity components.Velocity
	Glow     components.Glow
	Lifetime *telemetry.LifetimeStats // nil when untracked
	MaxMass  float32                  // scales the mass bar
}

// StarPanel renders the selected-star inspection panel.
type StarPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewStarPanel creates a new star panel.
func NewStarPanel(x, y, width int32) *StarPanel {
	return &StarPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (sp *StarPanel) SetPosition(x, y int32) {
	sp.x = x
	sp.y = y
}

// Draw renders the panel and returns its bottom edge.
func (sp *StarPanel) Draw(data StarPanelData) int32 {
	r := sp.renderer
	padding := r.Theme.Padding
	fields := components.StarFieldDescriptors(data.MaxMass)

	rows := int32(len(fields)) + 2
	if data.Lifetime != nil {
		rows += 5
	}
	height := rows*(r.Theme.LineHeight+2) + padding*2
	r.DrawPanel(sp.x, sp.y, sp.width, height)

	x := sp.x + padding
	y := sp.y + padding
	width := sp.width - padding*2

	rl.DrawText("Selected Star", x, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	group := ""
	for _, fd := range fields {
		if fd.Group != group && group != "" {
			y += 4
		}
		group = fd.Group
		text, value := components.FieldValue(fd, data.Star, data.Velocity, data.Glow)
		y = r.DrawField(x, y, fd, text, value, width)
	}

	if lt := data.Lifetime; lt != nil {
		y = r.DrawSectionHeader(x, y+4, "Lifetime")
		for _, line := range LifetimeLines(lt) {
			y = r.DrawLabelValue(x, y, line[0], line[1])
		}
	}

	return sp.y + height
}
