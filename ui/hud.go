package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/starfield/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Tick       int32
	SimTimeSec float64
	Live       int
	Spawned    int
	G          float64
	RampRate   float64
	Steps      int
	FPS        int32
	Zoom       float32
	Paused     bool

	// Heaviest tracked star by peak mass, if any
	HasHeaviest  bool
	HeaviestID   int32
	HeaviestPeak float64
}

// HUD renders the main heads-up display.
type HUD struct{}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{}
}

// Lines returns the HUD text, one entry per row.
func (h *HUD) Lines(data HUDData) []string {
	lines := []string{
		fmt.Sprintf("Tick: %d  (%.1fs)", data.Tick, data.SimTimeSec),
		fmt.Sprintf("Stars: %d / %d", data.Live, data.Spawned),
		fmt.Sprintf("G: %.4f  ramp %+.3f/s", data.G, data.RampRate),
		fmt.Sprintf("Speed: %dx  [</>]  FPS: %d  Zoom: %.2f", data.Steps, data.FPS, data.Zoom),
	}
	if data.HasHeaviest {
		lines = append(lines, fmt.Sprintf("Heaviest: #%d  peak %.2f", data.HeaviestID, data.HeaviestPeak))
	}
	return lines
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	y := int32(10)
	for i, line := range h.Lines(data) {
		size := int32(16)
		if i == 0 {
			size = 20
		}
		rl.DrawText(line, 10, y, size, rl.White)
		y += size + 5
	}
	if data.Paused {
		rl.DrawText("PAUSED", 10, y, 20, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders per-phase tick timing.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x, y := p.x, p.y
	p.renderer.DrawPanel(x-6, y-6, 250, int32(len(telemetry.AllPhases))*14+50)

	rl.DrawText("Phase Timing", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Tick: %s  TPS: %.0f", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond), x, y, 12, rl.Yellow)
	y += 16

	for _, phase := range telemetry.AllPhases {
		pct := stats.PhasePct[phase]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-11s %8s %5.1f%%", phase, stats.PhaseAvg[phase].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
