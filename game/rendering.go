package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/starfield/systems"
	"github.com/pthm-cable/starfield/ui"
)

const controlsLegend = "[Space] pause  [</>] speed  [Arrows/RMB] pan  [Wheel/Z/X] zoom  [Home] camera  [Tab] panel  [Backspace] reset"

// velocityArrowSec is how far ahead velocity arrows reach, in seconds.
const velocityArrowSec = 2.0

// Draw renders the game.
func (g *Game) Draw() {
	g.perfCollector.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	if g.overlays.IsEnabled(ui.OverlayRings) {
		g.background.Draw(g.camera)
	}

	// Debug overlays are drawn under the stars
	if g.overlays.IsEnabled(ui.OverlayGrid) {
		g.gridOverlay.Draw(g.camera, g.universe.Grid())
	}

	g.drawStars()

	if g.overlays.IsEnabled(ui.OverlayVelocity) {
		g.drawVelocities()
	}
	if g.overlays.IsEnabled(ui.OverlayFlashes) {
		g.particleRenderer.Draw(g.camera, g.flashes)
	}

	g.drawSelection()

	u := g.universe
	heaviestID, heaviest := g.lifetimeTracker.Heaviest()
	hud := ui.HUDData{
		Tick:       u.Tick(),
		SimTimeSec: float64(u.Tick()) * g.dt,
		Live:       u.LiveCount(),
		Spawned:    g.spawned,
		G:          u.G(),
		RampRate:   u.Params().RampRatePerSecond,
		Steps:      g.stepsPerUpdate,
		FPS:        rl.GetFPS(),
		Zoom:       g.camera.Zoom,
		Paused:     g.paused,
	}
	if heaviest != nil {
		hud.HasHeaviest = true
		hud.HeaviestID = int32(heaviestID)
		hud.HeaviestPeak = heaviest.PeakMass
	}
	g.hud.Draw(hud)

	res := g.controls.Draw(ui.ControlsState{
		RampRate:  float32(u.Params().RampRatePerSecond),
		RampLimit: rampSliderLimit(g.params),
		Steps:     g.stepsPerUpdate,
		Paused:    g.paused,
	}, g.overlays)
	g.applyControls(res)

	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.Draw(g.perfCollector.Stats())
	}

	g.hud.DrawControls(int32(g.screenHeight), controlsLegend)

	rl.EndDrawing()
}

// drawStars renders every mirrored star.
func (g *Game) drawStars() {
	showGlow := g.overlays.IsEnabled(ui.OverlayGlow)

	query := g.starFilter.Query()
	for query.Next() {
		pos, _, star, glow := query.Get()
		pulse := float32(0)
		if showGlow {
			pulse = glow.Intensity*0.5 + glow.Pulse
		}
		g.starRenderer.DrawStar(g.camera, pos.X, pos.Y, star.Radius, star.Band, pulse)
	}
}

// drawVelocities draws a short arrow along each visible star's velocity.
func (g *Game) drawVelocities() {
	color := rl.Color{R: 120, G: 220, B: 140, A: 160}

	query := g.starFilter.Query()
	for query.Next() {
		pos, vel, star, _ := query.Get()
		if !g.camera.IsVisible(pos.X, pos.Y, star.Radius) {
			continue
		}
		x0, y0 := g.camera.WorldToScreen(pos.X, pos.Y)
		x1, y1 := g.camera.WorldToScreen(pos.X+vel.X*velocityArrowSec, pos.Y+vel.Y*velocityArrowSec)
		rl.DrawLineV(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, color)
	}
}

// drawSelection highlights the selected star and shows its panel.
func (g *Game) drawSelection() {
	id, ok := g.Selected()
	if !ok {
		return
	}
	e, ok := g.entities[id]
	if !ok || !g.world.Alive(e) {
		return
	}

	pos, vel, star, glow := g.starMapper.Get(e)
	g.starRenderer.DrawSelection(g.camera, pos.X, pos.Y, star.Radius)

	maxMass := float32(g.universe.LiveMassRange().Max)
	g.starPanel.Draw(ui.StarPanelData{
		Star:     *star,
		Velocity: *vel,
		Glow:     *glow,
		Lifetime: g.lifetimeTracker.Get(id),
		MaxMass:  maxMass,
	})
}

// applyControls applies edits made on the control panel.
func (g *Game) applyControls(res ui.ControlsResult) {
	// The slider works in float32; only a real edit replaces the rate.
	if res.RampRate != float32(g.universe.Params().RampRatePerSecond) {
		g.universe.SetRampRate(float64(res.RampRate))
	}
	g.stepsPerUpdate = max(1, min(res.Steps, 10))
	if res.TogglePause {
		g.paused = !g.paused
	}
	if res.Reset {
		g.RequestReset()
	}
	if res.ResetCamera {
		g.camera.Reset()
	}
}

// rampSliderLimit picks a ramp slider range that reaches the G clamp in
// ten seconds, or ±1/s when G is unclamped.
func rampSliderLimit(p systems.Params) float32 {
	if p.MaxAbsGravitationalConstant > 0 {
		return float32(p.MaxAbsGravitationalConstant / 10)
	}
	return 1
}
