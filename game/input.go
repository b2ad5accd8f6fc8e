package game

import (
	"log/slog"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// keyZoomRate scales camera.zoom_sensitivity into a per-second zoom rate
// for the held Z/X keys.
const keyZoomRate = 10.0

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		g.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyBackspace) {
		g.RequestReset()
	}
	if rl.IsKeyPressed(rl.KeyS) && g.snapshotDir != "" {
		if path, err := g.SaveSnapshot(); err != nil {
			slog.Error("failed to save snapshot", "error", err)
		} else {
			slog.Info("snapshot saved", "path", path, "tick", g.Tick())
		}
	}

	// Overlay toggles
	for _, key := range g.overlays.Keys() {
		if rl.IsKeyPressed(key) {
			g.overlays.HandleKeyPress(key)
		}
	}

	// Camera controls
	g.handleCameraInput()

	// Selection
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		mouse := rl.GetMousePosition()
		if !g.controls.Contains(mouse.X, mouse.Y, g.overlays) {
			g.selectAt(mouse.X, mouse.Y)
		}
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	g.controls.SetPosition(int32(w)-230, 10)
	g.perfPanel.SetPosition(int32(w)-480, 16)
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	cam := g.camera
	cfg := g.cfg.Camera
	frameTime := rl.GetFrameTime()

	// Arrow key panning in screen pixels per second
	panStep := float32(cfg.PanSpeed) * frameTime
	if rl.IsKeyDown(rl.KeyRight) {
		cam.Pan(panStep, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		cam.Pan(-panStep, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		cam.Pan(0, panStep)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		cam.Pan(0, -panStep)
	}

	// Right-drag pans
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		cam.Pan(-d.X, -d.Y)
	}

	// Mouse wheel zooms toward the cursor
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		mouse := rl.GetMousePosition()
		cam.ZoomAt(1+wheel*float32(cfg.ZoomSensitivity), mouse.X, mouse.Y)
	}

	// Held Z/X zoom smoothly
	rate := cfg.ZoomSensitivity * keyZoomRate * float64(frameTime)
	if rl.IsKeyDown(rl.KeyZ) {
		cam.ZoomBy(float32(math.Exp(rate)))
	}
	if rl.IsKeyDown(rl.KeyX) {
		cam.ZoomBy(float32(math.Exp(-rate)))
	}

	// Keyboard zoom with +/- (= and - keys)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		cam.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		cam.ZoomBy(0.8)
	}

	// Home key to reset camera
	if rl.IsKeyPressed(rl.KeyHome) {
		cam.Reset()
	}
}
