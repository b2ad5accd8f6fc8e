package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/starfield/camera"
)

// BackgroundRenderer draws a dark backdrop with a faint glow around the
// origin and guide rings for the spawn disk and despawn limit.
type BackgroundRenderer struct {
	baseColor     rl.Color
	spawnRadius   float32
	despawnRadius float32
}

// NewBackgroundRenderer creates a background renderer. A zero radius hides
// its ring.
func NewBackgroundRenderer(spawnRadius, despawnRadius float32, baseR, baseG, baseB uint8) *BackgroundRenderer {
	return &BackgroundRenderer{
		baseColor:     rl.Color{R: baseR, G: baseG, B: baseB, A: 255},
		spawnRadius:   spawnRadius,
		despawnRadius: despawnRadius,
	}
}

// Draw renders the background. Call after ClearBackground.
func (b *BackgroundRenderer) Draw(cam *camera.Camera) {
	rl.DrawRectangle(0, 0, int32(cam.ViewportW), int32(cam.ViewportH), b.baseColor)

	ox, oy := cam.WorldToScreen(0, 0)
	if b.spawnRadius > 0 {
		inner := rl.Color{R: 40, G: 50, B: 90, A: 70}
		outer := rl.Color{R: 40, G: 50, B: 90, A: 0}
		rl.DrawCircleGradient(int32(ox), int32(oy), b.spawnRadius*cam.Zoom*1.5, inner, outer)
		rl.DrawCircleLines(int32(ox), int32(oy), b.spawnRadius*cam.Zoom, rl.Color{R: 70, G: 80, B: 120, A: 60})
	}
	if b.despawnRadius > 0 {
		rl.DrawCircleLines(int32(ox), int32(oy), b.despawnRadius*cam.Zoom, rl.Color{R: 140, G: 60, B: 60, A: 80})
	}
}
