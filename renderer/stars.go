package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/starfield/camera"
)

// minScreenRadius keeps distant stars visible when zoomed out.
const minScreenRadius = 1.0

// StarRenderer draws stars as filled discs with a soft halo.
type StarRenderer struct {
	palette   *Palette
	glowScale float32
}

// NewStarRenderer creates a star renderer.
func NewStarRenderer(palette *Palette, glowScale float32) *StarRenderer {
	return &StarRenderer{palette: palette, glowScale: glowScale}
}

// Palette returns the band palette.
func (r *StarRenderer) Palette() *Palette {
	return r.palette
}

// DrawStar draws one star. radius is in world units, glow in [0, 1+].
func (r *StarRenderer) DrawStar(cam *camera.Camera, x, y, radius float32, band uint8, glow float32) {
	haloR := radius * r.glowScale * (1 + glow)
	if !cam.IsVisible(x, y, haloR) {
		return
	}

	sx, sy := cam.WorldToScreen(x, y)
	screenR := max(radius*cam.Zoom, minScreenRadius)
	color := r.palette.Color(band)

	if r.glowScale > 0 {
		halo := color
		halo.A = uint8(min(60+glow*120, 255))
		outer := color
		outer.A = 0
		rl.DrawCircleGradient(int32(sx), int32(sy), max(haloR*cam.Zoom, screenR), halo, outer)
	}
	rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, screenR, color)
}

// DrawSelection outlines the selected star.
func (r *StarRenderer) DrawSelection(cam *camera.Camera, x, y, radius float32) {
	sx, sy := cam.WorldToScreen(x, y)
	screenR := max(radius*cam.Zoom, minScreenRadius) + 4
	rl.DrawCircleLines(int32(sx), int32(sy), screenR, rl.Yellow)
}
