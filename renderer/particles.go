package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/starfield/camera"
)

// FlashKind identifies what produced a flash.
type FlashKind uint8

const (
	FlashAbsorb FlashKind = iota
	FlashAnnihilate
)

// Flash is a short-lived ring drawn where a collision happened.
type Flash struct {
	X, Y    float32
	Size    float32 // world units at full life
	Life    float32
	MaxLife float32
	Kind    FlashKind
}

// UpdateFlashes ages flashes by dt and drops expired ones in place.
func UpdateFlashes(flashes []Flash, dt float32) []Flash {
	live := flashes[:0]
	for _, f := range flashes {
		f.Life -= dt
		if f.Life > 0 {
			live = append(live, f)
		}
	}
	return live
}

// ParticleRenderer renders collision flashes.
type ParticleRenderer struct{}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer() *ParticleRenderer {
	return &ParticleRenderer{}
}

// Draw renders all flashes.
func (r *ParticleRenderer) Draw(cam *camera.Camera, flashes []Flash) {
	for i := range flashes {
		f := &flashes[i]
		if !cam.IsVisible(f.X, f.Y, f.Size) {
			continue
		}

		lifeRatio := f.Life / f.MaxLife

		var color rl.Color
		switch f.Kind {
		case FlashAnnihilate:
			// White-hot
			color = rl.Color{R: 255, G: 240, B: 220, A: uint8(lifeRatio * 220)}
		default:
			// Amber
			color = rl.Color{R: 255, G: 170, B: 60, A: uint8(lifeRatio * 160)}
		}

		// Rings expand as they fade
		size := f.Size * (1.5 - lifeRatio) * cam.Zoom
		if size < 0.5 {
			size = 0.5
		}
		sx, sy := cam.WorldToScreen(f.X, f.Y)
		rl.DrawCircleLines(int32(sx), int32(sy), size, color)
	}
}
