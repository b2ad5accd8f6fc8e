// Grid preview tool - interactive view of spatial grid occupancy with sliders.
//
// Usage: go run ./cmd/gridpreview
package main

import (
	"fmt"
	"image/color"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"
	gui "github.com/gen2brain/raylib-go/raygui"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/starfield/config"
	"github.com/pthm-cable/starfield/game"
	"github.com/pthm-cable/starfield/systems"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
)

// PreviewParams holds the field and grid settings under preview.
type PreviewParams struct {
	Subdivisions int
	StarCount    int
	SpawnRange   float32
	G            float32
	Seed         int64
}

func defaultParams(cfg *config.Config) PreviewParams {
	return PreviewParams{
		Subdivisions: cfg.Grid.Subdivisions,
		StarCount:    cfg.Simulation.StarCount,
		SpawnRange:   float32(cfg.Simulation.MaxSpawnRange),
		G:            float32(cfg.Gravity.Constant),
		Seed:         1,
	}
}

// preview owns the universe being inspected and its occupancy grid.
type preview struct {
	cfg       *config.Config
	universe  *systems.Universe
	grid      *systems.SpatialGrid
	occupancy []int
	placed    int
}

func (p *preview) respawn(params PreviewParams) error {
	if p.universe != nil {
		p.universe.Close()
	}

	sp := p.cfg.Params()
	sp.GridSubdivisions = params.Subdivisions
	sp.GravitationalConstant = float64(params.G)
	sp.Workers = 1
	u, err := systems.NewUniverse(sp)
	if err != nil {
		return err
	}
	p.universe = u

	spec := game.FieldSpecFromConfig(p.cfg)
	spec.Count = params.StarCount
	spec.Radius = float64(params.SpawnRange)
	// An exhausted field is still worth looking at
	p.placed, _ = game.SpawnField(u, rand.New(rand.NewSource(params.Seed)), spec, nil)

	p.grid = systems.NewSpatialGrid(params.Subdivisions)
	p.rebuild()
	return nil
}

func (p *preview) rebuild() {
	u := p.universe
	p.grid.Build(u.Bounds(), u.BodyCount())
	u.Each(func(id systems.BodyID, pos, _ r2.Vec, _ float64) {
		p.grid.Insert(id, pos)
	})
	p.occupancy = p.grid.Occupancy(p.occupancy)
}

func (p *preview) step(dt float64) {
	p.universe.Step(dt)
	p.rebuild()
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	rl.InitWindow(windowWidth, windowHeight, "Grid Occupancy Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := defaultParams(cfg)
	p := &preview{cfg: cfg}
	if err := p.respawn(params); err != nil {
		panic(err)
	}
	defer func() { p.universe.Close() }()

	texSize := params.Subdivisions
	texture := newTexture(texSize)
	defer func() { rl.UnloadTexture(texture) }()

	animating := false
	needsRespawn := false
	showStars := true

	for !rl.WindowShouldClose() {
		if needsRespawn {
			if err := p.respawn(params); err != nil {
				panic(err)
			}
			needsRespawn = false
		}
		if animating {
			p.step(cfg.Simulation.DT)
		}
		if p.grid.Subdivisions() != texSize {
			rl.UnloadTexture(texture)
			texSize = p.grid.Subdivisions()
			texture = newTexture(texSize)
		}
		updateTexture(texture, p.occupancy)

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Draw preview
		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(texSize), Height: float32(texSize)},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		if showStars {
			drawStars(p)
		}
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		// Draw stats
		var occupied, peak int
		for _, c := range p.occupancy {
			if c > 0 {
				occupied++
			}
			peak = max(peak, c)
		}
		u := p.universe
		cs := p.grid.CellSize()
		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Stars: %d live / %d placed / %d requested", u.LiveCount(), p.placed, params.StarCount), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Cells: %d occupied of %d  Peak: %d", occupied, len(p.occupancy), peak), 15, statsY+20, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Cell size: %.1f x %.1f  Tick: %d  G: %.3f", cs.X, cs.Y, u.Tick(), u.G()), 15, statsY+40, 16, rl.DarkGray)

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Grid Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		// Subdivisions slider
		rl.DrawText("Subdivisions (cells per axis)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSubdiv := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"1", "128",
			float32(params.Subdivisions), 1, 128,
		)
		rl.DrawText(fmt.Sprintf("%d", params.Subdivisions), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newSubdiv) != params.Subdivisions {
			params.Subdivisions = int(newSubdiv)
			needsRespawn = true
		}
		panelY += 35

		// Star count slider
		rl.DrawText("Star count", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newCount := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"10", "5000",
			float32(params.StarCount), 10, 5000,
		)
		rl.DrawText(fmt.Sprintf("%d", params.StarCount), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newCount) != params.StarCount {
			params.StarCount = int(newCount)
			needsRespawn = true
		}
		panelY += 35

		// Spawn range slider
		rl.DrawText("Spawn range (disk radius)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newRange := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"10", "2000",
			params.SpawnRange, 10, 2000,
		)
		rl.DrawText(fmt.Sprintf("%.0f", params.SpawnRange), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newRange != params.SpawnRange {
			params.SpawnRange = newRange
			needsRespawn = true
		}
		panelY += 35

		// G slider
		rl.DrawText("G (used when animating)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newG := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"-5", "10",
			params.G, -5, 10,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.G), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newG != params.G {
			params.G = newG
			needsRespawn = true
		}
		panelY += 45

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Stop", "Animate")) {
			animating = !animating
		}

		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Step") {
			p.step(cfg.Simulation.DT)
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			params.Seed = int64(rl.GetRandomValue(0, 99999))
			needsRespawn = true
		}

		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaultParams(cfg)
			animating = false
			needsRespawn = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(showStars, "Hide Stars", "Show Stars")) {
			showStars = !showStars
		}
		panelY += 55

		// Output YAML
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		for _, line := range yamlLines(params) {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)

		if rl.IsKeyPressed(rl.KeyC) {
			text := ""
			for _, line := range yamlLines(params) {
				text += line + "\n"
			}
			rl.SetClipboardText(text)
		}

		rl.EndDrawing()
	}
}

func yamlLines(params PreviewParams) []string {
	return []string{
		"simulation:",
		fmt.Sprintf("  star_count: %d", params.StarCount),
		fmt.Sprintf("  max_spawn_range: %.1f", params.SpawnRange),
		"gravity:",
		fmt.Sprintf("  constant: %.3f", params.G),
		"grid:",
		fmt.Sprintf("  subdivisions: %d", params.Subdivisions),
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

func newTexture(size int) rl.Texture2D {
	img := rl.GenImageColor(size, size, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	return texture
}

// drawStars plots live bodies over the preview, mapped through the grid box.
func drawStars(p *preview) {
	origin := p.grid.Origin()
	cs := p.grid.CellSize()
	n := float64(p.grid.Subdivisions())
	w, h := cs.X*n, cs.Y*n

	p.universe.Each(func(_ systems.BodyID, pos, _ r2.Vec, _ float64) {
		x, y := 0.5, 0.5
		if w > 0 {
			x = (pos.X - origin.X) / w
		}
		if h > 0 {
			y = (pos.Y - origin.Y) / h
		}
		rl.DrawPixel(int32(10+x*previewSize), int32(10+y*previewSize), rl.RayWhite)
	})
}

// updateTexture colours each cell by its share of the busiest cell.
func updateTexture(texture rl.Texture2D, occupancy []int) {
	peak := 0
	for _, c := range occupancy {
		peak = max(peak, c)
	}

	pixels := make([]color.RGBA, len(occupancy))
	for i, c := range occupancy {
		var v float32
		if peak > 0 {
			v = float32(c) / float32(peak)
		}
		// Use a color gradient: dark blue -> cyan -> yellow -> white
		var r, g, b uint8
		if v < 0.25 {
			t := v / 0.25
			r = uint8(10 + t*30)
			g = uint8(20 + t*60)
			b = uint8(60 + t*100)
		} else if v < 0.5 {
			t := (v - 0.25) / 0.25
			r = uint8(40 + t*20)
			g = uint8(80 + t*120)
			b = uint8(160 + t*40)
		} else if v < 0.75 {
			t := (v - 0.5) / 0.25
			r = uint8(60 + t*140)
			g = uint8(200 - t*40)
			b = uint8(200 - t*150)
		} else {
			t := (v - 0.75) / 0.25
			r = uint8(200 + t*55)
			g = uint8(160 + t*95)
			b = uint8(50 + t*205)
		}
		pixels[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	rl.UpdateTexture(texture, pixels)
}
