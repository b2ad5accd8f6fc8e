package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/starfield/camera"
	"github.com/pthm-cable/starfield/systems"
)

// GridOverlay draws the spatial grid cells, tinted by occupancy.
type GridOverlay struct {
	occupancy []int
	line      rl.Color
	fill      rl.Color
}

// NewGridOverlay creates a grid overlay.
func NewGridOverlay() *GridOverlay {
	return &GridOverlay{
		line: rl.Color{R: 80, G: 120, B: 160, A: 90},
		fill: rl.Color{R: 60, G: 140, B: 255, A: 0},
	}
}

// Draw renders the grid as built by the last physics step.
func (o *GridOverlay) Draw(cam *camera.Camera, grid *systems.SpatialGrid) {
	size := grid.CellSize()
	if size.X == 0 && size.Y == 0 {
		return
	}
	o.occupancy = grid.Occupancy(o.occupancy[:0])

	peak := 0
	for _, n := range o.occupancy {
		peak = max(peak, n)
	}

	n := grid.Subdivisions()
	origin := grid.Origin()
	cw, ch := float32(size.X), float32(size.Y)
	minX, minY := float32(origin.X), float32(origin.Y)

	// Only the cells and lines under the viewport are drawn
	vx0, vy0, vx1, vy1 := cam.VisibleWorldBounds()
	fx, lx := visibleSpan(minX, cw, n, vx0, vx1)
	fy, ly := visibleSpan(minY, ch, n, vy0, vy1)

	if peak > 0 && cw > 0 && ch > 0 {
		for h, count := range o.occupancy {
			if count == 0 {
				continue
			}
			cx, cy := grid.Unhash(h)
			if cx < fx || cx >= lx || cy < fy || cy >= ly {
				continue
			}
			cell := grid.CellRect(h)
			x0, y0 := cam.WorldToScreen(float32(cell.Min.X), float32(cell.Min.Y))
			x1, y1 := cam.WorldToScreen(float32(cell.Max.X), float32(cell.Max.Y))
			c := o.fill
			c.A = uint8(10 + 90*count/peak)
			rl.DrawRectangleRec(rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, c)
		}
	}

	for i := fx; i <= lx; i++ {
		x := minX + float32(i)*cw
		sx0, sy0 := cam.WorldToScreen(x, minY)
		sx1, sy1 := cam.WorldToScreen(x, minY+float32(n)*ch)
		rl.DrawLineV(rl.Vector2{X: sx0, Y: sy0}, rl.Vector2{X: sx1, Y: sy1}, o.line)
	}
	for i := fy; i <= ly; i++ {
		y := minY + float32(i)*ch
		sx0, sy0 := cam.WorldToScreen(minX, y)
		sx1, sy1 := cam.WorldToScreen(minX+float32(n)*cw, y)
		rl.DrawLineV(rl.Vector2{X: sx0, Y: sy0}, rl.Vector2{X: sx1, Y: sy1}, o.line)
	}
}

// visibleSpan returns the range of grid line indices [first, last] along one
// axis that touch the view interval [lo, hi]. Cells first..last-1 lie between
// them. A flat axis keeps every line.
func visibleSpan(origin, size float32, n int, lo, hi float32) (first, last int) {
	if size <= 0 {
		return 0, n
	}
	first = int(math.Floor(float64((lo - origin) / size)))
	last = int(math.Ceil(float64((hi - origin) / size)))
	return min(max(first, 0), n), min(max(last, 0), n)
}
