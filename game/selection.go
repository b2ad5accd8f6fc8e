package game

import (
	"github.com/pthm-cable/starfield/systems"
)

// pickSlopPixels widens the hit area of small stars.
const pickSlopPixels = 6

// selectAt selects the star under screen point (sx, sy), or clears the
// selection when there is none.
func (g *Game) selectAt(sx, sy float32) {
	wx, wy := g.camera.ScreenToWorld(sx, sy)
	id, ok := g.pickStar(wx, wy, pickSlopPixels/g.camera.Zoom)
	g.selected = id
	g.hasSelection = ok
}

// pickStar returns the star whose disc, widened by slop world units, lies
// closest to (wx, wy).
func (g *Game) pickStar(wx, wy, slop float32) (systems.BodyID, bool) {
	best := systems.BodyID(-1)
	var bestDist2 float32

	query := g.starFilter.Query()
	for query.Next() {
		pos, _, star, _ := query.Get()
		dx, dy := pos.X-wx, pos.Y-wy
		d2 := dx*dx + dy*dy
		reach := star.Radius + slop
		if d2 > reach*reach {
			continue
		}
		if best < 0 || d2 < bestDist2 || (d2 == bestDist2 && systems.BodyID(star.BodyID) < best) {
			best = systems.BodyID(star.BodyID)
			bestDist2 = d2
		}
	}

	return best, best >= 0
}

// Selected returns the selected body, if any.
func (g *Game) Selected() (systems.BodyID, bool) {
	if !g.hasSelection || !g.universe.IsAlive(g.selected) {
		return -1, false
	}
	return g.selected, true
}
