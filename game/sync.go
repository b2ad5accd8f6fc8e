package game

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/starfield/components"
	"github.com/pthm-cable/starfield/renderer"
	"github.com/pthm-cable/starfield/systems"
	"github.com/pthm-cable/starfield/telemetry"
)

// Flash and glow tuning
const (
	flashLife       = 0.6 // seconds
	absorbGlowPulse = 1.0
	glowDecayPerSec = 1.5
)

// applyTickEvents feeds the last step's collisions and despawns into
// telemetry and effects.
func (g *Game) applyTickEvents() {
	u := g.universe
	ev := u.LastEvents()

	for _, c := range ev.Collisions {
		g.collector.RecordCollision(c)
		if g.outputManager != nil {
			g.collisionRecords = append(g.collisionRecords, telemetry.NewCollisionRecord(ev.Tick, c))
		}

		switch c.Outcome {
		case systems.OutcomeAbsorbed:
			g.lifetimeTracker.RecordAbsorb(c.Survivor, c.Mass)
			g.retire(c.Casualty, telemetry.CauseAbsorbed)
			if glow := g.glowOf(c.Survivor); glow != nil {
				glow.Pulse = absorbGlowPulse
			}
			g.addFlash(u.Position(c.Survivor), c.Mass, renderer.FlashAbsorb)
		case systems.OutcomeAnnihilated:
			g.retire(c.A, telemetry.CauseAnnihilated)
			g.retire(c.B, telemetry.CauseAnnihilated)
			mid := r2.Scale(0.5, r2.Add(u.Position(c.A), u.Position(c.B)))
			g.addFlash(mid, c.MassA+c.MassB, renderer.FlashAnnihilate)
		}
	}

	for _, id := range ev.Despawned {
		g.collector.RecordDespawn(u.Mass(id))
		g.retire(id, telemetry.CauseDespawned)
	}
}

// retire drops a dead body's lifetime record and ECS entity.
func (g *Game) retire(id systems.BodyID, cause telemetry.DeathCause) {
	if stats := g.lifetimeTracker.Remove(id); stats != nil && g.logStats {
		stats.SurvivalTimeSec = float32(g.universe.Tick()-stats.BirthTick) * float32(g.dt)
		logDeath(id, cause, stats)
	}
	g.removeStar(id)
	if g.hasSelection && g.selected == id {
		g.hasSelection = false
	}
}

// addFlash queues a collision flash in graphical mode.
func (g *Game) addFlash(pos r2.Vec, mass float64, kind renderer.FlashKind) {
	if g.headless {
		return
	}
	size := renderer.StarRadius(mass, g.universe.MassRange(), g.cfg.Render.BaseRadius, g.cfg.Render.RadiusScale) * 3
	g.flashes = append(g.flashes, renderer.Flash{
		X: float32(pos.X), Y: float32(pos.Y),
		Size: size, Life: flashLife, MaxLife: flashLife,
		Kind: kind,
	})
}

// updateEffects ages flashes and decays glow pulses by dt seconds.
func (g *Game) updateEffects(dt float32) {
	g.flashes = renderer.UpdateFlashes(g.flashes, dt)
	if dt == 0 {
		return
	}
	decay := float32(math.Exp(-glowDecayPerSec * float64(dt)))
	query := g.starFilter.Query()
	for query.Next() {
		_, _, _, glow := query.Get()
		glow.Pulse *= decay
		if glow.Pulse < 0.01 {
			glow.Pulse = 0
		}
	}
}

// syncECS mirrors every live body into the ECS world: new bodies get an
// entity, existing ones get fresh position, velocity, mass and band.
func (g *Game) syncECS() {
	u := g.universe
	massRange := u.MassRange()
	bands := g.palette.Bands()
	base, scale := g.cfg.Render.BaseRadius, g.cfg.Render.RadiusScale

	u.Each(func(id systems.BodyID, pos, vel r2.Vec, mass float64) {
		star := components.Star{
			BodyID: int32(id),
			Mass:   float32(mass),
			Radius: renderer.StarRadius(mass, massRange, base, scale),
			Band:   renderer.BandFor(mass, massRange, bands),
		}

		e, ok := g.entities[id]
		if !ok {
			p := components.Position{X: float32(pos.X), Y: float32(pos.Y)}
			v := components.Velocity{X: float32(vel.X), Y: float32(vel.Y)}
			glow := components.Glow{Intensity: glowIntensity(mass, massRange)}
			g.entities[id] = g.starMapper.NewEntity(&p, &v, &star, &glow)
			return
		}

		p, v, s, glow := g.starMapper.Get(e)
		p.X, p.Y = float32(pos.X), float32(pos.Y)
		v.X, v.Y = float32(vel.X), float32(vel.Y)
		*s = star
		glow.Intensity = glowIntensity(mass, massRange)
	})
}

// removeStar deletes the entity mirroring id, if any.
func (g *Game) removeStar(id systems.BodyID) {
	e, ok := g.entities[id]
	if !ok {
		return
	}
	delete(g.entities, id)
	if g.world.Alive(e) {
		g.starMapper.Remove(e)
	}
}

// glowOf returns the Glow component of a live body's entity.
func (g *Game) glowOf(id systems.BodyID) *components.Glow {
	e, ok := g.entities[id]
	if !ok || !g.world.Alive(e) {
		return nil
	}
	return g.glowMap.Get(e)
}

// glowIntensity is the normalised mass in [0, 1] over the spawn range.
func glowIntensity(mass float64, r systems.Range) float32 {
	if r.Max <= 0 {
		return 0
	}
	return float32(math.Min(mass/r.Max, 1))
}

// StarCount returns the number of ECS entities mirroring live bodies.
func (g *Game) StarCount() int {
	return len(g.entities)
}
