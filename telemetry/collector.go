package telemetry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/starfield/systems"
)

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	spawns        int
	absorptions   int
	annihilations int
	despawns      int
	massAnnihil   float64 // mass removed by annihilation
	massDespawned float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(math.Round(windowDurationSec / float64(dt)))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordSpawn records a spawned body.
func (c *Collector) RecordSpawn() {
	c.spawns++
}

// RecordCollision records a resolved collision.
func (c *Collector) RecordCollision(col systems.Collision) {
	switch col.Outcome {
	case systems.OutcomeAbsorbed:
		c.absorptions++
	case systems.OutcomeAnnihilated:
		c.annihilations++
		c.massAnnihil += col.MassA + col.MassB
	}
}

// RecordDespawn records a body removed for leaving the field.
func (c *Collector) RecordDespawn(mass float64) {
	c.despawns++
	c.massDespawned += mass
}

// Resume starts the current window at tick, for runs restored mid-way.
func (c *Collector) Resume(tick int32) {
	c.windowStartTick = tick
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// FieldSample is the state of the universe at a window boundary.
type FieldSample struct {
	Live          int
	Masses        []float64
	Speeds        []float64
	KineticEnergy float64
	TotalMass     float64
	Momentum      r2.Vec
	G             float64
	BoundsSize    r2.Vec
	BoundsCenter  r2.Vec
	CellSize      r2.Vec
	OccupiedCells int
	MaxOccupancy  int
}

// SampleUniverse reads a FieldSample from u. Slices in dst are reused.
func SampleUniverse(u *systems.Universe, dst *FieldSample, occupancy []int) []int {
	dst.Live = u.LiveCount()
	dst.Masses = dst.Masses[:0]
	dst.Speeds = dst.Speeds[:0]
	u.Each(func(_ systems.BodyID, _, vel r2.Vec, mass float64) {
		dst.Masses = append(dst.Masses, mass)
		dst.Speeds = append(dst.Speeds, r2.Norm(vel))
	})
	dst.KineticEnergy = u.KineticEnergy()
	dst.TotalMass = u.TotalMass()
	dst.Momentum = u.Momentum()
	dst.G = u.G()
	dst.BoundsSize = u.Bounds().Size()
	dst.BoundsCenter = u.Bounds().Center()
	dst.CellSize = u.Grid().CellSize()

	occupancy = u.Grid().Occupancy(occupancy[:0])
	dst.OccupiedCells, dst.MaxOccupancy = 0, 0
	for _, n := range occupancy {
		if n > 0 {
			dst.OccupiedCells++
		}
		dst.MaxOccupancy = max(dst.MaxOccupancy, n)
	}
	return occupancy
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, s FieldSample) WindowStats {
	mass := ComputeDistribution(s.Masses)
	speed := ComputeDistribution(s.Speeds)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		Live:          s.Live,
		Spawns:        c.spawns,
		Absorptions:   c.absorptions,
		Annihilations: c.annihilations,
		Despawns:      c.despawns,
		MassAnnihil:   c.massAnnihil,
		MassDespawned: c.massDespawned,

		MassMean: mass.Mean,
		MassStd:  mass.Std,
		MassP10:  mass.P10,
		MassP50:  mass.P50,
		MassP90:  mass.P90,
		MassMax:  mass.Max,

		SpeedMean: speed.Mean,
		SpeedP50:  speed.P50,
		SpeedP90:  speed.P90,

		KineticEnergy: s.KineticEnergy,
		TotalMass:     s.TotalMass,
		MomentumX:     s.Momentum.X,
		MomentumY:     s.Momentum.Y,
		G:             s.G,
		BoundsW:       s.BoundsSize.X,
		BoundsH:       s.BoundsSize.Y,
		BoundsCX:      s.BoundsCenter.X,
		BoundsCY:      s.BoundsCenter.Y,
		CellW:         s.CellSize.X,
		CellH:         s.CellSize.Y,
		OccupiedCells: s.OccupiedCells,
		MaxOccupancy:  s.MaxOccupancy,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.spawns = 0
	c.absorptions = 0
	c.annihilations = 0
	c.despawns = 0
	c.massAnnihil = 0
	c.massDespawned = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
