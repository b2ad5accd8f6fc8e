package game

import (
	"errors"
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/starfield/config"
	"github.com/pthm-cable/starfield/systems"
)

// ErrSpawnExhausted is returned when a star could not be placed within the
// allowed number of attempts.
var ErrSpawnExhausted = errors.New("spawn attempts exhausted")

// FieldSpec describes the initial star field.
type FieldSpec struct {
	Count    int
	Radius   float64 // disk radius around the origin
	Mass     systems.Range
	Speed    systems.Range
	Attempts int // placement attempts per star
}

// FieldSpecFromConfig reads the field description from cfg.
func FieldSpecFromConfig(cfg *config.Config) FieldSpec {
	return FieldSpec{
		Count:    cfg.Simulation.StarCount,
		Radius:   cfg.Simulation.MaxSpawnRange,
		Mass:     cfg.Bodies.MassRange,
		Speed:    cfg.Bodies.InitialSpeedRange,
		Attempts: cfg.Simulation.SpawnAttempts,
	}
}

// SpawnField places spec.Count stars uniformly in a disk, each with a
// uniform mass, a uniform speed and a random heading. A rejected position
// is retried up to spec.Attempts times; when a star cannot be placed the
// field stops growing and ErrSpawnExhausted is returned with the number
// placed so far. onSpawn, if set, is called for every placed star.
func SpawnField(u *systems.Universe, rng *rand.Rand, spec FieldSpec, onSpawn func(id systems.BodyID, mass float64)) (int, error) {
	attempts := max(spec.Attempts, 1)
	placed := 0
	for placed < spec.Count {
		ok := false
		for try := 0; try < attempts; try++ {
			pos := pointInDisk(rng, spec.Radius)
			vel := r2.Scale(uniform(rng, spec.Speed), unitVector(rng))
			mass := uniform(rng, spec.Mass)

			id, accepted := u.Spawn(pos, vel, mass)
			if !accepted {
				continue
			}
			if onSpawn != nil {
				onSpawn(id, mass)
			}
			ok = true
			break
		}
		if !ok {
			return placed, ErrSpawnExhausted
		}
		placed++
	}
	return placed, nil
}

// pointInDisk samples uniformly by area.
func pointInDisk(rng *rand.Rand, radius float64) r2.Vec {
	r := radius * math.Sqrt(rng.Float64())
	return r2.Scale(r, unitVector(rng))
}

func unitVector(rng *rand.Rand) r2.Vec {
	theta := 2 * math.Pi * rng.Float64()
	return r2.Vec{X: math.Cos(theta), Y: math.Sin(theta)}
}

func uniform(rng *rand.Rand, r systems.Range) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// spawnField fills the universe from config and registers every star.
func (g *Game) spawnField() {
	spec := FieldSpecFromConfig(g.cfg)
	tick := g.universe.Tick()
	n, err := SpawnField(g.universe, g.rng, spec, func(id systems.BodyID, mass float64) {
		g.lifetimeTracker.Register(id, tick, mass)
		g.collector.RecordSpawn()
		g.spawned++
	})
	if err != nil {
		slog.Warn("star field incomplete",
			"error", err,
			"placed", n,
			"requested", spec.Count,
			"attempts", spec.Attempts,
		)
		return
	}
	slog.Info("star field spawned", "stars", n, "radius", spec.Radius)
}
