// Package systems implements the gravitational physics core: body storage,
// the uniform spatial grid, force accumulation, collisions and integration.
package systems

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams is wrapped by every construction-time validation failure.
var ErrInvalidParams = errors.New("invalid simulation parameters")

// Range is a closed interval [Min, Max].
type Range struct {
	Min float64 `yaml:"min" json:"min" msgpack:"min"`
	Max float64 `yaml:"max" json:"max" msgpack:"max"`
}

// Span returns Max - Min.
func (r Range) Span() float64 {
	return r.Max - r.Min
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Lerp maps t in [0,1] onto the range.
func (r Range) Lerp(t float64) float64 {
	return r.Min + t*(r.Max-r.Min)
}

// Params is the fixed construction record for a Universe.
type Params struct {
	GravitationalConstant       float64
	RampRatePerSecond           float64
	MaxAbsGravitationalConstant float64 // bounds |G| while ramping; 0 leaves G unclamped instead of pinning it at 0
	ContactRadius               float64
	MassRange                   Range
	InitialSpeedRange           Range
	DistanceStretch             float64 // 0 is treated as 1
	Softening                   float64
	GridSubdivisions            int
	DespawnDistance             float64 // 0 disables despawning
	MassSurvivalRatio           float64
	CollisionMassRetention      float64
	ShrinkBounds                bool
	Workers                     int // <= 1 runs the force pass on the calling goroutine
}

// DefaultParams returns a small, stable parameter set.
func DefaultParams() Params {
	return Params{
		GravitationalConstant:       1,
		MaxAbsGravitationalConstant: 10,
		ContactRadius:               1,
		MassRange:                   Range{Min: 1, Max: 10},
		InitialSpeedRange:           Range{Min: 0, Max: 1},
		DistanceStretch:             1,
		GridSubdivisions:            16,
		MassSurvivalRatio:           1.5,
		CollisionMassRetention:      1,
	}
}

// Validate checks the fatal conditions. All problems are reported together.
func (p Params) Validate() error {
	var errs []error
	check := func(bad bool, format string, args ...any) {
		if bad {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidParams}, args...)...))
		}
	}

	check(p.GridSubdivisions <= 0, "grid subdivisions must be positive, got %d", p.GridSubdivisions)
	check(!(p.ContactRadius > 0), "contact radius must be positive, got %g", p.ContactRadius)
	check(p.MassRange.Min > p.MassRange.Max, "mass range min %g exceeds max %g", p.MassRange.Min, p.MassRange.Max)
	check(p.MassRange.Min <= 0, "mass range must be positive, got min %g", p.MassRange.Min)
	check(p.InitialSpeedRange.Min > p.InitialSpeedRange.Max, "initial speed range min %g exceeds max %g",
		p.InitialSpeedRange.Min, p.InitialSpeedRange.Max)
	check(p.CollisionMassRetention < 0 || p.CollisionMassRetention > 1,
		"collision mass retention must be in [0,1], got %g", p.CollisionMassRetention)
	check(p.MaxAbsGravitationalConstant < 0, "max gravitational constant must not be negative, got %g",
		p.MaxAbsGravitationalConstant)
	check(p.DistanceStretch < 0, "distance stretch must not be negative, got %g", p.DistanceStretch)
	check(p.Softening < 0, "softening must not be negative, got %g", p.Softening)
	check(p.DespawnDistance < 0, "despawn distance must not be negative, got %g", p.DespawnDistance)
	check(p.MassSurvivalRatio < 0, "mass survival ratio must not be negative, got %g", p.MassSurvivalRatio)
	check(math.IsNaN(p.GravitationalConstant) || math.IsInf(p.GravitationalConstant, 0),
		"gravitational constant must be finite")

	return errors.Join(errs...)
}

// stretchSquared returns the squared distance stretch, with 0 meaning absent.
func (p Params) stretchSquared() float64 {
	if p.DistanceStretch == 0 {
		return 1
	}
	return p.DistanceStretch * p.DistanceStretch
}
