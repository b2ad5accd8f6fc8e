package telemetry

import "github.com/pthm-cable/starfield/systems"

// DeathCause records how a body left the simulation.
type DeathCause string

const (
	CauseAbsorbed    DeathCause = "absorbed"
	CauseAnnihilated DeathCause = "annihilated"
	CauseDespawned   DeathCause = "despawned"
)

// LifetimeStats tracks per-body statistics over its lifetime.
type LifetimeStats struct {
	BirthTick       int32
	SurvivalTimeSec float32

	SpawnMass   float64
	PeakMass    float64
	Absorptions int // bodies this one has swallowed
}

// LifetimeTracker manages per-body lifetime statistics for live bodies.
type LifetimeTracker struct {
	stats map[systems.BodyID]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[systems.BodyID]*LifetimeStats),
	}
}

// Register creates lifetime stats for a newly spawned body.
func (lt *LifetimeTracker) Register(id systems.BodyID, birthTick int32, mass float64) {
	lt.stats[id] = &LifetimeStats{
		BirthTick: birthTick,
		SpawnMass: mass,
		PeakMass:  mass,
	}
}

// Restore re-registers a body with previously saved stats.
func (lt *LifetimeTracker) Restore(id systems.BodyID, s LifetimeStats) {
	lt.stats[id] = &s
}

// Get returns the lifetime stats for a body, or nil if not found.
func (lt *LifetimeTracker) Get(id systems.BodyID) *LifetimeStats {
	return lt.stats[id]
}

// Remove removes a body's stats and returns them (for logging).
func (lt *LifetimeTracker) Remove(id systems.BodyID) *LifetimeStats {
	stats := lt.stats[id]
	delete(lt.stats, id)
	return stats
}

// RecordAbsorb credits the survivor of an absorption.
func (lt *LifetimeTracker) RecordAbsorb(survivor systems.BodyID, newMass float64) {
	if s := lt.stats[survivor]; s != nil {
		s.Absorptions++
		if newMass > s.PeakMass {
			s.PeakMass = newMass
		}
	}
}

// UpdateSurvivalTime updates the survival time based on current tick.
func (lt *LifetimeTracker) UpdateSurvivalTime(id systems.BodyID, currentTick int32, dt float32) {
	if s := lt.stats[id]; s != nil {
		s.SurvivalTimeSec = float32(currentTick-s.BirthTick) * dt
	}
}

// All returns all tracked stats (for snapshots).
func (lt *LifetimeTracker) All() map[systems.BodyID]*LifetimeStats {
	return lt.stats
}

// Count returns the number of tracked bodies.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

// Heaviest returns the tracked body with the largest peak mass, or -1.
// Ties go to the lower id.
func (lt *LifetimeTracker) Heaviest() (systems.BodyID, *LifetimeStats) {
	best := systems.BodyID(-1)
	var bestStats *LifetimeStats
	for id, s := range lt.stats {
		if bestStats == nil || s.PeakMass > bestStats.PeakMass ||
			(s.PeakMass == bestStats.PeakMass && id < best) {
			best, bestStats = id, s
		}
	}
	return best, bestStats
}
