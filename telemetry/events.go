// Package telemetry provides star field tracking, bookmarking, and snapshots.
package telemetry

import "github.com/pthm-cable/starfield/systems"

// CollisionRecord is one row of collisions.csv.
type CollisionRecord struct {
	Tick      int32   `csv:"tick"`
	Outcome   string  `csv:"outcome"`
	A         int     `csv:"a"`
	B         int     `csv:"b"`
	Survivor  int     `csv:"survivor"`
	MassRatio float64 `csv:"mass_ratio"`
	Distance  float64 `csv:"distance"`
	Mass      float64 `csv:"mass"`
}

// NewCollisionRecord flattens a collision for CSV output.
func NewCollisionRecord(tick int32, c systems.Collision) CollisionRecord {
	return CollisionRecord{
		Tick:      tick,
		Outcome:   c.Outcome.String(),
		A:         int(c.A),
		B:         int(c.B),
		Survivor:  int(c.Survivor),
		MassRatio: c.MassRatio,
		Distance:  c.Distance,
		Mass:      c.Mass,
	}
}
