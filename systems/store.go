package systems

import "gonum.org/v1/gonum/spatial/r2"

// BodyID identifies a body for the lifetime of a run. IDs are dense and
// never reused.
type BodyID int

// BodyStore holds body state column-wise, indexed by BodyID.
type BodyStore struct {
	pos   []r2.Vec
	vel   []r2.Vec
	mass  []float64
	alive []bool
	force []r2.Vec

	live int
}

// NewBodyStore creates a store with room for capacity bodies.
func NewBodyStore(capacity int) *BodyStore {
	return &BodyStore{
		pos:   make([]r2.Vec, 0, capacity),
		vel:   make([]r2.Vec, 0, capacity),
		mass:  make([]float64, 0, capacity),
		alive: make([]bool, 0, capacity),
		force: make([]r2.Vec, 0, capacity),
	}
}

// Add appends a live body and returns its id.
func (s *BodyStore) Add(pos, vel r2.Vec, mass float64) BodyID {
	id := BodyID(len(s.pos))
	s.pos = append(s.pos, pos)
	s.vel = append(s.vel, vel)
	s.mass = append(s.mass, mass)
	s.alive = append(s.alive, true)
	s.force = append(s.force, r2.Vec{})
	s.live++
	return id
}

// addDead appends a tombstoned slot so restored ids keep their numbering.
func (s *BodyStore) addDead(pos, vel r2.Vec, mass float64) {
	s.pos = append(s.pos, pos)
	s.vel = append(s.vel, vel)
	s.mass = append(s.mass, mass)
	s.alive = append(s.alive, false)
	s.force = append(s.force, r2.Vec{})
}

// Kill marks a body dead. Killing a dead body is a no-op.
func (s *BodyStore) Kill(id BodyID) {
	if s.alive[id] {
		s.alive[id] = false
		s.live--
	}
}

// Valid reports whether id was ever issued by this store.
func (s *BodyStore) Valid(id BodyID) bool {
	return id >= 0 && int(id) < len(s.pos)
}

// IsAlive reports whether the body exists and is alive.
func (s *BodyStore) IsAlive(id BodyID) bool {
	return s.Valid(id) && s.alive[id]
}

// Len returns the number of ids issued, dead or alive.
func (s *BodyStore) Len() int { return len(s.pos) }

// Live returns the number of live bodies.
func (s *BodyStore) Live() int { return s.live }

func (s *BodyStore) clearForces() {
	for i := range s.force {
		s.force[i] = r2.Vec{}
	}
}
