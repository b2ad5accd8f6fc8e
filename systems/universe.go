package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Phase names reported to a PhaseObserver during Step.
const (
	PhaseDespawn    = "despawn"
	PhaseGrid       = "grid"
	PhaseForces     = "forces"
	PhaseCollisions = "collisions"
	PhaseIntegrate  = "integrate"
	PhaseBounds     = "bounds"
)

// PhaseObserver is notified as Step moves between phases.
type PhaseObserver interface {
	StartPhase(name string)
}

// TickEvents lists what happened during the most recent Step.
// The slices are reused by the next Step.
type TickEvents struct {
	Tick       int32
	Collisions []Collision
	Despawned  []BodyID
}

// Universe owns every body and runs the physics step. It is not safe for
// concurrent use; callers serialise Step, Spawn and queries.
type Universe struct {
	params Params
	store  *BodyStore
	bounds Bounds
	grid   *SpatialGrid
	g      float64
	tick   int32

	serial   forceScratch
	cands    []candidate
	claimed  []bool
	events   TickEvents
	pool     *forcePool
	observer PhaseObserver
}

// NewUniverse validates p and returns an empty universe.
func NewUniverse(p Params) (*Universe, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	u := &Universe{
		params: p,
		store:  NewBodyStore(256),
		grid:   NewSpatialGrid(p.GridSubdivisions),
		g:      p.GravitationalConstant,
	}
	if p.Workers > 1 {
		u.pool = newForcePool(u, p.Workers)
	}
	return u, nil
}

// Close stops the force worker pool, if any. Safe to call more than once.
func (u *Universe) Close() {
	if u.pool != nil {
		u.pool.stop()
	}
}

// SetPhaseObserver attaches o for phase timing. nil detaches.
func (u *Universe) SetPhaseObserver(o PhaseObserver) {
	u.observer = o
}

func (u *Universe) phase(name string) {
	if u.observer != nil {
		u.observer.StartPhase(name)
	}
}

// Spawn adds a body unless it would sit within the contact radius of a live
// body or its values are not usable. A rejection is not an error; callers
// retry with a new position.
func (u *Universe) Spawn(pos, vel r2.Vec, mass float64) (BodyID, bool) {
	if !(mass > 0) || math.IsInf(mass, 1) || !finiteVec(pos) || !finiteVec(vel) {
		return -1, false
	}
	if u.overlaps(pos) {
		return -1, false
	}
	id := u.store.Add(pos, vel, mass)
	u.bounds.Observe(pos)
	return id, true
}

func (u *Universe) overlaps(pos r2.Vec) bool {
	st := u.store
	r2c := u.params.ContactRadius * u.params.ContactRadius
	for i, p := range st.pos {
		if st.alive[i] && r2.Norm2(r2.Sub(p, pos)) <= r2c {
			return true
		}
	}
	return false
}

func finiteVec(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Step advances the simulation by one tick of length dt.
func (u *Universe) Step(dt float64) {
	u.events.Tick = u.tick
	u.events.Collisions = u.events.Collisions[:0]
	u.events.Despawned = u.events.Despawned[:0]

	u.phase(PhaseDespawn)
	u.despawn()

	u.phase(PhaseGrid)
	u.rebuildGrid()

	u.phase(PhaseForces)
	u.accumulateForces()

	u.phase(PhaseCollisions)
	u.resolveCollisions()

	u.phase(PhaseIntegrate)
	integrate(u.store, dt)

	u.phase(PhaseBounds)
	u.updateBounds()

	u.g = rampConstant(u.g, u.params.RampRatePerSecond, u.params.MaxAbsGravitationalConstant, dt)
	u.tick++
}

// despawn removes live bodies farther than DespawnDistance from the origin.
func (u *Universe) despawn() {
	d := u.params.DespawnDistance
	if d <= 0 {
		return
	}
	limit := d * d
	st := u.store
	for i, p := range st.pos {
		if st.alive[i] && r2.Norm2(p) > limit {
			st.Kill(BodyID(i))
			u.events.Despawned = append(u.events.Despawned, BodyID(i))
		}
	}
}

func (u *Universe) rebuildGrid() {
	st := u.store
	u.grid.Build(u.bounds, st.Len())
	for i, p := range st.pos {
		if st.alive[i] {
			u.grid.Insert(BodyID(i), p)
		}
	}
}

func (u *Universe) accumulateForces() {
	st := u.store
	n := st.Len()
	st.clearForces()
	u.cands = u.cands[:0]

	if u.pool != nil && st.Live() >= parallelThreshold {
		u.cands = u.pool.run(n, st.force, u.cands)
		return
	}

	u.serial.forces = st.force
	u.serial.cands = u.cands
	u.accumulateRange(0, n, &u.serial)
	u.cands = u.serial.cands
}

func (u *Universe) resolveCollisions() {
	if len(u.cands) == 0 {
		return
	}
	if n := u.store.Len(); len(u.claimed) < n {
		u.claimed = append(u.claimed, make([]bool, n-len(u.claimed))...)
	}
	for _, c := range selectCollisions(u.cands, u.claimed) {
		u.events.Collisions = append(u.events.Collisions, resolveCollision(u.store, u.params, c))
	}
}

func (u *Universe) updateBounds() {
	if u.params.ShrinkBounds {
		u.bounds.Reset()
	}
	st := u.store
	for i, p := range st.pos {
		if st.alive[i] {
			u.bounds.Observe(p)
		}
	}
}

// IsAlive reports whether id names a live body.
func (u *Universe) IsAlive(id BodyID) bool { return u.store.IsAlive(id) }

// Position returns the body's position. Dead bodies keep their last value;
// unknown ids return the zero vector.
func (u *Universe) Position(id BodyID) r2.Vec {
	if !u.store.Valid(id) {
		return r2.Vec{}
	}
	return u.store.pos[id]
}

// Velocity returns the body's velocity.
func (u *Universe) Velocity(id BodyID) r2.Vec {
	if !u.store.Valid(id) {
		return r2.Vec{}
	}
	return u.store.vel[id]
}

// Mass returns the body's mass.
func (u *Universe) Mass(id BodyID) float64 {
	if !u.store.Valid(id) {
		return 0
	}
	return u.store.mass[id]
}

// Force returns the net force applied to the body in the last Step.
func (u *Universe) Force(id BodyID) r2.Vec {
	if !u.store.Valid(id) {
		return r2.Vec{}
	}
	return u.store.force[id]
}

// MassRange returns the configured spawn mass range.
func (u *Universe) MassRange() Range { return u.params.MassRange }

// LiveMassRange returns the observed mass range of live bodies.
// Absorption can push masses above the configured range.
func (u *Universe) LiveMassRange() Range {
	r := Range{Min: math.Inf(1), Max: math.Inf(-1)}
	st := u.store
	for i, m := range st.mass {
		if !st.alive[i] {
			continue
		}
		r.Min = math.Min(r.Min, m)
		r.Max = math.Max(r.Max, m)
	}
	if st.Live() == 0 {
		return Range{}
	}
	return r
}

// SetRampRate changes the G drift per second from the next Step on.
func (u *Universe) SetRampRate(rate float64) {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return
	}
	u.params.RampRatePerSecond = rate
}

// G returns the current gravitational constant.
func (u *Universe) G() float64 { return u.g }

// Params returns the construction parameters.
func (u *Universe) Params() Params { return u.params }

// Bounds returns the tracked bounding box.
func (u *Universe) Bounds() Bounds { return u.bounds }

// Grid exposes the spatial grid as built by the last Step.
func (u *Universe) Grid() *SpatialGrid { return u.grid }

// Tick returns the number of completed steps.
func (u *Universe) Tick() int32 { return u.tick }

// BodyCount returns the number of ids ever issued.
func (u *Universe) BodyCount() int { return u.store.Len() }

// LiveCount returns the number of live bodies.
func (u *Universe) LiveCount() int { return u.store.Live() }

// LastEvents returns the collisions and despawns of the last Step.
func (u *Universe) LastEvents() TickEvents { return u.events }

// Each calls fn for every live body in id order.
func (u *Universe) Each(fn func(id BodyID, pos, vel r2.Vec, mass float64)) {
	st := u.store
	for i := range st.pos {
		if st.alive[i] {
			fn(BodyID(i), st.pos[i], st.vel[i], st.mass[i])
		}
	}
}

// KineticEnergy returns the summed kinetic energy of live bodies.
func (u *Universe) KineticEnergy() float64 {
	var ke float64
	u.Each(func(_ BodyID, _, vel r2.Vec, mass float64) {
		ke += 0.5 * mass * r2.Norm2(vel)
	})
	return ke
}

// TotalMass returns the summed mass of live bodies.
func (u *Universe) TotalMass() float64 {
	var m float64
	u.Each(func(_ BodyID, _, _ r2.Vec, mass float64) {
		m += mass
	})
	return m
}

// Momentum returns the summed momentum of live bodies.
func (u *Universe) Momentum() r2.Vec {
	var p r2.Vec
	u.Each(func(_ BodyID, _, vel r2.Vec, mass float64) {
		p = r2.Add(p, r2.Scale(mass, vel))
	})
	return p
}
