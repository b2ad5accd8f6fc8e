package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// fallbackDirection is used when two bodies occupy the same point.
var fallbackDirection = r2.Vec{X: 1, Y: 0}

// candidate is a pair found within contact radius during accumulation.
// i < j always holds.
type candidate struct {
	i, j  BodyID
	dist2 float64
}

// forceScratch holds the outputs of one accumulation pass over a range of
// bodies plus reusable neighbour storage.
type forceScratch struct {
	forces []r2.Vec
	cands  []candidate
	cells  []int
}

func (s *forceScratch) reset(n int) {
	if cap(s.forces) < n {
		s.forces = make([]r2.Vec, n)
	}
	s.forces = s.forces[:n]
	for i := range s.forces {
		s.forces[i] = r2.Vec{}
	}
	s.cands = s.cands[:0]
}

// GravityBetween returns the force on a body of mass mi at pi due to a body
// of mass mj at pj. stretch 0 is treated as 1.
func GravityBetween(g, mi, mj float64, pi, pj r2.Vec, stretch, softening float64) r2.Vec {
	stretch2 := 1.0
	if stretch != 0 {
		stretch2 = stretch * stretch
	}
	d := r2.Sub(pj, pi)
	dist2 := r2.Norm2(d)
	return pairForce(g*mi*mj, d, dist2, stretch2, softening*softening)
}

// pairForce computes gmm / ((|d|²+soft²)·stretch²) along d. A zero offset
// uses the fallback direction; a zero denominator yields no force.
func pairForce(gmm float64, d r2.Vec, dist2, stretch2, soft2 float64) r2.Vec {
	denom := (dist2 + soft2) * stretch2
	if denom == 0 {
		return r2.Vec{}
	}
	mag := gmm / denom
	if dist2 == 0 {
		return r2.Scale(mag, fallbackDirection)
	}
	return r2.Scale(mag/math.Sqrt(dist2), d)
}

// accumulateRange walks live bodies with ids in [lo, hi) and evaluates every
// pair (i, j) with j > i found in i's Moore neighbourhood. Forces go to
// s.forces with exact negation for j. Pairs inside the contact radius become
// candidates and exert no force this tick.
//
// Only reads body state and the grid, so disjoint ranges can run
// concurrently with separate scratch.
func (u *Universe) accumulateRange(lo, hi int, s *forceScratch) {
	st := u.store
	contact2 := u.params.ContactRadius * u.params.ContactRadius
	stretch2 := u.params.stretchSquared()
	soft2 := u.params.Softening * u.params.Softening
	g := u.g

	for i := lo; i < hi; i++ {
		if !st.alive[i] {
			continue
		}
		pi := st.pos[i]
		mi := st.mass[i]

		s.cells = u.grid.NeighborCells(BodyID(i), s.cells[:0])
		for _, h := range s.cells {
			for _, j := range u.grid.CellBodies(h) {
				if int(j) <= i || !st.alive[j] {
					continue
				}
				d := r2.Sub(st.pos[j], pi)
				dist2 := r2.Norm2(d)
				if dist2 <= contact2 {
					s.cands = append(s.cands, candidate{i: BodyID(i), j: j, dist2: dist2})
					continue
				}
				f := pairForce(g*mi*st.mass[j], d, dist2, stretch2, soft2)
				s.forces[i] = r2.Add(s.forces[i], f)
				s.forces[j] = r2.Sub(s.forces[j], f)
			}
		}
	}
}
