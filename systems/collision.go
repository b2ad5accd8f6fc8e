package systems

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// Outcome is how a resolved collision ended.
type Outcome uint8

const (
	OutcomeAbsorbed Outcome = iota + 1
	OutcomeAnnihilated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAbsorbed:
		return "absorbed"
	case OutcomeAnnihilated:
		return "annihilated"
	default:
		return "unknown"
	}
}

// Collision records one resolved pair. A and B are the pair ids with A < B.
// For annihilations Survivor is -1.
type Collision struct {
	A, B      BodyID
	Survivor  BodyID
	Casualty  BodyID
	Outcome   Outcome
	MassRatio float64
	Distance  float64
	Mass      float64 // survivor mass after absorption

	// Masses of A and B before resolution
	MassA, MassB float64
}

// selectCollisions orders candidates by (distance, i, j) and greedily keeps
// pairs whose bodies are both unclaimed, so each body takes part in at most
// one collision per tick. claimed must be sized to the store and all false;
// it is left all false on return.
func selectCollisions(cands []candidate, claimed []bool) []candidate {
	sort.Slice(cands, func(a, b int) bool {
		ca, cb := cands[a], cands[b]
		if ca.dist2 != cb.dist2 {
			return ca.dist2 < cb.dist2
		}
		if ca.i != cb.i {
			return ca.i < cb.i
		}
		return ca.j < cb.j
	})

	kept := cands[:0]
	for _, c := range cands {
		if claimed[c.i] || claimed[c.j] {
			continue
		}
		claimed[c.i] = true
		claimed[c.j] = true
		kept = append(kept, c)
	}
	for _, c := range kept {
		claimed[c.i] = false
		claimed[c.j] = false
	}
	return kept
}

// resolveCollision applies annihilation or absorption to the pair.
func resolveCollision(st *BodyStore, p Params, c candidate) Collision {
	s, k := c.i, c.j
	if st.mass[k] > st.mass[s] {
		s, k = k, s
	}
	ms, mk := st.mass[s], st.mass[k]

	rec := Collision{
		A:         c.i,
		B:         c.j,
		Survivor:  -1,
		Casualty:  k,
		MassRatio: ms / mk,
		Distance:  math.Sqrt(c.dist2),
		MassA:     st.mass[c.i],
		MassB:     st.mass[c.j],
	}

	if rec.MassRatio < p.MassSurvivalRatio {
		st.Kill(s)
		st.Kill(k)
		rec.Outcome = OutcomeAnnihilated
		return rec
	}

	ret := p.CollisionMassRetention
	mass := (ms + mk) * ret
	if mass <= 0 {
		st.Kill(s)
		st.Kill(k)
		rec.Outcome = OutcomeAnnihilated
		return rec
	}

	vs, vk := st.vel[s], st.vel[k]
	ke := 0.5*ms*r2.Norm2(vs) + 0.5*mk*r2.Norm2(vk)*ret
	speed := math.Sqrt(2 * ke / mass)

	var dir r2.Vec
	switch {
	case r2.Norm2(vs) > 0:
		dir = r2.Unit(vs)
	case r2.Norm2(vk) > 0:
		dir = r2.Unit(vk)
	}

	st.mass[s] = mass
	st.vel[s] = r2.Scale(speed, dir)
	st.Kill(k)

	rec.Survivor = s
	rec.Outcome = OutcomeAbsorbed
	rec.Mass = mass
	return rec
}
