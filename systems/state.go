package systems

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrInvalidState is returned when a State cannot be restored.
var ErrInvalidState = errors.New("invalid universe state")

// BodyState is one body in serialisable form.
type BodyState struct {
	ID    BodyID  `json:"id" msgpack:"id"`
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	VelX  float64 `json:"vel_x" msgpack:"vel_x"`
	VelY  float64 `json:"vel_y" msgpack:"vel_y"`
	Mass  float64 `json:"mass" msgpack:"mass"`
	Alive bool    `json:"alive" msgpack:"alive"`
}

// State is the full mutable state of a Universe. Dead bodies are included
// so ids survive a round trip.
type State struct {
	Tick   int32       `json:"tick" msgpack:"tick"`
	G      float64     `json:"g" msgpack:"g"`
	Bounds Bounds      `json:"bounds" msgpack:"bounds"`
	Bodies []BodyState `json:"bodies" msgpack:"bodies"`
}

// State captures the universe.
func (u *Universe) State() State {
	st := u.store
	s := State{
		Tick:   u.tick,
		G:      u.g,
		Bounds: u.bounds,
		Bodies: make([]BodyState, st.Len()),
	}
	for i := range st.pos {
		s.Bodies[i] = BodyState{
			ID:    BodyID(i),
			X:     st.pos[i].X,
			Y:     st.pos[i].Y,
			VelX:  st.vel[i].X,
			VelY:  st.vel[i].Y,
			Mass:  st.mass[i],
			Alive: st.alive[i],
		}
	}
	return s
}

// RestoreUniverse builds a universe from p and a captured state. Bodies must
// be listed densely by id.
func RestoreUniverse(p Params, s State) (*Universe, error) {
	u, err := NewUniverse(p)
	if err != nil {
		return nil, err
	}
	for i, b := range s.Bodies {
		if b.ID != BodyID(i) {
			u.Close()
			return nil, fmt.Errorf("%w: body %d has id %d", ErrInvalidState, i, b.ID)
		}
		pos := r2.Vec{X: b.X, Y: b.Y}
		vel := r2.Vec{X: b.VelX, Y: b.VelY}
		if !b.Alive {
			u.store.addDead(pos, vel, b.Mass)
			continue
		}
		if !(b.Mass > 0) || !finiteVec(pos) || !finiteVec(vel) {
			u.Close()
			return nil, fmt.Errorf("%w: body %d has unusable values", ErrInvalidState, i)
		}
		u.store.Add(pos, vel, b.Mass)
	}
	u.tick = s.Tick
	u.g = s.G
	u.bounds = s.Bounds
	for i, p := range u.store.pos {
		if u.store.alive[i] {
			u.bounds.Observe(p)
		}
	}
	return u, nil
}
