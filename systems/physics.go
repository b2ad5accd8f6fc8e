package systems

import "gonum.org/v1/gonum/spatial/r2"

// integrate advances every live body by semi-implicit Euler: velocity first,
// then position from the new velocity.
func integrate(st *BodyStore, dt float64) {
	for i := range st.pos {
		if !st.alive[i] {
			continue
		}
		acc := r2.Scale(1/st.mass[i], st.force[i])
		st.vel[i] = r2.Add(st.vel[i], r2.Scale(dt, acc))
		st.pos[i] = r2.Add(st.pos[i], r2.Scale(dt, st.vel[i]))
	}
}

// rampConstant returns g advanced by rate*dt and clamped to ±maxAbs.
// maxAbs 0 leaves the value unclamped.
func rampConstant(g, rate, maxAbs, dt float64) float64 {
	g += rate * dt
	if maxAbs > 0 {
		if g > maxAbs {
			g = maxAbs
		} else if g < -maxAbs {
			g = -maxAbs
		}
	}
	return g
}
