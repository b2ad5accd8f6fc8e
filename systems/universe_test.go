package systems

import (
	"errors"
	"math"
	"math/rand"
	"slices"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func newTestUniverse(t testing.TB, mutate func(p *Params)) *Universe {
	t.Helper()
	p := DefaultParams()
	p.RampRatePerSecond = 0
	if mutate != nil {
		mutate(&p)
	}
	u, err := NewUniverse(p)
	if err != nil {
		t.Fatalf("NewUniverse: %v", err)
	}
	t.Cleanup(u.Close)
	return u
}

func mustSpawn(t testing.TB, u *Universe, pos, vel r2.Vec, mass float64) BodyID {
	t.Helper()
	id, ok := u.Spawn(pos, vel, mass)
	if !ok {
		t.Fatalf("Spawn(%v) rejected", pos)
	}
	return id
}

// spawnField places n bodies at rest uniformly in a disk, retrying overlaps.
func spawnField(t testing.TB, u *Universe, rng *rand.Rand, n int, radius float64) {
	t.Helper()
	for placed, attempts := 0, 0; placed < n; attempts++ {
		if attempts > n*100 {
			t.Fatalf("could only place %d of %d bodies", placed, n)
		}
		r := radius * math.Sqrt(rng.Float64())
		a := rng.Float64() * 2 * math.Pi
		pos := r2.Vec{X: r * math.Cos(a), Y: r * math.Sin(a)}
		if _, ok := u.Spawn(pos, r2.Vec{}, 1+rng.Float64()*9); ok {
			placed++
		}
	}
}

func TestTwoBodyScenario(t *testing.T) {
	tests := []struct {
		name          string
		survivalRatio float64
		wantOutcome   Outcome
		wantLive      int
	}{
		{"equal masses annihilate", 1.5, OutcomeAnnihilated, 0},
		{"equal masses merge", 1.0, OutcomeAbsorbed, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newTestUniverse(t, func(p *Params) {
				p.GravitationalConstant = 1
				p.ContactRadius = 1
				p.GridSubdivisions = 2
				p.MassSurvivalRatio = tt.survivalRatio
				p.CollisionMassRetention = 1
			})
			a := mustSpawn(t, u, r2.Vec{X: -2}, r2.Vec{}, 10)
			b := mustSpawn(t, u, r2.Vec{X: 2}, r2.Vec{}, 10)

			u.Step(0.1)

			if va := u.Velocity(a); !(va.X > 0) {
				t.Errorf("body a velocity %v should point toward b", va)
			}
			if vb := u.Velocity(b); !(vb.X < 0) {
				t.Errorf("body b velocity %v should point toward a", vb)
			}
			if u.Mass(a) != 10 || u.Mass(b) != 10 {
				t.Errorf("masses changed before contact: %g, %g", u.Mass(a), u.Mass(b))
			}
			if n := len(u.LastEvents().Collisions); n != 0 {
				t.Fatalf("unexpected collision at distance 4: %d events", n)
			}

			var collisions []Collision
			for i := 0; i < 200; i++ {
				u.Step(0.1)
				collisions = append(collisions, u.LastEvents().Collisions...)
			}

			if len(collisions) != 1 {
				t.Fatalf("got %d collisions, want exactly 1", len(collisions))
			}
			c := collisions[0]
			if c.Outcome != tt.wantOutcome {
				t.Errorf("outcome = %v, want %v", c.Outcome, tt.wantOutcome)
			}
			if c.A != a || c.B != b {
				t.Errorf("pair = (%d,%d), want (%d,%d)", c.A, c.B, a, b)
			}
			if u.LiveCount() != tt.wantLive {
				t.Errorf("live = %d, want %d", u.LiveCount(), tt.wantLive)
			}
			if tt.wantOutcome == OutcomeAbsorbed {
				if c.Survivor != a {
					t.Errorf("equal-mass survivor = %d, want lower id %d", c.Survivor, a)
				}
				if math.Abs(u.Mass(a)-20) > 1e-12 {
					t.Errorf("survivor mass = %g, want 20", u.Mass(a))
				}
			}
		})
	}
}

func TestSpawnRejection(t *testing.T) {
	u := newTestUniverse(t, nil)
	mustSpawn(t, u, r2.Vec{}, r2.Vec{}, 1)

	tests := []struct {
		name   string
		pos    r2.Vec
		mass   float64
		wantOK bool
	}{
		{"identical position", r2.Vec{}, 1, false},
		{"inside radius", r2.Vec{X: 0.5, Y: 0.5}, 1, false},
		{"on radius", r2.Vec{X: 1}, 1, false},
		{"outside radius", r2.Vec{X: 1.01}, 1, true},
		{"zero mass", r2.Vec{X: 50}, 0, false},
		{"negative mass", r2.Vec{X: 60}, -1, false},
		{"nan position", r2.Vec{X: math.NaN()}, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := u.Spawn(tt.pos, r2.Vec{}, tt.mass)
			if ok != tt.wantOK {
				t.Fatalf("Spawn ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok && id != -1 {
				t.Errorf("rejected spawn returned id %d", id)
			}
		})
	}
}

// Repeated attempts at the same point must never place two bodies within
// the contact radius.
func TestSpawnRetryKeepsSeparation(t *testing.T) {
	u := newTestUniverse(t, nil)
	rng := rand.New(rand.NewSource(5))

	placed := 0
	for attempt := 0; attempt < 500 && placed < 40; attempt++ {
		pos := r2.Vec{}
		if attempt%2 == 1 {
			pos = r2.Vec{X: rng.Float64()*20 - 10, Y: rng.Float64()*20 - 10}
		}
		if _, ok := u.Spawn(pos, r2.Vec{}, 1); ok {
			placed++
		}
	}

	var positions []r2.Vec
	u.Each(func(_ BodyID, pos, _ r2.Vec, _ float64) {
		positions = append(positions, pos)
	})
	for i := range positions {
		for j := i + 1; j < len(positions); j++ {
			if d := r2.Norm(r2.Sub(positions[i], positions[j])); d <= 1 {
				t.Fatalf("bodies %d and %d only %g apart", i, j, d)
			}
		}
	}
}

func TestGravityRamp(t *testing.T) {
	u := newTestUniverse(t, func(p *Params) {
		p.GravitationalConstant = 1
		p.RampRatePerSecond = -10
		p.MaxAbsGravitationalConstant = 2
	})

	want := []float64{0, -1, -2, -2, -2}
	for i, w := range want {
		u.Step(0.1)
		if math.Abs(u.G()-w) > 1e-12 {
			t.Errorf("after step %d G = %g, want %g", i+1, u.G(), w)
		}
	}
}

func TestGravityRampUnclamped(t *testing.T) {
	u := newTestUniverse(t, func(p *Params) {
		p.GravitationalConstant = 1
		p.RampRatePerSecond = 10
		p.MaxAbsGravitationalConstant = 0
	})

	for i := 1; i <= 5; i++ {
		u.Step(0.1)
		if want := 1 + float64(i); math.Abs(u.G()-want) > 1e-9 {
			t.Errorf("after step %d G = %g, want %g", i, u.G(), want)
		}
	}
}

func TestSetRampRate(t *testing.T) {
	u := newTestUniverse(t, func(p *Params) {
		p.GravitationalConstant = 1
	})

	u.SetRampRate(2)
	u.SetRampRate(math.NaN())
	u.Step(0.5)
	if math.Abs(u.G()-2) > 1e-12 {
		t.Errorf("G = %g, want 2", u.G())
	}
	if u.Params().RampRatePerSecond != 2 {
		t.Errorf("ramp rate = %g, want 2", u.Params().RampRatePerSecond)
	}
}

func TestRampConstant(t *testing.T) {
	tests := []struct {
		name                string
		g, rate, maxAbs, dt float64
		want                float64
	}{
		{"no ramp", 3, 0, 5, 1, 3},
		{"ramp up", 1, 2, 5, 0.5, 2},
		{"clamp high", 4.5, 1, 5, 1, 5},
		{"clamp low", -4.5, -1, 5, 1, -5},
		{"sign change", 0.1, -1, 5, 0.2, -0.1},
		{"unclamped", 100, 10, 0, 1, 110},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rampConstant(tt.g, tt.rate, tt.maxAbs, tt.dt)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("rampConstant = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestDespawn(t *testing.T) {
	u := newTestUniverse(t, func(p *Params) {
		p.DespawnDistance = 5
	})
	near := mustSpawn(t, u, r2.Vec{X: 1}, r2.Vec{}, 1)
	far := mustSpawn(t, u, r2.Vec{X: 10}, r2.Vec{}, 1)

	u.Step(0.1)

	if u.IsAlive(far) {
		t.Error("body beyond despawn distance should be removed")
	}
	if !u.IsAlive(near) {
		t.Error("body inside despawn distance should survive")
	}
	if got := u.LastEvents().Despawned; !slices.Equal(got, []BodyID{far}) {
		t.Errorf("despawned = %v, want [%d]", got, far)
	}
}

func TestIntegratorOrder(t *testing.T) {
	u := newTestUniverse(t, func(p *Params) {
		p.GridSubdivisions = 1
		p.ContactRadius = 0.1
		p.GravitationalConstant = 1
	})
	a := mustSpawn(t, u, r2.Vec{}, r2.Vec{}, 1)
	mustSpawn(t, u, r2.Vec{X: 1}, r2.Vec{}, 1)

	u.Step(0.5)

	// a = F/m = 1, v = 0.5, x = v*dt = 0.25 with the updated velocity.
	if v := u.Velocity(a); math.Abs(v.X-0.5) > 1e-12 {
		t.Errorf("velocity = %v, want 0.5", v.X)
	}
	if p := u.Position(a); math.Abs(p.X-0.25) > 1e-12 {
		t.Errorf("position = %v, want 0.25", p.X)
	}
}

func TestDeterminism(t *testing.T) {
	run := func(workers int) State {
		u := newTestUniverse(t, func(p *Params) {
			p.GridSubdivisions = 12
			p.Workers = workers
			p.MassSurvivalRatio = 2
			p.CollisionMassRetention = 0.9
		})
		spawnField(t, u, rand.New(rand.NewSource(99)), 300, 40)
		for i := 0; i < 100; i++ {
			u.Step(0.02)
		}
		return u.State()
	}

	t.Run("serial", func(t *testing.T) {
		a, b := run(1), run(1)
		if !slices.Equal(a.Bodies, b.Bodies) || a.Bounds != b.Bounds {
			t.Error("two serial runs diverged")
		}
	})

	t.Run("parallel", func(t *testing.T) {
		a, b := run(4), run(4)
		if !slices.Equal(a.Bodies, b.Bodies) {
			t.Error("two parallel runs with the same worker count diverged")
		}
	})
}

func TestParallelMatchesSerial(t *testing.T) {
	build := func(workers int) *Universe {
		u := newTestUniverse(t, func(p *Params) {
			p.GridSubdivisions = 10
			p.Workers = workers
			p.ContactRadius = 0.2
		})
		spawnField(t, u, rand.New(rand.NewSource(17)), 256, 60)
		return u
	}
	serial, parallel := build(1), build(3)

	for i := 0; i < 5; i++ {
		serial.Step(0.01)
		parallel.Step(0.01)
	}

	if serial.LiveCount() != parallel.LiveCount() {
		t.Fatalf("live count %d vs %d", serial.LiveCount(), parallel.LiveCount())
	}
	for id := BodyID(0); int(id) < serial.BodyCount(); id++ {
		if serial.IsAlive(id) != parallel.IsAlive(id) {
			t.Fatalf("body %d alive mismatch", id)
		}
		d := r2.Norm(r2.Sub(serial.Position(id), parallel.Position(id)))
		if d > 1e-9 {
			t.Errorf("body %d position differs by %g", id, d)
		}
	}
}

func TestStateRoundtrip(t *testing.T) {
	u := newTestUniverse(t, func(p *Params) {
		p.GridSubdivisions = 2
		p.MassSurvivalRatio = 1.5
	})
	mustSpawn(t, u, r2.Vec{X: -1.2}, r2.Vec{}, 3)
	mustSpawn(t, u, r2.Vec{X: 1.2}, r2.Vec{}, 3)
	mustSpawn(t, u, r2.Vec{Y: 8}, r2.Vec{X: 1}, 4)
	for i := 0; i < 30; i++ {
		u.Step(0.05)
	}

	s := u.State()
	restored, err := RestoreUniverse(u.Params(), s)
	if err != nil {
		t.Fatalf("RestoreUniverse: %v", err)
	}
	t.Cleanup(restored.Close)

	if restored.LiveCount() != u.LiveCount() || restored.BodyCount() != u.BodyCount() {
		t.Errorf("counts differ after restore")
	}

	u.Step(0.05)
	restored.Step(0.05)
	if a, b := u.State(), restored.State(); !slices.Equal(a.Bodies, b.Bodies) || a.G != b.G || a.Tick != b.Tick {
		t.Error("restored universe diverged from original")
	}

	s.Bodies[1].ID = 7
	if _, err := RestoreUniverse(u.Params(), s); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState for sparse ids, got %v", err)
	}
}

func TestLiveMassRange(t *testing.T) {
	u := newTestUniverse(t, nil)
	if r := u.LiveMassRange(); r != (Range{}) {
		t.Errorf("empty universe mass range = %v", r)
	}
	mustSpawn(t, u, r2.Vec{}, r2.Vec{}, 2)
	mustSpawn(t, u, r2.Vec{X: 5}, r2.Vec{}, 7)
	if r := u.LiveMassRange(); r.Min != 2 || r.Max != 7 {
		t.Errorf("mass range = %v, want [2,7]", r)
	}
	if r := u.MassRange(); r != DefaultParams().MassRange {
		t.Errorf("configured mass range = %v", r)
	}
}

type phaseRecorder struct {
	phases []string
}

func (r *phaseRecorder) StartPhase(name string) { r.phases = append(r.phases, name) }

func TestPhaseObserver(t *testing.T) {
	u := newTestUniverse(t, nil)
	rec := &phaseRecorder{}
	u.SetPhaseObserver(rec)
	u.Step(0.1)

	want := []string{PhaseDespawn, PhaseGrid, PhaseForces, PhaseCollisions, PhaseIntegrate, PhaseBounds}
	if !slices.Equal(rec.phases, want) {
		t.Errorf("phases = %v, want %v", rec.phases, want)
	}
}

func BenchmarkStep(b *testing.B) {
	for _, workers := range []int{1, 4} {
		name := "serial"
		if workers > 1 {
			name = "parallel"
		}
		b.Run(name, func(b *testing.B) {
			u := newTestUniverse(b, func(p *Params) {
				p.GridSubdivisions = 32
				p.Workers = workers
				p.ContactRadius = 0.1
			})
			spawnField(b, u, rand.New(rand.NewSource(1)), 3000, 300)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				u.Step(0.01)
			}
		})
	}
}
