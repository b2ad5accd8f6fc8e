package systems

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestBoundsObserve(t *testing.T) {
	var b Bounds
	if s := b.Size(); s.X != 0 || s.Y != 0 {
		t.Errorf("empty size = %v", s)
	}
	if b.Contains(r2.Vec{}) {
		t.Error("empty bounds should contain nothing")
	}

	b.Observe(r2.Vec{X: 2, Y: -1})
	if b.MinX != 2 || b.MaxX != 2 || b.MinY != -1 || b.MaxY != -1 {
		t.Errorf("first observation gave %+v", b)
	}

	for _, p := range []r2.Vec{{X: -3, Y: 4}, {X: 5, Y: 0}, {X: 0, Y: -2}} {
		b.Observe(p)
	}
	want := boundsOf(-3, 5, -2, 4)
	if b != want {
		t.Errorf("bounds = %+v, want %+v", b, want)
	}
	if c := b.Center(); c.X != 1 || c.Y != 1 {
		t.Errorf("center = %v", c)
	}
	if box := b.Box(); box.Min != (r2.Vec{X: -3, Y: -2}) || box.Max != (r2.Vec{X: 5, Y: 4}) {
		t.Errorf("box = %v", box)
	}

	b.Reset()
	if b.Initialized {
		t.Error("Reset should empty the box")
	}
}

func TestBoundsGrowOnly(t *testing.T) {
	u := newTestUniverse(t, func(p *Params) {
		p.DespawnDistance = 5
	})
	mustSpawn(t, u, r2.Vec{}, r2.Vec{}, 1)
	mustSpawn(t, u, r2.Vec{X: 4}, r2.Vec{}, 1)
	mustSpawn(t, u, r2.Vec{X: 8}, r2.Vec{}, 1)

	u.Step(0.01)

	b := u.Bounds()
	if b.MaxX < 8 {
		t.Errorf("bounds shrank after despawn: %+v", b)
	}
}

func TestBoundsShrink(t *testing.T) {
	u := newTestUniverse(t, func(p *Params) {
		p.DespawnDistance = 5
		p.ShrinkBounds = true
		p.GravitationalConstant = 0
	})
	mustSpawn(t, u, r2.Vec{}, r2.Vec{}, 1)
	mustSpawn(t, u, r2.Vec{X: 4}, r2.Vec{}, 1)
	mustSpawn(t, u, r2.Vec{X: 8}, r2.Vec{}, 1)

	u.Step(0.01)

	b := u.Bounds()
	if b.MaxX != 4 || b.MinX != 0 {
		t.Errorf("shrinking bounds = %+v, want x in [0,4]", b)
	}
}

func TestBoundsContainLiveBodies(t *testing.T) {
	u := newTestUniverse(t, func(p *Params) {
		p.GridSubdivisions = 4
	})
	mustSpawn(t, u, r2.Vec{X: -3}, r2.Vec{X: -2}, 1)
	mustSpawn(t, u, r2.Vec{X: 3}, r2.Vec{Y: 5}, 1)

	for i := 0; i < 50; i++ {
		u.Step(0.05)
		b := u.Bounds()
		u.Each(func(id BodyID, pos, _ r2.Vec, _ float64) {
			if !b.Contains(pos) {
				t.Fatalf("tick %d: body %d at %v outside %+v", i, id, pos, b)
			}
		})
	}
}
