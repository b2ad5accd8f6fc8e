package systems

import "gonum.org/v1/gonum/spatial/r2"

// Bounds is the axis-aligned box around every observed live position.
// The zero value is empty; the first observation initialises it.
type Bounds struct {
	MinX float64 `json:"min_x" msgpack:"min_x"`
	MaxX float64 `json:"max_x" msgpack:"max_x"`
	MinY float64 `json:"min_y" msgpack:"min_y"`
	MaxY float64 `json:"max_y" msgpack:"max_y"`

	Initialized bool `json:"initialized" msgpack:"initialized"`
}

// Observe widens the box to include p.
func (b *Bounds) Observe(p r2.Vec) {
	if !b.Initialized {
		b.MinX, b.MaxX = p.X, p.X
		b.MinY, b.MaxY = p.Y, p.Y
		b.Initialized = true
		return
	}
	if p.X < b.MinX {
		b.MinX = p.X
	} else if p.X > b.MaxX {
		b.MaxX = p.X
	}
	if p.Y < b.MinY {
		b.MinY = p.Y
	} else if p.Y > b.MaxY {
		b.MaxY = p.Y
	}
}

// Reset empties the box.
func (b *Bounds) Reset() {
	*b = Bounds{}
}

// Size returns the box extent per axis. An empty box has zero size.
func (b Bounds) Size() r2.Vec {
	if !b.Initialized {
		return r2.Vec{}
	}
	return r2.Vec{X: b.MaxX - b.MinX, Y: b.MaxY - b.MinY}
}

// Origin returns the minimum corner.
func (b Bounds) Origin() r2.Vec {
	return r2.Vec{X: b.MinX, Y: b.MinY}
}

// Center returns the midpoint of the box.
func (b Bounds) Center() r2.Vec {
	return r2.Vec{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// Contains reports whether p lies inside the closed box.
func (b Bounds) Contains(p r2.Vec) bool {
	return b.Initialized && p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Box converts to a gonum box.
func (b Bounds) Box() r2.Box {
	return r2.Box{
		Min: r2.Vec{X: b.MinX, Y: b.MinY},
		Max: r2.Vec{X: b.MaxX, Y: b.MaxY},
	}
}
