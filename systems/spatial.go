package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// SpatialGrid is an N×N uniform grid laid over the current bounds.
// It is rebuilt every tick; per-cell slices keep their capacity between
// builds so steady-state rebuilds do not allocate.
type SpatialGrid struct {
	n        int
	origin   r2.Vec
	cellSize r2.Vec
	cells    [][]BodyID // flat, indexed by hash
	bodyCell []int      // indexed by BodyID, -1 when not inserted
}

// NewSpatialGrid creates an empty grid with the given subdivision count.
func NewSpatialGrid(subdivisions int) *SpatialGrid {
	if subdivisions < 1 {
		subdivisions = 1
	}
	cells := make([][]BodyID, subdivisions*subdivisions)
	for i := range cells {
		cells[i] = make([]BodyID, 0, 4)
	}
	return &SpatialGrid{
		n:     subdivisions,
		cells: cells,
	}
}

// Build resets the grid to cover bounds. bodyCount is the number of ids
// that may be inserted (ids are in [0, bodyCount)).
func (g *SpatialGrid) Build(bounds Bounds, bodyCount int) {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}

	size := bounds.Size()
	g.origin = bounds.Origin()
	g.cellSize = r2.Vec{X: size.X / float64(g.n), Y: size.Y / float64(g.n)}

	if cap(g.bodyCell) < bodyCount {
		g.bodyCell = make([]int, bodyCount)
	}
	g.bodyCell = g.bodyCell[:bodyCount]
	for i := range g.bodyCell {
		g.bodyCell[i] = -1
	}
}

// Insert places id into the cell containing pos.
func (g *SpatialGrid) Insert(id BodyID, pos r2.Vec) {
	cx, cy := g.CellOf(pos)
	h := g.Hash(cx, cy)
	g.cells[h] = append(g.cells[h], id)
	if int(id) < len(g.bodyCell) {
		g.bodyCell[id] = h
	}
}

// CellOf returns the clamped cell coordinates for a position.
func (g *SpatialGrid) CellOf(pos r2.Vec) (cx, cy int) {
	return axisCell(pos.X, g.origin.X, g.cellSize.X, g.n),
		axisCell(pos.Y, g.origin.Y, g.cellSize.Y, g.n)
}

// axisCell maps a coordinate to a cell index in [0, n-1]. A zero cell size
// (degenerate extent) maps everything to 0.
func axisCell(v, origin, size float64, n int) int {
	if !(size > 0) {
		return 0
	}
	f := math.Floor((v - origin) / size)
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f >= float64(n) {
		return n - 1
	}
	return int(f)
}

// Hash returns the flat cell index.
func (g *SpatialGrid) Hash(cx, cy int) int {
	return cx + cy*g.n
}

// Unhash is the inverse of Hash.
func (g *SpatialGrid) Unhash(h int) (cx, cy int) {
	return h % g.n, h / g.n
}

// BodyCell returns the hash of the cell id was inserted into, or -1.
func (g *SpatialGrid) BodyCell(id BodyID) int {
	if id < 0 || int(id) >= len(g.bodyCell) {
		return -1
	}
	return g.bodyCell[id]
}

// NeighborCells appends the Moore neighbourhood of id's cell to dst.
// Returns dst unchanged if id was not inserted.
func (g *SpatialGrid) NeighborCells(id BodyID, dst []int) []int {
	h := g.BodyCell(id)
	if h < 0 {
		return dst
	}
	return g.NeighborCellsOf(h, dst)
}

// NeighborCellsOf appends the cell h and its in-range neighbours to dst,
// row-major from (cx-1, cy-1). Edges do not wrap.
func (g *SpatialGrid) NeighborCellsOf(h int, dst []int) []int {
	cx, cy := g.Unhash(h)
	for y := cy - 1; y <= cy+1; y++ {
		if y < 0 || y >= g.n {
			continue
		}
		for x := cx - 1; x <= cx+1; x++ {
			if x < 0 || x >= g.n {
				continue
			}
			dst = append(dst, g.Hash(x, y))
		}
	}
	return dst
}

// CellBodies returns the ids in cell h. The slice is owned by the grid and
// valid until the next Build.
func (g *SpatialGrid) CellBodies(h int) []BodyID {
	if h < 0 || h >= len(g.cells) {
		return nil
	}
	return g.cells[h]
}

// Subdivisions returns N.
func (g *SpatialGrid) Subdivisions() int { return g.n }

// CellSize returns the per-axis cell extent.
func (g *SpatialGrid) CellSize() r2.Vec { return g.cellSize }

// Origin returns the world position of cell (0,0)'s minimum corner.
func (g *SpatialGrid) Origin() r2.Vec { return g.origin }

// CellRect returns the world-space box covered by cell h.
func (g *SpatialGrid) CellRect(h int) r2.Box {
	cx, cy := g.Unhash(h)
	lo := r2.Vec{
		X: g.origin.X + float64(cx)*g.cellSize.X,
		Y: g.origin.Y + float64(cy)*g.cellSize.Y,
	}
	return r2.Box{Min: lo, Max: r2.Add(lo, g.cellSize)}
}

// Occupancy appends the body count of every cell to dst.
func (g *SpatialGrid) Occupancy(dst []int) []int {
	for _, c := range g.cells {
		dst = append(dst, len(c))
	}
	return dst
}
