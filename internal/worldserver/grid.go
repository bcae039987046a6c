package worldserver

import "sync"

// cellSize is the uniform grid cell width in world units.
const cellSize = 50

type cellKey struct {
	x, z int64
}

// floorDiv performs floor division, unlike Go's truncating integer
// division, so negative coordinates land in the correct (lower) cell
// instead of rounding toward zero.
func floorDiv(n, d int64) int64 {
	q := n / d
	if (n%d != 0) && ((n < 0) != (d < 0)) {
		q--
	}
	return q
}

func cellOf(x, z int32) cellKey {
	return cellKey{floorDiv(int64(x), cellSize), floorDiv(int64(z), cellSize)}
}

// SpatialGrid is a uniform grid over the 2D (x, z) plane, keyed by 50-unit
// cells, used as the interest-management structure for broadcast and AI
// aggro scans. Safe for concurrent use; intended callers are
// all the same tick goroutine, but Nearby is also read by diagnostics.
type SpatialGrid struct {
	mu    sync.RWMutex
	cells map[cellKey]map[uint32]struct{}
}

// NewSpatialGrid constructs an empty grid.
func NewSpatialGrid() *SpatialGrid {
	return &SpatialGrid{cells: make(map[cellKey]map[uint32]struct{})}
}

// Insert places entityID into the cell containing (x, z).
func (g *SpatialGrid) Insert(entityID uint32, x, z int32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.insertLocked(entityID, cellOf(x, z))
}

func (g *SpatialGrid) insertLocked(entityID uint32, key cellKey) {
	bucket, ok := g.cells[key]
	if !ok {
		bucket = make(map[uint32]struct{})
		g.cells[key] = bucket
	}
	bucket[entityID] = struct{}{}
}

// Remove takes entityID out of the cell containing (x, z).
func (g *SpatialGrid) Remove(entityID uint32, x, z int32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeLocked(entityID, cellOf(x, z))
}

func (g *SpatialGrid) removeLocked(entityID uint32, key cellKey) {
	bucket, ok := g.cells[key]
	if !ok {
		return
	}
	delete(bucket, entityID)
	if len(bucket) == 0 {
		delete(g.cells, key)
	}
}

// Update moves entityID from the cell containing (oldX, oldZ) to the cell
// containing (newX, newZ). A no-op when both coordinates hash to the same
// cell.
func (g *SpatialGrid) Update(entityID uint32, oldX, oldZ, newX, newZ int32) {
	oldKey := cellOf(oldX, oldZ)
	newKey := cellOf(newX, newZ)
	if oldKey == newKey {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeLocked(entityID, oldKey)
	g.insertLocked(entityID, newKey)
}

// Nearby returns the union of entity ids occupying the 3x3 block of cells
// centered on (x, z) — the canonical interest set.
func (g *SpatialGrid) Nearby(x, z int32) []uint32 {
	center := cellOf(x, z)

	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []uint32
	for dx := int64(-1); dx <= 1; dx++ {
		for dz := int64(-1); dz <= 1; dz++ {
			bucket, ok := g.cells[cellKey{center.x + dx, center.z + dz}]
			if !ok {
				continue
			}
			for id := range bucket {
				out = append(out, id)
			}
		}
	}
	return out
}
