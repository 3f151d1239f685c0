package physics

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

type BlockStore interface {
	IsSolid(x, y, z int) bool
}

type Cell struct {
	X int
	Y int
	Z int
}

// World is a sparse grid of unit cells, each tagged with a single layer.
type World struct {
	mu    sync.RWMutex
	cells map[Cell]LayerMask
}

func NewWorld() *World {
	return &World{cells: make(map[Cell]LayerMask)}
}

func (w *World) SetCell(x, y, z int, layer LayerMask) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if layer == LayerNone {
		delete(w.cells, Cell{X: x, Y: y, Z: z})
		return
	}
	w.cells[Cell{X: x, Y: y, Z: z}] = layer
}

func (w *World) ClearCell(x, y, z int) {
	w.SetCell(x, y, z, LayerNone)
}

// AddFloor fills the inclusive rectangle [minX,maxX]x[minZ,maxZ] at height y.
func (w *World) AddFloor(minX, maxX, minZ, maxZ, y int, layer LayerMask) {
	for x := minX; x <= maxX; x++ {
		for z := minZ; z <= maxZ; z++ {
			w.SetCell(x, y, z, layer)
		}
	}
}

func (w *World) LayerAt(x, y, z int) LayerMask {
	if w == nil {
		return LayerNone
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cells[Cell{X: x, Y: y, Z: z}]
}

func (w *World) IsSolid(x, y, z int) bool {
	return SolidLayers.Contains(w.LayerAt(x, y, z))
}

func (w *World) CellCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.cells)
}

// OverlapSphere reports whether a sphere touches any cell whose layer is in mask.
// Touching the cell surface counts as overlap.
func (w *World) OverlapSphere(center mgl64.Vec3, radius float64, mask LayerMask) bool {
	if w == nil || radius < 0 || mask == LayerNone {
		return false
	}

	minX := int(math.Floor(center.X() - radius))
	maxX := int(math.Floor(center.X() + radius))
	minY := int(math.Floor(center.Y() - radius))
	maxY := int(math.Floor(center.Y() + radius))
	minZ := int(math.Floor(center.Z() - radius))
	maxZ := int(math.Floor(center.Z() + radius))

	w.mu.RLock()
	defer w.mu.RUnlock()

	r2 := radius * radius
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			for z := minZ; z <= maxZ; z++ {
				layer, ok := w.cells[Cell{X: x, Y: y, Z: z}]
				if !ok || !mask.Contains(layer) {
					continue
				}
				if distanceSqToCell(center, x, y, z) <= r2 {
					return true
				}
			}
		}
	}
	return false
}

func distanceSqToCell(p mgl64.Vec3, x, y, z int) float64 {
	dx := axisGap(p.X(), float64(x))
	dy := axisGap(p.Y(), float64(y))
	dz := axisGap(p.Z(), float64(z))
	return dx*dx + dy*dy + dz*dz
}

func axisGap(v, cellMin float64) float64 {
	switch {
	case v < cellMin:
		return cellMin - v
	case v > cellMin+1:
		return v - (cellMin + 1)
	default:
		return 0
	}
}
