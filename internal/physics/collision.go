package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	axisX = 0
	axisY = 1
	axisZ = 2
)

type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// Shape is an upright box anchored at its bottom centre.
type Shape struct {
	HalfWidth float64
	Height    float64
}

func CharacterShape() Shape {
	return Shape{HalfWidth: CharacterHalfWidth, Height: CharacterHeight}
}

func (s Shape) At(pos mgl64.Vec3) AABB {
	return AABB{
		Min: mgl64.Vec3{pos.X() - s.HalfWidth, pos.Y(), pos.Z() - s.HalfWidth},
		Max: mgl64.Vec3{pos.X() + s.HalfWidth, pos.Y() + s.Height, pos.Z() + s.HalfWidth},
	}
}

func (a AABB) Offset(d mgl64.Vec3) AABB {
	return AABB{Min: a.Min.Add(d), Max: a.Max.Add(d)}
}

func (a AABB) Intersects(b AABB) bool {
	return a.Min.X() < b.Max.X() &&
		a.Max.X() > b.Min.X() &&
		a.Min.Y() < b.Max.Y() &&
		a.Max.Y() > b.Min.Y() &&
		a.Min.Z() < b.Max.Z() &&
		a.Max.Z() > b.Min.Z()
}

func cellAABB(x, y, z int) AABB {
	return AABB{
		Min: mgl64.Vec3{float64(x), float64(y), float64(z)},
		Max: mgl64.Vec3{float64(x + 1), float64(y + 1), float64(z + 1)},
	}
}

func CollidesWithBlock(aabb AABB, blockStore BlockStore) bool {
	if blockStore == nil {
		return false
	}

	minX, maxX := floorForMin(aabb.Min.X()), floorForMax(aabb.Max.X())
	minY, maxY := floorForMin(aabb.Min.Y()), floorForMax(aabb.Max.Y())
	minZ, maxZ := floorForMin(aabb.Min.Z()), floorForMax(aabb.Max.Z())

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			for z := minZ; z <= maxZ; z++ {
				if !blockStore.IsSolid(x, y, z) {
					continue
				}
				if aabb.Intersects(cellAABB(x, y, z)) {
					return true
				}
			}
		}
	}
	return false
}

// ResolveMovement moves shape from pos by delta, one axis at a time (Y, X, Z).
// The returned delta has the components that hit a cell zeroed.
func ResolveMovement(shape Shape, pos, delta mgl64.Vec3, blockStore BlockStore) (mgl64.Vec3, mgl64.Vec3) {
	newPos := pos
	newDelta := delta
	for _, axis := range [...]int{axisY, axisX, axisZ} {
		newPos[axis], newDelta[axis] = resolveAxis(shape, newPos, delta[axis], axis, blockStore)
	}
	return newPos, newDelta
}

func resolveAxis(shape Shape, pos mgl64.Vec3, delta float64, axis int, blockStore BlockStore) (float64, float64) {
	if blockStore == nil || nearlyZero(delta) {
		return pos[axis] + delta, delta
	}

	box := shape.At(pos)
	u, v := crossAxes(axis)
	minU, maxU := floorForMin(box.Min[u]), floorForMax(box.Max[u])
	minV, maxV := floorForMin(box.Min[v]), floorForMax(box.Max[v])

	allowed := delta
	var cell [3]int
	if delta > 0 {
		start := int(math.Floor(box.Max[axis]))
		end := int(math.Floor(box.Max[axis] + delta))
		for a := start; a <= end; a++ {
			for cu := minU; cu <= maxU; cu++ {
				for cv := minV; cv <= maxV; cv++ {
					cell[axis], cell[u], cell[v] = a, cu, cv
					if !blockStore.IsSolid(cell[0], cell[1], cell[2]) {
						continue
					}
					if candidate := float64(a) - box.Max[axis]; candidate < allowed {
						allowed = candidate
					}
				}
			}
		}
	} else {
		start := int(math.Floor(box.Min[axis] + delta))
		end := int(math.Floor(box.Min[axis] - CollisionAxisTolerance))
		for a := end; a >= start; a-- {
			for cu := minU; cu <= maxU; cu++ {
				for cv := minV; cv <= maxV; cv++ {
					cell[axis], cell[u], cell[v] = a, cu, cv
					if !blockStore.IsSolid(cell[0], cell[1], cell[2]) {
						continue
					}
					if candidate := float64(a+1) - box.Min[axis]; candidate > allowed {
						allowed = candidate
					}
				}
			}
		}
	}

	if !nearlyEqual(allowed, delta) {
		return pos[axis] + allowed, 0
	}
	return pos[axis] + delta, delta
}

func crossAxes(axis int) (int, int) {
	switch axis {
	case axisX:
		return axisY, axisZ
	case axisY:
		return axisX, axisZ
	default:
		return axisX, axisY
	}
}

func floorForMin(v float64) int {
	return int(math.Floor(v + CollisionAxisTolerance))
}

func floorForMax(v float64) int {
	return int(math.Floor(v - CollisionAxisTolerance))
}

func nearlyZero(v float64) bool {
	return math.Abs(v) <= CollisionAxisTolerance
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= CollisionAxisTolerance
}
