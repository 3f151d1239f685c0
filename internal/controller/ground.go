package controller

import (
	"github.com/Versifine/gait/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// GroundSensor answers "is there ground under the check point" with a sphere
// overlap against the ground layers.
type GroundSensor struct {
	world  PhysicsWorld
	radius float64
	mask   physics.LayerMask
}

func NewGroundSensor(world PhysicsWorld, radius float64, mask physics.LayerMask) *GroundSensor {
	return &GroundSensor{world: world, radius: radius, mask: mask}
}

// Sense reports not grounded when no world is bound.
func (s *GroundSensor) Sense(position mgl64.Vec3) bool {
	if s == nil || s.world == nil {
		return false
	}
	return s.world.OverlapSphere(position, s.radius, s.mask)
}
