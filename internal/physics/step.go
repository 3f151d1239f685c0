package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type State struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	OnGround bool
}

// Step integrates one fixed physics step: gravity, then velocity, then collision.
// A velocity component whose movement was blocked is zeroed.
func Step(state *State, shape Shape, gravity, dt float64, blockStore BlockStore) {
	if state == nil || dt <= 0 {
		return
	}

	state.Velocity[axisY] += gravity * dt
	delta := state.Velocity.Mul(dt)

	newPos, applied := ResolveMovement(shape, state.Position, delta, blockStore)
	for axis := range applied {
		if applied[axis] == 0 && delta[axis] != 0 {
			state.Velocity[axis] = 0
		}
	}
	state.Position = newPos
	state.OnGround = IsStandingOnSolidBlock(shape, state.Position, blockStore)
	zeroResidualVelocity(&state.Velocity)
}

func IsStandingOnSolidBlock(shape Shape, pos mgl64.Vec3, blockStore BlockStore) bool {
	if blockStore == nil {
		return false
	}
	probe := shape.At(pos).Offset(mgl64.Vec3{0, -GroundProbeDistance, 0})
	return CollidesWithBlock(probe, blockStore)
}

func zeroResidualVelocity(v *mgl64.Vec3) {
	if v == nil {
		return
	}
	for axis := range v {
		if math.Abs(v[axis]) < MinimumResidualSpeed {
			v[axis] = 0
		}
	}
}
