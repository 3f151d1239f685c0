package controller

import (
	"github.com/go-gl/mathgl/mgl64"
)

// LocomotionStep is the outcome of one fixed tick of locomotion.
type LocomotionStep struct {
	// Velocity is the full velocity command; its Y is the body's current Y.
	Velocity mgl64.Vec3
	// Direction is the unit camera-relative move direction, zero when idle.
	Direction mgl64.Vec3
	Moving    bool
	// AnimSpeed is the smoothed speed over the running speed.
	AnimSpeed float64
}

type LocomotionModel struct {
	movementSpeed float64
	currentSpeed  float64
}

func NewLocomotionModel(movementSpeed float64) *LocomotionModel {
	return &LocomotionModel{movementSpeed: movementSpeed}
}

func (m *LocomotionModel) CurrentSpeed() float64 {
	return m.currentSpeed
}

// TargetSpeed scales the walk or run speed by the move magnitude. The
// magnitude is not clamped.
func (m *LocomotionModel) TargetSpeed(move mgl64.Vec2, running bool) float64 {
	speed := m.movementSpeed
	if running {
		speed *= RunMultiplier
	}
	return speed * move.Len()
}

// Smooth moves the current speed toward target by clamp(dt*rate, 0, 1) of
// the remaining gap.
func (m *LocomotionModel) Smooth(target, dt float64) float64 {
	m.currentSpeed += (target - m.currentSpeed) * mgl64.Clamp(dt*SpeedSmoothingRate, 0, 1)
	return m.currentSpeed
}

// Step advances one fixed tick. forward and right are the horizontal camera
// basis; velocity is the body's current velocity, whose Y is preserved.
func (m *LocomotionModel) Step(move mgl64.Vec2, running bool, forward, right, velocity mgl64.Vec3, dt float64) LocomotionStep {
	speed := m.Smooth(m.TargetSpeed(move, running), dt)

	dir := normalizeOrZero(forward.Mul(move.Y()).Add(right.Mul(move.X())))
	step := LocomotionStep{
		Velocity:  mgl64.Vec3{0, velocity.Y(), 0},
		AnimSpeed: speed / (m.movementSpeed * RunMultiplier),
	}
	if dir.Dot(dir) > moveDirectionThreshold {
		step.Moving = true
		step.Direction = dir
		step.Velocity = mgl64.Vec3{dir.X() * speed, velocity.Y(), dir.Z() * speed}
	}
	return step
}
