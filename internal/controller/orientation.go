package controller

import (
	"github.com/go-gl/mathgl/mgl64"
)

// OrientationModel owns camera yaw/pitch in degrees and smooths body facing.
type OrientationModel struct {
	lookSpeed   float64
	bottomClamp float64
	topClamp    float64

	yaw   float64
	pitch float64
}

func NewOrientationModel(lookSpeed, bottomClamp, topClamp float64) *OrientationModel {
	return &OrientationModel{
		lookSpeed:   lookSpeed,
		bottomClamp: bottomClamp,
		topClamp:    topClamp,
	}
}

// UpdateLook applies one tick of look input. Input under the deadzone leaves
// the angles untouched, but folding and clamping run every tick.
func (m *OrientationModel) UpdateLook(look mgl64.Vec2, dt float64) (float64, float64) {
	if look.Dot(look) >= LookDeadzone {
		step := dt * m.lookSpeed
		m.yaw += look.X() * step
		m.pitch -= look.Y() * step
	}
	m.yaw = FoldAngle(m.yaw)
	m.pitch = ClampAngle(m.pitch, m.bottomClamp, m.topClamp)
	return m.yaw, m.pitch
}

// UpdateFacing blends current toward a rotation facing dir by a fraction of
// RotationSmoothingRate*dt. A negligible dir leaves current unchanged.
func (m *OrientationModel) UpdateFacing(dir mgl64.Vec3, current mgl64.Quat, dt float64) mgl64.Quat {
	if dir.Dot(dir) <= moveDirectionThreshold {
		return current
	}
	return Slerp(current, LookRotation(dir), dt*RotationSmoothingRate)
}

func (m *OrientationModel) Yaw() float64   { return m.yaw }
func (m *OrientationModel) Pitch() float64 { return m.pitch }

func (m *OrientationModel) CameraRotation() mgl64.Quat {
	return Euler(m.pitch, m.yaw)
}

// FoldAngle adds or subtracts a single turn when the angle leaves
// [-360, 360]. It is not a modulo: |angle| > 720 stays out of range.
func FoldAngle(angle float64) float64 {
	if angle < -360 {
		angle += 360
	}
	if angle > 360 {
		angle -= 360
	}
	return angle
}

func ClampAngle(angle, lo, hi float64) float64 {
	return mgl64.Clamp(FoldAngle(angle), lo, hi)
}
