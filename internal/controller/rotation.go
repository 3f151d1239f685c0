package controller

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// normalizeEpsilon is the length below which a vector normalises to zero.
const normalizeEpsilon = 1e-5

var (
	worldUp      = mgl64.Vec3{0, 1, 0}
	worldRight   = mgl64.Vec3{1, 0, 0}
	worldForward = mgl64.Vec3{0, 0, 1}
)

// Euler builds a rotation from pitch (about +X, positive looks down) and yaw
// (about +Y, positive turns right), both in degrees. Roll is always zero.
func Euler(pitch, yaw float64) mgl64.Quat {
	yawQ := mgl64.QuatRotate(mgl64.DegToRad(yaw), worldUp)
	pitchQ := mgl64.QuatRotate(mgl64.DegToRad(pitch), worldRight)
	return yawQ.Mul(pitchQ)
}

// LookRotation returns the rotation whose forward (+Z) axis points along dir
// with +Y kept up. A zero dir yields the identity.
func LookRotation(dir mgl64.Vec3) mgl64.Quat {
	dir = normalizeOrZero(dir)
	if dir == (mgl64.Vec3{}) {
		return mgl64.QuatIdent()
	}
	horizontal := math.Hypot(dir.X(), dir.Z())
	yaw := math.Atan2(dir.X(), dir.Z())
	pitch := math.Atan2(-dir.Y(), horizontal)
	return mgl64.QuatRotate(yaw, worldUp).Mul(mgl64.QuatRotate(pitch, worldRight))
}

// Slerp interpolates along the shorter arc; t is clamped to [0,1].
func Slerp(from, to mgl64.Quat, t float64) mgl64.Quat {
	t = mgl64.Clamp(t, 0, 1)
	if from.Dot(to) < 0 {
		to = to.Scale(-1)
	}
	return mgl64.QuatSlerp(from, to, t).Normalize()
}

// HorizontalBasis projects a rotation's forward and right axes onto the
// ground plane and renormalises them.
func HorizontalBasis(q mgl64.Quat) (forward, right mgl64.Vec3) {
	forward = q.Rotate(worldForward)
	right = q.Rotate(worldRight)
	forward[1] = 0
	right[1] = 0
	return normalizeOrZero(forward), normalizeOrZero(right)
}

func normalizeOrZero(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < normalizeEpsilon {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}
