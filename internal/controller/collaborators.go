package controller

import (
	"github.com/Versifine/gait/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

type PhysicsWorld interface {
	OverlapSphere(center mgl64.Vec3, radius float64, mask physics.LayerMask) bool
}

type PhysicsBody interface {
	Velocity() mgl64.Vec3
	SetVelocity(v mgl64.Vec3)
	ApplyImpulse(impulse mgl64.Vec3)
}

type OrientationTarget interface {
	Rotation() mgl64.Quat
	SetRotation(q mgl64.Quat)
}

type AnimationBridge interface {
	SetScalar(name string, value float64)
	SetBool(name string, value bool)
	TriggerOnce(name string)
}

type PositionSource interface {
	Position() mgl64.Vec3
}

type EventPublisher interface {
	Publish(eventName string, evt any)
}

// Deps are the collaborators bound at construction. Events is optional.
type Deps struct {
	World      PhysicsWorld
	Body       PhysicsBody
	Facing     OrientationTarget
	Camera     OrientationTarget
	Animator   AnimationBridge
	CheckPoint PositionSource
	Events     EventPublisher
}
