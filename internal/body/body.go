package body

import (
	"sync"

	"github.com/Versifine/gait/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

type Options struct {
	Mass    float64
	Gravity float64
	Shape   physics.Shape
}

func DefaultOptions() Options {
	return Options{
		Mass:    1,
		Gravity: physics.DefaultGravity,
		Shape:   physics.CharacterShape(),
	}
}

// Body is a rigid character body. Velocity writes take effect immediately;
// impulses accumulate and are applied at the start of the next Step.
type Body struct {
	mu         sync.Mutex
	physics    physics.State
	rotation   mgl64.Quat
	impulse    mgl64.Vec3
	opts       Options
	blockStore physics.BlockStore
}

func New(spawn mgl64.Vec3, opts Options, blockStore physics.BlockStore) *Body {
	if opts.Mass <= 0 {
		opts.Mass = 1
	}
	b := &Body{
		physics:    physics.State{Position: spawn},
		rotation:   mgl64.QuatIdent(),
		opts:       opts,
		blockStore: blockStore,
	}
	b.physics.OnGround = physics.IsStandingOnSolidBlock(opts.Shape, spawn, blockStore)
	return b
}

func (b *Body) Step(dt float64) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.impulse != (mgl64.Vec3{}) {
		b.physics.Velocity = b.physics.Velocity.Add(b.impulse.Mul(1 / b.opts.Mass))
		b.impulse = mgl64.Vec3{}
	}
	physics.Step(&b.physics, b.opts.Shape, b.opts.Gravity, dt, b.blockStore)
}

func (b *Body) Velocity() mgl64.Vec3 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.physics.Velocity
}

func (b *Body) SetVelocity(v mgl64.Vec3) {
	b.mu.Lock()
	b.physics.Velocity = v
	b.mu.Unlock()
}

func (b *Body) ApplyImpulse(impulse mgl64.Vec3) {
	b.mu.Lock()
	b.impulse = b.impulse.Add(impulse)
	b.mu.Unlock()
}

func (b *Body) Rotation() mgl64.Quat {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rotation
}

func (b *Body) SetRotation(q mgl64.Quat) {
	b.mu.Lock()
	b.rotation = q
	b.mu.Unlock()
}

func (b *Body) Position() mgl64.Vec3 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.physics.Position
}

func (b *Body) SetPosition(pos mgl64.Vec3) {
	b.mu.Lock()
	b.physics.Position = pos
	b.physics.Velocity = mgl64.Vec3{}
	b.impulse = mgl64.Vec3{}
	b.physics.OnGround = physics.IsStandingOnSolidBlock(b.opts.Shape, pos, b.blockStore)
	b.mu.Unlock()
}

func (b *Body) PhysicsState() physics.State {
	if b == nil {
		return physics.State{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.physics
}

// Anchor is a point rigidly offset from the body origin, ignoring body rotation.
type Anchor struct {
	body   *Body
	offset mgl64.Vec3
}

func (b *Body) Anchor(offset mgl64.Vec3) *Anchor {
	return &Anchor{body: b, offset: offset}
}

func (a *Anchor) Position() mgl64.Vec3 {
	return a.body.Position().Add(a.offset)
}
