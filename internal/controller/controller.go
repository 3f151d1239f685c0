package controller

import (
	"fmt"
	"log/slog"

	"github.com/Versifine/gait/internal/event"
	"github.com/go-gl/mathgl/mgl64"
)

// Controller turns input and the grounded signal into body velocity, facing,
// camera orientation and animation parameters.
//
// It is single-threaded: input callbacks and the three phase entry points
// must all be called from the scheduler's goroutine. The scheduler must run
// Sense before LookUpdate within a cycle.
type Controller struct {
	cfg  Config
	deps Deps

	input      InputState
	isGrounded bool

	sensor      *GroundSensor
	orientation *OrientationModel
	locomotion  *LocomotionModel
	jump        *JumpController
}

// MotionState is the controller-owned motion summary.
type MotionState struct {
	CurrentSpeed float64
	IsRunning    bool
	IsGrounded   bool
}

type OrientationState struct {
	Yaw   float64
	Pitch float64
}

type JumpGate struct {
	CanJump bool
	Phase   JumpPhase
}

type Snapshot struct {
	Input       InputState
	Motion      MotionState
	Orientation OrientationState
	Jump        JumpGate
}

func New(cfg Config, deps Deps) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:         cfg,
		deps:        deps,
		isGrounded:  true,
		sensor:      NewGroundSensor(deps.World, cfg.GroundedCheckRadius, cfg.GroundLayerMask),
		orientation: NewOrientationModel(cfg.LookSpeed, cfg.BottomClamp, cfg.TopClamp),
		locomotion:  NewLocomotionModel(cfg.MovementSpeed),
		jump:        NewJumpController(cfg.JumpGate, cfg.JumpDowntime),
	}
	c.jump.onPhase = c.publishPhase
	slog.Debug("controller created", "jump_gate", cfg.JumpGate, "ground_mask", cfg.GroundLayerMask)
	return c, nil
}

func (d Deps) validate() error {
	missing := ""
	switch {
	case d.World == nil:
		missing = "physics world"
	case d.Body == nil:
		missing = "physics body"
	case d.Facing == nil:
		missing = "facing target"
	case d.Camera == nil:
		missing = "camera target"
	case d.Animator == nil:
		missing = "animation bridge"
	case d.CheckPoint == nil:
		missing = "grounded check point"
	}
	if missing != "" {
		return fmt.Errorf("%w: %s", ErrMissingCollaborator, missing)
	}
	return nil
}

func (c *Controller) Config() Config { return c.cfg }

func (c *Controller) OnMove(move mgl64.Vec2) { c.input.Move = move }
func (c *Controller) OnLook(look mgl64.Vec2) { c.input.Look = look }
func (c *Controller) OnRun(pressed bool)     { c.input.Run = pressed }

// OnJump runs the jump gate against the latest grounded value and, when it
// fires, issues the impulse and the Jump trigger. It reports whether it fired.
func (c *Controller) OnJump() bool {
	grounded := c.isGrounded
	if !c.jump.Request(grounded) {
		slog.Debug("jump request ignored", "grounded", grounded, "can_jump", c.jump.CanJump())
		return false
	}

	c.deps.Body.ApplyImpulse(worldUp.Mul(c.cfg.JumpStrength))
	c.deps.Animator.TriggerOnce(ParamJump)
	slog.Debug("jump launched", "grounded", grounded, "strength", c.cfg.JumpStrength)
	c.publish(event.EventJumpLaunched, &event.JumpLaunchedEvent{
		Impulse:  c.cfg.JumpStrength,
		Grounded: grounded,
	})
	return true
}

// Sense is the variable-rate phase: ground check, Grounded parameter, then
// one step of the jump cooldown against the fresh grounded value.
func (c *Controller) Sense(dt float64) {
	grounded := c.sensor.Sense(c.deps.CheckPoint.Position())
	if grounded != c.isGrounded {
		slog.Debug("grounded changed", "grounded", grounded)
		c.publish(event.EventGroundedChanged, &event.GroundedChangedEvent{Grounded: grounded})
	}
	c.isGrounded = grounded
	c.deps.Animator.SetBool(ParamGrounded, grounded)

	c.jump.Tick(dt, c.isGrounded)
}

// PhysicsStep is the fixed-rate phase: speed smoothing, velocity command,
// facing and the Speed parameter.
func (c *Controller) PhysicsStep(dt float64) {
	forward, right := HorizontalBasis(c.deps.Camera.Rotation())
	step := c.locomotion.Step(
		c.input.Move,
		c.input.Run,
		forward,
		right,
		c.deps.Body.Velocity(),
		dt,
	)

	if step.Moving {
		facing := c.orientation.UpdateFacing(step.Direction, c.deps.Facing.Rotation(), dt)
		c.deps.Facing.SetRotation(facing)
	}
	c.deps.Body.SetVelocity(step.Velocity)
	c.deps.Animator.SetScalar(ParamSpeed, step.AnimSpeed)
}

// LookUpdate is the post-update phase: camera yaw/pitch from look input.
func (c *Controller) LookUpdate(dt float64) {
	c.orientation.UpdateLook(c.input.Look, dt)
	c.deps.Camera.SetRotation(c.orientation.CameraRotation())
}

func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Input: c.input,
		Motion: MotionState{
			CurrentSpeed: c.locomotion.CurrentSpeed(),
			IsRunning:    c.input.Run,
			IsGrounded:   c.isGrounded,
		},
		Orientation: OrientationState{
			Yaw:   c.orientation.Yaw(),
			Pitch: c.orientation.Pitch(),
		},
		Jump: JumpGate{
			CanJump: c.jump.CanJump(),
			Phase:   c.jump.Phase(),
		},
	}
}

func (c *Controller) publishPhase(from, to JumpPhase) {
	c.publish(event.EventJumpPhase, &event.JumpPhaseEvent{From: from.String(), To: to.String()})
}

func (c *Controller) publish(name string, evt any) {
	if c.deps.Events == nil {
		return
	}
	c.deps.Events.Publish(name, evt)
}
