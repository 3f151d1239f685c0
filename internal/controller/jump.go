package controller

import "log/slog"

type JumpPhase int

const (
	PhaseIdle JumpPhase = iota
	PhaseDelayAfterLaunch
	PhaseWaitingForGround
	PhaseDelayAfterGround
)

func (p JumpPhase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseDelayAfterLaunch:
		return "DelayAfterLaunch"
	case PhaseWaitingForGround:
		return "WaitingForGround"
	case PhaseDelayAfterGround:
		return "DelayAfterGround"
	default:
		return "Unknown"
	}
}

// Cooling reports whether the gate is closed and a cooldown is running.
func (p JumpPhase) Cooling() bool {
	return p != PhaseIdle
}

// JumpController gates jump requests and runs the cooldown that reopens the
// gate: a fixed delay after launch, then waiting for ground, then the
// downtime. It is advanced by Tick once per scheduler tick.
type JumpController struct {
	rule     GateRule
	downtime float64

	canJump  bool
	phase    JumpPhase
	elapsed  float64
	launched bool

	onPhase func(from, to JumpPhase)
}

func NewJumpController(rule GateRule, downtime float64) *JumpController {
	return &JumpController{
		rule:     rule,
		downtime: downtime,
		canJump:  true,
	}
}

func (j *JumpController) CanJump() bool    { return j.canJump }
func (j *JumpController) Phase() JumpPhase { return j.phase }

// Elapsed is the time spent in the current timed phase.
func (j *JumpController) Elapsed() float64 { return j.elapsed }

// Accepts evaluates the gate rule without changing state.
func (j *JumpController) Accepts(isGrounded bool) bool {
	if j.rule == GateGrounded {
		return isGrounded && j.canJump
	}
	return !(isGrounded && j.canJump)
}

// Request runs the gate. On acceptance the gate closes and the caller issues
// the impulse. A fresh cooldown starts at DelayAfterLaunch; a refire while
// one is already running leaves its phase and elapsed time alone, so the
// earliest cooldown still reopens the gate.
func (j *JumpController) Request(isGrounded bool) bool {
	if !j.Accepts(isGrounded) {
		return false
	}
	j.canJump = false
	if j.phase.Cooling() {
		slog.Debug("jump refire during cooldown", "phase", j.phase, "elapsed", j.elapsed)
		return true
	}
	j.enter(PhaseDelayAfterLaunch)
	j.launched = true
	return true
}

// Tick advances the cooldown by dt. isGrounded is the latest sensed value.
// The first tick after a launch is the launch frame itself: its dt was spent
// before the jump and does not count toward the post-launch delay.
func (j *JumpController) Tick(dt float64, isGrounded bool) {
	switch j.phase {
	case PhaseDelayAfterLaunch:
		if j.launched {
			j.launched = false
			return
		}
		j.elapsed += dt
		if j.elapsed < PostLaunchDelay {
			return
		}
		j.enter(PhaseWaitingForGround)
		fallthrough
	case PhaseWaitingForGround:
		if !isGrounded {
			return
		}
		j.enter(PhaseDelayAfterGround)
	case PhaseDelayAfterGround:
		j.elapsed += dt
		if j.elapsed < j.downtime {
			return
		}
		j.canJump = true
		j.enter(PhaseIdle)
	}
}

func (j *JumpController) enter(next JumpPhase) {
	prev := j.phase
	j.phase = next
	j.elapsed = 0
	slog.Debug("jump cooldown phase", "from", prev, "to", next)
	if j.onPhase != nil {
		j.onPhase(prev, next)
	}
}
