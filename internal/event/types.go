package event

const (
	EventAnimationParam   = "animation.param"
	EventAnimationTrigger = "animation.trigger"
	EventJumpLaunched     = "jump.launched"
	EventJumpPhase        = "jump.phase"
	EventGroundedChanged  = "grounded.changed"
)

// AnimationParamEvent carries a scalar or boolean parameter change.
type AnimationParamEvent struct {
	Name   string
	Scalar float64
	Bool   bool
	IsBool bool
}

type AnimationTriggerEvent struct {
	Name string
}

type JumpLaunchedEvent struct {
	Impulse  float64
	Grounded bool
}

type JumpPhaseEvent struct {
	From string
	To   string
}

type GroundedChangedEvent struct {
	Grounded bool
}
