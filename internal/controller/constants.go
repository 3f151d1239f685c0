package controller

// Tuning fixed by the controller design; not configurable.
const (
	RunMultiplier         = 2.0
	SpeedSmoothingRate    = 8.0
	RotationSmoothingRate = 10.0
	LookDeadzone          = 0.01
	PostLaunchDelay       = 0.25 // seconds

	// moveDirectionThreshold is compared against the squared length of the
	// camera-relative move direction.
	moveDirectionThreshold = 0.01
)

// Animation parameter names.
const (
	ParamSpeed    = "Speed"
	ParamGrounded = "Grounded"
	ParamJump     = "Jump"
)
