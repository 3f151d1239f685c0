package physics

const (
	DefaultGravity = -9.81

	GroundProbeDistance    = 0.001
	MinimumResidualSpeed   = 1e-4
	CollisionAxisTolerance = 1e-9

	CharacterWidth     = 0.6
	CharacterHeight    = 1.8
	CharacterHalfWidth = CharacterWidth / 2.0
)
