package controller

import (
	"fmt"

	"github.com/Versifine/gait/internal/physics"
)

// GateRule selects when a jump request is accepted.
type GateRule string

const (
	// GateLiteral fires unless the character is both grounded and cooled
	// down. This is the historical behaviour and the default.
	GateLiteral GateRule = "literal"
	// GateGrounded fires only when grounded and cooled down.
	GateGrounded GateRule = "grounded"
)

func (r GateRule) Valid() bool {
	return r == GateLiteral || r == GateGrounded
}

type Config struct {
	MovementSpeed       float64
	LookSpeed           float64
	TopClamp            float64
	BottomClamp         float64
	JumpStrength        float64
	JumpDowntime        float64
	GroundedCheckRadius float64
	GroundLayerMask     physics.LayerMask
	JumpGate            GateRule
}

func DefaultConfig() Config {
	return Config{
		MovementSpeed:       3,
		LookSpeed:           10,
		TopClamp:            70,
		BottomClamp:         -30,
		JumpStrength:        5,
		JumpDowntime:        1,
		GroundedCheckRadius: 0.2,
		GroundLayerMask:     physics.LayerGround,
		JumpGate:            GateLiteral,
	}
}

// MaxSpeed is the running speed, the upper bound of the smoothed speed for
// unit-length move input.
func (c Config) MaxSpeed() float64 {
	return c.MovementSpeed * RunMultiplier
}

func (c Config) Validate() error {
	switch {
	case c.MovementSpeed <= 0:
		return fmt.Errorf("%w: movement speed %.3f must be positive", ErrInvalidConfig, c.MovementSpeed)
	case c.LookSpeed < 0:
		return fmt.Errorf("%w: look speed %.3f must not be negative", ErrInvalidConfig, c.LookSpeed)
	case c.TopClamp < c.BottomClamp:
		return fmt.Errorf("%w: top clamp %.1f below bottom clamp %.1f", ErrInvalidConfig, c.TopClamp, c.BottomClamp)
	case c.JumpDowntime < 0:
		return fmt.Errorf("%w: jump downtime %.3f must not be negative", ErrInvalidConfig, c.JumpDowntime)
	case c.GroundedCheckRadius < 0:
		return fmt.Errorf("%w: grounded check radius %.3f must not be negative", ErrInvalidConfig, c.GroundedCheckRadius)
	case !c.JumpGate.Valid():
		return fmt.Errorf("%w: unknown jump gate %q", ErrInvalidConfig, c.JumpGate)
	}
	return nil
}
