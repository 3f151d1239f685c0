package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Versifine/gait/internal/controller"
	"github.com/Versifine/gait/internal/physics"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Controller ControllerConfig `yaml:"controller"`
	Loop       LoopConfig       `yaml:"loop"`
	Sandbox    SandboxConfig    `yaml:"sandbox"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type ControllerConfig struct {
	MovementSpeed       float64  `yaml:"movement_speed"`
	LookSpeed           float64  `yaml:"look_speed"`
	TopClamp            float64  `yaml:"top_clamp"`
	BottomClamp         float64  `yaml:"bottom_clamp"`
	JumpStrength        float64  `yaml:"jump_strength"`
	JumpDowntime        float64  `yaml:"jump_downtime"`
	GroundedCheckRadius float64  `yaml:"grounded_check_radius"`
	GroundLayers        []string `yaml:"ground_layers"`
	JumpGate            string   `yaml:"jump_gate"`
}

type LoopConfig struct {
	FrameRate     float64 `yaml:"frame_rate"`
	FixedRate     float64 `yaml:"fixed_rate"`
	MaxFixedSteps int     `yaml:"max_fixed_steps"`
}

// TelemetryConfig enables the HTTP/websocket endpoint when Listen is set.
type TelemetryConfig struct {
	Listen       string `yaml:"listen"`
	PublishEvery int    `yaml:"publish_every"`
}

type SandboxConfig struct {
	FloorSize    int       `yaml:"floor_size"`
	Spawn        []float64 `yaml:"spawn"`
	Mass         float64   `yaml:"mass"`
	Gravity      float64   `yaml:"gravity"`
	CheckOffset  []float64 `yaml:"check_offset"`
	CameraHeight float64   `yaml:"camera_height"`
}

// Default mirrors the sample config; Load starts from it so missing keys keep
// these values.
func Default() *Config {
	ctrl := controller.DefaultConfig()
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Controller: ControllerConfig{
			MovementSpeed:       ctrl.MovementSpeed,
			LookSpeed:           ctrl.LookSpeed,
			TopClamp:            ctrl.TopClamp,
			BottomClamp:         ctrl.BottomClamp,
			JumpStrength:        ctrl.JumpStrength,
			JumpDowntime:        ctrl.JumpDowntime,
			GroundedCheckRadius: ctrl.GroundedCheckRadius,
			GroundLayers:        []string{"ground"},
			JumpGate:            string(ctrl.JumpGate),
		},
		Loop: LoopConfig{
			FrameRate:     60,
			FixedRate:     50,
			MaxFixedSteps: 5,
		},
		Sandbox: SandboxConfig{
			FloorSize:    16,
			Spawn:        []float64{0.5, 0, 0.5},
			Mass:         1,
			Gravity:      physics.DefaultGravity,
			CheckOffset:  []float64{0, 0.1, 0},
			CameraHeight: 1.5,
		},
		Telemetry: TelemetryConfig{
			PublishEvery: 3,
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Format) {
	case "", "console", "text", "json":
	default:
		return invalid("logging.format", "unknown format %q", c.Logging.Format)
	}

	if _, err := c.ControllerConfig(); err != nil {
		return err
	}

	switch {
	case c.Loop.FrameRate <= 0:
		return invalid("loop.frame_rate", "%.2f must be positive", c.Loop.FrameRate)
	case c.Loop.FixedRate <= 0:
		return invalid("loop.fixed_rate", "%.2f must be positive", c.Loop.FixedRate)
	case c.Loop.MaxFixedSteps < 1:
		return invalid("loop.max_fixed_steps", "%d must be at least 1", c.Loop.MaxFixedSteps)
	}

	switch {
	case c.Sandbox.FloorSize <= 0:
		return invalid("sandbox.floor_size", "%d must be positive", c.Sandbox.FloorSize)
	case len(c.Sandbox.Spawn) != 3:
		return invalid("sandbox.spawn", "want 3 components, got %d", len(c.Sandbox.Spawn))
	case c.Sandbox.Mass <= 0:
		return invalid("sandbox.mass", "%.3f must be positive", c.Sandbox.Mass)
	case len(c.Sandbox.CheckOffset) != 3:
		return invalid("sandbox.check_offset", "want 3 components, got %d", len(c.Sandbox.CheckOffset))
	case c.Sandbox.CameraHeight < 0:
		return invalid("sandbox.camera_height", "%.3f must not be negative", c.Sandbox.CameraHeight)
	}

	if c.Telemetry.PublishEvery < 1 {
		return invalid("telemetry.publish_every", "%d must be at least 1", c.Telemetry.PublishEvery)
	}
	return nil
}

// ControllerConfig resolves layer names and the gate rule into the
// controller's construction config.
func (c *Config) ControllerConfig() (controller.Config, error) {
	mask, err := physics.ParseLayers(c.Controller.GroundLayers)
	if err != nil {
		return controller.Config{}, invalid("controller.ground_layers", "%v", err)
	}
	cc := controller.Config{
		MovementSpeed:       c.Controller.MovementSpeed,
		LookSpeed:           c.Controller.LookSpeed,
		TopClamp:            c.Controller.TopClamp,
		BottomClamp:         c.Controller.BottomClamp,
		JumpStrength:        c.Controller.JumpStrength,
		JumpDowntime:        c.Controller.JumpDowntime,
		GroundedCheckRadius: c.Controller.GroundedCheckRadius,
		GroundLayerMask:     mask,
		JumpGate:            controller.GateRule(strings.ToLower(c.Controller.JumpGate)),
	}
	if err := cc.Validate(); err != nil {
		return controller.Config{}, fmt.Errorf("%w: controller: %w", ErrInvalid, err)
	}
	return cc, nil
}

func invalid(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalid, field, fmt.Sprintf(format, args...))
}
