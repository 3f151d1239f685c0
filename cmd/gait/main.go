package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Versifine/gait/internal/animation"
	"github.com/Versifine/gait/internal/body"
	"github.com/Versifine/gait/internal/config"
	"github.com/Versifine/gait/internal/controller"
	"github.com/Versifine/gait/internal/debug"
	"github.com/Versifine/gait/internal/event"
	"github.com/Versifine/gait/internal/logger"
	"github.com/Versifine/gait/internal/loop"
	"github.com/Versifine/gait/internal/physics"
	"github.com/Versifine/gait/internal/telemetry"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config")
	headless := flag.Bool("headless", false, "run without the keyboard console")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	var output io.Writer = os.Stdout
	if cfg.Logging.File != "" {
		f, err := logger.OpenFile(cfg.Logging.File)
		if err != nil {
			slog.Error("Failed to open log file", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		output = f
	}
	logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      output,
		RawTerminal: !*headless && cfg.Logging.File == "",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *headless); err != nil {
		slog.Error("Sandbox stopped with error", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, headless bool) error {
	ctrlCfg, err := cfg.ControllerConfig()
	if err != nil {
		return err
	}

	sb := cfg.Sandbox
	world := physics.NewWorld()
	world.AddFloor(-sb.FloorSize, sb.FloorSize, -sb.FloorSize, sb.FloorSize, -1, physics.LayerGround)
	// A prop step and a water pool to walk into.
	world.SetCell(3, 0, 3, physics.LayerProp)
	world.AddFloor(-4, -2, 2, 4, 0, physics.LayerWater)

	character := body.New(vec3(sb.Spawn), body.Options{
		Mass:    sb.Mass,
		Gravity: sb.Gravity,
		Shape:   physics.CharacterShape(),
	}, world)
	camera := body.NewPivot(character, sb.CameraHeight)

	bus := event.NewBus()
	recorder := animation.NewRecorder(bus)

	ctrl, err := controller.New(ctrlCfg, controller.Deps{
		World:      world,
		Body:       character,
		Facing:     character,
		Camera:     camera,
		Animator:   recorder,
		CheckPoint: character.Anchor(vec3(sb.CheckOffset)),
		Events:     bus,
	})
	if err != nil {
		return err
	}

	frameLoop, err := loop.New(loop.Config{
		FrameRate:     cfg.Loop.FrameRate,
		FixedRate:     cfg.Loop.FixedRate,
		MaxFixedSteps: cfg.Loop.MaxFixedSteps,
	}, ctrl, character)
	if err != nil {
		return err
	}

	session := uuid.New().String()
	slog.Info("sandbox started",
		"session", session,
		"cells", world.CellCount(),
		"spawn", character.Position(),
		"jump_gate", ctrlCfg.JumpGate,
		"ground_mask", ctrlCfg.GroundLayerMask,
	)

	var console *debug.Console
	if !headless {
		console = debug.NewConsole(ctrl, frameLoop, character)
		console.Watch(bus)
	}
	var server *telemetry.Server
	if cfg.Telemetry.Listen != "" {
		server = telemetry.NewServer(session, ctrl, frameLoop)
	}

	frameLoop.OnFrame(func(stats loop.FrameStats) {
		if console == nil && server == nil {
			return
		}
		f := frameSummary(stats, ctrl, character)
		if console != nil {
			console.Observe(f)
		}
		if server != nil && stats.Frame%uint64(cfg.Telemetry.PublishEvery) == 0 {
			server.Publish(f)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return frameLoop.Run(gctx) })
	if server != nil {
		g.Go(func() error { return server.ListenAndServe(gctx, cfg.Telemetry.Listen) })
	}
	if console != nil {
		// The console blocks on stdin, so it is not joined on shutdown.
		g.Go(func() error {
			errCh := make(chan error, 1)
			go func() { errCh <- console.Start(gctx) }()
			select {
			case err := <-errCh:
				if err != nil {
					return err
				}
				return errConsoleClosed
			case <-gctx.Done():
				return nil
			}
		})
	}

	err = g.Wait()
	slog.Info("sandbox stopped", "session", session, "frames", frameLoop.Frames())
	if errors.Is(err, errConsoleClosed) {
		return nil
	}
	return err
}

var errConsoleClosed = errors.New("console closed")

func frameSummary(stats loop.FrameStats, ctrl *controller.Controller, b *body.Body) telemetry.Frame {
	snap := ctrl.Snapshot()
	state := b.PhysicsState()
	return telemetry.Frame{
		Frame:    stats.Frame,
		Position: state.Position,
		Velocity: state.Velocity,
		Speed:    snap.Motion.CurrentSpeed,
		Yaw:      snap.Orientation.Yaw,
		Pitch:    snap.Orientation.Pitch,
		Running:  snap.Motion.IsRunning,
		Grounded: snap.Motion.IsGrounded,
		CanJump:  snap.Jump.CanJump,
		Phase:    snap.Jump.Phase.String(),
	}
}

func vec3(v []float64) mgl64.Vec3 {
	return mgl64.Vec3{v[0], v[1], v[2]}
}
