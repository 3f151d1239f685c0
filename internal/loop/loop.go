package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

const (
	postedChanSize = 256
	// maxFrameDt bounds the wall-clock delta fed to a frame after a stall.
	maxFrameDt = 0.25
)

var ErrInvalidConfig = errors.New("invalid loop config")

// Phases are the per-cycle entry points of the driven controller.
type Phases interface {
	PhysicsStep(dt float64)
	Sense(dt float64)
	LookUpdate(dt float64)
}

// Integrator advances the simulated world by one fixed step.
type Integrator interface {
	Step(dt float64)
}

type Config struct {
	FrameRate     float64
	FixedRate     float64
	MaxFixedSteps int
}

func (c Config) Validate() error {
	switch {
	case c.FrameRate <= 0:
		return fmt.Errorf("%w: frame rate %.2f must be positive", ErrInvalidConfig, c.FrameRate)
	case c.FixedRate <= 0:
		return fmt.Errorf("%w: fixed rate %.2f must be positive", ErrInvalidConfig, c.FixedRate)
	case c.MaxFixedSteps < 1:
		return fmt.Errorf("%w: max fixed steps %d must be at least 1", ErrInvalidConfig, c.MaxFixedSteps)
	}
	return nil
}

// FrameStats describes one completed frame.
type FrameStats struct {
	Frame      uint64
	FrameDt    float64
	FixedSteps int
	Dropped    int
}

// FrameLoop schedules a controller the way a game engine does: fixed-rate
// physics steps from an accumulator, then the variable-rate update, then the
// post-update. All phase calls and posted funcs run on the goroutine that
// calls Step (or Run).
type FrameLoop struct {
	cfg        Config
	phases     Phases
	integrator Integrator
	fixedDt    float64

	accumulator float64
	frameCount  atomic.Uint64
	postedCh    chan func()

	hookMu  sync.Mutex
	onFrame func(FrameStats)
}

func New(cfg Config, phases Phases, integrator Integrator) (*FrameLoop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if phases == nil {
		return nil, fmt.Errorf("%w: phases are nil", ErrInvalidConfig)
	}
	return &FrameLoop{
		cfg:        cfg,
		phases:     phases,
		integrator: integrator,
		fixedDt:    1 / cfg.FixedRate,
		postedCh:   make(chan func(), postedChanSize),
	}, nil
}

func (l *FrameLoop) FixedDt() float64 { return l.fixedDt }

func (l *FrameLoop) Frames() uint64 { return l.frameCount.Load() }

// OnFrame registers a hook called on the loop goroutine after every frame.
func (l *FrameLoop) OnFrame(fn func(FrameStats)) {
	l.hookMu.Lock()
	l.onFrame = fn
	l.hookMu.Unlock()
}

// Post queues fn to run at the start of the next frame. It never blocks and
// reports false when the queue is full.
func (l *FrameLoop) Post(fn func()) bool {
	if l == nil || fn == nil {
		return false
	}
	select {
	case l.postedCh <- fn:
		return true
	default:
		slog.Warn("loop post queue full, dropping input")
		return false
	}
}

// Step runs one frame of frameDt seconds.
func (l *FrameLoop) Step(frameDt float64) FrameStats {
	if frameDt < 0 {
		frameDt = 0
	}
	l.drainPosted()

	stats := FrameStats{
		Frame:   l.frameCount.Add(1),
		FrameDt: frameDt,
	}

	l.accumulator += frameDt
	for l.accumulator >= l.fixedDt && stats.FixedSteps < l.cfg.MaxFixedSteps {
		l.phases.PhysicsStep(l.fixedDt)
		if l.integrator != nil {
			l.integrator.Step(l.fixedDt)
		}
		l.accumulator -= l.fixedDt
		stats.FixedSteps++
	}
	if l.accumulator >= l.fixedDt {
		stats.Dropped = int(math.Floor(l.accumulator / l.fixedDt))
		l.accumulator -= float64(stats.Dropped) * l.fixedDt
		slog.Warn("fixed steps dropped", "frame", stats.Frame, "dropped", stats.Dropped, "max", l.cfg.MaxFixedSteps)
	}

	l.phases.Sense(frameDt)
	l.phases.LookUpdate(frameDt)

	l.hookMu.Lock()
	hook := l.onFrame
	l.hookMu.Unlock()
	if hook != nil {
		hook(stats)
	}
	return stats
}

// Run drives Step from a ticker at the configured frame rate until ctx is
// done, feeding it the measured wall-clock delta.
func (l *FrameLoop) Run(ctx context.Context) error {
	if l == nil {
		return nil
	}
	interval := time.Duration(float64(time.Second) / l.cfg.FrameRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("frame loop started", "frame_rate", l.cfg.FrameRate, "fixed_rate", l.cfg.FixedRate)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			slog.Info("frame loop stopped", "frames", l.Frames())
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			l.Step(math.Min(dt, maxFrameDt))
		}
	}
}

func (l *FrameLoop) drainPosted() {
	for {
		select {
		case fn := <-l.postedCh:
			fn()
		default:
			return
		}
	}
}
