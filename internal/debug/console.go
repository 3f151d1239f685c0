package debug

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Versifine/gait/internal/event"
	"github.com/Versifine/gait/internal/logger"
	"github.com/Versifine/gait/internal/telemetry"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/term"
)

const (
	defaultTickInterval = 50 * time.Millisecond
	defaultMovePulse    = 180 * time.Millisecond
	defaultLookPulse    = 120 * time.Millisecond
	// lookPulseAxis is the look input held during an arrow-key pulse.
	lookPulseAxis = 6.0
)

// Controls is the controller's input surface as seen by the console.
type Controls interface {
	OnMove(move mgl64.Vec2)
	OnLook(look mgl64.Vec2)
	OnRun(pressed bool)
	OnJump() bool
}

// Poster runs fn on the goroutine that owns the controller.
type Poster interface {
	Post(fn func()) bool
}

// Teleporter moves the body, clearing its motion.
type Teleporter interface {
	SetPosition(pos mgl64.Vec3)
}

// Subscriber is the event bus surface the console listens on.
type Subscriber interface {
	Subscribe(eventName string, handler event.HandlerFunc)
}

type Console struct {
	controls     Controls
	poster       Poster
	teleporter   Teleporter
	out          io.Writer
	tickInterval time.Duration
	movePulse    time.Duration
	lookPulse    time.Duration

	mu            sync.Mutex
	status        telemetry.Frame
	running       bool
	sentMove      mgl64.Vec2
	sentLook      mgl64.Vec2
	forwardUntil  time.Time
	backwardUntil time.Time
	leftUntil     time.Time
	rightUntil    time.Time
	lookUntil     time.Time
	lookAxis      mgl64.Vec2
	jumps         int
	landings      int
	commandMode   bool
	commandBuf    []rune
	statusWidth   int
}

func NewConsole(controls Controls, poster Poster, teleporter Teleporter) *Console {
	return &Console{
		controls:     controls,
		poster:       poster,
		teleporter:   teleporter,
		out:          os.Stdout,
		tickInterval: defaultTickInterval,
		movePulse:    defaultMovePulse,
		lookPulse:    defaultLookPulse,
	}
}

// Watch counts jump launches and landings published on the bus.
func (c *Console) Watch(bus Subscriber) {
	bus.Subscribe(event.EventJumpLaunched, func(any) {
		c.mu.Lock()
		c.jumps++
		c.mu.Unlock()
	})
	bus.Subscribe(event.EventGroundedChanged, func(raw any) {
		evt, ok := raw.(*event.GroundedChangedEvent)
		if !ok || !evt.Grounded {
			return
		}
		c.mu.Lock()
		c.landings++
		c.mu.Unlock()
	})
}

// Observe stores the latest frame summary. It is safe to call from the loop
// goroutine.
func (c *Console) Observe(s telemetry.Frame) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

func (c *Console) Start(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("console is nil")
	}
	if c.controls == nil {
		return fmt.Errorf("console controls are nil")
	}
	if c.poster == nil {
		return fmt.Errorf("console poster is nil")
	}
	if c.teleporter == nil {
		return fmt.Errorf("console teleporter is nil")
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	var restoreOnce sync.Once
	restore := func() {
		restoreOnce.Do(func() {
			_ = term.Restore(fd, oldState)
			fmt.Fprint(c.out, "\r\n")
		})
	}
	defer restore()
	go func() {
		<-ctx.Done()
		restore()
	}()

	fmt.Fprint(c.out, "[debug] console started (W/A/S/D pulse, ] run, Space jump, arrows look, X, :, Ctrl-C quit)\r\n")
	c.renderStatusLine()

	go c.tickLoop(ctx)

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		b, err := reader.ReadByte()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read console input: %w", err)
		}
		if b == 3 && !c.isCommandMode() { // Ctrl-C
			return nil
		}
		c.handleKey(reader, b)
	}
}

func (c *Console) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.flushInput(now)
			c.renderStatusLine()
		}
	}
}

// flushInput expires finished pulses and posts move/look changes.
func (c *Console) flushInput(now time.Time) {
	c.mu.Lock()
	c.expirePulsesLocked(now)
	move := c.moveLocked()
	look := c.lookAxis
	moveChanged := move != c.sentMove
	lookChanged := look != c.sentLook
	c.sentMove = move
	c.sentLook = look
	c.mu.Unlock()

	if moveChanged {
		c.post(func() { c.controls.OnMove(move) })
	}
	if lookChanged {
		c.post(func() { c.controls.OnLook(look) })
	}
}

func (c *Console) handleKey(reader *bufio.Reader, b byte) {
	if c.isCommandMode() {
		c.handleCommandByte(b)
		return
	}

	now := time.Now()
	switch b {
	case ':':
		c.enterCommandMode()
		return
	case 'w', 'W':
		c.pulse(&c.forwardUntil, &c.backwardUntil, now)
	case 's', 'S':
		c.pulse(&c.backwardUntil, &c.forwardUntil, now)
	case 'a', 'A':
		c.pulse(&c.leftUntil, &c.rightUntil, now)
	case 'd', 'D':
		c.pulse(&c.rightUntil, &c.leftUntil, now)
	case ' ':
		c.jump()
	case ']':
		c.toggleRun()
	case 'x', 'X':
		c.clearInput()
	case 27: // ESC + arrow sequence
		next, err := reader.ReadByte()
		if err != nil || next != '[' {
			return
		}
		arrow, err := reader.ReadByte()
		if err != nil {
			return
		}
		switch arrow {
		case 'D': // left
			c.pulseLook(mgl64.Vec2{-lookPulseAxis, 0}, now)
		case 'C': // right
			c.pulseLook(mgl64.Vec2{lookPulseAxis, 0}, now)
		case 'A': // up
			c.pulseLook(mgl64.Vec2{0, lookPulseAxis}, now)
		case 'B': // down
			c.pulseLook(mgl64.Vec2{0, -lookPulseAxis}, now)
		}
	}
	c.flushInput(now)
	c.renderStatusLine()
}

func (c *Console) enterCommandMode() {
	c.mu.Lock()
	c.commandMode = true
	c.commandBuf = c.commandBuf[:0]
	c.mu.Unlock()
	fmt.Fprint(c.out, "\r\n:")
}

func (c *Console) handleCommandByte(b byte) {
	switch b {
	case 13, 10: // Enter
		c.mu.Lock()
		cmd := strings.TrimSpace(string(c.commandBuf))
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()

		fmt.Fprint(c.out, "\r\n")
		if cmd != "" {
			c.executeCommand(cmd)
		}
		c.renderStatusLine()
		return
	case 27: // ESC cancel command mode
		c.mu.Lock()
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()
		fmt.Fprint(c.out, "\r\n[debug] command cancelled\r\n")
		c.renderStatusLine()
		return
	case 8, 127: // Backspace
		c.mu.Lock()
		if len(c.commandBuf) > 0 {
			c.commandBuf = c.commandBuf[:len(c.commandBuf)-1]
		}
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s ", buf)
		fmt.Fprintf(c.out, "\r:%s", buf)
		return
	default:
		if b < 32 || b > 126 {
			return
		}
		c.mu.Lock()
		c.commandBuf = append(c.commandBuf, rune(b))
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s", buf)
	}
}

func (c *Console) executeCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "help":
		c.printHelp()
	case "state":
		c.mu.Lock()
		s := c.status
		jumps, landings := c.jumps, c.landings
		c.mu.Unlock()
		fmt.Fprintf(c.out, "[debug] frame=%d pos=(%.3f,%.3f,%.3f) vel=(%.3f,%.3f,%.3f) speed=%.3f\r\n",
			s.Frame,
			s.Position.X(), s.Position.Y(), s.Position.Z(),
			s.Velocity.X(), s.Velocity.Y(), s.Velocity.Z(),
			s.Speed,
		)
		fmt.Fprintf(c.out, "[debug] yaw=%.1f pitch=%.1f grounded=%t can_jump=%t phase=%s jumps=%d landings=%d\r\n",
			s.Yaw, s.Pitch, s.Grounded, s.CanJump, s.Phase, jumps, landings,
		)
	case "tp":
		if len(parts) != 4 {
			fmt.Fprint(c.out, "[debug] usage: :tp <x> <y> <z>\r\n")
			return
		}
		x, err1 := strconv.ParseFloat(parts[1], 64)
		y, err2 := strconv.ParseFloat(parts[2], 64)
		z, err3 := strconv.ParseFloat(parts[3], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			fmt.Fprint(c.out, "[debug] invalid tp args\r\n")
			return
		}
		pos := mgl64.Vec3{x, y, z}
		c.post(func() { c.teleporter.SetPosition(pos) })
		fmt.Fprintf(c.out, "[debug] tp to (%.3f, %.3f, %.3f)\r\n", x, y, z)
	case "log":
		if len(parts) != 2 {
			fmt.Fprintf(c.out, "[debug] log level: %s (usage: :log <debug|info|warn|error>)\r\n", logger.Level())
			return
		}
		lvl, err := logger.SetLevel(parts[1])
		if err != nil {
			fmt.Fprintf(c.out, "[debug] %v\r\n", err)
			return
		}
		fmt.Fprintf(c.out, "[debug] log level set to %s\r\n", lvl)
	default:
		fmt.Fprintf(c.out, "[debug] unknown command: %s\r\n", parts[0])
	}
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, "[debug] keys:\r\n")
	fmt.Fprint(c.out, "  W/S/A/D: pulse movement (~180ms)\r\n")
	fmt.Fprint(c.out, "  ]: toggle run\r\n")
	fmt.Fprint(c.out, "  Space: jump\r\n")
	fmt.Fprint(c.out, "  Arrows: pulse look (~120ms)\r\n")
	fmt.Fprint(c.out, "  X: clear all input\r\n")
	fmt.Fprint(c.out, "  : enter command mode\r\n")
	fmt.Fprint(c.out, "  Ctrl-C: quit\r\n")
	fmt.Fprint(c.out, "[debug] commands:\r\n")
	fmt.Fprint(c.out, "  :tp <x> <y> <z>\r\n")
	fmt.Fprint(c.out, "  :state\r\n")
	fmt.Fprint(c.out, "  :log <debug|info|warn|error>\r\n")
	fmt.Fprint(c.out, "  :help\r\n")
}

func (c *Console) renderStatusLine() {
	c.mu.Lock()
	if c.commandMode {
		c.mu.Unlock()
		return
	}
	s := c.status
	move := c.sentMove
	width := c.statusWidth
	c.mu.Unlock()

	line := fmt.Sprintf(
		"[MOV:%+.0f,%+.0f RUN:%s | SPD:%.2f YAW:%.1f PIT:%.1f | X:%.2f Y:%.2f Z:%.2f ground:%t jump:%s %s]",
		move.X(), move.Y(),
		boolLabel(s.Running),
		s.Speed,
		s.Yaw,
		s.Pitch,
		s.Position.X(),
		s.Position.Y(),
		s.Position.Z(),
		s.Grounded,
		boolLabel(s.CanJump),
		s.Phase,
	)

	padding := ""
	if width > len(line) {
		padding = strings.Repeat(" ", width-len(line))
	}
	fmt.Fprintf(c.out, "\r%s%s", line, padding)

	c.mu.Lock()
	if len(line) > c.statusWidth {
		c.statusWidth = len(line)
	}
	c.mu.Unlock()
}

func (c *Console) pulse(until, opposite *time.Time, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	*until = now.Add(c.movePulse)
	*opposite = time.Time{}
}

func (c *Console) pulseLook(axis mgl64.Vec2, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookAxis = axis
	c.lookUntil = now.Add(c.lookPulse)
}

func (c *Console) jump() {
	c.post(func() {
		if !c.controls.OnJump() {
			slog.Debug("debug jump rejected")
		}
	})
}

func (c *Console) toggleRun() {
	c.mu.Lock()
	c.running = !c.running
	enabled := c.running
	c.mu.Unlock()
	c.post(func() { c.controls.OnRun(enabled) })
	slog.Debug("debug run toggled", "enabled", enabled)
}

func (c *Console) clearInput() {
	c.mu.Lock()
	c.forwardUntil = time.Time{}
	c.backwardUntil = time.Time{}
	c.leftUntil = time.Time{}
	c.rightUntil = time.Time{}
	c.lookUntil = time.Time{}
	c.lookAxis = mgl64.Vec2{}
	wasRunning := c.running
	c.running = false
	c.mu.Unlock()
	if wasRunning {
		c.post(func() { c.controls.OnRun(false) })
	}
}

func (c *Console) post(fn func()) {
	if !c.poster.Post(fn) {
		slog.Warn("debug input dropped")
	}
}

func (c *Console) isCommandMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandMode
}

func (c *Console) moveLocked() mgl64.Vec2 {
	var move mgl64.Vec2
	if !c.forwardUntil.IsZero() {
		move[1]++
	}
	if !c.backwardUntil.IsZero() {
		move[1]--
	}
	if !c.rightUntil.IsZero() {
		move[0]++
	}
	if !c.leftUntil.IsZero() {
		move[0]--
	}
	if move.Len() > 1 {
		move = move.Normalize()
	}
	return move
}

func (c *Console) expirePulsesLocked(now time.Time) {
	for _, until := range []*time.Time{&c.forwardUntil, &c.backwardUntil, &c.leftUntil, &c.rightUntil} {
		if !until.IsZero() && !now.Before(*until) {
			*until = time.Time{}
		}
	}
	if !c.lookUntil.IsZero() && !now.Before(c.lookUntil) {
		c.lookUntil = time.Time{}
		c.lookAxis = mgl64.Vec2{}
	}
}

func boolLabel(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
