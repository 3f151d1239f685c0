package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

type Config struct {
	Level  string
	Format string // "text", "json", "console"
	Output io.Writer
	// RawTerminal ends console lines with CRLF while the debug console holds
	// the terminal in raw mode.
	RawTerminal bool
}

var (
	once  sync.Once
	lg    *slog.Logger
	level = new(slog.LevelVar)
)

// Init installs the process logger as the slog default. Only the first call
// takes effect; the level can still be changed later with SetLevel.
func Init(cfg Config) {
	once.Do(func() {
		if cfg.Output == nil {
			cfg.Output = os.Stdout
		}
		level.Set(parseLevel(cfg.Level))
		opts := &slog.HandlerOptions{Level: level}
		var handler slog.Handler
		switch cfg.Format {
		case "json":
			handler = slog.NewJSONHandler(cfg.Output, opts)
		case "text":
			handler = slog.NewTextHandler(cfg.Output, opts)
		default:
			handler = newConsoleHandler(cfg.Output, level, cfg.RawTerminal)
		}
		lg = slog.New(handler)
		slog.SetDefault(lg)
	})
}

func L() *slog.Logger {
	if lg == nil {
		Init(Config{Level: "debug", Format: "console"})
	}
	return lg
}

// SetLevel changes the level of the running logger. Unlike the config path,
// an unknown name is an error.
func SetLevel(name string) (slog.Level, error) {
	l, ok := lookupLevel(name)
	if !ok {
		return level.Level(), fmt.Errorf("unknown log level %q", name)
	}
	level.Set(l)
	return l, nil
}

// Level reports the running logger's level.
func Level() slog.Level { return level.Level() }

// OpenFile opens path for appending, creating it if needed.
func OpenFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, nil
}

// parseLevel falls back to info for unknown names.
func parseLevel(name string) slog.Level {
	if l, ok := lookupLevel(name); ok {
		return l
	}
	return slog.LevelInfo
}

func lookupLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// lineWriter serialises whole lines from the loop, telemetry and console
// goroutines onto one writer.
type lineWriter struct {
	mu   sync.Mutex
	w    io.Writer
	crlf bool
}

func (lw *lineWriter) writeLine(line string) error {
	if lw.crlf {
		line += "\r"
	}
	line += "\n"
	lw.mu.Lock()
	defer lw.mu.Unlock()
	_, err := io.WriteString(lw.w, line)
	return err
}

// consoleHandler outputs one human-friendly line per record:
//
//	12:00:00 INFO  sandbox started  spawn=(0.500, 0.000, 0.500)  jump_gate=literal
type consoleHandler struct {
	out   *lineWriter
	level slog.Leveler
	attrs []slog.Attr
	group string
}

func newConsoleHandler(w io.Writer, level slog.Leveler, crlf bool) *consoleHandler {
	return &consoleHandler{out: &lineWriter{w: w, crlf: crlf}, level: level}
}

func (h *consoleHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Time.Format(time.TimeOnly))
	b.WriteByte(' ')
	b.WriteString(levelTag(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)

	for _, a := range h.attrs {
		b.WriteString(formatAttr(h.group, a))
	}
	r.Attrs(func(a slog.Attr) bool {
		b.WriteString(formatAttr(h.group, a))
		return true
	})
	return h.out.writeLine(b.String())
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.attrs = append([]slog.Attr{}, h.attrs...)
	clone.group = joinKey(h.group, name)
	return &clone
}

func levelTag(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN "
	case l >= slog.LevelInfo:
		return "INFO "
	default:
		return "DEBUG"
	}
}

// formatAttr renders "  key=value". Groups are flattened into dotted keys.
func formatAttr(group string, a slog.Attr) string {
	v := a.Value.Resolve()
	key := joinKey(group, a.Key)
	if v.Kind() == slog.KindGroup {
		var b strings.Builder
		for _, ga := range v.Group() {
			b.WriteString(formatAttr(key, ga))
		}
		return b.String()
	}
	return "  " + key + "=" + formatValue(v)
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'g', 6, 64)
	case slog.KindDuration:
		return v.Duration().Round(time.Microsecond).String()
	case slog.KindAny:
		switch x := v.Any().(type) {
		case mgl64.Vec3:
			return fmt.Sprintf("(%.3f, %.3f, %.3f)", x.X(), x.Y(), x.Z())
		case mgl64.Vec2:
			return fmt.Sprintf("(%.3f, %.3f)", x.X(), x.Y())
		}
	}
	return v.String()
}

func joinKey(group, key string) string {
	if group == "" {
		return key
	}
	return group + "." + key
}
