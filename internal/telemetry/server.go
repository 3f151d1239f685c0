package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
)

const (
	clientSendBuffer = 16
	wsReadDeadline   = 60 * time.Second
	wsWriteDeadline  = 10 * time.Second
	wsPingPeriod     = 30 * time.Second
	shutdownTimeout  = 3 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Frame is the per-frame summary streamed to clients.
type Frame struct {
	Session  string     `json:"session"`
	Frame    uint64     `json:"frame"`
	Position mgl64.Vec3 `json:"position"`
	Velocity mgl64.Vec3 `json:"velocity"`
	Speed    float64    `json:"speed"`
	Yaw      float64    `json:"yaw"`
	Pitch    float64    `json:"pitch"`
	Running  bool       `json:"running"`
	Grounded bool       `json:"grounded"`
	CanJump  bool       `json:"canJump"`
	Phase    string     `json:"phase"`
}

// InputCommand is a remote input write. Absent fields leave the current
// input untouched.
type InputCommand struct {
	Move *mgl64.Vec2 `json:"move,omitempty"`
	Look *mgl64.Vec2 `json:"look,omitempty"`
	Run  *bool       `json:"run,omitempty"`
	Jump bool        `json:"jump,omitempty"`
}

func (c InputCommand) empty() bool {
	return c.Move == nil && c.Look == nil && c.Run == nil && !c.Jump
}

type Controls interface {
	OnMove(move mgl64.Vec2)
	OnLook(look mgl64.Vec2)
	OnRun(pressed bool)
	OnJump() bool
}

type Poster interface {
	Post(fn func()) bool
}

type client struct {
	send chan []byte
}

// Server exposes the sandbox over HTTP: the latest frame, a websocket frame
// stream and remote input.
type Server struct {
	session  string
	controls Controls
	poster   Poster
	engine   *gin.Engine

	mu       sync.RWMutex
	latest   Frame
	hasFrame bool

	clientsMu sync.Mutex
	clients   map[*client]struct{}
}

func NewServer(session string, controls Controls, poster Poster) *Server {
	s := &Server{
		session:  session,
		controls: controls,
		poster:   poster,
		clients:  make(map[*client]struct{}),
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.GET("/status", s.handleStatus)
	r.POST("/input", s.handleInput)
	r.GET("/ws", s.handleWebSocket)
	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) Session() string { return s.session }

// Publish records f as the latest frame and fans it out to stream clients.
// Slow clients miss frames rather than stalling the caller.
func (s *Server) Publish(f Frame) {
	f.Session = s.session
	s.mu.Lock()
	s.latest = f
	s.hasFrame = true
	s.mu.Unlock()

	s.clientsMu.Lock()
	if len(s.clients) == 0 {
		s.clientsMu.Unlock()
		return
	}
	s.clientsMu.Unlock()

	data, err := json.Marshal(f)
	if err != nil {
		slog.Warn("telemetry frame encode failed", "error", err)
		return
	}

	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

func (s *Server) Clients() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("telemetry listening", "addr", addr, "session", s.session)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) handleStatus(c *gin.Context) {
	s.mu.RLock()
	f, ok := s.latest, s.hasFrame
	s.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no frame yet", "session": s.session})
		return
	}
	c.JSON(http.StatusOK, f)
}

func (s *Server) handleInput(c *gin.Context) {
	var cmd InputCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if cmd.empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty input command"})
		return
	}
	if !s.apply(cmd) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "input queue full"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"posted": true})
}

// apply posts cmd to the loop goroutine in field order: move, look, run, jump.
func (s *Server) apply(cmd InputCommand) bool {
	return s.poster.Post(func() {
		if cmd.Move != nil {
			s.controls.OnMove(*cmd.Move)
		}
		if cmd.Look != nil {
			s.controls.OnLook(*cmd.Look)
		}
		if cmd.Run != nil {
			s.controls.OnRun(*cmd.Run)
		}
		if cmd.Jump {
			fired := s.controls.OnJump()
			slog.Debug("remote jump", "fired", fired)
		}
	})
}

func (s *Server) handleWebSocket(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("telemetry upgrade failed", "error", err)
		return
	}

	cl := &client{send: make(chan []byte, clientSendBuffer)}
	s.clientsMu.Lock()
	s.clients[cl] = struct{}{}
	s.clientsMu.Unlock()
	slog.Debug("telemetry client connected", "remote", c.Request.RemoteAddr)

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, cl)
		s.clientsMu.Unlock()
		ws.Close()
		slog.Debug("telemetry client disconnected", "remote", c.Request.RemoteAddr)
	}()

	s.mu.RLock()
	f, ok := s.latest, s.hasFrame
	s.mu.RUnlock()
	if ok {
		if data, err := json.Marshal(f); err == nil {
			ws.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}

	ws.SetReadDeadline(time.Now().Add(wsReadDeadline))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(wsReadDeadline))
		return nil
	})

	messageChan := make(chan []byte)
	doneChan := make(chan struct{})
	go func() {
		defer close(doneChan)
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			select {
			case messageChan <- data:
			case <-c.Request.Context().Done():
				return
			}
		}
	}()

	pingTicker := time.NewTicker(wsPingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case data := <-cl.send:
			ws.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-pingTicker.C:
			ws.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case data := <-messageChan:
			ws.SetReadDeadline(time.Now().Add(wsReadDeadline))
			var cmd InputCommand
			if err := json.Unmarshal(data, &cmd); err != nil || cmd.empty() {
				continue
			}
			s.apply(cmd)
		case <-doneChan:
			return
		}
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("telemetry request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}
