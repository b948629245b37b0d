package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/avasquez/canvasagent/pkg/agent"
	"github.com/avasquez/canvasagent/pkg/canvas"
	"github.com/avasquez/canvasagent/pkg/downloader"
)

// Mode selects the gateway's access-control policy.
type Mode string

const (
	// ModeMulti hands each authenticated client an opaque session key
	// with an idle TTL; many sessions may exist concurrently.
	ModeMulti Mode = "multi"

	// ModeSingle admits exactly one live connection at a time and
	// force-closes it after a fixed wall-clock duration.
	ModeSingle Mode = "single"
)

// AgentRunner is the slice of the agent the gateway needs.
type AgentRunner interface {
	Run(ctx context.Context, query string) (*agent.RunResult, error)
}

// Config holds the gateway server configuration.
type Config struct {
	Host string
	Port int
	Mode Mode

	Password     string
	TOTPSecret   string
	TOTPDisabled bool

	// SessionTTL is the idle expiry for multi-session mode.
	SessionTTL time.Duration

	// MaxConnDuration bounds one connection in single mode.
	MaxConnDuration time.Duration

	TLSCertFile string
	TLSKeyFile  string

	// BuildAgent constructs the shared agent; called lazily on first use
	// and cached for the process lifetime.
	BuildAgent func(ctx context.Context) (AgentRunner, error)

	// FetchCourses returns the course catalog for the download
	// sub-protocol.
	FetchCourses func(ctx context.Context) ([]canvas.Course, error)

	// RunDownload executes one downloader pass.
	RunDownload func(ctx context.Context, opts downloader.Options) (*downloader.Report, error)

	Logger zerolog.Logger
}

// Server bridges WebSocket clients to the shared agent. Each connection
// is served by one goroutine with strictly ordered request/response.
type Server struct {
	cfg      Config
	auth     *Authenticator
	sessions *SessionStore
	slot     *ConnectionSlot
	upgrader websocket.Upgrader
	server   *http.Server
	logger   zerolog.Logger

	agentMu sync.Mutex
	agent   AgentRunner

	fetchCourses func(ctx context.Context) ([]canvas.Course, error)
	runDownload  func(ctx context.Context, opts downloader.Options) (*downloader.Report, error)
}

// NewServer validates the config and builds a gateway server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.Password == "" {
		return nil, fmt.Errorf("auth password is required")
	}
	if cfg.BuildAgent == nil {
		return nil, fmt.Errorf("agent builder is required")
	}
	if cfg.FetchCourses == nil {
		return nil, fmt.Errorf("course catalog fetcher is required")
	}
	if cfg.RunDownload == nil {
		return nil, fmt.Errorf("download runner is required")
	}
	switch cfg.Mode {
	case "":
		cfg.Mode = ModeMulti
	case ModeMulti, ModeSingle:
	default:
		return nil, fmt.Errorf("unknown gateway mode %q", cfg.Mode)
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	if cfg.MaxConnDuration <= 0 {
		cfg.MaxConnDuration = time.Hour
	}

	s := &Server{
		cfg:          cfg,
		auth:         NewAuthenticator(cfg.Password, cfg.TOTPSecret, cfg.TOTPDisabled),
		logger:       cfg.Logger,
		fetchCourses: cfg.FetchCourses,
		runDownload:  cfg.RunDownload,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	if cfg.Mode == ModeMulti {
		s.sessions = NewSessionStore(cfg.SessionTTL, cfg.Logger)
	} else {
		s.slot = NewConnectionSlot(cfg.MaxConnDuration)
	}
	return s, nil
}

// Start begins accepting connections. It blocks until the listener
// fails or Stop is called.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler: mux,
	}

	if s.sessions != nil {
		s.sessions.StartSweeper()
	}

	s.logger.Info().
		Str("addr", s.server.Addr).
		Str("mode", string(s.cfg.Mode)).
		Bool("tls", s.cfg.TLSCertFile != "").
		Msg("starting gateway server")

	var err error
	if s.cfg.TLSCertFile != "" && s.cfg.TLSKeyFile != "" {
		err = s.server.ListenAndServeTLS(s.cfg.TLSCertFile, s.cfg.TLSKeyFile)
	} else {
		err = s.server.ListenAndServe()
	}
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	if s.sessions != nil {
		s.sessions.StopSweeper()
	}
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// getAgent builds the shared agent on first use behind a mutex and
// caches it for the process lifetime.
func (s *Server) getAgent(ctx context.Context) (AgentRunner, error) {
	s.agentMu.Lock()
	defer s.agentMu.Unlock()

	if s.agent != nil {
		return s.agent, nil
	}
	runner, err := s.cfg.BuildAgent(ctx)
	if err != nil {
		return nil, err
	}
	s.agent = runner
	return runner, nil
}

// handleWebSocket upgrades the connection and serves it until the
// client goes away. The request goroutine carries the whole connection.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to upgrade connection")
		return
	}

	connID, _ := gonanoid.New()
	s.logger.Info().Str("conn", connID).Str("remote", r.RemoteAddr).Msg("client connected")
	s.serveConn(r.Context(), conn, connID)
}

// serveConn runs one connection's read loop: authenticate on the first
// message, then route every following message in order.
func (s *Server) serveConn(ctx context.Context, conn *websocket.Conn, connID string) {
	defer func() {
		conn.Close()
		s.logger.Info().Str("conn", connID).Msg("client disconnected")
	}()

	if s.slot != nil {
		if err := s.slot.Acquire(); err != nil {
			s.writeJSON(conn, errorResponse(err))
			return
		}
		defer s.slot.Release()
	}

	authenticated := false
	var session *Session
	var pending []canvas.Course

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Error().Err(err).Str("conn", connID).Msg("websocket error")
			}
			return
		}

		// Checked after the read so a message arriving past the
		// deadline is never routed.
		if s.slot != nil && s.slot.Expired() {
			s.writeJSON(conn, map[string]interface{}{"error": "Connection duration limit reached."})
			return
		}

		var payload map[string]interface{}
		if err := json.Unmarshal(raw, &payload); err != nil {
			s.writeJSON(conn, map[string]interface{}{"error": "Invalid JSON payload."})
			continue
		}

		if !authenticated {
			msgType, _ := payload["type"].(string)
			if msgType != "auth" {
				s.writeJSON(conn, map[string]interface{}{"error": "Authentication required."})
				return
			}

			session, err = s.authenticate(payload)
			if err != nil {
				s.writeJSON(conn, errorResponse(err))
				return
			}
			authenticated = true
			if session != nil {
				pending = s.sessions.Pending(session)
			}

			ack := map[string]interface{}{"status": "authenticated"}
			if session != nil {
				ack["session_key"] = session.Key
				ack["expires_in"] = int(s.sessions.TTL().Seconds())
			}
			s.writeJSON(conn, ack)
			continue
		}

		response, newPending := s.route(ctx, payload, pending)
		pending = newPending
		if session != nil {
			s.sessions.SetPending(session, pending)
		}
		s.writeJSON(conn, response)
	}
}

// authenticate validates an auth payload. In multi-session mode a valid
// session key resumes the prior session; otherwise password plus TOTP
// mint a fresh one.
func (s *Server) authenticate(payload map[string]interface{}) (*Session, error) {
	if s.sessions != nil {
		if key, ok := payload["session_key"].(string); ok && strings.TrimSpace(key) != "" {
			session, ok := s.sessions.Resume(key)
			if !ok {
				return nil, fmt.Errorf("Invalid or expired session key.")
			}
			return session, nil
		}
	}

	if err := s.auth.Verify(payload); err != nil {
		return nil, err
	}
	if s.sessions != nil {
		return s.sessions.Create(), nil
	}
	return nil, nil
}

// route dispatches one authenticated message by its type field. A
// processing panic is reported as an error reply and clears the pending
// catalog; the connection stays open.
func (s *Server) route(ctx context.Context, payload map[string]interface{}, pending []canvas.Course) (response map[string]interface{}, newPending []canvas.Course) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error().Interface("panic", rec).Msg("message handler panicked")
			response = map[string]interface{}{"error": fmt.Sprintf("%v", rec)}
			newPending = nil
		}
	}()

	msgType, _ := payload["type"].(string)
	if msgType == "" {
		msgType = "chat"
	}

	switch msgType {
	case "chat", "query":
		return s.handleChat(ctx, payload), pending
	case "download":
		return s.handleDownload(ctx, payload, pending)
	default:
		return map[string]interface{}{"error": fmt.Sprintf("Unsupported message type: %s", msgType)}, pending
	}
}

// handleChat forwards a query to the shared agent.
func (s *Server) handleChat(ctx context.Context, payload map[string]interface{}) map[string]interface{} {
	query, _ := payload["query"].(string)
	if strings.TrimSpace(query) == "" {
		return map[string]interface{}{"error": "Payload must include a non-empty 'query' field."}
	}

	runner, err := s.getAgent(ctx)
	if err != nil {
		return errorResponse(err)
	}

	result, err := runner.Run(ctx, query)
	if err != nil {
		return errorResponse(err)
	}
	return map[string]interface{}{"answer": result.Answer}
}

func (s *Server) writeJSON(conn *websocket.Conn, v interface{}) {
	if err := conn.WriteJSON(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to send response")
	}
}
