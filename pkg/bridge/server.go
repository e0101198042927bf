// Package bridge is the host-side HTTP server of the bridge: it turns
// inbound loopback requests into named-action dispatches and always
// answers with the response envelope, whatever happened.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fusionlink/fusionlink/internal/logging"
	"github.com/fusionlink/fusionlink/pkg/actions"
	"github.com/fusionlink/fusionlink/pkg/domain"
)

const (
	// DefaultHost is the loopback bind address.
	DefaultHost = "localhost"
	// DefaultPort matches the port the remote side dials by default.
	DefaultPort = 3600

	shutdownGrace = 5 * time.Second
)

// Server accepts one action invocation per POST. The accept loop runs
// on a background goroutine so the host's dispatch thread is never
// occupied waiting on sockets. Start and Stop are idempotent.
type Server struct {
	host     string
	port     int
	registry *actions.Registry
	logger   *slog.Logger
	metrics  *metrics

	mu       sync.Mutex
	running  bool
	listener net.Listener
	httpSrv  *http.Server
	done     chan struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithAddr overrides the default loopback bind.
func WithAddr(host string, port int) Option {
	return func(s *Server) {
		s.host = host
		s.port = port
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a server over the given action registry.
func NewServer(registry *actions.Registry, opts ...Option) *Server {
	s := &Server{
		host:     DefaultHost,
		port:     DefaultPort,
		registry: registry,
		logger:   logging.NewNop(),
		metrics:  newMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler: POST /{action} plus GET /metrics.
// Exposed separately so tests can drive it through httptest.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}).ServeHTTP)
	r.Post("/*", s.handleAction)
	return r
}

// Start binds the listener and launches the accept loop. Starting an
// already-running server logs and no-ops, leaving the original
// listener intact.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Info("bridge server is already running", "addr", s.Addr())
		return nil
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start bridge server on %s: %w", addr, err)
	}

	s.listener = listener
	s.httpSrv = &http.Server{Handler: s.Handler()}
	s.done = make(chan struct{})
	s.running = true

	go func(srv *http.Server, ln net.Listener, done chan struct{}) {
		defer close(done)
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("bridge server accept loop failed", "err", err)
		}
	}(s.httpSrv, listener, s.done)

	s.logger.Info("bridge server started", "addr", listener.Addr().String())
	return nil
}

// Stop shuts the accept loop down and releases the listening socket
// before returning. Stopping a server that never started, or already
// stopped, logs and no-ops.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		s.logger.Info("bridge server is not running or already stopped")
		return
	}

	s.logger.Info("stopping bridge server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.logger.Warn("graceful shutdown incomplete, closing", "err", err)
		_ = s.httpSrv.Close()
	}
	<-s.done

	s.running = false
	s.httpSrv = nil
	s.listener = nil
	s.logger.Info("bridge server stopped")
}

// Running reports whether the accept loop is live.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return fmt.Sprintf("%s:%d", s.host, s.port)
}

// handleAction implements the wire protocol: action name = URL path
// with slashes stripped, body = JSON object or empty, response = the
// envelope with the taxonomy-driven status code.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	action := strings.Trim(r.URL.Path, "/")

	params, perr := readParams(r.Body)
	if perr != nil {
		s.logger.Error("invalid JSON in request", "action", action, "err", perr)
		s.write(w, action, http.StatusBadRequest,
			domain.Fail(domain.NewBadRequest(fmt.Sprintf("Invalid JSON format: %v", perr))), started)
		return
	}

	result, derr := s.registry.Dispatch(r.Context(), action, params)
	if derr != nil {
		s.logger.Error("action failed", "action", action, "type", derr.Type, "err", derr.Message)
		s.write(w, action, statusFor(derr), domain.Fail(derr), started)
		return
	}

	env, err := domain.OK(result)
	if err != nil {
		s.logger.Error("result not serializable", "action", action, "err", err)
		s.write(w, action, http.StatusInternalServerError,
			domain.Fail(domain.NewInternalServerError(err)), started)
		return
	}
	s.write(w, action, http.StatusOK, env, started)
}

func (s *Server) write(w http.ResponseWriter, action string, code int, env domain.Envelope, started time.Time) {
	s.metrics.observe(action, code, time.Since(started))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		s.logger.Error("failed to write response", "action", action, "err", err)
	}
}

// readParams decodes the body into a params map. An absent body means
// an empty map.
func readParams(body io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return map[string]any{}, nil
	}
	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, err
	}
	return params, nil
}

// statusFor maps the taxonomy onto HTTP: invalid input is the caller's
// fault, everything else is a host-side failure.
func statusFor(err *domain.Error) int {
	switch err.Type {
	case domain.TypeInvalidUserInput, domain.TypeBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
