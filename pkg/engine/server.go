package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/picklenerd/counterfeit/pkg/config"
	"github.com/picklenerd/counterfeit/pkg/logging"
	"github.com/picklenerd/counterfeit/pkg/mapper"
	"github.com/picklenerd/counterfeit/pkg/metrics"
	"github.com/picklenerd/counterfeit/pkg/mutation"
	"github.com/picklenerd/counterfeit/pkg/requestlog"
	"github.com/picklenerd/counterfeit/pkg/watch"
)

// ShutdownTimeout bounds the graceful shutdown in Stop.
const ShutdownTimeout = 5 * time.Second

// Server is the mock server.
type Server struct {
	cfg     *config.ServerConfiguration
	log     *slog.Logger
	mutOpts mutation.Options

	cursors    *mapper.CursorState
	mapper     *mapper.Handler
	requestLog *requestlog.MemoryStore
	metrics    *metrics.Metrics
	watcher    *watch.Watcher
	handler    http.Handler

	mu         sync.RWMutex
	httpServer *http.Server
	listener   net.Listener
	running    bool
	startTime  time.Time

	// stopCh holds the channel closed when shutdown begins, so long-lived
	// streams end.
	stopCh atomic.Pointer[chan struct{}]
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) ServerOption {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMutationOptions overrides the clock and randomness used by mutations.
func WithMutationOptions(opts mutation.Options) ServerOption {
	return func(s *Server) {
		s.mutOpts = opts
	}
}

// NewServer builds a server from cfg. A nil cfg uses the defaults. The
// configuration is validated and its mutations are compiled here, so a
// returned server only fails to start on listener errors.
func NewServer(cfg *config.ServerConfiguration, opts ...ServerOption) (*Server, error) {
	if cfg == nil {
		cfg = config.DefaultServerConfiguration()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		cfg: cfg,
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	mutations, err := mutation.Build(cfg.Mutations, s.mutOpts)
	if err != nil {
		return nil, err
	}

	s.cursors = mapper.NewCursorState()
	s.requestLog = requestlog.NewMemoryStore(cfg.MaxLogEntries)

	pickerOpts := []mapper.PickerOption{
		mapper.WithCreateMissing(cfg.CreateMissing),
		mapper.WithSortedCandidates(cfg.SortCandidates),
		mapper.WithAtomicPick(cfg.AtomicPick),
		mapper.WithCreateHook(s.placeholderCreated),
	}
	handlerOpts := []mapper.HandlerOption{
		mapper.WithLogger(s.log),
		mapper.WithRequestLogging(cfg.LogRequests),
		mapper.WithMutations(mutations...),
		mapper.WithObserver(requestlog.Observer(s.requestLog)),
	}
	if cfg.Metrics {
		s.metrics = metrics.New(metrics.WithRuntimeCollectors(true))
		s.metrics.TrackCursors(s.cursors.Len)
		handlerOpts = append(handlerOpts, mapper.WithObserver(s.metrics.Observe))
	}

	baseDir := filepath.Clean(cfg.BaseDir)
	s.mapper = mapper.NewHandler(
		mapper.NewBaseDirResolver(baseDir),
		mapper.NewRoundRobinPicker(s.cursors, pickerOpts...),
		handlerOpts...,
	)
	if cfg.Watch {
		s.watcher = watch.New(baseDir, s.filesChanged, s.log)
	}
	s.handler = s.routes()

	return s, nil
}

// Start listens on Host:Port and serves in the background. Port 0 picks a
// free port; Addr reports the one chosen.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server is already running")
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	if s.watcher != nil {
		if err := s.watcher.Start(); err != nil {
			_ = ln.Close()
			return fmt.Errorf("watch %s: %w", s.cfg.BaseDir, err)
		}
	}

	s.httpServer = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}
	s.listener = ln
	stopCh := make(chan struct{})
	s.httpServer.RegisterOnShutdown(func() { close(stopCh) })
	s.stopCh.Store(&stopCh)

	srv := s.httpServer
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server error", "error", err)
		}
	}()

	s.running = true
	s.startTime = time.Now()
	s.log.Info("server started",
		"addr", ln.Addr().String(),
		"baseDir", s.cfg.BaseDir,
		"createMissing", s.cfg.CreateMissing,
		"mutations", s.mapper.Chain().Len(),
	)
	return nil
}

// Stop shuts the server down gracefully, waiting up to ShutdownTimeout for
// in-flight requests.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}
	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("watcher stop: %w", err))
		}
	}

	s.running = false
	s.log.Info("server stopped")
	return errors.Join(errs...)
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the listening address, or "" when stopped.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return ""
	}
	return s.listener.Addr().String()
}

// URL returns the base URL of a running server.
func (s *Server) URL() string {
	addr := s.Addr()
	if addr == "" {
		return ""
	}
	return "http://" + addr
}

// Uptime returns the time since Start in whole seconds.
func (s *Server) Uptime() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0
	}
	return int(time.Since(s.startTime).Seconds())
}

// Config returns the server configuration.
func (s *Server) Config() *config.ServerConfiguration {
	return s.cfg
}

// Handler returns the root HTTP handler, admin endpoints included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Mapper returns the request mapping handler.
func (s *Server) Mapper() *mapper.Handler {
	return s.mapper
}

// Cursors returns the shared round-robin state.
func (s *Server) Cursors() *mapper.CursorState {
	return s.cursors
}

// RequestLog returns the request history.
func (s *Server) RequestLog() *requestlog.MemoryStore {
	return s.requestLog
}

// Metrics returns the metrics, or nil when disabled.
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// stopping returns a channel closed once the last started server begins
// shutting down. It is nil, and never ready, before the first Start.
func (s *Server) stopping() <-chan struct{} {
	if ch := s.stopCh.Load(); ch != nil {
		return *ch
	}
	return nil
}

func (s *Server) placeholderCreated(path string) {
	s.log.Info("created placeholder response", "file", path)
	if s.metrics != nil {
		s.metrics.PlaceholderCreated(path)
	}
}

func (s *Server) filesChanged(ev watch.Event) {
	s.cursors.Reset(ev.Dir)
}
