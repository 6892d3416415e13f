package serve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/okra-platform/webdemo/internal/config"
	"github.com/okra-platform/webdemo/internal/metrics"
)

// Server serves the dispatcher until its context is cancelled
type Server interface {
	// Start binds the listener and blocks until ctx is cancelled or serving fails
	Start(ctx context.Context) error
	// Ready is closed once the listener is bound
	Ready() <-chan struct{}
	// Addr returns the bound address, or "" before Ready
	Addr() string
}

// server is the internal implementation of Server
type server struct {
	cfg            *config.Config
	logger         zerolog.Logger
	dispatcher     *Dispatcher
	dispatcherOpts []DispatcherOption
	collector      *metrics.Collector

	ready     chan struct{}
	readyOnce sync.Once

	mu   sync.RWMutex
	addr string
}

// ServerOption configures a Server
type ServerOption func(*server)

// WithDispatcherOptions passes options through to the dispatcher
func WithDispatcherOptions(opts ...DispatcherOption) ServerOption {
	return func(s *server) {
		s.dispatcherOpts = append(s.dispatcherOpts, opts...)
	}
}

// WithCollector replaces the metrics collector
func WithCollector(c *metrics.Collector) ServerOption {
	return func(s *server) {
		s.collector = c
	}
}

// NewServer creates a server for cfg
func NewServer(cfg *config.Config, logger zerolog.Logger, opts ...ServerOption) Server {
	s := &server{
		cfg:    cfg,
		logger: logger.With().Str("component", "server").Logger(),
		ready:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.collector == nil {
		s.collector = metrics.NewCollector()
	}

	dispatcherOpts := append([]DispatcherOption{WithMetrics(s.collector)}, s.dispatcherOpts...)
	s.dispatcher = NewDispatcher(s.logger, dispatcherOpts...)
	return s
}

// Ready is closed once the listener is bound
func (s *server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound listener address
func (s *server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Start binds the configured port and serves until ctx is cancelled
func (s *server) Start(ctx context.Context) error {
	if err := s.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr(), err)
	}

	httpServer := &http.Server{
		Handler:           NewHandler(s.dispatcher, s.logger, s.collector),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })

	s.logger.Info().Str("addr", s.Addr()).Msg("listening")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	if s.cfg.MetricsPort > 0 {
		g.Go(func() error {
			if err := s.collector.Serve(gctx, s.cfg.MetricsAddr(), s.logger); err != nil {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()

		// Graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down http server: %w", err)
		}
		s.logger.Info().Msg("server stopped")
		return nil
	})

	return g.Wait()
}
