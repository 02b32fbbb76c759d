// Package server wires the broker publisher, the registry observer and the HTTP endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/morezero/registry-notifier/internal/config"
	"github.com/morezero/registry-notifier/pkg/dispatcher"
	"github.com/morezero/registry-notifier/pkg/events"
	"github.com/morezero/registry-notifier/pkg/metrics"
)

const (
	logPrefix       = "server:server"
	shutdownTimeout = 10 * time.Second
)

// Server is the registry-notifier orchestrator.
type Server struct {
	cfg        *config.Config
	publisher  events.EventPublisher
	disp       *dispatcher.Dispatcher
	metrics    *metrics.Registry
	logger     *slog.Logger
	httpServer *http.Server
}

// NewLogger returns a text logger on stdout at the given level name.
func NewLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// New builds a Server around an existing publisher.
func New(cfg *config.Config, pub events.EventPublisher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	reg := metrics.NewRegistry()
	instrumented := events.NewMetricsPublisher(pub, reg)
	observer := events.NewRegistryObserver(instrumented, &events.ObserverOpts{Logger: logger})

	s := &Server{
		cfg:       cfg,
		publisher: instrumented,
		disp:      dispatcher.NewDispatcher(observer, logger),
		metrics:   reg,
		logger:    logger,
	}
	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Run loads configuration, connects to the broker and serves until SIGINT or SIGTERM.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("%s - failed to load config: %w", logPrefix, err)
	}
	if err := cfg.ValidateForServe(); err != nil {
		return err
	}

	logger := NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info(fmt.Sprintf("%s - Starting registry-notifier", logPrefix))

	pubCfg := cfg.PublisherConfig()
	pubCfg.Logger = logger
	pub, err := events.NewPublisher(pubCfg)
	if err != nil {
		return fmt.Errorf("%s - failed to connect to broker: %w", logPrefix, err)
	}
	logger.Info(fmt.Sprintf("%s - Connected to broker at %s", logPrefix, cfg.Endpoint))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return New(cfg, pub, logger).Serve(ctx)
}

// Serve runs the HTTP server until ctx is done, then shuts down and closes the publisher.
func (s *Server) Serve(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info(fmt.Sprintf("%s - HTTP server listening on %s", logPrefix, s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s - HTTP server error: %w", logPrefix, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info(fmt.Sprintf("%s - Shutting down", logPrefix))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(fmt.Sprintf("%s - HTTP shutdown: %v", logPrefix, err))
		}
		if err := s.publisher.Close(); err != nil {
			s.logger.Error(fmt.Sprintf("%s - publisher close: %v", logPrefix, err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info(fmt.Sprintf("%s - Shutdown complete", logPrefix))
	return nil
}
