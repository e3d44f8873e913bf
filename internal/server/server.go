package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/football-elo-service/internal/app/ratings"
	"github.com/preston-bernstein/football-elo-service/internal/config"
	"github.com/preston-bernstein/football-elo-service/internal/feed"
	httpserver "github.com/preston-bernstein/football-elo-service/internal/http"
	"github.com/preston-bernstein/football-elo-service/internal/http/handlers"
	"github.com/preston-bernstein/football-elo-service/internal/logging"
	"github.com/preston-bernstein/football-elo-service/internal/metrics"
	"github.com/preston-bernstein/football-elo-service/internal/refresher"
)

var metricsSetup = metrics.Setup

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	ratings       *ratings.Service
	httpServer    httpServer
	metricsServer httpServer
	refresher     Refresher
	metricsStop   func(context.Context) error
	closeLedger   func() error
}

// New constructs a server with the configured ledger, snapshots and refresh loop.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	return newServerWithMetrics(ctx, cfg, logger, nil)
}

func newServerWithMetrics(ctx context.Context, cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*Server, error) {
	if logger == nil {
		logger = logging.NewLogger(cfg.Logging)
	}
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)

	ledger, closeLedger, err := buildLedger(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open match ledger: %w", err)
	}

	svc, err := ratings.NewService(ratings.Options{
		Engine:      cfg.Rating.Engine,
		Venue:       cfg.Rating.Venue,
		Multipliers: cfg.Rating.Multipliers,
		Ledger:      ledger,
		Logger:      logger,
		Metrics:     recorder,
	})
	if err != nil {
		_ = closeLedger()
		return nil, fmt.Errorf("build ratings service: %w", err)
	}

	snaps := buildSnapshots(cfg)
	if err := svc.SeedFromSnapshots(ctx, snaps.store); err != nil {
		_ = closeLedger()
		return nil, fmt.Errorf("seed from snapshots: %w", err)
	}

	ref, err := buildRefresher(cfg, svc, snaps, logger, recorder)
	if err != nil {
		_ = closeLedger()
		return nil, err
	}

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		ratings:       svc,
		httpServer:    buildHTTPServer(cfg, svc, ref, logger, recorder),
		metricsServer: metricsSrv,
		refresher:     ref,
		metricsStop:   metricsShutdown,
		closeLedger:   closeLedger,
	}, nil
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, httpSrv httpServer, ref Refresher) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpSrv,
		refresher:  ref,
	}
}

func buildRefresher(cfg config.Config, svc *ratings.Service, snaps snapshotComponents, logger *slog.Logger, recorder *metrics.Recorder) (*refresher.Refresher, error) {
	opts := refresher.Options{
		Schedule:   cfg.Refresh.Schedule,
		RunOnStart: cfg.Refresh.OnStart,
		Timeout:    cfg.Refresh.Timeout,
		Writer:     snaps.writer,
		Logger:     logger,
		Metrics:    recorder,
	}
	if cfg.Storage.MatchesCSV != "" {
		opts.Source = feed.NewRetryingSource(feed.NewFileSource(cfg.Storage.MatchesCSV, feed.NewImporter(nil, logger)), logger, 0, 0)
	}
	ref, err := refresher.New(svc, opts)
	if err != nil {
		return nil, fmt.Errorf("build refresher: %w", err)
	}
	return ref, nil
}

func buildHTTPServer(cfg config.Config, svc handlers.RatingsService, ref Refresher, logger *slog.Logger, recorder *metrics.Recorder) httpServer {
	var statusFn func() refresher.Status
	if ref != nil {
		statusFn = ref.Status
	}

	handler := handlers.NewHandler(svc, logger, statusFn)
	// Admin refresh is mounted only when a token is set.
	var admin *handlers.AdminHandler
	if cfg.Refresh.AdminToken != "" && ref != nil {
		admin = handlers.NewAdminHandler(ref, cfg.Refresh.AdminToken, logger)
	}
	router := httpserver.NewRouter(handler, admin, logger, recorder)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return netHTTPServer{srv: srv}
}

// Run starts the refresher and HTTP server, then waits for context cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	if s.refresher != nil {
		if err := s.refresher.Start(ctx); err != nil {
			logging.Error(s.logger, "refresher failed to start", err)
		}
	}

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	logging.Info(s.logger, "http server starting", slog.String("addr", s.httpServer.Addr()))
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	logging.Info(s.logger, "metrics server starting", slog.String("addr", s.metricsServer.Addr()))
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}

	if s.refresher != nil {
		if err := s.refresher.Stop(shutdownCtx); err != nil {
			logging.Error(s.logger, "failed to stop refresher", err)
		}
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	if s.closeLedger != nil {
		if err := s.closeLedger(); err != nil {
			logging.Warn(s.logger, "match ledger close failed", "error", err)
		}
	}

	logging.Info(s.logger, "shutdown complete")
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "err", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:              ":" + recCfg.Port,
				Handler:           handler,
				ReadHeaderTimeout: readTimeout,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn(logger, name+" server failed", "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}

// Ratings exposes the ratings service (useful for tests).
func (s *Server) Ratings() *ratings.Service {
	return s.ratings
}
