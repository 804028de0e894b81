// Package app wires the catalog service's dependencies and owns their
// lifecycle. Background units (initial sync, scheduler) are launched
// explicitly from Run, never as import side effects, so their lifetimes
// are visible in one place.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Martin-Sil21/obraseco-sql-legacy/internal/config"
	"github.com/Martin-Sil21/obraseco-sql-legacy/internal/event"
	handler "github.com/Martin-Sil21/obraseco-sql-legacy/internal/handler/http"
	"github.com/Martin-Sil21/obraseco-sql-legacy/internal/mirror"
	"github.com/Martin-Sil21/obraseco-sql-legacy/internal/repository/postgres"
	"github.com/Martin-Sil21/obraseco-sql-legacy/internal/service"
	"github.com/Martin-Sil21/obraseco-sql-legacy/pkg/database"
	"github.com/Martin-Sil21/obraseco-sql-legacy/pkg/health"
	"github.com/Martin-Sil21/obraseco-sql-legacy/pkg/httpclient"
	pkgkafka "github.com/Martin-Sil21/obraseco-sql-legacy/pkg/kafka"
	"github.com/Martin-Sil21/obraseco-sql-legacy/pkg/textnorm"
	"github.com/Martin-Sil21/obraseco-sql-legacy/pkg/tracing"
)

// App wires together all dependencies and runs the catalog service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	producer       *pkgkafka.Producer // nil when Kafka is not configured
	syncService    *service.SyncService
	scheduler      *service.Scheduler
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing (no-op without an endpoint).
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "catalog",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Stock database pool. Connections are lazy on purpose: a warehouse
	// outage at boot must leave search answering 500s and the readiness
	// probe red, not kill the process.
	pgCfg := database.PostgresConfig{
		Host:            cfg.StockDBHost,
		Port:            cfg.StockDBPort,
		User:            cfg.StockDBUser,
		Password:        cfg.StockDBPassword,
		DBName:          cfg.StockDBName,
		SSLMode:         cfg.StockDBSSLMode,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}
	pool, err := database.NewPostgresPool(ctx, &pgCfg)
	if err != nil {
		return nil, fmt.Errorf("create stock database pool: %w", err)
	}
	logger.Info("stock database pool initialized",
		slog.String("host", cfg.StockDBHost),
		slog.Int("port", cfg.StockDBPort),
		slog.String("database", cfg.StockDBName),
	)
	database.RegisterPoolMetrics(pool, "catalog")

	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	// Build the dependency graph.
	repo := postgres.NewStockRepository(pool)
	searchService := service.NewSearchService(repo, logger, cfg.SearchQueryTimeout)

	// Kafka producer for sync lifecycle events. Optional: without
	// brokers the pipeline simply publishes nothing.
	var producer *pkgkafka.Producer
	var events service.EventPublisher
	if cfg.EventsEnabled() {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		if err := producer.Ping(ctx); err != nil {
			logger.Warn("kafka broker unreachable, continuing in degraded mode",
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
		}
		events = event.NewProducer(producer, logger)
	}

	// Mirror store client, sync pipeline and scheduler. All three exist
	// only when the mirror is configured; otherwise only search runs.
	var mirrorClient *mirror.Client
	var syncService *service.SyncService
	var scheduler *service.Scheduler
	if cfg.MirrorEnabled() {
		httpc := httpclient.New(httpclient.DefaultConfig())
		breaker := httpclient.NewCircuitBreakerClient(
			httpc,
			httpclient.DefaultCircuitBreakerConfig("mirror-store"),
			logger,
		)
		mirrorClient = mirror.NewClient(mirror.Config{
			BaseURL: cfg.MirrorURL,
			APIKey:  cfg.MirrorKey,
		}, breaker, logger)

		syncService = service.NewSyncService(repo, mirrorClient, events, logger, cfg.SyncBatchSize, cfg.SyncQueryTimeout)
		scheduler = service.NewScheduler(func(ctx context.Context) error {
			_, err := syncService.Sync(ctx)
			return err
		}, cfg.SyncPeriod, cfg.SchedulerPoll, logger)

		logger.Info("mirror store sync enabled",
			slog.String("url", cfg.MirrorURL),
			slog.Int("batch_size", cfg.SyncBatchSize),
			slog.Duration("period", cfg.SyncPeriod),
		)
	} else {
		logger.Info("mirror store not configured, sync and scheduler disabled")
	}

	// Health checks. The stock database is the only critical dependency:
	// search works without the mirror and without Kafka.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("stockdb", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if mirrorClient != nil {
		healthHandler.RegisterNonCritical("mirror", mirrorClient.Ping)
	}
	if producer != nil {
		healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
			return producer.Ping(ctx)
		})
	}

	// HTTP router.
	searchHandler := handler.NewSearchHandler(searchService, logger)
	syncHandler := handler.NewSyncHandler(syncService, logger)
	router := handler.NewRouter(cfg, searchHandler, syncHandler, healthHandler, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		producer:       producer,
		syncService:    syncService,
		scheduler:      scheduler,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and, when the mirror is configured, the
// startup sync and the recurring scheduler. It blocks until the context
// is canceled or the server fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if a.syncService != nil {
		go a.runInitialSync(ctx)
		go a.scheduler.Run(ctx)
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// runInitialSync performs the startup catalog sync. Errors are logged
// and swallowed; a failed first sync must not take the service down.
func (a *App) runInitialSync(ctx context.Context) {
	a.logger.Info("running initial catalog sync")
	if _, err := a.syncService.Sync(ctx); err != nil {
		a.logger.Error("initial catalog sync failed",
			slog.String("error", textnorm.SanitizeASCII(err.Error())),
		)
	}
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer
// 4. Stock database pool
// The scheduler and any in-flight sync stop through context cancellation.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
