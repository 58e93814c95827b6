package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/elodash/internal/config"
	"github.com/kailas-cloud/elodash/internal/db"
	dbRedis "github.com/kailas-cloud/elodash/internal/db/redis"
	"github.com/kailas-cloud/elodash/internal/domain/board"
	logpkg "github.com/kailas-cloud/elodash/internal/logger"
	"github.com/kailas-cloud/elodash/internal/metrics"
	"github.com/kailas-cloud/elodash/internal/repository/snapshot"
	userrepo "github.com/kailas-cloud/elodash/internal/repository/user"
	"github.com/kailas-cloud/elodash/internal/tracing"
	chiTransport "github.com/kailas-cloud/elodash/internal/transport/chi"
	"github.com/kailas-cloud/elodash/internal/transport/worker"
	healthuc "github.com/kailas-cloud/elodash/internal/usecase/health"
	lbuc "github.com/kailas-cloud/elodash/internal/usecase/leaderboard"
	reguc "github.com/kailas-cloud/elodash/internal/usecase/registration"
	"github.com/kailas-cloud/elodash/internal/version"
)

// kvBackend is what board kv sources and the users list are stored in.
type kvBackend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()
	configPath := config.Path(env)

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting elodash API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("kv_backend", cfg.KV.Backend),
		zap.Int("boards", len(cfg.Boards)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Register leaderboard metrics explicitly (no init())
	metrics.RegisterLeaderboardMetrics()

	tp, err := tracing.NewProvider(tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		ServiceName:  cfg.Tracing.ServiceName,
		Version:      version.Version,
		Environment:  env,
		Endpoint:     cfg.Tracing.Endpoint,
		SamplingRate: cfg.Tracing.SamplingRate,
		Insecure:     cfg.Tracing.Insecure,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create tracer provider", zap.Error(err))
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(sctx); err != nil {
			logger.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}()

	// Redis and Valkey speak the same protocol; one client serves both.
	var store db.Store
	if cfg.Database.Enabled() {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
			DB:       cfg.Database.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer s.Close()

		if err := s.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database", zap.Strings("db_addrs", cfg.Database.Addrs))
		store = s
	}

	workerClient := worker.NewClient(&worker.Config{
		URL:     cfg.Worker.URL,
		Timeout: time.Duration(cfg.Worker.TimeoutSec) * time.Second,
		Logger:  logger,
	})

	var kv kvBackend = workerClient
	if cfg.KV.Backend == config.BackendDatabase {
		kv = store
	}

	// Snapshot chain: Source -> Cache (database only) -> Repo
	source := snapshot.NewSource(workerClient, kv)
	snapshots := snapshot.New(source, logger)
	var cache *snapshot.Cache
	if store != nil && cfg.Cache.SnapshotTTLSec > 0 {
		cache = snapshot.NewCache(source, store,
			time.Duration(cfg.Cache.SnapshotTTLSec)*time.Second, metrics.SnapshotCacheTotal, logger)
		snapshots = snapshot.New(cache, logger)
	}

	lbSvc, err := lbuc.New(mustBoards(cfg, logger), snapshots, logger)
	if err != nil {
		logger.Fatal("Invalid board catalogue", zap.Error(err))
	}
	lbSvc.WithPagination(cfg.Pagination.DefaultPageSize, cfg.Pagination.MaxPageSize)
	if cache != nil {
		lbSvc.WithCacheInvalidator(cache)
	}

	regSvc := reguc.New(userrepo.New(kv, cfg.KV.UsersKey), logger).
		WithRateLimit(cfg.Registration.RatePerMinute, cfg.Registration.Burst)

	// Pass nil interfaces (not typed nil pointers) for absent components.
	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}
	var upstream healthuc.UpstreamChecker
	if cfg.Worker.URL != "" {
		upstream = workerClient
	}
	healthSvc := healthuc.New(pinger, upstream)

	server := chiTransport.NewServer(lbSvc, regSvc, healthSvc, logger).
		WithCalculator(chiTransport.Calculator{Target: cfg.Calculator.Target, PerMonth: cfg.Calculator.PerMonth})

	var handler http.Handler = chiTransport.NewRouter(server, logger)
	if tp.Enabled() {
		handler = otelhttp.NewHandler(handler, "elodash")
	}

	go warm(ctx, lbSvc, logger)

	go func() {
		err := config.Watch(ctx, configPath, logger, func(next config.Config) {
			boards, err := next.BoardCatalog()
			if err != nil {
				logger.Warn("Ignoring board reload", zap.Error(err))
				return
			}
			if err := lbSvc.ReplaceBoards(ctx, boards); err != nil {
				logger.Warn("Ignoring board reload", zap.Error(err))
				return
			}
			logger.Info("Boards reloaded", zap.Int("boards", len(boards)))
			warm(ctx, lbSvc, logger)
		})
		if err != nil {
			logger.Warn("Config watch stopped", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func mustBoards(cfg config.Config, logger *zap.Logger) []board.Board {
	boards, err := cfg.BoardCatalog()
	if err != nil {
		logger.Fatal("Invalid board catalogue", zap.Error(err))
	}
	return boards
}

func warm(ctx context.Context, svc *lbuc.Service, logger *zap.Logger) {
	start := time.Now()
	if err := svc.Warm(ctx); err != nil {
		logger.Warn("Board warm-up interrupted", zap.Error(err))
		return
	}
	logger.Info("Boards warmed", zap.Duration("took", time.Since(start)))
}
