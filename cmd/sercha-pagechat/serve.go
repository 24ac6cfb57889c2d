package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/sercha-pagechat/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-pagechat/internal/adapters/driven/metrics"
	"github.com/custodia-labs/sercha-pagechat/internal/adapters/driven/postgres"
	"github.com/custodia-labs/sercha-pagechat/internal/adapters/driven/ragchat"
	redisadapter "github.com/custodia-labs/sercha-pagechat/internal/adapters/driven/redis"
	"github.com/custodia-labs/sercha-pagechat/internal/adapters/driven/vectorstore"
	"github.com/custodia-labs/sercha-pagechat/internal/adapters/driven/web"
	"github.com/custodia-labs/sercha-pagechat/internal/adapters/driving/http"
	"github.com/custodia-labs/sercha-pagechat/internal/config"
	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
	"github.com/custodia-labs/sercha-pagechat/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-pagechat/internal/core/services"
	"github.com/custodia-labs/sercha-pagechat/internal/extractors"
	"github.com/custodia-labs/sercha-pagechat/internal/postprocessors"
	"github.com/custodia-labs/sercha-pagechat/internal/runtime"
)

// backends are the stores selected at startup
type backends struct {
	membership driven.MembershipStore
	lock       driven.DistributedLock
	history    driven.HistoryStore
	checks     map[string]http.Pinger

	membershipName string
	historyName    string

	closers []io.Closer
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		_ = b.closers[i].Close()
	}
}

func runServe(parent context.Context, configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	logger.Info("sercha-pagechat starting", "version", version)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ===== Stores (Redis if available, otherwise PostgreSQL) =====
	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	if cfg.HistoryBackend == config.HistoryBackendMemory {
		b.history = ragchat.NewMemoryHistory(cfg.HistoryMax)
		b.historyName = domain.BackendMemory
		logger.Info("using in-process history, messages are lost on restart")
	}

	// ===== Runtime services =====
	runtimeConfig := domain.NewRuntimeConfig(b.membershipName, b.historyName, cfg.Policy())
	runtimeServices := runtime.NewServices(runtimeConfig)
	defer runtimeServices.Close()

	embedding, err := ai.NewEmbeddingService(ai.EmbeddingConfig{
		Provider: cfg.Embedding.Provider,
		APIKey:   cfg.Embedding.APIKey,
		Model:    cfg.Embedding.Model,
		BaseURL:  cfg.Embedding.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("embedding service: %w", err)
	}
	if embedding == nil {
		logger.Warn("no embedding service configured, pages will render without being indexed")
	} else {
		// Kept even when unreachable so the monitor can pick it up once it recovers
		runtimeServices.SetEmbeddingService(embedding)
		if err := embedding.HealthCheck(ctx); err != nil {
			runtimeConfig.SetEmbeddingAvailable(false)
			logger.Warn("embedding service health check failed", "model", embedding.Model(), "error", err)
		}
		go runtimeServices.MonitorEmbedding(ctx, cfg.Embedding.HealthInterval, logger)
	}

	// ===== Retrieval context =====
	store, err := vectorstore.New(cfg.VectorDir, runtimeServices.Embedder())
	if err != nil {
		return fmt.Errorf("vector store: %w", err)
	}

	fetcher := web.NewFetcher(web.Config{
		Timeout:    cfg.FetchTimeout,
		MaxBytes:   cfg.FetchMaxBytes,
		Extractors: extractors.DefaultRegistry(),
	})

	indexer := ragchat.NewIndexer(ragchat.IndexerConfig{
		Fetcher:  fetcher,
		Store:    store,
		Pipeline: postprocessors.DefaultPipeline(),
		Logger:   logger,
	})

	// ===== Metrics =====
	promMetrics := metrics.NewPrometheus()

	// ===== Services =====
	pageService := services.NewPageService(services.PageServiceConfig{
		Membership:      b.membership,
		Indexer:         indexer,
		History:         b.history,
		Lock:            b.lock,
		Metrics:         promMetrics,
		Logger:          logger,
		SessionPolicy:   cfg.Policy(),
		HistoryAmount:   cfg.HistoryAmount,
		LockTTL:         cfg.LockTTL,
		HistoryFailOpen: cfg.HistoryFailOpen,
	})

	logger.Info("runtime config",
		"membership_backend", runtimeConfig.MembershipBackend,
		"history_backend", runtimeConfig.HistoryBackend,
		"session_policy", runtimeConfig.SessionPolicy,
		"embedding", runtimeConfig.EmbeddingAvailable(),
		"indexed_chunks", store.Count(),
	)

	server := http.NewServer(http.Config{
		Host:    cfg.Host,
		Port:    cfg.Port,
		Version: version,
	}, http.Deps{
		PageService: pageService,
		Checks:      b.checks,
		Runtime:     runtimeConfig,
		Observer:    promMetrics,
		Metrics:     promMetrics.Handler(),
		Logger:      logger,
	})

	return server.Start(ctx)
}

func openBackends(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backends, error) {
	b := &backends{checks: make(map[string]http.Pinger)}

	if cfg.RedisURL != "" {
		logger.Info("connecting to redis")
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		b.closers = append(b.closers, client)

		membership := redisadapter.NewMembershipStore(client, "")
		lock := redisadapter.NewLock(client)
		b.membership, b.lock = membership, lock
		b.history = redisadapter.NewHistoryStore(client, redisadapter.HistoryStoreConfig{
			MaxMessages: cfg.HistoryMax,
			TTL:         cfg.HistoryTTL,
		})
		b.checks["membership"] = membership
		b.checks["lock"] = lock
		b.membershipName, b.historyName = domain.BackendRedis, domain.BackendRedis
		logger.Info("using redis membership store, lock and history")
		return b, nil
	}

	logger.Info("connecting to postgres")
	db, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.DB.ConnMaxIdleTime,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	b.closers = append(b.closers, db)

	if err := db.InitSchema(ctx); err != nil {
		b.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	membership := postgres.NewMembershipStore(db)
	lock := postgres.NewAdvisoryLock(db)
	b.membership, b.lock = membership, lock
	b.history = postgres.NewHistoryStore(db)
	b.checks["membership"] = membership
	b.checks["lock"] = lock
	b.membershipName, b.historyName = domain.BackendPostgres, domain.BackendPostgres
	logger.Info("using postgres membership store, advisory lock and history")
	return b, nil
}

func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), nil
}
