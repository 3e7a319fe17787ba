package main

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/smart-faq/internal/domain/analytics"
	"github.com/yanqian/smart-faq/internal/domain/faq"
	"github.com/yanqian/smart-faq/internal/infra/analyticsrepo"
	"github.com/yanqian/smart-faq/internal/infra/cache"
	"github.com/yanqian/smart-faq/internal/infra/config"
	"github.com/yanqian/smart-faq/internal/infra/database"
	"github.com/yanqian/smart-faq/internal/infra/embedder"
	"github.com/yanqian/smart-faq/internal/infra/faqrepo"
	"github.com/yanqian/smart-faq/internal/infra/generator"
	"github.com/yanqian/smart-faq/internal/infra/llm/chatgpt"
	"github.com/yanqian/smart-faq/internal/infra/queue"
	"github.com/yanqian/smart-faq/internal/infra/seed"
	"github.com/yanqian/smart-faq/internal/infra/vectorindex"
	"github.com/yanqian/smart-faq/pkg/metrics"
)

// storageHandles carries the shared database connections. Nil fields mean the driver is not in use.
type storageHandles struct {
	postgres *pgxpool.Pool
	sqlite   *sql.DB
}

func provideFAQConfig(cfg *config.Config) faq.Config {
	return faq.Config{
		Prompt:              cfg.FAQ.Prompt,
		SearchTopK:          cfg.FAQ.SearchTopK,
		SimilarityThreshold: cfg.FAQ.SimilarityThreshold,
		ContextSize:         cfg.FAQ.ContextSize,
		SearchCacheTTL:      cfg.FAQ.SearchCacheTTL,
		AnswerCacheTTL:      cfg.FAQ.AnswerCacheTTL,
		FallbackAnswer:      cfg.FAQ.FallbackAnswer,
	}
}

func provideAnalyticsConfig(cfg *config.Config) analytics.Config {
	return analytics.Config{
		PopularWindow: cfg.Analytics.PopularWindow,
		PopularLimit:  cfg.Analytics.PopularLimit,
	}
}

func provideTokenCounter(cfg *config.Config) *metrics.TokenCounter {
	return metrics.NewTokenCounter(cfg.LLM.TokenEncoding)
}

// provideChatGPTClient returns nil when no API key is configured.
func provideChatGPTClient(cfg *config.Config, logger *slog.Logger) (*chatgpt.Client, error) {
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		logger.Warn("llm api key not set, using offline embedder and generator")
		return nil, nil
	}
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
}

func provideEmbedder(cfg *config.Config, client *chatgpt.Client, tokens *metrics.TokenCounter, logger *slog.Logger) faq.Embedder {
	if client == nil {
		return embedder.NewDeterministicEmbedder(cfg.LLM.OfflineEmbedDim)
	}
	return embedder.NewChatGPTEmbedder(client, cfg.LLM.EmbeddingModel, tokens, logger)
}

func provideLLM(cfg *config.Config, client *chatgpt.Client, logger *slog.Logger) faq.LLM {
	if client == nil {
		return generator.EchoLLM{}
	}
	return generator.NewChatGPTLLM(client, cfg.LLM.Model, cfg.LLM.Temperature, logger)
}

func provideStorage(cfg *config.Config, logger *slog.Logger) (*storageHandles, func(), error) {
	handles := &storageHandles{}
	ctx := context.Background()

	if cfg.Storage.Driver == config.DriverPostgres || cfg.Vector.Driver == config.DriverPGVector {
		pool, err := database.OpenPostgres(ctx, database.PostgresOptions{
			DSN:      cfg.Storage.Postgres.DSN,
			MaxConns: cfg.Storage.Postgres.MaxConns,
			MinConns: cfg.Storage.Postgres.MinConns,
		})
		if err != nil {
			logger.Error("postgres unavailable, using memory stores", "error", err)
		} else if err := database.MigratePostgres(ctx, pool); err != nil {
			logger.Error("postgres migration failed, using memory stores", "error", err)
			pool.Close()
		} else {
			logger.Info("postgres connected")
			handles.postgres = pool
		}
	}

	if cfg.Storage.Driver == config.DriverSQLite {
		db, err := database.OpenSQLite(cfg.Storage.SQLite.Path)
		if err != nil {
			logger.Error("sqlite unavailable, using memory stores", "error", err)
		} else {
			logger.Info("sqlite opened", "path", cfg.Storage.SQLite.Path)
			handles.sqlite = db
		}
	}

	cleanup := func() {
		if handles.postgres != nil {
			handles.postgres.Close()
		}
		if handles.sqlite != nil {
			_ = handles.sqlite.Close()
		}
	}
	return handles, cleanup, nil
}

func provideFAQRepository(cfg *config.Config, handles *storageHandles, logger *slog.Logger) faq.Repository {
	switch {
	case cfg.Storage.Driver == config.DriverPostgres && handles.postgres != nil:
		logger.Info("faq postgres repository enabled")
		return faqrepo.NewPostgresRepository(handles.postgres)
	case cfg.Storage.Driver == config.DriverSQLite && handles.sqlite != nil:
		repo, err := faqrepo.NewSQLiteRepository(handles.sqlite)
		if err != nil {
			logger.Error("sqlite faq repository init failed, using memory repository", "error", err)
			return faqrepo.NewMemoryRepository()
		}
		logger.Info("faq sqlite repository enabled")
		return repo
	}
	return faqrepo.NewMemoryRepository()
}

func provideAnalyticsRepository(cfg *config.Config, handles *storageHandles, logger *slog.Logger) analytics.Repository {
	switch {
	case cfg.Storage.Driver == config.DriverPostgres && handles.postgres != nil:
		return analyticsrepo.NewPostgresRepository(handles.postgres)
	case cfg.Storage.Driver == config.DriverSQLite && handles.sqlite != nil:
		repo, err := analyticsrepo.NewSQLiteRepository(handles.sqlite)
		if err != nil {
			logger.Error("sqlite analytics repository init failed, using memory repository", "error", err)
			return analyticsrepo.NewMemoryRepository()
		}
		return repo
	}
	return analyticsrepo.NewMemoryRepository()
}

func provideVectorIndex(cfg *config.Config, handles *storageHandles, logger *slog.Logger) (faq.VectorIndex, func(), error) {
	noop := func() {}
	switch cfg.Vector.Driver {
	case config.DriverPGVector:
		if handles.postgres == nil {
			break
		}
		if err := database.MigratePGVector(context.Background(), handles.postgres, cfg.Vector.Dimensions); err != nil {
			logger.Error("pgvector migration failed, using memory index", "error", err)
			break
		}
		logger.Info("pgvector index enabled")
		return vectorindex.NewPGVectorIndex(handles.postgres), noop, nil
	case config.DriverQdrant:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		idx, err := vectorindex.NewQdrantIndex(ctx, vectorindex.QdrantOptions{
			Host:       cfg.Vector.Qdrant.Host,
			Port:       cfg.Vector.Qdrant.Port,
			APIKey:     cfg.Vector.Qdrant.APIKey,
			Collection: cfg.Vector.Qdrant.Collection,
			Dimensions: vectorDimensions(cfg),
		})
		if err != nil {
			logger.Error("qdrant unavailable, using memory index", "error", err)
			break
		}
		logger.Info("qdrant index enabled", "collection", cfg.Vector.Qdrant.Collection)
		return idx, func() { _ = idx.Close() }, nil
	}
	return vectorindex.NewMemoryIndex(), noop, nil
}

// vectorDimensions matches the collection size to whichever embedder is active.
func vectorDimensions(cfg *config.Config) int {
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		return cfg.LLM.OfflineEmbedDim
	}
	return cfg.Vector.Dimensions
}

// provideValkeyClient returns nil when neither the cache nor the queue uses Valkey.
func provideValkeyClient(cfg *config.Config, logger *slog.Logger) (valkey.Client, func(), error) {
	noop := func() {}
	if cfg.Cache.Driver != config.DriverValkey && cfg.Analytics.Queue != config.QueueValkey {
		return nil, noop, nil
	}
	opt, err := buildValkeyOptions(cfg)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory", "error", err)
		return nil, noop, nil
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory", "error", err)
		return nil, noop, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory", "error", err)
		client.Close()
		return nil, noop, nil
	}
	logger.Info("valkey connected", "addr", cfg.Cache.Addr)
	return client, client.Close, nil
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	if strings.Contains(cfg.Cache.Addr, "://") {
		return valkey.ParseURL(cfg.Cache.Addr)
	}
	return valkey.ClientOption{InitAddress: []string{cfg.Cache.Addr}}, nil
}

func provideCache(cfg *config.Config, client valkey.Client, logger *slog.Logger) faq.Cache {
	if cfg.Cache.Driver == config.DriverValkey && client != nil {
		logger.Info("faq valkey cache enabled")
		return cache.NewValkeyCache(client, cfg.Cache.Prefix)
	}
	return cache.NewMemoryCache()
}

// provideJobQueue returns nil for the inline mode so analytics writes happen on the request path.
func provideJobQueue(cfg *config.Config, client valkey.Client, logger *slog.Logger) (queue.HandlerQueue, func()) {
	var q queue.HandlerQueue
	switch {
	case cfg.Analytics.Queue == config.QueueInline:
		return nil, func() {}
	case cfg.Analytics.Queue == config.QueueValkey && client != nil:
		q = queue.NewValkeyQueue(client, cfg.Analytics.QueueKey, logger)
	default:
		q = queue.NewImmediateQueue(logger)
	}
	return q, func() { _ = q.Close() }
}

func provideAnalyticsService(cfg analytics.Config, repo analytics.Repository, q queue.HandlerQueue, logger *slog.Logger) analytics.Service {
	var jobs analytics.JobQueue
	if q != nil {
		jobs = q
	}
	svc := analytics.NewService(cfg, repo, jobs, logger)
	if q != nil {
		q.SetHandler(svc.HandleJob)
	}
	return svc
}

func provideRecorder(svc analytics.Service) faq.Recorder {
	return svc
}

func provideSeedSource(cfg *config.Config, logger *slog.Logger) (faq.SeedSource, error) {
	if cfg.Seed.Source != config.SeedSourceObjectStore {
		return seed.NewDemoSource(), nil
	}
	source, err := seed.NewObjectStoreSource(seed.ObjectStoreOptions{
		Endpoint:  cfg.Seed.Endpoint,
		AccessKey: cfg.Seed.AccessKey,
		SecretKey: cfg.Seed.SecretKey,
		Bucket:    cfg.Seed.Bucket,
		Region:    cfg.Seed.Region,
		ObjectKey: cfg.Seed.ObjectKey,
	}, logger)
	if err != nil {
		return nil, err
	}
	return source, nil
}
