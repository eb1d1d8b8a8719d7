package bootstrap

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/stormgraph/internal/util"
	"github.com/OFFIS-RIT/stormgraph/pkg/ai"
	oai "github.com/OFFIS-RIT/stormgraph/pkg/ai/ollama"
	gai "github.com/OFFIS-RIT/stormgraph/pkg/ai/openai"
	"github.com/OFFIS-RIT/stormgraph/pkg/graph"
	"github.com/OFFIS-RIT/stormgraph/pkg/jobs"
	"github.com/OFFIS-RIT/stormgraph/pkg/leaselock"
	"github.com/OFFIS-RIT/stormgraph/pkg/logger"
	"github.com/OFFIS-RIT/stormgraph/pkg/logger/console"
	"github.com/OFFIS-RIT/stormgraph/pkg/store"
	"github.com/OFFIS-RIT/stormgraph/pkg/store/memory"
	"github.com/OFFIS-RIT/stormgraph/pkg/store/neo4j"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InitLogger installs the console logger configured by cfg.
func InitLogger(cfg util.Config, prefix string) {
	logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  cfg.Debug,
		Format: cfg.LogFormat,
		Prefix: prefix,
	}))
}

// NewAIClient returns the extraction model client selected by AI_ADAPTER.
// It returns nil when extraction is disabled.
func NewAIClient(cfg util.Config) (ai.GraphAIClient, error) {
	switch cfg.AIAdapter {
	case "none", "":
		return nil, nil
	case "ollama":
		client, err := oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{
			ExtractionModel:       cfg.AIExtractModel,
			BaseURL:               cfg.AIChatURL,
			ApiKey:                cfg.AIChatKey,
			MaxConcurrentRequests: int64(cfg.AIParallelReq),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama client: %w", err)
		}
		return client, nil
	case "openai":
		client := gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
			ExtractionModel: cfg.AIExtractModel,
			ChatURL:         cfg.AIChatURL,
			ChatKey:         cfg.AIChatKey,
		})
		if client == nil {
			return nil, nil
		}
		return client, nil
	}
	return nil, fmt.Errorf("unknown AI_ADAPTER %q", cfg.AIAdapter)
}

// NewGraphClient builds the extraction pipeline client. Without a usable
// model it falls back to the mock dataset.
func NewGraphClient(cfg util.Config) *graph.GraphClient {
	aiClient, err := NewAIClient(cfg)
	if err != nil {
		logger.Error("Extraction model unavailable, using mock extraction", "err", err)
		aiClient = nil
	}
	if aiClient == nil {
		logger.Warn("No extraction model configured, extraction returns mock data")
	}

	return graph.NewGraphClient(graph.NewGraphClientParams{
		AIClient:       aiClient,
		MaxFragments:   cfg.ExtractMaxFragments,
		MaxRetries:     cfg.ExtractMaxRetries,
		ChunkMaxLength: cfg.ChunkMaxLength,
	})
}

// NewGraphStore connects the graph store selected by GRAPH_STORE. A Neo4j
// connection failure leaves the process running in degraded mode.
func NewGraphStore(ctx context.Context, cfg util.Config) store.GraphStorage {
	if cfg.GraphStore == "memory" {
		logger.Info("Using in-memory graph store")
		return memory.New()
	}

	s, err := neo4j.NewGraphDBStorage(ctx, neo4j.NewGraphDBStorageParams{
		URI:         cfg.Neo4jURI,
		User:        cfg.Neo4jUser,
		Password:    cfg.Neo4jPassword,
		Database:    cfg.Neo4jDatabase,
		Timeout:     cfg.Neo4jTimeout,
		MaxPoolSize: cfg.Neo4jPoolSize,
	})
	if err != nil {
		logger.Warn("Neo4j connection failed, running in degraded mode", "err", err)
		return store.NewUnavailable(err)
	}
	logger.Info("Neo4j connected", "uri", cfg.Neo4jURI)
	return s
}

// Backends holds the job store and the optional Postgres pool behind it.
type Backends struct {
	Jobs   jobs.Store
	Locker leaselock.Locker
	Pool   *pgxpool.Pool
}

func (b *Backends) Close() {
	if b.Jobs != nil {
		if err := b.Jobs.Close(); err != nil {
			logger.Warn("Failed to close job store", "err", err)
		}
	}
	if b.Pool != nil {
		b.Pool.Close()
	}
}

func needsPostgres(cfg util.Config) bool {
	return cfg.JobStore == "postgres" || cfg.DocLockEnabled
}

// NewBackends opens the job store selected by JOB_STORE and, when enabled,
// the per-document lease lock.
func NewBackends(ctx context.Context, cfg util.Config) (*Backends, error) {
	b := &Backends{Locker: leaselock.Nop{}}

	if needsPostgres(cfg) {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for JOB_STORE=postgres or DOC_LOCK_ENABLED")
		}
		if err := jobs.Migrate(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		b.Pool = pool
	}

	switch cfg.JobStore {
	case "memory", "":
		b.Jobs = jobs.NewMemoryStore()
	case "redis":
		s, err := jobs.NewRedisStore(ctx, jobs.NewRedisStoreParams{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.JobTTL,
		})
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Jobs = s
	case "postgres":
		b.Jobs = jobs.NewPostgresStore(b.Pool)
	default:
		b.Close()
		return nil, fmt.Errorf("unknown JOB_STORE %q", cfg.JobStore)
	}

	if cfg.DocLockEnabled {
		b.Locker = leaselock.New(b.Pool, leaselock.Options{
			Wait:        true,
			TokenPrefix: "extract-",
		})
	}
	return b, nil
}
