package di

import (
	"context"

	"recall-backend/application/ports"
	"recall-backend/application/services"
	"recall-backend/domain/graph"
	"recall-backend/infrastructure/config"
	"recall-backend/infrastructure/llm/openai"
	"recall-backend/infrastructure/persistence/neo4jstore"
	"recall-backend/infrastructure/persistence/postgres"
	"recall-backend/infrastructure/persistence/sqlite"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	Pool          *pgxpool.Pool
	VectorStore   ports.VectorStore
	GraphStore    ports.GraphStore
	HistoryStore  ports.HistoryStore
	MemoryService *services.MemoryService
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, err
	}

	return logger, nil
}

// ProvidePgxPool creates the Postgres connection pool
func ProvidePgxPool(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN())
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("connected to Postgres",
		zap.String("host", cfg.PostgresHost),
		zap.String("database", cfg.PostgresDB),
	)
	return pool, nil
}

// ProvideVectorStore creates the pgvector-backed memory store
func ProvideVectorStore(ctx context.Context, pool *pgxpool.Pool, cfg *config.Config, logger *zap.Logger) (ports.VectorStore, error) {
	return postgres.NewVectorStore(ctx, pool, cfg.PostgresCollection, cfg.EmbeddingDims, logger)
}

// ProvideGraphStore creates the Neo4j graph store. A disabled or
// unreachable graph store yields nil so the service runs vector-only.
func ProvideGraphStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) ports.GraphStore {
	if !cfg.GraphStoreEnabled {
		logger.Info("graph store disabled, running vector-only")
		return nil
	}

	store, err := neo4jstore.NewGraphStore(ctx, cfg.Neo4jURI, cfg.Neo4jUsername, cfg.Neo4jPassword, logger)
	if err != nil {
		logger.Warn("graph store unavailable, running vector-only",
			zap.String("uri", cfg.Neo4jURI),
			zap.Error(err),
		)
		return nil
	}
	return store
}

// ProvideHistoryStore creates the sqlite-backed history log
func ProvideHistoryStore(cfg *config.Config, logger *zap.Logger) (ports.HistoryStore, error) {
	store, err := sqlite.NewHistoryStore(cfg.HistoryDBPath)
	if err != nil {
		return nil, err
	}
	logger.Info("history store ready", zap.String("path", cfg.HistoryDBPath))
	return store, nil
}

// ProvideEmbedder creates the embedding client
func ProvideEmbedder(cfg *config.Config) ports.Embedder {
	return openai.NewEmbedder(cfg.EmbedderAPIKey, cfg.EmbedderBaseURL, cfg.EmbeddingModel)
}

// ProvideFactExtractor creates the LLM fact extractor
func ProvideFactExtractor(cfg *config.Config) ports.FactExtractor {
	return openai.NewExtractor(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ChatModel)
}

// ProvideSanitizer creates the relationship type sanitizer
func ProvideSanitizer(logger *zap.Logger) *graph.Sanitizer {
	return graph.NewSanitizer(logger)
}

// SanitizedGraph bundles the graph store endpoints after the sanitizing
// decorators have been installed over them.
type SanitizedGraph struct {
	Ingestor graph.Ingestor
	Querier  graph.Querier
}

// ProvideSanitizedGraph wraps the graph store with the sanitizing
// decorators. A nil store produces nil endpoints and a warning.
func ProvideSanitizedGraph(store ports.GraphStore, sanitizer *graph.Sanitizer, logger *zap.Logger) SanitizedGraph {
	var ingestor graph.Ingestor
	var querier graph.Querier
	if store != nil {
		ingestor = store
		querier = store
	}

	wrappedIngestor, wrappedQuerier := graph.Install(ingestor, querier, sanitizer, logger)
	return SanitizedGraph{Ingestor: wrappedIngestor, Querier: wrappedQuerier}
}

// ProvideMemoryService creates the memory application service
func ProvideMemoryService(
	vectors ports.VectorStore,
	history ports.HistoryStore,
	embedder ports.Embedder,
	extractor ports.FactExtractor,
	sanitized SanitizedGraph,
	graphs ports.GraphStore,
	logger *zap.Logger,
) *services.MemoryService {
	return services.NewMemoryService(vectors, history, embedder, extractor, sanitized.Ingestor, sanitized.Querier, graphs, logger)
}

// Close releases every resource the container holds. Safe to call on a
// partially initialized container.
func (c *Container) Close(ctx context.Context) error {
	var firstErr error

	if c.GraphStore != nil {
		if closer, ok := c.GraphStore.(interface{ Close(context.Context) error }); ok {
			if err := closer.Close(ctx); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	if c.HistoryStore != nil {
		if closer, ok := c.HistoryStore.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	if c.Pool != nil {
		c.Pool.Close()
	}

	return firstErr
}
