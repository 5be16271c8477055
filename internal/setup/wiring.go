// Package setup assembles the configured providers into the running
// pipeline. Provider selection is config-driven so a deployment can
// swap model vendors or store backends without code changes.
package setup

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/paperbase/ragd/internal/cache"
	"github.com/paperbase/ragd/internal/chunker"
	"github.com/paperbase/ragd/internal/config"
	"github.com/paperbase/ragd/internal/embedding"
	"github.com/paperbase/ragd/internal/ingest"
	"github.com/paperbase/ragd/internal/llm"
	"github.com/paperbase/ragd/internal/llm/bedrock"
	"github.com/paperbase/ragd/internal/llm/gpt"
	"github.com/paperbase/ragd/internal/rag"
	"github.com/paperbase/ragd/internal/redis"
	"github.com/paperbase/ragd/internal/vectorstore"
	"github.com/paperbase/ragd/internal/vectorstore/memory"
	"github.com/paperbase/ragd/internal/vectorstore/pgvector"
	"github.com/paperbase/ragd/internal/vectorstore/sqlite"
	"github.com/rs/zerolog"
)

// Components is everything the API and ingestion CLIs need, fully
// wired.
type Components struct {
	Embedder  embedding.Embedder
	LLM       llm.Client
	Store     vectorstore.Store
	Chunker   *chunker.Chunker
	Cache     *cache.AnswerCache
	Pipeline  *ingest.Pipeline
	Retriever *rag.Retriever
	Answerer  *rag.Answerer
}

func Wire(ctx context.Context, cfg *config.Config, prompts *config.PromptsConfig, logger *zerolog.Logger) (*Components, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	embedder, err := createEmbedder(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	llmClient, err := createLLMClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	store, err := createStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	ch, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	answerCache := createCache(ctx, cfg, logger)

	var pipelineCache ingest.AnswerCache
	if answerCache != nil {
		pipelineCache = answerCache
	}

	return &Components{
		Embedder:  embedder,
		LLM:       llmClient,
		Store:     store,
		Chunker:   ch,
		Cache:     answerCache,
		Pipeline:  ingest.NewPipeline(ch, embedder, store, pipelineCache, cfg.EmbedTimeout, logger),
		Retriever: rag.NewRetriever(embedder, store, cfg.TopKDefault, cfg.EmbedTimeout, logger),
		Answerer:  rag.NewAnswerer(llmClient, prompts.Answer, cfg.LLMTimeout, logger),
	}, nil
}

func createEmbedder(ctx context.Context, cfg *config.Config) (embedding.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case "fake":
		return embedding.NewFakeEmbedder(cfg.EmbeddingDim)
	case "bedrock":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("unable to load AWS config: %w", err)
		}
		client := bedrockruntime.NewFromConfig(awsCfg)
		return embedding.NewBedrockEmbedder(client, cfg.TitanModelID, cfg.EmbeddingDim), nil
	case "openai":
		return embedding.NewOpenAIEmbedder(cfg.OpenAIKey, cfg.OpenAIEmbedModel, cfg.EmbeddingDim)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
}

func createLLMClient(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "bedrock":
		return bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	case "openai":
		return gpt.NewClient(cfg.OpenAIKey, cfg.OpenAIModelID)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}

func createStore(ctx context.Context, cfg *config.Config) (vectorstore.Store, error) {
	switch cfg.StoreBackend {
	case "memory":
		return memory.New(), nil
	case "sqlite":
		return sqlite.Open(cfg.DataDir)
	case "pgvector":
		return pgvector.New(ctx, pgvector.Config{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
			SSLMode:  cfg.Postgres.SSLMode,
		}, cfg.EmbeddingDim)
	default:
		return nil, fmt.Errorf("unknown vector store backend %q", cfg.StoreBackend)
	}
}

// createCache returns nil when Redis is not configured or unreachable;
// the service runs fine without answer caching.
func createCache(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *cache.AnswerCache {
	if cfg.RedisAddr == "" {
		return nil
	}
	client, err := redis.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, 3)
	if err != nil {
		logger.Warn().Err(err).Msg("Answer cache disabled, Redis unreachable")
		return nil
	}
	return cache.NewAnswerCache(client, cfg.CacheTTL, logger)
}
