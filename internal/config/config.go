package config

import (
	"os"
	"strconv"
	"time"

	"github.com/paperbase/ragd/internal/errdefs"
)

// Config is the environment-driven service configuration.
type Config struct {
	AWSRegion        string
	ClaudeModelID    string
	TitanModelID     string
	OpenAIKey        string
	OpenAIModelID    string
	OpenAIEmbedModel string

	// "bedrock", "openai" or "fake"
	LLMProvider       string
	EmbeddingProvider string
	EmbeddingDim      int

	// "sqlite", "pgvector" or "memory"
	StoreBackend string
	DataDir      string
	UploadDir    string
	StaticDir    string

	Postgres PostgresConfig

	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	ChunkSize    int
	ChunkOverlap int
	TopKDefault  int

	EmbedTimeout time.Duration
	LLMTimeout   time.Duration

	APIPort  string
	LogLevel string
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

func LoadConfig() *Config {
	return &Config{
		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID:    getEnv("CLAUDE_MODEL_ID", ""),
		TitanModelID:     getEnv("TITAN_EMBED_MODEL_ID", "amazon.titan-embed-text-v2:0"),
		OpenAIKey:        getEnv("OPEN_AI_KEY", ""),
		OpenAIModelID:    getEnv("OPEN_AI_MODEL_ID", ""),
		OpenAIEmbedModel: getEnv("OPEN_AI_EMBED_MODEL_ID", "text-embedding-3-small"),

		LLMProvider:       getEnv("LLM_PROVIDER", "bedrock"),
		EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "fake"),
		EmbeddingDim:      getEnvInt("EMBEDDING_DIM", 1352),

		StoreBackend: getEnv("VECTOR_STORE", "sqlite"),
		DataDir:      getEnv("DATA_DIR", "./ragd_db"),
		UploadDir:    getEnv("UPLOAD_DIR", "./uploads"),
		StaticDir:    getEnv("STATIC_DIR", "./static"),

		Postgres: PostgresConfig{
			Host:     getEnv("RAGD_VECTOR_DB_HOST", "localhost"),
			Port:     getEnv("RAGD_VECTOR_DB_PORT", "5432"),
			User:     getEnv("RAGD_VECTOR_DB_USER", ""),
			Password: getEnv("RAGD_VECTOR_DB_PASSWORD", ""),
			Database: getEnv("RAGD_VECTOR_DB_DATABASE", "ragd"),
			SSLMode:  getEnv("RAGD_VECTOR_DB_SSLMODE", "disable"),
		},

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		CacheTTL:      getEnvDuration("ANSWER_CACHE_TTL_SECONDS", 3600),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),
		TopKDefault:  getEnvInt("TOP_K_DEFAULT", 3),

		EmbedTimeout: getEnvDuration("EMBED_TIMEOUT_SECONDS", 30),
		LLMTimeout:   getEnvDuration("LLM_TIMEOUT_SECONDS", 60),

		APIPort:  getEnv("RAGD_API_PORT", "8000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate rejects configurations the pipeline cannot run with. Chunk
// parameters are checked here, once, so a bad overlap never reaches a
// request.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return errdefs.Newf(errdefs.KindChunkConfig, "chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return errdefs.Newf(errdefs.KindChunkConfig, "chunk overlap must not be negative, got %d", c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return errdefs.Newf(errdefs.KindChunkConfig, "chunk overlap %d must be smaller than chunk size %d", c.ChunkOverlap, c.ChunkSize)
	}
	if c.EmbeddingDim <= 0 {
		return errdefs.Newf(errdefs.KindChunkConfig, "embedding dimension must be positive, got %d", c.EmbeddingDim)
	}
	if c.TopKDefault <= 0 {
		return errdefs.Newf(errdefs.KindChunkConfig, "default top_k must be positive, got %d", c.TopKDefault)
	}
	return nil
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		value = defaultValue
	}

	return value
}

func getEnvDuration(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, defaultSeconds)) * time.Second
}
