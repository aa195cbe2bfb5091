package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = ctxKey("traceId")

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	// ingest worker pool
	MaxWorkerCount    int64 = 4
	MinWorkerCount    int64 = 1
	IdleWorkerTimeout       = 1 * time.Minute
	IngestQueueLimit        = 50

	// server timeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 60 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	ServerListenAddr = ":8000"

	// per-call budgets for the external ports
	EmbeddingCallTimeout  = 30 * time.Second
	VectorCallTimeout     = 30 * time.Second
	GenerationCallTimeout = 60 * time.Second
	StoreCallTimeout      = 10 * time.Second
	IngestRunTimeout      = 10 * time.Minute

	// vector index
	ChunkCollection              = "pdf_chunks"
	EmbeddingDimension     int32 = 1536
	QdrantUseTLS                 = false
	QdrantPoolSize               = 2
	DefaultQdrantHost            = "localhost"
	DefaultQdrantGrpcPort        = 6334

	// models
	GeminiModelName      = "gemini-2.5-flash"
	GoogleEmbeddingModel = "gemini-embedding-001"
	ModelTemperature     float32 = 0.7
	SystemInstruction            = "You are a helpful AI assistant that answers questions based on the provided context from uploaded documents. Answer using ONLY information from the context, cite sources as (Document Name, Page X), and say clearly when the context has no relevant information."

	// outbound HTTP pooling, shared by the genai clients
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	// conversation history cache
	DefaultRedisAddr  = "127.0.0.1:6379"
	HistoryDepth      = 5
	HistoryTTL        = 24 * time.Hour
	HistoryRedisDB    = 1
	// if redis init fails, history falls back to an in-memory store
	FallbackHistoryToMemory = true

	UploadDir = "uploads"
)

type ctxKey string

// Settings holds the env-driven part of the configuration. Constants above
// cover the knobs that never change per deployment.
type Settings struct {
	GeminiAPIKey string

	PostgresHost     string
	PostgresPort     int
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string

	QdrantHost     string
	QdrantGrpcPort int

	RedisAddr string

	ChunkSize        int
	ChunkOverlap     int
	TopK             int
	EmbedBatchSize   int
	ContextCharLimit int
}

// Load reads .env (if present) and the environment, applies defaults and
// validates the chunking parameters. A missing GEMINI_API_KEY is fatal.
func Load() (*Settings, error) {
	_ = godotenv.Load()

	s := &Settings{
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		PostgresHost:     envOr("POSTGRES_HOST", "localhost"),
		PostgresPort:     envIntOr("POSTGRES_PORT", 5432),
		PostgresDB:       envOr("POSTGRES_DB", "pdfrag_db"),
		PostgresUser:     envOr("POSTGRES_USER", "postgres"),
		PostgresPassword: envOr("POSTGRES_PASSWORD", "password"),
		QdrantHost:       envOr("QDRANT_HOST", DefaultQdrantHost),
		QdrantGrpcPort:   envIntOr("QDRANT_GRPC_PORT", DefaultQdrantGrpcPort),
		RedisAddr:        envOr("REDIS_ADDR", DefaultRedisAddr),
		ChunkSize:        envIntOr("CHUNK_SIZE", 512),
		ChunkOverlap:     envIntOr("CHUNK_OVERLAP", 50),
		TopK:             envIntOr("TOP_K", 5),
		EmbedBatchSize:   envIntOr("EMBED_BATCH_SIZE", 100),
		ContextCharLimit: envIntOr("CONTEXT_CHAR_LIMIT", 12000),
	}

	if s.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required, set it in the environment or a .env file")
	}
	if s.ChunkSize < 1 || s.ChunkOverlap < 0 {
		return nil, fmt.Errorf("invalid chunking parameters: size=%d overlap=%d", s.ChunkSize, s.ChunkOverlap)
	}
	if s.ChunkOverlap >= s.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP (%d) must be less than CHUNK_SIZE (%d)", s.ChunkOverlap, s.ChunkSize)
	}
	if s.TopK < 1 {
		return nil, fmt.Errorf("TOP_K must be at least 1, got %d", s.TopK)
	}
	return s, nil
}

// PostgresDSN builds the connection string for the relational store.
func (s *Settings) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		s.PostgresHost, s.PostgresPort, s.PostgresUser, s.PostgresPassword, s.PostgresDB)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
