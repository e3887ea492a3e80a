package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	IS_PROD                     = false
	LOG_LEVEL_PROD              = slog.LevelInfo
	TRACE_ID_KEY                = "traceId"
	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	EmbeddingOutputDimensionality int32 = 1536
	// One collection per user, named CollectionPrefix + userID
	CollectionPrefix = "docs_"

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//vectorDB
	QdrantHost             = ""
	QdrantGrpcPort         = 6334
	QdrantUseTLS           = false
	QdrantPoolSize         = 1
	QdrantHealthMaxElapsed = 30 * time.Second

	//pipeline
	PipelineTimeout = 30 * time.Second
	JobTimeout      = 60 * time.Second
	DefaultTopK     = 4

	//llm
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"
	OpenAIModelName      = "gpt-4o-mini"

	// Answer written when the LLM stage fails; the chat turn is still persisted.
	FailureAnswer = "We were unable to process your question. Please try again."

	//ingestion
	MaxChunkSize    = 1000
	ChunkOverlap    = 150
	IngestBatchSize = 100

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisPassword = ""

	RedisJobStore     = 0
	RedisSessionStore = 1

	RedisJobStoreTTL     = 24 * time.Hour
	RedisSessionStoreTTL = 0 // sessions do not expire

	//history window sent to the LLM
	HistoryTurns = 5

	// Caller identity used when no X-User-Id header is sent
	DefaultUserId = "default"

	//auth
	NoAuthBypass = true
	AuthToken    = ""
)

// LoadEnv pulls in a .env file if one exists. Variables already set in the
// environment win over file values.
func LoadEnv() {
	_ = godotenv.Load()
}

func GoogleAPIKey() string {
	return os.Getenv("GOOGLE_API_KEY")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

// LLMProvider selects the answering model: "gemini" (default) or "openai".
func LLMProvider() string {
	p := os.Getenv("LLM_PROVIDER")
	if p == "" {
		return "gemini"
	}
	return p
}

// PIIAuditDir enables on-disk persistence of per-query PII mappings when set.
func PIIAuditDir() string {
	return os.Getenv("PII_AUDIT_DIR")
}
