package config

import (
	"log"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Ai        AIConfig
	Retrieval RetrievalConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	GeminiApiKey      string
	OllamaBaseURL     string
	OllamaModel       string
	IngestTopic       string
}

// RetrievalConfig holds the knobs of the ingestion/search pipeline.
// EmbeddingDimension is fixed at deployment time; every stored vector must
// have exactly this length.
type RetrievalConfig struct {
	EmbeddingDimension int
	MaxChunkSize       int
	ChunkOverlap       int
	TopKDefault        int
	WorkerPoolSize     int
	MaxDocumentChars   int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			GeminiApiKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			IngestTopic:       getEnv("INGEST_DOCUMENT_TOPIC_NAME", "INGEST_DOCUMENT"),
		},
		Retrieval: RetrievalConfig{
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 768),
			MaxChunkSize:       getEnvAsInt("MAX_CHUNK_SIZE", 2000),
			ChunkOverlap:       getEnvAsInt("CHUNK_OVERLAP", 200),
			TopKDefault:        getEnvAsInt("TOP_K_DEFAULT", 10),
			WorkerPoolSize:     getEnvAsInt("WORKER_POOL_SIZE", defaultWorkerPoolSize()),
			MaxDocumentChars:   getEnvAsInt("MAX_DOCUMENT_CHARS", 5_000_000),
		},
	}
}

// defaultWorkerPoolSize bounds page-level ingestion concurrency to the CPU
// count, capped at 8.
func defaultWorkerPoolSize() int {
	n := runtime.NumCPU()
	if n > 8 {
		n = 8
	}
	if n < 1 {
		n = 1
	}
	return n
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
