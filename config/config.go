// Package config provides configuration for the recommender service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the service configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Session state store
	StoreBackend string // "memory" or "sqlite"
	DatabaseURL  string

	// Generation backend
	LLMProvider string // "openai" (any OpenAI-compatible endpoint) or "mock"
	LLMBaseURL  string
	LLMAPIKey   string
	LLMModel    string
	LLMTimeout  time.Duration

	// Embedding backend
	EmbedProvider string // "openai" or "mock"
	EmbedBaseURL  string
	EmbedAPIKey   string
	EmbedModel    string
	EmbedTimeout  time.Duration

	// Vector index
	IndexBackend     string // "memory" or "qdrant"
	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string
	QdrantTimeout    time.Duration

	// Catalog seed file for the in-memory index
	CatalogPath string

	// Pipeline tuning
	TopK          int
	HistoryWindow int
	DiversityCap  int
	IntentMode    string // "heuristic" or "llm"

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		HTTPPort:         getEnvInt("HTTP_PORT", 8080),
		StoreBackend:     getEnv("STORE_BACKEND", "memory"),
		DatabaseURL:      getEnv("DATABASE_URL", "file:nutrimood.db?cache=shared&mode=rwc"),
		LLMProvider:      getEnv("LLM_PROVIDER", "mock"),
		LLMBaseURL:       getEnv("LLM_BASE_URL", "https://api.openai.com"),
		LLMAPIKey:        getEnv("LLM_API_KEY", ""),
		LLMModel:         getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeout:       getEnvDuration("LLM_TIMEOUT_MS", 60000),
		EmbedProvider:    getEnv("EMBED_PROVIDER", "mock"),
		EmbedBaseURL:     getEnv("EMBED_BASE_URL", "https://api.openai.com/v1"),
		EmbedAPIKey:      getEnv("EMBED_API_KEY", ""),
		EmbedModel:       getEnv("EMBED_MODEL", "text-embedding-3-small"),
		EmbedTimeout:     getEnvDuration("EMBED_TIMEOUT_MS", 30000),
		IndexBackend:     getEnv("INDEX_BACKEND", "memory"),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:     getEnv("QDRANT_API_KEY", ""),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "food-items"),
		QdrantTimeout:    getEnvDuration("QDRANT_TIMEOUT_MS", 15000),
		CatalogPath:      getEnv("CATALOG_PATH", "food_items.json"),
		TopK:             getEnvInt("RETRIEVAL_TOP_K", 15),
		HistoryWindow:    getEnvInt("HISTORY_WINDOW", 10),
		DiversityCap:     getEnvInt("DIVERSITY_CAP", 2),
		IntentMode:       getEnv("INTENT_MODE", "heuristic"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultMs int) time.Duration {
	return time.Duration(getEnvInt(key, defaultMs)) * time.Millisecond
}
