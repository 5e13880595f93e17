package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database. Empty means no Postgres: the engine runs in-memory only
	// and keyword search never uses the remote path.
	DatabaseURL string

	// Redis. Empty disables the async ingest queue; uploads are
	// processed inline.
	RedisURL string

	// Gemini AI. Empty disables AI search; AI mode falls back to a
	// capped keyword match.
	GeminiAPIKey string

	// Corpus bootstrap: optional URL of a JSON transcript database to
	// load at startup.
	CorpusURL string

	// Search
	SearchTimeoutSeconds int
	WorkerCount          int

	// Storage
	StoragePath string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		DatabaseURL:          getEnvOrDefault("DATABASE_URL", ""),
		RedisURL:             getEnvOrDefault("REDIS_URL", ""),
		GeminiAPIKey:         getEnvOrDefault("GEMINI_API_KEY", ""),
		CorpusURL:            getEnvOrDefault("CORPUS_URL", ""),
		SearchTimeoutSeconds: getEnvAsIntOrDefault("SEARCH_TIMEOUT_SECONDS", 10),
		WorkerCount:          getEnvAsIntOrDefault("WORKER_COUNT", 3),
		StoragePath:          getEnvOrDefault("STORAGE_PATH", "./uploads"),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
