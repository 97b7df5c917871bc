package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Port        string
	DatabaseURL string
	RedisURL    string
	JWTSecret   string

	// Embedding provider
	EmbeddingBackend string // "local" or "gemini"
	GeminiAPIKey     string
	EmbeddingModel   string
	VectorDimension  int

	// Matching pipeline
	DefaultMatchLimit int
	MaxCandidates     int

	// Store pools / backpressure
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	DBConnLifetime  time.Duration
	RedisPoolSize   int
	RedisPoolWait   time.Duration
	ShutdownTimeout time.Duration
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found")
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:   getEnv("JWT_SECRET", ""),

		EmbeddingBackend: getEnv("EMBEDDING_BACKEND", "local"),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "text-embedding-004"),
		VectorDimension:  getEnvAsInt("VECTOR_DIMENSION", 384),

		DefaultMatchLimit: getEnvAsInt("DEFAULT_MATCH_LIMIT", 10),
		MaxCandidates:     getEnvAsInt("MAX_CANDIDATES", 1000),

		DBMaxOpenConns:  getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:  getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		DBConnLifetime:  time.Duration(getEnvAsInt("DB_CONN_LIFETIME_MINUTES", 30)) * time.Minute,
		RedisPoolSize:   getEnvAsInt("REDIS_POOL_SIZE", 20),
		RedisPoolWait:   time.Duration(getEnvAsInt("REDIS_POOL_WAIT_SECONDS", 3)) * time.Second,
		ShutdownTimeout: time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
