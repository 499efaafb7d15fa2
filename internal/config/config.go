package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Extraction ExtractionConfig
	Indexing   IndexingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string
	AdminRole string
}

type ExtractionConfig struct {
	Backend      string // "local" or "ai"
	OpenAIKey    string
	OpenAIModel  string
	FetchTimeout time.Duration
	MaxFetchSize int64
}

type IndexingConfig struct {
	BatchSize  int
	StaleAfter time.Duration
	LockTTL    time.Duration
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	batchSize, err := getEnvInt("INDEX_BATCH_SIZE", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid INDEX_BATCH_SIZE: %w", err)
	}
	if batchSize < 1 {
		return nil, fmt.Errorf("INDEX_BATCH_SIZE must be >= 1, got %d", batchSize)
	}

	staleAfter, err := getEnvDuration("INDEX_STALE_AFTER", 720*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid INDEX_STALE_AFTER: %w", err)
	}

	lockTTL, err := getEnvDuration("INDEX_LOCK_TTL", 2*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid INDEX_LOCK_TTL: %w", err)
	}

	fetchTimeout, err := getEnvDuration("EXTRACTION_FETCH_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid EXTRACTION_FETCH_TIMEOUT: %w", err)
	}

	maxFetchMB, err := getEnvInt("EXTRACTION_MAX_FETCH_MB", 32)
	if err != nil {
		return nil, fmt.Errorf("invalid EXTRACTION_MAX_FETCH_MB: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			AdminRole: getEnv("ADMIN_ROLE", "admin"),
		},
		Extraction: ExtractionConfig{
			Backend:      getEnv("EXTRACTION_BACKEND", "local"),
			OpenAIKey:    getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:  getEnv("EXTRACTION_OPENAI_MODEL", "gpt-4o-mini"),
			FetchTimeout: fetchTimeout,
			MaxFetchSize: int64(maxFetchMB) << 20,
		},
		Indexing: IndexingConfig{
			BatchSize:  batchSize,
			StaleAfter: staleAfter,
			LockTTL:    lockTTL,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.Extraction.Backend == "ai" && c.Extraction.OpenAIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}
