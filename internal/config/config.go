package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Xano    XanoConfig
	Storage StorageConfig
	Events  EventsConfig
	Tracing TracingConfig
}

type AppConfig struct {
	Port        string
	ClientURL   string
	Environment string
	LogFilePath string
	CorsOrigins string
}

type XanoConfig struct {
	BaseURL   string
	AuthGroup string // API group prefix, e.g. "api:QC35j52Y"
	Timeout   time.Duration
}

type StorageConfig struct {
	Driver   string // "file" | "redis" | "postgres" | "memory" | "none"
	TokenKey string
	FilePath string
	RedisURL string
	Database string // postgres DSN
}

type EventsConfig struct {
	NatsURL string // empty disables the NATS fan-out
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

const (
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
	StoreNone     = "none"
)

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:        getEnv("APP_PORT", "3100"),
			ClientURL:   getEnv("CLIENT_URL", "http://localhost:3000"),
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "logs/orl.log"),
			CorsOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Xano: XanoConfig{
			BaseURL:   getEnv("XANO_BASE_URL", "https://api.mananjo.fr"),
			AuthGroup: getEnv("XANO_AUTH_GROUP", "api:QC35j52Y"),
			Timeout:   time.Duration(getEnvAsInt("XANO_TIMEOUT_SECONDS", 0)) * time.Second,
		},
		Storage: StorageConfig{
			Driver:   getEnv("TOKEN_STORE", StoreFile),
			TokenKey: getEnv("TOKEN_STORE_KEY", "xano_token"),
			FilePath: getEnv("TOKEN_FILE_PATH", defaultTokenFile()),
			RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
			Database: getEnv("DB_CONNECTION_STRING", ""),
		},
		Events: EventsConfig{
			NatsURL: getEnv("NATS_URL", ""),
		},
		Tracing: TracingConfig{
			Enabled:  getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".orl", "credentials.json")
	}
	return filepath.Join(home, ".orl", "credentials.json")
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
