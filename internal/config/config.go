package config

import (
	"os"
	"strconv"
	"strings"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// SQLiteConfig holds settings for the single-user offline store.
type SQLiteConfig struct {
	Path string
}

// MinIOConfig holds object storage settings for MinIO.
// Workspace snapshots are stored there when the postgres backend is used.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AuthConfig describes how bearer tokens issued by the identity provider are verified.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
	Audience  string
	CacheSize int
}

// RateLimitConfig bounds requests per authenticated user.
type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

// LoggerConfig controls the zap logger.
type LoggerConfig struct {
	Level    string
	Encoding string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost      string
	Port         string
	TimeZone     string
	StoreBackend string
	// RequestTimeoutSec bounds each API request's store calls; 0 disables it.
	RequestTimeoutSec int
	Database          DatabaseConfig
	SQLite            SQLiteConfig
	MinIO             MinIOConfig
	Auth              AuthConfig
	RateLimit         RateLimitConfig
	Logger            LoggerConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:           getEnv("APP_HOST", "localhost:8080"),
		Port:              getEnv("PORT", "8080"),
		TimeZone:          getEnv("APP_TIMEZONE", "UTC"),
		StoreBackend:      strings.ToLower(getEnv("STORE_BACKEND", BackendPostgres)),
		RequestTimeoutSec: getEnvInt("REQUEST_TIMEOUT_SEC", 10),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "todoboard.db"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
			Issuer:    getEnv("AUTH_ISSUER", ""),
			Audience:  getEnv("AUTH_AUDIENCE", "authenticated"),
			CacheSize: getEnvInt("AUTH_CACHE_SIZE", 1000),
		},
		RateLimit: RateLimitConfig{
			PerMinute: getEnvInt("RATE_LIMIT_PER_MIN", 300),
			Burst:     getEnvInt("RATE_LIMIT_BURST", 30),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
