package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("STORE_BACKEND", "SQLite")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("RATE_LIMIT_PER_MIN", "60")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, BackendSQLite, cfg.StoreBackend)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 60, cfg.RateLimit.PerMinute)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("AUTH_AUDIENCE", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("REQUEST_TIMEOUT_SEC", "")

	cfg := Load()

	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, "todoboard.db", cfg.SQLite.Path)
	assert.Equal(t, "authenticated", cfg.Auth.Audience)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, 10, cfg.RequestTimeoutSec)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	t.Setenv(key, "value")

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	t.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	t.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	t.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	t.Setenv(key, "")
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	t.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	t.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	t.Setenv(key, "")
	assert.Equal(t, 10, getEnvInt(key, 10))
}
