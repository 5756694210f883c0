package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_USER", "books")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "book_review")
	t.Setenv("JWT_SECRET", "signing-key")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_PASS", "")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("IS_PROD", "true")

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "signing-key", cfg.JWTSecret)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.True(t, cfg.IsProd)
	assert.Equal(t, "books:secret@tcp(localhost:3306)/book_review?parseTime=true", cfg.DSN())
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("REDIS_DB", "")
	t.Setenv("IS_PROD", "")
	t.Setenv("JWT_SECRET", "")

	cfg := LoadConfig()

	assert.Zero(t, cfg.RedisDB)
	assert.False(t, cfg.IsProd)
	// An empty secret is surfaced as-is; cmd/server treats it as fatal
	assert.Empty(t, cfg.JWTSecret)
}
