package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("AUDIT_QUEUE_SIZE", "")
	t.Setenv("TIMEZONE", "")

	cfg := Load()

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "local", cfg.StorageDriver)
	assert.False(t, cfg.UsesS3())
	assert.Equal(t, 100, cfg.AuditQueueSize)
	assert.Equal(t, "UTC", cfg.Timezone)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("STORAGE_DRIVER", "s3")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LOCK_TTL", "not-a-duration")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("TIMEZONE", "America/Sao_Paulo")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.True(t, cfg.UsesS3())
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 30*time.Second, cfg.LockTTL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "America/Sao_Paulo", cfg.Timezone)
}
