package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"ROLODEX_ADDR", "STORE_BACKEND", "DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS", "SHUTDOWN_TIMEOUT", "REDIS_POOL_SIZE"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ROLODEX_ADDR", ":9090")
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("REDIS_POOL_SIZE", "25")
	t.Setenv("KAFKA_BROKERS", " broker-1:9092, ,broker-2:9092 ")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.Equal(t, 25, cfg.Redis.PoolSize)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestFromEnvRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown backend", env: map[string]string{"STORE_BACKEND": "mongo"}},
		{name: "postgres without url", env: map[string]string{"STORE_BACKEND": "postgres", "DATABASE_URL": ""}},
		{name: "redis without url", env: map[string]string{"STORE_BACKEND": "redis", "REDIS_URL": ""}},
		{name: "bad duration", env: map[string]string{"STORE_BACKEND": "memory", "SHUTDOWN_TIMEOUT": "soon"}},
		{name: "bad pool size", env: map[string]string{"STORE_BACKEND": "memory", "REDIS_POOL_SIZE": "many"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
