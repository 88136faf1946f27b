package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
  mode: debug
redis:
  addr: "redis.internal:6379"
detection:
  similarity_threshold: 0.9
cache:
  l1_capacity: 250
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, 0.9, cfg.Detection.SimilarityThreshold)
	assert.Equal(t, 250, cfg.Cache.L1Capacity)

	// Unset fields fall back to defaults.
	assert.Equal(t, 5, cfg.Detection.TopK)
	assert.Equal(t, "leaselens", cfg.Redis.KeyPrefix)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 123456
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LEASELENS_SERVER_PORT", "7070")
	t.Setenv("LEASELENS_REDIS_ADDR", "envhost:6379")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "envhost:6379", cfg.Redis.Addr)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "absent.yaml"))
	})
}
