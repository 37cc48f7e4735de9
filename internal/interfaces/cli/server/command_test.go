package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapEnvToGinMode(t *testing.T) {
	assert.Equal(t, "release", mapEnvToGinMode("production"))
	assert.Equal(t, "release", mapEnvToGinMode("prod"))
	assert.Equal(t, "test", mapEnvToGinMode("test"))
	assert.Equal(t, "debug", mapEnvToGinMode("development"))
	assert.Equal(t, "debug", mapEnvToGinMode("anything"))
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tgnotify.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ratelimit:
  client:
    max_requests: 9
    window: 2m
`), 0o600))

	cfg, err := LoadConfig(path, "")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.RateLimit.Client.MaxRequests)
	assert.Equal(t, 2*time.Minute, cfg.RateLimit.Client.Window)
	assert.Equal(t, 30, cfg.RateLimit.Global.MaxRequests)
}
