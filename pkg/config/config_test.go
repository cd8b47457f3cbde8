package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":3002", cfg.Server.Address)
	assert.Equal(t, 5*time.Minute, cfg.Probe.CacheTTL)
	assert.Equal(t, "google.com", cfg.Probe.PingTarget)
	assert.Equal(t, 10, cfg.Probe.PingCount)
	assert.True(t, cfg.Registry.MergeUsersByName)
	assert.True(t, cfg.Monitoring.PrometheusEnabled)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  address: ":4000"
probe:
  ping_target: "example.com"
  ping_count: 3
registry:
  merge_users_by_name: false
logging:
  level: "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.Server.Address)
	assert.Equal(t, "example.com", cfg.Probe.PingTarget)
	assert.Equal(t, 3, cfg.Probe.PingCount)
	assert.False(t, cfg.Registry.MergeUsersByName)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Untouched sections keep their defaults.
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Push.PingInterval)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  address: \":4000\"\n"), 0o644))

	t.Setenv("LANMESH_SERVER_ADDRESS", ":5000")
	t.Setenv("LANMESH_LOG_LEVEL", "debug")
	t.Setenv("LANMESH_PROBE_PING_TARGET", "ping.example.org")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Server.Address)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "ping.example.org", cfg.Probe.PingTarget)
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("probe:\n  ping_count: -1\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Server.Address = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Tracing.Enabled = true
	cfg.Tracing.SampleRate = 2
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.RateLimiting.Enabled = true
	cfg.RateLimiting.RequestsPerSecond = 0
	assert.Error(t, cfg.Validate())
}
