package cli_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusionlink/fusionlink/internal/cli"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fusionlink.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := cli.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 3600, cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.Timeout.Std())
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadConfigParsesFile(t *testing.T) {
	path := writeConfig(t, `
host: 0.0.0.0
port: 4700
timeout: 30s
redis:
  addr: localhost:6379
  db: 2
`)

	cfg, err := cli.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 4700, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.Timeout.Std())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestLoadConfigBackfillsMissingFields(t *testing.T) {
	path := writeConfig(t, "port: 4700\n")

	cfg, err := cli.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 4700, cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.Timeout.Std())
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := writeConfig(t, "port: [not a port\n")

	_, err := cli.LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, "timeout: soonish\n")

	_, err := cli.LoadConfig(path)
	assert.Error(t, err)
}
