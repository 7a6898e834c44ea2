package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigContent = `
[development]
host = "localhost"
port = 5000
db_path = "visionlog_dev.sqlite3"
log_level = "trace"
log_to_stdout = true

[production]
host = ""
port = 8080
db_path = "/var/lib/visionlog/visionlog.sqlite3"
trust_proxy = true
log_level = "debug"
logs_path = "/var/log/visionlog/service"
prometheus_metrics_host = "localhost"
prometheus_metrics_port = "2112"
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigContent), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeTestConfig(t)

	cfg, err := Load(context.Background(), "development", path)
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "visionlog_dev.sqlite3", cfg.DBPath)
	assert.False(t, cfg.TrustProxy)

	prodCfg, err := Load(context.Background(), "prod", path)
	require.NoError(t, err)
	assert.Equal(t, 8080, prodCfg.Port)
	assert.True(t, prodCfg.TrustProxy)
	assert.Equal(t, "2112", prodCfg.PrometheusMetricsPort)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeTestConfig(t)

	t.Setenv("DB_PATH", "/tmp/override.sqlite3")
	t.Setenv("PORT", "9999")
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := Load(context.Background(), "development", path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.sqlite3", cfg.DBPath)
	assert.Equal(t, 9999, cfg.Port)
	assert.True(t, cfg.TrustProxy)
}

func TestLoad_UnknownEnv(t *testing.T) {
	path := writeTestConfig(t)

	_, err := Load(context.Background(), "staging", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown env")
}
