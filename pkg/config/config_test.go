package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "fileclaw", cfg.ServerName)
	assert.Equal(t, "2024-11-05", cfg.ProtocolVersion)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "off", cfg.Audit.Backend)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server_name: custom-server
log_level: debug
audit:
  backend: file
  data_dir: /tmp/fileclaw-test
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "custom-server", cfg.ServerName)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "file", cfg.Audit.Backend)
	assert.Equal(t, "/tmp/fileclaw-test", cfg.Audit.DataDir)
	// Untouched fields keep defaults.
	assert.Equal(t, "1.0.0", cfg.ServerVersion)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_name: from-file\n"), 0o644))

	t.Setenv("FILECLAW_SERVER_NAME", "from-env")
	t.Setenv("FILECLAW_AUDIT_BACKEND", "memory")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.ServerName)
	assert.Equal(t, "memory", cfg.Audit.Backend)
}

func TestMissingFileIsFine(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "fileclaw", cfg.ServerName)
}

func TestInvalidLogLevel(t *testing.T) {
	t.Setenv("FILECLAW_LOG_LEVEL", "loud")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log_level")
}

func TestInvalidAuditBackend(t *testing.T) {
	t.Setenv("FILECLAW_AUDIT_BACKEND", "redis")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid audit backend")
}

func TestMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_name: [unclosed\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
