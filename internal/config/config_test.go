package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ligature.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
store:
  path: /var/lib/ligature
  sync_writes: true
  object_cascade: false
log:
  level: debug
  format: json
metrics:
  dump: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/ligature", cfg.Store.Path)
	assert.True(t, cfg.Store.SyncWrites)
	assert.False(t, cfg.Store.CascadeObjects())
	assert.True(t, cfg.Metrics.Dump)

	level, err := cfg.Log.ZapLevel()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level)
}

func TestLoadKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "store:\n  in_memory: true\n"))
	require.NoError(t, err)

	assert.True(t, cfg.Store.InMemory)
	assert.Equal(t, "./ligature_data", cfg.Store.Path)
	assert.True(t, cfg.Store.CascadeObjects())
	assert.Equal(t, "info", cfg.Log.Level)

	cfg, err = Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejects(t *testing.T) {
	tests := map[string]string{
		"unknown field": "store:\n  pth: x\n",
		"bad level":     "log:\n  level: loud\n",
		"bad format":    "log:\n  format: xml\n",
		"no path":       "store:\n  path: \"\"\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
