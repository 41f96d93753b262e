package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes into dir for the duration of the test; testing.T.Chdir
// needs Go 1.24+ and the toolchain here is older.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(prev))
	})
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := NewIsolatedLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestLoadWithFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gomr.yaml")
	content := []byte(`
log_level: debug
sheet:
  num_questions: 8
  num_options: 3
server:
  port: 9191
batch:
  workers: 2
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := NewIsolatedLoader().LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8, cfg.Sheet.NumQuestions)
	assert.Equal(t, 3, cfg.Sheet.NumOptions)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Batch.Workers)

	// Untouched settings keep their defaults.
	assert.Equal(t, DefaultConfig().Sheet.MinPixelThreshold, cfg.Sheet.MinPixelThreshold)
	assert.Equal(t, DefaultConfig().Server.Host, cfg.Server.Host)
}

func TestLoadWithFileMissing(t *testing.T) {
	_, err := NewIsolatedLoader().LoadWithFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoadWithFileInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gomr.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: -1\n"), 0o644))

	_, err := NewIsolatedLoader().LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestEnvironmentOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("GOMR_SHEET_NUM_QUESTIONS", "15")
	t.Setenv("GOMR_LOG_LEVEL", "warn")

	cfg, err := NewIsolatedLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.Sheet.NumQuestions)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestGenerateDefaultConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gomr.yaml")
	require.NoError(t, GenerateDefaultConfigFile(path))

	cfg, err := NewIsolatedLoader().LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestGetConfigSearchPaths(t *testing.T) {
	paths := GetConfigSearchPaths()
	assert.Contains(t, paths, ".")
	assert.Contains(t, paths, "/etc/gomr")
}
