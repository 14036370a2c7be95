package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_MissingFileReturnsDefaults(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "does-not-exist.json"))

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, ":8787", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.NotEmpty(t, cfg.DataDir)
}

func TestLoader_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "editor.json")
	content := `{
		"server": {"addr": ":9999"},
		"storage": {"driver": "memory"},
		"document": {"save_interval": "30s"},
		"logging": {"level": "debug"},
		"data_dir": "` + dir + `"
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 30*time.Second, cfg.Document.SaveInterval)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Untouched settings keep their defaults.
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 10*time.Minute, cfg.Document.IdleTimeout)
}

func TestLoader_ResolvesRelativePathsAgainstDataDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "editor.json")
	content := `{
		"storage": {"driver": "sqlite", "path": "notes.db"},
		"logging": {"file": "editor.log"},
		"data_dir": "` + dir + `"
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "notes.db"), cfg.Storage.Path)
	assert.Equal(t, filepath.Join(dir, "editor.log"), cfg.Logging.File)
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "editor.json")
	content := `{
		"server": {"addr": ":9999"},
		"storage": {"driver": "memory"},
		"logging": {"level": "info"},
		"data_dir": "` + dir + `"
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("EDITOR_SERVER_ADDR", ":7777")
	t.Setenv("EDITOR_LOGGING_LEVEL", "debug")

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, ":7777", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "memory", cfg.Storage.Driver)
}

func TestLoader_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "editor.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	_, err := NewLoader(path).Load()
	assert.Error(t, err)
}

func TestLoader_AbsolutePathsLeftAlone(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "absolute.db")
	path := filepath.Join(dir, "editor.json")
	content := `{
		"storage": {"driver": "sqlite", "path": "` + dbPath + `"},
		"data_dir": "` + dir + `"
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, dbPath, cfg.Storage.Path)
}
