package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad tests the behavior of Load.
//
// It verifies:
//   - First load seeds the config file from defaults
//   - Values from the file are readable
//   - Empty application names are rejected
//   - Invalid YAML returns an error
func TestLoad(t *testing.T) {
	t.Run("seeds file from defaults", func(t *testing.T) {
		home := t.TempDir()
		cfg, err := Load("myapp",
			WithConfigHome(home),
			WithDefaults(map[string]any{"server": map[string]any{"url": "https://example.com"}}),
		)
		require.NoError(t, err)

		assert.FileExists(t, filepath.Join(home, "myapp", FileName))
		assert.Equal(t, "https://example.com", cfg.GetString("server.url"))
	})

	t.Run("reads existing file", func(t *testing.T) {
		home := t.TempDir()
		dir := filepath.Join(home, "myapp")
		require.NoError(t, os.MkdirAll(dir, 0o700))
		content := "project: demo\nlimits:\n  max: 10\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o600))

		cfg, err := Load("myapp", WithConfigHome(home))
		require.NoError(t, err)
		assert.Equal(t, "demo", cfg.GetString("project"))
		assert.Equal(t, 10, cfg.GetInt("limits.max"))
	})

	t.Run("empty app name", func(t *testing.T) {
		_, err := Load("")
		require.Error(t, err)
	})

	t.Run("invalid YAML", func(t *testing.T) {
		home := t.TempDir()
		dir := filepath.Join(home, "myapp")
		require.NoError(t, os.MkdirAll(dir, 0o700))
		require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("key: [unclosed"), 0o600))

		_, err := Load("myapp", WithConfigHome(home))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config file")
	})
}

// TestEnvOverrides tests the environment override convention.
//
// It verifies:
//   - <APP>_<KEY> overrides a file value
//   - Nested keys map dots to underscores
//   - Hyphenated app names are uppercased with underscores
func TestEnvOverrides(t *testing.T) {
	t.Run("overrides file value", func(t *testing.T) {
		home := t.TempDir()
		dir := filepath.Join(home, "myapp")
		require.NoError(t, os.MkdirAll(dir, 0o700))
		require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("project: from-file\n"), 0o600))

		t.Setenv("MYAPP_PROJECT", "from-env")

		cfg, err := Load("myapp", WithConfigHome(home))
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.GetString("project"))
	})

	t.Run("nested key override", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("MYAPP_SERVER_URL", "https://override.example.com")

		cfg, err := Load("myapp",
			WithConfigHome(home),
			WithDefaults(map[string]any{"server": map[string]any{"url": "https://default.example.com"}}),
		)
		require.NoError(t, err)
		assert.Equal(t, "https://override.example.com", cfg.GetString("server.url"))
	})

	t.Run("hyphenated app name prefix", func(t *testing.T) {
		assert.Equal(t, "MY_APP", envPrefix("my-app"))
	})
}

// TestSaveRoundTrip tests the behavior of Set and Save.
//
// It verifies:
//   - A saved value survives a reload
//   - Save persists nested values
func TestSaveRoundTrip(t *testing.T) {
	home := t.TempDir()

	cfg, err := Load("myapp", WithConfigHome(home))
	require.NoError(t, err)

	cfg.Set("project", "demo")
	cfg.Set("limits.max", 25)
	require.NoError(t, cfg.Save())

	reloaded, err := Load("myapp", WithConfigHome(home))
	require.NoError(t, err)
	assert.Equal(t, "demo", reloaded.GetString("project"))
	assert.Equal(t, 25, reloaded.GetInt("limits.max"))
}

// TestAccessors tests the typed accessors and Path.
//
// It verifies:
//   - GetDefault falls back for unset keys
//   - IsSet distinguishes present and absent keys
//   - Path points at the backing file
func TestAccessors(t *testing.T) {
	home := t.TempDir()
	cfg, err := Load("myapp",
		WithConfigHome(home),
		WithDefaults(map[string]any{"enabled": true, "tags": []string{"a", "b"}}),
	)
	require.NoError(t, err)

	assert.True(t, cfg.GetBool("enabled"))
	assert.Equal(t, []string{"a", "b"}, cfg.GetStringSlice("tags"))
	assert.Equal(t, "fallback", cfg.GetDefault("missing", "fallback"))
	assert.False(t, cfg.IsSet("missing"))
	assert.True(t, cfg.IsSet("enabled"))
	assert.Equal(t, filepath.Join(home, "myapp", FileName), cfg.Path())
	assert.Equal(t, "myapp", cfg.AppName())
}

// TestModel tests the behavior of Model.
//
// It verifies:
//   - Settings are exposed as a dynamic model with nested models
func TestModel(t *testing.T) {
	home := t.TempDir()
	cfg, err := Load("myapp",
		WithConfigHome(home),
		WithDefaults(map[string]any{"server": map[string]any{"url": "https://example.com"}}),
	)
	require.NoError(t, err)

	m := cfg.Model()
	require.NotNil(t, m)
	server := m.GetModel("server")
	require.NotNil(t, server)
	assert.Equal(t, "https://example.com", server.GetString("url"))
}
