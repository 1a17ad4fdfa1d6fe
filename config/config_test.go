package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "opsq.db", cfg.Database.Path)
	assert.Empty(t, cfg.Catalog.Path)
	assert.False(t, cfg.Catalog.Watch)
	assert.False(t, cfg.Log.JSON)
	assert.Equal(t, 100, cfg.Ask.DefaultLimit)
}

func TestLoadIsCached(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	first, err := Load()
	require.NoError(t, err)
	second, err := Load()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opsq.toml")
	content := `
[database]
path = "/var/lib/opsq/ops.db"

[catalog]
path = "/etc/opsq/catalog.yaml"
watch = true

[log]
json = true

[ask]
default_limit = 25
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/opsq/ops.db", cfg.Database.Path)
	assert.Equal(t, "/etc/opsq/catalog.yaml", cfg.Catalog.Path)
	assert.True(t, cfg.Catalog.Watch)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, 25, cfg.Ask.DefaultLimit)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	t.Setenv("OPSQ_DATABASE_PATH", "/tmp/env-override.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env-override.db", cfg.Database.Path)
}
