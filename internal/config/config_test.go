package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load("", dataDir)
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.Storage.DataDir)
	assert.Equal(t, filepath.Join(dataDir, "context.json"), cfg.Storage.ContextFile)
	assert.Equal(t, filepath.Join(dataDir, "metoolok.db"), cfg.Storage.SQLitePath)
	assert.Equal(t, 15, cfg.Skills.DefaultTimeout)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Autosave.Enabled)
}

func TestLoad_ConfigFile(t *testing.T) {
	dataDir := t.TempDir()
	configPath := filepath.Join(dataDir, "metoolok.yaml")

	content := `
server:
  port: 9090
skills:
  default_timeout: 30
autosave:
  enabled: false
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := Load(configPath, dataDir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Skills.DefaultTimeout)
	assert.False(t, cfg.Autosave.Enabled)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("METOOLOK_SERVER_PORT", "7070")

	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	dataDir := t.TempDir()
	configPath := filepath.Join(dataDir, "metoolok.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("skills:\n  default_timeout: -1\n"), 0644))

	_, err := Load(configPath, dataDir)
	assert.Error(t, err)
}

func TestLoadManifest_Missing(t *testing.T) {
	m, err := LoadManifest(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.True(t, m.SkillEnabled("weather"))
}

func TestLoadManifest_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.yaml")
	content := `
skills:
  - name: weather
    keywords: [weather, forecast, rain]
    timeout_seconds: 5
  - name: news
    enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	m, err := LoadManifest(path)
	require.NoError(t, err)

	entry, ok := m.Entry("weather")
	require.True(t, ok)
	assert.Equal(t, []string{"weather", "forecast", "rain"}, entry.Keywords)
	assert.Equal(t, 5, entry.TimeoutSeconds)

	assert.True(t, m.SkillEnabled("weather"))
	assert.False(t, m.SkillEnabled("news"))
	assert.True(t, m.SkillEnabled("todo"))
}

func TestLoadManifest_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.yaml")
	require.NoError(t, os.WriteFile(path, []byte("skills: {not: [valid"), 0644))

	_, err := LoadManifest(path)
	assert.Error(t, err)
}
