package adapter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, SourceTypeKitsu, cfg.Providers[0].Type)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.UI.Plain)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
providers:
  - type: kitsu
    base_url: http://localhost:8080/api/edge
    timeout: 5s
store:
  path: /tmp/kanshi-test
migration:
  from: myanimelist.net
  to: kitsu.app
logging:
  level: DEBUG
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	require.Len(t, cfg.Providers, 1)
	assert.Equal(t, "http://localhost:8080/api/edge", cfg.Providers[0].BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Providers[0].Timeout)
	assert.Equal(t, "/tmp/kanshi-test", cfg.Store.Path)
	assert.Equal(t, "myanimelist.net", cfg.Migration.From)
	assert.Equal(t, "kitsu.app", cfg.Migration.To)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
}

func TestLoadConfigFile_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ui:\n  plain: false\n"), 0644))
	t.Setenv("KANSHI_UI_PLAIN", "true")

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.UI.Plain)
}

func TestLoadConfigFile_RejectsUnknownProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("providers:\n  - type: myanimelist\n"), 0644))

	_, err := LoadConfigFile(path)
	assert.ErrorContains(t, err, "unknown provider type")
}

func TestSaveConfigAs_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Migration = MigrationConfig{From: "anilist.co", To: "kitsu.app"}
	cfg.Providers[1].Timeout = 10 * time.Second

	require.NoError(t, SaveConfigAs(cfg, path))

	loaded, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Migration, loaded.Migration)
	assert.Equal(t, cfg.Providers, loaded.Providers)
	assert.Equal(t, cfg.Logging, loaded.Logging)
}

func TestSetupLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "kanshi.log")

	logger, err := SetupLogger(&LoggingConfig{File: path, Level: "debug"})
	require.NoError(t, err)
	logger.Debug("hello", "count", 1)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"app":"kanshi"`)
}

func TestSetupLogger_TextFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kanshi.log")

	logger, err := SetupLogger(&LoggingConfig{File: path, Format: "text"})
	require.NoError(t, err)
	logger.Info("migrated entries", "count", 3)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `msg="migrated entries"`)
	assert.Contains(t, string(data), "count=3")

	_, err = SetupLogger(&LoggingConfig{File: path, Format: "xml"})
	assert.ErrorContains(t, err, "unknown log format")
}

func TestSetupLogger_EmptyFileUsesDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("APPDATA", home)

	logger, err := SetupLogger(&LoggingConfig{})
	require.NoError(t, err)
	logger.Info("started")

	data, err := os.ReadFile(defaultLogPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"started"`)
}

func TestSetupLogger_Off(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	logger, err := SetupLogger(&LoggingConfig{File: "OFF"})
	require.NoError(t, err)
	logger.Error("dropped")

	entries, err := os.ReadDir(home)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandHome("~/.cache/kanshi")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".cache", "kanshi"), got)

	got, err = ExpandHome("/var/lib/kanshi")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/kanshi", got)

	got, err = ExpandHome("~other/kanshi")
	require.NoError(t, err)
	assert.Equal(t, "~other/kanshi", got)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLogLevel("debug").String())
	assert.Equal(t, "WARN", parseLogLevel("warning").String())
	assert.Equal(t, "INFO", parseLogLevel("nonsense").String())
}
