package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SVCMAN_HOME", home)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, home, cfg.Home)
	assert.Equal(t, DefaultDomain, cfg.Domain)
	assert.Equal(t, filepath.Join(home, "services.json"), cfg.RegistryFile)
	assert.Equal(t, filepath.Join(home, ".services"), cfg.DescriptorDir)
	assert.Equal(t, filepath.Join(home, "history.db"), cfg.History.Path)
	assert.Equal(t, filepath.Join(home, "env.txt"), cfg.Launcher.EnvFile)
	assert.Equal(t, "launchctl", cfg.Launchctl.Path)
	assert.Equal(t, "exact", cfg.Launchctl.Match)
	assert.False(t, cfg.Launcher.Enabled)
	assert.True(t, cfg.History.Enabled)
	assert.Empty(t, cfg.File)
}

func TestLoadFileAndEnv(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
home: `+home+`
domain: org.example.jobs
launchctl:
  match: substring
logging:
  level: debug
`), 0o600))

	t.Setenv("SVCMAN_DOMAIN", "org.example.override")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "org.example.override", cfg.Domain)
	assert.Equal(t, "substring", cfg.Launchctl.Match)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, path, cfg.File)
}

func TestLoadDefaultFileFromHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SVCMAN_HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"),
		[]byte("domain: net.home.jobs\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "net.home.jobs", cfg.Domain)
	assert.Equal(t, filepath.Join(home, "config.yaml"), cfg.File)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Launchctl.Match = "fuzzy"
	assert.ErrorContains(t, cfg.Validate(), "launchctl.match")

	cfg = Default()
	cfg.Domain = " "
	assert.ErrorContains(t, cfg.Validate(), "domain")

	cfg = Default()
	cfg.Logging.Level = "loud"
	assert.ErrorContains(t, cfg.Validate(), "logging.level")
}

func TestInitWritesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := Default()
	cfg.Domain = "org.example.jobs"
	require.NoError(t, Init(path, cfg, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var back Config
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, "org.example.jobs", back.Domain)
	assert.Equal(t, cfg.RegistryFile, back.RegistryFile)

	assert.Error(t, Init(path, cfg, false), "existing file needs force")
	assert.NoError(t, Init(path, cfg, true))
}

func TestDescriptorPath(t *testing.T) {
	cfg := Default()
	cfg.DescriptorDir = "/tmp/d"
	assert.Equal(t, "/tmp/d/web.plist", cfg.DescriptorPath("web"))
}
