package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. SVCMAN_DOMAIN.
const EnvPrefix = "SVCMAN"

// DefaultDomain is the reverse-DNS prefix of generated job labels.
const DefaultDomain = "com.svcman.services"

// Config holds all configuration values
type Config struct {
	Home            string          `mapstructure:"home" yaml:"home"`
	Domain          string          `mapstructure:"domain" yaml:"domain"`
	RegistryFile    string          `mapstructure:"registry_file" yaml:"registry_file"`
	DescriptorDir   string          `mapstructure:"descriptor_dir" yaml:"descriptor_dir"`
	LaunchAgentsDir string          `mapstructure:"launch_agents_dir" yaml:"launch_agents_dir"`
	AutoInstall     bool            `mapstructure:"auto_install" yaml:"auto_install"`
	Launchctl       LaunchctlConfig `mapstructure:"launchctl" yaml:"launchctl"`
	Launcher        LauncherConfig  `mapstructure:"launcher" yaml:"launcher"`
	History         HistoryConfig   `mapstructure:"history" yaml:"history"`
	Logging         LoggingConfig   `mapstructure:"logging" yaml:"logging"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-" yaml:"-"`
}

// LaunchctlConfig holds control-plane settings
type LaunchctlConfig struct {
	Path  string `mapstructure:"path" yaml:"path"`
	Match string `mapstructure:"match" yaml:"match"`
}

// LauncherConfig controls the PATH-restoring launcher
type LauncherConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	EnvFile string `mapstructure:"env_file" yaml:"env_file"`
}

// HistoryConfig holds the operation history database settings
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// Load builds the configuration from defaults, the optional YAML file and
// SVCMAN_* environment variables, in increasing precedence. An explicit
// path must exist; the default <home>/config.yaml may be absent.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path == "" {
		path = filepath.Join(v.GetString("home"), "config.yaml")
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.File = path
	cfg.resolve()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("home", defaultHome())
	v.SetDefault("domain", DefaultDomain)

	// Paths below are derived from home when left empty
	v.SetDefault("registry_file", "")
	v.SetDefault("descriptor_dir", "")
	v.SetDefault("launch_agents_dir", "")
	v.SetDefault("auto_install", true)

	v.SetDefault("launchctl.path", "launchctl")
	v.SetDefault("launchctl.match", "exact")

	v.SetDefault("launcher.enabled", false)
	v.SetDefault("launcher.env_file", "")

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 30)
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	// Defaults only; decoding plain values cannot fail.
	_ = v.Unmarshal(cfg)
	cfg.resolve()
	return cfg
}

func (c *Config) resolve() {
	c.Home = expandHome(c.Home)
	if c.RegistryFile == "" {
		c.RegistryFile = filepath.Join(c.Home, "services.json")
	}
	if c.DescriptorDir == "" {
		c.DescriptorDir = filepath.Join(c.Home, ".services")
	}
	if c.LaunchAgentsDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.LaunchAgentsDir = filepath.Join(home, "Library", "LaunchAgents")
		}
	}
	if c.Launcher.EnvFile == "" {
		c.Launcher.EnvFile = filepath.Join(c.Home, "env.txt")
	}
	if c.History.Path == "" {
		c.History.Path = filepath.Join(c.Home, "history.db")
	}
	if c.Logging.File == "" {
		c.Logging.File = filepath.Join(c.Home, "svcman.log")
	}

	c.RegistryFile = expandHome(c.RegistryFile)
	c.DescriptorDir = expandHome(c.DescriptorDir)
	c.LaunchAgentsDir = expandHome(c.LaunchAgentsDir)
	c.Launcher.EnvFile = expandHome(c.Launcher.EnvFile)
	c.History.Path = expandHome(c.History.Path)
	c.Logging.File = expandHome(c.Logging.File)
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Domain) == "" {
		return errors.New("config: domain must not be empty")
	}
	switch c.Launchctl.Match {
	case "exact", "substring":
	default:
		return fmt.Errorf("config: launchctl.match must be exact or substring, got %q", c.Launchctl.Match)
	}
	if c.Logging.Level != "" {
		switch strings.ToLower(c.Logging.Level) {
		case "panic", "fatal", "error", "warn", "warning", "info", "debug", "trace":
		default:
			return fmt.Errorf("config: unknown logging.level %q", c.Logging.Level)
		}
	}
	return nil
}

// DescriptorPath is where the descriptor of service name is stored.
func (c *Config) DescriptorPath(name string) string {
	return filepath.Join(c.DescriptorDir, name+".plist")
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Init writes the effective configuration to path. An existing file is
// only replaced with force.
func Init(path string, c *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}
	data, err := c.YAML()
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return renameio.WriteFile(path, data, 0o600)
}

// defaultHome mirrors the per-user config location used for state files.
func defaultHome() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "svcman")
	}
	return filepath.Join(base, "svcman")
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
