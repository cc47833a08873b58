// Package config loads reviewdiff settings from YAML with viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"reviewdiff/internal/log"
)

const (
	configDirName  = "reviewdiff"
	configFileName = "config.yaml"
	// RepoFileName is looked up at the repository root.
	RepoFileName = ".reviewdiff.yaml"
	envPrefix    = "REVIEWDIFF"
)

const (
	minTabWidth     = 1
	maxTabWidth     = 16
	maxContextLines = 50
)

type Config struct {
	TabWidth int           `mapstructure:"tab_width"`
	Context  ContextConfig `mapstructure:"context"`
	// Theme is "auto", "dark" or "light".
	Theme   string        `mapstructure:"theme"`
	Sidebar SidebarConfig `mapstructure:"sidebar"`
	Watch   WatchConfig   `mapstructure:"watch"`
}

type ContextConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	MaxLines int  `mapstructure:"max_lines"`
}

type SidebarConfig struct {
	// Width is the outer width in columns; 0 sizes it from the terminal.
	Width  int  `mapstructure:"width"`
	Hidden bool `mapstructure:"hidden"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
	// PollInterval re-fetches sources that cannot be watched, such as PRs.
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

func Defaults() Config {
	return Config{
		TabWidth: 4,
		Context: ContextConfig{
			Enabled:  true,
			MaxLines: 3,
		},
		Theme: "auto",
		Watch: WatchConfig{
			Debounce:     300 * time.Millisecond,
			PollInterval: 30 * time.Second,
		},
	}
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("tab_width", d.TabWidth)
	v.SetDefault("context.enabled", d.Context.Enabled)
	v.SetDefault("context.max_lines", d.Context.MaxLines)
	v.SetDefault("theme", d.Theme)
	v.SetDefault("sidebar.width", d.Sidebar.Width)
	v.SetDefault("sidebar.hidden", d.Sidebar.Hidden)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("watch.poll_interval", d.Watch.PollInterval)
}

// Load reads configuration. An explicit path must exist; otherwise the
// repository file and then the user file are tried, and defaults apply
// when neither exists. REVIEWDIFF_* environment variables override files.
// The returned path is the file that was read, if any.
func Load(explicit, repoRoot string) (Config, string, error) {
	v := viper.New()
	setDefaults(v, Defaults())
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := resolvePath(explicit, repoRoot)
	if err != nil {
		return Config{}, "", err
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, "", fmt.Errorf("read config %s: %w", path, err)
		}
		log.Debug(log.CatConfig, "loaded config", "path", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, "", fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}
	return cfg, path, nil
}

func resolvePath(explicit, repoRoot string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return explicit, nil
	}
	if repoRoot != "" {
		local := filepath.Join(repoRoot, RepoFileName)
		if exists(local) {
			return local, nil
		}
	}
	user, err := DefaultPath()
	if err != nil {
		// No home directory: run on defaults.
		return "", nil
	}
	if exists(user) {
		return user, nil
	}
	return "", nil
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Validate clamps numeric settings into range and rejects unknown names.
func (c *Config) Validate() error {
	if c.TabWidth < minTabWidth || c.TabWidth > maxTabWidth {
		clamped := min(max(c.TabWidth, minTabWidth), maxTabWidth)
		log.Warn(log.CatConfig, "tab_width out of range", "value", c.TabWidth, "using", clamped)
		c.TabWidth = clamped
	}
	if c.Context.MaxLines < 0 || c.Context.MaxLines > maxContextLines {
		clamped := min(max(c.Context.MaxLines, 0), maxContextLines)
		log.Warn(log.CatConfig, "context.max_lines out of range", "value", c.Context.MaxLines, "using", clamped)
		c.Context.MaxLines = clamped
	}
	if c.Sidebar.Width < 0 {
		c.Sidebar.Width = 0
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = Defaults().Watch.Debounce
	}
	if c.Watch.PollInterval <= 0 {
		c.Watch.PollInterval = Defaults().Watch.PollInterval
	}

	switch strings.ToLower(strings.TrimSpace(c.Theme)) {
	case "", "auto":
		c.Theme = "auto"
	case "dark", "light":
		c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
	default:
		return fmt.Errorf("%w: theme %q (want auto, dark or light)", ErrInvalid, c.Theme)
	}
	return nil
}

var ErrInvalid = errors.New("invalid config")

func DefaultPath() (string, error) {
	home, err := configHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

func configHome() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return xdg, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config"), nil
}
