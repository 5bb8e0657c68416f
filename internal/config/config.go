package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jask/catswitch/internal/logging"
)

// Config holds application configuration. It is loaded once and passed to
// the components that need it.
type Config struct {
	Cache      CacheConfig      `mapstructure:"cache"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Apps       AppsConfig       `mapstructure:"apps"`
	Activation ActivationConfig `mapstructure:"activation"`
	Log        logging.Config   `mapstructure:"log"`
	UI         UIConfig         `mapstructure:"ui"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// CacheConfig selects where classifications are persisted.
type CacheConfig struct {
	Backend string `mapstructure:"backend"` // sqlite or file
	Path    string `mapstructure:"path"`
	Key     string `mapstructure:"key"`
}

// LLMConfig holds remote classifier settings.
type LLMConfig struct {
	Provider          string        `mapstructure:"provider"`
	APIKeyEnv         string        `mapstructure:"api_key_env"`
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"`
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	BreakerFailures   int           `mapstructure:"breaker_failures"`
	BreakerCooldown   time.Duration `mapstructure:"breaker_cooldown"`
}

// AppsConfig locates the running-apps manifest.
type AppsConfig struct {
	Manifest string `mapstructure:"manifest"`
}

// ActivationConfig holds the command that foregrounds an app. Empty means
// activations are only logged.
type ActivationConfig struct {
	Command string `mapstructure:"command"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Width int `mapstructure:"width"`
}

// MetricsConfig holds the optional Prometheus listener.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

const envPrefix = "CATSWITCH"

// Path returns the config file location: $CATSWITCH_CONFIG or
// ~/.config/catswitch/config.toml.
func Path() string {
	if p := os.Getenv(envPrefix + "_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "catswitch", "config.toml")
}

func setDefaults(v *viper.Viper) {
	home := os.Getenv("HOME")
	v.SetDefault("cache.backend", "sqlite")
	v.SetDefault("cache.path", filepath.Join(home, ".local", "share", "catswitch", "catswitch.db"))
	v.SetDefault("cache.key", "appCategoryCache")
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.api_key_env", "OPENAI_API_KEY")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout", "8s")
	v.SetDefault("llm.requests_per_second", 0)
	v.SetDefault("llm.burst", 1)
	v.SetDefault("llm.breaker_failures", 3)
	v.SetDefault("llm.breaker_cooldown", "30s")
	v.SetDefault("apps.manifest", filepath.Join(home, ".config", "catswitch", "apps.toml"))
	v.SetDefault("activation.command", defaultActivationCommand())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("log.file", "")
	v.SetDefault("ui.width", 48)
	v.SetDefault("metrics.addr", "")
}

func defaultActivationCommand() string {
	if runtime.GOOS == "darwin" {
		return "open -b {id}"
	}
	return ""
}

// Load reads configuration from file and env. Env var overrides use prefix
// CATSWITCH_ with dots replaced by underscores, e.g. CATSWITCH_LLM_MODEL.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

// Validate rejects values no component can use.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case "sqlite", "file":
	default:
		return fmt.Errorf("config: cache.backend must be sqlite or file, got %q", c.Cache.Backend)
	}
	if strings.TrimSpace(c.Cache.Key) == "" {
		return errors.New("config: cache.key is empty")
	}
	switch strings.ToLower(c.LLM.Provider) {
	case "openai", "none", "":
	default:
		return fmt.Errorf("config: llm.provider must be openai or none, got %q", c.LLM.Provider)
	}
	if c.LLM.Timeout < 0 || c.LLM.RequestsPerSecond < 0 {
		return errors.New("config: llm.timeout and llm.requests_per_second must not be negative")
	}
	return nil
}

// Save writes cfg to Path, creating the config directory if needed.
// The API key is stored in plain text; prefer the env var or `catswitch key set`.
func Save(cfg Config) (string, error) {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("cache.backend", cfg.Cache.Backend)
	v.Set("cache.path", cfg.Cache.Path)
	v.Set("cache.key", cfg.Cache.Key)
	v.Set("llm.provider", cfg.LLM.Provider)
	v.Set("llm.api_key_env", cfg.LLM.APIKeyEnv)
	v.Set("llm.api_key", cfg.LLM.APIKey)
	v.Set("llm.model", cfg.LLM.Model)
	v.Set("llm.base_url", cfg.LLM.BaseURL)
	v.Set("llm.timeout", cfg.LLM.Timeout.String())
	v.Set("llm.requests_per_second", cfg.LLM.RequestsPerSecond)
	v.Set("llm.burst", cfg.LLM.Burst)
	v.Set("llm.breaker_failures", cfg.LLM.BreakerFailures)
	v.Set("llm.breaker_cooldown", cfg.LLM.BreakerCooldown.String())
	v.Set("apps.manifest", cfg.Apps.Manifest)
	v.Set("activation.command", cfg.Activation.Command)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.development", cfg.Log.Development)
	v.Set("log.file", cfg.Log.File)
	v.Set("ui.width", cfg.UI.Width)
	v.Set("metrics.addr", cfg.Metrics.Addr)

	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}

// WatchDebounce collapses bursts of file events from editors that write in
// several steps.
const WatchDebounce = 250 * time.Millisecond

// Watch calls onChange with the reloaded configuration whenever the config
// file changes, until ctx is done. Reloads that fail validation are logged
// and skipped. The file must exist.
func Watch(ctx context.Context, onChange func(Config), log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	path := Path()
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	debounced := debounce.New(WatchDebounce)
	v.OnConfigChange(func(e fsnotify.Event) {
		if ctx.Err() != nil {
			return
		}
		log.Debug("config file event", zap.String("file", e.Name), zap.String("op", e.Op.String()))
		debounced(func() {
			if ctx.Err() != nil {
				return
			}
			cfg, err := Load()
			if err != nil {
				log.Warn("config reload failed", zap.Error(err))
				return
			}
			log.Info("config reloaded", zap.String("file", path))
			onChange(cfg)
		})
	})
	v.WatchConfig()
	return nil
}
