// Package config provides configuration management for tablero.
//
// Configuration is loaded from three sources with the following precedence
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (TABLERO_ prefix)
//  3. Config file (.tablero.yaml)
package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Supported log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Defaults.
const (
	DefaultDataDir     = "./pages"
	DefaultDatabase    = "estudiantes.db"
	DefaultRemoteURL   = "https://people.sc.fsu.edu/~jburkardt/data/csv/airtravel.csv"
	DefaultHTTPTimeout = 30 * time.Second
	DefaultListen      = ":8501"
	DefaultCacheSize   = 32
)

// Config represents the global configuration for tablero.
type Config struct {
	// LogLevel controls the verbosity of log output.
	// Valid values: debug, info, warn, error.
	LogLevel string `mapstructure:"log-level" json:"logLevel"`

	// LogFormat controls the format of log output.
	// Valid values: text, json.
	LogFormat string `mapstructure:"log-format" json:"logFormat"`

	// Quiet suppresses all log output below error level.
	Quiet bool `mapstructure:"quiet" json:"quiet"`

	// DataDir is the base directory of the relative input files.
	DataDir string `mapstructure:"data-dir" json:"dataDir"`

	// Database is the embedded SQLite file. Relative paths are taken as is.
	Database string `mapstructure:"database" json:"database"`

	// RemoteURL is the CSV fetched by the data sources page.
	RemoteURL string `mapstructure:"remote-url" json:"remoteURL"`

	// HTTPTimeout bounds one remote fetch. There is no retry.
	HTTPTimeout time.Duration `mapstructure:"http-timeout" json:"httpTimeout"`

	// Listen is the HTTP listen address of serve.
	Listen string `mapstructure:"listen" json:"listen"`

	// Seed fixes the simulated census. Zero draws a new one per render.
	Seed uint64 `mapstructure:"seed" json:"seed"`

	// CacheSize bounds the load cache.
	CacheSize int `mapstructure:"cache-size" json:"cacheSize"`

	// Watch evicts cached files when they change on disk.
	Watch bool `mapstructure:"watch" json:"watch"`

	// ConfigFile is the resolved path to the config file used.
	// Set after Load() — not read from config itself.
	ConfigFile string `mapstructure:"-" json:"-"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		LogLevel:    LogLevelInfo,
		LogFormat:   LogFormatText,
		DataDir:     DefaultDataDir,
		Database:    DefaultDatabase,
		RemoteURL:   DefaultRemoteURL,
		HTTPTimeout: DefaultHTTPTimeout,
		Listen:      DefaultListen,
		CacheSize:   DefaultCacheSize,
		Watch:       true,
	}
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		// valid
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.LogLevel)
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
		// valid
	default:
		return fmt.Errorf("invalid log format %q: must be one of text, json", c.LogFormat)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("invalid http timeout %s: must be positive", c.HTTPTimeout)
	}

	if c.CacheSize < 1 {
		return fmt.Errorf("invalid cache size %d: must be at least 1", c.CacheSize)
	}

	if c.RemoteURL != "" {
		u, err := url.Parse(c.RemoteURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("invalid remote url %q: must be http or https", c.RemoteURL)
		}
	}

	return nil
}

// EffectiveLogLevel returns the log level to use. When Quiet is true the log
// level is overridden to "error" regardless of the configured LogLevel.
func (c *Config) EffectiveLogLevel() string {
	if c.Quiet {
		return LogLevelError
	}

	return c.LogLevel
}

// Load initialises configuration from flags, environment variables, and an
// optional config file. A fresh viper instance is used on every call so that
// Load is safe for concurrent tests.
func Load(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	configureEnv(v)

	if err := configureFile(v, configFile); err != nil {
		return nil, err
	}

	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("log-format", d.LogFormat)
	v.SetDefault("quiet", d.Quiet)
	v.SetDefault("data-dir", d.DataDir)
	v.SetDefault("database", d.Database)
	v.SetDefault("remote-url", d.RemoteURL)
	v.SetDefault("http-timeout", d.HTTPTimeout)
	v.SetDefault("listen", d.Listen)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("cache-size", d.CacheSize)
	v.SetDefault("watch", d.Watch)
}

// configureEnv sets up environment variable support.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("TABLERO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

// configureFile sets up the config file source.
func configureFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", configFile, err)
		}

		return nil
	}

	v.SetConfigName(".tablero")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "tablero"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}

		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// bindFlags walks from cmd up to the root and binds all PersistentFlags.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	for c := cmd; c != nil; c = c.Parent() {
		if err := v.BindPFlags(c.PersistentFlags()); err != nil {
			return fmt.Errorf("binding persistent flags: %w", err)
		}
	}

	return nil
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKey struct{}

// NewContext returns a child context carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext extracts a Config from ctx, falling back to Default().
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}

	return Default()
}
