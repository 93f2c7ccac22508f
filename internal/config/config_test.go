package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// newTestRootCmd mirrors the persistent flags of the real root command.
func newTestRootCmd() *cobra.Command {
	cmd := &cobra.Command{}
	pf := cmd.PersistentFlags()
	pf.String("config", "", "")
	pf.String("log-level", "info", "")
	pf.String("log-format", "text", "")
	pf.BoolP("quiet", "q", false, "")
	pf.String("data-dir", DefaultDataDir, "")
	pf.Uint64("seed", 0, "")

	return cmd
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	p := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	return p
}

// ---------------------------------------------------------------------------
// Default / Validate
// ---------------------------------------------------------------------------

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
	assert.Equal(t, "./pages", cfg.DataDir)
	assert.Equal(t, "estudiantes.db", cfg.Database)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, ":8501", cfg.Listen)
	assert.Equal(t, 32, cfg.CacheSize)
	assert.True(t, cfg.Watch)
	assert.Zero(t, cfg.Seed)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"log level", func(c *Config) { c.LogLevel = "verbose" }, "invalid log level"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "invalid log format"},
		{"timeout", func(c *Config) { c.HTTPTimeout = 0 }, "invalid http timeout"},
		{"cache size", func(c *Config) { c.CacheSize = 0 }, "invalid cache size"},
		{"remote url", func(c *Config) { c.RemoteURL = "ftp://example.com/x.csv" }, "invalid remote url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestEffectiveLogLevel(t *testing.T) {
	assert.Equal(t, "debug", (&Config{LogLevel: "debug"}).EffectiveLogLevel())
	assert.Equal(t, "error", (&Config{LogLevel: "debug", Quiet: true}).EffectiveLogLevel())
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, DefaultRemoteURL, cfg.RemoteURL)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.True(t, cfg.Watch)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("TABLERO_LOG_LEVEL", "debug")
	t.Setenv("TABLERO_HTTP_TIMEOUT", "5s")
	t.Setenv("TABLERO_SEED", "42")
	t.Setenv("TABLERO_WATCH", "false")

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.False(t, cfg.Watch)
}

func TestLoad_ConfigFile(t *testing.T) {
	p := writeTempConfig(t, "log-format: json\ndata-dir: /srv/datos\ncache-size: 8\nlisten: \":9000\"\n")

	cfg, err := Load(nil, p)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "/srv/datos", cfg.DataDir)
	assert.Equal(t, 8, cfg.CacheSize)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, p, cfg.ConfigFile)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(nil, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config file")
}

func TestLoad_Precedence(t *testing.T) {
	t.Setenv("TABLERO_DATA_DIR", "/from/env")
	p := writeTempConfig(t, "data-dir: /from/file\nlog-level: warn\n")

	cfg, err := Load(nil, p)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.DataDir)
	assert.Equal(t, "warn", cfg.LogLevel)

	cmd := newTestRootCmd()
	require.NoError(t, cmd.PersistentFlags().Set("data-dir", "/from/flag"))
	require.NoError(t, cmd.PersistentFlags().Set("seed", "7"))

	cfg, err = Load(cmd, p)
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", cfg.DataDir)
	assert.Equal(t, uint64(7), cfg.Seed)
}

func TestLoad_InvalidFromFile(t *testing.T) {
	p := writeTempConfig(t, "cache-size: 0\n")

	_, err := Load(nil, p)
	assert.ErrorContains(t, err, "invalid cache size")
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

func TestContext_RoundTrip(t *testing.T) {
	cfg := &Config{LogLevel: "debug", LogFormat: "json"}
	ctx := NewContext(context.Background(), cfg)
	assert.Equal(t, cfg, FromContext(ctx))
	assert.Equal(t, Default(), FromContext(context.Background()))
}
