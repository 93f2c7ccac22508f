package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/lcap17/proyect-viernes/internal/config"
	"github.com/lcap17/proyect-viernes/internal/logging"
	"github.com/lcap17/proyect-viernes/loader"
	"github.com/lcap17/proyect-viernes/pages"
)

// app is what the commands share: the loader with its cache, the metrics
// registry and the page environment.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	loader   *loader.Loader
	env      pages.Env
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics := loader.NewMetrics(reg)
	cache, err := loader.NewCache(cfg.CacheSize, metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("create load cache: %w", err)
	}

	l := &loader.Loader{
		BaseDir: cfg.DataDir,
		Timeout: cfg.HTTPTimeout,
		Metrics: metrics,
		Cache:   cache,
		Logger:  logger,
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		loader:   l,
		env: pages.Env{
			Loader:    l,
			Database:  cfg.Database,
			RemoteURL: cfg.RemoteURL,
			Seed:      cfg.Seed,
			Logger:    logger,
			Metrics:   pages.NewMetrics(reg),
		},
	}, nil
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &ExitError{Code: ExitUsage, Err: err}
		}
		return nil
	}
}

func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return &ExitError{Code: ExitUsage, Err: err}
	}
	return nil
}
