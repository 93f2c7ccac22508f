package engine

import (
	"io"
	"log/slog"
)

// ============================================================================
// ENGINE OPTIONS — Functional options for Execute()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	DefaultMeasure string // measure key used when Query.Measure is empty
	Unit           string // prefix for {total}, {avg}, {max}, {min}
	Logger         *slog.Logger
}

// WithDefaultMeasure sets the measure to aggregate when Query.Measure is empty.
func WithDefaultMeasure(measure string) Option {
	return func(c *config) {
		c.DefaultMeasure = measure
	}
}

// WithUnit sets the unit shown in front of formatted amounts, e.g. "$".
func WithUnit(unit string) Option {
	return func(c *config) {
		c.Unit = unit
	}
}

// WithLogger routes engine debug logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
