// Package cli implements the cobra command tree for tablero.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lcap17/proyect-viernes/internal/config"
	"github.com/lcap17/proyect-viernes/internal/logging"
)

// Exit codes.
const (
	ExitRuntime = 1
	ExitUsage   = 2
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

func usageError(format string, args ...any) error {
	return &ExitError{Code: ExitUsage, Err: fmt.Errorf(format, args...)}
}

// Execute builds the command tree, runs it until it finishes or the process
// is interrupted, and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}

		return ExitRuntime
	}

	return 0
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "tablero",
		Short: "Interactive tabular dashboards",
		Long: `tablero serves a set of data dashboards: tables loaded from literals,
CSV, Excel, JSON, remote URLs and databases, filtered by request controls and
rendered as HTML, terminal text or JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: ExitUsage, Err: err}
			}

			logger := logging.Setup(cfg)

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("logLevel", cfg.LogLevel),
				slog.String("dataDir", cfg.DataDir),
				slog.String("configFile", cfg.ConfigFile),
			)

			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .tablero.yaml)")
	pf.String("log-level", config.LogLevelInfo, "log level: debug, info, warn, error")
	pf.String("log-format", config.LogFormatText, "log format: text, json")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")
	pf.String("data-dir", config.DefaultDataDir, "base directory of the input files")
	pf.String("database", config.DefaultDatabase, "embedded SQLite database file")
	pf.String("remote-url", config.DefaultRemoteURL, "remote CSV of the data sources page")
	pf.Duration("http-timeout", config.DefaultHTTPTimeout, "timeout of one remote fetch")
	pf.Uint64("seed", 0, "seed of the simulated census (0 = random per render)")
	pf.Int("cache-size", config.DefaultCacheSize, "entries kept in the load cache")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitUsage, Err: err}
	})

	cmd.AddCommand(
		newVersionCommand(),
		newPagesCommand(),
		newServeCommand(),
		newRenderCommand(),
		newFilterCommand(),
		newLoadCommand(),
		newTUICommand(),
	)

	return cmd
}
