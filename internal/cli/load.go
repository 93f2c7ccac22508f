package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lcap17/proyect-viernes/engine"
	"github.com/lcap17/proyect-viernes/loader"
	"github.com/lcap17/proyect-viernes/pages"
	"github.com/lcap17/proyect-viernes/render"
	"github.com/lcap17/proyect-viernes/schema"
)

func newLoadCommand() *cobra.Command {
	var (
		format   string
		discover bool
	)

	cmd := &cobra.Command{
		Use:   "load <source>",
		Short: "Load one data source and print it",
		Long: `Load a table from a file (.csv, .xlsx, .json, relative to --data-dir), an
http(s) or s3:// URL, or a database (sqlite://file?query=..., postgres://...?query=...).`,
		Example: `  tablero load estudiantes.csv
  tablero load "sqlite://estudiantes.db?query=SELECT * FROM estudiantes" -o csv`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := loader.ParseSource(args[0])
			if err != nil {
				return usageError("%w", err)
			}

			switch format {
			case "text", "json", "csv":
			default:
				return usageError("unsupported format: %s", format)
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			t, err := a.loader.Load(cmd.Context(), src)
			if err != nil {
				return err
			}

			if discover {
				cfg, err := schema.Discover(t.View(), schema.DiscoverOptions{
					SampleSize: schema.DefaultDiscoverOptions().SampleSize,
					Name:       src.DisplayName(),
				})
				if err != nil {
					return fmt.Errorf("discover %s: %w", src.DisplayName(), err)
				}
				return render.JSON(cmd.OutOrStdout(), cfg)
			}

			return writeTable(cmd.OutOrStdout(), format, src.DisplayName(), t)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", "text", "output format: text, json, csv")
	cmd.Flags().BoolVar(&discover, "discover", false, "print the detected dimensions and measures as JSON")

	return cmd
}

func writeTable(w io.Writer, format, title string, t loader.Table) error {
	switch format {
	case "json":
		if err := t.WriteJSON(w); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
		_, err := io.WriteString(w, "\n")
		return err
	case "csv":
		if err := t.WriteCSV(w); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		return nil
	default:
		doc := &pages.Document{Title: title}
		doc.Table(engine.BuildRecordTable(title, t.View(), t.Columns()))
		return render.Text(w, doc)
	}
}
