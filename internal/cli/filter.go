package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lcap17/proyect-viernes/census"
	"github.com/lcap17/proyect-viernes/engine"
	"github.com/lcap17/proyect-viernes/internal/config"
	"github.com/lcap17/proyect-viernes/internal/logging"
	"github.com/lcap17/proyect-viernes/pages"
	"github.com/lcap17/proyect-viernes/render"
)

func newFilterCommand() *cobra.Command {
	var (
		paramsFile string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Filter the simulated census",
		Long: `Generate the simulated census and keep the people passing every enabled
predicate of the parameters file. Fields missing from the file keep their
default value; with no file nothing is filtered.`,
		Example: `  tablero filter --params filtros.yaml --seed 7
  tablero filter --params filtros.json --format csv`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch format {
			case "text", "json", "csv":
			default:
				return usageError("unsupported format: %s", format)
			}

			params := census.DefaultParameters()
			if paramsFile != "" {
				var err error
				if params, err = readParameters(paramsFile); err != nil {
					return &ExitError{Code: ExitUsage, Err: err}
				}
			}

			cfg := config.FromContext(cmd.Context())
			dataset := census.Generate(census.NewRand(cfg.Seed), census.DefaultSize)
			view := census.Apply(dataset, params)

			logging.FromContext(cmd.Context()).Debug("census filtered",
				slog.Int("enabled", params.EnabledCount()),
				slog.Int("rows", view.Count()),
			)

			return writeCensus(cmd.OutOrStdout(), format, view)
		},
	}

	f := cmd.Flags()
	f.StringVar(&paramsFile, "params", "", "filter parameters file (YAML or JSON)")
	f.StringVarP(&format, "format", "o", "text", "output format: text, json, csv")

	return cmd
}

// readParameters decodes a parameters file over the defaults. Files ending in
// .json are read as JSON, anything else as YAML.
func readParameters(path string) (census.FilterParameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return census.FilterParameters{}, fmt.Errorf("read parameters: %w", err)
	}

	params := census.DefaultParameters()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&params); err != nil {
			return census.FilterParameters{}, fmt.Errorf("parse parameters %s: %w", path, err)
		}
		return params, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&params); err != nil && err != io.EOF {
		return census.FilterParameters{}, fmt.Errorf("parse parameters %s: %w", path, err)
	}
	return params, nil
}

func writeCensus(w io.Writer, format string, view census.View) error {
	switch format {
	case "json":
		records := view.Records()
		if records == nil {
			records = []census.Person{}
		}
		return render.JSON(w, records)
	case "csv":
		return render.CSV(w, engine.BuildRecordTable("", view.RecordView(), nil))
	default:
		doc := &pages.Document{Title: "Censo simulado"}
		doc.Markdown(fmt.Sprintf("### Resultados: %d registros encontrados", view.Count()))
		doc.Table(engine.BuildRecordTable("", view.RecordView(), nil))
		return render.Text(w, doc)
	}
}
