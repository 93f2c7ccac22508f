package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lcap17/proyect-viernes/pages"
	"github.com/lcap17/proyect-viernes/render"
)

func newRenderCommand() *cobra.Command {
	var (
		sets   []string
		format string
	)

	cmd := &cobra.Command{
		Use:   "render <page>",
		Short: "Render one page to stdout",
		Long: `Render one page with the given control values and write it as terminal
text, JSON or a standalone HTML document.`,
		Example: `  tablero render peliculas --set fila=4
  tablero render filtros --set edad=on --set edad_min=30 --format json`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, ok := pages.Lookup(args[0])
			if !ok {
				return usageError("unknown page %q (see tablero pages)", args[0])
			}

			controls, err := parseSets(sets)
			if err != nil {
				return err
			}

			formatter, err := render.NewFormatter(format)
			if err != nil {
				return usageError("%w", err)
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			doc, err := page.Render(cmd.Context(), a.env, controls)
			if err != nil {
				return fmt.Errorf("render %s: %w", page.Slug, err)
			}

			return formatter.Format(cmd.OutOrStdout(), doc)
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&sets, "set", nil, "control value as key=value (repeatable)")
	f.StringVarP(&format, "format", "o", "text", "output format: "+strings.Join(render.Formats, ", "))

	return cmd
}

// parseSets turns repeated key=value flags into control values. A key may
// repeat, as multiselects do.
func parseSets(sets []string) (pages.Controls, error) {
	controls := pages.Controls{}
	for _, s := range sets {
		key, value, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, usageError("invalid --set %q: expected key=value", s)
		}
		controls.Add(key, value)
	}
	return controls, nil
}
