// Package render turns page Documents into HTML, terminal text or JSON.
// Renderers only walk the sections of a Document; they never load or
// compute data.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lcap17/proyect-viernes/engine"
	"github.com/lcap17/proyect-viernes/helpers"
	"github.com/lcap17/proyect-viernes/pages"
)

// Formatter renders a Document to a writer.
type Formatter interface {
	Format(w io.Writer, doc *pages.Document) error
}

// Formats lists the accepted format names.
var Formats = []string{"text", "json", "html"}

// NewFormatter returns a formatter for the given format name.
func NewFormatter(format string) (Formatter, error) {
	switch strings.ToLower(format) {
	case "text", "":
		return textFormatter{}, nil
	case "json":
		return jsonFormatter{}, nil
	case "html":
		return &HTMLFormatter{Nav: Nav("/pages")}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

type textFormatter struct{}

func (textFormatter) Format(w io.Writer, doc *pages.Document) error { return Text(w, doc) }

type jsonFormatter struct{}

func (jsonFormatter) Format(w io.Writer, doc *pages.Document) error { return JSON(w, doc) }

// JSON writes v indented.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// CSV writes a table as CSV.
func CSV(w io.Writer, td *engine.TableData) error {
	return helpers.WriteTableCSV(w, td)
}
