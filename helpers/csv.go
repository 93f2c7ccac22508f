package helpers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lcap17/proyect-viernes/engine"
)

// ============================================================================
// CSV HELPER — Header preprocessing and result export
// ============================================================================
// Inbound: input files sometimes carry padded or mixed-case headers. The
// header row is rewritten before the file reaches the frame reader.
// Outbound: engine results are written as spreadsheet-ready CSV.
// ============================================================================

// StripUpper trims and upper-cases a header, " Departamento " → "DEPARTAMENTO".
func StripUpper(h string) string {
	return strings.ToUpper(strings.TrimSpace(h))
}

// RewriteHeader returns a copy of the CSV in data with fn applied to every
// header cell. Body rows are copied through unchanged.
func RewriteHeader(data []byte, fn func(string) string) ([]byte, error) {
	if fn == nil {
		return data, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	for i, h := range header {
		header[i] = fn(strings.TrimPrefix(h, "\ufeff"))
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ============================================================================
// CSV OUTPUT
// ============================================================================

// WriteResultCSV writes a Result as CSV: chart data first, then table data,
// then metrics, then the caption as a single row.
func WriteResultCSV(w io.Writer, result *engine.Result) error {
	cw := csv.NewWriter(w)

	switch {
	case result == nil:
		_ = cw.Write([]string{"Resultado", "Sin datos"})
	case result.ChartConfig != nil && len(result.ChartConfig.Series) > 0:
		writeChart(cw, result.ChartConfig)
	case result.TableData != nil:
		writeTable(cw, result.TableData)
	case len(result.Metrics) > 0:
		_ = cw.Write([]string{"Indicador", "Valor"})
		for _, m := range result.Metrics {
			_ = cw.Write([]string{m.Label, m.Value})
		}
	default:
		_ = cw.Write([]string{"Resumen"})
		_ = cw.Write([]string{result.Caption})
	}

	cw.Flush()
	return cw.Error()
}

// WriteTableCSV writes a table's header and rows as CSV.
func WriteTableCSV(w io.Writer, td *engine.TableData) error {
	cw := csv.NewWriter(w)
	writeTable(cw, td)
	cw.Flush()
	return cw.Error()
}

func writeTable(cw *csv.Writer, td *engine.TableData) {
	if td == nil {
		return
	}
	headers := make([]string, len(td.Columns))
	for i, c := range td.Columns {
		headers[i] = c.Label
	}
	_ = cw.Write(headers)
	for _, row := range td.Rows {
		_ = cw.Write(row)
	}
}

func writeChart(cw *csv.Writer, chart *engine.ChartConfig) {
	xLabel := chart.XAxis
	yLabel := chart.YAxis
	if xLabel == "" {
		xLabel = "Etiqueta"
	}
	if yLabel == "" {
		yLabel = "Valor"
	}

	// Single series → two columns
	if len(chart.Series) == 1 {
		_ = cw.Write([]string{xLabel, yLabel})
		for _, d := range chart.Series[0].Data {
			_ = cw.Write([]string{d.Label, engine.FormatValue(d.Value)})
		}
		return
	}

	// Multi-series → label + one column per series
	headers := []string{xLabel}
	for _, s := range chart.Series {
		headers = append(headers, s.Name)
	}
	_ = cw.Write(headers)

	for i, d := range chart.Series[0].Data {
		row := []string{d.Label}
		for _, s := range chart.Series {
			if i < len(s.Data) {
				row = append(row, engine.FormatValue(s.Data[i].Value))
			} else {
				row = append(row, "")
			}
		}
		_ = cw.Write(row)
	}
}
