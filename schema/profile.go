package schema

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/tobgu/qframe"

	"github.com/lcap17/proyect-viernes/engine"
	"github.com/lcap17/proyect-viernes/helpers"
)

// ============================================================================
// PROFILE — Structure and statistical summaries of a loaded frame
// ============================================================================
// Structure lists every column with its type and non-null count.
// Describe computes per-column statistics: count/unique/top/freq for text
// columns, count/mean/std/min/quartiles/max for numeric ones. Cells that do
// not apply to a column are left empty.
// ============================================================================

// ColumnInfo is one line of a StructureSummary.
type ColumnInfo struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	NonNullCount int    `json:"nonNullCount"`
}

// StructureSummary is the column-by-column structure of a table.
type StructureSummary struct {
	Rows    int          `json:"rows"`
	Columns []ColumnInfo `json:"columns"`
}

// Structure summarizes the columns of qf.
func Structure(qf qframe.QFrame) (*StructureSummary, error) {
	view, err := helpers.NewFrameView(qf)
	if err != nil {
		return nil, err
	}

	types := qf.ColumnTypeMap()
	s := &StructureSummary{Rows: view.Len()}
	for _, col := range view.Columns() {
		s.Columns = append(s.Columns, ColumnInfo{
			Name:         col,
			Type:         string(types[col]),
			NonNullCount: nonNull(view, col),
		})
	}
	return s, nil
}

// Text renders the summary as a fixed-width block.
func (s *StructureSummary) Text() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Tabla: %d filas, %d columnas\n", s.Rows, len(s.Columns))

	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, " #\tColumna\tNo nulos\tTipo")
	fmt.Fprintln(tw, "---\t-------\t--------\t----")
	for i, c := range s.Columns {
		fmt.Fprintf(tw, " %d\t%s\t%d no nulos\t%s\n", i, c.Name, c.NonNullCount, c.Type)
	}
	_ = tw.Flush()

	counts := make(map[string]int)
	for _, c := range s.Columns {
		counts[c.Type]++
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = fmt.Sprintf("%s(%d)", k, counts[k])
	}
	fmt.Fprintf(&buf, "tipos: %s\n", strings.Join(parts, ", "))
	return buf.String()
}

func nonNull(view *helpers.FrameView, col string) int {
	n := 0
	numeric := engine.IsMeasure(view, col)
	for i := 0; i < view.Len(); i++ {
		if numeric {
			if !math.IsNaN(view.Measure(i, col)) {
				n++
			}
		} else if view.Dimension(i, col) != "" {
			n++
		}
	}
	return n
}

// describeRows is the row order of the statistical summary.
var describeRows = []string{"count", "unique", "top", "freq", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Describe computes the statistical summary of every column of qf. The first
// column of the result holds the statistic name.
func Describe(qf qframe.QFrame) (*engine.TableData, error) {
	view, err := helpers.NewFrameView(qf)
	if err != nil {
		return nil, err
	}

	cols := view.Columns()
	cells := make(map[string]map[string]string, len(cols))
	hasText, hasNumeric := false, false
	for _, col := range cols {
		if engine.IsMeasure(view, col) {
			cells[col] = describeNumeric(view, col)
			hasNumeric = true
		} else {
			cells[col] = describeText(view, col)
			hasText = true
		}
	}

	td := &engine.TableData{
		Title:   "Resumen estadístico",
		Columns: []engine.Column{{Key: "", Label: "", Type: "text", Align: "left"}},
	}
	for _, col := range cols {
		td.Columns = append(td.Columns, engine.Column{Key: col, Label: col, Type: "number", Align: "right"})
	}

	for _, stat := range describeRows {
		textStat := stat == "unique" || stat == "top" || stat == "freq"
		if textStat && !hasText {
			continue
		}
		if !textStat && stat != "count" && !hasNumeric {
			continue
		}
		row := []string{stat}
		for _, col := range cols {
			row = append(row, cells[col][stat])
		}
		td.Rows = append(td.Rows, row)
	}
	return td, nil
}

func describeNumeric(view engine.RecordView, col string) map[string]string {
	vals := make([]float64, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		if v := view.Measure(i, col); !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	out := map[string]string{"count": fmt.Sprintf("%d", len(vals))}
	if len(vals) == 0 {
		return out
	}
	sort.Float64s(vals)

	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))

	out["mean"] = formatStat(mean)
	if len(vals) > 1 {
		var ss float64
		for _, v := range vals {
			ss += (v - mean) * (v - mean)
		}
		out["std"] = formatStat(math.Sqrt(ss / float64(len(vals)-1)))
	}
	out["min"] = formatStat(vals[0])
	out["25%"] = formatStat(Quantile(vals, 0.25))
	out["50%"] = formatStat(Quantile(vals, 0.5))
	out["75%"] = formatStat(Quantile(vals, 0.75))
	out["max"] = formatStat(vals[len(vals)-1])
	return out
}

func describeText(view engine.RecordView, col string) map[string]string {
	counts := make(map[string]int)
	var order []string
	total := 0
	for i := 0; i < view.Len(); i++ {
		v := view.Dimension(i, col)
		if v == "" {
			continue
		}
		total++
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	out := map[string]string{
		"count":  fmt.Sprintf("%d", total),
		"unique": fmt.Sprintf("%d", len(counts)),
	}
	if total == 0 {
		return out
	}
	top := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[top] {
			top = v
		}
	}
	out["top"] = top
	out["freq"] = fmt.Sprintf("%d", counts[top])
	return out
}

// Quantile returns the q-quantile of sorted using linear interpolation
// between the closest ranks.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

func formatStat(v float64) string {
	if v == math.Trunc(v) {
		return engine.FormatValue(v)
	}
	return fmt.Sprintf("%.6g", v)
}
