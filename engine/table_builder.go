package engine

import (
	"fmt"
)

// ============================================================================
// TABLE BUILDER — Produces TableData from Query + Groups
// ============================================================================
// All functions operate on RecordView and never copy the data.
// Column discovery uses ColumnsOf(view) so tables keep the source's order.
// ============================================================================

// BuildTable produces a TableData from a Query, groups, and the filtered view.
// "list" and "none" aggregations show one row per record.
func BuildTable(q Query, groups []Group, view RecordView, measure string) *TableData {
	switch q.Aggregation {
	case "list", "none", "":
		return BuildRecordTable(q.Title, view, nil)
	}
	return buildAggregatedTable(q, groups, measure)
}

// ============================================================================
// RECORD TABLE — Row per record
// ============================================================================

// BuildRecordTable renders every row of view. columns selects and orders the
// columns; nil means all of them. Unknown column names are skipped.
func BuildRecordTable(title string, view RecordView, columns []string) *TableData {
	if columns == nil {
		columns = ColumnsOf(view)
	}

	known := make(map[string]bool)
	for _, k := range ColumnsOf(view) {
		known[k] = true
	}

	cols := make([]Column, 0, len(columns))
	measure := make([]bool, 0, len(columns))
	for _, key := range columns {
		if !known[key] {
			continue
		}
		isM := IsMeasure(view, key)
		col := Column{Key: key, Label: key, Type: "text", Align: "left"}
		if isM {
			col.Type = "number"
			col.Align = "right"
		}
		cols = append(cols, col)
		measure = append(measure, isM)
	}

	rows := make([][]string, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		row := make([]string, len(cols))
		for j, col := range cols {
			if measure[j] {
				row[j] = FormatValue(view.Measure(i, col.Key))
			} else {
				row[j] = view.Dimension(i, col.Key)
			}
		}
		rows = append(rows, row)
	}

	return &TableData{
		Title:   title,
		Columns: cols,
		Rows:    rows,
	}
}

// ============================================================================
// AGGREGATED TABLE — Summary rows
// ============================================================================

func buildAggregatedTable(q Query, groups []Group, measure string) *TableData {
	if len(groups) == 0 {
		return &TableData{
			Title:   q.Title,
			Columns: []Column{},
			Rows:    [][]string{},
		}
	}

	groupLabel := "Grupo"
	if len(q.GroupBy) > 0 {
		groupLabel = labelFor(q, q.GroupBy[0], q.GroupBy[0])
	}
	valueLabel := labelFor(q, "value", LabelForAggregation(q.Aggregation))
	if measure != "" && q.Aggregation != "count" {
		valueLabel = labelFor(q, "value", fmt.Sprintf("%s (%s)", LabelForAggregation(q.Aggregation), measure))
	}

	columns := []Column{
		{Key: "group", Label: groupLabel, Type: "text", Align: "left"},
		{Key: "value", Label: valueLabel, Type: "number", Align: "right"},
		{Key: "count", Label: "Registros", Type: "number", Align: "center"},
	}

	rows := make([][]string, 0, len(groups))
	var totalValue float64
	var totalCount int

	for _, g := range groups {
		rows = append(rows, []string{
			g.Label,
			FormatValue(RoundTo2(g.Value)),
			fmt.Sprintf("%d", g.Count),
		})
		totalValue += g.Value
		totalCount += g.Count
	}

	summary := &Summary{
		Label: "Total",
		Values: map[string]string{
			"count": fmt.Sprintf("%d", totalCount),
		},
	}
	// Averages, maxima and minima do not add up.
	if q.Aggregation == "sum" || q.Aggregation == "count" {
		summary.Values["value"] = FormatValue(RoundTo2(totalValue))
	}

	return &TableData{
		Title:   q.Title,
		Columns: columns,
		Rows:    rows,
		Summary: summary,
	}
}
