package engine

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// ============================================================================
// EXECUTOR — Dispatcher + Placeholder Resolution
// ============================================================================
// Entry point: Execute(query, view, opts...)
//
// Pipeline:
//   1. Apply filters from Query → SubView
//   2. Group and aggregate
//   3. Dispatch to builder (chart / table / metrics)
//   4. Resolve caption placeholders
//   5. Return Result
//
// The engine reads page data through RecordView.
// An empty view is not an error: pages still show an empty table.
// ============================================================================

// Execute runs a Query against a RecordView and returns a render-ready Result.
func Execute(q Query, view RecordView, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)
	q = NormalizeQuery(q)

	switch q.Intent {
	case "chart", "table", "metrics":
	default:
		return nil, fmt.Errorf("unknown intent %q", q.Intent)
	}

	measure := q.Measure
	if measure == "" {
		measure = cfg.DefaultMeasure
	}

	// 1. Apply filters → SubView (zero-copy)
	filtered := ApplyFilters(view, q.Filters)

	cfg.Logger.Debug("executing query",
		slog.String("intent", q.Intent),
		slog.String("aggregation", q.Aggregation),
		slog.String("measure", measure),
		slog.Int("records", view.Len()),
		slog.Int("filtered", filtered.Len()),
	)

	// 2. Group and aggregate
	var groups []Group
	if q.Intent == "chart" || (q.Intent == "table" && q.Aggregation != "list" && q.Aggregation != "none") {
		groups = GroupAndAggregate(filtered, q.GroupBy, measure, q.Aggregation, q.SortBy, q.Limit)
	}

	// 3. Dispatch to builder
	result := &Result{
		Success: true,
		Type:    q.Intent,
		Title:   q.Title,
		Count:   filtered.Len(),
	}

	switch q.Intent {
	case "chart":
		result.ChartConfig = BuildChart(q, groups)
	case "table":
		result.TableData = BuildTable(q, groups, filtered, measure)
	case "metrics":
		result.Metrics = BuildMetrics(q.Metrics, filtered)
	}

	// 4. Resolve caption placeholders
	result.Caption = ResolvePlaceholders(q.Caption, groups, filtered, measure, cfg.Unit)

	return result, nil
}

// ============================================================================
// PLACEHOLDER RESOLUTION
// ============================================================================

// ResolvePlaceholders substitutes computed values into a caption template.
// An empty template resolves to an empty caption.
func ResolvePlaceholders(template string, groups []Group, view RecordView, measure string, unit string) string {
	if template == "" {
		return ""
	}

	count := view.Len()
	replacements := map[string]string{
		"{count}": fmt.Sprintf("%d", count),
	}

	if measure != "" && count > 0 {
		replacements["{total}"] = formatAmount(SumMeasure(view, measure), unit)
		replacements["{avg}"] = formatAmount(AvgMeasure(view, measure), unit)
		replacements["{max}"] = formatAmount(MaxMeasure(view, measure), unit)
		replacements["{min}"] = formatAmount(MinMeasure(view, measure), unit)
	}

	// Top group (highest value)
	if len(groups) > 0 {
		top := groups[0]
		for _, g := range groups[1:] {
			if g.Value > top.Value {
				top = g
			}
		}
		replacements["{top_label}"] = top.Label
	}

	result := template
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	// Safety net: strip unresolved placeholders
	return stripUnresolvedPlaceholders(result)
}

func formatAmount(v float64, unit string) string {
	if v == float64(int64(v)) {
		s := FormatInt(int(v))
		if unit != "" {
			return unit + " " + s
		}
		return s
	}
	return FormatNumber(v, unit)
}

// ============================================================================
// QUERY NORMALIZATION
// ============================================================================

// NormalizeQuery applies deterministic rules to fix inconsistent queries.
func NormalizeQuery(q Query) Query {
	// Rule 0: infer a missing intent
	if q.Intent == "" {
		switch {
		case len(q.Metrics) > 0:
			q.Intent = "metrics"
		case q.Visualize != "" && q.Visualize != "table":
			q.Intent = "chart"
		default:
			q.Intent = "table"
		}
	}

	// Rule 1: "list" aggregation must be a table
	if q.Aggregation == "list" && q.Intent == "chart" {
		q.Intent = "table"
		q.Visualize = "table"
	}

	// Rule 2: charts without an aggregation count rows
	if q.Intent == "chart" && (q.Aggregation == "" || q.Aggregation == "none") {
		q.Aggregation = "count"
	}

	// Rule 3: a table with grouping but no aggregation counts rows
	if q.Intent == "table" && q.Aggregation == "" && len(q.GroupBy) > 0 {
		q.Aggregation = "count"
	}
	return q
}

var placeholderRegex = regexp.MustCompile(`\{[a-z_]+\}`)

func stripUnresolvedPlaceholders(text string) string {
	if !placeholderRegex.MatchString(text) {
		return text
	}
	cleaned := placeholderRegex.ReplaceAllString(text, "")
	cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimRight(cleaned, " .—-–:")
	if cleaned == "" {
		return text
	}
	return cleaned
}
