package engine

import "sort"

// ============================================================================
// CHART BUILDER — Produces ChartConfig from Query + Groups
// ============================================================================
// Axis titles come from Query.Labels when present, so a page can show
// "Cantidad" instead of "Total" without touching the aggregation.
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// BuildChart produces a ChartConfig from a Query and aggregated groups.
func BuildChart(q Query, groups []Group) *ChartConfig {
	if len(groups) == 0 {
		return nil
	}

	chartType := q.Visualize
	if chartType == "" || chartType == "table" {
		chartType = "bar"
	}

	cfg := &ChartConfig{
		ChartType:  chartType,
		Title:      q.Title,
		ShowLegend: chartType == "pie" || len(q.GroupBy) >= 2,
		ShowGrid:   chartType != "pie",
	}

	if len(q.GroupBy) > 0 {
		cfg.XAxis = labelFor(q, q.GroupBy[0], LabelForDimension(q.GroupBy[0]))
	}
	cfg.YAxis = labelFor(q, "value", LabelForAggregation(q.Aggregation))

	if len(q.GroupBy) >= 2 && hasSubGroups(groups) {
		cfg.Series = buildMultiSeries(groups)
	} else {
		cfg.Series = buildSingleSeries(groups, cfg.YAxis)
	}

	cfg.Colors = assignColors(len(cfg.Series))
	return cfg
}

// labelFor returns the display override for key, or fallback.
func labelFor(q Query, key, fallback string) string {
	if l, ok := q.Labels[key]; ok && l != "" {
		return l
	}
	return fallback
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

func buildSingleSeries(groups []Group, seriesName string) []ChartSeries {
	if seriesName == "" {
		seriesName = "Valor"
	}

	points := make([]ChartPoint, 0, len(groups))
	for _, g := range groups {
		points = append(points, ChartPoint{
			Label: g.Label,
			Value: RoundTo2(g.Value),
		})
	}

	return []ChartSeries{{
		Name:  seriesName,
		Data:  points,
		Color: defaultColors[0],
	}}
}

// buildMultiSeries creates one series per secondary key. Keys are sorted so
// the series order is stable between renders.
func buildMultiSeries(groups []Group) []ChartSeries {
	subKeySet := make(map[string]bool)
	for _, g := range groups {
		for _, sg := range g.SubGroups {
			subKeySet[sg.Key] = true
		}
	}

	subKeys := make([]string, 0, len(subKeySet))
	for k := range subKeySet {
		subKeys = append(subKeys, k)
	}
	sort.Strings(subKeys)

	series := make([]ChartSeries, 0, len(subKeys))
	for i, key := range subKeys {
		points := make([]ChartPoint, 0, len(groups))
		for _, g := range groups {
			var v float64
			for _, sg := range g.SubGroups {
				if sg.Key == key {
					v = sg.Value
					break
				}
			}
			points = append(points, ChartPoint{Label: g.Label, Value: RoundTo2(v)})
		}
		series = append(series, ChartSeries{
			Name:  key,
			Data:  points,
			Color: defaultColors[i%len(defaultColors)],
		})
	}
	return series
}

func hasSubGroups(groups []Group) bool {
	for _, g := range groups {
		if len(g.SubGroups) > 0 {
			return true
		}
	}
	return false
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
