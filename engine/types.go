package engine

// ============================================================================
// ENGINE TYPES — Tabular analytics behind every dashboard panel
// ============================================================================
// Record is a generic row (string dimensions, numeric measures).
// Query describes one panel: which rows, how to group, how to show them.
// Result is the render-ready output consumed by the HTML/text renderers.
//
// Dependency: engine has ZERO external dependencies.
// ============================================================================

// ============================================================================
// RECORD — Generic data row
// ============================================================================

// Record is a single data row with string dimensions and numeric measures.
type Record struct {
	Dimensions map[string]string  `json:"dimensions"`
	Measures   map[string]float64 `json:"measures"`
}

// ============================================================================
// QUERY — What a panel should compute
// ============================================================================

// Query defines what the engine should compute for one panel.
// Pages build these directly from their control values.
type Query struct {
	Intent      string            `json:"intent"`           // "table", "chart", "metrics"
	Filters     Filters           `json:"filters"`          // Which records to include
	Aggregation string            `json:"aggregation"`      // "sum", "count", "avg", "max", "min", "list", "none"
	Measure     string            `json:"measure"`          // Which measure to aggregate (empty → default)
	GroupBy     []string          `json:"groupBy"`          // Dimension keys: ["AÑO"], ["region", "sector"]
	SortBy      string            `json:"sortBy"`           // "value_desc", "value_asc", "label_asc", "label_desc", "numeric_asc"
	Limit       int               `json:"limit"`            // 0 = all
	Visualize   string            `json:"visualize"`        // "bar", "line", "pie", "table"
	Title       string            `json:"title"`            // Chart/table title
	Caption     string            `json:"caption"`          // Template: "{count} registros encontrados"
	Labels      map[string]string `json:"labels,omitempty"` // Display overrides keyed by column or "value"
	Metrics     []MetricSpec      `json:"metrics,omitempty"` // KPI tiles for intent "metrics"
}

// Filters define which records to include.
// Dimensions: OR within a dimension, AND across dimensions.
// Ranges: inclusive numeric bounds on a measure, AND-ed with everything else.
//
// By default an empty value list means "no restriction". With Strict set, a
// dimension that is present with an empty list matches nothing, which is how
// a multi-select with everything deselected behaves.
type Filters struct {
	Dimensions map[string][]string `json:"dimensions,omitempty"`
	Ranges     map[string]Range    `json:"ranges,omitempty"`
	Strict     bool                `json:"strict,omitempty"`
}

// Range is an inclusive numeric interval. A nil bound is open.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Between returns the closed interval [min, max], swapping reversed bounds.
func Between(min, max float64) Range {
	if min > max {
		min, max = max, min
	}
	return Range{Min: &min, Max: &max}
}

// AtLeast returns the interval [min, +inf).
func AtLeast(min float64) Range {
	return Range{Min: &min}
}

// Contains reports whether v lies inside the range. NaN is never contained.
func (r Range) Contains(v float64) bool {
	if v != v {
		return false
	}
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// HasFilter returns true if a specific dimension filter is set.
func (f Filters) HasFilter(dimension string) bool {
	if f.Dimensions == nil {
		return false
	}
	vals, ok := f.Dimensions[dimension]
	if f.Strict {
		return ok
	}
	return ok && len(vals) > 0
}

// IsEmpty returns true if no filters are set.
func (f Filters) IsEmpty() bool {
	if len(f.Ranges) > 0 {
		return false
	}
	for _, vals := range f.Dimensions {
		if len(vals) > 0 || f.Strict {
			return false
		}
	}
	return true
}

// ============================================================================
// RESULT — Render-ready output
// ============================================================================

// Result is the engine's render-ready output.
type Result struct {
	Success bool   `json:"success"`
	Type    string `json:"type"` // "chart", "table", "metrics"
	Title   string `json:"title"`
	Caption string `json:"caption"`
	Count   int    `json:"count"`

	// Exactly one of these is populated based on Type:
	ChartConfig *ChartConfig `json:"chartConfig,omitempty"`
	TableData   *TableData   `json:"tableData,omitempty"`
	Metrics     []Metric     `json:"metrics,omitempty"`

	Errors []string `json:"errors,omitempty"`
}

// ============================================================================
// GROUP — Intermediate computation result
// ============================================================================

// Group represents a grouped/aggregated result.
// Builders convert these into ChartConfig or TableData.
type Group struct {
	Key       string     `json:"key"`
	Label     string     `json:"label"`
	Value     float64    `json:"value"`
	Count     int        `json:"count"`
	SubGroups []Group    `json:"subGroups,omitempty"`
	View      RecordView `json:"-"` // Sub-view for records in this group (zero-copy)
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "center", "right"
}

// Summary provides totals or aggregations for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// Len returns the number of body rows.
func (t *TableData) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ============================================================================
// METRIC TYPES
// ============================================================================

// Metric is a single KPI tile ("Total de Casos: 1,234").
type Metric struct {
	Label    string  `json:"label"`
	Value    string  `json:"value"`
	RawValue float64 `json:"rawValue"`
	Period   string  `json:"period,omitempty"`
}

// MetricSpec describes how to compute one Metric from a view.
type MetricSpec struct {
	Label string `json:"label"`
	Kind  string `json:"kind"` // "sum", "avg", "max", "min", "count", "distinct"
	Key   string `json:"key"`  // measure key for numeric kinds, dimension key for "distinct"
	// PeriodKey names a dimension whose first and last values caption the tile.
	PeriodKey string `json:"periodKey,omitempty"`
}

// TextData is one aggregated value over a view.
type TextData struct {
	Label    string  `json:"label"`
	Value    string  `json:"value"`
	RawValue float64 `json:"rawValue"`
	Count    int     `json:"count"`
	Period   string  `json:"period,omitempty"`
}
