package schema

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/lcap17/proyect-viernes/engine"
)

// ============================================================================
// AUTO-DISCOVERY — Heuristic Classification
// ============================================================================
// Inspects a RecordView and generates a schema.Config automatically.
//
// Classification pipeline per column:
//   1. Sample values → detect type (numeric, date, bool, string)
//   2. Type + cardinality → classify role (dimension, measure, skip)
//   3. Pattern matching → detect temporal columns (dates, years, months)
// ============================================================================

// DiscoverOptions controls discovery behavior.
type DiscoverOptions struct {
	SampleSize     int      // Max rows to inspect (0 = all). Default: 1000
	RecoverColumns []string // Force-include columns that were auto-skipped
	Name           string   // Dataset name
}

// DefaultDiscoverOptions returns sensible defaults.
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{
		SampleSize: 1000,
	}
}

// Discover generates a Config by inspecting the rows of view.
func Discover(view engine.RecordView, opts ...DiscoverOptions) (*Config, error) {
	opt := DefaultDiscoverOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	columns := engine.ColumnsOf(view)
	if len(columns) == 0 {
		return nil, fmt.Errorf("table has no columns")
	}

	n := view.Len()
	if opt.SampleSize > 0 && n > opt.SampleSize {
		n = opt.SampleSize
	}

	recoverSet := make(map[string]bool)
	for _, col := range opt.RecoverColumns {
		recoverSet[strings.ToLower(col)] = true
	}

	cfg := &Config{Name: opt.Name, Rows: view.Len()}
	if cfg.Name == "" {
		cfg.Name = "Tabla"
	}

	for _, key := range columns {
		col := analyzeColumn(view, key, n)

		switch col.role {
		case roleDimension:
			cfg.Dimensions = append(cfg.Dimensions, col.toDimension())
		case roleMeasure:
			cfg.Measures = append(cfg.Measures, col.toMeasure())
		case roleSkipped:
			if recoverSet[strings.ToLower(key)] {
				cfg.Dimensions = append(cfg.Dimensions, col.toDimension())
				continue
			}
			cfg.SkippedColumns = append(cfg.SkippedColumns, SkippedColumn{
				Column:      key,
				Reason:      col.skipReason,
				Recoverable: col.recoverable,
			})
		}
	}

	return cfg, nil
}

// ============================================================================
// COLUMN ANALYSIS
// ============================================================================

type columnRole int

const (
	roleDimension columnRole = iota
	roleMeasure
	roleSkipped
)

type columnType int

const (
	typeString columnType = iota
	typeNumeric
	typeDate
	typeBool
)

type columnAnalysis struct {
	key         string
	colType     columnType
	role        columnRole
	skipReason  string
	recoverable bool

	// Stats
	uniqueCount int
	totalCount  int
	nullCount   int
	sampleVals  []string

	isTemporal      bool
	temporalFormat  string
	hasDecimals     bool
	cardinalityHint string
}

// analyzeColumn inspects the first n values of a column and classifies it.
func analyzeColumn(view engine.RecordView, key string, n int) columnAnalysis {
	col := columnAnalysis{key: key, totalCount: n}

	numeric := engine.IsMeasure(view, key)
	values := make([]string, 0, n)
	uniqueSet := make(map[string]bool)

	for i := 0; i < n; i++ {
		var val string
		if numeric {
			f := view.Measure(i, key)
			if math.IsNaN(f) {
				col.nullCount++
				continue
			}
			if f != math.Trunc(f) {
				col.hasDecimals = true
			}
			val = engine.FormatValue(f)
		} else {
			val = strings.TrimSpace(view.Dimension(i, key))
			if isNull(val) {
				col.nullCount++
				continue
			}
		}
		values = append(values, val)
		uniqueSet[val] = true
	}

	col.uniqueCount = len(uniqueSet)

	if len(values) == 0 {
		col.role = roleSkipped
		col.skipReason = "All values are empty/null"
		return col
	}

	col.sampleVals = collectSamples(uniqueSet, 10)

	// Step 1: Detect type
	if numeric {
		col.colType = typeNumeric
	} else {
		col.colType = detectType(values)
	}

	// Step 2: Detect temporal patterns before role classification
	switch col.colType {
	case typeDate:
		col.isTemporal = true
		col.temporalFormat = "date"
	case typeString:
		col.isTemporal, col.temporalFormat = detectTemporalPattern(col.sampleVals)
	case typeNumeric:
		if !col.hasDecimals {
			col.isTemporal, col.temporalFormat = detectTemporalPattern(col.sampleVals)
		}
	}

	// Step 3: Classify role based on type + cardinality
	col.classifyRole()

	// Step 4: Set cardinality hint
	switch {
	case col.uniqueCount <= 10:
		col.cardinalityHint = "low"
	case col.uniqueCount <= 100:
		col.cardinalityHint = "medium"
	default:
		col.cardinalityHint = "high"
	}

	return col
}

func isNull(v string) bool {
	switch v {
	case "", "null", "NULL", "N/A", "n/a", "NaN", "nan", "None":
		return true
	}
	return false
}

// classifyRole determines dimension vs measure vs skip.
func (col *columnAnalysis) classifyRole() {
	totalRows := col.totalCount

	switch col.colType {
	case typeNumeric:
		if col.isTemporal {
			// Years are grouped on, not summed
			col.role = roleDimension
			return
		}
		if col.hasDecimals {
			col.role = roleMeasure
			return
		}
		// Few distinct integer codes relative to row count → coded dimension
		uniqueRatio := float64(col.uniqueCount) / float64(totalRows)
		if col.uniqueCount < 20 && uniqueRatio < 0.3 {
			col.role = roleDimension
			return
		}
		col.role = roleMeasure

	case typeDate, typeBool:
		col.role = roleDimension

	case typeString:
		if col.uniqueCount == totalRows && totalRows > 10 {
			col.role = roleSkipped
			col.skipReason = "Unique per row, likely an identifier"
			col.recoverable = true
			return
		}
		if col.uniqueCount > totalRows/2 && col.uniqueCount > 50 {
			col.role = roleSkipped
			col.skipReason = fmt.Sprintf("High cardinality (%d unique values), too many to group by", col.uniqueCount)
			col.recoverable = true
			return
		}
		col.role = roleDimension
	}
}

// ============================================================================
// TYPE DETECTION
// ============================================================================

// detectType inspects text values. 80%+ of non-null values must match for
// date/bool/numeric.
func detectType(values []string) columnType {
	if len(values) == 0 {
		return typeString
	}

	numCount, dateCount, boolCount := 0, 0, 0
	for _, v := range values {
		if isNumeric(v) {
			numCount++
		}
		if IsDate(v) {
			dateCount++
		}
		if isBool(v) {
			boolCount++
		}
	}

	threshold := int(float64(len(values)) * 0.8)
	if threshold == 0 {
		threshold = 1
	}

	switch {
	case boolCount >= threshold:
		return typeBool
	case dateCount >= threshold:
		return typeDate
	case numCount >= threshold:
		return typeNumeric
	}
	return typeString
}

func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// DateLayouts are the layouts ParseDate accepts, tried in order.
// Day-first layouts come before month-first ones, as Colombian data is
// written day first.
var DateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006",
	"02/01/2006 15:04:05",
	"02/01/2006 03:04:05 PM",
	"2/1/2006",
	"01/02/2006",
	"2006/01/02",
	"02-01-2006",
}

// ParseDate parses s with the first matching layout in DateLayouts and
// truncates it to the day.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// IsDate reports whether ParseDate accepts s.
func IsDate(s string) bool {
	_, ok := ParseDate(s)
	return ok
}

func isBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "false" || s == "sí" || s == "si" || s == "no"
}

var temporalPatterns = []struct {
	re     *regexp.Regexp
	format string
}{
	{regexp.MustCompile(`^[A-Z][a-z]{2}-\d{4}$`), "MMM-yyyy"}, // Jan-2026
	{regexp.MustCompile(`^\d{4}-\d{2}$`), "yyyy-MM"},          // 2026-01
	{regexp.MustCompile(`^Q[1-4]-\d{4}$`), "QN-yyyy"},         // Q1-2026
	{regexp.MustCompile(`^(1[89]|20)\d{2}$`), "yyyy"},         // 2026
}

// detectTemporalPattern checks if values match known year/month/quarter patterns.
func detectTemporalPattern(samples []string) (bool, string) {
	if len(samples) == 0 {
		return false, ""
	}

	for _, pattern := range temporalPatterns {
		matches := 0
		for _, s := range samples {
			if pattern.re.MatchString(strings.TrimSpace(s)) {
				matches++
			}
		}
		if float64(matches)/float64(len(samples)) >= 0.8 {
			return true, pattern.format
		}
	}
	return false, ""
}

// ============================================================================
// CONVERSION HELPERS
// ============================================================================

func (col *columnAnalysis) toDimension() DimensionMeta {
	return DimensionMeta{
		Key:             col.key,
		DisplayName:     toDisplayName(col.key),
		SampleValues:    col.sampleVals,
		Groupable:       true,
		Filterable:      true,
		IsTemporal:      col.isTemporal,
		TemporalFormat:  col.temporalFormat,
		CardinalityHint: col.cardinalityHint,
		NullCount:       col.nullCount,
	}
}

func (col *columnAnalysis) toMeasure() MeasureMeta {
	return MeasureMeta{
		Key:                col.key,
		DisplayName:        toDisplayName(col.key),
		Aggregations:       []string{"sum", "avg", "min", "max", "count"},
		DefaultAggregation: "sum",
		NullCount:          col.nullCount,
	}
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// toDisplayName cleans a header for human display.
// "ingreso_mensual" → "Ingreso Mensual", "FECHA HECHO" stays as is.
func toDisplayName(s string) string {
	if strings.Contains(s, " ") {
		return strings.TrimSpace(s)
	}

	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")

	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 && !isAllUpper(w) {
			words[i] = string(unicode.ToUpper(r[0])) + strings.ToLower(string(r[1:]))
		}
	}
	return strings.Join(words, " ")
}

func isAllUpper(s string) bool {
	return s == strings.ToUpper(s)
}

// collectSamples picks up to maxSamples values, sorted for deterministic output.
func collectSamples(uniqueSet map[string]bool, maxSamples int) []string {
	samples := make([]string, 0, len(uniqueSet))
	for v := range uniqueSet {
		samples = append(samples, v)
	}
	sort.Strings(samples)

	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return samples
}
