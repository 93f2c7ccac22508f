package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ============================================================================
// AGGREGATORS — Grouping, Aggregation, and Sorting via RecordView
// ============================================================================
// All functions operate on RecordView and never copy the data.
// Grouping produces SubViews (index lists into parent view).
// Missing measure values are NaN and are skipped, like a dataframe would.
// ============================================================================

// GroupAndAggregate is the main entry point for the aggregation pipeline.
// Pipeline: group → aggregate → sort → limit.
func GroupAndAggregate(
	view RecordView,
	groupBy []string,
	measure string,
	aggregation string,
	sortBy string,
	limit int,
) []Group {
	if view.Len() == 0 {
		return nil
	}

	// 1. Group
	var groups []Group
	if len(groupBy) == 0 {
		groups = []Group{{
			Key:   "all",
			Label: "Total",
			View:  view,
		}}
	} else if len(groupBy) == 1 {
		groups = groupBySingle(view, groupBy[0])
	} else {
		groups = groupByMulti(view, groupBy)
	}

	// 2. Aggregate
	for i := range groups {
		aggregateGroup(&groups[i], measure, aggregation)
		for j := range groups[i].SubGroups {
			aggregateGroup(&groups[i].SubGroups[j], measure, aggregation)
		}
	}

	// 3. Sort
	SortGroups(groups, sortBy)

	// 4. Limit
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}

	return groups
}

// ============================================================================
// GROUPING
// ============================================================================

// groupBySingle buckets rows by one dimension. Rows with an empty key are
// dropped, matching groupby's default of ignoring missing keys.
func groupBySingle(view RecordView, dimension string) []Group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := view.Dimension(i, dimension)
		if key == "" {
			continue
		}
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Key:   key,
			Label: key,
			View:  newSubView(view, grouped[key]),
		})
	}
	return groups
}

func groupByMulti(view RecordView, dimensions []string) []Group {
	if len(dimensions) < 2 {
		return groupBySingle(view, dimensions[0])
	}

	primaryGroups := groupBySingle(view, dimensions[0])
	for i := range primaryGroups {
		primaryGroups[i].SubGroups = groupBySingle(primaryGroups[i].View, dimensions[1])
	}
	return primaryGroups
}

// ============================================================================
// AGGREGATION
// ============================================================================

func aggregateGroup(group *Group, measure string, aggregation string) {
	group.Count = group.View.Len()
	if group.Count == 0 {
		return
	}

	switch aggregation {
	case "sum":
		group.Value = SumMeasure(group.View, measure)
	case "count":
		group.Value = float64(group.Count)
	case "avg":
		group.Value = AvgMeasure(group.View, measure)
	case "max":
		group.Value = MaxMeasure(group.View, measure)
	case "min":
		group.Value = MinMeasure(group.View, measure)
	case "list":
		group.Value = SumMeasure(group.View, measure) // for sorting
	case "none":
		// pass through
	default:
		group.Value = SumMeasure(group.View, measure)
	}
}

// SumMeasure sums a named measure across a view, skipping missing values.
func SumMeasure(view RecordView, measure string) float64 {
	var total float64
	for i := 0; i < view.Len(); i++ {
		if v := view.Measure(i, measure); !math.IsNaN(v) {
			total += v
		}
	}
	return total
}

// CountMeasure counts the non-missing values of a measure.
func CountMeasure(view RecordView, measure string) int {
	n := 0
	for i := 0; i < view.Len(); i++ {
		if !math.IsNaN(view.Measure(i, measure)) {
			n++
		}
	}
	return n
}

// AvgMeasure computes the mean of the non-missing values of a measure.
func AvgMeasure(view RecordView, measure string) float64 {
	n := CountMeasure(view, measure)
	if n == 0 {
		return 0
	}
	return SumMeasure(view, measure) / float64(n)
}

// MaxMeasure returns the largest value of a named measure.
func MaxMeasure(view RecordView, measure string) float64 {
	m := math.Inf(-1)
	found := false
	for i := 0; i < view.Len(); i++ {
		v := view.Measure(i, measure)
		if math.IsNaN(v) {
			continue
		}
		if !found || v > m {
			m = v
			found = true
		}
	}
	if !found {
		return 0
	}
	return m
}

// MinMeasure returns the smallest value of a named measure.
func MinMeasure(view RecordView, measure string) float64 {
	m := math.Inf(1)
	found := false
	for i := 0; i < view.Len(); i++ {
		v := view.Measure(i, measure)
		if math.IsNaN(v) {
			continue
		}
		if !found || v < m {
			m = v
			found = true
		}
	}
	if !found {
		return 0
	}
	return m
}

// ============================================================================
// SORTING
// ============================================================================

// SortGroups sorts aggregate groups by the specified sort mode.
// Sorting is stable so ties keep their grouping order.
func SortGroups(groups []Group, sortBy string) {
	switch sortBy {
	case "value_desc":
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value > groups[j].Value })
	case "value_asc":
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value < groups[j].Value })
	case "label_asc", "alpha_asc":
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	case "label_desc":
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key > groups[j].Key })
	case "numeric_asc", "chronological":
		sort.SliceStable(groups, func(i, j int) bool { return numericKey(groups[i].Key) < numericKey(groups[j].Key) })
	default:
		// preserve grouping order
	}
}

func numericKey(key string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(key), 64)
	if err != nil {
		return math.Inf(1)
	}
	return f
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// FormatNumber formats an amount with comma separators and two decimals,
// prefixed with unit when one is given.
func FormatNumber(amount float64, unit string) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	intPart := int64(amount)
	decPart := int64((amount-float64(intPart))*100 + 0.5)
	if decPart >= 100 {
		intPart++
		decPart -= 100
	}

	result := fmt.Sprintf("%s.%02d", groupThousands(intPart), decPart)
	if unit != "" {
		result = unit + " " + result
	}
	if negative {
		result = "-" + result
	}
	return result
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	return groupThousands(int64(n))
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return strings.Join(parts, ",")
}

// FormatValue renders a cell value: whole numbers without decimals,
// fractional values with two, missing values as an empty cell.
func FormatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 0):
		return strconv.FormatFloat(v, 'f', -1, 64)
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return strconv.FormatInt(int64(v), 10)
	default:
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// UniqueValues returns distinct non-empty values for a dimension, in order
// of first appearance.
func UniqueValues(view RecordView, dimension string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := view.Dimension(i, dimension)
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}

// SortedUniqueValues returns UniqueValues sorted numerically when every value
// is a number, lexically otherwise.
func SortedUniqueValues(view RecordView, dimension string) []string {
	vals := UniqueValues(view, dimension)
	numeric := true
	for _, v := range vals {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			numeric = false
			break
		}
	}
	if numeric {
		sort.SliceStable(vals, func(i, j int) bool { return numericKey(vals[i]) < numericKey(vals[j]) })
	} else {
		sort.Strings(vals)
	}
	return vals
}

// LabelForDimension returns a capitalized label for a dimension.
func LabelForDimension(dimension string) string {
	if len(dimension) == 0 {
		return ""
	}
	r := []rune(dimension)
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}

// LabelForAggregation returns a human-readable label for an aggregation type.
func LabelForAggregation(aggregation string) string {
	switch aggregation {
	case "sum":
		return "Total"
	case "count":
		return "Conteo"
	case "avg":
		return "Promedio"
	case "max":
		return "Máximo"
	case "min":
		return "Mínimo"
	default:
		return "Valor"
	}
}
