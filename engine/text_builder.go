package engine

import (
	"fmt"
	"strconv"
)

// ============================================================================
// TEXT BUILDER — Single aggregated values (KPI tiles)
// ============================================================================
// All functions operate on RecordView and never copy the data.
// ============================================================================

// BuildText aggregates view into the single value described by spec.
// An unknown kind yields an empty Value.
func BuildText(spec MetricSpec, view RecordView) *TextData {
	td := &TextData{
		Label:  spec.Label,
		Count:  view.Len(),
		Period: DerivePeriod(view, spec.PeriodKey),
	}

	var value float64
	switch spec.Kind {
	case "sum":
		value = SumMeasure(view, spec.Key)
	case "count":
		value = float64(view.Len())
	case "avg":
		value = AvgMeasure(view, spec.Key)
	case "max":
		value = MaxMeasure(view, spec.Key)
	case "min":
		value = MinMeasure(view, spec.Key)
	case "distinct":
		value = float64(len(UniqueValues(view, spec.Key)))
	default:
		return td
	}

	td.RawValue = value
	td.Value = formatText(value)
	return td
}

// BuildMetrics evaluates each spec against view, in order, one tile per spec.
func BuildMetrics(specs []MetricSpec, view RecordView) []Metric {
	out := make([]Metric, 0, len(specs))
	for _, s := range specs {
		td := BuildText(s, view)
		out = append(out, Metric{
			Label:    td.Label,
			Value:    td.Value,
			RawValue: td.RawValue,
			Period:   td.Period,
		})
	}
	return out
}

func formatText(v float64) string {
	if v == float64(int64(v)) {
		return FormatInt(int(v))
	}
	return strconv.FormatFloat(RoundTo2(v), 'f', 2, 64)
}

// ============================================================================
// PERIOD HELPER
// ============================================================================

// DerivePeriod spans the values of dimension key in view: "" when key is
// empty or has no values, the value itself when there is one, otherwise
// "first – last" in SortedUniqueValues order.
func DerivePeriod(view RecordView, key string) string {
	if key == "" {
		return ""
	}
	values := SortedUniqueValues(view, key)
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	}
	return fmt.Sprintf("%s – %s", values[0], values[len(values)-1])
}
