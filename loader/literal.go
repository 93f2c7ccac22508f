package loader

import (
	"fmt"
	"math"
	"sort"

	"github.com/tobgu/qframe"
	"github.com/tobgu/qframe/config/newqf"
	"github.com/tobgu/qframe/types"
)

// ============================================================================
// LITERAL SOURCES
// ============================================================================
// In-memory structures become tables the way a DataFrame constructor would
// build them:
//
//   records  list of maps, one per row     (keys → columns)
//   rows     list of lists + column names
//   series   named columns of equal length
//   matrix   numeric 2-D array + column names
//
// Column types are inferred from the values: all integers → int, any
// number → float (nil → NaN), all booleans → bool, anything else → string.
// ============================================================================

func loadLiteral(src Source) (Table, error) {
	switch src.Kind {
	case KindRecords:
		return fromRecords(src.Columns, src.Records)
	case KindRows:
		return fromRows(src.Columns, src.Rows)
	case KindSeries:
		return fromSeries(src.Series)
	case KindMatrix:
		return fromMatrix(src.Columns, src.Matrix)
	}
	return Table{}, fmt.Errorf("%q is not a literal source", src.Kind)
}

func fromRecords(columns []string, records []map[string]any) (Table, error) {
	if len(columns) == 0 {
		seen := make(map[string]bool)
		for _, rec := range records {
			for k := range rec {
				if !seen[k] {
					seen[k] = true
					columns = append(columns, k)
				}
			}
		}
		sort.Strings(columns)
	}

	series := make([]Column, len(columns))
	for j, name := range columns {
		values := make([]any, len(records))
		for i, rec := range records {
			values[i] = rec[name]
		}
		series[j] = Column{Name: name, Values: values}
	}
	return fromSeries(series)
}

func fromRows(columns []string, rows [][]any) (Table, error) {
	series := make([]Column, len(columns))
	for j, name := range columns {
		series[j] = Column{Name: name, Values: make([]any, len(rows))}
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return Table{}, fmt.Errorf("row %d has %d values, want %d", i, len(row), len(columns))
		}
		for j, v := range row {
			series[j].Values[i] = v
		}
	}
	return fromSeries(series)
}

func fromMatrix(columns []string, matrix [][]float64) (Table, error) {
	rows := make([][]any, len(matrix))
	for i, line := range matrix {
		rows[i] = make([]any, len(line))
		for j, v := range line {
			if v == math.Trunc(v) && !math.IsInf(v, 0) {
				rows[i][j] = int(v)
			} else {
				rows[i][j] = v
			}
		}
	}
	return fromRows(columns, rows)
}

func fromSeries(series []Column) (Table, error) {
	data := make(map[string]types.DataSlice, len(series))
	order := make([]string, 0, len(series))
	n := -1
	for _, col := range series {
		if _, dup := data[col.Name]; dup {
			return Table{}, fmt.Errorf("duplicate column %q", col.Name)
		}
		if n >= 0 && len(col.Values) != n {
			return Table{}, fmt.Errorf("column %q has %d values, want %d", col.Name, len(col.Values), n)
		}
		n = len(col.Values)
		data[col.Name] = inferSlice(col.Values)
		order = append(order, col.Name)
	}
	return NewTable(qframe.New(data, newqf.ColumnOrder(order...)))
}

// inferSlice converts values to the narrowest qframe column type.
func inferSlice(values []any) types.DataSlice {
	allInt, allNum, allBool := true, true, true
	nulls := 0
	for _, v := range values {
		switch v.(type) {
		case nil:
			nulls++
			allInt, allBool = false, false
		case int, int8, int16, int32, int64, uint8, uint16, uint32:
			allBool = false
		case float32, float64:
			allInt, allBool = false, false
		case bool:
			allInt, allNum = false, false
		default:
			allInt, allNum, allBool = false, false, false
		}
	}
	if nulls == len(values) {
		allNum = false
	}

	switch {
	case allInt:
		out := make([]int, len(values))
		for i, v := range values {
			out[i] = int(toFloat(v))
		}
		return out
	case allNum:
		out := make([]float64, len(values))
		for i, v := range values {
			out[i] = toFloat(v)
		}
		return out
	case allBool && len(values) > 0:
		out := make([]bool, len(values))
		for i, v := range values {
			out[i] = v.(bool)
		}
		return out
	default:
		out := make([]*string, len(values))
		for i, v := range values {
			if v != nil {
				s := fmt.Sprint(v)
				out[i] = &s
			}
		}
		return out
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return math.NaN()
}
