package loader

import (
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/tobgu/qframe"
	"github.com/tobgu/qframe/config/newqf"
	"github.com/tobgu/qframe/types"

	"github.com/lcap17/proyect-viernes/engine"
	"github.com/lcap17/proyect-viernes/helpers"
)

// Table is a loaded, immutable table. Every operation returns a new Table,
// so a cached Table can be shared between renders. The zero Table is empty.
type Table struct {
	qf    qframe.QFrame
	valid bool
}

// NewTable wraps qf. A frame carrying an error is returned as that error.
func NewTable(qf qframe.QFrame) (Table, error) {
	if qf.Err != nil {
		return Table{}, qf.Err
	}
	return Table{qf: qf, valid: true}, nil
}

// Frame returns the underlying qframe.
func (t Table) Frame() qframe.QFrame {
	if !t.valid {
		return qframe.New(map[string]types.DataSlice{})
	}
	return t.qf
}

// Empty reports whether the table has no rows or no columns.
func (t Table) Empty() bool {
	return !t.valid || t.qf.Len() == 0 || len(t.qf.ColumnNames()) == 0
}

func (t Table) Len() int {
	if !t.valid {
		return 0
	}
	return t.qf.Len()
}

// Columns returns the column names in order.
func (t Table) Columns() []string {
	if !t.valid {
		return nil
	}
	return t.qf.ColumnNames()
}

// HasColumn reports whether name is a column of the table.
func (t Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns(), name)
}

// ColumnType returns the qframe type of column name, or "" if unknown.
func (t Table) ColumnType(name string) types.DataType {
	if !t.valid {
		return ""
	}
	return t.qf.ColumnTypeMap()[name]
}

// Head returns the first n rows.
func (t Table) Head(n int) Table {
	return t.Slice(0, n)
}

// Tail returns the last n rows.
func (t Table) Tail(n int) Table {
	return t.Slice(t.Len()-n, t.Len())
}

// Slice returns rows [start, end), clamped to the table.
func (t Table) Slice(start, end int) Table {
	if !t.valid {
		return t
	}
	start = max(0, min(start, t.Len()))
	end = max(start, min(end, t.Len()))
	return t.with(t.qf.Slice(start, end))
}

// Select keeps the named columns in the given order. Unknown names are
// ignored; selecting nothing yields a table without columns.
func (t Table) Select(columns ...string) Table {
	if !t.valid {
		return t
	}
	known := make([]string, 0, len(columns))
	for _, c := range columns {
		if t.HasColumn(c) && !slices.Contains(known, c) {
			known = append(known, c)
		}
	}
	if len(known) == 0 {
		return Table{qf: qframe.New(map[string]types.DataSlice{}), valid: true}
	}
	return t.with(t.qf.Select(known...))
}

// Filter keeps the rows matching clause.
func (t Table) Filter(clause qframe.FilterClause) (Table, error) {
	if !t.valid {
		return t, nil
	}
	out := t.qf.Filter(clause)
	if out.Err != nil {
		return Table{}, fmt.Errorf("filter: %w", out.Err)
	}
	return t.with(out), nil
}

// Sort orders the rows.
func (t Table) Sort(orders ...qframe.Order) (Table, error) {
	if !t.valid {
		return t, nil
	}
	out := t.qf.Sort(orders...)
	if out.Err != nil {
		return Table{}, fmt.Errorf("sort: %w", out.Err)
	}
	return t.with(out), nil
}

func (t Table) with(qf qframe.QFrame) Table {
	return Table{qf: qf, valid: true}
}

// View exposes the table to the engine.
func (t Table) View() engine.RecordView {
	if !t.valid {
		return engine.NewSliceView(nil)
	}
	return helpers.ViewOf(t.qf)
}

// WriteCSV writes the table as CSV.
func (t Table) WriteCSV(w io.Writer) error {
	if !t.valid {
		return nil
	}
	return t.qf.ToCSV(w)
}

// WriteJSON writes the table as a JSON array of records.
func (t Table) WriteJSON(w io.Writer) error {
	if !t.valid {
		_, err := io.WriteString(w, "[]")
		return err
	}
	return t.qf.ToJSON(w)
}

// Set returns a copy of the table with the numeric cell at (row, column)
// replaced by value. An int column becomes a float column when value is not
// whole. The receiver is left untouched.
func (t Table) Set(row int, column string, value float64) (Table, error) {
	if !t.valid || row < 0 || row >= t.Len() {
		return Table{}, fmt.Errorf("row %d out of range", row)
	}
	if !t.HasColumn(column) {
		return Table{}, fmt.Errorf("unknown column %q", column)
	}

	data := make(map[string]types.DataSlice, len(t.Columns()))
	for _, col := range t.Columns() {
		values, err := columnData(t.qf, col)
		if err != nil {
			return Table{}, err
		}
		if col == column {
			values, err = setNumber(values, row, value)
			if err != nil {
				return Table{}, fmt.Errorf("column %q: %w", col, err)
			}
		}
		data[col] = values
	}
	return NewTable(qframe.New(data, newqf.ColumnOrder(t.Columns()...)))
}

func setNumber(values types.DataSlice, row int, value float64) (types.DataSlice, error) {
	switch s := values.(type) {
	case []float64:
		s[row] = value
		return s, nil
	case []int:
		if value == math.Trunc(value) {
			s[row] = int(value)
			return s, nil
		}
		f := make([]float64, len(s))
		for i, n := range s {
			f[i] = float64(n)
		}
		f[row] = value
		return f, nil
	default:
		return nil, fmt.Errorf("not numeric")
	}
}

// columnData copies one column out of qf.
func columnData(qf qframe.QFrame, col string) (types.DataSlice, error) {
	switch qf.ColumnTypeMap()[col] {
	case types.Int:
		view, err := qf.IntView(col)
		if err != nil {
			return nil, err
		}
		out := make([]int, view.Len())
		for i := range out {
			out[i] = view.ItemAt(i)
		}
		return out, nil
	case types.Float:
		view, err := qf.FloatView(col)
		if err != nil {
			return nil, err
		}
		out := make([]float64, view.Len())
		for i := range out {
			out[i] = view.ItemAt(i)
		}
		return out, nil
	case types.Bool:
		view, err := qf.BoolView(col)
		if err != nil {
			return nil, err
		}
		out := make([]bool, view.Len())
		for i := range out {
			out[i] = view.ItemAt(i)
		}
		return out, nil
	case types.Enum:
		view, err := qf.EnumView(col)
		if err != nil {
			return nil, err
		}
		out := make([]*string, view.Len())
		for i := range out {
			out[i] = view.ItemAt(i)
		}
		return out, nil
	default:
		view, err := qf.StringView(col)
		if err != nil {
			return nil, err
		}
		out := make([]*string, view.Len())
		for i := range out {
			out[i] = view.ItemAt(i)
		}
		return out, nil
	}
}
