package helpers

import (
	"math"
	"strconv"

	"github.com/tobgu/qframe"
	"github.com/tobgu/qframe/types"

	"github.com/lcap17/proyect-viernes/engine"
)

// ============================================================================
// FRAME VIEW — qframe.QFrame as an engine.RecordView
// ============================================================================
// Loaded tables are qframes. The engine reads them through this adapter
// without copying column data: accessors are resolved once per column and
// read the typed qframe views directly.
//
//   int, float      → measures (float null = NaN)
//   string, enum    → dimensions (null = "")
//   bool            → dimension ("true" / "false")
//
// Every column can be read as a dimension. Numeric columns render the way
// engine.FormatValue does so a year column can be grouped on.
// ============================================================================

// FrameView reads a qframe through the engine.RecordView interface.
type FrameView struct {
	n       int
	cols    []string
	dimKeys []string
	mesKeys []string
	dims    map[string]func(i int) string
	meas    map[string]func(i int) float64
}

// NewFrameView builds a RecordView over qf. It returns an error when qf
// carries one or a column view cannot be created.
func NewFrameView(qf qframe.QFrame) (*FrameView, error) {
	if qf.Err != nil {
		return nil, qf.Err
	}

	v := &FrameView{
		n:    qf.Len(),
		cols: qf.ColumnNames(),
		dims: make(map[string]func(int) string),
		meas: make(map[string]func(int) float64),
	}

	typeMap := qf.ColumnTypeMap()
	for _, col := range v.cols {
		switch typeMap[col] {
		case types.Int:
			view, err := qf.IntView(col)
			if err != nil {
				return nil, err
			}
			v.meas[col] = func(i int) float64 { return float64(view.ItemAt(i)) }
			v.dims[col] = func(i int) string { return strconv.Itoa(view.ItemAt(i)) }
			v.mesKeys = append(v.mesKeys, col)

		case types.Float:
			view, err := qf.FloatView(col)
			if err != nil {
				return nil, err
			}
			v.meas[col] = func(i int) float64 { return view.ItemAt(i) }
			v.dims[col] = func(i int) string { return engine.FormatValue(view.ItemAt(i)) }
			v.mesKeys = append(v.mesKeys, col)

		case types.Bool:
			view, err := qf.BoolView(col)
			if err != nil {
				return nil, err
			}
			v.dims[col] = func(i int) string { return strconv.FormatBool(view.ItemAt(i)) }
			v.dimKeys = append(v.dimKeys, col)

		case types.Enum:
			view, err := qf.EnumView(col)
			if err != nil {
				return nil, err
			}
			v.dims[col] = func(i int) string { return deref(view.ItemAt(i)) }
			v.dimKeys = append(v.dimKeys, col)

		default:
			view, err := qf.StringView(col)
			if err != nil {
				return nil, err
			}
			v.dims[col] = func(i int) string { return deref(view.ItemAt(i)) }
			v.dimKeys = append(v.dimKeys, col)
		}
	}
	return v, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (v *FrameView) Len() int { return v.n }

func (v *FrameView) Dimension(i int, key string) string {
	if i < 0 || i >= v.n {
		return ""
	}
	if fn, ok := v.dims[key]; ok {
		return fn(i)
	}
	return ""
}

// Measure returns NaN for text columns and unknown keys.
func (v *FrameView) Measure(i int, key string) float64 {
	if i < 0 || i >= v.n {
		return math.NaN()
	}
	if fn, ok := v.meas[key]; ok {
		return fn(i)
	}
	return math.NaN()
}

func (v *FrameView) DimensionKeys() []string { return v.dimKeys }
func (v *FrameView) MeasureKeys() []string   { return v.mesKeys }
func (v *FrameView) Columns() []string       { return v.cols }

// ViewOf is NewFrameView for callers that already checked qf.Err; a frame
// that cannot be viewed yields an empty view.
func ViewOf(qf qframe.QFrame) engine.RecordView {
	v, err := NewFrameView(qf)
	if err != nil {
		return engine.NewSliceView(nil)
	}
	return v
}
