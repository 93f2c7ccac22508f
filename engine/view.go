package engine

import "sort"

// ============================================================================
// RECORD VIEW — Zero-Copy Data Access Interface
// ============================================================================
// The engine never owns page data. It reads through this interface.
//
// Implementations:
//   SliceView      — wraps []Record (literal tables, ad-hoc)
//   DomainView[T]  — reads typed structs via accessor functions (zero-copy)
//   SubView        — filtered subset (indices into parent, zero-copy)
//   DerivedView    — wraps any view, computes extra dimensions on read
//
// Loaded data frames are bridged in helpers.FrameView.
// ============================================================================

// RecordView provides indexed access to a dataset.
// The engine calls Dimension/Measure in tight loops; implementations must stay cheap.
type RecordView interface {
	Len() int
	Dimension(index int, key string) string
	Measure(index int, key string) float64
	DimensionKeys() []string // available dimension keys
	MeasureKeys() []string   // available measure keys
}

// Columnar is implemented by views that know their original column order.
type Columnar interface {
	Columns() []string
}

// ColumnsOf returns the display order of a view's columns: the view's own
// order when it has one, otherwise dimensions followed by measures.
func ColumnsOf(view RecordView) []string {
	if c, ok := view.(Columnar); ok {
		return c.Columns()
	}
	cols := make([]string, 0, len(view.DimensionKeys())+len(view.MeasureKeys()))
	cols = append(cols, view.DimensionKeys()...)
	return append(cols, view.MeasureKeys()...)
}

// IsMeasure reports whether key is one of the view's measure keys.
func IsMeasure(view RecordView, key string) bool {
	for _, k := range view.MeasureKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// ============================================================================
// SLICE VIEW — wraps []Record
// ============================================================================

// SliceView wraps a []Record slice as a RecordView.
type SliceView struct {
	records []Record
	dimKeys []string
	mesKeys []string
}

// NewSliceView creates a RecordView from a []Record slice.
func NewSliceView(records []Record) RecordView {
	v := &SliceView{records: records}
	v.cacheKeys()
	return v
}

// cacheKeys collects keys in first-seen order. Keys inside one record are
// sorted first since map iteration order is random.
func (v *SliceView) cacheKeys() {
	if len(v.records) == 0 {
		return
	}
	dimSeen := make(map[string]bool)
	mesSeen := make(map[string]bool)
	for _, r := range v.records {
		for _, k := range sortedKeys(r.Dimensions) {
			if !dimSeen[k] {
				dimSeen[k] = true
				v.dimKeys = append(v.dimKeys, k)
			}
		}
		for _, k := range sortedKeys(r.Measures) {
			if !mesSeen[k] {
				mesSeen[k] = true
				v.mesKeys = append(v.mesKeys, k)
			}
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (v *SliceView) Len() int { return len(v.records) }

func (v *SliceView) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.records) {
		return ""
	}
	return v.records[i].Dimensions[key]
}

func (v *SliceView) Measure(i int, key string) float64 {
	if i < 0 || i >= len(v.records) {
		return 0
	}
	return v.records[i].Measures[key]
}

func (v *SliceView) DimensionKeys() []string { return v.dimKeys }
func (v *SliceView) MeasureKeys() []string   { return v.mesKeys }

// ============================================================================
// SUB VIEW — filtered subset (zero-copy)
// ============================================================================

// SubView is a filtered subset of a parent RecordView.
// Holds indices into the parent, no data copy. Index order is the caller's
// order, so filtering preserves the parent's record order.
type SubView struct {
	parent  RecordView
	indices []int
}

// Subset returns a view over the parent rows at indices, in that order.
func Subset(parent RecordView, indices []int) RecordView {
	return newSubView(parent, indices)
}

func newSubView(parent RecordView, indices []int) RecordView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Dimension(v.indices[i], key)
}

func (v *SubView) Measure(i int, key string) float64 {
	if i < 0 || i >= len(v.indices) {
		return 0
	}
	return v.parent.Measure(v.indices[i], key)
}

func (v *SubView) DimensionKeys() []string { return v.parent.DimensionKeys() }
func (v *SubView) MeasureKeys() []string   { return v.parent.MeasureKeys() }
func (v *SubView) Columns() []string       { return ColumnsOf(v.parent) }

// ============================================================================
// DERIVED VIEW — computed dimensions on read (zero-copy)
// ============================================================================

// DerivedView wraps a RecordView and adds dimensions computed from the
// parent row on every read, e.g. a year bucket taken from a date column.
type DerivedView struct {
	parent  RecordView
	derived map[string]func(parent RecordView, i int) string
	order   []string
}

// Derive starts a DerivedView over parent.
func Derive(parent RecordView) *DerivedView {
	return &DerivedView{
		parent:  parent,
		derived: make(map[string]func(RecordView, int) string),
	}
}

// WithDimension registers a computed dimension. Registering an existing
// parent key shadows it.
func (v *DerivedView) WithDimension(key string, fn func(parent RecordView, i int) string) *DerivedView {
	if _, exists := v.derived[key]; !exists {
		v.order = append(v.order, key)
	}
	v.derived[key] = fn
	return v
}

func (v *DerivedView) Len() int { return v.parent.Len() }

func (v *DerivedView) Dimension(i int, key string) string {
	if fn, ok := v.derived[key]; ok {
		if i < 0 || i >= v.parent.Len() {
			return ""
		}
		return fn(v.parent, i)
	}
	return v.parent.Dimension(i, key)
}

func (v *DerivedView) Measure(i int, key string) float64 { return v.parent.Measure(i, key) }

func (v *DerivedView) DimensionKeys() []string {
	keys := append([]string(nil), v.parent.DimensionKeys()...)
	for _, k := range v.order {
		if !contains(keys, k) {
			keys = append(keys, k)
		}
	}
	return keys
}

func (v *DerivedView) MeasureKeys() []string { return v.parent.MeasureKeys() }

func (v *DerivedView) Columns() []string {
	cols := append([]string(nil), ColumnsOf(v.parent)...)
	for _, k := range v.order {
		if !contains(cols, k) {
			cols = append(cols, k)
		}
	}
	return cols
}

func contains(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}

// ============================================================================
// DOMAIN ADAPTER — Zero-copy typed struct access
// ============================================================================
//
// Usage:
//
//	adapter := engine.NewDomainAdapter[census.Person]().
//	    Dimension("municipio", func(p census.Person) string { return p.Municipality }).
//	    Measure("edad", func(p census.Person) float64 { return float64(p.Age) })
//
//	view := adapter.Bind(people)
//
// ============================================================================

// DomainAdapter builds a RecordView from typed structs.
// Declare once, bind many times.
type DomainAdapter[T any] struct {
	colOrder []string
	dimOrder []string
	mesOrder []string
	dims     map[string]func(T) string
	meas     map[string]func(T) float64
}

// NewDomainAdapter creates a new adapter for type T.
func NewDomainAdapter[T any]() *DomainAdapter[T] {
	return &DomainAdapter[T]{
		dims: make(map[string]func(T) string),
		meas: make(map[string]func(T) float64),
	}
}

// Dimension registers a dimension accessor.
func (a *DomainAdapter[T]) Dimension(key string, fn func(T) string) *DomainAdapter[T] {
	if _, exists := a.dims[key]; !exists {
		a.dimOrder = append(a.dimOrder, key)
		a.colOrder = append(a.colOrder, key)
	}
	a.dims[key] = fn
	return a
}

// Measure registers a measure accessor.
func (a *DomainAdapter[T]) Measure(key string, fn func(T) float64) *DomainAdapter[T] {
	if _, exists := a.meas[key]; !exists {
		a.mesOrder = append(a.mesOrder, key)
		a.colOrder = append(a.colOrder, key)
	}
	a.meas[key] = fn
	return a
}

// Bind creates a RecordView from a data slice. The view holds data, it does not copy it.
func (a *DomainAdapter[T]) Bind(data []T) RecordView {
	return &DomainView[T]{
		data:     data,
		dims:     a.dims,
		meas:     a.meas,
		dimKeys:  a.dimOrder,
		measKeys: a.mesOrder,
		cols:     a.colOrder,
	}
}

// DomainView reads typed struct fields via registered accessor functions.
type DomainView[T any] struct {
	data     []T
	dims     map[string]func(T) string
	meas     map[string]func(T) float64
	dimKeys  []string
	measKeys []string
	cols     []string
}

func (v *DomainView[T]) Len() int { return len(v.data) }

func (v *DomainView[T]) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.data) {
		return ""
	}
	if fn, ok := v.dims[key]; ok {
		return fn(v.data[i])
	}
	return ""
}

func (v *DomainView[T]) Measure(i int, key string) float64 {
	if i < 0 || i >= len(v.data) {
		return 0
	}
	if fn, ok := v.meas[key]; ok {
		return fn(v.data[i])
	}
	return 0
}

func (v *DomainView[T]) DimensionKeys() []string { return v.dimKeys }
func (v *DomainView[T]) MeasureKeys() []string   { return v.measKeys }
func (v *DomainView[T]) Columns() []string       { return v.cols }
