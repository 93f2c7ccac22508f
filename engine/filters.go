package engine

import (
	"strings"
)

// ============================================================================
// FILTERS — Dimension membership + measure ranges via RecordView
// ============================================================================
// Single-pass filter: checks ALL constraints per record in one loop.
// Returns a SubView (index list into parent); no data is copied and order is kept.
// ============================================================================

// ApplyFilters returns a view of records matching all filters.
// Dimensions are AND-combined; values within a dimension are OR-combined.
// Ranges are inclusive and AND-combined with the dimensions.
// Empty filter = no restriction (returns original view).
func ApplyFilters(view RecordView, filters Filters) RecordView {
	if filters.IsEmpty() {
		return view
	}

	// Pre-build lowercase lookup sets for each dimension filter
	sets := make(map[string]map[string]bool)
	for dim, allowed := range filters.Dimensions {
		if len(allowed) > 0 || filters.Strict {
			sets[dim] = toLowerSet(allowed)
		}
	}

	if len(sets) == 0 && len(filters.Ranges) == 0 {
		return view
	}

	return Where(view, func(i int) bool {
		for dim, set := range sets {
			if !set[strings.ToLower(view.Dimension(i, dim))] {
				return false
			}
		}
		for measure, r := range filters.Ranges {
			if !r.Contains(view.Measure(i, measure)) {
				return false
			}
		}
		return true
	})
}

// Where returns the records of view for which keep returns true, in order.
func Where(view RecordView, keep func(i int) bool) RecordView {
	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if keep(i) {
			indices = append(indices, i)
		}
	}
	return newSubView(view, indices)
}

// toLowerSet converts a string slice to a lowercase lookup set.
func toLowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = true
	}
	return set
}
