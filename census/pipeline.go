package census

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Predicate is one switchable test of the filter panel. Predicates are
// stateless: everything they read comes from the FilterParameters.
type Predicate struct {
	// Name is a stable identifier, also used as the query string key.
	Name string
	// Label is the checkbox caption.
	Label string
	// Enabled reports whether the predicate takes part in the AND chain.
	Enabled func(p FilterParameters) bool
	// Test reports whether person passes the predicate.
	Test func(person Person, p FilterParameters) bool
}

var predicates = []Predicate{
	{
		Name:    KeyAge,
		Label:   "Filtrar por rango de edad",
		Enabled: func(p FilterParameters) bool { return p.Age.Enabled },
		Test: func(x Person, p FilterParameters) bool {
			return x.Age >= p.Age.Min && x.Age <= p.Age.Max
		},
	},
	{
		Name:    KeyMunicipality,
		Label:   "Filtrar por municipios",
		Enabled: func(p FilterParameters) bool { return p.Municipality.Enabled },
		Test: func(x Person, p FilterParameters) bool {
			return memberOf(p.Municipality.Selected, x.Municipality)
		},
	},
	{
		Name:    KeyIncome,
		Label:   "Filtrar por ingreso mensual mínimo",
		Enabled: func(p FilterParameters) bool { return p.Income.Enabled },
		Test: func(x Person, p FilterParameters) bool {
			return x.Income != nil && *x.Income > p.Income.Threshold
		},
	},
	{
		Name:    KeyOccupation,
		Label:   "Filtrar por ocupación",
		Enabled: func(p FilterParameters) bool { return p.Occupation.Enabled },
		Test: func(x Person, p FilterParameters) bool {
			return memberOf(p.Occupation.Selected, x.Occupation)
		},
	},
	{
		Name:    KeyNonOwned,
		Label:   "Filtrar personas sin vivienda propia",
		Enabled: func(p FilterParameters) bool { return p.NonOwned.Enabled },
		Test: func(x Person, _ FilterParameters) bool {
			return x.Housing != HousingOwned
		},
	},
	{
		Name:    KeyName,
		Label:   "Filtrar por nombre",
		Enabled: func(p FilterParameters) bool { return p.Name.Enabled },
		Test: func(x Person, p FilterParameters) bool {
			return nameContains(x.FullName, p.Name.Query)
		},
	},
	{
		Name:    KeyYear,
		Label:   "Filtrar por año de nacimiento",
		Enabled: func(p FilterParameters) bool { return p.BirthYear.Enabled },
		Test: func(x Person, p FilterParameters) bool {
			return x.BirthDate.Year() == p.BirthYear.Year
		},
	},
	{
		Name:    KeyInternet,
		Label:   "Filtrar por acceso a internet",
		Enabled: func(p FilterParameters) bool { return p.Internet.Enabled },
		Test: func(x Person, p FilterParameters) bool {
			return x.Internet == p.Internet.HasAccess
		},
	},
	{
		Name:    KeyNullIncome,
		Label:   "Filtrar por ingresos nulos",
		Enabled: func(p FilterParameters) bool { return p.NullIncome.Enabled },
		Test: func(x Person, _ FilterParameters) bool {
			return x.Income == nil
		},
	},
	{
		Name:    KeyDates,
		Label:   "Filtrar por rango de fechas de nacimiento",
		Enabled: func(p FilterParameters) bool { return p.BirthDates.Enabled },
		Test: func(x Person, p FilterParameters) bool {
			d := truncate(Date{x.BirthDate})
			return !d.Before(p.BirthDates.Start.Time) && !d.After(p.BirthDates.End.Time)
		},
	},
}

// Predicates returns the ten predicates in their declared order.
func Predicates() []Predicate {
	return slices.Clone(predicates)
}

// memberOf treats an empty selection as pass-through.
func memberOf(selected []string, value string) bool {
	return len(selected) == 0 || slices.Contains(selected, value)
}

// nameContains matches case-insensitively. An empty query matches every
// name; an absent name never matches a non-empty query.
func nameContains(name, query string) bool {
	if query == "" {
		return true
	}
	if name == "" {
		return false
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(name), fold.String(query))
}

// ============================================================================
// PIPELINE
// ============================================================================

// View is the filtered subsequence of a Dataset. It holds indices into the
// dataset, in dataset order.
type View struct {
	dataset Dataset
	Indices []int
}

// Apply keeps the people passing every enabled predicate. With nothing
// enabled the result is the whole dataset. The dataset is never modified.
func Apply(ds Dataset, params FilterParameters) View {
	params = params.Normalize()

	var active []Predicate
	for _, pr := range predicates {
		if pr.Enabled(params) {
			active = append(active, pr)
		}
	}

	indices := make([]int, 0, len(ds))
	for i, person := range ds {
		keep := true
		for _, pr := range active {
			if !pr.Test(person, params) {
				keep = false
				break
			}
		}
		if keep {
			indices = append(indices, i)
		}
	}
	return View{dataset: ds, Indices: indices}
}

// Count returns the number of people in the view.
func (v View) Count() int { return len(v.Indices) }

// Records copies the people in the view.
func (v View) Records() []Person {
	out := make([]Person, len(v.Indices))
	for i, idx := range v.Indices {
		out[i] = v.dataset[idx]
	}
	return out
}
