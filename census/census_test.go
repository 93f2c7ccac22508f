package census

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func sample(t *testing.T) Dataset {
	t.Helper()
	ds := Generate(NewRand(42), DefaultSize)
	require.Len(t, ds, DefaultSize)
	return ds
}

func intp(n int) *int { return &n }

func person(name string, age int, income *int) Person {
	return Person{
		FullName:     name,
		Municipality: "Bogotá",
		Age:          age,
		Occupation:   "Docente",
		Housing:      HousingRented,
		Income:       income,
		BirthDate:    time.Date(1980, 5, 17, 0, 0, 0, 0, time.UTC),
	}
}

// ---------------------------------------------------------------------------
// Generation
// ---------------------------------------------------------------------------

func TestGenerate_FieldsWithinBounds(t *testing.T) {
	for _, p := range sample(t) {
		assert.Contains(t, Names, p.FullName)
		assert.Contains(t, Cities, p.Municipality)
		assert.GreaterOrEqual(t, p.Age, MinAge)
		assert.LessOrEqual(t, p.Age, MaxAge)
		assert.Contains(t, Occupations, p.Occupation)
		assert.Contains(t, Housing, p.Housing)
		assert.Contains(t, Sectors, p.Sector)
		assert.Contains(t, Regions, p.Region)
		if p.Income != nil {
			assert.GreaterOrEqual(t, *p.Income, MinIncome)
			assert.LessOrEqual(t, *p.Income, MaxIncome)
		}
		assert.False(t, p.BirthDate.Before(FirstBirthDate))
		assert.False(t, p.BirthDate.After(LastBirthDate))
	}
}

func TestGenerate_SeedIsDeterministic(t *testing.T) {
	a := Generate(NewRand(7), 20)
	b := Generate(NewRand(7), 20)
	assert.Equal(t, a, b)
}

func TestMunicipalities_SortedUnion(t *testing.T) {
	m := Municipalities()
	assert.Len(t, m, len(Cities)+len(ExtraMunicipalities))
	assert.IsIncreasing(t, m)
	assert.Contains(t, m, "Puerto Inírida")
	assert.Contains(t, m, "Bogotá")
}

// ---------------------------------------------------------------------------
// Pipeline properties
// ---------------------------------------------------------------------------

func TestApply_NothingEnabledIsIdentity(t *testing.T) {
	ds := sample(t)
	v := Apply(ds, DefaultParameters())
	assert.Equal(t, []Person(ds), v.Records())
}

func TestApply_AgeRangeSoundAndComplete(t *testing.T) {
	ds := sample(t)
	p := DefaultParameters()
	p.Age = AgeRange{Enabled: true, Min: 30, Max: 45}

	v := Apply(ds, p)
	kept := make(map[int]bool)
	for _, idx := range v.Indices {
		kept[idx] = true
		assert.True(t, ds[idx].Age >= 30 && ds[idx].Age <= 45)
	}
	for i, person := range ds {
		if person.Age >= 30 && person.Age <= 45 {
			assert.True(t, kept[i], "qualifying record %d missing", i)
		}
	}
}

func TestApply_ReversedAgeRangeIsNormalized(t *testing.T) {
	ds := sample(t)
	a := DefaultParameters()
	a.Age = AgeRange{Enabled: true, Min: 60, Max: 20}
	b := DefaultParameters()
	b.Age = AgeRange{Enabled: true, Min: 20, Max: 60}
	assert.Equal(t, Apply(ds, b).Indices, Apply(ds, a).Indices)
}

func TestApply_EmptyMembershipIsPassThrough(t *testing.T) {
	ds := sample(t)
	p := DefaultParameters()
	p.Municipality.Enabled = true
	p.Occupation.Enabled = true
	assert.Equal(t, len(ds), Apply(ds, p).Count())

	p.Age = AgeRange{Enabled: true, Min: 15, Max: 40}
	only := DefaultParameters()
	only.Age = p.Age
	assert.Equal(t, Apply(ds, only).Indices, Apply(ds, p).Indices)
}

func TestApply_MembershipSelects(t *testing.T) {
	ds := sample(t)
	p := DefaultParameters()
	p.Municipality = Membership{Enabled: true, Selected: []string{"Cali", "Tunja"}}
	v := Apply(ds, p)
	for _, r := range v.Records() {
		assert.Equal(t, "Cali", r.Municipality)
	}
}

func TestApply_MinimumIncomeExcludesAbsent(t *testing.T) {
	ds := Dataset{
		person("Ana", 30, nil),
		person("Luis", 30, intp(1)),
		person("Marta", 30, intp(0)),
	}
	for _, threshold := range []int{0, 1, 2_000_000} {
		p := DefaultParameters()
		p.Income = IncomeMinimum{Enabled: true, Threshold: threshold}
		for _, r := range Apply(ds, p).Records() {
			require.NotNil(t, r.Income, "threshold %d", threshold)
			assert.Greater(t, *r.Income, threshold)
		}
	}

	p := DefaultParameters()
	p.Income = IncomeMinimum{Enabled: true, Threshold: 0}
	assert.Equal(t, []int{1}, Apply(ds, p).Indices)
}

func TestApply_NameSearchIsCaseInsensitiveAndNullSafe(t *testing.T) {
	ds := Dataset{person("María", 30, nil), person("", 30, nil), person("Mario", 30, nil), person("Ana", 30, nil)}

	p := DefaultParameters()
	p.Name = NameQuery{Enabled: true, Query: "MAR"}
	assert.Equal(t, []int{0, 2}, Apply(ds, p).Indices)

	p.Name.Query = "maría"
	assert.Equal(t, []int{0}, Apply(ds, p).Indices)

	p.Name.Query = ""
	assert.Equal(t, 4, Apply(ds, p).Count())
}

func TestApply_ThreeRecordAgeExample(t *testing.T) {
	ds := Dataset{person("a", 20, nil), person("b", 40, nil), person("c", 70, nil)}
	p := DefaultParameters()
	p.Age = AgeRange{Enabled: true, Min: 18, Max: 50}
	v := Apply(ds, p)
	assert.Equal(t, []Person{ds[0], ds[1]}, v.Records())
}

func TestApply_NonOwnedHousingCount(t *testing.T) {
	ds := sample(t)
	owned := 0
	for _, r := range ds {
		if r.Housing == HousingOwned {
			owned++
		}
	}
	p := DefaultParameters()
	p.NonOwned.Enabled = true
	v := Apply(ds, p)
	assert.Equal(t, len(ds)-owned, v.Count())
	for _, r := range v.Records() {
		assert.Contains(t, []string{HousingRented, HousingFamily}, r.Housing)
	}
}

func TestApply_NullIncomeAndInternet(t *testing.T) {
	ds := Dataset{person("a", 20, nil), person("b", 40, intp(5)), person("c", 70, nil)}
	ds[2].Internet = true

	p := DefaultParameters()
	p.NullIncome.Enabled = true
	assert.Equal(t, []int{0, 2}, Apply(ds, p).Indices)

	p.Internet = InternetChoice{Enabled: true, HasAccess: false}
	assert.Equal(t, []int{0}, Apply(ds, p).Indices)
}

func TestApply_BirthYearAndDateRange(t *testing.T) {
	ds := Dataset{person("a", 20, nil), person("b", 40, nil), person("c", 70, nil)}
	ds[0].BirthDate = time.Date(1949, 1, 1, 0, 0, 0, 0, time.UTC)
	ds[1].BirthDate = time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)
	ds[2].BirthDate = time.Date(2009, 12, 31, 0, 0, 0, 0, time.UTC)

	p := DefaultParameters()
	p.BirthYear.Enabled = true
	assert.Equal(t, []int{0}, Apply(ds, p).Indices)

	q := DefaultParameters()
	q.BirthDates.Enabled = true
	assert.Equal(t, []int{1, 2}, Apply(ds, q).Indices, "bounds are inclusive")
}

func TestApply_DoesNotMutateDataset(t *testing.T) {
	ds := sample(t)
	before := append(Dataset(nil), ds...)
	p := DefaultParameters()
	p.NonOwned.Enabled = true
	p.Age.Enabled = true
	_ = Apply(ds, p)
	assert.Equal(t, before, ds)
}

func TestPredicates_DeclaredOrder(t *testing.T) {
	names := make([]string, 0, 10)
	for _, pr := range Predicates() {
		names = append(names, pr.Name)
	}
	assert.Equal(t, []string{
		KeyAge, KeyMunicipality, KeyIncome, KeyOccupation, KeyNonOwned,
		KeyName, KeyYear, KeyInternet, KeyNullIncome, KeyDates,
	}, names)
}

// ---------------------------------------------------------------------------
// Parameters
// ---------------------------------------------------------------------------

func TestParameters_ValuesRoundTrip(t *testing.T) {
	p := DefaultParameters()
	p.Age = AgeRange{Enabled: true, Min: 25, Max: 35}
	p.Municipality = Membership{Enabled: true, Selected: []string{"Cali", "Yopal"}}
	p.Name = NameQuery{Enabled: true, Query: "an"}
	p.Internet = InternetChoice{Enabled: true, HasAccess: false}
	p.BirthDates = DateRange{Enabled: true, Start: NewDate(1960, 2, 3), End: NewDate(1970, 4, 5)}

	assert.Equal(t, p, FromValues(p.Values()))
}

func TestFromValues_ClampsAndNormalizes(t *testing.T) {
	v := DefaultParameters().Values()
	v.Set(KeyAgeMin, "90")
	v.Set(KeyAgeMax, "3")
	v.Set(KeyIncomeMin, "abc")
	v.Set(KeyDateStart, "2000-01-01")
	v.Set(KeyDateEnd, "1990-01-01")

	p := FromValues(v)
	assert.Equal(t, MinAge, p.Age.Min)
	assert.Equal(t, MaxAge, p.Age.Max)
	assert.Equal(t, 2_000_000, p.Income.Threshold)
	assert.Equal(t, "1990-01-01", p.BirthDates.Start.String())
	assert.Equal(t, 0, p.EnabledCount())
}

func TestParameters_YAMLAndJSON(t *testing.T) {
	doc := `
age: {enabled: true, min: 30, max: 40}
occupation: {enabled: true, selected: [Docente]}
birthDates: {enabled: true, start: "1960-01-01", end: "1980-12-31"}
`
	var p FilterParameters
	require.NoError(t, yaml.Unmarshal([]byte(doc), &p))
	assert.True(t, p.Age.Enabled)
	assert.Equal(t, []string{"Docente"}, p.Occupation.Selected)
	assert.Equal(t, "1980-12-31", p.BirthDates.End.String())
	assert.Equal(t, 3, p.EnabledCount())

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"start":"1960-01-01"`)
}

// ---------------------------------------------------------------------------
// Engine binding
// ---------------------------------------------------------------------------

func TestBind_ExposesColumns(t *testing.T) {
	ds := Dataset{person("Ana", 30, nil), person("Luis", 41, intp(900_000))}
	view := Bind(ds)
	assert.Equal(t, 2, view.Len())
	assert.Equal(t, "Ana", view.Dimension(0, ColFullName))
	assert.True(t, math.IsNaN(view.Measure(0, ColIncome)))
	assert.Equal(t, 900_000.0, view.Measure(1, ColIncome))
	assert.Equal(t, "1980-05-17", view.Dimension(1, ColBirthDate))

	p := DefaultParameters()
	p.Age = AgeRange{Enabled: true, Min: 40, Max: 50}
	sub := Apply(ds, p).RecordView()
	require.Equal(t, 1, sub.Len())
	assert.Equal(t, "Luis", sub.Dimension(0, ColFullName))
}
