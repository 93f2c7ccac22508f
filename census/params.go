package census

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format of Date.
const DateLayout = "2006-01-02"

// Date is a calendar day. It marshals as "2006-01-02" in JSON, YAML and
// query strings.
type Date struct {
	time.Time
}

// NewDate returns the Date for year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "2006-01-02" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string { return d.Format(DateLayout) }

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON overrides the RFC 3339 encoding promoted from time.Time.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts a "2006-01-02" string.
func (d *Date) UnmarshalJSON(b []byte) error {
	return d.UnmarshalText([]byte(strings.Trim(string(b), `"`)))
}

// ============================================================================
// FILTER PARAMETERS
// ============================================================================

// FilterParameters holds the enabled flag and the current parameters of every
// predicate. It is the whole state of the filter panel.
type FilterParameters struct {
	Age          AgeRange       `json:"age" yaml:"age"`
	Municipality Membership     `json:"municipality" yaml:"municipality"`
	Income       IncomeMinimum  `json:"income" yaml:"income"`
	Occupation   Membership     `json:"occupation" yaml:"occupation"`
	NonOwned     Toggle         `json:"nonOwnedHousing" yaml:"nonOwnedHousing"`
	Name         NameQuery      `json:"name" yaml:"name"`
	BirthYear    YearEquals     `json:"birthYear" yaml:"birthYear"`
	Internet     InternetChoice `json:"internet" yaml:"internet"`
	NullIncome   Toggle         `json:"nullIncome" yaml:"nullIncome"`
	BirthDates   DateRange      `json:"birthDates" yaml:"birthDates"`
}

// AgeRange keeps people aged Min..Max inclusive.
type AgeRange struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Min     int  `json:"min" yaml:"min"`
	Max     int  `json:"max" yaml:"max"`
}

// Membership keeps people whose field is one of Selected. An empty selection
// keeps everyone.
type Membership struct {
	Enabled  bool     `json:"enabled" yaml:"enabled"`
	Selected []string `json:"selected,omitempty" yaml:"selected,omitempty"`
}

// IncomeMinimum keeps people reporting an income strictly above Threshold.
type IncomeMinimum struct {
	Enabled   bool `json:"enabled" yaml:"enabled"`
	Threshold int  `json:"threshold" yaml:"threshold"`
}

// Toggle is a predicate without parameters.
type Toggle struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// NameQuery keeps people whose name contains Query, ignoring case.
type NameQuery struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Query   string `json:"query" yaml:"query"`
}

// YearEquals keeps people born in Year.
type YearEquals struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Year    int  `json:"year" yaml:"year"`
}

// InternetChoice keeps people whose internet access equals HasAccess.
type InternetChoice struct {
	Enabled   bool `json:"enabled" yaml:"enabled"`
	HasAccess bool `json:"hasAccess" yaml:"hasAccess"`
}

// DateRange keeps people born between Start and End inclusive.
type DateRange struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Start   Date `json:"start" yaml:"start"`
	End     Date `json:"end" yaml:"end"`
}

// Control bounds for the parameters.
const (
	IncomeStep    = 100_000
	FirstYear     = 1949
	LastYear      = 2009
	defaultMinAge = 20
	defaultMaxAge = 60
)

// DefaultParameters returns the initial state of the panel: every predicate
// disabled, every parameter at its control's initial value.
func DefaultParameters() FilterParameters {
	return FilterParameters{
		Age:        AgeRange{Min: defaultMinAge, Max: defaultMaxAge},
		Income:     IncomeMinimum{Threshold: 2_000_000},
		BirthYear:  YearEquals{Year: FirstYear},
		Internet:   InternetChoice{HasAccess: true},
		BirthDates: DateRange{Start: NewDate(1950, time.January, 1), End: NewDate(2009, time.December, 31)},
	}
}

// Normalize orders reversed ranges and truncates dates to the day.
func (p FilterParameters) Normalize() FilterParameters {
	if p.Age.Min > p.Age.Max {
		p.Age.Min, p.Age.Max = p.Age.Max, p.Age.Min
	}
	p.BirthDates.Start = truncate(p.BirthDates.Start)
	p.BirthDates.End = truncate(p.BirthDates.End)
	if p.BirthDates.Start.After(p.BirthDates.End.Time) {
		p.BirthDates.Start, p.BirthDates.End = p.BirthDates.End, p.BirthDates.Start
	}
	return p
}

func truncate(d Date) Date {
	return NewDate(d.Year(), d.Month(), d.Day())
}

// EnabledCount returns how many predicates are switched on.
func (p FilterParameters) EnabledCount() int {
	n := 0
	for _, pr := range Predicates() {
		if pr.Enabled(p) {
			n++
		}
	}
	return n
}

// ============================================================================
// QUERY STRING ENCODING
// ============================================================================
// Keys mirror the controls: a checkbox key ("edad") enables a predicate and
// the parameter keys ("edad_min") carry its values.
// ============================================================================

// Query string keys.
const (
	KeyAge          = "edad"
	KeyAgeMin       = "edad_min"
	KeyAgeMax       = "edad_max"
	KeyMunicipality = "municipio"
	KeyMunicipalSel = "municipio_sel"
	KeyIncome       = "ingreso"
	KeyIncomeMin    = "ingreso_min"
	KeyOccupation   = "ocupacion"
	KeyOccupSel     = "ocupacion_sel"
	KeyNonOwned     = "sin_vivienda_propia"
	KeyName         = "nombre"
	KeyNameQuery    = "nombre_q"
	KeyYear         = "anio"
	KeyYearValue    = "anio_valor"
	KeyInternet     = "internet"
	KeyInternetVal  = "internet_valor"
	KeyNullIncome   = "ingreso_nulo"
	KeyDates        = "fechas"
	KeyDateStart    = "fecha_inicio"
	KeyDateEnd      = "fecha_fin"
)

// FromValues reads parameters from a query string. Missing or malformed
// values keep their defaults and numbers are clamped to the control ranges,
// so every request yields a usable parameter set.
func FromValues(v url.Values) FilterParameters {
	p := DefaultParameters()

	p.Age.Enabled = checked(v, KeyAge)
	p.Age.Min = clamp(intValue(v, KeyAgeMin, p.Age.Min), MinAge, MaxAge)
	p.Age.Max = clamp(intValue(v, KeyAgeMax, p.Age.Max), MinAge, MaxAge)

	p.Municipality.Enabled = checked(v, KeyMunicipality)
	p.Municipality.Selected = listValue(v, KeyMunicipalSel)

	p.Income.Enabled = checked(v, KeyIncome)
	p.Income.Threshold = clamp(intValue(v, KeyIncomeMin, p.Income.Threshold), MinIncome, MaxIncome)

	p.Occupation.Enabled = checked(v, KeyOccupation)
	p.Occupation.Selected = listValue(v, KeyOccupSel)

	p.NonOwned.Enabled = checked(v, KeyNonOwned)

	p.Name.Enabled = checked(v, KeyName)
	p.Name.Query = v.Get(KeyNameQuery)

	p.BirthYear.Enabled = checked(v, KeyYear)
	p.BirthYear.Year = clamp(intValue(v, KeyYearValue, p.BirthYear.Year), FirstYear, LastYear)

	p.Internet.Enabled = checked(v, KeyInternet)
	if s := strings.ToLower(v.Get(KeyInternetVal)); s != "" {
		p.Internet.HasAccess = s == "si" || s == "sí" || s == "true" || s == "1"
	}

	p.NullIncome.Enabled = checked(v, KeyNullIncome)

	p.BirthDates.Enabled = checked(v, KeyDates)
	if d, err := ParseDate(v.Get(KeyDateStart)); err == nil {
		p.BirthDates.Start = d
	}
	if d, err := ParseDate(v.Get(KeyDateEnd)); err == nil {
		p.BirthDates.End = d
	}

	return p.Normalize()
}

// Values encodes p as a query string understood by FromValues.
func (p FilterParameters) Values() url.Values {
	v := url.Values{}
	setChecked(v, KeyAge, p.Age.Enabled)
	v.Set(KeyAgeMin, strconv.Itoa(p.Age.Min))
	v.Set(KeyAgeMax, strconv.Itoa(p.Age.Max))

	setChecked(v, KeyMunicipality, p.Municipality.Enabled)
	for _, m := range p.Municipality.Selected {
		v.Add(KeyMunicipalSel, m)
	}

	setChecked(v, KeyIncome, p.Income.Enabled)
	v.Set(KeyIncomeMin, strconv.Itoa(p.Income.Threshold))

	setChecked(v, KeyOccupation, p.Occupation.Enabled)
	for _, o := range p.Occupation.Selected {
		v.Add(KeyOccupSel, o)
	}

	setChecked(v, KeyNonOwned, p.NonOwned.Enabled)

	setChecked(v, KeyName, p.Name.Enabled)
	if p.Name.Query != "" {
		v.Set(KeyNameQuery, p.Name.Query)
	}

	setChecked(v, KeyYear, p.BirthYear.Enabled)
	v.Set(KeyYearValue, strconv.Itoa(p.BirthYear.Year))

	setChecked(v, KeyInternet, p.Internet.Enabled)
	if p.Internet.HasAccess {
		v.Set(KeyInternetVal, "si")
	} else {
		v.Set(KeyInternetVal, "no")
	}

	setChecked(v, KeyNullIncome, p.NullIncome.Enabled)

	setChecked(v, KeyDates, p.BirthDates.Enabled)
	v.Set(KeyDateStart, p.BirthDates.Start.String())
	v.Set(KeyDateEnd, p.BirthDates.End.String())
	return v
}

func checked(v url.Values, key string) bool {
	switch strings.ToLower(v.Get(key)) {
	case "on", "1", "true", "si", "sí":
		return true
	}
	return false
}

func setChecked(v url.Values, key string, on bool) {
	if on {
		v.Set(key, "on")
	}
}

func intValue(v url.Values, key string, def int) int {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// listValue accepts repeated keys and comma separated values.
func listValue(v url.Values, key string) []string {
	var out []string
	for _, raw := range v[key] {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" && !slices.Contains(out, s) {
				out = append(out, s)
			}
		}
	}
	return out
}

func clamp(n, lo, hi int) int {
	return max(lo, min(n, hi))
}
