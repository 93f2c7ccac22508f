// Package census simulates a small population survey and filters it with a
// fixed chain of independently toggled predicates.
package census

import (
	"math/rand/v2"
	"sort"
	"time"
)

// DefaultSize is the number of people generated per render.
const DefaultSize = 100

// Housing types as spelled in the data.
const (
	HousingOwned  = "Propia"
	HousingRented = "Arriendo"
	HousingFamily = "Familiar"
)

// Generation bounds.
const (
	MinAge    = 15
	MaxAge    = 75
	MinIncome = 800_000
	MaxIncome = 12_000_000
	// NullIncomeRate is the probability that a person reports no income.
	NullIncomeRate = 0.05
)

var (
	// FirstBirthDate and LastBirthDate bound the sampled birth dates.
	FirstBirthDate = time.Date(1949, time.January, 1, 0, 0, 0, 0, time.UTC)
	LastBirthDate  = time.Date(2009, time.December, 31, 0, 0, 0, 0, time.UTC)
)

var (
	Names       = []string{"Ana", "Luis", "Carlos", "María", "Pedro", "Laura", "Jorge", "Sofía", "Andrés", "Valentina"}
	Cities      = []string{"Bogotá", "Medellín", "Cali", "Barranquilla", "Cartagena"}
	Occupations = []string{"Estudiante", "Empleado", "Desempleado", "Independiente", "Docente", "Ingeniero", "Médico", "Emprendedor", "Pensionado"}
	Housing     = []string{HousingOwned, HousingRented, HousingFamily}
	Sectors     = []string{"Salud", "Educación", "Tecnología", "Comercio", "Otro"}
	Regions     = []string{"Andina", "Caribe", "Pacífica", "Orinoquía", "Amazonía"}

	// ExtraMunicipalities can be selected in the municipality filter even
	// though the generator never produces them.
	ExtraMunicipalities = []string{"Santa Marta", "Tunja", "Manizales", "Quibdó", "Buenaventura", "Villavicencio", "Yopal", "Leticia", "Puerto Inírida"}
)

// Municipalities returns the sorted, de-duplicated union of Cities and
// ExtraMunicipalities.
func Municipalities() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range append(append([]string(nil), Cities...), ExtraMunicipalities...) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}

// Person is one simulated survey record.
type Person struct {
	FullName     string    `json:"nombre_completo"`
	Municipality string    `json:"municipio"`
	Age          int       `json:"edad"`
	Occupation   string    `json:"ocupacion"`
	Housing      string    `json:"tipo_vivienda"`
	Sector       string    `json:"sector"`
	Region       string    `json:"region"`
	Income       *int      `json:"ingreso_mensual"` // nil when not reported
	Internet     bool      `json:"acceso_internet"`
	BirthDate    time.Time `json:"fecha_nacimiento"`
}

// Dataset is an ordered, read-only sequence of people.
type Dataset []Person

// NewRand returns a generator seeded with seed, or with a random seed when
// seed is zero.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate draws n people from rng.
func Generate(rng *rand.Rand, n int) Dataset {
	days := int(LastBirthDate.Sub(FirstBirthDate).Hours()/24) + 1

	ds := make(Dataset, 0, n)
	for i := 0; i < n; i++ {
		p := Person{
			FullName:     pick(rng, Names),
			Municipality: pick(rng, Cities),
			Age:          MinAge + rng.IntN(MaxAge-MinAge+1),
			Occupation:   pick(rng, Occupations),
			Housing:      pick(rng, Housing),
			Sector:       pick(rng, Sectors),
			Region:       pick(rng, Regions),
		}
		if rng.Float64() >= NullIncomeRate {
			income := MinIncome + rng.IntN(MaxIncome-MinIncome+1)
			p.Income = &income
		}
		p.Internet = rng.IntN(2) == 1
		p.BirthDate = FirstBirthDate.AddDate(0, 0, rng.IntN(days))
		ds = append(ds, p)
	}
	return ds
}

func pick(rng *rand.Rand, items []string) string {
	return items[rng.IntN(len(items))]
}
