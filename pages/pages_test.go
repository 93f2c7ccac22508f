package pages

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcap17/proyect-viernes/census"
	"github.com/lcap17/proyect-viernes/loader"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

const studentsCSV = `nombre,edad,promedio,ciudad
Ana,20,4.5,Bogotá
Luis,22,3.8,Cali
Marta,21,4.0,Medellín
Jorge,25,3.2,Bogotá
Sofía,23,4.9,Cali
Pedro,24,2.9,Pasto
`

const casesCSV = ` fecha hecho ,departamento,municipio,cantidad
2020-03-01,ANTIOQUIA,MEDELLIN,2
2021-05-10,VALLE,CALI,3
sin fecha,ANTIOQUIA,BELLO,1
2021-01-15,ANTIOQUIA,MEDELLIN,4
`

func testEnv(t *testing.T, files map[string]string) Env {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	cache, err := loader.NewCache(8, nil, nil)
	require.NoError(t, err)
	return Env{
		Loader:   &loader.Loader{BaseDir: dir, Cache: cache},
		Database: filepath.Join(dir, "estudiantes.db"),
		Seed:     42,
	}
}

func render(t *testing.T, slug string, env Env, c Controls) *Document {
	t.Helper()
	page, ok := Lookup(slug)
	require.True(t, ok, slug)
	doc, err := page.Render(context.Background(), env, c)
	require.NoError(t, err)
	return doc
}

func texts(sections []Section) []string {
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = s.Text
	}
	return out
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

func TestRegistry_Order(t *testing.T) {
	var slugs []string
	for _, p := range Registry() {
		slugs = append(slugs, p.Slug)
	}
	assert.Equal(t, []string{"fuentes", "estudiantes", "filtros", "peliculas", "trata"}, slugs)

	_, ok := Lookup("nope")
	assert.False(t, ok)
}

func TestRender_SetsIdentityAndCountsRenders(t *testing.T) {
	env := testEnv(t, nil)
	env.Metrics = NewMetrics(prometheus.NewRegistry())

	doc := render(t, "filtros", env, nil)
	assert.Equal(t, "filtros", doc.Slug)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.Metrics.Renders("filtros", "ok")))
}

// ---------------------------------------------------------------------------
// Data sources
// ---------------------------------------------------------------------------

func TestSources_FailingSectionsWarnAndOthersRender(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "Month,1958\nJAN,340\n")
	}))
	defer srv.Close()

	env := testEnv(t, nil)
	env.RemoteURL = srv.URL
	doc := render(t, "fuentes", env, nil)

	assert.Equal(t, []string{
		"Archivo 'data.csv' no encontrado.",
		"Archivo 'data.xlsx' no encontrado.",
		"Archivo 'data.json' no encontrado.",
	}, texts(doc.Find(SectionWarning)))
	assert.Len(t, doc.Find(SectionTable), 7)
	assert.Len(t, doc.Find(SectionInfo), 2)

	// The embedded store accumulates the seed rows on every render.
	doc = render(t, "fuentes", env, nil)
	var sqlite *Section
	for i, s := range doc.Sections {
		if s.Kind == SectionHeader && s.Text == "9. Datos desde SQLite" {
			sqlite = &doc.Sections[i+1]
		}
	}
	require.NotNil(t, sqlite)
	require.NotNil(t, sqlite.Table)
	assert.Equal(t, 6, sqlite.Table.Len())
}

func TestSources_RemoteFailureIsWarning(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	env := testEnv(t, nil)
	env.RemoteURL = srv.URL + "/airtravel.csv"
	doc := render(t, "fuentes", env, nil)

	warnings := texts(doc.Find(SectionWarning))
	require.Len(t, warnings, 4)
	assert.True(t, strings.HasPrefix(warnings[3], "No se pudo cargar desde URL:"))
}

// ---------------------------------------------------------------------------
// Students
// ---------------------------------------------------------------------------

func TestStudents_MissingFileShowsOnlyErrorAndWarning(t *testing.T) {
	doc := render(t, "estudiantes", testEnv(t, nil), nil)
	assert.Len(t, doc.Find(SectionError), 1)
	assert.Equal(t, []string{"No se pudieron cargar los datos."}, texts(doc.Find(SectionWarning)))
	assert.Empty(t, doc.Find(SectionTable))
	assert.Empty(t, doc.Find(SectionControl))
}

func TestStudents_HeaderOnlyFileSaysNoRows(t *testing.T) {
	env := testEnv(t, map[string]string{"estudiantes_colombia.csv": "nombre,edad,promedio\n"})
	doc := render(t, "estudiantes", env, nil)
	assert.Empty(t, doc.Find(SectionError))
	assert.Equal(t, []string{"El archivo 'estudiantes_colombia.csv' no contiene filas de datos."},
		texts(doc.Find(SectionWarning)))
	assert.Empty(t, doc.Find(SectionTable))
}

func TestStudents_Defaults(t *testing.T) {
	env := testEnv(t, map[string]string{"estudiantes_colombia.csv": studentsCSV})
	doc := render(t, "estudiantes", env, nil)

	tables := doc.Find(SectionTable)
	require.Len(t, tables, 5)
	assert.Equal(t, 5, tables[0].Table.Len())
	assert.Equal(t, "Ana", tables[0].Table.Rows[0][0])
	assert.Equal(t, "Luis", tables[1].Table.Rows[0][0])

	selected := tables[3].Table
	require.Len(t, selected.Columns, 3)
	assert.Equal(t, "promedio", selected.Columns[2].Key)

	filtered := tables[4].Table
	assert.Equal(t, 3, filtered.Len())
	assert.Contains(t, texts(doc.Find(SectionText)), "Estudiantes con promedio mayor o igual a 4.0:")

	code := doc.Find(SectionCode)
	require.Len(t, code, 1)
	assert.Equal(t, "📋 Resumen de estructura", code[0].Group)
}

func TestStudents_ControlsApply(t *testing.T) {
	env := testEnv(t, map[string]string{"estudiantes_colombia.csv": studentsCSV})
	doc := render(t, "estudiantes", env, Controls{
		StudentsColumns:    {""},
		StudentsMinAverage: {"3.5"},
	})

	tables := doc.Find(SectionTable)
	require.Len(t, tables, 4, "an empty column selection shows no table")
	assert.Equal(t, 4, tables[3].Table.Len())
	assert.Contains(t, texts(doc.Find(SectionText)), "Estudiantes con promedio mayor o igual a 3.5:")
}

// ---------------------------------------------------------------------------
// Dynamic filters
// ---------------------------------------------------------------------------

func TestFilters_NoPredicatesShowsEveryone(t *testing.T) {
	doc := render(t, "filtros", testEnv(t, nil), nil)
	assert.Contains(t, texts(doc.Find(SectionMarkdown)), "### Resultados: 100 registros encontrados")
	require.Len(t, doc.Find(SectionTable), 1)
	assert.Equal(t, 100, doc.Find(SectionTable)[0].Table.Len())
}

func TestFilters_MatchesPipeline(t *testing.T) {
	env := testEnv(t, nil)
	c := Controls{
		census.KeyAge:      {"on"},
		census.KeyAgeMin:   {"30"},
		census.KeyAgeMax:   {"45"},
		census.KeyNonOwned: {"on"},
	}
	doc := render(t, "filtros", env, c)

	want := census.Apply(census.Generate(census.NewRand(env.Seed), census.DefaultSize), census.FromValues(c))
	assert.Equal(t, want.Count(), doc.Find(SectionTable)[0].Table.Len())

	var checked []string
	for _, s := range doc.Find(SectionControl) {
		if s.Control.Type == ControlCheckbox && s.Control.Checked {
			checked = append(checked, s.Control.Name)
		}
	}
	assert.Equal(t, []string{census.KeyAge, census.KeyNonOwned}, checked)
}

func TestFilterControls_OneCheckboxPerPredicate(t *testing.T) {
	var boxes []string
	for _, c := range FilterControls(census.DefaultParameters()) {
		if c.Type == ControlCheckbox {
			boxes = append(boxes, c.Label)
		}
	}
	require.Len(t, boxes, 10)
	assert.Equal(t, "Filtrar por rango de edad", boxes[0])
	assert.Equal(t, "Filtrar por rango de fechas de nacimiento", boxes[9])
}

// ---------------------------------------------------------------------------
// Movies
// ---------------------------------------------------------------------------

func TestMovies_RowAndYearRange(t *testing.T) {
	env := testEnv(t, nil)
	doc := render(t, "peliculas", env, Controls{
		MoviesRow:     {"99"},
		MoviesYearMin: {"1999"},
		MoviesYearMax: {"2012"},
	})

	records := doc.Find(SectionRecord)
	require.Len(t, records, 1)
	assert.Equal(t, Field{Name: "Título", Value: "Interstellar"}, records[0].Record[0])

	assert.Contains(t, texts(doc.Find(SectionText)), "Películas entre 1999 y 2012:")
	tables := doc.Find(SectionTable)
	require.Len(t, tables, 2, "show-all is off")
	assert.Equal(t, 3, tables[1].Table.Len())
}

func TestMovies_YearMaxNeverBelowYearMin(t *testing.T) {
	doc := render(t, "peliculas", testEnv(t, nil), Controls{
		MoviesYearMin: {"2012"},
		MoviesYearMax: {"1990"},
	})
	assert.Contains(t, texts(doc.Find(SectionText)), "Películas entre 2012 y 2012:")
}

func TestMovies_ScoreUpdateAppliesToCopy(t *testing.T) {
	env := testEnv(t, nil)
	doc := render(t, "peliculas", env, Controls{
		MoviesTitle:  {"Titanic"},
		MoviesScore:  {"9.5"},
		MoviesUpdate: {"1"},
	})
	assert.Equal(t, []string{"Puntuación de 'Titanic' actualizada a 9.5"}, texts(doc.Find(SectionSuccess)))
	tables := doc.Find(SectionTable)
	updated := tables[len(tables)-1].Table
	assert.Equal(t, "9.50", updated.Rows[1][3])

	doc = render(t, "peliculas", env, Controls{MoviesShowAll: {"on"}})
	assert.Equal(t, "7.80", doc.Find(SectionTable)[0].Table.Rows[1][3])
	assert.Empty(t, doc.Find(SectionSuccess))
}

// ---------------------------------------------------------------------------
// Trafficking dashboard
// ---------------------------------------------------------------------------

func TestTrafficking_Defaults(t *testing.T) {
	env := testEnv(t, map[string]string{"trata_de_personas.csv": casesCSV})
	doc := render(t, "trata", env, nil)

	metrics := doc.Find(SectionMetrics)
	require.Len(t, metrics, 1)
	assert.Equal(t, "10", metrics[0].Metrics[0].Value)
	assert.Equal(t, "2020 – 2021", metrics[0].Metrics[0].Period)
	assert.Equal(t, "2", metrics[0].Metrics[1].Value)
	assert.Equal(t, "3", metrics[0].Metrics[2].Value)

	charts := doc.Find(SectionChart)
	require.Len(t, charts, 2)
	byYear := charts[0].Chart.Series[0].Data
	require.Len(t, byYear, 2)
	assert.Equal(t, "2020", byYear[0].Label)
	assert.Equal(t, 7.0, byYear[1].Value)
	assert.Equal(t, "Cantidad de Casos", charts[0].Chart.YAxis)
	assert.Equal(t, "ANTIOQUIA", charts[1].Chart.Series[0].Data[0].Label)

	table := doc.Find(SectionTable)[0].Table
	require.Equal(t, 3, table.Len(), "rows without a year are not selectable")
	assert.Equal(t, "2021-05-10", table.Rows[0][0])
	assert.Equal(t, "2020-03-01", table.Rows[2][0])
}

func TestTrafficking_EmptySelectionYieldsNoRows(t *testing.T) {
	env := testEnv(t, map[string]string{"trata_de_personas.csv": casesCSV})
	doc := render(t, "trata", env, Controls{TraffickingYears: {""}})

	assert.Equal(t, 0, doc.Find(SectionTable)[0].Table.Len())
	assert.Empty(t, doc.Find(SectionChart))
	assert.Len(t, doc.Find(SectionInfo), 2)
}

func TestTrafficking_MissingFileWarns(t *testing.T) {
	doc := render(t, "trata", testEnv(t, nil), nil)
	assert.Equal(t, []string{"Archivo 'trata_de_personas.csv' no encontrado."}, texts(doc.Find(SectionWarning)))
	assert.Empty(t, doc.Find(SectionTable))
}
