package pages

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lcap17/proyect-viernes/engine"
	"github.com/lcap17/proyect-viernes/helpers"
	"github.com/lcap17/proyect-viernes/loader"
	"github.com/lcap17/proyect-viernes/schema"
)

// Control names of the trafficking dashboard.
const (
	TraffickingYears       = "anios"
	TraffickingDepartments = "departamentos"
)

// Column names after the header is stripped and upper-cased.
const (
	colCaseDate     = "FECHA HECHO"
	colCaseYear     = "AÑO"
	colDepartment   = "DEPARTAMENTO"
	colMunicipality = "MUNICIPIO"
	colQuantity     = "CANTIDAD"

	traffickingFile = "trata_de_personas.csv"
)

func renderTrafficking(ctx context.Context, env Env, c Controls) (*Document, error) {
	doc := &Document{Title: "Momento 2 - Actividad 5"}
	doc.Title1("Momento 2 - Actividad 5")
	doc.Header("Descripción de la actividad")
	doc.Markdown(`Esta actividad es una **introducción práctica** a las **estructuras de datos básicas**.
Exploraremos los conceptos fundamentales y aprenderemos a utilizar:

- Variables
- Tipos de datos
- Operadores
- Estructuras de datos como listas, tuplas, diccionarios y conjuntos

El enfoque será práctico, con ejemplos reales y útiles para desarrollar una base sólida en programación.`)
	doc.Header("Objetivos de Aprendizaje")
	doc.Markdown(`- Comprender los tipos de datos básicos
- Aprender a utilizar variables y operadores
- Dominar las estructuras de datos fundamentales
- Aplicar estos conocimientos en ejemplos prácticos y ejercicios`)
	doc.Header("Solución")

	src := loader.Source{Kind: loader.KindCSV, Path: traffickingFile}
	cases, warn := env.loader().LoadOrWarn(ctx, src, loader.WithHeaderTransform(helpers.StripUpper))
	if warn != nil {
		doc.Warning(warn.Message)
		return doc, nil
	}
	if missing := missingColumns(cases, colCaseDate, colDepartment, colMunicipality, colQuantity); len(missing) > 0 {
		doc.Error(fmt.Sprintf("Faltan columnas en '%s': %s", traffickingFile, strings.Join(missing, ", ")))
		return doc, nil
	}
	view := withCaseDates(cases.View())

	doc.Title1("📊 Dashboard: Casos de Trata de Personas en Colombia")

	// KPIs
	doc.Metrics(engine.BuildMetrics([]engine.MetricSpec{
		{Label: "Total de Casos", Kind: "sum", Key: colQuantity, PeriodKey: colCaseYear},
		{Label: "Departamentos", Kind: "distinct", Key: colDepartment},
		{Label: "Municipios", Kind: "distinct", Key: colMunicipality},
	}, view))

	// Filters
	doc.Subheader("Filtros")
	years := engine.SortedUniqueValues(view, colCaseYear)
	departments := engine.SortedUniqueValues(view, colDepartment)
	selectedYears := only(multiValues(c, TraffickingYears, years), years)
	selectedDepartments := only(multiValues(c, TraffickingDepartments, departments), departments)
	doc.Control(Control{Type: ControlMultiSelect, Name: TraffickingYears, Label: "Selecciona Años",
		Options: years, Values: selectedYears})
	doc.Control(Control{Type: ControlMultiSelect, Name: TraffickingDepartments, Label: "Selecciona Departamentos",
		Options: departments, Values: selectedDepartments})

	filters := engine.Filters{
		Dimensions: map[string][]string{
			colCaseYear:   selectedYears,
			colDepartment: selectedDepartments,
		},
		Strict: true,
	}
	labels := map[string]string{"value": "Cantidad de Casos"}

	// Cases per year
	doc.Subheader("Casos por Año")
	byYear, err := engine.Execute(engine.Query{
		Intent:      "chart",
		Visualize:   "bar",
		Filters:     filters,
		GroupBy:     []string{colCaseYear},
		Measure:     colQuantity,
		Aggregation: "sum",
		SortBy:      "numeric_asc",
		Title:       "Casos por Año",
		Labels:      labels,
	}, view, engine.WithLogger(env.logger()))
	if err != nil {
		return nil, err
	}
	addChart(doc, byYear)

	// Cases per department
	doc.Subheader("Casos por Departamento")
	byDepartment, err := engine.Execute(engine.Query{
		Intent:      "chart",
		Visualize:   "barh",
		Filters:     filters,
		GroupBy:     []string{colDepartment},
		Measure:     colQuantity,
		Aggregation: "sum",
		SortBy:      "value_desc",
		Title:       "Casos por Departamento",
		Labels:      labels,
	}, view, engine.WithLogger(env.logger()))
	if err != nil {
		return nil, err
	}
	addChart(doc, byDepartment)

	// Filtered rows, newest first
	doc.Subheader("Datos Filtrados")
	filtered := engine.ApplyFilters(view, filters)
	doc.Table(engine.BuildRecordTable("", newestFirst(filtered), nil))
	return doc, nil
}

func addChart(doc *Document, r *engine.Result) {
	if r.ChartConfig == nil {
		doc.Info("Sin datos para los filtros seleccionados.")
		return
	}
	doc.Chart(r.ChartConfig)
}

func missingColumns(t loader.Table, columns ...string) []string {
	var missing []string
	for _, col := range columns {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// withCaseDates normalizes the case date and derives its year. Dates are
// parsed once; unparseable dates read as empty and carry no year.
func withCaseDates(view engine.RecordView) engine.RecordView {
	dates := make([]time.Time, view.Len())
	ok := make([]bool, view.Len())
	for i := range dates {
		dates[i], ok[i] = schema.ParseDate(view.Dimension(i, colCaseDate))
	}

	return engine.Derive(view).
		WithDimension(colCaseDate, func(_ engine.RecordView, i int) string {
			if !ok[i] {
				return ""
			}
			return dates[i].Format(time.DateOnly)
		}).
		WithDimension(colCaseYear, func(_ engine.RecordView, i int) string {
			if !ok[i] {
				return ""
			}
			return strconv.Itoa(dates[i].Year())
		})
}

// newestFirst orders view by case date, descending. Rows without a date go
// last and keep their order.
func newestFirst(view engine.RecordView) engine.RecordView {
	idx := rowsOf(view)
	sort.SliceStable(idx, func(a, b int) bool {
		da, db := view.Dimension(idx[a], colCaseDate), view.Dimension(idx[b], colCaseDate)
		if da == "" || db == "" {
			return da != "" && db == ""
		}
		return da > db
	})
	return engine.Subset(view, idx)
}
