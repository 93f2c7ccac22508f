package pages

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/tobgu/qframe"

	"github.com/lcap17/proyect-viernes/engine"
	"github.com/lcap17/proyect-viernes/loader"
)

// Control names of the movies page.
const (
	MoviesShowAll = "mostrar_todo"
	MoviesRow     = "fila"
	MoviesColumns = "columnas"
	MoviesYearMin = "anio_min"
	MoviesYearMax = "anio_max"
	MoviesTitle   = "pelicula"
	MoviesScore   = "puntuacion"
	MoviesUpdate  = "actualizar"
)

const (
	movieTitle = "Título"
	movieYear  = "Año"
	movieScore = "Puntuación"

	defaultScore = 5.0
)

// moviesSource is memoized: every render shares one immutable table, and
// score updates apply to a copy.
var moviesSource = loader.Source{Kind: loader.KindSeries, Name: "peliculas", Memoize: true, Series: []loader.Column{
	{Name: movieTitle, Values: []any{"Inception", "Titanic", "The Matrix", "Avengers", "Interstellar"}},
	{Name: movieYear, Values: []any{2010, 1997, 1999, 2012, 2014}},
	{Name: "Director", Values: []any{"Christopher Nolan", "James Cameron", "Lana Wachowski", "Joss Whedon", "Christopher Nolan"}},
	{Name: movieScore, Values: []any{8.8, 7.8, 8.7, 8.0, 8.6}},
}}

func renderMovies(ctx context.Context, env Env, c Controls) (*Document, error) {
	doc := &Document{Title: "Momento 2 - Actividad 4"}
	doc.Title1("Momento 2 - Actividad 4")
	doc.Header("Descripción de la actividad")
	doc.Markdown(`En esta actividad, el estudiante explorará la selección por etiqueta (.loc) y por posición (.iloc)
para acceder, filtrar y modificar datos dentro de una tabla. Utilizando un conjunto de datos de películas,
se desarrollará una interfaz interactiva que permitirá seleccionar filas y columnas,
aplicar filtros por año, y actualizar valores dinámicamente.`)
	doc.Header("Objetivos de aprendizaje")
	doc.Markdown(`- Comprender la diferencia entre .loc y .iloc para la selección de datos.
- Aprender a acceder a filas y columnas por etiquetas o posiciones.
- Aplicar filtros condicionales usando expresiones lógicas.
- Modificar valores dentro de una tabla de forma controlada.
- Desarrollar una interfaz visual que permita explorar y editar datos de manera interactiva.`)
	doc.Header("Solución")

	movies, err := env.loader().Load(ctx, moviesSource)
	if err != nil {
		return nil, err
	}
	view := movies.View()
	columns := movies.Columns()

	doc.Title1("🎬 Explorador de Películas con .loc y .iloc")

	// Full table
	showAll := checkbox(c, MoviesShowAll)
	doc.Control(Control{Type: ControlCheckbox, Name: MoviesShowAll, Label: "Mostrar todos los datos", Checked: showAll})
	if showAll {
		doc.Table(tableOf("", movies))
	}

	// Row by position
	doc.Subheader("🔢 Seleccionar una fila con .iloc")
	last := movies.Len() - 1
	row := intValue(c, MoviesRow, 0, 0, last)
	doc.Control(Control{
		Type: ControlNumber, Name: MoviesRow,
		Label: fmt.Sprintf("Índice de fila (0 a %d)", last),
		Value: strconv.Itoa(row), Min: 0, Max: float64(last), Step: 1,
	})
	doc.Record("Fila seleccionada:", recordFields(view, columns, row))

	// Columns by label
	doc.Subheader("📌 Seleccionar columnas específicas con .loc")
	selected := only(multiValues(c, MoviesColumns, columns), columns)
	doc.Control(Control{
		Type: ControlMultiSelect, Name: MoviesColumns, Label: "Selecciona las columnas a mostrar",
		Options: columns, Values: selected,
	})
	doc.Table(engine.BuildRecordTable("", view, selected))

	// Year range
	doc.Subheader("🔍 Filtrar películas por año con .loc")
	lo, hi := int(engine.MinMeasure(view, movieYear)), int(engine.MaxMeasure(view, movieYear))
	yearMin := intValue(c, MoviesYearMin, lo, lo, hi)
	yearMax := intValue(c, MoviesYearMax, hi, yearMin, hi)
	doc.Control(Control{Type: ControlSlider, Name: MoviesYearMin, Label: "Año mínimo",
		Value: strconv.Itoa(yearMin), Min: float64(lo), Max: float64(hi), Step: 1})
	doc.Control(Control{Type: ControlSlider, Name: MoviesYearMax, Label: "Año máximo",
		Value: strconv.Itoa(yearMax), Min: float64(yearMin), Max: float64(hi), Step: 1})

	inRange, err := movies.Filter(qframe.And(
		qframe.Filter{Column: movieYear, Comparator: ">=", Arg: yearMin},
		qframe.Filter{Column: movieYear, Comparator: "<=", Arg: yearMax},
	))
	if err != nil {
		return nil, err
	}
	doc.Text(fmt.Sprintf("Películas entre %d y %d:", yearMin, yearMax))
	doc.Table(tableOf("", inRange))

	// Score update
	doc.Subheader("✏️ Modificar puntuación de una película")
	titles := engine.UniqueValues(view, movieTitle)
	title := c.Get(MoviesTitle)
	if !slices.Contains(titles, title) {
		title = titles[0]
	}
	score := floatValue(c, MoviesScore, defaultScore, 0, 10, 0.1)
	doc.Control(Control{Type: ControlSelect, Name: MoviesTitle, Label: "Selecciona película", Options: titles, Value: title})
	doc.Control(Control{Type: ControlSlider, Name: MoviesScore, Label: "Nueva puntuación",
		Value: decimal(score), Min: 0, Max: 10, Step: 0.1})
	doc.Control(Control{Type: ControlButton, Name: MoviesUpdate, Label: "Actualizar puntuación"})

	if c.Has(MoviesUpdate) {
		idx := slices.IndexFunc(rowsOf(view), func(i int) bool { return view.Dimension(i, movieTitle) == title })
		updated, err := movies.Set(idx, movieScore, score)
		if err != nil {
			return nil, err
		}
		doc.Success(fmt.Sprintf("Puntuación de '%s' actualizada a %s", title, decimal(score)))
		doc.Table(tableOf("", updated))
	}
	return doc, nil
}

func rowsOf(view engine.RecordView) []int {
	out := make([]int, view.Len())
	for i := range out {
		out[i] = i
	}
	return out
}

// recordFields lists the values of row i. Numbers print at full precision.
func recordFields(view engine.RecordView, columns []string, i int) []Field {
	fields := make([]Field, 0, len(columns))
	for _, col := range columns {
		value := view.Dimension(i, col)
		if engine.IsMeasure(view, col) {
			value = formatFloat(view.Measure(i, col))
		}
		fields = append(fields, Field{Name: col, Value: value})
	}
	return fields
}
