package pages

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/tobgu/qframe"
	"github.com/tobgu/qframe/types"

	"github.com/lcap17/proyect-viernes/loader"
	"github.com/lcap17/proyect-viernes/schema"
)

// Control names of the students page.
const (
	StudentsColumns    = "columnas"
	StudentsMinAverage = "promedio_min"
)

const (
	studentsFile       = "estudiantes_colombia.csv"
	defaultMinAverage  = 4.0
	averageColumn      = "promedio"
	studentsPreviewLen = 5
)

var defaultStudentColumns = []string{"nombre", "edad", "promedio"}

func renderStudents(ctx context.Context, env Env, c Controls) (*Document, error) {
	doc := &Document{Title: "Momento 2 - Actividad 2"}
	doc.Title1("Momento 2 - Actividad 2")
	doc.Header("Descripción de la actividad")
	doc.Markdown(`Esta actividad tiene como propósito realizar un análisis exploratorio de datos sobre estudiantes en Colombia.
A partir de un archivo CSV, se carga información de estudiantes y se ofrece una interfaz interactiva para
visualizar, filtrar y explorar distintos aspectos del conjunto de datos, como sus promedios, edades y nombres.
La aplicación también permite generar resúmenes estadísticos y estructurales del conjunto de datos.`)
	doc.Header("Objetivos de aprendizaje")
	doc.Markdown(`- Importar y visualizar datos desde archivos CSV en una aplicación interactiva.
- Aplicar filtros dinámicos para seleccionar columnas específicas y filtrar por valores como el promedio académico.
- Utilizar secciones desplegables, tablas y deslizadores para mejorar la experiencia de análisis.
- Interpretar resúmenes estadísticos y estructurales de un conjunto de datos.
- Fomentar habilidades básicas en análisis exploratorio de datos.`)
	doc.Header("Solución")
	doc.Title1("Análisis de Estudiantes en Colombia")

	src := loader.Source{Kind: loader.KindCSV, Path: studentsFile, Memoize: true}
	students, warn := env.loader().LoadOrWarn(ctx, src, loader.WithStringColumns("nombre"))
	if warn != nil {
		doc.Error(warn.Message)
	}
	if students.Empty() {
		if warn == nil {
			doc.Warning(fmt.Sprintf("El archivo '%s' no contiene filas de datos.", studentsFile))
		} else {
			doc.Warning("No se pudieron cargar los datos.")
		}
		return doc, nil
	}

	doc.Subheader("Primeras 5 filas del dataset")
	doc.Table(tableOf("", students.Head(studentsPreviewLen)))
	doc.Subheader("Últimas 5 filas del dataset")
	doc.Table(tableOf("", students.Tail(studentsPreviewLen)))

	doc.Expander("📋 Resumen de estructura", func() {
		summary, err := schema.Structure(students.Frame())
		if err != nil {
			doc.Error(err.Error())
			return
		}
		doc.Code(summary.Text())
	})
	doc.Expander("📊 Resumen estadístico", func() {
		stats, err := schema.Describe(students.Frame())
		if err != nil {
			doc.Error(err.Error())
			return
		}
		doc.Table(stats)
	})

	doc.Subheader("Seleccionar columnas específicas")
	columns := students.Columns()
	defaults := only(defaultStudentColumns, columns)
	selected := only(multiValues(c, StudentsColumns, defaults), columns)
	doc.Control(Control{
		Type:    ControlMultiSelect,
		Name:    StudentsColumns,
		Label:   "Selecciona las columnas que deseas visualizar:",
		Options: columns,
		Values:  selected,
	})
	if len(selected) > 0 {
		doc.Table(tableOf("", students.Select(selected...)))
	}

	doc.Subheader("Filtrar estudiantes por promedio mínimo")
	minAverage := floatValue(c, StudentsMinAverage, defaultMinAverage, 0, 5, 0.1)
	doc.Control(Control{
		Type:  ControlSlider,
		Name:  StudentsMinAverage,
		Label: "Promedio mínimo:",
		Value: decimal(minAverage),
		Min:   0, Max: 5, Step: 0.1,
	})

	filtered, err := atLeast(students, averageColumn, minAverage)
	if err != nil {
		doc.Error(err.Error())
		return doc, nil
	}
	doc.Text(fmt.Sprintf("Estudiantes con promedio mayor o igual a %s:", decimal(minAverage)))
	doc.Table(tableOf("", filtered))
	return doc, nil
}

// atLeast keeps the rows whose numeric column is >= threshold. Missing
// values never pass.
func atLeast(t loader.Table, column string, threshold float64) (loader.Table, error) {
	if !slices.Contains(t.Columns(), column) {
		return loader.Table{}, fmt.Errorf("columna '%s' no encontrada", column)
	}
	var arg any
	switch t.ColumnType(column) {
	case types.Int:
		arg = int(math.Ceil(threshold))
	case types.Float:
		arg = threshold
	default:
		return loader.Table{}, fmt.Errorf("la columna '%s' no es numérica", column)
	}
	return t.Filter(qframe.Filter{Column: column, Comparator: ">=", Arg: arg})
}
