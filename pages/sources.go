package pages

import (
	"context"

	"github.com/lcap17/proyect-viernes/loader"
)

// DefaultRemoteURL is the remote CSV shown when Env.RemoteURL is empty.
const DefaultRemoteURL = "https://people.sc.fsu.edu/~jburkardt/data/csv/airtravel.csv"

// DefaultDatabase is the embedded SQLite file used when Env.Database is empty.
const DefaultDatabase = "estudiantes.db"

var (
	booksSource = loader.Source{Kind: loader.KindSeries, Name: "libros", Series: []loader.Column{
		{Name: "título", Values: []any{"1984", "Cien Años de Soledad", "Don Quijote", "El Principito"}},
		{Name: "autor", Values: []any{"George Orwell", "Gabriel García Márquez", "Miguel de Cervantes", "Antoine de Saint-Exupéry"}},
		{Name: "año de publicación", Values: []any{1949, 1967, 1605, 1943}},
		{Name: "género", Values: []any{"Distopía", "Realismo Mágico", "Novela", "Fábula"}},
	}}

	citiesSource = loader.Source{
		Kind:    loader.KindRecords,
		Name:    "ciudades",
		Columns: []string{"nombre", "población", "país"},
		Records: []map[string]any{
			{"nombre": "Tokio", "población": 37400068, "país": "Japón"},
			{"nombre": "Delhi", "población": 28514000, "país": "India"},
			{"nombre": "Shanghái", "población": 25582000, "país": "China"},
		},
	}

	productsSource = loader.Source{
		Kind:    loader.KindRows,
		Name:    "productos",
		Columns: []string{"Producto", "Precio", "Stock"},
		Rows: [][]any{
			{"Laptop", 1200, 10},
			{"Teclado", 25, 50},
			{"Mouse", 15, 75},
		},
	}

	peopleSource = loader.Source{Kind: loader.KindSeries, Name: "personas", Series: []loader.Column{
		{Name: "Nombre", Values: []any{"Ana", "Luis", "Marta", "Carlos"}},
		{Name: "Edad", Values: []any{25, 30, 22, 28}},
		{Name: "Ciudad", Values: []any{"Madrid", "México", "Bogotá", "Buenos Aires"}},
	}}

	matrixSource = loader.Source{
		Kind:    loader.KindMatrix,
		Name:    "matriz",
		Columns: []string{"Columna A", "Columna B", "Columna C"},
		Matrix:  [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}},
	}
)

func renderSources(ctx context.Context, env Env, _ Controls) (*Document, error) {
	l := env.loader()
	doc := &Document{Title: "Momento 2 - Actividad 1"}

	doc.Title1("Momento 2 - Actividad 1")
	doc.Header("Descripción de la actividad")
	doc.Markdown(`En esta actividad, se exploran múltiples fuentes de datos y se transforman en tablas,
que luego se visualizan en el tablero. Se trabaja con estructuras como listas,
diccionarios, archivos locales (CSV, Excel, JSON), bases de datos (SQLite y Firebase), así como datos remotos
y matrices numéricas. El propósito es familiarizarse con distintas formas de estructurar, importar y
mostrar datos dentro de una interfaz interactiva.`)
	doc.Header("Objetivos de aprendizaje")
	doc.Markdown(`- Comprender la estructura y utilidad de una tabla como contenedor de datos tabulares.
- Crear tablas desde diferentes fuentes: listas, diccionarios, archivos, APIs y bases de datos.
- Integrar bases de datos como SQLite y Firebase para recuperación y visualización de datos.
- Manejar errores comunes al cargar archivos o conectarse a servicios externos.
- Usar el tablero como herramienta de visualización y exploración de datos en tiempo real.
- Fomentar buenas prácticas de manipulación y visualización de datos.`)

	doc.Header("Solución")
	doc.Title1("Actividad 1 - Creación de tablas")
	doc.Text("Objetivo: Familiarizarse con la creación de tablas y mostrarlas en el tablero.")

	remote := env.RemoteURL
	if remote == "" {
		remote = DefaultRemoteURL
	}
	database := env.Database
	if database == "" {
		database = DefaultDatabase
	}

	sections := []struct {
		header string
		src    loader.Source
	}{
		{"1. Tabla de Libros", booksSource},
		{"2. Información de Ciudades", citiesSource},
		{"3. Productos en Inventario", productsSource},
		{"4. Datos de Personas", peopleSource},
		{"5. Datos desde CSV", loader.Source{Kind: loader.KindCSV, Path: "data.csv"}},
		{"6. Datos desde Excel", loader.Source{Kind: loader.KindExcel, Path: "data.xlsx"}},
		{"7. Datos de Usuarios desde JSON", loader.Source{Kind: loader.KindJSON, Path: "data.json"}},
		{"8. Datos desde URL", loader.Source{Kind: loader.KindURL, URL: remote}},
		{"9. Datos desde SQLite", loader.StudentsSource(database)},
		{"10. Datos desde matriz numérica", matrixSource},
	}
	for _, s := range sections {
		doc.Header(s.header)
		t, warn := l.LoadOrWarn(ctx, s.src)
		if warn != nil {
			doc.Warning(warn.Message)
			continue
		}
		doc.Table(tableOf("", t))
	}

	doc.Header("11. Datos desde FireBase (opcional)")
	doc.Info("Esta sección requiere tener una base de datos en FireBase.")
	doc.Header("12. Datos desde MongoDB (opcional)")
	doc.Info("Esta sección requiere tener una base de datos MongoDB en ejecución.")
	return doc, nil
}
