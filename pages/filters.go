package pages

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/lcap17/proyect-viernes/census"
	"github.com/lcap17/proyect-viernes/engine"
)

const (
	colabLink  = "https://colab.research.google.com/drive/1KMgNIzFmyDXsLEAhNAecdq3btaVF5iW0?usp=sharing"
	panelLabel = "🎛️ Filtros"
)

func renderFilters(_ context.Context, env Env, c Controls) (*Document, error) {
	doc := &Document{Title: "Momento 2 - Actividad 3"}
	doc.Title1("Momento 2 - Actividad 3")
	doc.Header("Descripción de la actividad")
	doc.Markdown(`Esta actividad tiene como propósito familiarizar al estudiante con las estructuras de datos fundamentales
a través de un enfoque práctico y contextualizado. Se utiliza un conjunto de datos simulado
que representa características de personas en diferentes regiones de Colombia,
permitiendo aplicar filtros dinámicos mediante una interfaz interactiva. El estudiante podrá
manipular datos, aplicar condiciones y observar resultados en tiempo real.`)
	doc.Header("Objetivos de aprendizaje")
	doc.Markdown(`- Comprender los tipos de datos básicos y su uso.
- Identificar y aplicar estructuras de datos como listas, diccionarios y fechas.
- Utilizar condicionales y operaciones lógicas para filtrar y procesar información.
- Diseñar interfaces interactivas para la visualización de datos.
- Interpretar y analizar datos simulados mediante filtros dinámicos.`)
	doc.Header("Solución")
	doc.Title1("Análisis de Estudiantes en Colombia")
	doc.Subheader("Enlace al Notebook de Google Colab:")
	doc.Link("Haz clic aquí para acceder al Notebook de Google Colab", colabLink)

	dataset := census.Generate(census.NewRand(env.Seed), census.DefaultSize)
	params := census.FromValues(c)
	view := census.Apply(dataset, params)
	env.logger().Debug("census filtered",
		slog.Int("enabled", params.EnabledCount()),
		slog.Int("rows", view.Count()),
	)

	doc.Title1("📊 Aplicación de Filtros Dinámicos")
	doc.Markdown("Filtra los datos usando los controles en la barra lateral.")
	for _, ctl := range FilterControls(params) {
		doc.Control(ctl)
	}

	doc.Markdown(fmt.Sprintf("### Resultados: %d registros encontrados", view.Count()))
	doc.Table(engine.BuildRecordTable("", view.RecordView(), nil))
	return doc, nil
}

// FilterControls describes the filter panel for params: one checkbox per
// predicate, in declared order, followed by that predicate's parameters.
func FilterControls(params census.FilterParameters) []Control {
	var out []Control
	for _, pr := range census.Predicates() {
		out = append(out, Control{
			Type:    ControlCheckbox,
			Name:    pr.Name,
			Label:   pr.Label,
			Checked: pr.Enabled(params),
			Panel:   panelLabel,
		})
		out = append(out, parameterControls(pr.Name, params)...)
	}
	return out
}

func parameterControls(name string, p census.FilterParameters) []Control {
	switch name {
	case census.KeyAge:
		return []Control{{
			Type: ControlRange, Label: "Selecciona el rango de edad", Panel: panelLabel,
			MinName: census.KeyAgeMin, MaxName: census.KeyAgeMax,
			Values: []string{strconv.Itoa(p.Age.Min), strconv.Itoa(p.Age.Max)},
			Min:    census.MinAge, Max: census.MaxAge, Step: 1,
		}}
	case census.KeyMunicipality:
		return []Control{{
			Type: ControlMultiSelect, Name: census.KeyMunicipalSel, Label: "Selecciona municipios", Panel: panelLabel,
			Options: census.Municipalities(), Values: p.Municipality.Selected,
		}}
	case census.KeyIncome:
		return []Control{{
			Type: ControlSlider, Name: census.KeyIncomeMin, Label: "Ingreso mínimo (COP)", Panel: panelLabel,
			Value: strconv.Itoa(p.Income.Threshold),
			Min:   census.MinIncome, Max: census.MaxIncome, Step: census.IncomeStep,
		}}
	case census.KeyOccupation:
		return []Control{{
			Type: ControlMultiSelect, Name: census.KeyOccupSel, Label: "Selecciona ocupaciones", Panel: panelLabel,
			Options: census.Occupations, Values: p.Occupation.Selected,
		}}
	case census.KeyName:
		return []Control{{
			Type: ControlText, Name: census.KeyNameQuery, Label: "Buscar en nombre", Panel: panelLabel,
			Value: p.Name.Query,
		}}
	case census.KeyYear:
		years := make([]string, 0, census.LastYear-census.FirstYear+1)
		for y := census.FirstYear; y <= census.LastYear; y++ {
			years = append(years, strconv.Itoa(y))
		}
		return []Control{{
			Type: ControlSelect, Name: census.KeyYearValue, Label: "Selecciona el año", Panel: panelLabel,
			Options: years, Value: strconv.Itoa(p.BirthYear.Year),
		}}
	case census.KeyInternet:
		value := "no"
		if p.Internet.HasAccess {
			value = "si"
		}
		return []Control{{
			Type: ControlRadio, Name: census.KeyInternetVal, Label: "¿Tiene acceso a internet?", Panel: panelLabel,
			Options: []string{"si", "no"}, Value: value,
		}}
	case census.KeyDates:
		return []Control{
			{Type: ControlDate, Name: census.KeyDateStart, Label: "Fecha inicio", Panel: panelLabel, Value: p.BirthDates.Start.String()},
			{Type: ControlDate, Name: census.KeyDateEnd, Label: "Fecha fin", Panel: panelLabel, Value: p.BirthDates.End.String()},
		}
	}
	return nil
}
