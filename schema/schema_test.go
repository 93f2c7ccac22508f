package schema

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tobgu/qframe"

	"github.com/lcap17/proyect-viernes/engine"
	"github.com/lcap17/proyect-viernes/helpers"
)

// ============================================================================
// FIXTURES
// ============================================================================

const studentsCSV = `nombre,edad,promedio,ciudad,anio
Ana,18,4.5,Bogotá,2019
Luis,19,3.2,Cali,2020
Marta,20,4.1,Bogotá,2019
Carlos,21,2.9,Medellín,2020
Sofía,22,3.8,Cali,2019
Pedro,23,4.9,Bogotá,2020
Laura,24,3.5,Medellín,2019
Jorge,25,4.0,Cali,2020
María,26,3.9,Bogotá,2019
Andrés,27,4.2,Cali,2020
Valentina,28,3.1,Medellín,2019
Lucía,29,4.7,Bogotá,2020
`

func studentsFrame(t *testing.T) qframe.QFrame {
	t.Helper()
	qf := qframe.ReadCSV(strings.NewReader(studentsCSV))
	require.NoError(t, qf.Err)
	return qf
}

// ============================================================================
// DISCOVERY
// ============================================================================

func TestDiscover_ClassifiesColumns(t *testing.T) {
	cfg, err := Discover(helpers.ViewOf(studentsFrame(t)))
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Rows)
	assert.Equal(t, []string{"ciudad", "anio"}, cfg.DimensionKeys())
	assert.Equal(t, []string{"edad", "promedio"}, cfg.MeasureKeys())
	assert.Equal(t, "edad", cfg.GetDefaultMeasure())

	require.Len(t, cfg.SkippedColumns, 1)
	assert.Equal(t, "nombre", cfg.SkippedColumns[0].Column)
	assert.True(t, cfg.SkippedColumns[0].Recoverable)

	anio, ok := cfg.Dimension("anio")
	require.True(t, ok)
	assert.True(t, anio.IsTemporal)
	assert.Equal(t, "yyyy", anio.TemporalFormat)

	ciudad, ok := cfg.Dimension("ciudad")
	require.True(t, ok)
	assert.Equal(t, "low", ciudad.CardinalityHint)
	assert.Equal(t, []string{"Bogotá", "Cali", "Medellín"}, ciudad.SampleValues)
}

func TestDiscover_WithRecovery(t *testing.T) {
	opts := DefaultDiscoverOptions()
	opts.RecoverColumns = []string{"NOMBRE"}
	cfg, err := Discover(helpers.ViewOf(studentsFrame(t)), opts)
	require.NoError(t, err)
	assert.Contains(t, cfg.DimensionKeys(), "nombre")
	assert.Empty(t, cfg.SkippedColumns)
}

func TestDiscover_DateColumnsAreTemporal(t *testing.T) {
	view := engine.NewSliceView([]engine.Record{
		{Dimensions: map[string]string{"FECHA HECHO": "15/03/2019"}},
		{Dimensions: map[string]string{"FECHA HECHO": "01/07/2020"}},
		{Dimensions: map[string]string{"FECHA HECHO": ""}},
	})
	cfg, err := Discover(view)
	require.NoError(t, err)
	d, ok := cfg.Dimension("FECHA HECHO")
	require.True(t, ok)
	assert.True(t, d.IsTemporal)
	assert.Equal(t, 1, d.NullCount)
	assert.Equal(t, "FECHA HECHO", d.DisplayName)
}

func TestDiscover_NoColumns(t *testing.T) {
	_, err := Discover(engine.NewSliceView(nil))
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2020-03-15", time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"15/03/2020", time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"03/25/2020", time.Date(2020, 3, 25, 0, 0, 0, 0, time.UTC), true},
		{"2020-03-15 10:30:00", time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"ayer", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ingreso Mensual", toDisplayName("ingreso_mensual"))
	assert.Equal(t, "CANTIDAD", toDisplayName("CANTIDAD"))
	assert.Equal(t, "año de publicación", toDisplayName("año de publicación"))
}

// ============================================================================
// PROFILE
// ============================================================================

func TestStructure(t *testing.T) {
	s, err := Structure(studentsFrame(t))
	require.NoError(t, err)
	assert.Equal(t, 12, s.Rows)
	require.Len(t, s.Columns, 5)
	assert.Equal(t, "edad", s.Columns[1].Name)
	assert.Equal(t, "int", s.Columns[1].Type)
	assert.Equal(t, "float", s.Columns[2].Type)
	assert.Equal(t, 12, s.Columns[0].NonNullCount)

	text := s.Text()
	assert.Contains(t, text, "Tabla: 12 filas, 5 columnas")
	assert.Contains(t, text, "promedio")
	assert.Contains(t, text, "12 no nulos")
}

func TestDescribe(t *testing.T) {
	td, err := Describe(studentsFrame(t))
	require.NoError(t, err)

	stats := make(map[string][]string)
	for _, row := range td.Rows {
		stats[row[0]] = row[1:]
	}
	require.Len(t, td.Rows, 11)

	// columns: nombre, edad, promedio, ciudad, anio
	assert.Equal(t, "12", stats["count"][1])
	assert.Equal(t, "23.5", stats["mean"][1])
	assert.Equal(t, "3.60555", stats["std"][1])
	assert.Equal(t, "18", stats["min"][1])
	assert.Equal(t, "20.75", stats["25%"][1])
	assert.Equal(t, "23.5", stats["50%"][1])
	assert.Equal(t, "26.25", stats["75%"][1])
	assert.Equal(t, "29", stats["max"][1])
	assert.Equal(t, "", stats["top"][1])

	assert.Equal(t, "3", stats["unique"][3])
	assert.Equal(t, "Bogotá", stats["top"][3])
	assert.Equal(t, "5", stats["freq"][3])
	assert.Equal(t, "", stats["mean"][3])
}

func TestQuantile(t *testing.T) {
	assert.Equal(t, 2.5, Quantile([]float64{1, 2, 3, 4}, 0.5))
	assert.Equal(t, 7.0, Quantile([]float64{7}, 0.75))
}
