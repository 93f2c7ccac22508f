package helpers

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tobgu/qframe"
	"github.com/tobgu/qframe/config/newqf"
	"github.com/tobgu/qframe/types"

	"github.com/lcap17/proyect-viernes/engine"
)

func strPtr(s string) *string { return &s }

func studentsFrame() qframe.QFrame {
	return qframe.New(map[string]types.DataSlice{
		"nombre":   []*string{strPtr("Ana"), nil, strPtr("Luis")},
		"edad":     []int{20, 22, 19},
		"promedio": []float64{4.5, math.NaN(), 3.25},
		"becado":   []bool{true, false, true},
	}, newqf.ColumnOrder("nombre", "edad", "promedio", "becado"))
}

// ============================================================================
// FRAME VIEW
// ============================================================================

func TestFrameView_ClassifiesColumns(t *testing.T) {
	v, err := NewFrameView(studentsFrame())
	require.NoError(t, err)

	assert.Equal(t, 3, v.Len())
	assert.Equal(t, []string{"nombre", "edad", "promedio", "becado"}, v.Columns())
	assert.Equal(t, []string{"nombre", "becado"}, v.DimensionKeys())
	assert.Equal(t, []string{"edad", "promedio"}, v.MeasureKeys())
}

func TestFrameView_ReadsValues(t *testing.T) {
	v, err := NewFrameView(studentsFrame())
	require.NoError(t, err)

	assert.Equal(t, "Ana", v.Dimension(0, "nombre"))
	assert.Equal(t, "", v.Dimension(1, "nombre"))
	assert.Equal(t, "true", v.Dimension(2, "becado"))
	assert.Equal(t, "22", v.Dimension(1, "edad"))
	assert.Equal(t, 22.0, v.Measure(1, "edad"))
	assert.True(t, math.IsNaN(v.Measure(1, "promedio")))
	assert.True(t, math.IsNaN(v.Measure(0, "nombre")))
	assert.Equal(t, "", v.Dimension(7, "nombre"))
}

func TestFrameView_WorksWithEngine(t *testing.T) {
	view := ViewOf(studentsFrame())
	out := engine.ApplyFilters(view, engine.Filters{Ranges: map[string]engine.Range{"promedio": engine.AtLeast(4)}})
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "Ana", out.Dimension(0, "nombre"))

	td := engine.BuildRecordTable("", view, nil)
	assert.Equal(t, []string{"", "22", "", "false"}, td.Rows[1])
}

func TestFrameView_PropagatesFrameError(t *testing.T) {
	bad := qframe.ReadCSV(strings.NewReader("a,b\n1\n"))
	if bad.Err == nil {
		t.Skip("reader accepted ragged input")
	}
	_, err := NewFrameView(bad)
	assert.Error(t, err)
	assert.Equal(t, 0, ViewOf(bad).Len())
}

// ============================================================================
// CSV
// ============================================================================

func TestRewriteHeader_StripUpper(t *testing.T) {
	in := []byte("\ufeff departamento , Municipio,cantidad\nValle,Cali,2\n")
	out, err := RewriteHeader(in, StripUpper)
	require.NoError(t, err)
	assert.Equal(t, "DEPARTAMENTO,MUNICIPIO,CANTIDAD\nValle,Cali,2\n", string(out))
}

func TestRewriteHeader_EmptyInput(t *testing.T) {
	out, err := RewriteHeader(nil, StripUpper)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestWriteResultCSV_Chart(t *testing.T) {
	res := &engine.Result{ChartConfig: &engine.ChartConfig{
		XAxis: "AÑO", YAxis: "Cantidad de Casos",
		Series: []engine.ChartSeries{{Data: []engine.ChartPoint{{Label: "2019", Value: 5}, {Label: "2020", Value: 2.5}}}},
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteResultCSV(&buf, res))
	assert.Equal(t, "AÑO,Cantidad de Casos\n2019,5\n2020,2.50\n", buf.String())
}

func TestWriteResultCSV_Table(t *testing.T) {
	res := &engine.Result{TableData: &engine.TableData{
		Columns: []engine.Column{{Label: "nombre"}, {Label: "edad"}},
		Rows:    [][]string{{"Ana", "20"}},
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteResultCSV(&buf, res))
	assert.Equal(t, "nombre,edad\nAna,20\n", buf.String())
}

func TestWriteResultCSV_Metrics(t *testing.T) {
	res := &engine.Result{Metrics: []engine.Metric{{Label: "Municipios", Value: "12"}}}
	var buf bytes.Buffer
	require.NoError(t, WriteResultCSV(&buf, res))
	assert.Equal(t, "Indicador,Valor\nMunicipios,12\n", buf.String())
}
