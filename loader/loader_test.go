package loader

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tobgu/qframe/types"
	"github.com/xuri/excelize/v2"

	"github.com/lcap17/proyect-viernes/helpers"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestLoader(t *testing.T) (*Loader, *Metrics) {
	t.Helper()
	m := NewMetrics(prometheus.NewRegistry())
	cache, err := NewCache(4, m, nil)
	require.NoError(t, err)
	return &Loader{Metrics: m, Cache: cache, Timeout: 5 * time.Second}, m
}

type fakeS3 struct {
	body   string
	err    error
	bucket string
	key    string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket, f.key = *in.Bucket, *in.Key
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

// ---------------------------------------------------------------------------
// Sources
// ---------------------------------------------------------------------------

func TestParseSource(t *testing.T) {
	tests := []struct {
		raw  string
		want Source
	}{
		{"pages/data.csv", Source{Kind: KindCSV, Path: "pages/data.csv"}},
		{"data.XLSX", Source{Kind: KindExcel, Path: "data.XLSX"}},
		{"data.json", Source{Kind: KindJSON, Path: "data.json"}},
		{"https://example.com/a.csv", Source{Kind: KindURL, URL: "https://example.com/a.csv"}},
		{"s3://bucket/dir/a.csv", Source{Kind: KindS3, URL: "s3://bucket/dir/a.csv"}},
		{"sqlite://estudiantes.db", Source{Kind: KindSQLite, Path: "estudiantes.db", Query: "SELECT * FROM alumnos"}},
		{"sqlite://x.db?query=SELECT+1", Source{Kind: KindSQLite, Path: "x.db", Query: "SELECT 1"}},
		{"mongodb://localhost:27017", Source{Kind: KindMongoDB, URL: "mongodb://localhost:27017"}},
		{"firebase://project", Source{Kind: KindFirebase, URL: "firebase://project"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseSource(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSource_Postgres(t *testing.T) {
	src, err := ParseSource("postgres://user:secret@db:5432/app?sslmode=disable&query=SELECT+*+FROM+t")
	require.NoError(t, err)
	assert.Equal(t, KindPostgres, src.Kind)
	assert.Equal(t, "SELECT * FROM t", src.Query)
	assert.Equal(t, "postgres://user:secret@db:5432/app?sslmode=disable", src.DSN)
	assert.NotContains(t, src.String(), "secret")
}

func TestParseSource_Errors(t *testing.T) {
	for _, raw := range []string{"", "data.txt", "s3://bucket", "ftp://x/y", "postgres://db/app"} {
		_, err := ParseSource(raw)
		assert.Error(t, err, raw)
	}
}

// ---------------------------------------------------------------------------
// Literal sources
// ---------------------------------------------------------------------------

func TestLoad_Literals(t *testing.T) {
	l := &Loader{}
	ctx := context.Background()

	books, err := l.Load(ctx, Source{Kind: KindSeries, Series: []Column{
		{Name: "título", Values: []any{"1984", "Don Quijote"}},
		{Name: "año de publicación", Values: []any{1949, 1605}},
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"título", "año de publicación"}, books.Columns())
	assert.Equal(t, types.DataType(types.Int), books.ColumnType("año de publicación"))

	cities, err := l.Load(ctx, Source{
		Kind:    KindRecords,
		Columns: []string{"nombre", "población"},
		Records: []map[string]any{
			{"nombre": "Tokio", "población": 37400068},
			{"nombre": "Delhi", "población": 28514000},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, cities.Len())
	assert.Equal(t, "Delhi", cities.View().Dimension(1, "nombre"))

	products, err := l.Load(ctx, Source{
		Kind:    KindRows,
		Columns: []string{"Producto", "Precio"},
		Rows:    [][]any{{"Laptop", 1200}, {"Mouse", 15.5}},
	})
	require.NoError(t, err)
	assert.Equal(t, types.DataType(types.Float), products.ColumnType("Precio"))

	matrix, err := l.Load(ctx, Source{
		Kind:    KindMatrix,
		Columns: []string{"Columna A", "Columna B", "Columna C"},
		Matrix:  [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}},
	})
	require.NoError(t, err)
	assert.Equal(t, types.DataType(types.Int), matrix.ColumnType("Columna B"))
	assert.Equal(t, 8.0, matrix.View().Measure(2, "Columna B"))
}

func TestLoad_LiteralShapeErrors(t *testing.T) {
	l := &Loader{}
	_, err := l.Load(context.Background(), Source{
		Kind:    KindRows,
		Columns: []string{"a", "b"},
		Rows:    [][]any{{1}},
	})
	require.Error(t, err)
	assert.Equal(t, KindGeneric, Classify(err))
}

func TestInferSlice(t *testing.T) {
	assert.Equal(t, []int{1, 2}, inferSlice([]any{1, int64(2)}))
	assert.IsType(t, []float64{}, inferSlice([]any{1, nil}))
	assert.Equal(t, []bool{true, false}, inferSlice([]any{true, false}))
	assert.IsType(t, []*string{}, inferSlice([]any{"a", 1}))
	assert.IsType(t, []*string{}, inferSlice([]any{nil, nil}))
}

// ---------------------------------------------------------------------------
// Files
// ---------------------------------------------------------------------------

func TestLoadOrWarn_MissingFile(t *testing.T) {
	l, m := newTestLoader(t)
	src := Source{Kind: KindCSV, Path: filepath.Join(t.TempDir(), "data.csv")}

	table, warn := l.LoadOrWarn(context.Background(), src)
	require.NotNil(t, warn)
	assert.True(t, table.Empty())
	assert.Equal(t, KindMissingFile, warn.Kind)
	assert.Equal(t, "Archivo 'data.csv' no encontrado.", warn.Message)
	assert.True(t, errors.Is(warn, ErrMissingFile))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoadsTotal(KindCSV, "missing_file")))

	_, err := l.Load(context.Background(), src)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, KindMissingFile, le.Kind)
}

func TestLoad_CSVWithOptions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "casos.csv", " fecha hecho ,departamento,cantidad,codigo\n2020-01-02,ANTIOQUIA,3,05\n2021-03-04,VALLE,2,76\n")

	l := &Loader{BaseDir: dir}
	table, err := l.Load(context.Background(), Source{Kind: KindCSV, Path: "casos.csv"},
		WithHeaderTransform(helpers.StripUpper),
		WithStringColumns("CODIGO"),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"FECHA HECHO", "DEPARTAMENTO", "CANTIDAD", "CODIGO"}, table.Columns())
	assert.Equal(t, types.DataType(types.Int), table.ColumnType("CANTIDAD"))
	assert.Equal(t, "05", table.View().Dimension(0, "CODIGO"))
}

func TestLoad_EmptyCSVIsGenericFailure(t *testing.T) {
	path := writeFile(t, t.TempDir(), "vacio.csv", "")
	_, warn := (&Loader{}).LoadOrWarn(context.Background(), Source{Kind: KindCSV, Path: path})
	require.NotNil(t, warn)
	assert.Equal(t, KindGeneric, warn.Kind)
	assert.True(t, strings.HasPrefix(warn.Message, "Error al cargar los datos"))
}

func TestLoad_HeaderOnlyCSVIsEmptyTable(t *testing.T) {
	path := writeFile(t, t.TempDir(), "encabezado.csv", "nombre,edad\n")
	table, warn := (&Loader{}).LoadOrWarn(context.Background(), Source{Kind: KindCSV, Path: path})
	assert.Nil(t, warn)
	assert.True(t, table.Empty())
	assert.Equal(t, 0, table.Len())
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "data.json", `[{"usuario":"ana","edad":30},{"usuario":"luis","edad":41}]`)
	table, err := (&Loader{}).Load(context.Background(), Source{Kind: KindJSON, Path: path})
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.ElementsMatch(t, []string{"usuario", "edad"}, table.Columns())
}

func TestLoad_Excel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Producto", "Stock"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Laptop", 10}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"Mouse", 75}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := (&Loader{}).Load(context.Background(), Source{Kind: KindExcel, Path: path})
	require.NoError(t, err)
	assert.Equal(t, []string{"Producto", "Stock"}, table.Columns())
	assert.Equal(t, 85.0, table.View().Measure(0, "Stock")+table.View().Measure(1, "Stock"))

	_, warn := (&Loader{}).LoadOrWarn(context.Background(), Source{Kind: KindExcel, Path: path + ".missing.xlsx"})
	require.NotNil(t, warn)
	assert.Equal(t, KindMissingFile, warn.Kind)
}

// ---------------------------------------------------------------------------
// Remote and database sources
// ---------------------------------------------------------------------------

func TestLoad_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/airtravel.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "Month,1958,1959\nJAN,340,360\nFEB,318,342\n")
	}))
	defer srv.Close()

	l := &Loader{HTTPClient: srv.Client(), Timeout: time.Second}
	table, warn := l.LoadOrWarn(context.Background(), Source{Kind: KindURL, URL: srv.URL + "/airtravel.csv"})
	require.Nil(t, warn)
	assert.Equal(t, 2, table.Len())

	_, warn = l.LoadOrWarn(context.Background(), Source{Kind: KindURL, URL: srv.URL + "/missing.csv"})
	require.NotNil(t, warn)
	assert.Equal(t, KindRemoteFetch, warn.Kind)
	assert.True(t, strings.HasPrefix(warn.Message, "No se pudo cargar desde URL:"))
}

func TestLoad_URLUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := (&Loader{Timeout: time.Second}).Load(context.Background(), Source{Kind: KindURL, URL: addr + "/x.csv"})
	require.Error(t, err)
	assert.Equal(t, KindRemoteFetch, Classify(err))
	assert.ErrorIs(t, err, ErrRemoteFetch)
}

func TestLoad_S3(t *testing.T) {
	fake := &fakeS3{body: "a,b\n1,2\n"}
	l := &Loader{S3: fake}
	table, err := l.Load(context.Background(), Source{Kind: KindS3, URL: "s3://datos/dir/tabla.csv"})
	require.NoError(t, err)
	assert.Equal(t, "datos", fake.bucket)
	assert.Equal(t, "dir/tabla.csv", fake.key)
	assert.Equal(t, 1, table.Len())

	fake.err = errors.New("access denied")
	_, err = l.Load(context.Background(), Source{Kind: KindS3, URL: "s3://datos/dir/tabla.csv"})
	assert.Equal(t, KindRemoteFetch, Classify(err))
}

func TestStudentsSource_SeedsOnEveryLoad(t *testing.T) {
	db := filepath.Join(t.TempDir(), "estudiantes.db")
	l := &Loader{}

	first, err := l.Load(context.Background(), StudentsSource(db))
	require.NoError(t, err)
	assert.Equal(t, 3, first.Len())
	assert.Equal(t, []string{"nombre", "calificación"}, first.Columns())
	assert.Equal(t, "Lucía", first.View().Dimension(1, "nombre"))

	second, err := l.Load(context.Background(), StudentsSource(db))
	require.NoError(t, err)
	assert.Equal(t, 6, second.Len())
}

func TestLoad_OptionalDrivers(t *testing.T) {
	for _, src := range []Source{
		{Kind: KindFirebase, URL: "firebase://proyecto"},
		{Kind: KindMongoDB, URL: "mongodb://localhost:27017"},
	} {
		table, warn := (&Loader{}).LoadOrWarn(context.Background(), src)
		require.NotNil(t, warn)
		assert.True(t, table.Empty())
		assert.Equal(t, KindMissingDependency, warn.Kind)
		assert.ErrorIs(t, warn, ErrMissingDependency)
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindMissingFile, Classify(os.ErrNotExist))
	assert.Equal(t, KindRemoteFetch, Classify(context.DeadlineExceeded))
	assert.Equal(t, KindGeneric, Classify(errors.New("boom")))
	assert.Equal(t, KindMissingDependency, Classify(&LoadError{Kind: KindMissingDependency}))
}

// ---------------------------------------------------------------------------
// Cache
// ---------------------------------------------------------------------------

func TestCache_MemoizesUntilFileChanges(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "estudiantes.csv", "nombre,promedio\nana,4.5\n")
	l, m := newTestLoader(t)
	src := Source{Kind: KindCSV, Path: path, Memoize: true}

	a, err := l.Load(context.Background(), src)
	require.NoError(t, err)
	b, err := l.Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, a.Len(), b.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequests(CacheMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequests(CacheHit)))

	writeFile(t, dir, "estudiantes.csv", "nombre,promedio\nana,4.5\nluis,3.9\n")
	c, err := l.Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheRequests(CacheMiss)))
}

func TestCache_DoesNotCacheFailures(t *testing.T) {
	cache, err := NewCache(2, nil, nil)
	require.NoError(t, err)
	calls := 0
	load := func(context.Context) (Table, error) {
		calls++
		return Table{}, errors.New("boom")
	}
	key := Key{Identity: "records:x"}
	_, err = cache.Memoize(context.Background(), key, load)
	require.Error(t, err)
	_, err = cache.Memoize(context.Background(), key, load)
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, cache.Len())
}

func TestCache_EvictPath(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.csv", "x\n1\n")
	l, _ := newTestLoader(t)
	_, err := l.Load(context.Background(), Source{Kind: KindCSV, Path: path, Memoize: true})
	require.NoError(t, err)
	_, err = l.Load(context.Background(), Source{Kind: KindRecords, Name: "lit", Memoize: true})
	require.NoError(t, err)
	require.Equal(t, 2, l.Cache.Len())

	assert.Equal(t, 1, l.Cache.EvictPath(path))
	assert.Equal(t, 1, l.Cache.Len())
}

func TestCache_WatchEvictsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.csv", "x\n1\n")
	l, _ := newTestLoader(t)
	_, err := l.Load(context.Background(), Source{Kind: KindCSV, Path: path, Memoize: true})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, l.Cache.Watch(ctx, path))

	writeFile(t, dir, "a.csv", "x\n1\n2\n")
	assert.Eventually(t, func() bool { return l.Cache.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

func moviesTable(t *testing.T) Table {
	t.Helper()
	table, err := (&Loader{}).Load(context.Background(), Source{Kind: KindSeries, Name: "peliculas", Series: []Column{
		{Name: "Título", Values: []any{"Inception", "Titanic", "The Matrix"}},
		{Name: "Año", Values: []any{2010, 1997, 1999}},
		{Name: "Puntuación", Values: []any{8.8, 7.8, 8.7}},
	}})
	require.NoError(t, err)
	return table
}

func TestTable_SetReturnsCopy(t *testing.T) {
	movies := moviesTable(t)
	updated, err := movies.Set(1, "Puntuación", 9.1)
	require.NoError(t, err)
	assert.Equal(t, 9.1, updated.View().Measure(1, "Puntuación"))
	assert.Equal(t, 7.8, movies.View().Measure(1, "Puntuación"))
	assert.Equal(t, movies.Columns(), updated.Columns())

	yearAsFloat, err := movies.Set(0, "Año", 2010.5)
	require.NoError(t, err)
	assert.Equal(t, types.DataType(types.Float), yearAsFloat.ColumnType("Año"))

	_, err = movies.Set(0, "Título", 1)
	assert.Error(t, err)
	_, err = movies.Set(9, "Año", 1)
	assert.Error(t, err)
}

func TestTable_SliceAndSelect(t *testing.T) {
	movies := moviesTable(t)
	assert.Equal(t, 2, movies.Head(2).Len())
	assert.Equal(t, 3, movies.Head(10).Len())
	tail := movies.Tail(1)
	require.Equal(t, 1, tail.Len())
	assert.Equal(t, "The Matrix", tail.View().Dimension(0, "Título"))

	assert.Equal(t, []string{"Año", "Título"}, movies.Select("Año", "nope", "Título").Columns())
	assert.Empty(t, movies.Select().Columns())

	var zero Table
	assert.True(t, zero.Empty())
	assert.Equal(t, 0, zero.Head(5).Len())
}
