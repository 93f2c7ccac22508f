package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"
)

// DefaultTimeout bounds remote fetches.
const DefaultTimeout = 30 * time.Second

// Loader reads sources into tables. The zero Loader is usable: it has no
// cache, records no metrics and logs nothing.
type Loader struct {
	// BaseDir resolves relative file and database paths.
	BaseDir    string
	HTTPClient *http.Client
	// Timeout bounds every remote fetch. Zero means no timeout.
	Timeout time.Duration
	// S3 overrides the client built from S3Config.
	S3       ObjectGetter
	S3Config S3Config
	Metrics  *Metrics
	Cache    *Cache
	Logger   *slog.Logger
}

// Load reads src into a table. Errors are *LoadError values classified by
// Kind; nothing is retried.
func (l *Loader) Load(ctx context.Context, src Source, opts ...LoadOption) (Table, error) {
	src = l.resolve(src)
	o := applyLoadOptions(opts)
	logger := l.logger().With(slog.String("source", src.String()))

	start := time.Now()
	var (
		t   Table
		err error
	)
	if key, ok := KeyFor(src, o.variant()); ok && src.Memoize && l.Cache != nil {
		t, err = l.Cache.Memoize(ctx, key, func(ctx context.Context) (Table, error) {
			return l.decode(ctx, src, o)
		})
	} else {
		t, err = l.decode(ctx, src, o)
	}
	elapsed := time.Since(start)

	if err != nil {
		le := newLoadError(src.String(), err)
		l.Metrics.observeLoad(src.Kind, le.Kind.String(), elapsed)
		logger.Debug("load failed",
			slog.String("kind", le.Kind.String()),
			slog.String("error", err.Error()),
		)
		return Table{}, le
	}

	l.Metrics.observeLoad(src.Kind, OutcomeOK, elapsed)
	logger.Debug("table loaded",
		slog.Int("rows", t.Len()),
		slog.Int("columns", len(t.Columns())),
		slog.Duration("elapsed", elapsed),
	)
	return t, nil
}

// LoadOrWarn is Load for dashboards: any failure yields an empty table and
// a warning to show in its place. It never panics.
func (l *Loader) LoadOrWarn(ctx context.Context, src Source, opts ...LoadOption) (t Table, w *Warning) {
	defer func() {
		if r := recover(); r != nil {
			t = Table{}
			w = warningFor(src, fmt.Errorf("%w: panic: %v", ErrGenericLoad, r))
			l.logger().Error("load panicked", slog.String("source", src.String()), slog.Any("panic", r))
		}
	}()

	t, err := l.Load(ctx, src, opts...)
	if err != nil {
		w = warningFor(src, err)
		l.logger().Warn("load failed",
			slog.String("source", src.String()),
			slog.String("kind", w.Kind.String()),
		)
		return Table{}, w
	}
	return t, nil
}

func (l *Loader) decode(ctx context.Context, src Source, o loadOptions) (Table, error) {
	if err := ctx.Err(); err != nil {
		return Table{}, err
	}

	switch src.Kind {
	case KindRecords, KindRows, KindSeries, KindMatrix:
		return loadLiteral(src)
	case KindCSV:
		return loadCSVFile(src.Path, o)
	case KindExcel:
		return loadExcelFile(src.Path, src.Sheet, o)
	case KindJSON:
		return loadJSONFile(src.Path)
	case KindURL:
		data, err := l.fetchURL(ctx, src.URL)
		if err != nil {
			return Table{}, err
		}
		return decodeCSV(data, o)
	case KindS3:
		data, err := l.fetchS3(ctx, src.URL)
		if err != nil {
			return Table{}, err
		}
		if isJSONKey(src.URL) {
			return decodeJSON(data)
		}
		return decodeCSV(data, o)
	case KindSQLite:
		return l.loadSQLite(ctx, src)
	case KindPostgres:
		return l.loadPostgres(ctx, src)
	case KindFirebase:
		return Table{}, fmt.Errorf("%w: firebase client is not compiled in", ErrMissingDependency)
	case KindMongoDB:
		return Table{}, fmt.Errorf("%w: mongodb driver is not compiled in", ErrMissingDependency)
	}
	return Table{}, fmt.Errorf("unknown source kind %q", src.Kind)
}

// resolve makes relative file paths relative to BaseDir.
func (l *Loader) resolve(src Source) Source {
	if l.BaseDir == "" || src.Path == "" || filepath.IsAbs(src.Path) {
		return src
	}
	if src.IsFile() {
		src.Path = filepath.Join(l.BaseDir, src.Path)
	}
	return src
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l.Logger
}
