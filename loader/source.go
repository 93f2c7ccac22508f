// Package loader turns heterogeneous data sources into tables. Literal
// structures, local CSV/Excel/JSON files, remote CSV URLs, SQL databases
// and S3 objects all load into the same Table type, and LoadOrWarn turns
// every failure into a warning instead of an error.
package loader

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// SourceKind names the way a source is read.
type SourceKind string

const (
	KindRecords  SourceKind = "records"
	KindRows     SourceKind = "rows"
	KindSeries   SourceKind = "series"
	KindMatrix   SourceKind = "matrix"
	KindCSV      SourceKind = "csv"
	KindExcel    SourceKind = "excel"
	KindJSON     SourceKind = "json"
	KindURL      SourceKind = "url"
	KindSQLite   SourceKind = "sqlite"
	KindPostgres SourceKind = "postgres"
	KindS3       SourceKind = "s3"
	KindFirebase SourceKind = "firebase"
	KindMongoDB  SourceKind = "mongodb"
)

// Column is one named column of a series source.
type Column struct {
	Name   string
	Values []any
}

// Source describes where a table comes from. Only the fields relevant to
// Kind are read.
type Source struct {
	Kind SourceKind
	// Name labels the source in warnings and identifies literal sources in
	// the cache.
	Name string

	// Path is a local file (csv, excel, json) or database file (sqlite).
	Path string
	// Sheet selects the Excel worksheet; the first sheet when empty.
	Sheet string
	// URL is the address of url, s3, firebase and mongodb sources.
	URL string
	// DSN is the connection string of a postgres source.
	DSN string
	// Query is the SQL statement of sqlite and postgres sources.
	Query string
	// Setup runs against the database before Query is read.
	Setup func(ctx context.Context, db *sql.DB) error

	// Columns orders the columns of records, rows and matrix sources.
	Columns []string
	Records []map[string]any
	Rows    [][]any
	Series  []Column
	Matrix  [][]float64

	// Memoize asks the loader to serve the table from its cache.
	Memoize bool
}

// IsFile reports whether the source reads a local file whose identity is its
// path, modification time and size.
func (s Source) IsFile() bool {
	switch s.Kind {
	case KindCSV, KindExcel, KindJSON:
		return true
	}
	return false
}

// IsLiteral reports whether the source is built from in-memory values.
func (s Source) IsLiteral() bool {
	switch s.Kind {
	case KindRecords, KindRows, KindSeries, KindMatrix:
		return true
	}
	return false
}

// String returns the identity of the source. Credentials in URLs are
// redacted.
func (s Source) String() string {
	switch {
	case s.IsLiteral():
		return fmt.Sprintf("%s:%s", s.Kind, s.Name)
	case s.IsFile():
		return fmt.Sprintf("%s:%s", s.Kind, s.Path)
	case s.Kind == KindSQLite:
		return fmt.Sprintf("sqlite:%s?%s", s.Path, s.Query)
	case s.Kind == KindPostgres:
		return fmt.Sprintf("postgres:%s?%s", redact(s.DSN), s.Query)
	default:
		return fmt.Sprintf("%s:%s", s.Kind, redact(s.URL))
	}
}

// DisplayName is the short name shown to users.
func (s Source) DisplayName() string {
	switch {
	case s.Name != "":
		return s.Name
	case s.Path != "":
		return filepath.Base(s.Path)
	case s.URL != "":
		return redact(s.URL)
	case s.DSN != "":
		return redact(s.DSN)
	default:
		return string(s.Kind)
	}
}

func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}

// ParseSource reads a source from its command line form:
//
//	data.csv, data.xlsx, data.json          local files
//	http://..., https://...                 remote CSV
//	s3://bucket/key                         S3 object (CSV, or JSON by extension)
//	sqlite://file.db?query=SELECT ...       embedded database
//	postgres://user@host/db?query=SELECT ...
//	firebase://..., mongodb://...           reported as missing drivers
func ParseSource(raw string) (Source, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Source{}, fmt.Errorf("empty source")
	}

	scheme, rest, hasScheme := strings.Cut(raw, "://")
	if !hasScheme {
		return fileSource(raw)
	}

	switch strings.ToLower(scheme) {
	case "http", "https":
		return Source{Kind: KindURL, URL: raw}, nil
	case "s3":
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return Source{}, fmt.Errorf("s3 source %q: expected s3://bucket/key", raw)
		}
		return Source{Kind: KindS3, URL: raw}, nil
	case "sqlite":
		path, query, err := splitQuery(rest)
		if err != nil {
			return Source{}, fmt.Errorf("sqlite source %q: %w", raw, err)
		}
		return Source{Kind: KindSQLite, Path: path, Query: query}, nil
	case "postgres", "postgresql":
		u, err := url.Parse(raw)
		if err != nil {
			return Source{}, fmt.Errorf("postgres source: %w", err)
		}
		q := u.Query()
		query := q.Get("query")
		if query == "" {
			return Source{}, fmt.Errorf("postgres source %q: missing query parameter", u.Redacted())
		}
		q.Del("query")
		u.RawQuery = q.Encode()
		return Source{Kind: KindPostgres, DSN: u.String(), Query: query}, nil
	case "firebase":
		return Source{Kind: KindFirebase, URL: raw}, nil
	case "mongodb", "mongodb+srv":
		return Source{Kind: KindMongoDB, URL: raw}, nil
	default:
		return Source{}, fmt.Errorf("unsupported source scheme %q", scheme)
	}
}

func fileSource(path string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return Source{Kind: KindCSV, Path: path}, nil
	case ".xlsx", ".xlsm", ".xls":
		return Source{Kind: KindExcel, Path: path}, nil
	case ".json":
		return Source{Kind: KindJSON, Path: path}, nil
	default:
		return Source{}, fmt.Errorf("unsupported file type %q", path)
	}
}

func splitQuery(rest string) (path, query string, err error) {
	path, rawQuery, _ := strings.Cut(rest, "?")
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", "", err
	}
	query = values.Get("query")
	if query == "" {
		query = "SELECT * FROM alumnos"
	}
	if path == "" {
		return "", "", fmt.Errorf("missing database path")
	}
	return path, query, nil
}
