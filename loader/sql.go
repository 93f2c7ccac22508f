package loader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/tobgu/qframe"
	qsql "github.com/tobgu/qframe/config/sql"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const studentsDDL = `CREATE TABLE IF NOT EXISTS alumnos (nombre TEXT, calificación INTEGER)`

// studentsSeed is inserted on every call; rows accumulate across loads.
const studentsSeed = `INSERT INTO alumnos VALUES ('Pedro', 85), ('Lucía', 90), ('Andrés', 78)`

// SeedStudents creates the alumnos table if needed and appends the three
// sample students.
func SeedStudents(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, studentsDDL); err != nil {
		return fmt.Errorf("create alumnos: %w", err)
	}
	if _, err := db.ExecContext(ctx, studentsSeed); err != nil {
		return fmt.Errorf("seed alumnos: %w", err)
	}
	return nil
}

// StudentsSource seeds the embedded database at dbPath and reads alumnos
// back.
func StudentsSource(dbPath string) Source {
	return Source{
		Kind:  KindSQLite,
		Name:  filepath.Base(dbPath),
		Path:  dbPath,
		Query: "SELECT * FROM alumnos",
		Setup: SeedStudents,
	}
}

func (l *Loader) loadSQLite(ctx context.Context, src Source) (Table, error) {
	if dir := filepath.Dir(src.Path); dir != "." {
		if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
			return Table{}, fmt.Errorf("%w: %s", ErrMissingFile, dir)
		}
	}

	db, err := sql.Open("sqlite", src.Path)
	if err != nil {
		return Table{}, fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = db.Close() }()

	if src.Setup != nil {
		if err := src.Setup(ctx, db); err != nil {
			return Table{}, err
		}
	}
	return readSQL(ctx, db, src.Query, qsql.SQLite())
}

func (l *Loader) loadPostgres(ctx context.Context, src Source) (Table, error) {
	db, err := sql.Open("pgx", src.DSN)
	if err != nil {
		return Table{}, fmt.Errorf("open postgres: %w", err)
	}
	defer func() { _ = db.Close() }()

	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		return Table{}, fmt.Errorf("%w: ping postgres: %w", ErrRemoteFetch, err)
	}
	if src.Setup != nil {
		if err := src.Setup(ctx, db); err != nil {
			return Table{}, err
		}
	}
	return readSQL(ctx, db, src.Query, qsql.Postgres())
}

// readSQL reads query into a table inside a transaction that is rolled back.
func readSQL(ctx context.Context, db *sql.DB, query string, dialect qsql.ConfigFunc) (Table, error) {
	if query == "" {
		return Table{}, fmt.Errorf("empty query")
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Table{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	t, err := NewTable(qframe.ReadSQL(tx, qsql.Query(query), dialect))
	if err != nil {
		return Table{}, fmt.Errorf("query: %w", err)
	}
	return t, nil
}
