package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/tobgu/qframe"
	qcsv "github.com/tobgu/qframe/config/csv"
	"github.com/xuri/excelize/v2"

	"github.com/lcap17/proyect-viernes/helpers"
)

// LoadOption adjusts how file and remote CSV contents are decoded.
type LoadOption func(*loadOptions)

type loadOptions struct {
	header        func(string) string
	stringColumns []string
}

// WithHeaderTransform rewrites every header cell before decoding, e.g.
// helpers.StripUpper.
func WithHeaderTransform(fn func(string) string) LoadOption {
	return func(o *loadOptions) { o.header = fn }
}

// WithStringColumns forces the named columns (after the header transform)
// to be read as text.
func WithStringColumns(columns ...string) LoadOption {
	return func(o *loadOptions) { o.stringColumns = append(o.stringColumns, columns...) }
}

func applyLoadOptions(opts []LoadOption) loadOptions {
	var o loadOptions
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// variant distinguishes cache entries of one source read with different
// options.
func (o loadOptions) variant() string {
	v := fmt.Sprintf("str=%v", o.stringColumns)
	if o.header != nil {
		v += ";header"
	}
	return v
}

// readFile reads path, mapping a missing file onto ErrMissingFile.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// decodeCSV parses CSV bytes into a table.
func decodeCSV(data []byte, o loadOptions) (Table, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Table{}, fmt.Errorf("no columns to parse from file")
	}
	if o.header != nil {
		rewritten, err := helpers.RewriteHeader(data, o.header)
		if err != nil {
			return Table{}, fmt.Errorf("rewrite header: %w", err)
		}
		data = rewritten
	}

	var conf []qcsv.ConfigFunc
	if len(o.stringColumns) > 0 {
		typ := make(map[string]string, len(o.stringColumns))
		for _, c := range o.stringColumns {
			typ[c] = "string"
		}
		conf = append(conf, qcsv.Types(typ))
	}

	t, err := NewTable(qframe.ReadCSV(bytes.NewReader(data), conf...))
	if err != nil {
		return Table{}, fmt.Errorf("parse csv: %w", err)
	}
	return t, nil
}

func loadCSVFile(path string, o loadOptions) (Table, error) {
	data, err := readFile(path)
	if err != nil {
		return Table{}, err
	}
	return decodeCSV(data, o)
}

func loadJSONFile(path string) (Table, error) {
	data, err := readFile(path)
	if err != nil {
		return Table{}, err
	}
	return decodeJSON(data)
}

func decodeJSON(data []byte) (Table, error) {
	t, err := NewTable(qframe.ReadJSON(bytes.NewReader(data)))
	if err != nil {
		return Table{}, fmt.Errorf("parse json: %w", err)
	}
	return t, nil
}

// loadExcelFile reads one worksheet. The first row is the header; short rows
// are padded so every row has a cell per column.
func loadExcelFile(path, sheet string, o loadOptions) (Table, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Table{}, fmt.Errorf("%w: %s", ErrMissingFile, path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return Table{}, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return Table{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return Table{}, fmt.Errorf("sheet %q is empty", sheet)
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, r := range rows {
		padded := make([]string, width)
		copy(padded, r)
		if err := w.Write(padded); err != nil {
			return Table{}, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Table{}, err
	}
	return decodeCSV(buf.Bytes(), o)
}
