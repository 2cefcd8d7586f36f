// Package source reads small lookup tables (csv, json, parquet, xlsx) used
// by strategies that map values from external files.
package source

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"

	"github.com/roach88/genxdata/internal/dataset"
)

// Table is a header plus string-valued rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]string, error) {
	idx := -1
	for i, h := range t.Header {
		if h == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found in %v", name, t.Header)
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out, nil
}

// Read loads a table, choosing the decoder from the file extension.
// Unknown extensions are read as csv.
func Read(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return readJSON(path)
	case ".parquet":
		return readParquet(path)
	case ".xlsx", ".xls":
		return readXLSX(path)
	default:
		return readCSV(path)
	}
}

func readCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv source %s: %w", path, err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}
	return &Table{Header: records[0], Rows: records[1:]}, nil
}

func readJSON(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	var objs []map[string]any
	if err := json.Unmarshal(data, &objs); err != nil {
		return nil, fmt.Errorf("read json source %s: expected an array of objects: %w", path, err)
	}
	seen := map[string]bool{}
	var header []string
	for _, o := range objs {
		for k := range o {
			if !seen[k] {
				seen[k] = true
				header = append(header, k)
			}
		}
	}
	sort.Strings(header)
	t := &Table{Header: header}
	for _, o := range objs {
		row := make([]string, len(header))
		for i, h := range header {
			row[i] = dataset.Format(o[h])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func readParquet(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat source: %w", err)
	}
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("read parquet source %s: %w", path, err)
	}

	t := &Table{}
	for _, col := range pf.Schema().Columns() {
		t.Header = append(t.Header, strings.Join(col, "."))
	}
	buf := make([]parquet.Row, 128)
	for _, rg := range pf.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, r := range buf[:n] {
				t.Rows = append(t.Rows, parquetRow(r, len(t.Header)))
			}
			if err != nil {
				break
			}
		}
		if err := rows.Close(); err != nil {
			return nil, fmt.Errorf("close parquet rows: %w", err)
		}
	}
	return t, nil
}

func parquetRow(r parquet.Row, width int) []string {
	row := make([]string, width)
	for _, v := range r {
		col := v.Column()
		if col < 0 || col >= width || v.IsNull() {
			continue
		}
		switch v.Kind() {
		case parquet.Boolean:
			row[col] = fmt.Sprint(v.Boolean())
		case parquet.Int32, parquet.Int64:
			row[col] = fmt.Sprint(v.Int64())
		case parquet.Float:
			row[col] = dataset.Format(float64(v.Float()))
		case parquet.Double:
			row[col] = dataset.Format(v.Double())
		default:
			row[col] = string(v.ByteArray())
		}
	}
	return row
}

func readXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx source %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Table{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx source %s: %w", path, err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}
	return &Table{Header: rows[0], Rows: rows[1:]}, nil
}
