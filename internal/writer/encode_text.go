package writer

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/roach88/genxdata/internal/dataset"
)

// createFile opens path for writing and returns a buffered writer plus the
// close function that flushes it.
func createFile(path string) (*bufio.Writer, func() error, error) {
	fh, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	bw := bufio.NewWriter(fh)
	return bw, func() error {
		if err := bw.Flush(); err != nil {
			fh.Close()
			return err
		}
		return fh.Close()
	}, nil
}

// encodeCSV params: delimiter (default ","), header (default true).
func encodeCSV(_ context.Context, path string, f *dataset.Frame, p Params, _ Meta) error {
	bw, closeFn, err := createFile(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(bw)
	if d := p.String("delimiter", ","); d != "" {
		w.Comma = []rune(d)[0]
	}
	if p.Bool("header", true) {
		if err := w.Write(f.Columns()); err != nil {
			closeFn()
			return err
		}
	}
	row := make([]string, f.Width())
	for i := range f.Len() {
		for j, v := range f.Values(i) {
			row[j] = dataset.Format(v)
		}
		if err := w.Write(row); err != nil {
			closeFn()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

// encodeJSON writes an array of records. params: lines (JSON Lines, also
// implied by a .jsonl path), indent (spaces).
func encodeJSON(_ context.Context, path string, f *dataset.Frame, p Params, _ Meta) error {
	bw, closeFn, err := createFile(path)
	if err != nil {
		return err
	}
	records := f.Records()
	if p.Bool("lines", strings.HasSuffix(strings.ToLower(path), ".jsonl")) {
		enc := json.NewEncoder(bw)
		for _, r := range records {
			if err := enc.Encode(r); err != nil {
				closeFn()
				return err
			}
		}
		return closeFn()
	}
	enc := json.NewEncoder(bw)
	if n := p.Int("indent", 0); n > 0 {
		enc.SetIndent("", strings.Repeat(" ", n))
	}
	if records == nil {
		records = []dataset.Record{}
	}
	if err := enc.Encode(records); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

var htmlPage = template.Must(template.New("table").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
<table class="{{.Classes}}">
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

// encodeHTML renders a standalone table page. params: title, classes.
func encodeHTML(_ context.Context, path string, f *dataset.Frame, p Params, meta Meta) error {
	title := p.String("title", meta.Name)
	if title == "" {
		title = "Generated data"
	}
	rows := make([][]string, f.Len())
	for i := range rows {
		rows[i] = make([]string, f.Width())
		for j, v := range f.Values(i) {
			rows[i][j] = dataset.Format(v)
		}
	}
	bw, closeFn, err := createFile(path)
	if err != nil {
		return err
	}
	data := struct {
		Title   string
		Classes string
		Columns []string
		Rows    [][]string
	}{title, p.String("classes", "table table-striped"), f.Columns(), rows}
	if err := htmlPage.Execute(bw, data); err != nil {
		closeFn()
		return fmt.Errorf("render html: %w", err)
	}
	return closeFn()
}
