package writer

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roach88/genxdata/internal/dataset"
	"github.com/roach88/genxdata/internal/gerrors"
)

// Encoder writes f to path.
type Encoder func(ctx context.Context, path string, f *dataset.Frame, p Params, meta Meta) error

// Format is a registered file encoding.
type Format struct {
	// Name is the canonical type name.
	Name string

	// Extensions are accepted file extensions; the first is the default.
	Extensions []string

	Encode Encoder
}

// formats is keyed by canonical name.
var formats = map[string]*Format{
	"csv":     {Name: "csv", Extensions: []string{".csv"}, Encode: encodeCSV},
	"json":    {Name: "json", Extensions: []string{".json", ".jsonl"}, Encode: encodeJSON},
	"excel":   {Name: "excel", Extensions: []string{".xlsx", ".xlsm"}, Encode: encodeExcel},
	"parquet": {Name: "parquet", Extensions: []string{".parquet"}, Encode: encodeParquet},
	"sqlite":  {Name: "sqlite", Extensions: []string{".db", ".sqlite", ".sqlite3"}, Encode: encodeSQLite},
	"html":    {Name: "html", Extensions: []string{".html", ".htm"}, Encode: encodeHTML},
	"feather": {Name: "feather", Extensions: []string{".feather", ".arrow"}, Encode: encodeFeather},
}

var formatAliases = map[string]string{
	"xlsx": "excel",
	"xls":  "excel",
	"db":   "sqlite",
	"htm":  "html",
}

// NormalizeType lower-cases t and strips a "_writer" suffix.
func NormalizeType(t string) string {
	n := strings.ToLower(strings.TrimSpace(t))
	return strings.TrimSuffix(n, "_writer")
}

// Lookup resolves a writer type to its format.
func Lookup(t string) (*Format, error) {
	n := NormalizeType(t)
	if n == "" {
		return nil, gerrors.NewConfigValidationError("writer type is required", "type")
	}
	if canon, ok := formatAliases[n]; ok {
		n = canon
	}
	f, ok := formats[n]
	if !ok {
		return nil, gerrors.NewConfigValidationError(
			fmt.Sprintf("unsupported writer type %q (supported: %s)", t, strings.Join(Types(), ", ")), "type")
	}
	return f, nil
}

// Types lists every accepted type name, aliases included.
func Types() []string {
	out := make([]string, 0, len(formats)+len(formatAliases))
	for k := range formats {
		out = append(out, k)
	}
	for k := range formatAliases {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// normalizeExt keeps path when its extension belongs to the format and
// otherwise swaps in the default extension.
func (f *Format) normalizeExt(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range f.Extensions {
		if ext == e {
			return path
		}
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + f.Extensions[0]
}
