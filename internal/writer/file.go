package writer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/genxdata/internal/dataset"
	"github.com/roach88/genxdata/internal/gerrors"
)

// DefaultOutputDir holds files written without an explicit output_path.
const DefaultOutputDir = "output"

// FileWriter encodes each frame into a file.
type FileWriter struct {
	format   *Format
	template string
	params   Params
	logger   *slog.Logger

	writes    int
	rows      int
	paths     []string
	finalized bool
	summary   Summary
}

// NewFileWriter resolves typ and prepares the output path template. Empty
// params select output/<name>.<ext>.
func NewFileWriter(typ string, params map[string]any, name string, logger *slog.Logger) (*FileWriter, error) {
	format, err := Lookup(typ)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := Params(params)
	tmpl, key := p.Path()
	switch {
	case len(p) == 0:
		if name == "" {
			name = "genxdata"
		}
		tmpl = filepath.Join(DefaultOutputDir, name+format.Extensions[0])
	case tmpl == "":
		return nil, gerrors.NewConfigValidationError(
			fmt.Sprintf("%s writer params need output_path", format.Name), "output_path")
	case key != "output_path":
		logger.Debug("deprecated writer path key", slog.String("key", key))
	}
	return &FileWriter{
		format:   format,
		template: tmpl,
		params:   p,
		logger:   logger.With(slog.String("component", "writer"), slog.String("format", format.Name)),
	}, nil
}

// Format returns the canonical format name.
func (w *FileWriter) Format() string { return w.format.Name }

// Template returns the unresolved output path.
func (w *FileWriter) Template() string { return w.template }

// ResolvePath substitutes placeholders and normalizes the extension. In
// chunked runs a template without {batch_index} gets a _batch_<n> suffix
// so batches do not overwrite each other.
func (w *FileWriter) ResolvePath(meta Meta) string {
	path := w.template
	if meta.Batch != nil {
		if !strings.Contains(path, "{batch_index}") {
			ext := filepath.Ext(path)
			path = strings.TrimSuffix(path, ext) + "_batch_{batch_index}" + ext
		}
		for k, v := range meta.Batch.Placeholders() {
			path = strings.ReplaceAll(path, k, v)
		}
	}
	return w.format.normalizeExt(path)
}

// Write encodes f to the resolved path, creating parent directories.
func (w *FileWriter) Write(ctx context.Context, f *dataset.Frame, meta Meta) (WriteResult, error) {
	path := w.ResolvePath(meta)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return WriteResult{}, gerrors.NewWriterError(w.format.Name, path, err)
		}
	}
	if err := w.format.Encode(ctx, path, f, w.params, meta); err != nil {
		return WriteResult{}, gerrors.NewWriterError(w.format.Name, path, err)
	}
	w.writes++
	w.rows += f.Len()
	w.paths = append(w.paths, path)
	w.logger.Info("wrote file", slog.String("path", path), slog.Int("rows", f.Len()))

	res := WriteResult{Rows: f.Len(), Path: path}
	if meta.Batch != nil {
		res.BatchIndex = meta.Batch.BatchIndex
	}
	return res, nil
}

// Finalize reports what was written. Files are closed after every write.
func (w *FileWriter) Finalize(context.Context) (Summary, error) {
	if w.finalized {
		return w.summary, nil
	}
	w.summary = Summary{
		Writer:           "file",
		Format:           w.format.Name,
		TotalRowsWritten: w.rows,
		BatchesWritten:   w.writes,
		WrittenPaths:     append([]string(nil), w.paths...),
	}
	if len(w.paths) > 0 {
		w.summary.LastWrittenPath = w.paths[len(w.paths)-1]
	}
	w.finalized = true
	return w.summary, nil
}
