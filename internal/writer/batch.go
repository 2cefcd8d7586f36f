package writer

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/genxdata/internal/dataset"
)

// BatchWriter forwards batches to a FileWriter and keeps run counters.
type BatchWriter struct {
	inner  *FileWriter
	now    func() time.Time
	logger *slog.Logger

	batches   int
	rows      int
	paths     []string
	finalized bool
	summary   Summary
}

// NewBatchWriter wraps inner. A nil clock uses time.Now.
func NewBatchWriter(inner *FileWriter, clock func() time.Time, logger *slog.Logger) *BatchWriter {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchWriter{inner: inner, now: clock, logger: logger.With(slog.String("component", "batch_writer"))}
}

// Write forwards f. Frames arriving without batch info get one numbered
// by this writer.
func (b *BatchWriter) Write(ctx context.Context, f *dataset.Frame, meta Meta) (WriteResult, error) {
	if meta.Batch == nil {
		meta.Batch = &dataset.BatchInfo{
			BatchIndex:   b.batches,
			ChunkIndex:   b.batches + 1,
			BatchSize:    f.Len(),
			TotalBatches: b.batches + 1,
			Timestamp:    b.now(),
		}
	}
	res, err := b.inner.Write(ctx, f, meta)
	if err != nil {
		return WriteResult{}, err
	}
	b.batches++
	b.rows += f.Len()
	b.paths = append(b.paths, res.Path)
	b.logger.Debug("batch written",
		slog.Int("batch_index", meta.Batch.BatchIndex),
		slog.Int("rows", f.Len()),
		slog.String("path", res.Path))
	return res, nil
}

// Finalize finalizes the inner writer once and returns the aggregated
// counters.
func (b *BatchWriter) Finalize(ctx context.Context) (Summary, error) {
	if b.finalized {
		return b.summary, nil
	}
	inner, err := b.inner.Finalize(ctx)
	if err != nil {
		return Summary{}, err
	}
	b.summary = Summary{
		Writer:           "batch",
		Format:           inner.Format,
		TotalRowsWritten: b.rows,
		BatchesWritten:   b.batches,
		WrittenPaths:     append([]string(nil), b.paths...),
		Inner:            &inner,
	}
	if len(b.paths) > 0 {
		b.summary.LastWrittenPath = b.paths[len(b.paths)-1]
	}
	b.finalized = true
	b.logger.Info("batch writer finalized",
		slog.Int("batches", b.batches),
		slog.Int("rows", b.rows))
	return b.summary, nil
}
