// Package writer decouples generation from output sinks.
//
// A Writer receives frames one at a time and is finalized once at the end
// of a run. FileWriter encodes frames into files through a format
// registry, BatchWriter wraps a FileWriter with per-batch bookkeeping and
// StreamWriter hands each frame to a queue.Producer. Finalize is
// idempotent on every implementation.
package writer

import (
	"context"

	"github.com/roach88/genxdata/internal/dataset"
)

// Meta travels with each frame handed to a writer.
type Meta struct {
	// Name is the dataset name, used for default paths and table names.
	Name string

	// Batch is set in chunked runs.
	Batch *dataset.BatchInfo
}

// WriteResult reports one successful write.
type WriteResult struct {
	Rows        int    `json:"rows_written"`
	Path        string `json:"output_path,omitempty"`
	Destination string `json:"destination,omitempty"`
	BatchIndex  int    `json:"batch_index"`
}

// Summary is returned by Finalize.
type Summary struct {
	Writer           string   `json:"writer_type"`
	Format           string   `json:"format,omitempty"`
	TotalRowsWritten int      `json:"total_rows_written"`
	BatchesWritten   int      `json:"batches_written"`
	WrittenPaths     []string `json:"written_paths,omitempty"`
	LastWrittenPath  string   `json:"last_written_path,omitempty"`
	Destination      string   `json:"destination,omitempty"`
	Inner            *Summary `json:"inner,omitempty"`
}

// Writer is an output sink.
type Writer interface {
	// Write persists or transmits f. It is called once per frame, in order.
	Write(ctx context.Context, f *dataset.Frame, meta Meta) (WriteResult, error)

	// Finalize flushes and closes the sink. Calling it again returns the
	// same summary without side effects.
	Finalize(ctx context.Context) (Summary, error)
}
