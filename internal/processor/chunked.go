package processor

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/genxdata/internal/config"
	"github.com/roach88/genxdata/internal/dataset"
	"github.com/roach88/genxdata/internal/gerrors"
	"github.com/roach88/genxdata/internal/strategy"
	"github.com/roach88/genxdata/internal/writer"
)

// Chunked generates chunk_size rows at a time and flushes batch_size rows
// per write. Batch and stream runs differ only in the writer.
type Chunked struct {
	r         *runner
	batchSize int
	chunkSize int
	now       func() time.Time
}

// NewChunked creates a chunked processor. chunkSize must not exceed
// batchSize.
func NewChunked(cfg *config.Config, batchSize, chunkSize int, opts Options) (*Chunked, error) {
	if err := config.ValidateBatch(&config.BatchConfig{BatchSize: batchSize, ChunkSize: chunkSize}); err != nil {
		return nil, err
	}
	return &Chunked{
		r:         newRunner(cfg, strategy.ModeChunked, opts),
		batchSize: batchSize,
		chunkSize: chunkSize,
		now:       time.Now,
	}, nil
}

// WithClock replaces the clock stamped into batch info.
func (c *Chunked) WithClock(now func() time.Time) *Chunked {
	c.now = now
	return c
}

// Run generates every chunk, writing each full batch to w as soon as it
// is buffered and the remainder at the end. w is not finalized.
func (c *Chunked) Run(ctx context.Context, w writer.Writer) (*Result, error) {
	r := c.r
	if w == nil {
		return nil, gerrors.NewConfigValidationError("chunked processing requires a writer")
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	c.warnScoped()

	total := r.cfg.NumOfRows
	totalBatches := (total + c.batchSize - 1) / c.batchSize
	r.logger.Info("generating in chunks",
		slog.Int("rows", total),
		slog.Int("batch_size", c.batchSize),
		slog.Int("chunk_size", c.chunkSize))

	var (
		buffer    = dataset.New(0)
		generated int
		chunks    int
		batches   int
		columns   []string
	)
	flush := func(f *dataset.Frame) error {
		info := &dataset.BatchInfo{
			BatchIndex:   batches,
			ChunkIndex:   chunks,
			BatchSize:    f.Len(),
			TotalBatches: totalBatches,
			Timestamp:    c.now(),
		}
		stop := r.time("write", f.Len())
		_, err := w.Write(ctx, f, writer.Meta{Name: r.cfg.Name(), Batch: info})
		stop()
		if err != nil {
			return err
		}
		batches++
		return nil
	}

	for generated < total {
		n := min(c.chunkSize, total-generated)
		stop := r.time("chunk", n)
		chunk := dataset.New(n)
		if err := r.applySpecs(chunk); err != nil {
			stop()
			return nil, err
		}
		r.finish(chunk, false)
		stop()

		chunks++
		generated += n
		columns = chunk.Columns()
		if err := buffer.Append(chunk); err != nil {
			return nil, err
		}
		r.logger.Debug("chunk generated",
			slog.Int("chunk", chunks),
			slog.Int("rows", n),
			slog.Int("buffered", buffer.Len()))

		for buffer.Len() >= c.batchSize {
			if err := flush(buffer.Slice(0, c.batchSize)); err != nil {
				return nil, err
			}
			buffer = buffer.Slice(c.batchSize, buffer.Len())
		}
	}
	if buffer.Len() > 0 {
		if err := flush(buffer); err != nil {
			return nil, err
		}
	}

	r.logger.Info("chunked generation complete",
		slog.Int("rows", generated),
		slog.Int("chunks", chunks),
		slog.Int("batches", batches))
	return &Result{
		Rows:    generated,
		Columns: columns,
		Chunks:  chunks,
		Batches: batches,
		States:  r.states.Snapshot(),
		Seeds:   r.states.Seeds(),
	}, nil
}

// warnScoped logs once per run for settings whose scope narrows to the
// current chunk.
func (c *Chunked) warnScoped() {
	for _, spec := range c.r.cfg.Configs {
		if spec.Disabled {
			continue
		}
		if spec.IsUnique() {
			c.r.logger.Warn("uniqueness is enforced per chunk only", slog.Any("columns", spec.ColumnNames))
		}
		if spec.Mask != "" {
			c.r.logger.Debug("mask evaluated per chunk", slog.Any("columns", spec.ColumnNames))
		}
	}
	if c.r.cfg.Shuffle {
		c.r.logger.Warn("shuffle is ignored in chunked mode")
	}
}
