// Package orchestrator selects a processor and writer for a config, runs
// the generation and assembles the run summary.
//
// The mode follows the inputs: a stream section (from the config or a
// flag) selects streaming, a batch section selects batch files, and
// everything else runs in a single pass.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/genxdata/internal/config"
	"github.com/roach88/genxdata/internal/gerrors"
	"github.com/roach88/genxdata/internal/perf"
	"github.com/roach88/genxdata/internal/processor"
	"github.com/roach88/genxdata/internal/queue"
	"github.com/roach88/genxdata/internal/strategy"
	"github.com/roach88/genxdata/internal/writer"
)

// Processor types reported in Summary.Processor.
const (
	ProcessorNormal = "normal"
	ProcessorBatch  = "batch"
	ProcessorStream = "stream"
)

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Stream sizing used when the stream section leaves it out.
const (
	DefaultStreamBatchSize = 1000
)

// Flags are the per-run overrides supplied next to the config.
type Flags struct {
	// Batch overrides the config's batch section.
	Batch *config.BatchConfig

	// Stream overrides the config's stream section.
	Stream map[string]any

	// Seed fixes every unseeded strategy.
	Seed *uint64
}

// Summary reports a run.
type Summary struct {
	RunID            string            `json:"run_id"`
	Status           string            `json:"status"`
	Processor        string            `json:"processor_type"`
	ConfigName       string            `json:"config_name,omitempty"`
	RowsGenerated    int               `json:"rows_generated"`
	ColumnsGenerated int               `json:"columns_generated"`
	ColumnNames      []string          `json:"column_names"`
	ChunksProcessed  int               `json:"chunks_processed,omitempty"`
	ChunkSize        int               `json:"chunk_size,omitempty"`
	BatchSize        int               `json:"batch_size,omitempty"`
	Writer           writer.Summary    `json:"writer"`
	Seeds            map[string]uint64 `json:"seeds,omitempty"`
	Performance      []perf.Stat       `json:"performance,omitempty"`
	Duration         time.Duration     `json:"duration_ns"`
}

// Options configures an Orchestrator.
type Options struct {
	Logger *slog.Logger

	// Strategies resolves strategy names. Nil uses the built-ins.
	Strategies *strategy.Factory

	// Queues builds stream producers. Nil registers kafka, amqp and memory.
	Queues *queue.Factory

	// Clock stamps timings and batch info. Nil uses time.Now.
	Clock func() time.Time
}

// Orchestrator runs configs. It holds no per-run state and may be reused.
type Orchestrator struct {
	logger     *slog.Logger
	strategies *strategy.Factory
	queues     *queue.Factory
	clock      func() time.Time
}

// New creates an orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		logger:     logger,
		strategies: opts.Strategies,
		queues:     opts.Queues,
		clock:      opts.Clock,
	}
	if o.strategies == nil {
		o.strategies = strategy.DefaultFactory(logger)
	}
	if o.queues == nil {
		o.queues = queue.NewFactory(logger)
	}
	if o.clock == nil {
		o.clock = time.Now
	}
	return o
}

// Run is a convenience for New(Options{}).Run.
func Run(ctx context.Context, cfg *config.Config, flags Flags) (*Summary, error) {
	return New(Options{}).Run(ctx, cfg, flags)
}

// plan is the resolved shape of one run.
type plan struct {
	processor string
	batch     *config.BatchConfig
	stream    map[string]any
	file      *config.WriterSpec
}

// resolve picks the mode. Flags win over config sections and streaming
// wins over batching.
func resolve(cfg *config.Config, flags Flags) (plan, error) {
	stream := flags.Stream
	if stream == nil {
		stream = cfg.Stream
	}
	if stream != nil {
		qc, err := queue.ParseConfig(stream)
		if err != nil {
			return plan{}, err
		}
		bc := &config.BatchConfig{BatchSize: qc.BatchSize, ChunkSize: qc.ChunkSize}
		if bc.BatchSize == 0 {
			bc.BatchSize = DefaultStreamBatchSize
		}
		if bc.ChunkSize == 0 {
			bc.ChunkSize = bc.BatchSize
		}
		return plan{processor: ProcessorStream, batch: bc, stream: stream}, nil
	}

	batch := flags.Batch
	if batch == nil {
		batch = cfg.Batch
	}
	if batch != nil {
		file := batch.FileWriter
		if file == nil {
			file = cfg.FileWriter
		}
		return plan{processor: ProcessorBatch, batch: batch, file: file}, nil
	}
	return plan{processor: ProcessorNormal, file: cfg.FileWriter}, nil
}

// Run validates cfg, generates the dataset and writes it. Config, strategy
// and mask errors surface before the writer is opened. The writer is always
// finalized, including when generation fails.
func (o *Orchestrator) Run(ctx context.Context, cfg *config.Config, flags Flags) (sum *Summary, err error) {
	started := o.clock()
	runID := uuid.NewString()
	logger := o.logger.With(slog.String("component", "orchestrator"), slog.String("run_id", runID))

	if cfg == nil {
		return nil, gerrors.NewConfigValidationError("config is required")
	}
	popts := processor.Options{
		Factory: o.strategies,
		Seed:    flags.Seed,
		Logger:  o.logger,
	}
	if err := processor.Validate(cfg, popts); err != nil {
		return nil, err
	}
	p, err := resolve(cfg, flags)
	if err != nil {
		return nil, err
	}
	logger.Info("run starting",
		slog.String("processor", p.processor),
		slog.String("config", cfg.Name()),
		slog.Int("rows", cfg.NumOfRows))

	tracker := perf.New(o.clock)
	popts.Perf = tracker
	w, err := o.writerFor(ctx, cfg, p, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err == nil {
			return
		}
		if _, ferr := w.Finalize(ctx); ferr != nil {
			err = errors.Join(err, ferr)
		}
		logger.Error("run failed", slog.String("status", StatusFailed), slog.Any("error", err))
	}()

	var res *processor.Result
	if p.processor == ProcessorNormal {
		res, err = processor.NewNormal(cfg, popts).Run(ctx, w)
	} else {
		var c *processor.Chunked
		if c, err = processor.NewChunked(cfg, p.batch.BatchSize, p.batch.ChunkSize, popts); err != nil {
			return nil, err
		}
		res, err = c.WithClock(o.clock).Run(ctx, w)
	}
	if err != nil {
		return nil, err
	}

	stop := tracker.Start("finalize", res.Rows)
	ws, err := w.Finalize(ctx)
	stop()
	if err != nil {
		return nil, err
	}

	sum = &Summary{
		RunID:            runID,
		Status:           StatusCompleted,
		Processor:        p.processor,
		ConfigName:       cfg.Name(),
		RowsGenerated:    res.Rows,
		ColumnsGenerated: len(res.Columns),
		ColumnNames:      res.Columns,
		Writer:           ws,
		Seeds:            res.Seeds,
		Performance:      tracker.Report(),
		Duration:         o.clock().Sub(started),
	}
	if p.batch != nil {
		sum.ChunksProcessed = res.Chunks
		sum.ChunkSize = p.batch.ChunkSize
		sum.BatchSize = p.batch.BatchSize
	}
	logger.Info("run complete",
		slog.String("status", sum.Status),
		slog.Int("rows", sum.RowsGenerated),
		slog.Int("columns", sum.ColumnsGenerated))
	return sum, nil
}

func (o *Orchestrator) writerFor(ctx context.Context, cfg *config.Config, p plan, logger *slog.Logger) (writer.Writer, error) {
	if p.processor == ProcessorStream {
		return writer.NewStreamWriter(ctx, p.stream, o.queues, logger)
	}

	typ, params := "csv", map[string]any(nil)
	if p.file != nil {
		typ, params = p.file.Type, p.file.Params
	}
	fw, err := writer.NewFileWriter(typ, params, cfg.Name(), logger)
	if err != nil {
		return nil, err
	}
	if p.processor == ProcessorBatch {
		return writer.NewBatchWriter(fw, o.clock, logger), nil
	}
	return fw, nil
}
