package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/genxdata/internal/config"
	"github.com/roach88/genxdata/internal/orchestrator"
	"github.com/roach88/genxdata/internal/queue"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	BatchConfig  string
	StreamConfig string
	Seed         uint64
	Perf         bool

	// Queues allows overriding stream producers (for testing).
	// If nil, kafka, amqp and memory are registered.
	Queues *queue.Factory
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <config>",
		Short: "Generate a dataset from a config",
		Long: `Generate a synthetic dataset from a YAML, JSON or CUE config.

Without --batch-config or --stream-config the whole dataset is generated in
one pass and written by the config's file_writer. A batch config writes
numbered files of batch_size rows; a stream config sends each batch to
Kafka or AMQP.

Example:
  genxdata generate users.yaml
  genxdata generate users.yaml --batch-config batch.yaml
  genxdata generate users.yaml --stream-config kafka.yaml --seed 42`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.BatchConfig, "batch-config", "", "batch config file (batch_size, chunk_size, file_writer)")
	cmd.Flags().StringVar(&opts.StreamConfig, "stream-config", "", "stream config file (kafka or amqp)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "seed every strategy without its own seed")
	cmd.Flags().BoolVar(&opts.Perf, "perf", false, "print the performance report")
	cmd.MarkFlagsMutuallyExclusive("batch-config", "stream-config")

	return cmd
}

func runGenerate(opts *GenerateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	cfg, err := config.Load(path)
	if err != nil {
		return reportError(formatter, "failed to load config", err)
	}
	formatter.VerboseLog("Loaded %s: %d spec(s), %d row(s)", path, len(cfg.Configs), cfg.NumOfRows)

	var flags orchestrator.Flags
	if opts.BatchConfig != "" {
		if flags.Batch, err = loadBatchConfig(opts.BatchConfig); err != nil {
			return reportError(formatter, "failed to load batch config", err)
		}
	}
	if opts.StreamConfig != "" {
		if flags.Stream, err = loadSection(opts.StreamConfig, "stream"); err != nil {
			return reportError(formatter, "failed to load stream config", err)
		}
	}
	if cmd.Flags().Changed("seed") {
		seed := opts.Seed
		flags.Seed = &seed
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch := orchestrator.New(orchestrator.Options{Logger: logger, Queues: opts.Queues})
	sum, err := orch.Run(ctx, cfg, flags)
	if err != nil {
		return reportError(formatter, "generation failed", err)
	}
	formatter.RunID = sum.RunID
	return outputGenerateSummary(formatter, sum, opts.Perf)
}

// loadBatchConfig reads a batch config file. The sizes may sit at the top
// level or under a "batch" key.
func loadBatchConfig(path string) (*config.BatchConfig, error) {
	doc, err := loadSection(path, "batch")
	if err != nil {
		return nil, err
	}
	return config.DecodeBatch(doc)
}

// loadSection reads a config document and returns doc[key] when present,
// otherwise the whole document.
func loadSection(path, key string) (map[string]any, error) {
	doc, err := config.LoadDocument(path)
	if err != nil {
		return nil, err
	}
	if section, ok := doc[key].(map[string]any); ok {
		return section, nil
	}
	return doc, nil
}

func outputGenerateSummary(formatter *OutputFormatter, sum *orchestrator.Summary, perf bool) error {
	if formatter.Format == "json" {
		return formatter.Success(sum)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Generated %d rows × %d columns (%s)\n", sum.RowsGenerated, sum.ColumnsGenerated, sum.Processor)
	fmt.Fprintf(w, "  columns: %s\n", strings.Join(sum.ColumnNames, ", "))
	if sum.Processor != orchestrator.ProcessorNormal {
		fmt.Fprintf(w, "  batches: %d (batch_size=%d, chunk_size=%d, chunks=%d)\n",
			sum.Writer.BatchesWritten, sum.BatchSize, sum.ChunkSize, sum.ChunksProcessed)
	}
	switch {
	case sum.Writer.Destination != "":
		fmt.Fprintf(w, "  destination: %s\n", sum.Writer.Destination)
	case sum.Writer.LastWrittenPath != "":
		fmt.Fprintf(w, "  output: %s\n", sum.Writer.LastWrittenPath)
	}

	if perf && len(sum.Performance) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %-40s %6s %10s %10s %8s\n", "operation", "count", "total_ms", "avg_ms", "rows")
		for _, s := range sum.Performance {
			fmt.Fprintf(w, "  %-40s %6d %10.2f %10.2f %8d\n", s.Operation, s.Count, s.TotalMS, s.AvgMS(), s.Rows)
		}
	}
	return nil
}
