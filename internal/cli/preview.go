package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/genxdata/internal/config"
	"github.com/roach88/genxdata/internal/mask"
	"github.com/roach88/genxdata/internal/processor"
)

// PreviewOptions holds flags for the preview-mask command.
type PreviewOptions struct {
	*RootOptions
	Rows int
	Seed uint64
}

// PreviewResult is the JSON output structure for preview-mask.
type PreviewResult struct {
	Expression string `json:"expression"`
	mask.Preview
}

// NewPreviewMaskCommand creates the preview-mask command.
func NewPreviewMaskCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PreviewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "preview-mask <config> <expression>",
		Short: "Count the rows a mask selects on a sample",
		Long: `Generate a sample from a config and report how many rows a mask
expression selects. Nothing is written.

Example:
  genxdata preview-mask users.yaml "age > 30 and city == 'Paris'" --rows 500`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreviewMask(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Rows, "rows", 100, "sample size")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "seed for the sample")

	return cmd
}

func runPreviewMask(opts *PreviewOptions, path, expression string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	if opts.Rows <= 0 {
		return reportError(formatter, "invalid flags", fmt.Errorf("--rows must be positive, got %d", opts.Rows))
	}
	cfg, err := config.Load(path)
	if err != nil {
		return reportError(formatter, "failed to load config", err)
	}
	sample := *cfg
	sample.NumOfRows = opts.Rows
	sample.Shuffle = false

	popts := processor.Options{Logger: logger}
	if cmd.Flags().Changed("seed") {
		seed := opts.Seed
		popts.Seed = &seed
	}
	res, err := processor.NewNormal(&sample, popts).Run(cmd.Context(), nil)
	if err != nil {
		return reportError(formatter, "failed to generate sample", err)
	}

	preview, err := mask.NewEvaluator(logger).Preview(expression, res.Frame)
	if err != nil {
		return reportError(formatter, "invalid mask", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(PreviewResult{Expression: expression, Preview: preview})
	}
	fmt.Fprintf(formatter.Writer, "%d of %d rows match (%.1f%%)\n", preview.Matched, preview.Total, preview.Percentage)
	return nil
}
