package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/genxdata/internal/config"
	"github.com/roach88/genxdata/internal/processor"
	"github.com/roach88/genxdata/internal/queue"
)

// ValidationResult is the JSON output structure for validate command.
type ValidationResult struct {
	Valid   bool     `json:"valid"`
	Name    string   `json:"name,omitempty"`
	Rows    int      `json:"num_of_rows"`
	Specs   int      `json:"specs"`
	Columns []string `json:"columns"`
	Mode    string   `json:"mode"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate a config without generating",
		Long: `Validate a config: schema, column specs, strategy params, masks and
any batch or stream section. No rows are generated and nothing is written.

Example:
  genxdata validate users.yaml
  genxdata validate users.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	logger := newLogger(opts, cmd.ErrOrStderr())

	cfg, err := config.Load(path)
	if err != nil {
		return reportError(formatter, "validation failed", err)
	}
	formatter.VerboseLog("Schema valid: %d spec(s)", len(cfg.Configs))

	if err := processor.Validate(cfg, processor.Options{Logger: logger}); err != nil {
		return reportError(formatter, "validation failed", err)
	}

	mode := "normal"
	if cfg.Batch != nil {
		mode = "batch"
	}
	if cfg.Stream != nil {
		if _, err := queue.ParseConfig(cfg.Stream); err != nil {
			return reportError(formatter, "validation failed", err)
		}
		mode = "stream"
	}

	result := ValidationResult{
		Valid:   true,
		Name:    cfg.Name(),
		Rows:    cfg.NumOfRows,
		Specs:   len(cfg.Configs),
		Columns: cfg.ColumnNames(),
		Mode:    mode,
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Config valid: %d spec(s), %d column(s), %d row(s), %s mode\n",
		result.Specs, len(result.Columns), result.Rows, result.Mode)
	return nil
}
