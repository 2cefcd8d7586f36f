package config

import (
	"fmt"
	"strings"

	"github.com/roach88/genxdata/internal/gerrors"
)

// Validate checks structural rules the schema cannot express. Each column
// is produced by one spec; specs whose strategy rewrites cells may also
// target a column an earlier spec produced.
func Validate(cfg *Config) error {
	if cfg.NumOfRows <= 0 {
		return gerrors.NewConfigValidationError("num_of_rows must be positive", "num_of_rows")
	}
	if len(cfg.Configs) == 0 {
		return gerrors.NewConfigValidationError("configs must contain at least one column spec", "configs")
	}
	seen := map[string]int{}
	for i, spec := range cfg.Configs {
		if len(spec.ColumnNames) == 0 {
			return gerrors.NewConfigValidationError("column_names must not be empty", "column_names").
				WithSpec(i, nil)
		}
		if strings.TrimSpace(spec.Strategy.Name) == "" {
			return gerrors.NewConfigValidationError("strategy.name is required", "strategy.name").
				WithSpec(i, spec.ColumnNames)
		}
		for _, name := range spec.ColumnNames {
			prev, dup := seen[name]
			if dup && spec.Rewrites() {
				continue
			}
			if dup {
				return gerrors.NewConfigValidationError(
					fmt.Sprintf("column %q is already produced by spec %d", name, prev), "column_names").
					WithSpec(i, spec.ColumnNames)
			}
			seen[name] = i
		}
	}
	if cfg.Batch != nil {
		if err := ValidateBatch(cfg.Batch); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBatch checks batch sizing: both sizes positive and
// chunk_size <= batch_size.
func ValidateBatch(bc *BatchConfig) error {
	if bc.BatchSize <= 0 {
		return gerrors.NewConfigValidationError("batch_size must be positive", "batch_size")
	}
	if bc.ChunkSize <= 0 {
		return gerrors.NewConfigValidationError("chunk_size must be positive", "chunk_size")
	}
	if bc.ChunkSize > bc.BatchSize {
		return gerrors.NewConfigValidationError(
			fmt.Sprintf("chunk_size (%d) must not exceed batch_size (%d)", bc.ChunkSize, bc.BatchSize),
			"chunk_size", "batch_size")
	}
	return nil
}
