// Package config defines the generation configuration and loads it from
// YAML, JSON or CUE files.
//
// Every document, regardless of format, is normalized to plain Go values,
// checked against an embedded CUE schema, then decoded into Config. Schema
// and structural failures surface as gerrors.ConfigValidationError before
// any generation starts.
package config

import (
	"slices"
	"strings"
)

// Config is the immutable input of one generation run.
type Config struct {
	// Metadata holds free-form descriptive fields. "name" names the dataset.
	Metadata map[string]any `yaml:"metadata" json:"metadata,omitempty"`

	// NumOfRows is the number of rows to generate.
	NumOfRows int `yaml:"num_of_rows" json:"num_of_rows"`

	// Shuffle permutes the final rows in normal mode.
	Shuffle bool `yaml:"shuffle" json:"shuffle,omitempty"`

	// Configs are the column specs, applied in order.
	Configs []ColumnSpec `yaml:"configs" json:"configs"`

	// FileWriter selects the normal-mode output.
	FileWriter *WriterSpec `yaml:"file_writer" json:"file_writer,omitempty"`

	// Batch enables batch mode when present.
	Batch *BatchConfig `yaml:"batch" json:"batch,omitempty"`

	// Stream enables streaming mode when present. Its shape is transport
	// specific and is interpreted by the stream writer.
	Stream map[string]any `yaml:"stream" json:"stream,omitempty"`
}

// ColumnSpec binds one or more columns to a strategy.
type ColumnSpec struct {
	ColumnNames  []string     `yaml:"column_names" json:"column_names"`
	Strategy     StrategySpec `yaml:"strategy" json:"strategy"`
	Mask         string       `yaml:"mask" json:"mask,omitempty"`
	Unique       bool         `yaml:"unique" json:"unique,omitempty"`
	Seed         *int64       `yaml:"seed" json:"seed,omitempty"`
	Intermediate bool         `yaml:"intermediate" json:"intermediate,omitempty"`
	Disabled     bool         `yaml:"disabled" json:"disabled,omitempty"`
}

// IsUnique reports whether uniqueness was requested at either level.
func (c ColumnSpec) IsUnique() bool {
	return c.Unique || c.Strategy.Unique
}

// rewritingStrategies edit a column in place, so their specs may target a
// column an earlier spec produced.
var rewritingStrategies = map[string]bool{
	"REPLACEMENT_STRATEGY": true,
	"MAPPING_STRATEGY":     true,
	"DELETE_STRATEGY":      true,
}

// Rewrites reports whether the spec's strategy rewrites existing cells
// rather than producing a fresh column.
func (c ColumnSpec) Rewrites() bool {
	n := strings.ToUpper(strings.TrimSpace(c.Strategy.Name))
	n = strings.NewReplacer("-", "_", " ", "_").Replace(n)
	if n != "" && !strings.HasSuffix(n, "_STRATEGY") {
		n += "_STRATEGY"
	}
	return rewritingStrategies[n]
}

// StrategySpec names a strategy and its params.
type StrategySpec struct {
	Name   string         `yaml:"name" json:"name"`
	Params map[string]any `yaml:"params" json:"params,omitempty"`
	Unique bool           `yaml:"unique" json:"unique,omitempty"`
}

// WriterSpec selects a file encoder.
type WriterSpec struct {
	Type   string         `yaml:"type" json:"type"`
	Params map[string]any `yaml:"params" json:"params,omitempty"`
}

// BatchConfig configures batch mode.
type BatchConfig struct {
	BatchSize  int         `yaml:"batch_size" json:"batch_size"`
	ChunkSize  int         `yaml:"chunk_size" json:"chunk_size"`
	FileWriter *WriterSpec `yaml:"file_writer" json:"file_writer,omitempty"`
}

// Name returns metadata.name, or "" when unset.
func (c *Config) Name() string {
	if c.Metadata == nil {
		return ""
	}
	if s, ok := c.Metadata["name"].(string); ok {
		return s
	}
	return ""
}

// ColumnNames returns every target column in the order it first appears,
// skipping disabled specs.
func (c *Config) ColumnNames() []string {
	var out []string
	for _, spec := range c.Configs {
		if spec.Disabled {
			continue
		}
		for _, name := range spec.ColumnNames {
			if !slices.Contains(out, name) {
				out = append(out, name)
			}
		}
	}
	return out
}

// IntermediateColumns returns the columns dropped before output.
func (c *Config) IntermediateColumns() []string {
	var out []string
	for _, spec := range c.Configs {
		if !spec.Intermediate || spec.Disabled {
			continue
		}
		for _, name := range spec.ColumnNames {
			if !slices.Contains(out, name) {
				out = append(out, name)
			}
		}
	}
	return out
}
