package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a generation scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is the path of the generation config. Relative paths are
	// resolved against the scenario file's directory.
	Config string `yaml:"config"`

	// Seed fixes every unseeded strategy. Defaults to 1.
	Seed *uint64 `yaml:"seed,omitempty"`

	// Rows overrides num_of_rows when positive.
	Rows int `yaml:"rows,omitempty"`

	// Batch runs the chunked processor with these sizes.
	Batch *BatchStep `yaml:"batch,omitempty"`

	// Expect holds run-level expectations.
	Expect ExpectClause `yaml:"expect"`

	// Assertions validate the generated dataset.
	Assertions []Assertion `yaml:"assertions"`
}

// BatchStep sizes a chunked run.
type BatchStep struct {
	BatchSize int `yaml:"batch_size"`
	ChunkSize int `yaml:"chunk_size"`
}

// ExpectClause specifies run-level outcomes. Zero values are not checked.
type ExpectClause struct {
	// Error is the expected gerrors code. When set the run must fail
	// with it and assertions are skipped.
	Error string `yaml:"error,omitempty"`

	Rows    int      `yaml:"rows,omitempty"`
	Columns []string `yaml:"columns,omitempty"`
	Batches int      `yaml:"batches,omitempty"`
}

// Assertion validates the generated dataset.
type Assertion struct {
	// Type specifies the assertion type:
	// - "column_unique": column has no duplicate non-null cells
	// - "column_values": every cell of column is in values
	// - "column_range": numeric cells of column lie in [min, max]
	// - "masked_values": rows selected by mask hold one of values
	// - "final_state": rows matching where in the stored dataset match expect
	Type string `yaml:"type"`

	// Column is the column under test.
	Column string `yaml:"column,omitempty"`

	// Values are the allowed cell values. A null entry allows nulls.
	Values []interface{} `yaml:"values,omitempty"`

	// Min and Max bound column_range.
	Min *float64 `yaml:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty"`

	// Mask selects rows for masked_values.
	Mask string `yaml:"mask,omitempty"`

	// Where filters rows for final_state.
	// All fields must match exactly.
	Where map[string]interface{} `yaml:"where,omitempty"`

	// Expect contains expected field values (used by final_state).
	// Subset match - only specified fields are validated.
	Expect map[string]interface{} `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertColumnUnique = "column_unique"
	AssertColumnValues = "column_values"
	AssertColumnRange  = "column_range"
	AssertMaskedValues = "masked_values"
	AssertFinalState   = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve the config path relative to the scenario BEFORE validation
	if scenario.Config != "" && !filepath.IsAbs(scenario.Config) {
		scenario.Config = filepath.Join(filepath.Dir(path), scenario.Config)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Config == "" {
		return fmt.Errorf("config is required")
	}
	if _, err := os.Stat(s.Config); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", s.Config)
	}

	if s.Rows < 0 {
		return fmt.Errorf("rows must be non-negative")
	}

	if s.Batch != nil && (s.Batch.BatchSize <= 0 || s.Batch.ChunkSize <= 0) {
		return fmt.Errorf("batch: batch_size and chunk_size must be positive")
	}

	if s.Expect.Error == "" && len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required unless expect.error is set")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertColumnUnique:
		if a.Column == "" {
			return fmt.Errorf("assertions[%d]: column is required for column_unique", index)
		}
	case AssertColumnValues:
		if a.Column == "" || len(a.Values) == 0 {
			return fmt.Errorf("assertions[%d]: column and values are required for column_values", index)
		}
	case AssertColumnRange:
		if a.Column == "" {
			return fmt.Errorf("assertions[%d]: column is required for column_range", index)
		}
		if a.Min == nil && a.Max == nil {
			return fmt.Errorf("assertions[%d]: min or max is required for column_range", index)
		}
	case AssertMaskedValues:
		if a.Mask == "" || a.Column == "" || len(a.Values) == 0 {
			return fmt.Errorf("assertions[%d]: mask, column and values are required for masked_values", index)
		}
	case AssertFinalState:
		if len(a.Where) == 0 {
			return fmt.Errorf("assertions[%d]: where is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
