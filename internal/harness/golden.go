package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/genxdata/internal/dataset"
)

// Snapshot captures the dataset a scenario generated.
// Records keep column order so golden files diff cleanly.
type Snapshot struct {
	ScenarioName string           `json:"scenario_name"`
	Rows         int              `json:"rows"`
	Columns      []string         `json:"columns"`
	Batches      int              `json:"batches"`
	Records      []dataset.Record `json:"records"`
}

func newSnapshot(name string, result *Result) Snapshot {
	s := Snapshot{ScenarioName: name, Batches: result.Batches}
	if result.Frame != nil {
		s.Rows = result.Frame.Len()
		s.Columns = result.Frame.Columns()
		s.Records = result.Frame.Records()
	}
	return s
}

// MarshalSnapshot renders the golden form of a result: indented JSON with
// no trailing newline.
func MarshalSnapshot(scenarioName string, result *Result) ([]byte, error) {
	return json.MarshalIndent(newSnapshot(scenarioName, result), "", "  ")
}

// RunWithGolden executes a scenario and compares the dataset against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the dataset doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
