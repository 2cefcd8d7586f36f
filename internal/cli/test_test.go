package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const idsConfig = `metadata: {name: ids}
num_of_rows: 4
configs:
  - column_names: [id]
    strategy: {name: SERIES_STRATEGY, params: {start: 1}}
`

// writeScenarios lays out dir/configs/ids.yaml plus one scenario file per
// entry of scenarios (file name -> largest allowed id).
func writeScenarios(t *testing.T, scenarios map[string]int) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "ids.yaml"), []byte(idsConfig), 0o644))

	for name, maxID := range scenarios {
		body := "name: " + name + "\n" +
			"description: ids stay in range\n" +
			"config: configs/ids.yaml\n" +
			"expect: {rows: 4}\n" +
			"assertions:\n" +
			"  - type: column_range\n" +
			"    column: id\n" +
			"    min: 1\n" +
			"    max: " + strconv.Itoa(maxID) + "\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(body), 0o644))
	}
	return dir
}

func TestTest_AllPass(t *testing.T) {
	dir := writeScenarios(t, map[string]int{"ids_a": 4, "ids_b": 9})

	stdout, err := execute(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ ids_a\n✓ ids_b\n")
	assert.Contains(t, stdout, "Test Summary: 2 passed, 0 failed, 2 total")
	assert.Contains(t, stdout, "✓ All scenarios passed")
}

func TestTest_FailingScenario(t *testing.T) {
	dir := writeScenarios(t, map[string]int{"ids_ok": 4, "ids_tight": 3})

	stdout, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ ids_tight")
	assert.Contains(t, stdout, "Assertion failed: column_range")
	assert.Contains(t, stdout, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTest_FailingScenarioJSON(t *testing.T) {
	dir := writeScenarios(t, map[string]int{"ids_tight": 3})

	stdout, err := execute(t, "--format", "json", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	details := resp.Error.Details.(map[string]interface{})
	assert.Equal(t, 1.0, details["failed"])
}

func TestTest_GoldenUpdateThenMatch(t *testing.T) {
	dir := writeScenarios(t, map[string]int{"ids": 4})

	stdout, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ ids (golden updated)")

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "ids.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario_name": "ids"`)

	stdout, err = execute(t, "--format", "json", "test", dir)
	require.NoError(t, err)
	var resp struct {
		Data TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "match", resp.Data.Scenarios[0].Golden)
	assert.True(t, resp.Data.Scenarios[0].Pass)
}

func TestTest_GoldenMismatch(t *testing.T) {
	dir := writeScenarios(t, map[string]int{"ids": 4})
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "ids.golden"), []byte("{}"), 0o644))

	stdout, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "does not match golden file")
}

func TestTest_Filter(t *testing.T) {
	dir := writeScenarios(t, map[string]int{"ids_a": 4, "other": 3})

	stdout, err := execute(t, "test", dir, "--filter", "ids_*")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.NotContains(t, stdout, "other")
}

func TestTest_BadScenarioFile(t *testing.T) {
	dir := writeScenarios(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: broken\nbogus: 1\n"), 0o644))

	stdout, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "✗ broken.yaml")
	assert.Contains(t, stdout, "load:")
}

func TestTest_NoScenarios(t *testing.T) {
	stdout, err := execute(t, "test", writeScenarios(t, nil))
	require.NoError(t, err)
	assert.Contains(t, stdout, "No scenarios found.")
}

func TestTest_MissingDirectory(t *testing.T) {
	_, err := execute(t, "test", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
