package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cfg.yaml"), []byte("num_of_rows: 1\n"), 0o644))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenario_ResolvesConfigRelativeToFile(t *testing.T) {
	s := loadScenario(t, "tagged_ids")
	assert.Equal(t, filepath.Join("testdata", "configs", "tagged.yaml"), s.Config)
	assert.Equal(t, []string{"id", "grade", "code"}, s.Expect.Columns)
	require.Len(t, s.Assertions, 3)
	assert.Equal(t, AssertFinalState, s.Assertions[2].Type)
}

func TestLoadScenario_Batch(t *testing.T) {
	s := loadScenario(t, "people_batched")
	require.NotNil(t, s.Batch)
	assert.Equal(t, BatchStep{BatchSize: 4, ChunkSize: 3}, *s.Batch)
	assert.Equal(t, 10, s.Rows)
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown field", "name: x\ndescription: d\nconfig: cfg.yaml\nassertion: []\n", "field assertion not found"},
		{"missing name", "description: d\nconfig: cfg.yaml\n", "name is required"},
		{"missing description", "name: x\nconfig: cfg.yaml\n", "description is required"},
		{"missing config file", "name: x\ndescription: d\nconfig: nope.yaml\n", "config file not found"},
		{"no assertions", "name: x\ndescription: d\nconfig: cfg.yaml\n", "assertions list is required"},
		{"bad batch", "name: x\ndescription: d\nconfig: cfg.yaml\nbatch: {batch_size: 0, chunk_size: 1}\nexpect: {error: X}\n", "batch_size and chunk_size"},
		{"unknown assertion", "name: x\ndescription: d\nconfig: cfg.yaml\nassertions:\n  - type: nope\n", `unknown assertion type "nope"`},
		{"range without bounds", "name: x\ndescription: d\nconfig: cfg.yaml\nassertions:\n  - type: column_range\n    column: a\n", "min or max is required"},
		{"final_state without expect", "name: x\ndescription: d\nconfig: cfg.yaml\nassertions:\n  - type: final_state\n    where: {a: 1}\n", "expect is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}
