package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/genxdata/internal/queue"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeConfig copies testdata/people.yaml next to an output path in dir.
func writeConfig(t *testing.T, dir string, extra string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "people.yaml"))
	require.NoError(t, err)
	path := filepath.Join(dir, "people.yaml")
	require.NoError(t, os.WriteFile(path, append(data, []byte(extra)...), 0o644))
	return path
}

func TestGenerate_WritesFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "people.csv")
	cfg := writeConfig(t, dir, "file_writer: {type: csv, params: {output_path: "+out+"}}\n")

	stdout, err := execute(t, "generate", cfg, "--seed", "3", "--perf")
	require.NoError(t, err)

	assert.Contains(t, stdout, "✓ Generated 6 rows × 3 columns (normal)")
	assert.Contains(t, stdout, "columns: id, age, status")
	assert.Contains(t, stdout, "output: "+out)
	assert.Contains(t, stdout, "operation")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("id,age,status\n1,")))
}

func TestGenerate_JSONSummary(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "file_writer: {type: json, params: {output_path: "+filepath.Join(dir, "p.json")+"}}\n")

	stdout, err := execute(t, "--format", "json", "generate", cfg)
	require.NoError(t, err)

	var resp struct {
		Status string                 `json:"status"`
		Data   map[string]interface{} `json:"data"`
		RunID  string                 `json:"run_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, resp.RunID, resp.Data["run_id"])
	assert.Equal(t, "normal", resp.Data["processor_type"])
	assert.Equal(t, 6.0, resp.Data["rows_generated"])
	assert.Equal(t, "people", resp.Data["config_name"])
}

func TestGenerate_BatchConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")
	batch := filepath.Join(dir, "batch.yaml")
	require.NoError(t, os.WriteFile(batch, []byte(
		"batch:\n  batch_size: 4\n  chunk_size: 2\n  file_writer: {type: csv, params: {output_path: "+filepath.Join(dir, "out.csv")+"}}\n"), 0o644))

	stdout, err := execute(t, "generate", cfg, "--batch-config", batch)
	require.NoError(t, err)

	assert.Contains(t, stdout, "(batch)")
	assert.Contains(t, stdout, "batches: 2 (batch_size=4, chunk_size=2, chunks=3)")
	assert.FileExists(t, filepath.Join(dir, "out_batch_0.csv"))
	assert.FileExists(t, filepath.Join(dir, "out_batch_1.csv"))
}

func TestGenerate_StreamConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")
	stream := filepath.Join(dir, "stream.json")
	require.NoError(t, os.WriteFile(stream, []byte(`{"type": "memory", "batch_size": 3, "chunk_size": 3}`), 0o644))

	producer := queue.NewMemoryProducer()
	queues := queue.NewFactory(nil)
	queues.Register(queue.TypeMemory, func(queue.Config, queue.Serializer, *slog.Logger) (queue.Producer, error) {
		return producer, nil
	})

	out := &bytes.Buffer{}
	opts := &GenerateOptions{RootOptions: &RootOptions{Format: "text"}, Queues: queues}
	cmd := NewGenerateCommand(opts.RootOptions)
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.RunE = func(c *cobra.Command, args []string) error {
		opts.StreamConfig = stream
		return runGenerate(opts, args[0], c)
	}
	cmd.SetArgs([]string{cfg})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "destination: memory")
	assert.Len(t, producer.Messages(), 2)
}

func TestGenerate_MissingConfig(t *testing.T) {
	_, err := execute(t, "generate", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGenerate_BatchAndStreamExclusive(t *testing.T) {
	_, err := execute(t, "generate", "x.yaml", "--batch-config", "a", "--stream-config", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}

func TestValidate_Valid(t *testing.T) {
	stdout, err := execute(t, "validate", filepath.Join("testdata", "people.yaml"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ Config valid: 3 spec(s), 3 column(s), 6 row(s), normal mode")
}

func TestValidate_ValidJSON(t *testing.T) {
	stdout, err := execute(t, "--format", "json", "validate", filepath.Join("testdata", "people.yaml"))
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, true, data["valid"])
	assert.Equal(t, "people", data["name"])
}

func TestValidate_BadMask(t *testing.T) {
	stdout, err := execute(t, "--format", "json", "validate", filepath.Join("testdata", "bad_mask.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "INVALID_MASK", resp.Error.Code)
	details := resp.Error.Details.(map[string]interface{})
	assert.Equal(t, 1.0, details["spec_index"])
}

func TestValidate_BadStream(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "stream: {type: kafka, topic: events}\n")

	stdout, err := execute(t, "validate", cfg)
	require.Error(t, err)
	assert.Contains(t, stdout, "Error [CONFIG_VALIDATION]")
	assert.Contains(t, stdout, "bootstrap_servers")
}

func TestListStrategies(t *testing.T) {
	stdout, err := execute(t, "list-strategies")
	require.NoError(t, err)
	assert.Contains(t, stdout, "SERIES_STRATEGY")
	assert.Contains(t, stdout, "aliases: DATE_GENERATOR_STRATEGY")
}

func TestListStrategies_JSON(t *testing.T) {
	stdout, err := execute(t, "--format", "json", "list-strategies")
	require.NoError(t, err)

	var resp struct {
		Data []StrategyInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Len(t, resp.Data, 16)
	for _, info := range resp.Data {
		if info.Name == "SERIES_STRATEGY" {
			assert.Contains(t, info.Params, "start")
			assert.Contains(t, info.Params, "step")
		}
	}
}

func TestPreviewMask(t *testing.T) {
	stdout, err := execute(t, "--format", "json", "preview-mask",
		filepath.Join("testdata", "people.yaml"), "id > 50", "--rows", "200", "--seed", "1")
	require.NoError(t, err)

	var resp struct {
		Data PreviewResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, 200, resp.Data.Total)
	assert.Equal(t, 150, resp.Data.Matched)
	assert.InDelta(t, 75.0, resp.Data.Percentage, 0.001)
	assert.Equal(t, "id > 50", resp.Data.Expression)
}

func TestPreviewMask_UnknownColumn(t *testing.T) {
	stdout, err := execute(t, "preview-mask", filepath.Join("testdata", "people.yaml"), "height > 2")
	require.Error(t, err)
	assert.Contains(t, stdout, "Error [INVALID_MASK]")
}
