package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/genxdata/internal/config"
	"github.com/roach88/genxdata/internal/gerrors"
	"github.com/roach88/genxdata/internal/queue"
	"github.com/roach88/genxdata/internal/testutil"
)

func newOrchestrator(t *testing.T, producer *queue.MemoryProducer) *Orchestrator {
	t.Helper()
	queues := queue.NewFactory(testutil.Logger())
	if producer != nil {
		queues.Register(queue.TypeMemory, func(queue.Config, queue.Serializer, *slog.Logger) (queue.Producer, error) {
			return producer, nil
		})
	}
	return New(Options{
		Logger: testutil.Logger(),
		Queues: queues,
		Clock:  testutil.NewDeterministicClock(time.Millisecond).Now,
	})
}

func gradesConfig(rows int, out string) *config.Config {
	cfg := testutil.Config(rows,
		testutil.Spec("SERIES_STRATEGY", map[string]any{"start": 1}, "id"),
		testutil.Spec("DISTRIBUTED_CHOICE_STRATEGY", map[string]any{"choices": map[string]any{"a": 100}}, "grade"),
	)
	cfg.FileWriter = &config.WriterSpec{Type: "csv", Params: map[string]any{"output_path": out}}
	return cfg
}

func TestRun_NormalCSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "grades.csv")

	sum, err := newOrchestrator(t, nil).Run(context.Background(), gradesConfig(5, out), Flags{})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, sum.Status)
	assert.Equal(t, ProcessorNormal, sum.Processor)
	assert.Equal(t, "test", sum.ConfigName)
	assert.Equal(t, 5, sum.RowsGenerated)
	assert.Equal(t, 2, sum.ColumnsGenerated)
	assert.Equal(t, []string{"id", "grade"}, sum.ColumnNames)
	assert.Zero(t, sum.ChunksProcessed)
	assert.Equal(t, out, sum.Writer.LastWrittenPath)
	assert.NotEmpty(t, sum.RunID)
	assert.NotEmpty(t, sum.Performance)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "e2e_normal_csv", data)
}

func TestRun_DefaultWriterPath(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg := gradesConfig(3, "")
	cfg.FileWriter = nil

	sum, err := newOrchestrator(t, nil).Run(context.Background(), cfg, Flags{})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("output", "test.csv"), sum.Writer.LastWrittenPath)
	assert.FileExists(t, filepath.Join("output", "test.csv"))
}

func TestRun_Batch(t *testing.T) {
	dir := t.TempDir()
	cfg := gradesConfig(10, filepath.Join(dir, "grades.csv"))
	cfg.Batch = &config.BatchConfig{BatchSize: 4, ChunkSize: 2}

	sum, err := newOrchestrator(t, nil).Run(context.Background(), cfg, Flags{})
	require.NoError(t, err)

	assert.Equal(t, ProcessorBatch, sum.Processor)
	assert.Equal(t, 10, sum.RowsGenerated)
	assert.Equal(t, 5, sum.ChunksProcessed)
	assert.Equal(t, 4, sum.BatchSize)
	assert.Equal(t, 2, sum.ChunkSize)
	assert.Equal(t, 10, sum.Writer.TotalRowsWritten)
	assert.Equal(t, 3, sum.Writer.BatchesWritten)
	assert.Equal(t, []string{
		filepath.Join(dir, "grades_batch_0.csv"),
		filepath.Join(dir, "grades_batch_1.csv"),
		filepath.Join(dir, "grades_batch_2.csv"),
	}, sum.Writer.WrittenPaths)

	last, err := os.ReadFile(filepath.Join(dir, "grades_batch_2.csv"))
	require.NoError(t, err)
	assert.Equal(t, "id,grade\n9,a\n10,a\n", string(last))
}

func TestRun_BatchFlagOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := gradesConfig(6, filepath.Join(dir, "grades.csv"))
	cfg.Batch = &config.BatchConfig{BatchSize: 6, ChunkSize: 6}

	sum, err := newOrchestrator(t, nil).Run(context.Background(), cfg, Flags{
		Batch: &config.BatchConfig{
			BatchSize:  3,
			ChunkSize:  3,
			FileWriter: &config.WriterSpec{Type: "json", Params: map[string]any{"output_path": filepath.Join(dir, "b_{batch_index}.json")}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Writer.BatchesWritten)
	assert.Equal(t, "json", sum.Writer.Format)
	assert.FileExists(t, filepath.Join(dir, "b_1.json"))
}

func TestRun_Stream(t *testing.T) {
	producer := queue.NewMemoryProducer()
	cfg := gradesConfig(10, "")
	cfg.FileWriter = nil

	sum, err := newOrchestrator(t, producer).Run(context.Background(), cfg, Flags{
		Stream: map[string]any{"type": "memory", "batch_size": 4, "chunk_size": 2},
	})
	require.NoError(t, err)

	assert.Equal(t, ProcessorStream, sum.Processor)
	assert.Equal(t, 10, sum.Writer.TotalRowsWritten)

	msgs := producer.Messages()
	require.Len(t, msgs, 3)
	var ids []any
	for i, m := range msgs {
		require.NotNil(t, m.BatchInfo)
		assert.Equal(t, i, m.BatchInfo.BatchIndex)
		for _, r := range m.Data {
			id, ok := r.Get("id")
			require.True(t, ok)
			ids = append(ids, id)
		}
	}
	assert.Len(t, ids, 10)
	assert.Equal(t, int64(1), ids[0])
	assert.Equal(t, int64(10), ids[9])
	assert.Equal(t, 1, producer.Disconnects())
}

func TestRun_StreamFailureDisconnects(t *testing.T) {
	producer := queue.NewMemoryProducer()
	producer.FailOn = func(queue.Message) error { return errors.New("broker gone") }
	cfg := gradesConfig(4, "")
	cfg.Stream = map[string]any{"memory": map[string]any{}, "batch_size": 2, "chunk_size": 2}

	_, err := newOrchestrator(t, producer).Run(context.Background(), cfg, Flags{})
	require.Error(t, err)
	assert.True(t, gerrors.IsTransportWriteError(err))
	assert.ErrorContains(t, err, "broker gone")
	assert.Equal(t, 1, producer.Disconnects())
}

func TestRun_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := gradesConfig(5, filepath.Join(dir, "grades.csv"))
	cfg.Configs[1].Strategy.Params = map[string]any{"choices": map[string]any{"a": 60, "b": 35}}

	_, err := newOrchestrator(t, nil).Run(context.Background(), cfg, Flags{})
	require.Error(t, err)
	assert.True(t, gerrors.IsDistributionSumError(err))
	assert.NoFileExists(t, filepath.Join(dir, "grades.csv"))
}

func TestRun_StrategyErrorsSurfaceBeforeConnecting(t *testing.T) {
	producer := queue.NewMemoryProducer()
	producer.ConnectErr = errors.New("connection refused")
	o := newOrchestrator(t, producer)
	stream := map[string]any{"type": "memory"}

	t.Run("unknown strategy", func(t *testing.T) {
		cfg := gradesConfig(5, "")
		cfg.Configs[1].Strategy.Name = "NO_SUCH_STRATEGY"

		_, err := o.Run(context.Background(), cfg, Flags{Stream: stream})
		require.Error(t, err)
		assert.True(t, gerrors.IsUnknownStrategyError(err), "got %v", err)
		assert.False(t, gerrors.IsTransportWriteError(err))
	})

	t.Run("bad mask", func(t *testing.T) {
		cfg := gradesConfig(5, "")
		cfg.Configs[1].Mask = "missing > 1"

		_, err := o.Run(context.Background(), cfg, Flags{Stream: stream})
		require.Error(t, err)
		assert.True(t, gerrors.IsInvalidMaskError(err), "got %v", err)
	})

	t.Run("valid config reaches the transport", func(t *testing.T) {
		_, err := o.Run(context.Background(), gradesConfig(5, ""), Flags{Stream: stream})
		require.Error(t, err)
		assert.True(t, gerrors.IsTransportWriteError(err))
		assert.Contains(t, err.Error(), "memory connect failed")
	})
}

func TestRun_RejectsBadBatchSizing(t *testing.T) {
	cfg := gradesConfig(5, filepath.Join(t.TempDir(), "grades.csv"))
	_, err := newOrchestrator(t, nil).Run(context.Background(), cfg, Flags{
		Batch: &config.BatchConfig{BatchSize: 2, ChunkSize: 4},
	})
	assert.True(t, gerrors.IsConfigValidationError(err))
}

func TestRun_NilConfig(t *testing.T) {
	_, err := newOrchestrator(t, nil).Run(context.Background(), nil, Flags{})
	assert.True(t, gerrors.IsConfigValidationError(err))
}

func TestRun_SeedFlagRepeats(t *testing.T) {
	dir := t.TempDir()
	seed := uint64(9)
	run := func(name string) []byte {
		cfg := testutil.Config(20, testutil.Spec("RANDOM_NAME_STRATEGY", nil, "name"))
		cfg.FileWriter = &config.WriterSpec{Type: "csv", Params: map[string]any{"output_path": filepath.Join(dir, name)}}
		_, err := newOrchestrator(t, nil).Run(context.Background(), cfg, Flags{Seed: &seed})
		require.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		return data
	}
	assert.Equal(t, run("a.csv"), run("b.csv"))
}

func TestRun_ReportedSeedsReplayTheRun(t *testing.T) {
	dir := t.TempDir()
	run := func(name string, seed *int64, flags Flags) (*Summary, []byte) {
		cfg := testutil.Config(20, testutil.Spec("RANDOM_NAME_STRATEGY", nil, "name"))
		cfg.Configs[0].Seed = seed
		cfg.FileWriter = &config.WriterSpec{Type: "csv", Params: map[string]any{"output_path": filepath.Join(dir, name)}}
		sum, err := newOrchestrator(t, nil).Run(context.Background(), cfg, flags)
		require.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		return sum, data
	}

	flagSeed := uint64(9)
	first, want := run("first.csv", nil, Flags{Seed: &flagSeed})
	require.Contains(t, first.Seeds, "0:name")

	replay := int64(first.Seeds["0:name"])
	second, got := run("second.csv", &replay, Flags{})
	assert.Equal(t, first.Seeds, second.Seeds)
	assert.Equal(t, want, got)
}
