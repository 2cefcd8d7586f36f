package writer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/genxdata/internal/dataset"
	"github.com/roach88/genxdata/internal/gerrors"
	"github.com/roach88/genxdata/internal/queue"
	"github.com/roach88/genxdata/internal/source"
	"github.com/roach88/genxdata/internal/store"
)

func peopleFrame(t *testing.T) *dataset.Frame {
	t.Helper()
	f, err := dataset.FromColumns(
		[]string{"id", "name", "score"},
		[][]any{
			{int64(1), int64(2), int64(3)},
			{"ann", "bob", nil},
			{1.5, 2.25, 3.0},
		})
	require.NoError(t, err)
	return f
}

func newGolden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func writeOnce(t *testing.T, typ string, params map[string]any) string {
	t.Helper()
	w, err := NewFileWriter(typ, params, "people", nil)
	require.NoError(t, err)
	res, err := w.Write(context.Background(), peopleFrame(t), Meta{Name: "people"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Rows)
	return res.Path
}

func TestLookup_NormalizesTypes(t *testing.T) {
	tests := map[string]string{
		"csv":           "csv",
		"CSV_WRITER":    "csv",
		" Json ":        "json",
		"xlsx":          "excel",
		"XLS_writer":    "excel",
		"excel":         "excel",
		"db":            "sqlite",
		"htm":           "html",
		"FEATHER":       "feather",
		"parquet":       "parquet",
		"sqlite_WRITER": "sqlite",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			f, err := Lookup(in)
			require.NoError(t, err)
			assert.Equal(t, want, f.Name)
		})
	}

	_, err := Lookup("yaml")
	assert.True(t, gerrors.IsConfigValidationError(err))
	_, err = Lookup("")
	assert.True(t, gerrors.IsConfigValidationError(err))
}

func TestFileWriter_DefaultPath(t *testing.T) {
	w, err := NewFileWriter("parquet", nil, "users", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("output", "users.parquet"), w.Template())

	_, err = NewFileWriter("csv", map[string]any{"delimiter": ";"}, "users", nil)
	assert.True(t, gerrors.IsConfigValidationError(err))

	w, err = NewFileWriter("csv", map[string]any{"path": "x/legacy.csv"}, "users", nil)
	require.NoError(t, err)
	assert.Equal(t, "x/legacy.csv", w.Template())
}

func TestFileWriter_ResolvePath(t *testing.T) {
	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	tests := []struct {
		name     string
		typ      string
		template string
		batch    *dataset.BatchInfo
		want     string
	}{
		{"plain", "csv", "out/data.csv", nil, "out/data.csv"},
		{"extension replaced", "csv", "out/data.txt", nil, "out/data.csv"},
		{"extension added", "json", "out/data", nil, "out/data.json"},
		{"alternate extension kept", "html", "out/data.htm", nil, "out/data.htm"},
		{"batch placeholder", "csv", "out/part_{batch_index}.csv", &dataset.BatchInfo{BatchIndex: 2}, "out/part_2.csv"},
		{"batch suffix", "csv", "out/data.csv", &dataset.BatchInfo{BatchIndex: 3}, "out/data_batch_3.csv"},
		{"timestamp", "json", "out/{timestamp}_{batch_index}.json", &dataset.BatchInfo{BatchIndex: 0, Timestamp: ts}, "out/20240506T070809Z_0.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewFileWriter(tt.typ, map[string]any{"output_path": tt.template}, "", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, w.ResolvePath(Meta{Batch: tt.batch}))
		})
	}
}

func TestEncode_CSVGolden(t *testing.T) {
	path := writeOnce(t, "csv", map[string]any{"output_path": filepath.Join(t.TempDir(), "people.csv")})
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	newGolden(t).Assert(t, "people_csv", got)
}

func TestEncode_JSONGolden(t *testing.T) {
	dir := t.TempDir()

	path := writeOnce(t, "json", map[string]any{"output_path": filepath.Join(dir, "people.json")})
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	newGolden(t).Assert(t, "people_json", got)

	path = writeOnce(t, "json", map[string]any{"output_path": filepath.Join(dir, "people.jsonl")})
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	newGolden(t).Assert(t, "people_jsonl", got)
}

func TestEncode_CSVDelimiterAndHeader(t *testing.T) {
	path := writeOnce(t, "csv", map[string]any{
		"output_path": filepath.Join(t.TempDir(), "p.csv"), "delimiter": ";", "header": false,
	})
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1;ann;1.5\n2;bob;2.25\n3;;3\n", string(got))
}

func TestEncode_ExcelReadsBack(t *testing.T) {
	path := writeOnce(t, "xlsx", map[string]any{"output_path": filepath.Join(t.TempDir(), "people.xls")})
	assert.Equal(t, ".xlsx", filepath.Ext(path))

	tbl, err := source.Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "score"}, tbl.Header)
	names, err := tbl.Column("name")
	require.NoError(t, err)
	assert.Equal(t, []string{"ann", "bob", ""}, names)
	scores, err := tbl.Column("score")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.5", "2.25", "3"}, scores)
}

func TestEncode_ParquetReadsBack(t *testing.T) {
	path := writeOnce(t, "parquet", map[string]any{"output_path": filepath.Join(t.TempDir(), "people.parquet")})

	tbl, err := source.Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "score"}, tbl.Header)
	assert.Equal(t, [][]string{{"1", "ann", "1.5"}, {"2", "bob", "2.25"}, {"3", "", "3"}}, tbl.Rows)
}

func TestEncode_ParquetRejectsUnknownCompression(t *testing.T) {
	w, err := NewFileWriter("parquet", map[string]any{
		"output_path": filepath.Join(t.TempDir(), "p.parquet"), "compression": "lzma",
	}, "", nil)
	require.NoError(t, err)
	_, err = w.Write(context.Background(), peopleFrame(t), Meta{})
	require.Error(t, err)
	assert.True(t, gerrors.IsWriterError(err))
}

func TestEncode_SQLiteModes(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "people.db")

	writeOnce(t, "sqlite", map[string]any{"output_path": path, "table": "people"})
	writeOnce(t, "sqlite", map[string]any{"output_path": path, "table": "people", "if_exists": "append"})

	s, err := store.Open(path)
	require.NoError(t, err)
	n, err := s.Count(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	s.Close()

	writeOnce(t, "sqlite", map[string]any{"output_path": path, "table": "people"})
	s, err = store.Open(path)
	require.NoError(t, err)
	got, err := s.ReadFrame(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len())
	assert.Equal(t, []any{"ann", "bob", nil}, got.Column("name"))
	s.Close()

	w, err := NewFileWriter("sqlite", map[string]any{"output_path": path, "table": "people", "if_exists": "fail"}, "", nil)
	require.NoError(t, err)
	_, err = w.Write(ctx, peopleFrame(t), Meta{})
	assert.True(t, gerrors.IsWriterError(err))
}

func TestEncode_HTML(t *testing.T) {
	path := writeOnce(t, "html", map[string]any{"output_path": filepath.Join(t.TempDir(), "people.html")})
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(got), "<title>people</title>")
	assert.Contains(t, string(got), "<th>id</th><th>name</th><th>score</th>")
	assert.Contains(t, string(got), "<tr><td>3</td><td></td><td>3</td></tr>")
}

func TestEncode_FeatherReadsBack(t *testing.T) {
	path := writeOnce(t, "feather", map[string]any{"output_path": filepath.Join(t.TempDir(), "people")})
	assert.Equal(t, ".feather", filepath.Ext(path))

	fh, err := os.Open(path)
	require.NoError(t, err)
	defer fh.Close()
	r, err := ipc.NewFileReader(fh, ipc.WithAllocator(memory.NewGoAllocator()))
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, 1, r.NumRecords())
	rec, err := r.Record(0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.NumRows())
	assert.Equal(t, int64(2), rec.Column(0).(*array.Int64).Value(1))
	names := rec.Column(1).(*array.String)
	assert.Equal(t, "bob", names.Value(1))
	assert.True(t, names.IsNull(2))
	assert.Equal(t, 2.25, rec.Column(2).(*array.Float64).Value(1))
}

func TestFileWriter_WriteErrorCarriesPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	w, err := NewFileWriter("csv", map[string]any{"output_path": filepath.Join(blocker, "sub", "x.csv")}, "", nil)
	require.NoError(t, err)
	_, err = w.Write(context.Background(), peopleFrame(t), Meta{})
	require.Error(t, err)

	var ge *gerrors.Error
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, gerrors.CodeWriter, ge.Code)
	assert.Equal(t, filepath.Join(blocker, "sub", "x.csv"), ge.Path)
}

func TestBatchWriter_FinalizeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fw, err := NewFileWriter("csv", map[string]any{"output_path": filepath.Join(dir, "b_{batch_index}.csv")}, "", nil)
	require.NoError(t, err)
	bw := NewBatchWriter(fw, nil, nil)

	for i, n := range []int{4, 4, 2} {
		f := dataset.New(n)
		require.NoError(t, f.Set("id", make([]any, n)))
		res, err := bw.Write(ctx, f, Meta{Batch: &dataset.BatchInfo{BatchIndex: i, BatchSize: n}})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, fmt.Sprintf("b_%d.csv", i)), res.Path)
	}

	first, err := bw.Finalize(ctx)
	require.NoError(t, err)
	second, err := bw.Finalize(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 3, first.BatchesWritten)
	assert.Equal(t, 10, first.TotalRowsWritten)
	assert.Len(t, first.WrittenPaths, 3)
	assert.Equal(t, "batch", first.Writer)
	require.NotNil(t, first.Inner)
	assert.Equal(t, 3, first.Inner.BatchesWritten)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestBatchWriter_NumbersBatchesWithoutInfo(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fw, err := NewFileWriter("json", map[string]any{"output_path": filepath.Join(dir, "rows.json")}, "", nil)
	require.NoError(t, err)
	clock := func() time.Time { return time.Unix(0, 0) }
	bw := NewBatchWriter(fw, clock, nil)

	for range 2 {
		_, err := bw.Write(ctx, peopleFrame(t), Meta{})
		require.NoError(t, err)
	}
	sum, err := bw.Finalize(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "rows_batch_0.json"),
		filepath.Join(dir, "rows_batch_1.json"),
	}, sum.WrittenPaths)
}

func TestStreamWriter_SendsOneMessagePerFrame(t *testing.T) {
	ctx := context.Background()
	p := queue.NewMemoryProducer()
	sw, err := NewStreamWriterFor(ctx, p, queue.TypeMemory, nil)
	require.NoError(t, err)

	info := &dataset.BatchInfo{BatchIndex: 0, BatchSize: 3}
	res, err := sw.Write(ctx, peopleFrame(t), Meta{Batch: info})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Rows)

	res, err = sw.Write(ctx, dataset.New(0), Meta{})
	require.NoError(t, err)
	assert.Zero(t, res.Rows)

	msgs := p.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, info, msgs[0].BatchInfo)
	assert.Equal(t, []string{"id", "name", "score"}, msgs[0].Metadata.Columns)

	s1, err := sw.Finalize(ctx)
	require.NoError(t, err)
	s2, err := sw.Finalize(ctx)
	require.NoError(t, err)
	assert.Equal(t, s1, s2)
	assert.Equal(t, 1, p.Disconnects())
	assert.Equal(t, 3, s1.TotalRowsWritten)
}

func TestStreamWriter_TransportFailureIsTyped(t *testing.T) {
	ctx := context.Background()
	p := queue.NewMemoryProducer()
	p.FailOn = func(queue.Message) error { return errors.New("connection reset") }
	sw, err := NewStreamWriterFor(ctx, p, queue.TypeMemory, nil)
	require.NoError(t, err)

	_, err = sw.Write(ctx, peopleFrame(t), Meta{})
	require.Error(t, err)
	assert.True(t, gerrors.IsTransportWriteError(err))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestStreamWriter_ConnectFailureIsTyped(t *testing.T) {
	p := queue.NewMemoryProducer()
	p.ConnectErr = errors.New("connection refused")

	_, err := NewStreamWriterFor(context.Background(), p, queue.TypeMemory, nil)
	require.Error(t, err)
	assert.True(t, gerrors.IsTransportWriteError(err))
	assert.Contains(t, err.Error(), "memory connect failed")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestStreamWriter_DisconnectFailureIsReturnedOnce(t *testing.T) {
	ctx := context.Background()
	p := queue.NewMemoryProducer()
	p.DisconnectErr = errors.New("socket closed")
	sw, err := NewStreamWriterFor(ctx, p, queue.TypeMemory, nil)
	require.NoError(t, err)
	_, err = sw.Write(ctx, peopleFrame(t), Meta{})
	require.NoError(t, err)

	s1, err := sw.Finalize(ctx)
	require.Error(t, err)
	assert.True(t, gerrors.IsTransportWriteError(err))
	assert.Contains(t, err.Error(), "memory disconnect failed")
	assert.Equal(t, 3, s1.TotalRowsWritten)

	s2, err := sw.Finalize(ctx)
	require.NoError(t, err)
	assert.Equal(t, s1, s2)
	assert.Equal(t, 1, p.Disconnects())
}

func TestNewStreamWriter_FromRawConfig(t *testing.T) {
	ctx := context.Background()
	sw, err := NewStreamWriter(ctx, map[string]any{"type": "memory"}, queue.NewFactory(nil), nil)
	require.NoError(t, err)
	_, err = sw.Write(ctx, peopleFrame(t), Meta{})
	require.NoError(t, err)

	_, err = NewStreamWriter(ctx, map[string]any{"type": "kafka"}, queue.NewFactory(nil), nil)
	assert.True(t, gerrors.IsConfigValidationError(err))
}
