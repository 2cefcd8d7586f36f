package dataset

import (
	"encoding/json"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestFrame_SetRequiresAlignedLength(t *testing.T) {
	f := New(3)
	require.NoError(t, f.Set("id", []any{int64(1), int64(2), int64(3)}))

	err := f.Set("name", []any{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has 1 values")
	assert.Equal(t, []string{"id"}, f.Columns())
}

func TestFrame_SetRowsLeavesOtherRowsUntouched(t *testing.T) {
	f := New(4)
	require.NoError(t, f.Set("v", []any{"a", "b", "c", "d"}))

	require.NoError(t, f.SetRows("v", []int{1, 3}, []any{"x", "y"}))
	assert.Equal(t, []any{"a", "x", "c", "y"}, f.Column("v"))
}

func TestFrame_SetRowsCreatesMissingColumn(t *testing.T) {
	f := New(3)
	require.NoError(t, f.SetRows("new", []int{2}, []any{int64(7)}))
	assert.Equal(t, []any{nil, nil, int64(7)}, f.Column("new"))
}

func TestFrame_SubsetSliceAppend(t *testing.T) {
	f, err := FromColumns([]string{"a", "b"}, [][]any{
		{int64(1), int64(2), int64(3), int64(4)},
		{"w", "x", "y", "z"},
	})
	require.NoError(t, err)

	sub := f.Subset([]int{0, 2})
	assert.Equal(t, 2, sub.Len())
	assert.Equal(t, []any{"w", "y"}, sub.Column("b"))

	tail := f.Slice(2, 10)
	assert.Equal(t, 2, tail.Len())
	assert.Equal(t, []any{int64(3), int64(4)}, tail.Column("a"))

	acc := New(0)
	require.NoError(t, acc.Append(sub))
	require.NoError(t, acc.Append(tail))
	assert.Equal(t, 4, acc.Len())
	assert.Equal(t, []any{int64(1), int64(3), int64(3), int64(4)}, acc.Column("a"))
	assert.Equal(t, acc.Len()*acc.Width(), acc.CellCount())
}

func TestFrame_AppendRejectsMismatchedColumns(t *testing.T) {
	a, _ := FromColumns([]string{"a"}, [][]any{{int64(1)}})
	b, _ := FromColumns([]string{"b"}, [][]any{{int64(1)}})
	assert.Error(t, a.Append(b))
}

func TestFrame_DropAndShuffle(t *testing.T) {
	f, _ := FromColumns([]string{"a", "b"}, [][]any{
		{int64(1), int64(2), int64(3)},
		{int64(10), int64(20), int64(30)},
	})
	f.Shuffle(rand.New(rand.NewPCG(1, 2)))
	for i := 0; i < f.Len(); i++ {
		a, _ := AsInt64(f.Column("a")[i])
		b, _ := AsInt64(f.Column("b")[i])
		assert.Equal(t, a*10, b, "rows stay aligned after shuffle")
	}

	f.Drop("a", "missing")
	assert.Equal(t, []string{"b"}, f.Columns())
}

func TestFrame_Kind(t *testing.T) {
	f, _ := FromColumns(
		[]string{"i", "f", "mixed", "s", "null", "b"},
		[][]any{
			{int64(1), nil},
			{int64(1), 2.5},
			{int64(1), "x"},
			{"a", "b"},
			{nil, nil},
			{true, false},
		})

	assert.Equal(t, KindInt, f.Kind("i"))
	assert.Equal(t, KindFloat, f.Kind("f"))
	assert.Equal(t, KindString, f.Kind("mixed"))
	assert.Equal(t, KindString, f.Kind("s"))
	assert.Equal(t, KindNull, f.Kind("null"))
	assert.Equal(t, KindBool, f.Kind("b"))
	assert.Equal(t, "float64", f.DTypes()["f"])
}

func TestRecord_PreservesColumnOrder(t *testing.T) {
	f, _ := FromColumns([]string{"z", "a"}, [][]any{{int64(1)}, {"x"}})
	recs := f.Records()
	require.Len(t, recs, 1)

	data, err := json.Marshal(recs[0])
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":"x"}`, string(data))

	packed, err := msgpack.Marshal(recs[0])
	require.NoError(t, err)
	var back map[string]any
	require.NoError(t, msgpack.Unmarshal(packed, &back))
	assert.Equal(t, "x", back["a"])
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "", Format(nil))
	assert.Equal(t, "1.5", Format(1.5))
	assert.Equal(t, "3", Format(int64(3)))
	assert.Equal(t, "true", Format(true))
}
