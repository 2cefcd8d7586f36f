package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/genxdata/internal/gerrors"
)

func create(t *testing.T, mode Mode, name string, params map[string]any) Strategy {
	t.Helper()
	return createFor(t, mode, name, "col", params)
}

func createFor(t *testing.T, mode Mode, name, column string, params map[string]any) Strategy {
	t.Helper()
	s, err := DefaultFactory(nil).Create(mode, name, params, Options{Column: column, Seed: seed(42)})
	require.NoError(t, err)
	return s
}

func TestSeries_Defaults(t *testing.T) {
	s := create(t, ModeNormal, "SERIES_STRATEGY", nil)
	got, err := Generate(s, 5)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2), int64(3), int64(4), int64(5)}, got)
}

func TestSeries_FloatStep(t *testing.T) {
	s := create(t, ModeNormal, "SERIES_STRATEGY", map[string]any{"start": 0, "step": 0.5})
	got, err := Generate(s, 3)
	require.NoError(t, err)
	assert.Equal(t, []any{0.0, 0.5, 1.0}, got)
}

func TestSeries_ChunkingIsStateContinuous(t *testing.T) {
	whole := create(t, ModeNormal, "SERIES_STRATEGY", map[string]any{"start": 10, "step": 3})
	want, err := Generate(whole, 17)
	require.NoError(t, err)

	for _, chunks := range [][]int{{17}, {1, 16}, {5, 5, 5, 2}, {2, 2, 2, 2, 2, 2, 2, 2, 1}} {
		s := create(t, ModeChunked, "SERIES_STRATEGY", map[string]any{"start": 10, "step": 3})
		var got []any
		for _, n := range chunks {
			part, err := s.GenerateChunk(n)
			require.NoError(t, err)
			s.(Stateful).SyncState(part)
			got = append(got, part...)
		}
		assert.Equal(t, want, got, "chunks %v", chunks)
		assert.Equal(t, want[len(want)-1], s.(Stateful).CurrentState()["last_value"])
	}
}

func TestSeries_GenerateRestarts(t *testing.T) {
	s := create(t, ModeNormal, "SERIES_STRATEGY", nil)
	_, err := s.GenerateChunk(4)
	require.NoError(t, err)

	got, err := Generate(s, 2)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, got)
}

func TestRandomNumberRange_UpperBoundExclusive(t *testing.T) {
	s := create(t, ModeNormal, "RANDOM_NUMBER_RANGE_STRATEGY", map[string]any{"start": 0, "end": 5})
	got, err := Generate(s, 500)
	require.NoError(t, err)

	seen := map[int64]bool{}
	for _, v := range got {
		n := v.(int64)
		assert.GreaterOrEqual(t, n, int64(0))
		assert.Less(t, n, int64(5))
		seen[n] = true
	}
	assert.Len(t, seen, 5)
}

func TestRandomNumberRange_Precision(t *testing.T) {
	s := create(t, ModeNormal, "RANDOM_NUMBER_RANGE_STRATEGY",
		map[string]any{"start": 1, "end": 2, "precision": 2})
	got, err := Generate(s, 50)
	require.NoError(t, err)
	for _, v := range got {
		f := v.(float64)
		assert.GreaterOrEqual(t, f, 1.0)
		assert.Less(t, f, 2.0)
		assert.InDelta(t, f, roundTo(f, 2), 1e-12)
	}
}

func TestRandomNumberRange_RoundingStaysInRange(t *testing.T) {
	s := create(t, ModeNormal, "RANDOM_NUMBER_RANGE_STRATEGY",
		map[string]any{"start": 0.05, "end": 1, "precision": 1})
	got, err := Generate(s, 10000)
	require.NoError(t, err)

	seen := map[float64]bool{}
	for _, v := range got {
		f := v.(float64)
		assert.GreaterOrEqual(t, f, 0.05)
		assert.Less(t, f, 1.0)
		seen[f] = true
	}
	assert.True(t, seen[0.9])
	assert.True(t, seen[0.1])
	assert.False(t, seen[0.0])
}

func TestRandomNumberRange_EmptyGridRejected(t *testing.T) {
	_, err := DefaultFactory(nil).ValidateParams("RANDOM_NUMBER_RANGE_STRATEGY",
		map[string]any{"start": 1.05, "end": 1.1, "precision": 1})
	require.Error(t, err)
	assert.True(t, gerrors.IsInvalidStrategyConfigError(err))
	assert.Contains(t, err.Error(), "holds no value at precision 1")
}

func TestRandomNumberRange_Domain(t *testing.T) {
	s := create(t, ModeNormal, "RANDOM_NUMBER_RANGE_STRATEGY",
		map[string]any{"start": 0, "end": 10, "step": 2})
	dom, ok := s.(Enumerable).Domain()
	require.True(t, ok)
	assert.Equal(t, []any{int64(0), int64(2), int64(4), int64(6), int64(8)}, dom)
}

func TestDistributedNumberRange_WeightsMustSumTo100(t *testing.T) {
	f := DefaultFactory(nil)
	ranges := func(a, b int) map[string]any {
		return map[string]any{"ranges": []any{
			map[string]any{"start": 0, "end": 10, "distribution": a},
			map[string]any{"start": 100, "end": 110, "distribution": b},
		}}
	}

	_, err := f.Create(ModeNormal, "DISTRIBUTED_NUMBER_RANGE_STRATEGY", ranges(50, 45), Options{Column: "n"})
	require.Error(t, err)
	assert.True(t, gerrors.IsDistributionSumError(err))
	assert.Contains(t, err.Error(), "got 95")

	s, err := f.Create(ModeNormal, "DISTRIBUTED_NUMBER_RANGE_STRATEGY", ranges(50, 50), Options{Column: "n", Seed: seed(1)})
	require.NoError(t, err)
	got, err := Generate(s, 200)
	require.NoError(t, err)
	for _, v := range got {
		n := v.(int64)
		inLow := n >= 0 && n < 10
		inHigh := n >= 100 && n < 110
		assert.True(t, inLow || inHigh, "value %d outside ranges", n)
	}
}

func TestDistributedNumberRange_FractionalBounds(t *testing.T) {
	f := DefaultFactory(nil)
	one := func(start, end float64) map[string]any {
		return map[string]any{"ranges": []any{
			map[string]any{"start": start, "end": end, "distribution": 100},
		}}
	}

	_, err := f.ValidateParams("DISTRIBUTED_NUMBER_RANGE_STRATEGY", one(1.5, 2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ranges[0].end")
	assert.Contains(t, err.Error(), "holds no integer")

	s, err := f.Create(ModeNormal, "DISTRIBUTED_NUMBER_RANGE_STRATEGY", one(1.5, 3), Options{Column: "n", Seed: seed(3)})
	require.NoError(t, err)
	got, err := Generate(s, 50)
	require.NoError(t, err)
	for _, v := range got {
		assert.Equal(t, int64(2), v)
	}
}

func TestDistributedNumberRange_InvalidItemNamesIndex(t *testing.T) {
	_, err := DefaultFactory(nil).ValidateParams("DISTRIBUTED_NUMBER_RANGE_STRATEGY", map[string]any{
		"ranges": []any{map[string]any{"start": 10, "end": 1, "distribution": 100}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ranges[0].start")
}
