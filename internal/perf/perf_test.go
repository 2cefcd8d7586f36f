package perf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// steppingClock advances by step on every call.
func steppingClock(step time.Duration) Clock {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTracker_AggregatesByOperation(t *testing.T) {
	tr := New(steppingClock(10 * time.Millisecond))

	tr.Start("generate", 100)()
	tr.Start("generate", 50)()
	tr.Record("write", 5*time.Millisecond, 150)

	rep := tr.Report()
	require.Len(t, rep, 2)

	assert.Equal(t, "generate", rep[0].Operation)
	assert.Equal(t, 2, rep[0].Count)
	assert.Equal(t, 150, rep[0].Rows)
	assert.InDelta(t, 20.0, rep[0].TotalMS, 1e-9)
	assert.InDelta(t, 10.0, rep[0].AvgMS(), 1e-9)

	assert.Equal(t, "write", rep[1].Operation)
	assert.InDelta(t, 5.0, rep[1].MinMS, 1e-9)
	assert.InDelta(t, 5.0, rep[1].MaxMS, 1e-9)
}

func TestTracker_MinMax(t *testing.T) {
	tr := New(nil)
	tr.Record("op", 3*time.Millisecond, 0)
	tr.Record("op", 1*time.Millisecond, 0)
	tr.Record("op", 7*time.Millisecond, 0)

	s := tr.Report()[0]
	assert.InDelta(t, 1.0, s.MinMS, 1e-9)
	assert.InDelta(t, 7.0, s.MaxMS, 1e-9)
	assert.Equal(t, 0.0, Stat{}.AvgMS())
}
