// Package perf records per-operation timings for a generation run.
package perf

import (
	"sort"
	"time"
)

// Clock returns the current time. Tests substitute a deterministic clock.
type Clock func() time.Time

// Stat aggregates timings for one operation name.
type Stat struct {
	Operation string  `json:"operation"`
	Count     int     `json:"count"`
	TotalMS   float64 `json:"total_ms"`
	MinMS     float64 `json:"min_ms"`
	MaxMS     float64 `json:"max_ms"`
	Rows      int     `json:"rows"`
}

// AvgMS returns the mean duration in milliseconds.
func (s Stat) AvgMS() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.TotalMS / float64(s.Count)
}

// Tracker accumulates Stats. The zero value is not usable; call New.
//
// Tracker is owned by a single run and is not safe for concurrent use.
type Tracker struct {
	now   Clock
	stats map[string]*Stat
}

// New creates a tracker. A nil clock uses time.Now.
func New(clock Clock) *Tracker {
	if clock == nil {
		clock = time.Now
	}
	return &Tracker{now: clock, stats: make(map[string]*Stat)}
}

// Start begins timing op over rows rows and returns the function that
// stops the timer.
func (t *Tracker) Start(op string, rows int) func() {
	began := t.now()
	return func() {
		t.Record(op, t.now().Sub(began), rows)
	}
}

// Record adds one observation.
func (t *Tracker) Record(op string, d time.Duration, rows int) {
	ms := float64(d) / float64(time.Millisecond)
	s, ok := t.stats[op]
	if !ok {
		s = &Stat{Operation: op, MinMS: ms, MaxMS: ms}
		t.stats[op] = s
	}
	s.Count++
	s.TotalMS += ms
	s.Rows += rows
	s.MinMS = min(s.MinMS, ms)
	s.MaxMS = max(s.MaxMS, ms)
}

// Report returns the stats sorted by operation name.
func (t *Tracker) Report() []Stat {
	out := make([]Stat, 0, len(t.stats))
	for _, s := range t.stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out
}
