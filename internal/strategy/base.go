package strategy

import (
	"log/slog"
	"math/rand/v2"
)

// Options carries construction context shared by every strategy.
type Options struct {
	// Column is the target column name.
	Column string

	// Seed fixes the random source. Nil draws a fresh seed.
	Seed *uint64

	// Mode is the processing mode the strategy runs under.
	Mode Mode

	// Logger receives debug output. Nil uses slog.Default().
	Logger *slog.Logger
}

// base carries the bookkeeping every built-in strategy shares: identity,
// seeded random source and the reported state snapshot.
type base struct {
	name    string
	column  string
	seed    uint64
	rng     *rand.Rand
	emitted int
	last    any
	logger  *slog.Logger
}

func newBase(name string, opts Options) base {
	seed := rand.Uint64()
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return base{
		name:   name,
		column: opts.Column,
		seed:   seed,
		rng:    newRand(seed),
		logger: logger.With(slog.String("strategy", name), slog.String("column", opts.Column)),
	}
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Name returns the canonical strategy name.
func (b *base) Name() string { return b.name }

// Seed returns the seed of the random source.
func (b *base) Seed() uint64 { return b.seed }

// ResetState rewinds the random source and counters.
func (b *base) ResetState() {
	b.rng = newRand(b.seed)
	b.emitted = 0
	b.last = nil
}

// CurrentState reports the shared state fields.
func (b *base) CurrentState() State {
	return State{
		"strategy":   b.name,
		"column":     b.column,
		"seed":       b.seed,
		"emitted":    b.emitted,
		"last_value": b.last,
	}
}

// SyncState records the outcome of the last generation call.
func (b *base) SyncState(result []any) {
	b.emitted += len(result)
	if len(result) > 0 {
		b.last = result[len(result)-1]
	}
}

// pickWeighted returns the index chosen by weights (which sum to total).
func pickWeighted(rng *rand.Rand, weights []float64, total float64) int {
	r := rng.Float64() * total
	for i, w := range weights {
		if r < w {
			return i
		}
		r -= w
	}
	return len(weights) - 1
}
