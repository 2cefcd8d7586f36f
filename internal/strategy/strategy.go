package strategy

import (
	"fmt"
	"maps"

	"github.com/roach88/genxdata/internal/dataset"
)

// Mode selects how a processor drives strategies.
type Mode int

const (
	// ModeNormal generates the full row count in a single pass.
	ModeNormal Mode = iota

	// ModeChunked generates bounded chunks while carrying state forward.
	ModeChunked
)

// String returns the mode label used in logs and summaries.
func (m Mode) String() string {
	if m == ModeChunked {
		return "chunked"
	}
	return "normal"
}

// State is the snapshot a Stateful strategy reports between chunks.
type State map[string]any

// Clone returns a shallow copy of the state.
func (s State) Clone() State {
	if s == nil {
		return State{}
	}
	return maps.Clone(s)
}

// Strategy produces column values.
type Strategy interface {
	// Name returns the canonical strategy name.
	Name() string

	// GenerateChunk returns exactly count values, continuing from the
	// strategy's current state.
	GenerateChunk(count int) ([]any, error)
}

// Stateful strategies carry state across GenerateChunk calls.
type Stateful interface {
	ResetState()
	CurrentState() State
	SyncState(result []any)
}

// Seedable strategies draw from a seeded random source.
type Seedable interface {
	Seed() uint64
}

// Validatable strategies can re-check their configuration.
type Validatable interface {
	Validate() error
}

// FrameBinder strategies read other columns. BindFrame is called with the
// rows the strategy is about to populate, before each generation call.
type FrameBinder interface {
	BindFrame(f *dataset.Frame)
}

// Enumerable strategies have a finite value space small enough to list.
// ok is false when the space is too large or unbounded.
type Enumerable interface {
	Domain() (values []any, ok bool)
}

// Generate produces count values from the strategy's initial state.
func Generate(s Strategy, count int) ([]any, error) {
	if st, ok := s.(Stateful); ok {
		st.ResetState()
	}
	return s.GenerateChunk(count)
}

// ApplyOptions controls Apply.
type ApplyOptions struct {
	// Mode selects Generate (normal) or GenerateChunk (chunked).
	Mode Mode

	// Enforce post-processes generated values before they are written,
	// e.g. to replace duplicates. It may call GenerateChunk for more values.
	Enforce func(s Strategy, values []any) ([]any, error)
}

// Apply generates values for the rows chosen by selector and writes them
// into column. A nil selector selects every row. Unselected rows keep their
// previous values. Apply returns the values written.
func Apply(s Strategy, f *dataset.Frame, column string, selector []bool, opts ApplyOptions) ([]any, error) {
	rows, err := SelectedRows(selector, f.Len())
	if err != nil {
		return nil, err
	}
	f.Ensure(column)
	if len(rows) == 0 {
		return nil, nil
	}

	if b, ok := s.(FrameBinder); ok {
		if selector == nil {
			b.BindFrame(f)
		} else {
			b.BindFrame(f.Subset(rows))
		}
	}

	var values []any
	if opts.Mode == ModeNormal {
		values, err = Generate(s, len(rows))
	} else {
		values, err = s.GenerateChunk(len(rows))
	}
	if err != nil {
		return nil, err
	}
	if opts.Enforce != nil {
		if values, err = opts.Enforce(s, values); err != nil {
			return nil, err
		}
	}
	if len(values) != len(rows) {
		return nil, fmt.Errorf("strategy %s returned %d values for %d rows", s.Name(), len(values), len(rows))
	}
	if st, ok := s.(Stateful); ok {
		st.SyncState(values)
	}
	if err := f.SetRows(column, rows, values); err != nil {
		return nil, err
	}
	return values, nil
}

// SelectedRows converts a boolean selector into row positions.
func SelectedRows(selector []bool, n int) ([]int, error) {
	if selector == nil {
		rows := make([]int, n)
		for i := range rows {
			rows[i] = i
		}
		return rows, nil
	}
	if len(selector) != n {
		return nil, fmt.Errorf("selector has %d entries, frame has %d rows", len(selector), n)
	}
	var rows []int
	for i, ok := range selector {
		if ok {
			rows = append(rows, i)
		}
	}
	return rows, nil
}
