package processor

import (
	"log/slog"

	"github.com/zeebo/xxh3"

	"github.com/roach88/genxdata/internal/dataset"
	"github.com/roach88/genxdata/internal/gerrors"
	"github.com/roach88/genxdata/internal/strategy"
)

const (
	// maxResampleRounds bounds the retries for duplicate replacement.
	maxResampleRounds = 10

	// resampleFactor is the oversampling ratio of each retry round.
	resampleFactor = 2
)

// uniqueFilter replaces duplicates with fresh draws. Nil cells are exempt.
type uniqueFilter struct {
	column string
	seen   map[uint64]struct{}
	logger *slog.Logger
}

func newUniqueFilter(column string, logger *slog.Logger) *uniqueFilter {
	return &uniqueFilter{column: column, seen: make(map[uint64]struct{}), logger: logger}
}

// hashValue keys a cell by kind and text so 1 and "1" stay distinct.
func hashValue(v any) uint64 {
	return xxh3.HashString(dataset.KindOf(v).String() + "\x00" + dataset.Format(v))
}

func (u *uniqueFilter) admit(v any) bool {
	if v == nil {
		return true
	}
	h := hashValue(v)
	if _, dup := u.seen[h]; dup {
		return false
	}
	u.seen[h] = struct{}{}
	return true
}

// unused lists domain values not yet seen.
func (u *uniqueFilter) unused(domain []any) []any {
	var out []any
	for _, v := range domain {
		if _, dup := u.seen[hashValue(v)]; !dup {
			out = append(out, v)
		}
	}
	return out
}

// enforce satisfies strategy.ApplyOptions.Enforce.
func (u *uniqueFilter) enforce(s strategy.Strategy, values []any) ([]any, error) {
	domain, finite := enumerable(s)
	if finite {
		if free := u.unused(domain); len(free) < len(values) {
			return nil, gerrors.NewUniquenessExhaustedError(u.column, len(values), len(free))
		}
	}

	out := make([]any, len(values))
	var missing []int
	for i, v := range values {
		if u.admit(v) {
			out[i] = v
		} else {
			missing = append(missing, i)
		}
	}

	for round := 0; round < maxResampleRounds && len(missing) > 0; round++ {
		cands, err := s.GenerateChunk(len(missing) * resampleFactor)
		if err != nil {
			return nil, err
		}
		for _, c := range cands {
			if len(missing) == 0 {
				break
			}
			if c != nil && u.admit(c) {
				out[missing[0]] = c
				missing = missing[1:]
			}
		}
		u.logger.Debug("resampled duplicates",
			slog.String("column", u.column),
			slog.Int("round", round+1),
			slog.Int("remaining", len(missing)))
	}

	if len(missing) > 0 && finite {
		for _, v := range u.unused(domain) {
			if len(missing) == 0 {
				break
			}
			u.admit(v)
			out[missing[0]] = v
			missing = missing[1:]
		}
	}
	if len(missing) > 0 {
		return nil, gerrors.NewUniquenessExhaustedError(u.column, len(values), len(values)-len(missing))
	}
	return out, nil
}

func enumerable(s strategy.Strategy) ([]any, bool) {
	e, ok := s.(strategy.Enumerable)
	if !ok {
		return nil, false
	}
	return e.Domain()
}
