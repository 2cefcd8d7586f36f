package harness

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/genxdata/internal/dataset"
	"github.com/roach88/genxdata/internal/mask"
	"github.com/roach88/genxdata/internal/store"
)

// validIdentifier matches valid SQL identifiers (table/column names).
// Only allows alphanumeric and underscore, must start with letter or underscore.
// This prevents SQL injection via identifier interpolation.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Row      int    // Offending row, -1 when not row specific
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	if e.Row >= 0 {
		fmt.Fprintf(&buf, " (row %d)", e.Row)
	}
	return buf.String()
}

func missingColumn(kind, column string, f *dataset.Frame) error {
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("column %q", column),
		Actual:   fmt.Sprintf("columns %v", f.Columns()),
		Row:      -1,
	}
}

// assertColumnUnique checks that no two non-null cells are equal.
func assertColumnUnique(f *dataset.Frame, a Assertion) error {
	if !f.Has(a.Column) {
		return missingColumn(AssertColumnUnique, a.Column, f)
	}
	seen := make(map[string]int)
	for i, v := range f.Column(a.Column) {
		if v == nil {
			continue
		}
		key := dataset.KindOf(v).String() + ":" + dataset.Format(v)
		if first, dup := seen[key]; dup {
			return &AssertionError{
				Type:     AssertColumnUnique,
				Expected: fmt.Sprintf("distinct values in %q", a.Column),
				Actual:   fmt.Sprintf("%v repeats row %d", v, first),
				Row:      i,
			}
		}
		seen[key] = i
	}
	return nil
}

// assertColumnValues checks that every cell is one of the allowed values.
func assertColumnValues(f *dataset.Frame, a Assertion) error {
	if !f.Has(a.Column) {
		return missingColumn(AssertColumnValues, a.Column, f)
	}
	for i, v := range f.Column(a.Column) {
		if !containsValue(a.Values, v) {
			return &AssertionError{
				Type:     AssertColumnValues,
				Expected: fmt.Sprintf("%q in %v", a.Column, a.Values),
				Actual:   fmt.Sprintf("%v", v),
				Row:      i,
			}
		}
	}
	return nil
}

// assertColumnRange checks that numeric cells lie within [min, max].
// Non-numeric cells fail; null cells are skipped.
func assertColumnRange(f *dataset.Frame, a Assertion) error {
	if !f.Has(a.Column) {
		return missingColumn(AssertColumnRange, a.Column, f)
	}
	for i, v := range f.Column(a.Column) {
		if v == nil {
			continue
		}
		n, ok := dataset.AsFloat64(v)
		if !ok || (a.Min != nil && n < *a.Min) || (a.Max != nil && n > *a.Max) {
			return &AssertionError{
				Type:     AssertColumnRange,
				Expected: fmt.Sprintf("%q within [%s, %s]", a.Column, bound(a.Min), bound(a.Max)),
				Actual:   fmt.Sprintf("%v", v),
				Row:      i,
			}
		}
	}
	return nil
}

func bound(b *float64) string {
	if b == nil {
		return "*"
	}
	return dataset.Format(*b)
}

// assertMaskedValues checks the rows a mask selects.
func assertMaskedValues(masks *mask.Evaluator, f *dataset.Frame, a Assertion) error {
	if !f.Has(a.Column) {
		return missingColumn(AssertMaskedValues, a.Column, f)
	}
	sel, err := masks.Evaluate(a.Mask, f)
	if err != nil {
		return err
	}
	values := f.Column(a.Column)
	for i, ok := range sel {
		if ok && !containsValue(a.Values, values[i]) {
			return &AssertionError{
				Type:     AssertMaskedValues,
				Expected: fmt.Sprintf("%q in %v where %s", a.Column, a.Values, a.Mask),
				Actual:   fmt.Sprintf("%v", values[i]),
				Row:      i,
			}
		}
	}
	return nil
}

// assertFinalState queries the stored dataset and verifies expected values.
func assertFinalState(ctx context.Context, st *store.Store, a Assertion) error {
	// Sort keys for a deterministic query
	keys := make([]string, 0, len(a.Where))
	for k := range a.Where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conds := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		if !validIdentifier.MatchString(k) {
			return fmt.Errorf("invalid column name in where: %q", k)
		}
		conds[i] = fmt.Sprintf(`"%s" = ?`, k)
		args[i] = a.Where[k]
	}

	query := fmt.Sprintf(`SELECT * FROM "%s" WHERE %s ORDER BY rowid ASC LIMIT 1`, datasetTable, strings.Join(conds, " AND "))
	rows, err := st.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("final_state query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("a row where %v", a.Where),
			Actual:   "no matching row",
			Row:      -1,
		}
	}
	cells := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range cells {
		ptrs[i] = &cells[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return err
	}
	row := make(map[string]any, len(cols))
	for i, c := range cols {
		if b, ok := cells[i].([]byte); ok {
			cells[i] = string(b)
		}
		row[c] = cells[i]
	}

	for k, want := range a.Expect {
		got, ok := row[k]
		if !ok || !sameValue(got, want) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%s = %v where %v", k, want, a.Where),
				Actual:   fmt.Sprintf("%s = %v", k, got),
				Row:      -1,
			}
		}
	}
	return nil
}

func containsValue(allowed []interface{}, v any) bool {
	for _, a := range allowed {
		if sameValue(a, v) {
			return true
		}
	}
	return false
}

// sameValue compares loosely: numbers by value, everything else by
// rendered text. YAML and SQLite both widen types, so exact type equality
// would reject matching cells.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	fa, aok := dataset.AsFloat64(a)
	fb, bok := dataset.AsFloat64(b)
	if aok && bok {
		return fa == fb
	}
	return dataset.Format(a) == dataset.Format(b)
}
