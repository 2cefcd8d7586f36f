package dataset

import (
	"fmt"
	"strconv"
)

// Kind is the inferred storage type of a column.
type Kind int

const (
	// KindNull marks a column whose cells are all nil.
	KindNull Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
)

// String returns the dtype label used in summaries and stream metadata.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int64"
	case KindFloat:
		return "float64"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "null"
	}
}

// KindOf classifies a single cell value.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInt
	case float32, float64:
		return KindFloat
	case bool:
		return KindBool
	default:
		return KindString
	}
}

// Kind infers the column kind: ints widen to floats, any other mix
// degrades to string, nils are ignored.
func (f *Frame) Kind(name string) Kind {
	kind := KindNull
	for _, v := range f.cols[name] {
		k := KindOf(v)
		switch {
		case k == KindNull || k == kind:
		case kind == KindNull:
			kind = k
		case (kind == KindInt && k == KindFloat) || (kind == KindFloat && k == KindInt):
			kind = KindFloat
		default:
			return KindString
		}
	}
	return kind
}

// DTypes returns the inferred kind label of every column.
func (f *Frame) DTypes() map[string]string {
	out := make(map[string]string, len(f.names))
	for _, name := range f.names {
		out[name] = f.Kind(name).String()
	}
	return out
}

// AsInt64 converts an integer-kinded cell to int64.
func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float64:
		return int64(n), n == float64(int64(n))
	case float32:
		return int64(n), float32(int64(n)) == n
	}
	return 0, false
}

// AsFloat64 converts a numeric cell to float64.
func AsFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	if i, ok := AsInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

// Format renders a cell as text. nil renders as the empty string.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
