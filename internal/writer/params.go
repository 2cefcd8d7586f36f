package writer

import (
	"fmt"
	"strconv"
	"strings"
)

// Params are the format-specific writer options from configuration.
type Params map[string]any

// pathKeys are accepted for the output location, preferred first.
var pathKeys = []string{"output_path", "path", "path_or_buf", "database", "excel_writer"}

// Path returns the configured output location and the key it came from.
func (p Params) Path() (string, string) {
	for _, k := range pathKeys {
		if s, ok := p[k].(string); ok && strings.TrimSpace(s) != "" {
			return s, k
		}
	}
	return "", ""
}

// String returns p[key] as a string, or def.
func (p Params) String(key, def string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case nil:
		return def
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns p[key] as a bool, or def.
func (p Params) Bool(key string, def bool) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Int returns p[key] as an int, or def.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
