package strategy

import (
	"os"
	"strings"

	"github.com/roach88/genxdata/internal/dataset"
	"github.com/roach88/genxdata/internal/gerrors"
	"github.com/roach88/genxdata/internal/source"
)

// frameReader is embedded by strategies that derive values from other
// columns of the rows being populated.
type frameReader struct {
	frame *dataset.Frame
}

// BindFrame records the rows the next generation call covers.
func (r *frameReader) BindFrame(f *dataset.Frame) { r.frame = f }

// read returns up to count cells of name from the bound frame.
func (r *frameReader) read(name string, count int) ([]any, bool) {
	if r.frame == nil || !r.frame.Has(name) {
		return nil, false
	}
	col := r.frame.Column(name)
	if len(col) > count {
		col = col[:count]
	}
	return col, true
}

// ReplacementConfig configures REPLACEMENT_STRATEGY.
type ReplacementConfig struct {
	Common    `yaml:",inline"`
	FromValue any `yaml:"from_value"`
	ToValue   any `yaml:"to_value"`
}

// Validate accepts any replacement pair.
func (c *ReplacementConfig) Validate() error { return nil }

// Replacement rewrites cells of the target column equal to from_value.
type Replacement struct {
	base
	frameReader
	from, to any
}

func newReplacement(cfg ParamConfig, opts Options) (Strategy, error) {
	c := cfg.(*ReplacementConfig)
	return &Replacement{base: newBase("REPLACEMENT_STRATEGY", opts), from: c.FromValue, to: c.ToValue}, nil
}

// GenerateChunk returns the existing column with replacements applied. With
// no existing data every cell becomes to_value.
func (r *Replacement) GenerateChunk(count int) ([]any, error) {
	out := make([]any, count)
	existing, ok := r.read(r.column, count)
	for i := range out {
		switch {
		case !ok || i >= len(existing):
			out[i] = r.to
		case sameValue(existing[i], r.from):
			out[i] = r.to
		default:
			out[i] = existing[i]
		}
	}
	return out, nil
}

// sameValue compares cells loosely: numbers by value, everything else by
// rendered text.
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

// ConcatConfig configures CONCAT_STRATEGY.
type ConcatConfig struct {
	Common    `yaml:",inline"`
	LHSCol    string `yaml:"lhs_col"`
	RHSCol    string `yaml:"rhs_col"`
	Separator string `yaml:"separator"`
	Prefix    string `yaml:"prefix"`
	Suffix    string `yaml:"suffix"`
}

// Validate requires at least one source column.
func (c *ConcatConfig) Validate() error {
	if c.LHSCol == "" && c.RHSCol == "" {
		return fieldErr("lhs_col", "at least one column must be specified for concatenation")
	}
	return nil
}

// Concat joins two existing columns as prefix+lhs+separator+rhs+suffix.
type Concat struct {
	base
	frameReader
	cfg ConcatConfig
}

func newConcat(cfg ParamConfig, opts Options) (Strategy, error) {
	return &Concat{base: newBase("CONCAT_STRATEGY", opts), cfg: *cfg.(*ConcatConfig)}, nil
}

// GenerateChunk concatenates the bound rows.
func (c *Concat) GenerateChunk(count int) ([]any, error) {
	lhs, err := c.side("lhs_col", c.cfg.LHSCol, count)
	if err != nil {
		return nil, err
	}
	rhs, err := c.side("rhs_col", c.cfg.RHSCol, count)
	if err != nil {
		return nil, err
	}
	out := make([]any, count)
	for i := range out {
		var b strings.Builder
		b.WriteString(c.cfg.Prefix)
		b.WriteString(cell(lhs, i))
		b.WriteString(c.cfg.Separator)
		b.WriteString(cell(rhs, i))
		b.WriteString(c.cfg.Suffix)
		out[i] = b.String()
	}
	return out, nil
}

func (c *Concat) side(field, name string, count int) ([]any, error) {
	if name == "" || c.frame == nil {
		return nil, nil
	}
	col, ok := c.read(name, count)
	if !ok {
		return nil, gerrors.NewInvalidStrategyConfigError(c.name,
			"column "+name+" must be generated before it is concatenated", field)
	}
	return col, nil
}

func cell(col []any, i int) string {
	if i >= len(col) {
		return ""
	}
	return dataset.Format(col[i])
}

// MappingConfig configures MAPPING_STRATEGY.
type MappingConfig struct {
	Common        `yaml:",inline"`
	MapFrom       string         `yaml:"map_from"`
	Mapping       map[string]any `yaml:"mapping"`
	Source        string         `yaml:"source"`
	SourceColumn  string         `yaml:"source_column"`
	SourceMapFrom string         `yaml:"source_map_from"`
}

// Validate requires map_from and exactly one of inline mapping or a source
// file.
func (c *MappingConfig) Validate() error {
	if strings.TrimSpace(c.MapFrom) == "" {
		return fieldErr("map_from", "must be provided")
	}
	inline := len(c.Mapping) > 0
	file := c.Source != "" && c.SourceColumn != ""
	switch {
	case inline && file:
		return fieldErr("mapping", "provide either mapping or source and source_column, not both")
	case file:
		if _, err := os.Stat(c.Source); err != nil {
			return fieldErr("source", "source file %q does not exist", c.Source)
		}
	case !inline:
		return fieldErr("mapping", "provide mapping or source and source_column")
	}
	return nil
}

// lookup builds the key -> value table, reading the source file if needed.
// The source key column defaults to map_from.
func (c *MappingConfig) lookup() (map[string]any, error) {
	if len(c.Mapping) > 0 {
		return c.Mapping, nil
	}
	tbl, err := source.Read(c.Source)
	if err != nil {
		return nil, fieldErr("source", "%v", err)
	}
	keyCol := c.SourceMapFrom
	if keyCol == "" {
		keyCol = c.MapFrom
	}
	keys, err := tbl.Column(keyCol)
	if err != nil {
		return nil, fieldErr("source_map_from", "%v", err)
	}
	vals, err := tbl.Column(c.SourceColumn)
	if err != nil {
		return nil, fieldErr("source_column", "%v", err)
	}
	out := make(map[string]any, len(keys))
	for i, k := range keys {
		if _, dup := out[k]; !dup {
			out[k] = vals[i]
		}
	}
	return out, nil
}

// Mapping translates values of map_from through a lookup table. Rows whose
// key has no entry keep the target column's existing value.
type Mapping struct {
	base
	frameReader
	mapFrom string
	table   map[string]any
}

func newMapping(cfg ParamConfig, opts Options) (Strategy, error) {
	c := cfg.(*MappingConfig)
	table, err := c.lookup()
	if err != nil {
		return nil, err
	}
	return &Mapping{base: newBase("MAPPING_STRATEGY", opts), mapFrom: c.MapFrom, table: table}, nil
}

// Validate rejects an empty lookup table, which would leave every row
// unmapped.
func (m *Mapping) Validate() error {
	if len(m.table) == 0 {
		return fieldErr("source", "mapping table is empty")
	}
	return nil
}

// GenerateChunk maps the bound rows.
func (m *Mapping) GenerateChunk(count int) ([]any, error) {
	keys, ok := m.read(m.mapFrom, count)
	if !ok && m.frame != nil {
		return nil, gerrors.NewInvalidStrategyConfigError(m.name,
			"column "+m.mapFrom+" must be generated before it is mapped", "map_from")
	}
	existing, _ := m.read(m.column, count)
	out := make([]any, count)
	for i := range out {
		if i < len(existing) {
			out[i] = existing[i]
		}
		if i >= len(keys) || keys[i] == nil {
			continue
		}
		if v, hit := m.table[dataset.Format(keys[i])]; hit {
			out[i] = v
		}
	}
	return out, nil
}

// DeleteConfig configures DELETE_STRATEGY, which takes no params.
type DeleteConfig struct {
	Common `yaml:",inline"`
}

// Validate accepts everything.
func (c *DeleteConfig) Validate() error { return nil }

// Delete nullifies the selected rows of the target column, which may have
// been produced by an earlier spec.
type Delete struct {
	base
}

func newDelete(_ ParamConfig, opts Options) (Strategy, error) {
	return &Delete{base: newBase("DELETE_STRATEGY", opts)}, nil
}

// GenerateChunk returns count nils.
func (d *Delete) GenerateChunk(count int) ([]any, error) {
	return make([]any, count), nil
}
