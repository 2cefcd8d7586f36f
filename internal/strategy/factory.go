package strategy

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/genxdata/internal/gerrors"
)

// Definition registers one strategy variant.
type Definition struct {
	// Name is the canonical name, e.g. "SERIES_STRATEGY".
	Name string

	// Description is a one-line summary shown by list-strategies.
	Description string

	// NewConfig returns a ParamConfig populated with defaults.
	NewConfig func() ParamConfig

	// Build constructs the strategy from validated params.
	Build func(cfg ParamConfig, opts Options) (Strategy, error)
}

// Fields lists the param keys the definition accepts.
func (d Definition) Fields() []string {
	return yamlKeys(reflect.TypeOf(d.NewConfig()))
}

const suffix = "_STRATEGY"

// Factory resolves strategy names and constructs strategies.
type Factory struct {
	defs    map[string]Definition
	aliases map[string]string
	logger  *slog.Logger
}

// NewFactory creates a factory over defs and aliases (alias -> canonical).
// Every alias must target a registered definition.
func NewFactory(defs []Definition, aliases map[string]string, logger *slog.Logger) (*Factory, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Factory{
		defs:    make(map[string]Definition, len(defs)),
		aliases: make(map[string]string, len(aliases)),
		logger:  logger,
	}
	for _, d := range defs {
		key := normalizeName(d.Name)
		if _, dup := f.defs[key]; dup {
			return nil, fmt.Errorf("strategy %s registered twice", d.Name)
		}
		if d.NewConfig == nil || d.Build == nil {
			return nil, fmt.Errorf("strategy %s is missing a constructor", d.Name)
		}
		f.defs[key] = d
	}
	for alias, target := range aliases {
		canonical := normalizeName(target)
		if _, ok := f.defs[canonical]; !ok {
			return nil, fmt.Errorf("alias %s targets unknown strategy %s", alias, target)
		}
		f.aliases[normalizeName(alias)] = canonical
	}
	return f, nil
}

// DefaultFactory returns a factory over every built-in strategy.
func DefaultFactory(logger *slog.Logger) *Factory {
	f, err := NewFactory(Builtins(), BuiltinAliases(), logger)
	if err != nil {
		// Builtins are static; a failure here is a programming error.
		panic(err)
	}
	return f
}

// normalizeName upper-cases, trims and appends the _STRATEGY suffix when
// missing, so "series", "Series_Strategy" and "SERIES" are equivalent.
func normalizeName(name string) string {
	n := strings.ToUpper(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "-", "_")
	n = strings.ReplaceAll(n, " ", "_")
	if n != "" && !strings.HasSuffix(n, suffix) {
		n += suffix
	}
	return n
}

// Resolve maps a user-supplied name to its definition.
func (f *Factory) Resolve(name string) (Definition, error) {
	key := normalizeName(name)
	if canonical, ok := f.aliases[key]; ok {
		key = canonical
	}
	d, ok := f.defs[key]
	if !ok {
		return Definition{}, gerrors.NewUnknownStrategyError(name)
	}
	return d, nil
}

// ResolveConfig returns the default ParamConfig for name.
func (f *Factory) ResolveConfig(name string) (ParamConfig, error) {
	d, err := f.Resolve(name)
	if err != nil {
		return nil, err
	}
	return d.NewConfig(), nil
}

// ValidateParams decodes and validates params without constructing.
func (f *Factory) ValidateParams(name string, params map[string]any) (ParamConfig, error) {
	d, err := f.Resolve(name)
	if err != nil {
		return nil, err
	}
	return BuildParams(d, params, f.logger)
}

// Create resolves name, validates params and constructs the strategy.
func (f *Factory) Create(mode Mode, name string, params map[string]any, opts Options) (Strategy, error) {
	d, err := f.Resolve(name)
	if err != nil {
		return nil, err
	}
	cfg, err := BuildParams(d, params, f.logger)
	if err != nil {
		return nil, err
	}
	opts.Mode = mode
	if opts.Logger == nil {
		opts.Logger = f.logger
	}
	if opts.Seed == nil {
		if c, ok := commonOf(cfg); ok && c.Seed != nil {
			seed := uint64(*c.Seed)
			opts.Seed = &seed
		}
	}
	s, err := d.Build(cfg, opts)
	if err != nil {
		return nil, configError(d.Name, err)
	}
	if v, ok := s.(Validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, configError(d.Name, err)
		}
	}
	f.logger.Debug("strategy created",
		slog.String("strategy", d.Name),
		slog.String("column", opts.Column),
		slog.String("mode", mode.String()))
	return s, nil
}

// Names returns the canonical names in sorted order.
func (f *Factory) Names() []string {
	out := make([]string, 0, len(f.defs))
	for _, d := range f.defs {
		out = append(out, d.Name)
	}
	sort.Strings(out)
	return out
}

// Aliases returns the alias table keyed by alias.
func (f *Factory) Aliases() map[string]string {
	out := make(map[string]string, len(f.aliases))
	for k, v := range f.aliases {
		out[k] = f.defs[v].Name
	}
	return out
}

// commoner is implemented by configs embedding Common.
type commoner interface {
	common() *Common
}

func (c *Common) common() *Common { return c }

func commonOf(cfg ParamConfig) (*Common, bool) {
	if c, ok := cfg.(commoner); ok {
		return c.common(), true
	}
	return nil, false
}
