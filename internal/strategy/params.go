package strategy

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/genxdata/internal/gerrors"
)

// ParamConfig is the typed parameter schema of one strategy.
//
// Implementations are plain structs with yaml tags and defaults set by
// their constructor. Validate reports the first invalid field.
type ParamConfig interface {
	Validate() error
}

// Common holds params every strategy accepts.
type Common struct {
	// Seed fixes the random source when the column spec does not.
	Seed *int64 `yaml:"seed"`
}

// ParamError reports an invalid strategy parameter.
type ParamError struct {
	Field   string
	Message string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func fieldErr(field, format string, args ...any) error {
	return &ParamError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// prefixField prefixes the field of a ParamError with an item path, so
// errors from list items read like "ranges[2].start".
func prefixField(err error, prefix string) error {
	var pe *ParamError
	if errors.As(err, &pe) {
		return &ParamError{Field: prefix + "." + pe.Field, Message: pe.Message}
	}
	return err
}

// DecodeParams fills cfg from a loosely typed params mapping. Fields absent
// from params keep their defaults; unknown keys are logged and ignored.
func DecodeParams(strategy string, cfg ParamConfig, params map[string]any, logger *slog.Logger) error {
	if len(params) == 0 {
		return nil
	}
	if unknown := unknownKeys(cfg, params); len(unknown) > 0 && logger != nil {
		logger.Debug("ignoring unknown strategy params",
			slog.String("strategy", strategy),
			slog.Any("fields", unknown))
	}

	var node yaml.Node
	if err := node.Encode(params); err != nil {
		return gerrors.NewInvalidStrategyConfigError(strategy, fmt.Sprintf("params not encodable: %v", err))
	}
	if err := node.Decode(cfg); err != nil {
		return gerrors.NewInvalidStrategyConfigError(strategy, decodeMessage(err), decodeFields(cfg, params)...)
	}
	return nil
}

// BuildParams decodes and validates params for a strategy definition.
// Validation failures become InvalidStrategyConfigError carrying the
// offending field; typed errors from Validate pass through unchanged.
func BuildParams(def Definition, params map[string]any, logger *slog.Logger) (ParamConfig, error) {
	cfg := def.NewConfig()
	if err := DecodeParams(def.Name, cfg, params, logger); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, configError(def.Name, err)
	}
	return cfg, nil
}

// configError converts a validation failure into a typed error. Errors that
// are already typed pass through unchanged.
func configError(strategy string, err error) error {
	var ge *gerrors.Error
	if errors.As(err, &ge) {
		return err
	}
	var pe *ParamError
	if errors.As(err, &pe) {
		return gerrors.NewInvalidStrategyConfigError(strategy, pe.Error(), pe.Field)
	}
	return gerrors.NewInvalidStrategyConfigError(strategy, err.Error())
}

func decodeMessage(err error) string {
	var te *yaml.TypeError
	if errors.As(err, &te) {
		return "invalid param types: " + strings.Join(te.Errors, "; ")
	}
	return err.Error()
}

// decodeFields finds the params that fail to decode by decoding each known
// key on its own into a fresh value of cfg's type.
func decodeFields(cfg ParamConfig, params map[string]any) []string {
	t := reflect.TypeOf(cfg)
	if t.Kind() != reflect.Pointer {
		return nil
	}
	known := yamlKeys(t)
	var fields []string
	for k, v := range params {
		if !slices.Contains(known, k) {
			continue
		}
		var node yaml.Node
		if err := node.Encode(map[string]any{k: v}); err != nil {
			fields = append(fields, k)
			continue
		}
		if err := node.Decode(reflect.New(t.Elem()).Interface()); err != nil {
			fields = append(fields, k)
		}
	}
	sort.Strings(fields)
	return fields
}

// unknownKeys lists params that no yaml tag of cfg (including inlined
// structs) accepts.
func unknownKeys(cfg any, params map[string]any) []string {
	known := yamlKeys(reflect.TypeOf(cfg))
	var out []string
	for k := range params {
		if !slices.Contains(known, k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func yamlKeys(t reflect.Type) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("yaml")
		name, opts, _ := strings.Cut(tag, ",")
		if strings.Contains(opts, "inline") || (f.Anonymous && tag == "") {
			keys = append(keys, yamlKeys(f.Type)...)
			continue
		}
		if name == "-" || !f.IsExported() {
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		keys = append(keys, name)
	}
	return keys
}

// distributionTolerance absorbs float rounding in weight sums.
const distributionTolerance = 1e-9

// checkWeights validates weights for a distributed strategy: every weight in
// (0, 100] and the total equal to 100.
func checkWeights(strategy, field string, weights []float64) error {
	if len(weights) == 0 {
		return fieldErr(field, "at least one entry must be specified")
	}
	total := 0.0
	for i, w := range weights {
		if w <= 0 || w > 100 {
			return fieldErr(fmt.Sprintf("%s[%d]", field, i), "weight %g must be between 1 and 100", w)
		}
		total += w
	}
	if math.Abs(total-100) > distributionTolerance {
		return gerrors.NewDistributionSumError(strategy, total)
	}
	return nil
}

func indexed(field string, i int) string {
	return fmt.Sprintf("%s[%d]", field, i)
}
