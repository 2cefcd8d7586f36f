package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/genxdata/internal/gerrors"
)

//go:embed schema.cue
var schemaSource string

// Format is a configuration file format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCUE  Format = "cue"
)

// FormatOf picks the format from a file extension. Unknown extensions are
// treated as YAML, which also accepts JSON documents.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".cue":
		return FormatCUE
	default:
		return FormatYAML
	}
}

// Load reads, schema-checks and validates the configuration at path.
func Load(path string) (*Config, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc)
}

// Parse decodes a configuration from bytes in the given format.
func Parse(data []byte, format Format) (*Config, error) {
	doc, err := ParseDocument(data, format)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc)
}

// LoadDocument reads any supported file into normalized Go values
// (map[string]any, []any, string, int64, float64, bool, nil).
func LoadDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		ge := gerrors.NewConfigValidationError("cannot read config")
		ge.Path, ge.Err = path, err
		return nil, ge
	}
	doc, err := ParseDocument(data, FormatOf(path))
	if err != nil {
		var ge *gerrors.Error
		if errors.As(err, &ge) {
			ge.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// ParseDocument decodes bytes into a normalized document.
func ParseDocument(data []byte, format Format) (map[string]any, error) {
	var raw any
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, gerrors.NewConfigValidationError(fmt.Sprintf("invalid JSON: %v", err))
		}
	case FormatCUE:
		v := cuecontext.New().CompileBytes(data)
		if err := v.Err(); err != nil {
			return nil, gerrors.NewConfigValidationError("invalid CUE: " + cueMessage(err))
		}
		js, err := v.MarshalJSON()
		if err != nil {
			return nil, gerrors.NewConfigValidationError("CUE config is not concrete: " + cueMessage(err))
		}
		return ParseDocument(js, FormatJSON)
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, gerrors.NewConfigValidationError(fmt.Sprintf("invalid YAML: %v", err))
		}
	}
	doc, ok := normalize(raw).(map[string]any)
	if !ok {
		return nil, gerrors.NewConfigValidationError("config must be a mapping at the top level")
	}
	return doc, nil
}

// FromDocument checks doc against the schema and decodes it.
func FromDocument(doc map[string]any) (*Config, error) {
	if err := CheckSchema(doc); err != nil {
		return nil, err
	}
	var cfg Config
	if err := decode(doc, &cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DecodeBatch decodes a batch section or standalone batch config document.
func DecodeBatch(doc map[string]any) (*BatchConfig, error) {
	var bc BatchConfig
	if err := decode(doc, &bc); err != nil {
		return nil, err
	}
	if err := ValidateBatch(&bc); err != nil {
		return nil, err
	}
	return &bc, nil
}

// CheckSchema unifies doc with the embedded #Config schema.
func CheckSchema(doc map[string]any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("config schema: %w", err)
	}
	v := schema.Unify(ctx.Encode(doc))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return gerrors.NewConfigValidationError("config does not match schema: "+cueMessage(err), cuePaths(err)...)
	}
	return nil
}

func decode(doc map[string]any, out any) error {
	var node yaml.Node
	if err := node.Encode(doc); err != nil {
		return gerrors.NewConfigValidationError(fmt.Sprintf("config not encodable: %v", err))
	}
	if err := node.Decode(out); err != nil {
		return gerrors.NewConfigValidationError(fmt.Sprintf("config has invalid field types: %v", err))
	}
	return nil
}

// normalize converts decoder output into plain Go values: json.Number
// becomes int64 or float64 and map[any]any becomes map[string]any.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case int:
		return int64(x)
	default:
		return v
	}
}

// cueMessage joins the individual CUE errors into one line.
func cueMessage(err error) string {
	var parts []string
	for _, e := range cueerrors.Errors(err) {
		parts = append(parts, e.Error())
	}
	if len(parts) == 0 {
		return err.Error()
	}
	return strings.Join(parts, "; ")
}

// cuePaths lists the document paths CUE reported errors at.
func cuePaths(err error) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range cueerrors.Errors(err) {
		p := strings.Join(e.Path(), ".")
		if p != "" && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
