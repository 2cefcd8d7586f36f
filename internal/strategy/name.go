package strategy

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RandomNameConfig configures RANDOM_NAME_STRATEGY.
type RandomNameConfig struct {
	Common   `yaml:",inline"`
	NameType string `yaml:"name_type"`
	Gender   string `yaml:"gender"`
	Case     string `yaml:"case"`
}

// Validate checks the enumerated options.
func (c *RandomNameConfig) Validate() error {
	switch c.NameType {
	case "first", "last", "full":
	default:
		return fieldErr("name_type", "must be one of first, last, full; got %q", c.NameType)
	}
	switch c.Gender {
	case "male", "female", "any":
	default:
		return fieldErr("gender", "must be one of male, female, any; got %q", c.Gender)
	}
	if _, ok := casers[c.Case]; !ok {
		return fieldErr("case", "must be one of title, upper, lower; got %q", c.Case)
	}
	return nil
}

// casers builds a fresh Caser per strategy; Casers keep internal state.
var casers = map[string]func() cases.Caser{
	"title": func() cases.Caser { return cases.Title(language.English) },
	"upper": func() cases.Caser { return cases.Upper(language.English) },
	"lower": func() cases.Caser { return cases.Lower(language.English) },
}

// RandomName draws person names from built-in pools.
type RandomName struct {
	base
	nameType string
	firsts   []string
	caser    cases.Caser
}

func newRandomName(cfg ParamConfig, opts Options) (Strategy, error) {
	c := cfg.(*RandomNameConfig)
	firsts := append(append([]string(nil), maleFirstNames...), femaleFirstNames...)
	switch c.Gender {
	case "male":
		firsts = maleFirstNames
	case "female":
		firsts = femaleFirstNames
	}
	return &RandomName{
		base:     newBase("RANDOM_NAME_STRATEGY", opts),
		nameType: c.NameType,
		firsts:   firsts,
		caser:    casers[c.Case](),
	}, nil
}

// GenerateChunk draws count names.
func (r *RandomName) GenerateChunk(count int) ([]any, error) {
	out := make([]any, count)
	for i := range out {
		var name string
		switch r.nameType {
		case "last":
			name = lastNames[r.rng.IntN(len(lastNames))]
		case "full":
			name = r.firsts[r.rng.IntN(len(r.firsts))] + " " + lastNames[r.rng.IntN(len(lastNames))]
		default:
			name = r.firsts[r.rng.IntN(len(r.firsts))]
		}
		out[i] = r.caser.String(name)
	}
	return out, nil
}

// Domain lists the pool for first or last names.
func (r *RandomName) Domain() ([]any, bool) {
	pool := r.firsts
	switch r.nameType {
	case "last":
		pool = lastNames
	case "full":
		return nil, false
	}
	out := make([]any, len(pool))
	for i, n := range pool {
		out[i] = r.caser.String(n)
	}
	return out, true
}
