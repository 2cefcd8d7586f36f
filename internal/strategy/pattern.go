package strategy

import (
	"math/rand/v2"
	"regexp/syntax"
	"strings"
)

// PatternConfig configures PATTERN_STRATEGY.
type PatternConfig struct {
	Common `yaml:",inline"`
	Regex  string `yaml:"regex"`
}

// Validate compiles the regex.
func (c *PatternConfig) Validate() error {
	if strings.TrimSpace(c.Regex) == "" {
		return fieldErr("regex", "must not be empty")
	}
	if _, err := syntax.Parse(c.Regex, syntax.Perl); err != nil {
		return fieldErr("regex", "invalid regular expression: %v", err)
	}
	return nil
}

// Pattern generates random strings matching a regular expression.
type Pattern struct {
	base
	re *syntax.Regexp
}

func newPattern(cfg ParamConfig, opts Options) (Strategy, error) {
	c := cfg.(*PatternConfig)
	re, err := syntax.Parse(c.Regex, syntax.Perl)
	if err != nil {
		return nil, fieldErr("regex", "invalid regular expression: %v", err)
	}
	return &Pattern{base: newBase("PATTERN_STRATEGY", opts), re: re.Simplify()}, nil
}

// GenerateChunk produces count matching strings.
func (p *Pattern) GenerateChunk(count int) ([]any, error) {
	out := make([]any, count)
	var b strings.Builder
	for i := range out {
		b.Reset()
		xeger(&b, p.re, p.rng)
		out[i] = b.String()
	}
	return out, nil
}

// repeatLimit caps unbounded repetition (*, +, {n,}).
const repeatLimit = 10

// printable is the rune range used for "." and for narrowing negated classes.
var printable = []rune{' ', '~'}

// xeger writes one random string matched by re.
func xeger(b *strings.Builder, re *syntax.Regexp, rng *rand.Rand) {
	switch re.Op {
	case syntax.OpLiteral:
		for _, r := range re.Rune {
			b.WriteRune(r)
		}
	case syntax.OpCharClass:
		b.WriteRune(pickRune(narrow(re.Rune), rng))
	case syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		b.WriteRune(pickRune(printable, rng))
	case syntax.OpCapture:
		xeger(b, re.Sub[0], rng)
	case syntax.OpConcat:
		for _, sub := range re.Sub {
			xeger(b, sub, rng)
		}
	case syntax.OpAlternate:
		xeger(b, re.Sub[rng.IntN(len(re.Sub))], rng)
	case syntax.OpStar:
		repeat(b, re.Sub[0], 0, repeatLimit, rng)
	case syntax.OpPlus:
		repeat(b, re.Sub[0], 1, repeatLimit, rng)
	case syntax.OpQuest:
		repeat(b, re.Sub[0], 0, 1, rng)
	case syntax.OpRepeat:
		hi := re.Max
		if hi < 0 {
			hi = re.Min + repeatLimit
		}
		repeat(b, re.Sub[0], re.Min, hi, rng)
	}
	// Anchors, boundaries and empty matches emit nothing.
}

func repeat(b *strings.Builder, re *syntax.Regexp, lo, hi int, rng *rand.Rand) {
	n := lo
	if hi > lo {
		n += rng.IntN(hi - lo + 1)
	}
	for range n {
		xeger(b, re, rng)
	}
}

// narrow intersects a class with printable ASCII when possible, so negated
// classes like [^0-9] stay readable.
func narrow(ranges []rune) []rune {
	var out []rune
	for i := 0; i+1 < len(ranges); i += 2 {
		lo, hi := max(ranges[i], printable[0]), min(ranges[i+1], printable[1])
		if lo <= hi {
			out = append(out, lo, hi)
		}
	}
	if len(out) == 0 {
		return ranges
	}
	return out
}

func pickRune(ranges []rune, rng *rand.Rand) rune {
	total := 0
	for i := 0; i+1 < len(ranges); i += 2 {
		total += int(ranges[i+1]-ranges[i]) + 1
	}
	if total == 0 {
		return '?'
	}
	n := rng.IntN(total)
	for i := 0; i+1 < len(ranges); i += 2 {
		size := int(ranges[i+1]-ranges[i]) + 1
		if n < size {
			return ranges[i] + rune(n)
		}
		n -= size
	}
	return ranges[0]
}
