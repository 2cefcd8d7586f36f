// Package mask evaluates boolean row-selection expressions against a frame.
//
// Expressions use expr-lang syntax ("age > 30 and city == 'Paris'").
// Pandas-style operators &, | and ~ are accepted and rewritten to and, or
// and not before parsing. A mask may only reference columns that already
// exist in the frame; Validate enforces this before any row is evaluated.
package mask

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"

	"github.com/roach88/genxdata/internal/dataset"
	"github.com/roach88/genxdata/internal/gerrors"
)

// ValidationResult describes a mask that passed validation.
type ValidationResult struct {
	// Expression is the normalized expression text.
	Expression string

	// Identifiers are the column names the expression references.
	Identifiers []string
}

// Preview summarizes how many rows a mask selects.
type Preview struct {
	Total      int     `json:"total"`
	Matched    int     `json:"matched"`
	Percentage float64 `json:"percentage"`
}

// Evaluator compiles and runs masks. Compiled programs are cached by
// expression text for the lifetime of the evaluator.
type Evaluator struct {
	programs map[string]*vm.Program
	logger   *slog.Logger
}

// NewEvaluator creates an evaluator. A nil logger uses slog.Default().
func NewEvaluator(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		programs: make(map[string]*vm.Program),
		logger:   logger.With(slog.String("component", "mask")),
	}
}

// Validate parses expression and checks that every identifier it
// references is in known.
func (e *Evaluator) Validate(expression string, known []string) (ValidationResult, error) {
	src := Normalize(expression)
	if src == "" {
		return ValidationResult{}, gerrors.NewInvalidMaskError(expression, "mask expression is empty")
	}
	idents, err := Identifiers(src)
	if err != nil {
		return ValidationResult{}, gerrors.NewInvalidMaskError(expression, fmt.Sprintf("mask does not parse: %v", err))
	}
	var unknown []string
	for _, id := range idents {
		if !slices.Contains(known, id) {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return ValidationResult{}, gerrors.NewInvalidMaskError(expression,
			"mask references unknown columns: "+strings.Join(unknown, ", "), unknown...)
	}
	return ValidationResult{Expression: src, Identifiers: idents}, nil
}

// Evaluate validates expression against the frame's columns and returns a
// selector with one entry per row. Rows where evaluation fails or yields a
// non-bool are not selected.
func (e *Evaluator) Evaluate(expression string, f *dataset.Frame) ([]bool, error) {
	res, err := e.Validate(expression, f.Columns())
	if err != nil {
		return nil, err
	}
	prog, err := e.compile(res.Expression)
	if err != nil {
		return nil, gerrors.NewInvalidMaskError(expression, fmt.Sprintf("mask does not compile: %v", err))
	}

	selector := make([]bool, f.Len())
	failures := 0
	for i := range selector {
		out, err := expr.Run(prog, f.Row(i))
		if err != nil {
			failures++
			continue
		}
		if b, ok := out.(bool); ok {
			selector[i] = b
		}
	}
	if failures > 0 {
		e.logger.Debug("mask rows failed to evaluate",
			slog.String("mask", expression),
			slog.Int("rows", failures))
	}
	return selector, nil
}

// Preview evaluates expression and counts matches without touching the
// frame.
func (e *Evaluator) Preview(expression string, f *dataset.Frame) (Preview, error) {
	sel, err := e.Evaluate(expression, f)
	if err != nil {
		return Preview{}, err
	}
	p := Preview{Total: len(sel)}
	for _, ok := range sel {
		if ok {
			p.Matched++
		}
	}
	if p.Total > 0 {
		p.Percentage = float64(p.Matched) * 100 / float64(p.Total)
	}
	return p, nil
}

func (e *Evaluator) compile(src string) (*vm.Program, error) {
	if prog, ok := e.programs[src]; ok {
		return prog, nil
	}
	prog, err := expr.Compile(src, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}
	e.programs[src] = prog
	return prog, nil
}

// Identifiers returns the sorted, de-duplicated variable names referenced by
// an expression. Function names are not variables and are excluded.
func Identifiers(src string) ([]string, error) {
	tree, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}
	v := &identVisitor{vars: map[string]bool{}, calls: map[string]bool{}}
	ast.Walk(&tree.Node, v)

	var out []string
	for name := range v.vars {
		if !v.calls[name] {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

type identVisitor struct {
	vars  map[string]bool
	calls map[string]bool
}

func (v *identVisitor) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		v.vars[n.Value] = true
	case *ast.CallNode:
		if id, ok := n.Callee.(*ast.IdentifierNode); ok {
			v.calls[id.Value] = true
		}
	}
}

// Normalize trims expression and rewrites pandas-style &, | and ~ outside
// string literals.
func Normalize(expression string) string {
	s := strings.TrimSpace(expression)
	var b strings.Builder
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			b.WriteByte(c)
			if c == '\\' && i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
			b.WriteByte(c)
		case '&', '|':
			if i+1 < len(s) && s[i+1] == c {
				b.WriteByte(c)
				b.WriteByte(c)
				i++
				continue
			}
			if c == '&' {
				b.WriteString(" and ")
			} else {
				b.WriteString(" or ")
			}
		case '~':
			b.WriteString(" not ")
		default:
			b.WriteByte(c)
		}
	}
	return strings.TrimSpace(b.String())
}
