package lang

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

const arithmeticOps = "+-*/()"

// IsArithmetic reports whether s looks like an arithmetic expression: it
// has an operator or parenthesis, at least one digit, and no directive.
func IsArithmetic(s string) bool {
	return strings.ContainsAny(s, arithmeticOps) &&
		strings.ContainsAny(s, "0123456789") &&
		!strings.ContainsRune(s, Sigil)
}

// writtenArithmetic reports whether the unresolved text of an argument is
// itself an arithmetic expression: numbers, operators and variable
// references only, with at least one operator. Values produced by calls or
// variables, such as dates, are never reinterpreted as arithmetic.
func writtenArithmetic(raw string) bool {
	op := false

	for i := 0; i < len(raw); {
		c := raw[i]

		switch {
		case c == VariablePrefix:
			end := scanIdent(raw, i+1)
			if end == i+1 {
				return false
			}

			i = end

			continue

		case strings.IndexByte(arithmeticOps, c) >= 0:
			op = true

		case c >= '0' && c <= '9', c == '.', c == ' ', c == '\t':
		default:
			return false
		}

		i++
	}

	return op
}

// keepArithmetic drops every rune that cannot appear in an arithmetic
// expression.
func keepArithmetic(r rune) rune {
	switch {
	case r >= '0' && r <= '9', r == '.', r == ' ', r == '\t':
		return r
	case strings.ContainsRune(arithmeticOps, r):
		return r
	default:
		return -1
	}
}

// EvalArithmetic evaluates an arithmetic expression of numbers, + - * /
// and parentheses. Every other character is discarded first, so text that
// reached the expression through substitution cannot change its meaning.
func EvalArithmetic(s string) (float64, error) {
	src := strings.TrimSpace(strings.Map(keepArithmetic, s))
	if src == "" {
		return 0, ErrNotNumeric.With(slog.String("value", s))
	}

	out, err := evalRestricted(src, nil, numericGrammar)
	if err != nil {
		return 0, ErrNotNumeric.Wrap(err).With(slog.String("value", s))
	}

	f, ok := toFloat(out)
	if !ok || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, ErrNotNumeric.With(slog.String("value", s))
	}

	return f, nil
}

// ParseNumber parses s as a number, evaluating it as arithmetic if it is not
// a plain numeric literal. Infinities and NaN are rejected.
func ParseNumber(s string) (float64, error) {
	t := strings.TrimSpace(s)

	if f, err := strconv.ParseFloat(t, 64); err == nil {
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, ErrNotNumeric.With(slog.String("value", s))
		}

		return f, nil
	}

	if IsArithmetic(t) {
		return EvalArithmetic(t)
	}

	return 0, ErrNotNumeric.With(slog.String("value", s))
}

// FormatNumber formats f without trailing zeros; integral values print as
// integers.
func FormatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// grammar restricts the nodes an expression may contain.
type grammar struct {
	unary   map[string]bool
	binary  map[string]bool
	strings bool // allow string, bool and nil literals
}

var numericGrammar = grammar{
	unary:  map[string]bool{"-": true, "+": true},
	binary: map[string]bool{"+": true, "-": true, "*": true, "/": true},
}

var conditionGrammar = grammar{
	unary: map[string]bool{"!": true, "not": true, "-": true, "+": true},
	binary: map[string]bool{
		"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
		"&&": true, "||": true, "and": true, "or": true,
		"+": true, "-": true, "*": true, "/": true, "%": true,
		"contains": true, "startsWith": true, "endsWith": true,
	},
	strings: true,
}

// checker is an [ast.Visitor] that records the first node outside its
// grammar.
type checker struct {
	grammar
	env map[string]any
	err error
}

// Visit implements ast.Visitor.
func (v *checker) Visit(node *ast.Node) {
	if v.err != nil {
		return
	}

	switch n := (*node).(type) {
	case *ast.IntegerNode, *ast.FloatNode:
	case *ast.BoolNode, *ast.StringNode, *ast.NilNode:
		if !v.strings {
			v.err = fmt.Errorf("unexpected literal %q", n.String())
		}
	case *ast.IdentifierNode:
		if _, ok := v.env[n.Value]; !ok {
			v.err = fmt.Errorf("unknown name %q", n.Value)
		}
	case *ast.UnaryNode:
		if !v.unary[n.Operator] {
			v.err = fmt.Errorf("operator %q not allowed", n.Operator)
		}
	case *ast.BinaryNode:
		if !v.binary[n.Operator] {
			v.err = fmt.Errorf("operator %q not allowed", n.Operator)
		}
	default:
		v.err = fmt.Errorf("unsupported expression %q", n.String())
	}
}

// evalRestricted parses src, rejects anything outside g, then compiles and
// runs it against env with every builtin function disabled.
func evalRestricted(src string, env map[string]any, g grammar) (any, error) {
	tree, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}

	v := &checker{grammar: g, env: env}
	ast.Walk(&tree.Node, v)

	if v.err != nil {
		return nil, v.err
	}

	opts := []expr.Option{expr.DisableAllBuiltins()}
	if env != nil {
		opts = append(opts, expr.Env(env))
	}

	program, err := expr.Compile(src, opts...)
	if err != nil {
		return nil, err
	}

	return expr.Run(program, env)
}
