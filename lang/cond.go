package lang

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// condReplacer maps loose equality operators onto the strict ones the
// evaluator understands.
var condReplacer = strings.NewReplacer("!==", "!=", "===", "==")

// Condition evaluates the condition text of an if, elseif or while. Nested
// calls run first and variables are bound by name, so their values are
// compared as typed operands rather than spliced into the expression text.
// A condition that cannot be evaluated is false.
func (c *Context) Condition(text string) bool {
	frag, err := parseFragment(text)
	if err != nil {
		c.Report(err)

		return false
	}

	return c.condition(frag)
}

func (c *Context) condition(f fragment) bool {
	env := make(map[string]any)

	var b strings.Builder

	for i, n := range f {
		switch n := n.(type) {
		case textNode:
			bind := func(name string) string {
				id := "__v_" + name
				val, _ := c.vars.Get(name)
				env[id] = typedValue(val, false)

				return " " + id + " "
			}

			eachQuoted(string(n), func(seg string, quoted bool) {
				if quoted {
					b.WriteString(c.vars.Substitute(seg))
				} else {
					b.WriteString(c.vars.SubstituteFunc(seg, bind))
				}
			})

		case *callNode:
			id := "__c" + strconv.Itoa(i)
			env[id] = typedValue(c.call(n, nil), true)
			b.WriteString(" " + id + " ")
		}
	}

	src := strings.TrimSpace(condReplacer.Replace(b.String()))
	if src == "" {
		return false
	}

	out, err := evalRestricted(src, env, conditionGrammar)
	if err != nil {
		c.logger.DebugContext(c.Context(), "condition",
			slog.String("expr", src),
			slog.Int("line", c.line),
			slog.Any("error", ErrCondition.Wrap(err)),
		)

		return false
	}

	return Truthy(out)
}

// eachQuoted calls fn for the consecutive quoted and unquoted segments of s.
func eachQuoted(s string, fn func(seg string, quoted bool)) {
	start := 0

	for i := 0; i < len(s); i++ {
		if !isQuote(s[i]) || !quoteOpens(s, i) {
			continue
		}

		end := skipQuoted(s, i)
		if end < 0 {
			continue
		}

		if i > start {
			fn(s[start:i], false)
		}

		fn(s[i:end], true)
		start = end
		i = end - 1
	}

	if start < len(s) {
		fn(s[start:], false)
	}
}

// typedValue converts text to an int, float or string operand. Call results
// that read true or false become booleans.
func typedValue(s string, boolean bool) any {
	t := strings.TrimSpace(s)

	if boolean {
		switch t {
		case "true":
			return true
		case "false":
			return false
		}
	}

	if i, err := strconv.ParseInt(t, 10, 64); err == nil {
		return int(i)
	}

	if f, err := strconv.ParseFloat(t, 64); err == nil &&
		!math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}

	return s
}

// Truthy reports whether a condition result counts as true: booleans are
// themselves, numbers are true when non-zero, and strings are true unless
// empty, "false" or "0".
func Truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		t := strings.TrimSpace(x)

		return t != "" && t != "false" && t != "0"
	case nil:
		return false
	}

	if f, ok := toFloat(v); ok {
		return f != 0
	}

	return true
}
