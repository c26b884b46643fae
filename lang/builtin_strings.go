package lang

import (
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"
)

func registerStringBuiltins(r *Registry) {
	r.builtin("upper", stringFunc(strings.ToUpper))
	r.builtin("lower", stringFunc(strings.ToLower))
	r.builtin("trim", stringFunc(strings.TrimSpace))
	r.builtin("len", func(_ *Context, a *Args) (string, error) {
		return strconv.Itoa(utf8.RuneCountInString(a.String())), nil
	})
	r.builtin("contains", stringPredicate(strings.Contains))
	r.builtin("startsWith", stringPredicate(strings.HasPrefix))
	r.builtin("endsWith", stringPredicate(strings.HasSuffix))
	r.builtin("equalsIgnoreCase", stringPredicate(strings.EqualFold))
	r.builtin("replace", builtinReplace)
	r.builtin("concat", func(_ *Context, a *Args) (string, error) {
		return strings.Join(a.List(), ""), nil
	})
	r.builtin("substr", builtinSubstr)
	r.builtin("indexOf", func(_ *Context, a *Args) (string, error) {
		if err := a.Require(2, 2); err != nil {
			return "-1", err
		}

		s, sub := a.Arg(0), a.Arg(1)

		i := strings.Index(s, sub)
		if i > 0 {
			i = utf8.RuneCountInString(s[:i])
		}

		return strconv.Itoa(i), nil
	})
}

func stringFunc(fn func(string) string) HandlerFunc {
	return func(_ *Context, a *Args) (string, error) {
		return fn(a.String()), nil
	}
}

// stringPredicate returns a handler comparing its two arguments.
func stringPredicate(fn func(s, t string) bool) HandlerFunc {
	return func(_ *Context, a *Args) (string, error) {
		if err := a.Require(2, 2); err != nil {
			return valFalse, err
		}

		return boolString(fn(a.Arg(0), a.Arg(1))), nil
	}
}

// replace[s; old; new] replaces every occurrence of old in s.
func builtinReplace(_ *Context, a *Args) (string, error) {
	if err := a.Require(2, 3); err != nil {
		return "", err
	}

	s, old := a.Arg(0), a.Arg(1)
	if old == "" {
		return s, nil
	}

	return strings.ReplaceAll(s, old, a.Arg(2)), nil
}

// substr[s; start; length] returns the runes of s from start, up to length
// runes when given.
func builtinSubstr(_ *Context, a *Args) (string, error) {
	if err := a.Require(2, 3); err != nil {
		return "", err
	}

	runes := []rune(a.Arg(0))

	start, err := a.Number(1)
	if err != nil {
		return "", err
	}

	lo := clampIndex(int(start), len(runes))
	hi := len(runes)

	if a.Len() == 3 {
		n, err := a.Number(2)
		if err != nil {
			return "", err
		}

		if n < 0 {
			return "", ErrNotNumeric.With(slog.Float64("length", n))
		}

		hi = clampIndex(lo+int(n), len(runes))
	}

	return string(runes[lo:hi]), nil
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}

	return max(0, min(i, n))
}
