package lang

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

func registerTypeBuiltins(r *Registry) {
	r.builtin("isNumeric", predicate(IsNumeric))
	r.builtin("isText", predicate(IsText))
	r.builtin("isBool", predicate(IsBool))
	r.builtin("isInt", predicate(IsInt))
	r.builtin("isFloat", predicate(IsFloat))
	r.builtin("isJson", predicate(IsJSON))
	r.builtin("isNaN", predicate(func(s string) bool { return !IsNumeric(s) }))
	r.builtin("isEven", predicate(func(s string) bool { return parity(s) == 0 }))
	r.builtin("isOdd", predicate(func(s string) bool { return parity(s) == 1 }))
	r.builtin("isEmpty", predicate(func(s string) bool { return s == "" }))
	r.builtin("typeOf", func(_ *Context, a *Args) (string, error) {
		return TypeOf(a.String()), nil
	})
}

func predicate(fn func(string) bool) HandlerFunc {
	return func(_ *Context, a *Args) (string, error) {
		return boolString(fn(a.String())), nil
	}
}

// IsNumeric reports whether s is a finite decimal number.
func IsNumeric(s string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)

	return err == nil && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// IsText reports whether s is non-empty and not numeric.
func IsText(s string) bool {
	return strings.TrimSpace(s) != "" && !IsNumeric(s)
}

// IsBool reports whether s is true or false.
func IsBool(s string) bool {
	t := strings.TrimSpace(s)

	return t == valTrue || t == valFalse
}

// IsInt reports whether s is a decimal integer.
func IsInt(s string) bool {
	_, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)

	return err == nil
}

// IsFloat reports whether s is numeric but not an integer.
func IsFloat(s string) bool {
	return IsNumeric(s) && !IsInt(s)
}

// IsJSON reports whether s is a valid JSON document.
func IsJSON(s string) bool {
	t := strings.TrimSpace(s)

	return t != "" && json.Valid([]byte(t))
}

// TypeOf classifies s as bool, int, float, json or string, checked in that
// order.
func TypeOf(s string) string {
	switch {
	case IsBool(s):
		return "bool"
	case IsInt(s):
		return "int"
	case IsFloat(s):
		return "float"
	case IsJSON(s):
		return "json"
	default:
		return "string"
	}
}

// parity returns 0 or 1 for even or odd integers, and -1 for anything else.
func parity(s string) int {
	f, err := ParseNumber(s)
	if err != nil || f != math.Trunc(f) {
		return -1
	}

	return int(math.Abs(math.Mod(f, 2)))
}
