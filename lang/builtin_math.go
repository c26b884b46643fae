package lang

import (
	"log/slog"
	"math"
	"math/rand/v2"
)

func registerMathBuiltins(r *Registry) {
	r.builtin("add", fold(func(x, y float64) (float64, error) { return x + y, nil }))
	r.builtin("sub", fold(func(x, y float64) (float64, error) { return x - y, nil }))
	r.builtin("mul", fold(func(x, y float64) (float64, error) { return x * y, nil }))
	r.builtin("div", fold(func(x, y float64) (float64, error) {
		if y == 0 {
			return 0, ErrDivideByZero
		}

		return x / y, nil
	}))
	r.builtin("mod", fold(func(x, y float64) (float64, error) {
		if y == 0 {
			return 0, ErrDivideByZero
		}

		return math.Mod(x, y), nil
	}))
	r.builtin("round", builtinRound)
	r.builtin("random", builtinRandom)
	r.builtin("abs", unary(math.Abs))
	r.builtin("floor", unary(math.Floor))
	r.builtin("ceil", unary(math.Ceil))
	r.builtin("calc", builtinCalc)
}

// fold returns a handler that combines two or more numeric operands from
// left to right. Any failure yields "0".
func fold(op func(x, y float64) (float64, error)) HandlerFunc {
	return func(_ *Context, a *Args) (string, error) {
		if err := a.Require(2, -1); err != nil {
			return valZero, err
		}

		nums, err := a.Numbers()
		if err != nil {
			return valZero, err
		}

		acc := nums[0]

		for _, n := range nums[1:] {
			if acc, err = op(acc, n); err != nil {
				return valZero, err
			}
		}

		if math.IsInf(acc, 0) || math.IsNaN(acc) {
			return valZero, ErrNotNumeric.With(slog.Float64("result", acc))
		}

		return FormatNumber(acc), nil
	}
}

func unary(op func(float64) float64) HandlerFunc {
	return func(_ *Context, a *Args) (string, error) {
		x, err := ParseNumber(a.String())
		if err != nil {
			return valZero, err
		}

		return FormatNumber(op(x)), nil
	}
}

// round[x; digits] rounds x half away from zero to the given number of
// decimal places, 0 by default.
func builtinRound(_ *Context, a *Args) (string, error) {
	if err := a.Require(1, 2); err != nil {
		return valZero, err
	}

	x, err := a.Number(0)
	if err != nil {
		return valZero, err
	}

	digits := 0.0

	if a.Len() == 2 {
		if digits, err = a.Number(1); err != nil {
			return valZero, err
		}
	}

	scale := math.Pow(10, math.Trunc(digits))

	return FormatNumber(math.Round(x*scale) / scale), nil
}

// maxExactInt is the largest magnitude at which every integer is exactly
// representable as a float64.
const maxExactInt = 1 << 53

// random[] returns a float in [0, 1); random[max] an integer in [0, max];
// random[min; max] an integer in [min, max]. Bounds beyond ±2^53 are
// rejected.
func builtinRandom(_ *Context, a *Args) (string, error) {
	if err := a.Require(0, 2); err != nil {
		return valZero, err
	}

	nums, err := a.Numbers()
	if err != nil {
		return valZero, err
	}

	for _, f := range nums {
		if math.Abs(f) > maxExactInt {
			return valZero, ErrNotNumeric.With(
				slog.String("value", FormatNumber(f)),
				slog.String("reason", "random bound out of range"),
			)
		}
	}

	var lo, hi int64

	switch len(nums) {
	case 0:
		return FormatNumber(rand.Float64()), nil
	case 1:
		hi = int64(math.Floor(nums[0]))
	default:
		lo, hi = int64(math.Ceil(nums[0])), int64(math.Floor(nums[1]))
	}

	if lo > hi {
		lo, hi = hi, lo
	}

	// |lo|, |hi| <= 2^53, so the span cannot overflow.
	return FormatNumber(float64(lo + rand.Int64N(hi-lo+1))), nil
}

// calc[expr] evaluates an arithmetic expression.
func builtinCalc(_ *Context, a *Args) (string, error) {
	f, err := EvalArithmetic(a.String())
	if err != nil {
		return valZero, err
	}

	return FormatNumber(f), nil
}
