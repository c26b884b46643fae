package lang

import (
	"log/slog"
	"strings"
)

// Args is the argument text of one directive call.
//
// The raw text is resolved on demand: nested calls and variable references
// are evaluated the first time a view needs them, and each nested call runs
// at most once no matter how many views are requested.
type Args struct {
	c     *Context
	raw   string
	frag  fragment
	memo  map[*callNode]string
	whole *string
	split map[int][]fragment
	parts map[int][]string
}

func newArgs(c *Context, raw string, frag fragment) *Args {
	return &Args{
		c:    c,
		raw:  raw,
		frag: frag,
		memo: make(map[*callNode]string),
	}
}

// Raw returns the unresolved argument text.
func (a *Args) Raw() string { return a.raw }

// Empty reports whether the argument text is blank.
func (a *Args) Empty() bool { return strings.TrimSpace(a.raw) == "" }

// String returns the whole argument text resolved, trimmed and unquoted.
func (a *Args) String() string {
	if a.whole == nil {
		s := unquote(a.c.eval(a.frag, a.memo))
		a.whole = &s
	}

	return *a.whole
}

// List returns the arguments split at top-level semicolons, each resolved,
// trimmed and unquoted. A blank argument text yields an empty list.
func (a *Args) List() []string { return a.SplitN(-1) }

// SplitN is like [Args.List] but returns at most n arguments; the last one
// holds the remaining text, semicolons included.
func (a *Args) SplitN(n int) []string {
	if a.Empty() {
		return nil
	}

	if p, ok := a.parts[n]; ok {
		return p
	}

	frags := a.fragments(n)
	out := make([]string, len(frags))

	for i, f := range frags {
		out[i] = unquote(a.c.eval(f, a.memo))
	}

	if a.parts == nil {
		a.parts = make(map[int][]string)
	}

	a.parts[n] = out

	return out
}

func (a *Args) fragments(n int) []fragment {
	if n <= 0 {
		n = -1
	}

	if f, ok := a.split[n]; ok {
		return f
	}

	if a.split == nil {
		a.split = make(map[int][]fragment)
	}

	a.split[n] = splitFragment(a.frag, ';', n)

	return a.split[n]
}

// Len returns the number of top-level arguments.
func (a *Args) Len() int {
	if a.Empty() {
		return 0
	}

	return len(a.fragments(-1))
}

// Arg returns the i-th argument, or "" if there is none.
func (a *Args) Arg(i int) string {
	list := a.List()
	if i < 0 || i >= len(list) {
		return ""
	}

	return list[i]
}

// RawArg returns the unresolved text of the i-th argument, trimmed.
func (a *Args) RawArg(i int) string {
	if a.Empty() {
		return ""
	}

	frags := a.fragments(-1)
	if i < 0 || i >= len(frags) {
		return ""
	}

	return strings.TrimSpace(frags[i].source())
}

// Quoted reports whether the i-th argument is written as one quoted string.
func (a *Args) Quoted(i int) bool { return isQuoted(a.RawArg(i)) }

// Number returns the i-th argument as a number. Arithmetic expressions are
// evaluated.
func (a *Args) Number(i int) (float64, error) {
	return ParseNumber(a.Arg(i))
}

// Numbers returns every argument as a number, stopping at the first that is
// not numeric.
func (a *Args) Numbers() ([]float64, error) {
	list := a.List()
	out := make([]float64, 0, len(list))

	for _, s := range list {
		f, err := ParseNumber(s)
		if err != nil {
			return out, err
		}

		out = append(out, f)
	}

	return out, nil
}

// Require returns an error unless the call has between lo and hi arguments
// inclusive; hi < 0 means no upper bound.
func (a *Args) Require(lo, hi int) error {
	n := a.Len()
	if n < lo || (hi >= 0 && n > hi) {
		return ErrArgCount.With(
			slog.Int("got", n),
			slog.Int("min", lo),
			slog.Int("max", hi),
		)
	}

	return nil
}
