package lang

import (
	"io"
	"log/slog"
	"math"
)

func registerCoreBuiltins(r *Registry) {
	r.builtin("log", builtinLog)
	r.builtin("print", builtinPrint)
	r.builtin("var", builtinVar)
	r.builtin("unset", builtinUnset)
	r.builtin("isSet", builtinIsSet)
	r.builtin("exit", builtinExit)
	r.builtin("break", func(c *Context, _ *Args) (string, error) {
		c.Break()

		return "", nil
	})
	r.builtin("continue", func(c *Context, _ *Args) (string, error) {
		c.Continue()

		return "", nil
	})
	r.builtin(requireDirective, builtinRequire)
}

// log[text] writes text and a newline to the output.
func builtinLog(c *Context, a *Args) (string, error) {
	if _, err := io.WriteString(c.out, a.String()+"\n"); err != nil {
		return "", ErrFileWrite.Wrap(err)
	}

	return "", nil
}

// print[text] writes text without a trailing newline.
func builtinPrint(c *Context, a *Args) (string, error) {
	if _, err := io.WriteString(c.out, a.String()); err != nil {
		return "", ErrFileWrite.Wrap(err)
	}

	return "", nil
}

// var[name; value] assigns value to name. A value written as arithmetic,
// such as 2 * 3 or $n + 1, is computed first; if that fails the text is
// stored as it is. A value that is a single call stores the call's result
// unchanged, surrounding space included.
func builtinVar(c *Context, a *Args) (string, error) {
	parts := a.SplitN(2)
	if len(parts) < 2 {
		return "", ErrArgCount.With(slog.Int("got", len(parts)), slog.Int("want", 2))
	}

	name, value := parts[0], parts[1]
	frag := a.fragments(2)[1]

	switch call, ok := frag.soleCall(); {
	case ok:
		value = c.call(call, a.memo)

	case !isQuoted(frag.source()) && writtenArithmetic(frag.source()) && IsArithmetic(value):
		if f, err := EvalArithmetic(value); err == nil {
			value = FormatNumber(f)
		}
	}

	if err := c.vars.Set(name, value); err != nil {
		return "", err
	}

	return "", nil
}

// unset[name] removes a variable.
func builtinUnset(c *Context, a *Args) (string, error) {
	c.vars.Delete(a.String())

	return "", nil
}

// isSet[name] reports whether a variable is defined.
func builtinIsSet(c *Context, a *Args) (string, error) {
	_, ok := c.vars.Get(a.String())

	return boolString(ok), nil
}

// exit[code] stops the program. The code defaults to 0; a code that is not
// a number exits with 1.
func builtinExit(c *Context, a *Args) (string, error) {
	if a.Empty() {
		c.Exit(0)

		return "", nil
	}

	f, err := a.Number(0)
	if err != nil {
		c.Exit(1)

		return "", err
	}

	c.Exit(int(math.Trunc(f)))

	return "", nil
}

// require[path] runs another file in place. Static paths are spliced in
// before the program starts; this handles paths built at run time.
func builtinRequire(c *Context, a *Args) (string, error) {
	if c.session == nil {
		return "", ErrRequireNotFound.With(slog.String("path", a.String()))
	}

	return "", c.session.include(a.String())
}
