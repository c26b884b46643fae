package lang

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/sigil/log"
)

// Context is the live execution state handed to every [Handler]: the
// variable store, the registry, the I/O streams, and the control flags of
// one run.
//
// A Context belongs to exactly one [Session] and must not be shared between
// goroutines.
type Context struct {
	ctx       context.Context
	session   *Session
	vars      *Vars
	registry  *Registry
	out       io.Writer
	in        *bufio.Reader
	logger    log.Logger
	debug     bool
	line      int
	directive string
	flags     flags
	diags     []Diagnostic
	unknown   map[string]bool
	stmts     int // flat statements executed
	includes  int // runtime require depth
}

// flags are the control signals of one run.
type flags struct {
	exit bool
	code int
	brk  bool
	cont bool
}

// Context returns the context of the current run.
func (c *Context) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}

	return c.ctx
}

// Vars returns the variable store.
func (c *Context) Vars() *Vars { return c.vars }

// Registry returns the directive registry.
func (c *Context) Registry() *Registry { return c.registry }

// Output returns the stream that script output is written to.
func (c *Context) Output() io.Writer { return c.out }

// Input returns the stream that input directives read from.
func (c *Context) Input() *bufio.Reader { return c.in }

// Logger returns the interpreter's logger.
func (c *Context) Logger() log.Logger { return c.logger }

// Debug reports whether debug mode is enabled.
func (c *Context) Debug() bool { return c.debug }

// Line returns the source line of the statement being executed.
func (c *Context) Line() int { return c.line }

// Session returns the session that owns the context.
func (c *Context) Session() *Session { return c.session }

// Exit stops the program with the given exit code once the current
// statement completes.
func (c *Context) Exit(code int) {
	c.flags.exit = true
	c.flags.code = code
}

// Exited reports whether the program has requested to exit, and with which
// code.
func (c *Context) Exited() (int, bool) { return c.flags.code, c.flags.exit }

// Break ends the nearest enclosing loop after the current statement.
func (c *Context) Break() { c.flags.brk = true }

// Continue skips the rest of the current loop iteration.
func (c *Context) Continue() { c.flags.cont = true }

// Expand resolves every directive call and variable reference in text.
// Calls are evaluated once each, innermost first, and their output is not
// scanned again.
func (c *Context) Expand(text string) string {
	frag, err := parseFragment(text)
	if err != nil {
		c.Report(err)
	}

	return c.eval(frag, nil)
}

// Warn records a warning diagnostic for the current statement.
func (c *Context) Warn(err error) { c.diagnose(SeverityWarning, err) }

// Report records an error diagnostic for the current statement.
func (c *Context) Report(err error) { c.diagnose(SeverityError, err) }

// Diagnostics returns the diagnostics recorded so far.
func (c *Context) Diagnostics() []Diagnostic { return c.diags }

func (c *Context) diagnose(sev Severity, err error) {
	if err == nil {
		return
	}

	d := Diagnostic{
		Severity:  sev,
		Line:      c.line,
		Directive: c.directive,
		Err:       err,
	}

	c.diags = append(c.diags, d)

	level := log.LevelWarn
	if sev == SeverityError {
		level = log.LevelError
	}

	c.logger.LogContext(c.Context(), level, "diagnostic", slog.Any("diag", d))
}

// eval evaluates a parsed fragment. Results of calls already evaluated are
// taken from memo, so a call inside a fragment that is resolved more than
// once still runs once.
func (c *Context) eval(f fragment, memo map[*callNode]string) string {
	if len(f) == 1 {
		if t, ok := f[0].(textNode); ok {
			return c.vars.Substitute(string(t))
		}
	}

	var b strings.Builder

	for _, n := range f {
		switch n := n.(type) {
		case textNode:
			b.WriteString(c.vars.Substitute(string(n)))
		case *callNode:
			b.WriteString(c.call(n, memo))
		}
	}

	return b.String()
}

// call evaluates one directive call.
func (c *Context) call(n *callNode, memo map[*callNode]string) string {
	if v, ok := memo[n]; ok {
		return v
	}

	v, ok := c.dispatch(n.name, n.raw, n.args)
	if !ok {
		v = n.source()
	}

	if memo != nil {
		memo[n] = v
	}

	return v
}

// Call invokes the directive name with the given argument text, as if it
// had been written §name[args]. The second result is false if name is not
// registered.
func (c *Context) Call(name, args string) (string, bool) {
	frag, err := parseFragment(args)
	if err != nil {
		c.Report(err)
	}

	return c.dispatch(name, args, frag)
}

func (c *Context) dispatch(name, raw string, args fragment) (string, bool) {
	h, ok := c.registry.Lookup(name)
	if !ok {
		c.reportUnknown(name)

		return "", false
	}

	outer := c.directive
	c.directive = name

	defer func() { c.directive = outer }()

	c.logger.TraceContext(c.Context(), "call",
		slog.String("directive", name),
		slog.String("args", raw),
		slog.Int("line", c.line),
	)

	val, err := c.invoke(h, newArgs(c, raw, args))
	if err != nil {
		c.Report(err)
	}

	return val, true
}

// invoke calls h, turning a panic into an error so that a faulty handler
// fails like any other directive and the run continues.
func (c *Context) invoke(h Handler, a *Args) (val string, err error) {
	defer func() {
		if r := recover(); r != nil {
			val = ""
			err = ErrHandlerPanic.With(slog.String("panic", fmt.Sprint(r)))
		}
	}()

	return h.Call(c, a)
}

// reportUnknown reports an unregistered directive once per run, suggesting
// the closest registered name.
func (c *Context) reportUnknown(name string) {
	if c.unknown[name] {
		return
	}

	if c.unknown == nil {
		c.unknown = make(map[string]bool)
	}

	c.unknown[name] = true

	err := ErrUnknownDirective.With(slog.String("name", name))
	if s := Suggest(name, c.registry.Names()); s != "" {
		err = err.With(slog.String("suggest", s))
	}

	c.Warn(err)
}

// Suggest returns the candidate that best fuzzy-matches name, or "" if
// nothing matches.
func Suggest(name string, candidates []string) string {
	if name == "" {
		return ""
	}

	matches := fuzzy.Find(strings.ToLower(name), lowered(candidates))
	if len(matches) == 0 {
		return ""
	}

	return candidates[matches[0].Index]
}

func lowered(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = strings.ToLower(v)
	}

	return out
}
