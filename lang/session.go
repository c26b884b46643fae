package lang

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"maps"
	"strings"
	"time"
)

// Session executes programs against one persistent variable store. The
// interactive shell feeds each entered chunk to the same Session.
//
// A Session is not safe for concurrent use.
type Session struct {
	interp   *Interpreter
	ctx      *Context
	root     map[string]bool // files counted as included before each run
	required map[string]bool // files included during the current run
}

// Vars returns the session's variable store.
func (s *Session) Vars() *Vars { return s.ctx.vars }

// Registry returns the session's directive registry.
func (s *Session) Registry() *Registry { return s.ctx.registry }

// Exec resolves, validates and executes src. Variables persist between
// calls; control flags and diagnostics start fresh each time.
func (s *Session) Exec(ctx context.Context, src string) (*Result, error) {
	s.required = maps.Clone(s.root)
	if s.required == nil {
		s.required = make(map[string]bool)
	}

	text, err := s.interp.resolver(s.required).resolve(src)
	if err != nil {
		return nil, err
	}

	if err := Validate(text); err != nil {
		return nil, err
	}

	c := s.ctx
	c.ctx = ctx
	c.flags = flags{}
	c.diags = nil
	c.unknown = nil
	c.stmts = 0
	c.line = 0
	c.directive = ""

	start := time.Now()
	c.logger.DebugContext(ctx, "run start", slog.Int("bytes", len(text)))

	err = s.execute(compile(text))

	res := &Result{
		ExitCode:    c.flags.code,
		Exited:      c.flags.exit,
		Diagnostics: c.diags,
		Statements:  c.stmts,
	}

	c.logger.DebugContext(ctx, "run finish",
		slog.Int("statements", res.Statements),
		slog.Int("diagnostics", len(res.Diagnostics)),
		slog.Bool("exited", res.Exited),
		slog.Int("code", res.ExitCode),
		since(start),
	)

	return res, err
}

func (s *Session) execute(prog program) error {
	e := &engine{
		c:        s.ctx,
		prog:     prog,
		whileMax: s.interp.cfg.whileMax,
		forMax:   s.interp.cfg.forMax,
	}

	return e.run()
}

// include runs the file named by target inside the current run, as the
// runtime form of require. Its statements share the session's variables
// and control flags.
func (s *Session) include(target string) error {
	c := s.ctx
	if c.includes >= maxRequireDepth {
		return ErrNestingDepth.With(slog.String("require", target))
	}

	r := s.interp.resolver(s.required)

	path, err := r.locate(target)
	if err != nil {
		return err
	}

	if s.required[path] {
		if s.interp.cfg.cycle == CycleError {
			return ErrRequireCycle.With(slog.String("path", path))
		}

		c.logger.Debug("require skipped", slog.String("path", path))

		return nil
	}

	s.required[path] = true

	text, err := r.include(path)
	if err != nil {
		return err
	}

	if err := Validate(text); err != nil {
		return err
	}

	line, directive := c.line, c.directive
	c.includes++

	defer func() {
		c.includes--
		c.line, c.directive = line, directive
	}()

	return s.execute(compile(text))
}

func newInput(r io.Reader) *bufio.Reader {
	if r == nil {
		r = strings.NewReader("")
	}

	if br, ok := r.(*bufio.Reader); ok {
		return br
	}

	return bufio.NewReader(r)
}
