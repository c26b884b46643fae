package lang

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Interpreter runs sigil programs.
//
// An Interpreter holds configuration and a registry only; every run gets a
// fresh [Session], so one Interpreter may run programs concurrently as long
// as at most one of them reads input.
type Interpreter struct {
	cfg      config
	registry *Registry
	loadErr  error

	// Sessions share one buffered reader so that lines read ahead by one
	// run remain available to the next.
	in *bufio.Reader
}

// New returns an interpreter configured by opts.
func New(opts ...Option) *Interpreter {
	cfg := makeConfig(opts...)

	reg := cfg.registry
	if reg == nil {
		reg = NewRegistry()
	} else {
		reg = reg.Clone()
	}

	err := reg.Load(cfg.plugins...)
	if err != nil {
		cfg.logger.Warn("plugin rejected", slog.Any("error", err))
	}

	return &Interpreter{
		cfg:      cfg,
		registry: reg,
		loadErr:  err,
		in:       newInput(cfg.in),
	}
}

// Registry returns the interpreter's directive registry.
func (i *Interpreter) Registry() *Registry { return i.registry }

// Err returns the error from loading plugins, if any were rejected.
func (i *Interpreter) Err() error { return i.loadErr }

// Result summarizes one run.
type Result struct {
	ExitCode    int
	Exited      bool // the program called exit
	Diagnostics []Diagnostic
	Statements  int // flat statements executed
}

// OK reports whether the run finished without error diagnostics.
func (r *Result) OK() bool {
	return len(r.Errors()) == 0
}

// Errors returns the error-severity diagnostics.
func (r *Result) Errors() []Diagnostic {
	var errs []Diagnostic

	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			errs = append(errs, d)
		}
	}

	return errs
}

// Run resolves, validates and executes src in a fresh session.
//
// The error is non-nil only if src cannot run at all (a required file is
// missing or the program is malformed) or ctx is cancelled. Problems while
// running are reported in the result's diagnostics.
func (i *Interpreter) Run(ctx context.Context, src string) (*Result, error) {
	return i.NewSession().Exec(ctx, src)
}

// RunFile runs the program stored in path. The file itself counts as
// already included for cycle detection.
func (i *Interpreter) RunFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrFileRead.Wrap(err).With(slog.String("path", path))
	}

	s := i.NewSession()

	if abs, err := filepath.Abs(path); err == nil {
		s.root[abs] = true
	}

	return s.Exec(ctx, string(data))
}

// Resolve splices every static require in src and returns the result.
func (i *Interpreter) Resolve(src string) (string, error) {
	return i.resolver(make(map[string]bool)).resolve(src)
}

// Check resolves and validates src without running it.
func (i *Interpreter) Check(src string) error {
	text, err := i.Resolve(src)
	if err != nil {
		return err
	}

	return Validate(text)
}

// NewSession returns a session whose variable store persists across calls
// to [Session.Exec]. All sessions of an interpreter read from the same
// input stream and must not read from it concurrently.
func (i *Interpreter) NewSession() *Session {
	s := &Session{interp: i, root: make(map[string]bool)}
	s.ctx = &Context{
		session:  s,
		vars:     NewVars(),
		registry: i.registry,
		out:      i.cfg.out,
		in:       i.in,
		logger:   i.cfg.logger,
		debug:    i.cfg.debug,
	}

	return s
}

func (i *Interpreter) resolver(seen map[string]bool) *resolver {
	return &resolver{
		ext:    i.cfg.requireExt,
		base:   i.cfg.baseDir,
		search: i.cfg.searchPath,
		policy: i.cfg.cycle,
		seen:   seen,
		logger: i.cfg.logger,
	}
}

func since(t time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(t))
}
