package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/sigil/lang"
	"github.com/ardnew/sigil/log"
)

// Run executes scripts in the order given.
type Run struct {
	Scripts []string `arg:"" help:"Script file(s) to run, or '-' for stdin" name:"script" optional:""`
	Eval    string   `help:"Run the given source text instead of a file" short:"e" placeholder:"SOURCE"`
}

// Run executes the run command.
//
// Each script runs in a fresh session. Running stops after the first
// script that calls exit or reports an error, and that script decides the
// exit status.
func (r *Run) Run(ctx context.Context, eng *Engine, status *Status) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	scripts := collectScripts(r.Scripts)
	if len(scripts) == 0 && r.Eval == "" {
		return ErrNoScript
	}

	interp, err := eng.interpreter(stdout(ctx), stdin)
	if err != nil {
		return err
	}

	if r.Eval != "" {
		res, err := interp.Run(ctx, r.Eval)
		if err != nil {
			return ErrRunScript.With(slog.String("script", "eval")).Wrap(err)
		}

		if stop := finish(ctx, "eval", res, status); stop {
			return nil
		}
	}

	for _, s := range scripts {
		res, err := runScript(ctx, interp, s)
		if err != nil {
			return err
		}

		if stop := finish(ctx, s.name, res, status); stop {
			return nil
		}
	}

	return nil
}

func runScript(
	ctx context.Context,
	interp *lang.Interpreter,
	s script,
) (*lang.Result, error) {
	if !s.isStdin() {
		res, err := interp.RunFile(ctx, s.path)
		if err != nil {
			return nil, ErrRunScript.With(slog.String("script", s.name)).Wrap(err)
		}

		return res, nil
	}

	src, err := io.ReadAll(stdin)
	if err != nil {
		return nil, ErrReadScript.With(slog.String("script", s.name)).Wrap(err)
	}

	res, err := interp.Run(ctx, string(src))
	if err != nil {
		return nil, ErrRunScript.With(slog.String("script", s.name)).Wrap(err)
	}

	return res, nil
}

// finish records the outcome of one script in status and reports whether
// later scripts should be skipped.
func finish(ctx context.Context, name string, res *lang.Result, status *Status) bool {
	log.DebugContext(ctx, "script finished",
		slog.String("script", name),
		slog.Int("statements", res.Statements),
		slog.Int("diagnostics", len(res.Diagnostics)),
		slog.Bool("exited", res.Exited),
	)

	switch {
	case res.Exited:
		status.Code = res.ExitCode

		return true

	case !res.OK():
		status.Code = 1

		return true
	}

	return false
}
