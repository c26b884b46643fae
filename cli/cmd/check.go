package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/sigil/lang"
	"github.com/ardnew/sigil/log"
)

// Check validates scripts without running them.
type Check struct {
	Scripts []string `arg:"" help:"Script file(s) to check, or '-' for stdin" name:"script"`
	Quiet   bool     `help:"Print nothing, report only through the exit status" short:"q"`
}

// Run executes the check command. Every script is checked; the exit status
// is 1 if any of them is invalid.
func (c *Check) Run(ctx context.Context, eng *Engine, status *Status) error {
	scripts := collectScripts(c.Scripts)
	if len(scripts) == 0 {
		return ErrNoScript
	}

	interp, err := eng.interpreter(io.Discard, nil)
	if err != nil {
		return err
	}

	out := stdout(ctx)

	for _, s := range scripts {
		src, err := readScript(s)
		if err != nil {
			return err
		}

		err = interp.Check(src)

		log.DebugContext(ctx, "script checked",
			slog.String("script", s.name),
			slog.Bool("valid", err == nil),
		)

		if err == nil {
			continue
		}

		status.Code = 1

		if !c.Quiet {
			report(out, s.name, err)
		}
	}

	return nil
}

// report prints one line per problem in err, prefixed by the script name.
func report(w io.Writer, name string, err error) {
	var verr *lang.ValidationError
	if errors.As(err, &verr) {
		for _, d := range verr.Diagnostics {
			fmt.Fprintf(w, "%s: %s\n", name, d.Error())
		}

		return
	}

	fmt.Fprintf(w, "%s: %s\n", name, err.Error())
}

// readScript returns the source text of s.
func readScript(s script) (string, error) {
	var (
		data []byte
		err  error
	)

	if s.isStdin() {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(s.path)
	}

	if err != nil {
		return "", ErrReadScript.With(slog.String("script", s.name)).Wrap(err)
	}

	return string(data), nil
}
