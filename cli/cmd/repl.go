package cmd

import (
	"context"
	"os"

	"golang.org/x/term"

	"github.com/ardnew/sigil/cli/cmd/repl"
	"github.com/ardnew/sigil/log"
)

// Repl starts an interactive session.
type Repl struct {
	Preload []string `help:"Run script(s) in the session before the first prompt" placeholder:"FILE" short:"l" type:"existingfile"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context, eng *Engine) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ErrNotTerminal
	}

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	opts, err := eng.options(nil, nil)
	if err != nil {
		return err
	}

	return repl.Run(ctx, opts, cacheDir, log.Default(), r.Preload...)
}
