package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/sigil/lang"
)

// Tokens prints the token stream of a script.
type Tokens struct {
	Script string `arg:"" help:"Script file, or '-' for stdin" name:"script"`
	Format string `default:"text" enum:"text,json,yaml" help:"Output format (${enum})." short:"f"`
}

// Run executes the tokens command.
func (t *Tokens) Run(ctx context.Context) error {
	scripts := collectScripts([]string{t.Script})
	if len(scripts) == 0 {
		return ErrNoScript
	}

	src, err := readScript(scripts[0])
	if err != nil {
		return err
	}

	toks := lang.Tokenize(src)
	out := stdout(ctx)

	switch t.Format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		if err := enc.Encode(toks); err != nil {
			return ErrJSONMarshal.With(slog.String("script", t.Script)).Wrap(err)
		}

	case "yaml":
		data, err := yaml.Marshal(toks)
		if err != nil {
			return ErrYAMLMarshal.With(slog.String("script", t.Script)).Wrap(err)
		}

		_, err = out.Write(data)

		return err

	default:
		for _, tok := range toks {
			fmt.Fprintln(out, tok.String())
		}
	}

	return nil
}
