// Package pathenv provides directives for environment variables and file
// paths.
package pathenv

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/mung"

	"github.com/ardnew/sigil/lang"
	"github.com/ardnew/sigil/pkg"
)

// Name identifies the plugin in the catalog.
const Name = "pathenv"

// Plugin returns the pathenv plugin.
func Plugin() lang.Plugin {
	return lang.Plugin{
		Name:        Name,
		Version:     pkg.Version,
		Description: "environment variables and file paths",
		Author:      pkg.Author[0].String(),
		Handlers: map[string]lang.Handler{
			"env":        lang.HandlerFunc(env),
			"setEnv":     lang.HandlerFunc(setEnv),
			"pathJoin":   lang.HandlerFunc(pathJoin),
			"pathAbs":    lang.HandlerFunc(pathAbs),
			"pathBase":   pathFunc(filepath.Base),
			"pathDir":    pathFunc(filepath.Dir),
			"pathPrefix": lang.HandlerFunc(pathPrefix),
		},
	}
}

// env[NAME; default] returns the value of an environment variable, or the
// default when it is unset.
func env(_ *lang.Context, a *lang.Args) (string, error) {
	if err := a.Require(1, 2); err != nil {
		return "", err
	}

	if v, ok := os.LookupEnv(a.Arg(0)); ok {
		return v, nil
	}

	return a.Arg(1), nil
}

// setEnv[NAME; value] sets an environment variable for the rest of the
// process.
func setEnv(c *lang.Context, a *lang.Args) (string, error) {
	parts := a.SplitN(2)
	if len(parts) != 2 || parts[0] == "" {
		return "", lang.ErrArgCount.With(slog.Int("got", len(parts)), slog.Int("want", 2))
	}

	if err := os.Setenv(parts[0], parts[1]); err != nil {
		return "", lang.ErrInvalidVariable.Wrap(err).With(slog.String("name", parts[0]))
	}

	c.Logger().DebugContext(c.Context(), "setenv", slog.String("name", parts[0]))

	return "", nil
}

// pathJoin[a; b; ...] joins path elements.
func pathJoin(_ *lang.Context, a *lang.Args) (string, error) {
	return filepath.Join(a.List()...), nil
}

// pathAbs[p] returns the absolute form of p, expanding a leading ~.
func pathAbs(_ *lang.Context, a *lang.Args) (string, error) {
	p := a.String()

	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[1:])
		}
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return p, lang.ErrFileRead.Wrap(err).With(slog.String("path", p))
	}

	return abs, nil
}

func pathFunc(fn func(string) string) lang.HandlerFunc {
	return func(_ *lang.Context, a *lang.Args) (string, error) {
		return fn(a.String()), nil
	}
}

// pathPrefix[list; item...] prepends items to a list of paths separated by
// the OS list separator.
func pathPrefix(_ *lang.Context, a *lang.Args) (string, error) {
	args := a.List()
	if len(args) == 0 {
		return "", lang.ErrArgCount.With(slog.Int("got", 0), slog.Int("min", 1))
	}

	return Prefix(args[0], args[1:]...), nil
}

// Prefix prepends items to list, a string of paths separated by the OS list
// separator.
func Prefix(list string, items ...string) string {
	return mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(items...),
	).String()
}
