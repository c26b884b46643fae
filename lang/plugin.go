package lang

import (
	"errors"
	"log/slog"
	"maps"
	"slices"
)

// Plugin is a named set of directive handlers merged into a [Registry].
//
// When two plugins define the same directive, the higher Priority wins and
// equal priorities resolve to the plugin loaded last. Every plugin outranks
// the built-in directives.
type Plugin struct {
	Name        string
	Version     string
	Description string
	Author      string
	Priority    int
	Handlers    map[string]Handler
}

// Validate reports whether the plugin satisfies the registry contract: a
// non-empty name and at least one handler, each bound to a valid directive
// name.
func (p Plugin) Validate() error {
	switch {
	case p.Name == "":
		return ErrInvalidPlugin.Wrap(errors.New("missing name"))
	case len(p.Handlers) == 0:
		return ErrInvalidPlugin.Wrap(errors.New("no handlers")).
			With(slog.String("plugin", p.Name))
	}

	for _, name := range slices.Sorted(maps.Keys(p.Handlers)) {
		if !IsValidName(name) {
			return ErrInvalidPlugin.Wrap(errors.New("invalid directive name")).
				With(slog.String("plugin", p.Name), slog.String("directive", name))
		}

		if p.Handlers[name] == nil {
			return ErrInvalidPlugin.Wrap(errors.New("nil handler")).
				With(slog.String("plugin", p.Name), slog.String("directive", name))
		}
	}

	return nil
}

// Directives returns the plugin's directive names in lexical order.
func (p Plugin) Directives() []string {
	return slices.Sorted(maps.Keys(p.Handlers))
}
