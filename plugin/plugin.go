// Package plugin is the catalog of directive plugins compiled into sigil.
//
// Plugins are ordinary [lang.Plugin] values; the catalog only lets the
// command line select them by name.
package plugin

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/ardnew/sigil/lang"
	"github.com/ardnew/sigil/plugin/pathenv"
	"github.com/ardnew/sigil/plugin/yamlio"
)

// Catalog returns every compiled-in plugin, ordered by name.
func Catalog() []lang.Plugin {
	all := []lang.Plugin{
		pathenv.Plugin(),
		yamlio.Plugin(),
	}

	slices.SortFunc(all, func(a, b lang.Plugin) int {
		return cmp.Compare(a.Name, b.Name)
	})

	return all
}

// Names returns the names of the compiled-in plugins.
func Names() []string {
	cat := Catalog()
	names := make([]string, len(cat))

	for i, p := range cat {
		names[i] = p.Name
	}

	return names
}

// Lookup returns the catalog plugins with the given names, in the order
// named. Duplicates are selected once.
func Lookup(names ...string) ([]lang.Plugin, error) {
	cat := Catalog()

	var (
		out  []lang.Plugin
		seen = make(map[string]bool)
	)

	for _, name := range names {
		if seen[name] {
			continue
		}

		i := slices.IndexFunc(cat, func(p lang.Plugin) bool { return p.Name == name })
		if i < 0 {
			return nil, lang.ErrInvalidPlugin.With(
				slog.String("plugin", name),
				slog.String("suggest", lang.Suggest(name, Names())),
			)
		}

		seen[name] = true
		out = append(out, cat[i])
	}

	return out, nil
}
