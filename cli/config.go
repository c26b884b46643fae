package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/sigil/cli/cmd"
)

// loadYAML is a [kong.ConfigurationLoader] for YAML configuration files.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(loadYAML, "/path/to/config.yaml")
//
// Top-level keys name flags. Hyphens and underscores are interchangeable,
// and nested mappings join their keys with a hyphen, so the following are
// equivalent:
//
//	log-level: debug
//	log_level: debug
//	log:
//	  level: debug
//
// Sequences set repeatable flags:
//
//	plugin: [pathenv, yamlio]
//
// Command-line flags override config file values. An empty file is an empty
// configuration.
func loadYAML(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, cmd.ErrReadConfig.Wrap(err)
	}

	var raw map[string]any

	err = yaml.Unmarshal(data, &raw)
	if err != nil {
		return nil, cmd.ErrReadConfig.Wrap(err)
	}

	conf := make(config)
	conf.flatten("", raw)

	return conf, nil
}

// config implements [kong.Resolver] for YAML configs. Keys are normalized
// flag names; values are kong-parseable strings.
type config map[string]string

// flatten adds the leaves of m to r, prefixing nested keys with their
// parents.
func (r config) flatten(prefix string, m map[string]any) {
	for key, value := range m {
		name := normalize(key)
		if prefix != "" {
			name = prefix + "-" + name
		}

		if sub, ok := value.(map[string]any); ok {
			r.flatten(name, sub)

			continue
		}

		if s, ok := scalar(value); ok {
			r[name] = s
		}
	}
}

// scalar formats a YAML value the way kong parses flag arguments. Sequences
// become comma-separated lists.
func scalar(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false

	case string:
		return v, true

	case bool:
		return strconv.FormatBool(v), true

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true

	case []any:
		items := make([]string, 0, len(v))

		for _, item := range v {
			if s, ok := scalar(item); ok {
				items = append(items, s)
			}
		}

		return strings.Join(items, ","), true

	default:
		// Integers of every width.
		return fmt.Sprint(v), true
	}
}

func normalize(key string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(key), "_", "-"))
}

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	value, ok := r[normalize(flag.Name)]
	if !ok {
		// Not found - return nil to let Kong use defaults
		return nil, nil
	}

	return value, nil
}
