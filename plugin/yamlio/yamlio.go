// Package yamlio provides directives that read, write and convert YAML.
//
// Documents cross into scripts as compact JSON, so the JSON built-ins can
// query and update them.
package yamlio

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/sigil/lang"
	"github.com/ardnew/sigil/pkg"
)

// Name identifies the plugin in the catalog.
const Name = "yamlio"

const filePerm = 0o644

// Plugin returns the yamlio plugin.
func Plugin() lang.Plugin {
	return lang.Plugin{
		Name:        Name,
		Version:     pkg.Version,
		Description: "YAML documents as JSON",
		Author:      pkg.Author[0].String(),
		Handlers: map[string]lang.Handler{
			"yamlRead":   lang.HandlerFunc(yamlRead),
			"yamlWrite":  lang.HandlerFunc(yamlWrite),
			"yamlToJson": lang.HandlerFunc(yamlToJSON),
			"jsonToYaml": lang.HandlerFunc(jsonToYAML),
		},
	}
}

// yamlRead[path] returns the YAML document in path as compact JSON.
func yamlRead(_ *lang.Context, a *lang.Args) (string, error) {
	path := a.String()

	data, err := os.ReadFile(path)
	if err != nil {
		return "", lang.ErrFileRead.Wrap(err).With(slog.String("path", path))
	}

	out, err := ToJSON(data)
	if err != nil {
		return "", lang.WrapError(err).With(slog.String("path", path))
	}

	return out, nil
}

// yamlWrite[path; json] writes the JSON document as YAML to path.
func yamlWrite(_ *lang.Context, a *lang.Args) (string, error) {
	parts := a.SplitN(2)
	if len(parts) != 2 {
		return "false", lang.ErrArgCount.With(slog.Int("got", len(parts)), slog.Int("want", 2))
	}

	out, err := ToYAML([]byte(parts[1]))
	if err != nil {
		return "false", err
	}

	if err := os.WriteFile(parts[0], []byte(out), filePerm); err != nil {
		return "false", lang.ErrFileWrite.Wrap(err).With(slog.String("path", parts[0]))
	}

	return "true", nil
}

// yamlToJson[yaml] converts a YAML document, usually in flow style, to
// compact JSON.
func yamlToJSON(_ *lang.Context, a *lang.Args) (string, error) {
	return ToJSON([]byte(a.String()))
}

// jsonToYaml[json] converts a JSON document to YAML.
func jsonToYAML(_ *lang.Context, a *lang.Args) (string, error) {
	out, err := ToYAML([]byte(a.String()))
	if err != nil {
		return "", err
	}

	return strings.TrimSuffix(out, "\n"), nil
}

// ToJSON converts a YAML document to compact JSON, keeping mapping order.
func ToJSON(data []byte) (string, error) {
	raw, err := yaml.YAMLToJSON(data)
	if err != nil {
		return "", lang.ErrInvalidJSON.Wrap(err)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", lang.ErrInvalidJSON.Wrap(err)
	}

	return buf.String(), nil
}

// ToYAML converts a JSON document to YAML, keeping object order.
func ToYAML(data []byte) (string, error) {
	if !json.Valid(data) {
		return "", lang.ErrInvalidJSON.With(slog.Int("bytes", len(data)))
	}

	out, err := yaml.JSONToYAML(data)
	if err != nil {
		return "", lang.ErrInvalidJSON.Wrap(err)
	}

	return string(out), nil
}
