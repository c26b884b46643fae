package lang

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func registerFileBuiltins(r *Registry) {
	r.builtin("isFileExist", predicate(func(p string) bool {
		_, err := os.Stat(expandHome(p))

		return err == nil
	}))
	r.builtin("createFile", builtinCreateFile)
	r.builtin("readFile", builtinReadFile)
	r.builtin("writeFile", builtinWriteFile)
	r.builtin("appendFile", builtinAppendFile)
	r.builtin("deleteFile", builtinDeleteFile)
	r.builtin("jsonRead", builtinJSONRead)
	r.builtin("jsonWrite", builtinJSONWrite)
	r.builtin("jsonGet", builtinJSONGet)
	r.builtin("jsonSet", builtinJSONSet)
}

const filePerm = 0o644

// createFile[path; content] creates path, and any missing parent
// directories, if it does not exist yet. It reports whether the file was
// created.
func builtinCreateFile(_ *Context, a *Args) (string, error) {
	parts := a.SplitN(2)
	if len(parts) == 0 || parts[0] == "" {
		return valFalse, ErrArgCount.With(slog.Int("got", len(parts)))
	}

	path := expandHome(parts[0])

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return valFalse, ErrFileWrite.Wrap(err).With(slog.String("path", path))
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if errors.Is(err, os.ErrExist) {
		return valFalse, nil
	}

	if err != nil {
		return valFalse, ErrFileWrite.Wrap(err).With(slog.String("path", path))
	}

	defer f.Close()

	if len(parts) == 2 {
		if _, err := f.WriteString(parts[1]); err != nil {
			return valFalse, ErrFileWrite.Wrap(err).With(slog.String("path", path))
		}
	}

	return valTrue, nil
}

// readFile[path] returns the content of path.
func builtinReadFile(_ *Context, a *Args) (string, error) {
	path := expandHome(a.String())

	data, err := os.ReadFile(path)
	if err != nil {
		return "", ErrFileRead.Wrap(err).With(slog.String("path", path))
	}

	return string(data), nil
}

// writeFile[path; content] replaces the content of path. Semicolons in
// content are kept.
func builtinWriteFile(_ *Context, a *Args) (string, error) {
	return writeFile(a, os.O_TRUNC)
}

// appendFile[path; content] appends content to path.
func builtinAppendFile(_ *Context, a *Args) (string, error) {
	return writeFile(a, os.O_APPEND)
}

func writeFile(a *Args, mode int) (string, error) {
	parts := a.SplitN(2)
	if len(parts) != 2 {
		return valFalse, ErrArgCount.With(slog.Int("got", len(parts)), slog.Int("want", 2))
	}

	path := expandHome(parts[0])

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|mode, filePerm)
	if err != nil {
		return valFalse, ErrFileWrite.Wrap(err).With(slog.String("path", path))
	}

	defer f.Close()

	if _, err := f.WriteString(parts[1]); err != nil {
		return valFalse, ErrFileWrite.Wrap(err).With(slog.String("path", path))
	}

	return valTrue, nil
}

// deleteFile[path] removes path.
func builtinDeleteFile(_ *Context, a *Args) (string, error) {
	path := expandHome(a.String())

	if err := os.Remove(path); err != nil {
		return valFalse, ErrFileWrite.Wrap(err).With(slog.String("path", path))
	}

	return valTrue, nil
}

// jsonRead[path] returns the JSON document in path in compact form.
func builtinJSONRead(_ *Context, a *Args) (string, error) {
	path := expandHome(a.String())

	data, err := os.ReadFile(path)
	if err != nil {
		return "", ErrFileRead.Wrap(err).With(slog.String("path", path))
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return "", ErrInvalidJSON.Wrap(err).With(slog.String("path", path))
	}

	return buf.String(), nil
}

// jsonWrite[path; json] validates json and writes it to path indented.
func builtinJSONWrite(_ *Context, a *Args) (string, error) {
	parts := a.SplitN(2)
	if len(parts) != 2 {
		return valFalse, ErrArgCount.With(slog.Int("got", len(parts)), slog.Int("want", 2))
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(parts[1]), "", "  "); err != nil {
		return valFalse, ErrInvalidJSON.Wrap(err)
	}

	buf.WriteByte('\n')

	path := expandHome(parts[0])
	if err := os.WriteFile(path, buf.Bytes(), filePerm); err != nil {
		return valFalse, ErrFileWrite.Wrap(err).With(slog.String("path", path))
	}

	return valTrue, nil
}

// jsonGet[source; path] returns the value at path in source, which is
// either JSON text or the name of a JSON file. Strings are returned bare,
// everything else as JSON.
func builtinJSONGet(_ *Context, a *Args) (string, error) {
	if err := a.Require(1, 2); err != nil {
		return "", err
	}

	doc, _, err := loadJSON(a.Arg(0))
	if err != nil {
		return "", err
	}

	v, err := jsonLookup(doc, a.Arg(1))
	if err != nil {
		return "", err
	}

	return jsonText(v)
}

// jsonSet[source; path; value] sets the value at path, creating objects
// along the way. The value is parsed as JSON when possible and stored as a
// string otherwise. When source names a file, the file is rewritten;
// either way the updated document is returned.
func builtinJSONSet(_ *Context, a *Args) (string, error) {
	parts := a.SplitN(3)
	if len(parts) != 3 {
		return "", ErrArgCount.With(slog.Int("got", len(parts)), slog.Int("want", 3))
	}

	doc, file, err := loadJSON(parts[0])
	if err != nil {
		return "", err
	}

	var val any
	if err := json.Unmarshal([]byte(parts[2]), &val); err != nil {
		val = parts[2]
	}

	doc, err = jsonAssign(doc, splitJSONPath(parts[1]), val)
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return "", ErrInvalidJSON.Wrap(err)
	}

	if file != "" {
		var buf bytes.Buffer
		_ = json.Indent(&buf, out, "", "  ")
		buf.WriteByte('\n')

		if err := os.WriteFile(file, buf.Bytes(), filePerm); err != nil {
			return string(out), ErrFileWrite.Wrap(err).With(slog.String("path", file))
		}
	}

	return string(out), nil
}

// loadJSON decodes source as JSON text, or else as the name of a file
// holding JSON. The file name is returned when source named a file.
func loadJSON(source string) (doc any, file string, err error) {
	data := []byte(source)

	t := strings.TrimSpace(source)
	if !json.Valid([]byte(t)) {
		path := expandHome(t)
		if isFile(path) {
			if data, err = os.ReadFile(path); err != nil {
				return nil, "", ErrFileRead.Wrap(err).With(slog.String("path", path))
			}

			file = path
		}
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, "", ErrInvalidJSON.Wrap(err)
	}

	return doc, file, nil
}

// splitJSONPath splits a path like a.b[0].c into its keys.
func splitJSONPath(path string) []string {
	path = strings.NewReplacer("[", ".", "]", "").Replace(path)

	var keys []string

	for k := range strings.SplitSeq(path, ".") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}

	return keys
}

func jsonLookup(doc any, path string) (any, error) {
	cur := doc

	for _, key := range splitJSONPath(path) {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[key]
			if !ok {
				return nil, ErrInvalidJSON.With(slog.String("missing", key))
			}

			cur = v

		case []any:
			i, err := strconv.Atoi(key)
			if err != nil || i < 0 || i >= len(node) {
				return nil, ErrInvalidJSON.With(slog.String("index", key))
			}

			cur = node[i]

		default:
			return nil, ErrInvalidJSON.With(slog.String("missing", key))
		}
	}

	return cur, nil
}

func jsonAssign(node any, keys []string, val any) (any, error) {
	if len(keys) == 0 {
		return val, nil
	}

	key, rest := keys[0], keys[1:]

	switch n := node.(type) {
	case []any:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i > len(n) {
			return nil, ErrInvalidJSON.With(slog.String("index", key))
		}

		if i == len(n) {
			n = append(n, nil)
		}

		if n[i], err = jsonAssign(n[i], rest, val); err != nil {
			return nil, err
		}

		return n, nil

	case map[string]any:
		v, err := jsonAssign(n[key], rest, val)
		if err != nil {
			return nil, err
		}

		n[key] = v

		return n, nil

	default:
		v, err := jsonAssign(nil, rest, val)
		if err != nil {
			return nil, err
		}

		return map[string]any{key: v}, nil
	}
}

func jsonText(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}

	out, err := json.Marshal(v)
	if err != nil {
		return "", ErrInvalidJSON.Wrap(err)
	}

	return string(out), nil
}
