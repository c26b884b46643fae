package yamlio

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ardnew/sigil/lang"
	"github.com/ardnew/sigil/log"
)

func exec(t *testing.T, vars map[string]string, src string) ([]string, *lang.Result) {
	t.Helper()

	var out bytes.Buffer

	s := lang.New(
		lang.WithPlugins(Plugin()),
		lang.WithOutput(&out),
		lang.WithLogger(log.Discard()),
	).NewSession()

	for k, v := range vars {
		if err := s.Vars().Set(k, v); err != nil {
			t.Fatal(err)
		}
	}

	res, err := s.Exec(t.Context(), src)
	if err != nil {
		t.Fatalf("Exec(%q) error = %v", src, err)
	}

	return strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n"), res
}

func jsonEqual(t *testing.T, got, want string) {
	t.Helper()

	var g, w any

	if err := json.Unmarshal([]byte(got), &g); err != nil {
		t.Fatalf("invalid JSON %q: %v", got, err)
	}

	if err := json.Unmarshal([]byte(want), &w); err != nil {
		t.Fatalf("invalid JSON %q: %v", want, err)
	}

	if !reflect.DeepEqual(g, w) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	doc := `{"name": "sigil", "tags": ["a", "b"], "n": 3}`

	lines, res := exec(t, map[string]string{"p": path},
		"§yamlWrite[$p; "+doc+"]\n§log[§yamlRead[$p]]")
	if !res.OK() {
		t.Fatalf("diagnostics = %v", res.Diagnostics)
	}

	jsonEqual(t, lines[0], doc)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(data), "name: sigil") {
		t.Errorf("file is not YAML:\n%s", data)
	}
}

func TestConvert(t *testing.T) {
	lines, res := exec(t, nil, strings.Join([]string{
		"§log[§yamlToJson[{a: 1, b: [x, y]}]]",
		`§log[§jsonToYaml[{"a": 1}]]`,
	}, "\n"))
	if !res.OK() {
		t.Fatalf("diagnostics = %v", res.Diagnostics)
	}

	jsonEqual(t, lines[0], `{"a": 1, "b": ["x", "y"]}`)

	if lines[1] != "a: 1" {
		t.Errorf("jsonToYaml = %q", lines[1])
	}
}

func TestInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("a: [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, res := exec(t, map[string]string{"p": path}, "§yamlRead[$p]\n§jsonToYaml[{oops]")

	var n int

	for _, d := range res.Diagnostics {
		if errors.Is(d.Err, lang.ErrInvalidJSON) {
			n++
		}
	}

	if n != 2 {
		t.Errorf("diagnostics = %v, want 2 ErrInvalidJSON", res.Diagnostics)
	}

	if _, err := ToYAML([]byte("{")); !errors.Is(err, lang.ErrInvalidJSON) {
		t.Errorf("ToYAML error = %v", err)
	}
}
