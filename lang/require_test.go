package lang

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/sigil/log"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(dir, name)

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRequire(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.sig":     "§require[b]\nfrom a\n",
		"b.sig":     "§require[a]\n§var[who; b]\nfrom $who",
		"lib/c.sig": "from c",
	})

	out, res := run(t, "§require[a]\n§require[\"lib/c.sig\"]\n§require[a]\ndone",
		WithBaseDir(dir))

	if want := "from b\nfrom a\nfrom c\ndone\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	if !res.OK() {
		t.Errorf("diagnostics = %v", res.Diagnostics)
	}
}

func TestRequireResolve(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.sig": "§require[b]\na",
		"b.sig": "§require[a]\nb",
	})

	interp := New(WithBaseDir(dir), WithLogger(log.Discard()))

	text, err := interp.Resolve("§require[a]")
	if err != nil {
		t.Fatal(err)
	}

	marker := skipMarker(filepath.Join(dir, "a.sig"))

	if want := marker + "\nb\na"; text != want {
		t.Errorf("Resolve() = %q, want %q", text, want)
	}

	if left := Unresolved(text); len(left) != 0 {
		t.Errorf("Unresolved() = %v", left)
	}
}

func TestRequireCycleError(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.sig": "§require[b]",
		"b.sig": "§require[a]",
	})

	_, err := New(WithBaseDir(dir), WithRequireCycle(CycleError), WithLogger(log.Discard())).
		Run(t.Context(), "§require[a]")
	if !errors.Is(err, ErrRequireCycle) {
		t.Errorf("error = %v, want ErrRequireCycle", err)
	}
}

func TestRequireNotFound(t *testing.T) {
	var out strings.Builder

	res, err := New(WithBaseDir(t.TempDir()), WithOutput(&out), WithLogger(log.Discard())).
		Run(t.Context(), "before\n§require[missing]")
	if !errors.Is(err, ErrRequireNotFound) {
		t.Errorf("error = %v, want ErrRequireNotFound", err)
	}

	if res != nil || out.Len() != 0 {
		t.Errorf("program ran")
	}
}

func TestRequireSearchPath(t *testing.T) {
	base, lib := t.TempDir(), t.TempDir()
	writeFiles(t, lib, map[string]string{"util.sig": "§var[util; loaded]"})

	out, _ := run(t, "§require[util]\n$util", WithBaseDir(base), WithSearchPath(lib))
	if out != "loaded\n" {
		t.Errorf("output = %q", out)
	}
}

func TestRequireDynamic(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"one.sig": "one",
		"two.sig": "two\n§for[i; 0; 2]\n$i\n§endfor",
	})

	src := "§for[n; 0; 2]\n§if[$n == 0]\n§var[f; one]\n§else\n§var[f; two]\n§endif\n§require[$f]\n§endfor\n§require[$f]\nend"

	out, res := run(t, src, WithBaseDir(dir))
	if want := "one\ntwo\n0\n1\nend\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	if !res.OK() {
		t.Errorf("diagnostics = %v", res.Diagnostics)
	}

	_, res = run(t, "§var[f; nope]\n§require[$f]", WithBaseDir(dir))
	if !hasDiag(res, ErrRequireNotFound) {
		t.Errorf("diagnostics = %v, want ErrRequireNotFound", res.Diagnostics)
	}
}

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"main.sig": "§require[main]\nmain",
	})

	var out strings.Builder

	res, err := New(WithBaseDir(dir), WithOutput(&out), WithLogger(log.Discard())).
		RunFile(t.Context(), filepath.Join(dir, "main.sig"))
	if err != nil {
		t.Fatal(err)
	}

	if out.String() != "main\n" || !res.OK() {
		t.Errorf("output = %q, diagnostics = %v", out.String(), res.Diagnostics)
	}
}

func TestCyclePolicy(t *testing.T) {
	for _, name := range CyclePolicies() {
		if got := ParseCyclePolicy(name).String(); got != name {
			t.Errorf("ParseCyclePolicy(%q) = %q", name, got)
		}
	}

	if !slices.Contains(CyclePolicies(), CycleSkip.String()) {
		t.Errorf("CyclePolicies() = %v", CyclePolicies())
	}
}
