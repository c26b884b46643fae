package cmd

import (
	"bytes"
	"testing"
)

func TestEngineLibrarySearchedLast(t *testing.T) {
	lib := t.TempDir()
	writeScript(t, lib, "greet.sig", "§var[who; library]")

	local := t.TempDir()
	writeScript(t, local, "greet.sig", "§var[who; local]")

	tests := []struct {
		name string
		eng  Engine
		want string
	}{
		{"library_only", Engine{Library: lib}, "hello library\n"},
		{"path_first", Engine{Library: lib, Path: []string{local}}, "hello local\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())

			var out bytes.Buffer

			interp, err := tt.eng.interpreter(&out, nil)
			if err != nil {
				t.Fatal(err)
			}

			res, err := interp.Run(t.Context(), "§require[greet.sig]\nhello $who")
			if err != nil {
				t.Fatal(err)
			}

			if !res.OK() {
				t.Fatalf("diagnostics: %v", res.Diagnostics)
			}

			if got := out.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngineLibraryDoesNotAlterPath(t *testing.T) {
	path := make([]string, 1, 4)
	path[0] = "a"

	eng := Engine{Path: path, Library: "lib"}

	if _, err := eng.options(nil, nil); err != nil {
		t.Fatal(err)
	}

	if got := path[:2][1]; got != "" {
		t.Errorf("Path backing array modified: %q", got)
	}
}
