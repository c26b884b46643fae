package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/sigil/lang"
)

func TestTokens(t *testing.T) {
	dir := t.TempDir()
	src := "§log[$x]"
	path := writeScript(t, dir, "t.sigil", src)
	want := lang.Tokenize(src)

	type token struct {
		Type  string `json:"type"  yaml:"type"`
		Value string `json:"value" yaml:"value"`
		Line  int    `json:"line"  yaml:"line"`
		Col   int    `json:"col"   yaml:"col"`
	}

	decoders := map[string]func([]byte, any) error{
		"json": json.Unmarshal,
		"yaml": func(b []byte, v any) error { return yaml.Unmarshal(b, v) },
	}

	for format, decode := range decoders {
		t.Run(format, func(t *testing.T) {
			var out bytes.Buffer

			if err := (&Tokens{Script: path, Format: format}).Run(testContext(t, &out, nil)); err != nil {
				t.Fatal(err)
			}

			var got []token
			if err := decode(out.Bytes(), &got); err != nil {
				t.Fatalf("decode %s: %v\n%s", format, err, out.String())
			}

			if len(got) != len(want) {
				t.Fatalf("got %d tokens, want %d", len(got), len(want))
			}

			for i := range want {
				if got[i].Type != want[i].Type.String() || got[i].Value != want[i].Value ||
					got[i].Line != want[i].Line || got[i].Col != want[i].Col {
					t.Errorf("token %d = %+v, want %v", i, got[i], want[i])
				}
			}
		})
	}

	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer

		if err := (&Tokens{Script: path, Format: "text"}).Run(testContext(t, &out, nil)); err != nil {
			t.Fatal(err)
		}

		lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
		if len(lines) != len(want) {
			t.Fatalf("got %d lines, want %d", len(lines), len(want))
		}

		for i, tok := range want {
			if lines[i] != tok.String() {
				t.Errorf("line %d = %q, want %q", i, lines[i], tok.String())
			}
		}
	})
}
