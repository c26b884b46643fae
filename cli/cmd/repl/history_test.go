package repl

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHistoryPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load() on missing file: %v", err)
	}

	entries := []HistoryEntry{
		{Line: "§log[hi]", Mode: modeEval},
		{Line: "vars", Mode: modeCtrl},
		{Line: "§if[true]\n§log[a]\n§endif", Mode: modeEval},
		{Line: `"quoted"`, Mode: modeEval},
	}

	for _, e := range entries {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatal(err)
		}
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatal(err)
	}

	got := loaded.Entries()
	if len(got) != len(entries) {
		t.Fatalf("loaded %d entries, want %d", len(got), len(entries))
	}

	for i := range entries {
		if got[i] != entries[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], entries[i])
		}
	}
}

func TestHistoryDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	for _, line := range []string{"a", "b", "a", "a", "  "} {
		if err := h.Add(line, modeEval); err != nil {
			t.Fatal(err)
		}
	}

	_ = h.Add("a", modeCtrl)

	var lines []string
	for _, e := range h.Entries() {
		lines = append(lines, e.Line)
	}

	if got := strings.Join(lines, ","); got != "b,a,a" {
		t.Errorf("entries = %q, want %q", got, "b,a,a")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if want := "E:b\nE:a\nC:a\n"; string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
}

func TestHistoryLimit(t *testing.T) {
	h := NewHistory("")

	for i := range maxHistory + 10 {
		_ = h.Add(strings.Repeat("x", i+1), modeEval)
	}

	if h.Len() != maxHistory {
		t.Errorf("Len() = %d, want %d", h.Len(), maxHistory)
	}

	first, err := h.Entry(0)
	if err != nil {
		t.Fatal(err)
	}

	if len(first.Line) != 11 {
		t.Errorf("oldest entry has length %d, want 11", len(first.Line))
	}

	if _, err := h.Entry(h.Len()); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Entry(Len()) error = %v, want ErrOutOfBounds", err)
	}
}

func TestDecodeLegacyEntry(t *testing.T) {
	e, ok := decodeEntry("§log[old]")
	if !ok || e.Mode != modeEval || e.Line != "§log[old]" {
		t.Errorf("decodeEntry = %+v, %v", e, ok)
	}

	if _, ok := decodeEntry("   "); ok {
		t.Error("blank line decoded as an entry")
	}
}
