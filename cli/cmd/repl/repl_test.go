package repl

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/sigil/lang"
	"github.com/ardnew/sigil/log"
)

func newTestModel(t *testing.T) model {
	t.Helper()

	out := new(bytes.Buffer)
	interp := newInterpreter(out, nil)

	return newModel(t.Context(), interp, interp.NewSession(), out, NewHistory(""), log.Discard())
}

// enter types line into the model and submits it.
func enter(m model, line string) model {
	m.input.SetValue(line)
	m, _ = m.executeInput()

	return m
}

func TestIncomplete(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"§log[a]", false},
		{"§if[true]", true},
		{"§while[true]\n§if[true]", true},
		{"§if[true]\n§endif", false},
		{"§endif", false},
		{"§if[true]\n§log[a", false},
	}

	for _, tt := range tests {
		if got := incomplete(tt.src); got != tt.want {
			t.Errorf("incomplete(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestSessionPersists(t *testing.T) {
	m := newTestModel(t)

	m = enter(m, "§var[x; 41]")
	m = enter(m, "§var[x; §add[$x; 1]]")

	got, ok := m.session.Vars().Get("x")
	if !ok || got != "42" {
		t.Errorf("x = %q, %v, want 42", got, ok)
	}

	if m.history.Len() != 2 {
		t.Errorf("history has %d entries, want 2", m.history.Len())
	}
}

func TestBlockBuffering(t *testing.T) {
	m := newTestModel(t)

	m = enter(m, "§var[n; 0]")
	m = enter(m, "§while[$n < 3]")

	if len(m.pending) != 1 {
		t.Fatalf("pending = %q, want one buffered line", m.pending)
	}

	if m.prompt() != contPrompt {
		t.Errorf("prompt = %q, want continuation prompt", m.prompt())
	}

	m = enter(m, "§var[n; §add[$n; 1]]")

	if got, _ := m.session.Vars().Get("n"); got != "0" {
		t.Errorf("block ran before it was closed: n = %q", got)
	}

	m = enter(m, "§endwhile")

	if len(m.pending) != 0 {
		t.Errorf("pending = %q after block closed", m.pending)
	}

	if got, _ := m.session.Vars().Get("n"); got != "3" {
		t.Errorf("n = %q, want 3", got)
	}

	last, err := m.history.Entry(m.history.Len() - 1)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(last.Line, "§while") || !strings.HasSuffix(last.Line, "§endwhile") {
		t.Errorf("history records %q, want the whole block", last.Line)
	}
}

func TestCtrlCDiscardsBlock(t *testing.T) {
	m := newTestModel(t)

	m = enter(m, "§if[true]")
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlC})

	if len(m.pending) != 0 || m.quitting {
		t.Errorf("pending = %q, quitting = %v", m.pending, m.quitting)
	}

	m, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !m.quitting || cmd == nil {
		t.Error("Ctrl+C on an empty line did not quit")
	}
}

func TestExitQuits(t *testing.T) {
	m := newTestModel(t)

	m = enter(m, "§exit[2]")

	if !m.quitting {
		t.Error("exit did not end the REPL")
	}
}

func TestCommands(t *testing.T) {
	m := newTestModel(t)
	m = enter(m, "§var[greeting; hello]")

	if got := m.listVars(); !strings.Contains(got, "$greeting") {
		t.Errorf("vars listing %q lacks $greeting", got)
	}

	if got := m.listDirectives(); !strings.Contains(got, "§upper") {
		t.Errorf("directive listing lacks §upper")
	}

	m = m.toggleMode()
	m = enter(m, "reset")

	if m.session.Vars().Len() != 0 {
		t.Errorf("reset kept %d variables", m.session.Vars().Len())
	}

	m = enter(m, "quit")

	if !m.quitting {
		t.Error("quit command did not quit")
	}
}

func TestTabCompletion(t *testing.T) {
	m := newTestModel(t)

	m.input.SetValue("§uppe")
	m.input.SetCursor(len("§uppe"))
	refreshMatches(&m, false)

	if len(m.matches) == 0 || m.matches[0].Str != "§upper" {
		t.Fatalf("matches = %v, want §upper first", m.matches)
	}

	m = m.cycle(1)

	if !strings.HasPrefix(m.input.Value(), "§upper") {
		t.Errorf("input = %q after tab", m.input.Value())
	}
}

func TestHistoryStep(t *testing.T) {
	m := newTestModel(t)

	m = enter(m, "§log[a]")
	m = m.toggleMode()
	m = enter(m, "vars")
	m = m.toggleMode()

	m = m.historyStep(-1, true)
	if m.input.Value() != "§log[a]" || m.mode != modeEval {
		t.Errorf("same-mode step gave %q in mode %d", m.input.Value(), m.mode)
	}

	m = m.historyStep(1, false)
	if m.input.Value() != "vars" || m.mode != modeCtrl {
		t.Errorf("step gave %q in mode %d", m.input.Value(), m.mode)
	}

	m = m.historyStep(1, false)
	if m.input.Value() != "" || m.historyIdx != m.history.Len() {
		t.Errorf("stepping past the end left %q at %d", m.input.Value(), m.historyIdx)
	}
}

func TestNewInterpreterSilencesOutput(t *testing.T) {
	out := new(bytes.Buffer)
	interp := newInterpreter(out, []lang.Option{lang.WithOutput(nil)})

	if _, err := interp.Run(t.Context(), "hello"); err != nil {
		t.Fatal(err)
	}

	if out.String() != "hello\n" {
		t.Errorf("output = %q, want captured text", out.String())
	}
}
