package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
	"golang.org/x/term"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/sigil/lang"
	"github.com/ardnew/sigil/log"
)

const (
	evalPrompt = "§ "
	contPrompt = ". "
	ctrlPrompt = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help     Print this cruft
  vars     List session variables
  list     List directives and where they come from
  reset    Start a new session, dropping all variables
  clear    Clear screen
  quit     Exit REPL

Usage:
  Type a statement to run it; variables persist between statements
  An open if/while/for block is buffered until its terminator is entered
  Type §name or $name to complete directives and variables
  Press Tab / Shift-Tab to cycle through candidates
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C to discard the current line or open block
  Press Ctrl+C on an empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// formatCommand formats the command echo line with prompt and input styled.
func formatCommand(prompt, input string) string {
	return promptStyle.Render(prompt) + inputStyle.Render(input)
}

// formatCtrlCommand formats the control command echo line with prompt and input
// styled.
func formatCtrlCommand(input string) string {
	return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	interp       *lang.Interpreter
	session      *lang.Session
	out          *bytes.Buffer // script output of the running chunk
	logger       log.Logger
	history      *History
	historyIdx   int
	pending      []string      // lines of an unfinished block
	matches      fuzzy.Matches // current fuzzy match results
	candidates   []string      // backing candidate list
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	evalText     string
	evalCursor   int
	ctrlText     string
	ctrlCursor   int
}

// Run starts the REPL.
//
// The interpreter is built from opts with its output captured for display,
// its logger silenced and its input empty, since the terminal belongs to
// the REPL. Each preload script runs in the session before the first prompt.
func Run(
	ctx context.Context,
	opts []lang.Option,
	cacheDir string,
	logger log.Logger,
	preload ...string,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(
		ctx,
		"repl start",
		slog.String("cache_dir", cacheDir),
		slog.Int("preload", len(preload)),
	)

	out := new(bytes.Buffer)

	interp := newInterpreter(out, opts)
	if err := interp.Err(); err != nil {
		return err
	}

	session := interp.NewSession()

	for _, path := range preload {
		err := runPreload(ctx, session, path)
		if err != nil {
			return err
		}

		_, _ = out.WriteTo(os.Stdout)
	}

	var histPath string
	if cacheDir != "" {
		histPath = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(histPath)
	if err := history.Load(); err != nil {
		fmt.Printf("Warning: could not load history: %v\n", err)
	}

	logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	m := newModel(ctx, interp, session, out, history, logger)

	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		m = m.resize(w)
	}

	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

func newInterpreter(out io.Writer, opts []lang.Option) *lang.Interpreter {
	opts = append(slices.Clone(opts),
		lang.WithOutput(out),
		lang.WithInput(nil),
		lang.WithLogger(log.Discard()),
	)

	return lang.New(opts...)
}

func runPreload(ctx context.Context, session *lang.Session, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrPreload, path, err)
	}

	res, err := session.Exec(ctx, string(data))
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrPreload, path, err)
	}

	for _, d := range res.Diagnostics {
		fmt.Fprintln(os.Stderr, path+": "+d.Error())
	}

	return nil
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	interp *lang.Interpreter,
	session *lang.Session,
	out *bytes.Buffer,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 4096

	m := model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		interp:     interp,
		session:    session,
		out:        out,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		mode:       modeEval,
	}

	return m.resize(defaultWidth)
}

func (m model) resize(width int) model {
	m.width = width
	m.input.Width = max(width-lipgloss.Width(evalPrompt)-2, 1)

	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.resize(msg.Width), nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.hintLine())
	b.WriteString("\n")

	return b.String()
}

// hintLine returns the line shown below the input.
func (m model) hintLine() string {
	input := m.input.Value()

	switch {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())

		return hintStyle.Render(hint)

	case len(m.matches) > 0:
		if len(m.matches) == 1 && m.mode == modeEval {
			word := input[m.wordStart:m.wordEnd]
			if hint := directiveHint(m.session, word); hint != "" && word == m.matches[0].Str {
				return hintStyle.Render(hint)
			}
		}

		return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width)

	case len(m.pending) > 0:
		return hintStyle.Render(fmt.Sprintf(
			"%d line(s) buffered until the block is closed (Ctrl+C discards)",
			len(m.pending)))

	case strings.TrimSpace(input) == "":
		if m.mode == modeEval {
			return hintStyle.Render("Type a statement or press Esc for commands")
		}

		return hintStyle.Render(
			"Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)")
	}

	if m.mode == modeEval {
		word, _, _ := wordBounds(input, m.input.Position())

		return hintStyle.Render(directiveHint(m.session, word))
	}

	return ""
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" && len(m.pending) == 0 {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m = m.discardPending()
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		return m.toggleMode(), nil

	case tea.KeyRunes:
		// Space ends tab-cycling and keeps the candidate.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Any other key (backspace, delete, arrows, etc.) edits the input
	// without auto-confirming a completion.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step, wrapping at either end. A single
// candidate is completed and confirmed immediately.
func (m model) cycle(step int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + n) % n
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also auto-confirms the completion when exactly
// one candidate remains and the typed word already equals that candidate.
// autoConfirm should be false for deletions and cursor navigation so that
// the user can freely edit without unexpected completions.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	candidate := m.matches[0].Str
	if m.input.Value()[m.wordStart:m.wordEnd] == candidate {
		replaceCurrentWord(m, candidate)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	line := m.input.Value()
	input := strings.TrimSpace(line)

	if input == "" && len(m.pending) == 0 {
		return m, nil
	}

	m.evalText = ""
	m.evalCursor = 0
	m.ctrlText = ""
	m.ctrlCursor = 0
	m.input.SetValue("")
	refreshMatches(&m, false)

	if m.mode == modeCtrl {
		_ = m.history.Add(input, modeCtrl)
		m.historyIdx = m.history.Len()
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl command",
			slog.String("input", input),
		)

		return m.executeCommand(input)
	}

	echo := tea.Println(formatCommand(m.prompt(), line))

	m.pending = append(m.pending, line)
	src := strings.Join(m.pending, "\n")

	if incomplete(src) {
		m.input.Prompt = promptStyle.Render(contPrompt)

		return m, echo
	}

	_ = m.history.Add(src, modeEval)
	m.historyIdx = m.history.Len()
	m = m.discardPending()

	return m.eval(src, echo)
}

// prompt returns the eval prompt for the next line.
func (m model) prompt() string {
	if len(m.pending) > 0 {
		return contPrompt
	}

	return evalPrompt
}

func (m model) discardPending() model {
	m.pending = nil
	if m.mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
	}

	return m
}

// incomplete reports whether src fails validation only because a block is
// still open, so more lines should be read before running it.
func incomplete(src string) bool {
	var verr *lang.ValidationError
	if !errors.As(lang.Validate(src), &verr) || len(verr.Diagnostics) == 0 {
		return false
	}

	for _, d := range verr.Diagnostics {
		if !errors.Is(d.Err, lang.ErrUnclosedBlock) {
			return false
		}
	}

	return true
}

// eval runs src in the session and prints its output and diagnostics.
func (m model) eval(src string, echo tea.Cmd) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl eval",
		slog.String("input", src),
	)

	m.out.Reset()

	res, err := m.session.Exec(m.ctxFunc(), src)

	cmds := []tea.Cmd{echo}

	if text := strings.TrimRight(m.out.String(), "\n"); text != "" {
		cmds = append(cmds, tea.Println(resultStyle.Render(text)))
	}

	m.out.Reset()

	if err != nil {
		cmds = append(cmds, tea.Println(errorStyle.Render("error: "+err.Error())))

		return m, tea.Sequence(cmds...)
	}

	for _, d := range res.Diagnostics {
		style := errorStyle
		if d.Severity == lang.SeverityWarning {
			style = warnStyle
		}

		cmds = append(cmds, tea.Println(style.Render(d.Severity.String()+": "+d.Error())))
	}

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl eval result",
		slog.Int("statements", res.Statements),
		slog.Int("diagnostics", len(res.Diagnostics)),
	)

	if res.Exited {
		m.quitting = true

		cmds = append(cmds,
			tea.Println(hintStyle.Render("exit "+strconv.Itoa(res.ExitCode))),
			tea.Quit,
		)
	}

	return m, tea.Sequence(cmds...)
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echo := tea.Println(formatCtrlCommand(input))

	cmd := parts[0]

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl exec command",
		slog.String("command", cmd),
		slog.Any("args", parts[1:]),
	)

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "v", "vars":
		return m, tea.Sequence(echo, tea.Println(m.listVars()))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(m.listDirectives()))

	case "r", "reset":
		m.session = m.interp.NewSession()
		m = m.discardPending()

		return m, tea.Sequence(echo, tea.Println(hintStyle.Render("session reset")))

	case "c", "clear":
		return m, tea.ClearScreen

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + cmd + " (try 'help')"),
		)
	}
}

// listVars formats the session variables, one per line.
func (m model) listVars() string {
	vars := m.session.Vars()
	if vars.Len() == 0 {
		return hintStyle.Render("  (no variables)")
	}

	var b strings.Builder

	for _, name := range vars.Names() {
		value, _ := vars.Get(name)
		fmt.Fprintf(&b, "  $%s %s\n", name, hintStyle.Render(preview(value)))
	}

	return strings.TrimRight(b.String(), "\n")
}

// listDirectives formats the keywords and registered directives.
func (m model) listDirectives() string {
	var b strings.Builder

	fmt.Fprintf(&b, "  %s %s\n",
		hintStyle.Render("keywords:"), strings.Join(lang.Keywords(), " "))

	reg := m.session.Registry()

	for _, name := range reg.Names() {
		origin, _ := reg.Origin(name)

		source := origin.Plugin
		if !origin.Builtin() && origin.Version != "" {
			source += " " + origin.Version
		}

		fmt.Fprintf(&b, "  %s%s %s\n", lang.SigilString, name, hintStyle.Render(source))
	}

	return strings.TrimRight(b.String(), "\n")
}

// preview quotes a value and shortens it for listing.
func preview(value string) string {
	const limit = 40

	if r := []rune(value); len(r) > limit {
		value = string(r[:limit-3]) + "..."
	}

	return strconv.Quote(value)
}

// historyStep moves through history by dir (-1 older, +1 newer). With
// sameMode set, entries of the other mode are skipped; otherwise the mode
// follows the entry. Stepping past the newest entry clears the input.
func (m model) historyStep(dir int, sameMode bool) model {
	for i := m.historyIdx + dir; i >= 0 && i < m.history.Len(); i += dir {
		entry, err := m.history.Entry(i)
		if err != nil || sameMode && entry.Mode != m.mode {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m
	}

	if dir > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// toggleMode switches between eval and control modes, preserving input state.
func (m model) toggleMode() model {
	if m.mode == modeEval {
		return m.switchToMode(modeCtrl)
	}

	return m.switchToMode(modeEval)
}

// switchToMode switches to the specified mode, preserving input state.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText = m.input.Value()
		m.evalCursor = m.input.Position()
	} else {
		m.ctrlText = m.input.Value()
		m.ctrlCursor = m.input.Position()
	}

	m.mode = mode
	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(m.prompt())
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m
}
