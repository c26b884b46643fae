package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/sigil/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "vars", "list", "reset", "clear", "quit"}

// variablePrefix is [lang.VariablePrefix] as a string.
const variablePrefix = string(lang.VariablePrefix)

// isWordBoundary reports whether r delimits a completion word: whitespace,
// argument brackets and separators, quotes, and condition operators.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t',
		'[', ']', ';', ',',
		'"', '\'', '(', ')',
		'+', '*', '/', '%',
		'<', '>', '=', '!',
		'&', '|':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input. A word that contains a sigil or variable prefix
// before the cursor starts at the last such prefix, so text glued to a
// directive (e.g. "x§up") still completes the directive.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	if i := strings.LastIndexAny(input[start:cursor], lang.SigilString+variablePrefix); i > 0 {
		start += i
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) || r == lang.Sigil || r == lang.VariablePrefix {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// wordCandidates returns the completions for word: directive names and
// keywords after the sigil, variable names after the variable prefix.
// Plain words have no candidates.
func wordCandidates(session *lang.Session, word string) []string {
	switch {
	case strings.HasPrefix(word, lang.SigilString):
		names := session.Registry().Names()
		names = append(names, lang.Keywords()...)
		slices.Sort(names)

		return prefixed(lang.SigilString, slices.Compact(names))

	case strings.HasPrefix(word, variablePrefix):
		return prefixed(variablePrefix, session.Vars().Names())
	}

	return nil
}

func prefixed(prefix string, names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = prefix + name
	}

	return out
}

// computeMatches calculates the fuzzy match results for the word at the cursor.
// It returns the matches (ranked best-first), the candidate list, and the word
// boundaries. A bare sigil or variable prefix lists every candidate.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	var word string

	word, wordStart, wordEnd = wordBounds(input, cursor)

	if m.mode == modeCtrl {
		if word == "" {
			return nil, nil, wordStart, wordEnd
		}

		candidates = ctrlCommands
	} else {
		candidates = wordCandidates(m.session, word)
	}

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	if word == lang.SigilString || word == variablePrefix {
		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, candidates, wordStart, wordEnd
	}

	matches = fuzzy.Find(word, candidates)

	return matches, candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Each candidate is rendered with its matched
// characters highlighted. The selected candidate (when tabbing) uses the
// selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle, markStyle := suggestionStyle, matchStyle
	if selected {
		baseStyle, markStyle = selectedStyle, selectedMatchStyle
	}

	marked := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		marked[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if marked[i] {
			b.WriteString(markStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	return b.String()
}

// directiveHint describes the directive named by word, or returns "" if
// word does not name one exactly.
func directiveHint(session *lang.Session, word string) string {
	name, ok := strings.CutPrefix(word, lang.SigilString)
	if !ok {
		return ""
	}

	if lang.IsKeyword(name) {
		return word + "  keyword"
	}

	origin, ok := session.Registry().Origin(name)
	if !ok {
		return ""
	}

	if origin.Builtin() {
		return word + "  " + lang.BuiltinOrigin
	}

	hint := word + "  plugin " + origin.Plugin
	if origin.Version != "" {
		hint += " " + origin.Version
	}

	return hint
}
