package lang

import (
	"strings"
)

// Block keywords handled by the engine rather than the registry.
const (
	kwIf       = "if"
	kwElseIf   = "elseif"
	kwElse     = "else"
	kwEndIf    = "endif"
	kwWhile    = "while"
	kwEndWhile = "endwhile"
	kwFor      = "for"
	kwEndFor   = "endfor"
)

// terminator maps each block opener to its terminator.
var terminator = map[string]string{
	kwIf:    kwEndIf,
	kwWhile: kwEndWhile,
	kwFor:   kwEndFor,
}

// opener maps each terminator to its block opener.
var opener = map[string]string{
	kwEndIf:    kwIf,
	kwEndWhile: kwWhile,
	kwEndFor:   kwFor,
}

// Keywords returns the block keywords of the language.
func Keywords() []string {
	return []string{
		kwIf, kwElseIf, kwElse, kwEndIf,
		kwWhile, kwEndWhile, kwFor, kwEndFor,
	}
}

// IsKeyword reports whether name is a block keyword.
func IsKeyword(name string) bool {
	switch name {
	case kwIf, kwElseIf, kwElse, kwEndIf,
		kwWhile, kwEndWhile, kwFor, kwEndFor:
		return true
	}

	return false
}

// stmt is one executable line of a program.
type stmt struct {
	line int    // 1-based source line
	text string // trimmed source text

	// Set when the line is exactly one directive.
	directive bool
	name      string
	args      string

	frag fragment // parsed args for directives, whole text otherwise
	err  error    // parse error, reported when the statement runs
}

// program is the ordered list of statements of a source text.
type program []stmt

// compile splits src into statements, dropping blank lines and comments.
func compile(src string) program {
	var prog program

	for i, text := range strings.Split(src, "\n") {
		if isComment(text) {
			continue
		}

		st := stmt{line: i + 1, text: strings.TrimSpace(text)}

		if name, args, ok := directiveLine(st.text); ok {
			st.directive = true
			st.name = name
			st.args = args
			st.frag, st.err = parseFragment(args)
		} else {
			st.frag, st.err = parseFragment(st.text)
		}

		prog = append(prog, st)
	}

	return prog
}

// keyword returns the statement's block keyword, or "".
func (s stmt) keyword() string {
	if s.directive && IsKeyword(s.name) {
		return s.name
	}

	return ""
}

// scan returns the index of the terminator matching the opener at pc, and
// the indices of the elseif and else statements at the same depth. It
// returns -1 if the block is not closed before hi.
func (p program) scan(pc, hi int) (end int, branches []int) {
	depth := 0

	for i := pc + 1; i < hi; i++ {
		kw := p[i].keyword()

		switch {
		case terminator[kw] != "":
			depth++
		case opener[kw] != "":
			if depth == 0 {
				return i, branches
			}

			depth--
		case depth == 0 && (kw == kwElseIf || kw == kwElse):
			branches = append(branches, i)
		}
	}

	return -1, branches
}
