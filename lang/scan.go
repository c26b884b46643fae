package lang

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Sigil introduces a directive.
const Sigil = '§'

// SigilString is [Sigil] as a string.
const SigilString = string(Sigil)

// VariablePrefix introduces a variable reference.
const VariablePrefix = '$'

// CommentPrefix starts a line comment.
const CommentPrefix = '#'

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// IsValidName reports whether s is a valid directive or variable name.
func IsValidName(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 && !isIdentStart(r) || !isIdentPart(r) {
			return false
		}
	}

	return true
}

// scanIdent returns the byte offset just past the identifier starting at i,
// or i if there is none.
func scanIdent(s string, i int) int {
	j := i

	for j < len(s) {
		r, n := utf8.DecodeRuneInString(s[j:])
		if j == i && !isIdentStart(r) || !isIdentPart(r) {
			break
		}

		j += n
	}

	return j
}

// quoteOpens reports whether a quote character at offset i starts a quoted
// string. Quotes only open at the start of a token, so apostrophes inside
// words are plain text.
func quoteOpens(s string, i int) bool {
	if i == 0 {
		return true
	}

	r, _ := utf8.DecodeLastRuneInString(s[:i])

	return unicode.IsSpace(r) || strings.ContainsRune(";[(,=!<>&|{:", r)
}

func isQuote(c byte) bool { return c == '"' || c == '\'' }

// skipQuoted returns the offset just past the closing quote of the string
// opened at i, or -1 if the string is not closed before the end of s or the
// end of the line.
func skipQuoted(s string, i int) int {
	q := s[i]

	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '\n':
			return -1
		case q:
			return j + 1
		}
	}

	return -1
}

// matchBracket returns the offset of the ']' closing the '[' at open, or -1.
// Brackets inside quoted strings are ignored.
func matchBracket(s string, open int) int {
	depth := 0

	for i := open; i < len(s); i++ {
		switch c := s[i]; {
		case isQuote(c) && quoteOpens(s, i):
			if end := skipQuoted(s, i); end > 0 {
				i = end - 1
			}
		case c == '[':
			depth++
		case c == ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

// bracketBalance returns the difference between opening and closing
// brackets outside quoted strings, and whether a closing bracket ever
// appeared with nothing open.
func bracketBalance(s string) (depth int, underflow bool) {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case isQuote(c) && quoteOpens(s, i):
			if end := skipQuoted(s, i); end > 0 {
				i = end - 1
			}
		case c == '[':
			depth++
		case c == ']':
			depth--
			if depth < 0 {
				underflow = true
				depth = 0
			}
		}
	}

	return depth, underflow
}

// splitTop splits s at separator bytes that are not nested in brackets or
// quoted strings. At most n parts are returned when n > 0.
func splitTop(s string, sep byte, n int) []string {
	var (
		parts []string
		depth int
		start int
	)

	for i := 0; i < len(s); i++ {
		if n > 0 && len(parts) == n-1 {
			break
		}

		switch c := s[i]; {
		case isQuote(c) && quoteOpens(s, i):
			if end := skipQuoted(s, i); end > 0 {
				i = end - 1
			}
		case c == '[':
			depth++
		case c == ']':
			if depth > 0 {
				depth--
			}
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}

	return append(parts, s[start:])
}

// isQuoted reports whether s, ignoring surrounding space, is one complete
// quoted string.
func isQuoted(s string) bool {
	s = strings.TrimSpace(s)

	return len(s) >= 2 && isQuote(s[0]) && skipQuoted(s, 0) == len(s)
}

// unquote removes one level of surrounding quotes from s, ignoring
// surrounding space. Double-quoted strings are interpreted with Go escape
// rules when possible; single-quoted strings only unescape \' and \\.
func unquote(s string) string {
	t := strings.TrimSpace(s)
	if !isQuoted(t) {
		return t
	}

	body := t[1 : len(t)-1]

	if t[0] == '"' {
		if u, err := strconv.Unquote(t); err == nil {
			return u
		}

		return strings.NewReplacer(`\"`, `"`, `\\`, `\`).Replace(body)
	}

	return strings.NewReplacer(`\'`, `'`, `\\`, `\`).Replace(body)
}

// directiveLine reports whether line is exactly one directive, either bare
// (§name) or with arguments (§name[args]), ignoring surrounding space.
func directiveLine(line string) (name, args string, ok bool) {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, SigilString) {
		return "", "", false
	}

	start := len(SigilString)
	end := scanIdent(s, start)

	if end == start {
		return "", "", false
	}

	name = s[start:end]

	switch {
	case end == len(s):
		return name, "", true
	case s[end] != '[':
		return "", "", false
	}

	if closeAt := matchBracket(s, end); closeAt == len(s)-1 {
		return name, s[end+1 : closeAt], true
	}

	return "", "", false
}

// isComment reports whether line is blank or a comment.
func isComment(line string) bool {
	s := strings.TrimSpace(line)

	return s == "" || s[0] == CommentPrefix
}
