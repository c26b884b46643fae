package lang

import (
	"strings"
	"unicode/utf8"
)

// maxNestingDepth bounds how deeply directive calls may nest in one
// statement.
const maxNestingDepth = 64

// node is one element of a parsed text fragment.
type node interface {
	source() string
}

// textNode is literal text, possibly containing variable references.
type textNode string

func (t textNode) source() string { return string(t) }

// callNode is a directive call §name[args] whose argument text has been
// parsed in turn.
type callNode struct {
	name string
	raw  string // argument text between the brackets
	args fragment
}

func (c *callNode) source() string {
	return SigilString + c.name + "[" + c.raw + "]"
}

// fragment is a parsed piece of statement text.
type fragment []node

func (f fragment) source() string {
	var b strings.Builder

	for _, n := range f {
		b.WriteString(n.source())
	}

	return b.String()
}

// calls reports whether the fragment contains any directive call.
func (f fragment) calls() bool {
	for _, n := range f {
		if _, ok := n.(*callNode); ok {
			return true
		}
	}

	return false
}

// soleCall returns the call when the fragment is exactly one directive call,
// ignoring surrounding space.
func (f fragment) soleCall() (*callNode, bool) {
	var call *callNode

	for _, n := range f {
		switch n := n.(type) {
		case textNode:
			if strings.TrimSpace(string(n)) != "" {
				return nil, false
			}
		case *callNode:
			if call != nil {
				return nil, false
			}

			call = n
		}
	}

	return call, call != nil
}

// parseFragment parses s into text and directive calls. Calls are only
// recognized in the bracketed form; a sigil without a name or without a
// matching bracket is literal text. Exceeding [maxNestingDepth] returns the
// fragment parsed so far with the offending call kept as text, along with
// [ErrNestingDepth].
func parseFragment(s string) (fragment, error) {
	return parseDepth(s, 0)
}

func parseDepth(s string, depth int) (fragment, error) {
	var (
		frag  fragment
		text  strings.Builder
		first error
	)

	flush := func() {
		if text.Len() > 0 {
			frag = append(frag, textNode(text.String()))
			text.Reset()
		}
	}

	for i := 0; i < len(s); {
		name, raw, end, ok := callAt(s, i)
		if !ok {
			_, n := utf8.DecodeRuneInString(s[i:])
			text.WriteString(s[i : i+n])
			i += n

			continue
		}

		if depth+1 > maxNestingDepth {
			if first == nil {
				first = ErrNestingDepth
			}

			text.WriteString(s[i:end])
			i = end

			continue
		}

		args, err := parseDepth(raw, depth+1)
		if err != nil && first == nil {
			first = err
		}

		flush()
		frag = append(frag, &callNode{name: name, raw: raw, args: args})
		i = end
	}

	flush()

	return frag, first
}

// callAt reports whether a bracketed directive call starts at offset i of s
// and, if so, returns its name, argument text, and the offset just past its
// closing bracket.
func callAt(s string, i int) (name, raw string, end int, ok bool) {
	if !strings.HasPrefix(s[i:], SigilString) {
		return "", "", 0, false
	}

	start := i + len(SigilString)
	stop := scanIdent(s, start)

	if stop == start || stop >= len(s) || s[stop] != '[' {
		return "", "", 0, false
	}

	closeAt := matchBracket(s, stop)
	if closeAt < 0 {
		return "", "", 0, false
	}

	return s[start:stop], s[stop+1 : closeAt], closeAt + 1, true
}

// splitFragment splits f at top-level separators found in its text nodes.
// Separators inside quoted strings or text-level brackets are ignored, and
// calls never split. At most n parts are returned when n > 0.
func splitFragment(f fragment, sep byte, n int) []fragment {
	var (
		parts   []fragment
		cur     fragment
		depth   int
		inQuote byte
	)

	for _, nd := range f {
		t, ok := nd.(textNode)
		if !ok {
			cur = append(cur, nd)

			continue
		}

		s := string(t)
		start := 0

		for i := 0; i < len(s); i++ {
			c := s[i]

			switch {
			case inQuote != 0:
				if c == '\\' {
					i++
				} else if c == inQuote {
					inQuote = 0
				}
			case isQuote(c) && quoteOpens(s, i) && hasClose(f, nd, s, i):
				inQuote = c
			case c == '[':
				depth++
			case c == ']':
				if depth > 0 {
					depth--
				}
			case c == sep && depth == 0 && (n <= 0 || len(parts) < n-1):
				if i > start {
					cur = append(cur, textNode(s[start:i]))
				}

				parts = append(parts, cur)
				cur = nil
				start = i + 1
			}
		}

		if start < len(s) {
			cur = append(cur, textNode(s[start:]))
		}
	}

	return append(parts, cur)
}

// hasClose reports whether the quote at offset i of text node s is closed
// later in s or in a following text node of f.
func hasClose(f fragment, at node, s string, i int) bool {
	if skipQuoted(s, i) > 0 {
		return true
	}

	q := s[i]
	seen := false

	for _, nd := range f {
		if nd == at {
			seen = true

			continue
		}

		if t, ok := nd.(textNode); ok && seen &&
			strings.IndexByte(string(t), q) >= 0 {
			return true
		}
	}

	return false
}
