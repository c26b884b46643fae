package lang

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// pathRunes may appear in an identifier after its first rune.
const pathRunes = "./\\-:~"

// operatorRunes are grouped into a single OTHER token.
const operatorRunes = "=!<>&|+-*/%"

var keywords = map[string]bool{"and": true, "or": true, "not": true}

// Tokenize scans src into tokens terminated by a single EOF token.
func Tokenize(src string) []Token {
	lx := lexer{src: src, line: 1, col: 1}

	return lx.run()
}

type lexer struct {
	src    string
	pos    int
	line   int
	col    int
	tokens []Token
}

func (lx *lexer) run() []Token {
	for lx.pos < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])

		switch {
		case r == '\n':
			lx.advance(1)

		case unicode.IsSpace(r):
			lx.advance(1)

		case r == CommentPrefix && lx.atWordStart():
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
				lx.advance(1)
			}

		case r == Sigil:
			lx.prefixed(FUNCTION, utf8.RuneLen(Sigil))

		case r == VariablePrefix:
			lx.prefixed(VARIABLE, 1)

		case r < utf8.RuneSelf && isQuote(byte(r)) && quoteOpens(lx.src, lx.pos):
			end := skipQuoted(lx.src, lx.pos)
			if end < 0 {
				lx.emitN(OTHER, 1)

				break
			}

			lx.emitN(STRING, end-lx.pos)

		case r == '[':
			lx.emitN(LBRACKET, 1)

		case r == ']':
			lx.emitN(RBRACKET, 1)

		case r == ';':
			lx.emitN(SEMICOLON, 1)

		case unicode.IsDigit(r) || lx.signedNumber(r):
			lx.number()

		case isIdentStart(r) || lx.pathStart(r):
			lx.word()

		case strings.ContainsRune(operatorRunes, r):
			n := 0
			for lx.pos+n < len(lx.src) &&
				strings.IndexByte(operatorRunes, lx.src[lx.pos+n]) >= 0 {
				n++
			}

			lx.emitN(OTHER, n)

		default:
			lx.emitN(OTHER, size)
		}
	}

	lx.tokens = append(lx.tokens, Token{Type: EOF, Line: lx.line, Col: lx.col})

	return lx.tokens
}

// advance moves n bytes forward, keeping line and column current.
func (lx *lexer) advance(n int) {
	end := min(lx.pos+n, len(lx.src))

	for lx.pos < end {
		r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		lx.pos += size

		if r == '\n' {
			lx.line++
			lx.col = 1
		} else {
			lx.col++
		}
	}
}

func (lx *lexer) emitN(typ TokenType, n int) {
	tok := Token{
		Type:  typ,
		Value: lx.src[lx.pos:min(lx.pos+n, len(lx.src))],
		Line:  lx.line,
		Col:   lx.col,
	}

	lx.advance(n)
	lx.tokens = append(lx.tokens, tok)
}

func (lx *lexer) atWordStart() bool {
	if lx.pos == 0 {
		return true
	}

	r, _ := utf8.DecodeLastRuneInString(lx.src[:lx.pos])

	return unicode.IsSpace(r)
}

// prefixed emits a FUNCTION or VARIABLE token when the prefix is followed by
// an identifier, and a lone OTHER token otherwise.
func (lx *lexer) prefixed(typ TokenType, prefix int) {
	end := scanIdent(lx.src, lx.pos+prefix)
	if end == lx.pos+prefix {
		lx.emitN(OTHER, prefix)

		return
	}

	lx.emitN(typ, end-lx.pos)
}

// signedNumber reports whether a '-' or '.' at the current position starts a
// number rather than an operator or path.
func (lx *lexer) signedNumber(r rune) bool {
	if r != '-' && r != '.' {
		return false
	}

	next := lx.pos + 1
	if next >= len(lx.src) || lx.src[next] < '0' || lx.src[next] > '9' {
		return false
	}

	if r == '.' {
		return true
	}

	// A minus directly after a value is subtraction.
	if n := len(lx.tokens); n > 0 {
		switch lx.tokens[n-1].Type {
		case NUMBER, VARIABLE, IDENTIFIER, RBRACKET, STRING:
			prev := lx.tokens[n-1]
			if prev.Line == lx.line && prev.Col+utf8.RuneCountInString(prev.Value) == lx.col {
				return false
			}
		}
	}

	return true
}

func (lx *lexer) number() {
	i := lx.pos
	if lx.src[i] == '-' {
		i++
	}

	dot := false

	for ; i < len(lx.src); i++ {
		c := lx.src[i]

		if c == '.' && !dot && i+1 < len(lx.src) &&
			lx.src[i+1] >= '0' && lx.src[i+1] <= '9' {
			dot = true

			continue
		}

		if c < '0' || c > '9' {
			break
		}
	}

	lx.emitN(NUMBER, i-lx.pos)
}

// pathStart reports whether r begins a path-like bareword such as ./lib or
// ~/x.
func (lx *lexer) pathStart(r rune) bool {
	if r != '.' && r != '/' && r != '~' {
		return false
	}

	next, _ := utf8.DecodeRuneInString(lx.src[lx.pos+1:])

	return next != utf8.RuneError &&
		(isIdentPart(next) || strings.ContainsRune(pathRunes, next))
}

func (lx *lexer) word() {
	i := lx.pos

	for i < len(lx.src) {
		r, n := utf8.DecodeRuneInString(lx.src[i:])
		if !isIdentPart(r) && !strings.ContainsRune(pathRunes, r) {
			break
		}

		i += n
	}

	// A trailing path rune belongs to what follows, e.g. "x-" in "x- 1".
	for i > lx.pos+1 && strings.IndexByte(pathRunes, lx.src[i-1]) >= 0 {
		i--
	}

	word := lx.src[lx.pos:i]

	switch {
	case word == "true" || word == "false":
		lx.emitN(BOOLEAN, i-lx.pos)
	case keywords[word]:
		lx.emitN(KEYWORD, i-lx.pos)
	default:
		lx.emitN(IDENTIFIER, i-lx.pos)
	}
}
