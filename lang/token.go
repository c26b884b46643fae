package lang

import (
	"fmt"
	"strconv"
)

// TokenType identifies the lexical class of a [Token].
type TokenType int

const (
	EOF        TokenType = iota // EOF
	FUNCTION                    // FUNCTION
	VARIABLE                    // VARIABLE
	STRING                      // STRING
	NUMBER                      // NUMBER
	LBRACKET                    // LBRACKET
	RBRACKET                    // RBRACKET
	SEMICOLON                   // SEMICOLON
	IDENTIFIER                  // IDENTIFIER
	BOOLEAN                     // BOOLEAN
	KEYWORD                     // KEYWORD
	OTHER                       // OTHER
)

var tokenTypeName = [...]string{
	EOF:        "EOF",
	FUNCTION:   "FUNCTION",
	VARIABLE:   "VARIABLE",
	STRING:     "STRING",
	NUMBER:     "NUMBER",
	LBRACKET:   "LBRACKET",
	RBRACKET:   "RBRACKET",
	SEMICOLON:  "SEMICOLON",
	IDENTIFIER: "IDENTIFIER",
	BOOLEAN:    "BOOLEAN",
	KEYWORD:    "KEYWORD",
	OTHER:      "OTHER",
}

// String returns the upper-case name of the token type.
func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenTypeName) {
		return tokenTypeName[t]
	}

	return "TokenType(" + strconv.Itoa(int(t)) + ")"
}

// MarshalText implements encoding.TextMarshaler.
func (t TokenType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Token is one lexical unit. Tokens are produced for diagnostics and
// tooling only; the engine does not consume them.
type Token struct {
	Type  TokenType `json:"type"  yaml:"type"`
	Value string    `json:"value" yaml:"value"`
	Line  int       `json:"line"  yaml:"line"`
	Col   int       `json:"col"   yaml:"col"`
}

// String formats the token as TYPE(value)@line:col.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Type, t.Value, t.Line, t.Col)
}
