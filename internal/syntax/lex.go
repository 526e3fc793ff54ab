package syntax

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// TokenKind classifies a Token.
type TokenKind int

// Token kinds.
const (
	BadToken    TokenKind = iota
	EOFToken              // end of input
	TrueToken             // !
	FalseToken            // ?
	MatchToken            // :
	ReadToken             // @
	EmitToken             // #
	OpenToken             // (
	CloseToken            // )
	EndToken              // ;
	ImportToken           // ! leading a top-level declaration
	IdentToken            // function name or dotted module path
)

var tokenNames = [...]string{
	BadToken:    "bad token",
	EOFToken:    "end of file",
	TrueToken:   "'!'",
	FalseToken:  "'?'",
	MatchToken:  "':'",
	ReadToken:   "'@'",
	EmitToken:   "'#'",
	OpenToken:   "'('",
	CloseToken:  "')'",
	EndToken:    "';'",
	ImportToken: "import '!'",
	IdentToken:  "identifier",
}

func (kind TokenKind) String() string {
	if int(kind) < len(tokenNames) {
		return tokenNames[kind]
	}
	return fmt.Sprintf("TokenKind(%d)", int(kind))
}

// Token is a single lexical element.
type Token struct {
	Kind TokenKind
	Text string
	Pos  Pos
}

func (tok Token) String() string {
	if tok.Kind == IdentToken {
		return fmt.Sprintf("identifier %q", tok.Text)
	}
	return tok.Kind.String()
}

// LexError reports a character that cannot start any token.
type LexError struct {
	Pos  Pos
	Char rune
}

func (err *LexError) Error() string {
	if err.Char == utf8.RuneError {
		return fmt.Sprintf("%v: invalid UTF-8", err.Pos)
	}
	return fmt.Sprintf("%v: unexpected character %q", err.Pos, err.Char)
}

// IsIdentRune returns true if r may appear in an identifier.
func IsIdentRune(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Lex converts source text into tokens, ending with an EOFToken. Line
// comments start with "//". The name is only used for token positions.
//
// A '!' that begins a top-level declaration, outside of any parentheses, is
// an ImportToken; everywhere else it is a TrueToken. Declarations begin at
// the start of the file, after a ';', and after the path of an import.
func Lex(name string, src []byte) ([]Token, error) {
	lx := lexer{
		src:       src,
		pos:       Pos{File: name, Line: 1, Col: 1},
		declStart: true,
	}
	for {
		tok, err := lx.next()
		if err != nil {
			return lx.tokens, err
		}
		lx.tokens = append(lx.tokens, tok)
		if tok.Kind == EOFToken {
			return lx.tokens, nil
		}
	}
}

type lexer struct {
	src    []byte
	off    int
	pos    Pos
	tokens []Token

	depth     int
	declStart bool
	importing bool
}

func (lx *lexer) peek() (rune, int) {
	if lx.off >= len(lx.src) {
		return -1, 0
	}
	return utf8.DecodeRune(lx.src[lx.off:])
}

func (lx *lexer) advance(r rune, size int) {
	lx.off += size
	if r == '\n' {
		lx.pos.Line++
		lx.pos.Col = 1
	} else {
		lx.pos.Col++
	}
}

func (lx *lexer) skipSpace() {
	for {
		r, size := lx.peek()
		switch {
		case size == 0:
			return
		case r == '/' && lx.off+1 < len(lx.src) && lx.src[lx.off+1] == '/':
			for r != '\n' && size > 0 {
				lx.advance(r, size)
				r, size = lx.peek()
			}
		case unicode.IsSpace(r):
			lx.advance(r, size)
		default:
			return
		}
	}
}

func (lx *lexer) next() (Token, error) {
	lx.skipSpace()

	tok := Token{Pos: lx.pos}
	r, size := lx.peek()
	if size == 0 {
		tok.Kind = EOFToken
		return tok, nil
	}

	declStart := lx.declStart
	lx.declStart = false

	switch r {
	case '!':
		if declStart && lx.depth == 0 {
			tok.Kind = ImportToken
		} else {
			tok.Kind = TrueToken
		}
	case '?':
		tok.Kind = FalseToken
	case ':':
		tok.Kind = MatchToken
	case '@':
		tok.Kind = ReadToken
	case '#':
		tok.Kind = EmitToken
	case '(':
		tok.Kind = OpenToken
		lx.depth++
	case ')':
		tok.Kind = CloseToken
		if lx.depth > 0 {
			lx.depth--
		}
	case ';':
		tok.Kind = EndToken
		lx.depth = 0
		lx.declStart = true
	default:
		if !IsIdentRune(r) {
			return tok, &LexError{Pos: tok.Pos, Char: r}
		}
		start := lx.off
		for size > 0 && IsIdentRune(r) {
			lx.advance(r, size)
			r, size = lx.peek()
		}
		tok.Kind = IdentToken
		tok.Text = string(lx.src[start:lx.off])
		if lx.importing {
			lx.importing = false
			lx.declStart = true
		}
		return tok, nil
	}

	lx.importing = tok.Kind == ImportToken
	lx.advance(r, size)
	return tok, nil
}
