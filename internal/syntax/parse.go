package syntax

import (
	"fmt"
	"strings"
)

// ParseError reports malformed source.
type ParseError struct {
	Pos Pos
	Msg string
}

func (err *ParseError) Error() string { return fmt.Sprintf("%v: %v", err.Pos, err.Msg) }

// Parse lexes and parses one source file.
func Parse(name string, src []byte) (*File, error) {
	toks, err := Lex(name, src)
	if err != nil {
		return nil, err
	}
	return ParseTokens(name, toks)
}

// ParseTokens parses a token sequence, as produced by Lex, into a File.
func ParseTokens(name string, toks []Token) (*File, error) {
	p := parser{
		toks:    toks,
		file:    &File{Name: name},
		defined: make(map[string]Pos),
	}
	if err := p.parseFile(); err != nil {
		return nil, err
	}
	return p.file, nil
}

type parser struct {
	toks []Token
	i    int

	file    *File
	defined map[string]Pos
}

func (p *parser) peek() Token {
	if p.i < len(p.toks) {
		return p.toks[p.i]
	}
	var eof Token
	eof.Kind = EOFToken
	if n := len(p.toks); n > 0 {
		eof.Pos = p.toks[n-1].Pos
	}
	return eof
}

func (p *parser) next() Token {
	tok := p.peek()
	if p.i < len(p.toks) {
		p.i++
	}
	return tok
}

func (p *parser) errorf(pos Pos, mess string, args ...interface{}) error {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(mess, args...)}
}

func (p *parser) parseFile() error {
	for {
		tok := p.next()
		switch tok.Kind {
		case EOFToken:
			return nil

		case EndToken:

		case ImportToken:
			path := p.next()
			if path.Kind != IdentToken {
				return p.errorf(path.Pos, "expected module path after '!', got %v", path)
			}
			if !validPath(path.Text) {
				return p.errorf(path.Pos, "malformed module path %q", path.Text)
			}
			p.file.Imports = append(p.file.Imports, Import{Path: path.Text, Pos: tok.Pos})

		case IdentToken:
			if err := p.parseDef(tok); err != nil {
				return err
			}

		default:
			return p.errorf(tok.Pos, "expected function name or import, got %v", tok)
		}
	}
}

func (p *parser) parseDef(name Token) error {
	if strings.Contains(name.Text, ".") {
		return p.errorf(name.Pos, "cannot define %q outside its own module", name.Text)
	}
	if prior, defined := p.defined[name.Text]; defined {
		return p.errorf(name.Pos, "function %q defined twice, first at %v", name.Text, prior)
	}
	if tok := p.peek(); tok.Kind == EndToken || tok.Kind == EOFToken {
		return p.errorf(name.Pos, "missing body for %q", name.Text)
	}

	body, err := p.parseExpr(0, name.Pos)
	if err != nil {
		return err
	}
	if p.peek().Kind == EndToken {
		p.next()
	}

	p.defined[name.Text] = name.Pos
	p.file.Defs = append(p.file.Defs, &FunctionDef{
		Name: name.Text,
		Body: body,
		Pos:  name.Pos,
	})
	return nil
}

// parseExpr parses terms until the end of the current nesting level: a ')'
// when depth > 0, or ';' and end of file at depth 0. A single ':' at this
// level turns everything parsed so far into the true branch of a Match, and
// everything after it into the false branch.
func (p *parser) parseExpr(depth int, open Pos) (Expression, error) {
	var (
		terms  Expression
		onTrue Expression
		split  *Token
	)

	finish := func() Expression {
		if split == nil {
			return terms
		}
		return Expression{{
			Op:      Match,
			Pos:     split.Pos,
			OnTrue:  onTrue,
			OnFalse: terms,
		}}
	}

	for {
		tok := p.peek()
		switch tok.Kind {
		case EOFToken, EndToken:
			if depth > 0 {
				return nil, p.errorf(open, "unbalanced '(': missing ')' before %v", tok)
			}
			return finish(), nil

		case CloseToken:
			if depth == 0 {
				return nil, p.errorf(tok.Pos, "unbalanced ')'")
			}
			p.next()
			return finish(), nil

		case MatchToken:
			p.next()
			if split != nil {
				return nil, p.errorf(tok.Pos,
					"second ':' at one level (first at %v), use parentheses to nest matches",
					split.Pos)
			}
			split = &tok
			onTrue, terms = terms, nil

		case OpenToken:
			p.next()
			body, err := p.parseExpr(depth+1, tok.Pos)
			if err != nil {
				return nil, err
			}
			terms = append(terms, Term{Op: Group, Pos: tok.Pos, Body: body})

		case TrueToken:
			p.next()
			terms = append(terms, Term{Op: PushTrue, Pos: tok.Pos})

		case FalseToken:
			p.next()
			terms = append(terms, Term{Op: PushFalse, Pos: tok.Pos})

		case ReadToken:
			p.next()
			terms = append(terms, Term{Op: Read, Pos: tok.Pos})

		case EmitToken:
			p.next()
			terms = append(terms, Term{Op: Emit, Pos: tok.Pos})

		case IdentToken:
			p.next()
			if !validPath(tok.Text) {
				return nil, p.errorf(tok.Pos, "malformed function name %q", tok.Text)
			}
			terms = append(terms, Term{Op: Call, Pos: tok.Pos, Name: tok.Text})

		default:
			return nil, p.errorf(tok.Pos, "unexpected %v", tok)
		}
	}
}

// validPath checks that a dotted identifier has no empty segments.
func validPath(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}
	}
	return true
}
