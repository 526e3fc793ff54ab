package syntax

import (
	"strings"
	"unicode/utf8"
)

// Format renders an expression as canonical source text. A Match that is the
// only term of its expression is written bare, as "T:F"; one sharing its
// expression with other terms is parenthesized.
func Format(expr Expression) string {
	var f formatter
	f.expr(expr)
	return f.String()
}

type formatter struct{ strings.Builder }

func (f *formatter) expr(expr Expression) {
	if len(expr) == 1 && expr[0].Op == Match {
		f.match(expr[0])
		return
	}
	for _, term := range expr {
		f.term(term)
	}
}

func (f *formatter) term(term Term) {
	switch term.Op {
	case PushTrue:
		f.WriteByte('!')
	case PushFalse:
		f.WriteByte('?')
	case Read:
		f.WriteByte('@')
	case Emit:
		f.WriteByte('#')
	case Call:
		f.ident(term.Name)
	case Group:
		f.WriteByte('(')
		f.expr(term.Body)
		f.WriteByte(')')
	case Match:
		f.WriteByte('(')
		f.match(term)
		f.WriteByte(')')
	default:
		f.WriteString("<")
		f.WriteString(term.Op.String())
		f.WriteString(">")
	}
}

func (f *formatter) match(term Term) {
	f.expr(term.OnTrue)
	f.WriteByte(':')
	f.expr(term.OnFalse)
}

// ident writes a name, separated by a space from any identifier before it.
func (f *formatter) ident(name string) {
	if s := f.String(); s != "" {
		if r, _ := utf8.DecodeLastRuneInString(s); IsIdentRune(r) {
			f.WriteByte(' ')
		}
	}
	f.WriteString(name)
}
