// Package syntax implements lexing and parsing of clink source files.
//
// A clink file is a sequence of top-level declarations. An import directive
// is a '!' followed by a dotted module path; a function definition is a name
// followed by a body expression, terminated by ';' or the end of the file:
//
//	!std.bool
//	not ?:!;
//	or  (:)!:;
//	_   ?!??!???# not;
//
// Bodies are written in a five symbol alphabet: '!' pushes True, '?' pushes
// False, '@' reads a character, '#' writes a character, and ':' pops a symbol
// and branches on it. Identifiers call other functions, and parentheses
// group a sub-expression so that it may contain its own ':'.
package syntax

import "fmt"

// Symbol is the only datum in clink: True or False.
type Symbol bool

// The two symbols.
const (
	False Symbol = false
	True  Symbol = true
)

func (sym Symbol) String() string {
	if sym {
		return "!"
	}
	return "?"
}

// Pos names a location within a source file.
type Pos struct {
	File string
	Line int
	Col  int
}

func (pos Pos) String() string {
	if pos.File == "" {
		return fmt.Sprintf("%v:%v", pos.Line, pos.Col)
	}
	return fmt.Sprintf("%v:%v:%v", pos.File, pos.Line, pos.Col)
}

// Op identifies the variant of a Term.
type Op uint8

// Term variants.
const (
	PushTrue Op = iota + 1
	PushFalse
	Read
	Emit
	Call
	Group
	Match
)

var opNames = [...]string{
	PushTrue:  "push-true",
	PushFalse: "push-false",
	Read:      "read",
	Emit:      "emit",
	Call:      "call",
	Group:     "group",
	Match:     "match",
}

func (op Op) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

// Term is one syntactic unit of a function body. Only the fields relevant to
// its Op are set: Name for Call, Body for Group, OnTrue and OnFalse for Match.
type Term struct {
	Op   Op
	Pos  Pos
	Name string

	Body Expression

	OnTrue  Expression
	OnFalse Expression
}

func (term Term) String() string { return Format(Expression{term}) }

// Expression is a sequence of terms, evaluated left to right.
type Expression []Term

func (expr Expression) String() string { return Format(expr) }

// Import is a directive to merge another module into the namespace.
type Import struct {
	Path string
	Pos  Pos
}

// FunctionDef is a named function body. Module is filled in by the module
// resolver once the defining file has a module path.
type FunctionDef struct {
	Name   string
	Module string
	Body   Expression
	Pos    Pos
}

// QualifiedName returns the module qualified name of the function, or just
// its name if it has no module.
func (def *FunctionDef) QualifiedName() string {
	if def.Module == "" {
		return def.Name
	}
	return def.Module + "." + def.Name
}

func (def *FunctionDef) String() string {
	return fmt.Sprintf("%v %v;", def.Name, Format(def.Body))
}

// File is the parsed form of one source file.
type File struct {
	Name    string
	Imports []Import
	Defs    []*FunctionDef
}
