package module

import (
	"sort"
	"strings"

	"github.com/jcorbin/goclink/internal/syntax"
)

// Namespace is the merged set of functions from every module of a program.
// It is built once by a Resolver and is read-only afterwards.
//
// Functions are found by bare name, like "not", or by module qualified name,
// like "std.bool.not". The qualified form always names exactly one
// definition, even when a conflict policy let another module's definition
// win the bare name.
type Namespace struct {
	defs      map[string]*syntax.FunctionDef
	qualified map[string]*syntax.FunctionDef
	all       []*syntax.FunctionDef
	modules   []string
}

func newNamespace() *Namespace {
	return &Namespace{
		defs:      make(map[string]*syntax.FunctionDef),
		qualified: make(map[string]*syntax.FunctionDef),
	}
}

// Lookup finds a function by bare or qualified name.
func (ns *Namespace) Lookup(name string) (*syntax.FunctionDef, bool) {
	if ns == nil {
		return nil, false
	}
	var def *syntax.FunctionDef
	if strings.Contains(name, ".") {
		def = ns.qualified[name]
	} else {
		def = ns.defs[name]
	}
	return def, def != nil
}

// Names returns the sorted bare names defined in the namespace.
func (ns *Namespace) Names() []string {
	names := make([]string, 0, len(ns.defs))
	for name := range ns.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of bare names defined.
func (ns *Namespace) Len() int { return len(ns.defs) }

// Modules returns module paths in the order they were merged, starting with
// the entry module.
func (ns *Namespace) Modules() []string { return append([]string(nil), ns.modules...) }

// Defs returns every merged definition in merge order, including any that
// lost their bare name to a conflict policy.
func (ns *Namespace) Defs() []*syntax.FunctionDef { return append([]*syntax.FunctionDef(nil), ns.all...) }
