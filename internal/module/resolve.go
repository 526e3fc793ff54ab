// Package module resolves a clink program's imports into one Namespace.
package module

import (
	"errors"
	"fmt"

	"github.com/jcorbin/goclink/internal/syntax"
)

// DefaultEntry is the function that runs a program.
const DefaultEntry = "_"

var (
	ErrModuleNotFound = errors.New("module not found")
	ErrNameConflict   = errors.New("name conflict")
	ErrNoEntry        = errors.New("missing entry function")
	ErrUndefined      = errors.New("undefined function")
)

// ResolutionError reports a failure to load, parse, or merge a module.
// Err is either a syntax error from the module's file or wraps one of the
// Err* values above.
type ResolutionError struct {
	Module string
	Pos    syntax.Pos
	Err    error
}

func (err *ResolutionError) Error() string {
	if err.Pos == (syntax.Pos{}) {
		return fmt.Sprintf("module %v: %v", err.Module, err.Err)
	}
	return fmt.Sprintf("module %v: %v: %v", err.Module, err.Pos, err.Err)
}

func (err *ResolutionError) Unwrap() error { return err.Err }

// ConflictPolicy decides what happens when two modules define the same name.
type ConflictPolicy int

// Conflict policies.
const (
	ConflictError ConflictPolicy = iota // fail resolution
	ConflictFirst                       // keep the first definition merged
	ConflictLast                        // keep the last definition merged
)

var conflictNames = [...]string{
	ConflictError: "error",
	ConflictFirst: "first",
	ConflictLast:  "last",
}

func (pol ConflictPolicy) String() string {
	if int(pol) < len(conflictNames) {
		return conflictNames[pol]
	}
	return fmt.Sprintf("ConflictPolicy(%d)", int(pol))
}

// Set parses a policy name, implementing flag.Value.
func (pol *ConflictPolicy) Set(s string) error {
	for i, name := range conflictNames {
		if s == name {
			*pol = ConflictPolicy(i)
			return nil
		}
	}
	return fmt.Errorf("invalid conflict policy %q, must be one of error, first, or last", s)
}

// Resolver assembles a Namespace by following imports from an entry module.
type Resolver struct {
	Loader   Loader
	Conflict ConflictPolicy

	// Entry is the function that must be defined, DefaultEntry if empty.
	Entry string

	Logf func(mess string, args ...interface{})
}

// Resolve loads an entry module and everything it imports with the default
// policies.
func Resolve(loader Loader, entryModule string) (*Namespace, error) {
	return Resolver{Loader: loader}.Resolve(entryModule)
}

// Resolve loads the entry module through the Loader, then resolves it.
func (r Resolver) Resolve(entryModule string) (*Namespace, error) {
	src, err := r.Loader.Load(entryModule)
	if err != nil {
		return nil, &ResolutionError{Module: entryModule, Err: err}
	}
	return r.ResolveSource(entryModule, src)
}

// ResolveSource resolves an already loaded entry module. The entry counts as
// processed, so any import of its path is a no-op.
func (r Resolver) ResolveSource(entryModule string, src Source) (*Namespace, error) {
	type pending struct {
		path string
		from syntax.Pos
		src  *Source
	}

	ns := newNamespace()
	seen := map[string]bool{entryModule: true}
	queue := []pending{{path: entryModule, src: &src}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if item.src == nil {
			if r.Loader == nil {
				return nil, &ResolutionError{Module: item.path, Pos: item.from, Err: ErrModuleNotFound}
			}
			loaded, err := r.Loader.Load(item.path)
			if err != nil {
				return nil, &ResolutionError{Module: item.path, Pos: item.from, Err: err}
			}
			item.src = &loaded
		}

		file, err := syntax.Parse(item.src.Name, item.src.Text)
		if err != nil {
			return nil, &ResolutionError{Module: item.path, Err: err}
		}
		r.logf("merge %v from %v: %v imports, %v functions",
			item.path, item.src.Name, len(file.Imports), len(file.Defs))

		for _, imp := range file.Imports {
			if !seen[imp.Path] {
				seen[imp.Path] = true
				queue = append(queue, pending{path: imp.Path, from: imp.Pos})
			}
		}

		for _, def := range file.Defs {
			def.Module = item.path
			if err := r.define(ns, def); err != nil {
				return nil, err
			}
		}
		ns.modules = append(ns.modules, item.path)
	}

	if err := r.check(ns, entryModule); err != nil {
		return nil, err
	}
	return ns, nil
}

func (r Resolver) define(ns *Namespace, def *syntax.FunctionDef) error {
	ns.all = append(ns.all, def)
	ns.qualified[def.QualifiedName()] = def

	prior, defined := ns.defs[def.Name]
	if !defined {
		ns.defs[def.Name] = def
		return nil
	}

	switch r.Conflict {
	case ConflictFirst:
		r.logf("conflict %q: keeping %v from %v, ignoring %v",
			def.Name, prior.QualifiedName(), prior.Pos, def.Pos)
	case ConflictLast:
		r.logf("conflict %q: replacing %v from %v with %v",
			def.Name, prior.QualifiedName(), prior.Pos, def.Pos)
		ns.defs[def.Name] = def
	default:
		return &ResolutionError{
			Module: def.Module,
			Pos:    def.Pos,
			Err:    fmt.Errorf("%w: %q already defined by %v at %v", ErrNameConflict, def.Name, prior.Module, prior.Pos),
		}
	}
	return nil
}

// check verifies that the entry function exists, and that every call names a
// defined function, so that evaluation never meets an unknown name.
func (r Resolver) check(ns *Namespace, entryModule string) error {
	entry := r.Entry
	if entry == "" {
		entry = DefaultEntry
	}
	if _, defined := ns.Lookup(entry); !defined {
		return &ResolutionError{
			Module: entryModule,
			Err:    fmt.Errorf("%w %q", ErrNoEntry, entry),
		}
	}

	for _, def := range ns.all {
		if err := checkCalls(ns, def, def.Body); err != nil {
			return err
		}
	}
	return nil
}

func checkCalls(ns *Namespace, def *syntax.FunctionDef, expr syntax.Expression) error {
	for _, term := range expr {
		var err error
		switch term.Op {
		case syntax.Call:
			if _, defined := ns.Lookup(term.Name); !defined {
				err = &ResolutionError{
					Module: def.Module,
					Pos:    term.Pos,
					Err:    fmt.Errorf("%w %q called by %q", ErrUndefined, term.Name, def.Name),
				}
			}
		case syntax.Group:
			err = checkCalls(ns, def, term.Body)
		case syntax.Match:
			if err = checkCalls(ns, def, term.OnTrue); err == nil {
				err = checkCalls(ns, def, term.OnFalse)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r Resolver) logf(mess string, args ...interface{}) {
	if r.Logf != nil {
		r.Logf(mess, args...)
	}
}
