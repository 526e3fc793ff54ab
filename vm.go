package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jcorbin/goclink/internal/mem"
	"github.com/jcorbin/goclink/internal/module"
	"github.com/jcorbin/goclink/internal/syntax"
)

// VM evaluates a resolved clink program.
//
// The symbol stack is conceptually infinite: below its explicit part, kept
// bit-packed in a mem.Bits, lies an endless run of False that popping
// regenerates but never consumes.
//
// Calls do not recurse in Go. Instead every pending expression is a frame on
// a heap-allocated continuation stack, and a frame is popped as soon as its
// last term starts; calls and branches in tail position therefore run in
// constant space, while all other nesting is bounded only by memory (or an
// optional depth limit).
type VM struct {
	logging

	ns    *module.Namespace
	entry string

	stack      mem.Bits
	frames     []frame
	depthLimit int

	bp   bytePort
	port SymbolPort

	steps      uint64
	underflows uint64
}

// frame is one pending expression: terms before pc have already run.
type frame struct {
	def  *syntax.FunctionDef
	expr syntax.Expression
	pc   int
}

// NameError reports a call to a function missing from the namespace.
type NameError struct {
	Name string
	Pos  syntax.Pos
}

func (err NameError) Error() string {
	if err.Pos == (syntax.Pos{}) {
		return fmt.Sprintf("undefined function %q", err.Name)
	}
	return fmt.Sprintf("%v: undefined function %q", err.Pos, err.Name)
}

// ErrDepthLimit is wrapped by the error that halts a VM whose continuation
// stack would grow past its depth limit.
var ErrDepthLimit = errors.New("depth limit exceeded")

// contextCheckInterval is how many steps run between context checks.
const contextCheckInterval = 1024

func (vm *VM) run(ctx context.Context) error {
	vm.haltif(ctx.Err())
	vm.init()
	if vm.logfn != nil {
		defer vm.withLogPrefix("\t")()
	}
	for len(vm.frames) > 0 {
		vm.step()
		if vm.steps%contextCheckInterval == 0 {
			vm.haltif(ctx.Err())
		}
	}
	return vm.flush()
}

func (vm *VM) init() {
	name := vm.entry
	if name == "" {
		name = module.DefaultEntry
	}
	def, defined := vm.ns.Lookup(name)
	if !defined {
		vm.halt(NameError{Name: name})
	}
	vm.logf(">", "run %v", def.QualifiedName())
	vm.frames = vm.frames[:0]
	vm.enter(def, def.Body, def.Pos)
}

// step runs the next term of the top frame.
func (vm *VM) step() {
	top := len(vm.frames) - 1
	fr := &vm.frames[top]
	def, term := fr.def, fr.expr[fr.pc]
	if fr.pc++; fr.pc >= len(fr.expr) {
		vm.frames[top] = frame{}
		vm.frames = vm.frames[:top]
	}
	vm.steps++

	if vm.logfn != nil {
		vm.logf(">", "%v %v -- s:%v f:%v", term.Pos, syntax.Format(syntax.Expression{term}), vm.stackString(16), len(vm.frames))
	}

	switch term.Op {
	case syntax.PushTrue:
		vm.push(syntax.True)
	case syntax.PushFalse:
		vm.push(syntax.False)
	case syntax.Read:
		vm.read()
	case syntax.Emit:
		vm.emit()
	case syntax.Group:
		vm.enter(def, term.Body, term.Pos)
	case syntax.Match:
		if vm.pop() {
			vm.enter(def, term.OnTrue, term.Pos)
		} else {
			vm.enter(def, term.OnFalse, term.Pos)
		}
	case syntax.Call:
		callee, defined := vm.ns.Lookup(term.Name)
		if !defined {
			vm.halt(NameError{Name: term.Name, Pos: term.Pos})
		}
		vm.enter(callee, callee.Body, term.Pos)
	default:
		vm.halt(fmt.Errorf("%v: invalid term %v", term.Pos, term.Op))
	}
}

// enter pushes a frame for expr, unless it is empty.
func (vm *VM) enter(def *syntax.FunctionDef, expr syntax.Expression, at syntax.Pos) {
	if len(expr) == 0 {
		return
	}
	if lim := vm.depthLimit; lim != 0 && len(vm.frames) >= lim {
		vm.halt(fmt.Errorf("%v: %w entering %v with %v frames", at, ErrDepthLimit, def.QualifiedName(), len(vm.frames)))
	}
	vm.frames = append(vm.frames, frame{def: def, expr: expr})
}

func (vm *VM) push(sym syntax.Symbol) {
	vm.haltif(vm.stack.Push(bool(sym)))
}

// pop returns the top symbol, or False from the implicit part of the stack.
func (vm *VM) pop() syntax.Symbol {
	bit, ok := vm.stack.Pop()
	if !ok {
		vm.underflows++
	}
	return syntax.Symbol(bit)
}

// symbols returns the explicit stack, bottom first.
func (vm *VM) symbols() []syntax.Symbol {
	bits := make([]bool, vm.stack.Len())
	if err := vm.stack.LoadInto(0, bits); err != nil {
		return nil
	}
	syms := make([]syntax.Symbol, len(bits))
	for i, bit := range bits {
		syms[i] = syntax.Symbol(bit)
	}
	return syms
}

// stackString formats up to limit of the topmost stack symbols, top last.
func (vm *VM) stackString(limit int) string {
	var sb strings.Builder
	n := vm.stack.Len()
	from := uint(0)
	if limit > 0 && n > uint(limit) {
		from = n - uint(limit)
		sb.WriteString("…")
	}
	for addr := from; addr < n; addr++ {
		bit, _ := vm.stack.Load(addr)
		sb.WriteString(syntax.Symbol(bit).String())
	}
	return sb.String()
}
