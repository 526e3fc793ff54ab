package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jcorbin/goclink/internal/syntax"
)

type vmDumper struct {
	vm  *VM
	out io.Writer

	// namespace adds every function definition to the dump
	namespace bool
}

func (dump vmDumper) dump() {
	vm := dump.vm
	fmt.Fprintf(dump.out, "# VM Dump\n")
	fmt.Fprintf(dump.out, "  entry: %v\n", vm.entry)
	fmt.Fprintf(dump.out, "  steps: %v\n", vm.steps)
	fmt.Fprintf(dump.out, "  stack: %v\n", dump.formatStack())
	if vm.underflows > 0 {
		fmt.Fprintf(dump.out, "  underflows: %v\n", vm.underflows)
	}
	dump.dumpFrames()
	if dump.namespace {
		dump.dumpNamespace()
	}
}

func (dump vmDumper) formatStack() string {
	syms := dump.vm.symbols()
	if len(syms) == 0 {
		return "[]"
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for _, sym := range syms {
		sb.WriteString(sym.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// dumpFrames writes the continuation stack, innermost frame first, each with
// the terms it has yet to run.
func (dump vmDumper) dumpFrames() {
	frames := dump.vm.frames
	if len(frames) == 0 {
		return
	}
	fmt.Fprintf(dump.out, "# Frames\n")
	for i := len(frames) - 1; i >= 0; i-- {
		fr := frames[i]
		rest := fr.expr[fr.pc:]
		fmt.Fprintf(dump.out, "  @%v %v %v next %v\n", i, fr.def.QualifiedName(), rest[0].Pos, syntax.Format(rest))
	}
}

func (dump vmDumper) dumpNamespace() {
	ns := dump.vm.ns
	if ns == nil {
		return
	}
	fmt.Fprintf(dump.out, "# Namespace %v\n", strings.Join(ns.Modules(), " "))
	for _, def := range ns.Defs() {
		mark := ""
		if bare, _ := ns.Lookup(def.Name); bare != def {
			mark = " (shadowed)"
		}
		fmt.Fprintf(dump.out, "  %v: %v %v;%v\n", def.Pos, def.QualifiedName(), syntax.Format(def.Body), mark)
	}
}
