package main

import (
	"context"
	"io"

	"github.com/jcorbin/goclink/internal/module"
)

// New returns a VM that will run a function from ns, "_" unless WithEntry
// says otherwise.
func New(ns *module.Namespace, opts ...VMOption) *VM {
	vm := &VM{ns: ns}
	vm.port = &vm.bp
	vm.bp.log = &vm.logging
	defaultOptions.apply(vm)
	VMOptions(opts...).apply(vm)
	return vm
}

// Run runs the entry function until no terms remain to be evaluated, the
// context is done, or the VM halts with an error.
func (vm *VM) Run(ctx context.Context) error {
	return vm.guard(func() error {
		return vm.run(ctx)
	})
}

// WithEntry names the function to run, "_" by default.
func WithEntry(name string) VMOption { return withEntry(name) }

// WithInput queues an input stream for '@'; inputs are read in the order
// given, and any that are io.Closers are closed by VM.Close.
func WithInput(r io.Reader) VMOption { return withInput(r) }

// WithOutput sets the stream '#' writes to, replacing any prior output.
func WithOutput(w io.Writer) VMOption { return withOutput(w) }

// WithTee copies everything written by '#' to another stream.
func WithTee(w io.Writer) VMOption { return withTee(w) }

// WithPort replaces the byte oriented input and output with a custom
// SymbolPort; nil restores the default.
func WithPort(port SymbolPort) VMOption { return withPort(port) }

// WithStackLimit bounds the explicit part of the stack; 0 means unbounded.
func WithStackLimit(limit uint) VMOption { return withStackLimit(limit) }

// WithDepthLimit bounds the continuation stack; 0 means unbounded.
func WithDepthLimit(limit uint) VMOption { return withDepthLimit(limit) }

// WithStrictInput makes reading past the end of input an error, rather than
// reading zero bytes.
func WithStrictInput(strict bool) VMOption { return withStrictInput(strict) }

func WithLogf(logfn func(mess string, args ...interface{})) VMOption { return withLogfn(logfn) }
