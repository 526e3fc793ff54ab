package main

import (
	"io"

	"github.com/jcorbin/goclink/internal/flushio"
	"github.com/jcorbin/goclink/internal/module"
)

// VMOption configures a VM at construction.
type VMOption interface{ apply(vm *VM) }

var defaultOptions = VMOptions(
	withOutput(nil),
	withEntry(module.DefaultEntry),
)

// VMOptions combines any number of options into one, applied in order.
func VMOptions(opts ...VMOption) VMOption {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, opt)
		}
	}
	if len(res) == 1 {
		return res[0]
	}
	return res
}

type options []VMOption

func (opts options) apply(vm *VM) {
	for _, opt := range opts {
		opt.apply(vm)
	}
}

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(vm *VM) {
	vm.logfn = logfn
}

type entryOption string
type inputOption struct{ io.Reader }
type outputOption struct{ io.Writer }
type teeOption struct{ io.Writer }
type portOption struct{ SymbolPort }
type stackLimitOption uint
type depthLimitOption uint
type strictInputOption bool

func withEntry(name string) entryOption             { return entryOption(name) }
func withInput(r io.Reader) inputOption             { return inputOption{r} }
func withOutput(w io.Writer) outputOption           { return outputOption{w} }
func withTee(w io.Writer) teeOption                 { return teeOption{w} }
func withPort(port SymbolPort) portOption           { return portOption{port} }
func withStackLimit(limit uint) stackLimitOption    { return stackLimitOption(limit) }
func withDepthLimit(limit uint) depthLimitOption    { return depthLimitOption(limit) }
func withStrictInput(strict bool) strictInputOption { return strictInputOption(strict) }

func (name entryOption) apply(vm *VM) {
	vm.entry = string(name)
}

func (i inputOption) apply(vm *VM) {
	vm.bp.in.Queue = append(vm.bp.in.Queue, i.Reader)
}

func (o outputOption) apply(vm *VM) {
	if vm.bp.out != nil {
		vm.bp.out.Flush()
	}
	vm.bp.out = flushio.NewWriteFlusher(o.Writer)
}

func (o teeOption) apply(vm *VM) {
	vm.bp.out = flushio.Tee(vm.bp.out, flushio.NewWriteFlusher(o.Writer))
}

func (o portOption) apply(vm *VM) {
	if o.SymbolPort == nil {
		vm.port = &vm.bp
	} else {
		vm.port = o.SymbolPort
	}
}

func (lim stackLimitOption) apply(vm *VM) {
	vm.stack.Limit = uint(lim)
}

func (lim depthLimitOption) apply(vm *VM) {
	vm.depthLimit = int(lim)
}

func (strict strictInputOption) apply(vm *VM) {
	vm.bp.strict = bool(strict)
}
