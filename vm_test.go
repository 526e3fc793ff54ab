package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/goclink/internal/byteio"
	"github.com/jcorbin/goclink/internal/logio"
	"github.com/jcorbin/goclink/internal/module"
	"github.com/jcorbin/goclink/internal/stdlib"
	"github.com/jcorbin/goclink/internal/syntax"
)

type vmTestCases []vmTestCase

func (vmts vmTestCases) run(t *testing.T) {
	{
		var exclusive []vmTestCase
		for _, vmt := range vmts {
			if vmt.exclusive {
				exclusive = append(exclusive, vmt)
			}
		}
		if len(exclusive) > 0 {
			vmts = exclusive
		}
	}
	for _, vmt := range vmts {
		t.Run(vmt.name, vmt.run)
	}
}

func vmTest(name string) (vmt vmTestCase) {
	vmt.name = name
	return vmt
}

type optFunc func(vm *VM)

func (f optFunc) apply(vm *VM) { f(vm) }

type vmTestCase struct {
	name    string
	modules []string
	opts    []interface{}
	ops     []func(vm *VM)
	expect  []func(t *testing.T, vm *VM)
	timeout time.Duration

	wantErr     error
	wantMessage string

	exclusive   bool
	noTrace     bool
	nextInputID int
}

func (vmt vmTestCase) apply(wraps ...func(vmTestCase) vmTestCase) vmTestCase {
	for _, wrap := range wraps {
		vmt = wrap(vmt)
	}
	return vmt
}

func (vmt vmTestCase) exclusiveTest() vmTestCase {
	vmt.exclusive = true
	return vmt
}

// withoutTrace skips trace logging, for tests that run too many steps to
// format each one.
func (vmt vmTestCase) withoutTrace() vmTestCase {
	vmt.noTrace = true
	return vmt
}

// withSource adds a module to the program; the first one added is the entry
// module.
func (vmt vmTestCase) withSource(src string) vmTestCase {
	return vmt.withModule("main", src)
}

func (vmt vmTestCase) withModule(path, src string) vmTestCase {
	vmt.modules = append(vmt.modules[:len(vmt.modules):len(vmt.modules)], path, src)
	return vmt
}

func (vmt vmTestCase) withOptions(opts ...VMOption) vmTestCase {
	for _, opt := range opts {
		vmt.opts = append(vmt.opts, opt)
	}
	return vmt
}

func (vmt vmTestCase) withEntry(name string) vmTestCase {
	vmt.opts = append(vmt.opts, WithEntry(name))
	return vmt
}

// withStack pushes symbols, written like "!?!", before running.
func (vmt vmTestCase) withStack(syms string) vmTestCase {
	vmt.opts = append(vmt.opts, optFunc(func(vm *VM) {
		for _, sym := range parseSymbols(syms) {
			vm.stack.Push(bool(sym))
		}
	}))
	return vmt
}

func (vmt vmTestCase) withInput(input string) vmTestCase {
	vmt.opts = append(vmt.opts, func(vmt *vmTestCase, t *testing.T) VMOption {
		name := t.Name() + "/input"
		if id := vmt.nextInputID; id > 0 {
			name += "_" + strconv.Itoa(id+1)
		}
		vmt.nextInputID++
		return WithInput(byteio.Named(name, strings.NewReader(input)))
	})
	return vmt
}

func (vmt vmTestCase) withNamedInput(name string, input string) vmTestCase {
	vmt.opts = append(vmt.opts, func(vmt *vmTestCase, t *testing.T) VMOption {
		return WithInput(byteio.Named(name, strings.NewReader(input)))
	})
	return vmt
}

// do runs ops directly, instead of running the entry function.
func (vmt vmTestCase) do(ops ...func(vm *VM)) vmTestCase {
	vmt.ops = append(vmt.ops[:len(vmt.ops):len(vmt.ops)], ops...)
	return vmt
}

func (vmt vmTestCase) withTimeout(timeout time.Duration) vmTestCase {
	vmt.timeout = timeout
	return vmt
}

func (vmt vmTestCase) withTestOutput() vmTestCase {
	vmt.opts = append(vmt.opts, func(vmt *vmTestCase, t *testing.T) VMOption {
		return WithTee(&logio.Writer{Logf: t.Logf, Prefix: "out: ", Quote: true})
	})
	return vmt
}

func (vmt vmTestCase) expectError(err error) vmTestCase {
	vmt.wantErr = err
	return vmt
}

func (vmt vmTestCase) expectErrorMessage(mess string) vmTestCase {
	vmt.wantMessage = mess
	return vmt
}

// expectStack checks the explicit stack, written bottom first like "!?!".
func (vmt vmTestCase) expectStack(syms string) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Equal(t, syms, formatSymbols(vm.symbols()), "expected stack symbols")
	})
	return vmt
}

func (vmt vmTestCase) expectSteps(steps uint64) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Equal(t, steps, vm.steps, "expected step count")
	})
	return vmt
}

func (vmt vmTestCase) expectUnderflows(n uint64) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Equal(t, n, vm.underflows, "expected pops from the implicit stack")
	})
	return vmt
}

func (vmt vmTestCase) expectFrames(n int) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Len(t, vm.frames, n, "expected continuation frames")
	})
	return vmt
}

func (vmt vmTestCase) expectOutput(output string) vmTestCase {
	var out strings.Builder
	vmt.opts = append(vmt.opts, WithOutput(&out))
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Equal(t, output, out.String(), "expected output")
	})
	return vmt
}

func (vmt vmTestCase) expectDump(dump string) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		var out strings.Builder
		vmDumper{
			vm:  vm,
			out: &out,
		}.dump()
		assert.Equal(t, dump, out.String(), "expected dump")
	})
	return vmt
}

func (vmt vmTestCase) run(t *testing.T) {
	defer func(then time.Time) {
		label := "PASS"
		if t.Failed() {
			label = "FAIL"
		}
		t.Logf("%v\t%v\t%v", label, t.Name(), time.Since(then))
	}(time.Now())

	var trace traceTail
	defer func() {
		if t.Failed() {
			trace.logTo(t)
		}
	}()

	vm, err := vmt.buildVM(t, &trace)
	if err != nil {
		vmt.checkError(t, err)
		return
	}
	vmt.runVMTest(context.Background(), t, vm)
}

func (vmt vmTestCase) runVMTest(ctx context.Context, t *testing.T, vm *VM) {
	const defaultTimeout = 3 * time.Second
	timeout := vmt.timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if t.Failed() {
			vmt.dumpToTest(t, vm)
		}
	}()

	var err error
	if len(vmt.ops) > 0 {
		err = vm.guard(func() error {
			for _, op := range vmt.ops {
				op(vm)
			}
			return vm.flush()
		})
	} else {
		err = vm.Run(ctx)
	}
	if cerr := vm.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("vm.Close failed: %w", cerr)
	}
	vmt.checkError(t, err)

	if !t.Failed() {
		for _, expect := range vmt.expect {
			expect(t, vm)
		}
	}
}

func (vmt vmTestCase) checkError(t *testing.T, err error) {
	switch {
	case vmt.wantErr != nil:
		assert.True(t, errors.Is(err, vmt.wantErr), "expected error: %v\ngot: %+v", vmt.wantErr, err)
	case vmt.wantMessage != "":
		assert.EqualError(t, err, vmt.wantMessage)
	default:
		assert.NoError(t, err, "unexpected VM error")
	}
}

func (vmt vmTestCase) buildVM(t *testing.T, trace *traceTail) (*VM, error) {
	var ns *module.Namespace
	if len(vmt.modules) > 0 {
		fsys := make(fstest.MapFS, len(vmt.modules)/2)
		for i := 0; i < len(vmt.modules); i += 2 {
			fsys[module.FilePath(vmt.modules[i])] = &fstest.MapFile{Data: []byte(vmt.modules[i+1])}
		}
		res := module.Resolver{
			Loader: module.Multi{module.FS{FS: fsys}, stdlib.Loader},
			Logf:   trace.logf,
		}
		for _, o := range vmt.opts {
			if entry, ok := o.(entryOption); ok {
				res.Entry = string(entry)
			}
		}
		var err error
		if ns, err = res.Resolve(vmt.modules[0]); err != nil {
			return nil, err
		}
	}

	var opt VMOption
	if !vmt.noTrace {
		opt = WithLogf(trace.logf)
	}
	for _, o := range vmt.opts {
		switch impl := o.(type) {
		case func(vmt *vmTestCase, t *testing.T) VMOption:
			opt = VMOptions(opt, impl(&vmt, t))
		case VMOption:
			opt = VMOptions(opt, impl)
		default:
			require.Fail(t, "unsupported vmTestCase option", "type %T", o)
		}
	}
	return New(ns, opt), nil
}

func (vmt vmTestCase) dumpToTest(t *testing.T, vm *VM) {
	lw := logio.Writer{Logf: t.Logf}
	defer lw.Close()
	vmDumper{vm: vm, out: &lw, namespace: true}.dump()
}

//// utilities

// traceTail keeps the last lines of trace logging, to be shown when a test
// fails.
type traceTail struct {
	mu    sync.Mutex
	lines []string
	next  int
	total int
}

const traceTailSize = 64

func (tt *traceTail) logf(mess string, args ...interface{}) {
	line := fmt.Sprintf(mess, args...)
	tt.mu.Lock()
	defer tt.mu.Unlock()
	if len(tt.lines) < traceTailSize {
		tt.lines = append(tt.lines, line)
	} else {
		tt.lines[tt.next] = line
	}
	tt.next = (tt.next + 1) % traceTailSize
	tt.total++
}

func (tt *traceTail) logTo(t *testing.T) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	if skipped := tt.total - len(tt.lines); skipped > 0 {
		t.Logf("... %v trace lines skipped", skipped)
	}
	if len(tt.lines) < traceTailSize {
		for _, line := range tt.lines {
			t.Log(line)
		}
		return
	}
	for i := 0; i < traceTailSize; i++ {
		t.Log(tt.lines[(tt.next+i)%traceTailSize])
	}
}

func parseSymbols(s string) []syntax.Symbol {
	syms := make([]syntax.Symbol, 0, len(s))
	for _, r := range s {
		switch r {
		case '!':
			syms = append(syms, syntax.True)
		case '?':
			syms = append(syms, syntax.False)
		default:
			panic(fmt.Sprintf("invalid symbol %q", r))
		}
	}
	return syms
}

func formatSymbols(syms []syntax.Symbol) string {
	var sb strings.Builder
	for _, sym := range syms {
		sb.WriteString(sym.String())
	}
	return sb.String()
}

func lines(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}
