package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/goclink/internal/byteio"
	"github.com/jcorbin/goclink/internal/flushio"
	"github.com/jcorbin/goclink/internal/module"
	"github.com/jcorbin/goclink/internal/syntax"
)

// symbolPort is a SymbolPort over plain symbol slices.
type symbolPort struct {
	in, out []syntax.Symbol
	flushes int
	closed  bool
	readErr error
}

func (sp *symbolPort) ReadSymbol() (syntax.Symbol, error) {
	if sp.readErr != nil {
		return syntax.False, sp.readErr
	}
	if len(sp.in) == 0 {
		return syntax.False, nil
	}
	sym := sp.in[0]
	sp.in = sp.in[1:]
	return sym, nil
}

func (sp *symbolPort) EmitSymbol(sym syntax.Symbol) error {
	sp.out = append(sp.out, sym)
	return nil
}

func (sp *symbolPort) Flush() error { sp.flushes++; return nil }
func (sp *symbolPort) Close() error { sp.closed = true; return nil }

func resolveSource(t *testing.T, src string) *module.Namespace {
	ns, err := module.Resolver{}.ResolveSource("main", module.Source{Name: t.Name(), Text: []byte(src)})
	require.NoError(t, err, "unexpected resolve error")
	return ns
}

func Test_VM_port(t *testing.T) {
	t.Run("symbols", func(t *testing.T) {
		port := &symbolPort{in: parseSymbols("!?!")}
		vm := New(resolveSource(t, "_ @ !#;"), WithPort(port))
		require.NoError(t, vm.Run(context.Background()))
		require.NoError(t, vm.Close())

		// '@' reads "!?!" then five False symbols past the end of port input
		assert.Equal(t, "?!?????!", formatSymbols(port.out), "expected emitted symbols, in pushed order")
		assert.Equal(t, "!", formatSymbols(vm.symbols()), "expected stack after emit")
		assert.Equal(t, 1, port.flushes, "expected a final flush")
		assert.True(t, port.closed, "expected port to be closed")
	})

	t.Run("read error", func(t *testing.T) {
		boom := errors.New("boom")
		port := &symbolPort{readErr: boom}
		vm := New(resolveSource(t, "_ @;"), WithPort(port))
		err := vm.Run(context.Background())
		assert.True(t, errors.Is(err, boom), "expected port error, got %v", err)
		var ioErr *IOError
		if assert.True(t, errors.As(err, &ioErr), "expected an IOError") {
			assert.Equal(t, "read", ioErr.Op)
		}
	})

	t.Run("restore default", func(t *testing.T) {
		var out strings.Builder
		vm := New(resolveSource(t, "_ ?!??!???#;"),
			WithPort(&symbolPort{}),
			WithPort(nil),
			WithOutput(&out))
		require.NoError(t, vm.Run(context.Background()))
		assert.Equal(t, "H", out.String())
	})
}

func Test_bytePort(t *testing.T) {
	t.Run("partial output dropped", func(t *testing.T) {
		var (
			out  strings.Builder
			logs []string
		)
		var log logging
		log.logfn = func(mess string, args ...interface{}) {
			logs = append(logs, strings.TrimSpace(fmt.Sprintf(mess, args...)))
		}
		bp := bytePort{out: flushio.NewWriteFlusher(&out), log: &log}

		for _, sym := range parseSymbols("?!??!???" + "!!!") {
			require.NoError(t, bp.EmitSymbol(sym))
		}
		require.NoError(t, bp.Flush())
		assert.Equal(t, "H", out.String(), "expected only the whole byte")
		assert.Equal(t, []string{
			"# emit 'H'",
			"# dropped partial output byte, 3 of 8 symbols",
		}, logs)
	})

	t.Run("reads flush output", func(t *testing.T) {
		var out strings.Builder
		bp := bytePort{out: flushio.NewWriteFlusher(&out)}
		bp.in.Queue = append(bp.in.Queue, byteio.Named("in", strings.NewReader("A")))
		for _, sym := range parseSymbols("?!??!???") {
			require.NoError(t, bp.EmitSymbol(sym))
		}
		sym, err := bp.ReadSymbol()
		require.NoError(t, err)
		assert.Equal(t, syntax.False, sym, "expected high bit of 'A'")
		assert.Equal(t, "H", out.String(), "expected output written before reading")

		var syms []syntax.Symbol
		for i := 0; i < 7; i++ {
			sym, err := bp.ReadSymbol()
			require.NoError(t, err)
			syms = append(syms, sym)
		}
		assert.Equal(t, "!?????!", formatSymbols(syms), "expected rest of 'A'")
	})
}
