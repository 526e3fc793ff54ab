package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/jcorbin/goclink/internal/byteio"
	"github.com/jcorbin/goclink/internal/fileinput"
	"github.com/jcorbin/goclink/internal/flushio"
	"github.com/jcorbin/goclink/internal/syntax"
)

// SymbolPort connects a VM to the outside world one symbol at a time.
// Implementations may also implement Flush() error, called before the VM
// finishes or halts, and io.Closer, called by VM.Close.
type SymbolPort interface {
	ReadSymbol() (syntax.Symbol, error)
	EmitSymbol(sym syntax.Symbol) error
}

// IOError reports a failure of the VM's SymbolPort.
type IOError struct {
	Op  string
	Err error
}

func (err *IOError) Error() string { return fmt.Sprintf("%v: %v", err.Op, err.Err) }
func (err *IOError) Unwrap() error { return err.Err }

func ioError(op string, err error) error {
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return err
	}
	return &IOError{Op: op, Err: err}
}

// symbolsPerByte is how many symbols '@' reads and '#' emits.
const symbolsPerByte = 8

// read pushes a byte worth of symbols, in the order the port yields them.
func (vm *VM) read() {
	for i := 0; i < symbolsPerByte; i++ {
		sym, err := vm.port.ReadSymbol()
		if err != nil {
			vm.halt(ioError("read", err))
		}
		vm.push(sym)
	}
}

// emit pops a byte worth of symbols, and writes them to the port in the order
// they were pushed: so "?!??!???#" writes the bits of 'H' most significant
// first.
func (vm *VM) emit() {
	var buf [symbolsPerByte]syntax.Symbol
	for i := len(buf) - 1; i >= 0; i-- {
		buf[i] = vm.pop()
	}
	for _, sym := range buf {
		if err := vm.port.EmitSymbol(sym); err != nil {
			vm.halt(ioError("write", err))
		}
	}
}

func (vm *VM) flush() error {
	if fl, ok := vm.port.(interface{ Flush() error }); ok {
		if err := fl.Flush(); err != nil {
			return ioError("flush", err)
		}
	}
	return nil
}

// Close closes the VM's port, and any queued inputs.
func (vm *VM) Close() (err error) {
	if cl, ok := vm.port.(io.Closer); ok {
		err = cl.Close()
	}
	if vm.port != SymbolPort(&vm.bp) {
		if cerr := vm.bp.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// bytePort is the default SymbolPort: it reads bytes from a queue of inputs
// and writes bytes to an output, most significant symbol first both ways.
type bytePort struct {
	in     fileinput.Input
	out    flushio.WriteFlusher
	strict bool
	log    *logging

	rb, wb byte
	rn, wn uint
	eof    bool
}

var _ SymbolPort = (*bytePort)(nil)

func (p *bytePort) logf(mark, mess string, args ...interface{}) {
	if p.log != nil {
		p.log.logf(mark, mess, args...)
	}
}

// ReadSymbol returns the next symbol of the current input byte, reading a new
// byte after flushing output when the last one is used up. Past the end of
// input every symbol is False, unless strict, when it is an error.
func (p *bytePort) ReadSymbol() (syntax.Symbol, error) {
	if p.rn == 0 {
		if err := p.out.Flush(); err != nil {
			return syntax.False, &IOError{Op: "flush", Err: err}
		}
		b, err := p.in.ReadByte()
		if err == io.EOF {
			if p.strict {
				return syntax.False, &IOError{Op: "read", Err: io.ErrUnexpectedEOF}
			}
			if !p.eof {
				p.eof = true
				p.logf("@", "read EOF, reading zeros")
			}
			return syntax.False, nil
		} else if err != nil {
			return syntax.False, &IOError{Op: "read", Err: err}
		}
		p.logf("@", "read %v from %v", byteio.Quote(b), p.in.Location())
		p.rb, p.rn = b, symbolsPerByte
	}
	p.rn--
	return syntax.Symbol(p.rb>>p.rn&1 != 0), nil
}

// EmitSymbol adds a symbol to the pending output byte, writing it once full.
func (p *bytePort) EmitSymbol(sym syntax.Symbol) error {
	p.wb <<= 1
	if sym {
		p.wb |= 1
	}
	if p.wn++; p.wn < symbolsPerByte {
		return nil
	}
	b := p.wb
	p.wb, p.wn = 0, 0
	p.logf("#", "emit %v", byteio.Quote(b))
	if err := p.out.WriteByte(b); err != nil {
		return &IOError{Op: "write", Err: err}
	}
	return nil
}

// Flush drops, and logs, any partial output byte, then flushes the output.
func (p *bytePort) Flush() error {
	if p.wn > 0 {
		p.logf("#", "dropped partial output byte, %v of %v symbols", p.wn, symbolsPerByte)
		p.wb, p.wn = 0, 0
	}
	return p.out.Flush()
}

func (p *bytePort) Close() error {
	return p.in.Close()
}
