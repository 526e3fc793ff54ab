package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jcorbin/goclink/internal/panicerr"
)

// guard runs f, turning a halt into its error, and any other panic into a
// *panicerr.Error.
func (vm *VM) guard(f func() error) error {
	err := panicerr.Recover("VM", f)
	var halted haltError
	if errors.As(err, &halted) {
		err = halted.error
	}
	return err
}

// halt stops the VM by panicking with a haltError that Run recovers;
// output is flushed first, and any flush error replaces a nil err.
func (vm *VM) halt(err error) {
	// ignore any panics while trying to flush output
	func() {
		defer func() { recover() }()
		if ferr := vm.flush(); err == nil {
			err = ferr
		}
	}()

	// ignore any panics while logging
	func() {
		defer func() { recover() }()
		if err == nil {
			vm.logf("#", "halt")
		} else {
			vm.logf("#", "halt error: %v", err)
		}
	}()

	panic(haltError{err})
}

func (vm *VM) haltif(err error) {
	if err != nil {
		vm.halt(err)
	}
}

type haltError struct{ error }

func (err haltError) Error() string {
	if err.error != nil {
		return fmt.Sprintf("halted: %v", err.error)
	}
	return "halted"
}
func (err haltError) Unwrap() error { return err.error }

type logging struct {
	logfn func(mess string, args ...interface{})

	markWidth int
}

func (log *logging) withLogPrefix(prefix string) func() {
	logfn := log.logfn
	log.logfn = func(mess string, args ...interface{}) {
		logfn(prefix+mess, args...)
	}
	return func() {
		log.logfn = logfn
	}
}

// logf logs a message under a short mark, like ">" for each step or "@" for
// input; marks shorter than the widest seen so far are left padded by
// repeating their first rune.
func (log *logging) logf(mark, mess string, args ...interface{}) {
	if log.logfn == nil {
		return
	}
	if n := log.markWidth - len(mark); n > 0 {
		for _, r := range mark {
			mark = strings.Repeat(string(r), n) + mark
			break
		}
	} else if n < 0 {
		log.markWidth = len(mark)
	}
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	log.logfn("%v %v", mark, mess)
}
