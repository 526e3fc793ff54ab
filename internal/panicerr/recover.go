// Package panicerr turns panics and goroutine exits into error values.
package panicerr

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// Recover runs f in a new goroutine, returning its error, or an *Error if f
// panics or calls runtime.Goexit.
func Recover(name string, f func() error) error {
	errch := make(chan error, 1)
	go func() {
		defer close(errch)
		defer func() {
			if e := recover(); e != nil {
				errch <- &Error{Name: name, Value: e, Stack: debug.Stack()}
				return
			}
			select {
			case errch <- &Error{Name: name, Exit: true}:
			default:
				// f returned normally
			}
		}()
		errch <- f()
	}()
	return <-errch
}

// Error is a recovered panic, or a recovered runtime.Goexit if Exit is set.
type Error struct {
	Name  string
	Value interface{}
	Stack []byte
	Exit  bool
}

func (pe *Error) Error() string { return fmt.Sprint(pe) }

// Format implements fmt.Formatter; "%+v" adds the panic stack.
func (pe *Error) Format(f fmt.State, c rune) {
	name := pe.Name
	if name == "" {
		name = "goroutine"
	}
	if pe.Exit {
		fmt.Fprintf(f, "%v called runtime.Goexit", name)
		return
	}
	fmt.Fprintf(f, "%v panicked: %v", name, pe.Value)
	if c == 'v' && f.Flag('+') && len(pe.Stack) > 0 {
		fmt.Fprintf(f, "\npanic stack: %s", pe.Stack)
	}
}

// Unwrap returns the panic value if it was an error.
func (pe *Error) Unwrap() error {
	err, _ := pe.Value.(error)
	return err
}

// IsPanic returns true if err is, or wraps, a recovered panic.
func IsPanic(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && !pe.Exit
}

// IsExit returns true if err is, or wraps, a recovered goroutine exit.
func IsExit(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Exit
}

// PanicStack returns the stack trace of a recovered panic, or "".
func PanicStack(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return string(pe.Stack)
	}
	return ""
}
