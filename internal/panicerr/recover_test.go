package panicerr_test

import (
	"errors"
	"fmt"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/goclink/internal/panicerr"
)

func Test_Recover(t *testing.T) {
	errBoom := errors.New("boom")

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, panicerr.Recover("ok", func() error { return nil }))
	})

	t.Run("error", func(t *testing.T) {
		err := panicerr.Recover("ret", func() error { return errBoom })
		assert.Equal(t, errBoom, err)
		assert.False(t, panicerr.IsPanic(err))
		assert.False(t, panicerr.IsExit(err))
	})

	t.Run("panic error", func(t *testing.T) {
		err := panicerr.Recover("vm", func() error { panic(errBoom) })
		assert.EqualError(t, err, "vm panicked: boom")
		assert.True(t, panicerr.IsPanic(err))
		assert.True(t, errors.Is(err, errBoom), "expected panic value to unwrap")
		assert.Contains(t, panicerr.PanicStack(err), "panicerr_test")
		assert.Contains(t, fmt.Sprintf("%+v", err), "panic stack: ")
	})

	t.Run("panic value", func(t *testing.T) {
		err := panicerr.Recover("", func() error { panic(42) })
		assert.EqualError(t, err, "goroutine panicked: 42")
		assert.Nil(t, errors.Unwrap(err))
	})

	t.Run("goexit", func(t *testing.T) {
		err := panicerr.Recover("quitter", func() error {
			runtime.Goexit()
			return nil
		})
		assert.EqualError(t, err, "quitter called runtime.Goexit")
		assert.True(t, panicerr.IsExit(err))
		assert.False(t, panicerr.IsPanic(err))
		assert.Equal(t, "", panicerr.PanicStack(err))
	})
}
