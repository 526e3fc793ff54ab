package logio_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/goclink/internal/logio"
)

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, errors.New("closed") }

func Test_Logger(t *testing.T) {
	var out strings.Builder
	log := logio.NewLogger(&out)

	log.Printf("INFO", "hello %v", "world")
	log.Leveledf("TRACE")("step %d", 1)
	log.Printf("", "bare\n")
	assert.Equal(t, 0, log.ExitCode(), "expected no errors yet")

	log.ErrorIf(nil)
	log.ErrorIf(errors.New("oops"))
	assert.Equal(t, 1, log.ExitCode())

	assert.Equal(t, strings.Join([]string{
		"INFO: hello world",
		"TRACE: step 1",
		"bare",
		"ERROR: oops",
	}, "\n")+"\n", out.String())

	log.SetOutput(failWriter{})
	log.Printf("INFO", "lost")
	assert.Equal(t, 2, log.ExitCode(), "expected a write failure to be remembered")
}

func Test_Writer(t *testing.T) {
	var lines []string
	lw := &logio.Writer{
		Prefix: "out: ",
		Quote:  true,
		Logf: func(mess string, args ...interface{}) {
			lines = append(lines, fmt.Sprintf(mess, args...))
		},
	}
	fmt.Fprintf(lw, "Hello")
	lw.WriteByte(' ')
	fmt.Fprintf(lw, "world!\nbye")
	assert.Equal(t, []string{`out: "Hello world!\n"`}, lines)
	assert.NoError(t, lw.Close())
	assert.Equal(t, []string{`out: "Hello world!\n"`, `out: "bye"`}, lines)

	lines = nil
	plain := &logio.Writer{Logf: lw.Logf}
	fmt.Fprintf(plain, "# VM Dump\n  entry: _\n")
	assert.Equal(t, []string{"# VM Dump", "  entry: _"}, lines)
}
