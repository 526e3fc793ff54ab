package logio

import (
	"bytes"
	"sync"
)

// Writer is an io.Writer that hands each complete line to Logf, prefixed by
// Prefix. Writing is safe from multiple goroutines.
//
// Lines are logged without their line feed, unless Quote is set, when they
// are logged in full as a Go quoted string.
type Writer struct {
	Logf   func(string, ...interface{})
	Prefix string
	Quote  bool

	mu  sync.Mutex
	buf bytes.Buffer
}

// Write buffers p, then logs any completed lines; it never fails.
func (lw *Writer) Write(p []byte) (n int, err error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	lw.buf.Write(p)
	lw.flushLines(false)
	return len(p), nil
}

// WriteByte writes a single byte.
func (lw *Writer) WriteByte(c byte) error {
	_, err := lw.Write([]byte{c})
	return err
}

// Flush logs any partial final line.
func (lw *Writer) Flush() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	lw.flushLines(true)
	return nil
}

// Close calls Flush.
func (lw *Writer) Close() error { return lw.Flush() }

func (lw *Writer) flushLines(all bool) {
	for lw.buf.Len() > 0 {
		if i := bytes.IndexByte(lw.buf.Bytes(), '\n'); i >= 0 {
			lw.logLine(lw.buf.Next(i + 1))
		} else if all {
			lw.logLine(lw.buf.Next(lw.buf.Len()))
		} else {
			break
		}
	}
}

func (lw *Writer) logLine(line []byte) {
	if lw.Quote {
		lw.Logf("%s%q", lw.Prefix, line)
	} else {
		lw.Logf("%s%s", lw.Prefix, bytes.TrimSuffix(line, []byte{'\n'}))
	}
}
