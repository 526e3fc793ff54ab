// Package flushio provides buffered byte outputs that say when to flush.
package flushio

import (
	"bufio"
	"io"
	"io/ioutil"
)

// WriteFlusher is a flush-able io.Writer that also writes single bytes.
type WriteFlusher interface {
	io.Writer
	io.ByteWriter
	Flush() error
}

// Discard is a WriteFlusher that drops everything.
var Discard WriteFlusher = nopFlusher{byteWriter{ioutil.Discard}}

// NewWriteFlusher returns w if it is already a WriteFlusher; in memory
// buffers, like bytes.Buffer and strings.Builder, get a no-op Flush; any other
// writer gets wrapped in a bufio.Writer.
func NewWriteFlusher(w io.Writer) WriteFlusher {
	switch impl := w.(type) {
	case nil:
		return Discard
	case WriteFlusher:
		return impl
	}
	if w == ioutil.Discard {
		return Discard
	}

	type buffer interface {
		io.Writer
		Len() int
		Reset()
	}
	if _, isBuffer := w.(buffer); isBuffer {
		if bw, ok := w.(byteWriterImpl); ok {
			return nopFlusher{bw}
		}
		return nopFlusher{byteWriter{w}}
	}

	return bufio.NewWriter(w)
}

type byteWriterImpl interface {
	io.Writer
	io.ByteWriter
}

type byteWriter struct{ io.Writer }

func (bw byteWriter) WriteByte(c byte) error {
	_, err := bw.Write([]byte{c})
	return err
}

type nopFlusher struct{ byteWriterImpl }

func (nf nopFlusher) Flush() error { return nil }
