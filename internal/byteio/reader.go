// Package byteio provides byte-at-a-time reading and printable byte names.
package byteio

import (
	"bufio"
	"io"
)

// Reader is an io.Reader that also supports reading single bytes.
type Reader interface {
	io.Reader
	io.ByteReader
}

// NewReader returns r if it already implements Reader, otherwise wraps it in a
// bufio.Reader. If r implements Name() string, so will the returned Reader.
func NewReader(r io.Reader) Reader {
	if impl, ok := r.(Reader); ok {
		return impl
	}
	br := bufio.NewReader(r)
	if impl, ok := r.(interface{ Name() string }); ok {
		return namedReader{br, impl.Name()}
	}
	return br
}

type namedReader struct {
	Reader
	name string
}

func (nr namedReader) Name() string { return nr.name }

// Named attaches a name to a reader, as reported by Name().
func Named(name string, r io.Reader) Reader {
	return namedReader{NewReader(r), name}
}

// NameOf returns the Name() of obj, or a placeholder naming its type.
func NameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return "<unnamed " + typeName(obj) + ">"
}
