// Package fileinput reads bytes through a queue of named input streams,
// tracking where in which stream each byte came from.
package fileinput

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jcorbin/goclink/internal/byteio"
)

// Location names a position in an Input stream; Col counts bytes from 1.
type Location struct {
	Name string
	Line int
	Col  int
}

func (loc Location) String() string {
	if loc.Col == 0 {
		return fmt.Sprintf("%v:%v", loc.Name, loc.Line)
	}
	return fmt.Sprintf("%v:%v:%v", loc.Name, loc.Line, loc.Col)
}

// MaxLineBuffer bounds how many bytes of a line are kept; longer lines are
// still counted in full.
const MaxLineBuffer = 256

// Line holds the leading bytes of an input line, along with where it started
// and how many bytes it has.
type Line struct {
	Location
	Width int
	bytes.Buffer
}

func (il *Line) String() string {
	if il.Width > il.Buffer.Len() {
		return fmt.Sprintf("%v %q...", il.Location, il.Buffer.String())
	}
	return fmt.Sprintf("%v %q", il.Location, il.Buffer.String())
}

func (il *Line) add(b byte) {
	il.Width++
	if il.Buffer.Len() < MaxLineBuffer {
		il.Buffer.WriteByte(b)
	}
}

func (il *Line) reset() {
	il.Buffer.Reset()
	il.Width = 0
}

// Input reads bytes from each stream in Queue in turn. Both the current line
// being scanned and the last complete line are kept for error reporting.
type Input struct {
	Queue []io.Reader
	Last  Line
	Scan  Line

	br  byteio.Reader
	cur io.Reader
}

// Location returns the position of the last byte read.
func (in *Input) Location() Location {
	loc := in.Scan.Location
	loc.Col = in.Scan.Width
	if loc.Col == 0 && in.Last.Name == loc.Name && in.Last.Line == loc.Line-1 {
		loc = in.Last.Location
		loc.Col = in.Last.Width + 1
	}
	return loc
}

// ReadByte reads one byte, moving on to the next queued stream after each one
// ends. Returns io.EOF once the queue is exhausted.
func (in *Input) ReadByte() (byte, error) {
	for {
		if in.br == nil && !in.nextIn() {
			return 0, io.EOF
		}
		b, err := in.br.ReadByte()
		if err == nil {
			if b == '\n' {
				in.nextLine()
			} else {
				in.Scan.add(b)
			}
			return b, nil
		}
		if err != io.EOF {
			return 0, fmt.Errorf("read %v: %w", in.Scan.Name, err)
		}
		in.closeCurrent()
	}
}

// Close closes the current stream and any queued ones that are io.Closers.
func (in *Input) Close() (err error) {
	if cerr := in.closeCurrent(); err == nil {
		err = cerr
	}
	for _, r := range in.Queue {
		if cl, ok := r.(io.Closer); ok {
			if cerr := cl.Close(); err == nil {
				err = cerr
			}
		}
	}
	in.Queue = nil
	return err
}

func (in *Input) closeCurrent() (err error) {
	if in.cur != nil {
		if cl, ok := in.cur.(io.Closer); ok {
			err = cl.Close()
		}
	}
	in.br, in.cur = nil, nil
	return err
}

func (in *Input) nextLine() {
	in.Last.reset()
	in.Last.Location = in.Scan.Location
	in.Last.Width = in.Scan.Width
	in.Last.Write(in.Scan.Bytes())
	in.Scan.reset()
	in.Scan.Line++
}

func (in *Input) nextIn() bool {
	if len(in.Queue) == 0 {
		return false
	}
	if in.Scan.Width > 0 {
		in.nextLine()
	}
	r := in.Queue[0]
	in.Queue = in.Queue[1:]
	in.cur = r
	in.br = byteio.NewReader(r)
	in.Scan.reset()
	in.Scan.Name = byteio.NameOf(r)
	in.Scan.Line = 1
	return true
}
