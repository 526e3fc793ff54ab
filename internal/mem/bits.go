// Package mem provides the bit-packed stack memory behind a clink VM.
package mem

import "fmt"

// DefaultPageSize provides a default for Bits.PageSize, in 64-bit words.
const DefaultPageSize = 64

const wordBits = 64

// LimitError indicates that a stack operation exceeded a limit.
type LimitError struct {
	Addr uint
	Op   string
}

func (lim LimitError) Error() string {
	return fmt.Sprintf("stack limit exceeded by %v @%v", lim.Op, lim.Addr)
}

// Bits implements a stack of bits, packed 64 to a word, with words held in
// pages that are allocated as the stack grows and released as it shrinks.
// The zero value is an empty, unlimited stack.
type Bits struct {
	// PageSize specifies the number of words in newly allocated pages.
	PageSize uint

	// Limit specifies the maximum number of bits, 0 meaning no limit.
	Limit uint

	n     uint
	pages [][]uint64
}

// Len returns the number of bits on the stack.
func (m *Bits) Len() uint { return m.n }

// Push puts one bit on top of the stack.
// Returns a LimitError, leaving the stack unchanged, if Limit would be exceeded.
func (m *Bits) Push(bit bool) error {
	if m.Limit != 0 && m.n >= m.Limit {
		return LimitError{m.n, "push"}
	}
	if m.PageSize == 0 {
		m.PageSize = DefaultPageSize
	}
	pageID, word, off := m.locate(m.n)
	if pageID == len(m.pages) {
		m.pages = append(m.pages, make([]uint64, m.PageSize))
	}
	w := &m.pages[pageID][word]
	if bit {
		*w |= 1 << off
	} else {
		*w &^= 1 << off
	}
	m.n++
	return nil
}

// Pop removes and returns the top bit of the stack; ok is false, and bit is
// false, when the stack is empty.
func (m *Bits) Pop() (bit, ok bool) {
	if m.n == 0 {
		return false, false
	}
	m.n--
	pageID, word, off := m.locate(m.n)
	bit = m.pages[pageID][word]&(1<<off) != 0

	// keep one spare page past the top, so that push/pop across a page
	// boundary doesn't churn allocations
	if keep := pageID + 2; keep < len(m.pages) {
		for i := keep; i < len(m.pages); i++ {
			m.pages[i] = nil
		}
		m.pages = m.pages[:keep]
	}
	return bit, true
}

// Load returns the bit at addr, counted from the bottom of the stack.
func (m *Bits) Load(addr uint) (bool, error) {
	if addr >= m.n {
		return false, LimitError{addr, "load"}
	}
	pageID, word, off := m.locate(addr)
	return m.pages[pageID][word]&(1<<off) != 0, nil
}

// LoadInto reads len(buf) bits starting at addr into buf.
// Returns an error if the range extends past the top; no partial load is done.
func (m *Bits) LoadInto(addr uint, buf []bool) error {
	if len(buf) == 0 {
		return nil
	}
	if end := addr + uint(len(buf)); end > m.n {
		return LimitError{end - 1, "load"}
	}
	for i := range buf {
		pageID, word, off := m.locate(addr + uint(i))
		buf[i] = m.pages[pageID][word]&(1<<off) != 0
	}
	return nil
}

// Reset empties the stack, releasing all pages.
func (m *Bits) Reset() {
	m.n = 0
	m.pages = nil
}

func (m *Bits) locate(addr uint) (pageID int, word int, off uint) {
	pageBits := m.PageSize * wordBits
	pageID = int(addr / pageBits)
	rem := addr % pageBits
	return pageID, int(rem / wordBits), rem % wordBits
}
