package mem

// BitsDump provides data for testing.
type BitsDump struct {
	Len   uint
	Pages [][]uint64
}

// Dump memory data for testing.
func (m *Bits) Dump() (d BitsDump) {
	d.Len = m.n
	d.Pages = m.pages
	return d
}
