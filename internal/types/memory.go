package types

import "fmt"

// Memory is a fixed-size segment of integers. Cells are undefined until
// written; reading an undefined cell yields 0.
type Memory struct {
	cells   []int
	defined []bool
}

// NewMemory creates a segment of size cells.
func NewMemory(size int) *Memory {
	return &Memory{
		cells:   make([]int, size),
		defined: make([]bool, size),
	}
}

// AddressError reports an access outside a memory segment.
type AddressError struct {
	Addr  int
	Limit int
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("address %d out of bounds [0, %d)", e.Addr, e.Limit)
}

// Len returns the number of cells.
func (m *Memory) Len() int {
	return len(m.cells)
}

// InBounds reports whether addr is a valid cell address.
func (m *Memory) InBounds(addr int) bool {
	return addr >= 0 && addr < len(m.cells)
}

// Load returns the value at addr and whether the cell was ever written.
func (m *Memory) Load(addr int) (value int, defined bool, err error) {
	if !m.InBounds(addr) {
		return 0, false, &AddressError{Addr: addr, Limit: len(m.cells)}
	}
	return m.cells[addr], m.defined[addr], nil
}

// Store writes value at addr.
func (m *Memory) Store(addr, value int) error {
	if !m.InBounds(addr) {
		return &AddressError{Addr: addr, Limit: len(m.cells)}
	}
	m.cells[addr] = value
	m.defined[addr] = true
	return nil
}

// Clone returns a deep copy of the segment.
func (m *Memory) Clone() *Memory {
	c := NewMemory(len(m.cells))
	copy(c.cells, m.cells)
	copy(c.defined, m.defined)
	return c
}
