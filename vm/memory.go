package vm

import (
	"encoding/binary"
)

// Memory is the contiguous byte vector holding the code segment followed by
// the data segment. DataBase is the first byte of the data segment;
// everything before it is the read-only-after-load code segment.
type Memory struct {
	bytes    []byte
	DataBase uint64
}

// NewMemory lays out code immediately followed by a zero-filled data
// segment of dataSize bytes.
func NewMemory(code []byte, dataSize uint64) *Memory {
	m := &Memory{
		DataBase: uint64(len(code)),
	}
	m.bytes = make([]byte, uint64(len(code))+dataSize)
	copy(m.bytes, code)
	return m
}

// Len returns the total size of the address space.
func (m *Memory) Len() uint64 { return uint64(len(m.bytes)) }

// Bytes returns the full backing address space, for coredump snapshots.
// Callers must not mutate the result.
func (m *Memory) Bytes() []byte { return m.bytes }

func (m *Memory) inBounds(addr, n uint64) bool {
	if n == 0 {
		return addr <= m.Len()
	}
	end := addr + n
	return end >= addr && end <= m.Len()
}

// ReadByte returns one byte at addr.
func (m *Memory) ReadByte(addr uint64) (byte, bool) {
	if !m.inBounds(addr, 1) {
		return 0, false
	}
	return m.bytes[addr], true
}

// ReadBytes returns a copy of n bytes at addr.
func (m *Memory) ReadBytes(addr, n uint64) ([]byte, bool) {
	if !m.inBounds(addr, n) {
		return nil, false
	}
	out := make([]byte, n)
	copy(out, m.bytes[addr:addr+n])
	return out, true
}

// ReadU16 reads a big-endian uint16 at addr.
func (m *Memory) ReadU16(addr uint64) (uint16, bool) {
	b, ok := m.ReadBytes(addr, 2)
	if !ok {
		return 0, false
	}
	return binary.BigEndian.Uint16(b), true
}

// ReadU64 reads a big-endian uint64 at addr.
func (m *Memory) ReadU64(addr uint64) (uint64, bool) {
	b, ok := m.ReadBytes(addr, 8)
	if !ok {
		return 0, false
	}
	return binary.BigEndian.Uint64(b), true
}

// WriteByte writes one byte at addr, growing neither the code nor the data
// segment boundary.
func (m *Memory) WriteByte(addr uint64, v byte) bool {
	if !m.inBounds(addr, 1) {
		return false
	}
	m.bytes[addr] = v
	return true
}

// WriteBytes copies data into the address space starting at addr.
func (m *Memory) WriteBytes(addr uint64, data []byte) bool {
	if !m.inBounds(addr, uint64(len(data))) {
		return false
	}
	copy(m.bytes[addr:], data)
	return true
}

// WriteU64 writes v as big-endian at addr.
func (m *Memory) WriteU64(addr uint64, v uint64) bool {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return m.WriteBytes(addr, b[:])
}
