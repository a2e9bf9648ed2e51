package irmem

import (
	"encoding/binary"
	"math"

	"github.com/wnxd/irmem/target"
)

func binaryOrder(order target.ByteOrder) (binary.ByteOrder, error) {
	switch order {
	case target.LittleEndian:
		return binary.LittleEndian, nil
	case target.BigEndian:
		return binary.BigEndian, nil
	default:
		return nil, ErrInvalidPolicy
	}
}

// WriteScalarToMemory writes the low size bytes of scalar at addr, encoded
// with the map's current byte order. size of math.MaxUint32 means "the
// target's natural pointer width". Only widths of 1, 2, 4 and 8 are
// supported; anything else fails with ErrUnsupportedSize.
func (m *MemoryMap) WriteScalarToMemory(addr uint64, scalar uint64, size uint32) error {
	if size == math.MaxUint32 {
		size = m.AddressByteSize()
	}
	if size == 0 {
		return ErrZeroSize
	}
	order, err := binaryOrder(m.ByteOrder())
	if err != nil {
		return err
	}

	var buf [8]byte
	switch size {
	case 1:
		buf[0] = byte(scalar)
	case 2:
		order.PutUint16(buf[:2], uint16(scalar))
	case 4:
		order.PutUint32(buf[:4], uint32(scalar))
	case 8:
		order.PutUint64(buf[:8], scalar)
	default:
		return ErrUnsupportedSize
	}
	return m.WriteMemory(addr, buf[:size])
}

// ReadScalarFromMemory reads an unsigned integer of the given byte width
// from addr, decoded with the map's current byte order. size of
// math.MaxUint32 means "the target's natural pointer width". Only widths
// of 1, 2, 4 and 8 are supported; anything else fails with
// ErrUnsupportedSize.
func (m *MemoryMap) ReadScalarFromMemory(addr uint64, size uint32) (uint64, error) {
	if size == math.MaxUint32 {
		size = m.AddressByteSize()
	}
	if size == 0 {
		return 0, ErrZeroSize
	}
	order, err := binaryOrder(m.ByteOrder())
	if err != nil {
		return 0, err
	}

	var buf [8]byte
	if size > uint32(len(buf)) {
		return 0, ErrUnsupportedSize
	}
	if err := m.ReadMemory(buf[:size], addr); err != nil {
		return 0, err
	}
	switch size {
	case 1:
		return uint64(buf[0]), nil
	case 2:
		return uint64(order.Uint16(buf[:2])), nil
	case 4:
		return uint64(order.Uint32(buf[:4])), nil
	case 8:
		return order.Uint64(buf[:8]), nil
	default:
		return 0, ErrUnsupportedSize
	}
}

// WritePointerToMemory is WriteScalarToMemory shorthand at the target's
// natural pointer width.
func (m *MemoryMap) WritePointerToMemory(addr, value uint64) error {
	return m.WriteScalarToMemory(addr, value, math.MaxUint32)
}

// ReadPointerFromMemory is ReadScalarFromMemory shorthand at the target's
// natural pointer width.
func (m *MemoryMap) ReadPointerFromMemory(addr uint64) (uint64, error) {
	return m.ReadScalarFromMemory(addr, math.MaxUint32)
}
