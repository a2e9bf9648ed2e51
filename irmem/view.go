package irmem

import "github.com/wnxd/irmem/target"

// MemoryView is a byte view into a region the map already materializes on
// the host, returned by GetMemoryData for structured decoding.
// Its ByteOrder/AddressSize reflect the map's
// current remote/target settings at the time it was produced.
type MemoryView struct {
	Bytes       []byte
	ByteOrder   target.ByteOrder
	AddressSize uint32
}

// GetMemoryData returns a byte view of size bytes at addr, suitable for
// structured decoding. Requires an enclosing allocation. ProcessOnly fails
// with ErrHostUnavailable (the memory only exists in the remote). Mirror
// refreshes the entire shadow from a live remote and then views into the
// shadow; with no live remote it returns a zero-value MemoryView and a nil
// error. HostOnly views into the shadow directly.
func (m *MemoryMap) GetMemoryData(addr, size uint64) (MemoryView, error) {
	if size == 0 {
		return MemoryView{}, ErrZeroSize
	}
	alloc, ok := m.idx.findContaining(addr, size)
	if !ok {
		return MemoryView{}, ErrOutOfRange
	}
	offset := addr - alloc.alignedStart

	switch alloc.policy {
	case ProcessOnly:
		return MemoryView{}, ErrHostUnavailable
	case Mirror:
		if len(alloc.shadow) == 0 {
			return MemoryView{}, ErrEmptyShadow
		}
		if proc := m.resolveProcess(); liveProcess(proc) {
			if err := proc.Read(alloc.alignedStart, alloc.shadow); err != nil {
				return MemoryView{}, err
			}
			return m.view(alloc.shadow, offset, size), nil
		}
		// No remote to refresh from: return a zero-value view rather than
		// an error, preserved as-is from the allocator this was ported
		// from rather than papered over.
		return MemoryView{}, nil
	case HostOnly:
		if len(alloc.shadow) == 0 {
			return MemoryView{}, ErrEmptyShadow
		}
		return m.view(alloc.shadow, offset, size), nil
	default:
		return MemoryView{}, ErrInvalidPolicy
	}
}

func (m *MemoryMap) view(s shadow, offset, size uint64) MemoryView {
	return MemoryView{
		Bytes:       []byte(s[offset : offset+size]),
		ByteOrder:   m.ByteOrder(),
		AddressSize: m.AddressByteSize(),
	}
}
