package irmem

import "github.com/wnxd/irmem/encoding"

// ImportValue allocates space for val using the map's default policy,
// encodes it there, and returns the address it was written at followed by
// the address of every out-of-line block the encoder allocated along the
// way (e.g. behind pointer or string fields). On any encoding failure
// every allocation made for this call, including the top-level one, is
// freed before returning the error.
func (m *MemoryMap) ImportValue(val any) ([]uint64, error) {
	addrSize := int(m.AddressByteSize())
	addr, err := m.Malloc(uint64(encoding.EncodeSize(addrSize, val)), uint64(addrSize), PermRead|PermWrite, m.defaultPolicy, true)
	if err != nil {
		return nil, err
	}
	addrs, err := m.WriteValue(addr, val)
	if err != nil {
		_ = m.Free(addr)
		return nil, err
	}
	return append([]uint64{addr}, addrs...), nil
}

// WriteValue encodes val at an already-allocated addr, returning the
// addresses of any out-of-line blocks the encoder allocates for nested
// pointers or strings. On failure, every such block allocated during this
// call is freed; addr itself is left alone since WriteValue didn't
// allocate it.
func (m *MemoryMap) WriteValue(addr uint64, val any) ([]uint64, error) {
	var addrs []uint64
	stream := m.Stream(addr, int(m.AddressByteSize()), m.defaultPolicy)
	wrapped := &allocTrackingStream{mapStream: stream.(*mapStream), addrs: &addrs}
	if err := encoding.Encode(wrapped, val); err != nil {
		for _, a := range addrs {
			_ = m.Free(a)
		}
		return nil, err
	}
	return addrs, nil
}

// ExtractValue decodes val from addr. Nested pointer fields are followed
// transparently by the decoder; no new allocations are made.
func (m *MemoryMap) ExtractValue(addr uint64, val any) error {
	stream := m.Stream(addr, int(m.AddressByteSize()), m.defaultPolicy)
	return encoding.Decode(stream, val)
}

// allocTrackingStream records every address WriteStream hands out so
// WriteValue can roll them all back on a failed encode.
type allocTrackingStream struct {
	*mapStream
	addrs *[]uint64
}

func (s *allocTrackingStream) WriteStream(size int) (encoding.Stream, error) {
	addr, err := s.m.Malloc(uint64(size), uint64(s.size), PermRead|PermWrite, s.policy, true)
	if err != nil {
		return nil, err
	}
	*s.addrs = append(*s.addrs, addr)
	if err := s.m.WritePointerToMemory(s.addr, addr); err != nil {
		return nil, err
	}
	s.addr += uint64(s.size)
	return &allocTrackingStream{mapStream: &mapStream{s.m, addr, s.size, s.policy}, addrs: s.addrs}, nil
}
