package irmem

// WriteMemory writes data into the region starting at addr. If no
// allocation contains [addr, addr+len(data)), the write is forwarded to a
// live remote, or fails with ErrOutOfRange if there is none.
func (m *MemoryMap) WriteMemory(addr uint64, data []byte) error {
	size := uint64(len(data))
	alloc, ok := m.idx.findContaining(addr, size)
	if !ok {
		if proc := m.resolveProcess(); liveProcess(proc) {
			return proc.Write(addr, data)
		}
		return ErrOutOfRange
	}

	offset := addr - alloc.alignedStart
	switch alloc.policy {
	case HostOnly:
		if len(alloc.shadow) == 0 {
			return ErrEmptyShadow
		}
		_, err := alloc.shadow.WriteAt(data, int64(offset))
		return err
	case Mirror:
		if len(alloc.shadow) == 0 {
			return ErrEmptyShadow
		}
		if _, err := alloc.shadow.WriteAt(data, int64(offset)); err != nil {
			return err
		}
		if proc := m.resolveProcess(); liveProcess(proc) {
			return proc.Write(addr, data)
		}
		return nil
	case ProcessOnly:
		if proc := m.resolveProcess(); liveProcess(proc) {
			return proc.Write(addr, data)
		}
		// Documented behavior: without a remote there is nowhere to
		// store the bytes.
		return nil
	default:
		return ErrInvalidPolicy
	}
}

// ReadMemory reads len(out) bytes starting at addr into out. If no
// allocation contains the range, the read is tried against a live remote,
// then the target's static memory, and fails with ErrOutOfRange only if
// neither is available.
func (m *MemoryMap) ReadMemory(out []byte, addr uint64) error {
	size := uint64(len(out))
	alloc, ok := m.idx.findContaining(addr, size)
	if !ok {
		if proc := m.resolveProcess(); liveProcess(proc) {
			return proc.Read(addr, out)
		}
		if tgt := m.resolveTarget(); tgt != nil {
			return tgt.ReadMemory(addr, out)
		}
		return ErrOutOfRange
	}

	offset := addr - alloc.alignedStart
	if offset > alloc.size {
		return ErrOutOfRange
	}

	switch alloc.policy {
	case HostOnly:
		if len(alloc.shadow) == 0 {
			return ErrEmptyShadow
		}
		if uint64(len(alloc.shadow)) < offset+size {
			return ErrShortShadow
		}
		_, err := alloc.shadow.ReadAt(out, int64(offset))
		return err
	case Mirror:
		if proc := m.resolveProcess(); liveProcess(proc) {
			return proc.Read(addr, out)
		}
		if len(alloc.shadow) == 0 {
			return ErrEmptyShadow
		}
		_, err := alloc.shadow.ReadAt(out, int64(offset))
		return err
	case ProcessOnly:
		if proc := m.resolveProcess(); liveProcess(proc) {
			return proc.Read(addr, out)
		}
		return nil
	default:
		return ErrInvalidPolicy
	}
}

// GetAllocSize returns the number of bytes from addr to the end of its
// containing allocation.
func (m *MemoryMap) GetAllocSize(addr uint64) (uint64, error) {
	alloc, ok := m.idx.findContaining(addr, 0)
	if !ok {
		return 0, ErrNotFound
	}
	if addr > alloc.end() {
		return 0, ErrOutOfRange
	}
	if addr > alloc.alignedStart {
		return alloc.end() - addr, nil
	}
	return alloc.size, nil
}
