package irmem

import "github.com/wnxd/irmem/process"

// Malloc allocates a region of size bytes, aligned to alignment (a power
// of two >= 1), with the given advisory permissions and policy. zeroMemory
// selects between the remote's allocate and zero-allocate entry points
// when a remote allocation is actually made; it has no effect on HostOnly
// regions, whose shadow is always zeroed.
func (m *MemoryMap) Malloc(size, alignment uint64, perm Permissions, policy AllocationPolicy, zeroMemory bool) (uint64, error) {
	allocSize := roundAllocSize(size, alignment)
	mask := alignment - 1

	var (
		rawStart uint64
		err      error
	)
	switch policy {
	case HostOnly:
		// IRMemoryMap::FindSpace is called here with its zero_memory
		// parameter at its default (false): a host-only allocation's
		// shadow is always zeroed regardless of what the caller asked
		// for, so zeroMemory only matters when a remote allocation is
		// actually being made (Mirror/ProcessOnly below).
		rawStart = m.FindSpace(allocSize, false)
		if rawStart == InvalidAddr {
			return InvalidAddr, ErrAddressSpaceFull
		}
	case Mirror:
		proc := m.resolveProcess()
		if liveProcess(proc) && proc.SupportsJIT() {
			rawStart, err = remoteAllocate(proc, allocSize, perm, zeroMemory)
			if err != nil {
				return InvalidAddr, wrapRemote(ErrRemoteAllocFailed, err)
			}
		} else {
			m.log.downgrade(size, alignment)
			policy = HostOnly
			rawStart = m.FindSpace(allocSize, false)
			if rawStart == InvalidAddr {
				return InvalidAddr, ErrAddressSpaceFull
			}
		}
	case ProcessOnly:
		proc := m.resolveProcess()
		if proc == nil {
			return InvalidAddr, ErrRemoteRequired
		}
		if !liveProcess(proc) || !proc.SupportsJIT() {
			return InvalidAddr, ErrRemoteUnsupported
		}
		rawStart, err = remoteAllocate(proc, allocSize, perm, zeroMemory)
		if err != nil {
			return InvalidAddr, wrapRemote(ErrRemoteAllocFailed, err)
		}
	default:
		return InvalidAddr, ErrInvalidPolicy
	}

	alignedStart := (rawStart + mask) &^ mask
	alloc := newAllocation(rawStart, alignedStart, allocSize, perm, alignment, policy)
	m.idx.insert(alloc)
	return alignedStart, nil
}

// roundAllocSize rounds size up to the next multiple of alignment (a zero
// size becomes one alignment unit). A size that is already a multiple is
// returned unchanged; otherwise (size+alignment)&^mask yields the smallest
// multiple above size, e.g. 1 @ 8 -> 8, 9 @ 8 -> 16. The formula is kept
// exactly as in the original allocator this was ported from.
func roundAllocSize(size, alignment uint64) uint64 {
	if size == 0 {
		return alignment
	}
	mask := alignment - 1
	if size&mask != 0 {
		return (size + alignment) &^ mask
	}
	return size
}

func remoteAllocate(proc process.Process, size uint64, perm Permissions, zeroMemory bool) (uint64, error) {
	if zeroMemory {
		return proc.ZeroAllocate(size, perm)
	}
	return proc.Allocate(size, perm)
}

// Free releases the allocation keyed at the exact address addr.
func (m *MemoryMap) Free(addr uint64) error {
	alloc, ok := m.idx.findExact(addr)
	if !ok {
		return ErrNotFound
	}
	m.freeRemote(alloc)
	m.idx.erase(addr)
	return nil
}

// freeRemote deallocates an allocation's remote-side memory, if any. For
// HostOnly, the address only needs releasing on the remote if it was
// actually handed out by a live, JIT-capable remote (i.e. FindSpace
// delegated to it). For Mirror/ProcessOnly the remote always owns the
// bytes, so only existence of the process (not liveness) gates the call,
// matching IRMemoryMap::Free's m_process_wp.lock() check. Remote errors are
// ignored here: Free always succeeds locally.
func (m *MemoryMap) freeRemote(alloc *Allocation) {
	proc := m.resolveProcess()
	switch alloc.policy {
	case HostOnly:
		if liveProcess(proc) && proc.SupportsJIT() {
			_ = proc.Deallocate(alloc.rawStart)
		}
	case Mirror, ProcessOnly:
		if proc != nil {
			_ = proc.Deallocate(alloc.rawStart)
		}
	}
}

// Leak marks an allocation as not-to-be-freed on Shutdown. Repeated calls
// after the first are a no-op.
func (m *MemoryMap) Leak(addr uint64) error {
	alloc, ok := m.idx.findExact(addr)
	if !ok {
		return ErrNotFound
	}
	alloc.leak = true
	return nil
}

// Shutdown frees every non-leaked allocation and drops the rest, leaving
// the index empty. If the remote is already gone, remote deallocation is
// skipped silently — this mirrors IRMemoryMap's destructor, which only
// runs its free loop at all when the process weak pointer still resolves.
func (m *MemoryMap) Shutdown() {
	proc := m.resolveProcess()
	if proc == nil {
		m.idx.allocs = nil
		return
	}
	// Take the entries and clear the index up front; the loop then only
	// releases remote memory for the non-leaked ones.
	allocs := m.idx.allocs
	m.idx.allocs = nil
	for _, alloc := range allocs {
		if alloc.leak {
			continue
		}
		m.freeRemote(alloc)
	}
}
