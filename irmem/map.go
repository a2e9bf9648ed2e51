// Package irmem implements a dual-space memory map for an expression/JIT
// subsystem inside a debugger: regions can live only on the host, only in
// a controlled remote (inferior) process, or mirrored on both sides.
// Clients address every region uniformly and the map routes Read/Write to
// host buffers, the remote process, or both, transparently.
//
// The design is a direct port of LLDB's IRMemoryMap (lldb/source/Expression
// /IRMemoryMap.cpp), restyled in the idiom of this module's teacher (error
// taxonomies as sentinel vars, weak back-references re-resolved per call,
// no internal locking because the map has exactly one caller).
package irmem

import (
	"math"
	"weak"

	"github.com/wnxd/irmem/process"
	"github.com/wnxd/irmem/target"
)

// InvalidAddr is the sentinel meaning "no such address".
const InvalidAddr uint64 = math.MaxUint64

// Permissions re-exports target.Permissions so callers don't need to
// import the target package just to pass flags to Malloc.
type Permissions = target.Permissions

const (
	PermNone  = target.PermNone
	PermRead  = target.PermRead
	PermWrite = target.PermWrite
	PermExec  = target.PermExec
	PermAll   = target.PermAll
)

// pseudoHeapPageSize is the spacing between successive host-only
// allocations in the bump pseudo-heap.
const pseudoHeapPageSize = 4096

// MemoryMap is the dual-space memory map. It is single-threaded: no method
// may be called concurrently on the same instance.
type MemoryMap struct {
	target  weak.Pointer[target.Target]
	process weak.Pointer[process.Process]

	idx allocationIndex

	log           *logger
	defaultPolicy AllocationPolicy
	remoteWasLive bool
}

// New constructs a map holding weak references to target and process. The
// caller owns the strong references *target and *process point into (they
// must outlive those references for as long as the map should be able to
// use them); the map never stores a strong reference of its own.
//
// Either pointer, or the interface value it points to, may be nil: a nil
// process.Process means "there is no remote", which is the map's fully
// degraded (host-only) mode.
func New(tgt *target.Target, proc *process.Process, opts ...Option) *MemoryMap {
	m := &MemoryMap{
		log:           newLogger(nil),
		defaultPolicy: Mirror,
	}
	if tgt != nil {
		m.target = weak.Make(tgt)
	}
	if proc != nil {
		m.process = weak.Make(proc)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// resolveTarget re-resolves the weak target reference to a strong one for
// the scope of the calling method.
func (m *MemoryMap) resolveTarget() target.Target {
	p := m.target.Value()
	if p == nil {
		return nil
	}
	return *p
}

// resolveProcess re-resolves the weak process reference to a strong one
// for the scope of the calling method. It also tracks liveness across
// calls and logs the one-time transition of a previously-live remote
// becoming unresolvable or dead.
func (m *MemoryMap) resolveProcess() process.Process {
	var proc process.Process
	if p := m.process.Value(); p != nil {
		proc = *p
	}
	live := liveProcess(proc)
	if m.remoteWasLive && !live {
		m.log.remoteLost()
	}
	m.remoteWasLive = live
	return proc
}

func liveProcess(proc process.Process) bool {
	return proc != nil && proc.Alive()
}

// ByteOrder returns the remote process's byte order; if the process is
// gone, the target's architectural byte order; otherwise ByteOrderInvalid.
func (m *MemoryMap) ByteOrder() target.ByteOrder {
	if proc := m.resolveProcess(); proc != nil {
		return proc.ByteOrder()
	}
	if tgt := m.resolveTarget(); tgt != nil {
		return tgt.ByteOrder()
	}
	return target.ByteOrderInvalid
}

// AddressByteSize returns the remote process's pointer width; if the
// process is gone, the target's architectural pointer width; otherwise
// math.MaxUint32.
func (m *MemoryMap) AddressByteSize() uint32 {
	if proc := m.resolveProcess(); proc != nil {
		return proc.AddressByteSize()
	}
	if tgt := m.resolveTarget(); tgt != nil {
		return tgt.AddressByteSize()
	}
	return math.MaxUint32
}

// IntersectsAllocation reports whether any live allocation's interval
// intersects [addr, addr+size).
func (m *MemoryMap) IntersectsAllocation(addr, size uint64) bool {
	if addr == InvalidAddr {
		return false
	}
	return m.idx.intersects(addr, size)
}

// FindSpace returns an address suitable for a host-only pseudo-heap
// allocation of size bytes. If a live remote supports allocation, the
// search is delegated to it and the remote allocates the block. Otherwise
// FindSpace only computes an address: it records nothing in the index and
// creates no host storage, so until Malloc inserts an allocation, repeated
// calls return the same address.
func (m *MemoryMap) FindSpace(size uint64, zeroMemory bool) uint64 {
	if size == 0 {
		return InvalidAddr
	}
	if proc := m.resolveProcess(); liveProcess(proc) && proc.SupportsJIT() {
		var (
			addr uint64
			err  error
		)
		if zeroMemory {
			addr, err = proc.ZeroAllocate(size, PermRead|PermWrite)
		} else {
			addr, err = proc.Allocate(size, PermRead|PermWrite)
		}
		if err != nil {
			return InvalidAddr
		}
		return addr
	}
	return m.findHostSpace(size)
}

// findHostSpace is the bump-only pseudo-heap search used when no remote is
// available: the host heap never reuses a freed range.
func (m *MemoryMap) findHostSpace(size uint64) uint64 {
	last, ok := m.idx.last()
	if !ok {
		return 0
	}
	return Align(last.end(), pseudoHeapPageSize)
}
