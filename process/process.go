// Package process describes the remote (inferior) process the dual-space
// memory map allocates and mirrors memory in. The interface is a thin,
// synchronous shim: every method is expected to block until the remote
// operation completes, exactly like the teacher's emulator.Emulator memory
// methods (MemRead/MemWrite/MemMap) but scoped to a single live process
// instead of a whole CPU emulator.
//
// Package process owns none of the memory map's policy logic; it is
// consumed through the Process interface only.
package process

import "github.com/wnxd/irmem/target"

// Process is the remote collaborator. It may vanish (process exit) or
// refuse to JIT (e.g. a stripped, non-writable target) at any point; the
// memory map re-resolves it on every call. Allocation, read and write paths
// check Alive (allocation also SupportsJIT) before using it; ByteOrder,
// AddressByteSize and deallocation of Mirror/ProcessOnly regions only
// require that it still exists.
type Process interface {
	// Alive reports whether the process can currently service requests.
	Alive() bool
	// SupportsJIT reports whether the process allows the map to allocate
	// writable/executable memory inside it.
	SupportsJIT() bool

	Allocate(size uint64, perm target.Permissions) (addr uint64, err error)
	ZeroAllocate(size uint64, perm target.Permissions) (addr uint64, err error)
	Deallocate(addr uint64) error

	Read(addr uint64, out []byte) error
	Write(addr uint64, data []byte) error

	ByteOrder() target.ByteOrder
	AddressByteSize() uint32
}
