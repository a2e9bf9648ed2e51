package process

import (
	"sync"

	"github.com/wnxd/irmem/target"
)

// freeBlock is a node in MockProcess's free list. The shape and the
// InsertAfter/InsertBefore/Remove/Range operations are adapted directly
// from the teacher's internal/debugger/mem.go memBlock, which runs the
// same coalescing free-list allocator for its own pseudo-heap. The memory
// map's own host pseudo-heap never coalesces or reuses freed ranges, but
// nothing stops the mock remote used in tests from doing so: reuse here
// models a realistic remote allocator (e.g. malloc/free inside the
// inferior) rather than the map's own bump heap.
type freeBlock struct {
	addr, size uint64
	prev, next *freeBlock
}

var freeBlockPool = sync.Pool{
	New: func() any { return new(freeBlock) },
}

func (b *freeBlock) Range(yield func(*freeBlock) bool) {
	for n := b; n != nil; n = n.next {
		if !yield(n) {
			break
		}
	}
}

func (b *freeBlock) InsertAfter(addr, size uint64) *freeBlock {
	n := freeBlockPool.Get().(*freeBlock)
	n.addr, n.size = addr, size
	n.next = b
	if b != nil {
		n.prev = b.prev
		if b.prev != nil {
			b.prev.next = n
		}
		b.prev = n
	}
	return n
}

func (b *freeBlock) InsertBefore(addr, size uint64) *freeBlock {
	n := freeBlockPool.Get().(*freeBlock)
	n.addr, n.size = addr, size
	n.prev = b
	if b != nil {
		n.next = b.next
		if b.next != nil {
			b.next.prev = n
		}
		b.next = n
	}
	return n
}

func (b *freeBlock) Remove() {
	if b.prev != nil {
		b.prev.next = b.next
	}
	if b.next != nil {
		b.next.prev = b.prev
	}
	b.prev, b.next = nil, nil
	freeBlockPool.Put(b)
}

func (b *freeBlock) end() uint64 { return b.addr + b.size }

// MockProcess is a deterministic, in-memory stand-in for a real inferior,
// used by irmem's tests. It supports toggling Alive/SupportsJIT mid-test
// (to exercise downgrade and degraded-mode paths) and records the address
// of every successful Deallocate call so tests can assert shutdown
// behavior.
type MockProcess struct {
	base     uint64
	free     *freeBlock
	used     map[uint64][]byte
	alive    bool
	jit      bool
	order    target.ByteOrder
	addrSize uint32

	Deallocated []uint64
}

// NewMockProcess builds a live, JIT-capable mock remote whose allocator
// starts handing out addresses at base.
func NewMockProcess(base uint64, order target.ByteOrder, addrSize uint32) *MockProcess {
	return &MockProcess{
		base:     base,
		used:     make(map[uint64][]byte),
		alive:    true,
		jit:      true,
		order:    order,
		addrSize: addrSize,
	}
}

func (m *MockProcess) SetAlive(alive bool)         { m.alive = alive }
func (m *MockProcess) SetSupportsJIT(supports bool) { m.jit = supports }

func (m *MockProcess) Alive() bool       { return m.alive }
func (m *MockProcess) SupportsJIT() bool { return m.jit }

func (m *MockProcess) ByteOrder() target.ByteOrder { return m.order }
func (m *MockProcess) AddressByteSize() uint32     { return m.addrSize }

func (m *MockProcess) Allocate(size uint64, _ target.Permissions) (uint64, error) {
	return m.allocate(size, 0xAA)
}

func (m *MockProcess) ZeroAllocate(size uint64, _ target.Permissions) (uint64, error) {
	return m.allocate(size, 0)
}

func (m *MockProcess) allocate(size uint64, fill byte) (uint64, error) {
	if size == 0 {
		return 0, ErrInvalidSize
	}
	for b := range m.free.Range {
		if b.size >= size {
			addr := b.addr
			if b.size == size {
				if m.free == b {
					m.free = b.next
				}
				b.Remove()
			} else {
				b.addr += size
				b.size -= size
			}
			m.store(addr, size, fill)
			return addr, nil
		}
	}
	addr := m.base
	m.base += size
	m.store(addr, size, fill)
	return addr, nil
}

func (m *MockProcess) store(addr, size uint64, fill byte) {
	buf := make([]byte, size)
	if fill != 0 {
		for i := range buf {
			buf[i] = fill
		}
	}
	m.used[addr] = buf
}

func (m *MockProcess) Deallocate(addr uint64) error {
	buf, ok := m.used[addr]
	if !ok {
		return ErrUnknownAddress
	}
	size := uint64(len(buf))
	delete(m.used, addr)
	m.Deallocated = append(m.Deallocated, addr)

	end := addr + size
	var b *freeBlock
	for b = range m.free.Range {
		if b.end() == addr {
			if b.prev == nil || b.prev.addr != end {
				b.size += size
			} else {
				b.prev.addr = b.addr
				b.prev.size += b.size + size
				b.Remove()
			}
			return nil
		} else if b.addr < end {
			nb := b.InsertAfter(addr, size)
			if m.free == b {
				m.free = nb
			}
			return nil
		}
	}
	if b != nil && b.addr == end {
		b.addr = addr
		b.size += size
	} else if b != nil {
		b.InsertBefore(addr, size)
	} else {
		m.free = &freeBlock{addr: addr, size: size}
	}
	return nil
}

func (m *MockProcess) Read(addr uint64, out []byte) error {
	buf, start, ok := m.find(addr, uint64(len(out)))
	if !ok {
		return ErrUnknownAddress
	}
	copy(out, buf[addr-start:])
	return nil
}

func (m *MockProcess) Write(addr uint64, data []byte) error {
	buf, start, ok := m.find(addr, uint64(len(data)))
	if !ok {
		return ErrUnknownAddress
	}
	copy(buf[addr-start:], data)
	return nil
}

func (m *MockProcess) find(addr, size uint64) (buf []byte, start uint64, ok bool) {
	for start, buf := range m.used {
		if addr >= start && addr+size <= start+uint64(len(buf)) {
			return buf, start, true
		}
	}
	return nil, 0, false
}
