package irmem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wnxd/irmem/process"
	"github.com/wnxd/irmem/target"
)

func TestAlign(t *testing.T) {
	assert.Equal(t, uint64(0), Align(uint64(0), 16))
	assert.Equal(t, uint64(16), Align(uint64(1), 16))
	assert.Equal(t, uint64(16), Align(uint64(16), 16))
	assert.Equal(t, uint64(32), Align(uint64(17), 16))
}

func TestRoundAllocSize(t *testing.T) {
	assert.Equal(t, uint64(8), roundAllocSize(0, 8))
	assert.Equal(t, uint64(8), roundAllocSize(8, 8))
	assert.Equal(t, uint64(16), roundAllocSize(1, 8))
	assert.Equal(t, uint64(16), roundAllocSize(9, 8))
}

func TestAllocationIndexDisjointAndFind(t *testing.T) {
	var idx allocationIndex
	a := newAllocation(0, 0, 16, PermRead, 1, HostOnly)
	b := newAllocation(16, 16, 16, PermRead, 1, HostOnly)
	idx.insert(a)
	idx.insert(b)

	got, ok := idx.findContaining(20, 4)
	require.True(t, ok)
	assert.Same(t, b, got)

	got, ok = idx.findContaining(15, 2)
	assert.False(t, ok)
	assert.Nil(t, got)

	assert.True(t, idx.intersects(10, 10))
	assert.False(t, idx.intersects(32, 4))
}

func TestMallocAlignment(t *testing.T) {
	m := New(nil, nil)
	addr, err := m.Malloc(10, 16, PermRead|PermWrite, HostOnly, false)
	require.NoError(t, err)
	assert.Zero(t, addr%16)

	addr2, err := m.Malloc(10, 32, PermRead|PermWrite, HostOnly, false)
	require.NoError(t, err)
	assert.Zero(t, addr2%32)
	assert.NotEqual(t, addr, addr2)
}

func TestMallocMirrorDowngradesWithoutProcess(t *testing.T) {
	m := New(nil, nil)
	addr, err := m.Malloc(16, 8, PermRead|PermWrite, Mirror, false)
	require.NoError(t, err)

	alloc, ok := m.idx.findExact(addr)
	require.True(t, ok)
	assert.Equal(t, HostOnly, alloc.Policy())
}

func TestFreeRemovesFromIndex(t *testing.T) {
	m := New(nil, nil)
	addr, err := m.Malloc(16, 8, PermRead|PermWrite, HostOnly, false)
	require.NoError(t, err)

	require.NoError(t, m.Free(addr))
	_, ok := m.idx.findExact(addr)
	assert.False(t, ok)

	assert.ErrorIs(t, m.Free(addr), ErrNotFound)
}

func TestProcessOnlyRequiresRemote(t *testing.T) {
	m := New(nil, nil)
	_, err := m.Malloc(16, 8, PermRead|PermWrite, ProcessOnly, false)
	assert.ErrorIs(t, err, ErrRemoteRequired)
}

func TestByteOrderFallsBackToTarget(t *testing.T) {
	tgt := target.Target(fakeTarget{order: target.BigEndian, addrSize: 4})
	m := New(&tgt, nil)
	assert.Equal(t, target.BigEndian, m.ByteOrder())
	assert.Equal(t, uint32(4), m.AddressByteSize())
}

func TestByteOrderInvalidWithNeitherCollaborator(t *testing.T) {
	m := New(nil, nil)
	assert.Equal(t, target.ByteOrderInvalid, m.ByteOrder())
}

type fakeTarget struct {
	order    target.ByteOrder
	addrSize uint32
	data     map[uint64][]byte
}

func (f fakeTarget) Arch() target.Arch           { return target.ArchX86_64 }
func (f fakeTarget) ByteOrder() target.ByteOrder { return f.order }
func (f fakeTarget) AddressByteSize() uint32     { return f.addrSize }
func (f fakeTarget) ReadMemory(addr uint64, out []byte) error {
	for start, buf := range f.data {
		if addr >= start && addr+uint64(len(out)) <= start+uint64(len(buf)) {
			copy(out, buf[addr-start:])
			return nil
		}
	}
	return process.ErrUnknownAddress
}
