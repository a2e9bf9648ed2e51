package irmem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wnxd/irmem/irmem"
	"github.com/wnxd/irmem/process"
	"github.com/wnxd/irmem/target"
)

func TestHostOnlyReadWriteRoundTrip(t *testing.T) {
	m := irmem.New(nil, nil)
	addr, err := m.Malloc(32, 8, irmem.PermRead|irmem.PermWrite, irmem.HostOnly, true)
	require.NoError(t, err)

	want := []byte("deadbeefcafebabe")
	require.NoError(t, m.WriteMemory(addr, want))

	got := make([]byte, len(want))
	require.NoError(t, m.ReadMemory(got, addr))
	assert.Equal(t, want, got)
}

func TestMirrorRoundTripsThroughRemote(t *testing.T) {
	proc := process.NewMockProcess(0x1000, target.LittleEndian, 8)
	m := irmem.New(nil, asProcess(proc))

	addr, err := m.Malloc(16, 8, irmem.PermRead|irmem.PermWrite, irmem.Mirror, true)
	require.NoError(t, err)

	require.NoError(t, m.WriteMemory(addr, []byte("mirrored")))

	got := make([]byte, 8)
	require.NoError(t, proc.Read(addr, got))
	assert.Equal(t, []byte("mirrored"), got)

	readBack := make([]byte, 8)
	require.NoError(t, m.ReadMemory(readBack, addr))
	assert.Equal(t, []byte("mirrored"), readBack)
}

func TestFreeSpaceIsMonotonicWithoutRemote(t *testing.T) {
	m := irmem.New(nil, nil)
	var last uint64
	for i := 0; i < 8; i++ {
		addr, err := m.Malloc(64, 8, irmem.PermRead|irmem.PermWrite, irmem.HostOnly, false)
		require.NoError(t, err)
		if i > 0 {
			assert.Greater(t, addr, last)
		}
		last = addr
	}
}

func TestShutdownFreesNonLeakedAllocations(t *testing.T) {
	proc := process.NewMockProcess(0x2000, target.LittleEndian, 8)
	m := irmem.New(nil, asProcess(proc))

	keep, err := m.Malloc(16, 8, irmem.PermRead|irmem.PermWrite, irmem.ProcessOnly, false)
	require.NoError(t, err)
	require.NoError(t, m.Leak(keep))

	gone, err := m.Malloc(16, 8, irmem.PermRead|irmem.PermWrite, irmem.ProcessOnly, false)
	require.NoError(t, err)

	m.Shutdown()

	assert.NotContains(t, proc.Deallocated, keep)
	assert.Contains(t, proc.Deallocated, gone)
}

func TestLeakIsIdempotent(t *testing.T) {
	m := irmem.New(nil, nil)
	addr, err := m.Malloc(16, 8, irmem.PermRead|irmem.PermWrite, irmem.HostOnly, false)
	require.NoError(t, err)

	require.NoError(t, m.Leak(addr))
	require.NoError(t, m.Leak(addr))
}

func TestScalarRoundTripAllWidths(t *testing.T) {
	for _, order := range []target.ByteOrder{target.LittleEndian, target.BigEndian} {
		for _, size := range []uint32{1, 2, 4, 8} {
			proc := process.NewMockProcess(0x3000, order, 8)
			m := irmem.New(nil, asProcess(proc))

			addr, err := m.Malloc(8, 8, irmem.PermRead|irmem.PermWrite, irmem.Mirror, true)
			require.NoError(t, err)

			var want uint64 = 0x0102030405060708 & (uint64(1)<<(size*8) - 1)
			if size == 8 {
				want = 0x0102030405060708
			}
			require.NoError(t, m.WriteScalarToMemory(addr, want, size))
			got, err := m.ReadScalarFromMemory(addr, size)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	}
}

func TestPointerRoundTrip(t *testing.T) {
	for _, addrSize := range []uint32{4, 8} {
		proc := process.NewMockProcess(0x4000, target.LittleEndian, addrSize)
		m := irmem.New(nil, asProcess(proc))

		addr, err := m.Malloc(8, 8, irmem.PermRead|irmem.PermWrite, irmem.Mirror, true)
		require.NoError(t, err)

		require.NoError(t, m.WritePointerToMemory(addr, 0xdeadbeef))
		got, err := m.ReadPointerFromMemory(addr)
		require.NoError(t, err)
		assert.Equal(t, uint64(0xdeadbeef), got)
	}
}

func TestGetMemoryDataHostOnly(t *testing.T) {
	m := irmem.New(nil, nil)
	addr, err := m.Malloc(16, 8, irmem.PermRead|irmem.PermWrite, irmem.HostOnly, true)
	require.NoError(t, err)
	require.NoError(t, m.WriteMemory(addr, []byte("hello")))

	view, err := m.GetMemoryData(addr, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), view.Bytes)
}

func TestGetMemoryDataProcessOnlyIsUnavailable(t *testing.T) {
	proc := process.NewMockProcess(0x5000, target.LittleEndian, 8)
	m := irmem.New(nil, asProcess(proc))

	addr, err := m.Malloc(16, 8, irmem.PermRead|irmem.PermWrite, irmem.ProcessOnly, false)
	require.NoError(t, err)

	_, err = m.GetMemoryData(addr, 4)
	assert.ErrorIs(t, err, irmem.ErrHostUnavailable)
}

func TestIntersectsAllocation(t *testing.T) {
	m := irmem.New(nil, nil)
	addr, err := m.Malloc(32, 8, irmem.PermRead|irmem.PermWrite, irmem.HostOnly, false)
	require.NoError(t, err)

	assert.True(t, m.IntersectsAllocation(addr, 8))
	assert.True(t, m.IntersectsAllocation(addr+16, 8))
	assert.False(t, m.IntersectsAllocation(addr+1000, 8))
}

func asProcess(p process.Process) *process.Process { return &p }
