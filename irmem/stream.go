package irmem

import (
	"math"

	"github.com/wnxd/irmem/encoding"
)

// mapStream adapts a MemoryMap address into an encoding.Stream, the same
// role the teacher's internal/debugger.pointerStream plays over an
// emulator.Pointer: it is how ImportValue/WriteValue/ExtractValue drive
// the structured encoder/decoder over addresses in the map instead of
// hand-rolled field-by-field reads and writes.
type mapStream struct {
	m      *MemoryMap
	addr   uint64
	size   int
	policy AllocationPolicy
}

// Stream returns an encoding.Stream reading and writing through m starting
// at addr. size is the pointer width streamed pointer fields use (pass
// int(m.AddressByteSize())) and policy controls allocations made by
// WriteStream when the encoder needs to materialize an out-of-line block
// (e.g. a string or nested struct behind a pointer field).
func (m *MemoryMap) Stream(addr uint64, size int, policy AllocationPolicy) encoding.Stream {
	return &mapStream{m, addr, size, policy}
}

func (ms *mapStream) BlockSize() int {
	return ms.size
}

func (ms *mapStream) Offset() uint64 {
	return ms.addr
}

func (ms *mapStream) Skip(n int) error {
	ms.addr += uint64(n)
	return nil
}

func (ms *mapStream) Read(b []byte) (int, error) {
	if err := ms.m.ReadMemory(b, ms.addr); err != nil {
		return 0, err
	}
	ms.addr += uint64(len(b))
	return len(b), nil
}

func (ms *mapStream) ReadFloat() (float32, error) {
	var buf [4]byte
	if _, err := ms.Read(buf[:]); err != nil {
		return 0, err
	}
	order, err := binaryOrder(ms.m.ByteOrder())
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(order.Uint32(buf[:])), nil
}

func (ms *mapStream) ReadDouble() (float64, error) {
	var buf [8]byte
	if _, err := ms.Read(buf[:]); err != nil {
		return 0, err
	}
	order, err := binaryOrder(ms.m.ByteOrder())
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(order.Uint64(buf[:])), nil
}

// ReadString reads a NUL-terminated string one byte at a time. There is no
// bulk "read until NUL" primitive on MemoryMap: allocations are bounds
// checked, so growing a buffer a byte at a time is the only way to find
// the terminator without already knowing the length.
func (ms *mapStream) ReadString() (string, error) {
	var b []byte
	var one [1]byte
	for {
		if err := ms.m.ReadMemory(one[:], ms.addr); err != nil {
			return "", err
		}
		ms.addr++
		if one[0] == 0 {
			break
		}
		b = append(b, one[0])
	}
	return string(b), nil
}

func (ms *mapStream) ReadStream() (encoding.Stream, error) {
	addr, err := ms.m.ReadPointerFromMemory(ms.addr)
	if err != nil {
		return nil, err
	}
	ms.addr += uint64(ms.size)
	return ms.m.Stream(addr, ms.size, ms.policy), nil
}

func (ms *mapStream) Write(b []byte) (int, error) {
	if err := ms.m.WriteMemory(ms.addr, b); err != nil {
		return 0, err
	}
	ms.addr += uint64(len(b))
	return len(b), nil
}

func (ms *mapStream) WriteFloat(f float32) error {
	order, err := binaryOrder(ms.m.ByteOrder())
	if err != nil {
		return err
	}
	var buf [4]byte
	order.PutUint32(buf[:], math.Float32bits(f))
	_, err = ms.Write(buf[:])
	return err
}

func (ms *mapStream) WriteDouble(d float64) error {
	order, err := binaryOrder(ms.m.ByteOrder())
	if err != nil {
		return err
	}
	var buf [8]byte
	order.PutUint64(buf[:], math.Float64bits(d))
	_, err = ms.Write(buf[:])
	return err
}

func (ms *mapStream) WriteString(s string) error {
	if _, err := ms.Write([]byte(s)); err != nil {
		return err
	}
	_, err := ms.Write([]byte{0})
	return err
}

func (ms *mapStream) WriteStream(size int) (encoding.Stream, error) {
	addr, err := ms.m.Malloc(uint64(size), uint64(ms.size), PermRead|PermWrite, ms.policy, true)
	if err != nil {
		return nil, err
	}
	if err := ms.m.WritePointerToMemory(ms.addr, addr); err != nil {
		return nil, err
	}
	ms.addr += uint64(ms.size)
	return ms.m.Stream(addr, ms.size, ms.policy), nil
}
