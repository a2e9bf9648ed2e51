package irmem

import "io"

// shadow is a host-side byte buffer mirroring a remote region. Adapted
// from the teacher's internal/debugger.Buffer, but fixed-size: unlike the
// teacher's buffer (which grows on WriteAt past its end, serving a
// general-purpose scratch heap), a shadow is always pre-sized to exactly
// the allocation's rounded-up size and never grows — a WriteAt past its
// end fails with io.ErrShortBuffer and a ReadAt past its end reports
// io.EOF.
type shadow []byte

func newShadow(size uint64) shadow {
	return make(shadow, size)
}

func (s shadow) ReadAt(b []byte, off int64) (n int, err error) {
	if off < 0 || int64(len(s)) < off {
		return 0, io.EOF
	}
	n = copy(b, s[off:])
	if n < len(b) {
		err = io.EOF
	}
	return n, err
}

func (s shadow) WriteAt(b []byte, off int64) (n int, err error) {
	if off < 0 || int64(len(s)) < off+int64(len(b)) {
		return 0, io.ErrShortBuffer
	}
	return copy(s[off:], b), nil
}

// Allocation is one live region tracked by the map.
type Allocation struct {
	rawStart     uint64
	alignedStart uint64
	size         uint64
	permissions  Permissions
	alignment    uint64
	policy       AllocationPolicy
	shadow       shadow
	leak         bool
}

// AlignedStart is the user-visible address of the allocation; it is the
// key this allocation is stored under in the map's index.
func (a *Allocation) AlignedStart() uint64 { return a.alignedStart }

// RawStart is the unaligned address the backing allocator actually
// returned.
func (a *Allocation) RawStart() uint64 { return a.rawStart }

// Size is the rounded-up allocation size.
func (a *Allocation) Size() uint64 { return a.size }

// Permissions is the advisory bitmask passed to the remote allocator.
func (a *Allocation) Permissions() Permissions { return a.permissions }

// Alignment is the power-of-two alignment the allocation was made with.
func (a *Allocation) Alignment() uint64 { return a.alignment }

// Policy is the allocation's effective policy, possibly downgraded from
// Mirror to HostOnly at creation time.
func (a *Allocation) Policy() AllocationPolicy { return a.policy }

// Leaked reports whether the allocation will survive Shutdown without
// being freed.
func (a *Allocation) Leaked() bool { return a.leak }

// end is the exclusive end of the allocation's half-open interval.
func (a *Allocation) end() uint64 { return a.alignedStart + a.size }

func newAllocation(rawStart, alignedStart, size uint64, perm Permissions, alignment uint64, policy AllocationPolicy) *Allocation {
	a := &Allocation{
		rawStart:     rawStart,
		alignedStart: alignedStart,
		size:         size,
		permissions:  perm,
		alignment:    alignment,
		policy:       policy,
	}
	switch policy {
	case HostOnly, Mirror:
		a.shadow = newShadow(size)
	case ProcessOnly:
	}
	return a
}
