package irmem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wnxd/irmem/irmem"
	"github.com/wnxd/irmem/process"
	"github.com/wnxd/irmem/target"
)

type point struct {
	X, Y int32
}

func TestImportAndExtractValueRoundTrip(t *testing.T) {
	proc := process.NewMockProcess(0x6000, target.LittleEndian, 8)
	m := irmem.New(nil, asProcess(proc), irmem.WithDefaultPolicy(irmem.Mirror))

	want := point{X: 3, Y: -7}
	addrs, err := m.ImportValue(want)
	require.NoError(t, err)
	require.NotEmpty(t, addrs)

	var got point
	require.NoError(t, m.ExtractValue(addrs[0], &got))
	assert.Equal(t, want, got)
}

func TestWriteValueAtExistingAddress(t *testing.T) {
	proc := process.NewMockProcess(0x7000, target.LittleEndian, 8)
	m := irmem.New(nil, asProcess(proc), irmem.WithDefaultPolicy(irmem.Mirror))

	addr, err := m.Malloc(8, 8, irmem.PermRead|irmem.PermWrite, irmem.Mirror, true)
	require.NoError(t, err)

	want := point{X: 11, Y: 22}
	_, err = m.WriteValue(addr, want)
	require.NoError(t, err)

	var got point
	require.NoError(t, m.ExtractValue(addr, &got))
	assert.Equal(t, want, got)
}
