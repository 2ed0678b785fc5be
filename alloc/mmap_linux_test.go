//go:build linux

package alloc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-buf/alloc"
	"github.com/momentics/hioload-buf/api"
)

func TestMmapAllocFree(t *testing.T) {
	a, err := alloc.New(api.KindMmap)
	require.NoError(t, err)
	assert.Equal(t, api.KindMmap, a.Kind())

	h, err := a.Alloc(100)
	require.NoError(t, err)
	assert.Equal(t, 100, h.Size)
	assert.Len(t, h.Data, 100)
	assert.Equal(t, unix.Getpagesize(), cap(h.Data), "mapping is page rounded")
	assert.Equal(t, api.NoFd, h.Fd)
	copy(h.Data, "payload")

	require.NoError(t, a.Free(h))
	require.NoError(t, a.Close())
}

func TestMemfdAllocFree(t *testing.T) {
	a, err := alloc.New(api.KindMemfd, alloc.WithMemfdName("alloc-test"))
	require.NoError(t, err)

	h, err := a.Alloc(4096 + 1)
	require.NoError(t, err)
	require.GreaterOrEqual(t, h.Fd, 0)
	assert.Equal(t, api.KindMemfd, h.Kind)

	// writes through the mapping are visible through the descriptor
	copy(h.Data, "shared")
	peek := make([]byte, 6)
	_, err = unix.Pread(h.Fd, peek, 0)
	require.NoError(t, err)
	assert.Equal(t, "shared", string(peek))

	// size is sealed
	assert.Error(t, unix.Ftruncate(h.Fd, 1))

	require.NoError(t, a.Free(h))
}

func TestMemfdAdopt(t *testing.T) {
	a, err := alloc.NewMemfd("adopt")
	require.NoError(t, err)

	_, err = a.Adopt(api.NewHandle(make([]byte, 8), api.KindHeap))
	assert.ErrorIs(t, err, api.ErrInvalidArgument)

	fd, err := unix.MemfdCreate("external", unix.MFD_CLOEXEC)
	require.NoError(t, err)
	defer unix.Close(fd)
	h, err := a.Adopt(api.Handle{Fd: fd, Size: 4096})
	require.NoError(t, err)
	assert.Equal(t, fd, h.Fd)
	assert.Nil(t, h.Data)
}
