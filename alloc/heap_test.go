package alloc_test

import (
	"testing"

	"github.com/asciimoth/bufpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-buf/alloc"
	"github.com/momentics/hioload-buf/api"
)

func TestHeapWithBytePool(t *testing.T) {
	bp := bufpool.NewTestDebugPool(t)
	bp.OnLog = nil
	defer bp.Close()

	h := alloc.NewHeap(bp)
	assert.Equal(t, api.KindHeap, h.Kind())

	hd, err := h.Alloc(300)
	require.NoError(t, err)
	assert.Equal(t, 300, hd.Size)
	assert.Len(t, hd.Data, 300)
	assert.Equal(t, api.NoFd, hd.Fd)
	assert.True(t, hd.Valid())
	for _, c := range hd.Data {
		require.Zero(t, c)
	}
	hd.Data[0] = 0xff

	require.NoError(t, h.Free(hd))

	again, err := h.Alloc(300)
	require.NoError(t, err)
	assert.Zero(t, again.Data[0], "recycled regions are cleared")
	require.NoError(t, h.Free(again))
	require.NoError(t, h.Close())
}

func TestHeapWithoutPool(t *testing.T) {
	h := alloc.NewHeap(nil)
	hd, err := h.Alloc(16)
	require.NoError(t, err)
	require.NoError(t, h.Free(hd))

	_, err = h.Alloc(0)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	assert.ErrorIs(t, h.Free(api.Handle{}), api.ErrInvalidArgument)
}

func TestHeapAdopt(t *testing.T) {
	h := alloc.NewHeap(nil)
	region := make([]byte, 32)
	got, err := h.Adopt(api.Handle{Data: region, Fd: api.NoFd, Size: 32, Kind: api.KindMmap})
	require.NoError(t, err)
	assert.Equal(t, api.KindHeap, got.Kind)
	assert.Equal(t, &region[0], &got.Data[0])

	_, err = h.Adopt(api.Handle{Fd: 3, Size: 32})
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}

func TestNewUnknownKind(t *testing.T) {
	_, err := alloc.New(api.BackingKind(99))
	assert.ErrorIs(t, err, api.ErrNotSupported)

	a, err := alloc.New(api.KindHeap)
	require.NoError(t, err)
	assert.Equal(t, api.KindHeap, a.Kind())
}
