package pool_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-buf/api"
	"github.com/momentics/hioload-buf/pool"
)

func TestFacadeOnDefaultRegistry(t *testing.T) {
	g, err := pool.GroupInit("facade", "", api.ModeCountLimited, api.KindHeap, pool.WithLimitCount(2))
	require.NoError(t, err)
	assert.Contains(t, g.Caller(), "TestFacadeOnDefaultRegistry")

	b, err := pool.GetUnused(g, 32)
	require.NoError(t, err)
	require.NoError(t, pool.RefInc(b))
	require.NoError(t, pool.RefInc(b))
	require.NoError(t, pool.RefDec(b))
	require.NoError(t, pool.RefDec(b))
	assert.ErrorIs(t, pool.RefDec(b), api.ErrInvalidState)
	require.NoError(t, pool.Destroy(b))

	lb, err := pool.Create("fallback", "", 0, api.BufferInfo{Size: 16})
	require.NoError(t, err)
	legacy, err := pool.LegacyGroup()
	require.NoError(t, err)
	assert.Same(t, legacy, lb.Group())
	u, err := pool.GetUnused(nil, 8)
	require.NoError(t, err)
	assert.Same(t, lb, u)

	var out bytes.Buffer
	require.NoError(t, pool.Dump(&out))
	assert.Contains(t, out.String(), `tag "facade"`)

	require.NoError(t, pool.GroupReset(g))
	require.NoError(t, pool.GroupDeinit(g))
	require.NoError(t, pool.Destroy(lb))
}

func TestFacadeRejectsNil(t *testing.T) {
	assert.ErrorIs(t, pool.Destroy(nil), api.ErrInvalidArgument)
	assert.ErrorIs(t, pool.RefInc(nil), api.ErrInvalidArgument)
	assert.ErrorIs(t, pool.RefDec(nil), api.ErrInvalidArgument)
	assert.ErrorIs(t, pool.GroupReset(nil), api.ErrInvalidArgument)
	assert.ErrorIs(t, pool.GroupDeinit(nil), api.ErrInvalidArgument)
}
