package control_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-buf/api"
	"github.com/momentics/hioload-buf/control"
	"github.com/momentics/hioload-buf/fake"
	"github.com/momentics/hioload-buf/pool"
)

func newRegistry(t *testing.T) *pool.Registry {
	t.Helper()
	r, err := pool.NewRegistry(
		pool.WithLogger(slog.New(slog.DiscardHandler)),
		pool.WithAllocatorFactory(func(kind api.BackingKind) (api.Allocator, error) {
			return fake.NewAllocator(kind), nil
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestConfigStoreNotifiesWithSnapshot(t *testing.T) {
	cs := control.NewConfigStore()
	var got []map[string]any
	cs.OnReload(func(cfg map[string]any) { got = append(got, cfg) })

	cs.SetConfig(map[string]any{"a": 1})
	cs.SetConfig(map[string]any{"b": 2})
	require.Len(t, got, 2)
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, got[1])
	assert.Equal(t, got[1], cs.GetSnapshot())
}

func TestConfigStoreListenerAddedDuringReload(t *testing.T) {
	cs := control.NewConfigStore()
	calls := 0
	late := 0
	cs.OnReload(func(map[string]any) {
		calls++
		if calls == 1 {
			cs.OnReload(func(map[string]any) { late++ })
		}
	})

	cs.SetConfig(map[string]any{"k": 1})
	assert.Equal(t, 1, calls)
	assert.Zero(t, late, "listeners see the set registered when the change was made")

	cs.SetConfig(map[string]any{"k": 2})
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, late)
}

func TestBindGroupLimits(t *testing.T) {
	r := newRegistry(t)
	g, err := r.NewGroup("decoder", "", api.ModeCountLimited, api.KindHeap, pool.WithLimitCount(4))
	require.NoError(t, err)

	cs := control.NewConfigStore()
	control.BindGroupLimits(cs, g, slog.New(slog.DiscardHandler))
	countKey, sizeKey := control.LimitKeys("decoder")
	assert.Equal(t, "bufpool.decoder.limit_count", countKey)

	cs.SetConfig(map[string]any{countKey: 1})
	assert.Equal(t, 1, g.Stats().LimitCount)
	_, err = g.Create("f", "", api.BufferInfo{Size: 8})
	require.NoError(t, err)
	_, err = g.Create("f", "", api.BufferInfo{Size: 8})
	assert.ErrorIs(t, err, api.ErrLimitExceeded)

	cs.SetConfig(map[string]any{countKey: 0})
	assert.Equal(t, 1, g.Stats().LimitCount, "invalid limit is rejected")
	cs.SetConfig(map[string]any{countKey: "many"})
	assert.Equal(t, 1, g.Stats().LimitCount)

	cs.SetConfig(map[string]any{countKey: 3, sizeKey: int64(1 << 10)})
	st := g.Stats()
	assert.Equal(t, 3, st.LimitCount)
	assert.Equal(t, int64(1<<10), st.LimitSize)
}

func TestPoolProbes(t *testing.T) {
	r := newRegistry(t)
	g, err := r.NewGroup("probe", "", api.ModeUnlimited, api.KindHeap)
	require.NoError(t, err)
	_, err = g.Get(64)
	require.NoError(t, err)

	dp := control.NewDebugProbes()
	control.RegisterPoolProbes(dp, r)
	control.RegisterPlatformProbes(dp)
	state := dp.DumpState()

	stats, ok := state["bufpool."+r.ID()+".groups"].([]pool.GroupStats)
	require.True(t, ok)
	require.Len(t, stats, 1)
	assert.Equal(t, "probe", stats[0].Tag)
	assert.Equal(t, 1, stats[0].CountUsed)
	assert.Contains(t, state["bufpool."+r.ID()+".dump"], `group 1 tag "probe"`)
	assert.Positive(t, state["platform.page_size"])
	assert.Positive(t, state["platform.cpus"])
}
