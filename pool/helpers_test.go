package pool_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-buf/api"
	"github.com/momentics/hioload-buf/fake"
	"github.com/momentics/hioload-buf/pool"
)

func newRegistry(t *testing.T, opts ...pool.Option) *pool.Registry {
	t.Helper()
	opts = append([]pool.Option{
		pool.WithLogger(slog.New(slog.DiscardHandler)),
		pool.WithAllocatorFactory(func(kind api.BackingKind) (api.Allocator, error) {
			return fake.NewAllocator(kind), nil
		}),
	}, opts...)
	r, err := pool.NewRegistry(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// newGroup returns a group over its own fake backend so tests can inspect
// allocator calls.
func newGroup(t *testing.T, r *pool.Registry, mode api.Mode, opts ...pool.GroupOption) (*pool.Group, *fake.Allocator) {
	t.Helper()
	fa := fake.NewAllocator(api.KindHeap)
	g, err := r.NewGroup(t.Name(), "", mode, api.KindHeap, append(opts, pool.WithAllocator(fa))...)
	require.NoError(t, err)
	return g, fa
}

func checkInvariants(t *testing.T, g *pool.Group) {
	t.Helper()
	require.NoError(t, pool.CheckInvariants(g))
}
