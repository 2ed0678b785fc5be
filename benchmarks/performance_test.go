// Package benchmarks
// Author: momentics <momentics@gmail.com>
//
// Performance benchmarks for hioload-buf components.

package benchmarks

import (
	"log/slog"
	"testing"

	"github.com/momentics/hioload-buf/alloc"
	"github.com/momentics/hioload-buf/api"
	"github.com/momentics/hioload-buf/pool"
)

func newRegistry(b *testing.B) *pool.Registry {
	r, err := pool.NewRegistry(pool.WithLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = r.Close() })
	return r
}

// BenchmarkGroupGetRelease measures reuse of a warm unused buffer.
func BenchmarkGroupGetRelease(b *testing.B) {
	g, err := newRegistry(b).NewGroup("bench", "bench", api.ModeUnlimited, api.KindHeap)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			buf, err := g.Get(4096)
			if err != nil {
				b.Error(err)
				return
			}
			_ = buf.RefDec()
		}
	})
}

// BenchmarkSharedRefCount measures RefInc/RefDec contention on one buffer.
func BenchmarkSharedRefCount(b *testing.B) {
	g, err := newRegistry(b).NewGroup("bench", "bench", api.ModeUnlimited, api.KindHeap)
	if err != nil {
		b.Fatal(err)
	}
	buf, err := g.Get(4096)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = buf.RefInc()
			_ = buf.RefDec()
		}
	})
}

// BenchmarkFirstFitScan measures GetUnused over a long unused list where
// only the last buffer fits.
func BenchmarkFirstFitScan(b *testing.B) {
	g, err := newRegistry(b).NewGroup("bench", "bench", api.ModeUnlimited, api.KindHeap)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < 256; i++ {
		if _, err := g.Create("small", "bench", api.BufferInfo{Size: 64}); err != nil {
			b.Fatal(err)
		}
	}
	if _, err := g.Create("large", "bench", api.BufferInfo{Size: 1 << 16}); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := g.GetUnused(1 << 16); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkHeapAlloc measures the raw heap backend.
func BenchmarkHeapAlloc(b *testing.B) {
	h := alloc.NewHeap(nil)
	for i := 0; i < b.N; i++ {
		hd, err := h.Alloc(4096)
		if err != nil {
			b.Fatal(err)
		}
		_ = h.Free(hd)
	}
}
