// File: alloc/heap.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Go heap backend. Regions are plain byte slices, optionally recycled
// through a bufpool.Pool shared with other subsystems.

package alloc

import (
	"github.com/asciimoth/bufpool"

	"github.com/momentics/hioload-buf/api"
)

// Heap is the portable backend used by the legacy group.
type Heap struct {
	bytes bufpool.Pool
}

// NewHeap creates a heap backend. A nil pool allocates every region fresh
// and leaves freed regions to the GC.
func NewHeap(p bufpool.Pool) *Heap {
	return &Heap{bytes: p}
}

func (h *Heap) Kind() api.BackingKind { return api.KindHeap }

func (h *Heap) Alloc(size int) (api.Handle, error) {
	if size <= 0 {
		return api.Handle{}, api.Errorf(api.ErrCodeInvalidArgument, "heap alloc: bad size %d", size)
	}
	data := bufpool.GetBuffer(h.bytes, size)
	clear(data)
	return api.NewHandle(data[:size], api.KindHeap), nil
}

func (h *Heap) Free(hd api.Handle) error {
	if hd.Data == nil {
		return api.Errorf(api.ErrCodeInvalidArgument, "heap free: empty handle")
	}
	bufpool.PutBuffer(h.bytes, hd.Data)
	return nil
}

func (h *Heap) Adopt(hd api.Handle) (api.Handle, error) {
	return adoptSlice(hd, api.KindHeap)
}

func (h *Heap) Close() error { return nil }

var _ api.Allocator = (*Heap)(nil)
