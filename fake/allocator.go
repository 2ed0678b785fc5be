// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

// Package fake provides test doubles for hioload-buf contracts.
package fake

import (
	"sync"

	"github.com/momentics/hioload-buf/api"
)

// Allocator is an in-memory api.Allocator that records every call and can
// be told to fail. Frees of unknown or already freed regions are reported
// as errors so tests catch double releases.
type Allocator struct {
	kind api.BackingKind

	mu       sync.Mutex
	live     map[*byte]int
	failNext int
	allocs   int
	frees    int
	adopts   int
	closed   bool
}

// NewAllocator returns a fake backend reporting kind.
func NewAllocator(kind api.BackingKind) *Allocator {
	return &Allocator{kind: kind, live: make(map[*byte]int)}
}

// FailNext makes the next n Alloc calls fail.
func (a *Allocator) FailNext(n int) {
	a.mu.Lock()
	a.failNext = n
	a.mu.Unlock()
}

func (a *Allocator) Kind() api.BackingKind { return a.kind }

func (a *Allocator) Alloc(size int) (api.Handle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failNext > 0 {
		a.failNext--
		return api.Handle{}, api.Errorf(api.ErrCodeAllocationFailed, "fake: out of memory")
	}
	if size <= 0 {
		return api.Handle{}, api.Errorf(api.ErrCodeInvalidArgument, "fake: bad size %d", size)
	}
	data := make([]byte, size)
	a.live[&data[0]] = size
	a.allocs++
	return api.NewHandle(data, a.kind), nil
}

func (a *Allocator) Free(h api.Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(h.Data) == 0 {
		return api.Errorf(api.ErrCodeInvalidArgument, "fake: free of empty handle")
	}
	key := &h.Data[0]
	if _, ok := a.live[key]; !ok {
		return api.Errorf(api.ErrCodeInvalidState, "fake: free of unknown region")
	}
	delete(a.live, key)
	a.frees++
	return nil
}

func (a *Allocator) Adopt(h api.Handle) (api.Handle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !h.Valid() {
		return api.Handle{}, api.Errorf(api.ErrCodeInvalidArgument, "fake: invalid handle")
	}
	a.adopts++
	return h, nil
}

func (a *Allocator) Close() error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	return nil
}

// Live returns the number of allocated, not yet freed regions.
func (a *Allocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

// Counts returns how many Alloc, Free and Adopt calls succeeded.
func (a *Allocator) Counts() (allocs, frees, adopts int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocs, a.frees, a.adopts
}

// Closed reports whether Close was called.
func (a *Allocator) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

// IsLive reports whether the region behind h is still allocated.
func (a *Allocator) IsLive(h api.Handle) bool {
	if len(h.Data) == 0 {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.live[&h.Data[0]]
	return ok
}

var _ api.Allocator = (*Allocator)(nil)
