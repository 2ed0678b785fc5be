//go:build linux

// File: alloc/mmap_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Anonymous private mappings, page aligned. Frame stores that must not
// live on the Go heap (GC scanning, huge frames) use this backend.

package alloc

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-buf/api"
)

// Mmap maps each region separately so it can be returned to the OS on Free.
type Mmap struct {
	pageSize int
}

// NewMmap creates an anonymous mapping backend.
func NewMmap() (*Mmap, error) {
	return &Mmap{pageSize: unix.Getpagesize()}, nil
}

func newMmap() (api.Allocator, error) { return NewMmap() }

func (m *Mmap) Kind() api.BackingKind { return api.KindMmap }

func (m *Mmap) Alloc(size int) (api.Handle, error) {
	if size <= 0 {
		return api.Handle{}, api.Errorf(api.ErrCodeInvalidArgument, "mmap alloc: bad size %d", size)
	}
	length := roundUp(size, m.pageSize)
	data, err := unix.Mmap(-1, 0, length,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return api.Handle{}, api.Errorf(api.ErrCodeAllocationFailed, "mmap %d bytes", length).Wrap(err)
	}
	return api.Handle{Data: data[:size], Fd: api.NoFd, Size: size, Kind: api.KindMmap}, nil
}

func (m *Mmap) Free(h api.Handle) error {
	if h.Data == nil {
		return api.Errorf(api.ErrCodeInvalidArgument, "mmap free: empty handle")
	}
	// unix.Munmap looks the mapping up by its full extent.
	return unix.Munmap(h.Data[:cap(h.Data)])
}

func (m *Mmap) Adopt(h api.Handle) (api.Handle, error) {
	return adoptSlice(h, api.KindMmap)
}

func (m *Mmap) Close() error { return nil }

var _ api.Allocator = (*Mmap)(nil)
