//go:build linux

// File: alloc/memfd_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// memfd-backed shared mappings. Each region owns a descriptor that can be
// exported to a DMA-capable device or a peer process; its size is sealed.

package alloc

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-buf/api"
)

// Memfd allocates one sealed memfd per region.
type Memfd struct {
	name     string
	pageSize int
}

// NewMemfd creates a memfd backend; name labels the descriptors.
func NewMemfd(name string) (*Memfd, error) {
	return &Memfd{name: name, pageSize: unix.Getpagesize()}, nil
}

func newMemfd(name string) (api.Allocator, error) { return NewMemfd(name) }

func (m *Memfd) Kind() api.BackingKind { return api.KindMemfd }

func (m *Memfd) Alloc(size int) (api.Handle, error) {
	if size <= 0 {
		return api.Handle{}, api.Errorf(api.ErrCodeInvalidArgument, "memfd alloc: bad size %d", size)
	}
	length := roundUp(size, m.pageSize)
	fd, err := unix.MemfdCreate(m.name, unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err != nil {
		return api.Handle{}, api.Errorf(api.ErrCodeAllocationFailed, "memfd_create").Wrap(err)
	}
	fail := func(op string, err error) (api.Handle, error) {
		unix.Close(fd)
		return api.Handle{}, api.Errorf(api.ErrCodeAllocationFailed, "memfd %s %d bytes", op, length).Wrap(err)
	}
	if err := unix.Ftruncate(fd, int64(length)); err != nil {
		return fail("truncate", err)
	}
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_ADD_SEALS, unix.F_SEAL_SHRINK|unix.F_SEAL_GROW); err != nil {
		return fail("seal", err)
	}
	data, err := unix.Mmap(fd, 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fail("mmap", err)
	}
	return api.Handle{Data: data[:size], Fd: fd, Size: size, Kind: api.KindMemfd}, nil
}

func (m *Memfd) Free(h api.Handle) error {
	var err error
	if h.Data != nil {
		err = unix.Munmap(h.Data[:cap(h.Data)])
	}
	if h.Fd >= 0 {
		if cerr := unix.Close(h.Fd); err == nil {
			err = cerr
		}
	}
	return err
}

// Adopt accepts a caller-owned descriptor, mapped or not.
func (m *Memfd) Adopt(h api.Handle) (api.Handle, error) {
	if h.Fd < 0 || h.Size <= 0 {
		return api.Handle{}, api.Errorf(api.ErrCodeInvalidArgument,
			"memfd backend needs a descriptor to adopt").WithContext("fd", h.Fd)
	}
	h.Kind = api.KindMemfd
	return h, nil
}

func (m *Memfd) Close() error { return nil }

var _ api.Allocator = (*Memfd)(nil)
