//go:build !linux

// File: alloc/alloc_stub.go
// Author: momentics <momentics@gmail.com>
//
// Mapping backends are Linux-only for now.

package alloc

import "github.com/momentics/hioload-buf/api"

func newMmap() (api.Allocator, error) {
	return nil, api.Errorf(api.ErrCodeNotSupported, "mmap backend requires linux")
}

func newMemfd(string) (api.Allocator, error) {
	return nil, api.Errorf(api.ErrCodeNotSupported, "memfd backend requires linux")
}
