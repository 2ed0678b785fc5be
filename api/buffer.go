// Package api
// Author: momentics
//
// Buffer descriptors shared by the pool and its allocator backends.
//
// A region may be Go heap memory, an anonymous mapping or a memfd-backed
// mapping that can be handed to a device or another process by descriptor.
// The pool never copies region contents.

package api

import "fmt"

// BackingKind identifies the allocator backend that owns a region.
type BackingKind int

const (
	KindHeap BackingKind = iota
	KindMmap
	KindMemfd
)

func (k BackingKind) String() string {
	switch k {
	case KindHeap:
		return "heap"
	case KindMmap:
		return "mmap"
	case KindMemfd:
		return "memfd"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// NoFd marks a handle that carries no file descriptor.
const NoFd = -1

// Handle describes one physical region: address, descriptor and size.
type Handle struct {
	Data []byte
	Fd   int
	Size int
	Kind BackingKind
}

// NewHandle wraps a byte slice that has no descriptor.
func NewHandle(data []byte, kind BackingKind) Handle {
	return Handle{Data: data, Fd: NoFd, Size: len(data), Kind: kind}
}

// Valid reports whether the handle points at a usable region.
func (h Handle) Valid() bool {
	if h.Size <= 0 {
		return false
	}
	if h.Data != nil {
		return len(h.Data) >= h.Size
	}
	return h.Fd >= 0
}

// InfoFlags qualifies a BufferInfo.
type InfoFlags uint32

const (
	// FlagExternal marks a region owned by the caller. The pool only
	// registers it and never frees it through the backend.
	FlagExternal InfoFlags = 1 << iota
)

// BufferInfo is the request passed to Create.
type BufferInfo struct {
	Size   int
	Handle *Handle // set to adopt an existing region
	Flags  InfoFlags
}

// External reports whether the described region is caller-owned.
func (i BufferInfo) External() bool {
	return i.Handle != nil || i.Flags&FlagExternal != 0
}
