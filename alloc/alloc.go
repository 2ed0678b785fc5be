// File: alloc/alloc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Backend selection by backing kind.

package alloc

import (
	"github.com/asciimoth/bufpool"

	"github.com/momentics/hioload-buf/api"
)

const defaultMemfdName = "hioload-buf"

type options struct {
	bytes     bufpool.Pool
	memfdName string
}

// Option tunes backend construction.
type Option func(*options)

// WithBytePool sources heap regions from p instead of fresh allocations.
func WithBytePool(p bufpool.Pool) Option {
	return func(o *options) { o.bytes = p }
}

// WithMemfdName sets the name memfd regions are created with. The name
// shows up in /proc/<pid>/fd and is for diagnostics only.
func WithMemfdName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.memfdName = name
		}
	}
}

// New returns the backend for kind.
func New(kind api.BackingKind, opts ...Option) (api.Allocator, error) {
	o := options{memfdName: defaultMemfdName}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	switch kind {
	case api.KindHeap:
		return NewHeap(o.bytes), nil
	case api.KindMmap:
		return newMmap()
	case api.KindMemfd:
		return newMemfd(o.memfdName)
	default:
		return nil, api.Errorf(api.ErrCodeNotSupported, "unknown backing kind %v", kind)
	}
}

// roundUp rounds n up to a multiple of align (a power of two).
func roundUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// adoptSlice validates a caller-owned region that must carry a mapping.
func adoptSlice(h api.Handle, kind api.BackingKind) (api.Handle, error) {
	if h.Data == nil || !h.Valid() {
		return api.Handle{}, api.Errorf(api.ErrCodeInvalidArgument,
			"%v backend cannot adopt handle without data", kind).
			WithContext("size", h.Size)
	}
	h.Kind = kind
	return h, nil
}
