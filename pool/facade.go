// File: pool/facade.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package-level buffer pool operations on the default registry.

package pool

import (
	"io"

	"github.com/momentics/hioload-buf/api"
)

// Create makes an unused buffer in group groupID of the default registry,
// falling back to the legacy group for 0 or unknown ids.
func Create(tag, caller string, groupID uint32, info api.BufferInfo) (*Buffer, error) {
	if caller == "" {
		caller = callsite(1)
	}
	return Default().Create(tag, caller, groupID, info)
}

// Destroy releases an unreferenced buffer.
func Destroy(b *Buffer) error {
	if b == nil {
		return api.Errorf(api.ErrCodeInvalidArgument, "nil buffer")
	}
	return b.Destroy()
}

// GetUnused returns a reusable buffer of at least size bytes from g, or
// from the legacy group when g is nil.
func GetUnused(g *Group, size int) (*Buffer, error) {
	if g == nil {
		var err error
		if g, err = LegacyGroup(); err != nil {
			return nil, err
		}
	}
	return g.getUnused(size, callerPC(1))
}

// RefInc takes a reference on b.
func RefInc(b *Buffer) error {
	if b == nil {
		return api.Errorf(api.ErrCodeInvalidArgument, "nil buffer")
	}
	return b.RefInc()
}

// RefDec drops a reference on b.
func RefDec(b *Buffer) error {
	if b == nil {
		return api.Errorf(api.ErrCodeInvalidArgument, "nil buffer")
	}
	return b.RefDec()
}

// GroupInit registers a new group in the default registry.
func GroupInit(tag, caller string, mode api.Mode, kind api.BackingKind, opts ...GroupOption) (*Group, error) {
	if caller == "" {
		caller = callsite(1)
	}
	return Default().NewGroup(tag, caller, mode, kind, opts...)
}

// GroupReset discards all buffers of g.
func GroupReset(g *Group) error {
	if g == nil {
		return api.Errorf(api.ErrCodeInvalidArgument, "nil group")
	}
	return g.Reset()
}

// GroupDeinit resets g and removes it from its registry.
func GroupDeinit(g *Group) error {
	if g == nil {
		return api.Errorf(api.ErrCodeInvalidArgument, "nil group")
	}
	return g.Deinit()
}

// LegacyGroup returns the default registry's legacy group.
func LegacyGroup() (*Group, error) {
	return Default().Legacy()
}

// Dump writes every group of the default registry to w.
func Dump(w io.Writer) error {
	return Default().Dump(w)
}
