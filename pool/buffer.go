// File: pool/buffer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reference-counted buffer shared between pipeline stages.

package pool

import (
	"fmt"

	"github.com/momentics/hioload-buf/api"
)

// Buffer is one physical region plus its lifecycle state. Identity and the
// region handle are immutable; status, refs and slot are guarded by the
// owning group's lock. Callers obtain buffers from a Group or Create and
// never construct them directly.
type Buffer struct {
	id       uint32
	tag      string
	caller   string
	groupID  uint32
	mode     api.Mode
	handle   api.Handle
	internal bool
	group    *Group

	status api.Status
	refs   int32
	slot   int
}

func (b *Buffer) ID() uint32            { return b.id }
func (b *Buffer) Tag() string           { return b.tag }
func (b *Buffer) Caller() string        { return b.caller }
func (b *Buffer) GroupID() uint32       { return b.groupID }
func (b *Buffer) Mode() api.Mode        { return b.mode }
func (b *Buffer) Internal() bool        { return b.internal }
func (b *Buffer) Size() int             { return b.handle.Size }
func (b *Buffer) Fd() int               { return b.handle.Fd }
func (b *Buffer) Kind() api.BackingKind { return b.handle.Kind }

// Group returns the owning group. It stays valid after the group is
// deinitialized so pending releases can still complete.
func (b *Buffer) Group() *Group { return b.group }

// Handle returns the region descriptor.
func (b *Buffer) Handle() api.Handle { return b.handle }

// Info describes the buffer the way Create accepts it. Only adopted
// regions carry their handle and FlagExternal; for pool-owned regions
// Create allocates a fresh region of the same size.
func (b *Buffer) Info() api.BufferInfo {
	if b.internal {
		return api.BufferInfo{Size: b.handle.Size}
	}
	h := b.handle
	return api.BufferInfo{Size: h.Size, Handle: &h, Flags: api.FlagExternal}
}

// Status returns the lifecycle state.
func (b *Buffer) Status() api.Status {
	b.group.mu.Lock()
	defer b.group.mu.Unlock()
	return b.status
}

// RefCount returns the number of outstanding references.
func (b *Buffer) RefCount() int {
	b.group.mu.Lock()
	defer b.group.mu.Unlock()
	return int(b.refs)
}

// Discarded reports whether the buffer waits for its last RefDec after a
// group reset.
func (b *Buffer) Discarded() bool {
	return b.Status() == api.StatusDiscarded
}

// Bytes returns the mapped region, or nil once the buffer is released or
// when the region has a descriptor but no mapping.
func (b *Buffer) Bytes() []byte {
	if b.Status() == api.StatusReleased {
		return nil
	}
	return b.handle.Data
}

// Read copies region bytes starting at off into p. The caller must hold a
// reference for the duration of the call.
func (b *Buffer) Read(off int, p []byte) (int, error) {
	data, err := b.span("read", off, len(p))
	if err != nil {
		return 0, err
	}
	return copy(p, data), nil
}

// Write copies p into the region starting at off. The caller must hold a
// reference for the duration of the call.
func (b *Buffer) Write(off int, p []byte) (int, error) {
	data, err := b.span("write", off, len(p))
	if err != nil {
		return 0, err
	}
	return copy(data, p), nil
}

func (b *Buffer) span(op string, off, n int) ([]byte, error) {
	switch st := b.Status(); st {
	case api.StatusUsed, api.StatusDiscarded:
	default:
		return nil, api.Errorf(api.ErrCodeInvalidState, "%s on unreferenced buffer", op).
			WithContext("buffer", b.id).WithContext("status", st.String())
	}
	if b.handle.Data == nil {
		return nil, api.Errorf(api.ErrCodeNotSupported, "%s on unmapped region", op).
			WithContext("fd", b.handle.Fd)
	}
	if off < 0 || n < 0 || off+n > len(b.handle.Data) {
		return nil, api.Errorf(api.ErrCodeInvalidArgument, "%s out of range", op).
			WithContext("offset", off).WithContext("len", n).WithContext("size", b.handle.Size)
	}
	return b.handle.Data[off : off+n], nil
}

// RefInc takes a reference. The first reference moves the buffer from the
// group's unused list to its used list.
func (b *Buffer) RefInc() error {
	g := b.group
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.refIncLocked(b)
}

// RefDec drops a reference. When the count reaches zero the buffer returns
// to the unused list, or is physically released if it was discarded.
func (b *Buffer) RefDec() error {
	g := b.group
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.refDecLocked(b)
}

// Destroy releases an unreferenced buffer and removes it from the group.
func (b *Buffer) Destroy() error {
	g := b.group
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.destroyLocked(b)
}

func (b *Buffer) String() string {
	return fmt.Sprintf("buffer %d tag %q caller %s size %d fd %d kind %v internal %t",
		b.id, b.tag, b.caller, b.handle.Size, b.handle.Fd, b.handle.Kind, b.internal)
}

// logAttrs returns identity attributes for structured logging.
func (b *Buffer) logAttrs() []any {
	return []any{"group", b.groupID, "buffer", b.id, "tag", b.tag, "size", b.handle.Size}
}
