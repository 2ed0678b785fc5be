// File: pool/group.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Buffer group: allocation policy, used/unused accounting and the
// reset/discard protocol. Every mutation runs under the group mutex.

package pool

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/momentics/hioload-buf/api"
)

// Group owns a set of buffers allocated from one backend under one policy.
type Group struct {
	id     uint32
	tag    string
	caller string
	kind   api.BackingKind
	legacy bool
	strict bool
	reg    *Registry
	log    *slog.Logger

	mu         sync.Mutex
	mode       api.Mode
	limitCount int
	limitSize  int64

	usage       int64
	count       int
	countUsed   int
	countUnused int

	arena       *arena
	pending     map[*Buffer]struct{}
	alloc       api.Allocator
	metrics     *groupMetrics
	nextBufID   uint32
	deinited    bool
	allocClosed bool
}

// GroupStats is a point-in-time view of a group's accounting.
type GroupStats struct {
	ID          uint32
	Tag         string
	Caller      string
	Mode        api.Mode
	Kind        api.BackingKind
	Usage       int64
	Limit       int64
	LimitCount  int
	LimitSize   int64
	Count       int
	CountUsed   int
	CountUnused int
	Pending     int
	Deinited    bool
}

func (g *Group) ID() uint32            { return g.id }
func (g *Group) Tag() string           { return g.tag }
func (g *Group) Caller() string        { return g.caller }
func (g *Group) Kind() api.BackingKind { return g.kind }
func (g *Group) Legacy() bool          { return g.legacy }

// Mode returns the current growth policy.
func (g *Group) Mode() api.Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// Stats returns a snapshot of the group's counters.
func (g *Group) Stats() GroupStats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.statsLocked()
}

func (g *Group) statsLocked() GroupStats {
	return GroupStats{
		ID:          g.id,
		Tag:         g.tag,
		Caller:      g.caller,
		Mode:        g.mode,
		Kind:        g.kind,
		Usage:       g.usage,
		Limit:       g.limitLocked(),
		LimitCount:  g.limitCount,
		LimitSize:   g.limitSize,
		Count:       g.count,
		CountUsed:   g.countUsed,
		CountUnused: g.countUnused,
		Pending:     len(g.pending),
		Deinited:    g.deinited,
	}
}

// limitLocked returns the ceiling in effect for the current mode.
func (g *Group) limitLocked() int64 {
	switch g.mode {
	case api.ModeCountLimited:
		return int64(g.limitCount)
	case api.ModeSizeLimited:
		return g.limitSize
	default:
		return 0
	}
}

// Usage returns the bytes currently accounted to the group.
func (g *Group) Usage() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.usage
}

// Unused returns the number of buffers available for reuse.
func (g *Group) Unused() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.countUnused
}

// SetLimits replaces the count and size ceilings. Buffers already owned are
// kept even when they exceed the new limits; only growth is refused.
func (g *Group) SetLimits(count int, size int64) error {
	if count < 0 || size < 0 {
		return api.Errorf(api.ErrCodeInvalidArgument, "negative limit").
			WithContext("count", count).WithContext("size", size)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := checkLimits(g.mode, count, size); err != nil {
		return err
	}
	g.limitCount = count
	g.limitSize = size
	g.log.Info("group limits changed", "group", g.id, "limit_count", count, "limit_size", size)
	return nil
}

func checkLimits(mode api.Mode, count int, size int64) error {
	switch mode {
	case api.ModeUnlimited:
		return nil
	case api.ModeCountLimited:
		if count <= 0 {
			return api.Errorf(api.ErrCodeInvalidArgument, "count-limited group needs a positive count limit")
		}
	case api.ModeSizeLimited:
		if size <= 0 {
			return api.Errorf(api.ErrCodeInvalidArgument, "size-limited group needs a positive size limit")
		}
	default:
		return api.Errorf(api.ErrCodeInvalidArgument, "unknown mode %d", int(mode))
	}
	return nil
}

// Create registers a new unused buffer in the group. The region is adopted
// when info carries a handle, otherwise it is allocated from the backend.
// An empty caller is replaced by the calling function's name.
func (g *Group) Create(tag, caller string, info api.BufferInfo) (*Buffer, error) {
	if caller == "" {
		caller = callsite(1)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.createLocked(tag, caller, info, api.ErrCodeLimitExceeded)
}

// createLive is Create for a group found by id. A group retired since the
// lookup is reported instead of treated as a contract violation.
func (g *Group) createLive(tag, caller string, info api.BufferInfo) (*Buffer, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.deinited {
		return nil, true, nil
	}
	b, err := g.createLocked(tag, caller, info, api.ErrCodeLimitExceeded)
	return b, false, err
}

// GetUnused returns the oldest unused buffer of at least size bytes without
// taking a reference. On a miss the group grows when its policy allows;
// otherwise ErrPoolExhausted is returned.
func (g *Group) GetUnused(size int) (*Buffer, error) {
	return g.getUnused(size, callerPC(1))
}

func (g *Group) getUnused(size int, pc uintptr) (*Buffer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.getUnusedLocked(size, pc)
}

// Get is GetUnused followed by RefInc as one transaction, so concurrent
// stages never pick the same unused buffer.
func (g *Group) Get(size int) (*Buffer, error) {
	pc := callerPC(1)
	g.mu.Lock()
	defer g.mu.Unlock()
	b, err := g.getUnusedLocked(size, pc)
	if err != nil {
		return nil, err
	}
	if err := g.refIncLocked(b); err != nil {
		return nil, err
	}
	return b, nil
}

// getUnusedLocked resolves pc to a caller label only when it has to
// create a buffer.
func (g *Group) getUnusedLocked(size int, pc uintptr) (*Buffer, error) {
	if size <= 0 {
		return nil, api.Errorf(api.ErrCodeInvalidArgument, "bad buffer size %d", size).
			WithContext("group", g.id)
	}
	var hit *Buffer
	g.arena.each(listUnused, func(b *Buffer) bool {
		if b.handle.Size >= size {
			hit = b
			return false
		}
		return true
	})
	if hit != nil {
		g.metrics.reuse()
		g.log.Debug("reuse unused buffer", append(hit.logAttrs(), "want", size)...)
		return hit, nil
	}
	return g.createLocked(g.tag, funcName(pc), api.BufferInfo{Size: size}, api.ErrCodePoolExhausted)
}

// Reset discards every buffer the group owns. Unused buffers are released
// at once; referenced ones leave the accounting now and are released by
// their last RefDec.
func (g *Group) Reset() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.deinited {
		return g.invalidLocked(nil, "reset deinitialized group")
	}
	return g.resetLocked()
}

// Deinit removes the group from its registry. See Registry.DeinitGroup.
func (g *Group) Deinit() error {
	return g.reg.DeinitGroup(g)
}

// retire resets the group and marks it deinitialized. It reports whether
// the group was retired by this call and how many buffers await release.
func (g *Group) retire(rejectBusy, quiet bool) (bool, int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.deinited {
		if quiet {
			return false, 0, nil
		}
		return false, 0, g.invalidLocked(nil, "deinit deinitialized group")
	}
	if rejectBusy && (g.countUsed > 0 || len(g.pending) > 0) {
		return false, 0, api.Errorf(api.ErrCodeGroupBusy, "group %d has referenced buffers", g.id).
			WithContext("used", g.countUsed).WithContext("pending", len(g.pending))
	}
	err := g.resetLocked()
	g.deinited = true
	if len(g.pending) == 0 {
		g.closeBackendLocked()
	}
	g.metrics = nil
	return true, len(g.pending), err
}

func (g *Group) createLocked(tag, caller string, info api.BufferInfo, limitCode api.ErrorCode) (*Buffer, error) {
	if g.deinited {
		return nil, g.invalidLocked(nil, "create on deinitialized group")
	}
	size := info.Size
	if info.Handle != nil {
		size = info.Handle.Size
	} else if info.Flags&api.FlagExternal != 0 {
		return nil, api.Errorf(api.ErrCodeInvalidArgument, "external buffer without handle").
			WithContext("group", g.id)
	}
	if size <= 0 {
		return nil, api.Errorf(api.ErrCodeInvalidArgument, "bad buffer size %d", size).
			WithContext("group", g.id)
	}
	if err := g.admitLocked(size, limitCode); err != nil {
		g.metrics.failure(limitCode.String())
		return nil, err
	}

	var (
		h        api.Handle
		err      error
		internal = info.Handle == nil
	)
	if internal {
		h, err = g.alloc.Alloc(size)
		if err != nil {
			g.metrics.failure("backend")
			g.log.Warn("backend allocation failed", "group", g.id, "size", size, "error", err)
			return nil, api.Errorf(api.ErrCodeAllocationFailed, "group %d: allocate %d bytes", g.id, size).
				WithContext("kind", g.kind.String()).Wrap(err)
		}
	} else {
		h, err = g.alloc.Adopt(*info.Handle)
		if err != nil {
			g.metrics.failure("adopt")
			return nil, err
		}
	}

	g.nextBufID++
	b := &Buffer{
		id:       g.nextBufID,
		tag:      tag,
		caller:   caller,
		groupID:  g.id,
		mode:     g.mode,
		handle:   h,
		internal: internal,
		group:    g,
		status:   api.StatusUnused,
	}
	b.slot = g.arena.insert(b, listUnused)
	g.usage += int64(h.Size)
	g.count++
	g.countUnused++
	g.metrics.allocated()
	g.syncMetricsLocked()
	g.log.Debug("buffer created", append(b.logAttrs(), "internal", internal, "caller", caller)...)
	return b, nil
}

// admitLocked checks whether one more buffer of size bytes fits the policy.
func (g *Group) admitLocked(size int, code api.ErrorCode) error {
	switch g.mode {
	case api.ModeCountLimited:
		if g.count >= g.limitCount {
			return api.Errorf(code, "group %d: count limit %d reached", g.id, g.limitCount).
				WithContext("count", g.count)
		}
	case api.ModeSizeLimited:
		if g.usage+int64(size) > g.limitSize {
			return api.Errorf(code, "group %d: size limit %d exceeded", g.id, g.limitSize).
				WithContext("usage", g.usage).WithContext("size", size)
		}
	}
	return nil
}

func (g *Group) refIncLocked(b *Buffer) error {
	switch b.status {
	case api.StatusUnused:
		g.arena.move(b.slot, listUsed)
		g.countUnused--
		g.countUsed++
		b.status = api.StatusUsed
		b.refs = 1
		g.syncMetricsLocked()
	case api.StatusUsed, api.StatusDiscarded:
		b.refs++
	default:
		return g.invalidLocked(b, "ref_inc on released buffer")
	}
	return nil
}

func (g *Group) refDecLocked(b *Buffer) error {
	switch b.status {
	case api.StatusUsed, api.StatusDiscarded:
	default:
		return g.invalidLocked(b, "ref_dec without reference")
	}
	b.refs--
	if b.refs > 0 {
		return nil
	}
	if b.status == api.StatusUsed {
		g.arena.move(b.slot, listUnused)
		g.countUsed--
		g.countUnused++
		b.status = api.StatusUnused
		g.syncMetricsLocked()
		return nil
	}
	delete(g.pending, b)
	err := g.releaseLocked(b)
	g.syncMetricsLocked()
	if g.deinited && len(g.pending) == 0 {
		g.closeBackendLocked()
	}
	return err
}

func (g *Group) destroyLocked(b *Buffer) error {
	if b.status != api.StatusUnused {
		return g.invalidLocked(b, "destroy on "+b.status.String()+" buffer")
	}
	g.arena.remove(b.slot)
	b.slot = nilSlot
	g.count--
	g.countUnused--
	g.usage -= int64(b.handle.Size)
	err := g.releaseLocked(b)
	g.syncMetricsLocked()
	return err
}

// releaseLocked returns the region to the backend and ends the buffer's
// life. Accounting must already be updated by the caller.
func (g *Group) releaseLocked(b *Buffer) error {
	b.status = api.StatusReleased
	b.refs = 0
	b.slot = nilSlot
	g.metrics.released()
	if !b.internal {
		g.log.Debug("external buffer unregistered", b.logAttrs()...)
		return nil
	}
	if err := g.alloc.Free(b.handle); err != nil {
		g.log.Error("backend release failed", append(b.logAttrs(), "error", err)...)
		return api.Errorf(api.ErrCodeAllocationFailed, "group %d: release buffer %d", g.id, b.id).Wrap(err)
	}
	g.log.Debug("buffer released", b.logAttrs()...)
	return nil
}

func (g *Group) resetLocked() error {
	var firstErr error
	discarded := 0
	g.arena.drain(listUsed, func(b *Buffer) {
		b.status = api.StatusDiscarded
		b.slot = nilSlot
		g.pending[b] = struct{}{}
		g.metrics.discarded()
		discarded++
	})
	released := 0
	g.arena.drain(listUnused, func(b *Buffer) {
		if err := g.releaseLocked(b); err != nil && firstErr == nil {
			firstErr = err
		}
		released++
	})
	g.usage = 0
	g.count = 0
	g.countUsed = 0
	g.countUnused = 0
	g.syncMetricsLocked()
	g.log.Info("group reset", "group", g.id, "tag", g.tag,
		"discarded", discarded, "released", released, "pending", len(g.pending))
	return firstErr
}

func (g *Group) closeBackendLocked() {
	if g.allocClosed {
		return
	}
	g.allocClosed = true
	if err := g.alloc.Close(); err != nil {
		g.log.Error("backend close failed", "group", g.id, "error", err)
		return
	}
	g.log.Debug("backend closed", "group", g.id)
}

// invalidLocked reports a contract violation. It always logs at error level
// and panics when the registry is configured to.
func (g *Group) invalidLocked(b *Buffer, what string) error {
	err := api.Errorf(api.ErrCodeInvalidState, "%s", what).WithContext("group", g.id)
	attrs := []any{"group", g.id, "op", what}
	if b != nil {
		err.WithContext("buffer", b.id).
			WithContext("status", b.status.String()).
			WithContext("refs", b.refs)
		attrs = append(b.logAttrs(), "op", what, "status", b.status.String(), "refs", b.refs)
	}
	g.log.Error("buffer contract violation", attrs...)
	if g.strict {
		panic(err)
	}
	return err
}

func (g *Group) syncMetricsLocked() {
	g.metrics.sync(g.usage, g.countUsed, g.countUnused, len(g.pending))
}

func (g *Group) String() string {
	return fmt.Sprintf("group %d tag %q", g.id, g.tag)
}
