// File: pool/registry.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Process-wide set of buffer groups plus the lazily created legacy group.
// Lock order is registry then group; no path holds a group lock while
// taking the registry lock.

package pool

import (
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/momentics/hioload-buf/alloc"
	"github.com/momentics/hioload-buf/api"
)

// AllocatorFactory builds the backend for a new group.
type AllocatorFactory func(kind api.BackingKind) (api.Allocator, error)

// Registry tracks every initialized group and owns the legacy group.
type Registry struct {
	id      string
	cfg     Config
	log     *slog.Logger
	factory AllocatorFactory
	metrics *poolMetrics

	mu     sync.RWMutex
	groups map[uint32]*Group
	nextID uint32
	legacy *Group
	closed bool
}

// NewRegistry creates an empty registry. It fails only when metrics cannot
// be registered.
func NewRegistry(opts ...Option) (*Registry, error) {
	o := applyOptions(opts...)
	r := &Registry{
		id:      uuid.NewString(),
		cfg:     *o.cfg,
		log:     o.logger,
		factory: o.factory,
		groups:  make(map[uint32]*Group),
	}
	if r.factory == nil {
		r.factory = func(kind api.BackingKind) (api.Allocator, error) {
			return alloc.New(kind)
		}
	}
	if o.registerer != nil {
		m, err := newPoolMetrics(o.registerer, r.id)
		if err != nil {
			return nil, err
		}
		r.metrics = m
	}
	r.log = r.log.With("registry", r.id)
	return r, nil
}

// ID returns the registry instance id.
func (r *Registry) ID() string { return r.id }

// Config returns a copy of the registry configuration.
func (r *Registry) Config() Config { return r.cfg }

// NewGroup initializes a group and registers it. An empty caller is
// replaced by the calling function's name.
func (r *Registry) NewGroup(tag, caller string, mode api.Mode, kind api.BackingKind, opts ...GroupOption) (*Group, error) {
	if caller == "" {
		caller = callsite(1)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.newGroupLocked(tag, caller, mode, kind, opts...)
}

func (r *Registry) newGroupLocked(tag, caller string, mode api.Mode, kind api.BackingKind, opts ...GroupOption) (*Group, error) {
	if r.closed {
		return nil, api.Errorf(api.ErrCodeInvalidState, "registry closed")
	}
	var o groupOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if err := checkLimits(mode, o.limitCount, o.limitSize); err != nil {
		return nil, err
	}
	a := o.allocator
	if a == nil {
		var err error
		if a, err = r.factory(kind); err != nil {
			return nil, api.Errorf(api.ErrCodeAllocationFailed, "group %q: backend %v", tag, kind).Wrap(err)
		}
	}

	r.nextID++
	g := &Group{
		id:         r.nextID,
		tag:        tag,
		caller:     caller,
		kind:       a.Kind(),
		strict:     r.cfg.PanicOnInvalidState,
		reg:        r,
		log:        r.log,
		mode:       mode,
		limitCount: o.limitCount,
		limitSize:  o.limitSize,
		arena:      newArena(),
		pending:    make(map[*Buffer]struct{}),
		alloc:      a,
	}
	g.metrics = r.metrics.group(g)
	r.groups[g.id] = g
	r.log.Info("group initialized", "group", g.id, "tag", tag, "caller", caller,
		"mode", mode.String(), "kind", g.kind.String(),
		"limit_count", o.limitCount, "limit_size", o.limitSize)
	return g, nil
}

// Group looks up a live group by id.
func (r *Registry) Group(id uint32) (*Group, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[id]
	return g, ok
}

// Groups returns the live groups ordered by id.
func (r *Registry) Groups() []*Group {
	r.mu.RLock()
	out := make([]*Group, 0, len(r.groups))
	for _, g := range r.groups {
		out = append(out, g)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Legacy returns the default group, creating it on first use from the
// registry configuration. Concurrent first calls create it once.
func (r *Registry) Legacy() (*Group, error) {
	r.mu.RLock()
	g := r.legacy
	r.mu.RUnlock()
	if g != nil {
		return g, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.legacy != nil {
		return r.legacy, nil
	}
	g, err := r.newGroupLocked(r.cfg.LegacyTag, "legacy", r.cfg.LegacyMode, r.cfg.LegacyKind,
		WithLimitCount(r.cfg.LegacyLimitCount), WithLimitSize(r.cfg.LegacyLimitSize))
	if err != nil {
		return nil, err
	}
	g.legacy = true
	r.legacy = g
	return g, nil
}

// Create resolves groupID and creates an unused buffer in that group. An
// id of zero or one that names no live group selects the legacy group,
// including a group deinitialized between lookup and creation.
func (r *Registry) Create(tag, caller string, groupID uint32, info api.BufferInfo) (*Buffer, error) {
	if caller == "" {
		caller = callsite(1)
	}
	g, err := r.resolve(groupID)
	if err != nil {
		return nil, err
	}
	if g.legacy {
		return g.Create(tag, caller, info)
	}
	b, retired, err := g.createLive(tag, caller, info)
	if !retired {
		return b, err
	}
	r.log.Warn("group deinitialized, using legacy group", "group", groupID)
	if g, err = r.Legacy(); err != nil {
		return nil, err
	}
	return g.Create(tag, caller, info)
}

func (r *Registry) resolve(id uint32) (*Group, error) {
	if id != 0 {
		if g, ok := r.Group(id); ok {
			return g, nil
		}
		r.log.Warn("unknown group id, using legacy group", "group", id)
	}
	return r.Legacy()
}

// DeinitGroup resets g and removes it from the registry.
//
// Buffers still referenced stay valid and are released by their last
// RefDec; the backend is closed after that release. With
// Config.RejectBusyDeinit the call instead fails with ErrGroupBusy, leaving
// the group untouched, while any buffer is referenced or pending release.
// The legacy group lives as long as the registry and is torn down by Close.
func (r *Registry) DeinitGroup(g *Group) error {
	if g == nil || g.reg != r {
		return api.Errorf(api.ErrCodeNotFound, "group not owned by this registry")
	}
	if g.legacy {
		return api.Errorf(api.ErrCodeInvalidState, "legacy group cannot be deinitialized").
			WithContext("group", g.id)
	}
	return r.deinit(g, false)
}

func (r *Registry) deinit(g *Group, closing bool) error {
	retired, pending, err := g.retire(r.cfg.RejectBusyDeinit, closing)
	if !retired {
		return err
	}
	r.mu.Lock()
	delete(r.groups, g.id)
	if r.legacy == g {
		r.legacy = nil
	}
	r.mu.Unlock()
	r.metrics.forget(g)
	r.log.Info("group deinitialized", "group", g.id, "tag", g.tag, "pending", pending)
	return err
}

// Close deinitializes every group, the legacy group included, and refuses
// further group creation. Referenced buffers follow the usual deferred
// release. With RejectBusyDeinit the first busy group error is returned
// and remaining groups are still attempted.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	var firstErr error
	for _, g := range r.Groups() {
		if err := r.deinit(g, true); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Dump writes a human-readable snapshot of every group to w.
func (r *Registry) Dump(w io.Writer) error {
	groups := r.Groups()
	if _, err := io.WriteString(w, dumpRegistryHeader(r.id, len(groups))); err != nil {
		return err
	}
	for _, g := range groups {
		if err := g.Dump(w); err != nil {
			return err
		}
	}
	return nil
}
