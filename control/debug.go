// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Debug probe registry and buffer registry probes.

package control

import (
	"strings"
	"sync"

	"github.com/momentics/hioload-buf/pool"
)

// DebugProbes holds registered probe functions.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

// NewDebugProbes creates a probe registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{
		probes: make(map[string]func() any),
	}
}

// RegisterProbe inserts a named debug hook.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.probes[name] = fn
}

// DumpState returns output of all probes.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	out := make(map[string]any, len(dp.probes))
	for k, fn := range dp.probes {
		out[k] = fn()
	}
	return out
}

// RegisterPoolProbes exposes r under "bufpool.<registry id>": per-group
// stats and the full text dump.
func RegisterPoolProbes(dp *DebugProbes, r *pool.Registry) {
	prefix := "bufpool." + r.ID()
	dp.RegisterProbe(prefix+".groups", func() any {
		groups := r.Groups()
		out := make([]pool.GroupStats, 0, len(groups))
		for _, g := range groups {
			out = append(out, g.Stats())
		}
		return out
	})
	dp.RegisterProbe(prefix+".dump", func() any {
		var sb strings.Builder
		if err := r.Dump(&sb); err != nil {
			return err.Error()
		}
		return sb.String()
	})
}
