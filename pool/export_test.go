package pool

import (
	"fmt"

	"github.com/momentics/hioload-buf/api"
)

// CheckInvariants verifies the group's counters against its lists.
func CheckInvariants(g *Group) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	var usage int64
	used, unused := 0, 0
	var err error
	g.arena.each(listUsed, func(b *Buffer) bool {
		used++
		usage += int64(b.handle.Size)
		if b.status != api.StatusUsed || b.refs <= 0 {
			err = fmt.Errorf("used list holds %s with status %v refs %d", b, b.status, b.refs)
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	g.arena.each(listUnused, func(b *Buffer) bool {
		unused++
		usage += int64(b.handle.Size)
		if b.status != api.StatusUnused || b.refs != 0 {
			err = fmt.Errorf("unused list holds %s with status %v refs %d", b, b.status, b.refs)
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	switch {
	case used != g.countUsed:
		return fmt.Errorf("count_used %d, list has %d", g.countUsed, used)
	case unused != g.countUnused:
		return fmt.Errorf("count_unused %d, list has %d", g.countUnused, unused)
	case g.count != used+unused:
		return fmt.Errorf("count %d != used %d + unused %d", g.count, used, unused)
	case g.usage != usage:
		return fmt.Errorf("usage %d, lists hold %d bytes", g.usage, usage)
	}
	for b := range g.pending {
		if b.status != api.StatusDiscarded || b.refs <= 0 {
			return fmt.Errorf("pending %s with status %v refs %d", b, b.status, b.refs)
		}
	}
	return nil
}

// ArenaFreeSlots returns how many slot indices wait for reuse.
func ArenaFreeSlots(g *Group) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.arena.free.Length()
}

var Callsite = callsite

// Retire marks g deinitialized without unregistering it, the state a
// concurrent DeinitGroup leaves between retiring and removal.
func Retire(g *Group) {
	_, _, _ = g.retire(false, true)
}
