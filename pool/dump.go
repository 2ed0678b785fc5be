// File: pool/dump.go
// Author: momentics <momentics@gmail.com>
//
// Human-readable snapshots for diagnostics. Dumping never changes state.

package pool

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

func dumpRegistryHeader(id string, groups int) string {
	return fmt.Sprintf("registry %s: %d group(s)\n", id, groups)
}

// Dump writes the group's accounting followed by its used, unused and
// pending buffers.
func (g *Group) Dump(w io.Writer) error {
	var sb strings.Builder
	g.mu.Lock()
	st := g.statsLocked()
	fmt.Fprintf(&sb, "group %d tag %q caller %s mode %s kind %s legacy %t deinit %t\n",
		st.ID, st.Tag, st.Caller, st.Mode, st.Kind, g.legacy, st.Deinited)
	fmt.Fprintf(&sb, "  limit %d usage %d count %d used %d unused %d pending %d limit_count %d limit_size %d\n",
		st.Limit, st.Usage, st.Count, st.CountUsed, st.CountUnused, st.Pending, st.LimitCount, st.LimitSize)
	sb.WriteString("  used:\n")
	g.arena.each(listUsed, func(b *Buffer) bool {
		fmt.Fprintf(&sb, "    %s refs %d\n", b, b.refs)
		return true
	})
	sb.WriteString("  unused:\n")
	g.arena.each(listUnused, func(b *Buffer) bool {
		fmt.Fprintf(&sb, "    %s\n", b)
		return true
	})
	pending := make([]*Buffer, 0, len(g.pending))
	for b := range g.pending {
		pending = append(pending, b)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].id < pending[j].id })
	sb.WriteString("  pending:\n")
	for _, b := range pending {
		fmt.Fprintf(&sb, "    %s refs %d\n", b, b.refs)
	}
	g.mu.Unlock()

	_, err := io.WriteString(w, sb.String())
	return err
}
