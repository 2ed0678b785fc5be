// File: pool/arena.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Index arena holding a group's live buffers.

package pool

import "github.com/eapache/queue"

type listID uint8

const (
	listNone listID = iota
	listUsed
	listUnused
	numLists
)

const nilSlot = -1

type slot struct {
	buf  *Buffer
	prev int
	next int
	list listID
}

// arena stores buffers in a growable slot table and threads the used and
// unused collections through it as index-linked lists. Unlink and relink
// are O(1); released slot indices are recycled oldest first.
type arena struct {
	slots []slot
	free  *queue.Queue
	head  [numLists]int
	tail  [numLists]int
	size  [numLists]int
}

func newArena() *arena {
	a := &arena{free: queue.New()}
	for l := range a.head {
		a.head[l] = nilSlot
		a.tail[l] = nilSlot
	}
	return a
}

// insert stores b and appends it to list l, returning its slot index.
func (a *arena) insert(b *Buffer, l listID) int {
	var idx int
	if a.free.Length() > 0 {
		idx = a.free.Remove().(int)
		a.slots[idx] = slot{buf: b, prev: nilSlot, next: nilSlot}
	} else {
		idx = len(a.slots)
		a.slots = append(a.slots, slot{buf: b, prev: nilSlot, next: nilSlot})
	}
	a.link(idx, l)
	return idx
}

func (a *arena) link(idx int, l listID) {
	s := &a.slots[idx]
	s.list = l
	s.prev = a.tail[l]
	s.next = nilSlot
	if a.tail[l] != nilSlot {
		a.slots[a.tail[l]].next = idx
	} else {
		a.head[l] = idx
	}
	a.tail[l] = idx
	a.size[l]++
}

func (a *arena) unlink(idx int) {
	s := &a.slots[idx]
	l := s.list
	if s.prev != nilSlot {
		a.slots[s.prev].next = s.next
	} else {
		a.head[l] = s.next
	}
	if s.next != nilSlot {
		a.slots[s.next].prev = s.prev
	} else {
		a.tail[l] = s.prev
	}
	s.prev, s.next, s.list = nilSlot, nilSlot, listNone
	a.size[l]--
}

// move relinks idx at the tail of list l.
func (a *arena) move(idx int, l listID) {
	a.unlink(idx)
	a.link(idx, l)
}

// remove unlinks idx and recycles its slot.
func (a *arena) remove(idx int) {
	a.unlink(idx)
	a.slots[idx] = slot{prev: nilSlot, next: nilSlot}
	a.free.Add(idx)
}

func (a *arena) len(l listID) int { return a.size[l] }

// listOf reports which list idx is linked into.
func (a *arena) listOf(idx int) listID {
	if idx < 0 || idx >= len(a.slots) {
		return listNone
	}
	return a.slots[idx].list
}

// each visits list l from head to tail until fn returns false.
func (a *arena) each(l listID, fn func(*Buffer) bool) {
	for idx := a.head[l]; idx != nilSlot; {
		next := a.slots[idx].next
		if !fn(a.slots[idx].buf) {
			return
		}
		idx = next
	}
}

// drain removes every buffer of list l head first and hands it to fn.
func (a *arena) drain(l listID, fn func(*Buffer)) {
	for a.head[l] != nilSlot {
		idx := a.head[l]
		b := a.slots[idx].buf
		a.remove(idx)
		fn(b)
	}
}
