// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations and constants for buffer groups.

package api

// Mode selects the growth policy of a buffer group.
type Mode int

const (
	ModeUnlimited Mode = iota
	ModeCountLimited
	ModeSizeLimited
)

func (m Mode) String() string {
	switch m {
	case ModeUnlimited:
		return "unlimited"
	case ModeCountLimited:
		return "count-limited"
	case ModeSizeLimited:
		return "size-limited"
	default:
		return "unknown"
	}
}

// Status enumerates the lifecycle state of a pooled buffer.
type Status int

const (
	StatusUnused Status = iota
	StatusUsed
	StatusDiscarded
	StatusReleased
)

func (s Status) String() string {
	switch s {
	case StatusUnused:
		return "unused"
	case StatusUsed:
		return "used"
	case StatusDiscarded:
		return "discarded"
	case StatusReleased:
		return "released"
	default:
		return "unknown"
	}
}
