// File: pool/config.go
// Author: momentics <momentics@gmail.com>
//
// Registry configuration and defaults.

package pool

import "github.com/momentics/hioload-buf/api"

// Config holds registry-wide parameters fixed at construction.
type Config struct {
	LegacyTag        string          // Tag of the lazily created default group
	LegacyMode       api.Mode        // Growth policy of the default group
	LegacyKind       api.BackingKind // Backend of the default group
	LegacyLimitCount int             // Count ceiling when LegacyMode is count-limited
	LegacyLimitSize  int64           // Byte ceiling when LegacyMode is size-limited

	// RejectBusyDeinit makes DeinitGroup fail with ErrGroupBusy while any
	// buffer is referenced instead of deferring their release.
	RejectBusyDeinit bool

	// PanicOnInvalidState turns contract violations (double free, use after
	// release, destroying a referenced buffer) into panics.
	PanicOnInvalidState bool
}

// DefaultConfig returns default configuration values.
func DefaultConfig() *Config {
	return &Config{
		LegacyTag:  "legacy",
		LegacyMode: api.ModeUnlimited,
		LegacyKind: api.KindHeap,
	}
}
