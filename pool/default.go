// File: pool/default.go
// Author: momentics <momentics@gmail.com>

package pool

import "sync"

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry behind the package-level
// functions. It is created on first use with DefaultConfig and lives until
// the process exits; call Close on it for an orderly teardown.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry()
		if err != nil {
			// Without metrics NewRegistry has no failure path.
			panic(err)
		}
		defaultReg = r
	})
	return defaultReg
}
