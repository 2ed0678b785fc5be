// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Defines the allocator backend contract the buffer pool depends on.

package api

// Allocator reserves and releases physical regions for one buffer group.
// Implementations must be safe for concurrent use.
type Allocator interface {
	// Kind reports the backing kind of regions produced by Alloc.
	Kind() BackingKind

	// Alloc reserves a region of exactly size bytes. It never blocks
	// waiting for memory; failure is returned immediately.
	Alloc(size int) (Handle, error)

	// Free releases a region previously returned by Alloc.
	Free(h Handle) error

	// Adopt validates an externally supplied region and returns the
	// handle the pool should record. Adopted regions are never passed to Free.
	Adopt(h Handle) (Handle, error)

	// Close releases backend resources. Regions still allocated stay valid.
	Close() error
}
